// Test Type: Unit Test
// Description: Tests for gitcmd output parsing and path comparison helpers

package gitcmd

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vary-sh/vary/pkg/types"
)

func TestParseNameStatus(t *testing.T) {
	out := "A\tdocs/new.md\n" +
		"M\tmain.go\n" +
		"D\told.go\n" +
		"T\tscripts/hook\n"

	changes := parseNameStatus(out)
	require.Len(t, changes, 4)

	assert.Equal(t, types.FileChange{Path: "docs/new.md", Kind: types.ChangeCreate}, changes[0])
	assert.Equal(t, types.FileChange{Path: "main.go", Kind: types.ChangeUpdate}, changes[1])
	assert.Equal(t, types.FileChange{Path: "old.go", Kind: types.ChangeDelete}, changes[2])
	assert.Equal(t, types.FileChange{Path: "scripts/hook", Kind: types.ChangeUpdate}, changes[3])
}

func TestParseNameStatusSpacedNames(t *testing.T) {
	changes := parseNameStatus("M\tdocs/release notes.md\n")
	require.Len(t, changes, 1)
	assert.Equal(t, "docs/release notes.md", changes[0].Path)
}

func TestParseNameStatusEmpty(t *testing.T) {
	assert.Empty(t, parseNameStatus(""))
	assert.Empty(t, parseNameStatus("\n\n"))
}

func TestParseNameStatusSkipsMalformedLines(t *testing.T) {
	changes := parseNameStatus("garbage-without-tab\nM\tmain.go\n")
	require.Len(t, changes, 1)
	assert.Equal(t, "main.go", changes[0].Path)
}

func TestSamePath(t *testing.T) {
	assert.True(t, samePath("/home/user/app", "/home/user/app"))
	assert.True(t, samePath("/home/user/app/", "/home/user/app"))
	assert.False(t, samePath("/home/user/app", "/home/user/other"))
}

func TestSamePathThroughSymlink(t *testing.T) {
	tmpDir := t.TempDir()
	real := filepath.Join(tmpDir, "real")
	require.NoError(t, os.MkdirAll(real, 0755))
	link := filepath.Join(tmpDir, "link")
	require.NoError(t, os.Symlink(real, link))

	assert.True(t, samePath(real, link))
}

func TestCommandErrorMessage(t *testing.T) {
	base := fmt.Errorf("exit status 128")

	withStderr := &commandError{
		args:   []string{"rev-parse", "HEAD"},
		stderr: "fatal: not a git repository",
		err:    base,
	}
	assert.Contains(t, withStderr.Error(), "rev-parse HEAD")
	assert.Contains(t, withStderr.Error(), "not a git repository")
	assert.ErrorIs(t, withStderr, base)

	bare := &commandError{args: []string{"--version"}, err: base}
	assert.Contains(t, bare.Error(), "exit status 128")
}
