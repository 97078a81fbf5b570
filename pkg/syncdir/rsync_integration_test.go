// Test Type: Integration Test
// Description: Tests for the rsync-backed Syncer against the real binary

package syncdir_test

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vary-sh/vary/pkg/syncdir"
	"github.com/vary-sh/vary/pkg/types"
)

func requireRsync(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("rsync"); err != nil {
		t.Skip("Skipping test: rsync command not available")
	}
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// readFiles returns every regular file under dir as relative path to
// content.
func readFiles(t *testing.T, dir string) map[string]string {
	t.Helper()
	found := map[string]string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		found[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return found
}

func TestMirrorAdditiveKeepsSourceOnlyFiles(t *testing.T) {
	requireRsync(t)

	source := t.TempDir()
	variation := t.TempDir()
	writeFiles(t, source, map[string]string{"keep.txt": "keep", "gone.txt": "gone"})
	writeFiles(t, variation, map[string]string{"keep.txt": "updated", "new.txt": "new"})

	result, err := syncdir.NewRsync().Mirror(context.Background(), variation, source, syncdir.MirrorOptions{})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"keep.txt": "updated",
		"gone.txt": "gone",
		"new.txt":  "new",
	}, readFiles(t, source))

	require.Len(t, result.Changes, 2)
	assert.Equal(t, types.FileChange{Path: "keep.txt", Kind: types.ChangeUpdate}, result.Changes[0])
	assert.Equal(t, types.FileChange{Path: "new.txt", Kind: types.ChangeCreate}, result.Changes[1])
}

func TestMirrorDeletePropagatesRemovals(t *testing.T) {
	requireRsync(t)

	source := t.TempDir()
	variation := t.TempDir()
	writeFiles(t, source, map[string]string{"keep.txt": "keep", "gone.txt": "gone"})
	writeFiles(t, variation, map[string]string{"keep.txt": "updated", "new.txt": "new"})

	result, err := syncdir.NewRsync().Mirror(context.Background(), variation, source,
		syncdir.MirrorOptions{Delete: true})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"keep.txt": "updated",
		"new.txt":  "new",
	}, readFiles(t, source))

	require.Len(t, result.Changes, 3)
	assert.Equal(t, types.FileChange{Path: "gone.txt", Kind: types.ChangeDelete}, result.Changes[2])
}

func TestMirrorDryRunReportsWithoutMutating(t *testing.T) {
	requireRsync(t)

	source := t.TempDir()
	variation := t.TempDir()
	writeFiles(t, source, map[string]string{"keep.txt": "keep", "gone.txt": "gone"})
	writeFiles(t, variation, map[string]string{"keep.txt": "updated", "new.txt": "new"})
	before := readFiles(t, source)

	opts := syncdir.MirrorOptions{DryRun: true, Delete: true}
	first, err := syncdir.NewRsync().Mirror(context.Background(), variation, source, opts)
	require.NoError(t, err)
	second, err := syncdir.NewRsync().Mirror(context.Background(), variation, source, opts)
	require.NoError(t, err)

	assert.Equal(t, before, readFiles(t, source))
	assert.Equal(t, first.Changes, second.Changes)
	require.Len(t, first.Changes, 3)
}

func TestMirrorExcludeAnchorsToRoot(t *testing.T) {
	requireRsync(t)

	source := t.TempDir()
	variation := t.TempDir()
	writeFiles(t, variation, map[string]string{
		".vary.json":     "meta",
		"a.txt":          "a",
		"sub/.vary.json": "nested",
	})

	_, err := syncdir.NewRsync().Mirror(context.Background(), variation, source,
		syncdir.MirrorOptions{Exclude: []string{".vary.json"}})
	require.NoError(t, err)

	files := readFiles(t, source)
	assert.NotContains(t, files, ".vary.json")
	assert.Equal(t, "a", files["a.txt"])
	// Only the root artifact is excluded, a nested file of the same
	// name is user data.
	assert.Equal(t, "nested", files[filepath.Join("sub", ".vary.json")])
}

func TestCopyFilesCreatesParents(t *testing.T) {
	requireRsync(t)

	source := t.TempDir()
	variation := t.TempDir()
	writeFiles(t, variation, map[string]string{
		"docs/notes/plan.txt": "plan",
		"top.txt":             "top",
	})

	paths := []string{"docs/notes/plan.txt", "top.txt"}
	copied, err := syncdir.NewRsync().CopyFiles(context.Background(), variation, source, paths)
	require.NoError(t, err)
	assert.Equal(t, paths, copied)

	files := readFiles(t, source)
	assert.Equal(t, "plan", files[filepath.Join("docs", "notes", "plan.txt")])
	assert.Equal(t, "top", files["top.txt"])
}

func TestVersionReportsInstalledRsync(t *testing.T) {
	requireRsync(t)

	line, err := syncdir.Version(context.Background())
	require.NoError(t, err)
	assert.Contains(t, line, "rsync")
}
