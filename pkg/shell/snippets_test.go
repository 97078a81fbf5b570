// Test Type: Unit Tests
// Description: Tests for the shell integration snippets

package shell_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vary-sh/vary/pkg/shell"
)

func TestSnippetBashAndZshShared(t *testing.T) {
	bash, err := shell.Snippet(shell.ShellBash)
	require.NoError(t, err)
	zsh, err := shell.Snippet(shell.ShellZsh)
	require.NoError(t, err)

	assert.Equal(t, bash, zsh)
}

func TestSnippetBashContent(t *testing.T) {
	snippet, err := shell.Snippet(shell.ShellBash)
	require.NoError(t, err)

	assert.Contains(t, snippet, "vy()")
	assert.Contains(t, snippet, "vary new --path-only")
	assert.Contains(t, snippet, "vary path")
	assert.Contains(t, snippet, `command vary "$@"`)
}

func TestSnippetFishContent(t *testing.T) {
	snippet, err := shell.Snippet(shell.ShellFish)
	require.NoError(t, err)

	assert.Contains(t, snippet, "function vy")
	assert.Contains(t, snippet, "vary new --path-only")
	assert.Contains(t, snippet, "command vary $argv")
	assert.NotContains(t, snippet, "$@")
}

func TestSnippetUnsupportedShell(t *testing.T) {
	_, err := shell.Snippet("powershell")
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported shell")
}
