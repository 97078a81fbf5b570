// Test Type: Unit Test
// Description: Tests for the paths package - directory resolution, env overrides, and normalization

package paths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vary-sh/vary/pkg/paths"
)

// setTestDirs points every vary directory at tmpDir so nothing leaks
// into the real XDG tree.
func setTestDirs(t *testing.T, tmpDir string) {
	t.Helper()
	t.Setenv(paths.EnvDataDir, filepath.Join(tmpDir, "data"))
	t.Setenv(paths.EnvConfigDir, filepath.Join(tmpDir, "config"))
	t.Setenv(paths.EnvCacheDir, filepath.Join(tmpDir, "cache"))
	t.Setenv(paths.EnvStateDir, filepath.Join(tmpDir, "state"))
	t.Setenv(paths.EnvWorkspace, "")
}

func TestDirectoriesFollowEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	setTestDirs(t, tmpDir)

	p, err := paths.New("")
	require.NoError(t, err)

	dataDir := filepath.Join(tmpDir, "data")
	assert.Equal(t, dataDir, p.DataDir())
	assert.Equal(t, filepath.Join(tmpDir, "config"), p.ConfigDir())
	assert.Equal(t, filepath.Join(tmpDir, "cache"), p.CacheDir())
	assert.Equal(t, filepath.Join(tmpDir, "state"), p.StateDir())

	assert.Equal(t, filepath.Join(dataDir, "registry"), p.RegistryDir())
	assert.Equal(t, filepath.Join(dataDir, "locks"), p.LocksDir())
	assert.Equal(t, filepath.Join(tmpDir, "config", "config.toml"), p.ConfigFilePath())
	assert.Equal(t, filepath.Join(tmpDir, "state", "vary.log"), p.LogFilePath())
}

func TestDefaultWorkspaceUnderDataDir(t *testing.T) {
	tmpDir := t.TempDir()
	setTestDirs(t, tmpDir)

	p, err := paths.New("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, "data", "variations"), p.WorkspaceDir())
}

func TestWorkspaceFromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	setTestDirs(t, tmpDir)
	t.Setenv(paths.EnvWorkspace, filepath.Join(tmpDir, "elsewhere"))

	p, err := paths.New("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, "elsewhere"), p.WorkspaceDir())
}

func TestExplicitWorkspaceWinsOverEnv(t *testing.T) {
	tmpDir := t.TempDir()
	setTestDirs(t, tmpDir)
	t.Setenv(paths.EnvWorkspace, filepath.Join(tmpDir, "ignored"))

	p, err := paths.New(filepath.Join(tmpDir, "chosen"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, "chosen"), p.WorkspaceDir())
}

func TestExpandHome(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare_tilde",
			input:    "~",
			expected: homeDir,
		},
		{
			name:     "tilde_slash",
			input:    "~/work",
			expected: filepath.Join(homeDir, "work"),
		},
		{
			name:     "tilde_other_user",
			input:    "~other/work",
			expected: "~other/work",
		},
		{
			name:     "absolute_untouched",
			input:    "/var/tmp",
			expected: "/var/tmp",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, paths.ExpandHome(tt.input))
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tmpDir := t.TempDir()
	setTestDirs(t, tmpDir)

	p, err := paths.New("")
	require.NoError(t, err)

	t.Run("empty_path_rejected", func(t *testing.T) {
		_, err := p.NormalizePath("")
		assert.Error(t, err)
	})

	t.Run("relative_becomes_absolute", func(t *testing.T) {
		got, err := p.NormalizePath("some/dir")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))
	})

	t.Run("missing_path_kept", func(t *testing.T) {
		missing := filepath.Join(tmpDir, "not", "created")
		got, err := p.NormalizePath(missing)
		require.NoError(t, err)
		assert.Equal(t, missing, got)
	})

	t.Run("symlinks_resolved", func(t *testing.T) {
		real := filepath.Join(tmpDir, "real")
		require.NoError(t, os.MkdirAll(real, 0755))
		link := filepath.Join(tmpDir, "link")
		require.NoError(t, os.Symlink(real, link))

		resolvedReal, err := filepath.EvalSymlinks(real)
		require.NoError(t, err)

		got, err := p.NormalizePath(link)
		require.NoError(t, err)
		assert.Equal(t, resolvedReal, got)
	})
}

func TestIsSubPath(t *testing.T) {
	tests := []struct {
		name     string
		parent   string
		child    string
		expected bool
	}{
		{
			name:     "same_path",
			parent:   "/home/user/app",
			child:    "/home/user/app",
			expected: true,
		},
		{
			name:     "direct_child",
			parent:   "/home/user/app",
			child:    "/home/user/app/pkg",
			expected: true,
		},
		{
			name:     "nested_child",
			parent:   "/home/user/app",
			child:    "/home/user/app/pkg/deep/file",
			expected: true,
		},
		{
			name:     "sibling",
			parent:   "/home/user/app",
			child:    "/home/user/other",
			expected: false,
		},
		{
			name:     "parent_of_parent",
			parent:   "/home/user/app",
			child:    "/home/user",
			expected: false,
		},
		{
			name:     "shared_prefix_not_sub",
			parent:   "/home/user/app",
			child:    "/home/user/app-backup",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, paths.IsSubPath(tt.parent, tt.child))
		})
	}
}
