// pkg/testutil/environment.go
// PURPOSE: Orchestrate isolated test environments with vary's paths and registry

package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/vary-sh/vary/pkg/filesystem"
	"github.com/vary-sh/vary/pkg/paths"
	"github.com/vary-sh/vary/pkg/registry"
	"github.com/vary-sh/vary/pkg/types"
)

// EnvType defines the type of test environment.
type EnvType int

const (
	EnvMemoryOnly EnvType = iota // Pure in-memory, no real filesystem
	EnvIsolated                  // Real filesystem in a temp directory
)

// TestEnvironment provides a complete test environment: isolated home
// and data directories exported through the VARY_* variables, a
// filesystem, paths and a registry wired to them.
type TestEnvironment struct {
	HomeDir    string
	DataDir    string
	ConfigDir  string
	StateDir   string
	Workspace  string
	SourcesDir string

	FS       types.FS
	Paths    paths.Paths
	Registry *registry.Registry

	Type EnvType

	t *testing.T
}

// NewTestEnvironment creates a new test environment of the given type.
func NewTestEnvironment(t *testing.T, envType EnvType) *TestEnvironment {
	t.Helper()

	env := &TestEnvironment{t: t, Type: envType}

	var base string
	switch envType {
	case EnvMemoryOnly:
		base = "/virtual"
		env.FS = NewMemoryFS()
	case EnvIsolated:
		base = t.TempDir()
		env.FS = filesystem.NewOS()
	}

	env.HomeDir = filepath.Join(base, "home")
	env.DataDir = filepath.Join(base, "data")
	env.ConfigDir = filepath.Join(base, "config")
	env.StateDir = filepath.Join(base, "state")
	env.Workspace = filepath.Join(base, "workspace")
	env.SourcesDir = filepath.Join(base, "sources")

	t.Setenv("HOME", env.HomeDir)
	t.Setenv(paths.EnvDataDir, env.DataDir)
	t.Setenv(paths.EnvConfigDir, env.ConfigDir)
	t.Setenv(paths.EnvStateDir, env.StateDir)
	t.Setenv(paths.EnvWorkspace, env.Workspace)

	for _, dir := range []string{env.HomeDir, env.DataDir, env.Workspace, env.SourcesDir} {
		if err := env.FS.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	pathsInstance, err := paths.New("")
	if err != nil {
		t.Fatalf("Failed to create paths: %v", err)
	}
	env.Paths = pathsInstance
	env.Registry = registry.New(env.FS, pathsInstance)

	return env
}

// FileTree represents a directory structure for seeding. String values
// are file contents, nested FileTrees are directories.
type FileTree map[string]interface{}

// SeedSource creates a source directory with the given tree and returns
// its path.
func (env *TestEnvironment) SeedSource(name string, tree FileTree) string {
	env.t.Helper()

	dir := filepath.Join(env.SourcesDir, name)
	if err := env.FS.MkdirAll(dir, 0755); err != nil {
		env.t.Fatalf("Failed to create source directory: %v", err)
	}
	createFileTree(env.t, env.FS, dir, tree)
	return dir
}

// SeedVariation creates a variation directory under the workspace,
// registers it, drops the in-tree artifact, and returns the record.
// gitBase may be empty for a plain directory variation.
func (env *TestEnvironment) SeedVariation(name, sourcePath, gitBase string, tree FileTree) *types.VariationRecord {
	env.t.Helper()

	variationPath := filepath.Join(env.Workspace, name)
	if err := env.FS.MkdirAll(variationPath, 0755); err != nil {
		env.t.Fatalf("Failed to create variation directory: %v", err)
	}
	createFileTree(env.t, env.FS, variationPath, tree)

	rec := &types.VariationRecord{
		Version:       types.RecordVersion,
		Name:          name,
		Project:       registry.ProjectKey(sourcePath),
		SourcePath:    sourcePath,
		VariationPath: variationPath,
		CreatedAt:     time.Now().UTC(),
		GitBase:       gitBase,
	}
	if err := env.Registry.Save(rec); err != nil {
		env.t.Fatalf("Failed to save variation record: %v", err)
	}
	if err := env.Registry.WriteArtifact(rec); err != nil {
		env.t.Fatalf("Failed to write variation artifact: %v", err)
	}
	return rec
}

// WithFileTree creates files under an arbitrary base directory.
func (env *TestEnvironment) WithFileTree(base string, tree FileTree) {
	env.t.Helper()
	createFileTree(env.t, env.FS, base, tree)
}

// createFileTree recursively creates a file tree.
func createFileTree(t *testing.T, fsys types.FS, basePath string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			if dir := filepath.Dir(fullPath); dir != "." {
				if err := fsys.MkdirAll(dir, 0755); err != nil {
					t.Fatalf("Failed to create directory %s: %v", dir, err)
				}
			}
			if err := fsys.WriteFile(fullPath, []byte(v), 0644); err != nil {
				t.Fatalf("Failed to write file %s: %v", fullPath, err)
			}
		case FileTree:
			if err := fsys.MkdirAll(fullPath, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", fullPath, err)
			}
			createFileTree(t, fsys, fullPath, v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}
