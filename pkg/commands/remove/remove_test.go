// Test Type: Unit Test
// Description: Tests for the remove command - deletion, artifact verification, and locking

package remove_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vary-sh/vary/pkg/commands/remove"
	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/lockfile"
	"github.com/vary-sh/vary/pkg/registry"
	"github.com/vary-sh/vary/pkg/testutil"
)

func TestRemoveVariation(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	source := env.SeedSource("app", testutil.FileTree{"a.txt": "a\n"})
	rec := env.SeedVariation("swift-otter", source, "", testutil.FileTree{"a.txt": "a\n"})

	result, err := remove.RemoveVariation(context.Background(), remove.Options{
		Name:       "swift-otter",
		FileSystem: env.FS,
	})
	require.NoError(t, err)

	assert.True(t, result.Removed)
	assert.Equal(t, "swift-otter", result.Variation.Name)
	testutil.AssertNotExists(t, env.FS, rec.VariationPath)

	_, err = env.Registry.Get(rec.VariationPath)
	testutil.AssertErrorCode(t, err, errors.ErrVariationNotFound)
}

func TestRemoveVariationDirectoryAlreadyGone(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	source := env.SeedSource("app", testutil.FileTree{"a.txt": "a\n"})
	rec := env.SeedVariation("swift-otter", source, "", testutil.FileTree{})
	require.NoError(t, env.FS.RemoveAll(rec.VariationPath))

	result, err := remove.RemoveVariation(context.Background(), remove.Options{
		Name:       "swift-otter",
		FileSystem: env.FS,
	})
	require.NoError(t, err)

	// Only the record was left to clean up.
	assert.False(t, result.Removed)
	_, err = env.Registry.Get(rec.VariationPath)
	testutil.AssertErrorCode(t, err, errors.ErrVariationNotFound)
}

func TestRemoveVariationUnknown(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)

	_, err := remove.RemoveVariation(context.Background(), remove.Options{
		Name:       "no-such",
		FileSystem: env.FS,
	})
	testutil.AssertErrorCode(t, err, errors.ErrVariationNotFound)
}

func TestRemoveVariationArtifactMismatch(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	source := env.SeedSource("app", testutil.FileTree{"a.txt": "a\n"})
	rec := env.SeedVariation("swift-otter", source, "", testutil.FileTree{})

	forged := *rec
	forged.SourcePath = filepath.Join(env.SourcesDir, "other")
	require.NoError(t, env.Registry.WriteArtifact(&forged))

	_, err := remove.RemoveVariation(context.Background(), remove.Options{
		Name:       "swift-otter",
		FileSystem: env.FS,
	})
	testutil.AssertErrorCode(t, err, errors.ErrSourceMismatch)
	testutil.AssertDirExists(t, env.FS, rec.VariationPath)
}

func TestRemoveVariationForceOverridesMismatch(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	source := env.SeedSource("app", testutil.FileTree{"a.txt": "a\n"})
	rec := env.SeedVariation("swift-otter", source, "", testutil.FileTree{})

	forged := *rec
	forged.SourcePath = filepath.Join(env.SourcesDir, "other")
	require.NoError(t, env.Registry.WriteArtifact(&forged))

	result, err := remove.RemoveVariation(context.Background(), remove.Options{
		Name:       "swift-otter",
		Force:      true,
		FileSystem: env.FS,
	})
	require.NoError(t, err)
	assert.True(t, result.Removed)
	testutil.AssertNotExists(t, env.FS, rec.VariationPath)
}

func TestRemoveVariationMissingArtifactTolerated(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	source := env.SeedSource("app", testutil.FileTree{"a.txt": "a\n"})
	rec := env.SeedVariation("swift-otter", source, "", testutil.FileTree{})
	require.NoError(t, env.FS.Remove(rec.ArtifactPath()))

	result, err := remove.RemoveVariation(context.Background(), remove.Options{
		Name:       "swift-otter",
		FileSystem: env.FS,
	})
	require.NoError(t, err)
	assert.True(t, result.Removed)
}

func TestRemoveVariationLocked(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	source := env.SeedSource("app", testutil.FileTree{"a.txt": "a\n"})
	rec := env.SeedVariation("swift-otter", source, "", testutil.FileTree{})

	lock, err := lockfile.Acquire(env.Paths.LocksDir(), registry.PathKey(rec.VariationPath))
	require.NoError(t, err)
	defer func() { _ = lock.Release() }()

	_, err = remove.RemoveVariation(context.Background(), remove.Options{
		Name:       "swift-otter",
		FileSystem: env.FS,
	})
	testutil.AssertErrorCode(t, err, errors.ErrLocked)
}
