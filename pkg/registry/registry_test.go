// Test Type: Unit Test
// Description: Tests for the registry package - record storage, lookup, and key derivation

package registry_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/registry"
	"github.com/vary-sh/vary/pkg/testutil"
	"github.com/vary-sh/vary/pkg/types"
)

func newRecord(env *testutil.TestEnvironment, name string, created time.Time) *types.VariationRecord {
	source := filepath.Join(env.SourcesDir, "app")
	return &types.VariationRecord{
		Version:       types.RecordVersion,
		Name:          name,
		Project:       registry.ProjectKey(source),
		SourcePath:    source,
		VariationPath: filepath.Join(env.Workspace, name),
		CreatedAt:     created,
	}
}

func TestSaveAndGet(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)

	record := newRecord(env, "swift-otter", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, env.Registry.Save(record))

	got, err := env.Registry.Get(record.VariationPath)
	require.NoError(t, err)
	assert.Equal(t, record.Name, got.Name)
	assert.Equal(t, record.Project, got.Project)
	assert.Equal(t, record.SourcePath, got.SourcePath)
	assert.Equal(t, record.VariationPath, got.VariationPath)
	assert.True(t, record.CreatedAt.Equal(got.CreatedAt))
}

func TestSaveReplacesExisting(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)

	record := newRecord(env, "swift-otter", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, env.Registry.Save(record))

	record.GitBase = "0123456789abcdef0123456789abcdef01234567"
	require.NoError(t, env.Registry.Save(record))

	records, err := env.Registry.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.GitBase, records[0].GitBase)
}

func TestSaveRejectsInvalidRecord(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)

	record := newRecord(env, "swift-otter", time.Now().UTC())
	record.Name = ""

	err := env.Registry.Save(record)
	testutil.AssertErrorCode(t, err, errors.ErrInvalidInput)
}

func TestGetMissing(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)

	_, err := env.Registry.Get(filepath.Join(env.Workspace, "nothing-here"))
	testutil.AssertErrorCode(t, err, errors.ErrVariationNotFound)
}

func TestFindByName(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	source := env.SeedSource("app", testutil.FileTree{"main.go": "package main\n"})
	env.SeedVariation("swift-otter", source, "", nil)
	env.SeedVariation("calm-heron", source, "", nil)

	got, err := env.Registry.FindByName("calm-heron")
	require.NoError(t, err)
	assert.Equal(t, "calm-heron", got.Name)

	_, err = env.Registry.FindByName("no-such-name")
	testutil.AssertErrorCode(t, err, errors.ErrVariationNotFound)
}

func TestListSortedByCreation(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, rec := range []*types.VariationRecord{
		newRecord(env, "third", base.Add(2*time.Hour)),
		newRecord(env, "first", base),
		newRecord(env, "second", base.Add(time.Hour)),
	} {
		require.NoError(t, env.Registry.Save(rec))
	}

	records, err := env.Registry.List()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "first", records[0].Name)
	assert.Equal(t, "second", records[1].Name)
	assert.Equal(t, "third", records[2].Name)
}

func TestListEmptyRegistry(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)

	records, err := env.Registry.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListSkipsUnreadableRecords(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)

	record := newRecord(env, "swift-otter", time.Now().UTC())
	require.NoError(t, env.Registry.Save(record))

	junk := filepath.Join(env.Paths.RegistryDir(), "junk.json")
	require.NoError(t, env.FS.WriteFile(junk, []byte("{not json"), 0644))

	records, err := env.Registry.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "swift-otter", records[0].Name)
}

func TestDeleteIdempotent(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)

	record := newRecord(env, "swift-otter", time.Now().UTC())
	require.NoError(t, env.Registry.Save(record))

	require.NoError(t, env.Registry.Delete(record.VariationPath))
	require.NoError(t, env.Registry.Delete(record.VariationPath))

	_, err := env.Registry.Get(record.VariationPath)
	testutil.AssertErrorCode(t, err, errors.ErrVariationNotFound)
}

func TestPathKey(t *testing.T) {
	key := registry.PathKey("/home/user/work/clone")
	assert.Len(t, key, 16)

	assert.Equal(t, key, registry.PathKey("/home/user/work/clone/"))
	assert.Equal(t, key, registry.PathKey("/home/user/work/./clone"))
	assert.NotEqual(t, key, registry.PathKey("/home/user/work/other"))
}

func TestProjectKey(t *testing.T) {
	key := registry.ProjectKey("/home/user/My App")
	assert.True(t, len(key) > 9)
	assert.Contains(t, key, "my-app-")

	// Same basename under different parents must not collide.
	other := registry.ProjectKey("/srv/My App")
	assert.NotEqual(t, key, other)

	// A basename with no usable characters still yields a key.
	assert.Contains(t, registry.ProjectKey("/"), "project-")
}

func TestArtifactRoundTrip(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	source := env.SeedSource("app", testutil.FileTree{"main.go": "package main\n"})
	record := env.SeedVariation("swift-otter", source, "", testutil.FileTree{"main.go": "package main\n"})

	artifact, err := env.Registry.ReadArtifact(record.VariationPath)
	require.NoError(t, err)
	assert.Equal(t, record.Name, artifact.Name)
	assert.Equal(t, record.SourcePath, artifact.SourcePath)
}

func TestReadArtifactMissing(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)

	dir := filepath.Join(env.Workspace, "no-artifact")
	require.NoError(t, env.FS.MkdirAll(dir, 0755))

	_, err := env.Registry.ReadArtifact(dir)
	testutil.AssertErrorCode(t, err, errors.ErrNotFound)
}
