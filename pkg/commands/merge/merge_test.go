// Test Type: Unit Test
// Description: Tests for the merge command wiring around the reconcile engine

package merge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vary-sh/vary/pkg/commands/merge"
	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/gitcmd"
	"github.com/vary-sh/vary/pkg/testutil"
	"github.com/vary-sh/vary/pkg/types"
)

const baseRev = "0123456789abcdef0123456789abcdef01234567"

func TestMergeVariationPatch(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	source := env.SeedSource("app", testutil.FileTree{"main.go": "package main\n"})
	rec := env.SeedVariation("swift-otter", source, baseRev, testutil.FileTree{
		"main.go": "package main // changed\n",
	})

	git := &testutil.FakeGit{
		DiffOut: &gitcmd.DiffResult{
			Patch:   []byte("diff --git a/main.go b/main.go\n"),
			Changes: []types.FileChange{{Path: "main.go", Kind: types.ChangeUpdate}},
		},
	}

	result, err := merge.MergeVariation(context.Background(), merge.Options{
		Merge:      types.MergeOptions{Name: "swift-otter"},
		FileSystem: env.FS,
		Git:        git,
		Syncer:     &testutil.FakeSyncer{},
	})
	require.NoError(t, err)

	assert.Equal(t, types.StrategyPatch, result.Strategy)
	assert.Len(t, result.Changes, 1)
	assert.True(t, result.Cleaned)
	testutil.AssertNotExists(t, env.FS, rec.VariationPath)
}

func TestMergeVariationMirror(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	source := env.SeedSource("data", testutil.FileTree{"a.txt": "a\n"})
	env.SeedVariation("plain-copy", source, "", testutil.FileTree{"a.txt": "changed\n"})

	syncer := &testutil.FakeSyncer{}

	result, err := merge.MergeVariation(context.Background(), merge.Options{
		Merge:      types.MergeOptions{Name: "plain-copy", Keep: true},
		FileSystem: env.FS,
		Git:        &testutil.FakeGit{},
		Syncer:     syncer,
	})
	require.NoError(t, err)

	assert.Equal(t, types.StrategyMirror, result.Strategy)
	assert.Len(t, syncer.MirrorCalls, 1)
}

func TestMergeVariationUnknown(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)

	_, err := merge.MergeVariation(context.Background(), merge.Options{
		Merge:      types.MergeOptions{Name: "no-such"},
		FileSystem: env.FS,
		Git:        &testutil.FakeGit{},
		Syncer:     &testutil.FakeSyncer{},
	})
	testutil.AssertErrorCode(t, err, errors.ErrVariationNotFound)
}
