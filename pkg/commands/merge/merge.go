// Package merge implements the `vary merge` operation by driving the
// reconcile engine.
package merge

import (
	"context"

	"github.com/vary-sh/vary/pkg/filesystem"
	"github.com/vary-sh/vary/pkg/gitcmd"
	"github.com/vary-sh/vary/pkg/logging"
	"github.com/vary-sh/vary/pkg/paths"
	"github.com/vary-sh/vary/pkg/reconcile"
	"github.com/vary-sh/vary/pkg/registry"
	"github.com/vary-sh/vary/pkg/syncdir"
	"github.com/vary-sh/vary/pkg/types"
)

// Options holds options for the merge command.
type Options struct {
	// Merge carries the user's choices: name, dry-run, keep, delete
	// and branch handling.
	Merge types.MergeOptions

	// Workspace overrides where variations are placed.
	Workspace string

	// Injectable capabilities for testing.
	FileSystem types.FS
	Git        gitcmd.Git
	Syncer     syncdir.Syncer
}

// MergeVariation reconciles a variation back into its source.
func MergeVariation(ctx context.Context, opts Options) (*types.MergeResult, error) {
	logger := logging.GetLogger("commands.merge")
	logger.Info().
		Str("variation", opts.Merge.Name).
		Bool("dryRun", opts.Merge.DryRun).
		Bool("keep", opts.Merge.Keep).
		Bool("delete", opts.Merge.Delete).
		Bool("branch", opts.Merge.BranchSet).
		Msg("Merging variation")

	fs := opts.FileSystem
	if fs == nil {
		fs = filesystem.NewOS()
	}
	git := opts.Git
	if git == nil {
		git = gitcmd.NewSystem()
	}
	syncer := opts.Syncer
	if syncer == nil {
		syncer = syncdir.NewRsync()
	}

	pathsInstance, err := paths.New(opts.Workspace)
	if err != nil {
		return nil, err
	}
	reg := registry.New(fs, pathsInstance)

	engine := reconcile.New(fs, reg, git, syncer, pathsInstance)
	result, err := engine.Merge(ctx, opts.Merge)
	if err != nil {
		logger.Error().Err(err).Str("variation", opts.Merge.Name).Msg("Merge failed")
		return nil, err
	}
	return result, nil
}
