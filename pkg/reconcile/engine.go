package reconcile

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/gitcmd"
	"github.com/vary-sh/vary/pkg/lockfile"
	"github.com/vary-sh/vary/pkg/logging"
	"github.com/vary-sh/vary/pkg/paths"
	"github.com/vary-sh/vary/pkg/registry"
	"github.com/vary-sh/vary/pkg/syncdir"
	"github.com/vary-sh/vary/pkg/types"
)

// Engine merges variations back into their sources. All external
// effects go through the injected capabilities, so tests can swap in
// fakes for git, the tree syncer, and the filesystem.
type Engine struct {
	fs       types.FS
	registry *registry.Registry
	git      gitcmd.Git
	syncer   syncdir.Syncer
	paths    paths.Paths
	logger   zerolog.Logger
}

// New creates an Engine from its capabilities.
func New(fs types.FS, reg *registry.Registry, git gitcmd.Git, syncer syncdir.Syncer, p paths.Paths) *Engine {
	return &Engine{
		fs:       fs,
		registry: reg,
		git:      git,
		syncer:   syncer,
		paths:    p,
		logger:   logging.GetLogger("reconcile"),
	}
}

// strategyOutcome is what a strategy run produces: the per-file
// changes it applied (or would apply), and any untracked files it
// carried over.
type strategyOutcome struct {
	changes   []types.FileChange
	untracked []string
}

// strategy runs one merge flavor against a selected variation.
type strategy interface {
	kind() types.MergeStrategy
	run(ctx context.Context, rec *types.VariationRecord, opts types.MergeOptions) (*strategyOutcome, error)
}

// Merge carries the named variation's changes back to its source.
//
// The phases run in a fixed order: select and verify the variation,
// take its lock, check out the target branch when one was requested,
// run the strategy, and finally clean up the variation unless it is
// being kept. A dry run performs the same selection and reporting but
// leaves the source, the branch state, and the variation untouched.
func (e *Engine) Merge(ctx context.Context, opts types.MergeOptions) (*types.MergeResult, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return nil, errors.New(errors.ErrUsage, "variation name is required")
	}

	rec, err := e.selectVariation(ctx, opts.Name)
	if err != nil {
		return nil, err
	}

	strat := e.strategyFor(rec)
	log := e.logger.With().
		Str("variation", rec.Name).
		Str("strategy", string(strat.kind())).
		Bool("dryRun", opts.DryRun).
		Logger()

	branchName, err := resolveBranch(rec, strat.kind(), opts)
	if err != nil {
		return nil, err
	}

	lock, err := lockfile.Acquire(e.paths.LocksDir(), registry.PathKey(rec.VariationPath))
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	result := &types.MergeResult{
		Variation: *rec,
		Strategy:  strat.kind(),
		DryRun:    opts.DryRun,
	}

	if branchName != "" {
		if opts.DryRun {
			log.Info().Str("branch", branchName).Msg("Dry run, branch left untouched")
			result.Branch = branchName
			result.BranchSkipped = true
		} else {
			created, err := checkoutBranch(ctx, e.git, rec.SourcePath, branchName)
			if err != nil {
				return nil, err
			}
			result.Branch = branchName
			result.BranchCreated = created
		}
	}

	done := logging.LogOperationStart(log, "merge")
	outcome, err := strat.run(ctx, rec, opts)
	done()
	if err != nil {
		return nil, err
	}
	result.Changes = outcome.changes
	result.Untracked = outcome.untracked

	if !opts.DryRun && !opts.Keep {
		e.cleanup(rec, result)
	}

	log.Info().
		Int("changes", len(result.Changes)).
		Int("untracked", len(result.Untracked)).
		Bool("cleaned", result.Cleaned).
		Msg("Merge finished")
	return result, nil
}

// strategyFor picks the merge flavor a record calls for. Variations
// cloned from a git repository merge by patch, everything else is
// mirrored.
func (e *Engine) strategyFor(rec *types.VariationRecord) strategy {
	if rec.GitBacked() {
		return &patchStrategy{git: e.git, syncer: e.syncer, logger: e.logger}
	}
	return &mirrorStrategy{syncer: e.syncer, logger: e.logger}
}

// cleanup removes a merged variation and its registry record. Failures
// here do not fail the merge; they are reported on the result so the
// caller can surface them.
func (e *Engine) cleanup(rec *types.VariationRecord, result *types.MergeResult) {
	if err := e.fs.RemoveAll(rec.VariationPath); err != nil {
		e.logger.Warn().Err(err).
			Str("path", rec.VariationPath).
			Msg("Could not remove merged variation")
		result.CleanupError = err.Error()
		return
	}
	if err := e.registry.Delete(rec.VariationPath); err != nil {
		e.logger.Warn().Err(err).
			Str("variation", rec.Name).
			Msg("Could not delete registry record")
		result.CleanupError = err.Error()
		return
	}
	result.Cleaned = true
}
