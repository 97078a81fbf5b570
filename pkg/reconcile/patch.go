package reconcile

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/gitcmd"
	"github.com/vary-sh/vary/pkg/syncdir"
	"github.com/vary-sh/vary/pkg/types"
)

// patchStrategy merges a git-backed variation: diff the variation
// against the base revision recorded at clone time, apply that patch
// to the source working tree, then carry over files the variation
// added without tracking them.
type patchStrategy struct {
	git    gitcmd.Git
	syncer syncdir.Syncer
	logger zerolog.Logger
}

func (s *patchStrategy) kind() types.MergeStrategy {
	return types.StrategyPatch
}

func (s *patchStrategy) run(ctx context.Context, rec *types.VariationRecord, opts types.MergeOptions) (*strategyOutcome, error) {
	if opts.Delete {
		s.logger.Debug().
			Str("variation", rec.Name).
			Msg("Deletions are derived from the diff, --delete has no effect here")
	}

	exists, err := s.git.RevisionExists(ctx, rec.VariationPath, rec.GitBase)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.New(errors.ErrDiffFailed,
			"recorded base revision is gone from the variation").
			WithDetail("variation", rec.Name).
			WithDetail("base", rec.GitBase)
	}

	diff, err := s.git.Diff(ctx, rec.VariationPath, rec.GitBase)
	if err != nil {
		return nil, err
	}

	untracked, err := s.git.ListUntracked(ctx, rec.VariationPath)
	if err != nil {
		return nil, err
	}
	untracked = dropArtifact(untracked)
	sort.Strings(untracked)

	if opts.DryRun {
		if !diff.Empty() {
			if err := s.git.ApplyPatch(ctx, rec.SourcePath, diff.Patch, gitcmd.ApplyOptions{Check: true}); err != nil {
				return nil, err
			}
		}
		return &strategyOutcome{changes: diff.Changes, untracked: untracked}, nil
	}

	if !diff.Empty() {
		if err := s.git.ApplyPatch(ctx, rec.SourcePath, diff.Patch, gitcmd.ApplyOptions{ThreeWay: true}); err != nil {
			return nil, err
		}
	}

	if len(untracked) > 0 {
		copied, err := s.syncer.CopyFiles(ctx, rec.VariationPath, rec.SourcePath, untracked)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrUntrackedCopy,
				"patch applied but untracked files could not be copied").
				WithDetail("variation", rec.Name)
		}
		untracked = copied
	}

	return &strategyOutcome{changes: diff.Changes, untracked: untracked}, nil
}

// dropArtifact strips the in-tree metadata file from a path list. The
// git pathspec already excludes it, this covers alternate Git
// implementations that do not honor the exclude.
func dropArtifact(paths []string) []string {
	out := paths[:0]
	for _, p := range paths {
		if p == types.ArtifactName {
			continue
		}
		out = append(out, p)
	}
	return out
}
