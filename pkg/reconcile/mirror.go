package reconcile

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/vary-sh/vary/pkg/syncdir"
	"github.com/vary-sh/vary/pkg/types"
)

// mirrorStrategy merges a plain-directory variation by copying the
// variation tree over the source. Files present only in the source are
// left alone unless deletions were requested.
type mirrorStrategy struct {
	syncer syncdir.Syncer
	logger zerolog.Logger
}

func (s *mirrorStrategy) kind() types.MergeStrategy {
	return types.StrategyMirror
}

func (s *mirrorStrategy) run(ctx context.Context, rec *types.VariationRecord, opts types.MergeOptions) (*strategyOutcome, error) {
	res, err := s.syncer.Mirror(ctx, rec.VariationPath, rec.SourcePath, syncdir.MirrorOptions{
		DryRun:  opts.DryRun,
		Delete:  opts.Delete,
		Exclude: []string{types.ArtifactName},
	})
	if err != nil {
		return nil, err
	}
	return &strategyOutcome{changes: res.Changes}, nil
}
