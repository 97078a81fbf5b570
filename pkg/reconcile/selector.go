package reconcile

import (
	"context"

	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/types"
)

// selectVariation looks up a variation by name and verifies the
// preconditions every merge depends on: the variation directory is
// still there, it still belongs to the source it was cloned from, and
// that source still exists.
func (e *Engine) selectVariation(ctx context.Context, name string) (*types.VariationRecord, error) {
	_ = ctx

	rec, err := e.registry.FindByName(name)
	if err != nil {
		return nil, err
	}

	info, err := e.fs.Stat(rec.VariationPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrVariationNotFound,
			"variation directory is missing").
			WithDetail("variation", rec.Name).
			WithDetail("path", rec.VariationPath)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrVariationNotFound,
			"variation path is not a directory").
			WithDetail("path", rec.VariationPath)
	}

	if err := e.checkArtifact(rec); err != nil {
		return nil, err
	}

	srcInfo, err := e.fs.Stat(rec.SourcePath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSourceMissing,
			"source directory is missing").
			WithDetail("variation", rec.Name).
			WithDetail("source", rec.SourcePath)
	}
	if !srcInfo.IsDir() {
		return nil, errors.New(errors.ErrSourceMissing,
			"source path is not a directory").
			WithDetail("source", rec.SourcePath)
	}

	return rec, nil
}

// checkArtifact compares the record against the artifact stored inside
// the variation. A missing artifact is tolerated, the registry is
// authoritative. An artifact pointing at a different source means the
// directory is not the variation the record describes, and merging it
// would write into the wrong tree.
func (e *Engine) checkArtifact(rec *types.VariationRecord) error {
	artifact, err := e.registry.ReadArtifact(rec.VariationPath)
	if err != nil {
		e.logger.Warn().Err(err).
			Str("variation", rec.Name).
			Msg("Variation artifact missing or unreadable, trusting registry")
		return nil
	}
	if artifact.SourcePath != rec.SourcePath {
		return errors.New(errors.ErrSourceMismatch,
			"variation was created from a different source").
			WithDetail("variation", rec.Name).
			WithDetail("recordedSource", rec.SourcePath).
			WithDetail("artifactSource", artifact.SourcePath)
	}
	return nil
}
