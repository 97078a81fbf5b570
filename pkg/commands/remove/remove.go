// Package remove implements `vary rm`: delete a variation directory
// and its registry record without merging.
package remove

import (
	"context"

	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/filesystem"
	"github.com/vary-sh/vary/pkg/lockfile"
	"github.com/vary-sh/vary/pkg/logging"
	"github.com/vary-sh/vary/pkg/paths"
	"github.com/vary-sh/vary/pkg/registry"
	"github.com/vary-sh/vary/pkg/types"
)

// Options holds options for the remove command.
type Options struct {
	// Name of the variation to remove.
	Name string

	// Force removes the directory even when it does not look like the
	// recorded variation.
	Force bool

	// Workspace overrides where variations are placed.
	Workspace string

	// Injectable filesystem for testing.
	FileSystem types.FS
}

// RemoveVariation deletes a variation and its record. A missing
// directory is not an error: the record alone is cleaned up.
func RemoveVariation(ctx context.Context, opts Options) (*types.RemoveResult, error) {
	_ = ctx

	logger := logging.GetLogger("commands.remove")

	fs := opts.FileSystem
	if fs == nil {
		fs = filesystem.NewOS()
	}
	pathsInstance, err := paths.New(opts.Workspace)
	if err != nil {
		return nil, err
	}
	reg := registry.New(fs, pathsInstance)

	rec, err := reg.FindByName(opts.Name)
	if err != nil {
		return nil, err
	}

	lock, err := lockfile.Acquire(pathsInstance.LocksDir(), registry.PathKey(rec.VariationPath))
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	result := &types.RemoveResult{Variation: *rec}

	if _, statErr := fs.Stat(rec.VariationPath); statErr == nil {
		if !opts.Force {
			if err := verifyArtifact(reg, rec); err != nil {
				return nil, err
			}
		}
		if err := fs.RemoveAll(rec.VariationPath); err != nil {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "could not remove variation directory").
				WithDetail("path", rec.VariationPath)
		}
		result.Removed = true
	} else {
		logger.Warn().
			Str("variation", rec.Name).
			Str("path", rec.VariationPath).
			Msg("Variation directory already gone, removing record only")
	}

	if err := reg.Delete(rec.VariationPath); err != nil {
		return nil, err
	}

	logger.Info().
		Str("variation", rec.Name).
		Bool("removedDir", result.Removed).
		Msg("Variation removed")
	return result, nil
}

// verifyArtifact refuses to delete a directory whose in-tree artifact
// describes a different source than the record. That directory is not
// the variation the record points at.
func verifyArtifact(reg *registry.Registry, rec *types.VariationRecord) error {
	artifact, err := reg.ReadArtifact(rec.VariationPath)
	if err != nil {
		// No artifact to contradict the record.
		return nil
	}
	if artifact.SourcePath != rec.SourcePath {
		return errors.New(errors.ErrSourceMismatch,
			"directory does not match the recorded variation, use --force to remove anyway").
			WithDetail("variation", rec.Name).
			WithDetail("recordedSource", rec.SourcePath).
			WithDetail("artifactSource", artifact.SourcePath)
	}
	return nil
}
