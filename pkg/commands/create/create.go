// Package create implements the `vary new` operation: clone a source
// directory into a fresh variation and register it.
package create

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/vary-sh/vary/pkg/clone"
	"github.com/vary-sh/vary/pkg/config"
	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/filesystem"
	"github.com/vary-sh/vary/pkg/gitcmd"
	"github.com/vary-sh/vary/pkg/logging"
	"github.com/vary-sh/vary/pkg/namegen"
	"github.com/vary-sh/vary/pkg/paths"
	"github.com/vary-sh/vary/pkg/registry"
	"github.com/vary-sh/vary/pkg/syncdir"
	"github.com/vary-sh/vary/pkg/types"
)

// Options holds options for the create command.
type Options struct {
	// SourceDir is the directory to clone. Empty means the current
	// directory, hopped up to its git root when inside a repository.
	SourceDir string

	// Name for the variation. Empty means a generated one.
	Name string

	// Dest overrides the variation's location. Empty means a directory
	// named after the variation under the workspace.
	Dest string

	// Workspace overrides where variations are placed.
	Workspace string

	// Separator joins the words of generated names.
	Separator string

	// ReflinkMode is the copy-on-write policy: auto, always or never.
	ReflinkMode string

	// Injectable capabilities for testing.
	FileSystem types.FS
	Git        gitcmd.Git
	Syncer     syncdir.Syncer
	Cloner     clone.Cloner
}

// CreateVariation clones the source into a new variation directory and
// records it in the registry.
func CreateVariation(ctx context.Context, opts Options) (*types.CreateResult, error) {
	logger := logging.GetLogger("commands.create")

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
	cloner := opts.Cloner
	if cloner == nil {
		mode := opts.ReflinkMode
		if mode == "" {
			mode = config.ModeAuto
		}
		cloner = clone.New(mode, syncer)
	}

	pathsInstance, err := paths.New(opts.Workspace)
	if err != nil {
		return nil, err
	}
	reg := registry.New(fs, pathsInstance)

	source, err := resolveSource(ctx, fs, git, pathsInstance, opts.SourceDir, logger)
	if err != nil {
		return nil, err
	}

	name, err := resolveName(reg, opts.Name, opts.Separator)
	if err != nil {
		return nil, err
	}

	dest := opts.Dest
	if dest == "" {
		dest = filepath.Join(pathsInstance.WorkspaceDir(), name)
	} else {
		dest, err = pathsInstance.NormalizePath(dest)
		if err != nil {
			return nil, err
		}
	}
	if paths.IsSubPath(source, dest) {
		return nil, errors.New(errors.ErrInvalidInput,
			"variation cannot live inside its source").
			WithDetail("source", source).
			WithDetail("dest", dest)
	}

	gitBase := resolveGitBase(ctx, git, source, logger)

	logger.Info().
		Str("source", source).
		Str("name", name).
		Str("dest", dest).
		Str("gitBase", gitBase).
		Msg("Creating variation")

	fallback, err := cloner.CloneTree(ctx, source, dest)
	if err != nil {
		return nil, err
	}

	rec := &types.VariationRecord{
		Version:       types.RecordVersion,
		Name:          name,
		Project:       registry.ProjectKey(source),
		SourcePath:    source,
		VariationPath: dest,
		CreatedAt:     time.Now().UTC(),
		GitBase:       gitBase,
	}
	if err := reg.Save(rec); err != nil {
		removePartial(fs, dest, logger)
		return nil, err
	}
	if err := reg.WriteArtifact(rec); err != nil {
		if delErr := reg.Delete(dest); delErr != nil {
			logger.Warn().Err(delErr).Msg("Could not remove record after failed artifact write")
		}
		removePartial(fs, dest, logger)
		return nil, err
	}

	logger.Info().
		Str("variation", name).
		Bool("fallback", fallback).
		Msg("Variation created")
	return &types.CreateResult{Variation: *rec, Fallback: fallback}, nil
}

// resolveSource normalizes the source directory. When it was not given
// explicitly the current directory is used, hopped up to the git root
// so a clone from deep inside a repo still snapshots the whole repo.
func resolveSource(ctx context.Context, fs types.FS, git gitcmd.Git, p paths.Paths, dir string, logger zerolog.Logger) (string, error) {
	explicit := dir != ""
	if !explicit {
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, errors.ErrFileAccess, "cannot determine current directory")
		}
		dir = cwd
	}

	source, err := p.NormalizePath(dir)
	if err != nil {
		return "", err
	}
	info, err := fs.Stat(source)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInvalidInput, "source directory does not exist").
			WithDetail("source", source)
	}
	if !info.IsDir() {
		return "", errors.New(errors.ErrInvalidInput, "source is not a directory").
			WithDetail("source", source)
	}

	if !explicit {
		top, err := git.Toplevel(ctx, source)
		if err == nil && top != "" && top != source {
			logger.Info().
				Str("cwd", source).
				Str("root", top).
				Msg("Inside a git repository, using its root as source")
			return p.NormalizePath(top)
		}
	}
	return source, nil
}

// resolveName validates an explicit name or generates a free one.
func resolveName(reg *registry.Registry, name, separator string) (string, error) {
	sep := separator
	if sep == "" {
		sep = "-"
	}

	taken := func(candidate string) bool {
		_, err := reg.FindByName(candidate)
		return err == nil
	}

	if name == "" {
		return namegen.GenerateUnique(sep, taken), nil
	}
	if err := namegen.ValidateName(name); err != nil {
		return "", err
	}
	if taken(name) {
		return "", errors.Newf(errors.ErrVariationExists, "a variation named %q already exists", name)
	}
	return name, nil
}

// resolveGitBase records the source HEAD when the source is the root of
// a git repository. Everything else, including a repo without commits
// or a machine without git, yields no base and the mirror strategy.
func resolveGitBase(ctx context.Context, git gitcmd.Git, source string, logger zerolog.Logger) string {
	isRoot, err := git.IsRepoRoot(ctx, source)
	if err != nil {
		logger.Warn().Err(err).Msg("Cannot probe for a git repository, variation will merge by mirror")
		return ""
	}
	if !isRoot {
		return ""
	}
	base, err := git.CurrentRevision(ctx, source)
	if err != nil {
		logger.Warn().Err(err).Msg("Repository has no resolvable HEAD, variation will merge by mirror")
		return ""
	}
	return base
}

// removePartial cleans up a clone that could not be registered.
func removePartial(fs types.FS, dest string, logger zerolog.Logger) {
	if err := fs.RemoveAll(dest); err != nil {
		logger.Warn().Err(err).Str("path", dest).Msg("Could not remove partial variation")
	}
}
