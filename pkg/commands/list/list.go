// Package list implements the read side of the CLI: `vary list` and
// the `vary path` lookup.
package list

import (
	"context"
	"os"

	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/filesystem"
	"github.com/vary-sh/vary/pkg/gitcmd"
	"github.com/vary-sh/vary/pkg/logging"
	"github.com/vary-sh/vary/pkg/paths"
	"github.com/vary-sh/vary/pkg/registry"
	"github.com/vary-sh/vary/pkg/types"
)

// Options holds options for the list command.
type Options struct {
	// All lists variations of every project instead of just the
	// current one.
	All bool

	// SourceDir scopes the listing to one project. Empty means the
	// current directory, hopped to its git root like `vary new` does.
	SourceDir string

	// Workspace overrides where variations are placed.
	Workspace string

	// Injectable capabilities for testing.
	FileSystem types.FS
	Git        gitcmd.Git
}

// ListVariations returns the registered variations, scoped to the
// current project unless All is set.
func ListVariations(ctx context.Context, opts Options) (*types.ListResult, error) {
	logger := logging.GetLogger("commands.list")

	fs := opts.FileSystem
	if fs == nil {
		fs = filesystem.NewOS()
	}
	git := opts.Git
	if git == nil {
		git = gitcmd.NewSystem()
	}

	pathsInstance, err := paths.New(opts.Workspace)
	if err != nil {
		return nil, err
	}
	reg := registry.New(fs, pathsInstance)

	records, err := reg.List()
	if err != nil {
		return nil, err
	}

	project := ""
	if !opts.All {
		source, err := resolveProjectSource(ctx, git, pathsInstance, opts.SourceDir)
		if err != nil {
			return nil, err
		}
		project = registry.ProjectKey(source)
	}

	result := &types.ListResult{}
	for _, rec := range records {
		if project != "" && rec.Project != project {
			continue
		}
		info := types.VariationInfo{
			Name:          rec.Name,
			Project:       rec.Project,
			SourcePath:    rec.SourcePath,
			VariationPath: rec.VariationPath,
			CreatedAt:     rec.CreatedAt,
			GitBacked:     rec.GitBacked(),
		}
		if _, err := fs.Stat(rec.VariationPath); err != nil {
			info.Missing = true
		}
		result.Variations = append(result.Variations, info)
	}

	logger.Debug().
		Int("total", len(records)).
		Int("listed", len(result.Variations)).
		Str("project", project).
		Msg("Listed variations")
	return result, nil
}

// VariationPath resolves a variation name to its directory.
func VariationPath(opts Options, name string) (string, error) {
	fs := opts.FileSystem
	if fs == nil {
		fs = filesystem.NewOS()
	}
	pathsInstance, err := paths.New(opts.Workspace)
	if err != nil {
		return "", err
	}
	rec, err := registry.New(fs, pathsInstance).FindByName(name)
	if err != nil {
		return "", err
	}
	return rec.VariationPath, nil
}

// resolveProjectSource finds the source directory the current project
// key is derived from, matching the resolution `vary new` performs.
func resolveProjectSource(ctx context.Context, git gitcmd.Git, p paths.Paths, dir string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, errors.ErrFileAccess, "cannot determine current directory")
		}
		dir = cwd

		source, err := p.NormalizePath(dir)
		if err != nil {
			return "", err
		}
		if top, err := git.Toplevel(ctx, source); err == nil && top != "" && top != source {
			return p.NormalizePath(top)
		}
		return source, nil
	}
	return p.NormalizePath(dir)
}
