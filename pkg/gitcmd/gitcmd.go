// Package gitcmd wraps the system git binary behind a narrow interface.
// Only the operations the merge engine actually needs are exposed, so
// tests can substitute an in-memory fake without simulating all of git.
package gitcmd

import (
	"context"

	"github.com/vary-sh/vary/pkg/types"
)

// Git is the capability interface for everything vary asks of git.
// All paths passed in are absolute directories; git runs with -C so the
// caller's working directory never matters.
type Git interface {
	// Version returns the git version string, or an error when the
	// binary is missing.
	Version(ctx context.Context) (string, error)

	// IsRepoRoot reports whether dir is the top level of a git work
	// tree. A dir inside a repo, or outside any repo, reports false.
	IsRepoRoot(ctx context.Context, dir string) (bool, error)

	// Toplevel returns the root of the work tree containing dir, or ""
	// when dir is not inside one.
	Toplevel(ctx context.Context, dir string) (string, error)

	// CurrentRevision returns the commit id of HEAD in dir.
	CurrentRevision(ctx context.Context, dir string) (string, error)

	// RevisionExists reports whether rev names a commit present in dir.
	RevisionExists(ctx context.Context, dir, rev string) (bool, error)

	// Diff produces the patch and per-file changes between base and the
	// working tree of dir. The engine's own metadata file is excluded.
	Diff(ctx context.Context, dir, base string) (*DiffResult, error)

	// ApplyPatch applies a patch to the working tree of dir.
	ApplyPatch(ctx context.Context, dir string, patch []byte, opts ApplyOptions) error

	// ListUntracked returns paths, relative to dir, that are untracked
	// and not ignored.
	ListUntracked(ctx context.Context, dir string) ([]string, error)

	// CurrentBranch returns the checked-out branch of dir. Detached
	// HEAD is reported as an error.
	CurrentBranch(ctx context.Context, dir string) (string, error)

	// BranchExists reports whether a local branch exists in dir.
	BranchExists(ctx context.Context, dir, name string) (bool, error)

	// CreateBranch creates a local branch at HEAD without switching.
	CreateBranch(ctx context.Context, dir, name string) error

	// Checkout switches dir to the named branch.
	Checkout(ctx context.Context, dir, name string) error
}

// DiffResult holds one diff: the raw patch plus the parsed file list.
type DiffResult struct {
	// Patch is the full binary-safe patch text, empty when nothing
	// changed.
	Patch []byte

	// Changes lists the files the patch touches, paths relative to the
	// diffed directory.
	Changes []types.FileChange
}

// Empty reports whether the diff contains no changes.
func (d *DiffResult) Empty() bool {
	return len(d.Changes) == 0
}

// ApplyOptions controls how a patch is applied.
type ApplyOptions struct {
	// Check validates the patch without touching the tree.
	Check bool

	// ThreeWay falls back to a three-way merge when the patch does not
	// apply directly. Conflicts leave standard conflict markers.
	ThreeWay bool
}
