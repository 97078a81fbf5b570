// Package syncdir mirrors one directory tree onto another. It backs the
// merge strategy used for variations without a recorded git base: the
// variation's current state is copied over the source file by file,
// with deletions only on request.
package syncdir

import (
	"context"

	"github.com/vary-sh/vary/pkg/types"
)

// Syncer is the capability interface for tree synchronization.
type Syncer interface {
	// Mirror makes dst match src. Without Delete it is additive: files
	// present only in dst are left alone. Paths in the result are
	// relative to the roots.
	Mirror(ctx context.Context, src, dst string, opts MirrorOptions) (*MirrorResult, error)

	// CopyFiles copies the named files from src to dst, creating parent
	// directories as needed and overwriting existing files. It returns
	// the paths actually copied.
	CopyFiles(ctx context.Context, src, dst string, relPaths []string) ([]string, error)
}

// MirrorOptions controls a Mirror run.
type MirrorOptions struct {
	// DryRun computes the change list without touching dst.
	DryRun bool

	// Delete removes files from dst that are absent from src.
	Delete bool

	// Exclude lists relative paths to leave out entirely: never copied,
	// never deleted.
	Exclude []string
}

// MirrorResult lists what a Mirror run changed, or would change in
// dry-run mode. Copies come first, deletions after.
type MirrorResult struct {
	Changes []types.FileChange
}
