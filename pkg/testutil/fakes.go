// pkg/testutil/fakes.go
// PURPOSE: In-memory capability fakes for git, the tree syncer and the cloner

package testutil

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/gitcmd"
	"github.com/vary-sh/vary/pkg/syncdir"
	"github.com/vary-sh/vary/pkg/types"
)

// FakeGit implements gitcmd.Git with scripted answers and recorded
// calls. The zero value behaves like a healthy git seeing an empty
// diff and no untracked files.
type FakeGit struct {
	VersionOut    string
	RepoRoots     map[string]bool   // dirs that are repository roots
	Toplevels     map[string]string // dir -> containing repo root
	Heads         map[string]string // dir -> HEAD revision
	GoneRevisions map[string]bool   // revisions RevisionExists denies
	DiffOut       *gitcmd.DiffResult
	DiffErr       error
	CheckErr      error // returned by ApplyPatch when opts.Check
	ApplyErr      error // returned by ApplyPatch otherwise
	UntrackedOut  []string
	UntrackedErr  error
	BranchOut     string          // CurrentBranch answer
	Branches      map[string]bool // existing local branches
	CreateErr     error
	CheckoutErr   error

	// Recorded calls
	Applied         []AppliedPatch
	CreatedBranches []string
	CheckedOut      []string
}

// AppliedPatch records one ApplyPatch call.
type AppliedPatch struct {
	Dir   string
	Patch []byte
	Opts  gitcmd.ApplyOptions
}

var _ gitcmd.Git = (*FakeGit)(nil)

func (g *FakeGit) Version(ctx context.Context) (string, error) {
	if g.VersionOut == "" {
		return "git version 2.43.0", nil
	}
	return g.VersionOut, nil
}

func (g *FakeGit) IsRepoRoot(ctx context.Context, dir string) (bool, error) {
	return g.RepoRoots[dir], nil
}

func (g *FakeGit) Toplevel(ctx context.Context, dir string) (string, error) {
	if g.Toplevels == nil {
		return "", nil
	}
	return g.Toplevels[dir], nil
}

func (g *FakeGit) CurrentRevision(ctx context.Context, dir string) (string, error) {
	rev, ok := g.Heads[dir]
	if !ok {
		return "", errors.Newf(errors.ErrGitCommand, "no HEAD for %s", dir)
	}
	return rev, nil
}

func (g *FakeGit) RevisionExists(ctx context.Context, dir, rev string) (bool, error) {
	return !g.GoneRevisions[rev], nil
}

func (g *FakeGit) Diff(ctx context.Context, dir, base string) (*gitcmd.DiffResult, error) {
	if g.DiffErr != nil {
		return nil, g.DiffErr
	}
	if g.DiffOut == nil {
		return &gitcmd.DiffResult{}, nil
	}
	return g.DiffOut, nil
}

func (g *FakeGit) ApplyPatch(ctx context.Context, dir string, patch []byte, opts gitcmd.ApplyOptions) error {
	g.Applied = append(g.Applied, AppliedPatch{Dir: dir, Patch: patch, Opts: opts})
	if opts.Check {
		return g.CheckErr
	}
	return g.ApplyErr
}

func (g *FakeGit) ListUntracked(ctx context.Context, dir string) ([]string, error) {
	if g.UntrackedErr != nil {
		return nil, g.UntrackedErr
	}
	return g.UntrackedOut, nil
}

func (g *FakeGit) CurrentBranch(ctx context.Context, dir string) (string, error) {
	if g.BranchOut == "" {
		return "main", nil
	}
	return g.BranchOut, nil
}

func (g *FakeGit) BranchExists(ctx context.Context, dir, name string) (bool, error) {
	return g.Branches[name], nil
}

func (g *FakeGit) CreateBranch(ctx context.Context, dir, name string) error {
	if g.CreateErr != nil {
		return g.CreateErr
	}
	g.CreatedBranches = append(g.CreatedBranches, name)
	if g.Branches == nil {
		g.Branches = make(map[string]bool)
	}
	g.Branches[name] = true
	return nil
}

func (g *FakeGit) Checkout(ctx context.Context, dir, name string) error {
	if g.CheckoutErr != nil {
		return g.CheckoutErr
	}
	g.CheckedOut = append(g.CheckedOut, name)
	return nil
}

// FakeSyncer implements syncdir.Syncer, recording calls and answering
// with scripted results.
type FakeSyncer struct {
	MirrorOut *syncdir.MirrorResult
	MirrorErr error
	CopyErr   error

	MirrorCalls []MirrorCall
	CopyCalls   []CopyCall
}

// MirrorCall records one Mirror invocation.
type MirrorCall struct {
	Src  string
	Dst  string
	Opts syncdir.MirrorOptions
}

// CopyCall records one CopyFiles invocation.
type CopyCall struct {
	Src   string
	Dst   string
	Paths []string
}

var _ syncdir.Syncer = (*FakeSyncer)(nil)

func (s *FakeSyncer) Mirror(ctx context.Context, src, dst string, opts syncdir.MirrorOptions) (*syncdir.MirrorResult, error) {
	s.MirrorCalls = append(s.MirrorCalls, MirrorCall{Src: src, Dst: dst, Opts: opts})
	if s.MirrorErr != nil {
		return nil, s.MirrorErr
	}
	if s.MirrorOut == nil {
		return &syncdir.MirrorResult{}, nil
	}
	return s.MirrorOut, nil
}

func (s *FakeSyncer) CopyFiles(ctx context.Context, src, dst string, relPaths []string) ([]string, error) {
	s.CopyCalls = append(s.CopyCalls, CopyCall{Src: src, Dst: dst, Paths: relPaths})
	if s.CopyErr != nil {
		return nil, s.CopyErr
	}
	return relPaths, nil
}

// FakeCloner implements clone.Cloner. When FS is set the destination
// tree is materialized there by copying the source tree, so command
// tests see a real-looking clone.
type FakeCloner struct {
	Err      error
	Fallback bool
	FS       types.FS

	Calls []ClonePair
}

// ClonePair records one CloneTree invocation.
type ClonePair struct {
	Src string
	Dst string
}

func (c *FakeCloner) CloneTree(ctx context.Context, src, dst string) (bool, error) {
	c.Calls = append(c.Calls, ClonePair{Src: src, Dst: dst})
	if c.Err != nil {
		return false, c.Err
	}
	if c.FS != nil {
		if err := CopyTree(c.FS, src, dst); err != nil {
			return false, err
		}
	}
	return c.Fallback, nil
}

// CopyTree recursively copies a directory tree within one types.FS.
func CopyTree(fsys types.FS, src, dst string) error {
	if err := fsys.MkdirAll(dst, 0755); err != nil {
		return err
	}
	entries, err := fsys.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())
		switch {
		case entry.IsDir():
			if err := CopyTree(fsys, from, to); err != nil {
				return err
			}
		case entry.Type()&fs.ModeSymlink != 0:
			target, err := fsys.Readlink(from)
			if err != nil {
				return err
			}
			if err := fsys.Symlink(target, to); err != nil {
				return err
			}
		default:
			data, err := fsys.ReadFile(from)
			if err != nil {
				return err
			}
			if err := fsys.WriteFile(to, data, 0644); err != nil {
				return err
			}
		}
	}
	return nil
}
