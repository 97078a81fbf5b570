package gitcmd

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/logging"
	"github.com/vary-sh/vary/pkg/types"
)

// metadataExclude is the pathspec that keeps the engine's metadata file
// out of diffs and untracked listings.
const metadataExclude = ":(exclude)" + types.ArtifactName

// systemGit runs the git binary found on PATH.
type systemGit struct {
	logger zerolog.Logger
}

// NewSystem returns a Git that shells out to the system git binary.
func NewSystem() Git {
	return &systemGit{logger: logging.GetLogger("gitcmd")}
}

// commandError keeps the stderr of a failed git invocation so callers
// can classify the failure.
type commandError struct {
	args   []string
	stderr string
	err    error
}

func (e *commandError) Error() string {
	if e.stderr == "" {
		return fmt.Sprintf("git %s: %v", strings.Join(e.args, " "), e.err)
	}
	return fmt.Sprintf("git %s: %v: %s", strings.Join(e.args, " "), e.err, e.stderr)
}

func (e *commandError) Unwrap() error { return e.err }

// runRaw executes git with -C dir and returns stdout untouched.
func (g *systemGit) runRaw(ctx context.Context, dir string, input []byte, args ...string) ([]byte, error) {
	full := append([]string{"-c", "core.quotepath=false"}, args...)
	if dir != "" {
		full = append([]string{"-C", dir}, full...)
	}
	logging.LogCommand(g.logger, "git", full)

	cmd := exec.CommandContext(ctx, "git", full...)
	if input != nil {
		cmd.Stdin = bytes.NewReader(input)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderrors.Is(err, exec.ErrNotFound) {
			return nil, errors.Wrap(err, errors.ErrGitUnavailable, "git binary not found")
		}
		return nil, &commandError{args: full, err: err, stderr: strings.TrimSpace(stderr.String())}
	}
	return stdout.Bytes(), nil
}

// run is runRaw with stdout trimmed to a single line-friendly string.
func (g *systemGit) run(ctx context.Context, dir string, args ...string) (string, error) {
	out, err := g.runRaw(ctx, dir, nil, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// asGitError wraps a git failure with the given code, passing through
// the binary-missing case untouched.
func asGitError(err error, code errors.ErrorCode, msg string) error {
	if errors.IsErrorCode(err, errors.ErrGitUnavailable) {
		return err
	}
	return errors.Wrap(err, code, msg)
}

func (g *systemGit) Version(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "", "--version")
	if err != nil {
		return "", asGitError(err, errors.ErrGitUnavailable, "failed to run git")
	}
	return out, nil
}

func (g *systemGit) IsRepoRoot(ctx context.Context, dir string) (bool, error) {
	out, err := g.run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrGitUnavailable) {
			return false, err
		}
		// Not inside a work tree.
		return false, nil
	}
	return samePath(out, dir), nil
}

func (g *systemGit) Toplevel(ctx context.Context, dir string) (string, error) {
	out, err := g.run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrGitUnavailable) {
			return "", err
		}
		// Not inside a work tree.
		return "", nil
	}
	return out, nil
}

// samePath compares two directories, tolerating symlinked prefixes like
// the /tmp -> /private/tmp indirection on macOS.
func samePath(a, b string) bool {
	a = filepath.Clean(a)
	b = filepath.Clean(b)
	if a == b {
		return true
	}
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	if errA != nil || errB != nil {
		return false
	}
	return ra == rb
}

func (g *systemGit) CurrentRevision(ctx context.Context, dir string) (string, error) {
	out, err := g.run(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return "", asGitError(err, errors.ErrGitCommand, "failed to resolve HEAD")
	}
	return strings.TrimSpace(out), nil
}

func (g *systemGit) RevisionExists(ctx context.Context, dir, rev string) (bool, error) {
	_, err := g.run(ctx, dir, "cat-file", "-e", rev+"^{commit}")
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrGitUnavailable) {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (g *systemGit) Diff(ctx context.Context, dir, base string) (*DiffResult, error) {
	patch, err := g.runRaw(ctx, dir, nil,
		"diff", "--binary", "--full-index", "--no-renames", base, "--", ".", metadataExclude)
	if err != nil {
		return nil, asGitError(err, errors.ErrDiffFailed, fmt.Sprintf("failed to diff against %s", base))
	}

	status, err := g.run(ctx, dir,
		"diff", "--name-status", "--no-renames", base, "--", ".", metadataExclude)
	if err != nil {
		return nil, asGitError(err, errors.ErrDiffFailed, fmt.Sprintf("failed to diff against %s", base))
	}

	return &DiffResult{Patch: patch, Changes: parseNameStatus(status)}, nil
}

// parseNameStatus turns `git diff --name-status` output into file changes.
func parseNameStatus(out string) []types.FileChange {
	var changes []types.FileChange
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}

		var kind types.ChangeKind
		switch parts[0][0] {
		case 'A':
			kind = types.ChangeCreate
		case 'D':
			kind = types.ChangeDelete
		default:
			// M and T both change an existing file.
			kind = types.ChangeUpdate
		}
		changes = append(changes, types.FileChange{Path: parts[1], Kind: kind})
	}
	return changes
}

func (g *systemGit) ApplyPatch(ctx context.Context, dir string, patch []byte, opts ApplyOptions) error {
	if len(patch) == 0 {
		return nil
	}

	args := []string{"apply", "--whitespace=nowarn"}
	if opts.Check {
		args = append(args, "--check")
	}
	if opts.ThreeWay {
		args = append(args, "--3way")
	}
	args = append(args, "-")

	_, err := g.runRaw(ctx, dir, patch, args...)
	if err == nil {
		return nil
	}
	if errors.IsErrorCode(err, errors.ErrGitUnavailable) {
		return err
	}

	var cerr *commandError
	if stderrors.As(err, &cerr) && strings.Contains(cerr.stderr, "conflict") {
		return errors.Wrap(err, errors.ErrApplyConflict, "patch applied with conflicts")
	}
	return errors.Wrap(err, errors.ErrApplyFailed, "failed to apply patch")
}

func (g *systemGit) ListUntracked(ctx context.Context, dir string) ([]string, error) {
	out, err := g.run(ctx, dir, "ls-files", "--others", "--exclude-standard", "--", ".", metadataExclude)
	if err != nil {
		return nil, asGitError(err, errors.ErrGitCommand, "failed to list untracked files")
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

func (g *systemGit) CurrentBranch(ctx context.Context, dir string) (string, error) {
	out, err := g.run(ctx, dir, "symbolic-ref", "--short", "HEAD")
	if err != nil {
		return "", asGitError(err, errors.ErrGitCommand, "failed to resolve current branch (detached HEAD?)")
	}
	return strings.TrimSpace(out), nil
}

func (g *systemGit) BranchExists(ctx context.Context, dir, name string) (bool, error) {
	_, err := g.run(ctx, dir, "rev-parse", "--verify", "--quiet", "refs/heads/"+name)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrGitUnavailable) {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (g *systemGit) CreateBranch(ctx context.Context, dir, name string) error {
	if _, err := g.run(ctx, dir, "branch", name); err != nil {
		return asGitError(err, errors.ErrBranchFailed, fmt.Sprintf("failed to create branch %s", name))
	}
	return nil
}

func (g *systemGit) Checkout(ctx context.Context, dir, name string) error {
	if _, err := g.run(ctx, dir, "checkout", name); err != nil {
		return asGitError(err, errors.ErrCheckoutFailed, fmt.Sprintf("failed to check out %s", name))
	}
	return nil
}
