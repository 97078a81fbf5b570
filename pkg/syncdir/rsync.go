package syncdir

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/logging"
	"github.com/vary-sh/vary/pkg/types"
)

// outFormat makes rsync print one parseable line per affected path:
// the 11-character itemize code, a pipe, the path. The pipe keeps
// names with spaces intact.
const outFormat = "--out-format=%i|%n"

// rsyncSyncer shells out to the rsync binary on PATH. rsync owns the
// hard parts of tree mirroring (permissions, symlinks, sparse trees),
// vary owns deciding when to run it and reading back what it did.
type rsyncSyncer struct {
	logger zerolog.Logger
}

// NewRsync returns a Syncer backed by the system rsync binary.
func NewRsync() Syncer {
	return &rsyncSyncer{logger: logging.GetLogger("syncdir")}
}

// Version reports the installed rsync version line, or an
// ErrSyncUnavailable when the binary is missing.
func Version(ctx context.Context) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "rsync", "--version")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderrors.Is(err, exec.ErrNotFound) {
			return "", errors.Wrap(err, errors.ErrSyncUnavailable, "rsync binary not found")
		}
		return "", errors.Wrapf(err, errors.ErrSyncUnavailable, "rsync --version failed: %s",
			strings.TrimSpace(stderr.String()))
	}
	line, _, _ := strings.Cut(stdout.String(), "\n")
	return strings.TrimSpace(line), nil
}

func (s *rsyncSyncer) Mirror(ctx context.Context, src, dst string, opts MirrorOptions) (*MirrorResult, error) {
	args := []string{"--archive", "--itemize-changes", outFormat}
	if opts.DryRun {
		args = append(args, "--dry-run")
	}
	if opts.Delete {
		args = append(args, "--delete")
	}
	for _, e := range opts.Exclude {
		// Anchor to the transfer root so "a.json" does not also hide
		// "sub/a.json".
		args = append(args, "--exclude=/"+filepath.ToSlash(filepath.Clean(e)))
	}
	// Trailing slashes: sync contents, not the directory itself.
	args = append(args, withSlash(src), withSlash(dst))

	out, err := s.run(ctx, nil, args...)
	if err != nil {
		return nil, err
	}
	return &MirrorResult{Changes: s.parseItemized(out)}, nil
}

func (s *rsyncSyncer) CopyFiles(ctx context.Context, src, dst string, relPaths []string) ([]string, error) {
	if len(relPaths) == 0 {
		return nil, nil
	}
	// --files-from implies --relative, so parent directories of each
	// listed file are created on the way.
	args := []string{"--archive", "--files-from=-", src, dst}
	input := []byte(strings.Join(relPaths, "\n") + "\n")
	if _, err := s.run(ctx, input, args...); err != nil {
		return nil, err
	}
	copied := make([]string, len(relPaths))
	copy(copied, relPaths)
	return copied, nil
}

// run executes rsync and classifies failures: a missing binary is a
// capability error, anything else carries rsync's stderr.
func (s *rsyncSyncer) run(ctx context.Context, input []byte, args ...string) ([]byte, error) {
	logging.LogCommand(s.logger, "rsync", args)

	cmd := exec.CommandContext(ctx, "rsync", args...)
	if input != nil {
		cmd.Stdin = bytes.NewReader(input)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderrors.Is(err, exec.ErrNotFound) {
			return nil, errors.Wrap(err, errors.ErrSyncUnavailable, "rsync binary not found")
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, errors.Wrapf(err, errors.ErrSyncFailed, "rsync %s: %s",
			strings.Join(args, " "), msg)
	}
	return stdout.Bytes(), nil
}

// parseItemized turns rsync --itemize-changes output into the change
// list. Copies come first, deletions after, each group sorted by path.
func (s *rsyncSyncer) parseItemized(out []byte) []types.FileChange {
	var copies, deletes []types.FileChange
	for _, line := range strings.Split(string(out), "\n") {
		if line == "" {
			continue
		}
		code, path, ok := strings.Cut(line, "|")
		if !ok {
			s.logger.Debug().Str("line", line).Msg("Skipping unrecognized rsync output")
			continue
		}
		code = strings.TrimSpace(code)
		change, ok := classifyItem(code, path)
		if !ok {
			continue
		}
		if change.Kind == types.ChangeDelete {
			deletes = append(deletes, change)
		} else {
			copies = append(copies, change)
		}
	}
	sortChanges(copies)
	sortChanges(deletes)
	return append(copies, deletes...)
}

// classifyItem maps one itemize code to a change. Directory entries and
// attribute-only touches are dropped: the report lists content, not
// bookkeeping.
func classifyItem(code, path string) (types.FileChange, bool) {
	if code == "*deleting" {
		if strings.HasSuffix(path, "/") {
			return types.FileChange{}, false
		}
		return types.FileChange{Path: path, Kind: types.ChangeDelete}, true
	}
	if len(code) < 2 {
		return types.FileChange{}, false
	}
	switch code[0] {
	case '>', '<', 'c', 'h':
	default:
		return types.FileChange{}, false
	}
	if code[1] == 'd' {
		return types.FileChange{}, false
	}
	if strings.Contains(code, "+++") {
		return types.FileChange{Path: path, Kind: types.ChangeCreate}, true
	}
	return types.FileChange{Path: path, Kind: types.ChangeUpdate}, true
}

func sortChanges(changes []types.FileChange) {
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Path < changes[j].Path
	})
}

func withSlash(dir string) string {
	return fmt.Sprintf("%s%c", filepath.Clean(dir), filepath.Separator)
}
