// Package clone creates the disposable directory copies variations
// start from. It prefers filesystem copy-on-write (reflink on Linux,
// clonefile on macOS) and falls back to a plain deep copy when the
// filesystem cannot do that.
package clone

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/logging"
	"github.com/vary-sh/vary/pkg/syncdir"
)

// Cloner is the capability interface for taking tree clones.
type Cloner interface {
	// CloneTree copies src to dst, which must not exist yet. The
	// returned bool reports whether a plain deep copy was used instead
	// of copy-on-write.
	CloneTree(ctx context.Context, src, dst string) (bool, error)
}

// systemCloner clones with cp, falling back to a tree copy via Syncer.
type systemCloner struct {
	mode   string // auto, always, never
	syncer syncdir.Syncer
	logger zerolog.Logger
}

// New returns a Cloner with the given reflink mode: "auto" falls back
// to a deep copy when copy-on-write fails, "always" refuses to, and
// "never" skips copy-on-write entirely.
func New(mode string, syncer syncdir.Syncer) Cloner {
	return &systemCloner{
		mode:   mode,
		syncer: syncer,
		logger: logging.GetLogger("clone"),
	}
}

func (c *systemCloner) CloneTree(ctx context.Context, src, dst string) (bool, error) {
	info, err := os.Stat(src)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrCloneFailed, "cannot clone %s", src)
	}
	if !info.IsDir() {
		return false, errors.Newf(errors.ErrCloneFailed, "%s is not a directory", src)
	}

	if _, err := os.Lstat(dst); err == nil {
		return false, errors.Newf(errors.ErrDestExists, "destination %s already exists", dst)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return false, errors.Wrapf(err, errors.ErrCloneFailed, "cannot create parent of %s", dst)
	}

	if c.mode != "never" {
		err := c.reflink(ctx, src, dst)
		if err == nil {
			return false, nil
		}
		// A failed cp can leave a partial tree behind.
		_ = os.RemoveAll(dst)

		if c.mode == "always" {
			return false, errors.Wrap(err, errors.ErrCloneFailed, "copy-on-write clone failed")
		}
		c.logger.Warn().Err(err).Msg("Copy-on-write unavailable, falling back to full copy")
	}

	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return false, errors.Wrapf(err, errors.ErrCloneFailed, "cannot create %s", dst)
	}
	if _, err := c.syncer.Mirror(ctx, src, dst, syncdir.MirrorOptions{}); err != nil {
		_ = os.RemoveAll(dst)
		return false, errors.Wrap(err, errors.ErrCloneFailed, "full copy failed")
	}
	return true, nil
}

// reflink clones src to dst with the platform's copy-on-write cp flags.
func (c *systemCloner) reflink(ctx context.Context, src, dst string) error {
	var args []string
	switch runtime.GOOS {
	case "darwin":
		args = []string{"-c", "-R", "-p", src, dst}
	default:
		args = []string{"--reflink=always", "--archive", src, dst}
	}
	logging.LogCommand(c.logger, "cp", args)

	cmd := exec.CommandContext(ctx, "cp", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("cp: %w", err)
		}
		return fmt.Errorf("cp: %w: %s", err, msg)
	}
	return nil
}
