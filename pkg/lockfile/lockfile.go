// Package lockfile provides the advisory per-variation lock that keeps
// two merges from running against the same variation at once. The lock
// is a file created with O_EXCL under the vary data directory; stale
// locks left by dead processes are replaced with a warning.
package lockfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/logging"
)

// staleAfter is the age past which a lock is considered abandoned even
// when its holder cannot be probed.
const staleAfter = 24 * time.Hour

// Lock is one held lock file.
type Lock struct {
	path   string
	token  string
	logger zerolog.Logger
}

// lockInfo is what a lock file contains, for diagnostics and staleness
// checks.
type lockInfo struct {
	PID      int       `json:"pid"`
	Token    string    `json:"token"`
	Hostname string    `json:"hostname"`
	Acquired time.Time `json:"acquired"`
}

// Acquire takes the lock named key under locksDir. A live lock held by
// another process fails with ErrLocked; a stale one is replaced.
func Acquire(locksDir, key string) (*Lock, error) {
	logger := logging.GetLogger("lockfile")

	if err := os.MkdirAll(locksDir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot create locks directory")
	}

	path := filepath.Join(locksDir, key+".lock")
	hostname, _ := os.Hostname()
	info := lockInfo{
		PID:      os.Getpid(),
		Token:    uuid.NewString(),
		Hostname: hostname,
		Acquired: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot encode lock")
	}

	for attempt := 0; ; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			if _, werr := f.Write(data); werr != nil {
				_ = f.Close()
				_ = os.Remove(path)
				return nil, errors.Wrap(werr, errors.ErrFileAccess, "cannot write lock")
			}
			if cerr := f.Close(); cerr != nil {
				_ = os.Remove(path)
				return nil, errors.Wrap(cerr, errors.ErrFileAccess, "cannot write lock")
			}
			return &Lock{path: path, token: info.Token, logger: logger}, nil
		}
		if !os.IsExist(err) {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot create lock")
		}

		holder, stale := probe(path)
		if !stale || attempt > 0 {
			if holder != nil {
				return nil, errors.Newf(errors.ErrLocked,
					"variation is locked by pid %d since %s",
					holder.PID, holder.Acquired.Format(time.RFC3339))
			}
			return nil, errors.New(errors.ErrLocked, "variation is locked")
		}

		logger.Warn().Str("path", path).Msg("Replacing stale lock")
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot replace stale lock")
		}
	}
}

// probe reads a lock file and decides whether it is stale. An
// unreadable or unparseable lock is stale.
func probe(path string) (*lockInfo, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, true
	}

	var info lockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, true
	}

	if time.Since(info.Acquired) > staleAfter {
		return &info, true
	}

	hostname, _ := os.Hostname()
	if info.Hostname != "" && info.Hostname != hostname {
		// Cannot probe a process on another machine; trust the age.
		return &info, false
	}

	proc, err := os.FindProcess(info.PID)
	if err != nil {
		return &info, true
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return &info, true
	}
	return &info, false
}

// Release drops the lock. Releasing an already removed lock is fine.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrFileAccess, "cannot release lock")
	}
	return nil
}

// Path returns the lock file location, for diagnostics.
func (l *Lock) Path() string {
	return l.path
}
