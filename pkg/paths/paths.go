package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/vary-sh/vary/pkg/errors"
)

// Environment variable names
const (
	// EnvWorkspace overrides where new variations are placed
	EnvWorkspace = "VARY_WORKSPACE"

	// EnvDataDir overrides the XDG data directory for vary
	EnvDataDir = "VARY_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for vary
	EnvConfigDir = "VARY_CONFIG_DIR"

	// EnvCacheDir overrides the XDG cache directory for vary
	EnvCacheDir = "VARY_CACHE_DIR"

	// EnvStateDir overrides the XDG state directory for vary
	EnvStateDir = "VARY_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
// IMPORTANT: These constants define vary's internal registry structure and
// are NOT user-configurable. They must remain consistent across all vary
// installations so that records written by one version are found by the
// next. User-configurable paths belong in pkg/config instead.
const (
	// VaryDirName is the directory name for vary-specific files
	VaryDirName = "vary"

	// RegistryDir is the subdirectory for variation records
	RegistryDir = "registry"

	// LocksDir is the subdirectory for per-variation lock files
	LocksDir = "locks"

	// VariationsDir is the default subdirectory for variation clones
	VariationsDir = "variations"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"

	// LogFileName is the name of the log file
	LogFileName = "vary.log"
)

// Paths provides centralized path management for vary
type Paths interface {
	DataDir() string
	ConfigDir() string
	CacheDir() string
	StateDir() string
	WorkspaceDir() string
	RegistryDir() string
	LocksDir() string
	ConfigFilePath() string
	LogFilePath() string
	NormalizePath(path string) (string, error)
}

// paths provides centralized path management for vary
type paths struct {
	// xdgData is the XDG data directory
	xdgData string

	// xdgConfig is the XDG config directory
	xdgConfig string

	// xdgCache is the XDG cache directory
	xdgCache string

	// xdgState is the XDG state directory
	xdgState string

	// workspace is where new variations are placed
	workspace string
}

// New creates a new Paths instance. If workspace is empty, it is resolved
// from VARY_WORKSPACE or defaults to the variations subdirectory of the
// data directory.
func New(workspace string) (Paths, error) {
	p := &paths{}

	if err := p.setupXDGDirs(); err != nil {
		return nil, err
	}

	// Set up the workspace
	if workspace == "" {
		workspace = os.Getenv(EnvWorkspace)
	}
	if workspace == "" {
		p.workspace = filepath.Join(p.xdgData, VariationsDir)
		return p, nil
	}

	expanded := expandHome(workspace)
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for workspace")
	}
	p.workspace = abs

	return p, nil
}

// setupXDGDirs initializes XDG directories, respecting environment overrides
func (p *paths) setupXDGDirs() error {
	// Data directory
	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		p.xdgData = expandHome(dataDir)
	} else {
		p.xdgData = filepath.Join(xdg.DataHome, VaryDirName)
	}

	// Config directory
	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.xdgConfig = expandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, VaryDirName)
	}

	// Cache directory
	if cacheDir := os.Getenv(EnvCacheDir); cacheDir != "" {
		p.xdgCache = expandHome(cacheDir)
	} else {
		p.xdgCache = filepath.Join(xdg.CacheHome, VaryDirName)
	}

	// State directory - XDG doesn't always provide StateHome, so we check manually
	if stateDir := os.Getenv(EnvStateDir); stateDir != "" {
		p.xdgState = expandHome(stateDir)
	} else if stateDir := os.Getenv("XDG_STATE_HOME"); stateDir != "" {
		p.xdgState = filepath.Join(stateDir, VaryDirName)
	} else {
		homeDir, _ := os.UserHomeDir()
		p.xdgState = filepath.Join(homeDir, ".local", "state", VaryDirName)
	}

	return nil
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to HOME env var
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				// Can't expand, return as-is
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		// Handle both ~/ and ~
		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}

// DataDir returns the XDG data directory for vary
func (p *paths) DataDir() string {
	return p.xdgData
}

// ConfigDir returns the XDG config directory for vary
func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

// CacheDir returns the XDG cache directory for vary
func (p *paths) CacheDir() string {
	return p.xdgCache
}

// StateDir returns the XDG state directory for vary
func (p *paths) StateDir() string {
	return p.xdgState
}

// WorkspaceDir returns the directory new variations are placed in
func (p *paths) WorkspaceDir() string {
	return p.workspace
}

// GetDataSubdir returns a subdirectory path under the XDG data directory.
// This is a helper method to reduce boilerplate for the data subdirectories.
func (p *paths) GetDataSubdir(name string) string {
	return filepath.Join(p.xdgData, name)
}

// RegistryDir returns the directory variation records are stored in
func (p *paths) RegistryDir() string {
	return p.GetDataSubdir(RegistryDir)
}

// LocksDir returns the directory per-variation lock files are stored in
func (p *paths) LocksDir() string {
	return p.GetDataSubdir(LocksDir)
}

// ConfigFilePath returns the path to the user configuration file
func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.xdgConfig, ConfigFileName)
}

// LogFilePath returns the path to the vary log file
// Respects XDG_STATE_HOME if set
func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// NormalizePath normalizes a path by expanding home, making it absolute,
// and cleaning it
func (p *paths) NormalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}

	// Expand home directory
	expanded := expandHome(path)

	// Make absolute
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path")
	}
	abs = filepath.Clean(abs)

	// Resolve symlinks so the same directory always yields the same
	// registry key. Paths that do not exist yet are kept as-is.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// ExpandHome is a utility function that expands ~ in paths
func ExpandHome(path string) string {
	return expandHome(path)
}

// GetHomeDirectory returns the user's home directory with proper error handling
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Try the HOME environment variable as a fallback
		if home := os.Getenv(EnvHome); home != "" {
			return home, nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get home directory")
	}
	return homeDir, nil
}

// IsSubPath reports whether child is parent or lies underneath it. Both
// paths must already be absolute and cleaned.
func IsSubPath(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
