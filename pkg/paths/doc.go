// Package paths provides centralized path handling for vary.
//
// This package implements the XDG Base Directory specification and provides
// a consistent API for all path operations throughout the vary codebase.
// It handles:
//
//   - Workspace directory resolution for new variations
//   - XDG directory structure (data, config, cache, state)
//   - Registry and lock file locations
//   - Path normalization and expansion
//
// # Environment Variables
//
// The package respects the following environment variables:
//
//   - VARY_WORKSPACE: Where new variations are created (default: $XDG_DATA_HOME/vary/variations)
//   - VARY_DATA_DIR: Override XDG data directory (default: $XDG_DATA_HOME/vary)
//   - VARY_CONFIG_DIR: Override XDG config directory (default: $XDG_CONFIG_HOME/vary)
//   - VARY_CACHE_DIR: Override XDG cache directory (default: $XDG_CACHE_HOME/vary)
//
// # XDG Base Directory Structure
//
// vary follows the XDG Base Directory specification:
//
//   - Data: $XDG_DATA_HOME/vary (registry, locks, default workspace)
//   - Config: $XDG_CONFIG_HOME/vary (user configuration)
//   - Cache: $XDG_CACHE_HOME/vary (temporary files)
//   - State: $XDG_STATE_HOME/vary (log file)
//
// # Usage
//
//	import "github.com/vary-sh/vary/pkg/paths"
//
//	// Create a new Paths instance
//	p, err := paths.New("")  // Resolve workspace from environment
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Get various paths
//	registry := p.RegistryDir()   // $XDG_DATA_HOME/vary/registry
//	locks := p.LocksDir()         // $XDG_DATA_HOME/vary/locks
//	workspace := p.WorkspaceDir() // where new variations land
package paths
