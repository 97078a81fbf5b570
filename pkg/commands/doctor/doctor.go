// Package doctor implements `vary doctor`: probe the environment the
// merge engine depends on and report per-check results.
package doctor

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vary-sh/vary/pkg/clone"
	"github.com/vary-sh/vary/pkg/config"
	"github.com/vary-sh/vary/pkg/filesystem"
	"github.com/vary-sh/vary/pkg/gitcmd"
	"github.com/vary-sh/vary/pkg/internal/hashutil"
	"github.com/vary-sh/vary/pkg/logging"
	"github.com/vary-sh/vary/pkg/paths"
	"github.com/vary-sh/vary/pkg/registry"
	"github.com/vary-sh/vary/pkg/syncdir"
	"github.com/vary-sh/vary/pkg/types"
)

// Probe file names used by the workspace and copy-on-write checks.
const (
	probeFileName = ".vary-doctor-probe"
	cowProbeSrc   = ".vary-cow-probe-src"
	cowProbeDst   = ".vary-cow-probe-dst"
)

// Options holds options for the doctor command.
type Options struct {
	// WriteConfig writes the effective configuration to the user
	// config file when none exists yet.
	WriteConfig bool

	// Workspace overrides where variations are placed.
	Workspace string

	// Injectable capabilities for testing.
	FileSystem types.FS
	Git        gitcmd.Git
	Syncer     syncdir.Syncer
	Cloner     clone.Cloner
}

// RunDoctor probes git, rsync, the workspace, copy-on-write support,
// registry health and the configuration.
func RunDoctor(ctx context.Context, opts Options) (*types.DoctorResult, error) {
	logger := logging.GetLogger("commands.doctor")

	fs := opts.FileSystem
	if fs == nil {
		fs = filesystem.NewOS()
	}
	git := opts.Git
	if git == nil {
		git = gitcmd.NewSystem()
	}
	syncer := opts.Syncer
	if syncer == nil {
		syncer = syncdir.NewRsync()
	}
	cloner := opts.Cloner
	if cloner == nil {
		// always: the probe asks specifically about reflink support.
		cloner = clone.New(config.ModeAlways, syncer)
	}

	pathsInstance, err := paths.New(opts.Workspace)
	if err != nil {
		return nil, err
	}
	reg := registry.New(fs, pathsInstance)

	result := &types.DoctorResult{}
	add := func(c types.DoctorCheck) {
		logger.Debug().Str("check", c.Name).Str("status", c.Status).Msg(c.Message)
		result.Checks = append(result.Checks, c)
	}

	add(checkGit(ctx, git))
	add(checkRsync(ctx))
	add(checkWorkspace(fs, pathsInstance))
	add(checkCopyOnWrite(ctx, fs, cloner, pathsInstance))
	add(checkRegistry(fs, reg, pathsInstance))

	cfg, cfgCheck := checkConfig(pathsInstance)
	add(cfgCheck)

	if opts.WriteConfig {
		add(writeConfig(fs, pathsInstance, cfg))
	}

	return result, nil
}

func checkGit(ctx context.Context, git gitcmd.Git) types.DoctorCheck {
	version, err := git.Version(ctx)
	if err != nil {
		return types.DoctorCheck{
			Name:    "git",
			Status:  types.CheckWarn,
			Message: "git not found, variations of repositories will merge by mirror",
		}
	}
	return types.DoctorCheck{Name: "git", Status: types.CheckOK, Message: version}
}

func checkRsync(ctx context.Context) types.DoctorCheck {
	version, err := syncdir.Version(ctx)
	if err != nil {
		return types.DoctorCheck{
			Name:    "rsync",
			Status:  types.CheckFail,
			Message: "rsync not found, mirror merges and fallback copies cannot run",
		}
	}
	return types.DoctorCheck{Name: "rsync", Status: types.CheckOK, Message: version}
}

func checkWorkspace(fs types.FS, p paths.Paths) types.DoctorCheck {
	dir := p.WorkspaceDir()
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return types.DoctorCheck{
			Name:    "workspace",
			Status:  types.CheckFail,
			Message: fmt.Sprintf("cannot create workspace %s: %v", dir, err),
		}
	}
	probe := filepath.Join(dir, probeFileName)
	if err := fs.WriteFile(probe, []byte("probe\n"), 0644); err != nil {
		return types.DoctorCheck{
			Name:    "workspace",
			Status:  types.CheckFail,
			Message: fmt.Sprintf("workspace %s is not writable: %v", dir, err),
		}
	}
	_ = fs.Remove(probe)
	return types.DoctorCheck{Name: "workspace", Status: types.CheckOK, Message: dir}
}

func checkCopyOnWrite(ctx context.Context, fs types.FS, cloner clone.Cloner, p paths.Paths) types.DoctorCheck {
	src := filepath.Join(p.WorkspaceDir(), cowProbeSrc)
	dst := filepath.Join(p.WorkspaceDir(), cowProbeDst)
	defer func() {
		_ = fs.RemoveAll(src)
		_ = fs.RemoveAll(dst)
	}()

	if err := fs.MkdirAll(src, 0755); err != nil {
		return types.DoctorCheck{
			Name:    "copy-on-write",
			Status:  types.CheckWarn,
			Message: fmt.Sprintf("cannot prepare probe directory: %v", err),
		}
	}
	if err := fs.WriteFile(filepath.Join(src, "probe"), []byte("probe\n"), 0644); err != nil {
		return types.DoctorCheck{
			Name:    "copy-on-write",
			Status:  types.CheckWarn,
			Message: fmt.Sprintf("cannot prepare probe file: %v", err),
		}
	}

	if _, err := cloner.CloneTree(ctx, src, dst); err != nil {
		return types.DoctorCheck{
			Name:    "copy-on-write",
			Status:  types.CheckWarn,
			Message: "reflink clones unsupported here, new variations fall back to full copies",
		}
	}

	// A clone that succeeds but mangles content is worse than no clone.
	srcSum, srcErr := hashutil.FileChecksum(fs, filepath.Join(src, "probe"))
	dstSum, dstErr := hashutil.FileChecksum(fs, filepath.Join(dst, "probe"))
	if srcErr != nil || dstErr != nil || srcSum != dstSum {
		return types.DoctorCheck{
			Name:    "copy-on-write",
			Status:  types.CheckWarn,
			Message: "clone probe did not round-trip, clones may be unreliable",
		}
	}
	return types.DoctorCheck{Name: "copy-on-write", Status: types.CheckOK, Message: "reflink clones supported"}
}

func checkRegistry(fs types.FS, reg *registry.Registry, p paths.Paths) types.DoctorCheck {
	entries, err := fs.ReadDir(p.RegistryDir())
	if err != nil {
		// An absent registry just means nothing was created yet.
		return types.DoctorCheck{Name: "registry", Status: types.CheckOK, Message: "no variations recorded"}
	}

	var total, broken, orphaned int
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		total++
		rec, err := reg.LoadFile(filepath.Join(p.RegistryDir(), entry.Name()))
		if err != nil {
			broken++
			continue
		}
		if _, err := fs.Stat(rec.VariationPath); err != nil {
			orphaned++
		}
	}

	unregistered := countUnregistered(fs, reg, p.WorkspaceDir())

	switch {
	case broken > 0 || orphaned > 0 || unregistered > 0:
		return types.DoctorCheck{
			Name:   "registry",
			Status: types.CheckWarn,
			Message: fmt.Sprintf("%d records: %d unreadable, %d missing their directory, %d unregistered directories",
				total, broken, orphaned, unregistered),
		}
	case total == 0:
		return types.DoctorCheck{Name: "registry", Status: types.CheckOK, Message: "no variations recorded"}
	default:
		return types.DoctorCheck{
			Name:    "registry",
			Status:  types.CheckOK,
			Message: fmt.Sprintf("%d records healthy", total),
		}
	}
}

// countUnregistered finds workspace directories that carry a variation
// artifact but have no registry record, typically leftovers from a
// deleted registry.
func countUnregistered(fs types.FS, reg *registry.Registry, workspace string) int {
	entries, err := fs.ReadDir(workspace)
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(workspace, entry.Name())
		if _, err := reg.ReadArtifact(dir); err != nil {
			continue
		}
		if _, err := reg.Get(dir); err != nil {
			count++
		}
	}
	return count
}

func checkConfig(p paths.Paths) (*config.Config, types.DoctorCheck) {
	cfg, err := config.Load(p)
	if err != nil {
		return nil, types.DoctorCheck{
			Name:    "config",
			Status:  types.CheckWarn,
			Message: fmt.Sprintf("configuration broken: %v", err),
		}
	}
	message := "built-in defaults"
	if cfg.File() != "" {
		message = cfg.File()
	}
	return cfg, types.DoctorCheck{Name: "config", Status: types.CheckOK, Message: message}
}

// writeConfig dumps the effective configuration to the user config
// file. An existing file is never overwritten.
func writeConfig(fs types.FS, p paths.Paths, cfg *config.Config) types.DoctorCheck {
	if cfg == nil {
		return types.DoctorCheck{
			Name:    "write-config",
			Status:  types.CheckFail,
			Message: "not writing a config while the current one is broken",
		}
	}
	target := p.ConfigFilePath()
	if _, err := fs.Stat(target); err == nil {
		return types.DoctorCheck{
			Name:    "write-config",
			Status:  types.CheckWarn,
			Message: fmt.Sprintf("config file already exists at %s", target),
		}
	}
	data, err := cfg.Dump()
	if err != nil {
		return types.DoctorCheck{
			Name:    "write-config",
			Status:  types.CheckFail,
			Message: fmt.Sprintf("cannot render config: %v", err),
		}
	}
	if err := fs.MkdirAll(p.ConfigDir(), 0755); err != nil {
		return types.DoctorCheck{
			Name:    "write-config",
			Status:  types.CheckFail,
			Message: fmt.Sprintf("cannot create config directory: %v", err),
		}
	}
	if err := fs.WriteFile(target, data, 0644); err != nil {
		return types.DoctorCheck{
			Name:    "write-config",
			Status:  types.CheckFail,
			Message: fmt.Sprintf("cannot write config: %v", err),
		}
	}
	return types.DoctorCheck{Name: "write-config", Status: types.CheckOK, Message: fmt.Sprintf("wrote %s", target)}
}
