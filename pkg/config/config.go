package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/paths"
)

// EnvPrefix is the prefix for configuration environment variables.
// VARY_MERGE_KEEP=true maps to the merge.keep key.
const EnvPrefix = "VARY_"

// Values accepted by the core.color and clone.reflink keys.
const (
	ModeAuto   = "auto"
	ModeAlways = "always"
	ModeNever  = "never"
)

// Config is the merged view of defaults, the user configuration file,
// and environment variables.
type Config struct {
	k *koanf.Koanf

	// file is the user configuration file that was loaded, empty when
	// only defaults and environment applied.
	file string
}

// Load builds the effective configuration. Precedence, lowest first:
// embedded defaults, config.toml or config.yaml in the config
// directory, VARY_* environment variables.
func Load(p paths.Paths) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(rawbytes.Provider(defaultConfig), toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse embedded defaults")
	}

	// 2. User configuration file, TOML preferred over YAML
	c := &Config{k: k}
	tomlPath := p.ConfigFilePath()
	yamlPath := filepath.Join(p.ConfigDir(), "config.yaml")
	if _, err := os.Stat(tomlPath); err == nil {
		if err := k.Load(file.Provider(tomlPath), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", tomlPath)
		}
		c.file = tomlPath
	} else if _, err := os.Stat(yamlPath); err == nil {
		if err := k.Load(file.Provider(yamlPath), kyaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", yamlPath)
		}
		c.file = yamlPath
	}

	// 3. Environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", normalizeEnvKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// normalizeEnvKey maps VARY_MERGE_KEEP to merge.keep. Variables handled
// by pkg/paths are skipped so they do not surface as stray keys.
func normalizeEnvKey(s string) string {
	switch s {
	case paths.EnvWorkspace, paths.EnvDataDir, paths.EnvConfigDir, paths.EnvCacheDir, paths.EnvStateDir:
		return ""
	}
	key := strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "_", ".")
}

func (c *Config) validate() error {
	for _, key := range []string{"core.color", "clone.reflink"} {
		switch v := c.k.String(key); v {
		case ModeAuto, ModeAlways, ModeNever:
		default:
			return errors.Newf(errors.ErrConfigParse, "invalid value %q for %s: want auto, always, or never", v, key)
		}
	}
	return nil
}

// File returns the path of the user configuration file that was loaded,
// or empty when none exists.
func (c *Config) File() string {
	return c.file
}

// Workspace returns the configured workspace directory, empty when unset.
func (c *Config) Workspace() string {
	return c.k.String("core.workspace")
}

// Color returns the terminal color mode: auto, always, or never.
func (c *Config) Color() string {
	return c.k.String("core.color")
}

// Reflink returns the copy-on-write cloning mode: auto, always, or never.
func (c *Config) Reflink() string {
	return c.k.String("clone.reflink")
}

// MergeKeep reports whether merges keep the variation directory by default.
func (c *Config) MergeKeep() bool {
	return c.k.Bool("merge.keep")
}

// NamingSeparator returns the separator used in generated variation names.
func (c *Config) NamingSeparator() string {
	sep := c.k.String("naming.separator")
	if sep == "" {
		return "-"
	}
	return sep
}

// Dump renders the effective configuration as TOML.
func (c *Config) Dump() ([]byte, error) {
	out, err := gotoml.Marshal(c.k.Raw())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	return out, nil
}
