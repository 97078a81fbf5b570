package config

import (
	_ "embed"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// GetDefaultConfigContent returns the content of the embedded default
// configuration file, for display by 'vary config'.
func GetDefaultConfigContent() string {
	return string(defaultConfig)
}
