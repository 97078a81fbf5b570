// Package config handles configuration management for vary.
// It supports loading configuration from multiple sources including
// embedded defaults, TOML or YAML files, and environment variables.
package config
