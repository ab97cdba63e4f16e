// Package config provides unified configuration management for psoc.
// Configuration is loaded from multiple sources with the following precedence:
// embedded defaults → global file → env vars → local file → CLI flags
package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/alexander-akhmetov/psoc/internal/dirs"
)

//go:embed defaults/config.yaml
var defaultsFS embed.FS

// DefaultActor is recorded when neither config nor $USER names an actor.
const DefaultActor = "operator"

// HistoryConfig controls the execution history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`

	// Set tracking for merge
	EnabledSet bool `yaml:"-"`
}

// Config holds all configuration settings for psoc.
// Fields ending in *Set track whether that field was explicitly set, so a
// local file can override a global true with an explicit false.
type Config struct {
	Actor       string        `yaml:"actor"`
	CatalogPath string        `yaml:"catalog_path"`
	LogsDir     string        `yaml:"logs_dir"`
	LogLevel    string        `yaml:"log_level"`
	History     HistoryConfig `yaml:"history"`

	configDir string
	localDir  string
	sources   []string
}

// envOverrides is the environment layer. Nil fields were not set.
type envOverrides struct {
	Actor          *string `env:"PSOC_ACTOR"`
	CatalogPath    *string `env:"PSOC_CATALOG"`
	LogsDir        *string `env:"PSOC_LOGS_DIR"`
	LogLevel       *string `env:"PSOC_LOG_LEVEL"`
	HistoryEnabled *bool   `env:"PSOC_HISTORY_ENABLED"`
	HistoryPath    *string `env:"PSOC_HISTORY_PATH"`
}

// Sources returns the ordered list of sources that contributed to this config.
func (c *Config) Sources() []string {
	return c.sources
}

// LocalDir returns the local project config directory if one was detected.
func (c *Config) LocalDir() string {
	return c.localDir
}

// ConfigDir returns the global config directory.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// ResolvedActor returns the configured actor, falling back to $USER and then
// DefaultActor.
func (c *Config) ResolvedActor() string {
	if c.Actor != "" {
		return c.Actor
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return DefaultActor
}

// ResolvedLogsDir returns LogsDir or the XDG default.
func (c *Config) ResolvedLogsDir() string {
	if c.LogsDir != "" {
		return c.LogsDir
	}
	return dirs.LogsDir()
}

// ResolvedHistoryPath returns History.Path or the XDG default.
func (c *Config) ResolvedHistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return dirs.HistoryPath()
}

// Load loads all configuration from the default locations.
// It auto-detects .psoc/ in the current working directory for local overrides.
func Load() (*Config, error) {
	globalDir := dirs.ConfigDir()

	var localDir string
	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, ".psoc")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			localDir = candidate
		}
	}

	return LoadWithDirs(globalDir, localDir)
}

// LoadWithDirs loads configuration with explicit global and local directories.
// If localDir is empty, only global config is used.
func LoadWithDirs(globalDir, localDir string) (*Config, error) {
	if err := InstallDefaults(globalDir); err != nil {
		return nil, fmt.Errorf("install defaults: %w", err)
	}

	cfg, err := loadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("load embedded defaults: %w", err)
	}
	cfg.sources = append(cfg.sources, "embedded")

	globalPath := filepath.Join(globalDir, "config.yaml")
	if globalCfg, err := loadFile(globalPath); err == nil {
		cfg.mergeFrom(globalCfg)
		cfg.sources = append(cfg.sources, globalPath)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("load global config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if localDir != "" {
		localPath := filepath.Join(localDir, "config.yaml")
		if localCfg, err := loadFile(localPath); err == nil {
			cfg.mergeFrom(localCfg)
			cfg.sources = append(cfg.sources, localPath)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load local config: %w", err)
		}
	}

	cfg.configDir = globalDir
	cfg.localDir = localDir
	return cfg, nil
}

// InstallDefaults creates the config directory and writes the default
// config file if none exists.
func InstallDefaults(configDir string) error {
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		data, err := defaultsFS.ReadFile("defaults/config.yaml")
		if err != nil {
			return fmt.Errorf("read embedded config: %w", err)
		}
		if err := os.WriteFile(configPath, data, 0o600); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}
	}

	return nil
}

func loadEmbedded() (*Config, error) {
	data, err := defaultsFS.ReadFile("defaults/config.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded defaults: %w", err)
	}
	return parseConfig(data)
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user's config file
	if err != nil {
		return nil, err
	}
	return parseConfigWithTracking(data)
}

func parseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// parseConfigWithTracking parses YAML config and tracks which fields were set.
func parseConfigWithTracking(data []byte) (*Config, error) {
	cfg, err := parseConfig(data)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	if history, ok := raw["history"].(map[string]any); ok {
		if _, ok := history["enabled"]; ok {
			cfg.History.EnabledSet = true
		}
	}

	return cfg, nil
}

// applyEnv applies PSOC_* environment variables.
// Env vars sit between global and local config in precedence.
func (c *Config) applyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return err
	}

	setString := func(dst *string, v *string, name string) {
		if v != nil && *v != "" {
			*dst = *v
			c.sources = append(c.sources, "env:"+name)
		}
	}
	setString(&c.Actor, o.Actor, "PSOC_ACTOR")
	setString(&c.CatalogPath, o.CatalogPath, "PSOC_CATALOG")
	setString(&c.LogsDir, o.LogsDir, "PSOC_LOGS_DIR")
	setString(&c.LogLevel, o.LogLevel, "PSOC_LOG_LEVEL")
	setString(&c.History.Path, o.HistoryPath, "PSOC_HISTORY_PATH")

	if o.HistoryEnabled != nil {
		c.History.Enabled = *o.HistoryEnabled
		c.History.EnabledSet = true
		c.sources = append(c.sources, "env:PSOC_HISTORY_ENABLED")
	}
	return nil
}

// mergeFrom merges non-empty/set values from src into c.
func (c *Config) mergeFrom(src *Config) {
	if src.Actor != "" {
		c.Actor = src.Actor
	}
	if src.CatalogPath != "" {
		c.CatalogPath = src.CatalogPath
	}
	if src.LogsDir != "" {
		c.LogsDir = src.LogsDir
	}
	if src.LogLevel != "" {
		c.LogLevel = src.LogLevel
	}

	if src.History.EnabledSet {
		c.History.Enabled = src.History.Enabled
		c.History.EnabledSet = true
	}
	if src.History.Path != "" {
		c.History.Path = src.History.Path
	}
}

// ApplyCLIFlags applies CLI flag overrides to the config.
// CLI flags have the highest precedence.
func (c *Config) ApplyCLIFlags(actor, catalogPath string, noHistory, verbose bool) {
	if actor != "" {
		c.Actor = actor
		c.sources = append(c.sources, "cli:actor")
	}
	if catalogPath != "" {
		c.CatalogPath = catalogPath
		c.sources = append(c.sources, "cli:catalog")
	}
	if noHistory {
		c.History.Enabled = false
		c.History.EnabledSet = true
		c.sources = append(c.sources, "cli:no-history")
	}
	if verbose {
		c.LogLevel = "debug"
		c.sources = append(c.sources, "cli:verbose")
	}
}
