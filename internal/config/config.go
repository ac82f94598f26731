// Package config handles configuration loading and management for switchyard.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. SWITCHYARD_WORKERS.
const EnvPrefix = "SWITCHYARD"

// ProjectConfigName is the per-project override file.
const ProjectConfigName = ".switchyard.yaml"

// Config holds all configuration for switchyard.
type Config struct {
	Workers     int             `mapstructure:"workers"`
	SettingsDir string          `mapstructure:"settings_dir"`
	Storage     StorageConfig   `mapstructure:"storage"`
	FTS         FTSConfig       `mapstructure:"fts"`
	Memory      MemoryConfig    `mapstructure:"memory"`
	Query       QueryConfig     `mapstructure:"query"`
	Providers   ProvidersConfig `mapstructure:"providers"`
	Watch       WatchConfig     `mapstructure:"watch"`
	Log         LogConfig       `mapstructure:"log"`
}

// StorageConfig configures the built-in file storage.
type StorageConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Root confines file URIs to a directory. Empty allows any path.
	Root string `mapstructure:"root"`
}

// FTSConfig configures the SQLite full-text provider.
type FTSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
	// Extensions overrides the indexed file extensions. Empty uses the provider default.
	Extensions []string `mapstructure:"extensions"`
	MaxBytes   int64    `mapstructure:"max_bytes"`
}

// MemoryConfig configures the in-process provider.
type MemoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// QueryConfig holds query defaults.
type QueryConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	// Sources are queried when none are given. Empty means every enabled provider.
	Sources []string `mapstructure:"sources"`
}

// ProvidersConfig holds provider toggles.
type ProvidersConfig struct {
	// Disabled lists providers as kind:name, e.g. "query:memory".
	Disabled []string `mapstructure:"disabled"`
}

// WatchConfig holds watcher settings.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	// Ignore lists skipped names or root-relative patterns. Empty uses the watcher default.
	Ignore []string `mapstructure:"ignore"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// DebugFile receives the dispatch trace when set.
	DebugFile string `mapstructure:"debug_file"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (SWITCHYARD_WORKERS, SWITCHYARD_FTS_DB_PATH, ...)
// 2. Project config (.switchyard.yaml in current directory or parent)
// 3. User config (~/.config/switchyard/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := newViper()

	// Load user config from XDG path
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Merge project config (takes precedence)
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific path (for testing and --config).
func LoadFromPath(path string) (*Config, error) {
	v := newViper()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	// Environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} and ~ references in paths
	cfg.SettingsDir = expandPath(cfg.SettingsDir)
	cfg.Storage.Root = expandPath(cfg.Storage.Root)
	cfg.FTS.DBPath = expandPath(cfg.FTS.DBPath)
	cfg.Log.DebugFile = expandPath(cfg.Log.DebugFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later and far away.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Query.DefaultLimit < 0 {
		return fmt.Errorf("query.default_limit must be >= 0, got %d", c.Query.DefaultLimit)
	}
	if _, err := ParseDisabled(c.Providers.Disabled); err != nil {
		return fmt.Errorf("providers.disabled: %w", err)
	}
	return nil
}

// Save writes the configuration to the user config file.
func Save(cfg *Config) error {
	return SaveTo(GetUserConfigPath(), cfg)
}

// SaveTo writes the configuration to path.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)

	v.Set("workers", cfg.Workers)
	v.Set("settings_dir", cfg.SettingsDir)
	v.Set("storage.enabled", cfg.Storage.Enabled)
	v.Set("storage.root", cfg.Storage.Root)
	v.Set("fts.enabled", cfg.FTS.Enabled)
	v.Set("fts.db_path", cfg.FTS.DBPath)
	v.Set("fts.extensions", cfg.FTS.Extensions)
	v.Set("fts.max_bytes", cfg.FTS.MaxBytes)
	v.Set("memory.enabled", cfg.Memory.Enabled)
	v.Set("query.default_limit", cfg.Query.DefaultLimit)
	v.Set("query.sources", cfg.Query.Sources)
	v.Set("providers.disabled", cfg.Providers.Disabled)
	v.Set("watch.debounce", cfg.Watch.Debounce.String())
	v.Set("watch.ignore", cfg.Watch.Ignore)
	v.Set("log.debug_file", cfg.Log.DebugFile)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("workers", 4)
	v.SetDefault("settings_dir", filepath.Join(getUserConfigDir(), "settings"))

	v.SetDefault("storage.enabled", true)
	v.SetDefault("storage.root", "")

	v.SetDefault("fts.enabled", true)
	v.SetDefault("fts.db_path", defaultDBPath())
	v.SetDefault("fts.extensions", []string{})
	v.SetDefault("fts.max_bytes", 8<<20)

	v.SetDefault("memory.enabled", true)

	v.SetDefault("query.default_limit", 20)
	v.SetDefault("query.sources", []string{})

	v.SetDefault("providers.disabled", []string{})

	v.SetDefault("watch.debounce", "500ms")

	v.SetDefault("log.debug_file", "")
}

// getUserConfigDir returns the XDG config directory for switchyard.
func getUserConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "switchyard")
	}

	// Fall back to ~/.config/switchyard
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "switchyard")
	}
	return filepath.Join(home, ".config", "switchyard")
}

// defaultDBPath returns the XDG data path of the full-text index.
func defaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "switchyard", "index.db")
}

// findProjectConfig searches for .switchyard.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ProjectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandPath expands ${VAR} references and a leading ~.
func expandPath(s string) string {
	s = os.ExpandEnv(s)
	if s == "~" || strings.HasPrefix(s, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			s = filepath.Join(home, strings.TrimPrefix(s, "~"))
		}
	}
	return s
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Workers:     4,
		SettingsDir: filepath.Join(getUserConfigDir(), "settings"),
		Storage:     StorageConfig{Enabled: true},
		FTS: FTSConfig{
			Enabled:  true,
			DBPath:   defaultDBPath(),
			MaxBytes: 8 << 20,
		},
		Memory: MemoryConfig{Enabled: true},
		Query:  QueryConfig{DefaultLimit: 20},
		Watch:  WatchConfig{Debounce: 500 * time.Millisecond},
	}
}
