package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/switchyard/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify switchyard configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.
List values are comma-separated.

Configuration is stored at ~/.config/switchyard/config.yaml
Project-specific overrides can be placed in .switchyard.yaml`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		out := cmd.OutOrStdout()
		switch len(args) {
		case 0:
			displayAllConfig(out, cfg)
			return nil
		case 1:
			value, err := getConfigValue(cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, value)
			return nil
		default:
			return setConfigKey(out, cfg, args[0], args[1])
		}
	},
}

// configKeys lists every key in display order.
var configKeys = []string{
	"workers",
	"settings_dir",
	"storage.enabled",
	"storage.root",
	"fts.enabled",
	"fts.db_path",
	"fts.extensions",
	"fts.max_bytes",
	"memory.enabled",
	"query.default_limit",
	"query.sources",
	"providers.disabled",
	"watch.debounce",
	"watch.ignore",
	"log.debug_file",
}

// displayAllConfig prints all configuration values.
func displayAllConfig(out io.Writer, cfg *config.Config) {
	for _, key := range configKeys {
		value, _ := getConfigValue(cfg, key)
		fmt.Fprintf(out, "%s: %s\n", key, value)
	}
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(out io.Writer, cfg *config.Config, key, value string) error {
	if err := setConfigValue(cfg, key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(out, "Set %s = %s\n", key, value)
	return nil
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "workers":
		return strconv.Itoa(cfg.Workers), nil
	case "settings_dir":
		return cfg.SettingsDir, nil
	case "storage.enabled":
		return strconv.FormatBool(cfg.Storage.Enabled), nil
	case "storage.root":
		return cfg.Storage.Root, nil
	case "fts.enabled":
		return strconv.FormatBool(cfg.FTS.Enabled), nil
	case "fts.db_path":
		return cfg.FTS.DBPath, nil
	case "fts.extensions":
		return strings.Join(cfg.FTS.Extensions, ","), nil
	case "fts.max_bytes":
		return strconv.FormatInt(cfg.FTS.MaxBytes, 10), nil
	case "memory.enabled":
		return strconv.FormatBool(cfg.Memory.Enabled), nil
	case "query.default_limit":
		return strconv.Itoa(cfg.Query.DefaultLimit), nil
	case "query.sources":
		return strings.Join(cfg.Query.Sources, ","), nil
	case "providers.disabled":
		return strings.Join(cfg.Providers.Disabled, ","), nil
	case "watch.debounce":
		return cfg.Watch.Debounce.String(), nil
	case "watch.ignore":
		return strings.Join(cfg.Watch.Ignore, ","), nil
	case "log.debug_file":
		return cfg.Log.DebugFile, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "workers":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for workers: %w", err)
		}
		cfg.Workers = n
	case "settings_dir":
		cfg.SettingsDir = value
	case "storage.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for storage.enabled: %w", err)
		}
		cfg.Storage.Enabled = b
	case "storage.root":
		cfg.Storage.Root = value
	case "fts.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for fts.enabled: %w", err)
		}
		cfg.FTS.Enabled = b
	case "fts.db_path":
		cfg.FTS.DBPath = value
	case "fts.extensions":
		cfg.FTS.Extensions = splitList(value)
	case "fts.max_bytes":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid value for fts.max_bytes: %w", err)
		}
		cfg.FTS.MaxBytes = n
	case "memory.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for memory.enabled: %w", err)
		}
		cfg.Memory.Enabled = b
	case "query.default_limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for query.default_limit: %w", err)
		}
		cfg.Query.DefaultLimit = n
	case "query.sources":
		cfg.Query.Sources = splitList(value)
	case "providers.disabled":
		cfg.Providers.Disabled = splitList(value)
	case "watch.debounce":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for watch.debounce: %w", err)
		}
		cfg.Watch.Debounce = d
	case "watch.ignore":
		cfg.Watch.Ignore = splitList(value)
	case "log.debug_file":
		cfg.Log.DebugFile = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
