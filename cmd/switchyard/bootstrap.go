package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ShayCichocki/switchyard/internal/config"
	"github.com/ShayCichocki/switchyard/internal/orchestrator"
	"github.com/ShayCichocki/switchyard/internal/providers/filestore"
	"github.com/ShayCichocki/switchyard/internal/providers/fts"
	"github.com/ShayCichocki/switchyard/internal/providers/memory"
	"github.com/ShayCichocki/switchyard/internal/registry"
	"github.com/ShayCichocki/switchyard/internal/task"
)

// shutdownTimeout bounds how long Close waits for queued tasks.
const shutdownTimeout = 30 * time.Second

// app is the wired process: config, registry, pool and controller.
type app struct {
	cfg    *config.Config
	ctrl   *orchestrator.Controller
	logger *orchestrator.DebugLogger
}

// loadConfig honours --config, falling back to the layered lookup.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

// buildRegistry registers the built-in groups. File storage is appended
// last so plugin-provided storage for the same scheme wins.
func buildRegistry(cfg *config.Config) (*registry.Registry, error) {
	reg := registry.New()

	if cfg.FTS.Enabled {
		g, err := fts.Open(fts.Options{
			DBPath:     cfg.FTS.DBPath,
			Extensions: cfg.FTS.Extensions,
			MaxBytes:   cfg.FTS.MaxBytes,
		})
		if err != nil {
			return nil, fmt.Errorf("open fts provider: %w", err)
		}
		reg.Register(g)
	}

	if cfg.Memory.Enabled {
		reg.Register(memory.NewGroup())
	}

	if cfg.Storage.Enabled {
		s, err := filestore.New(cfg.Storage.Root)
		if err != nil {
			reg.Shutdown()
			return nil, fmt.Errorf("create file storage: %w", err)
		}
		reg.Register(filestore.Group(s))
	}

	return reg, nil
}

// applyDisabled turns off the providers listed in providers.disabled.
// Unknown names are logged, not fatal.
func applyDisabled(reg *registry.Registry, entries []string) error {
	keys, err := config.ParseDisabled(entries)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := reg.SetEnabled(k.Kind, k.Name, false); err != nil {
			log.Printf("[config] WARNING: providers.disabled: %v", err)
		}
	}
	return nil
}

// newApp loads config and wires every component.
func newApp(opts ...orchestrator.Option) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	if err := reg.Configure(cfg.SettingsDir); err != nil {
		log.Printf("[config] WARNING: group settings: %v", err)
	}
	if err := applyDisabled(reg, cfg.Providers.Disabled); err != nil {
		reg.Shutdown()
		return nil, err
	}

	logger, err := orchestrator.NewDebugLogger(cfg.Log.DebugFile)
	if err != nil {
		reg.Shutdown()
		return nil, fmt.Errorf("open debug log: %w", err)
	}

	opts = append([]orchestrator.Option{
		orchestrator.WithDebugLogger(logger),
		orchestrator.WithDefaultLimit(cfg.Query.DefaultLimit),
	}, opts...)

	ctrl := orchestrator.New(orchestrator.RequiredConfig{
		Registry: reg,
		Tasks:    task.NewManager(cfg.Workers),
	}, opts...)

	return &app{cfg: cfg, ctrl: ctrl, logger: logger}, nil
}

// Close drains the pool, runs shutdown hooks and closes the debug log.
func (a *app) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(a.ctrl.Shutdown(ctx), a.logger.Close())
}
