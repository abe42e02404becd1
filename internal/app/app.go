// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/avery/internal/config"
	"github.com/vk/avery/internal/ctxlog"
	avhcl "github.com/vk/avery/internal/hcl"
	"github.com/vk/avery/record"
	"github.com/vk/avery/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx      context.Context
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	loader   config.Loader
	registry *registry.Registry
	manifest *config.Manifest
	models   map[string]*record.Model
}

// NewApp is the constructor for the main application. Results are written
// to outW and logs to logW. The registry must already hold every handler
// the manifests refer to.
func NewApp(ctx context.Context, outW, logW io.Writer, cfg *Config, reg *registry.Registry) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		ctx:      ctxlog.WithLogger(ctx, logger),
		outW:     outW,
		logger:   logger,
		config:   cfg,
		loader:   avhcl.NewLoader(),
		registry: reg,
	}
}

// LoadModels loads the manifests under ModelsPath and builds every model.
// It is a no-op once the models are loaded.
func (a *App) LoadModels() error {
	if a.models != nil {
		return nil
	}
	a.logger.Debug("Loading models...", "models_path", a.config.ModelsPath)

	manifest, err := a.loader.Load(a.ctx, a.config.ModelsPath)
	if err != nil {
		return fmt.Errorf("failed to load manifests: %w", err)
	}
	if len(manifest.Models) == 0 {
		return fmt.Errorf("no models found in %s", a.config.ModelsPath)
	}

	models, err := a.registry.BuildManifest(a.ctx, manifest)
	if err != nil {
		return err
	}

	a.manifest = manifest
	a.models = models
	return nil
}

// Models returns the built models, keyed by name. It is nil until
// LoadModels succeeds.
func (a *App) Models() map[string]*record.Model {
	return a.models
}
