package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/fishgrid/internal/config"
	"github.com/vk/fishgrid/internal/ctxlog"
	"github.com/vk/fishgrid/internal/registry"
	"github.com/vk/fishgrid/internal/toolrun"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	model      *config.Model
	converter  config.Converter
	runner     toolrun.Runner
	progress   *progress
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It loads every job
// file, registers the sink modules and validates the sink blocks against
// them. Loading and validation failures are fatal and panic; the CLI
// recovers them into an exit message.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, converter, err := loader.Load(ctx, appConfig.JobPaths...)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.",
		"tools", len(model.Tools), "reports", len(model.Reports), "grids", len(model.Grids))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "sinks", reg.Names())

	if err := reg.ValidateModel(ctx, model); err != nil {
		panic(err)
	}
	logger.Debug("Sink validation passed.")

	runner := appConfig.Runner
	if runner == nil {
		runner = toolrun.NewExecRunner()
	}

	return &App{
		outW:      outW,
		logger:    logger,
		config:    appConfig,
		registry:  reg,
		model:     model,
		converter: converter,
		runner:    runner,
		progress:  newProgress(model),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded job model.
func (a *App) Model() *config.Model {
	return a.model
}
