package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vk/phydrago/internal/config"
	"github.com/vk/phydrago/internal/ctxlog"
	"github.com/vk/phydrago/internal/metrics"
	"github.com/vk/phydrago/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	resultW   io.Writer
	logger    *slog.Logger
	cfg       *Config
	registry  *registry.Registry
	model     *config.Model
	converter config.Converter

	metrics    *prometheus.Registry
	collector  *metrics.Collector
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, registry
// and metrics registry. Logs go to logW; results written to stdout ("-")
// and printed plans go to resultW.
func NewApp(logW, resultW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, converter, err := loader.Load(ctx, cfg.ModelPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.", "processes", len(model.Processes))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	reg.RegisterModules(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "types", reg.Types())

	// A model that names unknown types or variables cannot be run at all.
	if err := reg.Validate(ctx, model); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	promReg := prometheus.NewRegistry()
	return &App{
		resultW:   resultW,
		logger:    logger,
		cfg:       cfg,
		registry:  reg,
		model:     model,
		converter: converter,
		metrics:   promReg,
		collector: metrics.NewCollector("phydrago", promReg),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
