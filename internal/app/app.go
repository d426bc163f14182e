package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/fusiongo/internal/ctxlog"
	"github.com/vk/fusiongo/internal/ir"
	"github.com/vk/fusiongo/internal/optimizer"
	"github.com/vk/fusiongo/internal/registry"
)

// Loader is the interface a format-specific model loader implements.
type Loader interface {
	// Load reads model files under the given paths and translates them into
	// the ir graph model.
	Load(ctx context.Context, paths ...string) (*ir.Graph, error)
}

// Saver is the interface a format-specific model writer implements.
type Saver interface {
	Save(g *ir.Graph, path string) error
}

// App encapsulates the optimizer's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	graph    *ir.Graph
	registry *registry.Registry
	saver    Saver
}

// NewApp is the constructor for the main application. It loads the model and
// prepares a validated rule registry. A failure to load the model or build
// the rule set is a fatal startup error and panics; the caller recovers it
// into a clean exit.
func NewApp(outW io.Writer, appConfig *Config, loader Loader, saver Saver) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	graph, err := loader.Load(ctx, appConfig.ModelPath)
	if err != nil {
		panic(fmt.Errorf("failed to load model: %w", err))
	}
	logger.Debug("Model loaded.", "model", graph.Name, "nodes", graph.NodeCount())

	reg, err := optimizer.DefaultRegistry()
	if err != nil {
		panic(fmt.Errorf("failed to build rule registry: %w", err))
	}
	if err := reg.Validate(ctx); err != nil {
		// A rule set that fails validation is a programmer error.
		panic(err)
	}
	logger.Debug("Rule registry validated.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		graph:    graph,
		registry: reg,
		saver:    saver,
	}
}

// Graph returns the loaded graph. This is primarily for testing.
func (a *App) Graph() *ir.Graph {
	return a.graph
}
