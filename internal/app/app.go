// Package app wires settings loading, the component library, the workflow
// builder and the engine into one runnable application.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/planweave/internal/ctxlog"
	"github.com/vk/planweave/internal/project"
	"github.com/vk/planweave/internal/registry"
	"github.com/vk/planweave/internal/settings"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	library *registry.Library
	config  *Config
}

// New constructs a fully initialized App with its own isolated logger and
// component library. With no modules given, the compiled-in core modules
// register.
func New(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.Level(), cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	lib := registry.New()
	registry.RegisterBuiltins(lib)
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(lib)
	}
	logger.Debug("All modules registered.", "count", len(modules))

	return &App{
		outW:    outW,
		logger:  logger,
		library: lib,
		config:  cfg,
	}
}

// Library returns the application's component library. This is primarily
// for testing.
func (a *App) Library() *registry.Library {
	return a.library
}

// loadProject loads the settings file and derives the project state.
func (a *App) loadProject(ctx context.Context) (*project.Project, error) {
	logger := ctxlog.FromContext(ctx)
	if a.config.SettingsPath == "" {
		return nil, fmt.Errorf("no settings file given")
	}
	s, err := settings.Load(a.config.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	proj := project.New(s)
	if a.config.Parallelize {
		proj.Parallelize = true
	}
	logger.Debug("Settings loaded and project derived.",
		"project", proj.Name, "parallelize", proj.Parallelize)
	return proj, nil
}
