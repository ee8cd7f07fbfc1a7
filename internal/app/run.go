package app

import (
	"context"
	"fmt"

	"github.com/vk/planweave/internal/builder"
	"github.com/vk/planweave/internal/ctxlog"
	"github.com/vk/planweave/internal/engine"
	"github.com/vk/planweave/internal/graph"
	"github.com/vk/planweave/internal/project"
)

// Run loads the project, builds its workflow and executes it, returning
// the final project state.
func (a *App) Run(ctx context.Context) (*project.Project, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	proj, err := a.loadProject(ctx)
	if err != nil {
		return nil, err
	}

	wf, err := builder.New(a.library).Build(ctx, proj)
	if err != nil {
		return nil, fmt.Errorf("failed to build workflow: %w", err)
	}
	a.logger.Debug("Workflow built.", "node_count", wf.Graph.Len())

	result, err := engine.New().Complete(ctx, wf, proj)
	if err != nil {
		return nil, fmt.Errorf("execution failed: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return result, nil
}

// Graph builds the workflow and renders it in DOT format without executing.
func (a *App) Graph(ctx context.Context) (string, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	proj, err := a.loadProject(ctx)
	if err != nil {
		return "", err
	}
	wf, err := builder.New(a.library).Build(ctx, proj)
	if err != nil {
		return "", fmt.Errorf("failed to build workflow: %w", err)
	}
	return wf.Graph.Dot(graph.DotOptions{Name: proj.Name}), nil
}

// Outline loads the settings and reports the derived component structure.
func (a *App) Outline(ctx context.Context) (map[string][]string, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	proj, err := a.loadProject(ctx)
	if err != nil {
		return nil, err
	}
	return proj.Outline.Connections(), nil
}
