// Package engine walks a built workflow graph, dispatching each node by
// its local topology: plain nodes execute and follow their sole successor,
// branch points fan the project out over every outgoing edge and reduce at
// the convergence node.
package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vk/planweave/internal/builder"
	"github.com/vk/planweave/internal/ctxlog"
	"github.com/vk/planweave/internal/project"
)

// Engine executes workflows.
type Engine struct{}

// New creates an engine.
func New() *Engine {
	return &Engine{}
}

// Complete runs the workflow from its roots to its endpoints, returning
// the final project state. Node failures are not caught; the first error
// aborts the run.
func (e *Engine) Complete(ctx context.Context, wf *builder.Workflow, proj *project.Project) (*project.Project, error) {
	logger := ctxlog.FromContext(ctx)
	roots := wf.Graph.Roots()
	if len(roots) == 0 {
		return proj, nil
	}
	if len(roots) > 1 {
		return nil, fmt.Errorf("workflow has %d roots, expected one", len(roots))
	}
	logger.Info("starting workflow", "project", proj.Name, "root", roots[0])
	result, err := e.run(ctx, wf, proj, roots[0], "")
	if err != nil {
		return nil, err
	}
	logger.Info("workflow complete", "project", result.Name)
	return result, nil
}

// run executes nodes from start until stop (exclusive) or the end of the
// graph, threading project state.
func (e *Engine) run(ctx context.Context, wf *builder.Workflow, proj *project.Project, start, stop string) (*project.Project, error) {
	current := start
	state := proj
	for current != "" && current != stop {
		successors := wf.Graph.Descendants(current)
		ancestors := wf.Graph.Ancestors(current)
		switch {
		case len(successors) > 1 && len(ancestors) < len(successors):
			// Branch point: every outgoing edge gets its own copy of the
			// project, and the branches meet again at the convergence node.
			next, reduced, err := e.branch(ctx, wf, state, current, successors)
			if err != nil {
				return nil, err
			}
			state = reduced
			current = next
		default:
			next, err := e.plain(ctx, wf, state, current, successors)
			if err != nil {
				return nil, err
			}
			state = next.state
			current = next.node
		}
	}
	return state, nil
}

type advance struct {
	state *project.Project
	node  string
}

// plain executes one node and follows its sole outgoing edge. A node with
// no outgoing edge is a closer and ends the walk.
func (e *Engine) plain(ctx context.Context, wf *builder.Workflow, proj *project.Project, name string, successors []string) (advance, error) {
	n, ok := wf.Nodes[name]
	if !ok {
		// Judge nodes reached serially have no executable; pass through.
		if _, isJudge := wf.Judges[name]; !isJudge {
			return advance{}, fmt.Errorf("node not found: %s", name)
		}
	} else {
		result, err := n.Execute(ctx, proj)
		if err != nil {
			return advance{}, err
		}
		proj = result
	}
	if len(successors) == 0 {
		return advance{state: proj}, nil
	}
	return advance{state: proj, node: successors[0]}, nil
}

// branch executes the node itself, fans out over its successors, reduces
// the candidates at the convergence node, and reports where to resume.
func (e *Engine) branch(ctx context.Context, wf *builder.Workflow, proj *project.Project, name string, successors []string) (string, *project.Project, error) {
	logger := ctxlog.FromContext(ctx)
	if n, ok := wf.Nodes[name]; ok {
		result, err := n.Execute(ctx, proj)
		if err != nil {
			return "", nil, err
		}
		proj = result
	}

	convergence, ok := e.convergence(wf, successors)
	if !ok {
		return "", nil, fmt.Errorf("branches of %q never converge", name)
	}
	logger.Debug("branching", "node", name,
		"branches", len(successors), "convergence", convergence, "parallel", proj.Parallelize)

	candidates := make([]*project.Project, len(successors))
	if proj.Parallelize {
		g, gctx := errgroup.WithContext(ctx)
		var mu sync.Mutex
		for i, successor := range successors {
			g.Go(func() error {
				result, err := e.run(gctx, wf, proj.Clone(), successor, convergence)
				if err != nil {
					return fmt.Errorf("branch %q: %w", successor, err)
				}
				mu.Lock()
				candidates[i] = result
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return "", nil, err
		}
	} else {
		for i, successor := range successors {
			result, err := e.run(ctx, wf, proj.Clone(), successor, convergence)
			if err != nil {
				return "", nil, fmt.Errorf("branch %q: %w", successor, err)
			}
			candidates[i] = result
		}
	}

	reduced := candidates[0]
	judge, ok := wf.Judges[convergence]
	if !ok {
		// Convergence at an ordinary node: keep the first branch's state
		// and let the node execute in the resumed walk.
		return convergence, reduced, nil
	}
	winner, err := judge.Reduce(ctx, candidates)
	if err != nil {
		return "", nil, err
	}
	next := ""
	if after := wf.Graph.Descendants(convergence); len(after) > 0 {
		next = after[0]
	}
	return next, winner, nil
}

// convergence finds the first node reachable from every branch successor.
func (e *Engine) convergence(wf *builder.Workflow, successors []string) (string, bool) {
	closures := make([]map[string]struct{}, len(successors))
	for i, s := range successors {
		closures[i] = e.closure(wf, s)
	}
	// Order candidates by the first branch's walk so the nearest shared
	// node wins.
	for _, candidate := range e.order(wf, successors[0]) {
		shared := true
		for _, closure := range closures[1:] {
			if _, ok := closure[candidate]; !ok {
				shared = false
				break
			}
		}
		if shared {
			return candidate, true
		}
	}
	return "", false
}

func (e *Engine) closure(wf *builder.Workflow, start string) map[string]struct{} {
	seen := make(map[string]struct{})
	stack := []string{start}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[current]; ok {
			continue
		}
		seen[current] = struct{}{}
		stack = append(stack, wf.Graph.Descendants(current)...)
	}
	return seen
}

func (e *Engine) order(wf *builder.Workflow, start string) []string {
	var ordered []string
	seen := make(map[string]struct{})
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, ok := seen[current]; ok {
			continue
		}
		seen[current] = struct{}{}
		ordered = append(ordered, current)
		queue = append(queue, wf.Graph.Descendants(current)...)
	}
	return ordered
}
