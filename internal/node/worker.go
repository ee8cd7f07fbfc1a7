package node

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vk/planweave/internal/ctxlog"
	"github.com/vk/planweave/internal/params"
	"github.com/vk/planweave/internal/project"
)

// Worker executes its children serially, threading project state from one
// child to the next.
type Worker struct {
	name       string
	parameters *params.Parameters
	children   []Node
}

// NewWorker creates a serial worker over the given children.
func NewWorker(name string, p *params.Parameters, children ...Node) *Worker {
	if p == nil {
		p = params.New(name)
	}
	return &Worker{name: name, parameters: p, children: children}
}

// NewLaborer is a worker whose children are steps of a single path. The
// runtime behavior matches Worker; the separate constructor preserves the
// declared kind for lookup and reporting.
func NewLaborer(name string, p *params.Parameters, children ...Node) *Worker {
	return NewWorker(name, p, children...)
}

func (w *Worker) Name() string               { return w.name }
func (w *Worker) Params() *params.Parameters { return w.parameters }
func (w *Worker) Children() []Node           { return w.children }

// Append adds children to the end of the serial sequence.
func (w *Worker) Append(children ...Node) {
	w.children = append(w.children, children...)
}

func (w *Worker) Execute(ctx context.Context, proj *project.Project) (*project.Project, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("executing worker", "worker", w.name, "children", len(w.children))
	current := proj
	for _, child := range w.children {
		next, err := child.Execute(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("worker %q: %w", w.name, err)
		}
		current = next
	}
	return current, nil
}

func (w *Worker) Clone() Node {
	children := make([]Node, len(w.children))
	for i, child := range w.children {
		children[i] = child.Clone()
	}
	return &Worker{name: w.name, parameters: w.parameters.Clone(), children: children}
}

// Manager fans the project out over branch workers, each branch receiving
// its own deep copy, then reduces the candidate results with its judge.
type Manager struct {
	name       string
	kind       string
	parameters *params.Parameters
	branches   []*Worker
	// Judge reduces branch results to one. A nil judge keeps the first
	// branch's result.
	Judge Judge
}

// NewManager creates a branching manager over the given branch workers.
func NewManager(name string, p *params.Parameters, judge Judge, branches ...*Worker) *Manager {
	if p == nil {
		p = params.New(name)
	}
	return &Manager{name: name, kind: "manager", parameters: p, branches: branches, Judge: judge}
}

// NewResearcher creates a manager that explores technique permutations.
// Execution matches Manager; the kind is preserved for lookup.
func NewResearcher(name string, p *params.Parameters, judge Judge, branches ...*Worker) *Manager {
	m := NewManager(name, p, judge, branches...)
	m.kind = "researcher"
	return m
}

func (m *Manager) Name() string               { return m.name }
func (m *Manager) Kind() string               { return m.kind }
func (m *Manager) Params() *params.Parameters { return m.parameters }

// Branches returns the branch workers.
func (m *Manager) Branches() []*Worker { return m.branches }

// Children returns the branch workers as nodes.
func (m *Manager) Children() []Node {
	children := make([]Node, len(m.branches))
	for i, b := range m.branches {
		children[i] = b
	}
	return children
}

// AddBranch appends a branch worker.
func (m *Manager) AddBranch(branches ...*Worker) {
	m.branches = append(m.branches, branches...)
}

// Execute runs every branch against its own copy of the project and reduces
// the results. Branches run concurrently when the project requests it,
// serially otherwise. With no branches the project passes through untouched.
func (m *Manager) Execute(ctx context.Context, proj *project.Project) (*project.Project, error) {
	logger := ctxlog.FromContext(ctx)
	if len(m.branches) == 0 {
		logger.Debug("manager has no branches, passing through", "manager", m.name)
		return proj, nil
	}
	logger.Debug("executing manager",
		"manager", m.name, "branches", len(m.branches), "parallel", proj.Parallelize)

	candidates := make([]*project.Project, len(m.branches))
	if proj.Parallelize {
		g, gctx := errgroup.WithContext(ctx)
		var mu sync.Mutex
		for i, branch := range m.branches {
			g.Go(func() error {
				result, err := branch.Execute(gctx, proj.Clone())
				if err != nil {
					return fmt.Errorf("manager %q branch %q: %w", m.name, branch.Name(), err)
				}
				mu.Lock()
				candidates[i] = result
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, branch := range m.branches {
			result, err := branch.Execute(ctx, proj.Clone())
			if err != nil {
				return nil, fmt.Errorf("manager %q branch %q: %w", m.name, branch.Name(), err)
			}
			candidates[i] = result
		}
	}

	if m.Judge == nil {
		logger.Debug("manager has no judge, keeping first branch", "manager", m.name)
		return candidates[0], nil
	}
	winner, err := m.Judge.Reduce(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("manager %q: %w", m.name, err)
	}
	return winner, nil
}

func (m *Manager) Clone() Node {
	branches := make([]*Worker, len(m.branches))
	for i, b := range m.branches {
		branches[i] = b.Clone().(*Worker)
	}
	return &Manager{
		name:       m.name,
		kind:       m.kind,
		parameters: m.parameters.Clone(),
		branches:   branches,
		Judge:      m.Judge,
	}
}
