package node

import (
	"context"
	"fmt"

	"github.com/vk/planweave/internal/ctxlog"
	"github.com/vk/planweave/internal/params"
	"github.com/vk/planweave/internal/project"
)

// TechniqueFunc is the algorithm a technique applies to the project. The
// args map is the finalized parameter bag for this invocation.
type TechniqueFunc func(ctx context.Context, proj *project.Project, args map[string]any) error

// Task is a leaf node that applies an algorithm directly.
type Task struct {
	name       string
	parameters *params.Parameters
	Algorithm  TechniqueFunc
}

// NewTask creates a leaf task. A nil parameter bag gets an empty one.
func NewTask(name string, p *params.Parameters, fn TechniqueFunc) *Task {
	if p == nil {
		p = params.New(name)
	}
	return &Task{name: name, parameters: p, Algorithm: fn}
}

func (t *Task) Name() string               { return t.name }
func (t *Task) Params() *params.Parameters { return t.parameters }

// Execute finalizes parameters against the project and applies the
// algorithm. A task without an algorithm is a no-op.
func (t *Task) Execute(ctx context.Context, proj *project.Project) (*project.Project, error) {
	logger := ctxlog.FromContext(ctx)
	if t.Algorithm == nil {
		logger.Debug("task has no algorithm, skipping", "task", t.name)
		return proj, nil
	}
	args, err := t.parameters.Finalize(proj, nil)
	if err != nil {
		return nil, fmt.Errorf("task %q: %w", t.name, err)
	}
	logger.Debug("executing task", "task", t.name)
	if err := t.Algorithm(ctx, proj, args); err != nil {
		return nil, fmt.Errorf("task %q: %w", t.name, err)
	}
	return proj, nil
}

func (t *Task) Clone() Node {
	return &Task{name: t.name, parameters: t.parameters.Clone(), Algorithm: t.Algorithm}
}

// Technique is a named algorithm with its own parameter bag. Steps select
// among techniques; a technique can also run standalone.
type Technique struct {
	name       string
	parameters *params.Parameters
	Algorithm  TechniqueFunc
}

// NewTechnique creates a technique. A nil algorithm marks a placeholder
// that is skipped at execution time.
func NewTechnique(name string, p *params.Parameters, fn TechniqueFunc) *Technique {
	if p == nil {
		p = params.New(name)
	}
	return &Technique{name: name, parameters: p, Algorithm: fn}
}

func (t *Technique) Name() string               { return t.name }
func (t *Technique) Params() *params.Parameters { return t.parameters }

func (t *Technique) Execute(ctx context.Context, proj *project.Project) (*project.Project, error) {
	return t.ExecuteWith(ctx, proj, nil)
}

// ExecuteWith runs the algorithm with extra overrides merged over the
// technique's own parameters. Steps use this to pass their bag down.
func (t *Technique) ExecuteWith(ctx context.Context, proj *project.Project, overrides map[string]any) (*project.Project, error) {
	logger := ctxlog.FromContext(ctx)
	if t.Algorithm == nil {
		logger.Debug("technique has no algorithm, skipping", "technique", t.name)
		return proj, nil
	}
	args, err := t.parameters.Finalize(proj, overrides)
	if err != nil {
		return nil, fmt.Errorf("technique %q: %w", t.name, err)
	}
	logger.Debug("executing technique", "technique", t.name)
	if err := t.Algorithm(ctx, proj, args); err != nil {
		return nil, fmt.Errorf("technique %q: %w", t.name, err)
	}
	return proj, nil
}

func (t *Technique) Clone() Node {
	return &Technique{name: t.name, parameters: t.parameters.Clone(), Algorithm: t.Algorithm}
}

// Step binds a position in a workflow to one chosen technique. The step's
// parameters overlay the technique's at execution time.
type Step struct {
	name       string
	parameters *params.Parameters
	Technique  *Technique
}

// NewStep creates a step wrapping the chosen technique.
func NewStep(name string, p *params.Parameters, technique *Technique) *Step {
	if p == nil {
		p = params.New(name)
	}
	return &Step{name: name, parameters: p, Technique: technique}
}

func (s *Step) Name() string               { return s.name }
func (s *Step) Params() *params.Parameters { return s.parameters }

func (s *Step) Execute(ctx context.Context, proj *project.Project) (*project.Project, error) {
	if s.Technique == nil {
		ctxlog.FromContext(ctx).Debug("step has no technique, skipping", "step", s.name)
		return proj, nil
	}
	overrides, err := s.parameters.Finalize(proj, nil)
	if err != nil {
		return nil, fmt.Errorf("step %q: %w", s.name, err)
	}
	result, err := s.Technique.ExecuteWith(ctx, proj, overrides)
	if err != nil {
		return nil, fmt.Errorf("step %q: %w", s.name, err)
	}
	return result, nil
}

func (s *Step) Clone() Node {
	dup := &Step{name: s.name, parameters: s.parameters.Clone()}
	if s.Technique != nil {
		dup.Technique = s.Technique.Clone().(*Technique)
	}
	return dup
}
