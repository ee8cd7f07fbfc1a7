// Package builder turns a project outline into an executable workflow:
// a graph of named nodes with judges attached at branch convergence points.
package builder

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vk/planweave/internal/ctxlog"
	"github.com/vk/planweave/internal/graph"
	"github.com/vk/planweave/internal/node"
	"github.com/vk/planweave/internal/params"
	"github.com/vk/planweave/internal/project"
	"github.com/vk/planweave/internal/registry"
)

// Serial and branching design names recognized by the builder. Any other
// design falls back to the node's declared kind.
const (
	DesignWaterfall = "waterfall"
	DesignContest   = "contest"
	DesignSurvey    = "survey"
	DesignStudy     = "study"
	DesignResearch  = "research"
)

// Workflow is a built, executable plan. The graph holds the top-level
// execution order with branching sections expanded; Nodes maps every graph
// node to its executable, and Judges maps convergence nodes to their
// reducers.
type Workflow struct {
	Graph  *graph.Graph
	Nodes  map[string]node.Node
	Judges map[string]node.Judge
}

// Builder assembles workflows from an outline and a component library.
type Builder struct {
	Library *registry.Library
}

// New creates a builder over the given library.
func New(lib *registry.Library) *Builder {
	return &Builder{Library: lib}
}

// Build constructs the workflow for the project's outline. The top-level
// sequence comes from the outline's managers, falling back to the project
// section's connections.
func (b *Builder) Build(ctx context.Context, proj *project.Project) (*Workflow, error) {
	logger := ctxlog.FromContext(ctx)
	o := proj.Outline
	wf := &Workflow{
		Graph:  graph.New(),
		Nodes:  make(map[string]node.Node),
		Judges: make(map[string]node.Judge),
	}

	sequence := o.Managers()
	if len(sequence) == 0 {
		sequence = o.Connections()[o.Name()]
	}
	if len(sequence) == 0 {
		return nil, fmt.Errorf("outline %q declares no workers", o.Name())
	}
	logger.Debug("building workflow", "project", proj.Name, "sequence", sequence)

	previous := ""
	for _, name := range sequence {
		design := o.Design(name, DesignWaterfall)
		var tail string
		var err error
		if isBranching(design) {
			tail, err = b.buildBranching(wf, o, name, design, previous)
		} else {
			tail, err = b.buildSerial(wf, o, name, previous)
		}
		if err != nil {
			return nil, fmt.Errorf("building %q: %w", name, err)
		}
		previous = tail
	}
	return wf, nil
}

func isBranching(design string) bool {
	switch design {
	case DesignContest, DesignSurvey, DesignStudy, DesignResearch:
		return true
	}
	return false
}

// buildSerial adds a single worker node whose children run internally.
func (b *Builder) buildSerial(wf *Workflow, o outlineView, name, previous string) (string, error) {
	built, err := b.withdraw(o, name, fallbackWorker)
	if err != nil {
		return "", err
	}
	worker, ok := built.(*node.Worker)
	if !ok {
		worker = node.NewWorker(name, paramsFor(o, name))
	}
	children, err := b.buildChildren(o, name)
	if err != nil {
		return "", err
	}
	worker.Append(children...)
	wf.Nodes[name] = worker
	if err := wf.Graph.Add(name, rootsOf(previous), nil); err != nil {
		return "", err
	}
	return name, nil
}

// buildChildren builds the serial children listed under name. A child with
// its own technique options becomes a step bound to the first option; a
// child declared directly as a technique becomes the technique itself.
func (b *Builder) buildChildren(o outlineView, name string) ([]node.Node, error) {
	var children []node.Node
	for _, childName := range o.Connections()[name] {
		options := o.Connections()[childName]
		if len(options) == 0 && o.Kind(childName) == "technique" {
			technique, err := b.buildTechnique(o, childName)
			if err != nil {
				return nil, err
			}
			children = append(children, technique)
			continue
		}
		var technique *node.Technique
		if len(options) > 0 {
			t, err := b.buildTechnique(o, options[0])
			if err != nil {
				return nil, err
			}
			technique = t
		}
		children = append(children, node.NewStep(childName, paramsFor(o, childName), technique))
	}
	return children, nil
}

// buildBranching expands a branching manager into the graph: the manager
// fans out to one worker per technique combination, and all branches
// converge on a judge node.
func (b *Builder) buildBranching(wf *Workflow, o outlineView, name, design, previous string) (string, error) {
	steps := o.Connections()[name]
	if len(steps) == 0 {
		return "", fmt.Errorf("branching node %q has no steps", name)
	}
	options := make([][]string, len(steps))
	for i, stepName := range steps {
		techniques := o.Connections()[stepName]
		if len(techniques) == 0 {
			return "", fmt.Errorf("step %q of %q has no techniques", stepName, name)
		}
		options[i] = techniques
	}

	// The manager node in the graph is a pass-through; the engine performs
	// the fan-out using the graph topology.
	manager, err := b.withdrawManager(o, name)
	if err != nil {
		return "", err
	}
	wf.Nodes[name] = manager
	if err := wf.Graph.Add(name, rootsOf(previous), nil); err != nil {
		return "", err
	}

	judgeName := name + "_judge"
	judge, err := b.buildJudge(o, name, design)
	if err != nil {
		return "", err
	}
	wf.Judges[judgeName] = judge
	if err := wf.Graph.Add(judgeName, nil, nil); err != nil {
		return "", err
	}

	for i, combo := range cartesian(options) {
		branchName := name + "_" + strconv.Itoa(i+1)
		branch := node.NewWorker(branchName, params.New(branchName))
		for j, techniqueName := range combo {
			technique, err := b.buildTechnique(o, techniqueName)
			if err != nil {
				return "", err
			}
			branch.Append(node.NewStep(steps[j], paramsFor(o, steps[j]).Clone(), technique))
		}
		wf.Nodes[branchName] = branch
		if err := wf.Graph.Add(branchName, []string{name}, []string{judgeName}); err != nil {
			return "", err
		}
	}
	return judgeName, nil
}

func (b *Builder) buildTechnique(o outlineView, name string) (*node.Technique, error) {
	built, err := b.withdraw(o, name, fallbackTechnique)
	if err != nil {
		return nil, err
	}
	technique, ok := built.(*node.Technique)
	if !ok {
		return nil, fmt.Errorf("component %q is %T, not a technique", name, built)
	}
	if technique.Algorithm == nil {
		if fn, ok := b.Library.Technique(name); ok {
			technique.Algorithm = fn
		}
	}
	// A "technique" implementation key aliases a registered algorithm, so
	// several configured techniques can share one with different arguments.
	if technique.Algorithm == nil {
		if alias, ok := technique.Params().Implementation["technique"].(string); ok {
			if fn, ok := b.Library.Technique(alias); ok {
				technique.Algorithm = fn
			}
		}
	}
	return technique, nil
}

func (b *Builder) withdrawManager(o outlineView, name string) (*node.Manager, error) {
	built, err := b.withdraw(o, name, fallbackManager)
	if err != nil {
		return nil, err
	}
	if manager, ok := built.(*node.Manager); ok {
		return manager, nil
	}
	return node.NewManager(name, paramsFor(o, name), nil), nil
}

const (
	fallbackWorker    = "worker"
	fallbackManager   = "manager"
	fallbackTechnique = "technique"
)

// withdraw resolves name through the library using the lookup chain: the
// name itself, then the declared design, then the declared kind, then the
// taxonomy fallback.
func (b *Builder) withdraw(o outlineView, name, fallback string) (node.Node, error) {
	lookups := []string{name}
	if design := o.Design(name, ""); design != "" {
		lookups = append(lookups, design)
	}
	if kind := o.Kind(name); kind != "" {
		lookups = append(lookups, kind)
	}
	if fallback == "" {
		fallback = fallbackWorker
	}
	lookups = append(lookups, fallback)
	return b.Library.Withdraw(lookups, name, paramsFor(o, name), nil)
}

// buildJudge configures the reducer for a branching node. The criteria
// comes from the node's "criteria" initialization key, resolved through
// the library with a key-scoring fallback. A study design reads its judge
// flavor from the "judge" key.
func (b *Builder) buildJudge(o outlineView, name, design string) (node.Judge, error) {
	init := o.Initialization()[name]
	criteriaName, _ := init["criteria"].(string)
	if criteriaName == "" {
		criteriaName = "score"
	}
	criteria, ok := b.Library.Criteria(criteriaName)
	if !ok {
		criteria = node.NewKeyCriteria(criteriaName, criteriaName)
	}

	flavor := design
	if design == DesignStudy || design == DesignResearch {
		if j, ok := init["judge"].(string); ok && j != "" {
			flavor = j
		} else {
			flavor = DesignContest
		}
	}
	judgeName := name + "_judge"
	switch flavor {
	case DesignContest:
		return node.NewContest(judgeName, criteria), nil
	case DesignSurvey:
		return node.NewSurvey(judgeName, criteria), nil
	case "validation":
		threshold := 0.0
		switch t := init["threshold"].(type) {
		case float64:
			threshold = t
		case int:
			threshold = float64(t)
		}
		return node.NewValidation(judgeName, criteria, threshold), nil
	}
	return nil, fmt.Errorf("unknown judge flavor %q for %q", flavor, name)
}

// paramsFor assembles the parameter bag for a component, resolving its
// implementation section by name, then kind, then design. Only the
// Implementation source comes from the outline; Defaults, Runtime, and
// Selected are the factory author's surface (see arithmetic.Tally).
func paramsFor(o outlineView, name string) *params.Parameters {
	p := params.New(name)
	impl := o.Implementation()
	if section, ok := impl[name]; ok {
		p.Implementation = section
	} else if kind := o.Kind(name); kind != "" {
		if section, ok := impl[kind]; ok {
			p.Implementation = section
		}
	}
	if p.Implementation == nil {
		if design := o.Design(name, ""); design != "" {
			if section, ok := impl[design]; ok {
				p.Implementation = section
			}
		}
	}
	return p
}

// cartesian enumerates all combinations of one option per position, the
// last position varying fastest.
func cartesian(options [][]string) [][]string {
	if len(options) == 0 {
		return nil
	}
	total := 1
	for _, opts := range options {
		total *= len(opts)
	}
	combos := make([][]string, 0, total)
	combo := make([]string, len(options))
	var expand func(depth int)
	expand = func(depth int) {
		if depth == len(options) {
			combos = append(combos, append([]string(nil), combo...))
			return
		}
		for _, opt := range options[depth] {
			combo[depth] = opt
			expand(depth + 1)
		}
	}
	expand(0)
	return combos
}

func rootsOf(previous string) []string {
	if previous == "" {
		return nil
	}
	return []string{previous}
}
