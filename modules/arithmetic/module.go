// Package arithmetic provides basic numeric techniques operating on project
// contents. It doubles as the reference for writing technique modules.
package arithmetic

import (
	"context"
	"fmt"

	"github.com/vk/planweave/internal/node"
	"github.com/vk/planweave/internal/params"
	"github.com/vk/planweave/internal/project"
	"github.com/vk/planweave/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// targetKey returns the project contents key a technique operates on.
func targetKey(args map[string]any) string {
	if key, ok := args["key"].(string); ok && key != "" {
		return key
	}
	return "value"
}

func amount(args map[string]any, name string) (float64, error) {
	raw, ok := args[name]
	if !ok {
		return 0, fmt.Errorf("argument %q missing", name)
	}
	switch t := raw.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	}
	return 0, fmt.Errorf("argument %q holds non-numeric %T", name, raw)
}

func current(proj *project.Project, key string) float64 {
	raw, ok := proj.Get(key)
	if !ok {
		return 0
	}
	switch t := raw.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	}
	return 0
}

// Assign writes the "value" argument to the target key.
func Assign(_ context.Context, proj *project.Project, args map[string]any) error {
	value, err := amount(args, "value")
	if err != nil {
		return err
	}
	proj.Set(targetKey(args), value)
	return nil
}

// Increase adds the "amount" argument to the target key.
func Increase(_ context.Context, proj *project.Project, args map[string]any) error {
	delta, err := amount(args, "amount")
	if err != nil {
		return err
	}
	key := targetKey(args)
	proj.Set(key, current(proj, key)+delta)
	return nil
}

// Scale multiplies the target key by the "factor" argument.
func Scale(_ context.Context, proj *project.Project, args map[string]any) error {
	factor, err := amount(args, "factor")
	if err != nil {
		return err
	}
	key := targetKey(args)
	proj.Set(key, current(proj, key)*factor)
	return nil
}

// Tally builds a preconfigured counter task: it bumps "value" by one
// unless the outline or overrides say otherwise. The factory seeds
// parameter defaults, which lose to every other parameter source.
func Tally(name string, p *params.Parameters) (node.Node, error) {
	p.Defaults = map[string]any{"key": "value", "amount": 1}
	return node.NewTask(name, p, Increase), nil
}

// Register registers the techniques with the library.
func (m *Module) Register(lib *registry.Library) {
	lib.RegisterTechnique("assign", Assign)
	lib.RegisterTechnique("increase", Increase)
	lib.RegisterTechnique("scale", Scale)
	lib.RegisterFactory("tally", Tally)
}
