// Package scoring provides the standard criteria and measurement technique
// branching judges rely on.
package scoring

import (
	"context"
	"fmt"

	"github.com/vk/planweave/internal/node"
	"github.com/vk/planweave/internal/project"
	"github.com/vk/planweave/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Measure records the "score" argument under the project's score key so a
// judge can compare branches.
func Measure(_ context.Context, proj *project.Project, args map[string]any) error {
	raw, ok := args["score"]
	if !ok {
		return fmt.Errorf("argument %q missing", "score")
	}
	var score float64
	switch t := raw.(type) {
	case float64:
		score = t
	case int:
		score = float64(t)
	default:
		return fmt.Errorf("argument %q holds non-numeric %T", "score", raw)
	}
	proj.Set("score", score)
	return nil
}

// Register registers the criteria and techniques with the library.
func (m *Module) Register(lib *registry.Library) {
	lib.RegisterCriteria(node.NewKeyCriteria("score", "score"))
	lib.RegisterCriteria(node.NewKeyCriteria("accuracy", "accuracy"))
	lib.RegisterTechnique("measure", Measure)
}
