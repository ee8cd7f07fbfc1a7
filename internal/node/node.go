// Package node defines the executable units of a workflow: leaf tasks,
// steps bound to techniques, serial workers, and branching managers with
// their reduction judges.
package node

import (
	"context"

	"github.com/vk/planweave/internal/params"
	"github.com/vk/planweave/internal/project"
)

// Node is a single executable unit in a workflow. Execute receives the
// current project state and returns the state to pass onward; serial nodes
// usually return the same pointer, branching nodes return a reduced copy.
type Node interface {
	Name() string
	Execute(ctx context.Context, proj *project.Project) (*project.Project, error)
	Clone() Node
}

// ParamCarrier is implemented by nodes that expose their parameter bag,
// allowing the registry to overlay per-build overrides.
type ParamCarrier interface {
	Params() *params.Parameters
}

// Parent is implemented by nodes that contain child nodes.
type Parent interface {
	Children() []Node
}
