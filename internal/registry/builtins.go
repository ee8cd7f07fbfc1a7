package registry

import (
	"github.com/vk/planweave/internal/node"
	"github.com/vk/planweave/internal/params"
)

// RegisterBuiltins installs factories for the standard component taxonomy.
// These are the fallbacks the builder reaches when an outline names a kind
// no module has claimed.
func RegisterBuiltins(lib *Library) {
	lib.RegisterFactory("worker", func(name string, p *params.Parameters) (node.Node, error) {
		return node.NewWorker(name, p), nil
	})
	lib.RegisterFactory("laborer", func(name string, p *params.Parameters) (node.Node, error) {
		return node.NewLaborer(name, p), nil
	})
	lib.RegisterFactory("manager", func(name string, p *params.Parameters) (node.Node, error) {
		return node.NewManager(name, p, nil), nil
	})
	lib.RegisterFactory("researcher", func(name string, p *params.Parameters) (node.Node, error) {
		return node.NewResearcher(name, p, nil), nil
	})
	lib.RegisterFactory("task", func(name string, p *params.Parameters) (node.Node, error) {
		return node.NewTask(name, p, nil), nil
	})
	lib.RegisterFactory("step", func(name string, p *params.Parameters) (node.Node, error) {
		return node.NewStep(name, p, nil), nil
	})
	lib.RegisterFactory("technique", func(name string, p *params.Parameters) (node.Node, error) {
		return node.NewTechnique(name, p, nil), nil
	})
	// Branching designs resolve to managers; the builder attaches the judge
	// matching the design separately.
	for _, design := range []string{"contest", "survey", "study", "research", "validation"} {
		lib.RegisterFactory(design, func(name string, p *params.Parameters) (node.Node, error) {
			return node.NewManager(name, p, nil), nil
		})
	}
}
