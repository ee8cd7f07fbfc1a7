// Package registry implements the two-tier component library. Deposited
// instances shadow registered factories under the same key; withdrawal
// clones an instance or invokes a factory, never handing out shared state.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/vk/planweave/internal/node"
	"github.com/vk/planweave/internal/params"
)

// ErrNotFound reports a key with neither an instance nor a factory.
var ErrNotFound = errors.New("component not found")

// Factory constructs a fresh node for the given name and parameter bag.
type Factory func(name string, p *params.Parameters) (node.Node, error)

// Module contributes components to a library at startup.
type Module interface {
	Register(lib *Library)
}

// Library stores workflow components by key. Instances are the hot tier,
// factories the cold tier; an instance always wins over a factory under
// the same key.
type Library struct {
	mu         sync.RWMutex
	instances  map[string]node.Node
	factories  map[string]Factory
	criteria   map[string]node.Criteria
	techniques map[string]node.TechniqueFunc
}

// New creates an empty library.
func New() *Library {
	return &Library{
		instances:  make(map[string]node.Node),
		factories:  make(map[string]Factory),
		criteria:   make(map[string]node.Criteria),
		techniques: make(map[string]node.TechniqueFunc),
	}
}

// Deposit stores a ready-made instance under key, shadowing any factory.
func (l *Library) Deposit(key string, n node.Node) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.instances[Snake(key)] = n
}

// RegisterFactory stores a factory under key.
func (l *Library) RegisterFactory(key string, f Factory) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.factories[Snake(key)] = f
}

// RegisterCriteria stores a scoring criteria under its own name.
func (l *Library) RegisterCriteria(c node.Criteria) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.criteria[Snake(c.Name())] = c
}

// RegisterTechnique stores an algorithm under key for technique factories.
func (l *Library) RegisterTechnique(key string, fn node.TechniqueFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.techniques[Snake(key)] = fn
}

// Criteria looks up a registered scoring criteria.
func (l *Library) Criteria(key string) (node.Criteria, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.criteria[Snake(key)]
	return c, ok
}

// Technique looks up a registered algorithm.
func (l *Library) Technique(key string) (node.TechniqueFunc, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fn, ok := l.techniques[Snake(key)]
	return fn, ok
}

// Contains reports whether key has an instance or a factory.
func (l *Library) Contains(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	k := Snake(key)
	_, inst := l.instances[k]
	_, fact := l.factories[k]
	return inst || fact
}

// Keys returns all registered keys, sorted.
func (l *Library) Keys() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	seen := make(map[string]struct{}, len(l.instances)+len(l.factories))
	for k := range l.instances {
		seen[k] = struct{}{}
	}
	for k := range l.factories {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Withdraw builds a component for name using the first lookup key that
// resolves. An instance is cloned with overrides overlaid onto its
// parameter contents; a factory is invoked with a fresh bag carrying the
// overrides.
func (l *Library) Withdraw(lookups []string, name string, p *params.Parameters, overrides map[string]any) (node.Node, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, lookup := range lookups {
		key := Snake(lookup)
		if inst, ok := l.instances[key]; ok {
			dup := inst.Clone()
			if carrier, ok := dup.(node.ParamCarrier); ok {
				bag := carrier.Params()
				for k, v := range overrides {
					bag.Contents[k] = v
				}
			}
			return dup, nil
		}
		if factory, ok := l.factories[key]; ok {
			if p == nil {
				p = params.New(name)
			}
			for k, v := range overrides {
				p.Contents[k] = v
			}
			built, err := factory(name, p)
			if err != nil {
				return nil, fmt.Errorf("building %q from %q: %w", name, key, err)
			}
			return built, nil
		}
	}
	return nil, fmt.Errorf("%w: %s (tried %s)", ErrNotFound, name, strings.Join(lookups, ", "))
}

// Snake converts a key to lower snake_case so lookups are spelling
// insensitive across CamelCase and snake_case registrations.
func Snake(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 && key[i-1] != '_' {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
