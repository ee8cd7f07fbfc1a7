// Package params implements the merged keyword-argument bag attached to
// every workflow node. Four precedence-ordered sources collapse into one map
// at finalize time; later sources overwrite earlier ones.
package params

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMissingParameter reports a selected parameter that never got populated
// by any source.
var ErrMissingParameter = errors.New("required parameter missing")

// Source resolves a dotted attribute path against an execution context,
// first as an attribute and then as a mapping lookup.
type Source interface {
	Resolve(path string) (any, bool)
}

// Parameters merges parameter sources into a final keyword bag. Merge order,
// each stage overwriting the previous: Defaults, Implementation, runtime
// values resolved through Runtime, manually placed Contents, then explicit
// overrides passed to Finalize.
type Parameters struct {
	// Name identifies the owning node, for error messages.
	Name string
	// Contents is the final bag after Finalize. Entries placed here before
	// the first Finalize survive as manual overrides.
	Contents map[string]any
	// Defaults are static defaults baked into the node type.
	Defaults map[string]any
	// Implementation carries the outline-derived parameters for this node,
	// already resolved through the name/kind/design lookup chain.
	Implementation map[string]any
	// Runtime maps parameter names to attribute paths resolved against the
	// execution context at finalize time. Missing paths are skipped.
	Runtime map[string]string
	// Selected, when non-empty, restricts the final bag to exactly these
	// keys; a listed key that is absent is an error.
	Selected []string

	manual    map[string]any
	finalized bool
}

// New creates an empty Parameters bag for the named node.
func New(name string) *Parameters {
	return &Parameters{Name: name, Contents: make(map[string]any)}
}

// Finalize merges all sources into Contents and returns the final bag.
// Callers finalize exactly once per execution context; calling again with
// different runtime state re-merges and may change Contents.
func (p *Parameters) Finalize(src Source, overrides map[string]any) (map[string]any, error) {
	if !p.finalized {
		p.manual = make(map[string]any, len(p.Contents))
		for k, v := range p.Contents {
			p.manual[k] = v
		}
	}
	final := make(map[string]any)
	for k, v := range p.Defaults {
		final[k] = v
	}
	for k, v := range p.Implementation {
		final[k] = v
	}
	if src != nil {
		for param, path := range p.Runtime {
			if value, ok := src.Resolve(path); ok {
				final[param] = value
			}
		}
	}
	for k, v := range p.manual {
		final[k] = v
	}
	for k, v := range overrides {
		final[k] = v
	}
	if len(p.Selected) > 0 {
		selected := make(map[string]any, len(p.Selected))
		for _, key := range p.Selected {
			value, ok := final[key]
			if !ok {
				return nil, fmt.Errorf("%w: %q selected for %q", ErrMissingParameter, key, p.Name)
			}
			selected[key] = value
		}
		final = selected
	}
	p.Contents = final
	p.finalized = true
	return final, nil
}

// Clone returns a deep-enough copy: all maps are copied, values are shared.
// Parameter values are configuration scalars and small lists, never mutated
// in place.
func (p *Parameters) Clone() *Parameters {
	if p == nil {
		return nil
	}
	dup := &Parameters{
		Name:      p.Name,
		Selected:  append([]string(nil), p.Selected...),
		finalized: p.finalized,
	}
	dup.Contents = copyMap(p.Contents)
	dup.Defaults = copyMap(p.Defaults)
	dup.Implementation = copyMap(p.Implementation)
	dup.manual = copyMap(p.manual)
	if p.Runtime != nil {
		dup.Runtime = make(map[string]string, len(p.Runtime))
		for k, v := range p.Runtime {
			dup.Runtime[k] = v
		}
	}
	return dup
}

// Keys returns the sorted keys of the current contents.
func (p *Parameters) Keys() []string {
	keys := make([]string, 0, len(p.Contents))
	for k := range p.Contents {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
