// Package project holds the mutable state threaded through a workflow run.
// A Project travels node to node; parallel branches each receive their own
// deep copy so sibling mutations never interleave.
package project

import (
	"fmt"
	"strings"

	"github.com/vk/planweave/internal/outline"
	"github.com/vk/planweave/internal/settings"
)

// Project is the state passed through workflow execution.
type Project struct {
	// Name of the project, drawn from settings or inferred by the outline.
	Name string
	// Settings is the loaded configuration backing the outline.
	Settings *settings.Settings
	// Outline is the derived view of Settings.
	Outline *outline.Outline
	// Contents holds run-scoped values written by nodes.
	Contents map[string]any
	// Parallelize requests concurrent branch execution when a manager
	// fans out.
	Parallelize bool
}

// New builds a Project from loaded settings. The project name comes from
// the general section when present, otherwise from the outline.
func New(s *settings.Settings) *Project {
	o := outline.New(s)
	p := &Project{
		Settings: s,
		Outline:  o,
		Contents: make(map[string]any),
	}
	general := o.General()
	if name, ok := general["name"].(string); ok && name != "" {
		p.Name = name
	} else {
		p.Name = o.Name()
	}
	if v, ok := general["parallelize"].(bool); ok {
		p.Parallelize = v
	}
	return p
}

// Get returns a value from Contents.
func (p *Project) Get(key string) (any, bool) {
	v, ok := p.Contents[key]
	return v, ok
}

// Set stores a value in Contents.
func (p *Project) Set(key string, value any) {
	if p.Contents == nil {
		p.Contents = make(map[string]any)
	}
	p.Contents[key] = value
}

// Resolve walks a dotted path against the project. The first segment is
// matched against project attributes, then against Contents; subsequent
// segments descend into nested maps.
func (p *Project) Resolve(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	segments := strings.Split(path, ".")
	current, ok := p.resolveRoot(segments[0])
	if !ok {
		return nil, false
	}
	for _, segment := range segments[1:] {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func (p *Project) resolveRoot(segment string) (any, bool) {
	switch segment {
	case "name":
		return p.Name, true
	case "parallelize":
		return p.Parallelize, true
	case "contents":
		return p.Contents, true
	case "settings":
		raw := p.Settings.Raw()
		sections := make(map[string]any, len(raw))
		for name, section := range raw {
			sections[name] = section
		}
		return sections, true
	}
	v, ok := p.Contents[segment]
	return v, ok
}

// Clone returns a deep copy of the project. Contents is copied recursively;
// Settings and Outline are immutable after load and shared.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	return &Project{
		Name:        p.Name,
		Settings:    p.Settings,
		Outline:     p.Outline,
		Contents:    deepCopyMap(p.Contents),
		Parallelize: p.Parallelize,
	}
}

// String implements fmt.Stringer.
func (p *Project) String() string {
	return fmt.Sprintf("project %q (%d values)", p.Name, len(p.Contents))
}

func deepCopyMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = deepCopyValue(v)
	}
	return dst
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		dup := make([]any, len(t))
		for i, item := range t {
			dup[i] = deepCopyValue(item)
		}
		return dup
	default:
		return v
	}
}
