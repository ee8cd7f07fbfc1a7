// Package settings loads and stores the raw project configuration mapping: a
// two-level map of section name to section keys. It accepts HCL, YAML, and
// INI/TOML files as well as in-process maps, and normalizes every source to
// the same shape before the outline ever sees it.
package settings

import (
	"fmt"
	"sort"
)

// Settings is the immutable configuration mapping consumed by the outline.
type Settings struct {
	contents map[string]map[string]any
	defaults map[string]map[string]any
}

// FromMap creates Settings from an in-process mapping. The map is copied so
// later caller mutations cannot leak into a running project.
func FromMap(contents map[string]map[string]any) *Settings {
	return &Settings{contents: copySections(contents)}
}

// WithDefaults overlays default sections used when the configuration does not
// provide the corresponding keys. Explicit settings always win.
func (s *Settings) WithDefaults(defaults map[string]map[string]any) *Settings {
	s.defaults = copySections(defaults)
	return s
}

// Section returns the named section merged over any defaults for it.
func (s *Settings) Section(name string) (map[string]any, bool) {
	section, ok := s.contents[name]
	fallback, hasDefault := s.defaults[name]
	if !ok && !hasDefault {
		return nil, false
	}
	merged := make(map[string]any, len(section)+len(fallback))
	for k, v := range fallback {
		merged[k] = v
	}
	for k, v := range section {
		merged[k] = v
	}
	return merged, true
}

// Sections returns every section name, sorted. Default-only sections are
// included.
func (s *Settings) Sections() []string {
	seen := make(map[string]bool, len(s.contents))
	var names []string
	for name := range s.contents {
		seen[name] = true
		names = append(names, name)
	}
	for name := range s.defaults {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Raw returns a copy of the full merged mapping.
func (s *Settings) Raw() map[string]map[string]any {
	out := make(map[string]map[string]any, len(s.contents))
	for _, name := range s.Sections() {
		section, _ := s.Section(name)
		out[name] = section
	}
	return out
}

func copySections(src map[string]map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any, len(src))
	for name, section := range src {
		dup := make(map[string]any, len(section))
		for k, v := range section {
			dup[k] = v
		}
		out[name] = dup
	}
	return out
}

func asSection(name string, value any) (map[string]any, error) {
	switch v := value.(type) {
	case map[string]any:
		return v, nil
	case map[any]any:
		section := make(map[string]any, len(v))
		for key, val := range v {
			k, ok := key.(string)
			if !ok {
				return nil, fmt.Errorf("section %q: non-string key %v", name, key)
			}
			section[k] = val
		}
		return section, nil
	default:
		return nil, fmt.Errorf("section %q: expected a mapping, got %T", name, value)
	}
}
