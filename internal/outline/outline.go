// Package outline derives the normalized, queryable view of a raw settings
// mapping: node connections, designs, kinds, and the initialization and
// implementation parameter bags. The view is computed once, cached, and never
// mutated afterwards; the underlying settings are immutable input.
package outline

import (
	"sort"
	"sync"

	"github.com/vk/planweave/internal/settings"
)

// Outline is a read-only analytical view over project settings.
type Outline struct {
	settings *settings.Settings

	once           sync.Once
	name           string
	connections    map[string][]string
	designs        map[string]string
	kinds          map[string]string
	initialization map[string]map[string]any
	implementation map[string]map[string]any
	labels         []string
	managers       []string
}

// New creates an Outline over the given settings. Derivation is lazy; the
// first accessor triggers it.
func New(s *settings.Settings) *Outline {
	return &Outline{settings: s}
}

// Name returns the project name: the first section that declares any
// plural-suffix keys.
func (o *Outline) Name() string {
	o.compute()
	return o.name
}

// Connections maps each node name to its configured child names, in
// configuration order.
func (o *Outline) Connections() map[string][]string {
	o.compute()
	return o.connections
}

// Designs maps node names to their declared design variant.
func (o *Outline) Designs() map[string]string {
	o.compute()
	return o.designs
}

// Kinds maps node names to the structural kind derived from the suffix that
// declared them.
func (o *Outline) Kinds() map[string]string {
	o.compute()
	return o.kinds
}

// Initialization maps node names to constructor keywords: every key in the
// node's section that is not a recognized suffix.
func (o *Outline) Initialization() map[string]map[string]any {
	o.compute()
	return o.initialization
}

// Implementation maps node names to the runtime parameter overrides declared
// in their <name>_parameters section.
func (o *Outline) Implementation() map[string]map[string]any {
	o.compute()
	return o.implementation
}

// Labels returns every node name the settings mention, deduplicated, in
// first-appearance order.
func (o *Outline) Labels() []string {
	o.compute()
	return o.labels
}

// Managers returns the top-level manager chain declared by the project
// section's managers key.
func (o *Outline) Managers() []string {
	o.compute()
	return o.managers
}

// General returns the general section, or an empty map when absent.
func (o *Outline) General() map[string]any {
	return o.optional(KindGeneral)
}

// Files returns the file settings section, or an empty map when absent.
func (o *Outline) Files() map[string]any {
	return o.optional(KindFiles)
}

// Design returns the design declared for name, or fallback when none is.
func (o *Outline) Design(name, fallback string) string {
	if design, ok := o.Designs()[name]; ok {
		return design
	}
	return fallback
}

// Kind returns the kind derived for name, or "" when the settings never
// declared it.
func (o *Outline) Kind(name string) string {
	return o.Kinds()[name]
}

func (o *Outline) optional(kind Kind) map[string]any {
	for _, name := range suffixes[kind] {
		if section, ok := o.settings.Section(name); ok {
			return section
		}
	}
	return map[string]any{}
}

func (o *Outline) compute() {
	o.once.Do(func() {
		o.connections = make(map[string][]string)
		o.designs = make(map[string]string)
		o.kinds = make(map[string]string)
		o.initialization = make(map[string]map[string]any)
		o.implementation = make(map[string]map[string]any)

		for _, section := range o.settings.Sections() {
			body, _ := o.settings.Section(section)
			switch {
			case isSpecialSection(section):
				continue
			case isParametersSection(section):
				owner, _, _ := ClassifyKey(section)
				o.implementation[owner] = body
				continue
			}
			o.deriveComponent(section, body)
		}
		o.deriveLabels()
	})
}

// deriveComponent processes one component section. A key whose prefix equals
// its suffix (for example a "workers" key inside the "workers" section name
// pattern) attributes its values to the section itself; any other prefix
// attributes them to that prefixed node nested in the same block.
func (o *Outline) deriveComponent(section string, body map[string]any) {
	if o.name == "" && hasPluralKey(body) {
		o.name = section
	}
	init := make(map[string]any)
	keys := make([]string, 0, len(body))
	for key := range body {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := body[key]
		owner, kind, suffix := ClassifyKey(key)
		if owner == suffix {
			owner = section
		}
		switch kind {
		case KindDesign:
			if s, ok := value.(string); ok {
				o.designs[owner] = s
			}
		case KindConnections:
			children := normalizeNames(value)
			if isNone(children) {
				continue
			}
			o.connections[owner] = append(o.connections[owner], children...)
			childKind := singular(suffix)
			for _, child := range children {
				o.kinds[child] = childKind
			}
			if childKind == "manager" {
				o.managers = append(o.managers, children...)
			}
		default:
			init[key] = value
		}
	}
	if len(init) > 0 {
		o.initialization[section] = init
	}
}

func (o *Outline) deriveLabels() {
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			o.labels = append(o.labels, name)
		}
	}
	owners := make([]string, 0, len(o.connections))
	for owner := range o.connections {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	for _, owner := range owners {
		add(owner)
		for _, child := range o.connections[owner] {
			add(child)
		}
	}
}

func hasPluralKey(body map[string]any) bool {
	for key := range body {
		if _, kind, _ := ClassifyKey(key); kind == KindConnections {
			return true
		}
	}
	return false
}

// normalizeNames wraps a scalar as a one-element list and stringifies list
// entries.
func normalizeNames(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
		return names
	default:
		return nil
	}
}

// isNone reports whether the normalized list is the literal no-children
// marker rather than a child named none.
func isNone(values []string) bool {
	if len(values) != 1 {
		return false
	}
	switch values[0] {
	case "none", "None", "NONE":
		return true
	}
	return false
}
