package outline

import "strings"

// Kind classifies what a configuration key or section declares.
type Kind int

const (
	// KindUnknown marks keys with no recognized suffix; they pass through as
	// constructor keywords.
	KindUnknown Kind = iota
	// KindConnections marks pluralized child-declaring keys (_workers,
	// _steps, _techniques, ...).
	KindConnections
	// KindDesign marks <name>_design keys.
	KindDesign
	// KindParameters marks <name>_parameters sections.
	KindParameters
	// KindGeneral marks the optional general settings section.
	KindGeneral
	// KindFiles marks the optional file settings section.
	KindFiles
)

// suffixes is the one declarative table every classification goes through.
// Key order inside a slice is the lookup order for optional sections.
var suffixes = map[Kind][]string{
	KindConnections: {
		"workers", "managers", "laborers", "researchers",
		"steps", "techniques", "tasks", "judges",
	},
	KindDesign:     {"design", "structure"},
	KindParameters: {"parameters"},
	KindGeneral:    {"general"},
	KindFiles:      {"files", "filer", "clerk"},
}

// classifyOrder fixes precedence when one key could match several kinds.
var classifyOrder = []Kind{KindParameters, KindDesign, KindConnections, KindGeneral, KindFiles}

// ClassifyKey splits key into its owning prefix, the declaration kind, and
// the matched suffix. A key that is exactly a suffix returns owner == suffix;
// callers then attribute the value to the enclosing section. Unrecognized
// keys return the whole key as owner with KindUnknown.
func ClassifyKey(key string) (owner string, kind Kind, suffix string) {
	for _, k := range classifyOrder {
		for _, s := range suffixes[k] {
			if key == s {
				return s, k, s
			}
			if strings.HasSuffix(key, "_"+s) {
				return strings.TrimSuffix(key, "_"+s), k, s
			}
		}
	}
	return key, KindUnknown, ""
}

// singular derives a node kind from a plural suffix by stripping the
// trailing "s": techniques -> technique.
func singular(suffix string) string {
	return strings.TrimSuffix(suffix, "s")
}

// isSpecialSection reports whether a section name is reserved rather than a
// component declaration.
func isSpecialSection(name string) bool {
	for _, kind := range []Kind{KindGeneral, KindFiles} {
		for _, s := range suffixes[kind] {
			if name == s {
				return true
			}
		}
	}
	return false
}

// isParametersSection reports whether a section declares implementation
// parameters for the node named by its prefix.
func isParametersSection(name string) bool {
	_, kind, _ := ClassifyKey(name)
	return kind == KindParameters
}
