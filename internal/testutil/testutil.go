// Package testutil provides shared fixtures for workflow tests.
package testutil

import "github.com/vk/planweave/internal/settings"

// ProjectSettings returns a representative project configuration covering
// the suffix conventions: a serial laborer, a contest-judged manager with
// branch permutations, a survey-judged manager, and a detached parameters
// section.
func ProjectSettings() *settings.Settings {
	return settings.FromMap(map[string]map[string]any{
		"general": {
			"verbose":         true,
			"seed":            43,
			"conserve_memory": false,
			"parallelize":     false,
		},
		"files": {
			"source_format":  "csv",
			"interim_format": "csv",
			"final_format":   "csv",
			"file_encoding":  "windows-1252",
		},
		"cool_project": {
			"cool_project_structure": "pipeline",
			"cool_project_managers":  []any{"reviewer", "parser", "munger"},
		},
		"reviewer": {
			"reviewer_design":     "laborer",
			"reviewer_techniques": []any{"scan", "view"},
			"scan_techniques":     []any{"spy", "look", "eye"},
			"look_techniques":     []any{"peer", "see"},
		},
		"parser": {
			"parser_design":      "contest",
			"parser_steps":       []any{"divide", "extract"},
			"divide_techniques":  []any{"slice", "dice"},
			"extract_techniques": []any{"harvest", "process", "something"},
			"random_thing":       true,
		},
		"munger": {
			"munger_design":      "survey",
			"munger_steps":       []any{"search", "destroy"},
			"search_techniques":  []any{"find", "locate"},
			"destroy_techniques": []any{"explode", "dynamite"},
		},
		"divide_parameters": {"replace_strings": true},
	})
}
