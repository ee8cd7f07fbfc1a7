package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/spf13/viper"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Load reads a configuration file into Settings, dispatching on the file
// extension. Supported formats: .hcl, .yaml/.yml, .ini, .toml.
func Load(path string) (*Settings, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return loadHCL(path)
	case ".yaml", ".yml":
		return loadYAML(path)
	case ".ini":
		return loadINI(path)
	case ".toml":
		return loadViper(path)
	default:
		return nil, fmt.Errorf("unsupported settings format: %q", filepath.Ext(path))
	}
}

// loadHCL parses a file of top-level blocks, one per section, each holding
// plain attributes:
//
//	parser {
//	  parser_design = "contest"
//	  parser_steps  = ["divide", "extract"]
//	}
func loadHCL(path string) (*Settings, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", path, diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("parsing %s: unexpected body type %T", path, file.Body)
	}
	contents := make(map[string]map[string]any)
	for _, block := range body.Blocks {
		if len(block.Labels) > 0 {
			return nil, fmt.Errorf("parsing %s: section block %q must not carry labels", path, block.Type)
		}
		section := make(map[string]any, len(block.Body.Attributes))
		for name, attr := range block.Body.Attributes {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("parsing %s: attribute %q: %w", path, name, diags)
			}
			native, err := ctyToNative(val)
			if err != nil {
				return nil, fmt.Errorf("parsing %s: attribute %q: %w", path, name, err)
			}
			section[name] = native
		}
		contents[block.Type] = section
	}
	return &Settings{contents: contents}, nil
}

// ctyToNative recursively converts a cty.Value to its most natural Go
// counterpart: string, float64, bool, []any, or map[string]any.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert cty.Number to float64: %w", err)
		}
		return f, nil
	case ty == cty.Bool:
		var b bool
		if err := gocty.FromCtyValue(v, &b); err != nil {
			return nil, fmt.Errorf("could not convert cty.Bool to bool: %w", err)
		}
		return b, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0)
		it := v.ElementIterator()
		for it.Next() {
			_, val := it.Element()
			native, err := ctyToNative(val)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil
	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, val := it.Element()
			native, err := ctyToNative(val)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			m[key.AsString()] = native
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported cty type: %s", ty.FriendlyName())
	}
}

func loadYAML(path string) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var top map[string]any
	if err := yaml.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	contents := make(map[string]map[string]any, len(top))
	for name, value := range top {
		section, err := asSection(name, value)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		contents[name] = section
	}
	return &Settings{contents: contents}, nil
}

// loadViper handles TOML through viper.
func loadViper(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	contents := make(map[string]map[string]any)
	for name, value := range v.AllSettings() {
		section, err := asSection(name, value)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		contents[name] = section
	}
	return &Settings{contents: contents}, nil
}

// loadINI reads an INI file section by section. INI values always arrive as
// strings, so they are re-typed the way an operator would expect: bools,
// numbers, and comma-separated lists.
func loadINI(path string) (*Settings, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	contents := make(map[string]map[string]any)
	for _, section := range file.Sections() {
		keys := section.Keys()
		if section.Name() == ini.DefaultSection && len(keys) == 0 {
			continue
		}
		body := make(map[string]any, len(keys))
		for _, key := range keys {
			body[key.Name()] = inferType(key.Value())
		}
		contents[section.Name()] = body
	}
	return &Settings{contents: contents}, nil
}

// inferType converts an INI string value to a bool, number, or list when it
// unambiguously reads as one.
func inferType(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	trimmed := strings.TrimSpace(s)
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return int(i)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(trimmed); err == nil {
		return b
	}
	if strings.Contains(trimmed, ",") {
		parts := strings.Split(trimmed, ",")
		list := make([]any, 0, len(parts))
		for _, part := range parts {
			list = append(list, inferType(strings.TrimSpace(part)))
		}
		return list
	}
	return s
}
