package graph

import (
	"fmt"
	"sort"
	"strings"
)

// DotOptions controls the rendered Graphviz document.
type DotOptions struct {
	// Name is the digraph identifier. Defaults to "workflow".
	Name string
	// Settings are emitted verbatim as global statements, one per line.
	Settings []string
	// Clusters groups nodes into rank=same subgraphs keyed by cluster label.
	Clusters map[string][]string
}

// Dot renders the graph's edge list as a Graphviz digraph. Output only; no
// round-trip is supported.
func (g *Graph) Dot(opts DotOptions) string {
	name := opts.Name
	if name == "" {
		name = "workflow"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", name)
	for _, setting := range opts.Settings {
		fmt.Fprintf(&b, "  %s;\n", setting)
	}
	labels := make([]string, 0, len(opts.Clusters))
	for label := range opts.Clusters {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		fmt.Fprintf(&b, "  subgraph cluster_%s {\n", label)
		fmt.Fprintf(&b, "    label=%s rank=same\n", label)
		for _, node := range opts.Clusters[label] {
			fmt.Fprintf(&b, "    %s labeljust=l\n", node)
		}
		b.WriteString("  }\n")
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "  %s -> %s\n", e.Start, e.Stop)
	}
	b.WriteString("}\n")
	return b.String()
}
