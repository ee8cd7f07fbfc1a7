package graph

import (
	"fmt"
	"sort"
)

// Edge is a single directed connection from Start to Stop.
type Edge struct {
	Start string
	Stop  string
}

// FromAdjacency creates a Graph from an adjacency list. Successors named but
// not keyed are added as endpoint nodes.
func FromAdjacency(adjacency map[string][]string) (*Graph, error) {
	g := New()
	nodes := make([]string, 0, len(adjacency))
	for node := range adjacency {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		if !g.Contains(node) {
			g.contents[node] = make(map[string]struct{})
		}
		for _, s := range adjacency[node] {
			if err := g.Connect(node, s); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// Adjacency returns the stored graph as an adjacency list with sorted
// successor slices.
func (g *Graph) Adjacency() map[string][]string {
	out := make(map[string][]string, len(g.contents))
	for node, successors := range g.contents {
		out[node] = sorted(successors)
	}
	return out
}

// FromEdges creates a Graph from a flat edge list. Duplicate edges collapse
// into the successor set.
func FromEdges(edges []Edge) (*Graph, error) {
	g := New()
	for _, e := range edges {
		if err := g.Connect(e.Start, e.Stop); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Edges returns the stored graph as a sorted edge list.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for node, successors := range g.contents {
		for s := range successors {
			edges = append(edges, Edge{Start: node, Stop: s})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Start != edges[j].Start {
			return edges[i].Start < edges[j].Start
		}
		return edges[i].Stop < edges[j].Stop
	})
	return edges
}

// FromMatrix creates a Graph from an adjacency matrix and its positional
// name mapping. matrix[i][j] != 0 means an edge from names[i] to names[j].
func FromMatrix(matrix [][]int, names []string) (*Graph, error) {
	if len(matrix) != len(names) {
		return nil, fmt.Errorf("matrix has %d rows for %d names", len(matrix), len(names))
	}
	g := New()
	for _, name := range names {
		g.contents[name] = make(map[string]struct{})
	}
	for i, row := range matrix {
		if len(row) != len(names) {
			return nil, fmt.Errorf("matrix row %d has %d columns for %d names", i, len(row), len(names))
		}
		for j, cell := range row {
			if cell == 0 {
				continue
			}
			if err := g.Connect(names[i], names[j]); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// Matrix returns the stored graph as an adjacency matrix plus the positional
// name mapping, with names sorted for a stable layout.
func (g *Graph) Matrix() ([][]int, []string) {
	names := g.Nodes()
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}
	matrix := make([][]int, len(names))
	for i, name := range names {
		matrix[i] = make([]int, len(names))
		for s := range g.contents[name] {
			matrix[i][index[s]] = 1
		}
	}
	return matrix, names
}

// FromPipeline creates a linear Graph chaining the named nodes in order.
func FromPipeline(nodes []string) (*Graph, error) {
	g := New()
	for i, node := range nodes {
		if !g.Contains(node) {
			g.contents[node] = make(map[string]struct{})
		}
		if i > 0 {
			if err := g.Connect(nodes[i-1], node); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// Pipeline returns the stored graph as a linear sequence of nodes. It fails
// unless the graph is a single unbranched chain.
func (g *Graph) Pipeline() ([]string, error) {
	if g.Len() == 0 {
		return nil, nil
	}
	roots := g.Roots()
	if len(roots) != 1 {
		return nil, fmt.Errorf("graph is not linear: %d roots", len(roots))
	}
	var pipeline []string
	current := roots[0]
	for {
		pipeline = append(pipeline, current)
		successors := g.Descendants(current)
		switch len(successors) {
		case 0:
			if len(pipeline) != g.Len() {
				return nil, fmt.Errorf("graph is not linear: %d of %d nodes on the chain", len(pipeline), g.Len())
			}
			return pipeline, nil
		case 1:
			current = successors[0]
		default:
			return nil, fmt.Errorf("graph is not linear: %q has %d successors", current, len(successors))
		}
	}
}
