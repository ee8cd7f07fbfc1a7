package graph

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors for structural violations. Callers match with errors.Is.
var (
	// ErrInvalidEdge reports a self-loop or an edge that would close a cycle.
	ErrInvalidEdge = errors.New("invalid edge")
	// ErrMissingNode reports an operation referencing a node the graph does not hold.
	ErrMissingNode = errors.New("node not found")
	// ErrCycle reports that an operation would make the graph cyclic.
	ErrCycle = errors.New("cycle detected")
)

// Graph is a directed acyclic graph stored as an adjacency list keyed by
// successor sets. Node identity is the node name; two nodes with the same
// name are the same node.
//
// Graph is not safe for concurrent use. Derived views (Roots, Endpoints,
// Paths) are recomputed on each access; graphs here are configuration-sized,
// not hot-path.
type Graph struct {
	contents map[string]map[string]struct{}
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{contents: make(map[string]map[string]struct{})}
}

// Add inserts node with a successor set equal to descendants and an edge from
// each ancestor to node. Every named ancestor or descendant must already be
// present; callers must add nodes before wiring distant edges.
func (g *Graph) Add(node string, ancestors, descendants []string) error {
	for _, d := range descendants {
		if !g.Contains(d) {
			return fmt.Errorf("%w: descendant %q", ErrMissingNode, d)
		}
	}
	for _, a := range ancestors {
		if !g.Contains(a) {
			return fmt.Errorf("%w: ancestor %q", ErrMissingNode, a)
		}
	}
	if _, ok := g.contents[node]; !ok {
		g.contents[node] = make(map[string]struct{})
	}
	for _, d := range descendants {
		if err := g.Connect(node, d); err != nil {
			return err
		}
	}
	for _, a := range ancestors {
		if err := g.Connect(a, node); err != nil {
			return err
		}
	}
	return nil
}

// Connect adds an edge from start to stop, creating either node if absent.
// Self-loops are rejected, and so is any edge that would let stop reach
// start; the graph stays acyclic and walks always terminate.
func (g *Graph) Connect(start, stop string) error {
	if start == stop {
		return fmt.Errorf("%w: self-referential edge %s -> %s", ErrInvalidEdge, start, stop)
	}
	if g.reachable(stop, start) {
		return fmt.Errorf("%w: edge %s -> %s closes a cycle", ErrCycle, start, stop)
	}
	if _, ok := g.contents[start]; !ok {
		g.contents[start] = make(map[string]struct{})
	}
	if _, ok := g.contents[stop]; !ok {
		g.contents[stop] = make(map[string]struct{})
	}
	g.contents[start][stop] = struct{}{}
	return nil
}

// Delete removes node and strips it from every other successor set.
func (g *Graph) Delete(node string) error {
	if !g.Contains(node) {
		return fmt.Errorf("%w: %q", ErrMissingNode, node)
	}
	delete(g.contents, node)
	for _, successors := range g.contents {
		delete(successors, node)
	}
	return nil
}

// Disconnect removes the edge from start to stop. A missing start node is an
// error; a missing edge is a no-op.
func (g *Graph) Disconnect(start, stop string) error {
	successors, ok := g.contents[start]
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingNode, start)
	}
	delete(successors, stop)
	return nil
}

// Merge adds other's adjacency entries into g with key-union semantics, like
// a map update. No edges are created between the two graphs. The union is
// built and validated on a scratch copy, so a rejected merge leaves g
// unchanged.
func (g *Graph) Merge(other *Graph) error {
	merged := g.Clone()
	for node, successors := range other.contents {
		if _, ok := merged.contents[node]; !ok {
			merged.contents[node] = make(map[string]struct{})
		}
		for s := range successors {
			if !merged.Contains(s) {
				merged.contents[s] = make(map[string]struct{})
			}
			merged.contents[node][s] = struct{}{}
		}
	}
	if err := merged.validate(); err != nil {
		return err
	}
	g.contents = merged.contents
	return nil
}

// Append merges other into g and then connects every current endpoint of g to
// every root of other: sequential composition.
func (g *Graph) Append(other *Graph) error {
	endpoints := g.Endpoints()
	roots := other.Roots()
	if err := g.Merge(other); err != nil {
		return err
	}
	for _, e := range endpoints {
		for _, r := range roots {
			if err := g.Connect(e, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// Prepend merges other into g and then connects every endpoint of other to
// every current root of g.
func (g *Graph) Prepend(other *Graph) error {
	roots := g.Roots()
	endpoints := other.Endpoints()
	if err := g.Merge(other); err != nil {
		return err
	}
	for _, e := range endpoints {
		for _, r := range roots {
			if err := g.Connect(e, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// Subset returns a deep copy of g restricted to include (when non-nil) minus
// exclude. Edges touching removed nodes are dropped.
func (g *Graph) Subset(include, exclude []string) (*Graph, error) {
	if include == nil && exclude == nil {
		return nil, errors.New("either include or exclude must be given")
	}
	keep := make(map[string]bool, len(g.contents))
	if include == nil {
		for node := range g.contents {
			keep[node] = true
		}
	} else {
		for _, node := range include {
			keep[node] = true
		}
	}
	for _, node := range exclude {
		delete(keep, node)
	}
	sub := New()
	for node, successors := range g.contents {
		if !keep[node] {
			continue
		}
		sub.contents[node] = make(map[string]struct{})
		for s := range successors {
			if keep[s] {
				sub.contents[node][s] = struct{}{}
			}
		}
	}
	return sub, nil
}

// Walk returns all simple paths from start to stop via depth-first search.
// It returns nil if start is absent or no path exists, and [[start]] when
// start equals stop.
func (g *Graph) Walk(start, stop string) [][]string {
	return g.walk(start, stop, nil)
}

func (g *Graph) walk(start, stop string, path []string) [][]string {
	path = append(append([]string(nil), path...), start)
	if start == stop {
		return [][]string{path}
	}
	successors, ok := g.contents[start]
	if !ok {
		return nil
	}
	var paths [][]string
	for _, next := range sorted(successors) {
		if contains(path, next) {
			continue
		}
		paths = append(paths, g.walk(next, stop, path)...)
	}
	return paths
}

// Roots returns nodes that never appear as a successor, sorted by name.
func (g *Graph) Roots() []string {
	stops := make(map[string]bool)
	for _, successors := range g.contents {
		for s := range successors {
			stops[s] = true
		}
	}
	var roots []string
	for node := range g.contents {
		if !stops[node] {
			roots = append(roots, node)
		}
	}
	sort.Strings(roots)
	return roots
}

// Endpoints returns nodes with an empty successor set, sorted by name.
func (g *Graph) Endpoints() []string {
	var endpoints []string
	for node, successors := range g.contents {
		if len(successors) == 0 {
			endpoints = append(endpoints, node)
		}
	}
	sort.Strings(endpoints)
	return endpoints
}

// Paths returns every root-to-endpoint walk through the graph.
func (g *Graph) Paths() [][]string {
	var all [][]string
	for _, root := range g.Roots() {
		for _, end := range g.Endpoints() {
			all = append(all, g.Walk(root, end)...)
		}
	}
	return all
}

// Nodes returns every node name, sorted.
func (g *Graph) Nodes() []string {
	nodes := make([]string, 0, len(g.contents))
	for node := range g.contents {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	return nodes
}

// Contains reports whether node is in the graph.
func (g *Graph) Contains(node string) bool {
	_, ok := g.contents[node]
	return ok
}

// Descendants returns the successor set of node, sorted.
func (g *Graph) Descendants(node string) []string {
	successors, ok := g.contents[node]
	if !ok {
		return nil
	}
	return sorted(successors)
}

// Ancestors returns every node that lists node as a successor, sorted.
func (g *Graph) Ancestors(node string) []string {
	var ancestors []string
	for candidate, successors := range g.contents {
		if _, ok := successors[node]; ok {
			ancestors = append(ancestors, candidate)
		}
	}
	sort.Strings(ancestors)
	return ancestors
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.contents) }

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	dup := New()
	for node, successors := range g.contents {
		dup.contents[node] = make(map[string]struct{}, len(successors))
		for s := range successors {
			dup.contents[node][s] = struct{}{}
		}
	}
	return dup
}

// reachable reports whether to can be reached from from by following edges.
func (g *Graph) reachable(from, to string) bool {
	if _, ok := g.contents[from]; !ok {
		return false
	}
	seen := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == to {
			return true
		}
		for s := range g.contents[current] {
			if !seen[s] {
				seen[s] = true
				stack = append(stack, s)
			}
		}
	}
	return false
}

// validate checks the whole graph for cycles with a three-color depth-first
// search, the same shape the builder relies on after merges.
func (g *Graph) validate() error {
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(node string) error
	visit = func(node string) error {
		if permanent[node] {
			return nil
		}
		if temporary[node] {
			return fmt.Errorf("%w: involving node %q", ErrCycle, node)
		}
		temporary[node] = true
		for s := range g.contents[node] {
			if err := visit(s); err != nil {
				return err
			}
		}
		delete(temporary, node)
		permanent[node] = true
		return nil
	}

	for node := range g.contents {
		if !permanent[node] {
			if err := visit(node); err != nil {
				return err
			}
		}
	}
	return nil
}

func sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
