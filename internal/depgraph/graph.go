// Package depgraph records "dependent depends on dependency" edges between
// named nodes and answers the queries needed to sequence them: transitive
// reachability and a linear order consistent with every edge.
//
// A Graph is not safe for concurrent mutation. Callers build it once;
// the read methods may then be called from several goroutines.
package depgraph

import (
	"errors"
	"strings"
	"sync"
)

// ErrCycle is matched by every CycleError through errors.Is.
var ErrCycle = errors.New("cycle detected")

// CycleError indicates that the graph has no linear order. Path lists the
// nodes of one cycle, starting and ending with the same node.
type CycleError struct {
	Path []string
}

// Error returns the error message for a CycleError.
func (c *CycleError) Error() string {
	return "cyclic reference: " + strings.Join(c.Path, " -> ")
}

// Is reports whether target is ErrCycle.
func (c *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// Graph is a directed graph over string nodes. An edge a -> b reads
// "a depends on b".
type Graph struct {
	nodes []string
	index map[string]int
	edges map[string][]string

	mu    sync.Mutex // Protects field reach.
	reach map[string]map[string]struct{}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		index: make(map[string]int),
		edges: make(map[string][]string),
	}
}

// AddNode adds name to the graph. Adding an existing node is a no-op.
func (g *Graph) AddNode(name string) {
	if _, ok := g.index[name]; ok {
		return
	}
	g.index[name] = len(g.nodes)
	g.nodes = append(g.nodes, name)
}

// AddEdge records that dependent depends on dependency. Missing nodes are
// added. Duplicate edges are ignored.
func (g *Graph) AddEdge(dependent, dependency string) {
	g.AddNode(dependent)
	g.AddNode(dependency)

	for _, existing := range g.edges[dependent] {
		if existing == dependency {
			return
		}
	}
	g.edges[dependent] = append(g.edges[dependent], dependency)

	g.mu.Lock()
	g.reach = nil
	g.mu.Unlock()
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Dependencies returns the direct dependencies of name in the order they
// were added.
func (g *Graph) Dependencies(name string) []string {
	deps := g.edges[name]
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// DependsOn reports whether a depends on b, directly or transitively.
// A node only depends on itself when it sits on a cycle.
func (g *Graph) DependsOn(a, b string) bool {
	_, ok := g.reachable(a)[b]
	return ok
}

// reachable returns the set of nodes reachable from name over one or more
// edges. Results are memoised until the next AddEdge.
func (g *Graph) reachable(name string) map[string]struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()

	if set, ok := g.reach[name]; ok {
		return set
	}
	if g.reach == nil {
		g.reach = make(map[string]map[string]struct{})
	}

	set := make(map[string]struct{})
	stack := append([]string(nil), g.edges[name]...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := set[n]; seen {
			continue
		}
		set[n] = struct{}{}
		stack = append(stack, g.edges[n]...)
	}

	g.reach[name] = set
	return set
}

// LinearOrder returns every node such that each dependency precedes its
// dependents. Nodes are emitted layer by layer: first those without
// dependencies, then those whose dependencies all sit in earlier layers, and
// so on. Within a layer, insertion order is kept. LinearOrder returns a
// *CycleError if the graph contains a cycle.
func (g *Graph) LinearOrder() ([]string, error) {
	pending := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string, len(g.nodes))
	for _, n := range g.nodes {
		pending[n] = len(g.edges[n])
		for _, dep := range g.edges[n] {
			dependents[dep] = append(dependents[dep], n)
		}
	}

	var layer []string
	for _, n := range g.nodes {
		if pending[n] == 0 {
			layer = append(layer, n)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(layer) > 0 {
		order = append(order, layer...)

		ready := make(map[string]bool)
		for _, n := range layer {
			for _, dependent := range dependents[n] {
				pending[dependent]--
				if pending[dependent] == 0 {
					ready[dependent] = true
				}
			}
		}

		layer = layer[:0:0]
		for _, n := range g.nodes {
			if ready[n] {
				layer = append(layer, n)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil, &CycleError{Path: g.findCycle(pending)}
	}
	return order, nil
}

// findCycle walks the nodes left unordered by LinearOrder and returns one
// cycle among them. Every such node either sits on a cycle or depends on
// one, so following unresolved dependencies must revisit a node.
func (g *Graph) findCycle(pending map[string]int) []string {
	var start string
	for _, n := range g.nodes {
		if pending[n] > 0 {
			start = n
			break
		}
	}

	visited := make(map[string]int)
	var path []string
	for n := start; ; {
		if at, ok := visited[n]; ok {
			return append(path[at:], n)
		}
		visited[n] = len(path)
		path = append(path, n)

		next := ""
		for _, dep := range g.edges[n] {
			if pending[dep] > 0 {
				next = dep
				break
			}
		}
		if next == "" {
			// Unreachable for a graph that failed ordering.
			return path
		}
		n = next
	}
}
