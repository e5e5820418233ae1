// Package graph implements a small directed graph with labelled edges,
// reachability queries and transitive reduction.
package graph

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Edge is a directed edge with an optional label.
type Edge[K cmp.Ordered] struct {
	From K
	To   K
	ID   string
}

type edgeKey[K cmp.Ordered] struct {
	from, to K
}

// Graph is a directed graph over ordered keys. Every operation on a
// missing node or edge is a no-op. Query results are sorted.
type Graph[K cmp.Ordered] struct {
	edges map[K]map[K]struct{}
	ids   map[edgeKey[K]]string
}

// New returns an empty graph.
func New[K cmp.Ordered]() *Graph[K] {
	return &Graph[K]{
		edges: make(map[K]map[K]struct{}),
		ids:   make(map[edgeKey[K]]string),
	}
}

// AddNode adds id unless it already exists.
func (g *Graph[K]) AddNode(id K) {
	if _, ok := g.edges[id]; !ok {
		g.edges[id] = make(map[K]struct{})
	}
}

// HasNode reports whether id is in the graph.
func (g *Graph[K]) HasNode(id K) bool {
	_, ok := g.edges[id]
	return ok
}

// Nodes returns all nodes in ascending order.
func (g *Graph[K]) Nodes() []K {
	nodes := make([]K, 0, len(g.edges))
	for n := range g.edges {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	return nodes
}

// Edges returns all edges ordered by source then target.
func (g *Graph[K]) Edges() []Edge[K] {
	var edges []Edge[K]
	for _, from := range g.Nodes() {
		for _, to := range sortedKeys(g.edges[from]) {
			edges = append(edges, Edge[K]{From: from, To: to, ID: g.ids[edgeKey[K]{from, to}]})
		}
	}
	return edges
}

// AddEdge connects from to to, creating missing nodes. An existing edge is
// left untouched, including its label.
func (g *Graph[K]) AddEdge(from, to K, id string) {
	if g.HasEdge(from, to) {
		return
	}
	g.AddNode(from)
	g.AddNode(to)
	g.edges[from][to] = struct{}{}
	if id != "" {
		g.ids[edgeKey[K]{from, to}] = id
	}
}

// HasEdge reports whether the edge from -> to exists.
func (g *Graph[K]) HasEdge(from, to K) bool {
	neighbors, ok := g.edges[from]
	if !ok {
		return false
	}
	_, ok = neighbors[to]
	return ok
}

// HasEdgeID reports whether some live edge carries id.
func (g *Graph[K]) HasEdgeID(id string) bool {
	if id == "" {
		return false
	}
	for _, v := range g.ids {
		if v == id {
			return true
		}
	}
	return false
}

// EdgeID returns the label of from -> to.
func (g *Graph[K]) EdgeID(from, to K) (string, bool) {
	id, ok := g.ids[edgeKey[K]{from, to}]
	return id, ok
}

// RemoveEdge deletes from -> to. With removeUnconnected, endpoints left
// without any edge are removed as well.
func (g *Graph[K]) RemoveEdge(from, to K, removeUnconnected bool) {
	if !g.HasEdge(from, to) {
		return
	}
	delete(g.edges[from], to)
	delete(g.ids, edgeKey[K]{from, to})

	if removeUnconnected {
		if g.IsIsolated(from) {
			g.RemoveNode(from, false)
		}
		if g.IsIsolated(to) {
			g.RemoveNode(to, false)
		}
	}
}

// RemoveNode deletes id and every edge touching it. With
// removeUnconnectedNeighbors, former successors left isolated are removed
// too.
func (g *Graph[K]) RemoveNode(id K, removeUnconnectedNeighbors bool) {
	if !g.HasNode(id) {
		return
	}
	for _, n := range g.IncomingNeighbors(id, false) {
		delete(g.edges[n], id)
		delete(g.ids, edgeKey[K]{n, id})
	}
	successors := sortedKeys(g.edges[id])
	for _, n := range successors {
		delete(g.ids, edgeKey[K]{id, n})
	}
	delete(g.edges, id)

	if !removeUnconnectedNeighbors {
		return
	}
	for _, n := range successors {
		if g.HasNode(n) && g.IsIsolated(n) {
			g.RemoveNode(n, true)
		}
	}
}

// ReachableNodes returns the nodes reachable from id, following edges
// backwards when reverse is set. Without recursive only direct neighbours
// are returned. Cycles are handled with a visited set.
func (g *Graph[K]) ReachableNodes(id K, recursive, reverse bool) []K {
	result := make(map[K]struct{})
	visited := make(map[K]struct{})
	stack := []K{id}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[current]; seen || !g.HasNode(current) {
			continue
		}
		visited[current] = struct{}{}

		var next []K
		if reverse {
			next = g.predecessors(current)
		} else {
			next = sortedKeys(g.edges[current])
		}
		for _, n := range next {
			result[n] = struct{}{}
		}
		stack = append(stack, next...)

		if !recursive {
			break
		}
	}
	return sortedKeys(result)
}

// IncomingNeighbors returns the predecessors of id (all ancestors when
// recursive).
func (g *Graph[K]) IncomingNeighbors(id K, recursive bool) []K {
	return g.ReachableNodes(id, recursive, true)
}

// OutgoingNeighbors returns the successors of id (all descendants when
// recursive).
func (g *Graph[K]) OutgoingNeighbors(id K, recursive bool) []K {
	return g.ReachableNodes(id, recursive, false)
}

// HasPath reports whether to can be reached from from.
func (g *Graph[K]) HasPath(from, to K) bool {
	if from == to {
		return true
	}
	_, found := slices.BinarySearch(g.ReachableNodes(from, true, false), to)
	return found
}

// IsIsolated reports whether id has neither incoming nor outgoing edges.
func (g *Graph[K]) IsIsolated(id K) bool {
	return len(g.edges[id]) == 0 && len(g.predecessors(id)) == 0
}

// TransitivelyReduce removes edges implied by longer paths. For each node
// and each ordered pair of its successors (c1, c2), the edge node -> c2 is
// dropped when c1 reaches c2 and c1 does not reach node; the second
// condition keeps edges that close a cycle back to node.
func (g *Graph[K]) TransitivelyReduce() {
	var removals []edgeKey[K]
	for _, node := range g.Nodes() {
		children := sortedKeys(g.edges[node])
		for _, c1 := range children {
			for _, c2 := range children {
				if c1 == c2 {
					continue
				}
				if g.HasPath(c1, c2) && !g.HasPath(c1, node) {
					removals = append(removals, edgeKey[K]{node, c2})
				}
			}
		}
	}
	for _, e := range removals {
		g.RemoveEdge(e.from, e.to, true)
	}
}

// Dot renders the graph in Graphviz format, labelling edges with their id
// when labels is set.
func (g *Graph[K]) Dot(labels bool) string {
	var b strings.Builder
	b.WriteString("digraph g {\n")
	for _, from := range g.Nodes() {
		fmt.Fprintf(&b, "  %v\n", from)
		for _, to := range sortedKeys(g.edges[from]) {
			fmt.Fprintf(&b, "  %v -> %v", from, to)
			if id, ok := g.EdgeID(from, to); ok && labels {
				fmt.Fprintf(&b, " [label=%q]", id)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func (g *Graph[K]) predecessors(id K) []K {
	var result []K
	for n, neighbors := range g.edges {
		if _, ok := neighbors[id]; ok {
			result = append(result, n)
		}
	}
	slices.Sort(result)
	return result
}

func sortedKeys[K cmp.Ordered](m map[K]struct{}) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
