// Package graph holds the in-memory attributed graph built by a crawl and
// consumed by the codecs. A Graph has a single owner at a time and is not
// safe for concurrent mutation.
package graph

import (
	"sort"

	"github.com/persistorai/degrees/internal/models"
)

// DegreeKey is the node attribute recording distance from the seed.
const DegreeKey = "degree"

// Node is a graph vertex identified by its display name.
type Node struct {
	ID    string
	Attrs Attributes
}

// Degree returns the recorded degree attribute, or -1 when absent or invalid.
func (n Node) Degree() int {
	d, err := n.Attrs.Int(DegreeKey)
	if err != nil {
		return -1
	}

	return d
}

// Edge is an unordered pair of node identities.
type Edge struct {
	Source string
	Target string
	Attrs  Attributes
}

type pair struct{ a, b string }

// Graph is an ordered set of nodes and edges.
type Graph struct {
	ID       string
	Directed bool

	nodes []Node
	index map[string]int
	edges []Edge
	pairs map[pair]struct{}
	adj   map[string][]string
}

// New returns an empty graph.
func New(id string, directed bool) *Graph {
	return &Graph{
		ID:       id,
		Directed: directed,
		index:    make(map[string]int),
		pairs:    make(map[pair]struct{}),
		adj:      make(map[string][]string),
	}
}

// AddNode inserts a node when id is new. Attributes are applied on first
// insertion only. It reports whether the node was created.
func (g *Graph) AddNode(id string, attrs Attributes) bool {
	if _, ok := g.index[id]; ok {
		return false
	}

	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, Node{ID: id, Attrs: attrs.Clone()})

	return true
}

// AddEdge inserts an edge between two existing nodes unless one already
// exists in either ordering. It reports whether the edge was inserted.
func (g *Graph) AddEdge(source, target string, attrs Attributes) (bool, error) {
	if !g.HasNode(source) {
		return false, &models.InvalidEdgeError{Source: source, Target: target, Missing: source}
	}

	if !g.HasNode(target) {
		return false, &models.InvalidEdgeError{Source: source, Target: target, Missing: target}
	}

	if g.HasEdge(source, target) {
		return false, nil
	}

	g.pairs[pair{source, target}] = struct{}{}
	g.edges = append(g.edges, Edge{Source: source, Target: target, Attrs: attrs.Clone()})
	g.adj[source] = append(g.adj[source], target)

	if source != target {
		g.adj[target] = append(g.adj[target], source)
	}

	return true, nil
}

// HasNode reports whether id is a node.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// HasEdge reports whether an edge joins a and b in either ordering.
func (g *Graph) HasEdge(a, b string) bool {
	if _, ok := g.pairs[pair{a, b}]; ok {
		return true
	}

	_, ok := g.pairs[pair{b, a}]

	return ok
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}

	n := g.nodes[i]

	return Node{ID: n.ID, Attrs: n.Attrs.Clone()}, true
}

// Nodes returns copies of the nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = Node{ID: n.ID, Attrs: n.Attrs.Clone()}
	}

	return out
}

// Edges returns copies of the edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	for i, e := range g.edges {
		out[i] = Edge{Source: e.Source, Target: e.Target, Attrs: e.Attrs.Clone()}
	}

	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Neighbors returns the ids adjacent to id in edge insertion order.
func (g *Graph) Neighbors(id string) []string {
	n := g.adj[id]
	out := make([]string, len(n))
	copy(out, n)

	return out
}

// MaxDegree returns the largest recorded degree, or -1 for a graph with no
// degree-labelled nodes.
func (g *Graph) MaxDegree() int {
	highest := -1
	for _, n := range g.nodes {
		if d := n.Degree(); d > highest {
			highest = d
		}
	}

	return highest
}

// DegreeCount is the number of nodes recorded at one degree.
type DegreeCount struct {
	Degree int
	Count  int
}

// DegreeHistogram counts nodes per recorded degree, ascending.
// Nodes without a degree attribute are not counted.
func (g *Graph) DegreeHistogram() []DegreeCount {
	counts := make(map[int]int)
	for _, n := range g.nodes {
		if d := n.Degree(); d >= 0 {
			counts[d]++
		}
	}

	out := make([]DegreeCount, 0, len(counts))
	for d, c := range counts {
		out = append(out, DegreeCount{Degree: d, Count: c})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Degree < out[j].Degree })

	return out
}
