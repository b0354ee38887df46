package graph

import (
	"math/rand"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	// DefaultSpread scales the random offset of newly placed nodes per hop
	DefaultSpread = 180.0
	// DefaultSeed seeds the placement random source
	DefaultSeed int64 = 42
)

// Model is the live store of every known node and edge, not only the current
// page. It is mutated in place by Merge and by pruning so that positions and
// velocities survive successive payloads. Model is not safe for concurrent use.
type Model struct {
	nodes *orderedmap.OrderedMap[string, *Node]
	edges *orderedmap.OrderedMap[string, *Edge]

	center      Center
	pageCount   int
	maxDistance int

	anchorX, anchorY float64
	spread           float64
	rng              *rand.Rand
}

// ModelOption configures a Model
type ModelOption func(*Model)

// WithSeed seeds the random source used to place new nodes
func WithSeed(seed int64) ModelOption {
	return func(m *Model) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

// WithSpread sets the per-hop placement spread of new nodes
func WithSpread(spread float64) ModelOption {
	return func(m *Model) {
		m.spread = spread
	}
}

// WithAnchor sets the initial coordinate new nodes are placed around
func WithAnchor(x, y float64) ModelOption {
	return func(m *Model) {
		m.anchorX, m.anchorY = x, y
	}
}

// NewModel creates an empty model
func NewModel(opts ...ModelOption) *Model {
	m := &Model{
		nodes:  orderedmap.New[string, *Node](),
		edges:  orderedmap.New[string, *Edge](),
		spread: DefaultSpread,
		rng:    rand.New(rand.NewSource(DefaultSeed)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NodeCount returns the number of live nodes, intermediates included
func (m *Model) NodeCount() int { return m.nodes.Len() }

// EdgeCount returns the number of live edges, splines included
func (m *Model) EdgeCount() int { return m.edges.Len() }

// Node returns the live node with the given key
func (m *Model) Node(key string) (*Node, bool) { return m.nodes.Get(key) }

// Edge returns the live edge with the given key
func (m *Model) Edge(key string) (*Edge, bool) { return m.edges.Get(key) }

// Nodes returns the live nodes in insertion order
func (m *Model) Nodes() []*Node {
	out := make([]*Node, 0, m.nodes.Len())
	for pair := m.nodes.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Edges returns the live edges in insertion order
func (m *Model) Edges() []*Edge {
	out := make([]*Edge, 0, m.edges.Len())
	for pair := m.edges.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// RemoveNode deletes a node. Edges referencing it are left to the caller.
func (m *Model) RemoveNode(key string) bool {
	_, ok := m.nodes.Delete(key)
	return ok
}

// RemoveEdge deletes an edge
func (m *Model) RemoveEdge(key string) bool {
	_, ok := m.edges.Delete(key)
	return ok
}

// Center returns the entity the last merged payload was queried for
func (m *Model) Center() Center { return m.center }

// PageCount returns the page count of the last merged payload
func (m *Model) PageCount() int { return m.pageCount }

// MaxDistance returns the largest hop distance among live real nodes
func (m *Model) MaxDistance() int { return m.maxDistance }

// Anchor returns the coordinate new nodes are placed around
func (m *Model) Anchor() (x, y float64) { return m.anchorX, m.anchorY }

// SetAnchor moves the coordinate new nodes are placed around
func (m *Model) SetAnchor(x, y float64) {
	m.anchorX, m.anchorY = x, y
}

func (m *Model) recomputeMaxDistance() {
	m.maxDistance = 0
	for pair := m.nodes.Oldest(); pair != nil; pair = pair.Next() {
		n := pair.Value
		if !n.IsIntermediate() && n.Distance > m.maxDistance {
			m.maxDistance = n.Distance
		}
	}
}
