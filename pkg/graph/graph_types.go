package graph

import (
	"slices"
)

// NodeKind discriminates real entities from synthesized relation waypoints
type NodeKind int

const (
	// KindArtist is an artist entity
	KindArtist NodeKind = iota
	// KindLabel is a record label entity
	KindLabel
	// KindIntermediate is a zero-size waypoint sitting on a relation's curve
	KindIntermediate
)

// String returns the payload spelling of the kind
func (k NodeKind) String() string {
	switch k {
	case KindArtist:
		return "artist"
	case KindLabel:
		return "label"
	case KindIntermediate:
		return "intermediate"
	default:
		return "unknown"
	}
}

// RoleAlias is the relation role that never gets an intermediate node
const RoleAlias = "Alias"

// RoleReleasedOn is the label relation with its own spring length
const RoleReleasedOn = "Released On"

// Node is an artist, a label, or a relation waypoint.
//
// Relationship fields (Distance, Links, Pages, Missing, ...) are written by
// Model.Merge and the pruning engine. Position fields (X, Y, VX, VY) belong
// to the simulation once the node has been seeded.
type Node struct {
	Key      string
	Kind     NodeKind
	Name     string
	Distance int
	Size     float64
	Radius   float64
	Cluster  *int

	Links         []string
	Pages         []int
	Missing       int
	MissingByPage map[int]int
	HasMissing    bool

	X, Y   float64
	VX, VY float64
	Fixed  bool
	FX, FY float64

	// Edge is the relation an intermediate node belongs to
	Edge *Edge
}

// IsIntermediate reports whether the node is a synthesized waypoint
func (n *Node) IsIntermediate() bool {
	return n.Kind == KindIntermediate
}

// HasPage reports whether the node is visible on page p
func (n *Node) HasPage(p int) bool {
	return slices.Contains(n.Pages, p)
}

// Pin fixes the node at (x, y); the simulation will not move it
func (n *Node) Pin(x, y float64) {
	n.Fixed = true
	n.FX, n.FY = x, y
}

// Unpin returns the node to normal physics
func (n *Node) Unpin() {
	n.Fixed = false
}

// InnerRadius is the radius of the drawn glyph, smaller than the collision radius
func (n *Node) InnerRadius() float64 {
	if n.IsIntermediate() {
		return 0
	}
	return innerRadiusBase + radiusBoost(n)
}

// Edge is a relation between two nodes, or a spline segment between a node
// and a relation's intermediate waypoint.
type Edge struct {
	Key             string
	Role            string
	SourceKey       string
	TargetKey       string
	IntermediateKey string
	IsSpline        bool
	Distance        int
	Pages           []int

	Source       *Node
	Target       *Node
	Intermediate *Node
}

// HasPage reports whether the edge is visible on page p
func (e *Edge) HasPage(p int) bool {
	return slices.Contains(e.Pages, p)
}

// Touches reports whether either endpoint has the given key
func (e *Edge) Touches(key string) bool {
	return e.SourceKey == key || e.TargetKey == key
}

// Center identifies the entity a payload was queried for
type Center struct {
	Key  string `json:"key" validate:"required"`
	Name string `json:"name"`
}

// MergeResult summarizes what a merge changed
type MergeResult struct {
	NodesAdded   int
	NodesUpdated int
	NodesRemoved int
	EdgesAdded   int
	EdgesUpdated int
	EdgesRemoved int
}
