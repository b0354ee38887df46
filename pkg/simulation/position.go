package simulation

import (
	"math/rand"

	"github.com/dd0wney/discograph-layout/pkg/graph"
)

// Axis selects the coordinate a Position force acts on
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Position pulls every body toward a target coordinate on one axis with a
// per-node strength computed at initialization
type Position struct {
	Axis     Axis
	Target   float64
	Strength NodeFunc

	nodes     []*graph.Node
	strengths []float64
}

// NewPosition creates a one-axis gravity toward target
func NewPosition(axis Axis, target float64, strength NodeFunc) *Position {
	return &Position{Axis: axis, Target: target, Strength: strength}
}

func (f *Position) Initialize(nodes []*graph.Node, _ *rand.Rand) {
	f.nodes = nodes
	f.strengths = make([]float64, len(nodes))
	for i, n := range nodes {
		if f.Strength == nil {
			f.strengths[i] = 0.1
			continue
		}
		f.strengths[i] = f.Strength(n)
	}
}

func (f *Position) Apply(alpha float64) {
	for i, n := range f.nodes {
		k := f.strengths[i] * alpha
		if f.Axis == AxisX {
			n.VX += (f.Target - n.X) * k
		} else {
			n.VY += (f.Target - n.Y) * k
		}
	}
}

// Center translates all bodies so their mean position sits on (X, Y)
type Center struct {
	X, Y     float64
	Strength float64

	nodes []*graph.Node
}

// NewCenter creates a full-strength centering translation
func NewCenter(x, y float64) *Center {
	return &Center{X: x, Y: y, Strength: 1}
}

func (f *Center) Initialize(nodes []*graph.Node, _ *rand.Rand) {
	f.nodes = nodes
}

func (f *Center) Apply(float64) {
	if len(f.nodes) == 0 {
		return
	}
	var sx, sy float64
	for _, n := range f.nodes {
		sx += n.X
		sy += n.Y
	}
	sx = (sx/float64(len(f.nodes)) - f.X) * f.Strength
	sy = (sy/float64(len(f.nodes)) - f.Y) * f.Strength
	for _, n := range f.nodes {
		n.X -= sx
		n.Y -= sy
	}
}

// Anchor is a constraint that snaps one body onto (X, Y) after every tick
// unless it is pinned
type Anchor struct {
	Key  string
	X, Y float64

	node *graph.Node
}

// NewAnchor creates an anchor for the node with the given key
func NewAnchor(key string, x, y float64) *Anchor {
	return &Anchor{Key: key, X: x, Y: y}
}

func (f *Anchor) Initialize(nodes []*graph.Node, _ *rand.Rand) {
	f.node = nil
	for _, n := range nodes {
		if n.Key == f.Key {
			f.node = n
			return
		}
	}
}

func (f *Anchor) Constrain() {
	if f.node == nil || f.node.Fixed {
		return
	}
	f.node.X, f.node.Y = f.X, f.Y
	f.node.VX, f.node.VY = 0, 0
}

// Midpoint pulls each relation waypoint toward the midpoint of the
// relation's endpoints
type Midpoint struct {
	Strength float64

	waypoints []*graph.Node
}

// NewMidpoint creates a waypoint force
func NewMidpoint(strength float64) *Midpoint {
	return &Midpoint{Strength: strength}
}

func (f *Midpoint) Initialize(nodes []*graph.Node, _ *rand.Rand) {
	f.waypoints = f.waypoints[:0]
	for _, n := range nodes {
		if n.IsIntermediate() && n.Edge != nil && n.Edge.Source != nil && n.Edge.Target != nil {
			f.waypoints = append(f.waypoints, n)
		}
	}
}

func (f *Midpoint) Apply(alpha float64) {
	k := f.Strength * alpha
	for _, n := range f.waypoints {
		e := n.Edge
		mx := (e.Source.X + e.Target.X) / 2
		my := (e.Source.Y + e.Target.Y) / 2
		n.VX += (mx - n.X) * k
		n.VY += (my - n.Y) * k
	}
}
