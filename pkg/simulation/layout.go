package simulation

import (
	"math"

	"github.com/dd0wney/discograph-layout/pkg/graph"
)

// Force names used by Layout
const (
	ForceAnchor   = "anchor"
	ForceCollide  = "collide"
	ForceCharge   = "charge"
	ForceMidpoint = "midpoint"
	ForceX        = "x"
	ForceY        = "y"
	ForceLink     = "link"
	ForceCenter   = "center"
	ForceBBox     = "bbox"
)

// Layout holds the tuned discograph force parameters
type Layout struct {
	Width, Height float64

	ChargeStrength      float64
	ChargeHops          float64
	Theta               float64
	DistanceMin         float64
	DistanceMax         float64
	WaypointBoost       float64
	WaypointRadius      float64
	WaypointFalloff     float64
	MidpointStrength    float64
	LinkDistanceAlias   float64
	LinkDistanceRelease float64
	LinkDistance        float64
	LinkIterations      int
	CollideBuffer       float64
	CollideIterations   int
	CollideStrength     float64
	GravityMinNodes     int
	GravityMaxNodes     int
	GravityHops         float64
	GravityDivisor      float64
	Centering           bool
	BBoxLeft            float64
	BBoxRight           float64
	BBoxTop             float64
	BBoxBottom          float64
}

// DefaultLayout returns the tuned constants for a viewport of the given size
func DefaultLayout(width, height float64) Layout {
	return Layout{
		Width:               width,
		Height:              height,
		ChargeStrength:      -350,
		ChargeHops:          4,
		Theta:               0.9,
		DistanceMin:         1,
		DistanceMax:         2000,
		WaypointBoost:       3,
		WaypointRadius:      300,
		WaypointFalloff:     0.5,
		MidpointStrength:    0.3,
		LinkDistanceAlias:   20,
		LinkDistanceRelease: 200,
		LinkDistance:        180,
		LinkIterations:      3,
		CollideBuffer:       12,
		CollideIterations:   2,
		CollideStrength:     1,
		GravityMinNodes:     16,
		GravityMaxNodes:     500,
		GravityHops:         3,
		GravityDivisor:      5,
		Centering:           true,
		BBoxLeft:            20,
		BBoxRight:           100,
		BBoxTop:             100,
		BBoxBottom:          100,
	}
}

// ViewportCenter returns the geometric center of the viewport
func (l Layout) ViewportCenter() (x, y float64) {
	return l.Width / 2, l.Height / 2
}

// GravityActive reports whether a page with visible real nodes gets gravity
func (l Layout) GravityActive(visible int) bool {
	return visible > l.GravityMinNodes && visible < l.GravityMaxNodes
}

// NodeStrength is the charge of a body. Entities nearer the center repel
// harder; waypoints near the viewport center repel hardest.
func (l Layout) NodeStrength(n *graph.Node) float64 {
	if n.IsIntermediate() {
		cx, cy := l.ViewportCenter()
		if math.Hypot(n.X-cx, n.Y-cy) <= l.WaypointRadius {
			return l.WaypointBoost * l.ChargeStrength
		}
		return l.ChargeStrength * l.WaypointFalloff
	}
	return math.Max(l.ChargeHops-float64(n.Distance), 0) * l.ChargeStrength
}

// GravityStrength pulls near-center, low-hop entities hardest
func (l Layout) GravityStrength(n *graph.Node) float64 {
	if n.IsIntermediate() {
		return 0
	}
	maxDim := math.Max(l.Width, l.Height)
	if maxDim <= 0 {
		return 0
	}
	cx, cy := l.ViewportCenter()
	radial := (maxDim - math.Hypot(n.X-cx, n.Y-cy)) / maxDim
	g := radial * (l.GravityHops - float64(n.Distance)) / l.GravityDivisor
	return math.Max(g, 0)
}

// LinkLength is the rest length of a relation
func (l Layout) LinkLength(e *graph.Edge) float64 {
	switch e.Role {
	case graph.RoleAlias:
		return l.LinkDistanceAlias
	case graph.RoleReleasedOn:
		return l.LinkDistanceRelease
	default:
		return l.LinkDistance
	}
}

// CollideRadius is a body's radius plus the collision buffer
func (l Layout) CollideRadius(n *graph.Node) float64 {
	return n.Radius + l.CollideBuffer
}

// Install registers the discograph forces on s in tick order, followed by the
// anchor and bbox constraints. The anchor holds centerKey on the viewport
// center; gravity is installed only for pages inside the sweet spot.
func (l Layout) Install(s *Simulation, centerKey string, visible int) {
	cx, cy := l.ViewportCenter()

	for _, name := range []string{ForceAnchor, ForceCollide, ForceCharge, ForceMidpoint, ForceX, ForceY, ForceLink, ForceCenter, ForceBBox} {
		s.RemoveForce(name)
	}

	collide := NewCollide(l.CollideRadius)
	collide.Iterations = l.CollideIterations
	collide.Strength = l.CollideStrength
	s.AddForce(ForceCollide, collide)

	charge := NewManyBody(l.NodeStrength)
	charge.Theta = l.Theta
	charge.DistanceMin = l.DistanceMin
	charge.DistanceMax = l.DistanceMax
	s.AddForce(ForceCharge, charge)

	s.AddForce(ForceMidpoint, NewMidpoint(l.MidpointStrength))

	if l.GravityActive(visible) {
		s.AddForce(ForceX, NewPosition(AxisX, cx, l.GravityStrength))
		s.AddForce(ForceY, NewPosition(AxisY, cy, l.GravityStrength))
	}

	link := NewLink(l.LinkLength)
	link.Iterations = l.LinkIterations
	s.AddForce(ForceLink, link)

	if l.Centering {
		s.AddForce(ForceCenter, NewCenter(cx, cy))
	}

	s.AddConstraint(ForceAnchor, NewAnchor(centerKey, cx, cy))

	bbox := NewBBox(l.Width, l.Height)
	bbox.Left, bbox.Right, bbox.Top, bbox.Bottom = l.BBoxLeft, l.BBoxRight, l.BBoxTop, l.BBoxBottom
	s.AddConstraint(ForceBBox, bbox)
}
