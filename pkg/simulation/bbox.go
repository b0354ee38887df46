package simulation

import (
	"math/rand"

	"github.com/dd0wney/discograph-layout/pkg/graph"
)

// BBox keeps every unpinned body inside a margin-adjusted viewport rectangle.
// A body's radius is subtracted from each edge.
type BBox struct {
	Width, Height            float64
	Left, Right, Top, Bottom float64

	nodes []*graph.Node
}

// NewBBox creates a clamp with the discograph margins (20, 100, 100, 100)
func NewBBox(width, height float64) *BBox {
	return &BBox{Width: width, Height: height, Left: 20, Right: 100, Top: 100, Bottom: 100}
}

func (c *BBox) Initialize(nodes []*graph.Node, _ *rand.Rand) {
	c.nodes = nodes
}

func (c *BBox) Constrain() {
	for _, n := range c.nodes {
		if n.Fixed {
			continue
		}
		c.Clamp(n)
	}
}

// Clamp moves n inside the rectangle
func (c *BBox) Clamp(n *graph.Node) {
	n.X = clamp(n.X, c.Left+n.Radius, c.Width-c.Right-n.Radius)
	n.Y = clamp(n.Y, c.Top+n.Radius, c.Height-c.Bottom-n.Radius)
}

// Contains reports whether n lies inside the rectangle
func (c *BBox) Contains(n *graph.Node) bool {
	x := clamp(n.X, c.Left+n.Radius, c.Width-c.Right-n.Radius)
	y := clamp(n.Y, c.Top+n.Radius, c.Height-c.Bottom-n.Radius)
	return x == n.X && y == n.Y
}
