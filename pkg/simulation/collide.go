package simulation

import (
	"math"
	"math/rand"

	"github.com/dd0wney/discograph-layout/pkg/graph"
)

// Collide pushes apart bodies whose circles overlap. Positions are predicted
// one step ahead (x + vx) and the correction is not scaled by alpha.
type Collide struct {
	Radius     NodeFunc
	Strength   float64
	Iterations int

	nodes  []*graph.Node
	radii  []float64
	xs, ys []float64
	rng    *rand.Rand
}

// NewCollide creates a collision force with strength 1 and one iteration
func NewCollide(radius NodeFunc) *Collide {
	return &Collide{Radius: radius, Strength: 1, Iterations: 1}
}

func (f *Collide) Initialize(nodes []*graph.Node, rng *rand.Rand) {
	f.nodes = nodes
	f.rng = rng
	f.radii = make([]float64, len(nodes))
	f.xs = make([]float64, len(nodes))
	f.ys = make([]float64, len(nodes))
	for i, n := range nodes {
		if f.Radius == nil {
			f.radii[i] = 1
			continue
		}
		f.radii[i] = f.Radius(n)
	}
}

func (f *Collide) Apply(float64) {
	if len(f.nodes) < 2 {
		return
	}

	for k := 0; k < max(f.Iterations, 1); k++ {
		for i, n := range f.nodes {
			f.xs[i], f.ys[i] = n.X+n.VX, n.Y+n.VY
		}
		tree := buildQuadtree(f.xs, f.ys)
		tree.visitAfter(f.prepare)

		for i, node := range f.nodes {
			ri := f.radii[i]
			ri2 := ri * ri
			xi, yi := node.X+node.VX, node.Y+node.VY

			tree.visit(func(q *quad) bool {
				if q.leaf() {
					for _, j := range q.points {
						if j <= i {
							continue
						}
						other := f.nodes[j]
						rj := f.radii[j]
						r := ri + rj
						x := xi - other.X - other.VX
						y := yi - other.Y - other.VY
						l := x*x + y*y
						if l >= r*r {
							continue
						}
						if x == 0 {
							x = jiggle(f.rng)
							l += x * x
						}
						if y == 0 {
							y = jiggle(f.rng)
							l += y * y
						}
						l = math.Sqrt(l)
						l = (r - l) / l * f.Strength
						x *= l
						y *= l
						share := rj * rj / (ri2 + rj*rj)
						node.VX += x * share
						node.VY += y * share
						other.VX -= x * (1 - share)
						other.VY -= y * (1 - share)
					}
					return true
				}
				r := ri + q.r
				return q.x0 > xi+r || q.x1 < xi-r || q.y0 > yi+r || q.y1 < yi-r
			})
		}
	}
}

// prepare records the largest radius inside each cell
func (f *Collide) prepare(q *quad) {
	q.r = 0
	if q.leaf() {
		for _, j := range q.points {
			q.r = max(q.r, f.radii[j])
		}
		return
	}
	for _, c := range q.children {
		if c != nil {
			q.r = max(q.r, c.r)
		}
	}
}
