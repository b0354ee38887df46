package simulation

import (
	"math"
	"math/rand"

	"github.com/dd0wney/discograph-layout/pkg/graph"
)

// NodeFunc computes a per-node parameter at initialization time
type NodeFunc func(n *graph.Node) float64

// ManyBody applies pairwise charge between all bodies using the Barnes-Hut
// approximation. Negative strengths repel.
type ManyBody struct {
	Strength    NodeFunc
	Theta       float64
	DistanceMin float64
	DistanceMax float64

	nodes     []*graph.Node
	strengths []float64
	xs, ys    []float64
	rng       *rand.Rand
}

// NewManyBody creates a charge force with theta 0.9, distanceMin 1 and no
// distance limit
func NewManyBody(strength NodeFunc) *ManyBody {
	return &ManyBody{
		Strength:    strength,
		Theta:       0.9,
		DistanceMin: 1,
		DistanceMax: math.Inf(1),
	}
}

func (f *ManyBody) Initialize(nodes []*graph.Node, rng *rand.Rand) {
	f.nodes = nodes
	f.rng = rng
	f.strengths = make([]float64, len(nodes))
	f.xs = make([]float64, len(nodes))
	f.ys = make([]float64, len(nodes))
	for i, n := range nodes {
		if f.Strength == nil {
			f.strengths[i] = -30
			continue
		}
		f.strengths[i] = f.Strength(n)
	}
}

func (f *ManyBody) Apply(alpha float64) {
	if len(f.nodes) < 2 {
		return
	}
	for i, n := range f.nodes {
		f.xs[i], f.ys[i] = n.X, n.Y
	}

	tree := buildQuadtree(f.xs, f.ys)
	tree.visitAfter(f.accumulate)

	theta2 := f.Theta * f.Theta
	dMin2 := f.DistanceMin * f.DistanceMin
	dMax2 := f.DistanceMax * f.DistanceMax

	for i, node := range f.nodes {
		tree.visit(func(q *quad) bool {
			if q.value == 0 {
				return true
			}

			if q.leaf() {
				for _, j := range q.points {
					if j == i {
						continue
					}
					x, y := f.xs[j]-node.X, f.ys[j]-node.Y
					l := x*x + y*y
					if l >= dMax2 {
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
					if l < dMin2 {
						l = math.Sqrt(dMin2 * l)
					}
					w := f.strengths[j] * alpha / l
					node.VX += x * w
					node.VY += y * w
				}
				return true
			}

			x, y := q.cx-node.X, q.cy-node.Y
			w := q.x1 - q.x0
			l := x*x + y*y

			// far enough to treat the cell as a single body
			if w*w/theta2 < l {
				if l < dMax2 {
					if x == 0 {
						x = jiggle(f.rng)
						l += x * x
					}
					if y == 0 {
						y = jiggle(f.rng)
						l += y * y
					}
					if l < dMin2 {
						l = math.Sqrt(dMin2 * l)
					}
					node.VX += x * q.value * alpha / l
					node.VY += y * q.value * alpha / l
				}
				return true
			}
			return false
		})
	}
}

// accumulate sums the charge of a cell and its charge-weighted center
func (f *ManyBody) accumulate(q *quad) {
	if q.leaf() {
		q.value, q.cx, q.cy = 0, 0, 0
		for _, j := range q.points {
			q.value += f.strengths[j]
			q.cx += f.xs[j]
			q.cy += f.ys[j]
		}
		q.cx /= float64(len(q.points))
		q.cy /= float64(len(q.points))
		return
	}

	var strength, weight, x, y float64
	for _, c := range q.children {
		if c == nil || c.value == 0 {
			continue
		}
		a := math.Abs(c.value)
		strength += c.value
		weight += a
		x += a * c.cx
		y += a * c.cy
	}
	q.value = strength
	if weight > 0 {
		q.cx, q.cy = x/weight, y/weight
	}
}
