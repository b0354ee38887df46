package simulation

import (
	"math"
	"math/rand"

	"github.com/dd0wney/discograph-layout/pkg/graph"
)

// EdgeFunc computes a per-edge parameter at initialization time
type EdgeFunc func(e *graph.Edge) float64

// Link pulls the endpoints of every bound edge toward a rest length. Edges
// whose endpoints are not both bound bodies are ignored.
type Link struct {
	Distance   EdgeFunc
	Strength   EdgeFunc
	Iterations int

	nodes []*graph.Node
	links []*graph.Edge
	rng   *rand.Rand

	active    []linkTerm
	distances []float64
	strengths []float64
	bias      []float64
}

type linkTerm struct {
	source, target *graph.Node
	edge           *graph.Edge
}

// NewLink creates a spring force with rest length distance and one iteration
func NewLink(distance EdgeFunc) *Link {
	return &Link{Distance: distance, Iterations: 1}
}

func (f *Link) Initialize(nodes []*graph.Node, rng *rand.Rand) {
	f.nodes = nodes
	f.rng = rng
	f.bind()
}

func (f *Link) SetLinks(links []*graph.Edge) {
	f.links = links
	f.bind()
}

func (f *Link) bind() {
	bound := make(map[*graph.Node]struct{}, len(f.nodes))
	for _, n := range f.nodes {
		bound[n] = struct{}{}
	}

	f.active = f.active[:0]
	count := make(map[*graph.Node]int, len(f.nodes))
	for _, e := range f.links {
		if e.IsSpline || e.Source == nil || e.Target == nil {
			continue
		}
		if _, ok := bound[e.Source]; !ok {
			continue
		}
		if _, ok := bound[e.Target]; !ok {
			continue
		}
		f.active = append(f.active, linkTerm{e.Source, e.Target, e})
		count[e.Source]++
		count[e.Target]++
	}

	f.distances = make([]float64, len(f.active))
	f.strengths = make([]float64, len(f.active))
	f.bias = make([]float64, len(f.active))
	for i, t := range f.active {
		cs, ct := float64(count[t.source]), float64(count[t.target])
		f.bias[i] = cs / (cs + ct)

		if f.Strength != nil {
			f.strengths[i] = f.Strength(t.edge)
		} else {
			f.strengths[i] = 1 / math.Min(cs, ct)
		}

		if f.Distance != nil {
			f.distances[i] = f.Distance(t.edge)
		} else {
			f.distances[i] = 30
		}
	}
}

func (f *Link) Apply(alpha float64) {
	for k := 0; k < max(f.Iterations, 1); k++ {
		for i, t := range f.active {
			s, tg := t.source, t.target
			x := tg.X + tg.VX - s.X - s.VX
			if x == 0 {
				x = jiggle(f.rng)
			}
			y := tg.Y + tg.VY - s.Y - s.VY
			if y == 0 {
				y = jiggle(f.rng)
			}
			l := math.Sqrt(x*x + y*y)
			l = (l - f.distances[i]) / l * alpha * f.strengths[i]
			x *= l
			y *= l

			b := f.bias[i]
			tg.VX -= x * b
			tg.VY -= y * b
			s.VX += x * (1 - b)
			s.VY += y * (1 - b)
		}
	}
}
