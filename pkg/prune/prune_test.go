package prune

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/dd0wney/discograph-layout/pkg/graph"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// treePayload builds center -> 7 first-hop artists -> 70 second-hop artists
// -> 700 third-hop artists, each third-hop artist with exactly one link
func treePayload() *graph.Payload {
	p := &graph.Payload{Center: graph.Center{Key: "artist-0"}, Pages: 1}
	p.Nodes = append(p.Nodes, graph.NodePayload{Key: "artist-0", Type: "artist", Distance: 0})

	link := func(source, target string) {
		p.Links = append(p.Links, graph.LinkPayload{
			Key:    fmt.Sprintf("%s-member-of-%s", source, target),
			Source: source,
			Target: target,
			Role:   "Member Of",
		})
	}

	id := 1
	for i := 0; i < 7; i++ {
		hop1 := fmt.Sprintf("artist-%d", id)
		id++
		p.Nodes = append(p.Nodes, graph.NodePayload{Key: hop1, Type: "artist", Distance: 1})
		link("artist-0", hop1)

		for j := 0; j < 10; j++ {
			hop2 := fmt.Sprintf("artist-%d", id)
			id++
			p.Nodes = append(p.Nodes, graph.NodePayload{Key: hop2, Type: "artist", Distance: 2})
			link(hop1, hop2)

			for k := 0; k < 10; k++ {
				hop3 := fmt.Sprintf("artist-%d", id)
				id++
				p.Nodes = append(p.Nodes, graph.NodePayload{Key: hop3, Type: "artist", Distance: 3})
				link(hop2, hop3)
			}
		}
	}
	return p
}

// randomPayload builds a layered graph whose third hop has one or two links
func randomPayload(leaves int, seed int64) *graph.Payload {
	rng := rand.New(rand.NewSource(seed))
	p := &graph.Payload{Center: graph.Center{Key: "artist-0"}, Pages: 1}
	p.Nodes = append(p.Nodes, graph.NodePayload{Key: "artist-0", Type: "artist", Distance: 0})

	roles := []string{"Member Of", "Alias", "Released On", "Producer"}
	linkID := 0
	link := func(source, target string) {
		p.Links = append(p.Links, graph.LinkPayload{
			Key:    fmt.Sprintf("link-%d", linkID),
			Source: source,
			Target: target,
			Role:   roles[rng.Intn(len(roles))],
		})
		linkID++
	}

	var hop1, hop2 []string
	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("label-%d", i)
		p.Nodes = append(p.Nodes, graph.NodePayload{Key: key, Type: "label", Distance: 1})
		link("artist-0", key)
		hop1 = append(hop1, key)
	}
	for i := 0; i < 8; i++ {
		key := fmt.Sprintf("artist-2%02d", i)
		p.Nodes = append(p.Nodes, graph.NodePayload{Key: key, Type: "artist", Distance: 2})
		link(hop1[rng.Intn(len(hop1))], key)
		hop2 = append(hop2, key)
	}
	for i := 0; i < leaves; i++ {
		key := fmt.Sprintf("artist-3%03d", i)
		p.Nodes = append(p.Nodes, graph.NodePayload{Key: key, Type: "artist", Distance: 3})
		first := rng.Intn(len(hop2))
		link(hop2[first], key)
		if rng.Float64() < 0.3 {
			link(key, hop2[(first+1)%len(hop2)])
		}
	}
	return p
}

func mergedModel(t *testing.T, p *graph.Payload) *graph.Model {
	t.Helper()
	m := graph.NewModel()
	if _, err := m.Merge(p); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	return m
}

func TestPruneThirdHopLeaves(t *testing.T) {
	m := mergedModel(t, treePayload())
	if m.NodeCount() <= DefaultMaxNodes {
		t.Fatalf("Fixture should exceed the node ceiling, has %d nodes", m.NodeCount())
	}

	rep := New().Run(m)

	if rep.Passes != 1 {
		t.Errorf("Expected a single effective pass, got %d", rep.Passes)
	}
	for _, n := range m.Nodes() {
		if !n.IsIntermediate() && n.Distance == 3 {
			t.Fatalf("Third-hop node %s survived", n.Key)
		}
	}
	// 1 + 7 + 70 entities and 77 waypoints
	if m.NodeCount() != 155 {
		t.Errorf("Expected 155 nodes left, got %d", m.NodeCount())
	}
	if rep.IntermediatesPruned != 700 {
		t.Errorf("Expected 700 waypoints pruned, got %d", rep.IntermediatesPruned)
	}

	for _, n := range m.Nodes() {
		if n.IsIntermediate() || n.Distance != 2 {
			continue
		}
		if n.Missing < 1 || !n.HasMissing {
			t.Errorf("Neighbor %s should report missing connections, has %d", n.Key, n.Missing)
		}
		// per leaf: the relation itself and the spline into the pruned waypoint
		if n.Missing != 20 {
			t.Errorf("Expected %s to miss 20 connections, got %d", n.Key, n.Missing)
		}
	}
	for _, e := range m.Edges() {
		if e.Source == nil || e.Target == nil {
			t.Fatalf("Edge %s left dangling", e.Key)
		}
		if _, ok := m.Node(e.SourceKey); !ok {
			t.Errorf("Edge %s references removed node %s", e.Key, e.SourceKey)
		}
		if _, ok := m.Node(e.TargetKey); !ok {
			t.Errorf("Edge %s references removed node %s", e.Key, e.TargetKey)
		}
	}
}

func TestPruneUnderCeilingIsNoop(t *testing.T) {
	p := randomPayload(20, 1)
	m := mergedModel(t, p)
	nodes, edges := m.NodeCount(), m.EdgeCount()

	rep := New().Run(m)

	if rep.Passes != 0 || rep.NodeCount() != 0 || rep.EdgeCount() != 0 {
		t.Errorf("Expected no pruning under the ceilings, got %+v", rep)
	}
	if m.NodeCount() != nodes || m.EdgeCount() != edges {
		t.Error("Model changed although it was under the ceilings")
	}
}

func TestPruneEdgeCeilingAloneTriggers(t *testing.T) {
	m := mergedModel(t, randomPayload(60, 3))
	e := &Engine{MaxNodes: 1 << 20, MaxLinks: 10, Schedule: DefaultSchedule()}

	rep := e.Pass(m, Threshold{MaxDistance: 3, MinLinks: 100})
	if rep.Passes != 1 {
		t.Fatal("Edge ceiling should trigger the pass")
	}
	for _, n := range m.Nodes() {
		if !n.IsIntermediate() && n.Distance >= 3 {
			t.Errorf("Node %s should have been pruned", n.Key)
		}
	}
}

func TestPruneDeterministic(t *testing.T) {
	e := &Engine{MaxNodes: 40, MaxLinks: 60, Schedule: DefaultSchedule()}

	first := mergedModel(t, randomPayload(90, 7))
	second := mergedModel(t, randomPayload(90, 7))

	r1 := e.Run(first)
	r2 := e.Run(second)

	if fmt.Sprint(r1.NodesRemoved) != fmt.Sprint(r2.NodesRemoved) {
		t.Error("Identical input pruned different nodes")
	}
	if fmt.Sprint(r1.EdgesRemoved) != fmt.Sprint(r2.EdgesRemoved) {
		t.Error("Identical input pruned different edges")
	}
	for i, n := range first.Nodes() {
		if second.Nodes()[i].Key != n.Key || second.Nodes()[i].Missing != n.Missing {
			t.Fatalf("Survivor %d differs: %s/%d vs %s/%d", i, n.Key, n.Missing,
				second.Nodes()[i].Key, second.Nodes()[i].Missing)
		}
	}
}

type edgeEnds struct{ source, target string }

// TestPruneProperties checks monotonicity and missing-count conservation
func TestPruneProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40

	properties := gopter.NewProperties(parameters)
	e := &Engine{MaxNodes: 30, MaxLinks: 30, Schedule: DefaultSchedule()}

	properties.Property("a pass never grows the graph and only removes matching nodes", prop.ForAll(
		func(leaves int, seed int64, maxDistance, minLinks int) bool {
			m := graph.NewModel()
			if _, err := m.Merge(randomPayload(leaves, seed)); err != nil {
				return false
			}

			type snapshot struct {
				distance int
				links    int
				kind     graph.NodeKind
			}
			before := make(map[string]snapshot)
			for _, n := range m.Nodes() {
				before[n.Key] = snapshot{n.Distance, len(n.Links), n.Kind}
			}
			nodes, edges := m.NodeCount(), m.EdgeCount()

			th := Threshold{MaxDistance: maxDistance, MinLinks: minLinks}
			rep := e.Pass(m, th)

			if m.NodeCount() > nodes || m.EdgeCount() > edges {
				return false
			}
			if m.NodeCount()+rep.NodeCount() != nodes || m.EdgeCount()+rep.EdgeCount() != edges {
				return false
			}
			for _, key := range rep.NodesRemoved {
				s := before[key]
				if s.kind == graph.KindIntermediate {
					continue
				}
				if s.distance < maxDistance || s.links > minLinks {
					return false
				}
			}
			return true
		},
		gen.IntRange(5, 80),
		gen.Int64Range(1, 1000),
		gen.IntRange(1, 3),
		gen.IntRange(0, 3),
	))

	properties.Property("every pruned edge adds exactly one missing to each surviving endpoint", prop.ForAll(
		func(leaves int, seed int64) bool {
			m := graph.NewModel()
			if _, err := m.Merge(randomPayload(leaves, seed)); err != nil {
				return false
			}

			missing := make(map[string]int)
			for _, n := range m.Nodes() {
				missing[n.Key] = n.Missing
			}
			ends := make(map[string]edgeEnds)
			for _, edge := range m.Edges() {
				ends[edge.Key] = edgeEnds{edge.SourceKey, edge.TargetKey}
			}

			rep := e.Run(m)

			expected := make(map[string]int, len(missing))
			for k, v := range missing {
				expected[k] = v
			}
			for _, key := range rep.EdgesRemoved {
				expected[ends[key].source]++
				expected[ends[key].target]++
			}

			for _, n := range m.Nodes() {
				if n.Missing != expected[n.Key] {
					return false
				}
				if n.Missing < missing[n.Key] {
					return false
				}
				if n.Missing > 0 && n.Missing != missing[n.Key] && !n.HasMissing {
					return false
				}
			}
			return true
		},
		gen.IntRange(5, 80),
		gen.Int64Range(1, 1000),
	))

	properties.TestingRun(t)
}
