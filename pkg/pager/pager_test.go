package pager

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/dd0wney/discograph-layout/pkg/graph"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func merged(t *testing.T, p *graph.Payload) *graph.Model {
	t.Helper()
	m := graph.NewModel()
	_, err := m.Merge(p)
	require.NoError(t, err)
	return m
}

func TestSelectPageMemberOf(t *testing.T) {
	m := merged(t, &graph.Payload{
		Center: graph.Center{Key: "artist-1"},
		Pages:  1,
		Nodes: []graph.NodePayload{
			{Key: "artist-1", Type: "artist", Distance: 0, Pages: []int{1}},
			{Key: "artist-2", Type: "artist", Distance: 1, Pages: []int{1}},
		},
		Links: []graph.LinkPayload{
			{Key: "artist-1-member-of-artist-2", Source: "artist-1", Target: "artist-2", Role: "Member Of", Pages: []int{1}},
		},
	})

	d := New(m).SelectPage(1)

	assert.Equal(t, 1, d.CurrentPage)
	assert.Len(t, d.Nodes, 2, "waypoints stay out of the physics node list")
	assert.Len(t, d.Links, 1, "splines stay out of the physics link list")
	assert.Len(t, d.Waypoints, 1)
	assert.Len(t, d.Splines, 2)
	assert.Equal(t, "artist-1", d.Nodes[0].Key)
	assert.Equal(t, "1 / 1", d.PrevLabel)
	assert.Equal(t, "1 / 1", d.NextLabel)
}

func threePagePayload() *graph.Payload {
	return &graph.Payload{
		Center: graph.Center{Key: "artist-1"},
		Pages:  3,
		Nodes: []graph.NodePayload{
			{Key: "artist-1", Type: "artist", Distance: 0},
			{Key: "artist-2", Type: "artist", Distance: 1, Pages: []int{1}},
			{Key: "artist-3", Type: "artist", Distance: 1, Pages: []int{2}},
			{Key: "label-4", Type: "label", Distance: 1, Pages: []int{2, 3}},
		},
		Links: []graph.LinkPayload{
			{Key: "l-12", Source: "artist-1", Target: "artist-2", Role: "Alias"},
			{Key: "l-13", Source: "artist-1", Target: "artist-3", Role: "Member Of"},
			{Key: "l-14", Source: "artist-1", Target: "label-4", Role: "Released On"},
		},
	}
}

func TestSelectPageWraparound(t *testing.T) {
	p := New(merged(t, threePagePayload()))

	tests := []struct {
		page       int
		current    int
		prev, next int
		prevLabel  string
		nextLabel  string
	}{
		{1, 1, 3, 2, "3 / 3", "2 / 3"},
		{2, 2, 1, 3, "1 / 3", "3 / 3"},
		{3, 3, 2, 1, "2 / 3", "1 / 3"},
		{0, 1, 3, 2, "3 / 3", "2 / 3"},
		{4, 1, 3, 2, "3 / 3", "2 / 3"},
		{-7, 1, 3, 2, "3 / 3", "2 / 3"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.page), func(t *testing.T) {
			d := p.SelectPage(tt.page)
			assert.Equal(t, tt.current, d.CurrentPage)
			assert.Equal(t, tt.prev, d.PrevPage)
			assert.Equal(t, tt.next, d.NextPage)
			assert.Equal(t, tt.prevLabel, d.PrevLabel)
			assert.Equal(t, tt.nextLabel, d.NextLabel)
			assert.Equal(t, 3, d.PageCount)
		})
	}
}

func TestSelectPageFilters(t *testing.T) {
	p := New(merged(t, threePagePayload()))

	keys := func(nodes []*graph.Node) []string {
		var out []string
		for _, n := range nodes {
			out = append(out, n.Key)
		}
		return out
	}

	d := p.SelectPage(2)
	assert.Equal(t, []string{"artist-1", "artist-3", "label-4"}, keys(d.Nodes))
	require.Len(t, d.Links, 2)
	assert.Equal(t, "l-13", d.Links[0].Key)
	assert.Equal(t, "l-14", d.Links[1].Key)
	assert.Len(t, d.Waypoints, 2)
	assert.Len(t, d.Splines, 4)

	d = p.SelectPage(1)
	assert.Equal(t, []string{"artist-1", "artist-2"}, keys(d.Nodes))
	require.Len(t, d.Links, 1)
	assert.Equal(t, "l-12", d.Links[0].Key)
	assert.Empty(t, d.Waypoints, "alias relations have no waypoint")
	assert.Empty(t, d.Splines)
}

func TestSelectPageRefillsInPlace(t *testing.T) {
	p := New(merged(t, threePagePayload()))

	first := p.SelectPage(2)
	backing := first.Nodes[:cap(first.Nodes)]

	second := p.SelectPage(1)
	require.Same(t, first, second, "page data must be reused across page switches")
	require.Same(t, p.Data(), second)

	assert.Same(t, &backing[0], &second.Nodes[0], "node slice should reuse its backing array")
	for _, n := range second.Nodes[len(second.Nodes):cap(second.Nodes)] {
		assert.Nil(t, n, "stale references past the length must be cleared")
	}
}

func TestRefreshAfterMerge(t *testing.T) {
	m := merged(t, threePagePayload())
	p := New(m)
	p.SelectPage(3)

	smaller := threePagePayload()
	smaller.Pages = 2
	smaller.Nodes[3].Pages = []int{2}
	_, err := m.Merge(smaller)
	require.NoError(t, err)

	d := p.Refresh()
	assert.Equal(t, 1, d.CurrentPage, "vanished page falls back to page 1")
	assert.Equal(t, 2, d.PageCount)
}

// TestPagingPartition checks that each page lists exactly the entities carrying it
func TestPagingPartition(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("page lists are exact filters of the model", prop.ForAll(
		func(pageCount, size int, seed int64) bool {
			rng := rand.New(rand.NewSource(seed))
			payload := &graph.Payload{Center: graph.Center{Key: "artist-0"}, Pages: pageCount}
			payload.Nodes = append(payload.Nodes, graph.NodePayload{Key: "artist-0", Type: "artist"})
			for i := 1; i < size; i++ {
				var pages []int
				for pg := 1; pg <= pageCount; pg++ {
					if rng.Intn(2) == 0 {
						pages = append(pages, pg)
					}
				}
				key := fmt.Sprintf("artist-%d", i)
				payload.Nodes = append(payload.Nodes, graph.NodePayload{Key: key, Type: "artist", Distance: 1, Pages: pages})
				payload.Links = append(payload.Links, graph.LinkPayload{
					Key: fmt.Sprintf("l-%d", i), Source: "artist-0", Target: key, Role: "Member Of",
				})
			}

			m := graph.NewModel()
			if _, err := m.Merge(payload); err != nil {
				return false
			}
			p := New(m)

			for pg := 1; pg <= pageCount; pg++ {
				d := p.SelectPage(pg)
				seen := make(map[string]int)
				for _, n := range append(append([]*graph.Node{}, d.Nodes...), d.Waypoints...) {
					if !n.HasPage(pg) {
						return false
					}
					seen[n.Key]++
				}
				for _, n := range m.Nodes() {
					want := 0
					if n.HasPage(pg) {
						want = 1
					}
					if seen[n.Key] != want {
						return false
					}
				}
				for _, e := range append(append([]*graph.Edge{}, d.Links...), d.Splines...) {
					if !e.HasPage(pg) {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 6),
		gen.IntRange(1, 40),
		gen.Int64Range(1, 10000),
	))

	properties.TestingRun(t)
}
