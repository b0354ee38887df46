// Package prune keeps the live graph small enough for interactive layout by
// removing distant, poorly connected entities on a fixed escalating schedule.
package prune

import (
	"github.com/dd0wney/discograph-layout/pkg/graph"
	"github.com/dd0wney/discograph-layout/pkg/logging"
)

const (
	// DefaultMaxNodes is the live node count above which pruning runs
	DefaultMaxNodes = 600
	// DefaultMaxLinks is the live edge count above which pruning runs
	DefaultMaxLinks = 1800
)

// Threshold selects nodes at Distance >= MaxDistance with at most MinLinks links
type Threshold struct {
	MaxDistance int `yaml:"max_distance" validate:"min=1"`
	MinLinks    int `yaml:"min_links" validate:"min=0"`
}

// DefaultSchedule is the tuned escalation: least-connected third-hop entities
// first, then second-hop ones.
func DefaultSchedule() []Threshold {
	return []Threshold{
		{3, 1}, {3, 2}, {3, 3}, {3, 100}, {3, 1000000},
		{2, 1}, {2, 2}, {2, 3}, {2, 100}, {2, 100000},
	}
}

// Engine prunes a graph.Model whenever it exceeds either ceiling
type Engine struct {
	MaxNodes int
	MaxLinks int
	Schedule []Threshold
	Logger   logging.Logger
}

// New creates an engine with the default ceilings and schedule
func New() *Engine {
	return &Engine{
		MaxNodes: DefaultMaxNodes,
		MaxLinks: DefaultMaxLinks,
		Schedule: DefaultSchedule(),
		Logger:   logging.NewNopLogger(),
	}
}

// Report summarizes what pruning removed
type Report struct {
	Passes              int
	NodesRemoved        []string
	EdgesRemoved        []string
	IntermediatesPruned int
	SplinesPruned       int
}

// NodeCount is the number of nodes removed, intermediates included
func (r Report) NodeCount() int { return len(r.NodesRemoved) }

// EdgeCount is the number of edges removed, splines included
func (r Report) EdgeCount() int { return len(r.EdgesRemoved) }

func (r *Report) add(o Report) {
	r.Passes += o.Passes
	r.NodesRemoved = append(r.NodesRemoved, o.NodesRemoved...)
	r.EdgesRemoved = append(r.EdgesRemoved, o.EdgesRemoved...)
	r.IntermediatesPruned += o.IntermediatesPruned
	r.SplinesPruned += o.SplinesPruned
}

// Oversized reports whether the model exceeds either ceiling
func (e *Engine) Oversized(m *graph.Model) bool {
	return m.NodeCount() > e.MaxNodes || m.EdgeCount() > e.MaxLinks
}

// Run applies every threshold of the schedule in order. Passes after the
// model drops under both ceilings are no-ops.
func (e *Engine) Run(m *graph.Model) Report {
	var total Report
	for _, t := range e.Schedule {
		total.add(e.Pass(m, t))
	}
	return total
}

// Pass runs a single threshold. Removal order follows model insertion order so
// the surviving set is identical for identical input.
func (e *Engine) Pass(m *graph.Model, t Threshold) Report {
	if !e.Oversized(m) {
		return Report{}
	}

	rep := Report{Passes: 1}

	doomed := make(map[string]struct{})
	for _, n := range m.Nodes() {
		if n.IsIntermediate() {
			continue
		}
		if n.Distance >= t.MaxDistance && len(n.Links) <= t.MinLinks {
			doomed[n.Key] = struct{}{}
			rep.NodesRemoved = append(rep.NodesRemoved, n.Key)
		}
	}
	for _, key := range rep.NodesRemoved {
		m.RemoveNode(key)
	}

	// every removed edge key doubles as the key of its waypoint
	var waypointKeys []string
	for _, edge := range m.Edges() {
		if !touchesAny(edge, doomed) {
			continue
		}
		markMissing(edge)
		m.RemoveEdge(edge.Key)
		rep.EdgesRemoved = append(rep.EdgesRemoved, edge.Key)
		waypointKeys = append(waypointKeys, edge.Key)
	}

	orphaned := make(map[string]struct{}, len(waypointKeys))
	for _, key := range waypointKeys {
		orphaned[key] = struct{}{}
		n, ok := m.Node(key)
		if !ok || !n.IsIntermediate() {
			continue
		}
		m.RemoveNode(key)
		rep.NodesRemoved = append(rep.NodesRemoved, key)
		rep.IntermediatesPruned++
	}

	for _, edge := range m.Edges() {
		if !touchesAny(edge, orphaned) {
			continue
		}
		markMissing(edge)
		m.RemoveEdge(edge.Key)
		rep.EdgesRemoved = append(rep.EdgesRemoved, edge.Key)
		rep.SplinesPruned++
	}

	e.logger().Debug("prune pass",
		logging.Threshold(t.MaxDistance, t.MinLinks),
		logging.Int("nodes_removed", rep.NodeCount()),
		logging.Int("edges_removed", rep.EdgeCount()),
		logging.Int("nodes_left", m.NodeCount()),
		logging.Int("edges_left", m.EdgeCount()),
	)

	return rep
}

func (e *Engine) logger() logging.Logger {
	if e.Logger == nil {
		return logging.NewNopLogger()
	}
	return e.Logger
}

func touchesAny(edge *graph.Edge, keys map[string]struct{}) bool {
	if _, ok := keys[edge.SourceKey]; ok {
		return true
	}
	_, ok := keys[edge.TargetKey]
	return ok
}

// markMissing records a hidden connection on both endpoints
func markMissing(edge *graph.Edge) {
	for _, n := range []*graph.Node{edge.Source, edge.Target} {
		if n == nil {
			continue
		}
		n.Missing++
		n.HasMissing = true
	}
}
