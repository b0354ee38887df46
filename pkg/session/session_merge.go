package session

import (
	"fmt"

	"github.com/dd0wney/discograph-layout/pkg/graph"
	"github.com/dd0wney/discograph-layout/pkg/logging"
	"github.com/dd0wney/discograph-layout/pkg/prune"
	"github.com/dd0wney/discograph-layout/pkg/pubsub"
)

// Result describes what one applied payload changed
type Result struct {
	Merge graph.MergeResult
	Prune prune.Report
	Nodes int
	Edges int
}

// BeginRequest issues a ticket for a payload about to be requested. Only the
// payload of the newest ticket applied so far is accepted.
func (s *Session) BeginRequest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// ApplyJSON decodes a payload and applies it under ticket
func (s *Session) ApplyJSON(ticket uint64, data []byte) (*Result, error) {
	p, err := graph.Decode(data)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordMerge("invalid", 0)
		}
		s.logger.Warn("payload rejected", logging.Error(err))
		return nil, err
	}
	return s.Apply(ticket, p)
}

// Apply merges p into the live graph, prunes it, refreshes the active page
// and restarts the simulation at full temperature. A payload whose ticket is
// not newer than the last applied one returns graph.ErrStaleMerge. On error
// the graph, page and simulation are unchanged.
func (s *Session) Apply(ticket uint64, p *graph.Payload) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket <= s.applied {
		if s.metrics != nil {
			s.metrics.RecordMerge("stale", 0)
		}
		s.logger.Info("stale merge dropped",
			logging.Uint64("ticket", ticket),
			logging.Uint64("applied", s.applied))
		return nil, fmt.Errorf("ticket %d superseded by %d: %w", ticket, s.applied, graph.ErrStaleMerge)
	}

	timer := logging.StartTimer(s.logger, "merge applied", logging.Uint64("ticket", ticket))

	res, err := s.model.Merge(p)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordMerge("invalid", timer.Elapsed())
		}
		timer.EndError(err)
		return nil, err
	}
	s.applied = ticket
	if ticket > s.issued {
		s.issued = ticket
	}

	report := s.pruner.Run(s.model)

	s.pager.Refresh()
	s.rebind()
	s.sim.Restart(0)

	out := &Result{
		Merge: *res,
		Prune: report,
		Nodes: s.model.NodeCount(),
		Edges: s.model.EdgeCount(),
	}

	if s.metrics != nil {
		s.metrics.RecordMerge("success", timer.Elapsed())
		if report.Passes > 0 {
			s.metrics.RecordPrune(report.Passes, report.NodeCount(), report.EdgeCount())
		}
		s.recordGraphSize()
	}

	timer.EndInfo(
		logging.NodeKey(s.model.Center().Key),
		logging.Int("nodes_added", res.NodesAdded),
		logging.Int("nodes_removed", res.NodesRemoved),
		logging.Int("edges_added", res.EdgesAdded),
		logging.Int("edges_removed", res.EdgesRemoved),
		logging.Int("pruned_nodes", report.NodeCount()),
		logging.Page(s.pager.Data().CurrentPage))

	d := s.pager.Data()
	s.publish(pubsub.Event{
		Topic:     pubsub.TopicGraphUpdated,
		Page:      d.CurrentPage,
		PageCount: d.PageCount,
		Nodes:     out.Nodes,
		Edges:     out.Edges,
	})
	return out, nil
}

func (s *Session) recordGraphSize() {
	var artists, labels, intermediates, relations, splines int
	for _, n := range s.model.Nodes() {
		switch n.Kind {
		case graph.KindArtist:
			artists++
		case graph.KindLabel:
			labels++
		case graph.KindIntermediate:
			intermediates++
		}
	}
	for _, e := range s.model.Edges() {
		if e.IsSpline {
			splines++
		} else {
			relations++
		}
	}
	s.metrics.SetGraphSize(artists, labels, intermediates, relations, splines)
}
