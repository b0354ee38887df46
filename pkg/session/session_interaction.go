package session

import (
	"fmt"
	"math"

	"github.com/dd0wney/discograph-layout/pkg/graph"
	"github.com/dd0wney/discograph-layout/pkg/logging"
	"github.com/dd0wney/discograph-layout/pkg/pager"
	"github.com/dd0wney/discograph-layout/pkg/pubsub"
)

// SelectPage switches the active page, rebinds the simulation to it and
// restarts. Out-of-range pages select page 1.
func (s *Session) SelectPage(n int) pager.PageData {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.pager.SelectPage(n)
	s.rebind()
	s.sim.Restart(0)

	if s.metrics != nil {
		s.metrics.PageChanges.Inc()
	}
	s.logger.Info("page selected",
		logging.Page(d.CurrentPage),
		logging.Int("page_count", d.PageCount),
		logging.Count(len(d.Nodes)))
	s.publish(pubsub.Event{
		Topic:     pubsub.TopicPageChanged,
		Page:      d.CurrentPage,
		PageCount: d.PageCount,
		Nodes:     len(d.Nodes),
		Edges:     len(d.Links),
	})
	return snapshot(d)
}

// NextPage selects the page after the active one, wrapping to page 1
func (s *Session) NextPage() pager.PageData {
	return s.SelectPage(s.Page().NextPage)
}

// PrevPage selects the page before the active one, wrapping to the last page
func (s *Session) PrevPage() pager.PageData {
	return s.SelectPage(s.Page().PrevPage)
}

func (s *Session) node(op, key string) (*graph.Node, error) {
	n, ok := s.model.Node(key)
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", op, key, graph.ErrUnknownNode)
	}
	return n, nil
}

// DragStart pins the node at (x, y) and keeps the simulation warm until
// DragEnd
func (s *Session) DragStart(key string, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.node("DragStart", key)
	if err != nil {
		return err
	}
	n.Pin(x, y)
	s.sim.SetAlphaTarget(DragAlphaTarget)
	s.warm()
	s.logger.Debug("drag started", logging.NodeKey(key))
	return nil
}

// DragMove moves a dragged node, restarting an idle simulation
func (s *Session) DragMove(key string, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.node("DragMove", key)
	if err != nil {
		return err
	}
	n.Pin(x, y)
	s.warm()
	return nil
}

// DragEnd releases a dragged node back to the simulation
func (s *Session) DragEnd(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.node("DragEnd", key)
	if err != nil {
		return err
	}
	n.Unpin()
	s.sim.SetAlphaTarget(0)
	s.logger.Debug("drag ended", logging.NodeKey(key))
	return nil
}

func (s *Session) warm() {
	if !s.sim.Running() {
		s.sim.Restart(math.Max(s.sim.Alpha(), DragAlphaTarget))
	}
}

// FocusNode makes nodes added by the next merge appear around key's
// current position
func (s *Session) FocusNode(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.node("FocusNode", key)
	if err != nil {
		return err
	}
	s.model.SetAnchor(n.X, n.Y)
	s.logger.Debug("focus moved", logging.NodeKey(key))
	return nil
}
