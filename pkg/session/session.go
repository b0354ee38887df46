// Package session drives one interactive layout: it merges payloads into the
// live graph, prunes and pages it, and steps the force simulation over the
// active page. Every operation is serialized, so merges never interleave
// with ticks.
package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/discograph-layout/pkg/config"
	"github.com/dd0wney/discograph-layout/pkg/graph"
	"github.com/dd0wney/discograph-layout/pkg/logging"
	"github.com/dd0wney/discograph-layout/pkg/metrics"
	"github.com/dd0wney/discograph-layout/pkg/pager"
	"github.com/dd0wney/discograph-layout/pkg/prune"
	"github.com/dd0wney/discograph-layout/pkg/pubsub"
	"github.com/dd0wney/discograph-layout/pkg/simulation"
)

// DragAlphaTarget keeps the simulation warm while a node is being dragged
const DragAlphaTarget = 0.3

// Session is a layout session controller
type Session struct {
	ID string

	cfg     *config.Config
	layout  simulation.Layout
	logger  logging.Logger
	metrics *metrics.Registry
	hub     *pubsub.Hub

	mu      sync.Mutex
	model   *graph.Model
	pruner  *prune.Engine
	pager   *pager.Pager
	sim     *simulation.Simulation
	issued  uint64
	applied uint64
	ticked  bool
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithMetrics records session activity on r
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Session) { s.metrics = r }
}

// WithHub publishes session events on h
func WithHub(h *pubsub.Hub) Option {
	return func(s *Session) { s.hub = h }
}

// New creates an empty session. A nil cfg uses config.Default().
func New(cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		ID:     uuid.NewString(),
		cfg:    cfg,
		layout: cfg.Layout(),
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logging.Component("session"), logging.Session(s.ID))

	s.model = graph.NewModel(cfg.ModelOptions()...)
	s.pruner = cfg.PruneEngine(s.logger.With(logging.Component("prune")))
	s.pager = pager.New(s.model)
	s.sim = simulation.New(cfg.SimulationConfig(), listener{s})

	s.logger.Info("session created",
		logging.Float64("width", cfg.Viewport.Width),
		logging.Float64("height", cfg.Viewport.Height))
	return s, nil
}

// Config returns the session configuration
func (s *Session) Config() *config.Config { return s.cfg }

// Model returns the live graph. Callers must not mutate it concurrently
// with session operations.
func (s *Session) Model() *graph.Model { return s.model }

// Page returns a copy of the active page view
func (s *Session) Page() pager.PageData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.pager.Data())
}

// snapshot copies a page view so it stays valid after the next page change
func snapshot(d *pager.PageData) pager.PageData {
	out := *d
	out.Nodes = slices.Clone(d.Nodes)
	out.Links = slices.Clone(d.Links)
	out.Waypoints = slices.Clone(d.Waypoints)
	out.Splines = slices.Clone(d.Splines)
	return out
}

// Running reports whether the simulation is running
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Running()
}

// Alpha returns the simulation temperature
func (s *Session) Alpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Alpha()
}

// Err returns the error that ended the last simulation run, if any
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Err()
}

// Applied returns the ticket of the last merged payload, 0 before the first
func (s *Session) Applied() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

// Size returns the node and edge counts of the local graph
func (s *Session) Size() (nodes, edges int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.NodeCount(), s.model.EdgeCount()
}

// State reports whether the simulation runs, its alpha, and the error that
// ended the last run
func (s *Session) State() (running bool, alpha float64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Running(), s.sim.Alpha(), s.sim.Err()
}

// Positions returns the coordinates of every body on the active page
func (s *Session) Positions() []pubsub.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positions()
}

func (s *Session) positions() []pubsub.Position {
	bodies := s.sim.Nodes()
	out := make([]pubsub.Position, len(bodies))
	for i, n := range bodies {
		out[i] = pubsub.Position{Key: n.Key, X: n.X, Y: n.Y}
	}
	return out
}

// Tick advances the simulation one step, publishes the tick and reports
// whether the simulation is still running
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sim.Running() {
		return false
	}

	start := time.Now()
	s.ticked = false
	running := s.sim.Step()
	if !s.ticked {
		return running
	}

	if s.metrics != nil {
		s.metrics.RecordTick(s.sim.Alpha(), time.Since(start))
	}
	s.publish(pubsub.Event{
		Topic:     pubsub.TopicTick,
		Tick:      s.sim.Ticks(),
		Alpha:     s.sim.Alpha(),
		Positions: s.positions(),
		Final:     !running,
	})
	return running
}

// Run ticks on the configured interval until the simulation stops or ctx is
// done. Other session operations may run between ticks.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Simulation.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !s.Tick() {
				return s.Err()
			}
		}
	}
}

// Settle ticks without pacing until the simulation stops or maxTicks ticks
// have run. It returns the number of ticks taken.
func (s *Session) Settle(maxTicks int) (int, error) {
	n := 0
	for n < maxTicks && s.Running() {
		s.Tick()
		n++
	}
	return n, s.Err()
}

// Stop pauses the simulation. Stopping a stopped session does nothing.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim.Stop()
}

// Restart reheats the simulation from the current positions
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim.Restart(0)
}

// rebind points the simulation at the active page: page nodes are unpinned,
// bodies are the page's entities plus waypoints and the forces are rebuilt
// for the page size
func (s *Session) rebind() {
	d := s.pager.Data()
	for _, n := range d.Nodes {
		n.Unpin()
	}

	bodies := make([]*graph.Node, 0, len(d.Nodes)+len(d.Waypoints))
	bodies = append(bodies, d.Nodes...)
	bodies = append(bodies, d.Waypoints...)

	s.sim.SetNodes(bodies)
	s.sim.SetLinks(d.Links)
	s.layout.Install(s.sim, s.model.Center().Key, len(d.Nodes))

	if s.metrics != nil {
		s.metrics.Bodies.Set(float64(len(bodies)))
	}
}
