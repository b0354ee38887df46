// Package simulation is a velocity-Verlet force simulation over graph nodes,
// with Barnes-Hut repulsion, iterative link springs and collision resolution.
package simulation

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/dd0wney/discograph-layout/pkg/graph"
)

// State is the lifecycle of a simulation run
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Force contributes velocity (or, for anchors, position) changes each tick
type Force interface {
	// Initialize is called whenever the node list changes
	Initialize(nodes []*graph.Node, rng *rand.Rand)
	// Apply runs once per tick, before integration
	Apply(alpha float64)
}

// LinkBinder is implemented by forces that act on edges
type LinkBinder interface {
	SetLinks(links []*graph.Edge)
}

// Constraint adjusts positions after integration
type Constraint interface {
	Initialize(nodes []*graph.Node, rng *rand.Rand)
	Constrain()
}

// Listener observes simulation progress. Callbacks run on the goroutine
// driving Step.
type Listener interface {
	SimulationStarted()
	SimulationTicked(tick uint64, alpha float64)
	SimulationEnded(err error)
}

// NopListener ignores every callback
type NopListener struct{}

func (NopListener) SimulationStarted()                {}
func (NopListener) SimulationTicked(uint64, float64) {}
func (NopListener) SimulationEnded(error)            {}

// Config holds the integrator parameters
type Config struct {
	Alpha         float64
	AlphaMin      float64
	AlphaDecay    float64
	AlphaTarget   float64
	VelocityDecay float64
	Seed          int64
}

// DefaultConfig returns the tuned discograph integrator settings
func DefaultConfig() Config {
	return Config{
		Alpha:         1,
		AlphaMin:      0.001,
		AlphaDecay:    0.03,
		AlphaTarget:   0,
		VelocityDecay: 0.24,
		Seed:          42,
	}
}

type namedForce struct {
	name  string
	force Force
}

type namedConstraint struct {
	name       string
	constraint Constraint
}

// Simulation integrates node positions one tick at a time. It is not safe
// for concurrent use; callers serialize Step with any model mutation.
type Simulation struct {
	cfg      Config
	listener Listener
	rng      *rand.Rand

	nodes       []*graph.Node
	links       []*graph.Edge
	forces      []namedForce
	constraints []namedConstraint

	prevX, prevY []float64

	state State
	alpha float64
	tick  uint64
	err   error
}

// New creates a stopped simulation. A nil listener is replaced by NopListener.
func New(cfg Config, l Listener) *Simulation {
	if l == nil {
		l = NopListener{}
	}
	return &Simulation{
		cfg:      cfg,
		listener: l,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		alpha:    cfg.Alpha,
	}
}

// Config returns the integrator parameters
func (s *Simulation) Config() Config { return s.cfg }

// State returns the current lifecycle state
func (s *Simulation) State() State { return s.state }

// Running reports whether the simulation is running
func (s *Simulation) Running() bool { return s.state == Running }

// Alpha returns the current temperature
func (s *Simulation) Alpha() float64 { return s.alpha }

// Ticks returns the number of ticks since the last restart
func (s *Simulation) Ticks() uint64 { return s.tick }

// Err returns the error that ended the last run, if any
func (s *Simulation) Err() error { return s.err }

// Nodes returns the bodies bound to the simulation
func (s *Simulation) Nodes() []*graph.Node { return s.nodes }

// SetAlphaTarget sets the temperature alpha decays toward
func (s *Simulation) SetAlphaTarget(target float64) {
	s.cfg.AlphaTarget = target
}

// SetNodes binds the bodies and reinitializes every force. Bodies without a
// finite position are laid out on a phyllotaxis spiral.
func (s *Simulation) SetNodes(nodes []*graph.Node) {
	s.nodes = nodes
	s.prevX = make([]float64, len(nodes))
	s.prevY = make([]float64, len(nodes))

	for i, n := range nodes {
		if !finite(n.X) || !finite(n.Y) {
			radius := 10 * math.Sqrt(0.5+float64(i))
			angle := float64(i) * math.Pi * (3 - math.Sqrt(5))
			n.X = radius * math.Cos(angle)
			n.Y = radius * math.Sin(angle)
		}
		if !finite(n.VX) || !finite(n.VY) {
			n.VX, n.VY = 0, 0
		}
	}

	for _, f := range s.forces {
		f.force.Initialize(nodes, s.rng)
	}
	for _, c := range s.constraints {
		c.constraint.Initialize(nodes, s.rng)
	}
}

// SetLinks binds the edges seen by link-aware forces
func (s *Simulation) SetLinks(links []*graph.Edge) {
	s.links = links
	for _, f := range s.forces {
		if lb, ok := f.force.(LinkBinder); ok {
			lb.SetLinks(links)
		}
	}
}

// AddForce appends or replaces a named force. Forces apply in insertion order.
func (s *Simulation) AddForce(name string, f Force) {
	f.Initialize(s.nodes, s.rng)
	if lb, ok := f.(LinkBinder); ok {
		lb.SetLinks(s.links)
	}
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces[i].force = f
			return
		}
	}
	s.forces = append(s.forces, namedForce{name, f})
}

// AddConstraint appends or replaces a named post-integration constraint
func (s *Simulation) AddConstraint(name string, c Constraint) {
	c.Initialize(s.nodes, s.rng)
	for i := range s.constraints {
		if s.constraints[i].name == name {
			s.constraints[i].constraint = c
			return
		}
	}
	s.constraints = append(s.constraints, namedConstraint{name, c})
}

// RemoveForce removes a named force or constraint
func (s *Simulation) RemoveForce(name string) bool {
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces = append(s.forces[:i], s.forces[i+1:]...)
			return true
		}
	}
	for i := range s.constraints {
		if s.constraints[i].name == name {
			s.constraints = append(s.constraints[:i], s.constraints[i+1:]...)
			return true
		}
	}
	return false
}

// Force returns a named force
func (s *Simulation) Force(name string) (Force, bool) {
	for _, f := range s.forces {
		if f.name == name {
			return f.force, true
		}
	}
	return nil, false
}

// Restart reheats the simulation to alpha, or to Config.Alpha when alpha <= 0.
// Positions and velocities are kept.
func (s *Simulation) Restart(alpha float64) {
	if alpha <= 0 {
		alpha = s.cfg.Alpha
	}
	s.alpha = alpha
	s.err = nil
	if s.state == Running {
		return
	}
	s.state = Running
	s.tick = 0
	s.listener.SimulationStarted()
}

// Stop halts a running simulation. Calling Stop on a stopped simulation does
// nothing.
func (s *Simulation) Stop() {
	if s.state == Stopped {
		return
	}
	s.alpha = 0
	s.end(nil)
}

func (s *Simulation) end(err error) {
	s.state = Stopped
	s.err = err
	s.listener.SimulationEnded(err)
}

// Step advances one tick and reports whether the simulation is still running
func (s *Simulation) Step() bool {
	if s.state != Running {
		return false
	}

	s.alpha += (s.cfg.AlphaTarget - s.alpha) * s.cfg.AlphaDecay

	for i, n := range s.nodes {
		s.prevX[i], s.prevY[i] = n.X, n.Y
	}

	for _, f := range s.forces {
		f.force.Apply(s.alpha)
	}

	friction := 1 - s.cfg.VelocityDecay
	for _, n := range s.nodes {
		if n.Fixed {
			n.X, n.Y = n.FX, n.FY
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= friction
		n.VY *= friction
		n.X += n.VX
		n.Y += n.VY
	}

	for _, c := range s.constraints {
		c.constraint.Constrain()
	}

	s.tick++

	if err := s.guard(); err != nil {
		s.end(err)
		return false
	}

	s.listener.SimulationTicked(s.tick, s.alpha)

	if s.alpha < s.cfg.AlphaMin {
		s.end(nil)
		return false
	}
	return true
}

// guard restores the last finite position of any diverged body
func (s *Simulation) guard() error {
	var err error
	for i, n := range s.nodes {
		if finite(n.X) && finite(n.Y) && finite(n.VX) && finite(n.VY) {
			continue
		}
		n.X, n.Y = s.prevX[i], s.prevY[i]
		n.VX, n.VY = 0, 0
		if err == nil {
			err = &InstabilityError{Key: n.Key, Tick: s.tick}
		}
	}
	return err
}

// Run drives Step from a ticker until the simulation stops or ctx is done.
// It returns the error that ended the run, or ctx.Err().
func (s *Simulation) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !s.Step() {
				return s.err
			}
		}
	}
}
