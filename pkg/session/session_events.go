package session

import (
	"errors"

	"github.com/dd0wney/discograph-layout/pkg/logging"
	"github.com/dd0wney/discograph-layout/pkg/pubsub"
	"github.com/dd0wney/discograph-layout/pkg/simulation"
)

// Simulation run outcomes
const (
	OutcomeConverged = "converged"
	OutcomeStopped   = "stopped"
	OutcomeDiverged  = "diverged"
)

// publish stamps ev with the session ID and sends it on the hub, if any
func (s *Session) publish(ev pubsub.Event) {
	if s.hub == nil {
		return
	}
	ev.Session = s.ID
	s.hub.Publish(ev)
}

// listener bridges simulation callbacks to metrics, logs and events. It runs
// with the session lock held.
type listener struct {
	s *Session
}

func (l listener) SimulationStarted() {
	s := l.s
	if s.metrics != nil {
		s.metrics.SetRunning(true)
	}
	s.logger.Debug("simulation started", logging.Alpha(s.sim.Alpha()))
	s.publish(pubsub.Event{Topic: pubsub.TopicSimulationStarted, Alpha: s.sim.Alpha()})
}

func (l listener) SimulationTicked(tick uint64, alpha float64) {
	l.s.ticked = true
}

func (l listener) SimulationEnded(err error) {
	s := l.s

	outcome := OutcomeConverged
	switch {
	case errors.Is(err, simulation.ErrNumericalInstability):
		outcome = OutcomeDiverged
	case s.sim.Alpha() == 0:
		outcome = OutcomeStopped
	}

	if s.metrics != nil {
		s.metrics.RecordSimulationEnd(outcome)
	}
	if err != nil {
		s.logger.Error("simulation ended", logging.String("outcome", outcome),
			logging.Tick(s.sim.Ticks()), logging.Error(err))
	} else {
		s.logger.Info("simulation ended", logging.String("outcome", outcome),
			logging.Tick(s.sim.Ticks()), logging.Alpha(s.sim.Alpha()))
	}

	s.publish(pubsub.Event{
		Topic: pubsub.TopicSimulationEnded,
		Tick:  s.sim.Ticks(),
		Alpha: s.sim.Alpha(),
		Err:   err,
	})
}
