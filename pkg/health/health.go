// Package health reports whether a layout runner is alive, ready and within
// its graph ceilings.
package health

import (
	"runtime"
	"time"
)

// WithSession tags responses with a session ID
func WithSession(id string) Option {
	return func(hc *HealthChecker) { hc.session = id }
}

// WithTicket reports the last applied merge ticket in responses
func WithTicket(applied func() uint64) Option {
	return func(hc *HealthChecker) { hc.ticket = applied }
}

// WithLimits reports the prune ceilings in responses
func WithLimits(maxNodes, maxEdges int) Option {
	return func(hc *HealthChecker) {
		hc.limits = &Limits{MaxNodes: maxNodes, MaxEdges: maxEdges}
	}
}

// NewHealthChecker creates a checker with no checks registered
func NewHealthChecker(opts ...Option) *HealthChecker {
	hc := &HealthChecker{started: time.Now()}
	for i := range hc.endpoints {
		hc.endpoints[i] = make(map[string]CheckFunc)
	}
	for _, opt := range opts {
		opt(hc)
	}
	return hc
}

// ForSession builds the standard checker for a layout session: simulation,
// graph size and memory on the health endpoint, payload on readiness and
// simulation on liveness
func ForSession(id string, src SessionSource, maxNodes, maxEdges int) *HealthChecker {
	hc := NewHealthChecker(
		WithSession(id),
		WithTicket(src.Applied),
		WithLimits(maxNodes, maxEdges))

	sim := SimulationCheck(src.State)
	hc.RegisterCheck("simulation", sim)
	hc.RegisterCheck("graph", GraphCheck(src.Size, maxNodes, maxEdges))
	hc.RegisterCheck("memory", MemoryCheck(readMemStats))
	hc.RegisterReadinessCheck("payload", PayloadCheck(src.Applied))
	hc.RegisterLivenessCheck("simulation", sim)
	return hc
}

func readMemStats() (alloc, sys uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc, m.Sys
}

// Register adds a named check to an endpoint, replacing one of the same name
func (hc *HealthChecker) Register(p Endpoint, name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.endpoints[p][name] = check
}

// RegisterCheck registers a check on the aggregate health endpoint
func (hc *HealthChecker) RegisterCheck(name string, check CheckFunc) {
	hc.Register(EndpointHealth, name, check)
}

// RegisterReadinessCheck registers a readiness check
func (hc *HealthChecker) RegisterReadinessCheck(name string, check CheckFunc) {
	hc.Register(EndpointReadiness, name, check)
}

// RegisterLivenessCheck registers a liveness check
func (hc *HealthChecker) RegisterLivenessCheck(name string, check CheckFunc) {
	hc.Register(EndpointLiveness, name, check)
}

// Check runs the aggregate health endpoint
func (hc *HealthChecker) Check() Response { return hc.Run(EndpointHealth) }

// CheckReadiness runs the readiness endpoint
func (hc *HealthChecker) CheckReadiness() Response { return hc.Run(EndpointReadiness) }

// CheckLiveness runs the liveness endpoint
func (hc *HealthChecker) CheckLiveness() Response { return hc.Run(EndpointLiveness) }

// Run executes every check of an endpoint. The worst check status wins.
func (hc *HealthChecker) Run(p Endpoint) Response {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	checks := hc.endpoints[p]
	resp := Response{
		Status:    StatusHealthy,
		Endpoint:     p.String(),
		Session:   hc.session,
		Limits:    hc.limits,
		Timestamp: time.Now(),
		Checks:    make(map[string]Check, len(checks)),
		Uptime:    time.Since(hc.started),
	}
	if hc.ticket != nil {
		resp.Ticket = hc.ticket()
	}

	for name, fn := range checks {
		start := time.Now()
		check := fn()
		check.Duration = time.Since(start)
		check.LastChecked = start
		resp.Checks[name] = check

		switch {
		case check.Status == StatusUnhealthy:
			resp.Status = StatusUnhealthy
		case check.Status == StatusDegraded && resp.Status != StatusUnhealthy:
			resp.Status = StatusDegraded
		}
	}
	return resp
}
