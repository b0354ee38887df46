package health

import (
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check is the result of one named check
type Check struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	Duration    time.Duration  `json:"duration_ms"`
}

// CheckFunc is a function that performs a health check
type CheckFunc func() Check

// Endpoint selects the set of checks a request runs
type Endpoint int

const (
	// EndpointHealth is the aggregate view; degraded checks still answer 200
	EndpointHealth Endpoint = iota
	// EndpointReadiness passes once the runner has laid out a payload
	EndpointReadiness
	// EndpointLiveness fails when the simulation has diverged
	EndpointLiveness

	endpointCount
)

func (p Endpoint) String() string {
	switch p {
	case EndpointReadiness:
		return "readiness"
	case EndpointLiveness:
		return "liveness"
	default:
		return "health"
	}
}

// Limits are the graph ceilings past which pruning runs
type Limits struct {
	MaxNodes int `json:"max_nodes"`
	MaxEdges int `json:"max_edges"`
}

// SessionSource is the view of a layout session the checks read
type SessionSource interface {
	Applied() uint64
	Size() (nodes, edges int)
	State() (running bool, alpha float64, err error)
}

// HealthChecker runs the checks of one layout session
type HealthChecker struct {
	mu        sync.RWMutex
	endpoints [endpointCount]map[string]CheckFunc

	session string
	ticket  func() uint64
	limits  *Limits
	started time.Time
}

// Option configures a HealthChecker
type Option func(*HealthChecker)

// Response is the body of every health endpoint
type Response struct {
	Status    Status           `json:"status"`
	Endpoint  string           `json:"endpoint"`
	Session   string           `json:"session,omitempty"`
	Ticket    uint64           `json:"ticket"`
	Limits    *Limits          `json:"limits,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
	Uptime    time.Duration    `json:"uptime_seconds"`
}
