package health

import (
	"encoding/json"
	"net/http"
)

// Endpoint paths served by Mount
const (
	PathHealth    = "/healthz"
	PathReadiness = "/readyz"
	PathLiveness  = "/livez"
)

// statusCode maps an endpoint result to HTTP. Only the aggregate endpoint answers
// 200 while degraded; readiness and liveness are binary.
func statusCode(p Endpoint, s Status) int {
	switch {
	case s == StatusHealthy:
		return http.StatusOK
	case s == StatusDegraded && p == EndpointHealth:
		return http.StatusOK
	default:
		return http.StatusServiceUnavailable
	}
}

// Handler serves one endpoint as JSON
func (hc *HealthChecker) Handler(p Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := hc.Run(p)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode(p, resp.Status))
		json.NewEncoder(w).Encode(resp)
	}
}

// HTTPHandler serves the aggregate health endpoint
func (hc *HealthChecker) HTTPHandler() http.HandlerFunc { return hc.Handler(EndpointHealth) }

// ReadinessHandler serves the readiness endpoint
func (hc *HealthChecker) ReadinessHandler() http.HandlerFunc { return hc.Handler(EndpointReadiness) }

// LivenessHandler serves the liveness endpoint
func (hc *HealthChecker) LivenessHandler() http.HandlerFunc { return hc.Handler(EndpointLiveness) }

// Mount registers the three health endpoints on mux
func (hc *HealthChecker) Mount(mux *http.ServeMux) {
	mux.Handle(PathHealth, hc.Handler(EndpointHealth))
	mux.Handle(PathReadiness, hc.Handler(EndpointReadiness))
	mux.Handle(PathLiveness, hc.Handler(EndpointLiveness))
}
