package health

// SimulationCheck reports the state of the force simulation. A run that
// ended on a numerical error is unhealthy until the next merge restarts it.
func SimulationCheck(state func() (running bool, alpha float64, err error)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "simulation",
			Details: make(map[string]any),
		}

		running, alpha, err := state()
		check.Details["running"] = running
		check.Details["alpha"] = alpha

		switch {
		case err != nil:
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		case running:
			check.Status = StatusHealthy
			check.Message = "Settling"
		default:
			check.Status = StatusHealthy
			check.Message = "Settled"
		}

		return check
	}
}

// GraphCheck reports the size of the local graph. Past either ceiling the
// layout still runs but ticks get slow, so the check degrades.
func GraphCheck(size func() (nodes, edges int), maxNodes, maxEdges int) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "graph",
			Details: make(map[string]any),
		}

		nodes, edges := size()
		check.Details["nodes"] = nodes
		check.Details["edges"] = edges
		check.Details["max_nodes"] = maxNodes
		check.Details["max_edges"] = maxEdges

		if (maxNodes > 0 && nodes > maxNodes) || (maxEdges > 0 && edges > maxEdges) {
			check.Status = StatusDegraded
			check.Message = "Graph exceeds prune ceiling"
		} else {
			check.Status = StatusHealthy
			check.Message = "Graph within limits"
		}

		return check
	}
}

// PayloadCheck is a readiness check: the runner is ready once a payload
// has been merged
func PayloadCheck(applied func() uint64) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "payload",
			Details: make(map[string]any),
		}

		n := applied()
		check.Details["applied"] = n
		if n == 0 {
			check.Status = StatusUnhealthy
			check.Message = "No payload merged"
		} else {
			check.Status = StatusHealthy
			check.Message = "Payload merged"
		}

		return check
	}
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()

		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		if sys > 0 && float64(alloc)/float64(sys)*100 > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}
