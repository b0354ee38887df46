package simulation

import (
	"math"
	"math/rand"

	"golang.org/x/exp/constraints"
)

// jiggle returns a tiny non-zero offset used to separate coincident bodies
func jiggle(rng *rand.Rand) float64 {
	for {
		if j := (rng.Float64() - 0.5) * 1e-6; j != 0 {
			return j
		}
	}
}

// clamp limits v to [lo, hi]; an empty range collapses to its midpoint
func clamp[T constraints.Float](v, lo, hi T) T {
	if lo > hi {
		return (lo + hi) / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
