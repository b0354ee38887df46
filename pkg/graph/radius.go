package graph

import "math"

const (
	innerRadiusBase = 8
	outerRadiusBase = 11
)

// Radius returns the collision radius of a node. Nodes near the center and
// well-connected nodes are larger; clustered (aliased) entities are halved.
func Radius(n *Node) float64 {
	if n.IsIntermediate() {
		return 0
	}
	return outerRadiusBase + radiusBoost(n)
}

func radiusBoost(n *Node) float64 {
	var proximity float64
	switch n.Distance {
	case 0:
		proximity = 10
	case 1:
		proximity = 5
	}

	var connectivity float64
	switch {
	case len(n.Links) >= 20:
		connectivity = 10
	case len(n.Links) >= 10:
		connectivity = 5
	}

	alias := 1.0
	if n.Cluster != nil {
		alias = 2
	}

	size := math.Max(n.Size, 0)
	return math.Round((math.Sqrt(size)*2 + proximity + connectivity) / alias)
}
