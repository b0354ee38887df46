package graph

// Merge reconciles the model with a freshly fetched payload.
//
// Entities absent from the payload are removed, entities present in both are
// updated in place (positions, velocities and the fixed flag are preserved),
// and new entities are placed around the anchor. A relation whose role
// changed is removed and reinserted so its waypoint and splines follow the
// new role. A payload that fails
// validation is rejected and the model is left exactly as it was.
func (m *Model) Merge(p *Payload) (*MergeResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	c := expand(p)
	res := &MergeResult{}

	var staleNodes []string
	for pair := m.nodes.Oldest(); pair != nil; pair = pair.Next() {
		if _, ok := c.nodes.Get(pair.Key); !ok {
			staleNodes = append(staleNodes, pair.Key)
		}
	}
	for _, key := range staleNodes {
		m.nodes.Delete(key)
	}
	res.NodesRemoved = len(staleNodes)

	var staleEdges []string
	for pair := m.edges.Oldest(); pair != nil; pair = pair.Next() {
		if fresh, ok := c.edges.Get(pair.Key); !ok || fresh.Role != pair.Value.Role {
			staleEdges = append(staleEdges, pair.Key)
		}
	}
	for _, key := range staleEdges {
		m.edges.Delete(key)
	}
	res.EdgesRemoved = len(staleEdges)

	var placedIntermediates []*Node
	for pair := c.nodes.Oldest(); pair != nil; pair = pair.Next() {
		fresh := pair.Value
		if old, ok := m.nodes.Get(pair.Key); ok {
			old.update(fresh)
			res.NodesUpdated++
			continue
		}
		if fresh.IsIntermediate() {
			placedIntermediates = append(placedIntermediates, fresh)
		} else {
			m.place(fresh)
		}
		m.nodes.Set(pair.Key, fresh)
		res.NodesAdded++
	}

	for pair := c.edges.Oldest(); pair != nil; pair = pair.Next() {
		fresh := pair.Value
		if old, ok := m.edges.Get(pair.Key); ok {
			old.Pages = fresh.Pages
			res.EdgesUpdated++
			continue
		}
		fresh.Source = m.nodes.Value(fresh.SourceKey)
		fresh.Target = m.nodes.Value(fresh.TargetKey)
		if fresh.IntermediateKey != "" {
			fresh.Intermediate = m.nodes.Value(fresh.IntermediateKey)
		}
		m.edges.Set(pair.Key, fresh)
		res.EdgesAdded++
	}

	// a surviving waypoint may belong to a reinserted relation
	for pair := c.nodes.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.IsIntermediate() {
			m.nodes.Value(pair.Key).Edge = m.edges.Value(pair.Key)
		}
	}

	// waypoints start at the midpoint of their relation, so they are placed
	// once both endpoints have positions
	for _, n := range placedIntermediates {
		m.placeIntermediate(n)
	}

	m.center = p.Center
	m.pageCount = p.Pages
	m.recomputeMaxDistance()

	return res, nil
}

// update copies the relationship fields of a fresh node onto a live one
func (n *Node) update(fresh *Node) {
	n.Name = fresh.Name
	n.Size = fresh.Size
	n.Cluster = fresh.Cluster
	n.Distance = fresh.Distance
	n.Links = fresh.Links
	n.Missing = fresh.Missing
	n.MissingByPage = fresh.MissingByPage
	n.HasMissing = fresh.HasMissing
	n.Pages = fresh.Pages
	n.Radius = Radius(n)
}

// place seeds a new real node near the anchor; farther hops start farther out
func (m *Model) place(n *Node) {
	d := float64(n.Distance)
	dx := (m.rng.NormFloat64()*2 - 1) * m.spread * d
	dy := (m.rng.NormFloat64()*2 - 1) * m.spread * d
	n.X = m.anchorX + dx
	n.Y = m.anchorY + dy
}

func (m *Model) placeIntermediate(n *Node) {
	e := n.Edge
	if e == nil || e.Source == nil || e.Target == nil {
		n.X, n.Y = m.anchorX, m.anchorY
		return
	}
	n.X = (e.Source.X+e.Target.X)/2 + m.rng.Float64() - 0.5
	n.Y = (e.Source.Y+e.Target.Y)/2 + m.rng.Float64() - 0.5
}
