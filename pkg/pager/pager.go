// Package pager exposes the slice of the live graph that belongs to one page.
package pager

import (
	"fmt"

	"github.com/dd0wney/discograph-layout/pkg/graph"
)

// PageData is the active page view. Its slices are refilled in place on every
// page change so holders of the PageData pointer always see the current page.
type PageData struct {
	CurrentPage int
	PageCount   int
	PrevPage    int
	NextPage    int
	PrevLabel   string
	NextLabel   string

	// Nodes and Links are the physics lists: real nodes and relation edges
	Nodes []*graph.Node
	Links []*graph.Edge

	// Waypoints and Splines carry the page's curve geometry
	Waypoints []*graph.Node
	Splines   []*graph.Edge
}

// Pager filters a graph.Model by page membership
type Pager struct {
	model *graph.Model
	data  *PageData
}

// New creates a pager over m positioned on page 1
func New(m *graph.Model) *Pager {
	return &Pager{
		model: m,
		data:  &PageData{CurrentPage: 1},
	}
}

// Data returns the live page view
func (p *Pager) Data() *PageData {
	return p.data
}

// SelectPage switches to page n. Pages outside [1, pageCount] select page 1.
func (p *Pager) SelectPage(n int) *PageData {
	count := p.model.PageCount()
	if count < 1 {
		count = 1
	}
	if n < 1 || n > count {
		n = 1
	}

	d := p.data
	d.CurrentPage = n
	d.PageCount = count

	d.PrevPage = n - 1
	if n == 1 {
		d.PrevPage = count
	}
	d.NextPage = n + 1
	if n == count {
		d.NextPage = 1
	}
	d.PrevLabel = fmt.Sprintf("%d / %d", d.PrevPage, count)
	d.NextLabel = fmt.Sprintf("%d / %d", d.NextPage, count)

	d.Nodes = d.Nodes[:0]
	d.Waypoints = d.Waypoints[:0]
	for _, node := range p.model.Nodes() {
		if !node.HasPage(n) {
			continue
		}
		if node.IsIntermediate() {
			d.Waypoints = append(d.Waypoints, node)
		} else {
			d.Nodes = append(d.Nodes, node)
		}
	}

	d.Links = d.Links[:0]
	d.Splines = d.Splines[:0]
	for _, edge := range p.model.Edges() {
		if !edge.HasPage(n) {
			continue
		}
		if edge.IsSpline {
			d.Splines = append(d.Splines, edge)
		} else {
			d.Links = append(d.Links, edge)
		}
	}

	clearTail(d)
	return d
}

// Refresh rebuilds the current page, e.g. after a merge changed the model.
// A page that no longer exists falls back to page 1.
func (p *Pager) Refresh() *PageData {
	return p.SelectPage(p.data.CurrentPage)
}

// clearTail drops references held past the new lengths so removed nodes can
// be collected
func clearTail(d *PageData) {
	clear(d.Nodes[len(d.Nodes):cap(d.Nodes)])
	clear(d.Waypoints[len(d.Waypoints):cap(d.Waypoints)])
	clear(d.Links[len(d.Links):cap(d.Links)])
	clear(d.Splines[len(d.Splines):cap(d.Splines)])
}
