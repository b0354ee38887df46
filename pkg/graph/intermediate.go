package graph

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var whitespace = regexp.MustCompile(`\s+`)

// RoleSlug lower-cases a role and replaces whitespace runs with hyphens
func RoleSlug(role string) string {
	return whitespace.ReplaceAllString(strings.ToLower(role), "-")
}

// SplineKeys derives the keys of the two curve segments of a relation. The
// derivation depends only on its inputs so re-merging an unchanged relation
// reproduces identical keys.
func SplineKeys(source, role, linkKey, target string) (sourceToMid, midToTarget string) {
	slug := RoleSlug(role)
	sourceToMid = fmt.Sprintf("%s-%s-[%s]", source, slug, linkKey)
	midToTarget = fmt.Sprintf("[%s]-%s-%s", linkKey, slug, target)
	return sourceToMid, midToTarget
}

// candidates is the expanded form of a payload: real nodes first, then one
// intermediate per non-alias relation, in payload order.
type candidates struct {
	nodes *orderedmap.OrderedMap[string, *Node]
	edges *orderedmap.OrderedMap[string, *Edge]
}

// expand converts a validated payload into candidate nodes and edges,
// synthesizing waypoints and spline segments for every non-alias relation.
func expand(p *Payload) candidates {
	c := candidates{
		nodes: orderedmap.New[string, *Node](orderedmap.WithCapacity[string, *Node](len(p.Nodes) + len(p.Links))),
		edges: orderedmap.New[string, *Edge](orderedmap.WithCapacity[string, *Edge](3 * len(p.Links))),
	}

	allPages := make([]int, p.Pages)
	for i := range allPages {
		allPages[i] = i + 1
	}

	incident := make(map[string][]string)
	for _, l := range p.Links {
		incident[l.Source] = append(incident[l.Source], l.Key)
		if l.Target != l.Source {
			incident[l.Target] = append(incident[l.Target], l.Key)
		}
	}

	for _, np := range p.Nodes {
		n := &Node{
			Key:           np.Key,
			Kind:          kindOf(np.Type),
			Name:          np.Name,
			Distance:      np.Distance,
			Size:          np.Size,
			Cluster:       np.Cluster,
			Links:         slices.Clone(np.Links),
			Pages:         slices.Clone(np.Pages),
			Missing:       np.Missing,
			MissingByPage: np.MissingByPage,
			HasMissing:    np.Missing > 0,
		}
		if n.Links == nil {
			n.Links = slices.Clone(incident[np.Key])
		}
		if len(n.Pages) == 0 {
			n.Pages = slices.Clone(allPages)
		}
		n.Radius = Radius(n)
		c.nodes.Set(n.Key, n)
	}

	for _, lp := range p.Links {
		pages := slices.Clone(lp.Pages)
		if len(pages) == 0 {
			pages = intersectPages(c.nodes.Value(lp.Source), c.nodes.Value(lp.Target))
		}
		if len(pages) == 0 {
			pages = slices.Clone(allPages)
		}

		link := &Edge{
			Key:       lp.Key,
			Role:      lp.Role,
			SourceKey: lp.Source,
			TargetKey: lp.Target,
			Distance:  lp.Distance,
			Pages:     pages,
		}
		c.edges.Set(link.Key, link)

		if lp.Role == RoleAlias {
			continue
		}

		link.IntermediateKey = lp.Key
		c.nodes.Set(lp.Key, &Node{
			Key:   lp.Key,
			Kind:  KindIntermediate,
			Pages: slices.Clone(pages),
		})

		s2i, i2t := SplineKeys(lp.Source, lp.Role, lp.Key, lp.Target)
		c.edges.Set(s2i, &Edge{
			Key:       s2i,
			Role:      lp.Role,
			SourceKey: lp.Source,
			TargetKey: lp.Key,
			IsSpline:  true,
			Distance:  lp.Distance,
			Pages:     slices.Clone(pages),
		})
		c.edges.Set(i2t, &Edge{
			Key:       i2t,
			Role:      lp.Role,
			SourceKey: lp.Key,
			TargetKey: lp.Target,
			IsSpline:  true,
			Distance:  lp.Distance,
			Pages:     slices.Clone(pages),
		})
	}

	return c
}

func kindOf(t string) NodeKind {
	if t == "label" {
		return KindLabel
	}
	return KindArtist
}

// intersectPages returns the pages both endpoints appear on, ascending
func intersectPages(a, b *Node) []int {
	if a == nil || b == nil {
		return nil
	}
	var out []int
	for _, p := range a.Pages {
		if b.HasPage(p) && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}
