package flowgraph

import (
	"slices"
	"strings"

	"github.com/matzehuels/flowviz/pkg/fbp"
)

// renderEdges draws every connection whose endpoints were both drawn.
func (s *session) renderEdges() {
	for _, e := range s.graph.Edges {
		from, okFrom := s.rendered[e.From.Node]
		to, okTo := s.rendered[e.To.Node]
		if !okFrom || !okTo {
			continue
		}

		attrs := connection(CategoryPort, CleanPort(e.From.Port), CleanPort(e.To.Port))

		src, _ := s.graph.Node(e.From.Node)
		dst, _ := s.graph.Node(e.To.Node)
		if common := commonRoutes(src, dst); len(common) > 0 {
			attrs["color"] = string(s.routes.Back(common[0]))
			attrs["style"] = "bold"
			if s.layers {
				attrs["layer"] = strings.Join(common, ",")
			}
		}

		if c := s.components[e.From.Node]; c != nil && c.AddressableOut(e.From.Port) {
			key := e.From.Node + "_" + e.From.Port
			attrs["sametail"] = e.From.Port
			if s.tails[key] {
				delete(attrs, "taillabel")
			}
			s.tails[key] = true
		}
		if c := s.components[e.To.Node]; c != nil && c.AddressableIn(e.To.Port) {
			key := e.To.Node + "_" + e.To.Port
			attrs["samehead"] = e.To.Port
			if s.heads[key] {
				delete(attrs, "headlabel")
			}
			s.heads[key] = true
		}

		s.addEdge(from, to, attrs)
	}
}

// commonRoutes returns the routes of a that b also carries, in a's order,
// without duplicates.
func commonRoutes(a, b *fbp.Node) []string {
	if a == nil || b == nil || !a.HasRoutes() || !b.HasRoutes() {
		return nil
	}
	var common []string
	for _, r := range a.Metadata.Routes {
		if slices.Contains(b.Metadata.Routes, r) && !slices.Contains(common, r) {
			common = append(common, r)
		}
	}
	return common
}
