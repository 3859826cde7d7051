package flowgraph

import (
	"strings"

	"github.com/matzehuels/flowviz/pkg/render/dot"
)

// renderNodes draws every resolved process in graph order.
func (s *session) renderNodes() {
	for i := range s.graph.Nodes {
		n := &s.graph.Nodes[i]
		c, ok := s.components[n.ID]
		if !ok {
			continue
		}

		kind := KindOf(n.Component)
		scheme := nodeCategory(kind, c.Subgraph).Scheme()
		attrs := dot.Attrs{
			"label":     n.DisplayLabel() + "\n" + n.Component,
			"shape":     string(kind.Shape()),
			"style":     "filled,rounded",
			"fillcolor": string(scheme.Fill),
			"fontcolor": string(scheme.Label),
		}

		if routes := n.Metadata.Routes; len(routes) > 0 {
			attrs["color"] = string(s.routes.Front(routes[len(routes)-1]))
			if s.layers {
				attrs["layer"] = strings.Join(routes, ",")
			}
		}

		s.rendered[n.ID] = s.addNode(CleanID(n.ID), attrs)
	}
}
