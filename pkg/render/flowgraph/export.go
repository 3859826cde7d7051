package flowgraph

import (
	"strings"

	"github.com/matzehuels/flowviz/pkg/fbp"
	"github.com/matzehuels/flowviz/pkg/render/dot"
)

type direction int

const (
	directionTo   direction = iota // exported inport: boundary -> process
	directionFrom                  // exported outport: process -> boundary
)

// renderExports draws a boundary node per exported port, in sorted public
// name order, inports first.
func (s *session) renderExports() {
	for _, public := range s.graph.InportNames() {
		s.renderExport(public, s.graph.Inports[public], directionTo)
	}
	for _, public := range s.graph.OutportNames() {
		s.renderExport(public, s.graph.Outports[public], directionFrom)
	}
}

// renderExport connects the boundary node to every drawn process whose id
// equals the exported process case-insensitively. The boundary id
// export<name> is not namespaced and merges with a process of that id.
func (s *session) renderExport(public string, e fbp.Export, dir direction) {
	id := "export" + CleanID(public)
	shape := ShapeCircle
	if dir == directionFrom {
		shape = ShapeDoubleCircle
		if _, clash := s.graph.Inports[public]; clash {
			id += "_out"
		}
	}

	scheme := CategoryExport.Scheme()
	boundary := s.addNode(id, dot.Attrs{
		"label":     strings.ToUpper(public),
		"shape":     string(shape),
		"fontcolor": string(scheme.Label),
		"fontsize":  "10",
		"fillcolor": string(scheme.Fill),
		"style":     "filled",
	})

	process := strings.ToLower(e.Process)
	port := CleanPort(e.Port)
	for _, n := range s.graph.Nodes {
		if strings.ToLower(n.ID) != process {
			continue
		}
		target, ok := s.rendered[n.ID]
		if !ok {
			continue
		}
		if dir == directionTo {
			s.addEdge(boundary, target, connection(CategoryPort, "", port))
		} else {
			s.addEdge(target, boundary, connection(CategoryPort, port, ""))
		}
	}
}
