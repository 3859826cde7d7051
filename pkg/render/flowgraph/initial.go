package flowgraph

import (
	"fmt"

	"github.com/matzehuels/flowviz/pkg/render/dot"
)

// renderInitializers draws a literal node per initializer, connected to its
// target port. Initializers aimed at a process that was not drawn are
// skipped; numbering still follows graph order. A process named data<i>
// shares the literal's drawing node (see CleanID).
func (s *session) renderInitializers() {
	scheme := CategoryInitial.Scheme()
	for i, init := range s.graph.Initializers {
		target, ok := s.rendered[init.To.Node]
		if !ok {
			continue
		}
		data := s.addNode(fmt.Sprintf("data%d", i), dot.Attrs{
			"label":     "'" + init.Literal() + "'",
			"shape":     string(ShapePlaintext),
			"style":     "filled,rounded",
			"fontcolor": string(scheme.Label),
			"fillcolor": string(scheme.Fill),
		})
		s.addEdge(data, target, connection(CategoryInitial, "", CleanPort(init.To.Port)))
	}
}
