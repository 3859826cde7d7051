// Package flowgraph translates flow-based-program graphs into drawings.
//
// A [Renderer] takes an [fbp.Graph] and writes visual nodes and edges to a
// [dot.Canvas]:
//
//   - every process becomes a node whose shape and colors depend on its
//     component (gates are red hexagons, subgraphs purple boxes)
//   - every initializer becomes a small literal node with an edge into its
//     target port
//   - every exported port becomes a circle (inport) or double circle
//     (outport) wired to the matching processes
//   - every connection becomes an edge labeled with its upper-cased ports
//
// Processes annotated with routes are colored per route and placed on a
// Graphviz layer named after their routes; an edge between two processes
// sharing a route is drawn bold in that route's color.
//
// # Sessions
//
// Each call to [Renderer.Render] is one session. The session first resolves
// the component of every process concurrently, waits for all of them, and
// only then draws nodes, initializers, exports and edges, in that order.
// A process whose component cannot be resolved is logged and left out; edges
// touching it are dropped. Route colors are tracked per session, so
// concurrent renders never share colors.
//
// # Example
//
//	g, _ := fbp.Load("graphs/Loop.fbp")
//	lib := components.Discover(components.ProjectDir("graphs/Loop.fbp"))
//	canvas := dot.NewGraph(g.Name)
//
//	r := flowgraph.New(lib, logger, flowgraph.Options{})
//	if _, err := r.Render(ctx, g, canvas); err != nil {
//	    return err
//	}
//	fmt.Print(canvas.String())
package flowgraph
