// Package dot builds Graphviz DOT documents.
//
// [Canvas] is the drawing contract the flow renderer writes to: it adds
// nodes and edges with attribute maps and hands back opaque handles used to
// connect them. [Graph] is the in-memory implementation; its String method
// produces DOT text ready for the graphviz package.
//
// Attributes are emitted in sorted key order so identical drawings produce
// identical DOT.
package dot

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// Attrs maps Graphviz attribute names to values.
type Attrs map[string]string

// Clone returns a copy of a.
func (a Attrs) Clone() Attrs { return maps.Clone(a) }

// Node is a node handle returned by a Canvas.
type Node struct {
	ID    string
	Attrs Attrs
}

// Edge is an edge handle returned by a Canvas.
type Edge struct {
	From  *Node
	To    *Node
	Attrs Attrs
}

// Canvas receives the nodes and edges of a drawing.
type Canvas interface {
	AddNode(id string, attrs Attrs) *Node
	AddEdge(from, to *Node, attrs Attrs) *Edge
}

// LayerSep separates layer names in the graph's layers attribute.
const LayerSep = ":"

// Graph is an in-memory directed graph drawing.
type Graph struct {
	Name  string
	Attrs Attrs

	nodes  []*Node
	byID   map[string]*Node
	edges  []*Edge
	layers []string
}

// NewGraph creates an empty digraph.
func NewGraph(name string) *Graph {
	return &Graph{
		Name:  name,
		Attrs: Attrs{},
		byID:  make(map[string]*Node),
	}
}

// AddNode adds a node. Adding an id twice merges the new attributes into
// the existing node and returns it.
func (g *Graph) AddNode(id string, attrs Attrs) *Node {
	g.addLayers(attrs)
	if n, ok := g.byID[id]; ok {
		maps.Copy(n.Attrs, attrs)
		return n
	}
	n := &Node{ID: id, Attrs: attrs.Clone()}
	if n.Attrs == nil {
		n.Attrs = Attrs{}
	}
	g.nodes = append(g.nodes, n)
	g.byID[id] = n
	return n
}

// AddEdge adds an edge between two nodes of this graph.
func (g *Graph) AddEdge(from, to *Node, attrs Attrs) *Edge {
	g.addLayers(attrs)
	e := &Edge{From: from, To: to, Attrs: attrs.Clone()}
	if e.Attrs == nil {
		e.Attrs = Attrs{}
	}
	g.edges = append(g.edges, e)
	return e
}

// addLayers records the layer names used by attrs so that they can be
// declared on the graph; Graphviz rejects undeclared layers.
func (g *Graph) addLayers(attrs Attrs) {
	for _, name := range strings.Split(attrs["layer"], ",") {
		if name = strings.TrimSpace(name); name != "" && !slices.Contains(g.layers, name) {
			g.layers = append(g.layers, name)
		}
	}
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []*Edge { return g.edges }

// Layers returns the declared layer names in first-use order.
func (g *Graph) Layers() []string { return g.layers }

// String renders the graph as DOT.
func (g *Graph) String() string {
	var buf bytes.Buffer
	g.write(&buf)
	return buf.String()
}

// WriteTo writes the DOT document to w.
func (g *Graph) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	g.write(&buf)
	return buf.WriteTo(w)
}

func (g *Graph) write(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "digraph %s {\n", quote(g.Name))

	graphAttrs := g.Attrs.Clone()
	if graphAttrs == nil {
		graphAttrs = Attrs{}
	}
	if len(g.layers) > 0 {
		graphAttrs["layers"] = strings.Join(g.layers, LayerSep)
		graphAttrs["layersep"] = LayerSep
	}
	for _, k := range slices.Sorted(maps.Keys(graphAttrs)) {
		fmt.Fprintf(buf, "  %s=%s;\n", k, quote(graphAttrs[k]))
	}
	if len(graphAttrs) > 0 {
		buf.WriteString("\n")
	}

	for _, n := range g.nodes {
		fmt.Fprintf(buf, "  %s%s;\n", quote(n.ID), fmtAttrs(n.Attrs))
	}
	if len(g.edges) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range g.edges {
		fmt.Fprintf(buf, "  %s -> %s%s;\n", quote(e.From.ID), quote(e.To.ID), fmtAttrs(e.Attrs))
	}

	buf.WriteString("}\n")
}

func fmtAttrs(a Attrs) string {
	if len(a) == 0 {
		return ""
	}
	parts := make([]string, 0, len(a))
	for _, k := range slices.Sorted(maps.Keys(a)) {
		parts = append(parts, k+"="+quote(a[k]))
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

// quote produces a DOT double-quoted string. Newlines become the DOT
// centered line break "\n"; backslashes are doubled so Graphviz reads them
// literally instead of as escapes like \N or \l.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

var _ Canvas = (*Graph)(nil)
