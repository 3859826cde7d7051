package fbp

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Graph is a flow-based program: processes connected through ports.
type Graph struct {
	Name         string
	Nodes        []Node
	Edges        []Edge
	Initializers []Initializer
	Inports      map[string]Export
	Outports     map[string]Export
}

// Node is a process in the graph. ID is unique within the graph.
type Node struct {
	ID        string
	Component string
	Metadata  Metadata
}

// Metadata holds the annotations of a process that affect rendering.
type Metadata struct {
	Label  string   `json:"label,omitempty" yaml:"label,omitempty"`
	Routes []string `json:"routes,omitempty" yaml:"routes,omitempty"`
}

// DisplayLabel returns the metadata label if set, otherwise the node ID.
func (n *Node) DisplayLabel() string {
	if n.Metadata.Label != "" {
		return n.Metadata.Label
	}
	return n.ID
}

// HasRoutes reports whether the node is annotated with at least one route.
func (n *Node) HasRoutes() bool { return len(n.Metadata.Routes) > 0 }

// Endpoint addresses one port of one process. Index is set for connections
// to a specific slot of an addressable port.
type Endpoint struct {
	Node  string
	Port  string
	Index *int
}

// String formats the endpoint in FBP notation, e.g. "Repeat.out[0]".
func (e Endpoint) String() string {
	if e.Index != nil {
		return fmt.Sprintf("%s.%s[%d]", e.Node, e.Port, *e.Index)
	}
	return e.Node + "." + e.Port
}

// Edge connects an outport of one process to an inport of another.
type Edge struct {
	From Endpoint
	To   Endpoint
}

// Initializer is a literal value delivered to a port when the graph starts.
type Initializer struct {
	Data any
	To   Endpoint
}

// Literal returns the initializer value as display text. Strings are
// returned verbatim; other values use their JSON encoding.
func (i Initializer) Literal() string {
	switch v := i.Data.(type) {
	case nil:
		return "null"
	case string:
		return v
	}
	if b, err := json.Marshal(i.Data); err == nil {
		return string(b)
	}
	return fmt.Sprint(i.Data)
}

// Export binds a public port of the graph to a port of an inner process.
type Export struct {
	Process string
	Port    string
}

// New returns an empty graph with the given name.
func New(name string) *Graph {
	return &Graph{
		Name:     name,
		Inports:  make(map[string]Export),
		Outports: make(map[string]Export),
	}
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// AddNode appends a node. If a node with the same id exists, its component
// and metadata are filled in from n where they are still empty.
func (g *Graph) AddNode(n Node) {
	if existing, ok := g.Node(n.ID); ok {
		if existing.Component == "" {
			existing.Component = n.Component
		}
		if existing.Metadata.Label == "" {
			existing.Metadata.Label = n.Metadata.Label
		}
		if len(existing.Metadata.Routes) == 0 {
			existing.Metadata.Routes = n.Metadata.Routes
		}
		return
	}
	g.Nodes = append(g.Nodes, n)
}

// AddEdge appends a connection between two endpoints.
func (g *Graph) AddEdge(from, to Endpoint) {
	g.Edges = append(g.Edges, Edge{From: from, To: to})
}

// AddInitializer appends a literal value bound to an inport.
func (g *Graph) AddInitializer(data any, to Endpoint) {
	g.Initializers = append(g.Initializers, Initializer{Data: data, To: to})
}

// AddInport exports the port of process under the public name.
func (g *Graph) AddInport(public, process, port string) {
	if g.Inports == nil {
		g.Inports = make(map[string]Export)
	}
	g.Inports[public] = Export{Process: process, Port: port}
}

// AddOutport exports the port of process under the public name.
func (g *Graph) AddOutport(public, process, port string) {
	if g.Outports == nil {
		g.Outports = make(map[string]Export)
	}
	g.Outports[public] = Export{Process: process, Port: port}
}

// InportNames returns the exported inport names in sorted order.
func (g *Graph) InportNames() []string { return slices.Sorted(maps.Keys(g.Inports)) }

// OutportNames returns the exported outport names in sorted order.
func (g *Graph) OutportNames() []string { return slices.Sorted(maps.Keys(g.Outports)) }

// Validate checks that every process declares a component.
// References to unknown processes are not an error: renderers skip them.
func (g *Graph) Validate() error {
	for _, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("process with empty id")
		}
		if n.Component == "" {
			return fmt.Errorf("process %q has no component", n.ID)
		}
	}
	return nil
}
