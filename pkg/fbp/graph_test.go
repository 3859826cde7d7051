package fbp

import "testing"

func TestAddNodeMerges(t *testing.T) {
	g := New("g")
	g.AddNode(Node{ID: "A"})
	g.AddNode(Node{ID: "A", Component: "Repeat", Metadata: Metadata{Routes: []string{"r"}}})
	g.AddNode(Node{ID: "A", Component: "Other"})

	if len(g.Nodes) != 1 {
		t.Fatalf("nodes = %d, want 1", len(g.Nodes))
	}
	if g.Nodes[0].Component != "Repeat" {
		t.Errorf("component = %q, want Repeat", g.Nodes[0].Component)
	}
	if !g.Nodes[0].HasRoutes() {
		t.Error("routes were not merged")
	}
}

func TestDisplayLabel(t *testing.T) {
	n := Node{ID: "A"}
	if n.DisplayLabel() != "A" {
		t.Errorf("DisplayLabel() = %q, want A", n.DisplayLabel())
	}
	n.Metadata.Label = "Alpha"
	if n.DisplayLabel() != "Alpha" {
		t.Errorf("DisplayLabel() = %q, want Alpha", n.DisplayLabel())
	}
}

func TestValidate(t *testing.T) {
	g := New("g")
	g.AddNode(Node{ID: "A", Component: "Repeat"})
	g.AddEdge(Endpoint{Node: "A", Port: "out"}, Endpoint{Node: "Missing", Port: "in"})
	if err := g.Validate(); err != nil {
		t.Errorf("dangling edge should not fail validation: %v", err)
	}

	g.AddNode(Node{ID: "B"})
	if err := g.Validate(); err == nil {
		t.Error("node without component should fail validation")
	}
}
