package dot

import (
	"bytes"
	"slices"
	"strings"
	"testing"
)

func TestGraphString(t *testing.T) {
	g := NewGraph("Loop")
	a := g.AddNode("A", Attrs{"shape": "box", "label": "A\nRepeat"})
	b := g.AddNode("B", Attrs{"shape": "none"})
	g.AddEdge(a, b, Attrs{"taillabel": "OUT", "headlabel": "IN"})

	out := g.String()

	for _, want := range []string{
		`digraph "Loop" {`,
		`"A" [label="A\nRepeat", shape="box"];`,
		`"B" [shape="none"];`,
		`"A" -> "B" [headlabel="IN", taillabel="OUT"];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "layers=") {
		t.Error("graph without layers should not declare any")
	}
}

func TestAddNodeMergesDuplicates(t *testing.T) {
	g := NewGraph("g")
	first := g.AddNode("A", Attrs{"shape": "box"})
	second := g.AddNode("A", Attrs{"color": "red"})

	if first != second {
		t.Error("AddNode with the same id should return the same handle")
	}
	if len(g.Nodes()) != 1 {
		t.Fatalf("Nodes() = %d, want 1", len(g.Nodes()))
	}
	if first.Attrs["shape"] != "box" || first.Attrs["color"] != "red" {
		t.Errorf("merged attrs = %v", first.Attrs)
	}
}

func TestAttrsAreCopied(t *testing.T) {
	g := NewGraph("g")
	attrs := Attrs{"shape": "box"}
	n := g.AddNode("A", attrs)
	attrs["shape"] = "circle"

	if n.Attrs["shape"] != "box" {
		t.Errorf("node attrs changed through caller map: %v", n.Attrs)
	}

	e := g.AddEdge(n, n, nil)
	if e.Attrs == nil {
		t.Error("nil edge attrs should become an empty map")
	}
}

func TestLayersAreDeclared(t *testing.T) {
	g := NewGraph("g")
	a := g.AddNode("A", Attrs{"layer": "main,side"})
	b := g.AddNode("B", Attrs{"layer": "side"})
	g.AddEdge(a, b, Attrs{"layer": "main,extra"})

	if got := g.Layers(); !slices.Equal(got, []string{"main", "side", "extra"}) {
		t.Errorf("Layers() = %v", got)
	}

	out := g.String()
	if !strings.Contains(out, `layers="main:side:extra";`) {
		t.Errorf("String() missing layers declaration:\n%s", out)
	}
	if !strings.Contains(out, `layersep=":";`) {
		t.Errorf("String() missing layersep:\n%s", out)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `"plain"`},
		{`say "hi"`, `"say \"hi\""`},
		{"two\nlines", `"two\nlines"`},
		{"crlf\r\n", `"crlf\n"`},
		{"'5'", `"'5'"`},
		{`dir\`, `"dir\\"`},
		{`C:\Node`, `"C:\\Node"`},
		{`a\"b`, `"a\\\"b"`},
	}

	for _, tt := range tests {
		if got := quote(tt.in); got != tt.want {
			t.Errorf("quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestWriteTo(t *testing.T) {
	g := NewGraph("g")
	g.AddNode("A", nil)

	var buf bytes.Buffer
	n, err := g.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo() error: %v", err)
	}
	if int(n) != buf.Len() || buf.String() != g.String() {
		t.Errorf("WriteTo() wrote %d bytes: %q", n, buf.String())
	}
}
