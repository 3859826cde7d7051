package fbp

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	errs "github.com/matzehuels/flowviz/pkg/errors"
)

func TestLoadFormatsAgree(t *testing.T) {
	for _, file := range []string{"Loop.fbp", "Loop.json", "Loop.yaml"} {
		t.Run(file, func(t *testing.T) {
			g, err := Load(filepath.Join("testdata", file))
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}

			if g.Name != "Loop" {
				t.Errorf("Name = %q, want Loop", g.Name)
			}

			var ids []string
			for _, n := range g.Nodes {
				ids = append(ids, n.ID)
			}
			if want := []string{"Repeat", "Split", "Drop"}; !slices.Equal(ids, want) {
				t.Errorf("node order = %v, want %v", ids, want)
			}

			repeat, _ := g.Node("Repeat")
			if repeat.Component != "core/Repeat" {
				t.Errorf("Repeat component = %q", repeat.Component)
			}
			if repeat.DisplayLabel() != "Repeater" {
				t.Errorf("Repeat label = %q", repeat.DisplayLabel())
			}
			split, _ := g.Node("Split")
			if !slices.Equal(split.Metadata.Routes, []string{"main", "side"}) {
				t.Errorf("Split routes = %v", split.Metadata.Routes)
			}

			if len(g.Edges) != 2 {
				t.Fatalf("edges = %d, want 2", len(g.Edges))
			}
			if got := g.Edges[1].From.String(); got != "Split.out[0]" {
				t.Errorf("second edge source = %q", got)
			}

			if len(g.Initializers) != 1 {
				t.Fatalf("initializers = %d, want 1", len(g.Initializers))
			}
			if lit := g.Initializers[0].Literal(); lit != "5" {
				t.Errorf("initializer literal = %q, want 5", lit)
			}

			if e := g.Inports["start"]; e.Process != "Repeat" || e.Port != "in" {
				t.Errorf("inport start = %+v", e)
			}
			if e := g.Outports["result"]; e.Process != "Split" || e.Port != "out" {
				t.Errorf("outport result = %+v", e)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "Loop-not-found.fbp"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Fatalf("Load() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    errs.Code
	}{
		{"malformed json", "g.json", `{"processes": [`, errs.ErrCodeInvalidGraph},
		{"empty json", "g.json", ``, errs.ErrCodeInvalidGraph},
		{"processes not object", "g.json", `{"processes": []}`, errs.ErrCodeInvalidGraph},
		{"missing component", "g.json", `{"processes": {"A": {}}}`, errs.ErrCodeInvalidGraph},
		{"bad yaml", "g.yaml", "processes: [a, b]", errs.ErrCodeInvalidGraph},
		{"bad fbp", "g.fbp", "A(Comp) OUT ->", errs.ErrCodeInvalidGraph},
		{"unknown extension", "g.txt", "", errs.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errs.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestReadJSONInitializerValues(t *testing.T) {
	src := `{
	  "processes": {"A": {"component": "Repeat"}},
	  "connections": [
	    {"data": "hello", "tgt": {"process": "A", "port": "in"}},
	    {"data": {"x": 1}, "tgt": {"process": "A", "port": "in"}},
	    {"data": true, "tgt": {"process": "A", "port": "in"}}
	  ]
	}`
	g, err := Read(strings.NewReader(src), FormatJSON)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	want := []string{"hello", `{"x":1}`, "true"}
	for i, init := range g.Initializers {
		if got := init.Literal(); got != want[i] {
			t.Errorf("initializer %d literal = %q, want %q", i, got, want[i])
		}
	}
}

func TestReadFileAndDecode(t *testing.T) {
	path := filepath.Join("testdata", "Loop.json")
	data, format, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if format != FormatJSON {
		t.Errorf("ReadFile() format = %s, want json", format)
	}

	g, err := Decode(NameFromPath(path), data, format)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if g.Name != "Loop" {
		t.Errorf("Decode() name = %q, want Loop", g.Name)
	}
	if len(g.Nodes) != 3 {
		t.Errorf("Decode() nodes = %d, want 3", len(g.Nodes))
	}
}

func TestNameFromPath(t *testing.T) {
	tests := map[string]string{
		"graphs/Clock.fbp":   "Clock",
		"/tmp/my.graph.json": "my.graph",
		"Loop":               "Loop",
		"examples/Count.yml": "Count",
	}
	for in, want := range tests {
		if got := NameFromPath(in); got != want {
			t.Errorf("NameFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}
