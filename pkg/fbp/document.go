package fbp

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// document is the NoFlo graph file shape shared by the JSON and YAML formats.
type document struct {
	Properties  properties           `json:"properties" yaml:"properties"`
	Processes   processList          `json:"processes" yaml:"processes"`
	Connections []connection         `json:"connections" yaml:"connections"`
	Inports     map[string]exportDoc `json:"inports" yaml:"inports"`
	Outports    map[string]exportDoc `json:"outports" yaml:"outports"`
}

type properties struct {
	Name string `json:"name" yaml:"name"`
}

type processDoc struct {
	Component string   `json:"component" yaml:"component"`
	Metadata  Metadata `json:"metadata" yaml:"metadata"`
}

type namedProcess struct {
	ID string
	processDoc
}

// processList keeps processes in document order; a plain map would lose it
// and make rendered output nondeterministic.
type processList []namedProcess

func (p *processList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("processes: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, _ := tok.(string)
		var proc processDoc
		if err := dec.Decode(&proc); err != nil {
			return fmt.Errorf("process %s: %w", id, err)
		}
		*p = append(*p, namedProcess{ID: id, processDoc: proc})
	}
	_, err = dec.Token()
	return err
}

func (p *processList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("processes: expected mapping at line %d", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		id := value.Content[i].Value
		var proc processDoc
		if err := value.Content[i+1].Decode(&proc); err != nil {
			return fmt.Errorf("process %s: %w", id, err)
		}
		*p = append(*p, namedProcess{ID: id, processDoc: proc})
	}
	return nil
}

type portRef struct {
	Process string `json:"process" yaml:"process"`
	Port    string `json:"port" yaml:"port"`
	Index   *int   `json:"index,omitempty" yaml:"index,omitempty"`
}

func (r portRef) endpoint() Endpoint {
	return Endpoint{Node: r.Process, Port: r.Port, Index: r.Index}
}

// connection is either an edge (Src set) or an initializer (Data set).
type connection struct {
	Src  *portRef `json:"src,omitempty" yaml:"src,omitempty"`
	Data any      `json:"data,omitempty" yaml:"data,omitempty"`
	Tgt  portRef  `json:"tgt" yaml:"tgt"`
}

type exportDoc struct {
	Process string `json:"process" yaml:"process"`
	Port    string `json:"port" yaml:"port"`
}

func (d *document) graph() (*Graph, error) {
	g := New(d.Properties.Name)
	for _, p := range d.Processes {
		g.AddNode(Node{ID: p.ID, Component: p.Component, Metadata: p.Metadata})
	}
	for i, c := range d.Connections {
		if c.Tgt.Process == "" || c.Tgt.Port == "" {
			return nil, fmt.Errorf("connection %d: missing target", i)
		}
		if c.Src == nil {
			g.AddInitializer(c.Data, c.Tgt.endpoint())
			continue
		}
		g.AddEdge(c.Src.endpoint(), c.Tgt.endpoint())
	}
	for name, e := range d.Inports {
		g.AddInport(name, e.Process, e.Port)
	}
	for name, e := range d.Outports {
		g.AddOutport(name, e.Process, e.Port)
	}
	return g, g.Validate()
}
