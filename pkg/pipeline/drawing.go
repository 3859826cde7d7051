package pipeline

import (
	"encoding/json"

	errs "github.com/matzehuels/flowviz/pkg/errors"
	"github.com/matzehuels/flowviz/pkg/render/flowgraph"
)

// cachedDrawing is the drawing cache entry: the DOT source plus what the
// session reported, so cache hits still surface excluded processes.
type cachedDrawing struct {
	DOT      []byte            `json:"dot"`
	Nodes    int               `json:"nodes"`
	Edges    int               `json:"edges"`
	Excluded []cachedExclusion `json:"excluded,omitempty"`
}

type cachedExclusion struct {
	Node      string    `json:"node"`
	Component string    `json:"component"`
	Code      errs.Code `json:"code,omitempty"`
	Message   string    `json:"error"`
}

func encodeDrawing(src []byte, res *flowgraph.Result) ([]byte, error) {
	d := cachedDrawing{DOT: src, Nodes: res.Nodes, Edges: res.Edges}
	for _, ex := range res.Excluded {
		d.Excluded = append(d.Excluded, cachedExclusion{
			Node:      ex.Node,
			Component: ex.Component,
			Code:      errs.GetCode(ex.Err),
			Message:   errs.UserMessage(ex.Err),
		})
	}
	return json.Marshal(d)
}

func decodeDrawing(data []byte) (*cachedDrawing, error) {
	var d cachedDrawing
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	if len(d.DOT) == 0 {
		return nil, errs.New(errs.ErrCodeInternal, "cached drawing has no DOT source")
	}
	return &d, nil
}

// result rebuilds the session summary stored with the drawing. Exclusion
// errors keep their code and user message.
func (d *cachedDrawing) result() *flowgraph.Result {
	res := &flowgraph.Result{Nodes: d.Nodes, Edges: d.Edges}
	for _, ex := range d.Excluded {
		code := ex.Code
		if code == "" {
			code = errs.ErrCodeInternal
		}
		res.Excluded = append(res.Excluded, flowgraph.Exclusion{
			Node:      ex.Node,
			Component: ex.Component,
			Err:       errs.New(code, "%s", ex.Message),
		})
	}
	return res
}
