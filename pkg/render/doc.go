// Package render turns DOT drawings into output artifacts.
//
// # Overview
//
// The [flowgraph] subpackage draws a flow graph onto a [dot.Graph]. This
// package takes the resulting DOT text and produces the formats a user asks
// for:
//
//   - dot: the DOT source itself
//   - svg, png, jpg: laid out and rasterized by Graphviz (go-graphviz)
//   - pdf: the SVG converted by the external rsvg-convert tool
//
//	canvas := dot.NewGraph(g.Name)
//	_, err := flowgraph.New(lib, logger, flowgraph.Options{}).Render(ctx, g, canvas)
//	svg, err := render.Rasterize(ctx, []byte(canvas.String()), render.FormatSVG)
//
// # Subpackages
//
//   - [flowgraph]: graph-to-drawing translation
//   - [dot]: in-memory DOT canvas
//   - [palette]: route color assignment
//
// [flowgraph]: github.com/matzehuels/flowviz/pkg/render/flowgraph
// [dot]: github.com/matzehuels/flowviz/pkg/render/dot
// [dot.Graph]: github.com/matzehuels/flowviz/pkg/render/dot#Graph
// [palette]: github.com/matzehuels/flowviz/pkg/render/palette
package render
