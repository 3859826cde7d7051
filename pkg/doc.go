// Package pkg provides the libraries behind flowviz, a renderer for
// flow-based programming graphs.
//
// # Overview
//
// flowviz turns NoFlo-style graphs into Graphviz drawings. Processes are
// colored by role, initial packets and exported ports get their own
// markers, and route annotations become colored Graphviz layers. The pkg
// directory is organized as follows:
//
//  1. [fbp] - Graph model and loaders (JSON, YAML, .fbp)
//  2. [components] - Component metadata from project manifests
//  3. [render] - Drawing (flowgraph, palette, dot) and rasterizing
//  4. [pipeline] - Orchestration (load → draw → rasterize) with caching
//  5. [cache] - File, Redis and no-op artifact caches
//
// # Architecture
//
//	Graph file (.json/.yaml/.fbp)
//	         ↓
//	    [fbp] package (load the graph)
//	         ↓
//	    [components] package (resolve component metadata)
//	         ↓
//	    [render/flowgraph] package (translate into a DOT drawing)
//	         ↓
//	    [render] package (DOT/SVG/PNG/JPG/PDF output)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/flowviz/pkg/pipeline"
//	    "github.com/matzehuels/flowviz/pkg/render"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(context.Background(), pipeline.Options{
//	    GraphPath: "graphs/Clock.fbp",
//	    Formats:   []render.Format{render.FormatSVG},
//	})
//	svg := res.Artifacts[render.FormatSVG]
//
// # Supporting Packages
//
//   - [errors]: coded errors shared by every layer
//   - [observability]: render and cache hooks
//   - [buildinfo]: version metadata
//
// [fbp]: github.com/matzehuels/flowviz/pkg/fbp
// [components]: github.com/matzehuels/flowviz/pkg/components
// [render]: github.com/matzehuels/flowviz/pkg/render
// [render/flowgraph]: github.com/matzehuels/flowviz/pkg/render/flowgraph
// [pipeline]: github.com/matzehuels/flowviz/pkg/pipeline
// [cache]: github.com/matzehuels/flowviz/pkg/cache
// [errors]: github.com/matzehuels/flowviz/pkg/errors
// [observability]: github.com/matzehuels/flowviz/pkg/observability
// [buildinfo]: github.com/matzehuels/flowviz/pkg/buildinfo
package pkg
