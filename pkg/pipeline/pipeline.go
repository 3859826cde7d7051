// Package pipeline provides the load → draw → rasterize pipeline shared by
// the CLI and the HTTP service.
//
// # Architecture
//
// The pipeline runs three stages:
//
//  1. Load: read the graph (file or inline source) and discover its
//     component library
//  2. Draw: translate the graph into DOT source with [flowgraph]
//  3. Rasterize: turn the DOT source into each requested [render.Format]
//
// Draw and rasterize results are cached through [cache.Cache], keyed by the
// content of their inputs.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    GraphPath: "graphs/Clock.fbp",
//	    Formats:   []render.Format{render.FormatSVG},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts[render.FormatSVG]
//
// [flowgraph]: github.com/matzehuels/flowviz/pkg/render/flowgraph
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowviz/pkg/components"
	errs "github.com/matzehuels/flowviz/pkg/errors"
	"github.com/matzehuels/flowviz/pkg/fbp"
	"github.com/matzehuels/flowviz/pkg/render"
	"github.com/matzehuels/flowviz/pkg/render/flowgraph"
	"github.com/matzehuels/flowviz/pkg/render/palette"
)

// DefaultFormat is produced when no format is requested.
const DefaultFormat = render.FormatSVG

// MaxSourceSize bounds inline graph sources.
const MaxSourceSize = 4 << 20

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// GraphPath is a graph file to load. Either GraphPath or Source is set.
	GraphPath string `json:"graph_path,omitempty"`

	// Source is an inline graph document in SourceFormat, named Name.
	Source       []byte     `json:"source,omitempty"`
	SourceFormat fbp.Format `json:"source_format,omitempty"`
	Name         string     `json:"name,omitempty"`

	// ProjectDir holds the component manifests. Empty means the project
	// directory of GraphPath.
	ProjectDir string `json:"project_dir,omitempty"`

	// Manifests are extra component manifests that must exist.
	Manifests []string `json:"manifests,omitempty"`

	Formats  []render.Format `json:"formats,omitempty"`
	NoLayers bool            `json:"no_layers,omitempty"`

	// Palette replaces the route color pool. Empty uses palette.Default.
	Palette []palette.Color `json:"palette,omitempty"`

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// Library overrides discovery with a ready-made component library.
	Library *components.Library `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the loaded flow graph.
	Graph *fbp.Graph

	// GraphHash is the content hash of the graph source.
	GraphHash string

	// DOT is the drawing source.
	DOT []byte

	// Artifacts contains rasterized outputs keyed by format.
	Artifacts map[render.Format][]byte

	// Render describes the drawing session. On a drawing cache hit it is
	// rebuilt from the cache entry and carries the counts and exclusions but
	// no session id or route table.
	Render *flowgraph.Result

	// Components is the library the graph was drawn against.
	Components *components.Library

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount      int
	EdgeCount      int
	LoadTime       time.Duration
	DrawTime       time.Duration
	RasterizeTime  time.Duration
	ExcludedCount  int
	ComponentCount int
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	DrawingHit  bool
	ArtifactHit map[render.Format]bool
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills unset fields. It does not validate.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []render.Format{DefaultFormat}
	}
	if o.GraphPath != "" && o.ProjectDir == "" && o.Library == nil {
		o.ProjectDir = components.ProjectDir(o.GraphPath)
	}
	if o.GraphPath != "" && o.Name == "" {
		o.Name = fbp.NameFromPath(o.GraphPath)
	}
	if o.Name == "" {
		o.Name = "graph"
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks that the options describe exactly one graph and only
// supported formats.
func (o *Options) Validate() error {
	switch {
	case o.GraphPath == "" && len(o.Source) == 0:
		return errs.New(errs.ErrCodeInvalidInput, "graph path or source is required")
	case o.GraphPath != "" && len(o.Source) > 0:
		return errs.New(errs.ErrCodeInvalidInput, "graph path and source are mutually exclusive")
	}
	if o.GraphPath != "" {
		if err := errs.ValidateGraphPath(o.GraphPath); err != nil {
			return err
		}
	}
	if len(o.Source) > 0 {
		if len(o.Source) > MaxSourceSize {
			return errs.New(errs.ErrCodeInvalidInput, "graph source exceeds %d bytes", MaxSourceSize)
		}
		switch o.SourceFormat {
		case fbp.FormatJSON, fbp.FormatYAML, fbp.FormatFBP:
		default:
			return errs.New(errs.ErrCodeInvalidFormat, "unsupported graph format %q", o.SourceFormat)
		}
	}
	for _, f := range o.Formats {
		if _, err := render.ParseFormat(string(f)); err != nil {
			return err
		}
	}
	for _, c := range o.Palette {
		if strings.TrimSpace(string(c)) == "" {
			return errs.New(errs.ErrCodeInvalidInput, "palette colors cannot be empty")
		}
	}
	return nil
}

// ValidateAndSetDefaults applies defaults, then validates.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// RenderOptions returns the drawing options for the run.
func (o *Options) RenderOptions() flowgraph.Options {
	opts := flowgraph.Options{NoLayers: o.NoLayers}
	if len(o.Palette) > 0 {
		opts.Palette = o.Palette
	}
	return opts
}

// paletteKey lists the custom palette for the drawing cache key.
func (o *Options) paletteKey() []string {
	if len(o.Palette) == 0 {
		return nil
	}
	key := make([]string, len(o.Palette))
	for i, c := range o.Palette {
		key[i] = string(c)
	}
	return key
}
