package pipeline

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowviz/pkg/cache"
	"github.com/matzehuels/flowviz/pkg/components"
	errs "github.com/matzehuels/flowviz/pkg/errors"
	"github.com/matzehuels/flowviz/pkg/fbp"
	"github.com/matzehuels/flowviz/pkg/render"
	"github.com/matzehuels/flowviz/pkg/render/palette"
)

const clockGraph = "testdata/demo/graphs/Clock.fbp"

func TestOptionsSetDefaults(t *testing.T) {
	opts := Options{GraphPath: clockGraph}
	opts.SetDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != DefaultFormat {
		t.Errorf("Formats = %v, want [%s]", opts.Formats, DefaultFormat)
	}
	if opts.Name != "Clock" {
		t.Errorf("Name = %q, want Clock", opts.Name)
	}
	if !strings.HasSuffix(opts.ProjectDir, "demo") {
		t.Errorf("ProjectDir = %q, want the demo project", opts.ProjectDir)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}

	inline := Options{Source: []byte("A(Repeat)"), SourceFormat: fbp.FormatFBP}
	inline.SetDefaults()
	if inline.Name != "graph" || inline.ProjectDir != "" {
		t.Errorf("inline defaults = name %q, dir %q", inline.Name, inline.ProjectDir)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errs.Code
	}{
		{"ok path", Options{GraphPath: "g.fbp"}, ""},
		{"ok source", Options{Source: []byte("{}"), SourceFormat: fbp.FormatJSON}, ""},
		{"nothing", Options{}, errs.ErrCodeInvalidInput},
		{"both", Options{GraphPath: "g.fbp", Source: []byte("x"), SourceFormat: fbp.FormatFBP}, errs.ErrCodeInvalidInput},
		{"bad extension", Options{GraphPath: "g.txt"}, errs.ErrCodeInvalidFormat},
		{"bad source format", Options{Source: []byte("x"), SourceFormat: "xml"}, errs.ErrCodeInvalidFormat},
		{"bad output format", Options{GraphPath: "g.fbp", Formats: []render.Format{"gif"}}, errs.ErrCodeInvalidFormat},
		{"oversized source", Options{Source: make([]byte, MaxSourceSize+1), SourceFormat: fbp.FormatFBP}, errs.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errs.Is(err, tt.code) {
				t.Errorf("Validate() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecuteDOT(t *testing.T) {
	var logs bytes.Buffer
	r := NewRunner(nil, nil, log.New(&logs))

	res, err := r.Execute(context.Background(), Options{
		GraphPath: clockGraph,
		Formats:   []render.Format{render.FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.Graph.Name != "Clock" {
		t.Errorf("graph name = %q", res.Graph.Name)
	}
	if res.Stats.NodeCount != 5 {
		t.Errorf("NodeCount = %d, want 5", res.Stats.NodeCount)
	}
	if res.Render == nil || res.Stats.ExcludedCount != 1 || res.Render.Excluded[0].Node != "Lost" {
		t.Errorf("excluded = %+v", res.Render)
	}

	out := string(res.Artifacts[render.FormatDOT])
	if out != string(res.DOT) {
		t.Error("dot artifact should equal the drawing")
	}
	for _, want := range []string{
		`digraph "Clock" {`,
		`"Kick" [`,
		`shape="hexagon"`,
		`sametail="out"`,
		`"data0" -> "Kick"`,
		`"exportstart" -> "Kick"`,
		`layers="clock"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, `"Lost"`) {
		t.Error("unresolved process should not be drawn")
	}
	if !strings.Contains(logs.String(), "component resolution failed") {
		t.Error("resolution failure should be logged")
	}
}

func TestExecuteInlineSource(t *testing.T) {
	lib := components.NewLibrary(
		&components.Component{Name: "Repeat", InPorts: map[string]components.Port{"in": {}}, OutPorts: map[string]components.Port{"out": {}}},
	)
	r := NewRunner(nil, nil, log.New(&bytes.Buffer{}))

	res, err := r.Execute(context.Background(), Options{
		Source:       []byte(`{"processes": {"A": {"component": "Repeat"}, "B": {"component": "Repeat"}}, "connections": [{"src": {"process": "A", "port": "out"}, "tgt": {"process": "B", "port": "in"}}]}`),
		SourceFormat: fbp.FormatJSON,
		Name:         "Inline",
		Library:      lib,
		Formats:      []render.Format{render.FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(string(res.DOT), `"A" -> "B"`) {
		t.Errorf("DOT = %s", res.DOT)
	}
	if res.Stats.ComponentCount != 1 {
		t.Errorf("ComponentCount = %d, want 1", res.Stats.ComponentCount)
	}
}

func TestExecuteMissingGraph(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{GraphPath: "testdata/demo/graphs/Nope.fbp"})
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("Execute() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestExecuteMissingManifest(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{
		GraphPath: clockGraph,
		Manifests: []string{"testdata/demo/nope.toml"},
	})
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("Execute() error = %v, want FILE_NOT_FOUND", err)
	}
}

// memCache is an in-memory cache recording every key it serves.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	if ok {
		c.hits++
	}
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

func TestExecuteCachesDrawing(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, log.New(&bytes.Buffer{}))
	opts := Options{GraphPath: clockGraph, Formats: []render.Format{render.FormatDOT}}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.DrawingHit {
		t.Error("first run should miss")
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.DrawingHit {
		t.Error("second run should serve the drawing from cache")
	}
	if string(second.DOT) != string(first.DOT) {
		t.Error("cached drawing differs")
	}

	opts.NoLayers = true
	third, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.DrawingHit {
		t.Error("changed options should miss")
	}
	if strings.Contains(string(third.DOT), "layer=") {
		t.Error("NoLayers drawing should carry no layer attributes")
	}

	opts.Refresh = true
	opts.NoLayers = false
	fourth, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.DrawingHit {
		t.Error("Refresh should bypass cache reads")
	}
}

func TestExecuteCachedExclusions(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, log.New(&bytes.Buffer{}))
	opts := Options{GraphPath: clockGraph, Formats: []render.Format{render.FormatDOT}}

	for i, wantHit := range []bool{false, true} {
		res, err := r.Execute(context.Background(), opts)
		if err != nil {
			t.Fatalf("run %d: Execute() error: %v", i, err)
		}
		if res.CacheInfo.DrawingHit != wantHit {
			t.Errorf("run %d: DrawingHit = %v, want %v", i, res.CacheInfo.DrawingHit, wantHit)
		}
		if res.Render == nil || len(res.Render.Excluded) != 1 {
			t.Fatalf("run %d: excluded = %+v, want Lost", i, res.Render)
		}
		ex := res.Render.Excluded[0]
		if ex.Node != "Lost" || ex.Component != "core/Missing" {
			t.Errorf("run %d: exclusion = %+v", i, ex)
		}
		if !errs.Is(ex.Err, errs.ErrCodeComponentNotFound) {
			t.Errorf("run %d: exclusion error = %v, want COMPONENT_NOT_FOUND", i, ex.Err)
		}
		if res.Stats.ExcludedCount != 1 {
			t.Errorf("run %d: ExcludedCount = %d, want 1", i, res.Stats.ExcludedCount)
		}
		if res.Render.Nodes == 0 {
			t.Errorf("run %d: node count lost", i)
		}
	}
}

func TestExecuteUnreadableCachedDrawing(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, log.New(&bytes.Buffer{}))
	opts := Options{GraphPath: clockGraph, Formats: []render.Format{render.FormatDOT}}

	if _, err := r.Execute(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	c.mu.Lock()
	for k := range c.data {
		c.data[k] = []byte("digraph {}")
	}
	c.mu.Unlock()

	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.CacheInfo.DrawingHit {
		t.Error("unreadable entry should count as a miss")
	}
	if !strings.Contains(string(res.DOT), `"Kick"`) {
		t.Errorf("drawing not redrawn:\n%s", res.DOT)
	}
}

func TestExecutePalette(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, log.New(&bytes.Buffer{}))
	opts := Options{GraphPath: clockGraph, Formats: []render.Format{render.FormatDOT}}

	if _, err := r.Execute(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	opts.Palette = []palette.Color{"#111111", "#222222"}
	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.CacheInfo.DrawingHit {
		t.Error("a different palette should miss the drawing cache")
	}
	if !strings.Contains(string(res.DOT), `color="#111111"`) {
		t.Errorf("custom palette not applied:\n%s", res.DOT)
	}

	opts.Palette = []palette.Color{" "}
	if _, err := r.Execute(context.Background(), opts); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Execute() error = %v, want INVALID_INPUT", err)
	}
}

func TestExecuteSVG(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, log.New(&bytes.Buffer{}))
	opts := Options{GraphPath: clockGraph, Formats: []render.Format{render.FormatSVG, render.FormatDOT}}

	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	svg := string(res.Artifacts[render.FormatSVG])
	if !strings.Contains(svg, "<svg") {
		t.Fatalf("svg artifact = %.200s", svg)
	}
	if res.CacheInfo.ArtifactHit[render.FormatSVG] {
		t.Error("first svg should miss")
	}

	again, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.ArtifactHit[render.FormatSVG] {
		t.Error("second svg should hit")
	}
}

func TestFingerprint(t *testing.T) {
	a := components.NewLibrary(&components.Component{Name: "A"})
	b := components.NewLibrary(&components.Component{Name: "A", Subgraph: true})
	if Fingerprint(a) == Fingerprint(b) {
		t.Error("different definitions should fingerprint differently")
	}
	if Fingerprint(a) != Fingerprint(components.NewLibrary(&components.Component{Name: "A"})) {
		t.Error("Fingerprint should be deterministic")
	}
}
