package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowviz/pkg/cache"
	"github.com/matzehuels/flowviz/pkg/components"
	"github.com/matzehuels/flowviz/pkg/fbp"
	"github.com/matzehuels/flowviz/pkg/observability"
	"github.com/matzehuels/flowviz/pkg/render"
	"github.com/matzehuels/flowviz/pkg/render/dot"
	"github.com/matzehuels/flowviz/pkg/render/flowgraph"
)

// Cache key types reported to observability hooks.
const (
	keyTypeDrawing  = "drawing"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → draw → rasterize pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[render.Format][]byte),
		CacheInfo: CacheInfo{ArtifactHit: make(map[render.Format]bool)},
	}

	// Stage 1: Load
	loadStart := time.Now()
	g, src, err := r.Load(opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.GraphHash = cache.Hash(src.Data)
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.EdgeCount = len(g.Edges)

	lib, err := r.Library(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Components = lib
	result.Stats.ComponentCount = len(lib.Names())
	result.Stats.LoadTime = time.Since(loadStart)

	opts.Logger.Info("loaded graph",
		"graph", g.Name,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"components", result.Stats.ComponentCount,
		"duration", result.Stats.LoadTime)

	// Stage 2: Draw
	drawStart := time.Now()
	key := r.Keyer.DrawingKey(result.GraphHash, cache.DrawingKeyOpts{
		Name:         g.Name,
		Format:       string(src.Format),
		ManifestHash: Fingerprint(lib),
		NoLayers:     opts.NoLayers,
		Palette:      opts.paletteKey(),
	})
	drawing, res, hit, err := r.drawWithCache(ctx, key, g, lib, opts)
	if err != nil {
		return nil, fmt.Errorf("draw: %w", err)
	}
	result.DOT = drawing
	result.Render = res
	result.CacheInfo.DrawingHit = hit
	result.Stats.DrawTime = time.Since(drawStart)
	result.Stats.ExcludedCount = len(res.Excluded)

	opts.Logger.Info("drew graph",
		"cached", hit,
		"excluded", result.Stats.ExcludedCount,
		"duration", result.Stats.DrawTime)

	// Stage 3: Rasterize
	rasterStart := time.Now()
	drawingHash := cache.Hash(drawing)
	for _, f := range opts.Formats {
		data, hit, err := r.rasterizeWithCache(ctx, drawingHash, drawing, f, opts)
		if err != nil {
			return nil, fmt.Errorf("rasterize %s: %w", f, err)
		}
		result.Artifacts[f] = data
		result.CacheInfo.ArtifactHit[f] = hit
	}
	result.Stats.RasterizeTime = time.Since(rasterStart)

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RasterizeTime)

	return result, nil
}

// Source is the undecoded form of the graph being rendered.
type Source struct {
	Data   []byte
	Format fbp.Format
}

// Load reads and decodes the graph named by opts.
func (r *Runner) Load(opts Options) (*fbp.Graph, Source, error) {
	src := Source{Data: opts.Source, Format: opts.SourceFormat}
	if opts.GraphPath != "" {
		data, format, err := fbp.ReadFile(opts.GraphPath)
		if err != nil {
			return nil, src, err
		}
		src = Source{Data: data, Format: format}
	}

	g, err := fbp.Decode(opts.Name, src.Data, src.Format)
	if err != nil {
		return nil, src, err
	}
	return g, src, nil
}

// Library returns the component library for opts, listing it so manifest
// errors surface before drawing.
func (r *Runner) Library(ctx context.Context, opts Options) (*components.Library, error) {
	lib := opts.Library
	if lib == nil {
		lib = components.Discover(opts.ProjectDir, opts.Manifests...)
	}
	if err := lib.List(ctx); err != nil {
		return nil, fmt.Errorf("load components: %w", err)
	}
	return lib, nil
}

// Fingerprint hashes the definitions held by a listed library.
func Fingerprint(lib *components.Library) string {
	data, _ := json.Marshal(lib.Components())
	return cache.Hash(data)
}

func (r *Runner) drawWithCache(ctx context.Context, key string, g *fbp.Graph, lib *components.Library, opts Options) ([]byte, *flowgraph.Result, bool, error) {
	hooks := observability.Cache()
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if d, err := decodeDrawing(data); err == nil {
				hooks.OnCacheHit(ctx, keyTypeDrawing)
				return d.DOT, d.result(), true, nil
			}
			opts.Logger.Debug("discarding unreadable cached drawing", "key", key)
		}
		hooks.OnCacheMiss(ctx, keyTypeDrawing)
	}

	data, res, err := Draw(ctx, g, lib, opts)
	if err != nil {
		return nil, nil, false, err
	}
	if entry, err := encodeDrawing(data, res); err == nil {
		r.store(ctx, key, keyTypeDrawing, entry, cache.DrawingTTL, opts.Logger)
	}
	return data, res, false, nil
}

func (r *Runner) rasterizeWithCache(ctx context.Context, drawingHash string, drawing []byte, f render.Format, opts Options) ([]byte, bool, error) {
	// DOT output is the drawing itself.
	if f == render.FormatDOT {
		return drawing, false, nil
	}

	hooks := observability.Cache()
	key := r.Keyer.ArtifactKey(drawingHash, cache.ArtifactKeyOpts{Format: string(f)})
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			hooks.OnCacheHit(ctx, keyTypeArtifact)
			return data, true, nil
		}
		hooks.OnCacheMiss(ctx, keyTypeArtifact)
	}

	data, err := render.Rasterize(ctx, drawing, f)
	if err != nil {
		return nil, false, err
	}
	r.store(ctx, key, keyTypeArtifact, data, cache.ArtifactTTL, opts.Logger)
	return data, false, nil
}

func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration, logger *log.Logger) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Debug("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Draw renders g to DOT source without caching.
func Draw(ctx context.Context, g *fbp.Graph, lib components.Resolver, opts Options) ([]byte, *flowgraph.Result, error) {
	canvas := dot.NewGraph(g.Name)
	res, err := flowgraph.New(lib, opts.Logger, opts.RenderOptions()).Render(ctx, g, canvas)
	if err != nil {
		return nil, nil, err
	}
	return []byte(canvas.String()), res, nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// Close releases the runner's cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}
