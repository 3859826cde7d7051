package flowgraph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/flowviz/pkg/components"
	"github.com/matzehuels/flowviz/pkg/fbp"
	"github.com/matzehuels/flowviz/pkg/observability"
	"github.com/matzehuels/flowviz/pkg/render/dot"
	"github.com/matzehuels/flowviz/pkg/render/palette"
)

// Options configures a Renderer.
type Options struct {
	// NoLayers disables the Graphviz layer hints derived from routes.
	NoLayers bool

	// Palette is the route color pool. Nil uses palette.Default.
	Palette []palette.Color
}

// Renderer draws flow graphs onto a canvas.
// A Renderer holds no per-render state and may be used concurrently.
type Renderer struct {
	Resolver components.Resolver
	Logger   *log.Logger
	Options  Options
}

// New creates a renderer resolving components through r.
// A nil logger uses log.Default().
func New(r components.Resolver, logger *log.Logger, opts Options) *Renderer {
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{Resolver: r, Logger: logger, Options: opts}
}

// Exclusion records a process left out of the drawing.
type Exclusion struct {
	Node      string
	Component string
	Err       error
}

// Result summarizes a rendering session.
type Result struct {
	SessionID string
	Nodes     int
	Edges     int
	Excluded  []Exclusion
	Routes    *palette.Routes
}

// Render draws g onto canvas.
//
// Component resolution failures exclude the affected process and are
// reported in the result; they do not fail the render. Render fails only
// when the resolver cannot list its components or ctx is done.
func (r *Renderer) Render(ctx context.Context, g *fbp.Graph, canvas dot.Canvas) (res *Result, err error) {
	start := time.Now()
	hooks := observability.Render()
	hooks.OnRenderStart(ctx, g.Name, len(g.Nodes))
	defer func() { hooks.OnRenderComplete(ctx, g.Name, time.Since(start), err) }()

	id := uuid.NewString()
	s := &session{
		graph:      g,
		canvas:     canvas,
		resolver:   r.Resolver,
		logger:     r.Logger.With("session", id[:8]),
		layers:     !r.Options.NoLayers,
		routes:     palette.NewRoutes(r.Options.Palette),
		rendered:   make(map[string]*dot.Node),
		components: make(map[string]*components.Component),
		tails:      make(map[string]bool),
		heads:      make(map[string]bool),
		result:     &Result{SessionID: id},
	}
	s.result.Routes = s.routes

	if l, ok := r.Resolver.(components.Lister); ok {
		if err := l.List(ctx); err != nil {
			return nil, fmt.Errorf("list components: %w", err)
		}
	}

	if err := s.resolveAll(ctx); err != nil {
		return nil, err
	}
	s.renderNodes()
	s.renderInitializers()
	s.renderExports()
	s.renderEdges()

	s.logger.Debug("rendered graph",
		"graph", g.Name,
		"nodes", s.result.Nodes,
		"edges", s.result.Edges,
		"excluded", len(s.result.Excluded),
		"duration", time.Since(start))
	return s.result, nil
}

// session is the state of one Render call.
type session struct {
	graph    *fbp.Graph
	canvas   dot.Canvas
	resolver components.Resolver
	logger   *log.Logger
	layers   bool
	routes   *palette.Routes

	mu         sync.Mutex
	components map[string]*components.Component // by process id

	rendered map[string]*dot.Node // by process id
	tails    map[string]bool      // addressable outports already labeled
	heads    map[string]bool      // addressable inports already labeled
	result   *Result
}

// resolveAll resolves every process's component concurrently and returns
// once all resolutions have finished, successfully or not.
func (s *session) resolveAll(ctx context.Context) error {
	failures := make([]error, len(s.graph.Nodes))

	var wg sync.WaitGroup
	for i := range s.graph.Nodes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n := &s.graph.Nodes[i]

			start := time.Now()
			c, err := s.resolver.Resolve(ctx, n.Component)
			observability.Render().OnResolve(ctx, n.Component, time.Since(start), err)
			if err != nil {
				failures[i] = err
				s.logger.Warn("component resolution failed", "node", n.ID, "component", n.Component, "err", err)
				return
			}

			s.mu.Lock()
			s.components[n.ID] = c
			s.mu.Unlock()
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	for i, err := range failures {
		if err != nil {
			n := s.graph.Nodes[i]
			s.result.Excluded = append(s.result.Excluded, Exclusion{Node: n.ID, Component: n.Component, Err: err})
		}
	}
	return nil
}

func (s *session) addNode(id string, attrs dot.Attrs) *dot.Node {
	s.result.Nodes++
	return s.canvas.AddNode(id, attrs)
}

func (s *session) addEdge(from, to *dot.Node, attrs dot.Attrs) {
	s.result.Edges++
	s.canvas.AddEdge(from, to, attrs)
}

// connection returns the attributes shared by every edge of a category.
func connection(c Category, fromPort, toPort string) dot.Attrs {
	attrs := dot.Attrs{
		"labelfontcolor": string(CategoryPort.Scheme().Label),
		"labelfontsize":  "8",
		"color":          string(c.Scheme().Edge),
	}
	if toPort != "" {
		attrs["headlabel"] = toPort
	}
	if fromPort != "" {
		attrs["taillabel"] = fromPort
	}
	return attrs
}
