// Package palette assigns stable colors to route labels.
//
// A [Routes] table belongs to one rendering session. The first time a route
// label is requested it takes one color from the remaining pool; every later
// request for the same label returns that color. Nodes take colors from the
// front of the pool and edges from the back, so node and edge colors stay
// apart while the pool has at least two entries.
//
// When the pool runs dry, new labels receive [Fallback]. Exhaustion degrades
// the drawing but never fails it.
package palette

import "sync"

// Color is a Graphviz color value, usually "#rrggbb".
type Color string

// Fallback is assigned to route labels requested after the pool is empty.
const Fallback Color = "#888a85"

// Default is the route color pool, in consumption order from the front.
var Default = []Color{
	"#a40000",
	"#5c3566",
	"#204a87",
	"#4e9a06",
	"#8f5902",
	"#ce5c00",
	"#c4a000",
}

// Routes maps route labels to colors for one rendering session.
// It is safe for concurrent use.
type Routes struct {
	mu        sync.Mutex
	taken     map[string]Color
	available []Color
	exhausted int
}

// NewRoutes creates a table drawing from a copy of pool.
// A nil pool uses [Default].
func NewRoutes(pool []Color) *Routes {
	if pool == nil {
		pool = Default
	}
	return &Routes{
		taken:     make(map[string]Color),
		available: append([]Color(nil), pool...),
	}
}

// Front returns the color for route, assigning the first remaining pool
// color if the route has none yet. Node rendering uses Front.
func (r *Routes) Front(route string) Color {
	return r.assign(route, true)
}

// Back returns the color for route, assigning the last remaining pool
// color if the route has none yet. Edge rendering uses Back.
func (r *Routes) Back(route string) Color {
	return r.assign(route, false)
}

func (r *Routes) assign(route string, front bool) Color {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.taken[route]; ok {
		return c
	}

	c := Fallback
	switch n := len(r.available); {
	case n == 0:
		r.exhausted++
	case front:
		c, r.available = r.available[0], r.available[1:]
	default:
		c, r.available = r.available[n-1], r.available[:n-1]
	}
	r.taken[route] = c
	return c
}

// Lookup returns the color already assigned to route, if any.
func (r *Routes) Lookup(route string) (Color, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.taken[route]
	return c, ok
}

// Remaining reports how many pool colors are still unassigned.
func (r *Routes) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.available)
}

// Exhausted reports how many routes received [Fallback].
func (r *Routes) Exhausted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exhausted
}
