// Package components resolves component names to their capabilities.
//
// Rendering needs two facts about the component behind each process:
// whether it is itself a graph (a subgraph) and which of its ports are
// addressable. A [Resolver] answers those questions; [Library] is the
// manifest-backed implementation used by the CLI and the HTTP service.
//
// # Manifests
//
// A Library reads component definitions from:
//
//   - fbp.json: the NoFlo component manifest (modules with components and
//     their inPorts/outPorts)
//   - components.toml: a hand-written table of components
//   - graphs/: every graph file in the project's graphs directory becomes a
//     subgraph component whose ports are the graph's exports
//
// Example components.toml:
//
//	[components."core/Repeat"]
//	inports = { in = {} }
//	outports = { out = {} }
//
//	[components."core/Split"]
//	inports = { in = {} }
//	outports = { out = { addressable = true } }
package components

import (
	"context"
	"errors"
	"strings"
)

// ErrUnknownComponent is the cause of every resolution failure for a name
// that no manifest defines.
var ErrUnknownComponent = errors.New("unknown component")

// Port describes one port of a component.
type Port struct {
	Addressable bool `json:"addressable,omitempty" toml:"addressable"`
}

// Component is the resolved metadata of a component.
type Component struct {
	Name     string          `json:"name"`
	Subgraph bool            `json:"subgraph,omitempty"`
	InPorts  map[string]Port `json:"inports,omitempty"`
	OutPorts map[string]Port `json:"outports,omitempty"`
}

// InPort returns the named inport. Port names match case-insensitively.
func (c *Component) InPort(name string) (Port, bool) { return lookupPort(c.InPorts, name) }

// OutPort returns the named outport. Port names match case-insensitively.
func (c *Component) OutPort(name string) (Port, bool) { return lookupPort(c.OutPorts, name) }

// AddressableIn reports whether the named inport exists and is addressable.
func (c *Component) AddressableIn(name string) bool {
	p, ok := c.InPort(name)
	return ok && p.Addressable
}

// AddressableOut reports whether the named outport exists and is addressable.
func (c *Component) AddressableOut(name string) bool {
	p, ok := c.OutPort(name)
	return ok && p.Addressable
}

func lookupPort(ports map[string]Port, name string) (Port, bool) {
	if p, ok := ports[name]; ok {
		return p, true
	}
	for k, p := range ports {
		if strings.EqualFold(k, name) {
			return p, true
		}
	}
	return Port{}, false
}

// Resolver resolves a component name to its metadata.
type Resolver interface {
	// Resolve returns the component's metadata, or an error wrapping
	// ErrUnknownComponent when the name is not known.
	Resolve(ctx context.Context, name string) (*Component, error)
}

// Lister is implemented by resolvers that must enumerate their components
// before the first Resolve. A List failure aborts the rendering session.
type Lister interface {
	List(ctx context.Context) error
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, name string) (*Component, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, name string) (*Component, error) {
	return f(ctx, name)
}
