package components

import (
	"context"
	"maps"
	"path"
	"slices"
	"strings"
	"sync"

	errs "github.com/matzehuels/flowviz/pkg/errors"
)

// Library is a manifest-backed component registry. It implements both
// [Resolver] and [Lister]; manifests are read on the first List.
type Library struct {
	mu         sync.RWMutex
	components map[string]*Component
	sources    []source

	once    sync.Once
	listErr error
}

// source loads component definitions into a library.
type source func(ctx context.Context, l *Library) error

// NewLibrary creates a library holding the given components.
func NewLibrary(cs ...*Component) *Library {
	l := &Library{components: make(map[string]*Component)}
	for _, c := range cs {
		l.components[c.Name] = c
	}
	return l
}

// Register adds or replaces a component definition.
func (l *Library) Register(c *Component) error {
	if err := errs.ValidateComponentName(c.Name); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.components[c.Name] = c
	return nil
}

// List loads every configured manifest. It runs once; later calls return
// the first result.
func (l *Library) List(ctx context.Context) error {
	l.once.Do(func() {
		for _, load := range l.sources {
			if err := ctx.Err(); err != nil {
				l.listErr = err
				return
			}
			if err := load(ctx, l); err != nil {
				l.listErr = err
				return
			}
		}
	})
	return l.listErr
}

// Resolve looks up a component by name. Names are tried exactly, then by
// their last path segment ("core/Repeat" matches a component registered as
// "Repeat" and the other way around).
func (l *Library) Resolve(ctx context.Context, name string) (*Component, error) {
	if err := l.List(ctx); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if c, ok := l.components[name]; ok {
		return c, nil
	}
	base := path.Base(name)
	if c, ok := l.components[base]; ok {
		return c, nil
	}
	if !strings.Contains(name, "/") {
		for _, k := range slices.Sorted(maps.Keys(l.components)) {
			if path.Base(k) == name {
				return l.components[k], nil
			}
		}
	}
	return nil, errs.Wrap(errs.ErrCodeComponentNotFound, ErrUnknownComponent, "component %q", name)
}

// Names returns the registered component names in sorted order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Sorted(maps.Keys(l.components))
}

// Components returns the registered components sorted by name.
func (l *Library) Components() []*Component {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Component, 0, len(l.components))
	for _, k := range slices.Sorted(maps.Keys(l.components)) {
		out = append(out, l.components[k])
	}
	return out
}

var (
	_ Resolver = (*Library)(nil)
	_ Lister   = (*Library)(nil)
)
