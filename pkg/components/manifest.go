package components

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/flowviz/pkg/errors"
	"github.com/matzehuels/flowviz/pkg/fbp"
)

// Well-known manifest locations inside a project directory.
const (
	ManifestJSON = "fbp.json"
	ManifestTOML = "components.toml"
	GraphsDir    = "graphs"
)

// fbpManifest is the NoFlo component manifest layout.
type fbpManifest struct {
	Version int `json:"version"`
	Modules []struct {
		Name       string `json:"name"`
		Components []struct {
			Name       string    `json:"name"`
			Subgraph   bool      `json:"subgraph"`
			Elementary *bool     `json:"elementary"`
			InPorts    []portDef `json:"inPorts"`
			OutPorts   []portDef `json:"outPorts"`
		} `json:"components"`
	} `json:"modules"`
}

type portDef struct {
	Name        string `json:"name"`
	Addressable bool   `json:"addressable"`
}

type tomlManifest struct {
	Components map[string]struct {
		Subgraph bool            `toml:"subgraph"`
		InPorts  map[string]Port `toml:"inports"`
		OutPorts map[string]Port `toml:"outports"`
	} `toml:"components"`
}

// ParseManifestJSON decodes an fbp.json manifest. Component names are
// prefixed with their module name ("noflo-core" contributes "core/").
func ParseManifestJSON(data []byte) ([]*Component, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var m fbpManifest
	if err := dec.Decode(&m); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "decode %s", ManifestJSON)
	}

	var out []*Component
	for _, mod := range m.Modules {
		prefix := strings.TrimPrefix(mod.Name, "noflo-")
		for _, c := range mod.Components {
			name := c.Name
			if prefix != "" {
				name = prefix + "/" + c.Name
			}
			comp := &Component{
				Name:     name,
				Subgraph: c.Subgraph || (c.Elementary != nil && !*c.Elementary),
				InPorts:  portMap(c.InPorts),
				OutPorts: portMap(c.OutPorts),
			}
			out = append(out, comp)
		}
	}
	return out, nil
}

func portMap(defs []portDef) map[string]Port {
	ports := make(map[string]Port, len(defs))
	for _, d := range defs {
		ports[d.Name] = Port{Addressable: d.Addressable}
	}
	return ports
}

// ParseManifestTOML decodes a components.toml manifest.
func ParseManifestTOML(data []byte) ([]*Component, error) {
	var m tomlManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "decode %s", ManifestTOML)
	}

	out := make([]*Component, 0, len(m.Components))
	for name, c := range m.Components {
		out = append(out, &Component{
			Name:     name,
			Subgraph: c.Subgraph,
			InPorts:  c.InPorts,
			OutPorts: c.OutPorts,
		})
	}
	slices.SortFunc(out, func(a, b *Component) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// Discover creates a library for the project rooted at dir. The library
// reads dir/fbp.json, dir/components.toml and the graphs in dir/graphs when
// they exist, then every explicitly named manifest, which must exist.
// Later definitions replace earlier ones with the same name.
func Discover(dir string, manifests ...string) *Library {
	l := NewLibrary()
	if dir != "" {
		l.sources = append(l.sources,
			manifestSource(filepath.Join(dir, ManifestJSON), false),
			manifestSource(filepath.Join(dir, ManifestTOML), false),
			graphsSource(dir),
		)
	}
	for _, m := range manifests {
		l.sources = append(l.sources, manifestSource(m, true))
	}
	return l
}

// ProjectDir returns the project directory of a graph file: the parent of
// the directory holding it, matching the graphs/ layout of a component
// library.
func ProjectDir(graphPath string) string {
	abs, err := filepath.Abs(graphPath)
	if err != nil {
		abs = graphPath
	}
	return filepath.Dir(filepath.Dir(abs))
}

func manifestSource(path string, required bool) source {
	return func(_ context.Context, l *Library) error {
		data, err := os.ReadFile(path)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				if !required {
					return nil
				}
				return errs.Wrap(errs.ErrCodeFileNotFound, err, "manifest not found")
			}
			return errs.Wrap(errs.ErrCodeInvalidManifest, err, "read manifest")
		}

		var cs []*Component
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			cs, err = ParseManifestTOML(data)
		case ".json":
			cs, err = ParseManifestJSON(data)
		default:
			err = errs.New(errs.ErrCodeInvalidManifest, "unsupported manifest %s", filepath.Base(path))
		}
		if err != nil {
			return err
		}
		for _, c := range cs {
			if err := l.Register(c); err != nil {
				return err
			}
		}
		return nil
	}
}

// graphsSource registers every graph in dir/graphs as a subgraph component
// named "<project>/<graph>". Its ports are the graph's exported ports. A
// graph that fails to load is still registered, without ports.
func graphsSource(dir string) source {
	return func(ctx context.Context, l *Library) error {
		entries, err := os.ReadDir(filepath.Join(dir, GraphsDir))
		if err != nil {
			return nil
		}
		project := strings.TrimPrefix(filepath.Base(dir), "noflo-")
		for _, e := range entries {
			if e.IsDir() || errs.ValidateGraphPath(e.Name()) != nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
			c := &Component{Name: project + "/" + name, Subgraph: true}
			if g, err := fbp.Load(filepath.Join(dir, GraphsDir, e.Name())); err == nil {
				c.InPorts = exportedPorts(g.InportNames())
				c.OutPorts = exportedPorts(g.OutportNames())
			}
			if err := l.Register(c); err != nil {
				return err
			}
		}
		return nil
	}
}

func exportedPorts(names []string) map[string]Port {
	ports := make(map[string]Port, len(names))
	for _, n := range names {
		ports[n] = Port{}
	}
	return ports
}
