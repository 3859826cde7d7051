package fbp

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/flowviz/pkg/errors"
)

// Format identifies a graph file encoding.
type Format string

// Supported graph formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatFBP  Format = "fbp"
)

// FormatFromPath derives the graph format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".fbp":
		return FormatFBP, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "%s is not a flow graph file", path)
}

// Load reads the graph file at path. The graph is named after the file's
// base name without extension.
//
// A missing file yields an error coded FILE_NOT_FOUND; anything else that
// prevents decoding yields INVALID_GRAPH.
func Load(path string) (*Graph, error) {
	data, format, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(NameFromPath(path), data, format)
}

// ReadFile returns the raw contents of the graph file at path along with
// its format, without decoding it.
func ReadFile(path string) ([]byte, Format, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, "", errs.Wrap(errs.ErrCodeFileNotFound, err, "graph not found")
		}
		return nil, "", errs.Wrap(errs.ErrCodeInvalidGraph, err, "open graph")
	}
	return data, format, nil
}

// NameFromPath returns the graph name for a file: its base name without
// extension.
func NameFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// Decode decodes data in the given format and names the graph.
func Decode(name string, data []byte, format Format) (*Graph, error) {
	g, err := Read(bytes.NewReader(data), format)
	if err != nil {
		return nil, err
	}
	g.Name = name
	return g, nil
}

// Read decodes a graph in the given format from r. Read does not close r.
func Read(r io.Reader, format Format) (*Graph, error) {
	var (
		g   *Graph
		err error
	)
	switch format {
	case FormatJSON:
		g, err = readDocument(r, func(r io.Reader, d *document) error {
			return json.NewDecoder(r).Decode(d)
		})
	case FormatYAML:
		g, err = readDocument(r, func(r io.Reader, d *document) error {
			return yaml.NewDecoder(r).Decode(d)
		})
	case FormatFBP:
		var src []byte
		if src, err = io.ReadAll(r); err == nil {
			g, err = Parse(string(src))
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported graph format %q", format)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidGraph, err, "decode %s graph", format)
	}
	return g, nil
}

func readDocument(r io.Reader, decode func(io.Reader, *document) error) (*Graph, error) {
	var d document
	if err := decode(r, &d); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty document")
		}
		return nil, err
	}
	return d.graph()
}
