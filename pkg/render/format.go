package render

import (
	"slices"
	"strings"

	errs "github.com/matzehuels/flowviz/pkg/errors"
)

// Format is an output artifact format.
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatJPG Format = "jpg"
	FormatPDF Format = "pdf"
)

// Formats lists every supported format.
var Formats = []Format{FormatDOT, FormatSVG, FormatPNG, FormatJPG, FormatPDF}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJPG:
		return "image/jpeg"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/vnd.graphviz"
	}
}

// ParseFormat validates a single format name. "jpeg" is accepted as jpg.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "jpeg" {
		f = FormatJPG
	}
	if !slices.Contains(Formats, f) {
		return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported output format %q (use dot, svg, png, jpg or pdf)", s)
	}
	return f, nil
}

// ParseFormats parses a comma-separated format list, dropping duplicates.
// An empty list yields svg.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		out = []Format{FormatSVG}
	}
	return out, nil
}
