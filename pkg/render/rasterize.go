package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/goccy/go-graphviz"

	errs "github.com/matzehuels/flowviz/pkg/errors"
	"github.com/matzehuels/flowviz/pkg/observability"
)

// Rasterize lays out DOT source with Graphviz and encodes it as f.
// FormatDOT returns src unchanged.
func Rasterize(ctx context.Context, src []byte, f Format) (out []byte, err error) {
	start := time.Now()
	defer func() {
		observability.Render().OnRasterize(ctx, string(f), len(out), time.Since(start), err)
	}()

	switch f {
	case FormatDOT:
		return src, nil
	case FormatSVG:
		svg, err := layout(ctx, src, graphviz.SVG)
		if err != nil {
			return nil, err
		}
		return normalizeViewBox(svg), nil
	case FormatPNG:
		return layout(ctx, src, graphviz.PNG)
	case FormatJPG:
		return layout(ctx, src, graphviz.JPG)
	case FormatPDF:
		svg, err := layout(ctx, src, graphviz.SVG)
		if err != nil {
			return nil, err
		}
		pdf, err := ToPDF(ctx, svg)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeRenderFailed, err, "convert to pdf")
		}
		return pdf, nil
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported output format %q", f)
	}
}

func layout(ctx context.Context, src []byte, f graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(src)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeRenderFailed, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, f, &buf); err != nil {
		return nil, errs.Wrap(errs.ErrCodeRenderFailed, err, "render %s", f)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized root element with a
// zero-origin viewBox and pixel dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
