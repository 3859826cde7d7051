package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/flowviz/pkg/errors"
	"github.com/matzehuels/flowviz/pkg/pipeline"
	"github.com/matzehuels/flowviz/pkg/render"
	"github.com/matzehuels/flowviz/pkg/render/palette"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output file (single format) or base path (multiple)
	formats    string   // comma-separated output formats
	projectDir string   // component project directory override
	manifests  []string // extra component manifests
	noLayers   bool     // omit route layers
	palette    []string // route colors replacing the default pool
	refresh    bool     // ignore cached results
	cache      cacheOpts
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [graph]",
		Short: "Render a flow graph to DOT, SVG, PNG, JPG or PDF",
		Long: `Render a flow graph to DOT, SVG, PNG, JPG or PDF.

The graph may be a NoFlo JSON or YAML graph, or an .fbp file. Component
metadata (subgraphs, addressable ports) is read from fbp.json and
components.toml in the graph's project directory (the parent of the
directory holding the graph) and from any --components manifests.

Output files default to <graph name>.<format> in the current directory.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeGraphFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", envDefault("FORMAT", string(pipeline.DefaultFormat)), "output format(s): dot, svg, png, jpg, pdf (comma-separated)")
	cmd.Flags().StringVar(&opts.projectDir, "project", "", "component project directory (default: parent of the graph's directory)")
	cmd.Flags().StringSliceVar(&opts.manifests, "components", nil, "additional component manifest(s) (fbp.json or .toml)")
	cmd.Flags().BoolVar(&opts.noLayers, "no-layers", false, "do not group routes into Graphviz layers")
	cmd.Flags().StringSliceVar(&opts.palette, "palette", nil, "route colors in assignment order (e.g. #a40000,#204a87)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&opts.cache.disabled, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.cache.redisURL, "redis", envDefault("REDIS_URL", ""), "cache in Redis at this redis:// URL instead of on disk")

	return cmd
}

// runRender renders input to every requested format and writes the files.
func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	if err := errs.ValidateGraphPath(input); err != nil {
		return err
	}
	formats, err := render.ParseFormats(opts.formats)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, c.Status, fmt.Sprintf("Rendering %s...", filepath.Base(input)))
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		GraphPath:  input,
		ProjectDir: opts.projectDir,
		Manifests:  opts.manifests,
		Formats:    formats,
		NoLayers:   opts.noLayers,
		Palette:    paletteColors(opts.palette),
		Refresh:    opts.refresh,
		Logger:     c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Rendered %s to %s", result.Graph.Name, opts.formats))

	if result.Render != nil {
		for _, ex := range result.Render.Excluded {
			printWarning("%s (%s) left out: %s", ex.Node, ex.Component, errs.UserMessage(ex.Err))
		}
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   formats,
		name:      result.Graph.Name,
		output:    opts.output,
		nodes:     result.Stats.NodeCount,
		edges:     result.Stats.EdgeCount,
		cacheHit:  result.CacheInfo.DrawingHit,
	})
}

// paletteColors converts the --palette flag, dropping blank entries.
func paletteColors(values []string) []palette.Color {
	var colors []palette.Color
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			colors = append(colors, palette.Color(v))
		}
	}
	return colors
}

// artifactWriteParams describes the files produced by one render.
type artifactWriteParams struct {
	artifacts map[render.Format][]byte
	formats   []render.Format
	name      string
	output    string
	nodes     int
	edges     int
	cacheHit  bool
}

// writeArtifacts writes each artifact to its output path and reports them.
func writeArtifacts(p artifactWriteParams) error {
	printSuccess("Rendered %s", StyleHighlight.Render(p.name))
	printStats(p.nodes, p.edges, p.cacheHit)

	for _, f := range p.formats {
		path := outputPath(p.output, p.name, f, len(p.formats))
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
		}
		if err := os.WriteFile(path, p.artifacts[f], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// outputPath picks the file for format f. A single format writes to output
// as given; several formats treat output as a base path. Without output the
// file is <name>.<format> in the working directory.
func outputPath(output, name string, f render.Format, count int) string {
	if output == "" {
		return name + f.Ext()
	}
	if count == 1 {
		return output
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormat(strings.TrimPrefix(ext, ".")); err == nil {
		output = strings.TrimSuffix(output, ext)
	}
	return output + f.Ext()
}
