package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowviz/internal/server"
	"github.com/matzehuels/flowviz/pkg/cache"
	"github.com/matzehuels/flowviz/pkg/components"
	"github.com/matzehuels/flowviz/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr       string
	projectDir string
	manifests  []string
	keyPrefix  string
	cache      cacheOpts
}

// serveCommand creates the serve command, which runs the HTTP render API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API over HTTP",
		Long: `Serve the render API over HTTP.

  POST /render?format=svg   render the graph in the request body
  GET  /healthz             liveness probe
  GET  /version             build information

The request body is a JSON or YAML graph (chosen by Content-Type) or FBP
source; ?syntax=json|yaml|fbp overrides the detection. Components resolve
against the project directory given with --project.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", envDefault("ADDR", ":8080"), "listen address")
	cmd.Flags().StringVar(&opts.projectDir, "project", envDefault("PROJECT", "."), "component project directory")
	cmd.Flags().StringSliceVar(&opts.manifests, "components", nil, "additional component manifest(s) (fbp.json or .toml)")
	cmd.Flags().StringVar(&opts.keyPrefix, "cache-prefix", envDefault("CACHE_PREFIX", appName+":"), "prefix for cache keys in a shared cache")
	cmd.Flags().BoolVar(&opts.cache.disabled, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.cache.redisURL, "redis", envDefault("REDIS_URL", ""), "cache in Redis at this redis:// URL instead of on disk")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	lib := components.Discover(opts.projectDir, opts.manifests...)
	if err := lib.List(ctx); err != nil {
		return fmt.Errorf("load components: %w", err)
	}

	store, err := newCache(ctx, opts.cache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	runner := pipeline.NewRunner(store, cache.NewScopedKeyer(nil, opts.keyPrefix), c.Logger)
	defer runner.Close()

	printSuccess("Serving on %s", StyleLink.Render("http://"+displayAddr(opts.addr)))
	printDetail("%d components from %s", len(lib.Names()), opts.projectDir)

	return server.New(runner, lib, c.Logger).ListenAndServe(ctx, opts.addr)
}

// displayAddr turns a listen address into a host:port a browser can open.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
