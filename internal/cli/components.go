package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowviz/pkg/components"
	errs "github.com/matzehuels/flowviz/pkg/errors"
	"github.com/matzehuels/flowviz/pkg/pipeline"
	"github.com/matzehuels/flowviz/pkg/render/flowgraph"
)

// componentsCommand creates the components command, which shows how each
// process of a graph resolves against the component library.
func (c *CLI) componentsCommand() *cobra.Command {
	var (
		projectDir string
		manifests  []string
	)

	cmd := &cobra.Command{
		Use:               "components [graph]",
		Short:             "List the components a flow graph uses and how they resolve",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeGraphFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runComponents(cmd.Context(), args[0], projectDir, manifests)
		},
	}

	cmd.Flags().StringVar(&projectDir, "project", "", "component project directory (default: parent of the graph's directory)")
	cmd.Flags().StringSliceVar(&manifests, "components", nil, "additional component manifest(s) (fbp.json or .toml)")

	return cmd
}

func (c *CLI) runComponents(ctx context.Context, input, projectDir string, manifests []string) error {
	opts := pipeline.Options{GraphPath: input, ProjectDir: projectDir, Manifests: manifests, Logger: c.Logger}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	g, _, err := runner.Load(opts)
	if err != nil {
		return err
	}
	lib, err := runner.Library(ctx, opts)
	if err != nil {
		return err
	}

	printSuccess("%s: %d processes, %d known components", StyleHighlight.Render(g.Name), len(g.Nodes), len(lib.Names()))
	printDetail("Project: %s", opts.ProjectDir)

	for _, n := range g.Nodes {
		comp, err := lib.Resolve(ctx, n.Component)
		if err != nil {
			printWarning("%s: %s", n.ID, errs.UserMessage(err))
			continue
		}
		printKeyValue(n.ID, describeComponent(n.Component, comp))
	}
	return nil
}

// describeComponent summarizes a resolved component on one line.
func describeComponent(name string, comp *components.Component) string {
	var parts []string
	if comp.Name != name {
		parts = append(parts, fmt.Sprintf("%s %s %s", name, iconArrow, comp.Name))
	} else {
		parts = append(parts, name)
	}

	switch kind := flowgraph.KindOf(name); {
	case kind.IsGate():
		parts = append(parts, "gate")
	case comp.Subgraph:
		parts = append(parts, "subgraph")
	}

	if in := addressable(comp.InPorts); len(in) > 0 {
		parts = append(parts, "addressable in: "+strings.Join(in, ","))
	}
	if out := addressable(comp.OutPorts); len(out) > 0 {
		parts = append(parts, "addressable out: "+strings.Join(out, ","))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

func addressable(ports map[string]components.Port) []string {
	var names []string
	for _, name := range slices.Sorted(maps.Keys(ports)) {
		if ports[name].Addressable {
			names = append(names, name)
		}
	}
	return names
}
