package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/auditgraph/pkg/callgraph"
	"github.com/matzehuels/auditgraph/pkg/graph"
	"github.com/matzehuels/auditgraph/pkg/pipeline"
)

// layoutFlags are the view and layout flags shared by layout, analyze,
// render and contracts. Unset flags fall back to the config file.
type layoutFlags struct {
	codeView        bool
	direction       string
	hide            []string
	show            []string
	maxClusterNodes int
	solveTimeout    time.Duration
	parallelism     int
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.codeView, "code-view", false, "show function source and one edge per call site")
	cmd.Flags().StringVarP(&f.direction, "direction", "d", "", "flow direction: LR (default), TB")
	cmd.Flags().StringSliceVar(&f.hide, "hide", nil, "contracts to hide (comma-separated)")
	cmd.Flags().StringSliceVar(&f.show, "show", nil, "contracts to show, including interfaces (comma-separated)")
	cmd.Flags().IntVar(&f.maxClusterNodes, "max-cluster-nodes", 0, "clusters larger than this get a fallback grid")
	cmd.Flags().DurationVar(&f.solveTimeout, "solve-timeout", 0, "time limit for laying out one cluster")
	cmd.Flags().IntVar(&f.parallelism, "parallelism", 0, "clusters laid out concurrently")
}

// options merges the flags over the configured layout defaults.
func (f *layoutFlags) options(cmd *cobra.Command, c *CLI) pipeline.Options {
	lo := c.Config.LayoutOptions()
	opts := pipeline.Options{
		CodeView:        lo.CodeView,
		Direction:       string(lo.Direction),
		Hide:            append([]string(nil), c.Config.Layout.Hidden...),
		MaxClusterNodes: lo.MaxClusterNodes,
		SolveTimeout:    lo.SolveTimeout,
		Parallelism:     lo.Parallelism,
	}
	changed := cmd.Flags().Changed
	if changed("code-view") {
		opts.CodeView = f.codeView
	}
	if changed("direction") {
		opts.Direction = strings.ToUpper(f.direction)
	}
	if changed("max-cluster-nodes") {
		opts.MaxClusterNodes = f.maxClusterNodes
	}
	if changed("solve-timeout") {
		opts.SolveTimeout = f.solveTimeout
	}
	if changed("parallelism") {
		opts.Parallelism = f.parallelism
	}
	opts.Hide = append(opts.Hide, f.hide...)
	opts.Show = f.show
	return opts
}

// layoutCommand creates the layout command for laying out a saved model.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [model.json]",
		Short: "Lay out a call-graph model as a diagram",
		Long: `Lay out a call-graph model as a diagram.

The layout command takes a model.json file (produced by 'parse'), applies the
contract filter and display mode, and writes the positioned diagram as JSON.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], flags.options(cmd, c), output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.diagram.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

// runLayout loads the model, lays it out, and writes the diagram.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	g, err := readModel(input)
	if err != nil {
		return err
	}
	return c.runLayoutGraph(ctx, g, input, opts, output, noCache)
}

// runLayoutGraph lays out g, loaded from input, and writes the diagram.
func (c *CLI) runLayoutGraph(ctx context.Context, g *callgraph.Graph, input string, opts pipeline.Options, output string, noCache bool) error {
	hash, err := pipeline.ModelHash(g)
	if err != nil {
		return err
	}

	runner := c.newRunner(ctx, noCache)
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	diagram, cacheHit, err := runner.LayoutWithCacheInfo(withSpinner(ctx, spinner), g, hash, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	path := outputPath(output, input, ".diagram.json")
	if err := graph.WriteDiagramFile(diagram, path); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}

	printSuccess("Layout complete")
	printFile(path)
	printStats(g.MemberCount(), g.EdgeCount(), len(diagram.Contracts), cacheHit)
	printWarnings(diagram.Warnings, maxWarnings)
	printNewline()
	printNextStep("Render", appName+" render "+input)

	return nil
}

func readModel(path string) (*callgraph.Graph, error) {
	g, err := graph.ReadModelFile(path)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	return g, nil
}
