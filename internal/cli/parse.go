package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/auditgraph/pkg/graph"
	"github.com/matzehuels/auditgraph/pkg/pipeline"
)

// maxWarnings caps the warnings printed after a command.
const maxWarnings = 10

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	output     string // output file path (stdout if empty)
	dotFile    string // pre-generated structural graph
	maxMembers int
	refresh    bool
	noCache    bool
}

// parseCommand creates the parse command.
func (c *CLI) parseCommand() *cobra.Command {
	var opts parseOpts

	cmd := &cobra.Command{
		Use:   "parse <file-or-dir>...",
		Short: "Build the call-graph model of Solidity sources",
		Long: `Build the call-graph model of Solidity sources.

Directories are searched recursively for .sol files; .gitignore files and
node_modules are honored. The structural graph comes from surya unless --dot
names a pre-generated DOT file.

Examples:
  auditgraph parse contracts/                    # Whole project
  auditgraph parse Token.sol Vault.sol -o model.json
  auditgraph parse src/ --dot graph.dot          # Skip surya`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.dotFile, "dot", "", "structural graph in DOT format (skips surya)")
	cmd.Flags().IntVar(&opts.maxMembers, "max-members", pipeline.DefaultMaxMembers, "reject inputs with more functions than this")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached results")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runParse builds the model and writes it to the output.
func (c *CLI) runParse(ctx context.Context, args []string, opts parseOpts) error {
	units, err := collectUnits(args)
	if err != nil {
		return err
	}
	popts := pipeline.Options{MaxMembers: opts.maxMembers, Refresh: opts.refresh}
	if opts.dotFile != "" {
		data, err := os.ReadFile(opts.dotFile)
		if err != nil {
			return fmt.Errorf("read dot %s: %w", opts.dotFile, err)
		}
		popts.DOT = string(data)
	}

	runner := c.newRunner(ctx, opts.noCache)
	defer runner.Close()

	prog := newProgress(c.Logger)
	parsed, err := runner.Parse(ctx, units, popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Parsed %d files", len(units)))

	if err := writeModel(parsed.Model, opts.output); err != nil {
		return err
	}
	if opts.output == "" {
		for _, w := range parsed.Warnings {
			c.Logger.Warn(w.String())
		}
		return nil
	}

	printSuccess("Model complete")
	printFile(opts.output)
	printStats(parsed.Graph.MemberCount(), parsed.Graph.EdgeCount(), len(parsed.Model.Contracts), parsed.CacheHit)
	printWarnings(parsed.Warnings, maxWarnings)
	printNewline()
	printNextStep("Lay out", appName+" layout "+opts.output)
	return nil
}

// writeModel writes m as JSON to path, or to stdout if path is empty.
func writeModel(m graph.Model, path string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if err := graph.WriteModel(m, out); err != nil {
		out.Close()
		return fmt.Errorf("write model: %w", err)
	}
	return out.Close()
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns os.Stdout for an empty path and creates the file
// otherwise.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
