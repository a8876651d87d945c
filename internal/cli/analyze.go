package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/auditgraph/pkg/errors"
	"github.com/matzehuels/auditgraph/pkg/graph"
	"github.com/matzehuels/auditgraph/pkg/pipeline"
)

// watchDebounce coalesces bursts of file events, e.g. an editor writing a
// file in several steps.
const watchDebounce = 200 * time.Millisecond

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	parseOpts
	model string // also write the model here
	watch bool
}

// analyzeCommand creates the analyze command: parse and layout in one step.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		opts  analyzeOpts
		flags layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "analyze <file-or-dir>...",
		Short: "Parse Solidity sources and lay out the call graph",
		Long: `Parse Solidity sources and lay out the call graph in one step.

The diagram is written as JSON. With --watch the sources are watched and the
diagram is rebuilt whenever a .sol file changes; --output is required then.

Examples:
  auditgraph analyze contracts/ -o diagram.json
  auditgraph analyze contracts/ -o diagram.json --code-view --direction TB
  auditgraph analyze contracts/ -o diagram.json --watch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts := flags.options(cmd, c)
			popts.MaxMembers = opts.maxMembers
			popts.Refresh = opts.refresh
			if opts.dotFile != "" {
				data, err := os.ReadFile(opts.dotFile)
				if err != nil {
					return fmt.Errorf("read dot %s: %w", opts.dotFile, err)
				}
				popts.DOT = string(data)
			}
			if err := popts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			if opts.watch {
				if opts.output == "" {
					return errors.New(errors.ErrCodeInvalidOptions, "--watch requires --output")
				}
				return c.watchAnalyze(cmd.Context(), args, popts, opts)
			}
			return c.runAnalyze(cmd.Context(), args, popts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "diagram output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.model, "model", "", "also write the model to this file")
	cmd.Flags().StringVar(&opts.dotFile, "dot", "", "structural graph in DOT format (skips surya)")
	cmd.Flags().IntVar(&opts.maxMembers, "max-members", pipeline.DefaultMaxMembers, "reject inputs with more functions than this")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached results")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "rebuild when sources change")
	flags.register(cmd)

	return cmd
}

// runAnalyze runs the pipeline once and writes the outputs.
func (c *CLI) runAnalyze(ctx context.Context, args []string, popts pipeline.Options, opts analyzeOpts) error {
	runner := c.newRunner(ctx, opts.noCache)
	defer runner.Close()

	res, err := c.analyze(ctx, runner, args, popts, opts, true)
	if err != nil {
		return err
	}
	if opts.output == "" {
		return nil
	}

	printSuccess("Analysis complete")
	printFile(opts.output)
	if opts.model != "" {
		printFile(opts.model)
	}
	printStats(res.Stats.Functions, res.Stats.Edges, len(res.Diagram.Contracts), res.CacheInfo.ParseHit && res.CacheInfo.LayoutHit)
	if res.Stats.Degraded > 0 {
		printDetail("%d of %d clusters used the fallback grid", res.Stats.Degraded, res.Stats.Clusters)
	}
	printWarnings(res.Diagram.Warnings, maxWarnings)
	return nil
}

// analyze runs the pipeline and writes the diagram and, optionally, the
// model.
func (c *CLI) analyze(ctx context.Context, runner *pipeline.Runner, args []string, popts pipeline.Options, opts analyzeOpts, interactive bool) (*pipeline.Result, error) {
	units, err := collectUnits(args)
	if err != nil {
		return nil, err
	}

	var spinner *Spinner
	runCtx := ctx
	if interactive && opts.output != "" {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Analyzing %d files...", len(units)))
		spinner.Start()
		runCtx = withSpinner(ctx, spinner)
	}
	res, err := runner.Execute(runCtx, units, popts)
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Analysis failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return nil, err
	}

	if opts.model != "" {
		if err := graph.WriteModelFile(res.Model, opts.model); err != nil {
			return nil, fmt.Errorf("write model %s: %w", opts.model, err)
		}
	}
	if err := writeDiagram(res.Diagram, opts.output); err != nil {
		return nil, err
	}
	return res, nil
}

// writeDiagram writes d as JSON to path, or to stdout if path is empty.
func writeDiagram(d graph.Diagram, path string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if err := graph.WriteDiagram(d, out); err != nil {
		out.Close()
		return fmt.Errorf("write diagram: %w", err)
	}
	return out.Close()
}

// =============================================================================
// Watch Mode
// =============================================================================

// watchAnalyze builds the diagram, then rebuilds it on every source change
// until ctx is cancelled.
func (c *CLI) watchAnalyze(ctx context.Context, args []string, popts pipeline.Options, opts analyzeOpts) error {
	ctx = withLogger(ctx, c.Logger)
	runner := c.newRunner(ctx, opts.noCache)
	defer runner.Close()

	rebuild := func() {
		prog := newProgress(c.Logger)
		res, err := c.analyze(ctx, runner, args, popts, opts, false)
		if err != nil {
			c.Logger.Error("rebuild failed", "err", errors.UserMessage(err))
			return
		}
		prog.done(fmt.Sprintf("Wrote %s: %d functions, %d calls", opts.output, res.Stats.Functions, res.Stats.Edges))
		for _, w := range res.Diagram.Warnings {
			c.Logger.Warn(w.String())
		}
	}

	rebuild()
	printInfo("Watching for changes (ctrl+c to stop)")
	return watchSources(ctx, args, rebuild)
}

// watchSources calls onChange after .sol files under roots are written,
// created, renamed or removed. Events within watchDebounce of each other
// trigger one call. It returns nil when ctx is cancelled.
func watchSources(ctx context.Context, roots []string, onChange func()) error {
	logger := loggerFromContext(ctx)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, root := range roots {
		if err := watchDirRecursive(watcher, root); err != nil {
			return err
		}
	}

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !skipWatchDir(info.Name()) {
					if err := watchDirRecursive(watcher, event.Name); err != nil {
						logger.Warn("cannot watch new directory", "dir", event.Name, "err", err)
					}
					continue
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".sol") {
				continue
			}
			logger.Debug("source changed", "file", event.Name, "op", event.Op.String())
			debounce = time.After(watchDebounce)

		case <-debounce:
			debounce = nil
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "err", err)
		}
	}
}

// watchDirRecursive adds root and its subdirectories to the watcher. A
// file root watches its directory.
func watchDirRecursive(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "watch %s", root)
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipWatchDir(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func skipWatchDir(name string) bool {
	return name == "node_modules" || name == ".git"
}
