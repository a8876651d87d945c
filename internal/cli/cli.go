// Package cli implements the auditgraph command-line interface.
//
// # Commands
//
//   - parse: build the call-graph model of Solidity sources
//   - layout: lay a model out as a diagram
//   - analyze: parse and lay out in one step, optionally on every change
//   - render: draw a model as a static SVG, PNG, PDF or DOT picture
//   - contracts: list contracts or pick the visible ones interactively
//   - serve: run the HTTP API
//   - cache: manage the local result cache
//
// All commands read the configuration file (see package config) and accept
// --verbose (-v) for debug logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/auditgraph/pkg/buildinfo"
	"github.com/matzehuels/auditgraph/pkg/cache"
	"github.com/matzehuels/auditgraph/pkg/config"
	"github.com/matzehuels/auditgraph/pkg/extract"
	"github.com/matzehuels/auditgraph/pkg/intake"
	"github.com/matzehuels/auditgraph/pkg/observability"
	"github.com/matzehuels/auditgraph/pkg/pipeline"
	"github.com/matzehuels/auditgraph/pkg/surya"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "auditgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands. Config is loaded before any
// command runs.
type CLI struct {
	Logger     *log.Logger
	Config     config.Config
	configPath string
}

// New creates a new CLI instance with a default logger and the built-in
// configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Auditgraph draws call graphs of Solidity contracts",
		Long: `Auditgraph builds a function-level call graph of Solidity sources and lays
it out as a clustered diagram for security review.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: user config dir)")

	root.AddCommand(c.parseCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.contractsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration file and installs the logging hooks.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	hooks := &logHooks{logger: c.Logger}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The caller closes it.
func (c *CLI) newRunner(ctx context.Context, noCache bool) *pipeline.Runner {
	runner := pipeline.NewRunner(c.newCache(ctx, noCache), cache.NewScopedKeyer(nil, buildinfo.CacheScope()), c.Logger)
	runner.Tool = surya.Tool{Bin: c.Config.Tool.Bin, Args: c.Config.Tool.Args, Logger: c.Logger}
	runner.TTL = c.Config.Cache.TTL.Duration
	return runner
}

// newCache opens the configured backend. A backend that cannot be opened
// degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	cfg := c.Config.Cache
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache()
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache()
		}
		return rc
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache directory unavailable, caching disabled", "err", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// cacheDir returns the configured cache directory or the per-user default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Input Helpers
// =============================================================================

// collectUnits reads the Solidity sources named by args. Directories are
// searched recursively and honor .gitignore files.
func collectUnits(args []string) ([]extract.Unit, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			paths = append(paths, arg) // reported by ReadUnits
			continue
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := intake.Discover(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	return intake.ReadUnits(paths)
}

// outputPath returns output, or input with its extension replaced by suffix.
func outputPath(output, input, suffix string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}
