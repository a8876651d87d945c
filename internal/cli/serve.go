package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/auditgraph/pkg/server"
	"github.com/matzehuels/auditgraph/pkg/surya"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Endpoints:
  GET  /healthz        liveness probe
  POST /api/parse      multipart .sol or .zip uploads -> model
  POST /api/layout     model and options -> diagram
  POST /api/analyze    multipart uploads -> diagram

The server stops gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			runner := c.newRunner(ctx, noCache)
			defer runner.Close()

			if tool, ok := runner.Tool.(surya.Tool); ok && !tool.Available() {
				bin, _ := tool.Command()
				c.Logger.Warn("structural graph tool not found, parse requests will fail", "bin", bin)
			}

			srv := server.New(server.Config{
				Addr:            cfg.Addr,
				Runner:          runner,
				Logger:          c.Logger,
				MaxUploadBytes:  cfg.MaxUploadBytes,
				ShutdownTimeout: cfg.ShutdownTimeout.Duration,
			})
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
