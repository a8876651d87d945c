package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Rebuilt diagram (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks reports pipeline and cache events at debug level and moves the
// spinner attached to the context along.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnParseStart(ctx context.Context, units int) {
	h.logger.Debug("parse started", "units", units)
	reportProgress(ctx, "Parsing %d source files...", units)
}

func (h *logHooks) OnParseComplete(_ context.Context, nodes int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("parse failed", "duration", d, "err", err)
		return
	}
	h.logger.Debug("parse finished", "functions", nodes, "duration", d)
}

func (h *logHooks) OnLayoutStart(ctx context.Context, nodes int) {
	h.logger.Debug("layout started", "nodes", nodes)
	reportProgress(ctx, "Laying out %d functions...", nodes)
}

func (h *logHooks) OnClusterSolve(ctx context.Context, n, total, nodes int) {
	h.logger.Debug("solving cluster", "cluster", n, "of", total, "nodes", nodes)
	reportProgress(ctx, "Solving cluster %d/%d (%d functions)...", n, total, nodes)
}

func (h *logHooks) OnLayoutComplete(_ context.Context, degraded int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "duration", d, "err", err)
		return
	}
	h.logger.Debug("layout finished", "degraded", degraded, "duration", d)
}

func (h *logHooks) OnToolRun(ctx context.Context, tool string, d time.Duration, err error) {
	h.logger.Debug("tool run", "tool", tool, "duration", d, "err", err)
	if err == nil {
		reportProgress(ctx, "Merging %s call graph...", tool)
	}
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "stage", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "stage", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "stage", keyType, "bytes", size)
}

// =============================================================================
// Context Logger
// =============================================================================

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() when
// none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
