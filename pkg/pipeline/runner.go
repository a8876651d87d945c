package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/auditgraph/pkg/cache"
	"github.com/matzehuels/auditgraph/pkg/callgraph"
	"github.com/matzehuels/auditgraph/pkg/errors"
	"github.com/matzehuels/auditgraph/pkg/extract"
	"github.com/matzehuels/auditgraph/pkg/graph"
	"github.com/matzehuels/auditgraph/pkg/layout"
	"github.com/matzehuels/auditgraph/pkg/observability"
)

// GraphTool produces the structural call graph of source files as DOT.
// [surya.Tool] implements it.
type GraphTool interface {
	Command() (bin string, args []string)
	Graph(ctx context.Context, paths []string) (string, error)
}

// Runner encapsulates pipeline execution with caching. It holds no
// per-run state, so one Runner may serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Tool   GraphTool     // nil requires Options.DOT
	Solver layout.Solver // nil selects Graphviz
	TTL    time.Duration // entry lifetime, stage defaults when zero
}

// NewRunner creates a runner with the given cache and keyer.
// A nil keyer selects DefaultKeyer, a nil cache disables caching and a nil
// logger discards output.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Close releases the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// Execute runs parse and layout.
func (r *Runner) Execute(ctx context.Context, units []extract.Unit, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{}

	parseStart := time.Now()
	parsed, err := r.Parse(ctx, units, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Model = parsed.Model
	result.ModelHash = parsed.Hash
	result.CacheInfo.ParseHit = parsed.CacheHit
	result.Stats.Units = len(units)
	result.Stats.Functions = parsed.Graph.MemberCount()
	result.Stats.Edges = parsed.Graph.EdgeCount()
	result.Stats.ParseTime = time.Since(parseStart)

	r.Logger.Info("parsed sources",
		"units", len(units),
		"functions", result.Stats.Functions,
		"edges", result.Stats.Edges,
		"warnings", len(parsed.Warnings),
		"duration", result.Stats.ParseTime)

	layoutStart := time.Now()
	d, hit, err := r.LayoutWithCacheInfo(ctx, parsed.Graph, parsed.Hash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	d.Warnings = append(append([]errors.Warning{}, parsed.Warnings...), d.Warnings...)
	result.Diagram = d
	result.CacheInfo.LayoutHit = hit
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Clusters, result.Stats.Degraded = countClusters(d)

	r.Logger.Info("computed layout",
		"clusters", result.Stats.Clusters,
		"degraded", result.Stats.Degraded,
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// Parse runs the parse stage. Results are cached by source content, tool
// command and supplied DOT.
func (r *Runner) Parse(ctx context.Context, units []extract.Unit, opts Options) (*ParseResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no source files")
	}

	key := r.modelKey(units, opts)
	if !opts.Refresh {
		if res, ok := r.cachedModel(ctx, key); ok {
			return res, nil
		}
	}

	observability.Pipeline().OnParseStart(ctx, len(units))
	start := time.Now()
	res, err := r.parse(ctx, units, opts)
	nodes := 0
	if res != nil {
		nodes = res.Graph.NodeCount()
	}
	observability.Pipeline().OnParseComplete(ctx, nodes, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := graph.WriteModel(res.Model, &buf); err == nil {
		if err := r.Cache.Set(ctx, key, buf.Bytes(), r.ttl(cache.ModelTTL)); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "model", buf.Len())
		}
	}
	return res, nil
}

func (r *Runner) modelKey(units []extract.Unit, opts Options) string {
	parts := make([][]byte, 0, 2*len(units))
	for _, u := range units {
		parts = append(parts, []byte(baseName(u.Path)), []byte(u.Text))
	}
	var ko cache.ModelKeyOpts
	switch {
	case opts.DOT != "":
		ko.DOTHash = cache.Hash([]byte(opts.DOT))
	case r.Tool != nil:
		ko.Tool, ko.ToolArgs = r.Tool.Command()
	}
	return r.Keyer.ModelKey(cache.HashParts(parts...), ko)
}

func (r *Runner) cachedModel(ctx context.Context, key string) (*ParseResult, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "model")
		return nil, false
	}
	model, err := graph.UnmarshalModel(data)
	if err != nil {
		return nil, false
	}
	g, err := graph.ToCallGraph(model)
	if err != nil {
		return nil, false
	}
	hash, err := ModelHash(g)
	if err != nil {
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "model")
	r.Logger.Debug("model cache hit", "key", key)
	return &ParseResult{Graph: g, Model: model, Hash: hash, Warnings: model.Warnings, CacheHit: true}, true
}

// Layout lays out g as a diagram.
func (r *Runner) Layout(ctx context.Context, g *callgraph.Graph, opts Options) (graph.Diagram, error) {
	hash, err := ModelHash(g)
	if err != nil {
		return graph.Diagram{}, err
	}
	d, _, err := r.LayoutWithCacheInfo(ctx, g, hash, opts)
	return d, err
}

// LayoutWithCacheInfo lays out g, whose model content hash is hash, and
// reports whether the diagram came from the cache. Diagrams with degraded
// clusters are not cached.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *callgraph.Graph, hash string, opts Options) (graph.Diagram, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return graph.Diagram{}, false, err
	}
	contracts := g.Contracts()
	filters := opts.Filters(contracts)
	key := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts(filters))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if d, err := graph.UnmarshalDiagram(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return d, true, nil
			}
		} else if err == nil {
			observability.Cache().OnCacheMiss(ctx, "layout")
		}
	}

	d, err := r.layout(ctx, g, filters, opts)
	if err != nil {
		return graph.Diagram{}, false, err
	}
	d.Contracts = graph.FromContracts(contracts)

	// Degraded clusters may stem from a timeout or a solver failure that
	// the next request does not hit.
	if _, degraded := countClusters(d); degraded > 0 {
		r.Logger.Debug("layout not cached", "key", key, "degraded", degraded)
		return d, false, nil
	}

	if data, err := graph.MarshalDiagram(d); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.LayoutTTL)); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return d, false, nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

func countClusters(d graph.Diagram) (clusters, degraded int) {
	for _, n := range d.Nodes {
		if !n.IsGroup() {
			continue
		}
		clusters++
		if n.Data.Degraded {
			degraded++
		}
	}
	return clusters, degraded
}

// ModelHash returns the content hash of g's serialized model. It keys the
// layout stage.
func ModelHash(g *callgraph.Graph) (string, error) {
	data, err := graph.MarshalModel(g)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "serialize model")
	}
	return cache.Hash(data), nil
}
