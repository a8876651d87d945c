package layout

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/auditgraph/pkg/callgraph"
	"github.com/matzehuels/auditgraph/pkg/errors"
	"github.com/matzehuels/auditgraph/pkg/observability"
)

// Engine partitions, solves and packs call graphs.
type Engine struct {
	Solver Solver
	Logger *log.Logger
}

// NewEngine returns an Engine. A nil solver selects [GraphvizSolver]; a nil
// logger discards output.
func NewEngine(solver Solver, logger *log.Logger) *Engine {
	if solver == nil {
		solver = GraphvizSolver{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{Solver: solver, Logger: logger}
}

// Layout positions every member and routes every edge of g. Failing
// components degrade to a grid and are reported in Result.Warnings; the
// returned error is non-nil only for invalid options or a cancelled ctx.
func (e *Engine) Layout(ctx context.Context, g *callgraph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	members := g.Members()
	ids := make([]string, len(members))
	sizes := make(map[string]Point, len(members))
	for i, m := range members {
		ids[i] = m.ID
		w, h := Size(m, opts.CodeView)
		sizes[m.ID] = Point{X: w, Y: h}
	}
	edges := g.Edges()

	var complexClusters []Cluster
	var singletons []string
	for _, c := range Partition(ids, edges) {
		if c.Complex() {
			complexClusters = append(complexClusters, c)
		} else {
			singletons = append(singletons, c.Members...)
		}
	}
	e.Logger.Debug("partitioned call graph", "members", len(ids), "clusters", len(complexClusters), "singletons", len(singletons))

	cfg := opts.Config()
	placed := make([]Placed, len(complexClusters))
	warnings := make([]*errors.Warning, len(complexClusters))

	var eg errgroup.Group
	eg.SetLimit(opts.Parallelism)
	for i, c := range complexClusters {
		sub := subgraph(c, edges, sizes)
		eg.Go(func() error {
			observability.Pipeline().OnClusterSolve(ctx, i+1, len(complexClusters), c.Size())
			sol, err := e.solveGuarded(ctx, sub, cfg, opts)
			if err != nil {
				label := fmt.Sprintf("Cluster %d", i+1)
				e.Logger.Warn("layout degraded", "cluster", label, "nodes", c.Size(), "err", err)
				w := errors.Warnf(errors.WarnLayout, label, "%v", err)
				warnings[i] = &w
				placed[i] = Placed{Cluster: c, Solution: gridSolution(sub, cfg.Spacing), Degraded: true}
				return nil
			}
			placed[i] = Placed{Cluster: c, Solution: sol}
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := Pack(g, placed, singletons, opts)
	for _, w := range warnings {
		if w != nil {
			res.Warnings = append(res.Warnings, *w)
		}
	}
	return res, nil
}

// solveGuarded applies the size and time guards around one solve. A
// solver that ignores ctx keeps running in the background after the
// timeout; its result is discarded.
func (e *Engine) solveGuarded(ctx context.Context, sub Subgraph, cfg Config, opts Options) (*Solution, error) {
	if len(sub.Nodes) > opts.MaxClusterNodes {
		return nil, fmt.Errorf("%d nodes exceed the limit of %d", len(sub.Nodes), opts.MaxClusterNodes)
	}
	ctx, cancel := context.WithTimeout(ctx, opts.SolveTimeout)
	defer cancel()

	type result struct {
		sol *Solution
		err error
	}
	done := make(chan result, 1)
	start := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("solver panic: %v", r)}
			}
		}()
		sol, err := e.Solver.Solve(ctx, sub, cfg)
		done <- result{sol: sol, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		if err := r.sol.check(sub); err != nil {
			return nil, err
		}
		e.Logger.Debug("solved cluster", "nodes", len(sub.Nodes), "edges", len(sub.Edges), "elapsed", time.Since(start))
		return r.sol, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("solve stopped after %s: %w", time.Since(start).Round(time.Millisecond), ctx.Err())
	}
}

// subgraph collects the members of c with their sizes and the edges
// between them.
func subgraph(c Cluster, edges []callgraph.Edge, sizes map[string]Point) Subgraph {
	in := make(map[string]bool, len(c.Members))
	sub := Subgraph{Nodes: make([]SolveNode, len(c.Members))}
	for i, id := range c.Members {
		in[id] = true
		sub.Nodes[i] = SolveNode{ID: id, Width: sizes[id].X, Height: sizes[id].Y}
	}
	for _, e := range edges {
		if in[e.Source] && in[e.Target] {
			sub.Edges = append(sub.Edges, SolveEdge{ID: e.ID, Source: e.Source, Target: e.Target})
		}
	}
	return sub
}
