// Package pipeline runs the analysis pipeline shared by the CLI and the
// HTTP API.
//
// The pipeline has two cached stages:
//
//  1. Parse: extract per-function records from the sources, obtain the
//     structural call graph from the external tool (or a supplied DOT
//     document), and merge both into one call graph.
//  2. Layout: filter contracts, split edges per call site in code view,
//     and lay the graph out as a diagram.
//
// An optional third stage renders a static node-link picture.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	runner.Tool = surya.Tool{Bin: "surya"}
//	res, err := runner.Execute(ctx, units, pipeline.Options{Direction: "LR"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	graph.WriteDiagram(res.Diagram, os.Stdout)
//
// Stages can be run on their own:
//
//	parsed, err := runner.Parse(ctx, units, opts)
//	diagram, err := runner.Layout(ctx, parsed.Graph, opts)
package pipeline

import (
	"time"

	"github.com/matzehuels/auditgraph/pkg/cache"
	"github.com/matzehuels/auditgraph/pkg/callgraph"
	"github.com/matzehuels/auditgraph/pkg/errors"
	"github.com/matzehuels/auditgraph/pkg/graph"
	"github.com/matzehuels/auditgraph/pkg/layout"
	"github.com/matzehuels/auditgraph/pkg/view"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxMembers rejects inputs whose merged graph has more
	// function nodes than this.
	DefaultMaxMembers = 5000

	// DefaultDirection is the default flow direction.
	DefaultDirection = string(layout.LeftToRight)
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline. It supports JSON
// for API requests.
type Options struct {
	// Parse options
	DOT        string `json:"dot,omitempty"` // pre-generated structural graph; skips the tool
	MaxMembers int    `json:"max_members,omitempty"`
	Refresh    bool   `json:"refresh,omitempty"`

	// Layout options
	CodeView        bool          `json:"code_view,omitempty"`
	Direction       string        `json:"direction,omitempty"`
	Hide            []string      `json:"hide,omitempty"` // contracts hidden on top of the default filter
	Show            []string      `json:"show,omitempty"` // contracts shown, including interfaces
	MaxClusterNodes int           `json:"max_cluster_nodes,omitempty"`
	SolveTimeout    time.Duration `json:"solve_timeout,omitempty"`
	Parallelism     int           `json:"parallelism,omitempty"`

	validated bool
}

// ValidateAndSetDefaults checks the options and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.MaxMembers < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "max_members must not be negative")
	}
	if o.MaxMembers == 0 {
		o.MaxMembers = DefaultMaxMembers
	}
	if o.Direction == "" {
		o.Direction = DefaultDirection
	}
	lo := o.LayoutOptions()
	if err := lo.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.MaxClusterNodes = lo.MaxClusterNodes
	o.SolveTimeout = lo.SolveTimeout
	o.Parallelism = lo.Parallelism
	o.validated = true
	return nil
}

// LayoutOptions returns the layout engine options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		CodeView:        o.CodeView,
		Direction:       layout.Direction(o.Direction),
		MaxClusterNodes: o.MaxClusterNodes,
		SolveTimeout:    o.SolveTimeout,
		Parallelism:     o.Parallelism,
	}
}

// Filters returns the contract filter for contracts: interfaces hidden,
// then Hide applied, then Show.
func (o *Options) Filters(contracts []callgraph.Contract) view.Filters {
	return view.DefaultFilters(contracts).With(false, o.Hide...).With(true, o.Show...)
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts(f view.Filters) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		CodeView:        o.CodeView,
		Direction:       o.Direction,
		Hidden:          f.Hidden(),
		MaxClusterNodes: o.MaxClusterNodes,
	}
}

// =============================================================================
// Results
// =============================================================================

// ParseResult is the output of the parse stage.
type ParseResult struct {
	Graph    *callgraph.Graph
	Model    graph.Model
	Hash     string // content hash of Model, keys the layout stage
	Warnings []errors.Warning
	CacheHit bool
}

// Result contains the outputs of a full pipeline run.
type Result struct {
	Model     graph.Model
	ModelHash string
	Diagram   graph.Diagram
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Units      int
	Functions  int
	Edges      int
	Clusters   int
	Degraded   int
	ParseTime  time.Duration
	LayoutTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ParseHit  bool
	LayoutHit bool
}
