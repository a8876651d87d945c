// Package pkg provides the core libraries for auditgraph call-graph
// visualization.
//
// # Overview
//
// Auditgraph turns Solidity sources into a function-level call graph and
// lays it out as a clustered diagram. Functions are nodes; calls are edges;
// each contract, interface or library groups its functions.
//
// # Architecture
//
// The typical data flow:
//
//	.sol files / .zip uploads
//	         ↓
//	    [intake] (workspace, discovery)
//	         ↓
//	    [extract] + [solidity] (per-function records)   [surya] (DOT)
//	         ↓                                             ↓
//	         └──────────────→ [merge] ←── [structure] ─────┘
//	                             ↓
//	                       [callgraph]
//	                             ↓
//	    [view] (contract filter, call-site edges)
//	         ↓
//	    [layout] (clusters, Graphviz solver, packing)
//	         ↓
//	    [graph] Diagram JSON        [render/nodelink] SVG/PNG/PDF
//
// [pipeline] runs these stages with caching; [server] and the CLI are
// thin front ends over it.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/auditgraph/pkg/cache"
//	    "github.com/matzehuels/auditgraph/pkg/intake"
//	    "github.com/matzehuels/auditgraph/pkg/pipeline"
//	    "github.com/matzehuels/auditgraph/pkg/surya"
//	)
//
//	paths, _ := intake.Discover("contracts")
//	units, _ := intake.ReadUnits(paths)
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	runner.Tool = surya.Tool{}
//	res, err := runner.Execute(ctx, units, pipeline.Options{Direction: "TB"})
//
// # Main Packages
//
// ## Domain
//
// [callgraph] - The merged graph: groups, function members with source
// excerpts and call sites, and call edges.
//
// [solidity] - A tolerant Solidity scanner producing declarations with
// source locations.
//
// [extract] - Per-function records (signature, source text, call sites)
// keyed by contract and function name.
//
// [structure] - Reads the structural DOT graph produced by surya.
//
// [merge] - Joins the structural graph with the extracted records.
//
// [view] - Contract filters, call-site edge splitting and an undo/redo
// history of view states.
//
// [layout] - Partitions the graph into clusters, solves each with a
// Solver (Graphviz by default) under size and time guards, and packs the
// results.
//
// ## Serialization and Output
//
// [graph] - JSON model and diagram types shared by the CLI and the API.
//
// [render] - Graphviz invocation and JSON decoding; [render/nodelink]
// draws static pictures.
//
// ## Infrastructure
//
// [cache] - File, Redis and null caches with content-addressed keys.
//
// [config] - TOML configuration file.
//
// [errors] - Error codes, HTTP status mapping and warnings.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// [intake] - Upload workspaces, archive expansion and source discovery.
//
// [surya] - Runs the external structural-graph tool.
//
// [server] - HTTP API.
//
// [buildinfo] - Version information injected at build time.
package pkg
