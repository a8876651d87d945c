package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/matzehuels/auditgraph/pkg/errors"
	"github.com/matzehuels/auditgraph/pkg/extract"
	"github.com/matzehuels/auditgraph/pkg/graph"
	"github.com/matzehuels/auditgraph/pkg/merge"
	"github.com/matzehuels/auditgraph/pkg/observability"
	"github.com/matzehuels/auditgraph/pkg/structure"
)

// parse extracts records, obtains the structural graph and merges them.
func (r *Runner) parse(ctx context.Context, units []extract.Unit, opts Options) (*ParseResult, error) {
	records, warnings := extract.New(r.Logger).Extract(units)

	dot, err := r.structuralGraph(ctx, units, opts)
	if err != nil {
		return nil, err
	}
	sg, err := structure.Read(ctx, dot)
	if err != nil {
		return nil, err
	}
	g, err := merge.Merge(sg, records)
	if err != nil {
		return nil, err
	}
	if g.MemberCount() > opts.MaxMembers {
		return nil, errors.New(errors.ErrCodeInputTooLarge,
			"call graph has %d functions (limit %d)", g.MemberCount(), opts.MaxMembers)
	}

	model := graph.FromCallGraph(g)
	model.Warnings = warnings
	hash, err := ModelHash(g)
	if err != nil {
		return nil, err
	}
	return &ParseResult{Graph: g, Model: model, Hash: hash, Warnings: warnings}, nil
}

// structuralGraph returns the supplied DOT or runs the tool on the units.
func (r *Runner) structuralGraph(ctx context.Context, units []extract.Unit, opts Options) (string, error) {
	if opts.DOT != "" {
		return opts.DOT, nil
	}
	if r.Tool == nil {
		return "", errors.New(errors.ErrCodeToolNotFound, "no structural graph tool configured")
	}
	paths := make([]string, len(units))
	for i, u := range units {
		paths[i] = u.Path
	}
	bin, _ := r.Tool.Command()
	start := time.Now()
	dot, err := r.Tool.Graph(ctx, paths)
	observability.Pipeline().OnToolRun(ctx, bin, time.Since(start), err)
	r.Logger.Debug("ran structural graph tool", "bin", bin, "files", len(paths), "duration", time.Since(start))
	return dot, err
}

// baseName keys a unit by file name so that the same sources uploaded into
// different workspaces share cache entries.
func baseName(path string) string {
	return filepath.Base(filepath.ToSlash(path))
}
