package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/auditgraph/pkg/callgraph"
	"github.com/matzehuels/auditgraph/pkg/errors"
	"github.com/matzehuels/auditgraph/pkg/graph"
	"github.com/matzehuels/auditgraph/pkg/layout"
	"github.com/matzehuels/auditgraph/pkg/observability"
	"github.com/matzehuels/auditgraph/pkg/view"
)

// layout filters g, splits call edges for code view and runs the engine.
// The returned diagram lists the contracts of the filtered graph; callers
// replace them with the full list.
func (r *Runner) layout(ctx context.Context, g *callgraph.Graph, filters view.Filters, opts Options) (graph.Diagram, error) {
	visible := view.Filter(g, filters)
	if hidden := filters.Hidden(); len(hidden) > 0 {
		r.Logger.Debug("filtered contracts", "hidden", hidden, "functions", visible.MemberCount())
	}
	work, err := view.SplitCallEdges(visible, opts.CodeView)
	if err != nil {
		return graph.Diagram{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "prepare call edges")
	}

	lo := opts.LayoutOptions()
	observability.Pipeline().OnLayoutStart(ctx, work.MemberCount())
	start := time.Now()
	res, err := layout.NewEngine(r.Solver, r.Logger).Layout(ctx, work, lo)
	degraded := 0
	if res != nil {
		for _, grp := range res.Groups {
			if grp.Degraded {
				degraded++
			}
		}
	}
	observability.Pipeline().OnLayoutComplete(ctx, degraded, time.Since(start), err)
	if err != nil {
		return graph.Diagram{}, err
	}
	return graph.NewDiagram(work, res, lo), nil
}
