package layout

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/auditgraph/pkg/render"
)

// pointsPerInch converts canvas pixels to Graphviz inches. Graphviz reports
// positions in points, so one canvas pixel maps to one point.
const pointsPerInch = 72.0

// GraphvizSolver lays out components with the Graphviz dot engine.
type GraphvizSolver struct{}

// Solve implements Solver.
func (GraphvizSolver) Solve(ctx context.Context, sub Subgraph, cfg Config) (*Solution, error) {
	out, err := render.Graphviz(ctx, solverDOT(sub, cfg), render.FormatJSON)
	if err != nil {
		return nil, err
	}
	gj, err := render.DecodeJSON(out)
	if err != nil {
		return nil, err
	}
	return readSolution(gj, sub)
}

// solverDOT describes sub with generated node names n<i> and edge ids e<i>,
// so arbitrary ids never need DOT quoting.
func solverDOT(sub Subgraph, cfg Config) string {
	var b strings.Builder
	b.WriteString("digraph component {\n")
	fmt.Fprintf(&b, "  graph [rankdir=%s, nodesep=%s, ranksep=%s, splines=spline, ordering=out];\n",
		cfg.Direction, inches(cfg.Spacing.NodeNode), inches(cfg.Spacing.BetweenLayers))
	b.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	index := make(map[string]int, len(sub.Nodes))
	for i, n := range sub.Nodes {
		index[n.ID] = i
		fmt.Fprintf(&b, "  n%d [width=%s, height=%s];\n", i, inches(n.Width), inches(n.Height))
	}
	for i, e := range sub.Edges {
		src, okS := index[e.Source]
		dst, okD := index[e.Target]
		if !okS || !okD {
			continue
		}
		fmt.Fprintf(&b, "  n%d -> n%d [id=\"e%d\"];\n", src, dst, i)
	}
	b.WriteString("}\n")
	return b.String()
}

func inches(px float64) string {
	return strconv.FormatFloat(px/pointsPerInch, 'f', 4, 64)
}

// readSolution maps Graphviz json output back onto sub, flipping y so it
// grows downward and converting node centers to top-left corners.
func readSolution(gj *render.GraphJSON, sub Subgraph) (*Solution, error) {
	bb, err := parseFloats(gj.BB, 4)
	if err != nil {
		return nil, fmt.Errorf("bounding box: %w", err)
	}
	top := bb[3]
	flip := func(p Point) Point { return Point{X: p.X, Y: top - p.Y} }

	sol := &Solution{Nodes: make(map[string]Point, len(sub.Nodes)), Edges: make(map[string][]Point, len(sub.Edges))}
	for _, obj := range gj.NodeObjects() {
		i, ok := generatedIndex(obj.Name, "n", len(sub.Nodes))
		if !ok {
			continue
		}
		xy, err := parseFloats(obj.Pos, 2)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", sub.Nodes[i].ID, err)
		}
		n := sub.Nodes[i]
		c := flip(Point{X: xy[0], Y: xy[1]})
		sol.Nodes[n.ID] = Point{X: c.X - n.Width/2, Y: c.Y - n.Height/2}
	}
	for _, e := range gj.Edges {
		i, ok := generatedIndex(e.ID, "e", len(sub.Edges))
		if !ok {
			continue
		}
		pts, err := splinePoints(e.Pos)
		if err != nil {
			return nil, fmt.Errorf("edge %s: %w", sub.Edges[i].ID, err)
		}
		for j := range pts {
			pts[j] = flip(pts[j])
		}
		sol.Edges[sub.Edges[i].ID] = pts
	}
	return sol, nil
}

func generatedIndex(name, prefix string, n int) (int, bool) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

// splinePoints returns the interior control points of a Graphviz edge pos
// ("e,x,y x1,y1 x2,y2 ..."). Arrowhead endpoints and the first and last
// spline points, which sit on the node borders, are dropped.
func splinePoints(pos string) ([]Point, error) {
	var pts []Point
	for _, field := range strings.Fields(pos) {
		if strings.HasPrefix(field, "e,") || strings.HasPrefix(field, "s,") {
			continue
		}
		xy, err := parseFloats(field, 2)
		if err != nil {
			return nil, err
		}
		pts = append(pts, Point{X: xy[0], Y: xy[1]})
	}
	if len(pts) <= 2 {
		return nil, nil
	}
	return pts[1 : len(pts)-1], nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(strings.TrimSuffix(s, "!"), ",")
	if len(parts) < n {
		return nil, fmt.Errorf("want %d coordinates in %q", n, s)
	}
	out := make([]float64, n)
	for i := range out {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}
