package layout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matzehuels/auditgraph/pkg/callgraph"
	aerrors "github.com/matzehuels/auditgraph/pkg/errors"
	"github.com/matzehuels/auditgraph/pkg/observability"
)

// rowSolver places nodes left to right, 400px apart, and gives every edge
// one bend point at the local origin.
var rowSolver = SolverFunc(func(_ context.Context, sub Subgraph, _ Config) (*Solution, error) {
	sol := &Solution{Nodes: map[string]Point{}, Edges: map[string][]Point{}}
	for i, n := range sub.Nodes {
		sol.Nodes[n.ID] = Point{X: float64(i) * 400}
	}
	for _, e := range sub.Edges {
		sol.Edges[e.ID] = []Point{{X: 10, Y: 20}}
	}
	return sol, nil
})

// buildGraph returns a graph with one group "C" holding the given members
// and the given edges.
func buildGraph(t *testing.T, members []string, edges ...callgraph.Edge) *callgraph.Graph {
	t.Helper()
	g := callgraph.New()
	if err := g.AddGroup(callgraph.Group{ID: "C", Label: "C", Kind: callgraph.KindContract}); err != nil {
		t.Fatal(err)
	}
	for _, id := range members {
		if err := g.AddMember(callgraph.Member{ID: id, Label: id, Parent: "C"}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestLayoutCallPair(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, edge("edge-0", "a", "b"))
	res, err := NewEngine(rowSolver, nil).Layout(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(res.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(res.Groups))
	}
	grp := res.Groups[0]
	if grp.ID != "group-cluster-0" || grp.Label != "Cluster 1" || grp.Degraded {
		t.Errorf("group = %+v", grp)
	}
	// Nodes span 700x120 locally.
	if grp.Width != 700+2*GroupPadding || grp.Height != 120+2*GroupPadding+GroupHeader {
		t.Errorf("group size = %vx%v", grp.Width, grp.Height)
	}

	a, _ := res.Node("a")
	b, _ := res.Node("b")
	if a.Group != grp.ID || a.Position != (Point{X: 400, Y: 460}) {
		t.Errorf("a = %+v", a)
	}
	if b.Position != (Point{X: 800, Y: 460}) || b.Absolute != b.Position {
		t.Errorf("b = %+v", b)
	}

	if len(res.Edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(res.Edges))
	}
	e := res.Edges[0]
	if e.Type != EdgeType || e.Animated || e.InteractionWidth != InteractionWidth {
		t.Errorf("edge style = %+v", e)
	}
	if len(e.BendPoints) != 1 || e.BendPoints[0] != (Point{X: 410, Y: 480}) {
		t.Errorf("bend points = %v", e.BendPoints)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

func TestLayoutSingletons(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"})
	res, err := NewEngine(rowSolver, nil).Layout(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(res.Groups) != 0 {
		t.Errorf("got %d groups, want 0", len(res.Groups))
	}
	a, _ := res.Node("a")
	b, _ := res.Node("b")
	if a.Group != "" || a.Position != (Point{X: Gutter}) {
		t.Errorf("a = %+v", a)
	}
	if b.Position != (Point{X: Gutter + 350}) {
		t.Errorf("b = %+v", b)
	}
}

func TestLayoutSingletonsAfterGroups(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c"}, edge("edge-0", "a", "b"))
	for _, dir := range []Direction{LeftToRight, TopToBottom} {
		res, err := NewEngine(rowSolver, nil).Layout(context.Background(), g, Options{Direction: dir})
		if err != nil {
			t.Fatalf("Layout(%s): %v", dir, err)
		}
		grp := res.Groups[0]
		c, _ := res.Node("c")
		if dir == LeftToRight && c.Absolute.X != grp.Width+2*Gutter {
			t.Errorf("LR singleton x = %v, want %v", c.Absolute.X, grp.Width+2*Gutter)
		}
		if dir == TopToBottom && c.Absolute.Y != grp.Height+2*Gutter {
			t.Errorf("TB singleton y = %v, want %v", c.Absolute.Y, grp.Height+2*Gutter)
		}
	}
}

func TestLayoutDegrades(t *testing.T) {
	failing := SolverFunc(func(context.Context, Subgraph, Config) (*Solution, error) {
		return nil, errors.New("no convergence")
	})
	panicking := SolverFunc(func(context.Context, Subgraph, Config) (*Solution, error) {
		panic("boom")
	})
	partial := SolverFunc(func(_ context.Context, sub Subgraph, _ Config) (*Solution, error) {
		return &Solution{Nodes: map[string]Point{sub.Nodes[0].ID: {}}}, nil
	})
	slow := SolverFunc(func(ctx context.Context, _ Subgraph, _ Config) (*Solution, error) {
		time.Sleep(time.Second)
		return nil, ctx.Err()
	})

	tests := []struct {
		name   string
		solver Solver
		opts   Options
	}{
		{"error", failing, Options{}},
		{"panic", panicking, Options{}},
		{"missing node", partial, Options{}},
		{"timeout", slow, Options{SolveTimeout: 10 * time.Millisecond}},
		{"size guard", rowSolver, Options{MaxClusterNodes: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t, []string{"a", "b", "c"}, edge("e0", "a", "b"), edge("e1", "b", "c"))
			res, err := NewEngine(tt.solver, nil).Layout(context.Background(), g, tt.opts)
			if err != nil {
				t.Fatalf("Layout: %v", err)
			}
			if len(res.Groups) != 1 || !res.Groups[0].Degraded {
				t.Fatalf("groups = %+v, want one degraded group", res.Groups)
			}
			if len(res.Warnings) != 1 || res.Warnings[0].Kind != aerrors.WarnLayout {
				t.Errorf("warnings = %v", res.Warnings)
			}
			if len(res.Nodes) != 3 {
				t.Errorf("got %d nodes, want 3", len(res.Nodes))
			}
			assertNoOverlap(t, res.Nodes)
		})
	}
}

func TestLayoutNonOverlap(t *testing.T) {
	var ids []string
	var edges []callgraph.Edge
	for i := range 12 {
		ids = append(ids, string(rune('a'+i)))
	}
	// Four components of two members plus four singletons.
	for i := 0; i < 8; i += 2 {
		edges = append(edges, edge("e"+ids[i], ids[i], ids[i+1]))
	}
	g := buildGraph(t, ids, edges...)

	for _, opts := range []Options{
		{Direction: LeftToRight},
		{Direction: TopToBottom, CodeView: true},
		{Parallelism: 4},
	} {
		res, err := NewEngine(rowSolver, nil).Layout(context.Background(), g, opts)
		if err != nil {
			t.Fatalf("Layout: %v", err)
		}
		if len(res.Groups) != 4 {
			t.Fatalf("got %d groups, want 4", len(res.Groups))
		}
		for i, a := range res.Groups {
			for _, b := range res.Groups[i+1:] {
				if overlaps(a.Position, a.Width, a.Height, b.Position, b.Width, b.Height) {
					t.Errorf("%s overlaps %s", a.ID, b.ID)
				}
			}
			for _, n := range res.Nodes {
				if n.Group == "" && overlaps(a.Position, a.Width, a.Height, n.Absolute, n.Width, n.Height) {
					t.Errorf("singleton %s overlaps %s", n.ID, a.ID)
				}
			}
		}
		assertNoOverlap(t, res.Nodes)
	}
}

func TestLayoutCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := buildGraph(t, []string{"a", "b"}, edge("e0", "a", "b"))
	if _, err := NewEngine(rowSolver, nil).Layout(ctx, g, Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Layout() error = %v, want context.Canceled", err)
	}
}

func TestLayoutInvalidDirection(t *testing.T) {
	g := buildGraph(t, []string{"a"})
	_, err := NewEngine(rowSolver, nil).Layout(context.Background(), g, Options{Direction: "RL"})
	if !aerrors.Is(err, aerrors.ErrCodeInvalidOptions) {
		t.Errorf("Layout() error = %v, want %s", err, aerrors.ErrCodeInvalidOptions)
	}
}

func overlaps(p Point, w, h float64, q Point, qw, qh float64) bool {
	return p.X < q.X+qw && q.X < p.X+w && p.Y < q.Y+qh && q.Y < p.Y+h
}

func assertNoOverlap(t *testing.T, nodes []Node) {
	t.Helper()
	for i, a := range nodes {
		for _, b := range nodes[i+1:] {
			if overlaps(a.Absolute, a.Width, a.Height, b.Absolute, b.Width, b.Height) {
				t.Errorf("node %s overlaps %s", a.ID, b.ID)
			}
		}
	}
}

// solveRecorder records OnClusterSolve events.
type solveRecorder struct {
	observability.NoopPipelineHooks
	events [][3]int
}

func (r *solveRecorder) OnClusterSolve(_ context.Context, n, total, nodes int) {
	r.events = append(r.events, [3]int{n, total, nodes})
}

func TestLayoutReportsClusterSolves(t *testing.T) {
	rec := &solveRecorder{}
	observability.SetPipelineHooks(rec)
	t.Cleanup(observability.Reset)

	g := buildGraph(t, []string{"a", "b", "c", "d", "e", "lone"},
		edge("edge-0", "a", "b"),
		edge("edge-1", "c", "d"),
		edge("edge-2", "d", "e"),
	)
	if _, err := NewEngine(rowSolver, nil).Layout(context.Background(), g, Options{}); err != nil {
		t.Fatalf("Layout: %v", err)
	}

	want := [][3]int{{1, 2, 2}, {2, 2, 3}}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, rec.events[i], want[i])
		}
	}
}
