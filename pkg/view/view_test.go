package view

import (
	"slices"
	"testing"

	"github.com/matzehuels/auditgraph/pkg/callgraph"
	"github.com/matzehuels/auditgraph/pkg/layout"
)

func strPtr(s string) *string { return &s }

// tokenGraph has a contract Token calling twice into itself and once into
// an interface IERC20.
func tokenGraph(t *testing.T) *callgraph.Graph {
	t.Helper()
	g := callgraph.New()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(g.AddGroup(callgraph.Group{ID: "clusterToken", Label: "Token", Kind: callgraph.KindContract}))
	must(g.AddGroup(callgraph.Group{ID: "clusterIERC20", Label: "IERC20", Kind: callgraph.KindInterface}))
	must(g.AddMember(callgraph.Member{
		ID: "node-Token_transfer-0", Label: "transfer", Parent: "clusterToken",
		Source: strPtr("function transfer() {\n  _move();\n  _move();\n  token.balanceOf();\n}"),
		Calls:  []callgraph.Call{{Name: "_move", Line: 1}, {Name: "_move", Line: 2}, {Name: "balanceOf", Line: 3}},
	}))
	must(g.AddMember(callgraph.Member{ID: "node-Token__move-1", Label: "Token._move", Parent: "clusterToken"}))
	must(g.AddMember(callgraph.Member{ID: "node-IERC20_balanceOf-2", Label: "balanceOf", Parent: "clusterIERC20"}))
	must(g.AddMember(callgraph.Member{ID: "node-Token_other-3", Label: "other", Parent: "clusterToken"}))
	must(g.AddEdge(callgraph.Edge{ID: "edge-0", Source: "node-Token_transfer-0", Target: "node-Token__move-1"}))
	must(g.AddEdge(callgraph.Edge{ID: "edge-1", Source: "node-Token_transfer-0", Target: "node-IERC20_balanceOf-2"}))
	must(g.AddEdge(callgraph.Edge{ID: "edge-2", Source: "node-Token_transfer-0", Target: "node-Token_other-3"}))
	return g
}

func TestDefaultFilters(t *testing.T) {
	f := DefaultFilters(tokenGraph(t).Contracts())
	if !f.Visible("Token") || f.Visible("IERC20") {
		t.Errorf("DefaultFilters() = %v", f)
	}
	if !f.Visible("Unknown") {
		t.Error("contracts without an entry should be visible")
	}
	if got := f.Hidden(); !slices.Equal(got, []string{"IERC20"}) {
		t.Errorf("Hidden() = %v", got)
	}
}

func TestFilter(t *testing.T) {
	g := tokenGraph(t)
	out := Filter(g, DefaultFilters(g.Contracts()))

	if _, ok := out.Group("clusterIERC20"); ok {
		t.Error("hidden group survived")
	}
	if _, ok := out.Member("node-IERC20_balanceOf-2"); ok {
		t.Error("member of hidden group survived")
	}
	if out.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", out.EdgeCount())
	}
	if err := out.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if g.MemberCount() != 4 {
		t.Error("Filter modified its input")
	}

	all := Filter(g, Filters{})
	if all.MemberCount() != 4 || all.EdgeCount() != 3 {
		t.Errorf("empty filters changed the graph: %d members, %d edges", all.MemberCount(), all.EdgeCount())
	}
}

func TestSplitCallEdges(t *testing.T) {
	g := tokenGraph(t)
	out, err := SplitCallEdges(g, true)
	if err != nil {
		t.Fatalf("SplitCallEdges: %v", err)
	}

	got := out.Edges()
	want := []callgraph.Edge{
		{ID: "edge-0-call-0", Source: "node-Token_transfer-0", Target: "node-Token__move-1", SourceHandle: "line-1"},
		{ID: "edge-0-call-1", Source: "node-Token_transfer-0", Target: "node-Token__move-1", SourceHandle: "line-2"},
		{ID: "edge-1-call-0", Source: "node-Token_transfer-0", Target: "node-IERC20_balanceOf-2", SourceHandle: "line-3"},
		{ID: "edge-2", Source: "node-Token_transfer-0", Target: "node-Token_other-3"},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("edges =\n%+v\nwant\n%+v", got, want)
	}

	m, _ := out.Member("node-Token_transfer-0")
	if !slices.Equal(m.ActiveLines, []int{1, 2, 3}) {
		t.Errorf("ActiveLines = %v", m.ActiveLines)
	}
	if err := out.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	back, err := SplitCallEdges(out, false)
	if err != nil {
		t.Fatalf("SplitCallEdges: %v", err)
	}
	for _, e := range back.Edges() {
		if e.SourceHandle != "" {
			t.Errorf("edge %s kept handle %q outside code view", e.ID, e.SourceHandle)
		}
	}
	m, _ = back.Member("node-Token_transfer-0")
	if len(m.ActiveLines) != 0 {
		t.Errorf("ActiveLines = %v outside code view", m.ActiveLines)
	}
}

func TestSplitCallEdgesNameCollision(t *testing.T) {
	g := callgraph.New()
	_ = g.AddGroup(callgraph.Group{ID: "Token", Label: "Token", Kind: callgraph.KindContract})
	_ = g.AddMember(callgraph.Member{ID: "a", Label: "transfer", Parent: "Token", Calls: []callgraph.Call{{Name: "_move", Line: 1}}})
	_ = g.AddMember(callgraph.Member{ID: "b", Label: "_move", Parent: "Token"})
	_ = g.AddMember(callgraph.Member{ID: "c", Label: "mint", Parent: "Token"})
	_ = g.AddEdge(callgraph.Edge{ID: "e", Source: "a", Target: "b"})
	_ = g.AddEdge(callgraph.Edge{ID: "e-call-0", Source: "c", Target: "b"})

	out, err := SplitCallEdges(g, true)
	if err != nil {
		t.Fatalf("SplitCallEdges: %v", err)
	}
	got := out.Edges()
	want := []callgraph.Edge{
		{ID: "e-call-0-2", Source: "a", Target: "b", SourceHandle: "line-1"},
		{ID: "e-call-0", Source: "c", Target: "b"},
	}
	if !slices.Equal(got, want) {
		t.Errorf("edges =\n%+v\nwant\n%+v", got, want)
	}
}

func TestHistory(t *testing.T) {
	h := NewHistory(State{Filters: Filters{"IERC20": false}, Direction: layout.LeftToRight})
	if h.CanUndo() || h.CanRedo() {
		t.Fatal("fresh history can undo or redo")
	}

	first := h.Current()
	h.Apply(ToggleContract("IERC20"))
	h.Apply(SetCodeView(true))
	h.Apply(SetDirection(layout.TopToBottom))

	cur := h.Current()
	if !cur.Filters.Visible("IERC20") || !cur.CodeView || cur.Direction != layout.TopToBottom {
		t.Errorf("current = %+v", cur)
	}
	if first.Filters.Visible("IERC20") {
		t.Error("recorded state was modified by a later command")
	}

	for range 3 {
		if _, ok := h.Undo(); !ok {
			t.Fatal("Undo() = false")
		}
	}
	if _, ok := h.Undo(); ok {
		t.Error("Undo() past the start = true")
	}
	if got := h.Current(); got.CodeView || got.Filters.Visible("IERC20") {
		t.Errorf("after undo = %+v", got)
	}

	if s, ok := h.Redo(); !ok || !s.Filters.Visible("IERC20") {
		t.Errorf("Redo() = %+v, %v", s, ok)
	}
	h.Apply(SetVisible(false, "Token"))
	if h.CanRedo() {
		t.Error("Apply did not clear the redo stack")
	}
}

func TestHistoryLimit(t *testing.T) {
	h := NewHistory(State{})
	for range DefaultHistoryLimit + 10 {
		h.Apply(SetCodeView(true))
	}
	n := 0
	for h.CanUndo() {
		h.Undo()
		n++
	}
	if n != DefaultHistoryLimit {
		t.Errorf("undo depth = %d, want %d", n, DefaultHistoryLimit)
	}
}
