package callgraph

import (
	"errors"
	"testing"
)

func TestAddNodes(t *testing.T) {
	g := New()
	if err := g.AddGroup(Group{ID: "A", Label: "A"}); err != nil {
		t.Fatalf("AddGroup: %v", err)
	}

	tests := []struct {
		name string
		add  func() error
		want error
	}{
		{"empty group id", func() error { return g.AddGroup(Group{}) }, ErrInvalidNodeID},
		{"duplicate group", func() error { return g.AddGroup(Group{ID: "A"}) }, ErrDuplicateNodeID},
		{"empty member id", func() error { return g.AddMember(Member{}) }, ErrInvalidNodeID},
		{"member clashes with group", func() error { return g.AddMember(Member{ID: "A"}) }, ErrDuplicateNodeID},
		{"unknown parent", func() error { return g.AddMember(Member{ID: "m", Parent: "B"}) }, ErrUnknownParent},
		{"valid member", func() error { return g.AddMember(Member{ID: "m", Parent: "A"}) }, nil},
		{"free member", func() error { return g.AddMember(Member{ID: "free"}) }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.add(); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAddEdge(t *testing.T) {
	g := New()
	_ = g.AddMember(Member{ID: "a"})
	_ = g.AddMember(Member{ID: "b"})

	tests := []struct {
		name string
		edge Edge
		want error
	}{
		{"valid", Edge{ID: "e0", Source: "a", Target: "b"}, nil},
		{"parallel edge allowed", Edge{ID: "e1", Source: "a", Target: "b"}, nil},
		{"self loop allowed", Edge{ID: "e2", Source: "a", Target: "a"}, nil},
		{"duplicate id", Edge{ID: "e0", Source: "b", Target: "a"}, ErrDuplicateEdgeID},
		{"missing id", Edge{Source: "a", Target: "b"}, ErrInvalidNodeID},
		{"unknown source", Edge{ID: "e3", Source: "x", Target: "b"}, ErrUnknownSourceNode},
		{"unknown target", Edge{ID: "e4", Source: "a", Target: "x"}, ErrUnknownTargetNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEdge(tt.edge); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge(%+v) = %v, want %v", tt.edge, err, tt.want)
			}
		})
	}

	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount = %d, want 3", g.EdgeCount())
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	g := New()
	_ = g.AddGroup(Group{ID: "A"})
	_ = g.AddMember(Member{ID: "m", Parent: "A"})
	_ = g.AddMember(Member{ID: "n", Parent: "A"})
	_ = g.AddEdge(Edge{ID: "e", Source: "m", Target: "n"})

	g.edges[0].Target = "gone"
	if err := g.Validate(); !errors.Is(err, ErrInvalidEdgeEndpoint) {
		t.Errorf("Validate = %v, want %v", err, ErrInvalidEdgeEndpoint)
	}

	g.edges[0].Target = "n"
	g.members[0].Parent = "B"
	if err := g.Validate(); !errors.Is(err, ErrUnknownParent) {
		t.Errorf("Validate = %v, want %v", err, ErrUnknownParent)
	}
}

func TestCloneIsDeep(t *testing.T) {
	src := "function f() {}"
	g := New()
	_ = g.AddGroup(Group{ID: "A", Label: "A"})
	_ = g.AddMember(Member{ID: "m", Parent: "A", Source: &src, Calls: []Call{{Name: "g", Line: 1}}})

	c := g.Clone()
	m, _ := c.Member("m")
	m.Calls[0].Name = "changed"
	m.Label = "changed"

	orig, _ := g.Member("m")
	if orig.Calls[0].Name != "g" || orig.Label != "" {
		t.Errorf("clone shares state with original: %+v", orig)
	}
	if c.NodeCount() != g.NodeCount() || c.EdgeCount() != g.EdgeCount() {
		t.Errorf("clone counts differ")
	}
}

func TestContractsSkipsClusters(t *testing.T) {
	g := New()
	_ = g.AddGroup(Group{ID: "L", Label: "SafeMath", Kind: KindLibrary})
	_ = g.AddGroup(Group{ID: "group-cluster-0", Label: "Cluster 1", Kind: KindCluster})
	_ = g.AddMember(Member{ID: "m", Parent: "group-cluster-0"})

	got := g.Contracts()
	if len(got) != 1 || got[0].Name != "SafeMath" || got[0].Kind != KindLibrary || got[0].FunctionCount != 0 {
		t.Errorf("Contracts() = %+v", got)
	}
}
