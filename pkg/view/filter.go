package view

import (
	"maps"
	"slices"

	"github.com/matzehuels/auditgraph/pkg/callgraph"
)

// Filters maps contract names to visibility. Contracts without an entry
// are visible.
type Filters map[string]bool

// DefaultFilters shows every contract except interfaces.
func DefaultFilters(contracts []callgraph.Contract) Filters {
	f := make(Filters, len(contracts))
	for _, c := range contracts {
		f[c.Name] = !c.IsInterface()
	}
	return f
}

// Visible reports whether a contract is shown.
func (f Filters) Visible(name string) bool {
	v, ok := f[name]
	return !ok || v
}

// Hidden returns the hidden contract names, sorted.
func (f Filters) Hidden() []string {
	var out []string
	for name, v := range f {
		if !v {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// With returns a copy of f with names set to the given visibility.
func (f Filters) With(visible bool, names ...string) Filters {
	out := maps.Clone(f)
	if out == nil {
		out = Filters{}
	}
	for _, n := range names {
		out[n] = visible
	}
	return out
}

// Filter returns a copy of g without hidden contracts, their members and
// every edge touching a removed member.
func Filter(g *callgraph.Graph, f Filters) *callgraph.Graph {
	out := callgraph.New()
	hidden := make(map[string]bool)
	for _, grp := range g.Groups() {
		if grp.Kind != callgraph.KindCluster && !f.Visible(grp.Label) {
			hidden[grp.ID] = true
			continue
		}
		_ = out.AddGroup(*grp)
	}
	for _, m := range g.Members() {
		if hidden[m.Parent] {
			continue
		}
		cp := *m
		cp.Calls = slices.Clone(m.Calls)
		cp.ActiveLines = slices.Clone(m.ActiveLines)
		_ = out.AddMember(cp)
	}
	for _, e := range g.Edges() {
		// AddEdge rejects edges whose endpoints were dropped.
		_ = out.AddEdge(e)
	}
	return out
}
