package view

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/auditgraph/pkg/callgraph"
)

// HandleID names the anchor for a call on a relative source line.
func HandleID(line int) string {
	return fmt.Sprintf("line-%d", line)
}

// calleeName is the last dotted segment of a member label.
func calleeName(label string) string {
	if i := strings.LastIndex(label, "."); i >= 0 {
		return label[i+1:]
	}
	return label
}

// SplitCallEdges returns a copy of g prepared for the display mode.
//
// In code view every edge whose source has calls matching the target's
// name is replaced by one edge per matching call, anchored at the call's
// line, and every member records the lines that originate an edge. Edges
// without a matching call are kept as they are. Outside code view all
// anchors and active lines are cleared.
//
// Split edges are named "<edge>-call-<i>"; a name already used by another
// edge gets a numeric suffix.
func SplitCallEdges(g *callgraph.Graph, codeView bool) (*callgraph.Graph, error) {
	out := callgraph.New()
	for _, grp := range g.Groups() {
		if err := out.AddGroup(*grp); err != nil {
			return nil, fmt.Errorf("copy group %s: %w", grp.ID, err)
		}
	}

	taken := make(map[string]bool, g.EdgeCount())
	for _, e := range g.Edges() {
		taken[e.ID] = true
	}
	splitID := func(edge string, i int) string {
		id := fmt.Sprintf("%s-call-%d", edge, i)
		for n := 2; taken[id]; n++ {
			id = fmt.Sprintf("%s-call-%d-%d", edge, i, n)
		}
		taken[id] = true
		return id
	}

	active := make(map[string]map[int]bool)
	var edges []callgraph.Edge
	for _, e := range g.Edges() {
		e.SourceHandle = ""
		if !codeView {
			edges = append(edges, e)
			continue
		}
		src, okS := g.Member(e.Source)
		dst, okD := g.Member(e.Target)
		if !okS || !okD {
			edges = append(edges, e)
			continue
		}
		name := calleeName(dst.Label)
		var i int
		for _, c := range src.Calls {
			if c.Name != name {
				continue
			}
			edges = append(edges, callgraph.Edge{
				ID:           splitID(e.ID, i),
				Source:       e.Source,
				Target:       e.Target,
				SourceHandle: HandleID(c.Line),
			})
			if active[e.Source] == nil {
				active[e.Source] = make(map[int]bool)
			}
			active[e.Source][c.Line] = true
			i++
		}
		if i == 0 {
			edges = append(edges, e)
		}
	}

	for _, m := range g.Members() {
		cp := *m
		cp.Calls = slices.Clone(m.Calls)
		cp.ActiveLines = nil
		for line := range active[m.ID] {
			cp.ActiveLines = append(cp.ActiveLines, line)
		}
		slices.Sort(cp.ActiveLines)
		if err := out.AddMember(cp); err != nil {
			return nil, fmt.Errorf("copy member %s: %w", m.ID, err)
		}
	}
	for _, e := range edges {
		if err := out.AddEdge(e); err != nil {
			return nil, fmt.Errorf("add edge %s: %w", e.ID, err)
		}
	}
	return out, nil
}
