package layout

import (
	"fmt"
	"math"

	"github.com/matzehuels/auditgraph/pkg/callgraph"
	"github.com/matzehuels/auditgraph/pkg/errors"
)

// Node is a placed member. Position is relative to the enclosing group
// when Group is set, else absolute. Absolute is always canvas-global.
type Node struct {
	ID       string
	Group    string
	Position Point
	Absolute Point
	Width    float64
	Height   float64
}

// Group is the wrapper box of one complex component.
type Group struct {
	ID       string
	Label    string
	Position Point
	Width    float64
	Height   float64
	Members  []string
	Degraded bool
}

// Edge is a routed edge ready for rendering.
type Edge struct {
	ID               string
	Source           string
	Target           string
	SourceHandle     string
	Type             string
	Animated         bool
	InteractionWidth float64
	BendPoints       []Point // canvas-global
}

// Result is the packed canvas.
type Result struct {
	Groups   []Group
	Nodes    []Node
	Edges    []Edge
	Warnings []errors.Warning
}

// Node returns the placement of a member.
func (r *Result) Node(id string) (Node, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Placed is a laid-out complex component.
type Placed struct {
	Cluster  Cluster
	Solution *Solution
	Degraded bool
}

type rect struct{ minX, minY, maxX, maxY float64 }

func bounds(ids []string, sol *Solution, sizes map[string]Point) rect {
	r := rect{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, id := range ids {
		p, sz := sol.Nodes[id], sizes[id]
		r.minX = min(r.minX, p.X)
		r.minY = min(r.minY, p.Y)
		r.maxX = max(r.maxX, p.X+sz.X)
		r.maxY = max(r.maxY, p.Y+sz.Y)
	}
	return r
}

// Pack arranges solved components and singletons on one canvas. Groups are
// placed in the order given along the flow direction, separated by the
// gutter; singletons follow in a row-major grid. Member nodes and edges of
// g are emitted in g's order.
func Pack(g *callgraph.Graph, placed []Placed, singletons []string, opts Options) *Result {
	sizes := make(map[string]Point, g.MemberCount())
	for _, m := range g.Members() {
		w, h := Size(m, opts.CodeView)
		sizes[m.ID] = Point{X: w, Y: h}
	}

	res := &Result{}
	nodes := make(map[string]Node, len(sizes))
	shift := make(map[string]Point) // member -> local-to-global translation
	bends := make(map[string][]Point)

	var cursor float64
	for i, p := range placed {
		r := bounds(p.Cluster.Members, p.Solution, sizes)
		grp := Group{
			ID:       fmt.Sprintf("group-cluster-%d", i),
			Label:    fmt.Sprintf("Cluster %d", i+1),
			Width:    r.maxX - r.minX + 2*GroupPadding,
			Height:   r.maxY - r.minY + 2*GroupPadding + GroupHeader,
			Members:  p.Cluster.Members,
			Degraded: p.Degraded,
		}
		if opts.Direction == TopToBottom {
			grp.Position = Point{X: 0, Y: cursor}
			cursor += grp.Height + Gutter
		} else {
			grp.Position = Point{X: cursor, Y: 0}
			cursor += grp.Width + Gutter
		}
		offset := Point{X: -r.minX + GroupPadding, Y: -r.minY + GroupPadding + GroupHeader}
		for _, id := range p.Cluster.Members {
			local := p.Solution.Nodes[id]
			rel := Point{X: local.X + offset.X, Y: local.Y + offset.Y}
			nodes[id] = Node{
				ID:       id,
				Group:    grp.ID,
				Position: rel,
				Absolute: Point{X: grp.Position.X + rel.X, Y: grp.Position.Y + rel.Y},
				Width:    sizes[id].X,
				Height:   sizes[id].Y,
			}
			shift[id] = Point{X: grp.Position.X + offset.X, Y: grp.Position.Y + offset.Y}
		}
		for id, pts := range p.Solution.Edges {
			bends[id] = pts
		}
		res.Groups = append(res.Groups, grp)
	}

	packSingletons(singletons, sizes, cursor+Gutter, opts, nodes)

	for _, m := range g.Members() {
		if n, ok := nodes[m.ID]; ok {
			res.Nodes = append(res.Nodes, n)
		}
	}
	for _, e := range g.Edges() {
		out := Edge{
			ID:               e.ID,
			Source:           e.Source,
			Target:           e.Target,
			SourceHandle:     e.SourceHandle,
			Type:             EdgeType,
			InteractionWidth: InteractionWidth,
		}
		if d, ok := shift[e.Source]; ok {
			for _, p := range bends[e.ID] {
				out.BendPoints = append(out.BendPoints, Point{X: p.X + d.X, Y: p.Y + d.Y})
			}
		}
		res.Edges = append(res.Edges, out)
	}
	return res
}

// packSingletons places singletons row-major on the mode's grid, starting
// at start along the flow axis. The pitch widens for nodes larger than a
// cell.
func packSingletons(ids []string, sizes map[string]Point, start float64, opts Options, nodes map[string]Node) {
	if len(ids) == 0 {
		return
	}
	grid := GridFor(opts.CodeView)
	pitchX, pitchY := grid.CellWidth, grid.CellHeight
	for _, id := range ids {
		pitchX = max(pitchX, sizes[id].X+gridGap)
		pitchY = max(pitchY, sizes[id].Y+gridGap)
	}
	origin := Point{X: start}
	if opts.Direction == TopToBottom {
		origin = Point{Y: start}
	}
	for i, id := range ids {
		p := Point{
			X: origin.X + float64(i%grid.Columns)*pitchX,
			Y: origin.Y + float64(i/grid.Columns)*pitchY,
		}
		nodes[id] = Node{ID: id, Position: p, Absolute: p, Width: sizes[id].X, Height: sizes[id].Y}
	}
}
