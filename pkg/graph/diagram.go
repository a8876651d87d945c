package graph

import (
	"github.com/matzehuels/auditgraph/pkg/callgraph"
	"github.com/matzehuels/auditgraph/pkg/errors"
	"github.com/matzehuels/auditgraph/pkg/layout"
)

// =============================================================================
// Diagram - Laid-Out Call Graph
// =============================================================================

// Diagram is the serialization format of a laid-out call graph, consumed by
// the rendering surface.
//
// Group nodes are the cluster wrappers created by layout, not contracts.
// Function nodes inside a wrapper carry ParentID and a Position relative to
// it; singleton function nodes have no parent. Every node has an Absolute
// position. Contract membership is kept in NodeData.Contract.
type Diagram struct {
	Direction string           `json:"direction"`
	CodeView  bool             `json:"codeView"`
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
	Nodes     []Node           `json:"nodes"`
	Edges     []Edge           `json:"edges"`
	Contracts []Contract       `json:"contracts"`
	Warnings  []errors.Warning `json:"warnings,omitempty"`
}

// NewDiagram combines a call graph with its layout. Contracts are taken
// from g; callers laying out a filtered graph may replace them with the
// unfiltered list.
func NewDiagram(g *callgraph.Graph, res *layout.Result, opts layout.Options) Diagram {
	src, dst := handlePositions(opts.Direction)
	d := Diagram{
		Direction: string(opts.Direction),
		CodeView:  opts.CodeView,
		Nodes:     make([]Node, 0, len(res.Groups)+len(res.Nodes)),
		Edges:     make([]Edge, 0, len(res.Edges)),
		Contracts: FromContracts(g.Contracts()),
		Warnings:  res.Warnings,
	}

	for _, grp := range res.Groups {
		pos := Point{X: grp.Position.X, Y: grp.Position.Y}
		d.Nodes = append(d.Nodes, Node{
			ID:       grp.ID,
			Type:     NodeTypeGroup,
			Label:    grp.Label,
			Position: &pos,
			Absolute: &pos,
			Width:    grp.Width,
			Height:   grp.Height,
			Data:     NodeData{Label: grp.Label, Kind: string(callgraph.KindCluster), Degraded: grp.Degraded},
		})
		d.extend(grp.Position, grp.Width, grp.Height)
	}

	for _, placed := range res.Nodes {
		m, ok := g.Member(placed.ID)
		if !ok {
			continue
		}
		n := memberNode(g, m)
		n.ParentID = placed.Group
		rel := Point{X: placed.Position.X, Y: placed.Position.Y}
		abs := Point{X: placed.Absolute.X, Y: placed.Absolute.Y}
		n.Position, n.Absolute = &rel, &abs
		n.Width, n.Height = placed.Width, placed.Height
		n.Data.SourcePosition, n.Data.TargetPosition = src, dst
		d.Nodes = append(d.Nodes, n)
		d.extend(placed.Absolute, placed.Width, placed.Height)
	}

	for _, e := range res.Edges {
		out := Edge{
			ID:               e.ID,
			Source:           e.Source,
			Target:           e.Target,
			SourceHandle:     e.SourceHandle,
			Type:             e.Type,
			Animated:         e.Animated,
			InteractionWidth: e.InteractionWidth,
		}
		for _, p := range e.BendPoints {
			out.BendPoints = append(out.BendPoints, Point{X: p.X, Y: p.Y})
		}
		d.Edges = append(d.Edges, out)
	}
	return d
}

// Node returns the node with the given ID.
func (d *Diagram) Node(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

func (d *Diagram) extend(p layout.Point, w, h float64) {
	d.Width = max(d.Width, p.X+w)
	d.Height = max(d.Height, p.Y+h)
}

func handlePositions(dir layout.Direction) (source, target string) {
	if dir == layout.TopToBottom {
		return PositionBottom, PositionTop
	}
	return PositionRight, PositionLeft
}
