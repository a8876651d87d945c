package graph

import (
	"github.com/matzehuels/auditgraph/pkg/callgraph"
	"github.com/matzehuels/auditgraph/pkg/errors"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Node types.
const (
	NodeTypeGroup    = "group"
	NodeTypeFunction = "function"
)

// Handle positions for the rendering surface.
const (
	PositionLeft   = "left"
	PositionRight  = "right"
	PositionTop    = "top"
	PositionBottom = "bottom"
)

// =============================================================================
// Model - Merged Call Graph
// =============================================================================

// Model is the serialization format of a merged call graph, before layout.
// Group nodes are contracts; function nodes reference them by ParentID.
type Model struct {
	Nodes     []Node           `json:"nodes"`
	Edges     []Edge           `json:"edges"`
	Contracts []Contract       `json:"contracts"`
	Warnings  []errors.Warning `json:"warnings,omitempty"`
}

// =============================================================================
// Node - Group or Function
// =============================================================================

// Node is a group or function node. Geometry fields are set only in a
// Diagram.
type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Label    string   `json:"label"`
	ParentID string   `json:"parentId,omitempty"`
	Position *Point   `json:"position,omitempty"` // relative to the parent, if any
	Absolute *Point   `json:"absolute,omitempty"` // canvas-global
	Width    float64  `json:"width,omitempty"`
	Height   float64  `json:"height,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the payload shown by the rendering surface.
type NodeData struct {
	Label string `json:"label"`

	// Kind is the container kind of a group, or of a function's contract.
	Kind     string `json:"kind,omitempty"`
	Contract string `json:"contract,omitempty"`

	Code        *string          `json:"code,omitempty"`
	Calls       []callgraph.Call `json:"calls,omitempty"`
	ActiveLines []int            `json:"activeLines,omitempty"`

	SourcePosition string `json:"sourcePosition,omitempty"`
	TargetPosition string `json:"targetPosition,omitempty"`
	Degraded       bool   `json:"degraded,omitempty"`
}

// IsGroup reports whether the node is a group.
func (n *Node) IsGroup() bool { return n.Type == NodeTypeGroup }

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Point is a 2-D canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// =============================================================================
// Edge - Directed Call
// =============================================================================

// Edge is a directed call edge.
type Edge struct {
	ID               string  `json:"id"`
	Source           string  `json:"source"`
	Target           string  `json:"target"`
	SourceHandle     string  `json:"sourceHandle,omitempty"`
	Type             string  `json:"type,omitempty"`
	Animated         bool    `json:"animated"`
	InteractionWidth float64 `json:"interactionWidth,omitempty"`
	BendPoints       []Point `json:"bendPoints,omitempty"`
}

// =============================================================================
// Contract - Filter Summary
// =============================================================================

// Contract summarizes one contract for filter controls.
type Contract struct {
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	IsInterface   bool   `json:"isInterface"`
	FunctionCount int    `json:"functionCount"`
}

// FromContracts converts contract summaries.
func FromContracts(cs []callgraph.Contract) []Contract {
	out := make([]Contract, len(cs))
	for i, c := range cs {
		out[i] = Contract{
			Name:          c.Name,
			Kind:          string(c.Kind),
			IsInterface:   c.IsInterface(),
			FunctionCount: c.FunctionCount,
		}
	}
	return out
}

// =============================================================================
// Model ↔ Call Graph Conversion
// =============================================================================

// FromCallGraph converts a call graph to its serialization format. Groups
// come first, then members, each in insertion order.
func FromCallGraph(g *callgraph.Graph) Model {
	out := Model{
		Nodes:     make([]Node, 0, g.NodeCount()),
		Edges:     make([]Edge, 0, g.EdgeCount()),
		Contracts: FromContracts(g.Contracts()),
	}
	for _, grp := range g.Groups() {
		out.Nodes = append(out.Nodes, Node{
			ID:    grp.ID,
			Type:  NodeTypeGroup,
			Label: grp.Label,
			Data:  NodeData{Label: grp.Label, Kind: string(grp.Kind)},
		})
	}
	for _, m := range g.Members() {
		out.Nodes = append(out.Nodes, memberNode(g, m))
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{ID: e.ID, Source: e.Source, Target: e.Target, SourceHandle: e.SourceHandle})
	}
	return out
}

// ToCallGraph converts a Model back into a call graph. Errors carry code
// INVALID_MODEL.
func ToCallGraph(m Model) (*callgraph.Graph, error) {
	g := callgraph.New()
	for _, n := range m.Nodes {
		if !n.IsGroup() {
			continue
		}
		grp := callgraph.Group{ID: n.ID, Label: n.DisplayLabel(), Kind: callgraph.ContainerKind(n.Data.Kind)}
		if grp.Kind == "" {
			grp.Kind = callgraph.KindContract
		}
		if err := g.AddGroup(grp); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "group %q", n.ID)
		}
	}
	for _, n := range m.Nodes {
		if n.IsGroup() {
			continue
		}
		if n.Type != "" && n.Type != NodeTypeFunction {
			return nil, errors.New(errors.ErrCodeInvalidModel, "node %q has unknown type %q", n.ID, n.Type)
		}
		member := callgraph.Member{
			ID:          n.ID,
			Label:       n.DisplayLabel(),
			Parent:      n.ParentID,
			Source:      n.Data.Code,
			Calls:       n.Data.Calls,
			ActiveLines: n.Data.ActiveLines,
		}
		if err := g.AddMember(member); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "node %q", n.ID)
		}
	}
	for _, e := range m.Edges {
		err := g.AddEdge(callgraph.Edge{ID: e.ID, Source: e.Source, Target: e.Target, SourceHandle: e.SourceHandle})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "edge %q", e.ID)
		}
	}
	return g, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

// memberNode converts a member without geometry. Contract data comes from
// the member's group.
func memberNode(g *callgraph.Graph, m *callgraph.Member) Node {
	n := Node{
		ID:       m.ID,
		Type:     NodeTypeFunction,
		Label:    m.Label,
		ParentID: m.Parent,
		Data: NodeData{
			Label:       m.Label,
			Code:        m.Source,
			Calls:       m.Calls,
			ActiveLines: m.ActiveLines,
		},
	}
	if grp, ok := g.Group(m.Parent); ok {
		n.Data.Contract = grp.Label
		n.Data.Kind = string(grp.Kind)
	}
	return n
}
