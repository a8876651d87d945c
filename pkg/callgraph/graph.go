package callgraph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddGroup] and [Graph.AddMember]
	// when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned when a group or member with the same ID
	// already exists. IDs are shared between groups and members.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownParent is returned by [Graph.AddMember] when the member's
	// parent group does not exist.
	ErrUnknownParent = errors.New("unknown parent group")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the source
	// node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the target
	// node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrDuplicateEdgeID is returned by [Graph.AddEdge] when an edge with the
	// same ID already exists.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that doesn't exist.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")
)

// ContainerKind classifies a container declaration.
type ContainerKind string

const (
	// KindContract is an ordinary (possibly abstract) contract.
	KindContract ContainerKind = "contract"
	// KindInterface is an interface.
	KindInterface ContainerKind = "interface"
	// KindLibrary is a library.
	KindLibrary ContainerKind = "library"
	// KindCluster is a layout cluster wrapper created by the packer.
	KindCluster ContainerKind = "cluster"
)

// Call is one call site inside a function body. Line is relative to the
// function's first line, so 0 is the declaration line.
type Call struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

// Group is a container node.
type Group struct {
	ID    string
	Label string
	Kind  ContainerKind
}

// Member is a function node.
type Member struct {
	ID     string
	Label  string
	Parent string  // group ID, empty for free-standing members
	Source *string // nil when the source fragment is unavailable
	Calls  []Call

	// ActiveLines lists the relative lines that originate an edge in code
	// view. Set by the view stage.
	ActiveLines []int
}

// HasSource reports whether a source fragment is attached.
func (m *Member) HasSource() bool { return m.Source != nil }

// Edge is a directed call relationship between two members.
type Edge struct {
	ID     string
	Source string
	Target string

	// SourceHandle names the anchor on the source node, e.g. "line-3" when
	// edges are split per call site.
	SourceHandle string
}

// Graph is the unified node/edge model. The zero value is not usable; use New.
// Graph is not safe for concurrent mutation.
type Graph struct {
	groups    []*Group
	members   []*Member
	edges     []Edge
	groupByID map[string]*Group
	memberIdx map[string]*Member
	edgeIDs   map[string]bool
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		groupByID: make(map[string]*Group),
		memberIdx: make(map[string]*Member),
		edgeIDs:   make(map[string]bool),
	}
}

func (g *Graph) hasNode(id string) bool {
	_, isGroup := g.groupByID[id]
	_, isMember := g.memberIdx[id]
	return isGroup || isMember
}

// AddGroup adds a container node.
func (g *Graph) AddGroup(grp Group) error {
	if grp.ID == "" {
		return ErrInvalidNodeID
	}
	if g.hasNode(grp.ID) {
		return ErrDuplicateNodeID
	}
	n := grp
	g.groups = append(g.groups, &n)
	g.groupByID[n.ID] = &n
	return nil
}

// AddMember adds a function node. A non-empty Parent must name an existing
// group.
func (g *Graph) AddMember(m Member) error {
	if m.ID == "" {
		return ErrInvalidNodeID
	}
	if g.hasNode(m.ID) {
		return ErrDuplicateNodeID
	}
	if m.Parent != "" {
		if _, ok := g.groupByID[m.Parent]; !ok {
			return ErrUnknownParent
		}
	}
	n := m
	g.members = append(g.members, &n)
	g.memberIdx[n.ID] = &n
	return nil
}

// AddEdge adds a directed edge between two existing nodes. Multiple edges
// between the same pair are allowed.
func (g *Graph) AddEdge(e Edge) error {
	if e.ID == "" {
		return ErrInvalidNodeID
	}
	if g.edgeIDs[e.ID] {
		return ErrDuplicateEdgeID
	}
	if !g.hasNode(e.Source) {
		return ErrUnknownSourceNode
	}
	if !g.hasNode(e.Target) {
		return ErrUnknownTargetNode
	}
	g.edges = append(g.edges, e)
	g.edgeIDs[e.ID] = true
	return nil
}

// Groups returns the groups in insertion order.
func (g *Graph) Groups() []*Group { return slices.Clone(g.groups) }

// Members returns the members in insertion order.
func (g *Graph) Members() []*Member { return slices.Clone(g.members) }

// Edges returns a copy of the edge list in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Group returns the group with the given ID.
func (g *Graph) Group(id string) (*Group, bool) {
	grp, ok := g.groupByID[id]
	return grp, ok
}

// Member returns the member with the given ID.
func (g *Graph) Member(id string) (*Member, bool) {
	m, ok := g.memberIdx[id]
	return m, ok
}

// Children returns the members parented by the given group.
func (g *Graph) Children(groupID string) []*Member {
	var out []*Member
	for _, m := range g.members {
		if m.Parent == groupID {
			out = append(out, m)
		}
	}
	return out
}

// NodeCount returns the number of groups plus members.
func (g *Graph) NodeCount() int { return len(g.groups) + len(g.members) }

// MemberCount returns the number of members.
func (g *Graph) MemberCount() int { return len(g.members) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Validate checks referential integrity: every member parent names a group
// and every edge endpoint names a node.
func (g *Graph) Validate() error {
	for _, m := range g.members {
		if m.Parent == "" {
			continue
		}
		if _, ok := g.groupByID[m.Parent]; !ok {
			return ErrUnknownParent
		}
	}
	for _, e := range g.edges {
		if !g.hasNode(e.Source) || !g.hasNode(e.Target) {
			return ErrInvalidEdgeEndpoint
		}
	}
	return nil
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	out := New()
	for _, grp := range g.groups {
		_ = out.AddGroup(*grp)
	}
	for _, m := range g.members {
		cp := *m
		cp.Calls = slices.Clone(m.Calls)
		cp.ActiveLines = slices.Clone(m.ActiveLines)
		_ = out.AddMember(cp)
	}
	for _, e := range g.edges {
		_ = out.AddEdge(e)
	}
	return out
}
