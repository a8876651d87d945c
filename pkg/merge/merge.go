// Package merge combines the structural call graph with extracted function
// records into the unified [callgraph.Graph].
//
// Group nodes come from the structural graph's clusters, member nodes from
// its remaining nodes, and edges from its edges whose endpoints both
// survive. Source fragments and call lists are attached by function key.
package merge

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matzehuels/auditgraph/pkg/callgraph"
	"github.com/matzehuels/auditgraph/pkg/errors"
	"github.com/matzehuels/auditgraph/pkg/extract"
	"github.com/matzehuels/auditgraph/pkg/structure"
)

const (
	legendMarker = "Legend"
	keyPrefix    = "key"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Normalize replaces every non-alphanumeric character with an underscore.
func Normalize(id string) string {
	return nonAlnum.ReplaceAllString(id, "_")
}

// IsLegend reports whether a raw node belongs to the tool's legend.
func IsLegend(rawID string) bool {
	return strings.Contains(rawID, legendMarker) || strings.HasPrefix(rawID, keyPrefix)
}

// ClusterLabel strips the cluster decoration from a subgraph name.
func ClusterLabel(clusterID string) string {
	if s, ok := strings.CutPrefix(clusterID, "cluster_"); ok {
		return s
	}
	return strings.TrimPrefix(clusterID, "cluster")
}

// FunctionKey returns the record key for a raw node id.
func FunctionKey(rawID string) string {
	return strings.ReplaceAll(rawID, `"`, "")
}

// MemberID returns the unified id of the raw node at index.
func MemberID(rawID string, index int) string {
	return fmt.Sprintf("node-%s-%d", Normalize(rawID), index)
}

// Merge builds the unified graph. records may be nil, in which case no
// member carries source or calls and every group is a plain contract.
func Merge(sg *structure.Graph, records *extract.Records) (*callgraph.Graph, error) {
	if sg == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no structural graph")
	}
	m := &merger{
		out:     callgraph.New(),
		records: records,
		groups:  make(map[string]string),
		taken:   make(map[string]bool),
		members: make(map[string]string),
	}
	for i, n := range sg.Nodes {
		if err := m.addNode(sg, n, i); err != nil {
			return nil, err
		}
	}
	for i, e := range sg.Edges {
		src, okS := m.members[e.Tail]
		dst, okD := m.members[e.Head]
		if !okS || !okD {
			continue
		}
		if err := m.out.AddEdge(callgraph.Edge{ID: fmt.Sprintf("edge-%d", i), Source: src, Target: dst}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "add edge %s -> %s", e.Tail, e.Head)
		}
	}
	return m.out, nil
}

type merger struct {
	out     *callgraph.Graph
	records *extract.Records
	groups  map[string]string // cluster id -> group id
	taken   map[string]bool   // group ids in use
	members map[string]string // raw id -> member id, first occurrence
}

func (m *merger) addNode(sg *structure.Graph, n structure.Node, index int) error {
	if IsLegend(n.ID) || sg.IsSubgraph(n.ID) {
		return nil
	}
	parent := ""
	if n.Parent != "" && !IsLegend(n.Parent) {
		id, err := m.group(n.Parent)
		if err != nil {
			return err
		}
		parent = id
	}

	label := n.Label
	if label == "" {
		label = n.ID
	}
	member := callgraph.Member{
		ID:     MemberID(n.ID, index),
		Label:  label,
		Parent: parent,
	}
	if fr, ok := m.records.Lookup(FunctionKey(n.ID)); ok {
		member.Source = fr.Source
		member.Calls = fr.Calls
	}
	if err := m.out.AddMember(member); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "add member %s", n.ID)
	}
	if _, seen := m.members[n.ID]; !seen {
		m.members[n.ID] = member.ID
	}
	return nil
}

// group materializes the group for a cluster on first observation.
func (m *merger) group(clusterID string) (string, error) {
	if id, ok := m.groups[clusterID]; ok {
		return id, nil
	}
	id := Normalize(clusterID)
	for i := 2; m.taken[id]; i++ {
		id = fmt.Sprintf("%s-%d", Normalize(clusterID), i)
	}
	label := ClusterLabel(clusterID)
	grp := callgraph.Group{ID: id, Label: label, Kind: m.records.Kind(label)}
	if err := m.out.AddGroup(grp); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "add group %s", clusterID)
	}
	m.groups[clusterID] = id
	m.taken[id] = true
	return id, nil
}
