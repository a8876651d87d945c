package layout

import "github.com/matzehuels/auditgraph/pkg/callgraph"

// Cluster is a connected component of members.
type Cluster struct {
	Members []string
}

// Complex reports whether the cluster needs a layered layout.
func (c Cluster) Complex() bool { return len(c.Members) >= 2 }

// Size returns the number of members.
func (c Cluster) Size() int { return len(c.Members) }

// Partition returns the connected components of the member ids under the
// edges, treating each edge as undirected. Edges touching ids outside the
// set are ignored. Components are emitted in the order their first member
// appears in ids, and every id lands in exactly one component.
func Partition(ids []string, edges []callgraph.Edge) []Cluster {
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	adj := make(map[string][]string, len(ids))
	for _, e := range edges {
		if !known[e.Source] || !known[e.Target] {
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}

	visited := make(map[string]bool, len(ids))
	var clusters []Cluster
	for _, start := range ids {
		if visited[start] {
			continue
		}
		var members []string
		stack := []string{start}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[id] {
				continue
			}
			visited[id] = true
			members = append(members, id)
			for _, next := range adj[id] {
				if !visited[next] {
					stack = append(stack, next)
				}
			}
		}
		clusters = append(clusters, Cluster{Members: members})
	}
	return clusters
}
