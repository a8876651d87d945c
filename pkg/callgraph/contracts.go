package callgraph

// Contract summarizes one container for filter controls.
type Contract struct {
	Name          string
	Kind          ContainerKind
	FunctionCount int
}

// IsInterface reports whether the container is an interface.
func (c Contract) IsInterface() bool { return c.Kind == KindInterface }

// Contracts returns one summary per group in insertion order. Cluster
// wrapper groups are skipped.
func (g *Graph) Contracts() []Contract {
	counts := make(map[string]int, len(g.groups))
	for _, m := range g.members {
		if m.Parent != "" {
			counts[m.Parent]++
		}
	}
	out := make([]Contract, 0, len(g.groups))
	for _, grp := range g.groups {
		if grp.Kind == KindCluster {
			continue
		}
		out = append(out, Contract{Name: grp.Label, Kind: grp.Kind, FunctionCount: counts[grp.ID]})
	}
	return out
}
