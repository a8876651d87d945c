// Package structure reads the structural call graph emitted by the external
// extraction tool.
//
// The tool prints Graphviz DOT: one subgraph per contract, one node per
// function (ID "Contract.function"), one edge per call, plus a decorative
// legend subgraph. [Read] strips the legend and returns the nodes in
// declaration order with their innermost enclosing subgraph, and the edges
// in declaration order.
package structure

import (
	"context"
	"regexp"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/auditgraph/pkg/errors"
)

// Node is a raw structural node.
type Node struct {
	ID     string
	Label  string // empty when the DOT source sets none
	Parent string // innermost enclosing subgraph, empty at top level
}

// Edge is a raw structural edge between node IDs.
type Edge struct {
	Tail string
	Head string
}

// Graph is the structural graph.
type Graph struct {
	Nodes     []Node
	Subgraphs []string
	Edges     []Edge
}

// IsSubgraph reports whether id names a subgraph.
func (g *Graph) IsSubgraph(id string) bool {
	for _, s := range g.Subgraphs {
		if s == id {
			return true
		}
	}
	return false
}

var legendRe = regexp.MustCompile(`(?s)subgraph\s+"?cluster_01"?\s*\{.*?\}`)

// StripLegend removes the tool's legend subgraph.
func StripLegend(dot string) string {
	return legendRe.ReplaceAllString(dot, "")
}

// Read strips the legend from dot and parses the remainder.
func Read(ctx context.Context, dot string) (*Graph, error) {
	return Parse(ctx, StripLegend(dot))
}

// Parse parses DOT text into a Graph. Text Graphviz cannot parse yields an
// error with code STRUCTURAL_PARSE. The graph is read as parsed; no layout
// runs.
func Parse(ctx context.Context, dot string) (*Graph, error) {
	if strings.TrimSpace(dot) == "" {
		return nil, errors.New(errors.ErrCodeStructuralParse, "structural graph is empty")
	}
	root, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStructuralParse, err, "parse structural graph")
	}
	defer root.Close()

	g, err := walk(ctx, root)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeStructuralParse, err, "read structural graph")
	}
	return g, nil
}

// walk reads nodes and out-edges in creation order. Subgraphs are visited
// depth first, so a node's parent is the last, innermost subgraph listing it.
func walk(ctx context.Context, root *graphviz.Graph) (*Graph, error) {
	g := &Graph{}
	parentOf := make(map[string]string)
	if err := walkSubgraphs(ctx, root, g, parentOf); err != nil {
		return nil, err
	}

	for n, err := root.FirstNode(); n != nil || err != nil; n, err = root.NextNode(n) {
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, err := n.Name()
		if err != nil {
			return nil, err
		}
		label := n.Label()
		if label == `\N` || label == name {
			label = ""
		}
		g.Nodes = append(g.Nodes, Node{ID: name, Label: label, Parent: parentOf[name]})

		for e, err := root.FirstOut(n); e != nil || err != nil; e, err = root.NextOut(e) {
			if err != nil {
				return nil, err
			}
			head, err := e.Head()
			if err != nil {
				return nil, err
			}
			headName, err := head.Name()
			if err != nil {
				return nil, err
			}
			g.Edges = append(g.Edges, Edge{Tail: name, Head: headName})
		}
	}
	return g, nil
}

func walkSubgraphs(ctx context.Context, parent *graphviz.Graph, g *Graph, parentOf map[string]string) error {
	for sub, err := parent.FirstSubGraph(); sub != nil || err != nil; sub, err = sub.NextSubGraph() {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		id, err := sub.Name()
		if err != nil {
			return err
		}
		g.Subgraphs = append(g.Subgraphs, id)
		for n, err := sub.FirstNode(); n != nil || err != nil; n, err = sub.NextNode(n) {
			if err != nil {
				return err
			}
			name, err := n.Name()
			if err != nil {
				return err
			}
			parentOf[name] = id
		}
		if err := walkSubgraphs(ctx, sub, g, parentOf); err != nil {
			return err
		}
	}
	return nil
}
