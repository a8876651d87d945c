package layout

import (
	"context"
	"fmt"
	"math"
)

// Point is a canvas coordinate, y growing downward.
type Point struct {
	X, Y float64
}

// SolveNode is a node to be placed.
type SolveNode struct {
	ID     string
	Width  float64
	Height float64
}

// SolveEdge is a directed edge between two SolveNodes.
type SolveEdge struct {
	ID     string
	Source string
	Target string
}

// Subgraph is one complex component handed to a Solver.
type Subgraph struct {
	Nodes []SolveNode
	Edges []SolveEdge
}

// Solution holds local coordinates for one component. Node points are
// top-left corners; edge points are bend points in the same space.
type Solution struct {
	Nodes map[string]Point
	Edges map[string][]Point
}

// Solver computes a layered layout for one component.
type Solver interface {
	Solve(ctx context.Context, sub Subgraph, cfg Config) (*Solution, error)
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(ctx context.Context, sub Subgraph, cfg Config) (*Solution, error)

// Solve calls f.
func (f SolverFunc) Solve(ctx context.Context, sub Subgraph, cfg Config) (*Solution, error) {
	return f(ctx, sub, cfg)
}

// check verifies that a solution places every node of sub.
func (s *Solution) check(sub Subgraph) error {
	if s == nil {
		return fmt.Errorf("solver returned no solution")
	}
	for _, n := range sub.Nodes {
		p, ok := s.Nodes[n.ID]
		if !ok {
			return fmt.Errorf("solver did not place node %s", n.ID)
		}
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return fmt.Errorf("solver placed node %s at an invalid position", n.ID)
		}
	}
	return nil
}

// gridSolution places the nodes of sub row-major on a square-ish grid,
// leaving edges without bend points.
func gridSolution(sub Subgraph, spacing Spacing) *Solution {
	sol := &Solution{Nodes: make(map[string]Point, len(sub.Nodes)), Edges: map[string][]Point{}}
	if len(sub.Nodes) == 0 {
		return sol
	}
	var maxW, maxH float64
	for _, n := range sub.Nodes {
		maxW = max(maxW, n.Width)
		maxH = max(maxH, n.Height)
	}
	cols := int(math.Ceil(math.Sqrt(float64(len(sub.Nodes)))))
	pitchX := maxW + spacing.NodeNode
	pitchY := maxH + spacing.NodeNode
	for i, n := range sub.Nodes {
		sol.Nodes[n.ID] = Point{X: float64(i%cols) * pitchX, Y: float64(i/cols) * pitchY}
	}
	return sol
}
