// Package layout positions a call graph on a 2-D canvas.
//
// Layout runs in three steps:
//
//  1. [Partition] splits the members into connected components, treating
//     every call edge as undirected.
//  2. Each complex component (two or more members) is handed to a [Solver]
//     for a layered layout. [GraphvizSolver] uses the Graphviz dot engine:
//     network-simplex ranking and placement, layer-sweep crossing
//     minimization, spline routing.
//  3. [Pack] wraps every solved component in a group box and lays the
//     groups out along the flow direction, followed by a grid of the
//     singleton members.
//
// A component whose solve fails, times out or exceeds the size guard is
// laid out on a fallback grid inside its group and reported as a layout
// warning. Layout never fails because of a single component.
//
// [Engine] ties the steps together.
package layout
