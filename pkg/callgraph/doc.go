// Package callgraph provides the unified node/edge model of a Solidity
// project's call graph.
//
// # Overview
//
// A [Graph] holds two kinds of nodes and one kind of edge:
//
//   - [Group]: a container (contract, interface or library), or a layout
//     cluster wrapper once the graph has been laid out
//   - [Member]: a function-like member, optionally parented by a group and
//     carrying its source fragment and outgoing calls
//   - [Edge]: a directed call relationship between two members
//
// Node IDs are unique across groups and members. Members may only reference
// existing groups and edges may only reference existing nodes; [Graph.Validate]
// re-checks both after bulk construction.
//
// # Basic Usage
//
//	g := callgraph.New()
//	g.AddGroup(callgraph.Group{ID: "Token", Label: "Token", Kind: callgraph.KindContract})
//	g.AddMember(callgraph.Member{ID: "node-Token_mint-0", Label: "mint", Parent: "Token"})
//	g.AddMember(callgraph.Member{ID: "node-Token_burn-1", Label: "burn", Parent: "Token"})
//	g.AddEdge(callgraph.Edge{ID: "edge-0", Source: "node-Token_mint-0", Target: "node-Token_burn-1"})
//
// A Graph is built once per request and then treated as immutable: the view
// and layout stages derive new graphs instead of mutating their input.
package callgraph
