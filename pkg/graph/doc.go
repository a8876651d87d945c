// Package graph provides the serialization types for call graphs and
// diagrams.
//
// This package defines auditgraph's wire format, used for JSON files, API
// responses and caching.
//
// # Architecture
//
// The package sits at the serialization boundary:
//
//   - [Model], [Diagram]: Serialization types (this package)
//   - pkg/callgraph.Graph: Internal call graph
//   - pkg/layout.Result: Internal layout (positions, bend points)
//
// Use [FromCallGraph]/[ToCallGraph] and [NewDiagram] to convert between them.
//
// # Core Types
//
//   - [Model]: Merged call graph with contract groups, before layout
//   - [Diagram]: Laid-out graph with cluster groups and geometry
//   - [Node], [Edge]: Shared structural types
//   - [Contract]: Per-contract summary for filter controls
//
// # Model Serialization
//
// Models use a node-link JSON format:
//
//	{
//	  "nodes": [
//	    {"id": "clusterToken", "type": "group", "label": "Token", "data": {"label": "Token", "kind": "contract"}},
//	    {"id": "node-Token_transfer-0", "type": "function", "label": "transfer", "parentId": "clusterToken", ...}
//	  ],
//	  "edges": [{"id": "edge-0", "source": "node-Token_transfer-0", "target": "node-Token__move-1", "animated": false}],
//	  "contracts": [{"name": "Token", "kind": "contract", "isInterface": false, "functionCount": 2}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadModelFile("model.json")          // File → call graph
//	graph.WriteModelFile(graph.FromCallGraph(g), path)  // call graph → File
//	data, _ := graph.MarshalModel(g)                   // call graph → []byte
//
// # Diagram Serialization
//
// Diagrams add geometry. Function nodes inside a cluster have a position
// relative to the cluster group; every node also has an absolute position.
// Edges carry a rendering type, an interaction width and bend points in
// canvas coordinates.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
