package render

import (
	"encoding/json"
	"fmt"
)

// GraphJSON is the subset of Graphviz's json output that auditgraph reads.
// Attribute values are strings.
type GraphJSON struct {
	Name        string       `json:"name"`
	BB          string       `json:"bb"`
	SubgraphCnt int          `json:"_subgraph_cnt"`
	Objects     []ObjectJSON `json:"objects"`
	Edges       []EdgeJSON   `json:"edges"`
}

// ObjectJSON is a subgraph or a node. The first SubgraphCnt objects are
// subgraphs.
type ObjectJSON struct {
	GVID   int    `json:"_gvid"`
	Name   string `json:"name"`
	Label  string `json:"label"`
	Pos    string `json:"pos"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

// EdgeJSON is an edge; Tail and Head are node _gvid values.
type EdgeJSON struct {
	GVID int    `json:"_gvid"`
	ID   string `json:"id"`
	Tail int    `json:"tail"`
	Head int    `json:"head"`
	Pos  string `json:"pos"`
}

// NodeObjects returns the node entries of Objects, in declaration order.
func (g *GraphJSON) NodeObjects() []ObjectJSON {
	n := min(max(g.SubgraphCnt, 0), len(g.Objects))
	return g.Objects[n:]
}

// DecodeJSON decodes Graphviz JSON output.
func DecodeJSON(data []byte) (*GraphJSON, error) {
	var g GraphJSON
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode graphviz json: %w", err)
	}
	return &g, nil
}
