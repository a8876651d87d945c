package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/auditgraph/pkg/callgraph"
	"github.com/matzehuels/auditgraph/pkg/errors"
)

// =============================================================================
// Model Serialization API
// =============================================================================

// MarshalModel converts a call graph to JSON bytes.
func MarshalModel(g *callgraph.Graph) ([]byte, error) {
	return json.MarshalIndent(FromCallGraph(g), "", "  ")
}

// WriteModel writes a Model as JSON to an io.Writer.
func WriteModel(m Model, w io.Writer) error {
	return writeJSON(m, w)
}

// WriteModelFile writes a Model to a JSON file.
// The file is created with 0644 permissions.
func WriteModelFile(m Model, path string) error {
	return writeJSONFile(m, path)
}

// UnmarshalModel deserializes JSON bytes into a Model.
func UnmarshalModel(data []byte) (Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return Model{}, errors.Wrap(errors.ErrCodeInvalidModel, err, "decode model")
	}
	return m, nil
}

// ReadModel decodes a JSON model from an io.Reader into a call graph.
// Returns INVALID_MODEL errors for malformed JSON or broken references.
func ReadModel(r io.Reader) (*callgraph.Graph, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "decode model")
	}
	return ToCallGraph(m)
}

// ReadModelFile reads a JSON file and returns the decoded call graph.
func ReadModelFile(path string) (*callgraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return ReadModel(f)
}

// =============================================================================
// Diagram Serialization API
// =============================================================================

// MarshalDiagram serializes a Diagram to pretty-printed JSON bytes.
func MarshalDiagram(d Diagram) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// WriteDiagram writes a Diagram as JSON to an io.Writer.
func WriteDiagram(d Diagram, w io.Writer) error {
	return writeJSON(d, w)
}

// WriteDiagramFile writes a Diagram to a JSON file.
func WriteDiagramFile(d Diagram, path string) error {
	return writeJSONFile(d, path)
}

// UnmarshalDiagram deserializes JSON bytes into a Diagram.
func UnmarshalDiagram(data []byte) (Diagram, error) {
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return Diagram{}, fmt.Errorf("unmarshal diagram: %w", err)
	}
	return d, nil
}

// ReadDiagramFile reads a Diagram from a JSON file.
func ReadDiagramFile(path string) (Diagram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Diagram{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalDiagram(data)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func writeJSONFile(v any, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeJSON(v, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
