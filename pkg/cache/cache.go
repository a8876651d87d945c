// Package cache stores pipeline results keyed by content hash.
//
// Two stages are cached: the merged call graph of a set of sources (model
// keys) and the diagram of a model under given layout options (layout
// keys). Backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry under the user cache directory,
//     for CLI use
//   - [RedisCache]: shared cache for multi-instance servers
//   - [NullCache]: caching disabled
//
// A [Keyer] derives keys; [ScopedKeyer] namespaces another Keyer.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry kind.
const (
	ModelTTL  = 7 * 24 * time.Hour
	LayoutTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ModelKeyOpts are the inputs besides source content that change a model.
type ModelKeyOpts struct {
	Tool     string   `json:"tool,omitempty"`
	ToolArgs []string `json:"tool_args,omitempty"`
	DOTHash  string   `json:"dot_hash,omitempty"` // set when a pre-generated graph is supplied
}

// LayoutKeyOpts are the options that change a diagram.
type LayoutKeyOpts struct {
	CodeView        bool     `json:"code_view"`
	Direction       string   `json:"direction"`
	Hidden          []string `json:"hidden,omitempty"`
	MaxClusterNodes int      `json:"max_cluster_nodes"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ModelKey keys the merged call graph of sources with the given hash.
	ModelKey(sourceHash string, opts ModelKeyOpts) string
	// LayoutKey keys the diagram of a model with the given hash.
	LayoutKey(modelHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer produces "model:<sha256>" and "layout:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ModelKey implements Keyer.
func (DefaultKeyer) ModelKey(sourceHash string, opts ModelKeyOpts) string {
	return hashKey("model", sourceHash, opts)
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(modelHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", modelHash, opts)
}
