package cache

// ScopedKeyer prefixes every key of an inner Keyer. The CLI and server
// scope keys by release so upgrades never read stale entries:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "v1.2.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer selects
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ModelKey implements Keyer.
func (k *ScopedKeyer) ModelKey(sourceHash string, opts ModelKeyOpts) string {
	return k.prefix + k.inner.ModelKey(sourceHash, opts)
}

// LayoutKey implements Keyer.
func (k *ScopedKeyer) LayoutKey(modelHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(modelHash, opts)
}
