package cache

// ScopedKeyer wraps a Keyer with a prefix so that several repertoires or
// users can share one backend without seeing each other's entries.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// ExplorerKey generates a prefixed key for explorer statistics.
func (k *ScopedKeyer) ExplorerKey(database string, uci []string, opts ExplorerKeyOpts) string {
	return k.prefix + k.inner.ExplorerKey(database, uci, opts)
}

// ArtifactKey generates a prefixed key for rendered diagrams.
func (k *ScopedKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(graphHash, opts)
}
