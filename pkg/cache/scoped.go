package cache

// ScopedKeyer wraps a Keyer with a prefix so several stores can share one
// cache backend without their keys colliding.
//
// Example usage:
//
//	// One namespace per configured store
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "sqlite:/var/lib/linkgraph/edges.db:")
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

// ThreadKey generates a prefixed key for resolved thread caching.
func (k *ScopedKeyer) ThreadKey(origin, revision string, opts ThreadKeyOpts) string {
	return k.prefix + k.inner.ThreadKey(origin, revision, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(threadHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(threadHash, opts)
}
