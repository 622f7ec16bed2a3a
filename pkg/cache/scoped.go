package cache

// ScopedKeyer wraps a Keyer with a prefix. The CLI scopes keys by source
// URL so that two CDN mirrors sharing one cache never see each other's
// responses:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "cdn.cocoapods.org:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer falls back to [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}
