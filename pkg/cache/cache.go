// Package cache provides the byte-level caches used for registry responses.
//
// Backends:
//   - [FileCache]: JSON entry files under the user cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: caching disabled (--no-cache)
//
// Keys are derived with a [Keyer] so that different sources never collide.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
// A TTL of 0 stores the value without expiration.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Clear empties c when the backend supports it.
func Clear(ctx context.Context, c Cache) error {
	if cl, ok := c.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return nil
}

// Keyer derives cache keys.
type Keyer interface {
	// HTTPKey returns the key for a cached HTTP response.
	HTTPKey(namespace, key string) string
}

// DefaultKeyer produces "http:<namespace>:<key>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey implements Keyer.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}
