// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the registered hooks; the defaults are
// no-ops. Binaries register implementations at startup, for example the
// CLI installs logging hooks when run with --verbose:
//
//	func main() {
//	    observability.SetDiffHooks(&myDiffHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks around their work:
//
//	observability.Diff().OnLookupStart(ctx, pod, version)
//	// ... fetch the podspec ...
//	observability.Diff().OnLookupComplete(ctx, pod, version, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Diff Hooks
// =============================================================================

// DiffHooks receives events from the diff engine and the dependency resolver.
type DiffHooks interface {
	// Lookup events (podspec location and download)
	OnLookupStart(ctx context.Context, pod, version string)
	OnLookupComplete(ctx context.Context, pod, version string, duration time.Duration, err error)

	// Resolve events (dependency closure for one platform target)
	OnResolveStart(ctx context.Context, target string)
	OnResolveComplete(ctx context.Context, target string, specCount int, duration time.Duration, err error)

	// Render events (table, podfile, yaml, graph)
	OnRender(ctx context.Context, format string, size int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopDiffHooks is a no-op implementation of DiffHooks.
type NoopDiffHooks struct{}

func (NoopDiffHooks) OnLookupStart(context.Context, string, string)                          {}
func (NoopDiffHooks) OnLookupComplete(context.Context, string, string, time.Duration, error) {}
func (NoopDiffHooks) OnResolveStart(context.Context, string)                                 {}
func (NoopDiffHooks) OnResolveComplete(context.Context, string, int, time.Duration, error)   {}
func (NoopDiffHooks) OnRender(context.Context, string, int)                                  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	diffHooks  DiffHooks  = NoopDiffHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetDiffHooks registers custom diff hooks. A nil value is ignored.
func SetDiffHooks(h DiffHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		diffHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. A nil value is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. A nil value is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Diff returns the registered diff hooks.
func Diff() DiffHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return diffHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	diffHooks = NoopDiffHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
