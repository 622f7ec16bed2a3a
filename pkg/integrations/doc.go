// Package integrations provides HTTP clients for pod registries.
//
// # Overview
//
// The [Client] type carries the shared plumbing: default headers, mapping
// of HTTP status codes to [ErrNotFound] and [ErrNetwork], retries with
// exponential backoff for transient failures, and response caching through
// any [cache.Cache] backend. Registry specific clients embed it:
//
//   - [trunk]: the CocoaPods trunk CDN (cdn.cocoapods.org)
//
// # Client Pattern
//
//	c := trunk.NewClient(fileCache, 24*time.Hour, trunk.DefaultBaseURL)
//	versions, err := c.Versions(ctx, "Firebase", false) // false = use cache
//
// [trunk]: github.com/matzehuels/poddiff/pkg/integrations/trunk
// [cache.Cache]: github.com/matzehuels/poddiff/pkg/cache.Cache
package integrations
