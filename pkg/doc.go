// Package pkg provides the libraries behind poddiff, a tool that compares two
// versions of a CocoaPods pod.
//
// # Overview
//
// For every platform the pod supports, poddiff lists the subspecs (and
// optionally the dependencies) of each version with the minimum platform
// version they require, renders the comparison as a markdown table, and can
// write Podfiles that install exactly those components. The pkg directory is
// organized into these areas:
//
//  1. [diff] - The comparison engine, table and Podfile rendering
//  2. [podspec], [version] - The podspec model and CocoaPods version rules
//  3. [source], [integrations/trunk] - Where podspecs come from (CDN or a Specs checkout)
//  4. [deps], [dag] - Dependency resolution into per-platform graphs
//  5. [graph] - Graph serialization (JSON, DOT, SVG)
//  6. [cache], [observability], [errors] - Infrastructure
//
// # Architecture
//
// The typical data flow through poddiff:
//
//	POD_NAME OLDER NEWER
//	         ↓
//	    [source] Locator (search the index, pick the exact versions)
//	         ↓
//	    [podspec] package (both versions, default subspecs cleared)
//	         ↓
//	    [deps] package (per-platform resolution, only with dependencies)
//	         ↓
//	    [diff] package (rows per platform)
//	         ↓
//	    markdown table / Podfiles / YAML / graph
//
// # Quick Start
//
//	import (
//	    "context"
//
//	    "github.com/matzehuels/poddiff/pkg/cache"
//	    "github.com/matzehuels/poddiff/pkg/deps"
//	    "github.com/matzehuels/poddiff/pkg/diff"
//	    "github.com/matzehuels/poddiff/pkg/integrations/trunk"
//	    "github.com/matzehuels/poddiff/pkg/source"
//	)
//
//	src := source.NewCDN(trunk.NewClient(cache.NewNullCache(), 0, ""), false)
//	engine := diff.NewEngine(source.NewLocator(src), deps.NewRegistry(src, deps.Options{}), nil)
//
//	res, err := engine.Run(context.Background(), diff.Request{
//	    Pod:      "Firebase",
//	    Version1: "10.0.0",
//	    Version2: "9.0.0",
//	})
//	if err != nil {
//	    return err
//	}
//	if res.Warning != "" {
//	    fmt.Println(res.Warning)
//	    return nil
//	}
//	fmt.Print(res.Table())
//	newerPodfile := res.Podfile(diff.Newer)
//
// # Errors
//
// Every package returns [errors.Error] values carrying a code. Usage
// problems (missing arguments, equal versions, bad platforms) are separated
// from lookup failures (unknown pod or version) and resolution failures, so
// callers such as the CLI and the HTTP server can react to each.
//
// [diff]: https://pkg.go.dev/github.com/matzehuels/poddiff/pkg/diff
// [podspec]: https://pkg.go.dev/github.com/matzehuels/poddiff/pkg/podspec
// [version]: https://pkg.go.dev/github.com/matzehuels/poddiff/pkg/version
// [source]: https://pkg.go.dev/github.com/matzehuels/poddiff/pkg/source
// [integrations/trunk]: https://pkg.go.dev/github.com/matzehuels/poddiff/pkg/integrations/trunk
// [deps]: https://pkg.go.dev/github.com/matzehuels/poddiff/pkg/deps
// [dag]: https://pkg.go.dev/github.com/matzehuels/poddiff/pkg/dag
// [graph]: https://pkg.go.dev/github.com/matzehuels/poddiff/pkg/graph
// [cache]: https://pkg.go.dev/github.com/matzehuels/poddiff/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/poddiff/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/poddiff/pkg/errors
// [errors.Error]: https://pkg.go.dev/github.com/matzehuels/poddiff/pkg/errors#Error
package pkg
