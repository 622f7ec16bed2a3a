// Package deps resolves the dependency closure of pods.
//
// # Overview
//
// A [Manifest] is a synthetic Podfile: a list of targets, each with a
// platform and the pods (with requirements) it asks for. [ForPod] builds the
// manifest poddiff uses: one target "<pod>_<platform>" per platform with the
// pod pinned to an exact version.
//
// [Registry] resolves a manifest against a [source.Source]. It crawls the
// graph breadth first and, for every pod, selects the highest published
// version satisfying all requirements seen so far. Pre-release versions are
// only selected when a requirement names one. It does not backtrack: a
// requirement that contradicts an earlier selection fails the resolution.
//
//	res, err := deps.NewRegistry(src, deps.Options{}).Resolve(ctx, deps.ForPod("Firebase", "10.0.0", platforms))
//	target, ok := res.Target("Firebase_ios")
//
// # Options
//
// [Options] controls resolution behavior:
//
//   - MaxDepth: maximum dependency depth (default 50)
//   - Workers: concurrent podspec fetches per level (default 8)
//   - Logger: progress callback
//
// [source.Source]: github.com/matzehuels/poddiff/pkg/source.Source
package deps
