// Package source locates published podspecs.
//
// A [Source] lists pod names and versions and returns decoded specs. Two
// implementations exist:
//
//   - [CDN]: the CocoaPods trunk CDN, with responses cached
//   - [Local]: a checkout of a specs repository (sharded or flat layout)
//
// [Locator] turns a user query (a name or a regular expression) into
// exactly one pod, following the matching rules of `pod spec which`.
package source

import (
	"context"
	"slices"

	"github.com/matzehuels/poddiff/pkg/podspec"
	"github.com/matzehuels/poddiff/pkg/version"
)

// Source provides pod metadata.
type Source interface {
	// Name identifies the source in messages (e.g. "trunk", a directory).
	Name() string
	// Pods lists every pod name.
	Pods(ctx context.Context) ([]string, error)
	// Versions lists the published versions of pod.
	Versions(ctx context.Context, pod string) ([]string, error)
	// Podspec returns the specification of pod at version.
	Podspec(ctx context.Context, pod, version string) (*podspec.Spec, error)
}

// SortVersions orders version strings ascending; unparseable entries go last
// in their original order.
func SortVersions(versions []string) []string {
	out := slices.Clone(versions)
	slices.SortStableFunc(out, func(a, b string) int {
		va, errA := version.Parse(a)
		vb, errB := version.Parse(b)
		switch {
		case errA != nil && errB != nil:
			return 0
		case errA != nil:
			return 1
		case errB != nil:
			return -1
		}
		return va.Compare(vb)
	})
	return out
}
