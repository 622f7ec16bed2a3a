package diff

import (
	"slices"

	"github.com/matzehuels/poddiff/pkg/podspec"
)

// NormalizePlatforms returns the platforms to compare. A non-empty requested
// list is used as given (parsed, duplicates removed) and ignores what the
// packages support. An empty list yields the union of a's and b's platforms
// in first-seen order.
func NormalizePlatforms(requested []string, a, b *Package) ([]podspec.Platform, error) {
	if len(requested) > 0 {
		return podspec.ParsePlatforms(requested)
	}
	var out []podspec.Platform
	for _, pkg := range []*Package{a, b} {
		if pkg == nil {
			continue
		}
		for _, p := range pkg.Platforms {
			if !slices.Contains(out, p) {
				out = append(out, p)
			}
		}
	}
	return out, nil
}
