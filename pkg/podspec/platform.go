package podspec

import (
	"slices"
	"strings"

	"github.com/matzehuels/poddiff/pkg/errors"
)

// Platform is a CocoaPods target platform.
type Platform string

const (
	IOS      Platform = "ios"
	OSX      Platform = "osx"
	TVOS     Platform = "tvos"
	WatchOS  Platform = "watchos"
	VisionOS Platform = "visionos"
)

// Platforms lists every known platform in canonical order.
var Platforms = []Platform{IOS, OSX, TVOS, WatchOS, VisionOS}

var aliases = map[string]Platform{
	"ios":      IOS,
	"osx":      OSX,
	"macos":    OSX,
	"tvos":     TVOS,
	"watchos":  WatchOS,
	"visionos": VisionOS,
}

// ParsePlatform converts a user supplied platform name to a Platform.
// Matching is case-insensitive; unknown names yield an INVALID_PLATFORM error.
func ParsePlatform(name string) (Platform, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if p, ok := aliases[key]; ok {
		return p, nil
	}
	return "", errors.New(errors.ErrCodeInvalidPlatform,
		"unknown platform %q (expected one of %s)", name, strings.Join(names(), ", "))
}

// ParsePlatforms parses a list of names, dropping duplicates but keeping order.
func ParsePlatforms(list []string) ([]Platform, error) {
	out := make([]Platform, 0, len(list))
	seen := make(map[Platform]bool, len(list))
	for _, name := range list {
		if strings.TrimSpace(name) == "" {
			continue
		}
		p, err := ParsePlatform(name)
		if err != nil {
			return nil, err
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}

// String returns the platform name as used in Podfiles.
func (p Platform) String() string { return string(p) }

// Known reports whether p is one of [Platforms].
func (p Platform) Known() bool {
	return slices.Contains(Platforms, p)
}

func names() []string {
	out := make([]string, len(Platforms))
	for i, p := range Platforms {
		out[i] = string(p)
	}
	return out
}
