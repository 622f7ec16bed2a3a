package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Zero is the version used when a minimum version is not defined.
const Zero = "0"

var versionRe = regexp.MustCompile(`^(\d+(?:\.\d+)*)(?:-([0-9A-Za-z.-]+))?(?:\+[0-9A-Za-z.-]+)?$`)

// Version is a parsed pod version.
type Version struct {
	Segments   []int  // Numeric release segments (at least one)
	Prerelease string // Pre-release identifiers without the leading '-'
	Original   string // Input string, trimmed
}

// Parse parses a pod version string.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("malformed version %q", s)
	}
	parts := strings.Split(m[1], ".")
	segs := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("malformed version %q: %w", s, err)
		}
		segs[i] = n
	}
	v := Version{Segments: segs, Prerelease: m[2], Original: s}
	if v.Prerelease != "" && !semver.IsValid("v0.0.0-"+v.Prerelease) {
		return Version{}, fmt.Errorf("malformed pre-release in version %q", s)
	}
	return v, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the original version string.
func (v Version) String() string { return v.Original }

// IsPrerelease reports whether v carries pre-release identifiers.
func (v Version) IsPrerelease() bool { return v.Prerelease != "" }

// Compare returns -1, 0 or 1 when v is lower than, equal to or higher than o.
func (v Version) Compare(o Version) int {
	if a, b := v.semver(), o.semver(); a != "" && b != "" {
		return semver.Compare(a, b)
	}
	n := max(len(v.Segments), len(o.Segments))
	for i := range n {
		a, b := segment(v.Segments, i), segment(o.Segments, i)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return comparePrerelease(v.Prerelease, o.Prerelease)
}

// semver returns the canonical semantic version form of v, or "" when v has
// more than three release segments.
func (v Version) semver() string {
	if len(v.Segments) > 3 {
		return ""
	}
	s := fmt.Sprintf("v%d.%d.%d", segment(v.Segments, 0), segment(v.Segments, 1), segment(v.Segments, 2))
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	return s
}

func segment(segs []int, i int) int {
	if i < len(segs) {
		return segs[i]
	}
	return 0
}

func comparePrerelease(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	return semver.Compare("v0.0.0-"+a, "v0.0.0-"+b)
}

// Compare parses and compares two version strings.
func Compare(a, b string) (int, error) {
	va, err := Parse(a)
	if err != nil {
		return 0, err
	}
	vb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}

// Order returns v1 and v2 sorted by precedence: when v2 is lower than v1 the
// pair is swapped. Callers reject equal versions before ordering them.
func Order(v1, v2 string) (older, newer string, err error) {
	c, err := Compare(v1, v2)
	if err != nil {
		return "", "", err
	}
	if c > 0 {
		return v2, v1, nil
	}
	return v1, v2, nil
}

// Max returns the highest of the given version strings. Empty strings count
// as [Zero]. Unparseable entries are ignored; if none parse, Max returns Zero.
func Max(versions ...string) string {
	best := MustParse(Zero)
	for _, s := range versions {
		if s == "" {
			continue
		}
		v, err := Parse(s)
		if err != nil {
			continue
		}
		if v.Compare(best) > 0 {
			best = v
		}
	}
	return best.Original
}
