package diff

import (
	"strings"

	perrors "github.com/matzehuels/poddiff/pkg/errors"
	"github.com/matzehuels/poddiff/pkg/podspec"
	"github.com/matzehuels/poddiff/pkg/version"
)

// Validate checks the required arguments and the requested platforms.
// Every failure is a usage error: INVALID_INPUT, or INVALID_PLATFORM for an
// unknown platform name.
func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.Pod) == "":
		return perrors.New(perrors.ErrCodeInvalidInput, "A Pod name is required.")
	case strings.TrimSpace(r.Version1) == "":
		return perrors.New(perrors.ErrCodeInvalidInput, "An old Version is required.")
	case strings.TrimSpace(r.Version2) == "":
		return perrors.New(perrors.ErrCodeInvalidInput, "A new Version is required.")
	case r.Version1 == r.Version2:
		return perrors.New(perrors.ErrCodeInvalidInput, "Versions should be different.")
	}
	if c, err := version.Compare(r.Version1, r.Version2); err == nil && c == 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "Versions should be different.")
	}
	if _, err := podspec.ParsePlatforms(r.Platforms); err != nil {
		return err
	}
	return nil
}

// OrderVersions returns v1 and v2 as (older, newer). Unparseable versions
// are INVALID_VERSION errors.
func OrderVersions(v1, v2 string) (older, newer string, err error) {
	older, newer, err = version.Order(v1, v2)
	if err != nil {
		return "", "", perrors.New(perrors.ErrCodeInvalidVersion, "%v", err)
	}
	return older, newer, nil
}
