package source

import (
	"context"
	"regexp"
	"slices"
	"strings"

	perrors "github.com/matzehuels/poddiff/pkg/errors"
	"github.com/matzehuels/poddiff/pkg/podspec"
	"github.com/matzehuels/poddiff/pkg/version"
)

// Chooser picks one pod among several matches. It returns "" when the user
// declines to choose.
type Chooser func(ctx context.Context, query string, matches []string) (string, error)

// Locator resolves user queries against a Source.
type Locator struct {
	Source  Source
	Chooser Chooser // optional, consulted on ambiguous matches
}

// NewLocator creates a Locator without a chooser.
func NewLocator(src Source) *Locator {
	return &Locator{Source: src}
}

// Search finds the single pod matching query. The query is matched
// case-insensitively anywhere in the pod name; unless regex is set it is
// taken literally. A single match wins; otherwise an exact name match wins;
// otherwise the Chooser (if any) decides.
func (l *Locator) Search(ctx context.Context, query string, regex bool) (string, error) {
	pattern := query
	if !regex {
		pattern = regexp.QuoteMeta(query)
	}
	re, err := perrors.ValidatePattern(pattern)
	if err != nil {
		return "", err
	}

	pods, err := l.Source.Pods(ctx)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, p := range pods {
		if re.MatchString(p) {
			matches = append(matches, p)
		}
	}

	switch {
	case len(matches) == 0:
		return "", perrors.New(perrors.ErrCodePodNotFound, "Unable to find a pod with name matching `%s`", query)
	case len(matches) == 1:
		return matches[0], nil
	case slices.Contains(matches, query):
		return query, nil
	}

	if l.Chooser != nil {
		choice, err := l.Chooser(ctx, query, matches)
		if err != nil {
			return "", err
		}
		if choice != "" {
			return choice, nil
		}
	}
	return "", perrors.New(perrors.ErrCodeAmbiguousPod,
		"More than one spec found for '%s':\n%s", query, strings.Join(matches, "\n"))
}

// FindVersion returns the published spelling of ver for pod ("1.0" finds
// "1.0.0" when that is what was published).
func (l *Locator) FindVersion(ctx context.Context, pod, ver string) (string, error) {
	versions, err := l.Source.Versions(ctx, pod)
	if err != nil {
		return "", err
	}
	if slices.Contains(versions, ver) {
		return ver, nil
	}
	want, err := version.Parse(ver)
	if err != nil {
		return "", perrors.Wrap(perrors.ErrCodeInvalidVersion, err, "invalid version %q", ver)
	}
	for _, v := range versions {
		if pv, err := version.Parse(v); err == nil && pv.Compare(want) == 0 {
			return v, nil
		}
	}
	return "", perrors.New(perrors.ErrCodeVersionNotFound, "Unable to find a specification for `%s (%s)`", pod, ver)
}

// Load returns the specification of pod at ver, matching ver against the
// published versions with [Locator.FindVersion].
func (l *Locator) Load(ctx context.Context, pod, ver string) (*podspec.Spec, error) {
	published, err := l.FindVersion(ctx, pod, ver)
	if err != nil {
		return nil, err
	}
	return l.Source.Podspec(ctx, pod, published)
}

// Locate resolves query to one pod and loads its specification at ver.
func (l *Locator) Locate(ctx context.Context, query string, regex bool, ver string) (*podspec.Spec, error) {
	pod, err := l.Search(ctx, query, regex)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, pod, ver)
}
