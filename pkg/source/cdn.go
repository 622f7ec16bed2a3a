package source

import (
	"context"
	"errors"

	perrors "github.com/matzehuels/poddiff/pkg/errors"
	"github.com/matzehuels/poddiff/pkg/integrations"
	"github.com/matzehuels/poddiff/pkg/integrations/trunk"
	"github.com/matzehuels/poddiff/pkg/podspec"
)

// CDN reads pods from the trunk CDN.
type CDN struct {
	client  *trunk.Client
	refresh bool
}

// NewCDN wraps a trunk client. With refresh set, cached responses are
// bypassed (and overwritten).
func NewCDN(client *trunk.Client, refresh bool) *CDN {
	return &CDN{client: client, refresh: refresh}
}

// Name implements Source.
func (s *CDN) Name() string { return s.client.BaseURL() }

// Pods implements Source.
func (s *CDN) Pods(ctx context.Context) ([]string, error) {
	pods, err := s.client.AllPods(ctx, s.refresh)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeNetwork, err, "list pods on %s", s.Name())
	}
	return pods, nil
}

// Versions implements Source.
func (s *CDN) Versions(ctx context.Context, pod string) ([]string, error) {
	versions, err := s.client.Versions(ctx, pod, s.refresh)
	if errors.Is(err, integrations.ErrNotFound) {
		return nil, perrors.Wrap(perrors.ErrCodePodNotFound, err, "Unable to find a pod with name `%s`", pod)
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeNetwork, err, "list versions of %s", pod)
	}
	return versions, nil
}

// Podspec implements Source.
func (s *CDN) Podspec(ctx context.Context, pod, version string) (*podspec.Spec, error) {
	data, err := s.client.Podspec(ctx, pod, version, s.refresh)
	if errors.Is(err, integrations.ErrNotFound) {
		return nil, perrors.Wrap(perrors.ErrCodeVersionNotFound, err, "Unable to find a specification for `%s (%s)`", pod, version)
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeNetwork, err, "fetch podspec %s (%s)", pod, version)
	}
	spec, err := podspec.Parse(data)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeLookup, err, "invalid podspec %s (%s)", pod, version)
	}
	return spec, nil
}

var _ Source = (*CDN)(nil)
