package trunk

import (
	"bufio"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/poddiff/pkg/cache"
	"github.com/matzehuels/poddiff/pkg/integrations"
)

// DefaultBaseURL is the public trunk CDN.
const DefaultBaseURL = "https://cdn.cocoapods.org"

// Client reads pod indexes and podspecs from the trunk CDN.
// It is safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a CDN client. An empty baseURL selects [DefaultBaseURL].
func NewClient(backend cache.Cache, cacheTTL time.Duration, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		Client:  integrations.NewClient(backend, "trunk", cacheTTL, nil),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// BaseURL returns the CDN root the client reads from.
func (c *Client) BaseURL() string { return c.baseURL }

// Shard returns the three directory levels used for pod: the first three
// hex characters of md5(pod).
func Shard(pod string) []string {
	sum := md5.Sum([]byte(pod))
	h := hex.EncodeToString(sum[:])
	return []string{h[0:1], h[1:2], h[2:3]}
}

// AllPods returns every pod name published on trunk.
func (c *Client) AllPods(ctx context.Context, refresh bool) ([]string, error) {
	var pods []string
	err := c.Cached(ctx, "all_pods.txt", refresh, &pods, func() error {
		text, err := c.GetText(ctx, c.baseURL+"/all_pods.txt")
		if err != nil {
			return err
		}
		pods = lines(text)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch pod index: %w", err)
	}
	return pods, nil
}

// Versions returns the published versions of pod in index order.
// It returns [integrations.ErrNotFound] when the pod is not in its shard.
func (c *Client) Versions(ctx context.Context, pod string, refresh bool) ([]string, error) {
	file := "all_pods_versions_" + strings.Join(Shard(pod), "_") + ".txt"

	var shard map[string][]string
	err := c.Cached(ctx, file, refresh, &shard, func() error {
		text, err := c.GetText(ctx, c.baseURL+"/"+file)
		if err != nil {
			return err
		}
		shard = parseShard(text)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch versions of %s: %w", pod, err)
	}
	versions, ok := shard[pod]
	if !ok {
		return nil, fmt.Errorf("%w: pod %s", integrations.ErrNotFound, pod)
	}
	return versions, nil
}

// Podspec returns the raw .podspec.json document of pod at version.
func (c *Client) Podspec(ctx context.Context, pod, version string, refresh bool) ([]byte, error) {
	var raw json.RawMessage
	err := c.Cached(ctx, pod+"/"+version, refresh, &raw, func() error {
		data, err := c.GetBytes(ctx, c.SpecURL(pod, version))
		if err != nil {
			return err
		}
		if !json.Valid(data) {
			return fmt.Errorf("podspec %s %s is not valid JSON", pod, version)
		}
		raw = data
		return nil
	})
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: podspec %s (%s)", err, pod, version)
		}
		return nil, err
	}
	return raw, nil
}

// SpecURL returns the CDN location of a podspec.
func (c *Client) SpecURL(pod, version string) string {
	parts := append([]string{c.baseURL, "Specs"}, Shard(pod)...)
	parts = append(parts,
		url.PathEscape(pod),
		url.PathEscape(version),
		url.PathEscape(pod)+".podspec.json",
	)
	return strings.Join(parts, "/")
}

// parseShard decodes "Pod/1.0.0/1.1.0" lines.
func parseShard(text string) map[string][]string {
	out := make(map[string][]string)
	for _, line := range lines(text) {
		fields := strings.Split(line, "/")
		out[fields[0]] = fields[1:]
	}
	return out
}

func lines(text string) []string {
	var out []string
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out
}
