package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/poddiff/pkg/cache"
)

func newTestServer(t *testing.T, backend cache.Cache) *httptest.Server {
	t.Helper()
	c, _ := newTestCLI(t)
	engine, err := c.newEngine(cache.NewNullCache(), engineOptions{})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(newServer(engine, backend, time.Minute, log.New(io.Discard)).Routes())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestServeHealthz(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, body := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `"status":"ok"`) {
		t.Errorf("body = %s", body)
	}
	if _, err := uuid.Parse(resp.Header.Get(requestIDHeader)); err != nil {
		t.Errorf("request id %q is not a UUID", resp.Header.Get(requestIDHeader))
	}
}

func TestServeRequestIDPassthrough(t *testing.T) {
	ts := newTestServer(t, nil)
	id := uuid.NewString()
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(requestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(requestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}
}

func TestServeDiffFormats(t *testing.T) {
	ts := newTestServer(t, nil)
	tests := []struct {
		query       string
		contentType string
		want        string
	}{
		{"", "text/markdown; charset=utf-8", "# X\n\n## ios 1.0.0 vs. 2.0.0\n"},
		{"?format=yaml", "application/yaml", "added:\n"},
		{"?format=json", "application/json", `"pod": "X"`},
		{"?format=podfile-newer", "text/plain; charset=utf-8", "\tpod 'X/UI', '2.0.0'\n"},
		{"?format=podfile-older&platforms=ios", "text/plain; charset=utf-8", "\tpod 'X/Core', '1.0.0'\n"},
		{"?include_dependencies=true", "text/markdown; charset=utf-8", "| Dep "},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, body := get(t, ts.URL+"/v1/diff/X/2.0.0/1.0.0"+tt.query)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("body missing %q:\n%s", tt.want, body)
			}
		})
	}
}

func TestServeDiffErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/v1/diff/X/1.0.0/1.0.0", http.StatusBadRequest, "INVALID_INPUT"},
		{"/v1/diff/X/1.0.0/2.0.0?format=pdf", http.StatusBadRequest, "INVALID_INPUT"},
		{"/v1/diff/X/1.0.0/2.0.0?include_dependencies=maybe", http.StatusBadRequest, "INVALID_INPUT"},
		{"/v1/diff/X/1.0.0/2.0.0?platforms=amiga", http.StatusBadRequest, "INVALID_PLATFORM"},
		{"/v1/diff/Nope/1.0.0/2.0.0", http.StatusNotFound, "LOOKUP_FAILED"},
		{"/v1/diff/X/1.0.0/9.0.0", http.StatusNotFound, "LOOKUP_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			var e map[string]string
			if err := json.Unmarshal([]byte(body), &e); err != nil {
				t.Fatalf("error body is not JSON: %s", body)
			}
			if e["code"] != tt.code {
				t.Errorf("code = %q, want %q", e["code"], tt.code)
			}
			if e["request_id"] == "" {
				t.Error("error body should carry the request id")
			}
		})
	}
}

func TestServeNothingToCompare(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, body := get(t, ts.URL+"/v1/diff/Y/1.0.0/2.0.0")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "There's nothing to compare for Y 1.0.0 vs. 2.0.0") {
		t.Errorf("body = %s", body)
	}
}

func TestServeCachesResponses(t *testing.T) {
	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, backend)

	_, first := get(t, ts.URL+"/v1/diff/X/1.0.0/2.0.0")
	entries := countEntries(t, backend.Dir())
	if entries == 0 {
		t.Fatal("response should be cached")
	}
	_, second := get(t, ts.URL+"/v1/diff/X/1.0.0/2.0.0")
	if first != second {
		t.Errorf("cached response differs:\n%s\n---\n%s", first, second)
	}
	if got := countEntries(t, backend.Dir()); got != entries {
		t.Errorf("entries = %d after cache hit, want %d", got, entries)
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(io.EOF); got != http.StatusInternalServerError {
		t.Errorf("statusFor(EOF) = %d", got)
	}
}
