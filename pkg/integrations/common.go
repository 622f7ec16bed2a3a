package integrations

import (
	"errors"
	"net/http"
	"time"
)

const httpTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when a pod, version or file does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}
