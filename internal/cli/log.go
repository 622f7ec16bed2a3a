package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Compared Firebase 9.0.0 and 10.0.0 (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability hooks
// =============================================================================

// logHooks writes engine, cache and HTTP events to a logger at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnLookupStart(_ context.Context, pod, version string) {
	h.logger.Debug("lookup", "pod", pod, "version", version)
}

func (h *logHooks) OnLookupComplete(_ context.Context, pod, version string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("lookup failed", "pod", pod, "version", version, "error", err)
		return
	}
	h.logger.Debug("lookup done", "pod", pod, "version", version, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnResolveStart(_ context.Context, target string) {
	h.logger.Debug("resolve", "target", target)
}

func (h *logHooks) OnResolveComplete(_ context.Context, target string, specs int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("resolve failed", "target", target, "error", err)
		return
	}
	h.logger.Debug("resolve done", "target", target, "specs", specs, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnRender(_ context.Context, format string, size int) {
	h.logger.Debug("render", "format", format, "bytes", size)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "error", err)
}
