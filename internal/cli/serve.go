package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/poddiff/pkg/buildinfo"
	"github.com/matzehuels/poddiff/pkg/cache"
	"github.com/matzehuels/poddiff/pkg/diff"
	perrors "github.com/matzehuels/poddiff/pkg/errors"
	"github.com/matzehuels/poddiff/pkg/observability"
)

// Response formats of the HTTP API.
const (
	formatMarkdown     = "markdown"
	formatYAML         = "yaml"
	formatJSON         = "json"
	formatOlderPodfile = "podfile-older"
	formatNewerPodfile = "podfile-newer"
)

const requestIDHeader = "X-Request-Id"

// serveCommand creates the serve command, which exposes diffs over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		opts engineOptions
		addr string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve pod diffs over HTTP",
		Long: `Serve pod diffs over HTTP.

  GET /v1/diff/{pod}/{older}/{newer}?platforms=ios,osx&include_dependencies=true&format=markdown
  GET /healthz

format is one of markdown (default), yaml, json, podfile-older or podfile-newer.
Rendered responses are stored in the configured cache backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			if c.Config.Resolve.FullClosure && !cmd.Flags().Changed("full-closure") {
				opts.fullClosure = true
			}
			backend := c.openCache(ctx, opts.noCache)
			defer backend.Close()
			engine, err := c.newEngine(backend, opts)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           newServer(engine, backend, ttl, c.Logger).Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			printInfo("Listening on http://%s", addr)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address (default from config)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "how long rendered responses are cached")
	opts.register(cmd)

	return cmd
}

// server answers diff requests with a shared engine.
type server struct {
	engine *diff.Engine
	cache  cache.Cache
	ttl    time.Duration
	logger *log.Logger
}

func newServer(engine *diff.Engine, backend cache.Cache, ttl time.Duration, logger *log.Logger) *server {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &server{engine: engine, cache: backend, ttl: ttl, logger: logger}
}

// Routes returns the HTTP handler.
func (s *server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Resolve()})
	})
	r.Get("/v1/diff/{pod}/{older}/{newer}", s.handleDiff)
	return r
}

type requestIDKey struct{}

// requestID tags each request with a UUID, reusing a valid incoming one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(),
			"took", time.Since(start).Round(time.Millisecond), "id", requestIDFrom(r.Context()))
	})
}

func (s *server) handleDiff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = formatMarkdown
	}
	contentType, ok := contentTypes[format]
	if !ok {
		s.writeError(w, r, perrors.New(perrors.ErrCodeInvalidInput, "unknown format %q", format))
		return
	}
	includeDeps := false
	if v := q.Get("include_dependencies"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, perrors.New(perrors.ErrCodeInvalidInput, "include_dependencies must be a boolean"))
			return
		}
		includeDeps = b
	}
	req := diff.Request{
		Pod:                 chi.URLParam(r, "pod"),
		Version1:            chi.URLParam(r, "older"),
		Version2:            chi.URLParam(r, "newer"),
		IncludeDependencies: includeDeps,
		Platforms:           splitList(q.Get("platforms")),
	}

	key := "diff:" + cache.Hash([]byte(strings.Join([]string{
		"diff", req.Pod, req.Version1, req.Version2, strings.Join(req.Platforms, ","),
		strconv.FormatBool(includeDeps), strconv.Itoa(int(s.engine.Closure)), format,
	}, "\x00")))
	if body, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "diff")
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
		return
	}
	observability.Cache().OnCacheMiss(ctx, "diff")

	res, err := s.engine.Run(ctx, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.Warning != "" {
		writeJSON(w, http.StatusOK, map[string]string{"warning": res.Warning})
		return
	}

	body, err := renderFormat(res, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	observability.Diff().OnRender(ctx, format, len(body))
	if err := s.cache.Set(ctx, key, body, s.ttl); err != nil {
		s.logger.Warn("cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "diff", len(body))
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(body)
}

var contentTypes = map[string]string{
	formatMarkdown:     "text/markdown; charset=utf-8",
	formatYAML:         "application/yaml",
	formatJSON:         "application/json",
	formatOlderPodfile: "text/plain; charset=utf-8",
	formatNewerPodfile: "text/plain; charset=utf-8",
}

func renderFormat(res *diff.Result, format string) ([]byte, error) {
	switch format {
	case formatYAML:
		return res.Comparison().YAML()
	case formatJSON:
		return json.MarshalIndent(res.Comparison(), "", "  ")
	case formatOlderPodfile:
		return []byte(res.Podfile(diff.Older)), nil
	case formatNewerPodfile:
		return []byte(res.Podfile(diff.Newer)), nil
	}
	return []byte(res.Table()), nil
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case perrors.IsUsage(err):
		return http.StatusBadRequest
	case perrors.IsLookup(err):
		return http.StatusNotFound
	case perrors.Is(err, perrors.ErrCodeResolution):
		return http.StatusUnprocessableEntity
	case perrors.Is(err, perrors.ErrCodeNetwork):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("diff failed", "error", err, "id", requestIDFrom(r.Context()))
	}
	writeJSON(w, status, map[string]string{
		"code":       string(perrors.GetCode(err)),
		"message":    perrors.UserMessage(err),
		"request_id": requestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
