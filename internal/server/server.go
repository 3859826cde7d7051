// Package server exposes the render pipeline over HTTP.
//
// Routes:
//
//	POST /render   body: graph document; query: format, syntax, name, layers
//	GET  /healthz  liveness probe
//	GET  /version  build information
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/flowviz/pkg/buildinfo"
	"github.com/matzehuels/flowviz/pkg/components"
	errs "github.com/matzehuels/flowviz/pkg/errors"
	"github.com/matzehuels/flowviz/pkg/fbp"
	"github.com/matzehuels/flowviz/pkg/pipeline"
	"github.com/matzehuels/flowviz/pkg/render"
)

// Response headers set on render responses.
const (
	HeaderRequestID = "X-Request-Id"
	HeaderCache     = "X-Flowviz-Cache"
	HeaderExcluded  = "X-Flowviz-Excluded"
)

// DefaultRequestTimeout bounds a single render.
const DefaultRequestTimeout = 30 * time.Second

// Server renders graphs posted to it against one component library.
type Server struct {
	Runner  *pipeline.Runner
	Library *components.Library
	Logger  *log.Logger
	Timeout time.Duration
}

// New creates a server. A nil library resolves nothing, so every process is
// left out of the drawing.
func New(runner *pipeline.Runner, lib *components.Library, logger *log.Logger) *Server {
	if lib == nil {
		lib = components.NewLibrary()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{Runner: runner, Library: lib, Logger: logger, Timeout: DefaultRequestTimeout}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Post("/render", s.handleRender)
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type ctxKey int

const loggerKey ctxKey = 0

// requestLogger tags each request with an id and a logger carrying it.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		logger := s.Logger.With("request", id)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), loggerKey, logger)))
		logger.Debug("handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

func loggerFrom(ctx context.Context, fallback *log.Logger) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return fallback
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"date":    buildinfo.Date,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context(), s.Logger)
	q := r.URL.Query()

	format, err := render.ParseFormat(valueOr(q.Get("format"), string(pipeline.DefaultFormat)))
	if err != nil {
		writeError(w, err)
		return
	}
	syntax, err := graphSyntax(q.Get("syntax"), r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, err)
		return
	}
	noLayers := false
	if v := q.Get("layers"); v != "" {
		layers, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, errs.New(errs.ErrCodeInvalidInput, "layers must be a boolean"))
			return
		}
		noLayers = !layers
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, pipeline.MaxSourceSize+1))
	if err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	if len(body) == 0 {
		writeError(w, errs.New(errs.ErrCodeInvalidInput, "request body must contain a graph"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.Timeout)
	defer cancel()

	result, err := s.Runner.Execute(ctx, pipeline.Options{
		Source:       body,
		SourceFormat: syntax,
		Name:         valueOr(q.Get("name"), "graph"),
		Library:      s.Library,
		Formats:      []render.Format{format},
		NoLayers:     noLayers,
		Logger:       logger,
	})
	if err != nil {
		logger.Warn("render failed", "err", err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set(HeaderCache, cacheStatus(result, format))
	if result.Render != nil {
		w.Header().Set(HeaderExcluded, strconv.Itoa(len(result.Render.Excluded)))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// graphSyntax picks the graph decoder from the syntax query parameter, or
// failing that from the request content type. Anything unrecognized is
// treated as FBP source.
func graphSyntax(param, contentType string) (fbp.Format, error) {
	if param != "" {
		switch f := fbp.Format(strings.ToLower(param)); f {
		case fbp.FormatJSON, fbp.FormatYAML, fbp.FormatFBP:
			return f, nil
		case "yml":
			return fbp.FormatYAML, nil
		}
		return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported graph syntax %q (use json, yaml or fbp)", param)
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return fbp.FormatJSON, nil
	case strings.Contains(mediaType, "yaml"):
		return fbp.FormatYAML, nil
	default:
		return fbp.FormatFBP, nil
	}
}

func cacheStatus(res *pipeline.Result, f render.Format) string {
	if f == render.FormatDOT {
		if res.CacheInfo.DrawingHit {
			return "hit"
		}
		return "miss"
	}
	if res.CacheInfo.ArtifactHit[f] {
		return "hit"
	}
	return "miss"
}

// errorBody is the JSON document returned for failed requests.
type errorBody struct {
	Error string    `json:"error"`
	Code  errs.Code `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	writeJSON(w, statusFor(err, code), errorBody{Error: errs.UserMessage(err), Code: code})
}

// statusFor maps an error to its HTTP status.
func statusFor(err error, code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidGraph:
		return http.StatusBadRequest
	case errs.ErrCodeFileNotFound, errs.ErrCodeComponentNotFound:
		return http.StatusNotFound
	case errs.ErrCodeInvalidManifest:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
