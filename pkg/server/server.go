// Package server exposes a computed pipeline result over read-only HTTP.
//
// Routes:
//
//	GET /healthz
//	GET /regions
//	GET /regions/{region}
//	GET /regions/{region}/graph
//	GET /regions/{region}/roots
//	GET /regions/{region}/tree
//	GET /regions/{region}/layout
//	GET /regions/{region}/dot
//	GET /metrics                  (only when a Gatherer is configured)
//
// Errors are JSON objects {"code": ..., "message": ...} with the status from
// [errors.HTTPStatus].
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/observability"
	"github.com/matzehuels/lineage/pkg/pipeline"
	"github.com/matzehuels/lineage/pkg/render/nodelink"
)

// Options configures a Server.
type Options struct {
	// Logger receives one debug line per request. Defaults to log.Default().
	Logger *log.Logger

	// Gatherer, if set, is served at /metrics.
	Gatherer prometheus.Gatherer

	// Nodelink configures the /dot route.
	Nodelink nodelink.Options
}

// Server serves one pipeline result.
type Server struct {
	result *pipeline.Result
	opts   Options
	router chi.Router
}

// New builds the router for result. result must not be modified afterwards.
func New(result *pipeline.Result, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{result: result, opts: opts}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	if s.opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/regions", func(r chi.Router) {
		r.Get("/", s.handleRegions)
		r.Route("/{region}", func(r chi.Router) {
			r.Get("/", s.handleRegion)
			r.Get("/graph", s.handleGraph)
			r.Get("/roots", s.handleRoots)
			r.Get("/tree", s.handleTree)
			r.Get("/layout", s.handleLayout)
			r.Get("/dot", s.handleDOT)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.New(errors.ErrCodeFileNotFound, "no route for %s", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{
			Code:    string(errors.ErrCodeInvalidInput),
			Message: r.Method + " not allowed",
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("listening", "addr", addr, "regions", len(s.result.Regions))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.opts.Logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// observe reports each response to the HTTP hooks, labelled with the matched
// route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		elapsed := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, elapsed)
		s.opts.Logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status, "duration", elapsed)
	})
}
