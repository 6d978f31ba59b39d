// Package server exposes built opening graphs over HTTP.
//
// The API is read-only with respect to the graphs, so any number of requests
// may share them. Practice sessions are the only mutable state; each lives in
// a session table under a UUID and is locked while a request drives it.
//
// Routes:
//
//	GET    /healthz
//	GET    /metrics
//	GET    /api/{color}/stats
//	GET    /api/{color}/position?moves=e4+e5+Nf3
//	GET    /api/{color}/origins?moves=...&limit=5
//	POST   /api/{color}/practice
//	GET    /api/{color}/practice/{id}
//	POST   /api/{color}/practice/{id}/step
//	POST   /api/{color}/practice/{id}/guess
//	POST   /api/{color}/practice/{id}/restart
//	DELETE /api/{color}/practice/{id}
//
// {color} is "w", "b", "white" or "black". Move lists accept the same notation
// as dataset lines, with commas allowed as separators.
package server

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/repertoire/pkg/graph"
	"github.com/matzehuels/repertoire/pkg/history"
	"github.com/matzehuels/repertoire/pkg/rules"
)

// DefaultSessionTTL is how long an idle practice session is kept.
const DefaultSessionTTL = 30 * time.Minute

// Options configures a [Server]. The zero value is usable.
type Options struct {
	Logger     *log.Logger
	History    history.Store // Finished rounds are recorded here
	Metrics    http.Handler  // Served at /metrics; promhttp.Handler() when nil
	SessionTTL time.Duration
}

// Server serves the graphs of one or both colors.
type Server struct {
	graphs  map[rules.Color]*graph.Graph
	logger  *log.Logger
	history history.Store
	ttl     time.Duration
	router  chi.Router
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// New returns a server for graphs, keyed by repertoire color.
func New(graphs map[rules.Color]*graph.Graph, opts Options) *Server {
	s := &Server{
		graphs:   graphs,
		logger:   opts.Logger,
		history:  opts.History,
		ttl:      opts.SessionTTL,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.history == nil {
		s.history = history.NullStore{}
	}
	if s.ttl <= 0 {
		s.ttl = DefaultSessionTTL
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	s.router = s.routes(metrics)
	return s
}

func (s *Server) routes(metrics http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics)

	r.Route("/api/{color}", func(r chi.Router) {
		r.Use(s.withGraph)
		r.Get("/stats", s.handleStats)
		r.Get("/position", s.handlePosition)
		r.Get("/origins", s.handleOrigins)

		r.Route("/practice", func(r chi.Router) {
			r.Post("/", s.handleNewSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(s.withSession)
				r.Get("/", s.handleGetSession)
				r.Post("/step", s.handleStep)
				r.Post("/guess", s.handleGuess)
				r.Post("/restart", s.handleRestart)
				r.Delete("/", s.handleDeleteSession)
			})
		})
	})
	return r
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()),
		)
	})
}
