package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docpost/internal/foundation/errors"
	"git.home.luguber.info/inful/docpost/internal/logfields"
	"git.home.luguber.info/inful/docpost/internal/metrics"
)

// Options configures a Server.
type Options struct {
	Addr    string
	SiteDir string
	Logger  *slog.Logger
	// Gatherer enables the metrics endpoint at MetricsPath when set.
	Gatherer    prom.Gatherer
	MetricsPath string
	// State, when set, is reported by /healthz.
	State *BuildState
}

// Server serves the output directory.
type Server struct {
	opts   Options
	router *chi.Mux
	server *http.Server
	ln     net.Listener
}

// New wires the routes for opts.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	s := &Server{opts: opts, router: chi.NewRouter()}
	s.setupRoutes()
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(requestLogger(s.opts.Logger))
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	if s.opts.Gatherer != nil {
		s.router.Method(http.MethodGet, s.opts.MetricsPath, metrics.HTTPHandler(s.opts.Gatherer))
	}
	s.router.Handle("/*", http.FileServer(http.Dir(s.opts.SiteDir)))
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start binds the listen address and serves in the background. Binding
// happens before Start returns so address conflicts fail fast.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "listen").
			WithContext("addr", s.opts.Addr).
			UserAction().
			Build()
	}
	s.ln = ln
	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.opts.Logger.Error("preview server error", logfields.Error(err))
		}
	}()
	s.opts.Logger.Info("Preview server listening", slog.String("url", "http://"+ln.Addr().String()+"/"))
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.opts.Addr
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(s.opts.State.snapshot())
}
