// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server serves the co-authorship graph viewer: the HTML page, the
// graph as JSON, node search, connection summaries, manual reloads and
// Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/coauthor-graph/internal/loader"
	"github.com/pdiddy/coauthor-graph/internal/source"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// LoadFailedMessage is the only load error detail shown to clients.
const LoadFailedMessage = "failed to load graph data"

// Server is the HTTP server for the graph viewer.
type Server struct {
	router   chi.Router
	loader   *loader.Loader
	gatherer prometheus.Gatherer
	cfg      types.Config
	log      *slog.Logger
}

// New creates and configures the server. gatherer backs /metrics; nil uses
// the default registry.
func New(l *loader.Loader, gatherer prometheus.Gatherer, cfg types.Config, log *slog.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		loader:   l,
		gatherer: gatherer,
		cfg:      cfg,
		log:      log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/", s.handleIndex)

	r.Route("/api", func(r chi.Router) {
		r.Use(RateLimit(s.cfg.Server.RequestsPerSecond, s.cfg.Server.Burst))

		r.Get("/graph", s.handleGraph)
		r.Get("/summary", s.handleSummary)
		r.Get("/search", s.handleSearch)
		r.Get("/nodes/{id}", s.handleNode)
		r.Get("/edges/summary", s.handleEdgeSummary)
		r.Post("/reload", s.handleReload)
	})

	s.router = r
}

// Run loads the graph, starts the source watcher when enabled, and serves
// on cfg.Server.Addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if _, err := s.loader.Load(ctx); err != nil {
		s.log.Warn("initial graph load failed, serving errors until reload", "error", err)
	}

	if s.cfg.Source.Watch {
		stop, err := s.watchSource(ctx)
		if err != nil {
			return err
		}
		defer stop()
	}

	httpServer := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting server", "addr", s.cfg.Server.Addr, "source", s.cfg.Source.Location)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
		s.log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// watchSource reloads the graph whenever the local source file changes.
func (s *Server) watchSource(ctx context.Context) (stop func(), err error) {
	if source.IsRemote(s.cfg.Source.Location) {
		s.log.Warn("watch ignored for remote source", "source", s.cfg.Source.Location)
		return func() {}, nil
	}

	w, err := source.NewWatcher(s.cfg.Source.Location, func(path string) {
		s.log.Info("graph source changed, reloading", "path", path)
		if _, err := s.loader.Load(ctx); err != nil {
			s.log.Warn("reload after change failed", "error", err)
		}
	}, source.WatcherOptions{Debounce: s.cfg.Server.ReloadDebounce, Logger: s.log})
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	s.log.Info("watching graph source", "path", w.Path())
	return w.Stop, nil
}
