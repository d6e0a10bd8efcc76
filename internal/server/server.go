// AngelaMos | 2026
// server.go

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/steamybeans/api/internal/config"
	"github.com/steamybeans/api/internal/health"
)

type Config struct {
	ServerConfig  config.ServerConfig
	HealthHandler *health.Handler
	Logger        *slog.Logger
	StaticDir     string
}

type Server struct {
	srv       *http.Server
	router    *chi.Mux
	health    *health.Handler
	logger    *slog.Logger
	staticDir string
}

func New(cfg Config) *Server {
	router := chi.NewRouter()
	router.Use(chimw.Recoverer)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		srv: &http.Server{
			Addr:         cfg.ServerConfig.Address(),
			Handler:      router,
			ReadTimeout:  cfg.ServerConfig.ReadTimeout,
			WriteTimeout: cfg.ServerConfig.WriteTimeout,
			IdleTimeout:  cfg.ServerConfig.IdleTimeout,
		},
		router:    router,
		health:    cfg.HealthHandler,
		logger:    logger,
		staticDir: cfg.StaticDir,
	}
}

func (s *Server) Router() *chi.Mux {
	return s.router
}

// MountFrontend installs the single-page app handlers. It must run after
// every API route is registered so the catch-all never shadows them.
func (s *Server) MountFrontend() {
	if s.staticDir != "" && hasIndex(s.staticDir) {
		spa := newSPAHandler(s.staticDir)
		s.router.Get("/*", spa.ServeHTTP)
		s.router.Head("/*", spa.ServeHTTP)
		s.logger.Info("serving frontend bundle", "dir", s.staticDir)
		return
	}

	s.router.Get("/", greeting)
}

func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.srv.Addr)

	if err := s.srv.ListenAndServe(); err != nil &&
		!errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen: %w", err)
	}
	return nil
}

// Shutdown marks the service as draining, waits drainDelay for load
// balancers to notice, then stops accepting connections.
func (s *Server) Shutdown(ctx context.Context, drainDelay time.Duration) error {
	if s.health != nil {
		s.health.SetShutdown(true)
	}

	s.logger.Info("draining connections", "delay", drainDelay)

	select {
	case <-time.After(drainDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

func greeting(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // best-effort response
	_, _ = w.Write([]byte("Hello World!"))
}
