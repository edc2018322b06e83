// Package server runs the CRM HTTP server: the GraphQL endpoint, the
// playground and a health check.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/crm/config"
	"github.com/syssam/crm/graph"
	"github.com/syssam/crm/service"
)

// pingTimeout bounds the database check of the health endpoint.
const pingTimeout = 2 * time.Second

// Server serves the CRM API over HTTP.
type Server struct {
	cfg    config.HTTPConfig
	schema *graph.Schema
	svc    *service.Service
	logger *slog.Logger
}

// New returns a server for schema and svc.
func New(cfg config.HTTPConfig, schema *graph.Schema, svc *service.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{cfg: cfg, schema: schema, svc: svc, logger: logger}
}

// Handler returns the routes wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /graphql", graph.Handler(s.schema))
	mux.HandleFunc("GET /healthz", s.health)
	if s.cfg.Playground {
		mux.Handle("GET /{$}", graph.Playground("/graphql"))
	}
	var h http.Handler = mux
	h = WithRecover(s.logger)(h)
	h = WithLogging(s.logger)(h)
	return WithRequestID(h)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()
	status, body := http.StatusOK, map[string]string{"status": "ok"}
	if err := s.svc.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "health check failed", "error", err)
		status, body = http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully within
// the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http listen", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("http shutdown")
		sctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
