// Package web serves a live view of a repair run over HTTP: a JSON state
// snapshot, a server-sent event stream and Prometheus metrics.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RevCBH/specfix/internal/events"
)

// Server is the run monitor.
type Server struct {
	addr string

	store *Store
	hub   *Hub

	httpServer   *http.Server
	httpListener net.Listener
}

// New creates a monitor server with the given configuration.
// Does not start listening - call Start() for that.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	store := NewStore(cfg.Subject)
	hub := NewHub()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", StateHandler(store))
	mux.HandleFunc("GET /api/events", EventsHandler(hub, store))
	if cfg.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	return &Server{
		addr:  cfg.Addr,
		store: store,
		hub:   hub,
		httpServer: &http.Server{
			Addr:    cfg.Addr,
			Handler: mux,
		},
	}
}

// Start begins listening. Non-blocking - the server runs in goroutines.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("HTTP listen: %w", err)
	}
	s.httpListener = listener

	// Update addr with actual address (important for ephemeral ports)
	s.addr = listener.Addr().String()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			clog.FromContext(ctx).Warnf("Monitor server stopped: %v", err)
		}
	}()

	return nil
}

// Stop closes SSE streams and shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	s.hub.Stop()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP shutdown: %w", err)
	}
	return nil
}

// Addr returns the HTTP listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Handler returns an events.Handler that updates the snapshot and forwards
// the event to SSE subscribers.
func (s *Server) Handler() events.Handler {
	return func(e events.Event) {
		s.store.HandleEvent(e)
		s.hub.Broadcast(&e)
	}
}
