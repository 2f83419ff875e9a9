package server

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Server wraps an http.Server with graceful shutdown support.
type Server struct {
	httpServer *http.Server
}

// New creates a Server that listens on addr and dispatches to handler.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start begins listening and serving HTTP requests. It blocks until the
// server is shut down and returns nil on a clean shutdown.
func (s *Server) Start() error {
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server without interrupting active
// connections. ctx bounds how long outstanding requests may take.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
