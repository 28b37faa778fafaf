// Package server exposes the tool registry over plain HTTP: one POST
// endpoint per tool, a tool listing, health and version endpoints, and
// the mounted MCP handler. It is one of the two transports over the
// shared registry.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/uh-joan/icd-mcp-server/internal/common"
	"github.com/uh-joan/icd-mcp-server/internal/config"
	"github.com/uh-joan/icd-mcp-server/internal/tools"
)

// Server manages the HTTP server and routes.
type Server struct {
	registry   *tools.Registry
	mcpHandler http.Handler
	router     *http.ServeMux
	server     *http.Server
	logger     *common.Logger
}

// New creates the HTTP server over the shared registry. mcpHandler is
// mounted at /mcp when non-nil.
func New(cfg *config.Config, registry *tools.Registry, mcpHandler http.Handler, logger *common.Logger) *Server {
	s := &Server{
		registry:   registry,
		mcpHandler: mcpHandler,
		logger:     logger,
	}

	s.router = s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	s.logger.Info().
		Str("address", s.server.Addr).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
