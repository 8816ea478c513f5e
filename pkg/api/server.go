// Package api is the HTTP surface: proposal submission and retrieval,
// health, and system introspection, served over echo.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/scholarforge/scholarforge/pkg/agent"
	"github.com/scholarforge/scholarforge/pkg/jobs"
	"github.com/scholarforge/scholarforge/pkg/sources"
	"github.com/scholarforge/scholarforge/pkg/store"
)

// Server is the HTTP API server.
type Server struct {
	manager  *jobs.Manager
	registry *agent.Registry
	store    store.Store
	sources  *sources.Multiplexer

	e          *echo.Echo
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer wires the API over the job manager and its dependencies.
// The sources multiplexer may be nil when no connectors are enabled.
func NewServer(manager *jobs.Manager, registry *agent.Registry, st store.Store, mux *sources.Multiplexer) *Server {
	s := &Server{
		manager:  manager,
		registry: registry,
		store:    st,
		sources:  mux,
		e:        echo.New(),
		logger:   slog.With("component", "api"),
	}
	s.e.Use(securityHeaders())
	s.e.Use(s.requestLogger())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.e.POST("/proposals", s.submitProposalHandler)
	s.e.GET("/proposals/:id", s.getProposalHandler)
	s.e.POST("/proposals/:id/cancel", s.cancelProposalHandler)
	s.e.GET("/health", s.healthHandler)
	s.e.GET("/agents", s.agentsHandler)
	s.e.GET("/status", s.statusHandler)
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler { return s.e }

// Start serves HTTP on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
