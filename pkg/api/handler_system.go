package api

import (
	"context"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/scholarforge/scholarforge/pkg/version"
)

const (
	healthStatusHealthy   = "healthy"
	healthStatusDegraded  = "degraded"
	healthStatusUnhealthy = "unhealthy"
)

// healthHandler handles GET /health. The server is healthy when the
// agent registry is populated and the State Store answers a ping.
// Source connector trouble only degrades: the literature agent
// tolerates partial source outages.
func (s *Server) healthHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]HealthCheck)
	status := healthStatusHealthy

	if err := s.store.Ping(reqCtx); err != nil {
		status = healthStatusUnhealthy
		checks["store"] = HealthCheck{Status: healthStatusUnhealthy, Message: err.Error()}
	} else {
		checks["store"] = HealthCheck{Status: healthStatusHealthy}
	}

	if s.registry.Count() == 0 {
		status = healthStatusUnhealthy
		checks["agents"] = HealthCheck{Status: healthStatusUnhealthy, Message: "no agents registered"}
	} else {
		checks["agents"] = HealthCheck{Status: healthStatusHealthy}
	}

	resp := &HealthResponse{
		Status:           status,
		Version:          version.GitCommit,
		AgentsRegistered: s.registry.Count(),
		Checks:           checks,
		Store:            s.store.Health(reqCtx),
	}

	if s.sources != nil {
		resp.Sources = s.sources.HealthAll()
		for _, h := range resp.Sources {
			if !h.Healthy && status == healthStatusHealthy {
				resp.Status = healthStatusDegraded
				break
			}
		}
	}

	httpStatus := http.StatusOK
	if resp.Status == healthStatusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	return c.JSON(httpStatus, resp)
}

// agentsHandler handles GET /agents.
func (s *Server) agentsHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, &AgentsResponse{
		Count:  s.registry.Count(),
		Agents: s.registry.Kinds(),
	})
}

// statusHandler handles GET /status.
func (s *Server) statusHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, &StatusResponse{
		Status:          "ready",
		Agents:          s.registry.Count(),
		ActiveWorkflows: s.manager.ActiveCount(),
	})
}
