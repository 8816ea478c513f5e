package api

import (
	"github.com/scholarforge/scholarforge/pkg/models"
	"github.com/scholarforge/scholarforge/pkg/sources"
	"github.com/scholarforge/scholarforge/pkg/store"
)

// SubmitResponse is returned by POST /proposals.
type SubmitResponse struct {
	RequestID string `json:"request_id"`
	Topic     string `json:"topic"`
	// Status is "in_progress" for background jobs, "completed" for
	// synchronous runs.
	Status         string `json:"status"`
	WordCount      int    `json:"word_count,omitempty"`
	PartialSuccess bool   `json:"partial_success,omitempty"`
}

// CancelResponse is returned by POST /proposals/:id/cancel.
type CancelResponse struct {
	RequestID string `json:"request_id"`
	Message   string `json:"message"`
}

// HealthCheck is one component's entry in the health response.
type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status           string                 `json:"status"`
	Version          string                 `json:"version"`
	AgentsRegistered int                    `json:"agents_registered"`
	Checks           map[string]HealthCheck `json:"checks"`
	Store            *store.Health          `json:"store,omitempty"`
	Sources          []*sources.Health      `json:"sources,omitempty"`
}

// AgentsResponse is returned by GET /agents.
type AgentsResponse struct {
	Count  int               `json:"count"`
	Agents []models.TaskKind `json:"agents"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Status          string `json:"status"`
	Agents          int    `json:"agents"`
	ActiveWorkflows int    `json:"active_workflows"`
}
