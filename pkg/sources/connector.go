// Package sources provides pluggable adapters to external academic
// databases. Each connector normalizes records to the common Paper shape,
// rate-limits to the source's published limits, retries transient
// failures, and caches responses through the State Store.
package sources

import (
	"context"
	"time"

	"github.com/scholarforge/scholarforge/pkg/models"
)

// Query is a literature search request.
type Query struct {
	Text     string
	Limit    int
	Filters  map[string]string
	UseCache bool
}

// Connector is one external academic database.
type Connector interface {
	Name() string

	// Search returns normalized papers matching the query. Zero results
	// is a valid outcome, not an error.
	Search(ctx context.Context, q Query) ([]models.Paper, error)

	// Get fetches a single paper by source-specific identifier.
	Get(ctx context.Context, paperID string, useCache bool) (*models.Paper, error)

	// Health reports the connector's recent request outcomes.
	Health() *Health
}

// Health describes a connector's status.
type Health struct {
	Name        string    `json:"name"`
	Healthy     bool      `json:"healthy"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	Requests    int64     `json:"requests"`
	Failures    int64     `json:"failures"`
}
