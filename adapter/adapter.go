// Package adapter defines the pluggable search-backend contract every
// adapter implements, and Registry, which manages adapter lifecycle and
// concurrent health checks.
package adapter

import (
	"context"

	"github.com/atominnolab/opensift/models"
)

// Health is the adapter health-check result.
type Health struct {
	Status    string  `json:"status"` // healthy, degraded, unhealthy
	LatencyMs int64   `json:"latency_ms"`
	LastCheck *string `json:"last_check,omitempty"`
	ErrorRate float64 `json:"error_rate"`
	Message   string  `json:"message,omitempty"`
}

// Health status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// RawResults is the backend's un-normalized search response.
type RawResults struct {
	TotalHits int              `json:"total_hits"`
	Documents []map[string]any `json:"documents"`
	Metadata  map[string]any   `json:"metadata"`
	TookMs    int64            `json:"took_ms"`
}

// Adapter is the contract every pluggable search backend implements.
// Adapters must be stateless across calls and safe for concurrent use;
// connection pooling and configuration happen in Initialize.
type Adapter interface {
	// Name is the adapter's stable identifier (e.g. "wikipedia", "meilisearch").
	Name() string

	// Initialize acquires clients and verifies reachability. Called once
	// at startup; fails with ErrAdapterConfig or ErrAdapterConnect.
	Initialize(ctx context.Context) error

	// Shutdown releases resources. Must be idempotent.
	Shutdown(ctx context.Context) error

	// Search executes a query against the backend. Fails with
	// ErrAdapterQuery or ErrAdapterConnect.
	Search(ctx context.Context, query string, options models.SearchOptions) (RawResults, error)

	// FetchDocument retrieves a single document by ID. Fails with
	// ErrDocumentNotFound.
	FetchDocument(ctx context.Context, id string) (map[string]any, error)

	// MapToStandardSchema normalizes one raw document. Pure; must never fail.
	MapToStandardSchema(raw map[string]any) models.StandardDocument

	// HealthCheck reports current backend reachability.
	HealthCheck(ctx context.Context) (Health, error)
}

// PaperSearcher is an optional capability: adapters covering scholarly
// backends may implement it directly, bypassing the lossy generic
// StandardDocument mapping. The engine prefers this path when present.
type PaperSearcher interface {
	SearchPapers(ctx context.Context, query string, options models.SearchOptions) ([]models.PaperInfo, error)
}

// SearchAndNormalize runs Search and maps every returned document through
// MapToStandardSchema in one step.
func SearchAndNormalize(ctx context.Context, a Adapter, query string, options models.SearchOptions) ([]models.StandardDocument, error) {
	raw, err := a.Search(ctx, query, options)
	if err != nil {
		return nil, err
	}
	docs := make([]models.StandardDocument, 0, len(raw.Documents))
	for _, d := range raw.Documents {
		docs = append(docs, a.MapToStandardSchema(d))
	}
	return docs, nil
}
