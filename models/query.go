package models

// SearchOptions controls how one search request is executed.
type SearchOptions struct {
	Decompose      bool     `json:"decompose"`
	Verify         bool     `json:"verify"`
	Classify       bool     `json:"classify"`
	Stream         bool     `json:"stream"`
	MaxResults     int      `json:"max_results"`
	RecencyFilter  *string  `json:"recency_filter,omitempty"`
	Adapters       []string `json:"adapters,omitempty"`
	TimeoutSeconds float64  `json:"timeout_seconds"`
}

// DefaultSearchOptions mirrors the field defaults of the originating
// SearchOptions model: decompose/verify/classify on, streaming off,
// 10 results, a 30s timeout.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Decompose:      true,
		Verify:         true,
		Classify:       true,
		Stream:         false,
		MaxResults:     10,
		TimeoutSeconds: 30,
	}
}

// SearchContext carries contextual hints passed through to adapters
// opaquely; the engine never interprets its fields.
type SearchContext struct {
	UserDomain       *string           `json:"user_domain,omitempty"`
	PreferredSources []string          `json:"preferred_sources,omitempty"`
	ExcludedSources  []string          `json:"excluded_sources,omitempty"`
	Language         string            `json:"language"`
	Extra            map[string]string `json:"extra,omitempty"`
}

// DefaultSearchContext returns a context with its own default language.
func DefaultSearchContext() SearchContext {
	return SearchContext{Language: "en"}
}

// SearchRequest is the body of POST /v1/plan, POST /v1/search and the
// per-query unit of a BatchSearchRequest.
type SearchRequest struct {
	Query   string        `json:"query"`
	Options SearchOptions `json:"options"`
	Context SearchContext `json:"context"`
}

// BatchSearchRequest is the body of POST /v1/search/batch: up to 20
// independent queries sharing the same options and context.
type BatchSearchRequest struct {
	Queries      []string      `json:"queries"`
	Options      SearchOptions `json:"options"`
	Context      SearchContext `json:"context"`
	ExportFormat *string       `json:"export_format,omitempty"`
}

// MaxBatchQueries is the hard cap on BatchSearchRequest.Queries.
const MaxBatchQueries = 20
