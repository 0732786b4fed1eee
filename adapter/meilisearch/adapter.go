// Package meilisearch implements an adapter.Adapter against a MeiliSearch
// instance's REST API: instant, typo-tolerant full-text search with
// highlighting and recency filtering.
package meilisearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/atominnolab/opensift/adapter"
	"github.com/atominnolab/opensift/internal/tlsutil"
	"github.com/atominnolab/opensift/models"
	"github.com/atominnolab/opensift/types"
	"go.uber.org/zap"
)

// Config configures the MeiliSearch adapter.
type Config struct {
	BaseURL string
	Index   string
	APIKey  string
	Timeout time.Duration
}

// DefaultConfig targets a local MeiliSearch instance and the "documents" index.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:7700",
		Index:   "documents",
		Timeout: 30 * time.Second,
	}
}

// Adapter searches a MeiliSearch index over HTTP.
type Adapter struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New builds a MeiliSearch adapter. Initialize must be called before use.
func New(cfg Config, logger *zap.Logger) *Adapter {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.Index == "" {
		cfg.Index = "documents"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(cfg.Timeout),
		logger: logger.With(zap.String("adapter", "meilisearch")),
	}
}

// Name returns "meilisearch".
func (a *Adapter) Name() string { return "meilisearch" }

type healthResponse struct {
	Status string `json:"status"`
}

// Initialize verifies the instance reports status "available".
func (a *Adapter) Initialize(ctx context.Context) error {
	var health healthResponse
	if err := a.doJSON(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return types.NewError(types.ErrAdapterConnect, "failed to reach MeiliSearch").WithCause(err)
	}
	if health.Status != "available" {
		return types.NewError(types.ErrAdapterConnect,
			fmt.Sprintf("MeiliSearch not available: status=%s", health.Status))
	}
	a.logger.Info("meilisearch adapter initialized",
		zap.String("base_url", a.cfg.BaseURL), zap.String("index", a.cfg.Index))
	return nil
}

// Shutdown releases resources. http.Client needs no explicit close.
func (a *Adapter) Shutdown(ctx context.Context) error { return nil }

type searchRequest struct {
	Q                     string   `json:"q"`
	Limit                 int      `json:"limit"`
	Offset                int      `json:"offset"`
	AttributesToHighlight []string `json:"attributesToHighlight"`
	HighlightPreTag       string   `json:"highlightPreTag"`
	HighlightPostTag      string   `json:"highlightPostTag"`
	AttributesToCrop      []string `json:"attributesToCrop"`
	CropLength            int      `json:"cropLength"`
	ShowRankingScore      bool     `json:"showRankingScore"`
	Filter                string   `json:"filter,omitempty"`
}

type searchResponse struct {
	Hits               []map[string]any `json:"hits"`
	EstimatedTotalHits int              `json:"estimatedTotalHits"`
	TotalHits          int              `json:"totalHits"`
	ProcessingTimeMs   int              `json:"processingTimeMs"`
	Query              string           `json:"query"`
}

// Search executes a typo-tolerant full-text query with highlighting and
// content cropping against the configured index.
func (a *Adapter) Search(ctx context.Context, query string, options models.SearchOptions) (adapter.RawResults, error) {
	maxResults := options.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	req := searchRequest{
		Q:                     query,
		Limit:                 maxResults,
		AttributesToHighlight: []string{"title", "content"},
		HighlightPreTag:       "<em>",
		HighlightPostTag:      "</em>",
		AttributesToCrop:      []string{"content"},
		CropLength:            200,
		ShowRankingScore:      true,
	}
	if options.RecencyFilter != nil {
		if filter := parseRecencyFilter(*options.RecencyFilter); filter != "" {
			req.Filter = filter
		}
	}

	start := time.Now()
	var resp searchResponse
	path := fmt.Sprintf("/indexes/%s/search", a.cfg.Index)
	if err := a.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return adapter.RawResults{}, types.NewError(types.ErrAdapterQuery, "meilisearch query failed").WithCause(err)
	}
	took := time.Since(start).Milliseconds()

	total := resp.EstimatedTotalHits
	if total == 0 {
		total = resp.TotalHits
	}
	if total == 0 {
		total = len(resp.Hits)
	}

	return adapter.RawResults{
		TotalHits: total,
		Documents: resp.Hits,
		Metadata: map[string]any{
			"processing_time_ms": resp.ProcessingTimeMs,
			"query":              query,
		},
		TookMs: took,
	}, nil
}

// FetchDocument retrieves a single document from the configured index by
// its primary key.
func (a *Adapter) FetchDocument(ctx context.Context, id string) (map[string]any, error) {
	path := fmt.Sprintf("/indexes/%s/documents/%s", a.cfg.Index, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, types.NewError(types.ErrAdapterQuery, "meilisearch fetch_document failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, types.NewError(types.ErrDocumentNotFound, fmt.Sprintf("document '%s' not found", id))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, types.NewError(types.ErrAdapterQuery,
			fmt.Sprintf("meilisearch returned status %d", resp.StatusCode))
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// MapToStandardSchema maps a flat MeiliSearch hit, honoring the
// _formatted crop for the snippet and _rankingScore for relevance.
func (a *Adapter) MapToStandardSchema(raw map[string]any) models.StandardDocument {
	id := stringOf(raw["id"])
	title := stringOf(raw["title"])
	if title == "" {
		title = "Untitled"
	}
	content := firstNonEmpty(stringOf(raw["content"]), stringOf(raw["body"]), stringOf(raw["text"]))

	var snippet *string
	if formatted, ok := raw["_formatted"].(map[string]any); ok {
		if s := firstNonEmpty(stringOf(formatted["content"]), stringOf(formatted["body"])); s != "" {
			snippet = &s
		}
	}

	score := floatOf(raw["_rankingScore"])

	var publishedDate *string
	if ts := firstNonEmpty(stringOf(raw["published_date"]), stringOf(raw["date"]), stringOf(raw["timestamp"])); ts != "" {
		if parsed, ok := parseFlexibleDate(ts); ok {
			publishedDate = &parsed
		}
	}

	tags, _ := toStringSlice(raw["tags"])

	return models.StandardDocument{
		ID:      id,
		Title:   title,
		Content: content,
		Snippet: snippet,
		Score:   score,
		Metadata: models.DocumentMetadata{
			Source:        a.cfg.Index,
			URL:           stringPtrOrNil(stringOf(raw["url"])),
			PublishedDate: publishedDate,
			Author:        stringPtrOrNil(stringOf(raw["author"])),
			Tags:          tags,
			Extra:         map[string]string{"meili_index": a.cfg.Index},
		},
		RetrievedAt: time.Now().UTC(),
	}
}

// HealthCheck reports the instance's self-reported status.
func (a *Adapter) HealthCheck(ctx context.Context) (adapter.Health, error) {
	start := time.Now()
	var health healthResponse
	err := a.doJSON(ctx, http.MethodGet, "/health", nil, &health)
	latency := time.Since(start).Milliseconds()
	now := adapter.NowISO()

	if err != nil {
		return adapter.Health{Status: adapter.StatusUnhealthy, Message: err.Error()}, nil
	}

	status := adapter.StatusDegraded
	if health.Status == "available" {
		status = adapter.StatusHealthy
	}
	return adapter.Health{
		Status:    status,
		LatencyMs: latency,
		LastCheck: &now,
		Message:   fmt.Sprintf("index: %s, status: %s", a.cfg.Index, health.Status),
	}, nil
}

func (a *Adapter) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if a.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}
}

func (a *Adapter) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("meilisearch returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// parseRecencyFilter converts a recency shorthand like "7d" or "2w" into a
// MeiliSearch filter expression against a numeric "timestamp" attribute.
func parseRecencyFilter(recency string) string {
	if len(recency) < 2 {
		return ""
	}
	unit := recency[len(recency)-1]
	value, err := strconv.Atoi(recency[:len(recency)-1])
	if err != nil {
		return ""
	}

	var delta time.Duration
	switch unit {
	case 'h', 'H':
		delta = time.Duration(value) * time.Hour
	case 'd', 'D':
		delta = time.Duration(value) * 24 * time.Hour
	case 'w', 'W':
		delta = time.Duration(value) * 7 * 24 * time.Hour
	case 'm', 'M':
		delta = time.Duration(value) * 30 * 24 * time.Hour
	case 'y', 'Y':
		delta = time.Duration(value) * 365 * 24 * time.Hour
	default:
		return ""
	}

	threshold := time.Now().UTC().Add(-delta).Unix()
	return fmt.Sprintf("timestamp > %d", threshold)
}

func parseFlexibleDate(s string) (string, bool) {
	s = strings.ReplaceAll(s, "Z", "+00:00")
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.RFC3339), true
		}
	}
	return "", false
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func floatOf(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func toStringSlice(v any) ([]string, bool) {
	raw, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

func stringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
