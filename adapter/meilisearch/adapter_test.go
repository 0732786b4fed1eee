package meilisearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atominnolab/opensift/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func meiliTestServer(t *testing.T, status string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/health":
			_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
		case r.Method == http.MethodPost && r.URL.Path == "/indexes/documents/search":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"hits": []map[string]any{
					{
						"id":             "doc-1",
						"title":          "Solar Nowcasting",
						"content":        "A technique for short-term solar irradiance forecasting.",
						"_rankingScore":  0.92,
						"author":         "J. Doe",
						"tags":           []string{"solar", "forecasting"},
						"published_date": "2024-03-01T00:00:00Z",
					},
				},
				"estimatedTotalHits": 1,
				"processingTimeMs":   3,
				"query":              "solar nowcasting",
			})
		case r.Method == http.MethodGet && r.URL.Path == "/indexes/documents/documents/doc-1":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "doc-1", "title": "Solar Nowcasting"})
		case r.Method == http.MethodGet && r.URL.Path == "/indexes/documents/documents/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
}

func newTestAdapter(srv *httptest.Server) *Adapter {
	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	return New(cfg, zap.NewNop())
}

func TestAdapter_Name(t *testing.T) {
	a := New(DefaultConfig(), zap.NewNop())
	assert.Equal(t, "meilisearch", a.Name())
}

func TestAdapter_Initialize_Success(t *testing.T) {
	srv := meiliTestServer(t, "available")
	defer srv.Close()

	a := newTestAdapter(srv)
	require.NoError(t, a.Initialize(context.Background()))
}

func TestAdapter_Initialize_NotAvailable(t *testing.T) {
	srv := meiliTestServer(t, "maintenance")
	defer srv.Close()

	a := newTestAdapter(srv)
	err := a.Initialize(context.Background())
	require.Error(t, err)
}

func TestAdapter_Search_ReturnsDocuments(t *testing.T) {
	srv := meiliTestServer(t, "available")
	defer srv.Close()

	a := newTestAdapter(srv)
	raw, err := a.Search(context.Background(), "solar nowcasting", models.DefaultSearchOptions())

	require.NoError(t, err)
	require.Len(t, raw.Documents, 1)
	assert.Equal(t, 1, raw.TotalHits)
	assert.Equal(t, "Solar Nowcasting", raw.Documents[0]["title"])
}

func TestAdapter_Search_AppliesRecencyFilter(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/indexes/documents/search" {
			_ = json.NewDecoder(r.Body).Decode(&captured)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"hits": []map[string]any{}})
	}))
	defer srv.Close()

	a := newTestAdapter(srv)
	recency := "7d"
	opts := models.DefaultSearchOptions()
	opts.RecencyFilter = &recency

	_, err := a.Search(context.Background(), "query", opts)
	require.NoError(t, err)
	require.Contains(t, captured, "filter")
	assert.Contains(t, captured["filter"], "timestamp >")
}

func TestAdapter_FetchDocument_Success(t *testing.T) {
	srv := meiliTestServer(t, "available")
	defer srv.Close()

	a := newTestAdapter(srv)
	doc, err := a.FetchDocument(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.Equal(t, "doc-1", doc["id"])
}

func TestAdapter_FetchDocument_NotFound(t *testing.T) {
	srv := meiliTestServer(t, "available")
	defer srv.Close()

	a := newTestAdapter(srv)
	_, err := a.FetchDocument(context.Background(), "missing")
	require.Error(t, err)
}

func TestAdapter_HealthCheck_Available(t *testing.T) {
	srv := meiliTestServer(t, "available")
	defer srv.Close()

	a := newTestAdapter(srv)
	health, err := a.HealthCheck(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
}

func TestAdapter_HealthCheck_Degraded(t *testing.T) {
	srv := meiliTestServer(t, "maintenance")
	defer srv.Close()

	a := newTestAdapter(srv)
	health, err := a.HealthCheck(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "degraded", health.Status)
}

func TestAdapter_MapToStandardSchema(t *testing.T) {
	a := New(DefaultConfig(), zap.NewNop())
	raw := map[string]any{
		"id":             "doc-1",
		"title":          "Solar Nowcasting",
		"content":        "Full content here.",
		"_rankingScore":  0.75,
		"author":         "J. Doe",
		"url":            "https://example.com/doc-1",
		"tags":           []any{"solar", "forecasting"},
		"published_date": "2024-03-01T00:00:00Z",
		"_formatted": map[string]any{
			"content": "Full <em>content</em> here.",
		},
	}

	doc := a.MapToStandardSchema(raw)

	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, "Solar Nowcasting", doc.Title)
	assert.Equal(t, 0.75, doc.Score)
	require.NotNil(t, doc.Snippet)
	assert.Contains(t, *doc.Snippet, "<em>")
	require.NotNil(t, doc.Metadata.Author)
	assert.Equal(t, "J. Doe", *doc.Metadata.Author)
	assert.Equal(t, []string{"solar", "forecasting"}, doc.Metadata.Tags)
	require.NotNil(t, doc.Metadata.PublishedDate)
}

func TestAdapter_MapToStandardSchema_DefaultsUntitled(t *testing.T) {
	a := New(DefaultConfig(), zap.NewNop())
	doc := a.MapToStandardSchema(map[string]any{})
	assert.Equal(t, "Untitled", doc.Title)
	assert.Nil(t, doc.Metadata.PublishedDate)
}

func TestParseRecencyFilter_InvalidUnitReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", parseRecencyFilter("7x"))
	assert.Equal(t, "", parseRecencyFilter(""))
	assert.Equal(t, "", parseRecencyFilter("d"))
}
