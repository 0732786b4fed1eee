package wikipedia

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

// wikiTestServer fakes the two MediaWiki action-API calls the adapter
// issues: opensearch (title discovery) and query (extract + categories).
func wikiTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")

		switch q.Get("action") {
		case "opensearch":
			_ = json.NewEncoder(w).Encode([]any{
				q.Get("search"),
				[]string{"Go (programming language)"},
				[]string{"A programming language"},
				[]string{"https://en.wikipedia.org/wiki/Go_(programming_language)"},
			})
		case "query":
			titles := q.Get("titles")
			resp := map[string]any{
				"query": map[string]any{
					"pages": map[string]any{
						"12345": map[string]any{
							"pageid":  12345,
							"title":   titles,
							"extract": "Go is a statically typed, compiled programming language.",
							"fullurl": "https://en.wikipedia.org/wiki/" + titles,
							"categories": []map[string]string{
								{"title": "Category:Programming languages"},
							},
						},
					},
				},
			}
			_ = json.NewEncoder(w).Encode(resp)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
}

func newTestAdapter(srv *httptest.Server) *Adapter {
	cfg := DefaultConfig()
	cfg.APIBaseURL = srv.URL
	return New(cfg, zap.NewNop())
}

func TestAdapter_Name(t *testing.T) {
	a := New(DefaultConfig(), zap.NewNop())
	assert.Equal(t, "wikipedia", a.Name())
}

func TestAdapter_Initialize_Success(t *testing.T) {
	srv := wikiTestServer(t)
	defer srv.Close()

	a := newTestAdapter(srv)
	require.NoError(t, a.Initialize(context.Background()))
}

func TestAdapter_Search_ReturnsDocuments(t *testing.T) {
	srv := wikiTestServer(t)
	defer srv.Close()

	a := newTestAdapter(srv)
	raw, err := a.Search(context.Background(), "golang", models.DefaultSearchOptions())

	require.NoError(t, err)
	require.Len(t, raw.Documents, 1)
	assert.Equal(t, "Go (programming language)", raw.Documents[0]["title"])
	assert.Equal(t, 1, raw.TotalHits)
}

func TestAdapter_FetchDocument_Success(t *testing.T) {
	srv := wikiTestServer(t)
	defer srv.Close()

	a := newTestAdapter(srv)
	doc, err := a.FetchDocument(context.Background(), "Go (programming language)")

	require.NoError(t, err)
	assert.Equal(t, "wiki_en_12345", doc["id"])
	assert.Contains(t, doc["summary"], "statically typed")
}

func TestAdapter_FetchDocument_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"query": map[string]any{
				"pages": map[string]any{
					"-1": map[string]any{"pageid": 0, "title": "Does Not Exist", "missing": ""},
				},
			},
		})
	}))
	defer srv.Close()

	a := newTestAdapter(srv)
	_, err := a.FetchDocument(context.Background(), "Does Not Exist")
	require.Error(t, err)
}

func TestAdapter_HealthCheck(t *testing.T) {
	srv := wikiTestServer(t)
	defer srv.Close()

	a := newTestAdapter(srv)
	health, err := a.HealthCheck(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	require.NotNil(t, health.LastCheck)
}

func TestAdapter_MapToStandardSchema(t *testing.T) {
	a := New(DefaultConfig(), zap.NewNop())
	raw := map[string]any{
		"id":            "wiki_en_12345",
		"title":         "Go (programming language)",
		"summary":       "Go is a statically typed language.",
		"url":           "https://en.wikipedia.org/wiki/Go",
		"canonical_url": "https://en.wikipedia.org/wiki/Go",
		"language":      "en",
		"categories":    []string{"Programming languages"},
	}

	doc := a.MapToStandardSchema(raw)

	assert.Equal(t, "wiki_en_12345", doc.ID)
	assert.Equal(t, "Go (programming language)", doc.Title)
	assert.Equal(t, "Go is a statically typed language.", doc.Content)
	require.NotNil(t, doc.Snippet)
	assert.Equal(t, "wikipedia_en", doc.Metadata.Source)
	require.NotNil(t, doc.Metadata.URL)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Go", *doc.Metadata.URL)
	assert.Equal(t, []string{"Programming languages"}, doc.Metadata.Tags)
}

func TestAdapter_MapToStandardSchema_DefaultsUntitled(t *testing.T) {
	a := New(DefaultConfig(), zap.NewNop())
	doc := a.MapToStandardSchema(map[string]any{})
	assert.Equal(t, "Untitled", doc.Title)
}

func TestAdapter_ToResultItem_RoundTrip(t *testing.T) {
	a := New(DefaultConfig(), zap.NewNop())
	doc := a.MapToStandardSchema(map[string]any{
		"title":   "Example",
		"summary": "Some content.",
	})
	item := doc.ToResultItem(a.Name())
	assert.Equal(t, "wikipedia", item.SourceAdapter)
	assert.Equal(t, "Some content.", item.Content)
}
