// Package wikipedia implements an adapter.Adapter against the public
// MediaWiki action API. Since Wikipedia has no relevance-ranked full-text
// search endpoint, it discovers matching page titles via the opensearch
// action, then fetches each page's extract, canonical URL and categories
// in one follow-up call.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/atominnolab/opensift/adapter"
	"github.com/atominnolab/opensift/internal/tlsutil"
	"github.com/atominnolab/opensift/models"
	"github.com/atominnolab/opensift/types"
	"go.uber.org/zap"
)

const defaultUserAgent = "OpenSift/1.0 (https://github.com/atominnolab/opensift)"

// Config configures the Wikipedia adapter.
type Config struct {
	Language  string
	MaxChars  int
	UserAgent string
	Timeout   time.Duration

	// APIBaseURL overrides "https://{language}.wikipedia.org" when set.
	// Tests point this at an httptest server.
	APIBaseURL string
}

// DefaultConfig returns English Wikipedia with a 2000-character summary cap.
func DefaultConfig() Config {
	return Config{
		Language:  "en",
		MaxChars:  2000,
		UserAgent: defaultUserAgent,
		Timeout:   15 * time.Second,
	}
}

// Adapter searches Wikipedia via the MediaWiki action API.
type Adapter struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New builds a Wikipedia adapter. Initialize must be called before use.
func New(cfg Config, logger *zap.Logger) *Adapter {
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.MaxChars == 0 {
		cfg.MaxChars = 2000
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(cfg.Timeout),
		logger: logger.With(zap.String("adapter", "wikipedia")),
	}
}

// Name returns "wikipedia".
func (a *Adapter) Name() string { return "wikipedia" }

func (a *Adapter) apiBase() string {
	if a.cfg.APIBaseURL != "" {
		return a.cfg.APIBaseURL
	}
	return fmt.Sprintf("https://%s.wikipedia.org", a.cfg.Language)
}

// Initialize verifies the API base is reachable.
func (a *Adapter) Initialize(ctx context.Context) error {
	if _, err := a.fetchPage(ctx, "Wikipedia"); err != nil {
		return types.NewError(types.ErrAdapterConnect, "failed to reach Wikipedia API").WithCause(err)
	}
	a.logger.Info("wikipedia adapter initialized",
		zap.String("language", a.cfg.Language), zap.Int("max_chars", a.cfg.MaxChars))
	return nil
}

// Shutdown releases resources. No persistent connections to close.
func (a *Adapter) Shutdown(ctx context.Context) error { return nil }

type openSearchResponse [4]json.RawMessage

// Search discovers matching page titles via opensearch, then fetches each
// page's extract, URL and categories.
func (a *Adapter) Search(ctx context.Context, query string, options models.SearchOptions) (adapter.RawResults, error) {
	maxResults := options.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	searchURL := fmt.Sprintf(
		"%s/w/api.php?action=opensearch&search=%s&limit=%d&namespace=0&format=json",
		a.apiBase(), url.QueryEscape(query), maxResults,
	)

	start := time.Now()
	var raw openSearchResponse
	if err := a.getJSON(ctx, searchURL, &raw); err != nil {
		return adapter.RawResults{}, types.NewError(types.ErrAdapterQuery, "wikipedia opensearch failed").WithCause(err)
	}

	var titles, urls []string
	_ = json.Unmarshal(raw[1], &titles)
	_ = json.Unmarshal(raw[3], &urls)

	documents := make([]map[string]any, 0, len(titles))
	for i, title := range titles {
		page, err := a.fetchPage(ctx, title)
		if err != nil {
			continue
		}
		if i < len(urls) {
			page["url"] = urls[i]
		}
		documents = append(documents, page)
	}

	return adapter.RawResults{
		TotalHits: len(documents),
		Documents: documents,
		Metadata: map[string]any{
			"language": a.cfg.Language,
			"query":    query,
		},
		TookMs: time.Since(start).Milliseconds(),
	}, nil
}

// FetchDocument retrieves a single Wikipedia page by title.
func (a *Adapter) FetchDocument(ctx context.Context, id string) (map[string]any, error) {
	page, err := a.fetchPage(ctx, id)
	if err != nil {
		return nil, types.NewError(types.ErrDocumentNotFound, fmt.Sprintf("wikipedia page not found: %s", id)).WithCause(err)
	}
	return page, nil
}

type wikiQueryResponse struct {
	Query struct {
		Pages map[string]struct {
			PageID     int    `json:"pageid"`
			Title      string `json:"title"`
			Extract    string `json:"extract"`
			FullURL    string `json:"fullurl"`
			Categories []struct {
				Title string `json:"title"`
			} `json:"categories"`
		} `json:"pages"`
	} `json:"query"`
}

// fetchPage fetches one page's extract, canonical URL and categories.
func (a *Adapter) fetchPage(ctx context.Context, title string) (map[string]any, error) {
	pageURL := fmt.Sprintf(
		"%s/w/api.php?action=query&titles=%s&prop=extracts|info|categories"+
			"&exintro=1&explaintext=1&inprop=url&cllimit=10&format=json",
		a.apiBase(), url.QueryEscape(title),
	)

	var resp wikiQueryResponse
	if err := a.getJSON(ctx, pageURL, &resp); err != nil {
		return nil, err
	}

	for _, page := range resp.Query.Pages {
		if page.PageID == 0 {
			return nil, fmt.Errorf("page does not exist: %s", title)
		}
		summary := page.Extract
		if runes := []rune(summary); a.cfg.MaxChars > 0 && len(runes) > a.cfg.MaxChars {
			summary = string(runes[:a.cfg.MaxChars]) + "…"
		}
		categories := make([]string, 0, len(page.Categories))
		for _, c := range page.Categories {
			categories = append(categories, strings.TrimPrefix(c.Title, "Category:"))
		}
		return map[string]any{
			"id":            "wiki_" + a.cfg.Language + "_" + strconv.Itoa(page.PageID),
			"title":         page.Title,
			"summary":       summary,
			"full_url":      page.FullURL,
			"canonical_url": page.FullURL,
			"language":      a.cfg.Language,
			"categories":    categories,
		}, nil
	}
	return nil, fmt.Errorf("page not found: %s", title)
}

// MapToStandardSchema maps a raw Wikipedia page dict to StandardDocument.
func (a *Adapter) MapToStandardSchema(raw map[string]any) models.StandardDocument {
	id, _ := raw["id"].(string)
	title, _ := raw["title"].(string)
	if title == "" {
		title = "Untitled"
	}
	summary, _ := raw["summary"].(string)
	docURL, _ := raw["url"].(string)
	if docURL == "" {
		docURL, _ = raw["full_url"].(string)
	}
	canonicalURL, _ := raw["canonical_url"].(string)
	language, _ := raw["language"].(string)
	if language == "" {
		language = a.cfg.Language
	}
	categories, _ := raw["categories"].([]string)

	var snippet *string
	if summary != "" {
		s := summary
		if len(s) > 200 {
			s = s[:200]
		}
		snippet = &s
	}

	return models.StandardDocument{
		ID:      id,
		Title:   title,
		Content: summary,
		Snippet: snippet,
		Score:   1.0,
		Metadata: models.DocumentMetadata{
			Source:   "wikipedia_" + language,
			URL:      stringPtrOrNil(docURL),
			Language: stringPtrOrNil(language),
			Tags:     categories,
			Extra: map[string]string{
				"canonical_url": canonicalURL,
			},
		},
		RetrievedAt: time.Now().UTC(),
	}
}

// HealthCheck probes a known-stable page to verify API reachability.
func (a *Adapter) HealthCheck(ctx context.Context) (adapter.Health, error) {
	start := time.Now()
	_, err := a.fetchPage(ctx, "Python_(programming_language)")
	latency := time.Since(start).Milliseconds()
	now := adapter.NowISO()

	if err != nil {
		return adapter.Health{
			Status:    adapter.StatusUnhealthy,
			LatencyMs: latency,
			LastCheck: &now,
			Message:   err.Error(),
		}, nil
	}
	return adapter.Health{
		Status:    adapter.StatusHealthy,
		LatencyMs: latency,
		LastCheck: &now,
		Message:   fmt.Sprintf("wikipedia (%s) OK", a.cfg.Language),
	}, nil
}

func (a *Adapter) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", a.cfg.UserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikipedia API returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func stringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
