// Package planner generates search queries and screening criteria from a
// user's natural-language query — the first stage of the filtering
// funnel. It prefers an LLM-driven decomposition and falls back to a
// heuristic split when the gateway is unconfigured or fails.
package planner

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/atominnolab/opensift/config"
	"github.com/atominnolab/opensift/llm"
	"github.com/atominnolab/opensift/models"
	"go.uber.org/zap"
)

// Gateway is the subset of llm.Gateway the planner depends on.
type Gateway interface {
	ChatJSON(ctx context.Context, role, system, user, model string, temperature float64, maxTokens, maxRetries int) (map[string]any, error)
}

// Planner turns a SearchRequest into a CriteriaResult.
type Planner struct {
	cfg     config.AIConfig
	gateway Gateway
	logger  *zap.Logger
}

// New builds a Planner. gateway may be nil — Plan then always uses the
// heuristic fallback, matching decompose=false / unconfigured-key behavior.
func New(cfg config.AIConfig, gateway Gateway, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{cfg: cfg, gateway: gateway, logger: logger.With(zap.String("component", "planner"))}
}

// Plan generates search queries and criteria for request. When
// options.decompose is false, or the LLM path is unavailable or fails,
// it falls back to heuristic decomposition of the original query.
func (p *Planner) Plan(ctx context.Context, request models.SearchRequest) models.CriteriaResult {
	if !request.Options.Decompose {
		return simpleResult(request.Query)
	}

	if p.gateway != nil {
		result, err := p.generateWithLLM(ctx, request.Query)
		if err == nil {
			return result
		}
		p.logger.Warn("LLM criteria generation failed, falling back to heuristic",
			zap.String("model", p.cfg.ModelPlanner), zap.Error(err))
	}

	return simpleResult(request.Query)
}

func (p *Planner) generateWithLLM(ctx context.Context, query string) (models.CriteriaResult, error) {
	currentTime := time.Now().UTC().Format("2006-01-02 15:04:05")
	userPrompt := llm.CriteriaUserPrompt(currentTime, query)

	raw, err := p.gateway.ChatJSON(ctx, "planner", llm.CriteriaSystemPrompt, userPrompt,
		p.cfg.ModelPlanner, 0.6, p.cfg.MaxTokens, p.cfg.MaxRetries)
	if err != nil {
		return models.CriteriaResult{}, err
	}
	return parseCriteriaResponse(raw)
}

func parseCriteriaResponse(raw map[string]any) (models.CriteriaResult, error) {
	queriesRaw, ok := raw["search_queries"].([]any)
	if !ok || len(queriesRaw) == 0 {
		return models.CriteriaResult{}, fmt.Errorf("LLM response missing or invalid 'search_queries'")
	}
	criteriaRaw, ok := raw["criteria"].([]any)
	if !ok || len(criteriaRaw) == 0 {
		return models.CriteriaResult{}, fmt.Errorf("LLM response missing or invalid 'criteria'")
	}

	queries := make([]string, 0, len(queriesRaw))
	for _, q := range queriesRaw {
		if s, ok := q.(string); ok {
			queries = append(queries, s)
		}
	}

	criteria := make([]models.Criterion, 0, len(criteriaRaw))
	for i, item := range criteriaRaw {
		c, _ := item.(map[string]any)
		criteria = append(criteria, models.Criterion{
			CriterionID: stringOrDefault(c["criterion_id"], fmt.Sprintf("criterion_%d", i+1)),
			Type:        stringOrDefault(c["type"], "topic"),
			Name:        stringOrDefault(c["name"], fmt.Sprintf("Criterion %d", i+1)),
			Description: stringOrDefault(c["description"], ""),
			Weight:      floatOrDefault(c["weight"], 0.0),
		})
	}

	normalizeWeights(criteria)

	return models.CriteriaResult{SearchQueries: queries, Criteria: criteria}, nil
}

// normalizeWeights rescales criteria weights to sum to exactly 1.0 when
// they drift by more than 0.05, absorbing rounding error into the last
// criterion so the sum is exact.
func normalizeWeights(criteria []models.Criterion) {
	if len(criteria) == 0 {
		return
	}
	var total float64
	for _, c := range criteria {
		total += c.Weight
	}
	if math.Abs(total-1.0) <= 0.05 || total <= 0 {
		return
	}
	for i := range criteria {
		criteria[i].Weight = round2(criteria[i].Weight / total)
	}
	var normalized float64
	for _, c := range criteria {
		normalized += c.Weight
	}
	last := len(criteria) - 1
	criteria[last].Weight = round2(criteria[last].Weight + (1.0 - normalized))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// simpleResult builds the heuristic fallback: the original query plus one
// or two derived variations, and a single full-weight relevance criterion.
func simpleResult(query string) models.CriteriaResult {
	queries := []string{query}
	tokens := strings.Fields(query)

	switch {
	case len(tokens) >= 4:
		mid := len(tokens) / 2
		queries = append(queries, strings.Join(tokens[:mid], " "), strings.Join(tokens[mid:], " "))
	case len(tokens) >= 2:
		reversed := make([]string, len(tokens))
		for i, t := range tokens {
			reversed[len(tokens)-1-i] = t
		}
		queries = append(queries, strings.Join(reversed, " "))
	default:
		queries = append(queries, query+" overview")
	}

	seen := make(map[string]bool, len(queries))
	unique := make([]string, 0, len(queries))
	for _, q := range queries {
		key := strings.ToLower(strings.TrimSpace(q))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, strings.TrimSpace(q))
	}
	if len(unique) == 0 {
		unique = []string{query}
	}

	return models.CriteriaResult{
		SearchQueries: unique,
		Criteria: []models.Criterion{
			{
				CriterionID: "criterion_1",
				Type:        "topic",
				Name:        "Query relevance",
				Description: fmt.Sprintf("The result is directly relevant to: %s", query),
				Weight:      1.0,
			},
		},
	}
}

func stringOrDefault(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func floatOrDefault(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return def
	}
}
