// Package verifier assesses each retrieved ResultItem against the
// planner's criteria via the LLM gateway, with bounded fan-out so a slow
// or failing item never blocks or cancels its peers.
package verifier

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/atominnolab/opensift/llm"
	"github.com/atominnolab/opensift/models"
	"go.uber.org/zap"
)

// Gateway is the subset of llm.Gateway the verifier depends on.
type Gateway interface {
	ChatJSON(ctx context.Context, role, system, user, model string, temperature float64, maxTokens, maxRetries int) (map[string]any, error)
}

// Config controls the verifier's model and concurrency settings.
type Config struct {
	Model          string
	Temperature    float64
	MaxTokens      int
	MaxRetries     int
	MaxConcurrency int
}

// Verifier assesses ResultItems against CriteriaResult criteria.
type Verifier struct {
	cfg     Config
	gateway Gateway
	logger  *zap.Logger
}

// New builds a Verifier. gateway may be nil — every call then degrades to
// the fallback validation, matching an unconfigured-key deployment.
func New(cfg Config, gateway Gateway, logger *zap.Logger) *Verifier {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{cfg: cfg, gateway: gateway, logger: logger.With(zap.String("component", "verifier"))}
}

// VerifyOne assesses one ResultItem against criteria. On any failure —
// gateway absent, call error, schema mismatch — it returns the fallback
// validation rather than propagating an error; the caller never observes
// this function fail.
func (v *Verifier) VerifyOne(ctx context.Context, item models.ResultItem, criteria []models.Criterion, query string) models.ValidationResult {
	if v.gateway == nil {
		return FallbackValidation(criteria)
	}

	result, err := v.callLLM(ctx, item, criteria, query)
	if err != nil {
		v.logger.Warn("verification failed, using fallback", zap.Error(err),
			zap.String("title", item.Title))
		return FallbackValidation(criteria)
	}
	return result
}

func (v *Verifier) callLLM(ctx context.Context, item models.ResultItem, criteria []models.Criterion, query string) (models.ValidationResult, error) {
	descriptions := make([]string, len(criteria))
	for i, c := range criteria {
		descriptions[i] = c.Description
	}
	criteriaXML := llm.FormatCriteriaXML(descriptions)
	currentTime := time.Now().UTC().Format("2006-01-02 15:04:05")
	lang := llm.DetectLanguage(query)

	systemPrompt := llm.ValidationSystemPrompt
	userPrompt := llm.ValidationUserPrompt(currentTime, query, criteriaXML, item.ToPromptXML(), lang)
	if item.ResultType == "paper" {
		systemPrompt = llm.PaperValidationSystemPrompt
		userPrompt = llm.PaperValidationUserPrompt(currentTime, query, criteriaXML, item.ToPaperPromptXML(), lang)
	}

	raw, err := v.gateway.ChatJSON(ctx, "verifier", systemPrompt, userPrompt,
		v.cfg.Model, v.cfg.Temperature, v.cfg.MaxTokens, v.cfg.MaxRetries)
	if err != nil {
		return models.ValidationResult{}, err
	}
	return parseValidationResponse(raw, criteria)
}

func parseValidationResponse(raw map[string]any, criteria []models.Criterion) (models.ValidationResult, error) {
	summary, _ := raw["summary"].(string)

	assessmentsRaw, _ := raw["criteria_assessment"].([]any)
	byID := make(map[string]models.CriterionAssessment, len(assessmentsRaw))
	for _, item := range assessmentsRaw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, _ := m["criterion_id"].(string)
		if id == "" {
			continue
		}
		byID[id] = models.CriterionAssessment{
			CriterionID: id,
			Assessment:  coerceAssessment(m["assessment"]),
			Explanation: stringOf(m["explanation"]),
			Evidence:    parseEvidence(m["evidence"]),
		}
	}

	assessments := make([]models.CriterionAssessment, 0, len(criteria))
	for _, c := range criteria {
		if a, ok := byID[c.CriterionID]; ok {
			assessments = append(assessments, a)
			continue
		}
		assessments = append(assessments, models.CriterionAssessment{
			CriterionID: c.CriterionID,
			Assessment:  models.AssessmentInsufficientInfo,
			Explanation: "",
		})
	}

	return models.ValidationResult{CriteriaAssessment: assessments, Summary: summary}, nil
}

func coerceAssessment(v any) models.AssessmentType {
	s, _ := v.(string)
	a := models.AssessmentType(s)
	if a.IsValid() {
		return a
	}
	return models.AssessmentInsufficientInfo
}

func parseEvidence(v any) []models.Evidence {
	items, _ := v.([]any)
	out := make([]models.Evidence, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, models.Evidence{Source: stringOf(m["source"]), Text: stringOf(m["text"])})
	}
	return out
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

// FallbackValidation returns the degraded ValidationResult used whenever
// an item's verification cannot complete: every criterion is marked
// insufficient_information with no explanation or evidence.
func FallbackValidation(criteria []models.Criterion) models.ValidationResult {
	assessments := make([]models.CriterionAssessment, len(criteria))
	for i, c := range criteria {
		assessments[i] = models.CriterionAssessment{
			CriterionID: c.CriterionID,
			Assessment:  models.AssessmentInsufficientInfo,
			Explanation: "",
		}
	}
	return models.ValidationResult{CriteriaAssessment: assessments, Summary: "Verification failed."}
}

// VerifyBatch verifies every item against criteria, bounded to
// cfg.MaxConcurrency concurrent calls. Results are returned in the same
// order as items; no item's failure affects another's.
func (v *Verifier) VerifyBatch(ctx context.Context, items []models.ResultItem, criteria []models.Criterion, query string) []models.ValidationResult {
	results := make([]models.ValidationResult, len(items))
	sem := make(chan struct{}, v.cfg.MaxConcurrency)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(idx int, it models.ResultItem) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = FallbackValidation(criteria)
				return
			}
			results[idx] = v.VerifyOne(ctx, it, criteria, query)
		}(i, item)
	}
	wg.Wait()
	return results
}

// CompletedVerification pairs one item's validation with its original
// index, for consumers that need completion order rather than submission
// order (the engine's streaming mode).
type CompletedVerification struct {
	Index      int
	Item       models.ResultItem
	Validation models.ValidationResult
}

// VerifyBatchStream verifies every item concurrently under the same
// bounded semaphore as VerifyBatch, but delivers results over a channel
// in completion order rather than submission order. The channel is
// closed after every item has been delivered.
func (v *Verifier) VerifyBatchStream(ctx context.Context, items []models.ResultItem, criteria []models.Criterion, query string) <-chan CompletedVerification {
	out := make(chan CompletedVerification, len(items))
	sem := make(chan struct{}, v.cfg.MaxConcurrency)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(idx int, it models.ResultItem) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				out <- CompletedVerification{Index: idx, Item: it, Validation: FallbackValidation(criteria)}
				return
			}
			validation := v.VerifyOne(ctx, it, criteria, query)
			out <- CompletedVerification{Index: idx, Item: it, Validation: validation}
		}(i, item)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// ValidateCriterionIDs reports an error if the set of criterion_id values
// in result does not exactly match criteria's declared IDs — defensive
// parity check used by tests and callers that construct ValidationResult
// outside parseValidationResponse.
func ValidateCriterionIDs(result models.ValidationResult, criteria []models.Criterion) error {
	want := make(map[string]bool, len(criteria))
	for _, c := range criteria {
		want[c.CriterionID] = true
	}
	got := make(map[string]bool, len(result.CriteriaAssessment))
	for _, a := range result.CriteriaAssessment {
		got[a.CriterionID] = true
	}
	if len(want) != len(got) {
		return fmt.Errorf("criterion_id set mismatch: want %d, got %d", len(want), len(got))
	}
	missing := make([]string, 0)
	for id := range want {
		if !got[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing criterion_id(s): %v", missing)
	}
	return nil
}
