// Package engine orchestrates the planner, adapter fan-out, verifier and
// classifier stages into the four request-facing operations: plan,
// search (complete), search stream (SSE), and batch search.
package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/atominnolab/opensift/adapter"
	"github.com/atominnolab/opensift/classifier"
	"github.com/atominnolab/opensift/internal/ctxkeys"
	"github.com/atominnolab/opensift/models"
	"github.com/atominnolab/opensift/planner"
	"github.com/atominnolab/opensift/verifier"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Planner is the subset of planner.Planner the engine depends on.
type Planner interface {
	Plan(ctx context.Context, request models.SearchRequest) models.CriteriaResult
}

// Verifier is the subset of verifier.Verifier the engine depends on.
type Verifier interface {
	VerifyBatch(ctx context.Context, items []models.ResultItem, criteria []models.Criterion, query string) []models.ValidationResult
	VerifyBatchStream(ctx context.Context, items []models.ResultItem, criteria []models.Criterion, query string) <-chan verifier.CompletedVerification
}

// Engine orchestrates the filtering funnel end to end.
type Engine struct {
	planner  Planner
	verifier Verifier
	registry *adapter.Registry
	logger   *zap.Logger
}

// New builds an Engine over an already-wired planner, verifier and
// adapter registry.
func New(p Planner, v Verifier, registry *adapter.Registry, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{planner: p, verifier: v, registry: registry, logger: logger.With(zap.String("component", "engine"))}
}

func newRequestID(prefix string) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "_" + hex[:12]
}

// Plan runs only the planner stage.
func (e *Engine) Plan(ctx context.Context, request models.SearchRequest) models.PlanResponse {
	start := time.Now()
	requestID := newRequestID("plan")
	ctx = ctxkeys.WithRunID(ctx, requestID)
	criteria := e.planner.Plan(ctx, request)

	return models.PlanResponse{
		RequestID:        requestID,
		Query:            request.Query,
		CriteriaResult:   criteria,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
}

// Search runs the full funnel in complete mode, waiting for every item's
// verification before returning.
func (e *Engine) Search(ctx context.Context, request models.SearchRequest) models.SearchResponse {
	start := time.Now()
	requestID := newRequestID("req")
	ctx = ctxkeys.WithRunID(ctx, requestID)

	criteriaResult := e.planner.Plan(ctx, request)

	items := e.executeSearches(ctx, criteriaResult.SearchQueries, request)
	if len(items) == 0 {
		return models.SearchResponse{
			RequestID:        requestID,
			Status:           models.StatusNoResults,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			Query:            request.Query,
			CriteriaResult:   criteriaResult,
			TotalScanned:     0,
		}
	}

	var validations []models.ValidationResult
	if request.Options.Verify {
		validations = e.verifier.VerifyBatch(ctx, items, criteriaResult.Criteria, request.Query)
	} else {
		validations = make([]models.ValidationResult, len(items))
		for i := range items {
			validations[i] = verifier.FallbackValidation(criteriaResult.Criteria)
		}
	}

	if request.Options.Classify {
		scored := classifier.ClassifyBatch(items, validations, criteriaResult.Criteria)

		perfect := make([]models.ScoredResult, 0, len(scored))
		partial := make([]models.ScoredResult, 0, len(scored))
		rejectedCount := 0
		for _, s := range scored {
			switch s.Classification {
			case models.ClassificationPerfect:
				perfect = append(perfect, s)
			case models.ClassificationPartial:
				partial = append(partial, s)
			default:
				rejectedCount++
			}
		}

		return models.SearchResponse{
			RequestID:        requestID,
			Status:           models.StatusCompleted,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			Query:            request.Query,
			CriteriaResult:   criteriaResult,
			PerfectResults:   perfect,
			PartialResults:   partial,
			RejectedCount:    rejectedCount,
			TotalScanned:     len(items),
		}
	}

	raw := make([]models.RawVerifiedResult, len(items))
	for i := range items {
		raw[i] = models.RawVerifiedResult{Result: items[i], Validation: validations[i]}
	}

	return models.SearchResponse{
		RequestID:        requestID,
		Status:           models.StatusCompleted,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Query:            request.Query,
		CriteriaResult:   criteriaResult,
		RawResults:       raw,
		TotalScanned:     len(items),
	}
}

// SearchStream runs the full funnel in streaming mode. The returned
// channel carries exactly the event sequence described by the engine's
// operation contract and is closed after the terminal done/error event.
func (e *Engine) SearchStream(ctx context.Context, request models.SearchRequest) <-chan models.StreamEvent {
	out := make(chan models.StreamEvent, 4)

	go func() {
		defer close(out)
		start := time.Now()
		requestID := newRequestID("req")
		ctx := ctxkeys.WithRunID(ctx, requestID)

		criteriaResult := e.planner.Plan(ctx, request)

		out <- models.StreamEvent{Event: models.EventCriteria, Data: map[string]any{
			"request_id":      requestID,
			"query":           request.Query,
			"criteria_result": criteriaResult,
		}}

		items := e.executeSearches(ctx, criteriaResult.SearchQueries, request)

		out <- models.StreamEvent{Event: models.EventSearchComplete, Data: map[string]any{
			"total_results":        len(items),
			"search_queries_count": len(criteriaResult.SearchQueries),
			"results":              items,
		}}

		if len(items) == 0 {
			out <- models.StreamEvent{Event: models.EventDone, Data: map[string]any{
				"request_id":         requestID,
				"status":             models.StatusNoResults,
				"total_scanned":      0,
				"perfect_count":      0,
				"partial_count":      0,
				"rejected_count":     0,
				"processing_time_ms": time.Since(start).Milliseconds(),
			}}
			return
		}

		var perfectCount, partialCount, rejectedCount int
		index := 0

		var completions <-chan verifier.CompletedVerification
		if request.Options.Verify {
			completions = e.verifier.VerifyBatchStream(ctx, items, criteriaResult.Criteria, request.Query)
		} else {
			completions = syntheticCompletions(items, criteriaResult.Criteria)
		}

		for cv := range completions {
			index++
			if request.Options.Classify {
				scored := classifier.Classify(cv.Item, cv.Validation, criteriaResult.Criteria)
				switch scored.Classification {
				case models.ClassificationPerfect:
					perfectCount++
				case models.ClassificationPartial:
					partialCount++
				default:
					rejectedCount++
				}
				out <- models.StreamEvent{Event: models.EventResult, Data: map[string]any{
					"index":         index,
					"total":         len(items),
					"scored_result": scored,
				}}
			} else {
				out <- models.StreamEvent{Event: models.EventResult, Data: map[string]any{
					"index": index,
					"total": len(items),
					"raw_result": models.RawVerifiedResult{
						Result:     cv.Item,
						Validation: cv.Validation,
					},
				}}
			}
		}

		out <- models.StreamEvent{Event: models.EventDone, Data: map[string]any{
			"request_id":         requestID,
			"status":             models.StatusCompleted,
			"total_scanned":      len(items),
			"perfect_count":      perfectCount,
			"partial_count":      partialCount,
			"rejected_count":     rejectedCount,
			"processing_time_ms": time.Since(start).Milliseconds(),
		}}
	}()

	return out
}

// syntheticCompletions feeds verify=false items through the same channel
// shape VerifyBatchStream uses, each paired with the fallback validation.
func syntheticCompletions(items []models.ResultItem, criteria []models.Criterion) <-chan verifier.CompletedVerification {
	out := make(chan verifier.CompletedVerification, len(items))
	for i, item := range items {
		out <- verifier.CompletedVerification{Index: i, Item: item, Validation: verifier.FallbackValidation(criteria)}
	}
	close(out)
	return out
}

// BatchSearch runs Search independently for each query in request,
// concurrently, and optionally serializes the aggregate perfect+partial
// rows as CSV or JSON.
func (e *Engine) BatchSearch(ctx context.Context, request models.BatchSearchRequest) models.BatchSearchResponse {
	start := time.Now()

	results := make([]models.SearchResponse, len(request.Queries))
	var wg sync.WaitGroup
	for i, query := range request.Queries {
		wg.Add(1)
		go func(idx int, q string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[idx] = models.SearchResponse{
						RequestID:    newRequestID("req_batch_error"),
						Status:       models.StatusError,
						Query:        q,
						TotalScanned: 0,
					}
				}
			}()
			results[idx] = e.Search(ctx, models.SearchRequest{
				Query:   q,
				Options: request.Options,
				Context: request.Context,
			})
		}(i, query)
	}
	wg.Wait()

	var exportData *string
	if request.ExportFormat != nil {
		data := ExportResults(results, *request.ExportFormat)
		exportData = &data
	}

	return models.BatchSearchResponse{
		Status:           models.StatusCompleted,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		TotalQueries:     len(request.Queries),
		Results:          results,
		ExportFormat:     request.ExportFormat,
		ExportData:       exportData,
	}
}

type searchTask struct {
	adapterName string
	usePaper    bool
	items       []models.ResultItem
}

// executeSearches dispatches |queries| × |adapters| concurrent search
// tasks, converts each backend's hits to ResultItems, and returns the
// deduplicated union in a deterministic order: task submission order
// (adapter-major, then query-minor), first writer wins on a
// case-insensitive trimmed title key.
func (e *Engine) executeSearches(ctx context.Context, queries []string, request models.SearchRequest) []models.ResultItem {
	if e.registry == nil {
		return nil
	}
	adapters := e.registry.GetAdapters(request.Options.Adapters)
	if len(adapters) == 0 {
		e.logger.Warn("no search adapter available, returning empty results")
		return nil
	}

	tasks := make([]searchTask, 0, len(adapters)*len(queries))
	for _, a := range adapters {
		_, usePaper := a.(adapter.PaperSearcher)
		for range queries {
			tasks = append(tasks, searchTask{adapterName: a.Name(), usePaper: usePaper})
		}
	}

	results := make([][]models.ResultItem, len(tasks))
	var wg sync.WaitGroup
	taskIdx := 0
	for _, a := range adapters {
		paperSearcher, usePaper := a.(adapter.PaperSearcher)
		for _, query := range queries {
			wg.Add(1)
			go func(idx int, a adapter.Adapter, query string) {
				defer wg.Done()
				items, err := e.runOneSearch(ctx, a, paperSearcher, usePaper, query, request.Options)
				if err != nil {
					e.logger.Warn("search query failed on adapter", zap.String("adapter", a.Name()),
						zap.String("query", query), zap.Error(err))
					return
				}
				results[idx] = items
			}(taskIdx, a, query)
			taskIdx++
		}
	}
	wg.Wait()

	seenTitles := make(map[string]bool)
	items := make([]models.ResultItem, 0)
	for i, taskItems := range results {
		name := tasks[i].adapterName
		for _, item := range taskItems {
			item.SourceAdapter = name
			key := strings.ToLower(strings.TrimSpace(item.Title))
			if seenTitles[key] {
				continue
			}
			seenTitles[key] = true
			items = append(items, item)
		}
	}
	return items
}

func (e *Engine) runOneSearch(ctx context.Context, a adapter.Adapter, paperSearcher adapter.PaperSearcher, usePaper bool, query string, options models.SearchOptions) ([]models.ResultItem, error) {
	if usePaper {
		papers, err := paperSearcher.SearchPapers(ctx, query, options)
		if err != nil {
			return nil, err
		}
		items := make([]models.ResultItem, len(papers))
		for i, p := range papers {
			items[i] = p.ToResultItem()
		}
		return items, nil
	}

	docs, err := adapter.SearchAndNormalize(ctx, a, query, options)
	if err != nil {
		return nil, err
	}
	items := make([]models.ResultItem, len(docs))
	for i, d := range docs {
		items[i] = d.ToResultItem(a.Name())
	}
	return items, nil
}
