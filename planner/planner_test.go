package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/atominnolab/opensift/config"
	"github.com/atominnolab/opensift/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGateway struct {
	response map[string]any
	err      error
}

func (f *fakeGateway) ChatJSON(ctx context.Context, role, system, user, model string, temperature float64, maxTokens, maxRetries int) (map[string]any, error) {
	return f.response, f.err
}

func TestPlanner_Plan_DecomposeDisabled_UsesHeuristic(t *testing.T) {
	p := New(config.DefaultAIConfig(), &fakeGateway{err: errors.New("should not be called")}, zap.NewNop())

	req := models.SearchRequest{Query: "solar nowcasting", Options: models.SearchOptions{Decompose: false}}
	result := p.Plan(context.Background(), req)

	assert.Equal(t, []string{"solar nowcasting"}, result.SearchQueries)
	require.Len(t, result.Criteria, 1)
	assert.Equal(t, 1.0, result.Criteria[0].Weight)
}

func TestPlanner_Plan_NilGateway_UsesHeuristic(t *testing.T) {
	p := New(config.DefaultAIConfig(), nil, zap.NewNop())

	req := models.SearchRequest{Query: "machine learning for climate forecasting", Options: models.SearchOptions{Decompose: true}}
	result := p.Plan(context.Background(), req)

	assert.GreaterOrEqual(t, len(result.SearchQueries), 2)
}

func TestPlanner_Plan_LLMSuccess_ParsesCriteria(t *testing.T) {
	gw := &fakeGateway{response: map[string]any{
		"search_queries": []any{"solar nowcasting", "\"solar irradiance\" forecasting"},
		"criteria": []any{
			map[string]any{"type": "topic", "name": "Relevance", "description": "On-topic.", "weight": 0.6},
			map[string]any{"type": "method", "name": "Method", "description": "Uses ML.", "weight": 0.4},
		},
	}}
	p := New(config.DefaultAIConfig(), gw, zap.NewNop())

	req := models.SearchRequest{Query: "solar nowcasting", Options: models.SearchOptions{Decompose: true}}
	result := p.Plan(context.Background(), req)

	require.Len(t, result.SearchQueries, 2)
	require.Len(t, result.Criteria, 2)
	assert.Equal(t, "criterion_1", result.Criteria[0].CriterionID)
}

func TestPlanner_Plan_LLMFailure_FallsBackToHeuristic(t *testing.T) {
	gw := &fakeGateway{err: errors.New("gateway unavailable")}
	p := New(config.DefaultAIConfig(), gw, zap.NewNop())

	req := models.SearchRequest{Query: "quantum computing error correction", Options: models.SearchOptions{Decompose: true}}
	result := p.Plan(context.Background(), req)

	require.Len(t, result.Criteria, 1)
	assert.Equal(t, "criterion_1", result.Criteria[0].CriterionID)
}

func TestNormalizeWeights_RescalesToSumOne(t *testing.T) {
	criteria := []models.Criterion{
		{Weight: 0.5},
		{Weight: 0.3},
		{Weight: 0.1},
	}
	normalizeWeights(criteria)

	var sum float64
	for _, c := range criteria {
		sum += c.Weight
	}
	assert.InDelta(t, 1.0, sum, 0.001)
}

func TestNormalizeWeights_LeavesCloseEnoughSumsUntouched(t *testing.T) {
	criteria := []models.Criterion{{Weight: 0.5}, {Weight: 0.48}}
	normalizeWeights(criteria)
	assert.Equal(t, 0.5, criteria[0].Weight)
	assert.Equal(t, 0.48, criteria[1].Weight)
}

func TestSimpleResult_ShortQuery_AppendsOverview(t *testing.T) {
	result := simpleResult("golang")
	assert.Equal(t, []string{"golang", "golang overview"}, result.SearchQueries)
}

func TestSimpleResult_LongQuery_SplitsInHalf(t *testing.T) {
	result := simpleResult("deep learning models for climate nowcasting systems")
	assert.Len(t, result.SearchQueries, 3)
}

func TestParseCriteriaResponse_MissingSearchQueries_Errors(t *testing.T) {
	_, err := parseCriteriaResponse(map[string]any{"criteria": []any{map[string]any{}}})
	require.Error(t, err)
}

func TestParseCriteriaResponse_MissingCriteria_Errors(t *testing.T) {
	_, err := parseCriteriaResponse(map[string]any{"search_queries": []any{"a"}})
	require.Error(t, err)
}
