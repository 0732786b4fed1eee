package classifier

import (
	"testing"

	"github.com/atominnolab/opensift/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assessment(id string, a models.AssessmentType) models.CriterionAssessment {
	return models.CriterionAssessment{CriterionID: id, Assessment: a}
}

// Scenario A: single-criterion perfect.
func TestClassify_ScenarioA_SingleCriterionSupport_Perfect(t *testing.T) {
	criteria := []models.Criterion{{CriterionID: "c1", Type: "topic", Weight: 1.0}}
	validation := models.ValidationResult{CriteriaAssessment: []models.CriterionAssessment{
		assessment("c1", models.AssessmentSupport),
	}}

	scored := Classify(models.ResultItem{}, validation, criteria)

	assert.Equal(t, models.ClassificationPerfect, scored.Classification)
	assert.Equal(t, 1.0, scored.WeightedScore)
}

// Scenario B: single-criterion partial.
func TestClassify_ScenarioB_SingleCriterionSomewhatSupport_Partial(t *testing.T) {
	criteria := []models.Criterion{{CriterionID: "c1", Type: "topic", Weight: 1.0}}
	validation := models.ValidationResult{CriteriaAssessment: []models.CriterionAssessment{
		assessment("c1", models.AssessmentSomewhatSupport),
	}}

	scored := Classify(models.ResultItem{}, validation, criteria)

	assert.Equal(t, models.ClassificationPartial, scored.Classification)
	assert.Equal(t, 0.5, scored.WeightedScore)
}

func TestClassify_SingleCriterionReject_Reject(t *testing.T) {
	criteria := []models.Criterion{{CriterionID: "c1", Type: "topic", Weight: 1.0}}
	validation := models.ValidationResult{CriteriaAssessment: []models.CriterionAssessment{
		assessment("c1", models.AssessmentReject),
	}}
	scored := Classify(models.ResultItem{}, validation, criteria)
	assert.Equal(t, models.ClassificationReject, scored.Classification)
}

func TestClassify_SingleCriterionInsufficientInfo_Reject(t *testing.T) {
	criteria := []models.Criterion{{CriterionID: "c1", Type: "topic", Weight: 1.0}}
	validation := models.ValidationResult{CriteriaAssessment: []models.CriterionAssessment{
		assessment("c1", models.AssessmentInsufficientInfo),
	}}
	scored := Classify(models.ResultItem{}, validation, criteria)
	assert.Equal(t, models.ClassificationReject, scored.Classification)
}

// Scenario C: multi-criterion all support.
func TestClassify_ScenarioC_AllSupport_Perfect(t *testing.T) {
	criteria := []models.Criterion{
		{CriterionID: "c1", Type: "topic", Weight: 0.5},
		{CriterionID: "c2", Type: "method", Weight: 0.5},
	}
	validation := models.ValidationResult{CriteriaAssessment: []models.CriterionAssessment{
		assessment("c1", models.AssessmentSupport),
		assessment("c2", models.AssessmentSupport),
	}}

	scored := Classify(models.ResultItem{}, validation, criteria)

	assert.Equal(t, models.ClassificationPerfect, scored.Classification)
	assert.Equal(t, 1.0, scored.WeightedScore)
}

// Scenario D: multi-criterion, only the time-typed criterion supports.
func TestClassify_ScenarioD_OnlyTimeCriterionSupports_Reject(t *testing.T) {
	criteria := []models.Criterion{
		{CriterionID: "c1", Type: "time", Weight: 0.3},
		{CriterionID: "c2", Type: "topic", Weight: 0.7},
	}
	validation := models.ValidationResult{CriteriaAssessment: []models.CriterionAssessment{
		assessment("c1", models.AssessmentSupport),
		assessment("c2", models.AssessmentReject),
	}}

	scored := Classify(models.ResultItem{}, validation, criteria)

	assert.Equal(t, models.ClassificationReject, scored.Classification)
	assert.Equal(t, 0.3, scored.WeightedScore)
}

func TestClassify_MultiCriterion_NonTimeSomewhatSupport_Partial(t *testing.T) {
	criteria := []models.Criterion{
		{CriterionID: "c1", Type: "time", Weight: 0.3},
		{CriterionID: "c2", Type: "topic", Weight: 0.7},
	}
	validation := models.ValidationResult{CriteriaAssessment: []models.CriterionAssessment{
		assessment("c1", models.AssessmentReject),
		assessment("c2", models.AssessmentSomewhatSupport),
	}}

	scored := Classify(models.ResultItem{}, validation, criteria)
	assert.Equal(t, models.ClassificationPartial, scored.Classification)
}

func TestClassify_EmptyAssessments_Reject(t *testing.T) {
	criteria := []models.Criterion{{CriterionID: "c1", Type: "topic", Weight: 1.0}}
	scored := Classify(models.ResultItem{}, models.ValidationResult{}, criteria)
	assert.Equal(t, models.ClassificationReject, scored.Classification)
}

func TestClassifyBatch_SortsByPriorityThenDescendingScore(t *testing.T) {
	criteria := []models.Criterion{{CriterionID: "c1", Type: "topic", Weight: 1.0}}

	items := []models.ResultItem{
		{Title: "reject-item"},
		{Title: "perfect-item"},
		{Title: "partial-high"},
		{Title: "partial-low"},
	}
	validations := []models.ValidationResult{
		{CriteriaAssessment: []models.CriterionAssessment{assessment("c1", models.AssessmentReject)}},
		{CriteriaAssessment: []models.CriterionAssessment{assessment("c1", models.AssessmentSupport)}},
		{CriteriaAssessment: []models.CriterionAssessment{assessment("c1", models.AssessmentSomewhatSupport)}},
		{CriteriaAssessment: []models.CriterionAssessment{assessment("c1", models.AssessmentSomewhatSupport)}},
	}

	results := ClassifyBatch(items, validations, criteria)

	require.Len(t, results, 4)
	assert.Equal(t, models.ClassificationPerfect, results[0].Classification)
	assert.Equal(t, models.ClassificationPartial, results[1].Classification)
	assert.Equal(t, models.ClassificationPartial, results[2].Classification)
	assert.Equal(t, models.ClassificationReject, results[3].Classification)
}

func TestWeightedScore_RoundedToFourDecimals(t *testing.T) {
	criteria := []models.Criterion{
		{CriterionID: "c1", Type: "topic", Weight: 0.3333},
		{CriterionID: "c2", Type: "method", Weight: 0.6667},
	}
	validation := models.ValidationResult{CriteriaAssessment: []models.CriterionAssessment{
		assessment("c1", models.AssessmentSomewhatSupport),
		assessment("c2", models.AssessmentSupport),
	}}

	scored := Classify(models.ResultItem{}, validation, criteria)
	assert.InDelta(t, 0.8334, scored.WeightedScore, 0.0001)
}

func TestClassify_Deterministic_SameInputsSameOutput(t *testing.T) {
	criteria := []models.Criterion{
		{CriterionID: "c1", Type: "topic", Weight: 0.5},
		{CriterionID: "c2", Type: "method", Weight: 0.5},
	}
	validation := models.ValidationResult{CriteriaAssessment: []models.CriterionAssessment{
		assessment("c1", models.AssessmentSupport),
		assessment("c2", models.AssessmentSomewhatSupport),
	}}

	first := Classify(models.ResultItem{}, validation, criteria)
	second := Classify(models.ResultItem{}, validation, criteria)
	assert.Equal(t, first, second)
}
