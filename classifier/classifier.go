// Package classifier maps a ResultItem's ValidationResult to a final
// ResultClassification and weighted score. Classification is a pure,
// deterministic function of the assessments and criteria metadata.
package classifier

import (
	"math"
	"sort"

	"github.com/atominnolab/opensift/models"
)

var scoreMap = map[models.AssessmentType]float64{
	models.AssessmentSupport:          1.0,
	models.AssessmentSomewhatSupport:  0.5,
	models.AssessmentInsufficientInfo: 0.0,
	models.AssessmentReject:           0.0,
}

// Classify labels one result and computes its weighted score from
// validation and the originating criteria (needed for type and weight).
func Classify(item models.ResultItem, validation models.ValidationResult, criteria []models.Criterion) models.ScoredResult {
	criteriaByID := make(map[string]models.Criterion, len(criteria))
	for _, c := range criteria {
		criteriaByID[c.CriterionID] = c
	}

	var classification models.ResultClassification
	if len(criteria) == 1 {
		classification = classifySingle(validation.CriteriaAssessment)
	} else {
		classification = classifyMultiple(validation.CriteriaAssessment, criteriaByID)
	}

	score := weightedScore(validation.CriteriaAssessment, criteriaByID)

	return models.ScoredResult{
		Result:         item,
		Validation:     validation,
		Classification: classification,
		WeightedScore:  round4(score),
	}
}

// ClassifyBatch classifies every item and sorts the results by
// classification priority (perfect < partial < reject), then by
// descending weighted score within each group. The sort is stable.
func ClassifyBatch(items []models.ResultItem, validations []models.ValidationResult, criteria []models.Criterion) []models.ScoredResult {
	results := make([]models.ScoredResult, len(items))
	for i := range items {
		results[i] = Classify(items[i], validations[i], criteria)
	}

	sort.SliceStable(results, func(i, j int) bool {
		pi, pj := priority(results[i].Classification), priority(results[j].Classification)
		if pi != pj {
			return pi < pj
		}
		return results[i].WeightedScore > results[j].WeightedScore
	})

	return results
}

func priority(c models.ResultClassification) int {
	switch c {
	case models.ClassificationPerfect:
		return 0
	case models.ClassificationPartial:
		return 1
	default:
		return 2
	}
}

func classifySingle(assessments []models.CriterionAssessment) models.ResultClassification {
	if len(assessments) == 0 {
		return models.ClassificationReject
	}
	switch assessments[0].Assessment {
	case models.AssessmentSupport:
		return models.ClassificationPerfect
	case models.AssessmentSomewhatSupport:
		return models.ClassificationPartial
	default:
		return models.ClassificationReject
	}
}

func classifyMultiple(assessments []models.CriterionAssessment, criteriaByID map[string]models.Criterion) models.ResultClassification {
	if len(assessments) == 0 {
		return models.ClassificationReject
	}

	allSupport := true
	for _, a := range assessments {
		if a.Assessment != models.AssessmentSupport {
			allSupport = false
			break
		}
	}
	if allSupport {
		return models.ClassificationPerfect
	}

	for _, a := range assessments {
		if a.Assessment != models.AssessmentSupport && a.Assessment != models.AssessmentSomewhatSupport {
			continue
		}
		if c, ok := criteriaByID[a.CriterionID]; ok && c.Type != "time" {
			return models.ClassificationPartial
		}
	}

	return models.ClassificationReject
}

func weightedScore(assessments []models.CriterionAssessment, criteriaByID map[string]models.Criterion) float64 {
	var total float64
	for _, a := range assessments {
		weight := 0.0
		if c, ok := criteriaByID[a.CriterionID]; ok {
			weight = c.Weight
		}
		total += scoreMap[a.Assessment] * weight
	}
	return math.Min(1.0, total)
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
