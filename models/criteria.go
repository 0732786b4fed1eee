package models

// Criterion is one independent, actionable screening rule the verifier
// checks against a document. Type is an open string enum — the planner's
// LLM path may emit values beyond the common set below.
type Criterion struct {
	CriterionID string  `json:"criterion_id"`
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// Common criterion types the planner's prompt template names as examples.
// The field itself accepts any string; this list is not exhaustive.
var CommonCriterionTypes = []string{
	"task", "method", "topic", "substance", "time", "population", "disease",
	"dataset", "document_type", "performance", "properties", "background",
	"affiliation", "location", "mechanism", "state", "publication_venue",
	"resource_property", "condition", "indicator", "person",
}

// CriteriaResult is the planner's output: queries to retrieve documents
// and criteria to screen them against. The planner rescales the weights
// to sum to exactly 1.0 when their sum is more than 0.05 away from 1.0; a
// sum within that tolerance, or a non-positive sum, is kept as given.
type CriteriaResult struct {
	SearchQueries []string    `json:"search_queries"`
	Criteria      []Criterion `json:"criteria"`
}
