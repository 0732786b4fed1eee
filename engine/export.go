package engine

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"

	"github.com/atominnolab/opensift/models"
)

type exportRow struct {
	Query          string  `json:"query"`
	Classification string  `json:"classification"`
	WeightedScore  float64 `json:"weighted_score"`
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	SourceURL      string  `json:"source_url"`
	Summary        string  `json:"summary"`
}

func buildExportRows(results []models.SearchResponse) []exportRow {
	rows := make([]exportRow, 0)
	for _, r := range results {
		for _, group := range [][]models.ScoredResult{r.PerfectResults, r.PartialResults} {
			for _, s := range group {
				content := s.Result.Content
				if len(content) > 200 {
					content = content[:200]
				}
				rows = append(rows, exportRow{
					Query:          r.Query,
					Classification: string(s.Classification),
					WeightedScore:  s.WeightedScore,
					Title:          s.Result.Title,
					Content:        content,
					SourceURL:      s.Result.SourceURL,
					Summary:        s.Validation.Summary,
				})
			}
		}
	}
	return rows
}

// ExportResults serializes the aggregate perfect+partial rows across a
// batch of SearchResponses as "csv" or "json". Any other format yields
// the JSON rendering.
func ExportResults(results []models.SearchResponse, format string) string {
	rows := buildExportRows(results)

	if format == "csv" {
		return rowsToCSV(rows)
	}
	data, _ := json.Marshal(rows)
	return string(data)
}

func rowsToCSV(rows []exportRow) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"query", "classification", "weighted_score", "title", "content", "source_url", "summary"})
	for _, r := range rows {
		_ = w.Write([]string{
			r.Query,
			r.Classification,
			strconv.FormatFloat(r.WeightedScore, 'f', 4, 64),
			r.Title,
			r.Content,
			r.SourceURL,
			r.Summary,
		})
	}
	w.Flush()
	return buf.String()
}
