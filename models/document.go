package models

import (
	"strings"
	"time"
)

// DocumentMetadata carries adapter-reported metadata for one StandardDocument.
type DocumentMetadata struct {
	Source        string            `json:"source"`
	URL           *string           `json:"url,omitempty"`
	PublishedDate *string           `json:"published_date,omitempty"`
	Author        *string           `json:"author,omitempty"`
	Language      *string           `json:"language,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// StandardDocument is the generic mapping target every adapter without a
// native PaperInfo path must produce via MapToStandardSchema.
type StandardDocument struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	Snippet     *string          `json:"snippet,omitempty"`
	Score       float64          `json:"score"`
	Metadata    DocumentMetadata `json:"metadata"`
	RetrievedAt time.Time        `json:"retrieved_at"`
}

// ToResultItem converts a StandardDocument into the generic ResultItem
// consumed by the verifier, projecting non-empty metadata into Fields.
func (d StandardDocument) ToResultItem(sourceAdapter string) ResultItem {
	fields := map[string]string{}
	if d.Metadata.Author != nil && *d.Metadata.Author != "" {
		fields["author"] = *d.Metadata.Author
	}
	if d.Metadata.Source != "" {
		fields["source"] = d.Metadata.Source
	}
	if d.Metadata.PublishedDate != nil && *d.Metadata.PublishedDate != "" {
		fields["published_date"] = *d.Metadata.PublishedDate
	}
	if len(d.Metadata.Tags) > 0 {
		fields["tags"] = strings.Join(d.Metadata.Tags, ", ")
	}
	for k, v := range d.Metadata.Extra {
		if v != "" {
			fields[k] = v
		}
	}

	content := d.Content
	if content == "" && d.Snippet != nil {
		content = *d.Snippet
	}

	sourceURL := "N/A"
	if d.Metadata.URL != nil && *d.Metadata.URL != "" {
		sourceURL = *d.Metadata.URL
	}

	return ResultItem{
		ResultType:    "generic",
		Title:         d.Title,
		Content:       content,
		SourceURL:     sourceURL,
		Fields:        fields,
		SourceAdapter: sourceAdapter,
	}
}
