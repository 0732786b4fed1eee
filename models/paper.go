package models

import "strconv"

// PaperInfo is the rich, academic-specific schema returned by scholarly
// adapters directly (bypassing the generic StandardDocument projection).
// Fields unknown to the source adapter are left as "N/A".
type PaperInfo struct {
	Title                 string `json:"title"`
	Authors               string `json:"authors"`
	Affiliations          string `json:"affiliations"`
	ConferenceJournal     string `json:"conference_journal"`
	ConferenceJournalType string `json:"conference_journal_type"`
	ResearchField         string `json:"research_field"`
	DOI                   string `json:"doi"`
	PublicationDate       string `json:"publication_date"`
	Abstract              string `json:"abstract"`
	CitationCount         int    `json:"citation_count"`
	SourceURL             string `json:"source_url"`
}

// NewPaperInfo returns a PaperInfo with every string field defaulted to
// "N/A", matching the originating model's field defaults.
func NewPaperInfo() PaperInfo {
	return PaperInfo{
		Title:                 "N/A",
		Authors:               "N/A",
		Affiliations:          "N/A",
		ConferenceJournal:     "N/A",
		ConferenceJournalType: "N/A",
		ResearchField:         "N/A",
		DOI:                   "N/A",
		PublicationDate:       "N/A",
		Abstract:              "N/A",
		SourceURL:             "N/A",
	}
}

// ToResultItem converts a PaperInfo into the generic ResultItem the
// verifier consumes, mapping known-non-default academic fields into
// Fields and stamping ResultType "paper".
func (p PaperInfo) ToResultItem() ResultItem {
	fields := map[string]string{}
	if p.Authors != "N/A" {
		fields["authors"] = p.Authors
	}
	if p.Affiliations != "N/A" {
		fields["affiliations"] = p.Affiliations
	}
	if p.ConferenceJournal != "N/A" {
		fields["conference_journal"] = p.ConferenceJournal
	}
	if p.ConferenceJournalType != "N/A" {
		fields["conference_journal_type"] = p.ConferenceJournalType
	}
	if p.ResearchField != "N/A" {
		fields["research_field"] = p.ResearchField
	}
	if p.DOI != "N/A" {
		fields["doi"] = p.DOI
	}
	if p.PublicationDate != "N/A" {
		fields["publication_date"] = p.PublicationDate
	}
	if p.CitationCount > 0 {
		fields["citation_count"] = strconv.Itoa(p.CitationCount)
	}

	return ResultItem{
		ResultType: "paper",
		Title:      p.Title,
		Content:    p.Abstract,
		SourceURL:  p.SourceURL,
		Fields:     fields,
	}
}
