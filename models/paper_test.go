package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaperInfo_Defaults(t *testing.T) {
	p := NewPaperInfo()

	assert.Equal(t, "N/A", p.Title)
	assert.Equal(t, "N/A", p.Authors)
	assert.Equal(t, "N/A", p.SourceURL)
	assert.Equal(t, 0, p.CitationCount)
}

func TestPaperInfo_ToResultItem_OmitsDefaults(t *testing.T) {
	p := NewPaperInfo()
	p.Title = "Attention Is All You Need"
	p.Abstract = "We propose a new architecture."
	p.SourceURL = "https://arxiv.org/abs/1706.03762"
	p.Authors = "Vaswani et al."
	p.CitationCount = 9001

	item := p.ToResultItem()

	assert.Equal(t, "paper", item.ResultType)
	assert.Equal(t, "Attention Is All You Need", item.Title)
	assert.Equal(t, "We propose a new architecture.", item.Content)
	assert.Equal(t, "Vaswani et al.", item.Fields["authors"])
	assert.Equal(t, "9001", item.Fields["citation_count"])
	assert.NotContains(t, item.Fields, "affiliations")
	assert.NotContains(t, item.Fields, "doi")
}

func TestPaperInfo_ToResultItem_ZeroCitationsOmitted(t *testing.T) {
	p := NewPaperInfo()
	item := p.ToResultItem()

	assert.NotContains(t, item.Fields, "citation_count")
}
