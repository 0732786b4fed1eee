package models

import (
	"fmt"
	"sort"
	"strings"
)

// ResultItem is the generic document shape the verifier operates on. Any
// adapter output — academic paper, product listing, news article — is
// normalized to a ResultItem before it reaches the verifier.
//
// ResultType selects the verifier's prompt template: "paper" renders the
// fixed academic XML fragment from Fields; any other value renders the
// generic fragment built from Fields directly.
type ResultItem struct {
	ResultType    string            `json:"result_type"`
	Title         string            `json:"title"`
	Content       string            `json:"content"`
	SourceURL     string            `json:"source_url"`
	Fields        map[string]string `json:"fields"`
	SourceAdapter string            `json:"source_adapter"`
}

// NewResultItem returns a ResultItem with the originating model's field
// defaults ("generic" type, "N/A" placeholders, empty Fields map).
func NewResultItem() ResultItem {
	return ResultItem{
		ResultType: "generic",
		Title:      "N/A",
		Content:    "N/A",
		SourceURL:  "N/A",
		Fields:     map[string]string{},
	}
}

// ToPromptXML renders the item as the <result_info> XML fragment used by
// the verifier's generic prompt template. Field order follows Fields'
// insertion order is not guaranteed by Go maps, so keys are sorted for a
// deterministic, reproducible prompt.
func (r ResultItem) ToPromptXML() string {
	var b strings.Builder
	b.WriteString("<result_info>\n")
	fmt.Fprintf(&b, "    <title>%s</title>\n", r.Title)
	fmt.Fprintf(&b, "    <content>%s</content>\n", r.Content)
	if r.SourceURL != "" && r.SourceURL != "N/A" {
		fmt.Fprintf(&b, "    <source_url>%s</source_url>\n", r.SourceURL)
	}

	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := r.Fields[k]
		if v != "" && v != "N/A" {
			fmt.Fprintf(&b, "    <%s>%s</%s>\n", k, v, k)
		}
	}
	b.WriteString("</result_info>")
	return b.String()
}

// ToPaperPromptXML renders the item as the fixed <paper_info> XML fragment
// the verifier's paper-specific prompt expects. Used only when ResultType
// is "paper"; fields PaperInfo.ToResultItem omitted (because the source
// defaulted them to "N/A") render as "N/A" here too.
func (r ResultItem) ToPaperPromptXML() string {
	field := func(key string) string {
		if v, ok := r.Fields[key]; ok && v != "" {
			return v
		}
		return "N/A"
	}

	var b strings.Builder
	b.WriteString("<paper_info>\n")
	fmt.Fprintf(&b, "    <title>%s</title>\n", r.Title)
	fmt.Fprintf(&b, "    <authors>%s</authors>\n", field("authors"))
	fmt.Fprintf(&b, "    <affiliations>%s</affiliations>\n", field("affiliations"))
	fmt.Fprintf(&b, "    <conference_journal>%s</conference_journal>\n", field("conference_journal"))
	fmt.Fprintf(&b, "    <conference_journal_type>%s</conference_journal_type>\n", field("conference_journal_type"))
	fmt.Fprintf(&b, "    <research_field>%s</research_field>\n", field("research_field"))
	fmt.Fprintf(&b, "    <doi>%s</doi>\n", field("doi"))
	fmt.Fprintf(&b, "    <publication_date>%s</publication_date>\n", field("publication_date"))
	fmt.Fprintf(&b, "    <abstract>%s</abstract>\n", r.Content)
	fmt.Fprintf(&b, "    <citation_count>%s</citation_count>\n", field("citation_count"))
	fmt.Fprintf(&b, "    <source_url>%s</source_url>\n", r.SourceURL)
	b.WriteString("</paper_info>")
	return b.String()
}
