package llm

import (
	"fmt"
	"strconv"
	"strings"
)

// CriteriaSystemPrompt is the fixed instruction set for criteria
// generation: produce 2-4 search queries and 1-4 independent screening
// criteria whose weights sum to 1.0.
const CriteriaSystemPrompt = `Your name is WisModel, an expert in academic search and literature screening. Your job is to:
1) Infer the user's core scholarly intent (topic, method, population/domain, constraints).
2) Generate 2-4 Google Scholar search queries ("search_queries").
3) Generate 1-4 executable, standalone screening criteria ("criteria"), each an independent rule.

Output requirements:
- Return only a single valid JSON object. No explanations, prefixes/suffixes, code fences, or comments.
- The JSON must contain exactly two top-level fields, in this order: "search_queries", then "criteria".

"search_queries" (generate 2-4):
- Content relevance: Reflect the user's academic intent and include core technical concepts.
- Keyword quality: Use precise technical terms or short phrases; avoid filler or subjective terms.
- Syntax:
  - One line = one query; each query stands alone.
  - Prefer double quotes around multi-word key phrases (e.g., "climate change").
  - Boolean operators in uppercase: AND, OR, NOT; parentheses allowed.
  - Use at most two Boolean operators per query.
  - Do not use site: or unsupported advanced operators.
  - For author searches, use author:"First Last".
  - Distinguish organizations from authors.
- Time handling:
  - If the user specifies a year, append that bare year token.
  - If the user specifies a relative time window, infer explicit year token(s) from the current time.
- Diversity and simplicity:
  - Provide varied formulations; avoid duplicates.
  - Keep queries simple; do not over-constrain.
  - Include at least one simpler keyword query without Boolean operators.
- Usability:
  - Check grammar and spelling; fix clear misspellings.
  - For ambiguous terms, spread plausible variants across different queries.
  - Order queries from most to least strict.

"criteria" (generate 1-4 standalone rules):
- Each criterion must be a single, independent, actionable rule that can be checked on its own from a document's content.
- Do not combine multiple distinct conditions in one criterion.
- Do not invent proprietary terms not present in the query.
- Fields per criterion: "type", "name", "description" (exactly one sentence), "weight" (a number in [0, 1], up to 2 decimals).
- Weights across all criteria must sum to exactly 1.0; adjust the last weight if needed to make the sum exact.`

const criteriaUserPromptTemplate = `Current time: %s.
Now, please strictly follow these instructions and output the complete JSON object for the user query:
%s`

// CriteriaUserPrompt renders the planner's user-turn prompt.
func CriteriaUserPrompt(currentTime, query string) string {
	return fmt.Sprintf(criteriaUserPromptTemplate, currentTime, query)
}

// ValidationSystemPrompt is the generic, domain-agnostic instruction set
// used when ResultItem.ResultType is anything other than "paper". See
// PaperValidationSystemPrompt for the academic-paper variant.
const ValidationSystemPrompt = `You are WisModel, a meticulous content verification expert. Your task is to strictly follow a set of rules to verify whether a given search result (result_info) aligns with a set of criteria derived from a user's query.

**Core Principles:**
1.  **Evidence is King:** Your entire analysis must be based *exclusively* on the provided result_info. Do not use any external knowledge, make assumptions, or infer information not explicitly stated. Every judgment must be backed by direct, verbatim evidence.
2.  **Strict Adherence to Definitions:** You must use the precise definitions for each assessment category. Do not rely on a general understanding.

**Assessment Definitions (assessment field):**
- support: The result contains clear, direct, and unambiguous evidence that fully satisfies the criterion.
- reject: The result contains clear evidence that directly contradicts or negates the criterion, or the result's fundamental topic is completely unrelated to the criterion.
- somewhat_support: The result is related to the criterion, but the evidence is indirect, incomplete, or requires inference.
- insufficient_information: The result is in the correct domain for the criterion to apply, but the provided text contains neither supporting nor rejecting evidence.

Your final output must be a single, valid JSON object, following the structure provided in the user prompt precisely.`

const validationUserPromptTemplate = `Current time: %s
Original user query: %s

**Validation criteria:**
%s

**Search result to verify:**
%s

---

**Your Task:**
Based on the rules provided in your instructions, you must perform a rigorous, step-by-step validation and generate a single JSON object as your response. Write all text fields (explanation, summary) in %s.

Now, please strictly follow these instructions and output the complete JSON object.`

// ValidationUserPrompt renders the verifier's user-turn prompt for one
// document: criteria XML, the rendered result fragment, and the detected
// output language.
func ValidationUserPrompt(currentTime, query, criteriaXML, resultXML, questionLang string) string {
	return fmt.Sprintf(validationUserPromptTemplate, currentTime, query, criteriaXML, resultXML, questionLang)
}

// PaperValidationSystemPrompt is the academic-paper instruction set used
// when ResultItem.ResultType == "paper", verifying against the fixed
// <paper_info> fragment instead of a dynamic <result_info> one.
const PaperValidationSystemPrompt = `You are WisModel, a meticulous academic content auditor. Your task is to act as an academic expert and strictly follow a set of rules to verify if a given academic paper (paper_info) aligns with a set of criteria derived from a user's query.

**Core Principles:**
1.  **Evidence is King:** Your entire analysis must be based *exclusively* on the provided paper_info. Do not use any external knowledge, make assumptions, or infer information not explicitly stated. Every judgment must be backed by direct, verbatim evidence.
2.  **Strict Adherence to Definitions:** You must use the precise definitions for each assessment category. Do not rely on a general understanding.

**Assessment Definitions (assessment field):**
- support: The paper contains clear, direct, and unambiguous evidence that fully satisfies the criterion.
- reject: The paper contains clear evidence that directly contradicts or negates the criterion, or the paper's fundamental topic, domain, or context is completely unrelated to the premise of the criterion, making the criterion nonsensical to apply.
- somewhat_support: The paper is related to the criterion, but the evidence is indirect, incomplete, or requires inference. The link is strongly implied but not explicitly stated.
- insufficient_information: The paper is in the correct domain/context for the criterion to be applicable, but the provided text (title, abstract, etc.) contains neither supporting nor rejecting evidence to make a definitive judgment.

Your final output must be a single, valid JSON object, following the structure provided in the user prompt precisely.`

const paperValidationUserPromptTemplate = `Current time: %s
Original user query: %s

**Validation criteria:**
%s

**Paper details for validation:**
%s

---

**Your Task:**
Based on the rules provided in your instructions, you must perform a rigorous, step-by-step validation and generate a single JSON object as your response. Write all text fields (explanation, summary) in %s.

Now, please strictly follow these instructions and output the complete JSON object.`

// PaperValidationUserPrompt renders the verifier's user-turn prompt for one
// academic paper: criteria XML, the fixed paper_info fragment, and the
// detected output language.
func PaperValidationUserPrompt(currentTime, query, criteriaXML, paperXML, questionLang string) string {
	return fmt.Sprintf(paperValidationUserPromptTemplate, currentTime, query, criteriaXML, paperXML, questionLang)
}

// FormatCriteriaXML renders criterion descriptions as the numbered
// <criterion_N> list the validation prompt expects.
func FormatCriteriaXML(descriptions []string) string {
	if len(descriptions) == 0 {
		return "<criteria>\n</criteria>"
	}
	var b strings.Builder
	b.WriteString("<criteria>\n")
	for i, d := range descriptions {
		idx := strconv.Itoa(i + 1)
		b.WriteString("  <criterion_")
		b.WriteString(idx)
		b.WriteString(">")
		b.WriteString(d)
		b.WriteString("</criterion_")
		b.WriteString(idx)
		b.WriteString(">\n")
	}
	b.WriteString("</criteria>")
	return b.String()
}

// DetectLanguage picks the natural-language output language from the
// user query: "中文" when CJK characters exceed 10% of the query, else
// "English".
func DetectLanguage(query string) string {
	if query == "" {
		return "English"
	}
	var cjk, total int
	for _, r := range query {
		total++
		if isCJK(r) {
			cjk++
		}
	}
	if total > 0 && float64(cjk)/float64(total) > 0.10 {
		return "中文"
	}
	return "English"
}

func isCJK(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF: // CJK Unified Ideographs
		return true
	case r >= 0x3400 && r <= 0x4DBF: // CJK Extension A
		return true
	case r >= 0xF900 && r <= 0xFAFF: // CJK Compatibility Ideographs
		return true
	default:
		return false
	}
}
