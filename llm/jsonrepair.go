package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// stripCodeFence removes a surrounding markdown code fence (```json ... ```
// or ``` ... ```) from raw LLM output, if present.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if nl := strings.Index(text, "\n"); nl != -1 {
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

var (
	trailingCommaRe  = regexp.MustCompile(`,\s*([}\]])`)
	missingCommaNLRe = regexp.MustCompile(`("\s*)\n(\s*")`)
	missingCommaObjRe = regexp.MustCompile(`(})\s*({)`)
	missingCommaArrRe = regexp.MustCompile(`(])\s*(\[)`)
	missingCommaQuoBraceRe = regexp.MustCompile(`(")\s*({)`)
	missingCommaBraceQuoRe = regexp.MustCompile(`(})\s*(")`)
)

// repairJSON attempts to recover a valid JSON object from malformed LLM
// output, applying the repair steps from the most to least conservative.
// Returns the decoded object, or nil if every step still fails to parse.
func repairJSON(text string) map[string]any {
	start := strings.Index(text, "{")
	if start == -1 {
		return nil
	}
	text = text[start:]

	openBraces := strings.Count(text, "{") - strings.Count(text, "}")
	openBrackets := strings.Count(text, "[") - strings.Count(text, "]")
	if openBraces > 0 || openBrackets > 0 {
		text = strings.TrimRight(text, " \t\r\n")
		text = strings.TrimSuffix(text, ",")
		if openBrackets > 0 {
			text += strings.Repeat("]", openBrackets)
		}
		if openBraces > 0 {
			text += strings.Repeat("}", openBraces)
		}
	}

	text = trailingCommaRe.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "\t", "\\t")

	if obj, ok := tryParseObject(text); ok {
		return obj
	}

	text = missingCommaNLRe.ReplaceAllString(text, "$1,\n$2")
	text = missingCommaObjRe.ReplaceAllString(text, "$1,$2")
	text = missingCommaArrRe.ReplaceAllString(text, "$1,$2")
	text = missingCommaQuoBraceRe.ReplaceAllString(text, "$1,$2")
	text = missingCommaBraceQuoRe.ReplaceAllString(text, "$1,$2")

	if obj, ok := tryParseObject(text); ok {
		return obj
	}

	text = escapeNewlinesInStrings(text)

	if obj, ok := tryParseObject(text); ok {
		return obj
	}
	return nil
}

func tryParseObject(text string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// escapeNewlinesInStrings walks s tracking whether the current position is
// inside an unescaped JSON string, replacing literal newlines found there
// with the two-character escape sequence \n.
func escapeNewlinesInStrings(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for _, ch := range s {
		if escaped {
			b.WriteRune(ch)
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			b.WriteRune(ch)
			continue
		}
		if ch == '"' {
			inString = !inString
		}
		if inString && ch == '\n' {
			b.WriteString("\\n")
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
