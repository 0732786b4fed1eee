package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"leading/trailing whitespace", "  \n```json\n{\"a\": 1}\n```  \n", `{"a": 1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stripCodeFence(tc.in))
		})
	}
}

func TestRepairJSON_LeadingNoise(t *testing.T) {
	in := `Sure, here is the result: {"a": 1, "b": 2}`
	obj := repairJSON(in)
	assert.NotNil(t, obj)
	assert.Equal(t, float64(1), obj["a"])
	assert.Equal(t, float64(2), obj["b"])
}

func TestRepairJSON_UnclosedBraces(t *testing.T) {
	in := `{"a": 1, "b": [1, 2, 3`
	obj := repairJSON(in)
	assert.NotNil(t, obj)
	assert.Equal(t, float64(1), obj["a"])
}

func TestRepairJSON_TrailingComma(t *testing.T) {
	in := `{"a": 1, "b": 2,}`
	obj := repairJSON(in)
	assert.NotNil(t, obj)
	assert.Equal(t, float64(2), obj["b"])
}

func TestRepairJSON_LiteralTab(t *testing.T) {
	in := "{\"a\": \"x\ty\"}"
	obj := repairJSON(in)
	assert.NotNil(t, obj)
	assert.Equal(t, "x\ty", obj["a"])
}

func TestRepairJSON_MissingCommaBetweenStrings(t *testing.T) {
	in := "{\"a\": \"one\"\n\"b\": \"two\"}"
	obj := repairJSON(in)
	assert.NotNil(t, obj)
	assert.Equal(t, "one", obj["a"])
	assert.Equal(t, "two", obj["b"])
}

func TestRepairJSON_UnescapedNewlineInString(t *testing.T) {
	in := "{\"a\": \"line one\nline two\"}"
	obj := repairJSON(in)
	assert.NotNil(t, obj)
	assert.Equal(t, "line one\nline two", obj["a"])
}

func TestRepairJSON_NoOpeningBrace(t *testing.T) {
	obj := repairJSON("not json at all")
	assert.Nil(t, obj)
}

func TestRepairJSON_Unrepairable(t *testing.T) {
	obj := repairJSON(`{"a": }}}`)
	assert.Nil(t, obj)
}

func TestEscapeNewlinesInStrings_RespectsEscapes(t *testing.T) {
	in := `{"a": "already \\n escaped"}`
	out := escapeNewlinesInStrings(in)
	assert.Equal(t, in, out)
}
