package sse

import (
	"bufio"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atominnolab/opensift/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter_SetsSSEHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	sw, err := NewWriter(w)
	require.NoError(t, err)
	require.NotNil(t, sw)

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
}

func TestWriteEvent_FramesEventAndData(t *testing.T) {
	w := httptest.NewRecorder()
	sw, err := NewWriter(w)
	require.NoError(t, err)

	err = sw.WriteEvent(models.StreamEvent{Event: models.EventCriteria, Data: map[string]any{"query": "hi"}})
	require.NoError(t, err)

	body := w.Body.String()
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "event: criteria", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "data: "))
	assert.Contains(t, lines[1], `"query":"hi"`)
}

func TestWriteEvent_NoRawNewlinesInPayload(t *testing.T) {
	w := httptest.NewRecorder()
	sw, err := NewWriter(w)
	require.NoError(t, err)

	err = sw.WriteEvent(models.StreamEvent{Event: models.EventResult, Data: map[string]any{"summary": "line one\nline two"}})
	require.NoError(t, err)

	scanner := bufio.NewScanner(strings.NewReader(w.Body.String()))
	nonEmptyLines := 0
	for scanner.Scan() {
		if scanner.Text() != "" {
			nonEmptyLines++
		}
	}
	assert.Equal(t, 2, nonEmptyLines)
}

func TestWriteAll_StopsAfterErrorEvent(t *testing.T) {
	w := httptest.NewRecorder()
	sw, err := NewWriter(w)
	require.NoError(t, err)

	events := make(chan models.StreamEvent, 3)
	events <- models.StreamEvent{Event: models.EventCriteria, Data: map[string]any{}}
	events <- models.StreamEvent{Event: models.EventError, Data: map[string]any{"message": "boom"}}
	events <- models.StreamEvent{Event: models.EventDone, Data: map[string]any{}}
	close(events)

	require.NoError(t, sw.WriteAll(events))

	body := w.Body.String()
	assert.Contains(t, body, "event: criteria")
	assert.Contains(t, body, "event: error")
	assert.NotContains(t, body, "event: done")
}

func TestWriteAll_DrainsAllEventsWithoutError(t *testing.T) {
	w := httptest.NewRecorder()
	sw, err := NewWriter(w)
	require.NoError(t, err)

	events := make(chan models.StreamEvent, 2)
	events <- models.StreamEvent{Event: models.EventCriteria, Data: map[string]any{}}
	events <- models.StreamEvent{Event: models.EventDone, Data: map[string]any{}}
	close(events)

	require.NoError(t, sw.WriteAll(events))

	body := w.Body.String()
	assert.Contains(t, body, "event: criteria")
	assert.Contains(t, body, "event: done")
}
