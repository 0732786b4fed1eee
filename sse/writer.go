// Package sse frames StreamEvents onto an HTTP response as
// Server-Sent-Events, matching the format the engine's streaming search
// operation feeds it.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/atominnolab/opensift/models"
)

// Writer frames StreamEvents onto an http.ResponseWriter as SSE,
// flushing after every event so the client observes results as they
// arrive rather than buffered at response end.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter sets the SSE response headers on w and returns a Writer. It
// returns an error if w does not support flushing.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("sse: streaming not supported by response writer")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Writer{w: w, flusher: flusher}, nil
}

// WriteEvent frames one StreamEvent as "event: <type>\ndata: <json>\n\n"
// and flushes it immediately. data is marshaled with json.Marshal, which
// escapes newlines, so the payload is always a single line.
func (sw *Writer) WriteEvent(event models.StreamEvent) error {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("sse: marshal event data: %w", err)
	}

	if _, err := fmt.Fprintf(sw.w, "event: %s\n", event.Event); err != nil {
		return err
	}
	if _, err := sw.w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := sw.w.Write(payload); err != nil {
		return err
	}
	if _, err := sw.w.Write([]byte("\n\n")); err != nil {
		return err
	}

	sw.flusher.Flush()
	return nil
}

// WriteAll drains events onto the stream in order, stopping early (without
// error) after an "error" event since the stream terminates there.
func (sw *Writer) WriteAll(events <-chan models.StreamEvent) error {
	for event := range events {
		if err := sw.WriteEvent(event); err != nil {
			return err
		}
		if event.Event == models.EventError {
			return nil
		}
	}
	return nil
}
