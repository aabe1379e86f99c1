package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/company-pulse/internal/pipeline"
)

// SSE event names.
const (
	EventStep     = "step"
	EventResult   = "result"
	EventError    = "error"
	EventComplete = "complete"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Progress returns a callback that forwards pipeline progress as step events.
func (s *SSEWriter) Progress() pipeline.ProgressCallback {
	return func(event pipeline.ProgressEvent) {
		s.WriteEvent(EventStep, event) //nolint:errcheck
	}
}

// WriteError sends an error event carrying the same body as a JSON error response.
func (s *SSEWriter) WriteError(err error) {
	s.WriteEvent(EventError, toErrorResponse(err, HTTPStatus(err))) //nolint:errcheck
}

// WriteResult sends the final payload followed by a completion event.
func (s *SSEWriter) WriteResult(runID string, result any) {
	s.WriteEvent(EventResult, result)              //nolint:errcheck
	s.WriteEvent(EventComplete, map[string]string{ //nolint:errcheck
		"run_id": runID,
		"status": "completed",
	})
}
