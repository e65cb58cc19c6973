package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Strob0t/PlanForge/internal/domain/event"
	"github.com/Strob0t/PlanForge/internal/domain/plan"
)

// ErrStreamingUnsupported is returned when the ResponseWriter cannot flush.
var ErrStreamingUnsupported = errors.New("streaming not supported by this connection")

// SSEEmitter frames events as server-sent events on an open response.
// Each frame is one `data: <json>` record, flushed immediately so
// fragments reach the client before the next upstream chunk is read.
type SSEEmitter struct {
	w http.ResponseWriter
	f http.Flusher
}

// NewSSEEmitter prepares the response for event streaming and writes
// the stream headers. After this point the HTTP status can no longer
// change; failures must go through Error.
func NewSSEEmitter(w http.ResponseWriter) (*SSEEmitter, error) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	f.Flush()
	return &SSEEmitter{w: w, f: f}, nil
}

func (e *SSEEmitter) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	e.f.Flush()
	return nil
}

// Delta sends one in-flight fragment frame.
func (e *SSEEmitter) Delta(content string) error {
	return e.send(event.NewDelta(content))
}

// Done sends the terminal success frame.
func (e *SSEEmitter) Done(tasks []plan.Task) error {
	return e.send(event.NewDone(tasks))
}

// Error sends the terminal failure frame.
func (e *SSEEmitter) Error(msg string) error {
	return e.send(event.NewError(msg))
}
