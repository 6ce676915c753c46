package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/chainguard-dev/clog"
)

// JSONEvent is the wire format for events written to stdout in JSON mode
type JSONEvent struct {
	// Type identifies the event (e.g., "repair.started", "lint.failed")
	Type string `json:"type"`

	// Timestamp is when the event occurred (RFC3339 format)
	Timestamp time.Time `json:"timestamp"`

	// Run is the run ID
	Run string `json:"run,omitempty"`

	// Iteration is the loop iteration (omitted for run-level events)
	Iteration *int `json:"iteration,omitempty"`

	// Payload contains event-specific data (type varies by event)
	Payload map[string]any `json:"payload,omitempty"`

	// Error contains error message if this is a failure event
	Error string `json:"error,omitempty"`
}

// JSONEmitter writes events as JSON lines to a writer.
// Thread-safe for concurrent Emit calls.
type JSONEmitter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONEmitter creates a new JSON emitter that writes to w.
// Each event is written as a single JSON line (newline-delimited).
func NewJSONEmitter(w io.Writer) *JSONEmitter {
	return &JSONEmitter{enc: json.NewEncoder(w)}
}

// Emit converts the Event to JSONEvent wire format and writes it
func (e *JSONEmitter) Emit(event Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.enc.Encode(ToJSONEvent(event))
}

// JSONEmitterHandler returns a Handler that emits events as JSON lines.
// Errors are logged but not propagated (handler interface has no return).
func JSONEmitterHandler(ctx context.Context, emitter *JSONEmitter) Handler {
	return func(e Event) {
		if err := emitter.Emit(e); err != nil {
			clog.FromContext(ctx).Warnf("failed to emit JSON event: %v", err)
		}
	}
}

// ToJSONEvent converts an Event to the wire format.
// Struct payloads are flattened to a map through their JSON tags.
func ToJSONEvent(e Event) JSONEvent {
	je := JSONEvent{
		Type:      string(e.Type),
		Timestamp: e.Time,
		Run:       e.Run,
		Iteration: e.Iteration,
		Error:     e.Error,
	}

	if e.Payload != nil {
		je.Payload = payloadMap(e.Payload)
	}

	return je
}

func payloadMap(payload any) map[string]any {
	if m, ok := payload.(map[string]any); ok {
		return m
	}

	data, err := json.Marshal(payload)
	if err == nil {
		var m map[string]any
		if json.Unmarshal(data, &m) == nil {
			return m
		}
	}
	return map[string]any{"value": payload}
}

// ParseJSONEvent parses a JSON line (in JSONEvent wire format) into an Event
func ParseJSONEvent(line []byte) (Event, error) {
	var je JSONEvent
	if err := json.Unmarshal(line, &je); err != nil {
		return Event{}, fmt.Errorf("invalid JSON: %w", err)
	}

	var payload any
	if je.Payload != nil {
		payload = je.Payload
	}

	return Event{
		Type:      EventType(je.Type),
		Time:      je.Timestamp,
		Run:       je.Run,
		Iteration: je.Iteration,
		Payload:   payload,
		Error:     je.Error,
	}, nil
}
