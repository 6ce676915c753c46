package events

import (
	"fmt"
	"strings"
	"time"
)

// Event represents a single occurrence in a repair run
type Event struct {
	// Time is when the event occurred (set by bus on emit)
	Time time.Time `json:"time"`

	// Type identifies what happened
	Type EventType `json:"type"`

	// Run is the run ID this event belongs to
	Run string `json:"run,omitempty"`

	// Iteration is the loop iteration (nil for run-level events)
	Iteration *int `json:"iteration,omitempty"`

	// Payload contains event-specific data (type varies by event)
	Payload any `json:"payload,omitempty"`

	// Error contains error message if this is a failure event
	Error string `json:"error,omitempty"`
}

// EventType is a string constant identifying the event category.
// Packages that emit events declare their own constants.
type EventType string

// NewEvent creates an event with the given type and run ID
func NewEvent(eventType EventType, run string) Event {
	return Event{
		Type: eventType,
		Run:  run,
	}
}

// WithIteration returns a copy of the event with the iteration set
func (e Event) WithIteration(iteration int) Event {
	e.Iteration = &iteration
	return e
}

// WithPayload returns a copy of the event with the payload set
func (e Event) WithPayload(payload any) Event {
	e.Payload = payload
	return e
}

// WithError returns a copy of the event with the error message set
func (e Event) WithError(err error) Event {
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// String renders the event as "[type] run #iteration error=..." with
// empty parts omitted.
func (e Event) String() string {
	var b strings.Builder
	e.writeSummary(&b)
	return b.String()
}

func (e Event) writeSummary(b *strings.Builder) {
	b.WriteString("[" + string(e.Type) + "]")
	if e.Run != "" {
		b.WriteString(" " + e.Run)
	}
	if e.Iteration != nil {
		fmt.Fprintf(b, " #%d", *e.Iteration)
	}
	if e.Error != "" {
		fmt.Fprintf(b, " error=%q", e.Error)
	}
}
