package events

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"
)

// LogConfig configures the logging handler
type LogConfig struct {
	// Writer is where lines are written (default: os.Stderr)
	Writer io.Writer

	// IncludePayload appends the payload fields as sorted key=value pairs
	IncludePayload bool

	// TimeFormat is the timestamp layout (default: RFC3339)
	TimeFormat string
}

// LogHandler returns a handler that writes one line per event:
//
//	<time> [type] run #iteration error="..." key=value ...
func LogHandler(cfg LogConfig) Handler {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}

	return func(e Event) {
		var b strings.Builder
		if !e.Time.IsZero() {
			b.WriteString(e.Time.Format(cfg.TimeFormat) + " ")
		}
		e.writeSummary(&b)
		if cfg.IncludePayload && e.Payload != nil {
			fields := payloadMap(e.Payload)
			for _, k := range slices.Sorted(maps.Keys(fields)) {
				fmt.Fprintf(&b, " %s=%v", k, fields[k])
			}
		}
		b.WriteByte('\n')
		_, _ = io.WriteString(cfg.Writer, b.String())
	}
}

// Filter returns a handler that forwards only the given event types to h
func Filter(h Handler, types ...EventType) Handler {
	return func(e Event) {
		if slices.Contains(types, e.Type) {
			h(e)
		}
	}
}
