package escalate

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Terminal writes escalations to a terminal stream with severity markers
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminalWriter creates a terminal escalator writing to w
func NewTerminalWriter(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// Escalate writes the escalation block
func (t *Terminal) Escalate(ctx context.Context, e Escalation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var prefix string
	switch e.Severity {
	case SeverityCritical:
		prefix = "🚨 "
	case SeverityWarning:
		prefix = "⚠️  "
	default:
		prefix = "ℹ️  "
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s[%s] %s\n", prefix, e.Severity, e.Title)
	if e.Subject != "" {
		fmt.Fprintf(&b, "   Spec: %s\n", e.Subject)
	}
	for _, line := range strings.Split(strings.TrimRight(e.Message, "\n"), "\n") {
		fmt.Fprintf(&b, "   %s\n", line)
	}
	for _, k := range e.ContextKeys() {
		fmt.Fprintf(&b, "   %s: %s\n", k, e.Context[k])
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := io.WriteString(t.w, b.String())
	return err
}

// Name returns "terminal"
func (t *Terminal) Name() string {
	return "terminal"
}
