// Package escalate notifies people when a repair run needs attention.
package escalate

import (
	"context"
	"sort"
)

// Severity indicates how urgent the escalation is
type Severity string

const (
	SeverityInfo     Severity = "info"     // FYI, no action needed
	SeverityWarning  Severity = "warning"  // Output needs review
	SeverityCritical Severity = "critical" // Run did not produce a validated document
)

// Escalation represents something that needs user attention
type Escalation struct {
	Severity Severity          // How urgent is this?
	Subject  string            // Which spec file is affected
	Title    string            // Short summary (one line)
	Message  string            // Detailed explanation
	Context  map[string]string // Additional context (run id, attempts, last errors)
}

// ContextKeys returns the context keys in sorted order
func (e Escalation) ContextKeys() []string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Escalator is the interface for notifying users
type Escalator interface {
	// Escalate sends a notification to the user.
	// Implementations should respect context cancellation.
	Escalate(ctx context.Context, e Escalation) error

	// Name returns the escalator type for logging
	Name() string
}
