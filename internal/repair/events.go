package repair

import (
	"time"

	"github.com/RevCBH/specfix/internal/events"
)

// Repair run event types
const (
	RepairStarted   events.EventType = "repair.started"
	RepairIteration events.EventType = "repair.iteration"
	RepairPassed    events.EventType = "repair.passed"
	RepairExhausted events.EventType = "repair.exhausted"
	RepairCancelled events.EventType = "repair.cancelled"

	LintPassed events.EventType = "lint.passed"
	LintFailed events.EventType = "lint.failed"

	OracleInvoked   events.EventType = "oracle.invoked"
	OracleCorrected events.EventType = "oracle.corrected"
	OracleUnchanged events.EventType = "oracle.unchanged"
	OracleFailed    events.EventType = "oracle.failed"
)

// StartedPayload contains data for repair.started events
type StartedPayload struct {
	MaxIterations int    `json:"max_iterations"`
	Validator     string `json:"validator"`
	Oracle        string `json:"oracle"`
}

// IterationPayload contains data for repair.iteration events
type IterationPayload struct {
	Iteration     int `json:"iteration"`
	MaxIterations int `json:"max_iterations"`
}

// LintPayload contains data for lint.passed and lint.failed events
type LintPayload struct {
	ExitCode    int           `json:"exit_code"`
	Kind        string        `json:"kind"`
	Errors      int           `json:"errors"`
	Diagnostics string        `json:"diagnostics,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// OraclePayload contains data for oracle.* events
type OraclePayload struct {
	Oracle   string        `json:"oracle"`
	Status   string        `json:"status,omitempty"`
	Attempts int           `json:"attempts,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// OutcomePayload contains data for terminal repair events
type OutcomePayload struct {
	Outcome  State         `json:"outcome"`
	Attempts int           `json:"attempts"`
	Changed  bool          `json:"changed"`
	Duration time.Duration `json:"duration"`
}
