package history

import "time"

// RunRecord is a persisted repair run
type RunRecord struct {
	ID            string
	SpecPath      string
	Validator     *string
	Oracle        *string
	Outcome       string
	Attempts      int
	MaxIterations int
	Changed       bool
	StartedAt     time.Time
	FinishedAt    *time.Time
	Error         *string
}

// Duration is the wall time of a finished run, or zero while running
func (r *RunRecord) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// IterationRecord is one persisted validate/correct round
type IterationRecord struct {
	RunID    string
	Number   int
	LintKind string
	ExitCode int
	Errors   int
	LintTook time.Duration

	// OracleStatus is nil when the oracle was not called
	OracleStatus   *string
	OracleAttempts int
	OracleTook     time.Duration
}

// EventRecord is a persisted bus event
type EventRecord struct {
	ID          int64
	RunID       string
	Sequence    int
	EventType   string
	Iteration   *int
	PayloadJSON *string
	Error       *string
	CreatedAt   time.Time
}
