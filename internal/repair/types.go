package repair

import (
	"time"

	"github.com/RevCBH/specfix/internal/lint"
	"github.com/RevCBH/specfix/internal/oracle"
)

// DefaultMaxIterations is the validation budget per run
const DefaultMaxIterations = 5

// State is where a run is in the convergence state machine
type State string

const (
	StateRunning   State = "running"
	StatePassed    State = "passed"
	StateExhausted State = "exhausted"
	StateCancelled State = "cancelled"
)

// Config configures the loop
type Config struct {
	// MaxIterations is the maximum number of validation attempts (default: 5)
	MaxIterations int
}

// DefaultConfig returns the loop defaults
func DefaultConfig() Config {
	return Config{MaxIterations: DefaultMaxIterations}
}

// Iteration records one validate/correct cycle
type Iteration struct {
	// Number is 1-based
	Number int

	// Document is the candidate that was validated in this iteration
	Document string

	Lint lint.Result

	// Correction is nil when the oracle was not called (pass or final iteration)
	Correction *oracle.Correction

	StartedAt time.Time
}

// Session tracks a full repair run
type Session struct {
	RunID    string
	Original string

	// Final is the validated document on PASSED, or the last validated
	// candidate otherwise
	Final string

	Iterations []Iteration
	Outcome    State

	// Attempts is the number of validations performed
	Attempts int

	MaxIterations int
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Passed reports whether the run converged
func (s *Session) Passed() bool {
	return s.Outcome == StatePassed
}

// Changed reports whether the final document differs from the original
func (s *Session) Changed() bool {
	return s.Final != s.Original
}

// Last returns the most recent iteration, or nil before the first one
func (s *Session) Last() *Iteration {
	if len(s.Iterations) == 0 {
		return nil
	}
	return &s.Iterations[len(s.Iterations)-1]
}

// Duration is the wall time of the run
func (s *Session) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// OracleCalls counts iterations where the oracle was invoked
func (s *Session) OracleCalls() int {
	n := 0
	for _, it := range s.Iterations {
		if it.Correction != nil {
			n++
		}
	}
	return n
}
