package web

import (
	"sync"
	"time"

	"github.com/RevCBH/specfix/internal/events"
	"github.com/RevCBH/specfix/internal/repair"
)

// Store maintains the state of the current repair run.
// It is safe for concurrent access.
type Store struct {
	mu         sync.RWMutex
	subject    string
	runID      string
	status     string // "waiting", "running", or a repair outcome
	validator  string
	oracle     string
	maxIter    int
	startedAt  time.Time
	duration   time.Duration
	changed    bool
	iterations []*IterationState
}

// NewStore creates an empty state store in "waiting" status.
func NewStore(subject string) *Store {
	return &Store{
		subject: subject,
		status:  "waiting",
	}
}

// HandleEvent processes an event and updates state accordingly.
// Thread-safe. Event type determines state transition:
//   - repair.started: set status="running", record tools and budget
//   - repair.iteration: append a new iteration
//   - lint.*: record the result kind and error count
//   - oracle.*: record the correction status
//   - repair.passed/exhausted/cancelled: set status to the outcome
func (s *Store) HandleEvent(e events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Type {
	case repair.RepairStarted:
		s.runID = e.Run
		s.status = string(repair.StateRunning)
		s.startedAt = e.Time
		s.iterations = nil
		if p, ok := e.Payload.(repair.StartedPayload); ok {
			s.validator = p.Validator
			s.oracle = p.Oracle
			s.maxIter = p.MaxIterations
		}

	case repair.RepairIteration:
		if e.Iteration != nil {
			s.iterations = append(s.iterations, &IterationState{Number: *e.Iteration})
		}

	case repair.LintPassed, repair.LintFailed:
		if it := s.current(); it != nil {
			if p, ok := e.Payload.(repair.LintPayload); ok {
				it.LintKind = p.Kind
				it.Errors = p.Errors
			}
		}

	case repair.OracleInvoked:
		if it := s.current(); it != nil {
			it.OracleStatus = "running"
		}

	case repair.OracleCorrected, repair.OracleUnchanged, repair.OracleFailed:
		if it := s.current(); it != nil {
			if p, ok := e.Payload.(repair.OraclePayload); ok {
				it.OracleStatus = p.Status
			}
			it.Error = e.Error
		}

	case repair.RepairPassed, repair.RepairExhausted, repair.RepairCancelled:
		if p, ok := e.Payload.(repair.OutcomePayload); ok {
			s.status = string(p.Outcome)
			s.changed = p.Changed
			s.duration = p.Duration
		}
	}
}

func (s *Store) current() *IterationState {
	if len(s.iterations) == 0 {
		return nil
	}
	return s.iterations[len(s.iterations)-1]
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		RunID:         s.runID,
		Subject:       s.subject,
		Status:        s.status,
		Validator:     s.validator,
		Oracle:        s.oracle,
		MaxIterations: s.maxIter,
		Iteration:     len(s.iterations),
		Iterations:    make([]IterationState, 0, len(s.iterations)),
		Changed:       s.changed,
		Duration:      s.duration,
	}
	if !s.startedAt.IsZero() {
		started := s.startedAt
		snap.StartedAt = &started
	}
	for _, it := range s.iterations {
		snap.Iterations = append(snap.Iterations, *it)
	}
	return snap
}
