package repair

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/oklog/ulid/v2"

	"github.com/RevCBH/specfix/internal/events"
	"github.com/RevCBH/specfix/internal/lint"
	"github.com/RevCBH/specfix/internal/oracle"
)

// ErrExhausted is returned when every validation attempt failed
var ErrExhausted = errors.New("validation did not converge")

// Publisher abstracts event publishing for testing
type Publisher interface {
	Emit(e events.Event)
}

// Validator lints a candidate document
type Validator interface {
	Validate(ctx context.Context, document string, ruleset lint.Ruleset) lint.Result
}

type discard struct{}

func (discard) Emit(events.Event) {}

// Loop drives validate/correct cycles until the document passes or the
// iteration budget runs out
type Loop struct {
	cfg       Config
	validator Validator
	oracle    oracle.Oracle
	publisher Publisher

	now   func() time.Time
	newID func() string
}

// New creates a Loop. A nil publisher discards events.
func New(cfg Config, validator Validator, o oracle.Oracle, publisher Publisher) *Loop {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if publisher == nil {
		publisher = discard{}
	}
	return &Loop{
		cfg:       cfg,
		validator: validator,
		oracle:    o,
		publisher: publisher,
		now:       time.Now,
		newID:     func() string { return ulid.Make().String() },
	}
}

// Run repairs original against ruleset.
//
// The returned Session is always non-nil. The error is nil on PASSED, wraps
// ErrExhausted when the budget is spent, and is the context error when the
// run was cancelled. The oracle is never called after the final validation.
func (l *Loop) Run(ctx context.Context, original string, ruleset lint.Ruleset) (*Session, error) {
	maxIter := l.cfg.MaxIterations
	session := &Session{
		RunID:         l.newID(),
		Original:      original,
		Final:         original,
		Outcome:       StateRunning,
		MaxIterations: maxIter,
		StartedAt:     l.now(),
	}
	log := clog.FromContext(ctx).With("run", session.RunID)

	l.publisher.Emit(events.NewEvent(RepairStarted, session.RunID).WithPayload(StartedPayload{
		MaxIterations: maxIter,
		Validator:     validatorName(l.validator),
		Oracle:        l.oracle.Name(),
	}))

	document := original
	for i := 1; i <= maxIter; i++ {
		if err := ctx.Err(); err != nil {
			return l.cancel(ctx, session, err)
		}

		l.publisher.Emit(events.NewEvent(RepairIteration, session.RunID).
			WithIteration(i).
			WithPayload(IterationPayload{Iteration: i, MaxIterations: maxIter}))
		log.Infof("Iteration %d: validating spec", i)

		started := l.now()
		result := l.validator.Validate(ctx, document, ruleset)
		session.Iterations = append(session.Iterations, Iteration{
			Number:    i,
			Document:  document,
			Lint:      result,
			StartedAt: started,
		})
		session.Attempts = i
		session.Final = document

		log.Debugf("Linter stdout:\n%s", result.Diagnostics)
		log.Debugf("Linter stderr:\n%s", result.Stderr)
		l.emitLint(session.RunID, i, result)

		if result.Passed {
			if i == 1 {
				log.Info("Validation passed, no changes done")
			} else {
				log.Infof("Spec validated successfully after %d attempts", i)
			}
			l.finish(session, StatePassed, RepairPassed)
			return session, nil
		}

		if err := ctx.Err(); err != nil {
			return l.cancel(ctx, session, err)
		}
		if i == maxIter {
			break
		}

		log.Info("Validation failed, requesting correction")
		correction := l.correct(ctx, session.RunID, i, oracle.Request{
			Document:    document,
			Ruleset:     ruleset.Content,
			Diagnostics: result.Diagnostics,
		})
		session.Iterations[len(session.Iterations)-1].Correction = &correction
		document = correction.Document
	}

	log.Warnf("Validation did not converge after %d attempts", session.Attempts)
	l.finish(session, StateExhausted, RepairExhausted)
	return session, fmt.Errorf("%w after %d attempts", ErrExhausted, session.Attempts)
}

func (l *Loop) correct(ctx context.Context, run string, iteration int, req oracle.Request) oracle.Correction {
	l.publisher.Emit(events.NewEvent(OracleInvoked, run).
		WithIteration(iteration).
		WithPayload(OraclePayload{Oracle: l.oracle.Name()}))

	c := l.oracle.Correct(ctx, req)
	clog.FromContext(ctx).With("run", run).Debugf("Oracle returned spec:\n%s", c.Document)

	eventType := OracleCorrected
	switch {
	case c.Degraded():
		eventType = OracleFailed
	case c.Status == oracle.StatusUnchanged:
		eventType = OracleUnchanged
	}

	l.publisher.Emit(events.NewEvent(eventType, run).
		WithIteration(iteration).
		WithError(c.Err).
		WithPayload(OraclePayload{
			Oracle:   l.oracle.Name(),
			Status:   string(c.Status),
			Attempts: c.Attempts,
			Duration: c.Duration,
		}))
	return c
}

func (l *Loop) emitLint(run string, iteration int, result lint.Result) {
	eventType := LintFailed
	payload := LintPayload{
		ExitCode: result.ExitCode,
		Kind:     string(result.Kind),
		Duration: result.Duration,
	}
	if result.Passed {
		eventType = LintPassed
	} else {
		payload.Errors = lint.CountBlocking(result.Findings())
		payload.Diagnostics = result.Diagnostics
	}

	l.publisher.Emit(events.NewEvent(eventType, run).
		WithIteration(iteration).
		WithError(result.Err).
		WithPayload(payload))
}

func (l *Loop) cancel(ctx context.Context, session *Session, err error) (*Session, error) {
	clog.FromContext(ctx).With("run", session.RunID).Warnf("Repair cancelled: %v", err)
	l.finish(session, StateCancelled, RepairCancelled)
	return session, err
}

func (l *Loop) finish(session *Session, outcome State, eventType events.EventType) {
	session.Outcome = outcome
	session.FinishedAt = l.now()
	l.publisher.Emit(events.NewEvent(eventType, session.RunID).WithPayload(OutcomePayload{
		Outcome:  outcome,
		Attempts: session.Attempts,
		Changed:  session.Changed(),
		Duration: session.Duration(),
	}))
}

func validatorName(v Validator) string {
	if named, ok := v.(interface{ Command() string }); ok {
		return named.Command()
	}
	return fmt.Sprintf("%T", v)
}
