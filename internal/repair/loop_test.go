package repair

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RevCBH/specfix/internal/diff"
	"github.com/RevCBH/specfix/internal/events"
	"github.com/RevCBH/specfix/internal/lint"
	"github.com/RevCBH/specfix/internal/oracle"
	"github.com/RevCBH/specfix/internal/testutil"
)

var testRuleset = lint.Ruleset{Path: "ruleset.yaml", Content: "rules:\n  info-description: error\n"}

const missingDescription = `openapi: 3.0.0
info:
  title: Pets
  version: 1.0.0
paths: {}
`

const withDescription = `openapi: 3.0.0
info:
  title: Pets
  description: A pet store
  version: 1.0.0
paths: {}
`

const descriptionDiagnostic = "  2:6  error  info-description  Info object must have a description  info"

// fakeValidator passes documents accepted by pass
type fakeValidator struct {
	pass  func(document string) bool
	calls []string
}

func (v *fakeValidator) Validate(_ context.Context, document string, _ lint.Ruleset) lint.Result {
	v.calls = append(v.calls, document)
	if v.pass(document) {
		return lint.Result{Passed: true, Kind: lint.KindPassed}
	}
	return lint.Result{ExitCode: 1, Kind: lint.KindFailed, Diagnostics: descriptionDiagnostic}
}

// scriptedOracle answers with fn and records every request
type scriptedOracle struct {
	fn       func(call int, req oracle.Request) oracle.Correction
	requests []oracle.Request
}

func (o *scriptedOracle) Name() string { return "scripted" }

func (o *scriptedOracle) Correct(_ context.Context, req oracle.Request) oracle.Correction {
	o.requests = append(o.requests, req)
	return o.fn(len(o.requests), req)
}

func identityOracle() *scriptedOracle {
	return &scriptedOracle{fn: func(_ int, req oracle.Request) oracle.Correction {
		return oracle.Correction{Document: req.Document, Status: oracle.StatusUnchanged}
	}}
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Emit(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func newTestLoop(maxIterations int, v Validator, o oracle.Oracle, p Publisher) *Loop {
	l := New(Config{MaxIterations: maxIterations}, v, o, p)
	l.newID = func() string { return "01TESTRUN" }
	return l
}

func TestRun_PassesFirstTime(t *testing.T) {
	v := &fakeValidator{pass: func(string) bool { return true }}
	o := identityOracle()
	rec := &recorder{}

	session, err := newTestLoop(5, v, o, rec).Run(context.Background(), withDescription, testRuleset)

	require.NoError(t, err)
	assert.Equal(t, StatePassed, session.Outcome)
	assert.True(t, session.Passed())
	assert.Equal(t, 1, session.Attempts)
	assert.Len(t, v.calls, 1)
	assert.Empty(t, o.requests)
	assert.Equal(t, withDescription, session.Final)
	assert.False(t, session.Changed())
	assert.Equal(t, diff.NoChanges, diff.Unified(session.Original, session.Final))
	assert.Equal(t, "01TESTRUN", session.RunID)

	assert.Equal(t, []events.EventType{
		RepairStarted, RepairIteration, LintPassed, RepairPassed,
	}, rec.types())
}

func TestRun_PassesAfterKCorrections(t *testing.T) {
	for k := 1; k <= 4; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			outputs := make([]string, k)
			for i := range outputs {
				outputs[i] = fmt.Sprintf("candidate: %d\n", i+1)
			}
			accepted := outputs[k-1]

			v := &fakeValidator{pass: func(doc string) bool { return doc == accepted }}
			o := &scriptedOracle{fn: func(call int, _ oracle.Request) oracle.Correction {
				return oracle.Correction{Document: outputs[call-1], Status: oracle.StatusCorrected}
			}}

			session, err := newTestLoop(5, v, o, nil).Run(context.Background(), "original: true\n", testRuleset)

			require.NoError(t, err)
			assert.Equal(t, StatePassed, session.Outcome)
			assert.Equal(t, k+1, session.Attempts)
			assert.Len(t, v.calls, k+1)
			assert.Len(t, o.requests, k)
			assert.Equal(t, accepted, session.Final)
			assert.Equal(t, "original: true\n", session.Original)
			assert.Nil(t, session.Last().Correction)
			assert.Equal(t, k, session.OracleCalls())
		})
	}
}

func TestRun_IdentityOracleExhausts(t *testing.T) {
	v := &fakeValidator{pass: func(string) bool { return false }}
	o := identityOracle()
	rec := &recorder{}

	session, err := newTestLoop(5, v, o, rec).Run(context.Background(), missingDescription, testRuleset)

	require.ErrorIs(t, err, ErrExhausted)
	assert.Contains(t, err.Error(), "after 5 attempts")
	assert.Equal(t, StateExhausted, session.Outcome)
	assert.Equal(t, 5, session.Attempts)
	require.Len(t, session.Iterations, 5)
	assert.Len(t, o.requests, 4, "oracle is not called after the final validation")

	for i, it := range session.Iterations {
		assert.Equal(t, i+1, it.Number)
		assert.Equal(t, missingDescription, it.Document)
		assert.Equal(t, descriptionDiagnostic, it.Lint.Diagnostics)
	}
	assert.Nil(t, session.Last().Correction)
	assert.Equal(t, missingDescription, session.Final)

	types := rec.types()
	assert.Equal(t, RepairStarted, types[0])
	assert.Equal(t, RepairExhausted, types[len(types)-1])
	assert.NotContains(t, types, RepairPassed)
}

func TestRun_OracleSeesCurrentDocumentAndDiagnostics(t *testing.T) {
	v := &fakeValidator{pass: func(doc string) bool { return doc == "fixed\n" }}
	o := &scriptedOracle{fn: func(call int, req oracle.Request) oracle.Correction {
		if call == 1 {
			return oracle.Correction{Document: "step\n", Status: oracle.StatusCorrected}
		}
		return oracle.Correction{Document: "fixed\n", Status: oracle.StatusCorrected}
	}}

	_, err := newTestLoop(5, v, o, nil).Run(context.Background(), "start\n", testRuleset)
	require.NoError(t, err)

	require.Len(t, o.requests, 2)
	assert.Equal(t, oracle.Request{Document: "start\n", Ruleset: testRuleset.Content, Diagnostics: descriptionDiagnostic}, o.requests[0])
	assert.Equal(t, "step\n", o.requests[1].Document)
}

func TestRun_TransportFailureKeepsDocument(t *testing.T) {
	v := &fakeValidator{pass: func(string) bool { return false }}
	o := &scriptedOracle{fn: func(_ int, req oracle.Request) oracle.Correction {
		return oracle.Correction{
			Document: req.Document,
			Status:   oracle.StatusFailed,
			Err:      errors.New("dial tcp: connection refused"),
		}
	}}
	rec := &recorder{}

	session, err := newTestLoop(3, v, o, rec).Run(context.Background(), missingDescription, testRuleset)

	require.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 3, session.Attempts)
	for _, doc := range v.calls {
		assert.Equal(t, missingDescription, doc)
	}

	var failed []events.Event
	for _, e := range rec.events {
		if e.Type == OracleFailed {
			failed = append(failed, e)
		}
	}
	require.Len(t, failed, 2)
	assert.Equal(t, "dial tcp: connection refused", failed[0].Error)
	assert.Equal(t, 1, *failed[0].Iteration)
}

func TestRun_MissingFieldScenario(t *testing.T) {
	runner := testutil.NewStubRunner()
	runner.RespondWith(func(document string) (lint.Output, error) {
		if strings.Contains(document, "description:") {
			return lint.Output{ExitCode: 0, Stdout: "No results with a severity of 'error' found!"}, nil
		}
		return lint.Output{
			ExitCode: 1,
			Stdout: "  1:1  warning  oas3-api-servers  OpenAPI servers must be present\n" +
				descriptionDiagnostic + "\n",
		}, nil
	})
	validator := lint.New(lint.Config{StagingDir: t.TempDir()}, runner)

	o := &scriptedOracle{fn: func(_ int, req oracle.Request) oracle.Correction {
		return oracle.Correction{Document: withDescription, Status: oracle.StatusCorrected}
	}}

	session, err := newTestLoop(5, validator, o, nil).Run(context.Background(), missingDescription, testRuleset)

	require.NoError(t, err)
	assert.Equal(t, 2, session.Attempts)
	assert.Equal(t, withDescription, session.Final)
	require.Len(t, o.requests, 1)
	assert.NotContains(t, o.requests[0].Diagnostics, "warning", "warnings are filtered before the oracle")
	assert.Contains(t, o.requests[0].Diagnostics, "info-description")

	changes := diff.Unified(session.Original, session.Final)
	assert.Contains(t, changes, "+  description: A pet store")

	calls := runner.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, missingDescription, calls[0].Document)
	assert.Equal(t, withDescription, calls[1].Document)
}

func TestRun_EventSequence(t *testing.T) {
	v := &fakeValidator{pass: func(doc string) bool { return doc == "ok\n" }}
	o := &scriptedOracle{fn: func(call int, req oracle.Request) oracle.Correction {
		if call == 1 {
			return oracle.Correction{Document: req.Document, Status: oracle.StatusUnchanged}
		}
		return oracle.Correction{Document: "ok\n", Status: oracle.StatusCorrected, Attempts: 1}
	}}
	rec := &recorder{}

	_, err := newTestLoop(5, v, o, rec).Run(context.Background(), "bad\n", testRuleset)
	require.NoError(t, err)

	assert.Equal(t, []events.EventType{
		RepairStarted,
		RepairIteration, LintFailed, OracleInvoked, OracleUnchanged,
		RepairIteration, LintFailed, OracleInvoked, OracleCorrected,
		RepairIteration, LintPassed,
		RepairPassed,
	}, rec.types())

	for _, e := range rec.events {
		assert.Equal(t, "01TESTRUN", e.Run)
	}

	started := rec.events[0].Payload.(StartedPayload)
	assert.Equal(t, 5, started.MaxIterations)
	assert.Equal(t, "scripted", started.Oracle)

	lintFailed := rec.events[2].Payload.(LintPayload)
	assert.Equal(t, 1, lintFailed.Errors)
	assert.Equal(t, 1, lintFailed.ExitCode)

	outcome := rec.events[len(rec.events)-1].Payload.(OutcomePayload)
	assert.Equal(t, StatePassed, outcome.Outcome)
	assert.Equal(t, 3, outcome.Attempts)
	assert.True(t, outcome.Changed)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	v := &fakeValidator{pass: func(string) bool {
		cancel()
		return false
	}}
	o := identityOracle()
	rec := &recorder{}

	session, err := newTestLoop(5, v, o, rec).Run(ctx, missingDescription, testRuleset)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateCancelled, session.Outcome)
	assert.Equal(t, 1, session.Attempts)
	assert.Empty(t, o.requests)
	types := rec.types()
	assert.Equal(t, RepairCancelled, types[len(types)-1])
}

func TestRun_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v := &fakeValidator{pass: func(string) bool { return true }}

	session, err := newTestLoop(5, v, identityOracle(), nil).Run(ctx, "x\n", testRuleset)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateCancelled, session.Outcome)
	assert.Empty(t, v.calls)
	assert.Equal(t, 0, session.Attempts)
}

func TestRun_SingleIterationBudget(t *testing.T) {
	v := &fakeValidator{pass: func(string) bool { return false }}
	o := identityOracle()

	session, err := newTestLoop(1, v, o, nil).Run(context.Background(), "x\n", testRuleset)

	require.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 1, session.Attempts)
	assert.Empty(t, o.requests)
}

func TestNew_DefaultsMaxIterations(t *testing.T) {
	v := &fakeValidator{pass: func(string) bool { return false }}
	l := New(Config{}, v, identityOracle(), nil)

	session, err := l.Run(context.Background(), "x\n", testRuleset)

	require.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, DefaultMaxIterations, session.Attempts)
	assert.Equal(t, DefaultMaxIterations, session.MaxIterations)
	assert.Len(t, session.RunID, 26, "ulid run id")
}

func TestSession_Timing(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	v := &fakeValidator{pass: func(string) bool { return true }}
	l := newTestLoop(5, v, identityOracle(), nil)
	l.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	session, err := l.Run(context.Background(), "x\n", testRuleset)

	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, session.Duration())
}
