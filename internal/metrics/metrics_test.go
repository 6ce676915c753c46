package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RevCBH/specfix/internal/events"
	"github.com/RevCBH/specfix/internal/repair"
)

func emitRun(r *Recorder) {
	h := r.Handler()
	h(events.NewEvent(repair.RepairStarted, "r").WithPayload(repair.StartedPayload{MaxIterations: 5}))
	h(events.NewEvent(repair.LintFailed, "r").WithPayload(repair.LintPayload{ExitCode: 1, Kind: "failed", Errors: 2, Duration: 300 * time.Millisecond}))
	h(events.NewEvent(repair.OracleInvoked, "r").WithPayload(repair.OraclePayload{Oracle: "openai"}))
	h(events.NewEvent(repair.OracleCorrected, "r").WithPayload(repair.OraclePayload{Oracle: "openai", Status: "corrected", Attempts: 1, Duration: 4 * time.Second}))
	h(events.NewEvent(repair.LintPassed, "r").WithPayload(repair.LintPayload{Kind: "passed", Duration: 200 * time.Millisecond}))
	h(events.NewEvent(repair.RepairPassed, "r").WithPayload(repair.OutcomePayload{Outcome: repair.StatePassed, Attempts: 2, Changed: true}))
}

func TestRecorder_Observe(t *testing.T) {
	r := NewRecorder()
	emitRun(r)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.lintRuns.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.lintRuns.WithLabelValues("passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.oracleCalls.WithLabelValues("openai", "corrected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.attempts))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.lintErrors))
	assert.Equal(t, 1, testutil.CollectAndCount(r.oracleCalls), "oracle.invoked is not counted")
}

func TestRecorder_IgnoresUnknownPayloads(t *testing.T) {
	r := NewRecorder()
	r.Observe(events.NewEvent("other.thing", "r").WithPayload("text"))
	r.Observe(events.NewEvent(repair.RepairStarted, "r"))

	assert.Equal(t, 0, testutil.CollectAndCount(r.runs))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	emitRun(r)

	path := filepath.Join(t.TempDir(), "textfile", "specfix.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `specfix_runs_total{outcome="passed"} 1`)
	assert.Contains(t, text, `specfix_oracle_calls_total{oracle="openai",status="corrected"} 1`)
	assert.Contains(t, text, "# TYPE specfix_lint_duration_seconds histogram")
	assert.True(t, strings.HasSuffix(text, "\n"))
}
