// Package metrics exposes repair run statistics in Prometheus format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/RevCBH/specfix/internal/events"
	"github.com/RevCBH/specfix/internal/repair"
)

const namespace = "specfix"

// Recorder turns repair events into Prometheus metrics on its own registry
type Recorder struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	lintRuns      *prometheus.CounterVec
	oracleCalls   *prometheus.CounterVec
	lintDuration  prometheus.Histogram
	oracleLatency prometheus.Histogram
	attempts      prometheus.Gauge
	lintErrors    prometheus.Gauge
}

// NewRecorder creates a Recorder with a fresh registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Repair runs by outcome",
		}, []string{"outcome"}),
		lintRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lint_runs_total",
			Help:      "Linter invocations by result kind",
		}, []string{"kind"}),
		oracleCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_calls_total",
			Help:      "Oracle corrections by backend and status",
		}, []string{"oracle", "status"}),
		lintDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lint_duration_seconds",
			Help:      "Linter invocation latency",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		oracleLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_duration_seconds",
			Help:      "Oracle correction latency including retries",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		attempts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_attempts",
			Help:      "Validation attempts used by the most recent run",
		}),
		lintErrors: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_lint_errors",
			Help:      "Blocking findings reported by the most recent validation",
		}),
	}
}

// Registry returns the registry metrics are recorded on
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns an events.Handler that records repair events
func (r *Recorder) Handler() events.Handler {
	return r.Observe
}

// Observe records a single event. Unknown event types are ignored.
func (r *Recorder) Observe(e events.Event) {
	switch p := e.Payload.(type) {
	case repair.LintPayload:
		r.lintRuns.WithLabelValues(p.Kind).Inc()
		r.lintDuration.Observe(p.Duration.Seconds())
		r.lintErrors.Set(float64(p.Errors))

	case repair.OraclePayload:
		// oracle.invoked carries no status yet
		if p.Status == "" {
			return
		}
		r.oracleCalls.WithLabelValues(p.Oracle, p.Status).Inc()
		r.oracleLatency.Observe(p.Duration.Seconds())

	case repair.OutcomePayload:
		r.runs.WithLabelValues(string(p.Outcome)).Inc()
		r.attempts.Set(float64(p.Attempts))
	}
}

// WriteTextfile writes the metrics in text exposition format, suitable for
// the node exporter textfile collector
func (r *Recorder) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
