package web

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultAddr is the monitor listen address when Config.Addr is empty
const DefaultAddr = "127.0.0.1:8080"

// Config configures the monitor server
type Config struct {
	// Addr is the HTTP listen address (default: 127.0.0.1:8080)
	Addr string

	// Subject is the spec path shown in the state snapshot
	Subject string

	// Gatherer backs /metrics; nil disables the endpoint
	Gatherer prometheus.Gatherer
}

// Snapshot is the run state served by /api/state
type Snapshot struct {
	RunID         string           `json:"run_id,omitempty"`
	Subject       string           `json:"subject"`
	Status        string           `json:"status"`
	Validator     string           `json:"validator,omitempty"`
	Oracle        string           `json:"oracle,omitempty"`
	MaxIterations int              `json:"max_iterations"`
	Iteration     int              `json:"iteration"`
	Iterations    []IterationState `json:"iterations"`
	Changed       bool             `json:"changed"`
	StartedAt     *time.Time       `json:"started_at,omitempty"`
	Duration      time.Duration    `json:"duration,omitempty"`
}

// IterationState is the progress of one validate/correct round
type IterationState struct {
	Number       int    `json:"number"`
	LintKind     string `json:"lint_kind,omitempty"`
	Errors       int    `json:"errors"`
	OracleStatus string `json:"oracle_status,omitempty"`
	Error        string `json:"error,omitempty"`
}
