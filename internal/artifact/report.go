package artifact

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RevCBH/specfix/internal/diff"
	"github.com/RevCBH/specfix/internal/lint"
	"github.com/RevCBH/specfix/internal/repair"
)

// Report is the machine-readable summary of a run
type Report struct {
	RunID       string            `yaml:"run_id"`
	Spec        string            `yaml:"spec"`
	Outcome     repair.State      `yaml:"outcome"`
	Attempts    int               `yaml:"attempts"`
	MaxAttempts int               `yaml:"max_attempts"`
	OracleCalls int               `yaml:"oracle_calls"`
	StartedAt   time.Time         `yaml:"started_at"`
	FinishedAt  time.Time         `yaml:"finished_at"`
	Duration    string            `yaml:"duration"`
	Changes     diff.Stats        `yaml:"changes"`
	Iterations  []IterationReport `yaml:"iterations"`
}

// IterationReport summarizes one iteration
type IterationReport struct {
	Number       int               `yaml:"number"`
	ExitCode     int               `yaml:"exit_code"`
	LintKind     lint.ResultKind   `yaml:"lint_kind"`
	Errors       int               `yaml:"errors"`
	LintDuration string            `yaml:"lint_duration"`
	Findings     []lint.Diagnostic `yaml:"findings,omitempty"`
	Oracle       *OracleReport     `yaml:"oracle,omitempty"`
}

// OracleReport summarizes one oracle call
type OracleReport struct {
	Status   string `yaml:"status"`
	Attempts int    `yaml:"attempts"`
	Duration string `yaml:"duration"`
	Error    string `yaml:"error,omitempty"`
}

// NewReport builds a Report from a finished session
func NewReport(specPath string, s *repair.Session) Report {
	r := Report{
		RunID:       s.RunID,
		Spec:        specPath,
		Outcome:     s.Outcome,
		Attempts:    s.Attempts,
		MaxAttempts: s.MaxIterations,
		OracleCalls: s.OracleCalls(),
		StartedAt:   s.StartedAt,
		FinishedAt:  s.FinishedAt,
		Duration:    s.Duration().Round(time.Millisecond).String(),
		Changes:     diff.Compute(s.Original, s.Final),
	}

	for _, it := range s.Iterations {
		findings := it.Lint.Findings()
		ir := IterationReport{
			Number:       it.Number,
			ExitCode:     it.Lint.ExitCode,
			LintKind:     it.Lint.Kind,
			Errors:       lint.CountBlocking(findings),
			LintDuration: it.Lint.Duration.Round(time.Millisecond).String(),
			Findings:     findings,
		}
		if c := it.Correction; c != nil {
			ir.Oracle = &OracleReport{
				Status:   string(c.Status),
				Attempts: c.Attempts,
				Duration: c.Duration.Round(time.Millisecond).String(),
			}
			if c.Err != nil {
				ir.Oracle.Error = c.Err.Error()
			}
		}
		r.Iterations = append(r.Iterations, ir)
	}
	return r
}

// WriteReport marshals r as YAML to path
func WriteReport(path string, r Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return WriteFile(path, string(data))
}
