package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/RevCBH/specfix/internal/lint"
	"github.com/RevCBH/specfix/internal/repair"
)

// DefaultListLimit bounds ListRuns when limit <= 0
const DefaultListLimit = 20

const runColumns = `id, spec_path, validator, oracle, outcome, attempts,
		       max_iterations, changed, started_at, finished_at, error`

// StartRun inserts a run in the running state.
// Returns an error if a run with the same ID exists.
func (db *DB) StartRun(run *RunRecord) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Outcome == "" {
		run.Outcome = string(repair.StateRunning)
	}

	query := `
		INSERT INTO runs (
			id, spec_path, validator, oracle, outcome, attempts,
			max_iterations, changed, started_at, finished_at, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.conn.Exec(query,
		run.ID,
		run.SpecPath,
		run.Validator,
		run.Oracle,
		run.Outcome,
		run.Attempts,
		run.MaxIterations,
		run.Changed,
		run.StartedAt,
		run.FinishedAt,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}
	return nil
}

// FinishRun stores the final state of a session and its iterations.
// The run row is created when StartRun was never called for it.
func (db *DB) FinishRun(specPath string, s *repair.Session, runErr error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var errText *string
	if runErr != nil && !errors.Is(runErr, repair.ErrExhausted) {
		msg := runErr.Error()
		errText = &msg
	}
	finished := s.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	upsert := `
		INSERT INTO runs (
			id, spec_path, outcome, attempts, max_iterations, changed,
			started_at, finished_at, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			outcome = excluded.outcome,
			attempts = excluded.attempts,
			max_iterations = excluded.max_iterations,
			changed = excluded.changed,
			finished_at = excluded.finished_at,
			error = excluded.error
	`
	_, err = tx.Exec(upsert,
		s.RunID, specPath, string(s.Outcome), s.Attempts, s.MaxIterations,
		s.Changed(), s.StartedAt, finished, errText)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM iterations WHERE run_id = ?`, s.RunID); err != nil {
		return fmt.Errorf("failed to clear iterations: %w", err)
	}

	insert := `
		INSERT INTO iterations (
			run_id, number, lint_kind, exit_code, errors, lint_ms,
			oracle_status, oracle_attempts, oracle_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, it := range s.Iterations {
		var status *string
		var attempts int
		var oracleMS int64
		if c := it.Correction; c != nil {
			st := string(c.Status)
			status = &st
			attempts = c.Attempts
			oracleMS = c.Duration.Milliseconds()
		}

		_, err := tx.Exec(insert,
			s.RunID, it.Number, string(it.Lint.Kind), it.Lint.ExitCode,
			lint.CountBlocking(it.Lint.Findings()), it.Lint.Duration.Milliseconds(),
			status, attempts, oracleMS)
		if err != nil {
			return fmt.Errorf("failed to insert iteration %d: %w", it.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRun retrieves a run by its ID.
// Returns nil, nil if the run does not exist.
func (db *DB) GetRun(id string) (*RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

	run, err := scanRun(db.conn.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first.
// An empty specPath lists runs for every spec.
func (db *DB) ListRuns(specPath string, limit int) ([]*RunRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT ` + runColumns + ` FROM runs
		WHERE (? = '' OR spec_path = ?)
		ORDER BY started_at DESC, id DESC
		LIMIT ?`

	rows, err := db.conn.Query(query, specPath, specPath, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// ListIterations returns a run's iterations in order
func (db *DB) ListIterations(runID string) ([]*IterationRecord, error) {
	query := `
		SELECT run_id, number, lint_kind, exit_code, errors, lint_ms,
		       oracle_status, oracle_attempts, oracle_ms
		FROM iterations
		WHERE run_id = ?
		ORDER BY number
	`

	rows, err := db.conn.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list iterations: %w", err)
	}
	defer rows.Close()

	var iterations []*IterationRecord
	for rows.Next() {
		it := &IterationRecord{}
		var lintMS, oracleMS int64
		err := rows.Scan(
			&it.RunID,
			&it.Number,
			&it.LintKind,
			&it.ExitCode,
			&it.Errors,
			&lintMS,
			&it.OracleStatus,
			&it.OracleAttempts,
			&oracleMS,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan iteration: %w", err)
		}
		it.LintTook = time.Duration(lintMS) * time.Millisecond
		it.OracleTook = time.Duration(oracleMS) * time.Millisecond
		iterations = append(iterations, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating iterations: %w", err)
	}
	return iterations, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunRecord, error) {
	run := &RunRecord{}
	err := row.Scan(
		&run.ID,
		&run.SpecPath,
		&run.Validator,
		&run.Oracle,
		&run.Outcome,
		&run.Attempts,
		&run.MaxIterations,
		&run.Changed,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Error,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}
