package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"

	"github.com/RevCBH/specfix/internal/events"
	"github.com/RevCBH/specfix/internal/repair"
)

// AppendEvent records an event with an auto-assigned sequence number.
// The sequence number is calculated within a transaction to avoid races.
// Payload is JSON-serialized if non-nil.
func (db *DB) AppendEvent(e events.Event) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sequence, err := nextSequence(tx, e.Run)
	if err != nil {
		return err
	}

	var payloadJSON *string
	if e.Payload != nil {
		data, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("failed to serialize payload: %w", err)
		}
		s := string(data)
		payloadJSON = &s
	}

	var errText *string
	if e.Error != "" {
		errText = &e.Error
	}

	created := e.Time
	if created.IsZero() {
		created = time.Now()
	}

	query := `
		INSERT INTO events (run_id, sequence, event_type, iteration, payload_json, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, e.Run, sequence, string(e.Type), e.Iteration, payloadJSON, errText, created); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nextSequence(tx *sql.Tx, runID string) (int, error) {
	var next int
	err := tx.QueryRow(`SELECT COALESCE(MAX(sequence), 0) + 1 FROM events WHERE run_id = ?`, runID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to get next sequence: %w", err)
	}
	return next, nil
}

// ListEvents returns all events for a run in sequence order.
func (db *DB) ListEvents(runID string) ([]*EventRecord, error) {
	query := `
		SELECT id, run_id, sequence, event_type, iteration, payload_json, error, created_at
		FROM events
		WHERE run_id = ?
		ORDER BY sequence
	`

	rows, err := db.conn.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var records []*EventRecord
	for rows.Next() {
		r := &EventRecord{}
		err := rows.Scan(
			&r.ID,
			&r.RunID,
			&r.Sequence,
			&r.EventType,
			&r.Iteration,
			&r.PayloadJSON,
			&r.Error,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return records, nil
}

// Handler returns an event bus handler that records runs for specPath.
// A repair.started event creates the run row; every event is appended.
// Write failures are logged, never propagated.
func (db *DB) Handler(ctx context.Context, specPath string) events.Handler {
	return func(e events.Event) {
		log := clog.FromContext(ctx).With("run", e.Run)

		if e.Type == repair.RepairStarted {
			run := &RunRecord{ID: e.Run, SpecPath: specPath, StartedAt: e.Time}
			if p, ok := e.Payload.(repair.StartedPayload); ok {
				run.Validator = &p.Validator
				run.Oracle = &p.Oracle
				run.MaxIterations = p.MaxIterations
			}
			if err := db.StartRun(run); err != nil {
				log.Warnf("failed to record run start: %v", err)
				return
			}
		}

		if err := db.AppendEvent(e); err != nil {
			log.Warnf("failed to record event %s: %v", e.Type, err)
		}
	}
}
