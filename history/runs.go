package history

import (
	"database/sql"
	"fmt"
	"time"
)

// Outcome is how a run ended.
type Outcome string

const (
	OutcomeRunning   Outcome = "running"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeAborted   Outcome = "aborted"
	OutcomeCancelled Outcome = "cancelled"
)

// Run is one row of the runs table.
type Run struct {
	ID         int64
	Mode       string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Outcome    Outcome
	Reason     string
}

// Duration is the run's wall time, zero while running.
func (r Run) Duration() time.Duration {
	if !r.FinishedAt.Valid {
		return 0
	}
	return r.FinishedAt.Time.Sub(r.StartedAt)
}

// StepRecord is one step transition.
type StepRecord struct {
	RunID int64
	Name  string
	State string
	At    time.Time
}

// StartRun inserts a running row and returns its id.
func (db *DB) StartRun(mode string, at time.Time) (int64, error) {
	res, err := db.conn.Exec(`INSERT INTO runs (mode, started_at) VALUES (?, ?)`, mode, at)
	if err != nil {
		return 0, fmt.Errorf("failed to start run: %w", err)
	}
	return res.LastInsertId()
}

// FinishRun closes a run.
func (db *DB) FinishRun(id int64, outcome Outcome, reason string, at time.Time) error {
	_, err := db.conn.Exec(`
		UPDATE runs
		SET finished_at = ?, outcome = ?, reason = ?
		WHERE id = ?
	`, at, string(outcome), reason, id)
	if err != nil {
		return fmt.Errorf("failed to finish run %d: %w", id, err)
	}
	return nil
}

// RecordStep appends a step transition to a run.
func (db *DB) RecordStep(runID int64, name, state string, at time.Time) error {
	_, err := db.conn.Exec(`INSERT INTO steps (run_id, name, state, at) VALUES (?, ?, ?, ?)`, runID, name, state, at)
	if err != nil {
		return fmt.Errorf("failed to record step %s: %w", name, err)
	}
	return nil
}

// GetRun loads one run.
func (db *DB) GetRun(id int64) (*Run, error) {
	var r Run
	var outcome string
	err := db.conn.QueryRow(`
		SELECT id, mode, started_at, finished_at, outcome, reason
		FROM runs WHERE id = ?
	`, id).Scan(&r.ID, &r.Mode, &r.StartedAt, &r.FinishedAt, &outcome, &r.Reason)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", id, err)
	}
	r.Outcome = Outcome(outcome)
	return &r, nil
}

// RecentRuns returns up to limit runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	rows, err := db.conn.Query(`
		SELECT id, mode, started_at, finished_at, outcome, reason
		FROM runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var outcome string
		if err := rows.Scan(&r.ID, &r.Mode, &r.StartedAt, &r.FinishedAt, &outcome, &r.Reason); err != nil {
			return nil, err
		}
		r.Outcome = Outcome(outcome)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Steps returns a run's transitions in insertion order.
func (db *DB) Steps(runID int64) ([]StepRecord, error) {
	rows, err := db.conn.Query(`SELECT run_id, name, state, at FROM steps WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer rows.Close()

	var out []StepRecord
	for rows.Next() {
		var s StepRecord
		if err := rows.Scan(&s.RunID, &s.Name, &s.State, &s.At); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
