package history

import (
	"database/sql"
	"fmt"
	"time"
)

type migration struct {
	Version     int
	Description string
	Up          func(*sql.Tx) error
}

var migrations = []migration{
	{Version: 1, Description: "Create schema_version table", Up: migration001Up},
	{Version: 2, Description: "Create runs table", Up: migration002Up},
	{Version: 3, Description: "Create steps table", Up: migration003Up},
}

// SchemaVersion is the version a freshly opened database ends up at.
var SchemaVersion = migrations[len(migrations)-1].Version

func (db *DB) migrate() error {
	current, err := db.Version()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		err := db.ExecTx(func(tx *sql.Tx) error {
			if err := m.Up(tx); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.Version, err)
			}
			_, err := tx.Exec(`
				INSERT INTO schema_version (version, description, applied_at)
				VALUES (?, ?, ?)
			`, m.Version, m.Description, time.Now())
			return err
		})
		if err != nil {
			return err
		}
		if db.logger != nil {
			db.logger.Info("history migration applied", "version", m.Version, "description", m.Description)
		}
	}
	return nil
}

// Version returns the applied schema version, 0 for an empty database.
func (db *DB) Version() (int, error) {
	var exists bool
	err := db.conn.QueryRow(`
		SELECT COUNT(*) > 0
		FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}
	var version int
	err = db.conn.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	return version, err
}

func migration001Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			version INTEGER NOT NULL UNIQUE,
			description TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)
	`)
	return err
}

func migration002Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			mode TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			finished_at DATETIME,
			outcome TEXT NOT NULL DEFAULT 'running',
			reason TEXT NOT NULL DEFAULT ''
		)
	`)
	return err
}

func migration003Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS steps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			state TEXT NOT NULL,
			at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_steps_run ON steps(run_id);
	`)
	return err
}
