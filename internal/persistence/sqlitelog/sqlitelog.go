// Package sqlitelog provides an optional, append-only event log of growth,
// prune, and homeostatic-controller decisions, backed by modernc.org/sqlite
// (pure Go, no cgo). It supplements the JSONL DecisionLogger with a queryable
// store for offline analysis across runs; it is purely additive and a write
// failure here never blocks a tick.
package sqlitelog

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Log wraps a SQLite connection dedicated to the decision event table.
type Log struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	tick INTEGER NOT NULL,
	kind TEXT NOT NULL,
	detail TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decisions_tick ON decisions(tick);
`

// Open opens (creating if necessary) the SQLite event log at path and
// ensures its schema exists.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating event log schema: %w", err)
	}
	return &Log{db: db}, nil
}

// Record appends one decision event. kind is a short label such as
// "edge_emergence", "layer_emergence", "prune", or "controller_adjust";
// detail is a free-form human-readable description.
func (l *Log) Record(runID string, tick uint64, kind, detail string) error {
	if l == nil {
		return nil
	}
	_, err := l.db.Exec(
		`INSERT INTO decisions (run_id, tick, kind, detail) VALUES (?, ?, ?, ?)`,
		runID, tick, kind, detail,
	)
	return err
}

// Close closes the underlying database connection. Safe to call on a nil Log.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	return l.db.Close()
}
