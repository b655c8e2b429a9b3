package persistence

import "github.com/google/uuid"

// NewRunID generates a fresh identifier for one substrate process run, used
// to tag SQLite event-log entries so records from different runs against
// the same data directory can be told apart.
func NewRunID() string {
	return uuid.NewString()
}
