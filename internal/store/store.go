// Package store provides persistence for pygen sessions and run history.
package store

import (
	"time"

	"nickandperla.net/pygen/internal/value"
)

// Store is the interface for session variable persistence.
type Store interface {
	// LoadVariables returns the variables saved for session. An unknown
	// session yields an empty map.
	LoadVariables(session string) (map[string]value.Value, error)
	// SaveVariables replaces the saved variables of session.
	SaveVariables(session string, vars map[string]value.Value) error
	// Sessions lists the sessions that have saved variables.
	Sessions() ([]string, error)
	// Close releases resources.
	Close() error
}

// RunEntry records one program run.
type RunEntry struct {
	ID          string
	Session     string
	Program     string // file path, "<stdin>", "<eval>" or "<lines>"
	Started     time.Time
	Finished    time.Time
	Lines       int
	Diagnostics int
}

// Duration returns how long the run took.
func (r RunEntry) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// HistoryStore extends Store with run history.
type HistoryStore interface {
	RecordRun(entry RunEntry) error
	// Runs returns the most recent runs first. A limit <= 0 returns all.
	Runs(limit int) ([]RunEntry, error)
}
