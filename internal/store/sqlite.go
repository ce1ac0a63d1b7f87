package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"nickandperla.net/pygen/internal/value"
)

// Current schema version
const SchemaVersion = "2"

// timeLayout is fixed-width so run timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite is a SQLite-backed store.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite creates a new SQLite store at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}

	// Create tables if not exists
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS variables (
			session TEXT NOT NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (session, name)
		);
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLite{db: db}

	// Check/set schema version (use unlocked versions since we're in init)
	version, err := s.getMetadataUnlocked("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}

	if version == "" || version == "1" {
		// New DB or migrate from v1 to v2: add run history
		if err := s.migrateToV2(); err != nil {
			db.Close()
			return nil, err
		}
		if err := s.setMetadataUnlocked("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	} else if version != SchemaVersion {
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	return s, nil
}

// migrateToV2 creates the run history table.
func (s *SQLite) migrateToV2() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			session TEXT NOT NULL,
			program TEXT NOT NULL,
			started TEXT NOT NULL,
			finished TEXT NOT NULL,
			lines INTEGER NOT NULL,
			diagnostics INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS runs_started ON runs (started);
	`)
	return err
}

// LoadVariables returns the variables saved for session.
func (s *SQLite) LoadVariables(session string) (map[string]value.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT name, kind, value FROM variables WHERE session = ?", session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vars := make(map[string]value.Value)
	for rows.Next() {
		var name, kind, text string
		if err := rows.Scan(&name, &kind, &text); err != nil {
			return nil, err
		}
		v, err := value.Decode(kind, text)
		if err != nil {
			return nil, fmt.Errorf("load %s.%s: %w", session, name, err)
		}
		vars[name] = v
	}
	return vars, rows.Err()
}

// SaveVariables replaces the saved variables of session in one transaction.
func (s *SQLite) SaveVariables(session string, vars map[string]value.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM variables WHERE session = ?", session); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO variables (session, name, kind, value) VALUES (?, ?, ?, ?)
		ON CONFLICT(session, name) DO UPDATE SET kind = excluded.kind, value = excluded.value
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for name, v := range vars {
		kind, text := value.Encode(v)
		if _, err := stmt.Exec(session, name, kind, text); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Sessions lists sessions with saved variables in name order.
func (s *SQLite) Sessions() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query("SELECT DISTINCT session FROM variables ORDER BY session")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		sessions = append(sessions, name)
	}
	return sessions, rows.Err()
}

// RecordRun stores a run history entry.
func (s *SQLite) RecordRun(entry RunEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`
		INSERT INTO runs (id, session, program, started, finished, lines, diagnostics)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished = excluded.finished,
			lines = excluded.lines,
			diagnostics = excluded.diagnostics
	`,
		entry.ID, entry.Session, entry.Program,
		entry.Started.UTC().Format(timeLayout),
		entry.Finished.UTC().Format(timeLayout),
		entry.Lines, entry.Diagnostics,
	)
	return err
}

// Runs returns the most recent runs first.
func (s *SQLite) Runs(limit int) ([]RunEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := "SELECT id, session, program, started, finished, lines, diagnostics FROM runs ORDER BY started DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		var started, finished string
		if err := rows.Scan(&e.ID, &e.Session, &e.Program, &started, &finished, &e.Lines, &e.Diagnostics); err != nil {
			return nil, err
		}
		if e.Started, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("run %s: %w", e.ID, err)
		}
		if e.Finished, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("run %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// getMetadataUnlocked retrieves metadata without locking (caller must hold lock).
func (s *SQLite) getMetadataUnlocked(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// setMetadataUnlocked stores metadata without locking (caller must hold lock).
func (s *SQLite) setMetadataUnlocked(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
