package store

import (
	"sort"
	"sync"

	"nickandperla.net/pygen/internal/value"
)

// Memory is an in-memory store for testing and unsaved sessions.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]map[string]value.Value
	runs     []RunEntry
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]map[string]value.Value),
	}
}

// LoadVariables returns a copy of the variables saved for session.
func (m *Memory) LoadVariables(session string) (map[string]value.Value, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vars := make(map[string]value.Value, len(m.sessions[session]))
	for k, v := range m.sessions[session] {
		vars[k] = v
	}
	return vars, nil
}

// SaveVariables replaces the variables of session.
func (m *Memory) SaveVariables(session string, vars map[string]value.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := make(map[string]value.Value, len(vars))
	for k, v := range vars {
		saved[k] = v
	}
	m.sessions[session] = saved
	return nil
}

// Sessions lists saved sessions in name order.
func (m *Memory) Sessions() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.sessions))
	for name := range m.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// RecordRun appends a run to the history.
func (m *Memory) RecordRun(entry RunEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, entry)
	return nil
}

// Runs returns the most recent runs first.
func (m *Memory) Runs(limit int) ([]RunEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.runs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]RunEntry, 0, n)
	for i := len(m.runs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}
