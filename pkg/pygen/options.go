package pygen

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"nickandperla.net/pygen/internal/diag"
	"nickandperla.net/pygen/internal/eval"
	"nickandperla.net/pygen/internal/store"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithSQLiteStore configures SQLite persistence at the given path.
func WithSQLiteStore(path string) Option {
	return func(r *Runtime) {
		s, err := store.NewSQLite(path)
		if err != nil {
			r.optErr = fmt.Errorf("open store %s: %w", path, err)
			return
		}
		r.store = s
	}
}

// WithMemoryStore configures an in-memory store (for testing).
func WithMemoryStore() Option {
	return func(r *Runtime) {
		r.store = store.NewMemory()
	}
}

// WithStore configures a custom store.
func WithStore(s Store) Option {
	return func(r *Runtime) {
		r.store = s
	}
}

// WithSession sets the session name variables are saved under.
func WithSession(name string) Option {
	return func(r *Runtime) {
		if name != "" {
			r.session = name
		}
	}
}

// WithInputReader sets the input reader for INPUT.
func WithInputReader(reader func(label string) (string, error)) Option {
	return func(r *Runtime) {
		r.inputReader = reader
	}
}

// WithOutputWriter sets the output writer for PRINT.
func WithOutputWriter(writer func(line string) error) Option {
	return func(r *Runtime) {
		r.outputWriter = writer
	}
}

// WithOutput sets the io.Writer for output. Each PRINT writes one line.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.outputWriter = lineWriter(w)
	}
}

// WithReporter sets where diagnostics go. The default writes them to stderr.
func WithReporter(rep diag.Reporter) Option {
	return func(r *Runtime) {
		r.reporter = rep
	}
}

// WithLogger sets the trace logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runtime) {
		r.log = l
	}
}

// WithNestedBlocks enables depth-counting block scanning.
func WithNestedBlocks(nested bool) Option {
	return func(r *Runtime) {
		r.nested = nested
	}
}

// WithPrelude sets program text run when the runtime starts and after Reset.
func WithPrelude(source string) Option {
	return func(r *Runtime) {
		r.prelude = source
	}
}

// Store interface for custom stores.
type Store = store.Store

// RunEntry is one recorded run.
type RunEntry = store.RunEntry

// PersistMode controls when session variables are persisted.
type PersistMode int

const (
	// PersistOnDemand saves and loads only on explicit Save/Load calls.
	PersistOnDemand PersistMode = iota
	// PersistAlways loads the session before every run and saves after it.
	PersistAlways
	// PersistNever makes Save and Load no-ops (memory-only mode).
	PersistNever
)

// String returns the string representation of a PersistMode.
func (m PersistMode) String() string {
	switch m {
	case PersistOnDemand:
		return "on_demand"
	case PersistAlways:
		return "always"
	case PersistNever:
		return "never"
	default:
		return "unknown"
	}
}

// ParsePersistMode parses a string into a PersistMode.
func ParsePersistMode(s string) (PersistMode, bool) {
	switch strings.ToLower(s) {
	case "on_demand":
		return PersistOnDemand, true
	case "always":
		return PersistAlways, true
	case "never":
		return PersistNever, true
	default:
		return PersistOnDemand, false
	}
}

// WithPersistMode sets the persistence mode.
func WithPersistMode(mode PersistMode) Option {
	return func(r *Runtime) {
		r.persistMode = mode
		r.persistSet = true
	}
}

func lineWriter(w io.Writer) eval.OutputWriter {
	return func(line string) error {
		_, err := io.WriteString(w, line+"\n")
		return err
	}
}
