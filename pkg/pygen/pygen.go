// Package pygen provides the public API for the pygen interpreter.
package pygen

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"nickandperla.net/pygen/internal/diag"
	"nickandperla.net/pygen/internal/eval"
	"nickandperla.net/pygen/internal/store"
	"nickandperla.net/pygen/internal/value"
)

// DefaultSession is the session name used when none is configured.
const DefaultSession = "default"

var (
	// ErrNoStore is returned by Save, Load and History without a store.
	ErrNoStore = errors.New("no store configured")
	// ErrNoHistory is returned by History when the store keeps no runs.
	ErrNoHistory = errors.New("store does not record run history")
	// ErrInputCancelled is returned by an input reader when the user
	// cancels INPUT, e.g. with end of file.
	ErrInputCancelled = eval.ErrInputCancelled
)

// Runtime is the pygen interpreter runtime. It owns one variable store
// (the session) and runs programs against it.
type Runtime struct {
	evaluator    *eval.Evaluator
	store        Store
	session      string
	persistMode  PersistMode
	persistSet   bool
	inputReader  eval.InputReader
	outputWriter eval.OutputWriter
	reporter     diag.Reporter
	counter      *diag.Counter
	log          zerolog.Logger
	nested       bool
	prelude      string
	optErr       error
}

// New creates a new pygen runtime with the given options.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{
		session: DefaultSession,
		log:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(r)
	}
	if r.optErr != nil {
		if r.store != nil {
			r.store.Close()
		}
		return nil, r.optErr
	}

	if !r.persistSet && r.store == nil {
		r.persistMode = PersistNever
	}
	if r.persistMode == PersistAlways && r.store == nil {
		return nil, fmt.Errorf("persist mode %s: %w", r.persistMode, ErrNoStore)
	}
	if r.reporter == nil {
		r.reporter = diag.NewWriter(os.Stderr, false)
	}
	if r.outputWriter == nil {
		r.outputWriter = lineWriter(os.Stdout)
	}
	r.counter = diag.NewCounter(r.reporter)

	// Build evaluator options
	evalOpts := []eval.Option{
		eval.WithReporter(r.counter),
		eval.WithOutputWriter(r.outputWriter),
		eval.WithLogger(r.log),
		eval.WithNestedBlocks(r.nested),
	}
	if r.inputReader != nil {
		evalOpts = append(evalOpts, eval.WithInputReader(r.inputReader))
	}
	r.evaluator = eval.New(evalOpts...)

	r.runPrelude()
	return r, nil
}

// RunFile runs the program at path. The error from opening the file is
// returned unwrapped so callers can test it with errors.Is.
func (r *Runtime) RunFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.RunReader(path, f)
}

// RunReader runs a whole program read from reader. name labels the run in
// the history.
func (r *Runtime) RunReader(name string, reader io.Reader) error {
	lines, err := eval.ReadLines(reader)
	if err != nil {
		return err
	}
	return r.run(name, lines, true)
}

// RunLines runs a program already split into lines.
func (r *Runtime) RunLines(lines []string) error {
	return r.run("<lines>", lines, true)
}

// Eval runs src without recording it in the run history. src may span
// several lines, e.g. a whole construct typed into the REPL.
func (r *Runtime) Eval(src string) error {
	return r.run("<eval>", strings.Split(src, "\n"), false)
}

func (r *Runtime) run(name string, lines []string, record bool) error {
	if r.persistMode == PersistAlways {
		if err := r.load(); err != nil {
			return err
		}
	}

	r.counter.Reset()
	started := time.Now()
	r.evaluator.Run(lines)
	finished := time.Now()
	count := r.counter.Count()

	r.log.Debug().Str("program", name).Int("lines", len(lines)).
		Int("diagnostics", count).Dur("elapsed", finished.Sub(started)).Msg("run")

	if r.persistMode == PersistAlways {
		if err := r.save(); err != nil {
			return err
		}
	}
	if !record {
		return nil
	}
	hs, ok := r.store.(store.HistoryStore)
	if !ok {
		return nil
	}
	err := hs.RecordRun(RunEntry{
		ID:          uuid.NewString(),
		Session:     r.session,
		Program:     name,
		Started:     started,
		Finished:    finished,
		Lines:       len(lines),
		Diagnostics: count,
	})
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Variables returns a copy of the current variables.
func (r *Runtime) Variables() map[string]value.Value {
	return r.evaluator.Namespace().Snapshot()
}

// Names returns the bound variable names in order.
func (r *Runtime) Names() []string {
	return r.evaluator.Namespace().Names()
}

// Save writes the current variables to the store under the session name.
// It is a no-op in PersistNever mode.
func (r *Runtime) Save() error {
	if r.persistMode == PersistNever {
		return nil
	}
	return r.save()
}

// Load merges the saved session variables into the current ones.
// It is a no-op in PersistNever mode.
func (r *Runtime) Load() error {
	if r.persistMode == PersistNever {
		return nil
	}
	return r.load()
}

func (r *Runtime) save() error {
	if r.store == nil {
		return ErrNoStore
	}
	if err := r.store.SaveVariables(r.session, r.Variables()); err != nil {
		return fmt.Errorf("save session %s: %w", r.session, err)
	}
	return nil
}

func (r *Runtime) load() error {
	if r.store == nil {
		return ErrNoStore
	}
	vars, err := r.store.LoadVariables(r.session)
	if err != nil {
		return fmt.Errorf("load session %s: %w", r.session, err)
	}
	r.evaluator.Namespace().Merge(vars)
	return nil
}

// History returns the most recent runs first.
func (r *Runtime) History(limit int) ([]RunEntry, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	hs, ok := r.store.(store.HistoryStore)
	if !ok {
		return nil, ErrNoHistory
	}
	return hs.Runs(limit)
}

// Sessions lists the sessions saved in the store.
func (r *Runtime) Sessions() ([]string, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	return r.store.Sessions()
}

// Reset clears every variable and runs the prelude again.
func (r *Runtime) Reset() {
	r.evaluator.Namespace().Clear()
	r.runPrelude()
}

// Session returns the session name.
func (r *Runtime) Session() string {
	return r.session
}

// PersistMode returns the persistence mode in effect.
func (r *Runtime) PersistMode() PersistMode {
	return r.persistMode
}

// Close releases resources.
func (r *Runtime) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}

// SetInputReader changes the input reader for INPUT.
func (r *Runtime) SetInputReader(reader func(label string) (string, error)) {
	r.inputReader = reader
	r.evaluator.SetInputReader(reader)
}

// SetOutputWriter changes the output writer for PRINT.
func (r *Runtime) SetOutputWriter(writer func(line string) error) {
	r.outputWriter = writer
	r.evaluator.SetOutputWriter(writer)
}

// SetOutput changes the io.Writer for output.
func (r *Runtime) SetOutput(w io.Writer) {
	r.SetOutputWriter(lineWriter(w))
}

// SetReporter changes where diagnostics go.
func (r *Runtime) SetReporter(rep diag.Reporter) {
	r.reporter = rep
	r.counter.SetNext(rep)
}
