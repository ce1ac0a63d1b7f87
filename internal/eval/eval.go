package eval

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"nickandperla.net/pygen/internal/diag"
	"nickandperla.net/pygen/internal/scanner"
	"nickandperla.net/pygen/internal/token"
	"nickandperla.net/pygen/internal/value"
)

// ErrInputCancelled may be returned by an InputReader to cancel INPUT.
// Any other error cancels the same way.
var ErrInputCancelled = errors.New("input cancelled")

// InputReader requests one line of input for the variable named label.
type InputReader func(label string) (string, error)

// OutputWriter writes one line of PRINT output (without trailing newline).
type OutputWriter func(line string) error

// Evaluator runs pygen programs against a single variable store.
type Evaluator struct {
	namespace    *Namespace
	inputReader  InputReader
	outputWriter OutputWriter
	reporter     diag.Reporter
	log          zerolog.Logger
	nested       bool // depth-counting block scan instead of first-match
	depth        int  // construct nesting depth, for tracing
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithInputReader sets the input reader for INPUT.
func WithInputReader(r InputReader) Option {
	return func(e *Evaluator) { e.inputReader = r }
}

// WithOutputWriter sets the output writer for PRINT.
func WithOutputWriter(w OutputWriter) Option {
	return func(e *Evaluator) { e.outputWriter = w }
}

// WithReporter sets the diagnostic sink.
func WithReporter(r diag.Reporter) Option {
	return func(e *Evaluator) { e.reporter = r }
}

// WithLogger sets the trace logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Evaluator) { e.log = l }
}

// WithNestedBlocks makes IF, WHILE and FOR bodies track nested constructs
// of the same kind, so an inner ENDIF no longer closes the outer IF.
func WithNestedBlocks(nested bool) Option {
	return func(e *Evaluator) { e.nested = nested }
}

// New creates a new Evaluator with the given options.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		namespace: NewNamespace(),
		reporter:  diag.Discard,
		log:       zerolog.Nop(),
		outputWriter: func(line string) error {
			fmt.Println(line)
			return nil
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetInputReader changes the input reader for INPUT.
func (e *Evaluator) SetInputReader(r InputReader) {
	e.inputReader = r
}

// SetOutputWriter changes the output writer for PRINT.
func (e *Evaluator) SetOutputWriter(w OutputWriter) {
	e.outputWriter = w
}

// SetReporter changes the diagnostic sink.
func (e *Evaluator) SetReporter(r diag.Reporter) {
	e.reporter = r
}

// Namespace returns the variable store.
func (e *Evaluator) Namespace() *Namespace {
	return e.namespace
}

// RunReader reads a whole program and runs it.
func (e *Evaluator) RunReader(r io.Reader) error {
	lines, err := ReadLines(r)
	if err != nil {
		return err
	}
	e.Run(lines)
	return nil
}

// ReadLines splits a program into lines.
func ReadLines(r io.Reader) ([]string, error) {
	reader := bufio.NewReader(r)
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			lines = append(lines, strings.TrimRight(line, "\r\n"))
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read program: %w", err)
		}
	}
}

// Run interprets lines in order. Statements run directly; IF, WHILE and
// FOR extract their bodies and run them through Run again. Diagnostics never
// stop the run: the failing line is skipped or the construct abandoned.
func (e *Evaluator) Run(lines []string) {
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if skippable(line) {
			i++
			continue
		}
		parts := scanner.Tokenize(line)
		if len(parts) == 0 {
			i++
			continue
		}

		cmd := parts[0]
		switch {
		case token.IsStatement(cmd):
			e.execute(parts)
			i++
		case cmd == token.IF:
			i = e.execIf(lines, i, parts)
		case cmd == token.WHILE:
			i = e.execWhile(lines, i, parts)
		case cmd == token.FOR:
			i = e.execFor(lines, i, parts)
		default:
			e.report(diag.UnknownCommand, diag.Fields{"cmd": strings.ToUpper(cmd)})
			i++
		}
	}
}

// Exec runs a single statement line. Construct headers are rejected as
// unknown commands since they need a body.
func (e *Evaluator) Exec(line string) {
	parts := scanner.Tokenize(line)
	if len(parts) == 0 {
		return
	}
	if !token.IsStatement(parts[0]) {
		e.report(diag.UnknownCommand, diag.Fields{"cmd": strings.ToUpper(parts[0])})
		return
	}
	e.execute(parts)
}

// skippable reports blank lines and full-line comments.
func skippable(line string) bool {
	return line == "" || strings.HasPrefix(line, token.CommentPrefix)
}

// resolve returns the bound value of tok, falling back to literal detection.
func (e *Evaluator) resolve(tok string) value.Value {
	if v, ok := e.namespace.Get(tok); ok {
		return v
	}
	return value.Detect(tok)
}

func (e *Evaluator) report(code diag.Code, fields diag.Fields) {
	e.log.Debug().Str("code", string(code)).Interface("fields", fields).Msg("diagnostic")
	if e.reporter != nil {
		e.reporter.Report(code, fields)
	}
}
