// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package diag defines pygen diagnostics and the sinks that render them.
package diag

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Code identifies a diagnostic kind.
type Code string

const (
	UnknownCommand    Code = "E001"
	NonNumericOperand Code = "E002"
	UndefinedVariable Code = "E003"
	DivisionByZero    Code = "E004"
	InputCancelled    Code = "E005"
	MissingArguments  Code = "E006"
	InvalidCLC        Code = "E007"
	UndefinedInCLC    Code = "E008"
	NonNumericInCLC   Code = "E009"
	UnknownOperator   Code = "E010"
	InvalidExpression Code = "E011"
	InvalidComparison Code = "E012"
	InvalidCondition  Code = "E013"
	InvalidIf         Code = "E014"
	MissingEndIf      Code = "E015"
	InvalidWhile      Code = "E016"
	MissingEndWhile   Code = "E017"
	InvalidFor        Code = "E018"
	NonNumericFor     Code = "E019"
	MissingEndFor     Code = "E020"
	TypeMismatch      Code = "E021"
)

// Fields holds the values substituted into a message template.
type Fields map[string]string

var templates = map[Code]string{
	UnknownCommand:    "Syntax Error: Command '{cmd}' is unknown.",
	NonNumericOperand: "Arithmetic Error: Cannot perform {cmd} on non-numeric value '{val}'.",
	UndefinedVariable: "Arithmetic Error: Variable '{var}' is not defined or not numeric.",
	DivisionByZero:    "Math Error: Division by zero is not allowed.",
	InputCancelled:    "Input Error: Input was cancelled for variable '{var}'.",
	MissingArguments:  "Syntax Error: Missing arguments for command '{cmd}'.",
	InvalidCLC:        "Syntax Error: Invalid CLC syntax. Expected: CLC target left OP right.",
	UndefinedInCLC:    "Arithmetic Error: Undefined variable '{var}' in CLC.",
	NonNumericInCLC:   "Arithmetic Error: Non-numeric value in CLC.",
	UnknownOperator:   "Syntax Error: Unknown operator '{op}' in CLC.",
	InvalidExpression: "Syntax Error: Invalid expression in condition.",
	InvalidComparison: "Syntax Error: Invalid comparison operator '{op}' in condition.",
	InvalidCondition:  "Syntax Error: Invalid condition syntax.",
	InvalidIf:         "Syntax Error: Invalid IF syntax. Expected: IF <condition> THEN",
	MissingEndIf:      "Syntax Error: Missing ENDIF for IF statement.",
	InvalidWhile:      "Syntax Error: Invalid WHILE syntax. Expected: WHILE <condition> DO",
	MissingEndWhile:   "Syntax Error: Missing ENDWHILE for WHILE statement.",
	InvalidFor:        "Syntax Error: Invalid FOR syntax. Expected: FOR <var> FROM <start> TO <end> [STEP <step>] DO",
	NonNumericFor:     "Arithmetic Error: Non-numeric values in FOR loop parameters.",
	MissingEndFor:     "Syntax Error: Missing ENDFOR for FOR statement.",
	TypeMismatch:      "Type Error: Cannot compare {left} with {right}.",
}

// Message renders the template for code with fields substituted.
// Unknown codes render a generic message naming the code.
func Message(code Code, fields Fields) string {
	tmpl, ok := templates[code]
	if !ok {
		return fmt.Sprintf("Unknown Error: Code '%s' not defined.", code)
	}
	if len(fields) == 0 {
		return tmpl
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", fields[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Reporter receives diagnostics. Implementations must not panic and must
// not stop the interpreter.
type Reporter interface {
	Report(code Code, fields Fields)
}

// ANSI color codes for terminal output
const (
	colorRed   = "\x1b[91m"
	colorReset = "\x1b[0m"
)

// Writer renders diagnostics one per line to an io.Writer.
type Writer struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// NewWriter creates a Writer. With color set, messages are wrapped in red.
func NewWriter(out io.Writer, color bool) *Writer {
	return &Writer{out: out, color: color}
}

// Report writes the rendered message. Write errors are dropped.
func (w *Writer) Report(code Code, fields Fields) {
	msg := Message(code, fields)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.color {
		_, _ = fmt.Fprintf(w.out, "%s%s%s\n", colorRed, msg, colorReset)
	} else {
		_, _ = fmt.Fprintln(w.out, msg)
	}
}

// Entry is a diagnostic captured by a Recorder.
type Entry struct {
	Code   Code
	Fields Fields
}

// Message renders the entry.
func (e Entry) Message() string { return Message(e.Code, e.Fields) }

// Recorder keeps every reported diagnostic in memory (for tests and the REPL).
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Report records the diagnostic.
func (r *Recorder) Report(code Code, fields Fields) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Code: code, Fields: fields})
}

// Entries returns a copy of the recorded diagnostics.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Codes returns the recorded codes in order.
func (r *Recorder) Codes() []Code {
	r.mu.Lock()
	defer r.mu.Unlock()
	codes := make([]Code, len(r.entries))
	for i, e := range r.entries {
		codes[i] = e.Code
	}
	return codes
}

// Reset discards recorded diagnostics.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

// Counter forwards to another Reporter and counts what passes through.
type Counter struct {
	mu    sync.Mutex
	next  Reporter
	count int
}

// NewCounter wraps next. A nil next only counts.
func NewCounter(next Reporter) *Counter {
	return &Counter{next: next}
}

// Report counts and forwards the diagnostic.
func (c *Counter) Report(code Code, fields Fields) {
	c.mu.Lock()
	c.count++
	next := c.next
	c.mu.Unlock()
	if next != nil {
		next.Report(code, fields)
	}
}

// Count returns the number of diagnostics seen since the last Reset.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Reset zeroes the count.
func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count = 0
}

// SetNext replaces the forwarding target.
func (c *Counter) SetNext(next Reporter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = next
}

// Discard drops every diagnostic.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Report(Code, Fields) {}
