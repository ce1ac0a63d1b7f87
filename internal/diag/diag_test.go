// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package diag

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		code   Code
		fields Fields
		want   string
	}{
		{UnknownCommand, Fields{"cmd": "FOO"}, "Syntax Error: Command 'FOO' is unknown."},
		{NonNumericOperand, Fields{"cmd": "ADD", "val": "abc"}, "Arithmetic Error: Cannot perform ADD on non-numeric value 'abc'."},
		{DivisionByZero, nil, "Math Error: Division by zero is not allowed."},
		{TypeMismatch, Fields{"left": "string", "right": "int"}, "Type Error: Cannot compare string with int."},
		{Code("E999"), nil, "Unknown Error: Code 'E999' not defined."},
	}
	for _, tt := range tests {
		if got := Message(tt.code, tt.fields); got != tt.want {
			t.Errorf("Message(%s) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestMessageDoesNotExpandTwice(t *testing.T) {
	got := Message(UndefinedVariable, Fields{"var": "{var}"})
	if want := "Arithmetic Error: Variable '{var}' is not defined or not numeric."; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEveryCodeHasTemplate(t *testing.T) {
	for i := 1; i <= 21; i++ {
		code := Code(fmt.Sprintf("E%03d", i))
		if strings.HasPrefix(Message(code, nil), "Unknown Error") {
			t.Errorf("no template for %s", code)
		}
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, false)
	w.Report(DivisionByZero, nil)
	w.Report(MissingEndIf, nil)
	want := "Math Error: Division by zero is not allowed.\nSyntax Error: Missing ENDIF for IF statement.\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}

	buf.Reset()
	NewWriter(&buf, true).Report(DivisionByZero, nil)
	if got := buf.String(); !strings.HasPrefix(got, colorRed) || !strings.HasSuffix(got, colorReset+"\n") {
		t.Errorf("expected colored output, got %q", got)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Report(UnknownCommand, Fields{"cmd": "X"})
	r.Report(DivisionByZero, nil)
	if want := []Code{UnknownCommand, DivisionByZero}; !reflect.DeepEqual(r.Codes(), want) {
		t.Errorf("expected %v, got %v", want, r.Codes())
	}
	if msg := r.Entries()[0].Message(); msg != "Syntax Error: Command 'X' is unknown." {
		t.Errorf("unexpected message %q", msg)
	}
	r.Reset()
	if len(r.Entries()) != 0 {
		t.Error("expected no entries after Reset")
	}
}

func TestCounter(t *testing.T) {
	r := NewRecorder()
	c := NewCounter(r)
	c.Report(DivisionByZero, nil)
	c.Report(DivisionByZero, nil)
	if c.Count() != 2 {
		t.Errorf("expected 2, got %d", c.Count())
	}
	if len(r.Codes()) != 2 {
		t.Errorf("expected forwarded diagnostics, got %v", r.Codes())
	}
	c.Reset()
	c.SetNext(nil)
	c.Report(InvalidIf, nil)
	if c.Count() != 1 || len(r.Codes()) != 2 {
		t.Errorf("expected count 1 without forwarding, got %d and %v", c.Count(), r.Codes())
	}
	Discard.Report(InvalidIf, nil)
}
