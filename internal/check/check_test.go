// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package check

import (
	"reflect"
	"strings"
	"testing"

	"nickandperla.net/pygen/internal/diag"
)

func lines(src string) []string {
	return strings.Split(src, "\n")
}

type finding struct {
	line int
	code diag.Code
}

func findings(problems []Problem) []finding {
	out := []finding{}
	for _, p := range problems {
		out = append(out, finding{p.Line, p.Code})
	}
	return out
}

func TestCleanProgram(t *testing.T) {
	src := `// counts to three
SET i 0
WHILE i < 3 DO
    ADD i 1
    IF i == 2 THEN
        PRINT two
    ELIF i == 3 THEN
        PRINT three
    ELSE
        PRINT i
    ENDIF
ENDWHILE
FOR j FROM 1 TO 3 STEP 1 DO
    PRINT j
ENDFOR`
	if problems := Lines(lines(src)); len(problems) != 0 {
		t.Errorf("expected no problems, got %v", problems)
	}
}

func TestStructuralProblems(t *testing.T) {
	tests := []struct {
		src  string
		want []finding
	}{
		{"IF x == 1 THEN\nPRINT x", []finding{{1, diag.MissingEndIf}}},
		{"IF x == 1\nENDIF", []finding{{1, diag.InvalidIf}, {2, diag.UnknownCommand}}},
		{"WHILE x < 1\nENDWHILE", []finding{{1, diag.InvalidWhile}, {2, diag.UnknownCommand}}},
		{"WHILE x < 1 DO", []finding{{1, diag.MissingEndWhile}}},
		{"FOR i FROM 1 TO 3\nENDFOR", []finding{{1, diag.InvalidFor}, {2, diag.UnknownCommand}}},
		{"FOR i FROM 1 TO n DO\nENDFOR", []finding{{1, diag.NonNumericFor}, {2, diag.UnknownCommand}}},
		{"FOR i FROM 1 TO 3 DO", []finding{{1, diag.MissingEndFor}}},
		{"ELSE", []finding{{1, diag.UnknownCommand}}},
		{"ELIF x == 1 THEN", []finding{{1, diag.UnknownCommand}}},
		{"IF x == 1 THEN\nELIF x == 2\nENDIF", []finding{{2, diag.InvalidIf}}},
		{"launch rockets", []finding{{1, diag.UnknownCommand}}},
		{"IF a == 1 THEN\nWHILE b DO\nENDIF", []finding{{2, diag.MissingEndWhile}}},
		{"WHILE a < 1 DO\nFOR i FROM 1 TO 2 DO\nENDWHILE\nENDFOR", []finding{{2, diag.MissingEndFor}, {4, diag.UnknownCommand}}},
		{"IF a == 1 THEN\nWHILE a < 2 DO", []finding{{2, diag.MissingEndWhile}, {1, diag.MissingEndIf}}},
	}
	for _, tt := range tests {
		got := findings(Lines(lines(tt.src)))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%q: expected %v, got %v", tt.src, tt.want, got)
		}
	}
}

func TestSameKindNesting(t *testing.T) {
	src := "IF a == 1 THEN\nIF b == 1 THEN\nPRINT x\nENDIF\nENDIF"

	problems := Lines(lines(src))
	if len(problems) != 1 || problems[0].Line != 2 || problems[0].Code != "" {
		t.Fatalf("expected one nesting note on line 2, got %v", problems)
	}
	if !strings.Contains(problems[0].Message, "nested block mode") {
		t.Errorf("unexpected message %q", problems[0].Message)
	}

	if problems := Lines(lines(src), WithNestedBlocks(true)); len(problems) != 0 {
		t.Errorf("expected no problems in nested mode, got %v", problems)
	}
}

func TestNotes(t *testing.T) {
	problems := Lines(lines("IF a == 1 THEN\nELSE\nELSE\nENDIF\nFOR i FROM 1 TO 2 STEP 0 DO\nENDFOR"))
	got := findings(problems)
	want := []finding{{3, ""}, {5, ""}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestProblemString(t *testing.T) {
	problems := Lines(lines("\n\nfoo"))
	if len(problems) != 1 {
		t.Fatalf("expected 1 problem, got %v", problems)
	}
	if got, want := problems[0].String(), "line 3: Syntax Error: Command 'FOO' is unknown."; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestReader(t *testing.T) {
	problems, err := Reader(strings.NewReader("SET x 1\r\nIF x == 1 THEN\r\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := findings(problems); !reflect.DeepEqual(got, []finding{{2, diag.MissingEndIf}}) {
		t.Errorf("unexpected problems %v", got)
	}
}
