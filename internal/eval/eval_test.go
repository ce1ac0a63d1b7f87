package eval

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"nickandperla.net/pygen/internal/diag"
	"nickandperla.net/pygen/internal/value"
)

// harness bundles an evaluator with captured output and diagnostics.
type harness struct {
	*Evaluator
	output []string
	diags  *diag.Recorder
}

func newHarness(opts ...Option) *harness {
	h := &harness{diags: diag.NewRecorder()}
	base := []Option{
		WithReporter(h.diags),
		WithOutputWriter(func(line string) error {
			h.output = append(h.output, line)
			return nil
		}),
	}
	h.Evaluator = New(append(base, opts...)...)
	return h
}

func (h *harness) run(program string) {
	h.Run(strings.Split(program, "\n"))
}

func (h *harness) get(t *testing.T, name string) value.Value {
	t.Helper()
	v, ok := h.Namespace().Get(name)
	if !ok {
		t.Fatalf("variable %s is not bound", name)
	}
	return v
}

func (h *harness) expectCodes(t *testing.T, want ...diag.Code) {
	t.Helper()
	got := h.diags.Codes()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected diagnostics %v, got %v", want, got)
	}
}

func (h *harness) expectOutput(t *testing.T, want ...string) {
	t.Helper()
	if len(h.output) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(h.output, want) {
		t.Errorf("expected output %q, got %q", want, h.output)
	}
}

func TestSetStoresDetectedLiteral(t *testing.T) {
	for _, lit := range []string{"42", "-7", "3.5", "1e3", "0"} {
		h := newHarness()
		h.run("SET x " + lit)
		if got, want := h.get(t, "x"), value.Detect(lit); got != want {
			t.Errorf("SET x %s: expected %#v, got %#v", lit, want, got)
		}
	}
}

func TestSetCopiesVariable(t *testing.T) {
	h := newHarness()
	h.run("SET a 5\nSET b a\nSET a \"text\"")
	if got := h.get(t, "b"); got != value.Int(5) {
		t.Errorf("expected b to keep 5, got %#v", got)
	}
	if got := h.get(t, "a"); got != value.Str("text") {
		t.Errorf("expected a to be retyped to string, got %#v", got)
	}
	h.expectCodes(t)
}

func TestSetUnboundNameIsString(t *testing.T) {
	h := newHarness()
	h.run("SET s hello\nSET b TRUE\nSET c false")
	if got := h.get(t, "s"); got != value.Str("hello") {
		t.Errorf("expected opaque string, got %#v", got)
	}
	if got := h.get(t, "b"); got != value.Bool(true) {
		t.Errorf("expected true, got %#v", got)
	}
	if got := h.get(t, "c"); got != value.Bool(false) {
		t.Errorf("expected false, got %#v", got)
	}
}

func TestSetMissingArguments(t *testing.T) {
	h := newHarness()
	h.run("SET x")
	h.expectCodes(t, diag.MissingArguments)
	if h.Namespace().Has("x") {
		t.Error("SET with missing value must not bind")
	}
}

func TestArithmeticIdentities(t *testing.T) {
	for _, start := range []string{"7", "2.5", "-3"} {
		h := newHarness()
		h.run("SET x " + start + "\nADD x 0\nSUB x 0\nMUL x 1")
		if got, want := h.get(t, "x"), value.Detect(start); got != want {
			t.Errorf("start %s: expected %#v, got %#v", start, want, got)
		}
		h.expectCodes(t)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		program string
		want    value.Value
	}{
		{"SET x 7\nADD x 3", value.Int(10)},
		{"SET x 7\nSUB x 10", value.Int(-3)},
		{"SET x 7\nMUL x 2.5", value.Float(17.5)},
		{"SET x 7\nDIV x 2", value.Float(3.5)},
		{"SET x 6\nDIV x 2", value.Float(3)},
		{"SET x -7\nMOD x 3", value.Int(2)},
		{"SET x 7\nMOD x -3", value.Int(-2)},
		{"SET x 7\nSET y 5\nADD x y", value.Int(12)},
	}
	for _, tt := range tests {
		h := newHarness()
		h.run(tt.program)
		if got := h.get(t, "x"); got != tt.want {
			t.Errorf("%q: expected %#v, got %#v", tt.program, tt.want, got)
		}
		h.expectCodes(t)
	}
}

func TestDivideByZeroLeavesVariable(t *testing.T) {
	h := newHarness()
	h.run("SET x 9\nDIV x 0\nDIV x 0.0\nMOD x 0")
	if got := h.get(t, "x"); got != value.Int(9) {
		t.Errorf("expected x unchanged, got %#v", got)
	}
	h.expectCodes(t, diag.DivisionByZero, diag.DivisionByZero, diag.DivisionByZero)
}

func TestArithmeticRejectsBadOperands(t *testing.T) {
	h := newHarness()
	h.run("ADD missing 1\nSET s \"abc\"\nADD s 1\nSET x 1\nADD x s\nADD x")
	h.expectCodes(t,
		diag.UndefinedVariable,
		diag.UndefinedVariable,
		diag.NonNumericOperand,
		diag.MissingArguments,
	)
	if got := h.get(t, "x"); got != value.Int(1) {
		t.Errorf("expected x unchanged, got %#v", got)
	}
	entries := h.diags.Entries()
	if msg := entries[2].Message(); !strings.Contains(msg, "'abc'") {
		t.Errorf("expected operand in message, got %q", msg)
	}
}

func TestCLC(t *testing.T) {
	h := newHarness()
	h.run("SET a 6\nSET b 4\nSET c \"old\"\nCLC c a MUL b\nCLC d a SUB b\nCLC e a DIV b")
	if got := h.get(t, "c"); got != value.Int(24) {
		t.Errorf("expected c = 24, got %#v", got)
	}
	if got := h.get(t, "d"); got != value.Int(2) {
		t.Errorf("expected d = 2, got %#v", got)
	}
	if got := h.get(t, "e"); got != value.Float(1.5) {
		t.Errorf("expected e = 1.5, got %#v", got)
	}
	if got := h.get(t, "a"); got != value.Int(6) {
		t.Errorf("CLC must not mutate operands, got a = %#v", got)
	}
	h.expectCodes(t)
}

func TestCLCDiagnostics(t *testing.T) {
	tests := []struct {
		program string
		want    []diag.Code
	}{
		{"CLC t a ADD", []diag.Code{diag.InvalidCLC}},
		{"CLC t a ADD b extra", []diag.Code{diag.InvalidCLC}},
		{"SET a 1\nCLC t a ADD nope", []diag.Code{diag.UndefinedInCLC}},
		{"CLC t x ADD y", []diag.Code{diag.UndefinedInCLC, diag.UndefinedInCLC}},
		{"SET a 1\nSET s \"x\"\nCLC t a ADD s", []diag.Code{diag.NonNumericInCLC}},
		{"SET a 1\nSET b 2\nCLC t a POW b", []diag.Code{diag.UnknownOperator}},
		{"SET a 1\nSET z 0\nCLC t a DIV z", []diag.Code{diag.DivisionByZero}},
	}
	for _, tt := range tests {
		h := newHarness()
		h.run(tt.program)
		if !reflect.DeepEqual(h.diags.Codes(), tt.want) {
			t.Errorf("%q: expected %v, got %v", tt.program, tt.want, h.diags.Codes())
		}
		if h.Namespace().Has("t") {
			t.Errorf("%q: failed CLC must not bind target", tt.program)
		}
	}
}

func TestPrint(t *testing.T) {
	h := newHarness()
	h.run("SET name \"Ada\"\nSET n 2.0\nSET b true\nPRINT \"Hello,\" name unknown n b\nPRINT")
	h.expectOutput(t, "Hello, Ada unknown 2.0 True", "")
	h.expectCodes(t)
}

func TestPrintKeepsCommentInsideLiteral(t *testing.T) {
	h := newHarness()
	h.run("SET s \"hello // not a comment\" // real comment\nPRINT s")
	h.expectOutput(t, "hello // not a comment")
}

func TestInput(t *testing.T) {
	var labels []string
	answers := []string{"42\n", "hello\r\n"}
	h := newHarness(WithInputReader(func(label string) (string, error) {
		labels = append(labels, label)
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}))
	h.run("INPUT n\nINPUT s")
	if got := h.get(t, "n"); got != value.Int(42) {
		t.Errorf("expected 42, got %#v", got)
	}
	if got := h.get(t, "s"); got != value.Str("hello") {
		t.Errorf("expected hello, got %#v", got)
	}
	if !reflect.DeepEqual(labels, []string{"n", "s"}) {
		t.Errorf("expected prompts for n and s, got %v", labels)
	}
}

func TestInputCancelled(t *testing.T) {
	h := newHarness(WithInputReader(func(string) (string, error) {
		return "", ErrInputCancelled
	}))
	h.run("SET n 1\nINPUT n\nINPUT")
	h.expectCodes(t, diag.InputCancelled, diag.MissingArguments)
	if got := h.get(t, "n"); got != value.Int(1) {
		t.Errorf("cancelled INPUT must not mutate, got %#v", got)
	}
}

func TestInputWithoutReaderIsCancelled(t *testing.T) {
	h := newHarness()
	h.run("INPUT n")
	h.expectCodes(t, diag.InputCancelled)
}

func TestInputNumberWithSurroundingSpaces(t *testing.T) {
	answers := []string{" 5", "2.5 \n", "  padded  "}
	h := newHarness(WithInputReader(func(string) (string, error) {
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}))
	h.run("INPUT n\nADD n 1\nINPUT f\nINPUT s")
	h.expectCodes(t)
	if got := h.get(t, "n"); got != value.Int(6) {
		t.Errorf("expected n = 6, got %#v", got)
	}
	if got := h.get(t, "f"); got != value.Float(2.5) {
		t.Errorf("expected f = 2.5, got %#v", got)
	}
	if got := h.get(t, "s"); got != value.Str("  padded  ") {
		t.Errorf("expected text input kept as typed, got %#v", got)
	}
}

func TestArithmeticOverflowWidensToFloat(t *testing.T) {
	h := newHarness()
	h.run("SET x 9223372036854775807\nADD x 1\nPRINT x\nSET y 3037000500\nMUL y y")
	h.expectCodes(t)
	h.expectOutput(t, "9.223372036854776e+18")
	if got := h.get(t, "y"); got.Kind() != value.KindFloat {
		t.Errorf("expected overflowing MUL to widen to float, got %#v", got)
	}
}

func TestLogical(t *testing.T) {
	h := newHarness()
	h.run("SET a true\nSET b false\nSET x a\nXOR x b\nSET y a\nAND y b\nSET z b\nOR z TRUE")
	for name, want := range map[string]value.Value{
		"x": value.Bool(true),
		"y": value.Bool(false),
		"z": value.Bool(true),
	} {
		if got := h.get(t, name); got != want {
			t.Errorf("%s: expected %#v, got %#v", name, want, got)
		}
	}
	h.expectCodes(t)
}

func TestXorTruthTable(t *testing.T) {
	for _, tt := range []struct {
		a, b string
		want bool
	}{
		{"true", "true", false},
		{"true", "false", true},
		{"false", "true", true},
		{"false", "false", false},
	} {
		h := newHarness()
		h.run("SET p " + tt.a + "\nXOR p " + tt.b)
		if got := h.get(t, "p"); got != value.Bool(tt.want) {
			t.Errorf("%s XOR %s: expected %v, got %#v", tt.a, tt.b, tt.want, got)
		}
	}
}

func TestNotTwiceRestores(t *testing.T) {
	h := newHarness()
	h.run("SET f true\nNOT f")
	if got := h.get(t, "f"); got != value.Bool(false) {
		t.Errorf("expected false after NOT, got %#v", got)
	}
	h.run("NOT f")
	if got := h.get(t, "f"); got != value.Bool(true) {
		t.Errorf("expected true after second NOT, got %#v", got)
	}
}

func TestLogicalDiagnostics(t *testing.T) {
	h := newHarness()
	h.run("SET n 1\nNOT n\nNOT\nNOT n extra\nSET f true\nAND f maybe\nOR missing true\nAND f")
	h.expectCodes(t,
		diag.UndefinedVariable,
		diag.MissingArguments,
		diag.MissingArguments,
		diag.NonNumericOperand,
		diag.UndefinedVariable,
		diag.MissingArguments,
	)
	if got := h.get(t, "f"); got != value.Bool(true) {
		t.Errorf("expected f unchanged, got %#v", got)
	}
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness()
	h.run("frobnicate x\nSET x 1")
	h.expectCodes(t, diag.UnknownCommand)
	if msg := h.diags.Entries()[0].Message(); !strings.Contains(msg, "'FROBNICATE'") {
		t.Errorf("expected uppercased command in message, got %q", msg)
	}
	if got := h.get(t, "x"); got != value.Int(1) {
		t.Errorf("run must continue after a diagnostic, got %#v", got)
	}
}

func TestKeywordsAreCaseInsensitive(t *testing.T) {
	h := newHarness()
	h.run("set X 1\nSet x 2\nprint X x")
	h.expectOutput(t, "1 2")
}

func TestCommentsAndBlankLines(t *testing.T) {
	h := newHarness()
	h.run("// header comment\n\n   \nSET x 1 // trailing\n    // indented comment\nPRINT x")
	h.expectOutput(t, "1")
	h.expectCodes(t)
}

func TestExec(t *testing.T) {
	h := newHarness()
	h.Exec("SET x 3")
	h.Exec("ADD x 4")
	h.Exec("WHILE x > 0 DO")
	if got := h.get(t, "x"); got != value.Int(7) {
		t.Errorf("expected 7, got %#v", got)
	}
	h.expectCodes(t, diag.UnknownCommand)
}

func TestOutputWriterErrorDoesNotStopRun(t *testing.T) {
	h := newHarness(WithOutputWriter(func(string) error {
		return errors.New("closed")
	}))
	h.run("PRINT a\nSET x 1")
	if !h.Namespace().Has("x") {
		t.Error("expected run to continue")
	}
}

func TestRunReader(t *testing.T) {
	h := newHarness()
	if err := h.RunReader(strings.NewReader("SET x 2\r\nMUL x 21\r\nPRINT x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.expectOutput(t, "42")
}
