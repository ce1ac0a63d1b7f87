package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeProgram(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	clean := writeProgram(t, dir, "clean.pyg", "SET i 0\nWHILE i < 2 DO\nADD i 1\nENDWHILE\n")
	broken := writeProgram(t, dir, "broken.pyg", "IF i == 1 THEN\nPRINT i\nfoo\n")

	var stdout, stderr bytes.Buffer
	if code := run([]string{clean}, nil, &stdout, &stderr); code != 0 {
		t.Errorf("expected exit 0 for a clean program, got %d: %s", code, stdout.String())
	}

	stdout.Reset()
	code := run([]string{clean, broken}, nil, &stdout, &stderr)
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	want := broken + ":1: E015 Syntax Error: Missing ENDIF for IF statement.\n" +
		broken + ":3: E001 Syntax Error: Command 'FOO' is unknown.\n"
	if got := stdout.String(); got != want {
		t.Errorf("expected\n%s\ngot\n%s", want, got)
	}
}

func TestCheckStdin(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	code := run(nil, strings.NewReader("ENDFOR\n"), &stdout, &stderr)
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if !strings.HasPrefix(stdout.String(), "<stdin>:1: E001 ") {
		t.Errorf("unexpected output %q", stdout.String())
	}
}

func TestCheckNestedFlag(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	src := writeProgram(t, dir, "nested.pyg", "IF a == 1 THEN\nIF b == 1 THEN\nPRINT x\nENDIF\nENDIF\n")

	var stdout, stderr bytes.Buffer
	if code := run([]string{src}, nil, &stdout, &stderr); code != 1 {
		t.Errorf("expected the nesting note without -nested, got exit %d", code)
	}
	if !strings.Contains(stdout.String(), src+":2: ") {
		t.Errorf("expected a note on line 2, got %q", stdout.String())
	}

	stdout.Reset()
	if code := run([]string{"-nested", src}, nil, &stdout, &stderr); code != 0 {
		t.Errorf("expected exit 0 with -nested, got %d: %s", code, stdout.String())
	}
}

func TestCheckErrors(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	var stdout, stderr bytes.Buffer
	if code := run([]string{filepath.Join(dir, "missing.pyg")}, nil, &stdout, &stderr); code != 2 {
		t.Errorf("expected exit 2 for a missing file, got %d", code)
	}
	if code := run([]string{"-bogus"}, nil, &stdout, &stderr); code != 2 {
		t.Errorf("expected exit 2 for an unknown flag, got %d", code)
	}
}
