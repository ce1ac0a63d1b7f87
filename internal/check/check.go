// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package check finds structural problems in a pygen program without
// running it: unbalanced blocks, malformed headers and unknown commands.
package check

import (
	"fmt"
	"io"
	"strings"

	"nickandperla.net/pygen/internal/diag"
	"nickandperla.net/pygen/internal/eval"
	"nickandperla.net/pygen/internal/scanner"
	"nickandperla.net/pygen/internal/token"
	"nickandperla.net/pygen/internal/value"
)

// Problem is one finding. Code is empty for findings the interpreter has
// no diagnostic for.
type Problem struct {
	Line    int // 1-based
	Code    diag.Code
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("line %d: %s", p.Line, p.Message)
}

// Option configures a check.
type Option func(*checker)

// WithNestedBlocks checks against depth-counting block scanning. Without it,
// a block nested in a block of the same kind is reported, since the first
// closer would end the outer block.
func WithNestedBlocks(nested bool) Option {
	return func(c *checker) { c.nested = nested }
}

type open struct {
	kw     string
	line   int
	inElse bool
}

type checker struct {
	nested   bool
	stack    []open
	problems []Problem
}

// Reader checks a whole program.
func Reader(r io.Reader, opts ...Option) ([]Problem, error) {
	lines, err := eval.ReadLines(r)
	if err != nil {
		return nil, err
	}
	return Lines(lines, opts...), nil
}

// Lines checks a program split into lines.
func Lines(lines []string, opts ...Option) []Problem {
	c := &checker{}
	for _, opt := range opts {
		opt(c)
	}
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, token.CommentPrefix) {
			continue
		}
		parts := scanner.Tokenize(line)
		if len(parts) == 0 {
			continue
		}
		c.line(i+1, parts)
	}
	for i := len(c.stack) - 1; i >= 0; i-- {
		c.unclosed(c.stack[i])
	}
	return c.problems
}

func (c *checker) line(n int, parts []string) {
	kw := parts[0]
	switch {
	case kw == token.IF:
		if token.Index(parts, token.THEN) < 0 {
			c.report(n, diag.InvalidIf, nil)
			return
		}
		c.push(n, kw)
	case kw == token.ELIF:
		top, ok := c.top(token.IF)
		if !ok {
			c.stray(n, kw)
			return
		}
		if top.inElse {
			c.note(n, "ELIF after ELSE is tested before the ELSE body")
		}
		top.inElse = false
		if token.Index(parts, token.THEN) < 0 {
			c.report(n, diag.InvalidIf, nil)
		}
	case kw == token.ELSE:
		top, ok := c.top(token.IF)
		if !ok {
			c.stray(n, kw)
			return
		}
		if top.inElse {
			c.note(n, "second ELSE replaces the first")
		}
		top.inElse = true
	case kw == token.WHILE:
		if token.Index(parts, token.DO) < 0 {
			c.report(n, diag.InvalidWhile, nil)
			return
		}
		c.push(n, kw)
	case kw == token.FOR:
		if !c.forHeader(n, parts) {
			return
		}
		c.push(n, kw)
	case token.Opener(kw) != "":
		c.close(n, kw)
	case token.IsStatement(kw):
	default:
		c.report(n, diag.UnknownCommand, diag.Fields{"cmd": strings.ToUpper(kw)})
	}
}

// forHeader validates a FOR header the way the interpreter does.
func (c *checker) forHeader(n int, parts []string) bool {
	fromIdx := token.Index(parts, token.FROM)
	toIdx := token.Index(parts, token.TO)
	stepIdx := token.Index(parts, token.STEP)
	doIdx := token.Index(parts, token.DO)
	if fromIdx < 2 || toIdx < 0 || doIdx < 0 ||
		fromIdx+1 >= len(parts) || toIdx+1 >= len(parts) ||
		(stepIdx >= 0 && stepIdx+1 >= len(parts)) {
		c.report(n, diag.InvalidFor, nil)
		return false
	}
	bounds := []string{parts[fromIdx+1], parts[toIdx+1]}
	if stepIdx >= 0 {
		bounds = append(bounds, parts[stepIdx+1])
	}
	for _, b := range bounds {
		if !value.IsNumeric(value.Detect(b)) {
			c.report(n, diag.NonNumericFor, nil)
			return false
		}
	}
	if stepIdx >= 0 && value.IsZero(value.Detect(parts[stepIdx+1])) {
		c.note(n, "STEP 0 never runs the loop body")
	}
	return true
}

func (c *checker) push(n int, kw string) {
	if !c.nested {
		for _, o := range c.stack {
			if o.kw == kw {
				c.note(n, fmt.Sprintf("%s inside %s from line %d needs nested block mode", kw, kw, o.line))
				break
			}
		}
	}
	c.stack = append(c.stack, open{kw: kw, line: n})
}

// top returns the innermost open block if it is a kw block.
func (c *checker) top(kw string) (*open, bool) {
	if len(c.stack) == 0 || c.stack[len(c.stack)-1].kw != kw {
		return nil, false
	}
	return &c.stack[len(c.stack)-1], true
}

func (c *checker) close(n int, closer string) {
	opener := token.Opener(closer)
	for i := len(c.stack) - 1; i >= 0; i-- {
		if c.stack[i].kw != opener {
			continue
		}
		for j := len(c.stack) - 1; j > i; j-- {
			c.unclosed(c.stack[j])
		}
		c.stack = c.stack[:i]
		return
	}
	c.stray(n, closer)
}

func (c *checker) stray(n int, kw string) {
	c.report(n, diag.UnknownCommand, diag.Fields{"cmd": kw})
}

func (c *checker) unclosed(o open) {
	switch o.kw {
	case token.IF:
		c.report(o.line, diag.MissingEndIf, nil)
	case token.WHILE:
		c.report(o.line, diag.MissingEndWhile, nil)
	case token.FOR:
		c.report(o.line, diag.MissingEndFor, nil)
	}
}

func (c *checker) report(n int, code diag.Code, fields diag.Fields) {
	c.problems = append(c.problems, Problem{Line: n, Code: code, Message: diag.Message(code, fields)})
}

func (c *checker) note(n int, msg string) {
	c.problems = append(c.problems, Problem{Line: n, Message: msg})
}
