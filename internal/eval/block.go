// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"strings"

	"nickandperla.net/pygen/internal/diag"
	"nickandperla.net/pygen/internal/scanner"
	"nickandperla.net/pygen/internal/token"
	"nickandperla.net/pygen/internal/value"
)

// branch is one IF or ELIF arm.
type branch struct {
	cond  []string
	body  []string
	valid bool // false for an ELIF header without THEN
}

// execIf runs IF ... [ELIF ...]* [ELSE] ... ENDIF starting at lines[start]
// and returns the index of the first line after the construct.
func (e *Evaluator) execIf(lines []string, start int, header []string) int {
	thenIdx := token.Index(header, token.THEN)
	if thenIdx < 0 {
		e.report(diag.InvalidIf, nil)
		return start + 1
	}

	branches := []branch{{cond: header[1:thenIdx], valid: true}}
	var elseBody []string
	inElse := false
	depth := 0

	i := start + 1
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if skippable(line) {
			continue
		}
		parts := scanner.Tokenize(line)
		kw := first(parts)

		if depth == 0 {
			if kw == token.ENDIF {
				break
			}
			if kw == token.ELIF {
				b := branch{valid: true}
				if idx := token.Index(parts, token.THEN); idx < 0 {
					e.report(diag.InvalidIf, nil)
					b.valid = false
				} else {
					b.cond = parts[1:idx]
				}
				branches = append(branches, b)
				inElse = false
				continue
			}
			if kw == token.ELSE {
				elseBody = nil
				inElse = true
				continue
			}
		}
		depth = e.trackDepth(depth, kw, token.IF)

		if inElse {
			elseBody = append(elseBody, line)
		} else {
			last := &branches[len(branches)-1]
			last.body = append(last.body, line)
		}
	}
	if i >= len(lines) {
		e.report(diag.MissingEndIf, nil)
		return i
	}

	e.log.Debug().Str("construct", token.IF).Int("line", start+1).
		Int("branches", len(branches)).Bool("else", elseBody != nil).Msg("enter")

	if e.evalCondition(branches[0].cond) {
		e.runBody(branches[0].body)
		return i + 1
	}
	for _, b := range branches[1:] {
		if b.valid && e.evalCondition(b.cond) {
			e.runBody(b.body)
			return i + 1
		}
	}
	if len(elseBody) > 0 {
		e.runBody(elseBody)
	}
	return i + 1
}

// execWhile runs WHILE <condition> DO ... ENDWHILE. The condition is
// re-evaluated against the current variables before every iteration and
// there is no iteration limit.
func (e *Evaluator) execWhile(lines []string, start int, header []string) int {
	doIdx := token.Index(header, token.DO)
	if doIdx < 0 {
		e.report(diag.InvalidWhile, nil)
		return start + 1
	}
	cond := header[1:doIdx]

	body, end, ok := e.collect(lines, start, token.WHILE)
	if !ok {
		e.report(diag.MissingEndWhile, nil)
		return end
	}

	e.log.Debug().Str("construct", token.WHILE).Int("line", start+1).Int("body", len(body)).Msg("enter")
	iterations := 0
	for e.evalCondition(cond) {
		e.runBody(body)
		iterations++
	}
	e.log.Debug().Str("construct", token.WHILE).Int("iterations", iterations).Msg("exit")
	return end + 1
}

// execFor runs FOR var FROM start TO end [STEP step] DO ... ENDFOR. The
// bounds are literals; the body runs while (step > 0 and var <= end) or
// (step < 0 and var >= end), adding step to var after each pass.
func (e *Evaluator) execFor(lines []string, start int, header []string) int {
	fromIdx := token.Index(header, token.FROM)
	toIdx := token.Index(header, token.TO)
	stepIdx := token.Index(header, token.STEP)
	doIdx := token.Index(header, token.DO)
	if fromIdx < 2 || toIdx < 0 || doIdx < 0 ||
		fromIdx+1 >= len(header) || toIdx+1 >= len(header) ||
		(stepIdx >= 0 && stepIdx+1 >= len(header)) {
		e.report(diag.InvalidFor, nil)
		return start + 1
	}
	name := header[1]

	from := value.Detect(header[fromIdx+1])
	to := value.Detect(header[toIdx+1])
	var step value.Value = value.Int(1)
	if stepIdx >= 0 {
		step = value.Detect(header[stepIdx+1])
	}
	if !value.IsNumeric(from) || !value.IsNumeric(to) || !value.IsNumeric(step) {
		e.report(diag.NonNumericFor, nil)
		return start + 1
	}

	body, end, ok := e.collect(lines, start, token.FOR)
	if !ok {
		e.report(diag.MissingEndFor, nil)
		return end
	}

	e.log.Debug().Str("construct", token.FOR).Int("line", start+1).Str("var", name).
		Stringer("from", from).Stringer("to", to).Stringer("step", step).Msg("enter")

	e.namespace.Set(name, from)
	for {
		current, ok := e.namespace.Get(name)
		if !ok || !value.IsNumeric(current) {
			e.report(diag.UndefinedVariable, diag.Fields{"var": name})
			break
		}
		if !inRange(current, to, step) {
			break
		}

		e.runBody(body)

		current, ok = e.namespace.Get(name)
		if !ok || !value.IsNumeric(current) {
			e.report(diag.UndefinedVariable, diag.Fields{"var": name})
			break
		}
		next, err := value.Arith(token.ADD, current, step)
		if err != nil {
			e.reportArith(err, token.ADD)
			break
		}
		e.namespace.Set(name, next)
	}
	return end + 1
}

// inRange reports whether the counter c has not passed limit in the
// direction of step. All-Int loops compare exactly; anything else compares
// as float64. A zero step is never in range.
func inRange(c, limit, step value.Value) bool {
	ci, cok := c.(value.Int)
	li, lok := limit.(value.Int)
	si, sok := step.(value.Int)
	if cok && lok && sok {
		return (si > 0 && ci <= li) || (si < 0 && ci >= li)
	}
	x, end, d := value.AsFloat(c), value.AsFloat(limit), value.AsFloat(step)
	return (d > 0 && x <= end) || (d < 0 && x >= end)
}

// collect gathers the body of a WHILE or FOR construct opened at
// lines[start]. It returns the body, the index of the closing line (or
// len(lines) when none was found) and whether the closer was found.
func (e *Evaluator) collect(lines []string, start int, opener string) ([]string, int, bool) {
	closer := token.Closer(opener)
	var body []string
	depth := 0

	i := start + 1
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if skippable(line) {
			continue
		}
		kw := first(scanner.Tokenize(line))
		if depth == 0 && kw == closer {
			return body, i, true
		}
		depth = e.trackDepth(depth, kw, opener)
		body = append(body, line)
	}
	return body, i, false
}

// trackDepth updates the nesting depth for kw when nested scanning is on.
// With it off the depth stays zero and the first closer ends the body.
func (e *Evaluator) trackDepth(depth int, kw, opener string) int {
	if !e.nested {
		return depth
	}
	switch kw {
	case opener:
		return depth + 1
	case token.Closer(opener):
		return depth - 1
	}
	return depth
}

// runBody interprets an extracted block against the shared variable store.
func (e *Evaluator) runBody(body []string) {
	e.depth++
	defer func() { e.depth-- }()
	e.Run(body)
}

func first(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}
