// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"errors"
	"strings"

	"nickandperla.net/pygen/internal/diag"
	"nickandperla.net/pygen/internal/token"
	"nickandperla.net/pygen/internal/value"
)

// execute dispatches a tokenized single-line statement.
func (e *Evaluator) execute(parts []string) {
	cmd := parts[0]
	e.log.Trace().Str("stmt", cmd).Strs("args", parts[1:]).Int("depth", e.depth).Msg("exec")

	switch {
	case cmd == token.SET:
		e.execSet(parts)
	case cmd == token.INPUT:
		e.execInput(parts)
	case token.IsArithmetic(cmd):
		e.execArithmetic(cmd, parts)
	case cmd == token.CLC:
		e.execCLC(parts)
	case cmd == token.PRINT:
		e.execPrint(parts)
	case token.IsLogical(cmd):
		e.execLogical(cmd, parts)
	default:
		e.report(diag.UnknownCommand, diag.Fields{"cmd": strings.ToUpper(cmd)})
	}
}

// execSet binds a variable: SET name value. A bound name on the right is
// copied, anything else is a literal.
func (e *Evaluator) execSet(parts []string) {
	if len(parts) < 3 {
		e.report(diag.MissingArguments, diag.Fields{"cmd": token.SET})
		return
	}
	e.namespace.Set(parts[1], e.resolve(parts[2]))
}

// execInput reads a value for INPUT name from the input reader.
func (e *Evaluator) execInput(parts []string) {
	if len(parts) < 2 {
		e.report(diag.MissingArguments, diag.Fields{"cmd": token.INPUT})
		return
	}
	name := parts[1]
	if e.inputReader == nil {
		e.report(diag.InputCancelled, diag.Fields{"var": name})
		return
	}
	text, err := e.inputReader(name)
	if err != nil {
		e.log.Debug().Err(err).Str("var", name).Msg("input cancelled")
		e.report(diag.InputCancelled, diag.Fields{"var": name})
		return
	}
	e.namespace.Set(name, value.Detect(strings.TrimRight(text, "\r\n")))
}

// execArithmetic updates a numeric variable in place: ADD var value.
func (e *Evaluator) execArithmetic(cmd string, parts []string) {
	if len(parts) < 3 {
		e.report(diag.MissingArguments, diag.Fields{"cmd": cmd})
		return
	}
	name, operand := parts[1], parts[2]

	current, ok := e.namespace.Get(name)
	if !ok || !value.IsNumeric(current) {
		e.report(diag.UndefinedVariable, diag.Fields{"var": name})
		return
	}
	v := e.resolve(operand)
	if !value.IsNumeric(v) {
		e.report(diag.NonNumericOperand, diag.Fields{"cmd": cmd, "val": v.String()})
		return
	}

	result, err := value.Arith(cmd, current, v)
	if err != nil {
		e.reportArith(err, cmd)
		return
	}
	e.namespace.Set(name, result)
}

// execCLC stores the result of left OP right in target. Both operands
// must be bound numeric variables.
func (e *Evaluator) execCLC(parts []string) {
	if len(parts) != 5 {
		e.report(diag.InvalidCLC, nil)
		return
	}
	target, left, op, right := parts[1], parts[2], parts[3], parts[4]

	a, aok := e.namespace.Get(left)
	b, bok := e.namespace.Get(right)
	if !aok {
		e.report(diag.UndefinedInCLC, diag.Fields{"var": left})
	}
	if !bok {
		e.report(diag.UndefinedInCLC, diag.Fields{"var": right})
	}
	if !aok || !bok {
		return
	}
	if !value.IsNumeric(a) || !value.IsNumeric(b) {
		e.report(diag.NonNumericInCLC, nil)
		return
	}
	if !token.IsArithmetic(op) {
		e.report(diag.UnknownOperator, diag.Fields{"op": op})
		return
	}

	result, err := value.Arith(op, a, b)
	if err != nil {
		e.reportArith(err, op)
		return
	}
	e.namespace.Set(target, result)
}

// execPrint writes its arguments joined by spaces. String literals are
// unquoted, bound names print their value, other tokens print as written.
func (e *Evaluator) execPrint(parts []string) {
	out := make([]string, 0, len(parts)-1)
	for _, tok := range parts[1:] {
		switch {
		case token.IsStringLiteral(tok):
			out = append(out, token.Unquote(tok))
		case e.namespace.Has(tok):
			v, _ := e.namespace.Get(tok)
			out = append(out, v.String())
		default:
			out = append(out, tok)
		}
	}
	if e.outputWriter == nil {
		return
	}
	if err := e.outputWriter(strings.Join(out, " ")); err != nil {
		e.log.Warn().Err(err).Msg("write output")
	}
}

// execLogical handles NOT var and AND/OR/XOR var value on boolean variables.
func (e *Evaluator) execLogical(cmd string, parts []string) {
	if cmd == token.NOT {
		if len(parts) != 2 {
			e.report(diag.MissingArguments, diag.Fields{"cmd": cmd})
			return
		}
		current, ok := e.boolVar(parts[1])
		if !ok {
			return
		}
		e.namespace.Set(parts[1], !current)
		return
	}

	if len(parts) < 3 {
		e.report(diag.MissingArguments, diag.Fields{"cmd": cmd})
		return
	}
	name, operand := parts[1], parts[2]
	current, ok := e.boolVar(name)
	if !ok {
		return
	}

	var other bool
	if v, bound := e.namespace.Get(operand); bound && v.Kind() == value.KindBool {
		other = bool(v.(value.Bool))
	} else if b, lit := value.ParseBool(operand); lit {
		other = b
	} else {
		e.report(diag.NonNumericOperand, diag.Fields{"cmd": cmd, "val": operand})
		return
	}

	var result bool
	switch cmd {
	case token.AND:
		result = bool(current) && other
	case token.OR:
		result = bool(current) || other
	case token.XOR:
		result = (bool(current) && !other) || (!bool(current) && other)
	}
	e.namespace.Set(name, value.Bool(result))
}

// boolVar returns the boolean bound to name, reporting when there is none.
func (e *Evaluator) boolVar(name string) (value.Bool, bool) {
	v, ok := e.namespace.Get(name)
	if !ok || v.Kind() != value.KindBool {
		e.report(diag.UndefinedVariable, diag.Fields{"var": name})
		return false, false
	}
	return v.(value.Bool), true
}

func (e *Evaluator) reportArith(err error, op string) {
	switch {
	case errors.Is(err, value.ErrDivisionByZero):
		e.report(diag.DivisionByZero, nil)
	case errors.Is(err, value.ErrUnknownOperator):
		e.report(diag.UnknownOperator, diag.Fields{"op": op})
	default:
		e.report(diag.NonNumericInCLC, nil)
	}
}
