// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"nickandperla.net/pygen/internal/diag"
	"nickandperla.net/pygen/internal/scanner"
	"nickandperla.net/pygen/internal/token"
	"nickandperla.net/pygen/internal/value"
)

// EvaluateCondition tokenizes and evaluates a full condition.
func (e *Evaluator) EvaluateCondition(text string) bool {
	return e.evalCondition(scanner.Tokenize(text))
}

// evalCondition splits tokens into comparisons separated by AND/OR and folds
// them strictly left to right: "a OR b AND c" is "(a OR b) AND c". Every
// comparison is evaluated, so each one reports its own diagnostics.
func (e *Evaluator) evalCondition(tokens []string) bool {
	if len(tokens) == 0 {
		e.report(diag.InvalidCondition, nil)
		return false
	}

	var groups [][]string
	var ops []string
	var current []string
	for _, tok := range tokens {
		if tok == token.AND || tok == token.OR {
			if len(current) > 0 {
				groups = append(groups, current)
			}
			ops = append(ops, tok)
			current = nil
			continue
		}
		current = append(current, tok)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	// A dangling or doubled AND/OR leaves an operator without an operand
	if len(groups) == 0 || len(groups) != len(ops)+1 {
		e.report(diag.InvalidCondition, nil)
		return false
	}

	result := e.EvaluateComparison(groups[0])
	for i, op := range ops {
		next := e.EvaluateComparison(groups[i+1])
		switch op {
		case token.AND:
			result = result && next
		case token.OR:
			result = result || next
		}
	}
	e.log.Trace().Strs("condition", tokens).Bool("result", result).Msg("condition")
	return result
}

// EvaluateComparison evaluates "[NOT] left OP right". Operands resolve as
// variables first, then as literals, and must have the same kind.
func (e *Evaluator) EvaluateComparison(tokens []string) bool {
	if len(tokens) == 0 {
		e.report(diag.InvalidExpression, nil)
		return false
	}
	negate := false
	if tokens[0] == token.NOT {
		negate = true
		tokens = tokens[1:]
	}
	if len(tokens) != 3 {
		e.report(diag.InvalidExpression, nil)
		return false
	}

	left, op, right := tokens[0], tokens[1], tokens[2]
	a, b := e.resolve(left), e.resolve(right)
	if a.Kind() != b.Kind() {
		e.report(diag.TypeMismatch, diag.Fields{
			"left":  a.Kind().String(),
			"right": b.Kind().String(),
		})
		return false
	}

	result, err := value.Compare(op, a, b)
	if err != nil {
		e.report(diag.InvalidComparison, diag.Fields{"op": op})
		return false
	}
	if negate {
		return !result
	}
	return result
}
