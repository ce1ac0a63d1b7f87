// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package value

import (
	"errors"
	"math"
	"strings"

	"nickandperla.net/pygen/internal/token"
)

var (
	// ErrNotNumeric is returned when an arithmetic operand is not Int or Float.
	ErrNotNumeric = errors.New("non-numeric operand")
	// ErrDivisionByZero is returned by DIV and MOD with a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrUnknownOperator is returned for an unrecognized operator name.
	ErrUnknownOperator = errors.New("unknown operator")
	// ErrTypeMismatch is returned when comparing values of different kinds.
	ErrTypeMismatch = errors.New("type mismatch")
)

// Arith applies ADD, SUB, MUL, DIV or MOD to two numeric values.
// Int op Int stays Int except DIV, which always yields Float.
// Any Float operand widens the result to Float, and so does an Int result
// that would overflow int64. MOD is floored: the result takes the sign of
// the divisor.
func Arith(op string, a, b Value) (Value, error) {
	if !IsNumeric(a) || !IsNumeric(b) {
		return nil, ErrNotNumeric
	}
	switch op {
	case token.ADD, token.SUB, token.MUL, token.DIV, token.MOD:
	default:
		return nil, ErrUnknownOperator
	}
	if (op == token.DIV || op == token.MOD) && IsZero(b) {
		return nil, ErrDivisionByZero
	}

	x, xok := a.(Int)
	y, yok := b.(Int)
	if xok && yok && op != token.DIV {
		switch op {
		case token.ADD:
			if s := x + y; (y > 0) == (s > x) || y == 0 {
				return s, nil
			}
		case token.SUB:
			if d := x - y; (y > 0) == (d < x) || y == 0 {
				return d, nil
			}
		case token.MUL:
			if p, ok := mulInt(x, y); ok {
				return p, nil
			}
		case token.MOD:
			r := x % y
			if r != 0 && (r < 0) != (y < 0) {
				r += y
			}
			return r, nil
		}
	}

	fx, fy := AsFloat(a), AsFloat(b)
	switch op {
	case token.ADD:
		return Float(fx + fy), nil
	case token.SUB:
		return Float(fx - fy), nil
	case token.MUL:
		return Float(fx * fy), nil
	case token.DIV:
		return Float(fx / fy), nil
	}
	r := math.Mod(fx, fy)
	if r != 0 && (r < 0) != (fy < 0) {
		r += fy
	}
	return Float(r), nil
}

// mulInt multiplies x and y, reporting false when the product overflows.
func mulInt(x, y Int) (Int, bool) {
	if x == 0 || y == 0 {
		return 0, true
	}
	if (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
		return 0, false
	}
	p := x * y
	return p, p/y == x
}

// Compare applies a comparison operator to two values of the same kind.
// Booleans order false before true; strings order bytewise.
func Compare(op string, a, b Value) (bool, error) {
	if !token.IsComparison(op) {
		return false, ErrUnknownOperator
	}
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return false, ErrTypeMismatch
	}

	var c int
	switch x := a.(type) {
	case Int:
		y := b.(Int)
		c = cmp3(x < y, x > y)
	case Float:
		y := b.(Float)
		if math.IsNaN(float64(x)) || math.IsNaN(float64(y)) {
			// NaN is unordered: only != holds
			return op == token.NE, nil
		}
		c = cmp3(x < y, x > y)
	case Bool:
		y := b.(Bool)
		c = cmp3(!bool(x) && bool(y), bool(x) && !bool(y))
	case Str:
		c = strings.Compare(string(x), string(b.(Str)))
	}

	switch op {
	case token.EQ:
		return c == 0, nil
	case token.NE:
		return c != 0, nil
	case token.LT:
		return c < 0, nil
	case token.GT:
		return c > 0, nil
	case token.LE:
		return c <= 0, nil
	}
	return c >= 0, nil
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}
