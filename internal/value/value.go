// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package value defines the pygen runtime value types.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"nickandperla.net/pygen/internal/token"
)

// Kind identifies the runtime type of a Value.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindString
)

// String returns the name used for a kind in diagnostics and storage.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	}
	return "unknown"
}

// ParseKind parses the output of Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "int":
		return KindInt, true
	case "float":
		return KindFloat, true
	case "bool":
		return KindBool, true
	case "string":
		return KindString, true
	}
	return 0, false
}

// Value is the interface all runtime values implement.
type Value interface {
	// Kind returns the runtime type.
	Kind() Kind
	// String renders the value as PRINT shows it.
	String() string
}

// Int is a 64-bit integer value.
type Int int64

// Float is a 64-bit floating point value.
type Float float64

// Bool is a boolean value.
type Bool bool

// Str is a string value.
type Str string

func (Int) Kind() Kind   { return KindInt }
func (Float) Kind() Kind { return KindFloat }
func (Bool) Kind() Kind  { return KindBool }
func (Str) Kind() Kind   { return KindString }

func (s Str) String() string { return string(s) }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// String renders the shortest representation that round-trips, keeping a
// trailing ".0" on integral values and switching to exponent form for very
// large or very small magnitudes.
func (f Float) String() string {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func (b Bool) String() string {
	if b {
		return "True"
	}
	return "False"
}

// Detect classifies a raw token: integer literal, float literal, quoted
// string (unquoted), boolean literal (case-insensitive), and finally the raw
// token itself as a string. Surrounding whitespace is ignored for numbers
// only, so typed input like " 5" is still an integer.
func Detect(raw string) Value {
	num := strings.TrimSpace(raw)
	if i, err := strconv.ParseInt(num, 10, 64); err == nil {
		return Int(i)
	}
	if f, ok := parseFloat(num); ok {
		return Float(f)
	}
	if strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) {
		if len(raw) < 2 {
			return Str("")
		}
		return Str(raw[1 : len(raw)-1])
	}
	if b, ok := ParseBool(raw); ok {
		return Bool(b)
	}
	return Str(raw)
}

// ParseBool recognizes true and false in any case.
func ParseBool(raw string) (bool, bool) {
	switch {
	case strings.EqualFold(raw, token.TRUE):
		return true, true
	case strings.EqualFold(raw, token.FALSE):
		return false, true
	}
	return false, false
}

// parseFloat accepts decimal float literals, including exponents and the
// inf/nan spellings, but not hexadecimal forms.
func parseFloat(raw string) (float64, bool) {
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "0x") || strings.Contains(raw, "_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsNumeric returns true for Int and Float values.
func IsNumeric(v Value) bool {
	if v == nil {
		return false
	}
	k := v.Kind()
	return k == KindInt || k == KindFloat
}

// AsFloat widens a numeric value to float64.
func AsFloat(v Value) float64 {
	switch n := v.(type) {
	case Int:
		return float64(n)
	case Float:
		return float64(n)
	}
	return 0
}

// IsZero returns true for numeric zero.
func IsZero(v Value) bool {
	switch n := v.(type) {
	case Int:
		return n == 0
	case Float:
		return n == 0
	}
	return false
}

// Encode returns the storage form of v.
func Encode(v Value) (kind string, text string) {
	if f, ok := v.(Float); ok {
		return KindFloat.String(), strconv.FormatFloat(float64(f), 'g', -1, 64)
	}
	if b, ok := v.(Bool); ok {
		return KindBool.String(), strconv.FormatBool(bool(b))
	}
	return v.Kind().String(), v.String()
}

// Decode reverses Encode.
func Decode(kind, text string) (Value, error) {
	k, ok := ParseKind(kind)
	if !ok {
		return nil, fmt.Errorf("value: unknown kind %q", kind)
	}
	switch k {
	case KindInt:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value: decode int %q: %w", text, err)
		}
		return Int(i), nil
	case KindFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("value: decode float %q: %w", text, err)
		}
		return Float(f), nil
	case KindBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("value: decode bool %q: %w", text, err)
		}
		return Bool(b), nil
	}
	return Str(text), nil
}
