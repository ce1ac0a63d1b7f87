// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines pygen keywords, comparison operators and statement families.
package token

import "strings"

// Keywords recognized by the scanner. Scanned tokens whose uppercase form is
// one of these are normalized to uppercase.
const (
	SET      = "SET"
	INPUT    = "INPUT"
	PRINT    = "PRINT"
	ADD      = "ADD"
	SUB      = "SUB"
	MUL      = "MUL"
	DIV      = "DIV"
	MOD      = "MOD"
	CLC      = "CLC"
	IF       = "IF"
	THEN     = "THEN"
	ELIF     = "ELIF"
	ELSE     = "ELSE"
	ENDIF    = "ENDIF"
	WHILE    = "WHILE"
	DO       = "DO"
	ENDWHILE = "ENDWHILE"
	FOR      = "FOR"
	FROM     = "FROM"
	TO       = "TO"
	STEP     = "STEP"
	ENDFOR   = "ENDFOR"
	AND      = "AND"
	OR       = "OR"
	NOT      = "NOT"
	XOR      = "XOR"
	TRUE     = "TRUE"
	FALSE    = "FALSE"
)

var keywords = map[string]bool{
	SET: true, INPUT: true, PRINT: true,
	ADD: true, SUB: true, MUL: true, DIV: true, MOD: true,
	CLC: true,
	IF: true, THEN: true, ELIF: true, ELSE: true, ENDIF: true,
	WHILE: true, DO: true, ENDWHILE: true,
	FOR: true, FROM: true, TO: true, STEP: true, ENDFOR: true,
	AND: true, OR: true, NOT: true, XOR: true,
	TRUE: true, FALSE: true,
}

// Normalize returns the uppercase form of s if it is a keyword in any case,
// and s unchanged otherwise.
func Normalize(s string) string {
	upper := strings.ToUpper(s)
	if keywords[upper] {
		return upper
	}
	return s
}

// Comparison operators.
const (
	EQ = "=="
	NE = "!="
	LT = "<"
	GT = ">"
	LE = "<="
	GE = ">="
)

// IsComparison returns true if s is a comparison operator.
func IsComparison(s string) bool {
	switch s {
	case EQ, NE, LT, GT, LE, GE:
		return true
	}
	return false
}

// Quote delimits string literals.
const Quote = '"'

// CommentPrefix starts a line comment outside string literals.
const CommentPrefix = "//"

// IsArithmetic returns true for the destructive arithmetic statements.
func IsArithmetic(cmd string) bool {
	switch cmd {
	case ADD, SUB, MUL, DIV, MOD:
		return true
	}
	return false
}

// IsLogical returns true for the boolean mutation statements.
func IsLogical(cmd string) bool {
	switch cmd {
	case AND, OR, NOT, XOR:
		return true
	}
	return false
}

// IsStatement returns true if cmd starts a single-line statement.
func IsStatement(cmd string) bool {
	switch cmd {
	case SET, INPUT, CLC, PRINT:
		return true
	}
	return IsArithmetic(cmd) || IsLogical(cmd)
}

// Opens returns true if cmd opens a multi-line construct.
func Opens(cmd string) bool {
	switch cmd {
	case IF, WHILE, FOR:
		return true
	}
	return false
}

// Closer returns the keyword terminating the construct opened by cmd,
// or "" if cmd does not open a construct.
func Closer(cmd string) string {
	switch cmd {
	case IF:
		return ENDIF
	case WHILE:
		return ENDWHILE
	case FOR:
		return ENDFOR
	}
	return ""
}

// Opener returns the keyword opening the construct closed by cmd,
// or "" if cmd is not a closing keyword.
func Opener(cmd string) string {
	switch cmd {
	case ENDIF:
		return IF
	case ENDWHILE:
		return WHILE
	case ENDFOR:
		return FOR
	}
	return ""
}

// Index returns the position of the first token equal to kw, or -1.
func Index(tokens []string, kw string) int {
	for i, t := range tokens {
		if t == kw {
			return i
		}
	}
	return -1
}

// IsStringLiteral returns true if tok is a double-quoted literal.
func IsStringLiteral(tok string) bool {
	return len(tok) >= 2 && tok[0] == Quote && tok[len(tok)-1] == Quote
}

// Unquote strips the surrounding quotes of a string literal.
func Unquote(tok string) string {
	if IsStringLiteral(tok) {
		return tok[1 : len(tok)-1]
	}
	return tok
}
