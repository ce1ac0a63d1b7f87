// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package scanner splits pygen source lines into tokens.
package scanner

import (
	"strings"
	"unicode"

	"nickandperla.net/pygen/internal/token"
)

// Scanner tokenizes a single source line rune-by-rune.
type Scanner struct {
	src  []rune
	pos  int
	buf  strings.Builder
	done bool // set once a line comment has been reached
}

// New creates a new Scanner over one source line.
func New(line string) *Scanner {
	return &Scanner{src: []rune(line)}
}

// Tokenize returns all tokens of line. Keywords are uppercased, string
// literals keep their quotes and everything else keeps its original case.
// A blank or fully commented line yields an empty slice.
func Tokenize(line string) []string {
	s := New(line)
	tokens := []string{}
	for {
		tok, ok := s.Next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// Next returns the next token. ok is false at end of line.
func (s *Scanner) Next() (tok string, ok bool) {
	s.buf.Reset()

	for !s.done && s.pos < len(s.src) {
		r := s.src[s.pos]

		switch {
		case r == token.Quote:
			// A literal starts a new token even without preceding whitespace
			if s.buf.Len() > 0 {
				return s.flush()
			}
			return s.scanString(), true

		case unicode.IsSpace(r):
			s.pos++
			if s.buf.Len() > 0 {
				return s.flush()
			}

		case r == '/' && s.peek() == '/':
			s.done = true

		case isOperatorStart(r):
			op := s.scanOperator()
			if op == "" {
				s.buf.WriteRune(r)
				s.pos++
				continue
			}
			if s.buf.Len() > 0 {
				return s.flush()
			}
			s.pos += len(op)
			return op, true

		default:
			s.buf.WriteRune(r)
			s.pos++
		}
	}

	if s.buf.Len() > 0 {
		return s.flush()
	}
	return "", false
}

// flush returns the accumulated text as a normalized token.
func (s *Scanner) flush() (string, bool) {
	tok := token.Normalize(s.buf.String())
	s.buf.Reset()
	return tok, true
}

// scanString consumes a quoted literal including both delimiters. An
// unterminated literal runs to end of line and keeps only its opening quote.
func (s *Scanner) scanString() string {
	var lit strings.Builder
	lit.WriteRune(s.src[s.pos])
	s.pos++
	for s.pos < len(s.src) {
		r := s.src[s.pos]
		s.pos++
		lit.WriteRune(r)
		if r == token.Quote {
			break
		}
	}
	return lit.String()
}

// scanOperator returns the comparison operator starting at the current
// position, or "" if none does. Two-character operators win over < and >.
func (s *Scanner) scanOperator() string {
	if s.pos+1 < len(s.src) {
		two := string(s.src[s.pos : s.pos+2])
		if token.IsComparison(two) {
			return two
		}
	}
	switch r := s.src[s.pos]; r {
	case '<', '>':
		return string(r)
	}
	return ""
}

func (s *Scanner) peek() rune {
	if s.pos+1 < len(s.src) {
		return s.src[s.pos+1]
	}
	return 0
}

func isOperatorStart(r rune) bool {
	switch r {
	case '=', '!', '<', '>':
		return true
	}
	return false
}
