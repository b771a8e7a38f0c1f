// Completion: 100% - Lexer complete
package main

import (
	"math"
	"strconv"
)

// Token types for the expression language
type TokenType int

const (
	TOKEN_EOF     TokenType = iota
	TOKEN_INT               // maximal run of digits
	TOKEN_NAME              // letter followed by letters and digits
	TOKEN_CHAR              // any other single character, e.g. '+', '(', '*'
	TOKEN_ILLEGAL           // integer literal that does not fit in 64 bits
)

func (t TokenType) String() string {
	switch t {
	case TOKEN_EOF:
		return "EOF"
	case TOKEN_INT:
		return "INT"
	case TOKEN_NAME:
		return "NAME"
	case TOKEN_CHAR:
		return "CHAR"
	case TOKEN_ILLEGAL:
		return "ILLEGAL"
	default:
		return "unknown"
	}
}

// Token is one lexeme. Pos is the byte offset of its first character.
type Token struct {
	Type  TokenType
	Value int64 // TOKEN_INT
	Char  byte  // TOKEN_CHAR, and the slot of a TOKEN_NAME
	Text  string
	Pos   int
}

func (t Token) String() string {
	switch t.Type {
	case TOKEN_EOF:
		return "end of input"
	case TOKEN_INT, TOKEN_ILLEGAL:
		return "integer " + t.Text
	case TOKEN_NAME:
		return "name " + strconv.Quote(t.Text)
	default:
		return strconv.Quote(t.Text)
	}
}

// Lexer produces tokens on demand from a cursor into the source
type Lexer struct {
	src string
	pos int
	tok Token
}

// NewLexer creates a lexer positioned on the first token
func NewLexer(src string) *Lexer {
	l := &Lexer{src: src}
	l.Advance()
	return l
}

// Current returns the lookahead token
func (l *Lexer) Current() Token {
	return l.tok
}

// Remainder returns the source from the lookahead token on
func (l *Lexer) Remainder() string {
	return l.src[l.tok.Pos:]
}

// Advance scans the next token into the lookahead
func (l *Lexer) Advance() {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}

	start := l.pos
	if l.pos >= len(l.src) {
		l.tok = Token{Type: TOKEN_EOF, Pos: start}
		return
	}

	c := l.src[l.pos]
	switch {
	case isDigit(c):
		var v int64
		overflow := false
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			d := int64(l.src[l.pos] - '0')
			if v > (math.MaxInt64-d)/10 {
				overflow = true
			}
			v = 10*v + d
			l.pos++
		}
		l.tok = Token{Type: TOKEN_INT, Value: v, Text: l.src[start:l.pos], Pos: start}
		if overflow {
			l.tok.Type = TOKEN_ILLEGAL
			l.tok.Value = 0
		}
	case isLetter(c):
		for l.pos < len(l.src) && (isLetter(l.src[l.pos]) || isDigit(l.src[l.pos])) {
			l.pos++
		}
		l.tok = Token{Type: TOKEN_NAME, Char: c, Text: l.src[start:l.pos], Pos: start}
	default:
		l.pos++
		l.tok = Token{Type: TOKEN_CHAR, Char: c, Text: l.src[start:l.pos], Pos: start}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
