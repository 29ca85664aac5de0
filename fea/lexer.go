package fea

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Pos is a position in feature text.
type Pos struct {
	Line, Col int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// SyntaxError is an error in feature text.
type SyntaxError struct {
	Pos Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("feature syntax error at %s: %s", e.Pos, e.Msg)
}

type tokenType int8

const (
	tokEOF tokenType = iota
	tokIdent
	tokClass // @name
	tokNumber
	tokPunct // one of []{};=<>',
)

type token struct {
	typ tokenType
	val string
	pos Pos
}

func (t token) String() string {
	switch t.typ {
	case tokEOF:
		return "end of input"
	case tokClass:
		return "@" + t.val
	}
	return fmt.Sprintf("%q", t.val)
}

type lexer struct {
	src       string
	at        int
	line, col int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) peekByte() byte {
	if l.at >= len(l.src) {
		return 0
	}
	return l.src[l.at]
}

func (l *lexer) advance() {
	r, w := utf8.DecodeRuneInString(l.src[l.at:])
	l.at += w
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *lexer) skipSpaceAndComments() {
	for l.at < len(l.src) {
		switch c := l.peekByte(); {
		case c == '#':
			for l.at < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		default:
			return
		}
	}
}

func isNameByte(c byte, first bool) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', c == '_', c == '.':
		return true
	case '0' <= c && c <= '9', c == '-', c == '+', c == '*', c == '^', c == '|', c == '~':
		return !first
	}
	return false
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// next returns the next token, or a *SyntaxError.
func (l *lexer) next() (token, error) {
	l.skipSpaceAndComments()
	pos := Pos{l.line, l.col}
	if l.at >= len(l.src) {
		return token{typ: tokEOF, pos: pos}, nil
	}
	start := l.at
	c := l.peekByte()
	switch {
	case strings.IndexByte("[]{};=<>',", c) >= 0:
		l.advance()
		return token{typ: tokPunct, val: string(c), pos: pos}, nil
	case isDigit(c) || (c == '-' && l.at+1 < len(l.src) && isDigit(l.src[l.at+1])):
		l.advance()
		for isDigit(l.peekByte()) {
			l.advance()
		}
		return token{typ: tokNumber, val: l.src[start:l.at], pos: pos}, nil
	case c == '@':
		l.advance()
		nameStart := l.at
		for isNameByte(l.peekByte(), l.at == nameStart) {
			l.advance()
		}
		if l.at == nameStart {
			return token{}, &SyntaxError{Pos: pos, Msg: "expected class name after '@'"}
		}
		return token{typ: tokClass, val: l.src[nameStart:l.at], pos: pos}, nil
	case c == '\\':
		l.advance()
		nameStart := l.at
		for isNameByte(l.peekByte(), false) {
			l.advance()
		}
		if l.at == nameStart {
			return token{}, &SyntaxError{Pos: pos, Msg: "expected glyph name after '\\'"}
		}
		return token{typ: tokIdent, val: l.src[nameStart:l.at], pos: pos}, nil
	case isNameByte(c, true):
		for isNameByte(l.peekByte(), l.at == start) {
			l.advance()
		}
		return token{typ: tokIdent, val: l.src[start:l.at], pos: pos}, nil
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.at:])
	return token{}, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", r)}
}
