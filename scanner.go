// scanner.go: source text → token stream.
//
// The scanner operates on raw bytes (Lox source is ASCII-oriented; string
// literals pass non-ASCII bytes through untouched). Every token records the
// 1-based line/column of its first character, which later becomes the
// DebugInfo attached to AST nodes and ultimately the location reported by
// runtime errors.
package rlox

import (
	"fmt"
	"strconv"
)

// SyntaxError is reported for malformed lexemes (unterminated strings, stray
// characters, bad numeric literals). Line/Col are 1-based.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("SYNTAX ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Scanner scans a Lox source string into tokens.
type Scanner struct {
	src    string
	start  int // start index of current token
	cur    int // current index
	line   int // 1-based
	col    int // 1-based column of src[cur]
	tokens []Token

	// position of the current token's first character
	tokStartLine int
	tokStartCol  int
}

// NewScanner creates a new scanner for the given source.
func NewScanner(src string) *Scanner {
	return &Scanner{
		src:  src,
		line: 1,
		col:  1,
	}
}

// ScanTokens is the convenience entry point: scan all of src, returning the
// token stream terminated by an EOF token.
func ScanTokens(src string) ([]Token, error) {
	return NewScanner(src).Scan()
}

func (s *Scanner) isAtEnd() bool { return s.cur >= len(s.src) }

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.src[s.cur]
}

func (s *Scanner) peekNext() byte {
	if s.cur+1 >= len(s.src) {
		return 0
	}
	return s.src[s.cur+1]
}

func (s *Scanner) advance() byte {
	ch := s.src[s.cur]
	s.cur++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.src[s.cur] != expected {
		return false
	}
	s.advance()
	return true
}

func (s *Scanner) addToken(tt TokenType, lit interface{}) {
	s.tokens = append(s.tokens, Token{
		Type:    tt,
		Lexeme:  s.src[s.start:s.cur],
		Literal: lit,
		Line:    s.tokStartLine,
		Col:     s.tokStartCol,
	})
}

func (s *Scanner) err(msg string) error {
	return &SyntaxError{Line: s.tokStartLine, Col: s.tokStartCol, Msg: msg}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

func (s *Scanner) scanString() error {
	for !s.isAtEnd() && s.peek() != '"' {
		s.advance()
	}
	if s.isAtEnd() {
		return s.err("unterminated string")
	}
	s.advance() // closing quote
	value := s.src[s.start+1 : s.cur-1]
	s.addToken(STRING, value)
	return nil
}

func (s *Scanner) scanNumber() error {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	n, err := strconv.ParseFloat(s.src[s.start:s.cur], 64)
	if err != nil {
		return s.err(fmt.Sprintf("invalid number literal %q", s.src[s.start:s.cur]))
	}
	s.addToken(NUMBER, n)
	return nil
}

func (s *Scanner) scanIdentifier() {
	for isAlphaNum(s.peek()) {
		s.advance()
	}
	name := s.src[s.start:s.cur]
	if kw, ok := keywords[name]; ok {
		s.addToken(kw, nil)
	} else {
		s.addToken(IDENTIFIER, nil)
	}
}

func (s *Scanner) scanToken() error {
	ch := s.advance()
	switch ch {
	case '(':
		s.addToken(LEFT_PAREN, nil)
	case ')':
		s.addToken(RIGHT_PAREN, nil)
	case '{':
		s.addToken(LEFT_BRACE, nil)
	case '}':
		s.addToken(RIGHT_BRACE, nil)
	case ',':
		s.addToken(COMMA, nil)
	case '.':
		s.addToken(DOT, nil)
	case '-':
		s.addToken(MINUS, nil)
	case '+':
		s.addToken(PLUS, nil)
	case ';':
		s.addToken(SEMICOLON, nil)
	case '*':
		s.addToken(STAR, nil)
	case '!':
		if s.match('=') {
			s.addToken(BANG_EQUAL, nil)
		} else {
			s.addToken(BANG, nil)
		}
	case '=':
		if s.match('=') {
			s.addToken(EQUAL_EQUAL, nil)
		} else {
			s.addToken(EQUAL, nil)
		}
	case '<':
		if s.match('=') {
			s.addToken(LESS_EQUAL, nil)
		} else {
			s.addToken(LESS, nil)
		}
	case '>':
		if s.match('=') {
			s.addToken(GREATER_EQUAL, nil)
		} else {
			s.addToken(GREATER, nil)
		}
	case '/':
		if s.match('/') {
			for !s.isAtEnd() && s.peek() != '\n' {
				s.advance()
			}
		} else {
			s.addToken(SLASH, nil)
		}
	case '"':
		return s.scanString()
	default:
		switch {
		case isDigit(ch):
			return s.scanNumber()
		case isAlpha(ch):
			s.scanIdentifier()
		default:
			return s.err(fmt.Sprintf("unexpected character %q", string(ch)))
		}
	}
	return nil
}

// Scan tokenizes the whole source. On the first lexical error it stops and
// returns a *SyntaxError; otherwise the returned stream always ends with EOF.
func (s *Scanner) Scan() ([]Token, error) {
	for !s.isAtEnd() {
		s.skipWhitespace()
		if s.isAtEnd() {
			break
		}
		s.start = s.cur
		s.tokStartLine = s.line
		s.tokStartCol = s.col
		if err := s.scanToken(); err != nil {
			return nil, err
		}
	}
	s.tokens = append(s.tokens, Token{Type: EOF, Lexeme: "", Line: s.line, Col: s.col})
	return s.tokens, nil
}

func (s *Scanner) skipWhitespace() {
	for !s.isAtEnd() {
		switch s.peek() {
		case ' ', '\r', '\n', '\t':
			s.advance()
		default:
			return
		}
	}
}
