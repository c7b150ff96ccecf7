// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

// Package koalex provides a scanner to split a byte stream
// into Koa lexical elements.
package koalex

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// A Scanner parses Koa tokens from a byte stream.
type Scanner struct {
	r    io.ByteScanner
	next Position
	prev Position
	err  error

	// dot is the position of a '.' consumed while scanning a number
	// that must be returned as the next token.
	dot Position
}

// NewScanner returns a [Scanner] that reads from r.
// NewScanner does not buffer r.
func NewScanner(r io.ByteScanner) *Scanner {
	return &Scanner{
		r:    r,
		next: Position{Line: 1, Column: 1},
	}
}

// Scan reads the next [Token] from the stream.
// Scan returns [io.EOF] once the stream is exhausted.
// If Scan returns any other error,
// then the returned token will be an [ErrorToken]
// with the Position field set to the approximate position of the error.
// An unexpected character is reported once and scanning may continue;
// all other errors are sticky.
func (s *Scanner) Scan() (Token, error) {
	if s.err != nil {
		return Token{}, s.err
	}
	if s.dot.IsValid() {
		pos := s.dot
		s.dot = Position{}
		return Token{Kind: DotToken, Position: pos}, nil
	}

	for {
		b, err := s.readByte()
		if err != nil {
			return Token{}, err
		}
		switch {
		case isSpace(b):
			// Ignore.
		case isLetter(b) || b == '_':
			pos := s.prev
			sb := new(strings.Builder)
			sb.WriteByte(b)
			for {
				b, err := s.readByte()
				if err != nil {
					break
				}
				if b != '_' && !isLetter(b) && !isDigit(b) {
					s.unreadByte()
					break
				}
				sb.WriteByte(b)
			}
			value := sb.String()
			if kind, isKeyword := keywords[value]; isKeyword {
				return Token{Kind: kind, Position: pos}, nil
			}
			return Token{Kind: IdentifierToken, Position: pos, Value: value}, nil
		case isDigit(b):
			pos := s.prev
			s.unreadByte()
			return Token{Kind: NumberToken, Position: pos, Value: s.number()}, nil
		case b == '"':
			pos := s.prev
			value, err := s.stringLiteral()
			if err != nil {
				s.err = err
				return Token{Kind: ErrorToken, Position: pos}, err
			}
			return Token{Kind: StringToken, Position: pos, Value: value}, nil
		case b == '+':
			return s.compound(AddToken, '+', IncrementToken, AddAssignToken), nil
		case b == '-':
			return s.compound(SubToken, '-', DecrementToken, SubAssignToken), nil
		case b == '*':
			return s.compound(MulToken, 0, ErrorToken, MulAssignToken), nil
		case b == '%':
			return s.compound(ModToken, 0, ErrorToken, ModAssignToken), nil
		case b == '/':
			pos := s.prev
			b, err := s.readByte()
			if err != nil {
				return Token{Kind: DivToken, Position: pos}, nil
			}
			switch b {
			case '/':
				if err := s.skipLineComment(); err != nil {
					return Token{}, err
				}
			case '*':
				if err := s.skipBlockComment(); err != nil {
					s.err = fmt.Errorf("%v: %w", pos, err)
					return Token{Kind: ErrorToken, Position: pos}, s.err
				}
			case '=':
				return Token{Kind: DivAssignToken, Position: pos}, nil
			default:
				s.unreadByte()
				return Token{Kind: DivToken, Position: pos}, nil
			}
		case b == '!':
			return s.compound(NotToken, 0, ErrorToken, NotEqualToken), nil
		case b == '=':
			return s.compound(AssignToken, 0, ErrorToken, EqualToken), nil
		case b == '<':
			return s.compound(LessToken, 0, ErrorToken, LessEqualToken), nil
		case b == '>':
			return s.compound(GreaterToken, 0, ErrorToken, GreaterEqualToken), nil
		case b == '(':
			return Token{Kind: LParenToken, Position: s.prev}, nil
		case b == ')':
			return Token{Kind: RParenToken, Position: s.prev}, nil
		case b == '{':
			return Token{Kind: LBraceToken, Position: s.prev}, nil
		case b == '}':
			return Token{Kind: RBraceToken, Position: s.prev}, nil
		case b == '[':
			return Token{Kind: LBracketToken, Position: s.prev}, nil
		case b == ']':
			return Token{Kind: RBracketToken, Position: s.prev}, nil
		case b == ';':
			return Token{Kind: SemiToken, Position: s.prev}, nil
		case b == ':':
			return Token{Kind: ColonToken, Position: s.prev}, nil
		case b == ',':
			return Token{Kind: CommaToken, Position: s.prev}, nil
		case b == '.':
			return Token{Kind: DotToken, Position: s.prev}, nil
		default:
			return Token{Kind: ErrorToken, Position: s.prev}, &UnexpectedCharError{
				Position: s.prev,
				Char:     b,
			}
		}
	}
}

// compound scans the rest of an operator that started with a single byte.
// If the following byte is repeat, compound returns double.
// If the following byte is '=', compound returns assign.
// Otherwise it returns single.
func (s *Scanner) compound(single TokenKind, repeat byte, double, assign TokenKind) Token {
	pos := s.prev
	b, err := s.readByte()
	if err != nil {
		return Token{Kind: single, Position: pos}
	}
	switch {
	case repeat != 0 && b == repeat:
		return Token{Kind: double, Position: pos}
	case b == '=':
		return Token{Kind: assign, Position: pos}
	default:
		s.unreadByte()
		return Token{Kind: single, Position: pos}
	}
}

func (s *Scanner) number() string {
	sb := new(strings.Builder)
	s.digits(sb)
	b, err := s.readByte()
	if err != nil {
		return sb.String()
	}
	if b != '.' {
		s.unreadByte()
		return sb.String()
	}
	// A fraction requires a digit after the dot,
	// otherwise the dot begins a property access.
	dot := s.prev
	b, err = s.readByte()
	if err != nil {
		s.dot = dot
		return sb.String()
	}
	if !isDigit(b) {
		s.unreadByte()
		s.dot = dot
		return sb.String()
	}
	s.unreadByte()
	sb.WriteByte('.')
	s.digits(sb)
	return sb.String()
}

func (s *Scanner) digits(sb *strings.Builder) {
	for {
		b, err := s.readByte()
		if err != nil {
			return
		}
		if !isDigit(b) {
			s.unreadByte()
			return
		}
		sb.WriteByte(b)
	}
}

func (s *Scanner) stringLiteral() (string, error) {
	start := s.prev
	sb := new(strings.Builder)
	for {
		b, err := s.readByte()
		if err == io.EOF {
			return sb.String(), fmt.Errorf("%v: %w", start, ErrUnterminatedString)
		}
		if err != nil {
			return sb.String(), err
		}
		switch b {
		case '"':
			return sb.String(), nil
		case '\\':
			b, err := s.readByte()
			if err == io.EOF {
				return sb.String(), fmt.Errorf("%v: %w", start, ErrUnterminatedString)
			}
			if err != nil {
				return sb.String(), err
			}
			switch b {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '"', '\\':
				sb.WriteByte(b)
			default:
				return sb.String(), fmt.Errorf("%v: %w '\\%c'", s.prev, ErrInvalidEscape, b)
			}
		default:
			sb.WriteByte(b)
		}
	}
}

func (s *Scanner) skipLineComment() error {
	for {
		b, err := s.readByte()
		if err != nil {
			return err
		}
		if b == '\n' {
			return nil
		}
	}
}

func (s *Scanner) skipBlockComment() error {
	star := false
	for {
		b, err := s.readByte()
		if err == io.EOF {
			return ErrUnterminatedComment
		}
		if err != nil {
			return err
		}
		if star && b == '/' {
			return nil
		}
		star = b == '*'
	}
}

func (s *Scanner) readByte() (byte, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		return b, err
	}
	s.prev = s.next
	switch b {
	case '\n':
		s.next.Line++
		s.next.Column = 1
	case '\t':
		s.next.Column++
		const tabWidth = 8
		for s.next.Column%tabWidth != 0 {
			s.next.Column++
		}
	default:
		s.next.Column++
	}
	return b, nil
}

func (s *Scanner) unreadByte() error {
	if err := s.r.UnreadByte(); err != nil {
		return err
	}
	s.next = s.prev
	return nil
}

// Errors returned by [Scanner.Scan], possibly wrapped with a position.
var (
	ErrUnterminatedString  = errors.New("unterminated string")
	ErrUnterminatedComment = errors.New("unterminated comment")
	ErrInvalidEscape       = errors.New("invalid escape sequence")
)

// UnexpectedCharError is returned by [Scanner.Scan]
// when it encounters a byte that does not begin any token.
type UnexpectedCharError struct {
	Position Position
	Char     byte
}

func (e *UnexpectedCharError) Error() string {
	return fmt.Sprintf("%v: unexpected character %q", e.Position, e.Char)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
