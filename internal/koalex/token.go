// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koalex

import (
	"fmt"
	"strconv"
)

// Token represents a single lexical element in a Koa source file.
type Token struct {
	Kind     TokenKind
	Position Position
	// Value holds information for
	// an [IdentifierToken], a [StringToken], or a [NumberToken].
	Value string
}

// String formats the token as it would appear in Koa source.
// String returns "end" for [ErrorToken].
func (tok Token) String() string {
	switch tok.Kind {
	case ErrorToken:
		return "end"
	case StringToken:
		return strconv.Quote(tok.Value)
	case IdentifierToken, NumberToken:
		return tok.Value
	default:
		return tok.Kind.String()
	}
}

// Position represents a position in a textual source file.
type Position struct {
	// Line is the 1-based line number.
	Line int
	// Column is the 1-based column number.
	// Columns are based in bytes.
	// Zero indicates that the position only has line number information.
	Column int
}

// Pos returns a new position with the given line number and column.
// It panics if the resulting Position would not be valid
// (as reported by [Position.IsValid]).
func Pos(line, col int) Position {
	pos := Position{Line: line, Column: col}
	if !pos.IsValid() {
		panic("invalid Pos()")
	}
	return pos
}

// String formats the position as "line:col".
func (pos Position) String() string {
	if !pos.IsValid() {
		return "<invalid position>"
	}
	if pos.Column == 0 {
		return fmt.Sprintf("%d", pos.Line)
	}
	return fmt.Sprintf("%d:%d", pos.Line, pos.Column)
}

// IsValid reports whether pos has a positive line number
// and a non-negative column.
func (pos Position) IsValid() bool {
	return pos.Line > 0 && pos.Column >= 0
}

// TokenKind is an enumeration of valid [Token] types.
// The zero value is [ErrorToken].
type TokenKind int

// [TokenKind] values.
const (
	// ErrorToken indicates an invalid token.
	ErrorToken TokenKind = iota
	// IdentifierToken indicates a name.
	// The Value field of [Token] will contain the identifier.
	IdentifierToken
	// StringToken indicates a literal string.
	// The Value field of [Token] will contain the parsed value of the string.
	StringToken
	// NumberToken indicates a numeric constant.
	// The Value field of [Token] will contain the constant as written.
	NumberToken

	// Keywords

	AndToken      // and
	BreakToken    // break
	ContinueToken // continue
	ElseToken     // else
	FalseToken    // false
	ForToken      // for
	FunctionToken // function
	IfToken       // if
	NilToken      // nil
	OrToken       // or
	ReturnToken   // return
	SelfToken     // self
	TrueToken     // true
	VarToken      // var
	WhileToken    // while

	// Operators

	AddToken          // +
	SubToken          // -
	MulToken          // *
	DivToken          // /
	ModToken          // %
	NotToken          // !
	EqualToken        // ==
	NotEqualToken     // !=
	LessEqualToken    // <=
	GreaterEqualToken // >=
	LessToken         // <
	GreaterToken      // >
	AssignToken       // =
	AddAssignToken    // +=
	SubAssignToken    // -=
	MulAssignToken    // *=
	DivAssignToken    // /=
	ModAssignToken    // %=
	IncrementToken    // ++
	DecrementToken    // --
	LParenToken       // (
	RParenToken       // )
	LBraceToken       // {
	RBraceToken       // }
	LBracketToken     // [
	RBracketToken     // ]
	SemiToken         // ;
	ColonToken        // :
	CommaToken        // ,
	DotToken          // .
)

var keywords = map[string]TokenKind{
	"and":      AndToken,
	"break":    BreakToken,
	"continue": ContinueToken,
	"else":     ElseToken,
	"false":    FalseToken,
	"for":      ForToken,
	"function": FunctionToken,
	"if":       IfToken,
	"nil":      NilToken,
	"or":       OrToken,
	"return":   ReturnToken,
	"self":     SelfToken,
	"true":     TrueToken,
	"var":      VarToken,
	"while":    WhileToken,
}

var kindNames = [...]string{
	ErrorToken:        "ErrorToken",
	IdentifierToken:   "IdentifierToken",
	StringToken:       "StringToken",
	NumberToken:       "NumberToken",
	AndToken:          "and",
	BreakToken:        "break",
	ContinueToken:     "continue",
	ElseToken:         "else",
	FalseToken:        "false",
	ForToken:          "for",
	FunctionToken:     "function",
	IfToken:           "if",
	NilToken:          "nil",
	OrToken:           "or",
	ReturnToken:       "return",
	SelfToken:         "self",
	TrueToken:         "true",
	VarToken:          "var",
	WhileToken:        "while",
	AddToken:          "+",
	SubToken:          "-",
	MulToken:          "*",
	DivToken:          "/",
	ModToken:          "%",
	NotToken:          "!",
	EqualToken:        "==",
	NotEqualToken:     "!=",
	LessEqualToken:    "<=",
	GreaterEqualToken: ">=",
	LessToken:         "<",
	GreaterToken:      ">",
	AssignToken:       "=",
	AddAssignToken:    "+=",
	SubAssignToken:    "-=",
	MulAssignToken:    "*=",
	DivAssignToken:    "/=",
	ModAssignToken:    "%=",
	IncrementToken:    "++",
	DecrementToken:    "--",
	LParenToken:       "(",
	RParenToken:       ")",
	LBraceToken:       "{",
	RBraceToken:       "}",
	LBracketToken:     "[",
	RBracketToken:     "]",
	SemiToken:         ";",
	ColonToken:        ":",
	CommaToken:        ",",
	DotToken:          ".",
}

// String returns the keyword or operator text for k,
// or the constant's name for the value-carrying kinds.
func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(kindNames) || kindNames[k] == "" {
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
	return kindNames[k]
}

// IsKeyword reports whether k is a reserved word.
func (k TokenKind) IsKeyword() bool {
	return AndToken <= k && k <= WhileToken
}
