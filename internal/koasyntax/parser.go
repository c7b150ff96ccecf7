// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

// Package koasyntax provides the Koa syntax tree,
// a parser that builds it from source,
// and a validator for the structural rules the parser cannot check.
package koasyntax

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"koa.256lights.llc/pkg/internal/koalex"
)

// Parse parses a Koa program from r.
// If the source contains syntax errors,
// Parse returns the statements it could recover along with an [ErrorList].
//
// Top-level function declarations
// (both "function f() {}" and "var f = function() {}")
// are moved in front of the other top-level statements
// so that they can be called before the point where they appear.
func Parse(r io.ByteScanner) ([]Stmt, error) {
	p := &parser{s: koalex.NewScanner(r)}
	p.advance()
	var hoisted, rest []Stmt
	for !p.atEnd() {
		stmt := p.declaration()
		switch {
		case stmt == nil:
		case isFunctionDeclaration(stmt):
			hoisted = append(hoisted, stmt)
		default:
			rest = append(rest, stmt)
		}
	}
	return append(hoisted, rest...), p.errs.Err()
}

// ParseString parses a Koa program from a string.
func ParseString(source string) ([]Stmt, error) {
	return Parse(strings.NewReader(source))
}

func isFunctionDeclaration(stmt Stmt) bool {
	v, ok := stmt.(*VarStmt)
	if !ok {
		return false
	}
	_, ok = v.Init.(*FunctionExpr)
	return ok
}

// errSyntax is returned by parser methods after recording a diagnostic.
var errSyntax = errors.New("syntax error")

type parser struct {
	s    *koalex.Scanner
	curr koalex.Token
	prev koalex.Token
	errs ErrorList

	next    koalex.Token
	hasNext bool
	done    bool
	last    koalex.Position
	// lexFailed is set when the scanner stopped on an error.
	// The error has been recorded, so reaching the end of input is not reported again.
	lexFailed bool
}

// advance reads the next token into p.curr.
func (p *parser) advance() {
	p.prev = p.curr
	if p.hasNext {
		p.curr = p.next
		p.hasNext = false
		return
	}
	p.curr = p.scan()
}

// peek returns the token after p.curr without consuming anything.
func (p *parser) peek() koalex.Token {
	if !p.hasNext {
		p.next = p.scan()
		p.hasNext = true
	}
	return p.next
}

// scan returns the next token from the scanner.
// Lexical errors are recorded as diagnostics;
// an unrecoverable one is treated as the end of input.
func (p *parser) scan() koalex.Token {
	if p.done {
		return p.endToken()
	}
	for {
		tok, err := p.s.Scan()
		if err == nil {
			p.last = tok.Position
			return tok
		}
		if err != io.EOF {
			p.lexError(tok, err)
			var charErr *koalex.UnexpectedCharError
			if errors.As(err, &charErr) {
				continue
			}
			p.lexFailed = true
		}
		p.done = true
		return p.endToken()
	}
}

func (p *parser) endToken() koalex.Token {
	pos := p.last
	if !pos.IsValid() {
		pos = koalex.Position{Line: 1}
	}
	return koalex.Token{Kind: koalex.ErrorToken, Position: pos}
}

func (p *parser) lexError(tok koalex.Token, err error) {
	d := &Diagnostic{
		Severity: SeverityError,
		Position: tok.Position,
	}
	if !d.Position.IsValid() {
		d.Position = p.endToken().Position
	}
	var charErr *koalex.UnexpectedCharError
	switch {
	case errors.As(err, &charErr):
		d.Where = string(rune(charErr.Char))
		d.Message = "Unexpected character."
	case errors.Is(err, koalex.ErrUnterminatedString):
		d.AtEnd = true
		d.Message = "Unterminated string."
	case errors.Is(err, koalex.ErrUnterminatedComment):
		d.AtEnd = true
		d.Message = "Unterminated comment."
	case errors.Is(err, koalex.ErrInvalidEscape):
		d.Message = "Invalid escape sequence."
	default:
		d.Message = err.Error()
	}
	p.errs = append(p.errs, d)
}

func (p *parser) atEnd() bool {
	return p.curr.Kind == koalex.ErrorToken
}

func (p *parser) check(kind koalex.TokenKind) bool {
	return !p.atEnd() && p.curr.Kind == kind
}

func (p *parser) match(kinds ...koalex.TokenKind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) consume(kind koalex.TokenKind, msg string) (koalex.Token, error) {
	if !p.check(kind) {
		return koalex.Token{}, p.errorAt(p.curr, msg)
	}
	p.advance()
	return p.prev, nil
}

// errorAt records a diagnostic at tok and returns errSyntax.
func (p *parser) errorAt(tok koalex.Token, msg string) error {
	d := &Diagnostic{
		Severity: SeverityError,
		Position: tok.Position,
		Message:  msg,
	}
	if tok.Kind == koalex.ErrorToken {
		if p.lexFailed {
			return errSyntax
		}
		d.AtEnd = true
	} else {
		d.Where = tok.String()
	}
	p.errs = append(p.errs, d)
	return errSyntax
}

// synchronize discards tokens until it reaches a likely statement boundary.
func (p *parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.prev.Kind == koalex.SemiToken {
			return
		}
		switch p.curr.Kind {
		case koalex.FunctionToken,
			koalex.VarToken,
			koalex.ForToken,
			koalex.IfToken,
			koalex.WhileToken,
			koalex.ReturnToken,
			koalex.BreakToken,
			koalex.ContinueToken:
			return
		}
		p.advance()
	}
}

// declaration parses a declaration or statement.
// On error, declaration synchronizes and returns nil.
func (p *parser) declaration() Stmt {
	var stmt Stmt
	var err error
	switch {
	case p.check(koalex.VarToken):
		stmt, err = p.varDeclaration()
		if err == nil {
			p.match(koalex.SemiToken)
		}
	case p.check(koalex.FunctionToken) && p.peek().Kind == koalex.IdentifierToken:
		stmt, err = p.functionDeclaration()
		if err == nil {
			p.match(koalex.SemiToken)
		}
	default:
		stmt, err = p.statement()
	}
	if err != nil {
		p.synchronize()
		return nil
	}
	return stmt
}

func (p *parser) varDeclaration() (Stmt, error) {
	pos := p.curr.Position
	p.advance()
	name, err := p.consume(koalex.IdentifierToken, "Expect variable name.")
	if err != nil {
		return nil, err
	}
	stmt := &VarStmt{Pos: pos, Name: name.Value}
	if p.match(koalex.AssignToken) {
		stmt.Init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *parser) functionDeclaration() (Stmt, error) {
	pos := p.curr.Position
	p.advance()
	name, err := p.consume(koalex.IdentifierToken, "Expect function name.")
	if err != nil {
		return nil, err
	}
	fn, err := p.functionBody(pos)
	if err != nil {
		return nil, err
	}
	return &VarStmt{Pos: pos, Name: name.Value, Init: fn}, nil
}

func (p *parser) statement() (Stmt, error) {
	pos := p.curr.Position
	switch {
	case p.match(koalex.IfToken):
		return p.ifStatement(pos)
	case p.match(koalex.WhileToken):
		return p.whileStatement(pos)
	case p.match(koalex.ForToken):
		return p.forStatement(pos)
	case p.match(koalex.BreakToken):
		p.match(koalex.SemiToken)
		return &BreakStmt{Pos: pos}, nil
	case p.match(koalex.ContinueToken):
		p.match(koalex.SemiToken)
		return &ContinueStmt{Pos: pos}, nil
	case p.match(koalex.ReturnToken):
		stmt := &ReturnStmt{Pos: pos}
		if !p.atEnd() && !p.check(koalex.SemiToken) && !p.check(koalex.RBraceToken) {
			var err error
			stmt.Value, err = p.expression()
			if err != nil {
				return nil, err
			}
		}
		p.match(koalex.SemiToken)
		return stmt, nil
	case p.match(koalex.LBraceToken):
		stmts, err := p.block()
		if err != nil {
			return nil, err
		}
		return &BlockStmt{Pos: pos, Stmts: stmts}, nil
	default:
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		p.match(koalex.SemiToken)
		return &ExprStmt{Pos: pos, Expr: expr}, nil
	}
}

// block parses the declarations after a '{' up to and including the '}'.
func (p *parser) block() ([]Stmt, error) {
	var stmts []Stmt
	for !p.atEnd() && !p.check(koalex.RBraceToken) {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if _, err := p.consume(koalex.RBraceToken, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *parser) ifStatement(pos koalex.Position) (Stmt, error) {
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Pos: pos, Cond: cond, Then: then}
	if p.match(koalex.ElseToken) {
		stmt.Else, err = p.statement()
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *parser) whileStatement(pos koalex.Position) (Stmt, error) {
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Pos: pos, Cond: cond, Body: body}, nil
}

func (p *parser) forStatement(pos koalex.Position) (Stmt, error) {
	if _, err := p.consume(koalex.LParenToken, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}
	stmt := &ForStmt{Pos: pos}
	switch {
	case p.match(koalex.SemiToken):
	case p.check(koalex.VarToken):
		init, err := p.varDeclaration()
		if err != nil {
			return nil, err
		}
		stmt.Init = init
		if _, err := p.consume(koalex.SemiToken, "Expect ';' after loop initializer."); err != nil {
			return nil, err
		}
	default:
		initPos := p.curr.Position
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		stmt.Init = &ExprStmt{Pos: initPos, Expr: expr}
		if _, err := p.consume(koalex.SemiToken, "Expect ';' after loop initializer."); err != nil {
			return nil, err
		}
	}

	if !p.check(koalex.SemiToken) {
		var err error
		stmt.Cond, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(koalex.SemiToken, "Expect ';' after loop condition."); err != nil {
		return nil, err
	}

	if !p.check(koalex.RParenToken) {
		var err error
		stmt.Incr, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(koalex.RParenToken, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}

	var err error
	stmt.Body, err = p.statement()
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) expression() (Expr, error) {
	return p.assignment()
}

func (p *parser) assignment() (Expr, error) {
	expr, err := p.or()
	if err != nil {
		return nil, err
	}
	switch p.curr.Kind {
	case koalex.AssignToken,
		koalex.AddAssignToken,
		koalex.SubAssignToken,
		koalex.MulAssignToken,
		koalex.DivAssignToken,
		koalex.ModAssignToken:
		op := p.curr
		p.advance()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		return p.assignTo(expr, op, value), nil
	case koalex.IncrementToken, koalex.DecrementToken:
		op := p.curr
		p.advance()
		return p.assignTo(expr, op, nil), nil
	default:
		return expr, nil
	}
}

// assignTo builds the assignment of value to target.
// An invalid target is reported but does not stop parsing.
func (p *parser) assignTo(target Expr, op koalex.Token, value Expr) Expr {
	switch target := target.(type) {
	case *VariableExpr:
		return &AssignExpr{
			Pos:   target.Pos,
			Name:  target.Name,
			Op:    op.Kind,
			Value: value,
		}
	case *GetExpr:
		return &SetExpr{
			Pos:    target.Pos,
			Object: target.Object,
			Name:   target.Name,
			Key:    target.Key,
			Op:     op.Kind,
			Value:  value,
		}
	default:
		p.errorAt(op, "Invalid assignment target.")
		return target
	}
}

func (p *parser) or() (Expr, error) {
	return p.logical(p.and, koalex.OrToken)
}

func (p *parser) and() (Expr, error) {
	return p.logical(p.equality, koalex.AndToken)
}

func (p *parser) logical(operand func() (Expr, error), op koalex.TokenKind) (Expr, error) {
	expr, err := operand()
	if err != nil {
		return nil, err
	}
	for p.check(op) {
		pos := p.curr.Position
		p.advance()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		expr = &LogicalExpr{Pos: pos, Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *parser) equality() (Expr, error) {
	return p.binary(p.comparison, koalex.EqualToken, koalex.NotEqualToken)
}

func (p *parser) comparison() (Expr, error) {
	return p.binary(p.term,
		koalex.GreaterToken,
		koalex.GreaterEqualToken,
		koalex.LessToken,
		koalex.LessEqualToken,
	)
}

func (p *parser) term() (Expr, error) {
	return p.binary(p.factor, koalex.AddToken, koalex.SubToken)
}

func (p *parser) factor() (Expr, error) {
	return p.binary(p.unary, koalex.MulToken, koalex.DivToken, koalex.ModToken)
}

// binary parses a left-associative sequence of operands
// separated by any of ops.
func (p *parser) binary(operand func() (Expr, error), ops ...koalex.TokenKind) (Expr, error) {
	expr, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		op := p.curr
		if !p.match(ops...) {
			return expr, nil
		}
		right, err := operand()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Pos: op.Position, Op: op.Kind, Left: expr, Right: right}
	}
}

func (p *parser) unary() (Expr, error) {
	op := p.curr
	if p.match(koalex.NotToken, koalex.SubToken) {
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Pos: op.Position, Op: op.Kind, Operand: operand}, nil
	}
	return p.call()
}

func (p *parser) call() (Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		pos := p.curr.Position
		switch {
		case p.match(koalex.LParenToken):
			var args []Expr
			if !p.check(koalex.RParenToken) {
				for {
					arg, err := p.expression()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if !p.match(koalex.CommaToken) {
						break
					}
				}
			}
			if _, err := p.consume(koalex.RParenToken, "Expect ')' after arguments."); err != nil {
				return nil, err
			}
			expr = &CallExpr{Pos: pos, Callee: expr, Args: args}
		case p.match(koalex.DotToken):
			name, err := p.consume(koalex.IdentifierToken, "Expect property name after '.'.")
			if err != nil {
				return nil, err
			}
			expr = &GetExpr{Pos: pos, Object: expr, Name: name.Value}
		case p.match(koalex.LBracketToken):
			key, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(koalex.RBracketToken, "Expect ']' after index."); err != nil {
				return nil, err
			}
			expr = &GetExpr{Pos: pos, Object: expr, Key: key}
		default:
			return expr, nil
		}
	}
}

func (p *parser) primary() (Expr, error) {
	tok := p.curr
	switch tok.Kind {
	case koalex.NilToken:
		p.advance()
		return &NilLiteral{Pos: tok.Position}, nil
	case koalex.TrueToken, koalex.FalseToken:
		p.advance()
		return &BoolLiteral{Pos: tok.Position, Value: tok.Kind == koalex.TrueToken}, nil
	case koalex.NumberToken:
		p.advance()
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.errorAt(tok, "Invalid number.")
		}
		return &NumberLiteral{Pos: tok.Position, Value: f}, nil
	case koalex.StringToken:
		p.advance()
		return &StringLiteral{Pos: tok.Position, Value: tok.Value}, nil
	case koalex.IdentifierToken:
		p.advance()
		return &VariableExpr{Pos: tok.Position, Name: tok.Value}, nil
	case koalex.SelfToken:
		p.advance()
		return &SelfExpr{Pos: tok.Position}, nil
	case koalex.LParenToken:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(koalex.RParenToken, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &GroupingExpr{Pos: tok.Position, Expr: expr}, nil
	case koalex.LBraceToken:
		p.advance()
		return p.table(tok.Position)
	case koalex.FunctionToken:
		p.advance()
		return p.functionBody(tok.Position)
	default:
		return nil, p.errorAt(tok, "Expect expression.")
	}
}

func (p *parser) table(pos koalex.Position) (Expr, error) {
	t := &TableExpr{Pos: pos}
	for !p.check(koalex.RBraceToken) {
		key := p.curr
		if !p.match(koalex.IdentifierToken, koalex.StringToken) {
			return nil, p.errorAt(key, "Expect table key.")
		}
		if _, err := p.consume(koalex.ColonToken, "Expect ':' after table key."); err != nil {
			return nil, err
		}
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		t.Fields = append(t.Fields, TableField{
			Pos:   key.Position,
			Key:   key.Value,
			Value: value,
		})
		if !p.match(koalex.CommaToken) {
			break
		}
	}
	if _, err := p.consume(koalex.RBraceToken, "Expect '}' after table fields."); err != nil {
		return nil, err
	}
	return t, nil
}

// functionBody parses a parameter list and body
// after the "function" keyword and optional name.
func (p *parser) functionBody(pos koalex.Position) (*FunctionExpr, error) {
	if _, err := p.consume(koalex.LParenToken, "Expect '(' after 'function'."); err != nil {
		return nil, err
	}
	fn := &FunctionExpr{Pos: pos}
	if !p.check(koalex.RParenToken) {
		for {
			name, err := p.consume(koalex.IdentifierToken, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, name.Value)
			if !p.match(koalex.CommaToken) {
				break
			}
		}
	}
	if _, err := p.consume(koalex.RParenToken, "Expect ')' after parameters."); err != nil {
		return nil, err
	}
	if _, err := p.consume(koalex.LBraceToken, "Expect '{' before function body."); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}
