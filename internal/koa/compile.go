// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koa

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"koa.256lights.llc/pkg/internal/koasyntax"
)

// flow is the way a statement completed.
type flow int

const (
	flowNext flow = iota
	flowBreak
	flowContinue
	flowReturn
)

// exprCode is a compiled expression.
type exprCode func(ctx context.Context, fr *frame) (Value, error)

// stmtCode is a compiled statement.
// The returned value is only meaningful for flowReturn.
type stmtCode func(ctx context.Context, fr *frame) (flow, Value, error)

// Compile translates a validated syntax tree into a [Unit].
// The tree must have passed [koasyntax.Validate],
// which guarantees that every function body ends in a return statement.
func Compile(name string, stmts []koasyntax.Stmt) (*Unit, error) {
	c := &compiler{
		unit: &Unit{
			ID:   uuid.NewString(),
			Name: name,
		},
		scope: newTopLevelScope(),
	}
	body, err := c.stmts(stmts)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	c.unit.body = body
	c.unit.numSlots = c.scope.numSlots
	return c.unit, nil
}

type compiler struct {
	unit  *Unit
	scope *scope
}

func (c *compiler) stmts(stmts []koasyntax.Stmt) ([]stmtCode, error) {
	codes := make([]stmtCode, 0, len(stmts))
	for _, stmt := range stmts {
		code, err := c.stmt(stmt)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func (c *compiler) stmt(stmt koasyntax.Stmt) (stmtCode, error) {
	switch stmt := stmt.(type) {
	case *koasyntax.BlockStmt:
		c.scope.begin()
		body, err := c.stmts(stmt.Stmts)
		c.scope.end()
		if err != nil {
			return nil, err
		}
		return block(body), nil
	case *koasyntax.ExprStmt:
		e, err := c.expr(stmt.Expr)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, fr *frame) (flow, Value, error) {
			_, err := e(ctx, fr)
			return flowNext, nil, err
		}, nil
	case *koasyntax.VarStmt:
		return c.varStmt(stmt)
	case *koasyntax.IfStmt:
		return c.ifStmt(stmt)
	case *koasyntax.WhileStmt:
		cond, err := c.expr(stmt.Cond)
		if err != nil {
			return nil, err
		}
		body, err := c.stmt(stmt.Body)
		if err != nil {
			return nil, err
		}
		return loop(stmt.Pos.Line, nil, cond, nil, body), nil
	case *koasyntax.ForStmt:
		return c.forStmt(stmt)
	case *koasyntax.BreakStmt:
		return func(ctx context.Context, fr *frame) (flow, Value, error) {
			return flowBreak, nil, nil
		}, nil
	case *koasyntax.ContinueStmt:
		return func(ctx context.Context, fr *frame) (flow, Value, error) {
			return flowContinue, nil, nil
		}, nil
	case *koasyntax.ReturnStmt:
		if stmt.Value == nil {
			return func(ctx context.Context, fr *frame) (flow, Value, error) {
				return flowReturn, Null, nil
			}, nil
		}
		value, err := c.expr(stmt.Value)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, fr *frame) (flow, Value, error) {
			v, err := value(ctx, fr)
			if err != nil {
				return flowNext, nil, err
			}
			return flowReturn, v, nil
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unhandled statement %T", stmt.Position().Line, stmt)
	}
}

func block(body []stmtCode) stmtCode {
	return func(ctx context.Context, fr *frame) (flow, Value, error) {
		for _, stmt := range body {
			fl, v, err := stmt(ctx, fr)
			if err != nil || fl != flowNext {
				return fl, v, err
			}
		}
		return flowNext, nil, nil
	}
}

func (c *compiler) varStmt(stmt *koasyntax.VarStmt) (stmtCode, error) {
	init := constant(Null)
	if stmt.Init != nil {
		var err error
		init, err = c.expr(stmt.Init)
		if err != nil {
			return nil, err
		}
	}

	// The initializer is compiled before the name is declared,
	// so "var x = x" refers to the outer x.
	if c.scope.isGlobal() {
		name := stmt.Name
		return func(ctx context.Context, fr *frame) (flow, Value, error) {
			v, err := init(ctx, fr)
			if err != nil {
				return flowNext, nil, err
			}
			fr.globals.Set(name, v)
			return flowNext, nil, nil
		}, nil
	}
	slot := c.scope.declare(stmt.Name)
	return func(ctx context.Context, fr *frame) (flow, Value, error) {
		v, err := init(ctx, fr)
		if err != nil {
			return flowNext, nil, err
		}
		fr.slots[slot] = v
		return flowNext, nil, nil
	}, nil
}

func (c *compiler) ifStmt(stmt *koasyntax.IfStmt) (stmtCode, error) {
	cond, err := c.expr(stmt.Cond)
	if err != nil {
		return nil, err
	}
	then, err := c.stmt(stmt.Then)
	if err != nil {
		return nil, err
	}
	if stmt.Else == nil {
		return func(ctx context.Context, fr *frame) (flow, Value, error) {
			v, err := cond(ctx, fr)
			if err != nil || !IsTruthy(v) {
				return flowNext, nil, err
			}
			return then(ctx, fr)
		}, nil
	}
	els, err := c.stmt(stmt.Else)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, fr *frame) (flow, Value, error) {
		v, err := cond(ctx, fr)
		if err != nil {
			return flowNext, nil, err
		}
		if IsTruthy(v) {
			return then(ctx, fr)
		}
		return els(ctx, fr)
	}, nil
}

func (c *compiler) forStmt(stmt *koasyntax.ForStmt) (stmtCode, error) {
	c.scope.begin()
	defer c.scope.end()

	var init stmtCode
	if stmt.Init != nil {
		var err error
		init, err = c.stmt(stmt.Init)
		if err != nil {
			return nil, err
		}
	}
	var cond, incr exprCode
	if stmt.Cond != nil {
		var err error
		cond, err = c.expr(stmt.Cond)
		if err != nil {
			return nil, err
		}
	}
	if stmt.Incr != nil {
		var err error
		incr, err = c.expr(stmt.Incr)
		if err != nil {
			return nil, err
		}
	}
	body, err := c.stmt(stmt.Body)
	if err != nil {
		return nil, err
	}
	return loop(stmt.Pos.Line, init, cond, incr, body), nil
}

// loop returns the code for a while or for loop.
// init, cond, and incr may be nil.
// A continue statement in the body proceeds to incr.
func loop(line int, init stmtCode, cond exprCode, incr exprCode, body stmtCode) stmtCode {
	return func(ctx context.Context, fr *frame) (flow, Value, error) {
		if init != nil {
			if _, _, err := init(ctx, fr); err != nil {
				return flowNext, nil, err
			}
		}
		for {
			if err := ctx.Err(); err != nil {
				return flowNext, nil, atLine(line, err)
			}
			if cond != nil {
				v, err := cond(ctx, fr)
				if err != nil {
					return flowNext, nil, err
				}
				if !IsTruthy(v) {
					return flowNext, nil, nil
				}
			}
			fl, v, err := body(ctx, fr)
			if err != nil {
				return flowNext, nil, err
			}
			switch fl {
			case flowBreak:
				return flowNext, nil, nil
			case flowReturn:
				return fl, v, nil
			}
			if incr != nil {
				if _, err := incr(ctx, fr); err != nil {
					return flowNext, nil, err
				}
			}
		}
	}
}

// function compiles a function literal into a new [FunctionUnit].
// The body is compiled with a fresh scope,
// so the enclosing function's locals are not visible.
func (c *compiler) function(fn *koasyntax.FunctionExpr) (*FunctionUnit, error) {
	fu := &FunctionUnit{
		ID:     fmt.Sprintf("%s/%d", c.unit.ID, len(c.unit.Functions)),
		Line:   fn.Pos.Line,
		Params: fn.Params,
	}
	c.unit.Functions = append(c.unit.Functions, fu)

	outer := c.scope
	c.scope = newFunctionScope(fn.Params)
	body, err := c.stmts(fn.Body)
	fu.numSlots = c.scope.numSlots
	c.scope = outer
	if err != nil {
		return nil, err
	}
	fu.body = body
	return fu, nil
}
