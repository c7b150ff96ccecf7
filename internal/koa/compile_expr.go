// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koa

import (
	"context"
	"fmt"

	"koa.256lights.llc/pkg/internal/koalex"
	"koa.256lights.llc/pkg/internal/koasyntax"
)

func constant(v Value) exprCode {
	return func(ctx context.Context, fr *frame) (Value, error) {
		return v, nil
	}
}

func (c *compiler) expr(expr koasyntax.Expr) (exprCode, error) {
	switch expr := expr.(type) {
	case *koasyntax.NilLiteral:
		return constant(Null), nil
	case *koasyntax.BoolLiteral:
		return constant(Bool(expr.Value)), nil
	case *koasyntax.NumberLiteral:
		return constant(Number(expr.Value)), nil
	case *koasyntax.StringLiteral:
		s := expr.Value
		return func(ctx context.Context, fr *frame) (Value, error) {
			return fr.globals.newString(s), nil
		}, nil
	case *koasyntax.GroupingExpr:
		return c.expr(expr.Expr)
	case *koasyntax.SelfExpr:
		return func(ctx context.Context, fr *frame) (Value, error) {
			if fr.self == nil {
				return Null, nil
			}
			return fr.self, nil
		}, nil
	case *koasyntax.VariableExpr:
		load, _ := c.variable(expr.Name)
		return load, nil
	case *koasyntax.AssignExpr:
		return c.assign(expr)
	case *koasyntax.UnaryExpr:
		return c.unary(expr)
	case *koasyntax.BinaryExpr:
		return c.binary(expr)
	case *koasyntax.LogicalExpr:
		return c.logical(expr)
	case *koasyntax.TableExpr:
		return c.table(expr)
	case *koasyntax.GetExpr:
		return c.get(expr)
	case *koasyntax.SetExpr:
		return c.set(expr)
	case *koasyntax.CallExpr:
		return c.call(expr)
	case *koasyntax.FunctionExpr:
		fu, err := c.function(expr)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, fr *frame) (Value, error) {
			return &closure{unit: fu, globals: fr.globals}, nil
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unhandled expression %T", expr.Position().Line, expr)
	}
}

// variable returns code to read and write the variable with the given name.
// Locals are addressed by slot; everything else is a global.
func (c *compiler) variable(name string) (load exprCode, store func(fr *frame, v Value)) {
	if slot, ok := c.scope.resolve(name); ok {
		load = func(ctx context.Context, fr *frame) (Value, error) {
			return fr.slots[slot], nil
		}
		store = func(fr *frame, v Value) {
			fr.slots[slot] = v
		}
		return load, store
	}
	load = func(ctx context.Context, fr *frame) (Value, error) {
		return fr.globals.Get(name), nil
	}
	store = func(fr *frame, v Value) {
		fr.globals.Set(name, v)
	}
	return load, store
}

func (c *compiler) assign(expr *koasyntax.AssignExpr) (exprCode, error) {
	line := expr.Pos.Line
	load, store := c.variable(expr.Name)

	switch expr.Op {
	case koalex.AssignToken:
		value, err := c.expr(expr.Value)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, fr *frame) (Value, error) {
			v, err := value(ctx, fr)
			if err != nil {
				return nil, err
			}
			store(fr, v)
			return v, nil
		}, nil
	case koalex.IncrementToken, koalex.DecrementToken:
		delta := stepDelta(expr.Op)
		return func(ctx context.Context, fr *frame) (Value, error) {
			old, _ := load(ctx, fr)
			v, err := step(line, old, delta)
			if err != nil {
				return nil, err
			}
			store(fr, v)
			return v, nil
		}, nil
	default:
		op, ok := compoundOperator(expr.Op)
		if !ok {
			return nil, fmt.Errorf("line %d: unhandled assignment %v", line, expr.Op)
		}
		value, err := c.expr(expr.Value)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, fr *frame) (Value, error) {
			old, _ := load(ctx, fr)
			v, err := arithmetic(ctx, fr, line, op, old, value)
			if err != nil {
				return nil, err
			}
			store(fr, v)
			return v, nil
		}, nil
	}
}

func (c *compiler) unary(expr *koasyntax.UnaryExpr) (exprCode, error) {
	line := expr.Pos.Line
	operand, err := c.expr(expr.Operand)
	if err != nil {
		return nil, err
	}
	switch expr.Op {
	case koalex.SubToken:
		return func(ctx context.Context, fr *frame) (Value, error) {
			v, err := operand(ctx, fr)
			if err != nil {
				return nil, err
			}
			n, ok := v.(Number)
			if !ok {
				return nil, &TypeError{Line: line, Expected: []Type{TypeNumber}, Got: TypeOf(v)}
			}
			return -n, nil
		}, nil
	case koalex.NotToken:
		return func(ctx context.Context, fr *frame) (Value, error) {
			v, err := operand(ctx, fr)
			if err != nil {
				return nil, err
			}
			return Bool(!IsTruthy(v)), nil
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unhandled unary operator %v", line, expr.Op)
	}
}

func (c *compiler) binary(expr *koasyntax.BinaryExpr) (exprCode, error) {
	line := expr.Pos.Line
	left, err := c.expr(expr.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.expr(expr.Right)
	if err != nil {
		return nil, err
	}

	if op, ok := arithmeticOperator(expr.Op); ok {
		return func(ctx context.Context, fr *frame) (Value, error) {
			l, err := left(ctx, fr)
			if err != nil {
				return nil, err
			}
			return arithmetic(ctx, fr, line, op, l, right)
		}, nil
	}

	switch expr.Op {
	case koalex.EqualToken, koalex.NotEqualToken:
		negate := expr.Op == koalex.NotEqualToken
		return func(ctx context.Context, fr *frame) (Value, error) {
			l, err := left(ctx, fr)
			if err != nil {
				return nil, err
			}
			r, err := right(ctx, fr)
			if err != nil {
				return nil, err
			}
			return Bool(Equal(l, r) != negate), nil
		}, nil
	case koalex.LessToken, koalex.LessEqualToken, koalex.GreaterToken, koalex.GreaterEqualToken:
		cmp := comparisonFunc(expr.Op)
		return func(ctx context.Context, fr *frame) (Value, error) {
			l, err := left(ctx, fr)
			if err != nil {
				return nil, err
			}
			r, err := right(ctx, fr)
			if err != nil {
				return nil, err
			}
			ln, err := numberOperand(line, l)
			if err != nil {
				return nil, err
			}
			rn, err := numberOperand(line, r)
			if err != nil {
				return nil, err
			}
			return Bool(cmp(ln, rn)), nil
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unhandled binary operator %v", line, expr.Op)
	}
}

// logical compiles "and" and "or".
// The result is the truthiness of the operand that decided the outcome.
func (c *compiler) logical(expr *koasyntax.LogicalExpr) (exprCode, error) {
	left, err := c.expr(expr.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.expr(expr.Right)
	if err != nil {
		return nil, err
	}
	// An "or" is decided by a truthy left operand,
	// an "and" by a falsy one.
	decidedBy := expr.Op == koalex.OrToken
	return func(ctx context.Context, fr *frame) (Value, error) {
		l, err := left(ctx, fr)
		if err != nil {
			return nil, err
		}
		if IsTruthy(l) == decidedBy {
			return Bool(decidedBy), nil
		}
		r, err := right(ctx, fr)
		if err != nil {
			return nil, err
		}
		return Bool(IsTruthy(r)), nil
	}, nil
}

func (c *compiler) table(expr *koasyntax.TableExpr) (exprCode, error) {
	type field struct {
		key   string
		value exprCode
	}
	fields := make([]field, 0, len(expr.Fields))
	for _, f := range expr.Fields {
		value, err := c.expr(f.Value)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field{f.Key, value})
	}
	return func(ctx context.Context, fr *frame) (Value, error) {
		t := NewTable()
		for _, f := range fields {
			v, err := f.value(ctx, fr)
			if err != nil {
				return nil, err
			}
			t.Set(f.key, v)
		}
		return t, nil
	}, nil
}

// property compiles the object and key of a property access.
func (c *compiler) property(object koasyntax.Expr, name string, key koasyntax.Expr) (exprCode, func(ctx context.Context, fr *frame) (string, error), error) {
	obj, err := c.expr(object)
	if err != nil {
		return nil, nil, err
	}
	if key == nil {
		return obj, func(ctx context.Context, fr *frame) (string, error) {
			return name, nil
		}, nil
	}
	k, err := c.expr(key)
	if err != nil {
		return nil, nil, err
	}
	return obj, func(ctx context.Context, fr *frame) (string, error) {
		v, err := k(ctx, fr)
		if err != nil {
			return "", err
		}
		return displayString(v), nil
	}, nil
}

// tableOperand evaluates the object of a property access.
func tableOperand(ctx context.Context, fr *frame, line int, obj exprCode) (*Table, error) {
	v, err := obj(ctx, fr)
	if err != nil {
		return nil, err
	}
	t, ok := v.(*Table)
	if !ok {
		return nil, &TypeError{Line: line, Expected: []Type{TypeTable}, Got: TypeOf(v)}
	}
	return t, nil
}

func (c *compiler) get(expr *koasyntax.GetExpr) (exprCode, error) {
	line := expr.Pos.Line
	obj, key, err := c.property(expr.Object, expr.Name, expr.Key)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, fr *frame) (Value, error) {
		t, err := tableOperand(ctx, fr, line, obj)
		if err != nil {
			return nil, err
		}
		k, err := key(ctx, fr)
		if err != nil {
			return nil, err
		}
		v := t.GetOrNull(k)
		fr.receiver = t
		return v, nil
	}, nil
}

func (c *compiler) set(expr *koasyntax.SetExpr) (exprCode, error) {
	line := expr.Pos.Line
	obj, key, err := c.property(expr.Object, expr.Name, expr.Key)
	if err != nil {
		return nil, err
	}

	// update computes the new value from the old one.
	var update func(ctx context.Context, fr *frame, old Value) (Value, error)
	switch expr.Op {
	case koalex.AssignToken:
		value, err := c.expr(expr.Value)
		if err != nil {
			return nil, err
		}
		update = func(ctx context.Context, fr *frame, old Value) (Value, error) {
			return value(ctx, fr)
		}
	case koalex.IncrementToken, koalex.DecrementToken:
		delta := stepDelta(expr.Op)
		update = func(ctx context.Context, fr *frame, old Value) (Value, error) {
			return step(line, old, delta)
		}
	default:
		op, ok := compoundOperator(expr.Op)
		if !ok {
			return nil, fmt.Errorf("line %d: unhandled assignment %v", line, expr.Op)
		}
		value, err := c.expr(expr.Value)
		if err != nil {
			return nil, err
		}
		update = func(ctx context.Context, fr *frame, old Value) (Value, error) {
			return arithmetic(ctx, fr, line, op, old, value)
		}
	}
	plain := expr.Op == koalex.AssignToken

	return func(ctx context.Context, fr *frame) (Value, error) {
		t, err := tableOperand(ctx, fr, line, obj)
		if err != nil {
			return nil, err
		}
		k, err := key(ctx, fr)
		if err != nil {
			return nil, err
		}
		var old Value = Null
		if !plain {
			old = t.GetOrNull(k)
		}
		v, err := update(ctx, fr, old)
		if err != nil {
			return nil, err
		}
		t.Set(k, v)
		fr.receiver = t
		return v, nil
	}, nil
}

func (c *compiler) call(expr *koasyntax.CallExpr) (exprCode, error) {
	line := expr.Pos.Line
	callee, err := c.expr(expr.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]exprCode, 0, len(expr.Args))
	for _, arg := range expr.Args {
		a, err := c.expr(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}

	return func(ctx context.Context, fr *frame) (Value, error) {
		v, err := callee(ctx, fr)
		if err != nil {
			return nil, err
		}
		f, err := callable(line, v)
		if err != nil {
			return nil, err
		}
		if err := checkArity(line, f, len(args)); err != nil {
			return nil, err
		}
		self := fr.receiver
		argValues := make([]Value, len(args))
		for i, a := range args {
			argValues[i], err = a(ctx, fr)
			if err != nil {
				return nil, err
			}
		}
		result, err := f.Call(ctx, self, argValues)
		fr.receiver = nil
		if err != nil {
			return nil, atLine(line, err)
		}
		if result == nil {
			result = Null
		}
		return result, nil
	}, nil
}
