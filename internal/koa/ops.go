// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koa

import (
	"context"
	"math"

	"koa.256lights.llc/pkg/internal/koalex"
)

// arithmeticOperator returns the hook for a binary arithmetic operator token.
func arithmeticOperator(k koalex.TokenKind) (Hook, bool) {
	switch k {
	case koalex.AddToken:
		return HookAdd, true
	case koalex.SubToken:
		return HookSubtract, true
	case koalex.MulToken:
		return HookMultiply, true
	case koalex.DivToken:
		return HookDivide, true
	case koalex.ModToken:
		return HookRemainder, true
	default:
		return 0, false
	}
}

// compoundOperator returns the hook for a compound assignment token like "+=".
func compoundOperator(k koalex.TokenKind) (Hook, bool) {
	switch k {
	case koalex.AddAssignToken:
		return HookAdd, true
	case koalex.SubAssignToken:
		return HookSubtract, true
	case koalex.MulAssignToken:
		return HookMultiply, true
	case koalex.DivAssignToken:
		return HookDivide, true
	case koalex.ModAssignToken:
		return HookRemainder, true
	default:
		return 0, false
	}
}

func numberArithmetic(op Hook, a, b float64) float64 {
	switch op {
	case HookAdd:
		return a + b
	case HookSubtract:
		return a - b
	case HookMultiply:
		return a * b
	case HookDivide:
		return a / b
	case HookRemainder:
		return math.Mod(a, b)
	default:
		panic("not an arithmetic hook")
	}
}

// arithmetic applies op to left and the result of right.
// Numbers are combined directly.
// For a table, the hook is resolved before right is evaluated
// and called with the table as its receiver.
func arithmetic(ctx context.Context, fr *frame, line int, op Hook, left Value, right exprCode) (Value, error) {
	switch l := left.(type) {
	case Number:
		r, err := right(ctx, fr)
		if err != nil {
			return nil, err
		}
		rn, ok := r.(Number)
		if !ok {
			return nil, &TypeError{Line: line, Expected: []Type{TypeNumber}, Got: TypeOf(r)}
		}
		return Number(numberArithmetic(op, float64(l), float64(rn))), nil
	case *Table:
		hook := l.Hook(op)
		if hook == nil {
			return nil, &TypeError{
				Line:     line,
				Expected: []Type{TypeNumber, TypeTable},
				Got:      TypeTable,
				Hook:     op,
				HasHook:  true,
			}
		}
		r, err := right(ctx, fr)
		if err != nil {
			return nil, err
		}
		if err := checkArity(line, hook, 1); err != nil {
			return nil, err
		}
		result, err := hook.Call(ctx, l, []Value{r})
		if err != nil {
			return nil, atLine(line, err)
		}
		if result == nil {
			result = Null
		}
		return result, nil
	default:
		return nil, &TypeError{Line: line, Expected: []Type{TypeNumber, TypeTable}, Got: TypeOf(left)}
	}
}

func stepDelta(k koalex.TokenKind) Number {
	if k == koalex.DecrementToken {
		return -1
	}
	return 1
}

// step implements "++" and "--".
func step(line int, old Value, delta Number) (Value, error) {
	n, err := numberOperand(line, old)
	if err != nil {
		return nil, err
	}
	return Number(n) + delta, nil
}

func numberOperand(line int, v Value) (float64, error) {
	n, ok := v.(Number)
	if !ok {
		return 0, &TypeError{Line: line, Expected: []Type{TypeNumber}, Got: TypeOf(v)}
	}
	return float64(n), nil
}

func comparisonFunc(k koalex.TokenKind) func(a, b float64) bool {
	switch k {
	case koalex.LessToken:
		return func(a, b float64) bool { return a < b }
	case koalex.LessEqualToken:
		return func(a, b float64) bool { return a <= b }
	case koalex.GreaterToken:
		return func(a, b float64) bool { return a > b }
	case koalex.GreaterEqualToken:
		return func(a, b float64) bool { return a >= b }
	default:
		panic("not a comparison operator")
	}
}

// callable returns the function to call for a callee value.
// A table is callable through its __call hook.
func callable(line int, v Value) (Function, error) {
	switch v := v.(type) {
	case Function:
		return v, nil
	case *Table:
		if hook := v.Hook(HookCall); hook != nil {
			return hook, nil
		}
		return nil, &TypeError{
			Line:     line,
			Expected: []Type{TypeFunction, TypeTable},
			Got:      TypeTable,
			Hook:     HookCall,
			HasHook:  true,
		}
	default:
		return nil, &TypeError{Line: line, Expected: []Type{TypeFunction, TypeTable}, Got: TypeOf(v)}
	}
}
