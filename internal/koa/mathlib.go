// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koa

import (
	"context"
	"math"
)

// MathTableName is the global name of the math library.
const MathTableName = "Math"

// NewMathTable returns a new math library table.
// random supplies the results of Math.random
// and must return values in [0, 1).
func NewMathTable(random func() float64) *Table {
	t := NewTable()
	t.Set("PI", Number(math.Pi))
	t.Set("E", Number(math.E))

	unary := map[string]func(float64) float64{
		"round":     roundHalfUp,
		"floor":     math.Floor,
		"ceil":      math.Ceil,
		"sin":       math.Sin,
		"cos":       math.Cos,
		"sqrt":      math.Sqrt,
		"atan":      math.Atan,
		"toDegrees": func(x float64) float64 { return x * 180 / math.Pi },
		"toRadians": func(x float64) float64 { return x * math.Pi / 180 },
		"abs":       math.Abs,
		"exp":       math.Exp,
		"log":       math.Log,
	}
	for name, f := range unary {
		t.Set(name, NewFunction(name, 1, func(ctx context.Context, self *Table, args []Value) (Value, error) {
			x, err := numberArgs(args)
			if err != nil {
				return nil, err
			}
			return Number(f(x[0])), nil
		}))
	}

	binary := map[string]func(float64, float64) float64{
		"pow": math.Pow,
		"min": math.Min,
		"max": math.Max,
	}
	for name, f := range binary {
		t.Set(name, NewFunction(name, 2, func(ctx context.Context, self *Table, args []Value) (Value, error) {
			x, err := numberArgs(args)
			if err != nil {
				return nil, err
			}
			return Number(f(x[0], x[1])), nil
		}))
	}

	t.Set("clamp", NewFunction("clamp", 3, mathClamp))
	t.Set("random", NewFunction("random", 0, func(ctx context.Context, self *Table, args []Value) (Value, error) {
		return Number(random()), nil
	}))
	return t
}

// roundHalfUp rounds x to the nearest integer,
// rounding halves towards positive infinity.
func roundHalfUp(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return math.Floor(x + 0.5)
}

// mathClamp returns the value argument limited to the range [min, max].
// The bound that was hit is returned as passed.
func mathClamp(ctx context.Context, self *Table, args []Value) (Value, error) {
	x, err := numberArgs(args)
	if err != nil {
		return nil, err
	}
	switch {
	case x[0] < x[1]:
		return args[1], nil
	case x[0] > x[2]:
		return args[2], nil
	default:
		return args[0], nil
	}
}

// numberArgs requires every argument to be a [Number].
func numberArgs(args []Value) ([]float64, error) {
	x := make([]float64, len(args))
	for i, arg := range args {
		n, ok := arg.(Number)
		if !ok {
			return nil, ArgTypeError(arg, TypeNumber)
		}
		x[i] = float64(n)
	}
	return x, nil
}
