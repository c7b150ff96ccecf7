// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koa

import (
	"context"
	"fmt"
	"math"
	"strconv"
)

// Type is an enumeration of Koa data types.
type Type int

// Value types.
const (
	TypeNull Type = iota
	TypeBool
	TypeNumber
	TypeTable
	TypeFunction
)

// String returns the name of the type.
func (tp Type) String() string {
	switch tp {
	case TypeNull:
		return "Null"
	case TypeBool:
		return "Bool"
	case TypeNumber:
		return "Number"
	case TypeTable:
		return "Table"
	case TypeFunction:
		return "Function"
	default:
		return fmt.Sprintf("Type(%d)", int(tp))
	}
}

// Value is a Koa value.
// The concrete type is one of [Null], [Bool], [Number], [*Table], or a [Function].
// A nil Value is treated as [Null].
type Value interface {
	Type() Type
}

type nullValue struct{}

// Null is the only value of [TypeNull].
var Null Value = nullValue{}

func (nullValue) Type() Type { return TypeNull }

func (nullValue) String() string { return "null" }

// Bool is a boolean value.
type Bool bool

func (Bool) Type() Type { return TypeBool }

// Number is a double-precision floating-point value.
type Number float64

func (Number) Type() Type { return TypeNumber }

// String formats the number the way print does.
func (n Number) String() string {
	return formatNumber(float64(n))
}

func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	case f == 0:
		return "0"
	case math.Abs(f) >= 1e-6 && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// TypeOf returns the type of v.
func TypeOf(v Value) Type {
	if v == nil {
		return TypeNull
	}
	return v.Type()
}

// IsNull reports whether v is [Null].
func IsNull(v Value) bool { return TypeOf(v) == TypeNull }

// IsBool reports whether v is a [Bool].
func IsBool(v Value) bool { return TypeOf(v) == TypeBool }

// IsNumber reports whether v is a [Number].
func IsNumber(v Value) bool { return TypeOf(v) == TypeNumber }

// IsTable reports whether v is a [*Table].
func IsTable(v Value) bool { return TypeOf(v) == TypeTable }

// IsFunction reports whether v is a [Function].
func IsFunction(v Value) bool { return TypeOf(v) == TypeFunction }

// ToBool returns the payload of a [Bool].
// It panics if v is not a Bool.
func ToBool(v Value) bool { return bool(v.(Bool)) }

// ToNumber returns the payload of a [Number].
// It panics if v is not a Number.
func ToNumber(v Value) float64 { return float64(v.(Number)) }

// ToTable returns v as a [*Table].
// It panics if v is not a table.
func ToTable(v Value) *Table { return v.(*Table) }

// ToFunction returns v as a [Function].
// It panics if v is not a function.
func ToFunction(v Value) Function { return v.(Function) }

// IsTruthy reports whether v counts as true in a condition.
// Only [Null] and false are falsy.
func IsTruthy(v Value) bool {
	switch v := v.(type) {
	case nil, nullValue:
		return false
	case Bool:
		return bool(v)
	default:
		return true
	}
}

// Equal reports whether two values are equal.
// Null equals Null, booleans and numbers compare by value,
// and tables and functions compare by identity.
func Equal(v1, v2 Value) bool {
	t1, t2 := TypeOf(v1), TypeOf(v2)
	if t1 != t2 {
		return false
	}
	switch t1 {
	case TypeNull:
		return true
	default:
		return v1 == v2
	}
}

// ToString converts v to a string the way print does:
// tables with a __toString hook are converted by calling the hook.
func ToString(ctx context.Context, v Value) (string, error) {
	return toString(ctx, v, 0)
}

func toString(ctx context.Context, v Value, depth int) (string, error) {
	t, ok := v.(*Table)
	if !ok || t.text != nil {
		return displayString(v), nil
	}
	hook := t.Hook(HookToString)
	if hook == nil {
		return displayString(v), nil
	}
	if depth >= maxMetaChain {
		return "", fmt.Errorf("%v loop", HookToString)
	}
	if err := checkArity(0, hook, 0); err != nil {
		return "", err
	}
	result, err := hook.Call(ctx, t, nil)
	if err != nil {
		return "", err
	}
	return toString(ctx, result, depth+1)
}

// displayString converts v to a string without calling any hooks.
func displayString(v Value) string {
	switch v := v.(type) {
	case nil, nullValue:
		return "null"
	case Bool:
		return strconv.FormatBool(bool(v))
	case Number:
		return v.String()
	case *Table:
		if v.text != nil {
			return *v.text
		}
		return "table"
	case Function:
		return "function"
	default:
		return fmt.Sprint(v)
	}
}
