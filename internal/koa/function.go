// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koa

import "context"

// Variadic is the arity of a function that accepts any number of arguments.
const Variadic = -1

// Function is a callable Koa value.
// Implementations must be comparable,
// since functions are equal only to themselves.
type Function interface {
	Value

	// Arity returns the number of arguments the function requires
	// or [Variadic].
	// Callers check the arity before calling.
	Arity() int

	// Call invokes the function.
	// self is the implicit receiver: the table most recently accessed
	// with property syntax by the caller, or nil.
	Call(ctx context.Context, self *Table, args []Value) (Value, error)
}

// HostFunction is the signature of a Go function exposed to Koa scripts.
type HostFunction func(ctx context.Context, self *Table, args []Value) (Value, error)

// GoFunction is a [Function] implemented in Go.
type GoFunction struct {
	name  string
	arity int
	f     HostFunction
}

// NewFunction returns a new [GoFunction].
// name is only used for debugging.
func NewFunction(name string, arity int, f HostFunction) *GoFunction {
	if arity < Variadic {
		arity = Variadic
	}
	return &GoFunction{name: name, arity: arity, f: f}
}

func (f *GoFunction) Type() Type {
	return TypeFunction
}

// Name returns the name the function was created with.
func (f *GoFunction) Name() string {
	return f.name
}

func (f *GoFunction) Arity() int {
	return f.arity
}

func (f *GoFunction) Call(ctx context.Context, self *Table, args []Value) (Value, error) {
	v, err := f.f(ctx, self, args)
	if v == nil {
		v = Null
	}
	return v, err
}

// closure is a compiled function literal bound to a global environment.
// Closures capture only the globals, never the locals of the enclosing function.
type closure struct {
	unit    *FunctionUnit
	globals *Globals
}

func (c *closure) Type() Type {
	return TypeFunction
}

func (c *closure) Arity() int {
	return len(c.unit.Params)
}

func (c *closure) Call(ctx context.Context, self *Table, args []Value) (Value, error) {
	g := c.globals
	if g.depth >= maxCallDepth {
		return Null, errStackOverflow
	}
	g.depth++
	defer func() { g.depth-- }()

	fr := newFrame(g, c.unit.numSlots, self)
	copy(fr.slots[:len(c.unit.Params)], args)
	return runBody(ctx, fr, c.unit.body)
}
