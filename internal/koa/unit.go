// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koa

import (
	"context"
	"fmt"
)

// Unit is the executable form of a script produced by [Compile].
// A Unit can be loaded into any number of global environments.
type Unit struct {
	// ID uniquely identifies the unit.
	ID string
	// Name is the name of the source the unit was compiled from.
	Name string
	// Functions lists the units of the function literals in the script,
	// in the order they appear in the source.
	Functions []*FunctionUnit

	numSlots int
	body     []stmtCode
}

// FunctionUnit is the executable form of a single function literal.
// Evaluating the literal binds the unit to the current global environment.
type FunctionUnit struct {
	ID     string
	Line   int
	Params []string

	numSlots int
	body     []stmtCode
}

func (fu *FunctionUnit) String() string {
	return fmt.Sprintf("function@%d(%d)", fu.Line, len(fu.Params))
}

// frame is the activation record of a running unit.
type frame struct {
	globals *Globals
	slots   []Value
	// self is the receiver the unit was called with.
	self *Table
	// receiver is the table most recently accessed with property syntax,
	// to be passed as the receiver of the next call.
	receiver *Table
}

func newFrame(g *Globals, numSlots int, self *Table) *frame {
	fr := &frame{
		globals: g,
		slots:   make([]Value, numSlots),
		self:    self,
	}
	for i := range fr.slots {
		fr.slots[i] = Null
	}
	return fr
}

// runBody executes statements until one returns.
func runBody(ctx context.Context, fr *frame, body []stmtCode) (Value, error) {
	for _, stmt := range body {
		fl, v, err := stmt(ctx, fr)
		if err != nil {
			return Null, err
		}
		if fl == flowReturn {
			return v, nil
		}
	}
	return Null, nil
}

// Script is a [Unit] bound to a global environment.
type Script struct {
	unit    *Unit
	globals *Globals
}

// Load binds a compiled unit to a global environment.
func Load(u *Unit, g *Globals) *Script {
	return &Script{unit: u, globals: g}
}

// Run executes the script's top-level statements.
// The first runtime error stops execution and is returned.
func (s *Script) Run(ctx context.Context) error {
	fr := newFrame(s.globals, s.unit.numSlots, nil)
	_, err := runBody(ctx, fr, s.unit.body)
	return err
}
