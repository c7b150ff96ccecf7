// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koa

import (
	"iter"
	"maps"
	"slices"
)

// Globals is a global namespace shared by a script
// and every function created while it runs.
// Globals is not safe for concurrent use.
type Globals struct {
	bindings map[string]Value
	filename string
	session  *Session

	// stringMeta is the metatable of string literals.
	stringMeta *Table
	// depth is the number of active closure calls.
	depth int
}

// NewGlobals returns an empty namespace with no host functions.
// Most callers should use [*Session.NewGlobals] instead.
func NewGlobals() *Globals {
	return &Globals{
		bindings:   make(map[string]Value),
		stringMeta: newStringMetatable(),
	}
}

// Filename returns the name of the script the namespace was created for.
// Relative require paths are resolved against its directory.
func (g *Globals) Filename() string {
	return g.filename
}

// Get returns the value bound to name or [Null] if there is no binding.
func (g *Globals) Get(name string) Value {
	v, ok := g.bindings[name]
	if !ok {
		return Null
	}
	return v
}

// Has reports whether name has a binding.
func (g *Globals) Has(name string) bool {
	_, ok := g.bindings[name]
	return ok
}

// Set binds name to v, replacing any existing binding.
// Binding a name to [Null] removes it.
func (g *Globals) Set(name string, v Value) {
	if IsNull(v) {
		delete(g.bindings, name)
		return
	}
	if g.bindings == nil {
		g.bindings = make(map[string]Value)
	}
	g.bindings[name] = v
}

// SetFunctions binds each function under its name.
func (g *Globals) SetFunctions(funcs map[string]Function) {
	for name, f := range funcs {
		g.Set(name, f)
	}
}

// All returns an iterator over the bindings, sorted by name.
func (g *Globals) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range slices.Sorted(maps.Keys(g.bindings)) {
			if !yield(k, g.bindings[k]) {
				return
			}
		}
	}
}

// NewString returns a string table that shares the namespace's string metatable.
func (g *Globals) NewString(s string) *Table {
	return g.newString(s)
}

func (g *Globals) newString(s string) *Table {
	if g.stringMeta == nil {
		g.stringMeta = newStringMetatable()
	}
	return newString(s, g.stringMeta)
}
