// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koa

// scope tracks the local variables of a single function during compilation.
// A new scope is used for every function literal,
// so locals of enclosing functions are never visible.
type scope struct {
	depth    int
	locals   []local
	numSlots int
}

type local struct {
	name  string
	depth int
	slot  int
}

// newTopLevelScope returns the scope for a script.
// Declarations outside any block are globals.
func newTopLevelScope() *scope {
	return new(scope)
}

// newFunctionScope returns the scope for a function body
// with params bound to the first slots.
func newFunctionScope(params []string) *scope {
	s := &scope{depth: 1}
	for _, p := range params {
		s.declare(p)
	}
	return s
}

func (s *scope) begin() {
	s.depth++
}

// end leaves the innermost block,
// discarding the locals declared in it.
func (s *scope) end() {
	s.depth--
	n := len(s.locals)
	for n > 0 && s.locals[n-1].depth > s.depth {
		n--
	}
	s.locals = s.locals[:n]
}

// isGlobal reports whether a declaration at the current depth
// creates a global binding.
func (s *scope) isGlobal() bool {
	return s.depth == 0
}

// declare allocates the next free slot for a local and returns it.
// It must not be called when [scope.isGlobal] is true.
func (s *scope) declare(name string) int {
	slot := 0
	if n := len(s.locals); n > 0 {
		slot = s.locals[n-1].slot + 1
	}
	s.locals = append(s.locals, local{name: name, depth: s.depth, slot: slot})
	s.numSlots = max(s.numSlots, slot+1)
	return slot
}

// resolve returns the slot of the innermost local named name.
// ok is false if name refers to a global.
func (s *scope) resolve(name string) (slot int, ok bool) {
	for i := len(s.locals) - 1; i >= 0; i-- {
		if s.locals[i].name == name {
			return s.locals[i].slot, true
		}
	}
	return 0, false
}
