// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koa

import (
	"fmt"
	"iter"
	"maps"
	"slices"
)

// maxMetaChain is the maximum number of metatables
// followed during a single lookup.
// Longer (or cyclic) chains are treated as a miss.
const maxMetaChain = 100

// Table is a mapping of strings to values
// with an optional metatable.
// The zero value is an empty table.
//
// On a lookup miss, the metatable is consulted as if it were a prototype:
// its own entries (and then its metatable's, and so on) supply the value.
// The metatable's entries with names from [Hook] implement operators.
type Table struct {
	entries map[string]Value
	meta    *Table

	// text is non-nil for string tables.
	text *string
}

// NewTable returns a new empty table.
func NewTable() *Table {
	return new(Table)
}

func (tab *Table) Type() Type {
	return TypeTable
}

// Len returns the number of entries in the table,
// not counting those inherited from the metatable.
func (tab *Table) Len() int {
	if tab == nil {
		return 0
	}
	return len(tab.entries)
}

// RawGet returns the table's own value for key
// without consulting the metatable.
func (tab *Table) RawGet(key string) Value {
	if tab == nil {
		return Null
	}
	v, ok := tab.entries[key]
	if !ok {
		return Null
	}
	return v
}

// Get returns the value for key,
// falling back to the metatable chain if the table has no such entry.
// found is false if no table in the chain has the key.
func (tab *Table) Get(key string) (v Value, found bool) {
	for range maxMetaChain {
		if tab == nil {
			return Null, false
		}
		if v, ok := tab.entries[key]; ok {
			return v, true
		}
		tab = tab.meta
	}
	return Null, false
}

// GetOrNull returns the value for key as in [*Table.Get],
// or [Null] if it is not present.
func (tab *Table) GetOrNull(key string) Value {
	v, _ := tab.Get(key)
	return v
}

// Set sets the table's own entry for key.
// Setting a key to [Null] removes it.
func (tab *Table) Set(key string, v Value) {
	if IsNull(v) {
		delete(tab.entries, key)
		return
	}
	if tab.entries == nil {
		tab.entries = make(map[string]Value)
	}
	tab.entries[key] = v
}

// Metatable returns the table's metatable or nil if it has none.
func (tab *Table) Metatable() *Table {
	if tab == nil {
		return nil
	}
	return tab.meta
}

// SetMetatable replaces the table's metatable.
// Passing nil removes the metatable.
func (tab *Table) SetMetatable(mt *Table) {
	tab.meta = mt
}

// All returns an iterator over the table's own entries, sorted by key.
func (tab *Table) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if tab == nil {
			return
		}
		for _, k := range slices.Sorted(maps.Keys(tab.entries)) {
			if !yield(k, tab.entries[k]) {
				return
			}
		}
	}
}

// Hook is an enumeration of the metatable entries
// that implement operators and conversions.
type Hook int

// Hooks.
const (
	HookToString Hook = iota // __toString
	HookAdd                  // __add
	HookSubtract             // __subtract
	HookMultiply             // __multiply
	HookDivide               // __divide
	HookRemainder            // __remainder
	HookCall                 // __call
)

var hookNames = [...]string{
	HookToString:  "__toString",
	HookAdd:       "__add",
	HookSubtract:  "__subtract",
	HookMultiply:  "__multiply",
	HookDivide:    "__divide",
	HookRemainder: "__remainder",
	HookCall:      "__call",
}

// String returns the metatable key for the hook.
func (h Hook) String() string {
	if h < 0 || int(h) >= len(hookNames) {
		return fmt.Sprintf("Hook(%d)", int(h))
	}
	return hookNames[h]
}

// Hook returns the function that implements h for the table
// or nil if the table's metatable chain does not provide one.
// An entry that is not a function does not count as a hook.
func (tab *Table) Hook(h Hook) Function {
	f, _ := tab.Metatable().GetOrNull(h.String()).(Function)
	return f
}

// HasHook reports whether [*Table.Hook] would return a function for h.
func (tab *Table) HasHook(h Hook) bool {
	return tab.Hook(h) != nil
}
