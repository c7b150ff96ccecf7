// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koa

import (
	"context"
	"unicode/utf8"
)

// NewString returns a new string table for s
// with a metatable of its own.
func NewString(s string) *Table {
	return newString(s, newStringMetatable())
}

func newString(s string, meta *Table) *Table {
	t := &Table{text: &s, meta: meta}
	t.Set("length", NewFunction("length", 0, func(ctx context.Context, self *Table, args []Value) (Value, error) {
		return Number(utf8.RuneCountInString(s)), nil
	}))
	return t
}

// newStringMetatable returns the metatable used for string tables.
// Its __add hook concatenates the string form of its argument
// and returns a new string sharing the receiver's metatable.
func newStringMetatable() *Table {
	meta := NewTable()
	meta.Set(HookAdd.String(), NewFunction(HookAdd.String(), 1, func(ctx context.Context, self *Table, args []Value) (Value, error) {
		rhs, err := ToString(ctx, args[0])
		if err != nil {
			return nil, err
		}
		result := StringValue(self) + rhs
		if self == nil || self.meta == nil {
			return NewString(result), nil
		}
		return newString(result, self.meta), nil
	}))
	return meta
}

// IsString reports whether v is a string table.
func IsString(v Value) bool {
	t, ok := v.(*Table)
	return ok && t.text != nil
}

// StringValue returns the text of a string table.
// For any other table, it returns the empty string.
func StringValue(t *Table) string {
	if t == nil || t.text == nil {
		return ""
	}
	return *t.text
}
