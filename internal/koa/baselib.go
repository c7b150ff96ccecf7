// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koa

import (
	"context"
	"fmt"
	"strings"
)

// baseFunctions returns the host functions installed in every namespace.
func (s *Session) baseFunctions() map[string]Function {
	return map[string]Function{
		"print":        NewFunction("print", Variadic, s.print),
		"setMetatable": NewFunction("setMetatable", 2, setMetatable),
		"getMetatable": NewFunction("getMetatable", 1, getMetatable),
		"time":         NewFunction("time", 0, s.time),
	}
}

// print writes the string forms of its arguments to standard output
// without separators, followed by a newline.
func (s *Session) print(ctx context.Context, self *Table, args []Value) (Value, error) {
	sb := new(strings.Builder)
	for _, arg := range args {
		str, err := ToString(ctx, arg)
		if err != nil {
			return nil, err
		}
		sb.WriteString(str)
	}
	sb.WriteString("\n")

	s.outMu.Lock()
	defer s.outMu.Unlock()
	if _, err := s.stdout.Write([]byte(sb.String())); err != nil {
		return nil, fmt.Errorf("print: %w", err)
	}
	return Null, nil
}

func setMetatable(ctx context.Context, self *Table, args []Value) (Value, error) {
	t, ok := args[0].(*Table)
	if !ok {
		return nil, ArgTypeError(args[0], TypeTable)
	}
	switch mt := args[1].(type) {
	case *Table:
		t.SetMetatable(mt)
	case nil, nullValue:
		t.SetMetatable(nil)
	default:
		return nil, ArgTypeError(args[1], TypeTable, TypeNull)
	}
	return Null, nil
}

func getMetatable(ctx context.Context, self *Table, args []Value) (Value, error) {
	t, ok := args[0].(*Table)
	if !ok {
		return nil, ArgTypeError(args[0], TypeTable)
	}
	if mt := t.Metatable(); mt != nil {
		return mt, nil
	}
	return Null, nil
}

// time returns the number of seconds since the Unix epoch
// with millisecond precision.
func (s *Session) time(ctx context.Context, self *Table, args []Value) (Value, error) {
	return Number(float64(s.now().UnixMilli()) / 1000), nil
}
