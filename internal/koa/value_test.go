// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koa

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{nil, false},
		{Null, false},
		{Bool(false), false},
		{Bool(true), true},
		{Number(0), true},
		{Number(math.NaN()), true},
		{NewTable(), true},
		{NewString(""), true},
		{NewFunction("f", 0, nil), true},
	}
	for _, test := range tests {
		if got := IsTruthy(test.v); got != test.want {
			t.Errorf("IsTruthy(%s) = %t; want %t", displayString(test.v), got, test.want)
		}
	}
}

func TestEqual(t *testing.T) {
	tab := NewTable()
	str := NewString("a")
	f := NewFunction("f", 0, nil)
	tests := []struct {
		name string
		v1   Value
		v2   Value
		want bool
	}{
		{"NilNull", nil, Null, true},
		{"NullFalse", Null, Bool(false), false},
		{"SameNumber", Number(1), Number(1), true},
		{"DifferentNumbers", Number(1), Number(2), false},
		{"NaN", Number(math.NaN()), Number(math.NaN()), false},
		{"NumberBool", Number(1), Bool(true), false},
		{"SameTable", tab, tab, true},
		{"DifferentTables", tab, NewTable(), false},
		{"SameString", str, str, true},
		{"EqualStrings", str, NewString("a"), false},
		{"SameFunction", f, f, true},
		{"DifferentFunctions", f, NewFunction("f", 0, nil), false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Equal(test.v1, test.v2); got != test.want {
				t.Errorf("Equal(...) = %t; want %t", got, test.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		f    float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{3, "3"},
		{-42, "-42"},
		{0.25, "0.25"},
		{1.0 / 3, "0.3333333333333333"},
		{1700000000.5, "1700000000.5"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1e-7, "1e-07"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{math.NaN(), "NaN"},
	}
	for _, test := range tests {
		if got := formatNumber(test.f); got != test.want {
			t.Errorf("formatNumber(%g) = %q; want %q", test.f, got, test.want)
		}
	}
}

func TestTableGet(t *testing.T) {
	proto := NewTable()
	proto.Set("inherited", Number(1))
	proto.Set("shadowed", Number(2))
	tab := NewTable()
	tab.Set("shadowed", Number(3))
	tab.SetMetatable(proto)

	tests := []struct {
		key       string
		want      Value
		wantFound bool
	}{
		{"inherited", Number(1), true},
		{"shadowed", Number(3), true},
		{"missing", Null, false},
	}
	for _, test := range tests {
		got, found := tab.Get(test.key)
		if got != test.want || found != test.wantFound {
			t.Errorf("tab.Get(%q) = %s, %t; want %s, %t",
				test.key, displayString(got), found, displayString(test.want), test.wantFound)
		}
	}
	if got := tab.RawGet("inherited"); got != Null {
		t.Errorf("tab.RawGet(\"inherited\") = %s; want null", displayString(got))
	}
	if got, want := tab.Len(), 1; got != want {
		t.Errorf("tab.Len() = %d; want %d", got, want)
	}
}

func TestTableGetCycle(t *testing.T) {
	a := NewTable()
	b := NewTable()
	a.SetMetatable(b)
	b.SetMetatable(a)
	if got, found := a.Get("x"); found || got != Null {
		t.Errorf("a.Get(\"x\") = %s, %t; want null, false", displayString(got), found)
	}
}

func TestTableSetNull(t *testing.T) {
	tab := NewTable()
	tab.Set("x", Number(1))
	tab.Set("x", Null)
	if got := tab.Len(); got != 0 {
		t.Errorf("after setting x to null, tab.Len() = %d; want 0", got)
	}
	tab.Set("y", nil)
	if got := tab.Len(); got != 0 {
		t.Errorf("after setting y to nil, tab.Len() = %d; want 0", got)
	}
}

func TestTableAll(t *testing.T) {
	tab := NewTable()
	tab.Set("b", Number(2))
	tab.Set("a", Number(1))
	tab.Set("c", Bool(true))

	var keys []string
	for k := range tab.All() {
		keys = append(keys, k)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, keys); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
}

func TestHook(t *testing.T) {
	f := NewFunction("add", 1, nil)
	meta := NewTable()
	meta.Set(HookAdd.String(), f)
	meta.Set(HookCall.String(), Number(1))
	tab := NewTable()
	tab.SetMetatable(meta)

	if got := tab.Hook(HookAdd); got != f {
		t.Errorf("tab.Hook(HookAdd) = %v; want %v", got, f)
	}
	if tab.HasHook(HookCall) {
		t.Error("tab.HasHook(HookCall) = true for a non-function entry")
	}
	if NewTable().HasHook(HookAdd) {
		t.Error("NewTable().HasHook(HookAdd) = true")
	}
	// Hooks are only looked up in the metatable.
	tab.Set(HookSubtract.String(), f)
	if tab.HasHook(HookSubtract) {
		t.Error("tab.HasHook(HookSubtract) = true for an own entry")
	}
}

func TestToString(t *testing.T) {
	ctx := context.Background()

	withHook := NewTable()
	meta := NewTable()
	meta.Set(HookToString.String(), NewFunction("__toString", 0, func(ctx context.Context, self *Table, args []Value) (Value, error) {
		return NewString("custom " + displayString(self.RawGet("n"))), nil
	}))
	withHook.SetMetatable(meta)
	withHook.Set("n", Number(7))

	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"Nil", nil, "null"},
		{"Null", Null, "null"},
		{"True", Bool(true), "true"},
		{"Number", Number(2.5), "2.5"},
		{"String", NewString("hello"), "hello"},
		{"Table", NewTable(), "table"},
		{"Function", NewFunction("f", 0, nil), "function"},
		{"Hook", withHook, "custom 7"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ToString(ctx, test.v)
			if got != test.want || err != nil {
				t.Errorf("ToString(ctx, v) = %q, %v; want %q, <nil>", got, err, test.want)
			}
		})
	}
}

func TestStringLength(t *testing.T) {
	ctx := context.Background()
	s := NewString("héllo")
	length, ok := s.RawGet("length").(Function)
	if !ok {
		t.Fatal("string has no length function")
	}
	got, err := length.Call(ctx, s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != Number(5) {
		t.Errorf("length() = %s; want 5", displayString(got))
	}
}

func TestStringConcat(t *testing.T) {
	ctx := context.Background()
	s := NewString("a")
	add := s.Hook(HookAdd)
	if add == nil {
		t.Fatal("string has no __add hook")
	}
	got, err := add.Call(ctx, s, []Value{Number(1)})
	if err != nil {
		t.Fatal(err)
	}
	result, ok := got.(*Table)
	if !ok || !IsString(result) {
		t.Fatalf("__add returned %s; want a string", displayString(got))
	}
	if got, want := StringValue(result), "a1"; got != want {
		t.Errorf("StringValue(result) = %q; want %q", got, want)
	}
	if result.Metatable() != s.Metatable() {
		t.Error("concatenated string does not share the metatable")
	}
}
