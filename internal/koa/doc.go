// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

// Package koa compiles and runs Koa scripts.
//
// [Compile] turns a validated syntax tree into a [Unit]:
// every statement and expression is translated once into a Go closure,
// so running a script never revisits the tree.
// [Load] binds a unit to a [Globals] namespace
// and [*Script.Run] executes it.
//
// Most programs use a [Session],
// which runs the whole pipeline from source text,
// installs the host functions (print, setMetatable, getMetatable, time, Math, require),
// reports diagnostics, and caches required modules.
//
// # Values
//
// A [Value] is [Null], a [Bool], a [Number], a [*Table], or a [Function].
// Strings are tables that carry text:
// their metatable provides concatenation through __add
// and each has a length method.
//
// A table's metatable acts as a prototype for missing keys
// and provides operator hooks (see [Hook]).
//
// # Calls
//
// Reading or writing a property records the table as the pending receiver.
// The next call passes it to the callee, where it is available as self.
package koa
