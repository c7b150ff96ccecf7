// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koa

import (
	"errors"
	"fmt"
	"strings"
)

// TypeError is returned when an operation receives a value
// of a type it cannot operate on.
type TypeError struct {
	// Line is the source line of the failing operation.
	// Zero means the line is not known yet.
	Line     int
	Expected []Type
	Got      Type
	// Hook is set when the value was a table
	// but its metatable did not provide the needed hook.
	Hook    Hook
	HasHook bool
}

func (e *TypeError) Error() string {
	sb := new(strings.Builder)
	writeLinePrefix(sb, e.Line)
	sb.WriteString("wrong type: expected ")
	for i, t := range e.Expected {
		if i > 0 {
			sb.WriteString(" or ")
		}
		sb.WriteString(t.String())
	}
	fmt.Fprintf(sb, ", got %v", e.Got)
	if e.HasHook {
		fmt.Fprintf(sb, " without %v", e.Hook)
	}
	return sb.String()
}

func (e *TypeError) sourceLine() int { return e.Line }

// ArgTypeError returns a [*TypeError] for a host function argument.
// The line is filled in by the caller.
func ArgTypeError(got Value, expected ...Type) error {
	return &TypeError{Expected: expected, Got: TypeOf(got)}
}

// ArityError is returned when a function is called
// with the wrong number of arguments.
type ArityError struct {
	Line     int
	Expected int
	Got      int
}

func (e *ArityError) Error() string {
	sb := new(strings.Builder)
	writeLinePrefix(sb, e.Line)
	fmt.Fprintf(sb, "wrong number of arguments: expected %d, got %d", e.Expected, e.Got)
	return sb.String()
}

func (e *ArityError) sourceLine() int { return e.Line }

// RuntimeError is an error raised by a host function or the runtime
// annotated with the line of the call that raised it.
type RuntimeError struct {
	Line int
	Err  error
}

func (e *RuntimeError) Error() string {
	sb := new(strings.Builder)
	writeLinePrefix(sb, e.Line)
	sb.WriteString(e.Err.Error())
	return sb.String()
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func (e *RuntimeError) sourceLine() int { return e.Line }

func writeLinePrefix(sb *strings.Builder, line int) {
	if line > 0 {
		fmt.Fprintf(sb, "[line %d] ", line)
	}
	sb.WriteString("Error: ")
}

// lineError is implemented by errors that carry a source line.
type lineError interface {
	error
	sourceLine() int
}

// errStackOverflow is returned when calls nest deeper than maxCallDepth.
var errStackOverflow = errors.New("stack overflow")

// maxCallDepth is the maximum number of nested closure calls
// for a single global environment.
const maxCallDepth = 10000

// atLine attributes err to the given source line.
// Errors that already carry a line are returned unchanged,
// except for type errors from host functions, which get the line filled in.
// Errors that were already reported are returned unchanged.
func atLine(line int, err error) error {
	if err == nil || isReported(err) {
		return err
	}
	var te *TypeError
	if errors.As(err, &te) && te.Line == 0 {
		te.Line = line
		return err
	}
	var le lineError
	if errors.As(err, &le) && le.sourceLine() > 0 {
		return err
	}
	var ae *ArityError
	if errors.As(err, &ae) && ae.Line == 0 {
		ae.Line = line
		return err
	}
	return &RuntimeError{Line: line, Err: err}
}

// checkArity returns an [*ArityError] if f cannot be called with n arguments.
func checkArity(line int, f Function, n int) error {
	if want := f.Arity(); want >= 0 && want != n {
		return &ArityError{Line: line, Expected: want, Got: n}
	}
	return nil
}

// reportedError wraps an error that has already been printed
// so that enclosing scripts do not print it again.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func isReported(err error) bool {
	return errors.As(err, new(reportedError))
}

// markReported wraps err so that [isReported] returns true for it.
func markReported(err error) error {
	if err == nil || isReported(err) {
		return err
	}
	return reportedError{err}
}

// IsReported reports whether err (returned from [*Session.Exec] and friends)
// has already been written to the session's diagnostic output.
func IsReported(err error) bool {
	return isReported(err)
}
