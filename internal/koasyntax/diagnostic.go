// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koasyntax

import (
	"errors"
	"fmt"
	"strings"

	"koa.256lights.llc/pkg/internal/koalex"
)

// Severity is the seriousness of a [Diagnostic].
type Severity int

// Severity values.
const (
	// SeverityError prevents the program from running.
	SeverityError Severity = iota
	// SeverityWarning is informational.
	SeverityWarning
)

// String returns "Error" or "Warning".
func (sev Severity) String() string {
	switch sev {
	case SeverityError:
		return "Error"
	case SeverityWarning:
		return "Warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(sev))
	}
}

// A Diagnostic is a problem found in a source file
// by the parser or the validator.
type Diagnostic struct {
	Severity Severity
	Position koalex.Position
	// Where is the source text of the token the diagnostic refers to, if any.
	Where string
	// AtEnd is true if the diagnostic was reported at the end of input.
	AtEnd   bool
	Message string
}

// Error formats the diagnostic as
// "[line n] Error at 'where': message".
func (d *Diagnostic) Error() string {
	sb := new(strings.Builder)
	fmt.Fprintf(sb, "[line %d] %v", d.Position.Line, d.Severity)
	switch {
	case d.AtEnd:
		sb.WriteString(" at end")
	case d.Where != "":
		fmt.Fprintf(sb, " at '%s'", d.Where)
	}
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	return sb.String()
}

// ErrorList is a list of diagnostics that implements [error].
// Errors returned by [Parse] and [Validate] are always of this type.
type ErrorList []*Diagnostic

// Error joins the diagnostics' messages, one per line.
func (list ErrorList) Error() string {
	switch len(list) {
	case 0:
		return "no errors"
	case 1:
		return list[0].Error()
	}
	sb := new(strings.Builder)
	for i, d := range list {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(d.Error())
	}
	return sb.String()
}

// Err returns list as an error, or nil if list is empty.
func (list ErrorList) Err() error {
	if len(list) == 0 {
		return nil
	}
	return list
}

// Diagnostics returns the diagnostics in err if err is an [ErrorList].
// Otherwise Diagnostics returns nil.
func Diagnostics(err error) []*Diagnostic {
	var list ErrorList
	if !errors.As(err, &list) {
		return nil
	}
	return list
}

// IsIncomplete reports whether err was caused by the input ending
// before a construct was finished.
func IsIncomplete(err error) bool {
	for _, d := range Diagnostics(err) {
		if d.AtEnd {
			return true
		}
	}
	return false
}
