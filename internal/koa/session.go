// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"time"

	"koa.256lights.llc/pkg/internal/koasyntax"
	"zombiezen.com/go/log"
)

// Options is the set of optional parameters to [NewSession].
type Options struct {
	// Stdout is where print writes.
	// If nil, os.Stdout is used.
	Stdout io.Writer
	// Stderr receives diagnostics.
	// If nil, os.Stderr is used.
	Stderr io.Writer
	// FS holds the scripts that require can load.
	// Paths are slash-separated and relative to the root of FS.
	// If nil, the require function is not installed.
	FS fs.FS
	// Now returns the current time for the time function.
	// If nil, time.Now is used.
	Now func() time.Time
	// Random returns the results of Math.random.
	// If nil, a pseudo-random source is used.
	Random func() float64
}

// Session is a host for running scripts.
// It owns the module cache shared by every script it runs.
// A Session is safe to use from multiple goroutines,
// but each [*Globals] must only be used by one script at a time.
type Session struct {
	stdout io.Writer
	stderr io.Writer
	outMu  sync.Mutex

	fsys   fs.FS
	now    func() time.Time
	random func() float64

	modulesMu sync.Mutex
	modules   map[string]*module
}

// NewSession returns a new [Session].
// opts may be nil.
func NewSession(opts *Options) *Session {
	if opts == nil {
		opts = new(Options)
	}
	s := &Session{
		stdout:  opts.Stdout,
		stderr:  opts.Stderr,
		fsys:    opts.FS,
		now:     opts.Now,
		random:  opts.Random,
		modules: make(map[string]*module),
	}
	if s.stdout == nil {
		s.stdout = os.Stdout
	}
	if s.stderr == nil {
		s.stderr = os.Stderr
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.random == nil {
		s.random = rand.Float64
	}
	return s
}

// NewGlobals returns a namespace populated with the host functions
// for a script with the given filename.
func (s *Session) NewGlobals(filename string) *Globals {
	g := NewGlobals()
	g.filename = filename
	g.session = s
	g.SetFunctions(s.baseFunctions())
	g.Set(MathTableName, NewMathTable(s.random))
	if s.fsys != nil {
		g.Set("require", NewFunction("require", 1, func(ctx context.Context, self *Table, args []Value) (Value, error) {
			path, ok := args[0].(*Table)
			if !ok || !IsString(path) {
				return nil, ArgTypeError(args[0], TypeTable)
			}
			return s.Require(ctx, g, StringValue(path))
		}))
	}
	return g
}

// Exec parses, validates, compiles, and runs source in g.
// Diagnostics and runtime errors are written to the session's error output.
// Compilation errors prevent the script from running at all.
// Every error Exec writes is also returned;
// [IsReported] reports true for such errors.
func (s *Session) Exec(ctx context.Context, g *Globals, filename string, source string) error {
	stmts, err := koasyntax.ParseString(source)
	if err != nil {
		s.report(err)
		return markReported(err)
	}
	warnings, err := koasyntax.Validate(stmts)
	if err != nil {
		s.report(err)
		s.report(koasyntax.ErrorList(warnings).Err())
		return markReported(err)
	}
	s.report(koasyntax.ErrorList(warnings).Err())

	u, err := Compile(filename, stmts)
	if err != nil {
		return err
	}
	log.Debugf(ctx, "Compiled %s as %s (%d functions)", filename, u.ID, len(u.Functions))

	if err := Load(u, g).Run(ctx); err != nil {
		if isReported(err) {
			return err
		}
		s.report(err)
		return markReported(err)
	}
	return nil
}

// RunFile runs the script at path in the session's file system
// with a new namespace.
func (s *Session) RunFile(ctx context.Context, path string) error {
	if s.fsys == nil {
		return errors.New("run file: no file system")
	}
	source, err := fs.ReadFile(s.fsys, path)
	if err != nil {
		return fmt.Errorf("run file: %w", err)
	}
	ctx = contextWithImportChain(ctx, &importChain{path: path, l: new(loader)})
	return s.Exec(ctx, s.NewGlobals(path), path, string(source))
}

// report writes err to the error output, one diagnostic per line.
func (s *Session) report(err error) {
	if err == nil {
		return
	}
	sb := new(strings.Builder)
	if diags := koasyntax.Diagnostics(err); diags != nil {
		for _, d := range diags {
			sb.WriteString(d.Error())
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()
	io.WriteString(s.stderr, sb.String())
}
