// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

// Package testcontext provides contexts for tests of script execution.
package testcontext

import (
	"context"
	"testing"
	"time"

	"zombiezen.com/go/log/testlog"
)

// DefaultTimeout bounds a test's scripts when the test has no deadline,
// so that a runaway loop fails the test instead of hanging it.
const DefaultTimeout = 30 * time.Second

// New returns a context that sends log messages to the test's log,
// is canceled when the test finishes,
// and expires at the test's deadline (or after [DefaultTimeout]).
func New(tb testing.TB) (context.Context, context.CancelFunc) {
	ctx := tb.Context()
	d, ok := deadline(tb)
	if !ok {
		d = time.Now().Add(DefaultTimeout)
	}
	ctx, cancel := context.WithDeadline(ctx, d)
	ctx = testlog.WithTB(ctx, tb)
	return ctx, cancel
}

func deadline(x any) (deadline time.Time, ok bool) {
	d, ok := x.(interface {
		Deadline() (deadline time.Time, ok bool)
	})
	if !ok {
		return time.Time{}, false
	}
	return d.Deadline()
}
