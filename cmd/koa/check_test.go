// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"koa.256lights.llc/pkg/internal/testcontext"
)

func TestCheck(t *testing.T) {
	ctx, cancel := testcontext.New(t)
	defer cancel()
	t.Chdir(t.TempDir())

	files := map[string]string{
		"good.koa": "print(1)\n",
		"warn.koa": "while x {}\n",
		"bad.koa":  "1 = 2\n",
	}
	for name, source := range files {
		if err := os.WriteFile(name, []byte(source), 0o666); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("Clean", func(t *testing.T) {
		out := new(strings.Builder)
		if err := runCheck(ctx, out, []string{"good.koa", "warn.koa"}); err != nil {
			t.Error("runCheck:", err)
		}
		want := "warn.koa: [line 1] Warning: While loop has empty body.\n"
		if diff := cmp.Diff(want, out.String()); diff != "" {
			t.Errorf("output (-want +got):\n%s", diff)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		out := new(strings.Builder)
		err := runCheck(ctx, out, []string{"bad.koa", "good.koa", "bad.koa"})
		if err == nil || err.Error() != "2 files have errors" {
			t.Errorf("runCheck(...) = %v; want \"2 files have errors\"", err)
		}
		want := "bad.koa: [line 1] Error at '=': Invalid assignment target.\n" +
			"bad.koa: [line 1] Error at '=': Invalid assignment target.\n"
		if diff := cmp.Diff(want, out.String()); diff != "" {
			t.Errorf("output (-want +got):\n%s", diff)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if err := runCheck(ctx, new(strings.Builder), []string{"missing.koa"}); err == nil {
			t.Error("runCheck did not return an error")
		}
	})
}
