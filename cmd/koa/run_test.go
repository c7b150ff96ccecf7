// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"koa.256lights.llc/pkg/internal/koa"
	"koa.256lights.llc/pkg/internal/testcontext"
)

func TestRun(t *testing.T) {
	ctx, cancel := testcontext.New(t)
	defer cancel()

	dir := t.TempDir()
	files := map[string]string{
		"main.koa":      "var lib = require(\"lib/greet\")\nprint(lib.greet(\"world\"))\n",
		"lib/greet.koa": "export = {greet: function(name) { return \"hello, \" + name }}\n",
	}
	for name, source := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(source), 0o666); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("Modules", func(t *testing.T) {
		stdout := new(strings.Builder)
		stderr := new(strings.Builder)
		g := &globalConfig{Modules: true}
		if err := runRun(ctx, g, filepath.Join(dir, "main.koa"), stdout, stderr); err != nil {
			t.Errorf("runRun: %v\nstderr:\n%s", err, stderr)
		}
		if got, want := stdout.String(), "hello, world\n"; got != want {
			t.Errorf("stdout = %q; want %q", got, want)
		}
	})

	t.Run("NoModules", func(t *testing.T) {
		stdout := new(strings.Builder)
		stderr := new(strings.Builder)
		g := &globalConfig{Modules: false}
		err := runRun(ctx, g, filepath.Join(dir, "main.koa"), stdout, stderr)
		if !koa.IsReported(err) {
			t.Errorf("runRun(...) = %v; want reported error", err)
		}
		if stderr.Len() == 0 {
			t.Error("nothing written to stderr")
		}
	})

	t.Run("Eval", func(t *testing.T) {
		t.Chdir(dir)
		stdout := new(strings.Builder)
		stderr := new(strings.Builder)
		g := &globalConfig{Modules: true}
		err := runEval(ctx, g, `print(require("lib/greet").greet("eval"))`, stdout, stderr)
		if err != nil {
			t.Errorf("runEval: %v\nstderr:\n%s", err, stderr)
		}
		if got, want := stdout.String(), "hello, eval\n"; got != want {
			t.Errorf("stdout = %q; want %q", got, want)
		}
	})
}
