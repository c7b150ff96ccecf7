// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koa

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"koa.256lights.llc/pkg/internal/testcontext"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		from string
		path string
		want string
	}{
		{"main.koa", "lib", "lib.koa"},
		{"main.koa", "lib.koa", "lib.koa"},
		{"main.koa", "./lib", "lib.koa"},
		{"main.koa", "dir/lib", "dir/lib.koa"},
		{"dir/main.koa", "lib", "dir/lib.koa"},
		{"dir/main.koa", "../lib", "lib.koa"},
		{"a/b/main.koa", "../../lib", "lib.koa"},
		{"main.koa", "../lib", "lib.koa"},
		{"a/main.koa", "b/../c", "a/c.koa"},
		{"main.koa", "data.txt", "data.txt"},
		{"", "lib", "lib.koa"},
	}
	for _, test := range tests {
		if got := resolvePath(test.from, test.path); got != test.want {
			t.Errorf("resolvePath(%q, %q) = %q; want %q", test.from, test.path, got, test.want)
		}
	}
}

func TestRequireConcurrent(t *testing.T) {
	ctx, cancel := testcontext.New(t)
	defer cancel()

	stdout := new(syncBuilder)
	s := NewSession(&Options{
		Stdout: stdout,
		Stderr: stdout,
		FS: fstest.MapFS{
			"lib.koa": &fstest.MapFile{Data: []byte(`print("loaded") export = {n: 1}`)},
		},
	})

	const n = 8
	results := make([]Value, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g := s.NewGlobals("main.koa")
			results[i], errs[i] = s.Require(ctx, g, "lib")
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("Require #%d: %v", i, err)
		}
	}
	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Errorf("Require #%d returned a different export than Require #0", i)
		}
	}
	if got, want := stdout.String(), "loaded\n"; got != want {
		t.Errorf("output = %q; want %q", got, want)
	}
}

func TestRequireDisabled(t *testing.T) {
	ctx, cancel := testcontext.New(t)
	defer cancel()

	stderr := new(strings.Builder)
	s := NewSession(&Options{Stdout: new(strings.Builder), Stderr: stderr})
	g := s.NewGlobals("main.koa")
	if g.Has("require") {
		t.Error("require installed in a session without a file system")
	}
	err := s.Exec(ctx, g, "main.koa", `require("lib")`)
	if err == nil {
		t.Fatal("Exec succeeded")
	}
	if got, want := stderr.String(), "[line 1] Error: wrong type: expected Function or Table, got Null\n"; got != want {
		t.Errorf("stderr = %q; want %q", got, want)
	}
}

func TestRequireWaitsForConcurrentLoad(t *testing.T) {
	ctx, cancel := testcontext.New(t)
	defer cancel()

	s := NewSession(&Options{
		Stdout: new(strings.Builder),
		Stderr: new(strings.Builder),
		FS:     fstest.MapFS{},
	})
	lib := &module{path: "lib.koa", loader: new(loader), done: make(chan struct{})}
	s.modules[lib.path] = lib

	type result struct {
		v   Value
		err error
	}
	c := make(chan result, 1)
	go func() {
		v, err := s.Require(ctx, s.NewGlobals("main.koa"), "lib")
		c <- result{v, err}
	}()
	lib.export = Number(7)
	close(lib.done)

	r := <-c
	if r.err != nil {
		t.Fatal("Require:", r.err)
	}
	if r.v != Number(7) {
		t.Errorf("Require(...) = %v; want 7", r.v)
	}
}

func TestRequireWaitCanceled(t *testing.T) {
	ctx, cancel := testcontext.New(t)
	defer cancel()

	s := NewSession(&Options{FS: fstest.MapFS{}})
	s.modules["lib.koa"] = &module{path: "lib.koa", loader: new(loader), done: make(chan struct{})}
	canceledCtx, cancelNow := context.WithCancel(ctx)
	cancelNow()
	if _, err := s.Require(canceledCtx, s.NewGlobals("main.koa"), "lib"); !errors.Is(err, context.Canceled) {
		t.Errorf("Require(...) = _, %v; want %v", err, context.Canceled)
	}
}

func TestRequireWaitCycle(t *testing.T) {
	ctx, cancel := testcontext.New(t)
	defer cancel()

	s := NewSession(&Options{FS: fstest.MapFS{}})
	mine := new(loader)
	other := new(loader)
	a := &module{path: "a.koa", loader: mine, done: make(chan struct{})}
	b := &module{path: "b.koa", loader: other, done: make(chan struct{})}
	other.waiting = a
	s.modules[a.path] = a
	s.modules[b.path] = b

	ctx = contextWithImportChain(ctx, &importChain{
		path: "a.koa",
		next: &importChain{path: "main.koa", l: mine},
		l:    mine,
	})
	_, err := s.Require(ctx, s.NewGlobals("a.koa"), "b")
	if err == nil {
		t.Fatal("Require did not return an error")
	}
	if got, want := err.Error(), "require cycle: main.koa -> a.koa -> b.koa (loading concurrently)"; got != want {
		t.Errorf("err = %q; want %q", got, want)
	}
	if mine.waiting != nil {
		t.Error("loader left waiting after cycle error")
	}
}

func TestRequireConcurrentCycle(t *testing.T) {
	ctx, cancel := testcontext.New(t)
	defer cancel()

	out := new(syncBuilder)
	s := NewSession(&Options{
		Stdout: out,
		Stderr: out,
		FS: fstest.MapFS{
			"a.koa": &fstest.MapFile{Data: []byte(`require("b") export = 1`)},
			"b.koa": &fstest.MapFile{Data: []byte(`require("a") export = 2`)},
		},
	})

	paths := []string{"a", "b"}
	errs := make([]error, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.Require(ctx, s.NewGlobals("main.koa"), path)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err == nil || !strings.Contains(err.Error(), "require cycle") {
			t.Errorf("Require(%q) = _, %v; want cycle error", paths[i], err)
		}
	}
}

type syncBuilder struct {
	mu sync.Mutex
	sb strings.Builder
}

func (b *syncBuilder) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.Write(p)
}

func (b *syncBuilder) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.String()
}
