// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koa

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	slashpath "path"
	"slices"
	"strings"

	"zombiezen.com/go/log"
)

// ModuleExtension is appended to require paths without an extension.
const ModuleExtension = ".koa"

// ExportName is the global a module binds to provide its result.
const ExportName = "export"

// A module is a required script that is loading or has finished loading.
type module struct {
	path string
	// loader is the script run that is loading the module.
	loader *loader
	// done is closed once export and err are set.
	done   chan struct{}
	export Value
	err    error
}

// A loader is one chain of nested requires running on a single goroutine.
// Fields are guarded by Session.modulesMu.
type loader struct {
	// waiting is the module this loader is blocked on, if any.
	waiting *module
}

// Require runs the script at path (relative to the directory of from's script)
// unless it has already been run in this session,
// and returns the value of its export global.
// A script that failed returns the same error on every call.
//
// Concurrent requires of the same path wait for a single load.
// A require that would wait on a load
// that is itself waiting on the caller's scripts
// fails with a cycle error instead of blocking.
func (s *Session) Require(ctx context.Context, from *Globals, path string) (Value, error) {
	if s.fsys == nil {
		return nil, errors.New("require: modules not enabled")
	}
	resolved := resolvePath(from.Filename(), path)

	chain := importChainFromContext(ctx)
	if chain.has(resolved) {
		return nil, cycleError(chain, resolved)
	}
	l := chain.loader()

	s.modulesMu.Lock()
	mod := s.modules[resolved]
	if mod == nil {
		mod = &module{
			path:   resolved,
			loader: l,
			done:   make(chan struct{}),
		}
		s.modules[resolved] = mod
		s.modulesMu.Unlock()

		mod.export, mod.err = s.runModule(contextWithImportChain(ctx, &importChain{
			path: resolved,
			next: chain,
			l:    l,
		}), resolved)
		close(mod.done)
		return mod.export, mod.err
	}
	select {
	case <-mod.done:
		s.modulesMu.Unlock()
		log.Debugf(ctx, "Using cached module %s", resolved)
		return mod.export, mod.err
	default:
	}
	if waitsOn(mod, l) {
		s.modulesMu.Unlock()
		return nil, fmt.Errorf("%w (loading concurrently)", cycleError(chain, resolved))
	}
	l.waiting = mod
	s.modulesMu.Unlock()

	log.Debugf(ctx, "Waiting for module %s", resolved)
	var err error
	select {
	case <-mod.done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	s.modulesMu.Lock()
	l.waiting = nil
	s.modulesMu.Unlock()
	if err != nil {
		return nil, err
	}
	return mod.export, mod.err
}

// waitsOn reports whether waiting for mod would wait for l,
// following the modules that each loader is blocked on.
// The caller must hold Session.modulesMu.
func waitsOn(mod *module, l *loader) bool {
	seen := make(map[*loader]bool)
	for mod != nil {
		if mod.loader == l {
			return true
		}
		if seen[mod.loader] {
			return false
		}
		seen[mod.loader] = true
		mod = mod.loader.waiting
	}
	return false
}

func (s *Session) runModule(ctx context.Context, path string) (Value, error) {
	log.Debugf(ctx, "Loading module %s", path)
	source, err := fs.ReadFile(s.fsys, path)
	if err != nil {
		return Null, fmt.Errorf("require %s: %w", path, err)
	}
	g := s.NewGlobals(path)
	if err := s.Exec(ctx, g, path, string(source)); err != nil {
		return Null, err
	}
	return g.Get(ExportName), nil
}

// resolvePath resolves a require path relative to the directory of from.
// Leading "./" and "." components are ignored,
// and ".." removes the preceding component if there is one.
// [ModuleExtension] is added if the final component has no extension.
func resolvePath(from, path string) string {
	var parts []string
	if dir := slashpath.Dir(from); dir != "." && dir != "/" {
		parts = strings.Split(strings.Trim(dir, "/"), "/")
	}
	for part := range strings.SplitSeq(path, "/") {
		switch part {
		case "", ".":
		case "..":
			if len(parts) > 0 {
				parts = parts[:len(parts)-1]
			}
		default:
			parts = append(parts, part)
		}
	}
	resolved := strings.Join(parts, "/")
	if slashpath.Ext(resolved) == "" {
		resolved += ModuleExtension
	}
	return resolved
}

func cycleError(chain *importChain, path string) error {
	list := slices.Collect(chain.All())
	slices.Reverse(list)
	if i := slices.Index(list, path); i >= 0 {
		list = list[i:]
	}
	list = append(list, path)
	return fmt.Errorf("require cycle: %s", strings.Join(list, " -> "))
}

// importChain is a linked list of the scripts currently being run,
// innermost first.
type importChain struct {
	path string
	next *importChain
	l    *loader
}

type importChainContextKey struct{}

func importChainFromContext(ctx context.Context) *importChain {
	chain, _ := ctx.Value(importChainContextKey{}).(*importChain)
	return chain
}

func contextWithImportChain(parent context.Context, chain *importChain) context.Context {
	return context.WithValue(parent, importChainContextKey{}, chain)
}

// loader returns the loader of the chain,
// or a new loader if the chain is empty.
func (chain *importChain) loader() *loader {
	if chain == nil || chain.l == nil {
		return new(loader)
	}
	return chain.l
}

func (chain *importChain) has(path string) bool {
	for p := range chain.All() {
		if p == path {
			return true
		}
	}
	return false
}

// All returns an iterator over the paths in the chain, innermost first.
func (chain *importChain) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for curr := chain; curr != nil; curr = curr.next {
			if !yield(curr.path) {
				return
			}
		}
	}
}
