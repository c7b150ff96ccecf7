// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"koa.256lights.llc/pkg/internal/koa"
	"koa.256lights.llc/pkg/internal/koasyntax"
	"zombiezen.com/go/log"
	"zombiezen.com/go/xcontext"
)

const (
	replPrompt             = "> "
	replContinuationPrompt = ". "
	replFilename           = "repl.koa"
)

func newREPLCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:                   "repl [options]",
		Short:                 "run statements interactively",
		DisableFlagsInUseLine: true,
		Args:                  cobra.NoArgs,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		return runREPL(cmd.Context(), g)
	}
	return c
}

func runREPL(ctx context.Context, g *globalConfig) error {
	opts, err := g.sessionOptions(os.Stdout, os.Stderr)
	if err != nil {
		return fmt.Errorf("repl: %v", err)
	}
	s := koa.NewSession(opts)
	globals := s.NewGlobals(replFilename)

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		stdin := xcontext.CloseWhenDone(ctx, os.Stdin)
		source, err := io.ReadAll(os.Stdin)
		stdin.Close()
		if err != nil {
			return fmt.Errorf("repl: %v", err)
		}
		return s.Exec(ctx, globals, replFilename, string(source))
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetMultiLineMode(true)
	if g.HistoryFile != "" {
		if f, err := os.Open(g.HistoryFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer saveHistory(ctx, line, g.HistoryFile)
	}

	for {
		source, err := readStatements(line)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return fmt.Errorf("repl: %v", err)
		}
		if strings.TrimSpace(source) == "" {
			continue
		}
		line.AppendHistory(source)

		// Errors have been printed by Exec.
		// The namespace survives so that the next statement can fix things up.
		s.Exec(ctx, globals, replFilename, source)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// readStatements reads lines until they form a complete chunk of source.
// A chunk that has syntax errors other than ending early
// is returned as-is so that the errors can be reported.
func readStatements(line *liner.State) (string, error) {
	sb := new(strings.Builder)
	prompt := replPrompt
	for {
		text, err := line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) && sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}
		sb.WriteString(text)
		sb.WriteString("\n")
		if _, err := koasyntax.ParseString(sb.String()); !koasyntax.IsIncomplete(err) {
			return sb.String(), nil
		}
		prompt = replContinuationPrompt
	}
}

func saveHistory(ctx context.Context, line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		log.Warnf(ctx, "Save history: %v", err)
		return
	}
	f, err := os.Create(path)
	if err != nil {
		log.Warnf(ctx, "Save history: %v", err)
		return
	}
	_, err = line.WriteHistory(f)
	err2 := f.Close()
	if err == nil {
		err = err2
	}
	if err != nil {
		log.Warnf(ctx, "Save history: %v", err)
	}
}
