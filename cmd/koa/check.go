// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"koa.256lights.llc/pkg/internal/koasyntax"
)

func newCheckCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "check [options] FILE [...]",
		Short:                 "report syntax errors and warnings in scripts",
		DisableFlagsInUseLine: true,
		Args:                  cobra.MinimumNArgs(1),
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.Context(), cmd.OutOrStdout(), args)
	}
	return c
}

func runCheck(ctx context.Context, out io.Writer, paths []string) error {
	results := make([]checkResult, len(paths))
	grp, _ := errgroup.WithContext(ctx)
	grp.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		grp.Go(func() error {
			source, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			results[i] = checkSource(string(source))
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}

	failed := 0
	for i, r := range results {
		for _, d := range r.diagnostics {
			fmt.Fprintf(out, "%s: %v\n", paths[i], d)
		}
		if r.failed {
			failed++
		}
	}
	switch failed {
	case 0:
		return nil
	case 1:
		return errors.New("1 file has errors")
	default:
		return fmt.Errorf("%d files have errors", failed)
	}
}

type checkResult struct {
	diagnostics []*koasyntax.Diagnostic
	failed      bool
}

// checkSource parses and validates a script.
// Validation is skipped if the script does not parse.
func checkSource(source string) checkResult {
	stmts, err := koasyntax.ParseString(source)
	if err != nil {
		return checkResult{diagnostics: koasyntax.Diagnostics(err), failed: true}
	}
	warnings, err := koasyntax.Validate(stmts)
	return checkResult{
		diagnostics: append(koasyntax.Diagnostics(err), warnings...),
		failed:      err != nil,
	}
}
