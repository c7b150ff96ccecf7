// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"koa.256lights.llc/pkg/internal/koa"
	"zombiezen.com/go/log"
)

func newRunCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:                   "run [options] FILE",
		Short:                 "run a script",
		DisableFlagsInUseLine: true,
		Args:                  cobra.ExactArgs(1),
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		return runRun(cmd.Context(), g, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
	}
	return c
}

func runRun(ctx context.Context, g *globalConfig, path string, stdout, stderr io.Writer) error {
	if !g.Modules {
		source, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		s := koa.NewSession(&koa.Options{Stdout: stdout, Stderr: stderr})
		return s.Exec(ctx, s.NewGlobals(path), path, string(source))
	}

	root, name, err := g.scriptLocation(path)
	if err != nil {
		return err
	}
	log.Debugf(ctx, "Running %s with module root %s", name, root)
	s := koa.NewSession(&koa.Options{
		Stdout: stdout,
		Stderr: stderr,
		FS:     os.DirFS(root),
	})
	return s.RunFile(ctx, name)
}

func newEvalCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:                   "eval [options] CODE",
		Short:                 "run a script given on the command line",
		DisableFlagsInUseLine: true,
		Args:                  cobra.ExactArgs(1),
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		return runEval(cmd.Context(), g, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
	}
	return c
}

func runEval(ctx context.Context, g *globalConfig, source string, stdout, stderr io.Writer) error {
	opts, err := g.sessionOptions(stdout, stderr)
	if err != nil {
		return fmt.Errorf("eval: %v", err)
	}
	s := koa.NewSession(opts)
	return s.Exec(ctx, s.NewGlobals(evalFilename), evalFilename, source)
}

// evalFilename is the name given to scripts that do not come from a file.
const evalFilename = "eval.koa"

// sessionOptions returns the options for a session
// that does not run a script file.
// Required paths are resolved in the module root or the working directory.
func (g *globalConfig) sessionOptions(stdout, stderr io.Writer) (*koa.Options, error) {
	opts := &koa.Options{Stdout: stdout, Stderr: stderr}
	if !g.Modules {
		return opts, nil
	}
	root := g.ModuleRoot
	if root == "" {
		var err error
		root, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	}
	opts.FS = os.DirFS(root)
	return opts, nil
}
