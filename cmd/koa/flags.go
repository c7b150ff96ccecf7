// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/spf13/pflag"
)

func addModuleFlags(fset *pflag.FlagSet, g *globalConfig) {
	fset.BoolVar(&g.Modules, "modules", g.Modules, "allow scripts to require other scripts")
	fset.StringVar(&g.ModuleRoot, "module-root", g.ModuleRoot, "`dir`ectory that require paths are resolved in (defaults to the script's directory)")
	fset.StringVar(&g.HistoryFile, "history", g.HistoryFile, "`path` to the interactive history file")
}
