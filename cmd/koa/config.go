// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strconv"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/tailscale/hujson"
)

type globalConfig struct {
	Debug bool `json:"debug"`
	// Modules enables the require function.
	Modules bool `json:"modules"`
	// ModuleRoot is the directory required paths are resolved in.
	// If empty, the directory of the script being run is used.
	ModuleRoot  string `json:"moduleRoot"`
	HistoryFile string `json:"historyFile"`
}

func defaultGlobalConfig() *globalConfig {
	g := &globalConfig{Modules: true}
	if dir := dataDir(); dir != "" {
		g.HistoryFile = filepath.Join(dir, "koa", "history")
	}
	return g
}

func (g *globalConfig) mergeEnvironment() error {
	if s := os.Getenv("KOA_DEBUG"); s != "" {
		debug, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("KOA_DEBUG: %v", err)
		}
		g.Debug = debug
	}
	if s := os.Getenv("KOA_MODULES"); s != "" {
		modules, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("KOA_MODULES: %v", err)
		}
		g.Modules = modules
	}
	return nil
}

// configFiles returns the configuration files to read
// in increasing order of preference.
func configFiles() iter.Seq[string] {
	return func(yield func(string) bool) {
		for dir := range systemConfigDirs() {
			if !yield(filepath.Join(dir, "koa", "config.jwcc")) {
				return
			}
		}
		if path := os.Getenv("KOA_CONFIG"); path != "" {
			yield(path)
		}
	}
}

func (g *globalConfig) mergeFiles(paths iter.Seq[string]) error {
	for path := range paths {
		huJSONData, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		jsonData, err := hujson.Standardize(huJSONData)
		if err != nil {
			return fmt.Errorf("read %s: %v", path, err)
		}
		if err := jsonv2.Unmarshal(jsonData, g, jsonv2.RejectUnknownMembers(false)); err != nil {
			return fmt.Errorf("read %s: %v", path, err)
		}
	}
	return nil
}

// UnmarshalJSONFrom unmarshals the configuration object from the JSON decoder,
// merging any fields in the JSON object with existing values.
func (g *globalConfig) UnmarshalJSONFrom(in *jsontext.Decoder) error {
	tok, err := in.ReadToken()
	if err != nil {
		return err
	}
	if got := tok.Kind(); got != '{' {
		return fmt.Errorf("config must be an object not a %v", got)
	}

	for {
		keyToken, err := in.ReadToken()
		if err != nil {
			return err
		}
		switch kind := keyToken.Kind(); kind {
		case '}':
			return nil
		case '"':
			// Keep going.
		default:
			return fmt.Errorf("unexpected non-string key (%v) in object", kind)
		}

		k := keyToken.String()
		var field any
		switch k {
		case "debug":
			field = &g.Debug
		case "modules":
			field = &g.Modules
		case "moduleRoot":
			field = &g.ModuleRoot
		case "historyFile":
			field = &g.HistoryFile
		default:
			if reject, _ := jsonv2.GetOption(in.Options(), jsonv2.RejectUnknownMembers); reject {
				return fmt.Errorf("unmarshal config: unknown field %q", k)
			}
			if err := in.SkipValue(); err != nil {
				return err
			}
			continue
		}
		if err := jsonv2.UnmarshalDecode(in, field); err != nil {
			return fmt.Errorf("unmarshal config.%s: %w", k, err)
		}
	}
}

func (g *globalConfig) validate() error {
	if g.ModuleRoot == "" {
		return nil
	}
	info, err := os.Stat(g.ModuleRoot)
	if err != nil {
		return fmt.Errorf("module root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("module root %s: %w", g.ModuleRoot, errNotDir)
	}
	return nil
}

var errNotDir = errors.New("not a directory")

// scriptLocation splits the path of a script into the module root
// and the script's slash-separated name relative to the root.
func (g *globalConfig) scriptLocation(path string) (root, name string, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", err
	}
	root = g.ModuleRoot
	if root == "" {
		root = filepath.Dir(abs)
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return "", "", err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", "", err
	}
	name = filepath.ToSlash(rel)
	if !fs.ValidPath(name) {
		return "", "", fmt.Errorf("%s is outside module root %s", path, root)
	}
	return root, name, nil
}
