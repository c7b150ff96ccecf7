// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"strings"
	"unicode/utf16"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
	"koa.256lights.llc/pkg/internal/koasyntax"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "koa"

func newLSPCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "lsp",
		Short:                 "run a language server on stdin/stdout",
		DisableFlagsInUseLine: true,
		Args:                  cobra.NoArgs,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		return runLSP(cmd.Context())
	}
	return c
}

func runLSP(ctx context.Context) error {
	ignoreSIGPIPE()
	ls := newLanguageServer()
	srv := glspserver.NewServer(&ls.handler, lspName, false)

	errc := make(chan error, 1)
	go func() {
		errc <- srv.RunStdio()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return nil
	}
}

// languageServer publishes parse and validation diagnostics
// for open documents.
type languageServer struct {
	handler protocol.Handler
}

func newLanguageServer() *languageServer {
	ls := new(languageServer)
	ls.handler = protocol.Handler{
		Initialize:  ls.initialize,
		Initialized: func(*glsp.Context, *protocol.InitializedParams) error { return nil },
		Shutdown:    func(*glsp.Context) error { return nil },
		SetTrace:    func(*glsp.Context, *protocol.SetTraceParams) error { return nil },

		TextDocumentDidOpen:   ls.didOpen,
		TextDocumentDidChange: ls.didChange,
		TextDocumentDidClose:  ls.didClose,
	}
	return ls
}

func (ls *languageServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "Initializing")

	capabilities := ls.handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindFull
	openClose := true
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &openClose,
		Change:    &syncKind,
	}
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name: lspName,
		},
	}, nil
}

func (ls *languageServer) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (ls *languageServer) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	last := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
		ls.update(ctx, params.TextDocument.URI, whole.Text)
	}
	return nil
}

func (ls *languageServer) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *languageServer) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	result := checkSource(text)
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: protocolDiagnostics(text, result.diagnostics),
	})
}

func protocolDiagnostics(text string, diags []*koasyntax.Diagnostic) []protocol.Diagnostic {
	result := make([]protocol.Diagnostic, 0, len(diags))
	source := lspName
	for _, d := range diags {
		severity := protocol.DiagnosticSeverityError
		if d.Severity == koasyntax.SeverityWarning {
			severity = protocol.DiagnosticSeverityWarning
		}
		result = append(result, protocol.Diagnostic{
			Range:    diagnosticRange(text, d),
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		})
	}
	return result
}

// diagnosticRange returns the range of the token a diagnostic refers to.
// Diagnostics without a column span their whole line.
func diagnosticRange(text string, d *koasyntax.Diagnostic) protocol.Range {
	if d.AtEnd {
		end := protocolPosition(text, len(text))
		return protocol.Range{Start: end, End: end}
	}
	lineStart := lineOffset(text, d.Position.Line)
	if d.Position.Column == 0 {
		lineEnd := len(text)
		if i := strings.IndexByte(text[lineStart:], '\n'); i >= 0 {
			lineEnd = lineStart + i
		}
		return protocol.Range{
			Start: protocolPosition(text, lineStart),
			End:   protocolPosition(text, lineEnd),
		}
	}
	start := min(lineStart+d.Position.Column-1, len(text))
	end := min(start+len(d.Where), len(text))
	return protocol.Range{
		Start: protocolPosition(text, start),
		End:   protocolPosition(text, end),
	}
}

// lineOffset returns the byte offset of the start of the given 1-based line.
func lineOffset(text string, line int) int {
	off := 0
	for ; line > 1; line-- {
		i := strings.IndexByte(text[off:], '\n')
		if i < 0 {
			return len(text)
		}
		off += i + 1
	}
	return off
}

// protocolPosition converts a byte offset in text
// to a zero-based line and UTF-16 code unit column.
func protocolPosition(text string, off int) protocol.Position {
	before := text[:off]
	line := strings.Count(before, "\n")
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		before = before[i+1:]
	}
	col := 0
	for _, c := range before {
		col += utf16.RuneLen(c)
	}
	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(col),
	}
}
