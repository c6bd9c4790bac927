// Copyright © 2024 The ELPS authors

package lsp

import (
	"errors"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const debounceDelay = 300 * time.Millisecond

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Open(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		params.TextDocument.Text,
	)
	s.workspace.Changed(doc.URI)
	s.publishDiagnostics(doc.URI)
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	doc := s.docs.Change(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		content,
	)
	s.workspace.Changed(doc.URI)

	// Debounce: delay diagnostics to avoid thrashing during rapid edits.
	s.debounceMu.Lock()
	if t, ok := s.debounce[doc.URI]; ok {
		t.Stop()
	}
	uri := doc.URI
	s.debounce[uri] = time.AfterFunc(debounceDelay, func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("diagnostics %s: panic: %v", uri, r)
			}
		}()
		if s.docs.Get(uri) != nil {
			s.publishDiagnostics(uri)
		}
	})
	s.debounceMu.Unlock()
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	// Cancel any pending debounce and publish immediately.
	s.stopDebounce(params.TextDocument.URI)
	if s.docs.Get(params.TextDocument.URI) != nil {
		s.publishDiagnostics(params.TextDocument.URI)
	}
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.stopDebounce(params.TextDocument.URI)

	// Clear diagnostics for the closed file.
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	s.docs.Close(params.TextDocument.URI)
	s.workspace.Closed(params.TextDocument.URI)
	return nil
}

// workspaceDidChangeConfiguration handles the
// workspace/didChangeConfiguration notification.
func (s *Server) workspaceDidChangeConfiguration(_ *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	if err := s.updateSettings(params.Settings); err != nil {
		log.Warningf("configuration: %v", err)
	}
	return nil
}

func (s *Server) stopDebounce(uri string) {
	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
		delete(s.debounce, uri)
	}
	s.debounceMu.Unlock()
}

// publishDiagnostics checks a document and publishes its parse and type
// errors to the client.
func (s *Server) publishDiagnostics(uri string) {
	snap, err := s.workspace.Snapshot(uri)
	if err != nil {
		if !errors.Is(err, ErrDocumentNotFound) {
			log.Errorf("diagnostics %s: %v", uri, err)
		}
		return
	}
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics(snap),
	})
}

// diagnostics converts the errors of a snapshot to protocol diagnostics.
func diagnostics(snap *Snapshot) []protocol.Diagnostic {
	diags := []protocol.Diagnostic{}
	for _, err := range snap.Source.Errors {
		diags = append(diags, protocol.Diagnostic{
			Range:    fromLocation(snap.Text, err.Location),
			Severity: severity(protocol.DiagnosticSeverityError),
			Source:   strPtr("luau"),
			Message:  err.Message,
		})
	}
	for _, err := range snap.Module.Errors {
		diags = append(diags, protocol.Diagnostic{
			Range:    fromLocation(snap.Text, err.Location),
			Severity: severity(protocol.DiagnosticSeverityWarning),
			Source:   strPtr("luau"),
			Message:  err.Message,
		})
	}
	return diags
}

func severity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func strPtr(s string) *string {
	return &s
}
