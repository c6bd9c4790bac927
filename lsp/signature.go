// Copyright © 2024 The ELPS authors

package lsp

import (
	"context"
	"fmt"

	"github.com/luthersystems/luaulsp/signature"
	"github.com/tliron/glsp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentSignatureHelp handles textDocument/signatureHelp requests.
// It checks the document if it changed, then answers from the resulting
// snapshot without holding the workspace lock.
func (s *Server) textDocumentSignatureHelp(_ *glsp.Context, params *protocol.SignatureHelpParams) (result *protocol.SignatureHelp, err error) {
	_, span := s.tracer.Start(context.Background(), "textDocument/signatureHelp", trace.WithAttributes(
		attribute.String("uri", params.TextDocument.URI),
		attribute.Int("line", int(params.Position.Line)),
		attribute.Int("character", int(params.Position.Character)),
	))
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("signature help %s: panic: %v", params.TextDocument.URI, r)
			result, err = nil, fmt.Errorf("signature help: %v", r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	settings := s.settings()
	if !settings.SignatureHelpEnabled {
		return nil, nil
	}
	snap, err := s.workspace.Snapshot(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	res := signature.Help(signature.Query{
		Source:   snap.Source,
		Module:   snap.Module,
		Position: toPosition(snap.Text, params.Position),
		Options:  signature.Options{HideTableKind: !settings.ShowTableKinds},
	}, s.workspace.Environment(snap))
	if res == nil {
		return nil, nil
	}
	span.SetAttributes(attribute.Int("signatures", len(res.Signatures)))
	return signatureHelp(res), nil
}

// signatureHelp converts a result to its protocol form.  Parameter spans
// become UTF-16 offsets into the label.
func signatureHelp(res *signature.Result) *protocol.SignatureHelp {
	sigs := make([]protocol.SignatureInformation, 0, len(res.Signatures))
	for _, sig := range res.Signatures {
		params := make([]protocol.ParameterInformation, 0, len(sig.Parameters))
		for _, p := range sig.Parameters {
			pi := protocol.ParameterInformation{Label: p.Text}
			if p.Span != nil {
				pi.Label = []protocol.UInteger{
					safeUint(utf16Column(sig.Label, p.Span.Start)),
					safeUint(utf16Column(sig.Label, p.Span.End)),
				}
			}
			if p.Documentation != "" {
				pi.Documentation = markdown(p.Documentation)
			}
			params = append(params, pi)
		}
		info := protocol.SignatureInformation{
			Label:           sig.Label,
			Parameters:      params,
			ActiveParameter: uintPtr(safeUint(sig.ActiveParameter)),
		}
		if sig.Documentation != "" {
			info.Documentation = markdown(sig.Documentation)
		}
		sigs = append(sigs, info)
	}
	return &protocol.SignatureHelp{
		Signatures:      sigs,
		ActiveSignature: uintPtr(safeUint(res.ActiveSignature)),
		ActiveParameter: uintPtr(safeUint(res.ActiveParameter)),
	}
}

func markdown(text string) protocol.MarkupContent {
	return protocol.MarkupContent{
		Kind:  protocol.MarkupKindMarkdown,
		Value: text,
	}
}

func uintPtr(v protocol.UInteger) *protocol.UInteger {
	return &v
}
