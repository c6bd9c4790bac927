// Copyright © 2024 The ELPS authors

package lsp

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/signature"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const testURI = "file:///tmp/luaulsp-test/test.luau"

// testServer creates a server with its own configuration.
func testServer(opts ...Option) *Server {
	s := New(append([]Option{WithConfig(viper.New())}, opts...)...)
	s.exitFn = func(int) {}
	return s
}

// openDoc opens a document in the test server and returns it.
func openDoc(s *Server, uri, content string) *Document {
	doc := s.docs.Open(uri, 1, content)
	s.workspace.Changed(uri)
	return doc
}

// mockContext returns a minimal glsp.Context for testing.
func mockContext() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {},
	}
}

// capturingContext returns a context that captures published diagnostics.
func capturingContext() (*glsp.Context, *[]*protocol.PublishDiagnosticsParams) {
	var captured []*protocol.PublishDiagnosticsParams
	ctx := &glsp.Context{
		Notify: func(method string, params any) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				captured = append(captured, params.(*protocol.PublishDiagnosticsParams))
			}
		},
	}
	return ctx, &captured
}

func signatureParams(uri string, line, character int) *protocol.SignatureHelpParams {
	return &protocol.SignatureHelpParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: safeUint(line), Character: safeUint(character)},
		},
	}
}

// --- Position conversion tests ---

func TestLineAt(t *testing.T) {
	content := "first\r\nsecond\nthird"
	assert.Equal(t, "first", lineAt(content, 0))
	assert.Equal(t, "second", lineAt(content, 1))
	assert.Equal(t, "third", lineAt(content, 2))
	assert.Equal(t, "", lineAt(content, 3))
}

func TestColumnConversion(t *testing.T) {
	t.Run("ascii", func(t *testing.T) {
		assert.Equal(t, 3, byteColumn("print(1)", 3))
		assert.Equal(t, 3, utf16Column("print(1)", 3))
	})
	t.Run("two byte rune", func(t *testing.T) {
		// é is two bytes and one UTF-16 unit
		assert.Equal(t, 3, byteColumn("héllo", 2))
		assert.Equal(t, 2, utf16Column("héllo", 3))
	})
	t.Run("surrogate pair", func(t *testing.T) {
		// 😀 is four bytes and two UTF-16 units
		assert.Equal(t, 5, byteColumn("a😀b", 3))
		assert.Equal(t, 3, utf16Column("a😀b", 5))
	})
	t.Run("past end clamps", func(t *testing.T) {
		assert.Equal(t, 2, byteColumn("ab", 10))
		assert.Equal(t, 2, utf16Column("ab", 10))
	})
}

func TestPositionRoundTrip(t *testing.T) {
	content := "local s = \"é\"\nprint(s, 😀)"
	lsp := protocol.Position{Line: 1, Character: 11}
	pos := toPosition(content, lsp)
	assert.Equal(t, ast.Position{Line: 1, Column: 13}, pos)
	assert.Equal(t, lsp, fromPosition(content, pos))
}

func TestURIConversion(t *testing.T) {
	assert.Equal(t, "/tmp/a.luau", uriToPath("file:///tmp/a.luau"))
	assert.Equal(t, "file:///tmp/a.luau", pathToURI("/tmp/a.luau"))
	assert.Equal(t, "untitled:1", pathToURI(uriToPath("untitled:1")))
}

// --- Signature help ---

func TestSignatureHelp(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, "local function foo(a: number, b: string): boolean\n\treturn true\nend\nfoo(1, )\n")

	res, err := s.textDocumentSignatureHelp(mockContext(), signatureParams(testURI, 3, 7))
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Len(t, res.Signatures, 1)
	assert.Equal(t, protocol.UInteger(0), *res.ActiveSignature)
	assert.Equal(t, protocol.UInteger(1), *res.ActiveParameter)

	sig := res.Signatures[0]
	assert.Equal(t, "foo(a: number, b: string): boolean", sig.Label)
	assert.Equal(t, protocol.UInteger(1), *sig.ActiveParameter)
	assert.Nil(t, sig.Documentation)
	require.Len(t, sig.Parameters, 2)
	assert.Equal(t, []protocol.UInteger{4, 13}, sig.Parameters[0].Label)
	assert.Equal(t, []protocol.UInteger{15, 24}, sig.Parameters[1].Label)
}

func TestSignatureHelp_Documentation(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, "math.clamp(1, 2, )")

	res, err := s.textDocumentSignatureHelp(mockContext(), signatureParams(testURI, 0, 17))
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Len(t, res.Signatures, 1)
	sig := res.Signatures[0]
	assert.Equal(t, "math.clamp(n: number, min: number, max: number): number", sig.Label)
	assert.Equal(t, protocol.UInteger(2), *sig.ActiveParameter)
	doc, ok := sig.Documentation.(protocol.MarkupContent)
	require.True(t, ok)
	assert.Equal(t, protocol.MarkupKindMarkdown, doc.Kind)
	assert.NotEmpty(t, doc.Value)
	for _, p := range sig.Parameters {
		_, ok := p.Documentation.(protocol.MarkupContent)
		assert.True(t, ok)
	}
}

func TestSignatureHelp_UTF16Labels(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, "local function f(s: \"é\", n: number) end\nf(\"é\", )")

	res, err := s.textDocumentSignatureHelp(mockContext(), signatureParams(testURI, 1, 7))
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Len(t, res.Signatures, 1)
	sig := res.Signatures[0]
	assert.Equal(t, "f(s: \"é\", n: number): ()", sig.Label)
	require.Len(t, sig.Parameters, 2)
	assert.Equal(t, []protocol.UInteger{2, 8}, sig.Parameters[0].Label)
	assert.Equal(t, []protocol.UInteger{10, 19}, sig.Parameters[1].Label)
	assert.Equal(t, protocol.UInteger(1), *res.ActiveParameter)
}

func TestSignatureHelp_NoCall(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, "local x = 1\n")

	res, err := s.textDocumentSignatureHelp(mockContext(), signatureParams(testURI, 0, 10))
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestSignatureHelp_NotCallable(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, "local n = 1\nn()")

	res, err := s.textDocumentSignatureHelp(mockContext(), signatureParams(testURI, 1, 2))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Empty(t, res.Signatures)
}

func TestSignatureHelp_DocumentNotFound(t *testing.T) {
	s := testServer()
	res, err := s.textDocumentSignatureHelp(mockContext(), signatureParams("file:///tmp/missing.luau", 0, 0))
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDocumentNotFound))
}

func TestSignatureHelp_Disabled(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, "print()")
	require.NoError(t, s.workspaceDidChangeConfiguration(mockContext(), &protocol.DidChangeConfigurationParams{
		Settings: map[string]any{
			ConfigSection: map[string]any{
				"signatureHelp": map[string]any{"enabled": false},
			},
		},
	}))

	res, err := s.textDocumentSignatureHelp(mockContext(), signatureParams(testURI, 0, 6))
	require.NoError(t, err)
	assert.Nil(t, res)

	// disabled requests do not need a document
	_, err = s.textDocumentSignatureHelp(mockContext(), signatureParams("file:///tmp/missing.luau", 0, 0))
	assert.NoError(t, err)
}

func TestSignatureHelp_TableKinds(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, "local function f(p: {x: number}) end\nf()")

	res, err := s.textDocumentSignatureHelp(mockContext(), signatureParams(testURI, 1, 2))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "f(p: { x: number }): ()", res.Signatures[0].Label)

	require.NoError(t, s.updateSettings(map[string]any{
		"hover": map[string]any{"showTableKinds": true},
	}))
	res, err = s.textDocumentSignatureHelp(mockContext(), signatureParams(testURI, 1, 2))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "f(p: {| x: number |}): ()", res.Signatures[0].Label)
}

func TestSignatureHelp_Change(t *testing.T) {
	s := testServer()
	ctx := mockContext()
	require.NoError(t, s.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: testURI, LanguageID: "luau", Version: 1,
			Text: "local function f(a: number) end\nf()"},
	}))
	res, err := s.textDocumentSignatureHelp(ctx, signatureParams(testURI, 1, 2))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "f(a: number): ()", res.Signatures[0].Label)

	require.NoError(t, s.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: testURI},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "local function f(a: number, b: string) end\nf()"},
		},
	}))
	res, err = s.textDocumentSignatureHelp(ctx, signatureParams(testURI, 1, 2))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "f(a: number, b: string): ()", res.Signatures[0].Label)

	require.NoError(t, s.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	}))
	_, err = s.textDocumentSignatureHelp(ctx, signatureParams(testURI, 1, 2))
	assert.True(t, errors.Is(err, ErrDocumentNotFound))
}

func TestSignatureHelp_Definitions(t *testing.T) {
	s := testServer(WithDefinitions(Definitions{
		Package: "@game",
		Name:    "@game/game.d.luau",
		Text:    "declare function spawn(callback: () -> (), delay: number?): ()",
	}))
	openDoc(s, testURI, "spawn()")

	res, err := s.textDocumentSignatureHelp(mockContext(), signatureParams(testURI, 0, 6))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "spawn(callback: () -> (), delay: number?): ()", res.Signatures[0].Label)
}

func TestSignatureHelp_Span(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	s := testServer(WithTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))))
	openDoc(s, testURI, "print()")

	_, err := s.textDocumentSignatureHelp(mockContext(), signatureParams(testURI, 0, 6))
	require.NoError(t, err)
	_, err = s.textDocumentSignatureHelp(mockContext(), signatureParams("file:///tmp/missing.luau", 0, 0))
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "textDocument/signatureHelp", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("signatures", 1))
	assert.Contains(t, spans[0].Attributes(), attribute.String("uri", testURI))
	assert.NotEmpty(t, spans[1].Events(), "errors are recorded on the span")
}

// --- Diagnostics ---

func TestDiagnostics(t *testing.T) {
	s := testServer()
	ctx, captured := capturingContext()
	require.NoError(t, s.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: testURI, LanguageID: "luau", Version: 1,
			Text: "local x: Missing = 1\nlocal y = )\n"},
	}))
	require.Len(t, *captured, 1)
	diags := (*captured)[0].Diagnostics
	require.GreaterOrEqual(t, len(diags), 2)

	var messages []string
	for _, d := range diags {
		messages = append(messages, d.Message)
	}
	assert.Contains(t, messages, "unknown type 'Missing'")

	require.NoError(t, s.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	}))
	require.Len(t, *captured, 2)
	assert.Empty(t, (*captured)[1].Diagnostics)
}

func TestInitialize(t *testing.T) {
	s := testServer()
	root := "file:///tmp/luaulsp-test"
	out, err := s.initialize(mockContext(), &protocol.InitializeParams{
		RootURI: &root,
		InitializationOptions: map[string]any{
			"signatureHelp": map[string]any{"enabled": false},
		},
	})
	require.NoError(t, err)
	result := out.(protocol.InitializeResult)
	require.NotNil(t, result.Capabilities.SignatureHelpProvider)
	assert.Equal(t, []string{"(", ","}, result.Capabilities.SignatureHelpProvider.TriggerCharacters)
	assert.Equal(t, "/tmp/luaulsp-test", s.rootPath)
	assert.False(t, s.settings().SignatureHelpEnabled)
}

func TestUpdateSettings_Invalid(t *testing.T) {
	s := testServer()
	assert.Error(t, s.updateSettings("enabled"))
	assert.Error(t, s.updateSettings(map[string]any{ConfigSection: 1}))
	assert.True(t, s.settings().SignatureHelpEnabled)
}

// --- Workspace snapshots ---

func TestWorkspace_SnapshotText(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, "print(1)")
	w := s.Workspace()
	snap, err := w.Snapshot(testURI)
	require.NoError(t, err)
	assert.Equal(t, "print(1)", snap.Text)

	// The document changes before the workspace hears about it.
	s.docs.Change(testURI, 2, "-- changed\nprint(1)")
	again, err := w.Snapshot(testURI)
	require.NoError(t, err)
	assert.Same(t, snap.Source, again.Source)
	assert.Equal(t, "print(1)", again.Text, "text is the text that was parsed")

	w.Changed(testURI)
	changed, err := w.Snapshot(testURI)
	require.NoError(t, err)
	assert.Equal(t, "-- changed\nprint(1)", changed.Text)
	assert.Equal(t, changed.Text, changed.Source.Text)
}

func TestWorkspace_EnvironmentUsesSnapshot(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, "--- Old docs.\nlocal function f() end\nf()")
	w := s.Workspace()
	old, err := w.Snapshot(testURI)
	require.NoError(t, err)

	s.docs.Change(testURI, 2, "--- New docs.\nlocal function f() end\nf()")
	w.Changed(testURI)
	_, err = w.Snapshot(testURI)
	require.NoError(t, err)

	res := signature.Help(signature.Query{
		Source:   old.Source,
		Module:   old.Module,
		Position: ast.Position{Line: 2, Column: 2},
	}, w.Environment(old))
	require.NotNil(t, res)
	require.Len(t, res.Signatures, 1)
	assert.Equal(t, "Old docs.", res.Signatures[0].Documentation)
}

func TestWorkspace_ConcurrentChecks(t *testing.T) {
	const other = "file:///tmp/luaulsp-test/other.luau"
	s := testServer()
	openDoc(s, testURI, "function math.extra() end")
	openDoc(s, other, "math.abs()")
	w := s.Workspace()
	snap, err := w.Snapshot(other)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			s.docs.Change(testURI, int32(i+2), fmt.Sprintf("function math.extra%d() end", i))
			w.Changed(testURI)
			_, _ = w.Snapshot(testURI)
		}
	}()
	for i := 0; i < 50; i++ {
		res := signature.Help(signature.Query{
			Source:   snap.Source,
			Module:   snap.Module,
			Position: ast.Position{Line: 0, Column: 9},
		}, w.Environment(snap))
		require.NotNil(t, res)
		assert.Len(t, res.Signatures, 1)
	}
	wg.Wait()

	mine, err := w.Snapshot(testURI)
	require.NoError(t, err)
	require.NotEmpty(t, mine.Module.Errors)
	assert.Contains(t, mine.Module.Errors[0].Message, "cannot add property")

	openDoc(s, other, "math.extra49()")
	later, err := w.Snapshot(other)
	require.NoError(t, err)
	res := signature.Help(signature.Query{
		Source:   later.Source,
		Module:   later.Module,
		Position: ast.Position{Line: 0, Column: 13},
	}, w.Environment(later))
	require.NotNil(t, res)
	assert.Empty(t, res.Signatures, "fields added by one module are not visible in another")
}
