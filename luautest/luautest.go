// Copyright © 2024 The ELPS authors

// Package luautest provides helpers for tests that check Luau sources and
// run position queries against them.
package luautest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/luthersystems/luaulsp/analysis"
	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/docs"
	"github.com/luthersystems/luaulsp/parser"
)

// CursorMarker marks the query position in a test source.
const CursorMarker = "|"

// Snapshot is a checked source together with the marked cursor.
type Snapshot struct {
	Text     string
	Source   *analysis.SourceModule
	Module   *analysis.Module
	Position ast.Position
}

// Cursor removes the single CursorMarker from text and returns the
// remaining text and the marker's position.
func Cursor(t testing.TB, text string) (string, ast.Position) {
	t.Helper()
	if n := strings.Count(text, CursorMarker); n != 1 {
		t.Fatalf("source must contain exactly one cursor marker, found %d", n)
	}
	i := strings.Index(text, CursorMarker)
	return text[:i] + text[i+len(CursorMarker):], Position(text, i)
}

// Position converts a byte offset in text to a position.
func Position(text string, offset int) ast.Position {
	before := text[:offset]
	line := strings.Count(before, "\n")
	col := offset - (strings.LastIndex(before, "\n") + 1)
	return ast.Position{Line: line, Column: col}
}

// Globals returns a global scope holding the bundled standard library
// definitions and any extra definition sources.
func Globals(t testing.TB, definitions ...string) *analysis.Scope {
	t.Helper()
	globals := analysis.NewScope(analysis.ScopeGlobal, nil, nil)
	if _, err := analysis.LoadDefinitions(globals, docs.Package, docs.DefinitionsName, docs.Definitions); err != nil {
		t.Fatalf("bundled definitions: %v", err)
	}
	for i, text := range definitions {
		name := fmt.Sprintf("@test/definitions%d.d.luau", i)
		if _, err := analysis.LoadDefinitions(globals, "@test", name, text); err != nil {
			t.Fatalf("definitions: %v", err)
		}
	}
	return globals
}

// Check parses and checks a cursor-marked source named "test.luau" against
// Globals.  Parse errors are logged but do not fail the test, since
// queries are often made on incomplete code.
func Check(t testing.TB, text string, definitions ...string) *Snapshot {
	t.Helper()
	text, pos := Cursor(t, text)
	res := parser.Parse("test.luau", text)
	if err := parser.Err(res); err != nil {
		t.Logf("parse: %v", err)
	}
	src := &analysis.SourceModule{Name: "test.luau", Text: text, Root: res.Root, Comments: res.Comments, Errors: res.Errors}
	mod := analysis.Check(src, Globals(t, definitions...))
	for _, err := range mod.Errors {
		t.Logf("check: %v", err)
	}
	return &Snapshot{Text: text, Source: src, Module: mod, Position: pos}
}
