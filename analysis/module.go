// Copyright © 2024 The ELPS authors

// Package analysis provides scope-aware type analysis for Luau source.
//
// The checker builds a scope tree from a parsed chunk and records a type
// for every expression from declared annotations.  It performs no inference
// beyond propagating those annotations.  A Frontend owns the parsed and
// checked modules of a workspace and re-checks only modules marked dirty.
package analysis

import (
	"errors"
	"fmt"

	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/parser"
	"github.com/luthersystems/luaulsp/parser/rdparser"
	"github.com/luthersystems/luaulsp/types"
)

// ErrNoSource is returned when a module name cannot be resolved to source
// text.
var ErrNoSource = errors.New("no source for module")

// SourceModule is the parsed form of a source file.  Text is the exact
// text that was parsed; positions in Root index into it.
type SourceModule struct {
	Name     string
	Text     string
	Root     *ast.StatBlock
	Comments []ast.Comment
	Errors   []*rdparser.ParseError
}

// ParseSource parses text into a SourceModule.
func ParseSource(name string, text string) *SourceModule {
	res := parser.Parse(name, text)
	return &SourceModule{
		Name:     name,
		Text:     text,
		Root:     res.Root,
		Comments: res.Comments,
		Errors:   res.Errors,
	}
}

// Module is the checked form of a source file.  A Module is never mutated
// after Check returns it.
type Module struct {
	Name string
	// AstTypes maps every checked expression to its type.
	AstTypes map[ast.Expr]types.Type
	// AstOverloadResolvedTypes maps a call whose callee is an intersection
	// to the member selected for its arguments.
	AstOverloadResolvedTypes map[ast.Expr]types.Type
	// LocalTypes maps local bindings to their types.
	LocalTypes map[*ast.Local]types.Type
	// Scope is the module scope; its parent is the global scope.
	Scope  *Scope
	Errors []*TypeError
}

// TypeError is a problem found while resolving annotations.
type TypeError struct {
	Module   string
	Location ast.Location
	Message  string
}

func (err *TypeError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", err.Module,
		err.Location.Begin.Line+1, err.Location.Begin.Column+1, err.Message)
}
