// Copyright © 2024 The ELPS authors

package signature

import (
	"strconv"
	"strings"

	"github.com/luthersystems/luaulsp/analysis"
	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/docdb"
	"github.com/luthersystems/luaulsp/types"
)

const (
	overloadSep = "/overload/"
	paramSep    = "/param/"
)

// BaseSymbol returns the documentation symbol of call's callee.  It is
// resolved at the last character of the callee, so the symbol may already
// name the overload chosen for the call.
func BaseSymbol(src *analysis.SourceModule, mod *analysis.Module, call *ast.ExprCall) (string, bool) {
	end := call.Func.Loc().End
	return analysis.DocumentationSymbolAtPosition(src, mod, ast.Position{Line: end.Line, Column: end.Column - 1})
}

// StripOverload removes an overload suffix from symbol.
func StripOverload(symbol string) string {
	if i := strings.Index(symbol, overloadSep); i >= 0 {
		return symbol[:i]
	}
	return symbol
}

// WithOverload names the overload of symbol whose type prints as
// signature.
func WithOverload(symbol string, signature string) string {
	return symbol + overloadSep + signature
}

// ParamSymbol names the documentation of parameter index of symbol.
func ParamSymbol(symbol string, index int) string {
	return symbol + paramSep + strconv.Itoa(index)
}

// CandidateSymbol returns the documentation symbol of c given the callee's
// base symbol.
func CandidateSymbol(base string, ok bool, c Candidate) (string, bool) {
	if !ok {
		return "", false
	}
	if c.Overloaded {
		return WithOverload(StripOverload(base), types.ToString(c.Type, types.ToStringOptions{})), true
	}
	return base, true
}

// Environment supplies documentation to signature queries.
type Environment interface {
	// Documentation returns the markdown documentation of symbol.
	Documentation(symbol string) (string, bool)
	// DefinitionComment returns the markdown rendering of the doc comment
	// written above a definition.
	DefinitionComment(def types.Definition) string
}

// Docs is an Environment backed by a documentation store.  Sources, when
// set, returns the parsed module holding a definition.
type Docs struct {
	Store   docdb.Store
	Sources func(module string) *analysis.SourceModule
}

var _ Environment = Docs{}

func (d Docs) Documentation(symbol string) (string, bool) {
	if d.Store == nil {
		return "", false
	}
	return docdb.Print(d.Store, symbol)
}

func (d Docs) DefinitionComment(def types.Definition) string {
	if d.Sources == nil {
		return ""
	}
	src := d.Sources(def.Module)
	if src == nil {
		return ""
	}
	return docdb.MoonwaveDocumentation(src.Comments, def.Location.Begin.Line)
}

// documentation returns the documentation of a candidate with the given
// symbol.  Without a symbol the comment above the function's definition is
// used.
func documentation(env Environment, f *types.Function, symbol string, ok bool) string {
	if ok {
		text, _ := env.Documentation(symbol)
		return text
	}
	if f.Definition != nil {
		return env.DefinitionComment(*f.Definition)
	}
	return ""
}

func paramDocumentation(env Environment, symbol string, ok bool, index int) string {
	if !ok {
		return ""
	}
	text, _ := env.Documentation(ParamSymbol(symbol, index))
	return text
}
