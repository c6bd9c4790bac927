// Copyright © 2024 The ELPS authors

// Package signature answers signature help queries.
//
// A query finds the call enclosing a cursor, expands the callee's type into
// its callable forms and renders each one as a label with highlight spans
// and documentation.  Queries read an analysis snapshot and never modify
// it.
package signature

import (
	"github.com/luthersystems/luaulsp/analysis"
	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/astutil"
)

// Query is a signature help request against one snapshot.
type Query struct {
	Source   *analysis.SourceModule
	Module   *analysis.Module
	Position ast.Position
	Options  Options
}

// Signature is one rendered candidate.
type Signature struct {
	Label           string
	Documentation   string
	Parameters      []Parameter
	ActiveParameter int
}

// Result lists the signatures of the call at the cursor.
type Result struct {
	Signatures []Signature
	// ActiveSignature is always the first signature.
	ActiveSignature int
	// ActiveParameter is the number of arguments at the call.  Each
	// signature clamps it to its own parameters.
	ActiveParameter int
}

// Help returns the signatures of the call at q.Position.  It returns nil
// when no call encloses the position or the callee has no type.  A callee
// that cannot be called yields a Result with no signatures.
func Help(q Query, env Environment) *Result {
	if q.Source == nil || q.Module == nil {
		return nil
	}
	ancestry := Ancestry(q.Source, q.Position)
	if len(ancestry) == 0 {
		return nil
	}
	call := LocateCall(ancestry)
	if call == nil {
		return nil
	}
	callee, ok := q.Module.AstTypes[call.Func]
	if !ok {
		return nil
	}
	scope := analysis.ScopeAtPosition(q.Module.Scope, q.Position)
	base, hasBase := BaseSymbol(q.Source, q.Module, call)

	argc := astutil.ArgCount(call)
	res := &Result{
		Signatures:      []Signature{},
		ActiveParameter: argc,
	}
	for _, c := range Expand(callee) {
		res.Signatures = append(res.Signatures, build(c, call, scope, q.Options, base, hasBase, argc, env))
	}
	return res
}

func build(c Candidate, call *ast.ExprCall, scope *analysis.Scope, opts Options, base string, hasBase bool, argc int, env Environment) Signature {
	r := Render(c, call, scope, opts)
	symbol, ok := CandidateSymbol(base, hasBase, c)

	texts := make([]string, len(r.Params))
	for i, p := range r.Params {
		texts[i] = p.Text
	}
	params := LocateSpans(r.Label, texts)
	for i := range params {
		params[i].Documentation = paramDocumentation(env, symbol, ok, r.Params[i].Index)
	}
	return Signature{
		Label:           r.Label,
		Documentation:   documentation(env, c.Function, symbol, ok),
		Parameters:      params,
		ActiveParameter: ActiveParameter(argc, len(params)),
	}
}
