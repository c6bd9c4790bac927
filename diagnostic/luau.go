// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"sort"

	"github.com/luthersystems/luaulsp/analysis"
	"github.com/luthersystems/luaulsp/ast"
)

// FromLocation returns a span covering loc.  A location spanning several
// lines is underlined up to the end of its first token.
func FromLocation(file string, loc ast.Location, label string) Span {
	span := Span{
		File:  file,
		Line:  loc.Begin.Line + 1,
		Col:   loc.Begin.Column + 1,
		Label: label,
	}
	if loc.End.Line == loc.Begin.Line && loc.End.Column > loc.Begin.Column {
		span.EndCol = loc.End.Column
	}
	return span
}

// FromSource returns the parse errors of src and the type errors of mod
// ordered by position.  Parse errors are errors and type errors are
// warnings, matching what the language server publishes.  File names the
// source in spans.  A nil mod contributes nothing.
func FromSource(file string, src *analysis.SourceModule, mod *analysis.Module) []Diagnostic {
	type located struct {
		pos  ast.Position
		diag Diagnostic
	}
	var all []located
	add := func(sev Severity, loc ast.Location, msg string) {
		all = append(all, located{loc.Begin, Diagnostic{
			Severity: sev,
			Message:  msg,
			Spans:    []Span{FromLocation(file, loc, "")},
		}})
	}
	if src != nil {
		for _, err := range src.Errors {
			add(SeverityError, err.Location, err.Message)
		}
	}
	if mod != nil {
		for _, err := range mod.Errors {
			add(SeverityWarning, err.Location, err.Message)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].pos.Less(all[j].pos) })
	diags := make([]Diagnostic, len(all))
	for i := range all {
		diags[i] = all[i].diag
	}
	return diags
}
