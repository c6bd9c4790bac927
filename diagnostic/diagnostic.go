// Copyright © 2024 The ELPS authors

// Package diagnostic renders parse and type errors of Luau sources as
// annotated source snippets for CLI output.
package diagnostic

// Severity of a diagnostic.  Parse errors are SeverityError and type errors
// SeverityWarning.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	}
	return "unknown"
}

// Span is an underlined region of one source line.  Unlike ast.Location,
// lines and columns count from 1 and EndCol is inclusive; FromLocation
// converts between the two.  Columns count bytes.
type Span struct {
	File string
	Line int
	Col  int

	// EndCol is the last underlined column.  Zero underlines the identifier
	// or number starting at Col, or just Col.
	EndCol int

	Label string
}

type Diagnostic struct {
	Severity Severity
	Message  string
	Spans    []Span
	Notes    []string
}
