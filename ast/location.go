// Copyright © 2024 The ELPS authors

package ast

import "fmt"

// Position is a 0-based line and byte column within a source file.
type Position struct {
	Line   int
	Column int
}

// Less reports whether p comes strictly before q.
func (p Position) Less(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

// LessEq reports whether p comes before or at q.
func (p Position) LessEq(q Position) bool {
	return p == q || p.Less(q)
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Location is a half-open source range [Begin, End).
type Location struct {
	Begin Position
	End   Position
}

// Contains reports whether pos lies in [Begin, End).
func (l Location) Contains(pos Position) bool {
	return l.Begin.LessEq(pos) && pos.Less(l.End)
}

// ContainsClosed reports whether pos lies in [Begin, End].
func (l Location) ContainsClosed(pos Position) bool {
	return l.Begin.LessEq(pos) && pos.LessEq(l.End)
}

// Encloses reports whether other lies entirely inside l.
func (l Location) Encloses(other Location) bool {
	return l.Begin.LessEq(other.Begin) && other.End.LessEq(l.End)
}

// Span returns the location covering both l and other.
func (l Location) Span(other Location) Location {
	out := l
	if other.Begin.Less(out.Begin) {
		out.Begin = other.Begin
	}
	if out.End.Less(other.End) {
		out.End = other.End
	}
	return out
}

func (l Location) String() string {
	return fmt.Sprintf("%v-%v", l.Begin, l.End)
}
