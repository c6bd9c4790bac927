// Copyright © 2024 The ELPS authors

package signature

import "github.com/luthersystems/luaulsp/types"

// Candidate is one callable form of a callee.
type Candidate struct {
	// Type is the candidate as it appears in the callee's type.  For an
	// overload it is the intersection member, which names the overload in
	// documentation symbols.
	Type       types.Type
	Function   *types.Function
	Overloaded bool
}

type shape int

const (
	shapeOther shape = iota
	shapeCallable
	shapeIntersection
)

func classify(t types.Type) shape {
	switch t.(type) {
	case *types.Function:
		return shapeCallable
	case *types.Intersection:
		return shapeIntersection
	}
	return shapeOther
}

// Expand returns the callable forms of t.  A function yields itself.  An
// intersection yields each of its function members in declared order.  Any
// other type yields nothing.
func Expand(t types.Type) []Candidate {
	t = types.Follow(t)
	switch classify(t) {
	case shapeCallable:
		return []Candidate{{Type: t, Function: t.(*types.Function)}}
	case shapeIntersection:
		var out []Candidate
		for _, part := range t.(*types.Intersection).Types {
			part = types.Follow(part)
			if classify(part) != shapeCallable {
				continue
			}
			out = append(out, Candidate{Type: part, Function: part.(*types.Function), Overloaded: true})
		}
		return out
	case shapeOther:
	}
	return nil
}
