// Copyright © 2024 The ELPS authors

package types

// maxFollow bounds the length of a Bound chain.
const maxFollow = 1000

// Follow resolves t through any chain of Bound types and returns the
// terminal type.  A cyclic chain resolves to ErrorType.
func Follow(t Type) Type {
	for i := 0; i < maxFollow; i++ {
		b, ok := t.(*Bound)
		if !ok {
			return t
		}
		t = b.To
	}
	return ErrorType
}

// Prop returns the property name of t when t is a table or class.
func Prop(t Type, name string) (*Property, bool) {
	switch t := Follow(t).(type) {
	case *Table:
		p, ok := t.Props[name]
		return p, ok
	case *Class:
		return t.Prop(name)
	}
	return nil, false
}
