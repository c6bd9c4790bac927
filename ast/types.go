// Copyright © 2024 The ELPS authors

package ast

// Type is a type annotation.
type Type interface {
	Loc() Location
	typeNode()
}

// TypeList is an ordered list of types with an optional variadic tail
// (...T).
type TypeList struct {
	Types []Type
	Tail  Type
}

// ArgumentName names an argument inside a function type.
type ArgumentName struct {
	Name     string
	Location Location
}

// TypeReference is a named type such as number, Foo or mod.Bar<T>.
type TypeReference struct {
	Location   Location
	Prefix     string
	Name       string
	Parameters []Type
}

type TableProp struct {
	Name     string
	Type     Type
	Location Location
}

type TableIndexer struct {
	Key   Type
	Value Type
}

// TypeTable is a table type. {T} is parsed as an indexer from number to T.
type TypeTable struct {
	Location Location
	Props    []TableProp
	Indexer  *TableIndexer
}

// TypeFunction is a function type. ArgNames is aligned with ArgTypes.Types
// and may contain nil entries for unnamed arguments.
type TypeFunction struct {
	Location    Location
	Generics    []*GenericName
	ArgTypes    TypeList
	ArgNames    []*ArgumentName
	ReturnTypes TypeList
}

type TypeTypeof struct {
	Location Location
	Expr     Expr
}

type TypeUnion struct {
	Location Location
	Types    []Type
}

type TypeIntersection struct {
	Location Location
	Types    []Type
}

// TypeOptional is the nil member produced by the T? shorthand.
type TypeOptional struct {
	Location Location
}

type TypeSingletonBool struct {
	Location Location
	Value    bool
}

type TypeSingletonString struct {
	Location Location
	Value    string
}

// TypeError stands in for a type annotation the parser could not read.
type TypeError struct {
	Location Location
	Message  string
}

func (n *TypeReference) Loc() Location       { return n.Location }
func (n *TypeTable) Loc() Location           { return n.Location }
func (n *TypeFunction) Loc() Location        { return n.Location }
func (n *TypeTypeof) Loc() Location          { return n.Location }
func (n *TypeUnion) Loc() Location           { return n.Location }
func (n *TypeIntersection) Loc() Location    { return n.Location }
func (n *TypeOptional) Loc() Location        { return n.Location }
func (n *TypeSingletonBool) Loc() Location   { return n.Location }
func (n *TypeSingletonString) Loc() Location { return n.Location }
func (n *TypeError) Loc() Location           { return n.Location }

func (*TypeReference) typeNode()       {}
func (*TypeTable) typeNode()           {}
func (*TypeFunction) typeNode()        {}
func (*TypeTypeof) typeNode()          {}
func (*TypeUnion) typeNode()           {}
func (*TypeIntersection) typeNode()    {}
func (*TypeOptional) typeNode()        {}
func (*TypeSingletonBool) typeNode()   {}
func (*TypeSingletonString) typeNode() {}
func (*TypeError) typeNode()           {}

// Comment is a source comment retained by the parser.
type Comment struct {
	Location Location
	Text     string // raw text including the leading dashes
	Block    bool   // --[[ ]] or --[=[ ]=] style
}
