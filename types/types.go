// Copyright © 2024 The ELPS authors

// Package types defines the Luau type graph produced by analysis and
// consumed by editor queries.
//
// Types are compared by identity.  A type alias resolves to the same
// pointer everywhere it is referenced, which lets printers recover alias
// names.
package types

import "github.com/luthersystems/luaulsp/ast"

// Type is any node of the type graph.
type Type interface {
	typeNode()
}

// PrimitiveKind enumerates the builtin scalar types.
type PrimitiveKind int

const (
	Nil PrimitiveKind = iota
	Boolean
	Number
	String
	Thread
)

func (k PrimitiveKind) String() string {
	switch k {
	case Nil:
		return "nil"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Thread:
		return "thread"
	}
	return "unknown"
}

type Primitive struct {
	Kind PrimitiveKind
}

// Shared instances of the builtin types.
var (
	NilType     = &Primitive{Kind: Nil}
	BooleanType = &Primitive{Kind: Boolean}
	NumberType  = &Primitive{Kind: Number}
	StringType  = &Primitive{Kind: String}
	ThreadType  = &Primitive{Kind: Thread}
	AnyType     = &Any{}
	UnknownType = &Unknown{}
	NeverType   = &Never{}
	ErrorType   = &Error{}
)

type Any struct{}

type Unknown struct{}

type Never struct{}

// Error is the type of an expression that failed to check.
type Error struct{}

// Bound forwards to another type.  Follow resolves chains of Bound.
type Bound struct {
	To Type
}

// Generic is a generic type parameter.
type Generic struct {
	Name string
}

type SingletonBool struct {
	Value bool
}

type SingletonString struct {
	Value string
}

// Pack is an ordered list of types with an optional variadic tail.
type Pack struct {
	Head []Type
	Tail Type // element type of a trailing ...T, or nil
}

// FunctionArgument names a declared parameter.
type FunctionArgument struct {
	Name     string
	Location ast.Location
}

// Definition records where a function or table was defined.
type Definition struct {
	Module   string
	Location ast.Location
}

// Function is a callable type.  ArgNames is aligned with Params.Head and may
// hold nil entries for unnamed parameters.  HasSelf is set for functions
// defined with method syntax; their first parameter is self.
type Function struct {
	Generics            []string
	Params              Pack
	ArgNames            []*FunctionArgument
	Returns             Pack
	HasSelf             bool
	Definition          *Definition
	DocumentationSymbol string
}

// ArgName returns the name of parameter i, or "" when it is unnamed.
func (f *Function) ArgName(i int) string {
	if i < 0 || i >= len(f.ArgNames) || f.ArgNames[i] == nil {
		return ""
	}
	return f.ArgNames[i].Name
}

// Accepts reports whether a call with n arguments fits f's arity.  Optional
// parameters are not tracked, so any count up to the declared parameters
// fits, and more only with a variadic tail.
func (f *Function) Accepts(n int) bool {
	return n <= len(f.Params.Head) || f.Params.Tail != nil
}

type Property struct {
	Type                Type
	DocumentationSymbol string
	Location            ast.Location
}

type Indexer struct {
	Key   Type
	Value Type
}

// TableState is the kind of a table type, which printers may mark.
type TableState int

const (
	Sealed TableState = iota
	Unsealed
)

type Table struct {
	Props               map[string]*Property
	Indexer             *Indexer
	State               TableState
	DocumentationSymbol string
	Definition          *Definition
}

// NewTable returns an empty sealed table type.
func NewTable() *Table {
	return &Table{Props: make(map[string]*Property)}
}

// Class is a type declared by a definition file.
type Class struct {
	Name                string
	Props               map[string]*Property
	Parent              *Class
	DocumentationSymbol string
}

// Prop looks name up on c and its ancestors.
func (c *Class) Prop(name string) (*Property, bool) {
	for cls := c; cls != nil; cls = cls.Parent {
		if p, ok := cls.Props[name]; ok {
			return p, true
		}
	}
	return nil, false
}

type Union struct {
	Types []Type
}

type Intersection struct {
	Types []Type
}

func (*Primitive) typeNode()       {}
func (*Any) typeNode()             {}
func (*Unknown) typeNode()         {}
func (*Never) typeNode()           {}
func (*Error) typeNode()           {}
func (*Bound) typeNode()           {}
func (*Generic) typeNode()         {}
func (*SingletonBool) typeNode()   {}
func (*SingletonString) typeNode() {}
func (*Function) typeNode()        {}
func (*Table) typeNode()           {}
func (*Class) typeNode()           {}
func (*Union) typeNode()           {}
func (*Intersection) typeNode()    {}
