// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/types"
)

// BindingKind classifies a binding.
type BindingKind int

const (
	BindLocal     BindingKind = iota // local, local function
	BindParameter                    // function parameter or loop variable
	BindGlobal                       // assigned or declared global
)

func (k BindingKind) String() string {
	switch k {
	case BindLocal:
		return "local"
	case BindParameter:
		return "parameter"
	case BindGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// Binding associates a name with its type in a scope.
type Binding struct {
	Name                string
	Kind                BindingKind
	Type                types.Type
	Location            ast.Location
	DocumentationSymbol string
	Local               *ast.Local // nil for globals
	Scope               *Scope
}

// TypeAlias is a named type introduced by `type`, `export type` or a
// declared class.
type TypeAlias struct {
	Name     string
	Type     types.Type
	Generics []string
	Location ast.Location
	Exported bool

	reference bool // the alias body is a reference to another named type
}

// nameable reports whether the alias names a structural type whose printed
// form may be replaced by the alias name.
func (a *TypeAlias) nameable() bool {
	if a.reference {
		return false
	}
	switch types.Follow(a.Type).(type) {
	case *types.Table, *types.Function, *types.Union, *types.Intersection:
		return true
	}
	return false
}
