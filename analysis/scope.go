// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/types"
)

// ScopeKind classifies the kind of scope.
type ScopeKind int

const (
	ScopeGlobal   ScopeKind = iota // builtins and definition files
	ScopeModule                    // a checked source file
	ScopeFunction                  // function body
	ScopeBlock                     // do/if/while/for/repeat body
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Scope represents a lexical scope in the source.
type Scope struct {
	Kind        ScopeKind
	Parent      *Scope
	Children    []*Scope
	Location    ast.Location
	Bindings    map[string]*Binding
	TypeAliases map[string]*TypeAlias
	Node        ast.Node // the AST node that introduced this scope
}

// NewScope creates a new scope of the given kind with the given parent.
func NewScope(kind ScopeKind, parent *Scope, node ast.Node) *Scope {
	s := &Scope{
		Kind:        kind,
		Parent:      parent,
		Bindings:    make(map[string]*Binding),
		TypeAliases: make(map[string]*TypeAlias),
		Node:        node,
	}
	if node != nil {
		s.Location = node.Loc()
	}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// Define adds a binding to this scope, replacing any binding of the same
// name.
func (s *Scope) Define(b *Binding) {
	b.Scope = s
	s.Bindings[b.Name] = b
}

// Lookup resolves a binding by walking the parent chain.
// Returns nil if the name is not bound.
func (s *Scope) Lookup(name string) *Binding {
	for scope := s; scope != nil; scope = scope.Parent {
		if b, ok := scope.Bindings[name]; ok {
			return b
		}
	}
	return nil
}

// LookupLocal resolves a binding only in this scope (not parents).
func (s *Scope) LookupLocal(name string) *Binding {
	return s.Bindings[name]
}

// DefineType adds a type alias to this scope.
func (s *Scope) DefineType(alias *TypeAlias) {
	s.TypeAliases[alias.Name] = alias
}

// LookupType resolves a type alias by walking the parent chain.
func (s *Scope) LookupType(name string) *TypeAlias {
	for scope := s; scope != nil; scope = scope.Parent {
		if alias, ok := scope.TypeAliases[name]; ok {
			return alias
		}
	}
	return nil
}

// LookupAlias implements types.AliasLookup.  It returns the name of an alias
// visible from s that names exactly t.  Aliases of builtin types are never
// reported.
func (s *Scope) LookupAlias(t types.Type) (string, bool) {
	for scope := s; scope != nil; scope = scope.Parent {
		for name, alias := range scope.TypeAliases {
			if !alias.nameable() || types.Follow(alias.Type) != t {
				continue
			}
			if visible := s.LookupType(name); visible == alias {
				return name, true
			}
		}
	}
	return "", false
}

// ScopeAtPosition returns the innermost scope that contains pos.  It walks
// the scope tree depth-first and returns root when no child contains pos.
func ScopeAtPosition(root *Scope, pos ast.Position) *Scope {
	if root == nil {
		return nil
	}
	for _, child := range root.Children {
		if child.Location.ContainsClosed(pos) {
			return ScopeAtPosition(child, pos)
		}
	}
	return root
}
