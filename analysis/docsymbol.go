// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/astutil"
	"github.com/luthersystems/luaulsp/types"
)

// DocumentationSymbolAtPosition returns the documentation symbol of the
// name at pos.  A local or global name yields the symbol of its binding.
// Otherwise the property named by an a.b expression yields the symbol of
// that property on a's table or class type.
//
// When the symbol names an overloaded function and the expression is the
// callee of a call with a resolved overload, the symbol is suffixed with
// "/overload/" and the resolved type.
func DocumentationSymbolAtPosition(src *SourceModule, mod *Module, pos ast.Position) (string, bool) {
	if src == nil || mod == nil {
		return "", false
	}
	ancestry := astutil.FindAncestryClosed(src.Root, pos)
	var target, parent ast.Expr
	if n := len(ancestry); n >= 1 {
		target, _ = ancestry[n-1].(ast.Expr)
		if n >= 2 {
			parent, _ = ancestry[n-2].(ast.Expr)
		}
	}

	if b := bindingOf(mod, target, pos); b != nil {
		return checkOverloaded(mod, b.Type, parent, b.DocumentationSymbol)
	}

	index, ok := target.(*ast.ExprIndexName)
	if !ok {
		return "", false
	}
	owner, ok := mod.AstTypes[index.Expr]
	if !ok {
		return "", false
	}
	switch owner := types.Follow(owner).(type) {
	case *types.Table:
		if prop, ok := owner.Props[index.Index]; ok {
			return checkOverloaded(mod, prop.Type, parent, prop.DocumentationSymbol)
		}
	case *types.Class:
		if prop, ok := owner.Prop(index.Index); ok {
			return checkOverloaded(mod, prop.Type, parent, prop.DocumentationSymbol)
		}
	}
	return "", false
}

// bindingOf returns the binding named by a local or global expression.
func bindingOf(mod *Module, expr ast.Expr, pos ast.Position) *Binding {
	scope := ScopeAtPosition(mod.Scope, pos)
	switch e := expr.(type) {
	case *ast.ExprLocal:
		for s := scope; s != nil; s = s.Parent {
			if b, ok := s.Bindings[e.Local.Name]; ok && b.Local == e.Local {
				return b
			}
		}
	case *ast.ExprGlobal:
		for s := scope; s != nil; s = s.Parent {
			if b, ok := s.Bindings[e.Name]; ok && b.Kind == BindGlobal {
				return b
			}
		}
	}
	return nil
}

func checkOverloaded(mod *Module, t types.Type, parent ast.Expr, symbol string) (string, bool) {
	if symbol == "" {
		return "", false
	}
	if _, ok := types.Follow(t).(*types.Intersection); !ok {
		return symbol, true
	}
	call, ok := parent.(*ast.ExprCall)
	if !ok {
		return symbol, true
	}
	if resolved, ok := mod.AstOverloadResolvedTypes[call]; ok {
		return symbol + "/overload/" + types.ToString(resolved, types.ToStringOptions{}), true
	}
	return symbol, true
}
