// Copyright © 2024 The ELPS authors

// Package astutil provides shared AST walking utilities for Luau syntax
// trees.
//
// These helpers are used by the analysis and signature packages for
// traversing parsed chunks.  Type annotations are never descended into.
package astutil

import "github.com/luthersystems/luaulsp/ast"

// Walk calls fn for every statement and expression in the tree, depth-first
// in source order.  parent is nil for root.
func Walk(root ast.Node, fn func(node ast.Node, parent ast.Node, depth int)) {
	walkNode(root, nil, 0, fn)
}

func walkNode(node ast.Node, parent ast.Node, depth int, fn func(ast.Node, ast.Node, int)) {
	if isNil(node) {
		return
	}
	fn(node, parent, depth)
	for _, child := range Children(node) {
		walkNode(child, node, depth+1, fn)
	}
}

// WalkCalls calls fn for every call expression in the tree.
func WalkCalls(root ast.Node, fn func(call *ast.ExprCall, depth int)) {
	Walk(root, func(node ast.Node, _ ast.Node, depth int) {
		if call, ok := node.(*ast.ExprCall); ok {
			fn(call, depth)
		}
	})
}

// CalleeName returns the dotted name of a call target: `foo`, `a.b.c` or
// `obj:method`.  Callees of any other shape return "".
func CalleeName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.ExprLocal:
		return e.Local.Name
	case *ast.ExprGlobal:
		return e.Name
	case *ast.ExprIndexName:
		prefix := CalleeName(e.Expr)
		if prefix == "" || e.Index == "" {
			return ""
		}
		return prefix + string(e.Op) + e.Index
	}
	return ""
}

// ArgCount returns the number of arguments written at a call site.
func ArgCount(call *ast.ExprCall) int {
	return len(call.Args)
}

// Children returns the statement and expression children of node in source
// order.
func Children(node ast.Node) []ast.Node {
	var out []ast.Node
	add := func(nodes ...ast.Node) {
		for _, n := range nodes {
			if !isNil(n) {
				out = append(out, n)
			}
		}
	}
	addExprs := func(exprs []ast.Expr) {
		for _, e := range exprs {
			add(e)
		}
	}
	switch n := node.(type) {
	case *ast.ExprGroup:
		add(n.Expr)
	case *ast.ExprCall:
		add(n.Func)
		addExprs(n.Args)
	case *ast.ExprIndexName:
		add(n.Expr)
	case *ast.ExprIndexExpr:
		add(n.Expr, n.Index)
	case *ast.ExprFunction:
		add(n.Body)
	case *ast.ExprTable:
		for _, item := range n.Items {
			if item.Kind == ast.TableItemGeneral {
				add(item.Key)
			}
			add(item.Value)
		}
	case *ast.ExprUnary:
		add(n.Expr)
	case *ast.ExprBinary:
		add(n.Left, n.Right)
	case *ast.ExprTypeAssertion:
		add(n.Expr)
	case *ast.ExprIfElse:
		add(n.Condition, n.TrueExpr, n.FalseExpr)
	case *ast.ExprError:
		addExprs(n.Expressions)
	case *ast.StatBlock:
		for _, s := range n.Body {
			add(s)
		}
	case *ast.StatIf:
		add(n.Condition, n.ThenBody, n.ElseBody)
	case *ast.StatWhile:
		add(n.Condition, n.Body)
	case *ast.StatRepeat:
		add(n.Body, n.Condition)
	case *ast.StatFor:
		add(n.From, n.To, n.Step, n.Body)
	case *ast.StatForIn:
		addExprs(n.Values)
		add(n.Body)
	case *ast.StatReturn:
		addExprs(n.List)
	case *ast.StatExpr:
		add(n.Expr)
	case *ast.StatLocal:
		addExprs(n.Values)
	case *ast.StatAssign:
		addExprs(n.Vars)
		addExprs(n.Values)
	case *ast.StatCompoundAssign:
		add(n.Var, n.Value)
	case *ast.StatFunction:
		add(n.Name, n.Func)
	case *ast.StatLocalFunction:
		add(n.Func)
	case *ast.StatError:
		addExprs(n.Expressions)
		for _, s := range n.Statements {
			add(s)
		}
	}
	return out
}

// isNil reports whether n is nil or a typed nil pointer stored in the
// interface.
func isNil(n ast.Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *ast.StatBlock:
		return v == nil
	case *ast.ExprFunction:
		return v == nil
	case *ast.StatIf:
		return v == nil
	}
	return false
}
