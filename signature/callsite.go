// Copyright © 2024 The ELPS authors

package signature

import "github.com/luthersystems/luaulsp/ast"

// LocateCall returns the call the cursor belongs to given its ancestry.
//
// Only the innermost node and its parent are considered.  The parent covers
// a cursor inside an argument, or just past the closing parenthesis of a
// call ending the document.  A call buried deeper, such as one whose last argument is a
// parenthesized expression holding the cursor, is not found.
func LocateCall(ancestry []ast.Node) *ast.ExprCall {
	n := len(ancestry)
	if n == 0 {
		return nil
	}
	if call, ok := ancestry[n-1].(*ast.ExprCall); ok {
		return call
	}
	if n >= 2 {
		if call, ok := ancestry[n-2].(*ast.ExprCall); ok {
			return call
		}
	}
	return nil
}
