// Copyright © 2024 The ELPS authors

package signature

import (
	"testing"

	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/luautest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateCall_Nodes(t *testing.T) {
	call := &ast.ExprCall{Func: &ast.ExprGlobal{Name: "f"}}
	arg := &ast.ExprGlobal{Name: "x"}
	group := &ast.ExprGroup{Expr: arg}
	stat := &ast.StatExpr{Expr: call}

	assert.Nil(t, LocateCall(nil))
	assert.Same(t, call, LocateCall([]ast.Node{stat, call}))
	assert.Same(t, call, LocateCall([]ast.Node{stat, call, arg}))
	assert.Nil(t, LocateCall([]ast.Node{stat, call, group, arg}), "only two levels are searched")
	assert.Nil(t, LocateCall([]ast.Node{stat}))
}

func TestLocateCall_Source(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		callee string // "" when no call is found
	}{
		{"empty argument list", "print(|)", "print"},
		{"after comma", "print(1, |)", "print"},
		{"inside argument", "print(tost|ring)", "print"},
		{"inner call", "print(tostring(|))", "tostring"},
		{"after inner call", "print(tostring(1)|)", "print"},
		{"end of binary argument", "print(a + b|)", "print"},
		{"end of arithmetic argument", "print(1 + 2|)", "print"},
		{"end of concatenation", "local s = 'x'\nprint('a' .. s|)", "print"},
		{"end of identifier argument", "print(x|)", "print"},
		{"after last argument", "print(1, 2|)", "print"},
		{"unclosed call at end of file", "print(1, |", "print"},
		{"unclosed call before newline", "print(1, |\n", "print"},
		{"after closing paren at end of file", "print(1)|", "print"},
		{"method call", "local s = \"x\"\nlocal r = s:rep(|)", "s:rep"},
		{"plain identifier", "local x = pri|nt", ""},
		{"statement", "local x = 1|", ""},
		{"grouped argument", "print((tost|ring))", ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			snap := luautest.Check(t, test.src)
			call := LocateCall(Ancestry(snap.Source, snap.Position))
			if test.callee == "" {
				assert.Nil(t, call)
				return
			}
			require.NotNil(t, call)
			assert.Contains(t, CalleeName(call.Func), test.callee)
		})
	}
}

func TestAncestry(t *testing.T) {
	snap := luautest.Check(t, "print(|)")
	ancestry := Ancestry(snap.Source, snap.Position)
	require.NotEmpty(t, ancestry)
	assert.Same(t, snap.Source.Root, ancestry[0])

	assert.Empty(t, Ancestry(snap.Source, ast.Position{Line: 40}))
	assert.Empty(t, Ancestry(nil, snap.Position))
}
