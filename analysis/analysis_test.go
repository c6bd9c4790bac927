// Copyright © 2024 The ELPS authors

package analysis

import (
	"testing"

	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/astutil"
	"github.com/luthersystems/luaulsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseAndCheck is a test helper that parses source and checks it against
// an empty global scope.
func parseAndCheck(t *testing.T, source string) (*SourceModule, *Module) {
	t.Helper()
	src := ParseSource("test.luau", source)
	require.Empty(t, src.Errors)
	return src, Check(src, NewScope(ScopeGlobal, nil, nil))
}

func typeString(t types.Type) string {
	return types.ToString(t, types.ToStringOptions{})
}

func calls(root *ast.StatBlock) []*ast.ExprCall {
	var out []*ast.ExprCall
	astutil.WalkCalls(root, func(call *ast.ExprCall, _ int) {
		out = append(out, call)
	})
	return out
}

// --- Scope tests ---

func TestScope_Define_Lookup(t *testing.T) {
	parent := NewScope(ScopeGlobal, nil, nil)
	child := NewScope(ScopeBlock, parent, nil)

	parent.Define(&Binding{Name: "x", Kind: BindGlobal})
	child.Define(&Binding{Name: "y", Kind: BindLocal})

	// Child can see both x and y
	assert.NotNil(t, child.Lookup("x"))
	assert.NotNil(t, child.Lookup("y"))

	// Parent can only see x
	assert.NotNil(t, parent.Lookup("x"))
	assert.Nil(t, parent.Lookup("y"))
	assert.Same(t, child, child.Lookup("y").Scope)
}

func TestScope_LookupLocal(t *testing.T) {
	parent := NewScope(ScopeGlobal, nil, nil)
	child := NewScope(ScopeBlock, parent, nil)

	parent.Define(&Binding{Name: "x"})
	child.Define(&Binding{Name: "y"})

	assert.Nil(t, child.LookupLocal("x"))
	assert.NotNil(t, child.LookupLocal("y"))
}

func TestScope_Shadowing(t *testing.T) {
	parent := NewScope(ScopeGlobal, nil, nil)
	child := NewScope(ScopeBlock, parent, nil)

	parentSym := &Binding{Name: "x"}
	childSym := &Binding{Name: "x"}
	parent.Define(parentSym)
	child.Define(childSym)

	assert.Same(t, childSym, child.Lookup("x"))
	assert.Same(t, parentSym, parent.Lookup("x"))
}

func TestScopeAtPosition(t *testing.T) {
	_, mod := parseAndCheck(t, "local a = 1\nlocal function f(x)\n  if x then\n    return x\n  end\nend\n")
	assert.Same(t, mod.Scope, ScopeAtPosition(mod.Scope, ast.Position{Line: 0, Column: 3}))

	fn := ScopeAtPosition(mod.Scope, ast.Position{Line: 2, Column: 2})
	assert.Equal(t, ScopeFunction, fn.Kind)
	assert.NotNil(t, fn.LookupLocal("x"))

	block := ScopeAtPosition(mod.Scope, ast.Position{Line: 3, Column: 4})
	assert.Equal(t, ScopeBlock, block.Kind)
	assert.Same(t, fn, block.Parent)
}

// --- Checker tests ---

func TestCheck_Locals(t *testing.T) {
	_, mod := parseAndCheck(t, `
local x = 1
local s: string = "a"
local b = not x
local c = "a" .. "b"
local n
local f = function(a: number, ...: string): boolean return true end
`)
	assert.Empty(t, mod.Errors)
	assert.Equal(t, types.NumberType, mod.Scope.Lookup("x").Type)
	assert.Equal(t, types.StringType, mod.Scope.Lookup("s").Type)
	assert.Equal(t, types.BooleanType, mod.Scope.Lookup("b").Type)
	assert.Equal(t, types.StringType, mod.Scope.Lookup("c").Type)
	assert.Equal(t, types.AnyType, mod.Scope.Lookup("n").Type)
	assert.Equal(t, "(number, ...string) -> boolean", typeString(mod.Scope.Lookup("f").Type))
	assert.Equal(t, BindLocal, mod.Scope.Lookup("f").Kind)
}

func TestCheck_EveryExpressionTyped(t *testing.T) {
	src, mod := parseAndCheck(t, `
local t = {1, 2, x = "a", [3] = true}
print(t.x, t[1], #t, -1, (t))
local v = if t then 1 else 2
`)
	astutil.Walk(src.Root, func(node, _ ast.Node, _ int) {
		if e, ok := node.(ast.Expr); ok {
			_, typed := mod.AstTypes[e]
			assert.True(t, typed, "%T at %v", e, e.Loc())
		}
	})
	assert.Len(t, mod.Errors, 1, "print is an unknown global")
}

func TestCheck_InferredReturns(t *testing.T) {
	_, mod := parseAndCheck(t, `
local function id(v) return v, 1 end
local function none() end
local function forward() return id(2) end
`)
	assert.Equal(t, "(any) -> (any, number)", typeString(mod.Scope.Lookup("id").Type))
	assert.Equal(t, "() -> ()", typeString(mod.Scope.Lookup("none").Type))
	assert.Equal(t, "() -> (any, number)", typeString(mod.Scope.Lookup("forward").Type))
}

func TestCheck_FunctionDefinition(t *testing.T) {
	_, mod := parseAndCheck(t, "local function f(a: number)\nend\n")
	f, ok := mod.Scope.Lookup("f").Type.(*types.Function)
	require.True(t, ok)
	require.NotNil(t, f.Definition)
	assert.Equal(t, "test.luau", f.Definition.Module)
	assert.Equal(t, ast.Position{Line: 0, Column: 0}, f.Definition.Location.Begin)
	assert.Equal(t, "a", f.ArgName(0))
	assert.False(t, f.HasSelf)
}

func TestCheck_TableMethods(t *testing.T) {
	_, mod := parseAndCheck(t, `
local M = {}
function M.greet(name: string): string return "hi " .. name end
function M:count(): number return 1 end
M.size = 3
`)
	tbl, ok := types.Follow(mod.Scope.Lookup("M").Type).(*types.Table)
	require.True(t, ok)
	assert.Equal(t, types.Unsealed, tbl.State)
	require.Contains(t, tbl.Props, "greet")
	require.Contains(t, tbl.Props, "count")
	require.Contains(t, tbl.Props, "size")
	assert.Equal(t, "(string) -> string", typeString(tbl.Props["greet"].Type))
	assert.Equal(t, types.NumberType, tbl.Props["size"].Type)

	count := tbl.Props["count"].Type.(*types.Function)
	assert.True(t, count.HasSelf)
	assert.Equal(t, "self", count.ArgName(0))
	assert.Same(t, tbl, count.Params.Head[0])
}

func TestCheck_Globals(t *testing.T) {
	_, mod := parseAndCheck(t, `
function greet(name: string) end
counter = 0
local y = counter
`)
	b := mod.Scope.LookupLocal("greet")
	require.NotNil(t, b)
	assert.Equal(t, BindGlobal, b.Kind)
	assert.Equal(t, types.NumberType, mod.Scope.Lookup("y").Type)
}

func TestCheck_Overloads(t *testing.T) {
	src, mod := parseAndCheck(t, `
type F = ((number) -> number) & ((string, string) -> string)
local f: F = nil :: any
local a = f(1, 2)
local b = f(1)
`)
	cs := calls(src.Root)
	require.Len(t, cs, 2)
	resolved, ok := mod.AstOverloadResolvedTypes[cs[0]]
	require.True(t, ok)
	assert.Equal(t, "(string, string) -> string", typeString(resolved))
	assert.Equal(t, types.StringType, mod.Scope.Lookup("a").Type)

	resolved, ok = mod.AstOverloadResolvedTypes[cs[1]]
	require.True(t, ok)
	assert.Equal(t, "(number) -> number", typeString(resolved))
	assert.Equal(t, types.NumberType, mod.Scope.Lookup("b").Type)
}

func TestCheck_Aliases(t *testing.T) {
	_, mod := parseAndCheck(t, `
local p: Point
type Point = {x: number, y: number}
type Name = string
type Other = Point
type Box<T> = {value: T}
local n: Name
local box: Box<number>
`)
	assert.Empty(t, mod.Errors)
	opts := types.ToStringOptions{Aliases: mod.Scope}
	assert.Equal(t, "Point", types.ToString(mod.Scope.Lookup("p").Type, opts))
	assert.Equal(t, "string", types.ToString(mod.Scope.Lookup("n").Type, opts))
	assert.Equal(t, "Box", types.ToString(mod.Scope.Lookup("box").Type, opts))
	assert.Equal(t, "{| value: T |}", typeString(mod.Scope.Lookup("box").Type))
}

func TestCheck_RecursiveAlias(t *testing.T) {
	_, mod := parseAndCheck(t, "type Node = {next: Node?}\nlocal n: Node\n")
	assert.Empty(t, mod.Errors)
	n := mod.Scope.Lookup("n").Type
	assert.Equal(t, "{| next: *CYCLE*? |}", typeString(n))
	assert.Equal(t, "Node", types.ToString(n, types.ToStringOptions{Aliases: mod.Scope}))
}

func TestCheck_UnknownType(t *testing.T) {
	_, mod := parseAndCheck(t, "local x: Missing\n")
	require.Len(t, mod.Errors, 1)
	assert.Equal(t, "test.luau:1:10: unknown type 'Missing'", mod.Errors[0].Error())
	assert.Equal(t, types.ErrorType, mod.Scope.Lookup("x").Type)
}

func TestCheck_Generics(t *testing.T) {
	_, mod := parseAndCheck(t, "local function first<T>(list: {T}): T return list[1] end\n")
	assert.Equal(t, "<T>({T}) -> T", typeString(mod.Scope.Lookup("first").Type))
}

func TestCheck_MultipleValues(t *testing.T) {
	_, mod := parseAndCheck(t, `
local function pair(): (number, string) return 1, "a" end
local a, b, c = pair()
local d, e = 1
`)
	assert.Equal(t, types.NumberType, mod.Scope.Lookup("a").Type)
	assert.Equal(t, types.StringType, mod.Scope.Lookup("b").Type)
	assert.Equal(t, types.NilType, mod.Scope.Lookup("c").Type)
	assert.Equal(t, types.NilType, mod.Scope.Lookup("e").Type)
}

func TestCheck_GlobalScopeUntouched(t *testing.T) {
	globals := NewScope(ScopeGlobal, nil, nil)
	src := ParseSource("test.luau", "local x = 1\nglobalThing = 2\n")
	mod := Check(src, globals)
	assert.Empty(t, globals.Children)
	assert.Nil(t, globals.Lookup("globalThing"))
	assert.NotNil(t, mod.Scope.Lookup("globalThing"))
}

func TestCheck_SealedTableNotExtended(t *testing.T) {
	_, mod := parseAndCheck(t, `local p: {x: number} = nil :: any
p.y = 1
function p.f() end
p.x = 2
`)
	require.Len(t, mod.Errors, 2)
	assert.Equal(t, "test.luau:2:3: cannot add property 'y' to sealed table", mod.Errors[0].Error())
	assert.Equal(t, "test.luau:3:12: cannot add property 'f' to sealed table", mod.Errors[1].Error())

	tbl, ok := types.Follow(mod.Scope.Lookup("p").Type).(*types.Table)
	require.True(t, ok)
	assert.Len(t, tbl.Props, 1)
	assert.Contains(t, tbl.Props, "x")
}
