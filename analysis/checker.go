// Copyright © 2024 The ELPS authors

package analysis

import (
	"fmt"

	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/types"
)

// checker is the internal state for a single check run.
type checker struct {
	mod       *Module
	generics  []map[string]types.Type
	functions []*functionContext
	callPacks map[*ast.ExprCall]types.Pack

	// tables built by this run.  Only these may gain properties; every
	// other table may be shared with the globals and other modules.
	tables map[*types.Table]bool

	// definitions is the package name when checking a definition file.
	definitions string
	declared    []*Binding
}

type functionContext struct {
	vararg       types.Type
	inferReturns bool
	returns      *types.Pack
}

func newChecker(name string, scope *Scope) *checker {
	return &checker{
		mod: &Module{
			Name:                     name,
			AstTypes:                 make(map[ast.Expr]types.Type),
			AstOverloadResolvedTypes: make(map[ast.Expr]types.Type),
			LocalTypes:               make(map[*ast.Local]types.Type),
			Scope:                    scope,
		},
		callPacks: make(map[*ast.ExprCall]types.Pack),
		tables:    make(map[*types.Table]bool),
	}
}

// Check checks src against the global scope and returns the checked
// module.  globals is only read.
func Check(src *SourceModule, globals *Scope) *Module {
	scope := &Scope{
		Kind:        ScopeModule,
		Parent:      globals,
		Location:    src.Root.Location,
		Bindings:    make(map[string]*Binding),
		TypeAliases: make(map[string]*TypeAlias),
		Node:        src.Root,
	}
	c := newChecker(src.Name, scope)
	c.checkBlockIn(src.Root, scope)
	return c.mod
}

func (c *checker) errorf(loc ast.Location, format string, v ...interface{}) {
	c.mod.Errors = append(c.mod.Errors, &TypeError{
		Module:   c.mod.Name,
		Location: loc,
		Message:  fmt.Sprintf(format, v...),
	})
}

func (c *checker) record(e ast.Expr, t types.Type) types.Type {
	c.mod.AstTypes[e] = t
	return t
}

func (c *checker) bindLocal(scope *Scope, l *ast.Local, t types.Type, kind BindingKind) {
	c.mod.LocalTypes[l] = t
	scope.Define(&Binding{
		Name:     l.Name,
		Kind:     kind,
		Type:     t,
		Location: l.Location,
		Local:    l,
	})
}

func (c *checker) currentFunction() *functionContext {
	if len(c.functions) == 0 {
		return nil
	}
	return c.functions[len(c.functions)-1]
}

func (c *checker) checkBlock(block *ast.StatBlock, parent *Scope) {
	c.checkBlockIn(block, NewScope(ScopeBlock, parent, block))
}

func (c *checker) checkBlockIn(block *ast.StatBlock, scope *Scope) {
	c.hoistAliases(block, scope)
	for _, stat := range block.Body {
		c.checkStat(stat, scope)
	}
}

// hoistAliases defines every type alias of block before any statement is
// checked so that aliases may refer to each other in any order.
func (c *checker) hoistAliases(block *ast.StatBlock, scope *Scope) {
	var pending []*ast.StatTypeAlias
	for _, stat := range block.Body {
		if cls, ok := stat.(*ast.StatDeclareClass); ok && c.definitions != "" {
			scope.DefineType(&TypeAlias{
				Name:     cls.Name,
				Type:     &types.Class{Name: cls.Name, Props: make(map[string]*types.Property)},
				Location: cls.Location,
				Exported: true,
			})
			continue
		}
		alias, ok := stat.(*ast.StatTypeAlias)
		if !ok {
			continue
		}
		def := &TypeAlias{
			Name:     alias.Name,
			Type:     &types.Bound{},
			Location: alias.Location,
			Exported: alias.Exported,
		}
		for _, g := range alias.Generics {
			def.Generics = append(def.Generics, g.Name)
		}
		_, def.reference = alias.Type.(*ast.TypeReference)
		scope.DefineType(def)
		pending = append(pending, alias)
	}
	for _, alias := range pending {
		def := scope.TypeAliases[alias.Name]
		c.pushGenerics(alias.Generics)
		def.Type.(*types.Bound).To = c.resolveType(alias.Type, scope)
		c.popGenerics()
	}
}

func (c *checker) checkStat(stat ast.Stat, scope *Scope) {
	switch s := stat.(type) {
	case *ast.StatBlock:
		c.checkBlock(s, scope)
	case *ast.StatIf:
		c.checkExpr(s.Condition, scope)
		c.checkBlock(s.ThenBody, scope)
		switch e := s.ElseBody.(type) {
		case *ast.StatBlock:
			c.checkBlock(e, scope)
		case *ast.StatIf:
			c.checkStat(e, scope)
		}
	case *ast.StatWhile:
		c.checkExpr(s.Condition, scope)
		c.checkBlock(s.Body, scope)
	case *ast.StatRepeat:
		body := NewScope(ScopeBlock, scope, s)
		c.checkBlockIn(s.Body, body)
		c.checkExpr(s.Condition, body)
	case *ast.StatFor:
		c.checkExpr(s.From, scope)
		c.checkExpr(s.To, scope)
		if s.Step != nil {
			c.checkExpr(s.Step, scope)
		}
		body := NewScope(ScopeBlock, scope, s.Body)
		c.bindLocal(body, s.Var, types.NumberType, BindParameter)
		c.checkBlockIn(s.Body, body)
	case *ast.StatForIn:
		for _, v := range s.Values {
			c.checkExpr(v, scope)
		}
		body := NewScope(ScopeBlock, scope, s.Body)
		for _, v := range s.Vars {
			t := types.Type(types.AnyType)
			if v.Annotation != nil {
				t = c.resolveType(v.Annotation, scope)
			}
			c.bindLocal(body, v, t, BindParameter)
		}
		c.checkBlockIn(s.Body, body)
	case *ast.StatReturn:
		c.checkReturn(s, scope)
	case *ast.StatExpr:
		c.checkExpr(s.Expr, scope)
	case *ast.StatLocal:
		c.checkLocal(s, scope)
	case *ast.StatAssign:
		c.checkAssign(s, scope)
	case *ast.StatCompoundAssign:
		c.checkExpr(s.Var, scope)
		c.checkExpr(s.Value, scope)
	case *ast.StatFunction:
		c.checkFunctionStat(s, scope)
	case *ast.StatLocalFunction:
		c.checkFunction(s.Func, scope, nil, func(f *types.Function) {
			c.bindLocal(scope, s.Name, f, BindLocal)
		})
	case *ast.StatDeclareGlobal, *ast.StatDeclareFunction, *ast.StatDeclareClass:
		if c.definitions != "" {
			c.declare(stat, scope)
		}
	case *ast.StatError:
		for _, e := range s.Expressions {
			c.checkExpr(e, scope)
		}
		for _, st := range s.Statements {
			c.checkStat(st, scope)
		}
	}
}

func (c *checker) checkLocal(s *ast.StatLocal, scope *Scope) {
	values := make([]types.Type, len(s.Values))
	for i, v := range s.Values {
		values[i] = c.checkExpr(v, scope)
	}
	for i, l := range s.Vars {
		var t types.Type
		switch {
		case l.Annotation != nil:
			t = c.resolveType(l.Annotation, scope)
		case i < len(values):
			t = values[i]
		case len(values) > 0:
			t = c.trailingValue(s.Values, i)
		default:
			t = types.AnyType
		}
		c.bindLocal(scope, l, t, BindLocal)
	}
}

// trailingValue returns the type of value slot i when i lies beyond the
// written expressions and the last expression is a call.
func (c *checker) trailingValue(values []ast.Expr, i int) types.Type {
	call, ok := values[len(values)-1].(*ast.ExprCall)
	if !ok {
		return types.NilType
	}
	return packAt(c.callPacks[call], i-len(values)+1)
}

func packAt(pack types.Pack, i int) types.Type {
	switch {
	case i < len(pack.Head):
		return pack.Head[i]
	case pack.Tail != nil:
		return pack.Tail
	}
	return types.NilType
}

func (c *checker) checkAssign(s *ast.StatAssign, scope *Scope) {
	values := make([]types.Type, len(s.Values))
	for i, v := range s.Values {
		values[i] = c.checkExpr(v, scope)
	}
	for i, v := range s.Vars {
		var value types.Type
		switch {
		case i < len(values):
			value = values[i]
		case len(values) > 0:
			value = c.trailingValue(s.Values, i)
		default:
			value = types.NilType
		}
		c.assignTo(v, value, scope)
	}
}

// assignTo records the type of an assignment target, defining globals on
// first assignment and adding fields to tables.
func (c *checker) assignTo(target ast.Expr, value types.Type, scope *Scope) {
	switch v := target.(type) {
	case *ast.ExprGlobal:
		b := scope.Lookup(v.Name)
		if b == nil {
			b = &Binding{Name: v.Name, Kind: BindGlobal, Type: value, Location: v.Location}
			c.mod.Scope.Define(b)
		}
		c.record(v, b.Type)
	case *ast.ExprIndexName:
		owner := c.checkExpr(v.Expr, scope)
		if prop, ok := c.extend(owner, v, value); ok {
			c.record(v, prop.Type)
			return
		}
		c.record(v, c.indexType(owner, v.Index))
	default:
		c.checkExpr(target, scope)
	}
}

// extend returns the property of owner named by target, adding it with
// type value when owner is a table built by this run.  A missing property
// of any other table is reported and nothing is added.
func (c *checker) extend(owner types.Type, target *ast.ExprIndexName, value types.Type) (*types.Property, bool) {
	tbl, ok := types.Follow(owner).(*types.Table)
	if !ok || target.Index == "" {
		return nil, false
	}
	if prop, exists := tbl.Props[target.Index]; exists {
		return prop, c.tables[tbl]
	}
	if !c.tables[tbl] {
		c.errorf(target.IndexLocation, "cannot add property '%s' to sealed table", target.Index)
		return nil, false
	}
	prop := &types.Property{Type: value, Location: target.IndexLocation}
	tbl.Props[target.Index] = prop
	return prop, true
}

func (c *checker) checkFunctionStat(s *ast.StatFunction, scope *Scope) {
	switch name := s.Name.(type) {
	case *ast.ExprIndexName:
		owner := c.checkExpr(name.Expr, scope)
		var self types.Type
		if s.Func.Self != nil {
			self = owner
		}
		c.checkFunction(s.Func, scope, self, func(f *types.Function) {
			if prop, ok := c.extend(owner, name, f); ok {
				prop.Type = f
				prop.Location = name.IndexLocation
			}
			c.record(name, f)
		})
	case *ast.ExprLocal:
		c.checkFunction(s.Func, scope, nil, func(f *types.Function) {
			c.mod.LocalTypes[name.Local] = f
			if b := scope.Lookup(name.Local.Name); b != nil && b.Local == name.Local {
				b.Type = f
			}
			c.record(name, f)
		})
	case *ast.ExprGlobal:
		c.checkFunction(s.Func, scope, nil, func(f *types.Function) {
			c.mod.Scope.Define(&Binding{
				Name:     name.Name,
				Kind:     BindGlobal,
				Type:     f,
				Location: name.Location,
			})
			c.record(name, f)
		})
	default:
		c.checkFunction(s.Func, scope, nil, nil)
	}
}

// checkFunction builds the type of fn from its annotations, calls bind with
// it, and then checks the body.  Binding before the body lets a function
// refer to itself.  self is the type of the implicit self parameter of a
// method definition.
func (c *checker) checkFunction(fn *ast.ExprFunction, scope *Scope, self types.Type, bind func(*types.Function)) *types.Function {
	c.pushGenerics(fn.Generics)
	defer c.popGenerics()

	fnScope := NewScope(ScopeFunction, scope, fn)
	f := &types.Function{
		Definition: &types.Definition{Module: c.mod.Name, Location: fn.Location},
	}
	for _, g := range fn.Generics {
		f.Generics = append(f.Generics, g.Name)
	}
	if fn.Self != nil {
		if self == nil {
			self = types.AnyType
		}
		f.HasSelf = true
		f.Params.Head = append(f.Params.Head, self)
		f.ArgNames = append(f.ArgNames, &types.FunctionArgument{Name: fn.Self.Name, Location: fn.Self.Location})
		c.bindLocal(fnScope, fn.Self, self, BindParameter)
	}
	for _, arg := range fn.Args {
		t := types.Type(types.AnyType)
		if arg.Annotation != nil {
			t = c.resolveType(arg.Annotation, scope)
		}
		f.Params.Head = append(f.Params.Head, t)
		f.ArgNames = append(f.ArgNames, &types.FunctionArgument{Name: arg.Name, Location: arg.Location})
		c.bindLocal(fnScope, arg, t, BindParameter)
	}
	if fn.Vararg {
		f.Params.Tail = types.AnyType
		if fn.VarargAnnotation != nil {
			f.Params.Tail = c.resolveType(fn.VarargAnnotation, scope)
		}
	}
	ctx := &functionContext{vararg: f.Params.Tail}
	if fn.ReturnAnnotation != nil {
		f.Returns = c.resolveTypeList(*fn.ReturnAnnotation, scope)
	} else {
		ctx.inferReturns = true
	}
	c.record(fn, f)
	if bind != nil {
		bind(f)
	}

	c.functions = append(c.functions, ctx)
	c.checkBlockIn(fn.Body, fnScope)
	c.functions = c.functions[:len(c.functions)-1]
	if ctx.inferReturns && ctx.returns != nil {
		f.Returns = *ctx.returns
	}
	return f
}

func (c *checker) checkReturn(s *ast.StatReturn, scope *Scope) {
	var pack types.Pack
	for i, e := range s.List {
		t := c.checkExpr(e, scope)
		if call, ok := e.(*ast.ExprCall); ok && i == len(s.List)-1 {
			rest := c.callPacks[call]
			pack.Head = append(pack.Head, rest.Head...)
			pack.Tail = rest.Tail
			continue
		}
		pack.Head = append(pack.Head, t)
	}
	ctx := c.currentFunction()
	if ctx != nil && ctx.inferReturns && ctx.returns == nil {
		ctx.returns = &pack
	}
}

func (c *checker) checkExpr(expr ast.Expr, scope *Scope) types.Type {
	switch e := expr.(type) {
	case *ast.ExprGroup:
		return c.record(e, c.checkExpr(e.Expr, scope))
	case *ast.ExprConstantNil:
		return c.record(e, types.NilType)
	case *ast.ExprConstantBool:
		return c.record(e, types.BooleanType)
	case *ast.ExprConstantNumber:
		return c.record(e, types.NumberType)
	case *ast.ExprConstantString:
		return c.record(e, types.StringType)
	case *ast.ExprLocal:
		t, ok := c.mod.LocalTypes[e.Local]
		if !ok {
			t = types.AnyType
		}
		return c.record(e, t)
	case *ast.ExprGlobal:
		if b := scope.Lookup(e.Name); b != nil {
			return c.record(e, b.Type)
		}
		c.errorf(e.Location, "unknown global '%s'", e.Name)
		return c.record(e, types.ErrorType)
	case *ast.ExprVarargs:
		if ctx := c.currentFunction(); ctx != nil && ctx.vararg != nil {
			return c.record(e, ctx.vararg)
		}
		return c.record(e, types.AnyType)
	case *ast.ExprCall:
		return c.record(e, c.checkCall(e, scope))
	case *ast.ExprIndexName:
		owner := c.checkExpr(e.Expr, scope)
		return c.record(e, c.indexType(owner, e.Index))
	case *ast.ExprIndexExpr:
		owner := c.checkExpr(e.Expr, scope)
		c.checkExpr(e.Index, scope)
		if key, ok := e.Index.(*ast.ExprConstantString); ok {
			return c.record(e, c.indexType(owner, key.Value))
		}
		if tbl, ok := types.Follow(owner).(*types.Table); ok && tbl.Indexer != nil {
			return c.record(e, tbl.Indexer.Value)
		}
		return c.record(e, types.AnyType)
	case *ast.ExprFunction:
		return c.checkFunction(e, scope, nil, nil)
	case *ast.ExprTable:
		return c.record(e, c.checkTable(e, scope))
	case *ast.ExprUnary:
		c.checkExpr(e.Expr, scope)
		if e.Op == "not" {
			return c.record(e, types.BooleanType)
		}
		return c.record(e, types.NumberType)
	case *ast.ExprBinary:
		left := c.checkExpr(e.Left, scope)
		right := c.checkExpr(e.Right, scope)
		return c.record(e, binaryType(e.Op, left, right))
	case *ast.ExprTypeAssertion:
		c.checkExpr(e.Expr, scope)
		return c.record(e, c.resolveType(e.Annotation, scope))
	case *ast.ExprIfElse:
		c.checkExpr(e.Condition, scope)
		t := c.checkExpr(e.TrueExpr, scope)
		c.checkExpr(e.FalseExpr, scope)
		return c.record(e, t)
	case *ast.ExprError:
		for _, sub := range e.Expressions {
			c.checkExpr(sub, scope)
		}
		return c.record(e, types.ErrorType)
	}
	return types.ErrorType
}

func binaryType(op string, left, right types.Type) types.Type {
	switch op {
	case "+", "-", "*", "/", "//", "%", "^":
		return types.NumberType
	case "..":
		return types.StringType
	case "==", "~=", "<", "<=", ">", ">=":
		return types.BooleanType
	case "or":
		if prim, ok := types.Follow(left).(*types.Primitive); ok && prim.Kind == types.Nil {
			return right
		}
		return left
	}
	return right
}

func (c *checker) checkCall(e *ast.ExprCall, scope *Scope) types.Type {
	callee := c.checkExpr(e.Func, scope)
	for _, arg := range e.Args {
		c.checkExpr(arg, scope)
	}
	argc := len(e.Args)
	if e.Self {
		argc++
	}
	var pack types.Pack
	switch f := types.Follow(callee).(type) {
	case *types.Function:
		pack = f.Returns
	case *types.Intersection:
		pack = types.Pack{Tail: types.AnyType}
		for _, part := range f.Types {
			fn, ok := types.Follow(part).(*types.Function)
			if !ok || !fn.Accepts(argc) {
				continue
			}
			c.mod.AstOverloadResolvedTypes[e] = part
			pack = fn.Returns
			break
		}
	case *types.Error:
		pack = types.Pack{Head: []types.Type{types.ErrorType}}
	default:
		pack = types.Pack{Tail: types.AnyType}
	}
	c.callPacks[e] = pack
	return packAt(pack, 0)
}

// indexType returns the type of owner.name.
func (c *checker) indexType(owner types.Type, name string) types.Type {
	switch t := types.Follow(owner).(type) {
	case *types.Any:
		return types.AnyType
	case *types.Table, *types.Class:
		if prop, ok := types.Prop(t, name); ok {
			return prop.Type
		}
		if tbl, ok := t.(*types.Table); ok && tbl.Indexer != nil {
			return tbl.Indexer.Value
		}
	}
	return types.ErrorType
}

func (c *checker) checkTable(e *ast.ExprTable, scope *Scope) types.Type {
	tbl := &types.Table{Props: make(map[string]*types.Property), State: types.Unsealed}
	c.tables[tbl] = true
	for _, item := range e.Items {
		switch item.Kind {
		case ast.TableItemRecord:
			key := item.Key.(*ast.ExprConstantString)
			tbl.Props[key.Value] = &types.Property{
				Type:     c.checkExpr(item.Value, scope),
				Location: key.Location,
			}
		case ast.TableItemGeneral:
			keyType := c.checkExpr(item.Key, scope)
			value := c.checkExpr(item.Value, scope)
			if key, ok := item.Key.(*ast.ExprConstantString); ok {
				tbl.Props[key.Value] = &types.Property{Type: value, Location: key.Location}
			} else if tbl.Indexer == nil {
				tbl.Indexer = &types.Indexer{Key: keyType, Value: value}
			}
		case ast.TableItemList:
			value := c.checkExpr(item.Value, scope)
			if tbl.Indexer == nil {
				tbl.Indexer = &types.Indexer{Key: types.NumberType, Value: value}
			}
		}
	}
	return tbl
}
