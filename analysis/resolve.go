// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/types"
)

var builtinTypes = map[string]types.Type{
	"nil":     types.NilType,
	"boolean": types.BooleanType,
	"number":  types.NumberType,
	"string":  types.StringType,
	"thread":  types.ThreadType,
	"any":     types.AnyType,
	"unknown": types.UnknownType,
	"never":   types.NeverType,
}

func (c *checker) pushGenerics(names []*ast.GenericName) {
	frame := make(map[string]types.Type, len(names))
	for _, g := range names {
		frame[g.Name] = &types.Generic{Name: g.Name}
	}
	c.generics = append(c.generics, frame)
}

func (c *checker) popGenerics() {
	c.generics = c.generics[:len(c.generics)-1]
}

func (c *checker) lookupGeneric(name string) (types.Type, bool) {
	for i := len(c.generics) - 1; i >= 0; i-- {
		if t, ok := c.generics[i][name]; ok {
			return t, true
		}
	}
	return nil, false
}

// resolveType converts an annotation to a type.  Names are looked up as
// generics first, then builtins, then aliases visible from scope.
func (c *checker) resolveType(annotation ast.Type, scope *Scope) types.Type {
	switch t := annotation.(type) {
	case nil:
		return types.AnyType
	case *ast.TypeReference:
		for _, param := range t.Parameters {
			c.resolveType(param, scope)
		}
		if t.Prefix != "" || t.Name == "" {
			return types.AnyType
		}
		if g, ok := c.lookupGeneric(t.Name); ok {
			return g
		}
		if b, ok := builtinTypes[t.Name]; ok {
			return b
		}
		if alias := scope.LookupType(t.Name); alias != nil {
			return alias.Type
		}
		c.errorf(t.Location, "unknown type '%s'", t.Name)
		return types.ErrorType
	case *ast.TypeTable:
		tbl := types.NewTable()
		for _, prop := range t.Props {
			tbl.Props[prop.Name] = &types.Property{
				Type:     c.resolveType(prop.Type, scope),
				Location: prop.Location,
			}
		}
		if t.Indexer != nil {
			tbl.Indexer = &types.Indexer{
				Key:   c.resolveType(t.Indexer.Key, scope),
				Value: c.resolveType(t.Indexer.Value, scope),
			}
		}
		return tbl
	case *ast.TypeFunction:
		return c.resolveFunctionType(t.Generics, t.ArgTypes, t.ArgNames, t.ReturnTypes, scope)
	case *ast.TypeUnion:
		u := &types.Union{}
		for _, part := range t.Types {
			u.Types = append(u.Types, c.resolveType(part, scope))
		}
		return u
	case *ast.TypeIntersection:
		in := &types.Intersection{}
		for _, part := range t.Types {
			in.Types = append(in.Types, c.resolveType(part, scope))
		}
		return in
	case *ast.TypeOptional:
		return types.NilType
	case *ast.TypeSingletonBool:
		return &types.SingletonBool{Value: t.Value}
	case *ast.TypeSingletonString:
		return &types.SingletonString{Value: t.Value}
	case *ast.TypeTypeof:
		return c.checkExpr(t.Expr, scope)
	case *ast.TypeError:
		return types.ErrorType
	}
	return types.ErrorType
}

func (c *checker) resolveTypeList(list ast.TypeList, scope *Scope) types.Pack {
	var pack types.Pack
	for _, t := range list.Types {
		pack.Head = append(pack.Head, c.resolveType(t, scope))
	}
	if list.Tail != nil {
		pack.Tail = c.resolveType(list.Tail, scope)
	}
	return pack
}

func (c *checker) resolveFunctionType(generics []*ast.GenericName, params ast.TypeList, names []*ast.ArgumentName, returns ast.TypeList, scope *Scope) *types.Function {
	c.pushGenerics(generics)
	defer c.popGenerics()
	f := &types.Function{
		Params:  c.resolveTypeList(params, scope),
		Returns: c.resolveTypeList(returns, scope),
	}
	for _, g := range generics {
		f.Generics = append(f.Generics, g.Name)
	}
	if len(names) > 0 {
		f.ArgNames = make([]*types.FunctionArgument, len(params.Types))
		for i, name := range names {
			if i < len(f.ArgNames) && name != nil {
				f.ArgNames[i] = &types.FunctionArgument{Name: name.Name, Location: name.Location}
			}
		}
	}
	return f
}
