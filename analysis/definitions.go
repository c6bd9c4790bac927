// Copyright © 2024 The ELPS authors

package analysis

import (
	"errors"
	"strings"

	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/types"
)

// LoadDefinitions checks a definition file and adds its declarations and
// type aliases to globals.  pkg names the documentation package, such as
// "@luau"; a missing leading '@' is added.
//
// Declared globals are given the documentation symbol
// "<pkg>/global/<name>" and the properties of a declared table get
// "<pkg>/global/<name>.<prop>".  Declared classes and exported types get
// "<pkg>/globaltype/<Name>" and "<pkg>/globaltype/<Name>.<member>".
//
// Problems in the file are returned joined together; declarations that
// could be read are loaded regardless.
func LoadDefinitions(globals *Scope, pkg string, name string, text string) (*Module, error) {
	if !strings.HasPrefix(pkg, "@") {
		pkg = "@" + pkg
	}
	src := ParseSource(name, text)
	c := newChecker(name, globals)
	c.definitions = pkg
	c.checkBlockIn(src.Root, globals)

	for _, b := range c.declared {
		generateDocumentationSymbols(b.Type, b.DocumentationSymbol, false)
	}
	for _, stat := range src.Root.Body {
		var typeName string
		switch s := stat.(type) {
		case *ast.StatDeclareClass:
			typeName = s.Name
		case *ast.StatTypeAlias:
			typeName = s.Name
		default:
			continue
		}
		if alias := globals.TypeAliases[typeName]; alias != nil {
			generateDocumentationSymbols(alias.Type, pkg+"/globaltype/"+typeName, true)
		}
	}

	var errs []error
	for _, err := range src.Errors {
		errs = append(errs, err)
	}
	for _, err := range c.mod.Errors {
		errs = append(errs, err)
	}
	return c.mod, errors.Join(errs...)
}

// declare handles the declaration statements of a definition file.
func (c *checker) declare(stat ast.Stat, scope *Scope) {
	switch s := stat.(type) {
	case *ast.StatDeclareGlobal:
		c.declareGlobal(scope, s.Name, c.resolveType(s.Type, scope), s.Location)
	case *ast.StatDeclareFunction:
		f := c.resolveFunctionType(s.Generics, s.Params, s.ParamNames, s.ReturnAnnotation, scope)
		f.Definition = &types.Definition{Module: c.mod.Name, Location: s.Location}
		c.declareGlobal(scope, s.Name, f, s.Location)
	case *ast.StatDeclareClass:
		c.declareClass(s, scope)
	}
}

func (c *checker) declareGlobal(scope *Scope, name string, t types.Type, loc ast.Location) {
	b := &Binding{
		Name:                name,
		Kind:                BindGlobal,
		Type:                t,
		Location:            loc,
		DocumentationSymbol: c.definitions + "/global/" + name,
	}
	scope.Define(b)
	c.declared = append(c.declared, b)
}

func (c *checker) declareClass(s *ast.StatDeclareClass, scope *Scope) {
	var cls *types.Class
	if alias := scope.LookupType(s.Name); alias != nil {
		cls, _ = alias.Type.(*types.Class)
	}
	if cls == nil {
		cls = &types.Class{Name: s.Name, Props: make(map[string]*types.Property)}
		scope.DefineType(&TypeAlias{Name: s.Name, Type: cls, Location: s.Location, Exported: true})
	}
	if s.SuperName != "" {
		var parent *types.Class
		if alias := scope.LookupType(s.SuperName); alias != nil {
			parent, _ = types.Follow(alias.Type).(*types.Class)
		}
		if parent == nil {
			c.errorf(s.Location, "unknown class '%s'", s.SuperName)
		}
		cls.Parent = parent
	}
	for _, p := range s.Props {
		t := c.resolveType(p.Type, scope)
		if f, ok := t.(*types.Function); ok && p.IsMethod {
			f.HasSelf = true
		}
		cls.Props[p.Name] = &types.Property{Type: t, Location: p.Location}
	}
}

// generateDocumentationSymbols attaches root to t and root.<name> to each
// of its properties.  Types that already carry a symbol from an earlier
// definition file are left alone unless overwrite is set.
func generateDocumentationSymbols(t types.Type, root string, overwrite bool) {
	switch t := types.Follow(t).(type) {
	case *types.Function:
		if overwrite || t.DocumentationSymbol == "" {
			t.DocumentationSymbol = root
		}
	case *types.Table:
		if !overwrite && t.DocumentationSymbol != "" {
			return
		}
		t.DocumentationSymbol = root
		for name, p := range t.Props {
			p.DocumentationSymbol = root + "." + name
		}
	case *types.Class:
		if !overwrite && t.DocumentationSymbol != "" {
			return
		}
		t.DocumentationSymbol = root
		for name, p := range t.Props {
			p.DocumentationSymbol = root + "." + name
		}
	}
}
