// Copyright © 2024 The ELPS authors

package types

import (
	"sort"
	"strconv"
	"strings"
)

// AliasLookup resolves a type to a type alias name visible to the reader.
type AliasLookup interface {
	LookupAlias(t Type) (string, bool)
}

// ToStringOptions control how types are printed.
type ToStringOptions struct {
	// HideTableKind omits the sealed {| |} and unsealed {+ +} markers.
	HideTableKind bool
	// ArgumentNames prints parameter names in function types.
	ArgumentNames bool
	// Aliases, when set, prints a visible alias name instead of the
	// structure it names.
	Aliases AliasLookup
}

// ToString returns the Luau syntax for t.
func ToString(t Type, opts ToStringOptions) string {
	p := &printer{opts: opts, seen: make(map[Type]bool)}
	p.typ(t, true)
	return p.sb.String()
}

// PackToString returns the Luau syntax for a return pack: `()` when empty, the
// type alone for one value, `(A, B)` for several and `...T` when only a
// variadic tail is present.
func PackToString(pack Pack, opts ToStringOptions) string {
	p := &printer{opts: opts, seen: make(map[Type]bool)}
	p.returns(pack)
	return p.sb.String()
}

type printer struct {
	opts ToStringOptions
	seen map[Type]bool
	sb   strings.Builder
}

func (p *printer) write(s ...string) {
	for _, s := range s {
		p.sb.WriteString(s)
	}
}

// typ prints t.  top is false when t is nested inside a union or
// intersection and function types must be parenthesized.
func (p *printer) typ(t Type, top bool) {
	t = Follow(t)
	if t == nil {
		p.write("*missing*")
		return
	}
	if p.opts.Aliases != nil {
		if name, ok := p.opts.Aliases.LookupAlias(t); ok {
			p.write(name)
			return
		}
	}
	if p.seen[t] {
		p.write("*CYCLE*")
		return
	}
	switch t := t.(type) {
	case *Primitive:
		p.write(t.Kind.String())
	case *Any:
		p.write("any")
	case *Unknown:
		p.write("unknown")
	case *Never:
		p.write("never")
	case *Error:
		p.write("*error-type*")
	case *Generic:
		p.write(t.Name)
	case *SingletonBool:
		p.write(strconv.FormatBool(t.Value))
	case *SingletonString:
		p.write(strconv.Quote(t.Value))
	case *Class:
		p.write(t.Name)
	case *Function:
		p.seen[t] = true
		if !top {
			p.write("(")
		}
		p.function(t)
		if !top {
			p.write(")")
		}
		delete(p.seen, t)
	case *Table:
		p.seen[t] = true
		p.table(t)
		delete(p.seen, t)
	case *Union:
		p.seen[t] = true
		p.union(t, top)
		delete(p.seen, t)
	case *Intersection:
		p.seen[t] = true
		if !top {
			p.write("(")
		}
		for i, part := range t.Types {
			if i > 0 {
				p.write(" & ")
			}
			p.typ(part, false)
		}
		if !top {
			p.write(")")
		}
		delete(p.seen, t)
	default:
		p.write("*unknown-type*")
	}
}

func (p *printer) union(u *Union, top bool) {
	var parts []Type
	optional := false
	for _, t := range u.Types {
		if prim, ok := Follow(t).(*Primitive); ok && prim.Kind == Nil {
			optional = true
			continue
		}
		parts = append(parts, t)
	}
	switch {
	case len(parts) == 0:
		p.write("nil")
		return
	case optional && len(parts) == 1:
		p.typ(parts[0], false)
		p.write("?")
		return
	}
	wrap := optional || !top
	if wrap {
		p.write("(")
	}
	for i, part := range parts {
		if i > 0 {
			p.write(" | ")
		}
		p.typ(part, false)
	}
	if wrap {
		p.write(")")
	}
	if optional {
		p.write("?")
	}
}

func (p *printer) function(f *Function) {
	if len(f.Generics) > 0 {
		p.write("<", strings.Join(f.Generics, ", "), ">")
	}
	p.write("(")
	for i, param := range f.Params.Head {
		if i > 0 {
			p.write(", ")
		}
		if p.opts.ArgumentNames {
			if name := f.ArgName(i); name != "" {
				p.write(name, ": ")
			}
		}
		p.typ(param, true)
	}
	if f.Params.Tail != nil {
		if len(f.Params.Head) > 0 {
			p.write(", ")
		}
		p.write("...")
		p.typ(f.Params.Tail, false)
	}
	p.write(") -> ")
	p.returns(f.Returns)
}

func (p *printer) returns(pack Pack) {
	switch {
	case len(pack.Head) == 0 && pack.Tail == nil:
		p.write("()")
	case len(pack.Head) == 0:
		p.write("...")
		p.typ(pack.Tail, false)
	case len(pack.Head) == 1 && pack.Tail == nil:
		p.typ(pack.Head[0], false)
	default:
		p.write("(")
		for i, t := range pack.Head {
			if i > 0 {
				p.write(", ")
			}
			p.typ(t, true)
		}
		if pack.Tail != nil {
			p.write(", ...")
			p.typ(pack.Tail, false)
		}
		p.write(")")
	}
}

func (p *printer) table(t *Table) {
	if t.Indexer != nil && len(t.Props) == 0 {
		if prim, ok := Follow(t.Indexer.Key).(*Primitive); ok && prim.Kind == Number {
			p.write("{")
			p.typ(t.Indexer.Value, true)
			p.write("}")
			return
		}
	}
	lb, rb := "{| ", " |}"
	switch {
	case p.opts.HideTableKind:
		lb, rb = "{ ", " }"
	case t.State == Unsealed:
		lb, rb = "{+ ", " +}"
	}
	p.write(lb)
	first := true
	if t.Indexer != nil {
		p.write("[")
		p.typ(t.Indexer.Key, true)
		p.write("]: ")
		p.typ(t.Indexer.Value, true)
		first = false
	}
	names := make([]string, 0, len(t.Props))
	for name := range t.Props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !first {
			p.write(", ")
		}
		first = false
		p.write(name, ": ")
		p.typ(t.Props[name].Type, true)
	}
	p.write(rb)
}
