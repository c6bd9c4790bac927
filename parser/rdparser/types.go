// Copyright © 2018 The ELPS authors

package rdparser

import (
	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/parser/token"
)

// ParseType parses a type annotation, including unions, intersections and
// the optional shorthand T?.
func (p *Parser) ParseType() ast.Type {
	first := p.parseOptionalType()
	switch {
	case p.peekPunct("|"):
		union := &ast.TypeUnion{Types: []ast.Type{first}}
		for p.src.AcceptPunct("|") {
			union.Types = append(union.Types, p.parseOptionalType())
		}
		union.Location = ast.Location{Begin: first.Loc().Begin, End: p.lastEnd()}
		return flattenUnion(union)
	case p.peekPunct("&"):
		inter := &ast.TypeIntersection{Types: []ast.Type{first}}
		for p.src.AcceptPunct("&") {
			inter.Types = append(inter.Types, p.parseOptionalType())
		}
		inter.Location = ast.Location{Begin: first.Loc().Begin, End: p.lastEnd()}
		return inter
	}
	return first
}

// flattenUnion merges the members of nested optional unions into u.
func flattenUnion(u *ast.TypeUnion) ast.Type {
	var types []ast.Type
	for _, t := range u.Types {
		if inner, ok := t.(*ast.TypeUnion); ok {
			types = append(types, inner.Types...)
			continue
		}
		types = append(types, t)
	}
	u.Types = types
	return u
}

func (p *Parser) parseOptionalType() ast.Type {
	t := p.parseSimpleType()
	if !p.peekPunct("?") {
		return t
	}
	union := &ast.TypeUnion{Types: []ast.Type{t}}
	for p.peekPunct("?") {
		q := p.ReadToken()
		union.Types = append(union.Types, &ast.TypeOptional{Location: q.Location})
	}
	union.Location = ast.Location{Begin: t.Loc().Begin, End: p.lastEnd()}
	return union
}

func (p *Parser) parseSimpleType() ast.Type {
	tok := p.src.Peek()
	switch {
	case tok.Is(token.KEYWORD, "nil"):
		p.ReadToken()
		return &ast.TypeReference{Location: tok.Location, Name: "nil"}
	case tok.Is(token.KEYWORD, "true"), tok.Is(token.KEYWORD, "false"):
		p.ReadToken()
		return &ast.TypeSingletonBool{Location: tok.Location, Value: tok.Text == "true"}
	case tok.Type == token.STRING:
		p.ReadToken()
		value, _ := unquote(tok.Text)
		return &ast.TypeSingletonString{Location: tok.Location, Value: value}
	case tok.Is(token.NAME, "typeof") && p.src.PeekAt(1).Is(token.PUNCT, "("):
		p.ReadToken()
		open := p.ReadToken()
		expr := p.ParseExpression()
		p.expectMatch(")", open)
		return &ast.TypeTypeof{
			Location: ast.Location{Begin: tok.Location.Begin, End: p.lastEnd()},
			Expr:     expr,
		}
	case tok.Type == token.NAME:
		return p.parseTypeReference()
	case tok.Is(token.PUNCT, "{"):
		return p.parseTableType()
	case tok.Is(token.PUNCT, "("), tok.Is(token.PUNCT, "<"):
		return p.parseFunctionType()
	}
	p.errorf("expected type, got %s", describe(tok))
	if tok.Type != token.EOF && !blockFollow(tok) && !tok.Is(token.PUNCT, ")") && !tok.Is(token.PUNCT, ",") {
		p.ReadToken()
	}
	return &ast.TypeError{Location: tok.Location, Message: "expected type"}
}

func (p *Parser) parseTypeReference() ast.Type {
	name := p.ReadToken()
	ref := &ast.TypeReference{Name: name.Text}
	if p.peekPunct(".") && p.src.PeekAt(1).Type == token.NAME {
		p.ReadToken()
		ref.Prefix = ref.Name
		ref.Name = p.ReadToken().Text
	}
	if p.peekPunct("<") {
		open := p.ReadToken()
		for !p.peekPunct(">") && !p.src.IsEOF() {
			ref.Parameters = append(ref.Parameters, p.ParseType())
			p.src.AcceptPunct("...")
			if !p.src.AcceptPunct(",") {
				break
			}
		}
		p.expectMatch(">", open)
	}
	ref.Location = ast.Location{Begin: name.Location.Begin, End: p.lastEnd()}
	return ref
}

func (p *Parser) parseTableType() ast.Type {
	open := p.ReadToken()
	table := &ast.TypeTable{}
	// array shorthand {T}
	if !p.peekPunct("[") && !(p.src.Peek().Type == token.NAME && p.src.PeekAt(1).Is(token.PUNCT, ":")) && !p.peekPunct("}") {
		elem := p.ParseType()
		table.Indexer = &ast.TableIndexer{
			Key:   &ast.TypeReference{Location: elem.Loc(), Name: "number"},
			Value: elem,
		}
		p.expectMatch("}", open)
		table.Location = ast.Location{Begin: open.Location.Begin, End: p.lastEnd()}
		return table
	}
	for !p.peekPunct("}") && !p.src.IsEOF() {
		tok := p.src.Peek()
		switch {
		case tok.Is(token.PUNCT, "["):
			p.ReadToken()
			key := p.ParseType()
			p.expectMatch("]", tok)
			p.expectPunct(":", "when parsing table indexer")
			table.Indexer = &ast.TableIndexer{Key: key, Value: p.ParseType()}
		case tok.Type == token.NAME:
			p.ReadToken()
			p.expectPunct(":", "when parsing table field")
			table.Props = append(table.Props, ast.TableProp{
				Name:     tok.Text,
				Type:     p.ParseType(),
				Location: tok.Location,
			})
		default:
			p.errorf("expected table type field, got %s", describe(tok))
			p.ReadToken()
			continue
		}
		if !p.src.AcceptPunct(",") && !p.src.AcceptPunct(";") {
			break
		}
	}
	p.expectMatch("}", open)
	table.Location = ast.Location{Begin: open.Location.Begin, End: p.lastEnd()}
	return table
}

// parseFunctionType parses `<G>(args) -> R` or a parenthesized type.
func (p *Parser) parseFunctionType() ast.Type {
	begin := p.src.Peek().Location.Begin
	var generics []*ast.GenericName
	if p.peekPunct("<") {
		generics = p.parseGenericNames()
	}
	open := p.src.Peek()
	if !p.expectPunct("(", "when parsing function type") {
		return &ast.TypeError{Location: open.Location, Message: "expected function type"}
	}
	args, names := p.parseTypeParams(open)
	if !p.peekPunct("->") {
		if generics == nil && args.Tail == nil && len(args.Types) == 1 && names[0] == nil {
			// parenthesized type
			return args.Types[0]
		}
		p.errorf("expected '->' when parsing function type, got %s", describe(p.src.Peek()))
		return &ast.TypeFunction{
			Location: ast.Location{Begin: begin, End: p.lastEnd()},
			Generics: generics,
			ArgTypes: args,
			ArgNames: names,
		}
	}
	p.ReadToken()
	returns := p.parseReturnTypeList()
	return &ast.TypeFunction{
		Location:    ast.Location{Begin: begin, End: p.lastEnd()},
		Generics:    generics,
		ArgTypes:    args,
		ArgNames:    names,
		ReturnTypes: returns,
	}
}

// parseTypeParams parses a parenthesized parameter list whose opening
// parenthesis has already been consumed.  Entries are `name: T`, `T`, or a
// trailing `...T`.  A bare self parameter has an unnamed type reference.
func (p *Parser) parseTypeParams(open *token.Token) (ast.TypeList, []*ast.ArgumentName) {
	var list ast.TypeList
	var names []*ast.ArgumentName
	for !p.peekPunct(")") && !p.src.IsEOF() {
		tok := p.src.Peek()
		if tok.Is(token.PUNCT, "...") {
			p.ReadToken()
			if p.src.AcceptPunct(":") || canStartType(p.src.Peek()) {
				list.Tail = p.parseVariadicAnnotation()
			} else {
				list.Tail = &ast.TypeReference{Location: tok.Location, Name: "any"}
			}
			break
		}
		var name *ast.ArgumentName
		switch {
		case tok.Type == token.NAME && p.src.PeekAt(1).Is(token.PUNCT, ":"):
			p.ReadToken()
			p.ReadToken()
			name = &ast.ArgumentName{Name: tok.Text, Location: tok.Location}
			list.Types = append(list.Types, p.ParseType())
		case tok.Is(token.NAME, "self") && (p.src.PeekAt(1).Is(token.PUNCT, ",") || p.src.PeekAt(1).Is(token.PUNCT, ")")):
			p.ReadToken()
			name = &ast.ArgumentName{Name: tok.Text, Location: tok.Location}
			list.Types = append(list.Types, &ast.TypeReference{Location: tok.Location})
		default:
			list.Types = append(list.Types, p.ParseType())
		}
		names = append(names, name)
		if !p.src.AcceptPunct(",") {
			break
		}
	}
	p.expectMatch(")", open)
	return list, names
}

func canStartType(tok *token.Token) bool {
	switch tok.Type {
	case token.NAME, token.STRING:
		return true
	case token.KEYWORD:
		return tok.Text == "nil" || tok.Text == "true" || tok.Text == "false"
	case token.PUNCT:
		return tok.Text == "(" || tok.Text == "{" || tok.Text == "<"
	}
	return false
}

// parseReturnTypeList parses a return annotation: a single type, a pack
// `(A, B)`, a variadic `...T`, or a function type.
func (p *Parser) parseReturnTypeList() ast.TypeList {
	tok := p.src.Peek()
	switch {
	case tok.Is(token.PUNCT, "..."):
		p.ReadToken()
		return ast.TypeList{Tail: p.parseVariadicAnnotation()}
	case tok.Is(token.PUNCT, "("):
		p.ReadToken()
		list, names := p.parseTypeParams(tok)
		if p.peekPunct("->") {
			p.ReadToken()
			returns := p.parseReturnTypeList()
			fn := &ast.TypeFunction{
				Location:    ast.Location{Begin: tok.Location.Begin, End: p.lastEnd()},
				ArgTypes:    list,
				ArgNames:    names,
				ReturnTypes: returns,
			}
			return ast.TypeList{Types: []ast.Type{fn}}
		}
		return list
	}
	return ast.TypeList{Types: []ast.Type{p.ParseType()}}
}

func (p *Parser) parseGenericNames() []*ast.GenericName {
	open := p.ReadToken()
	var names []*ast.GenericName
	for !p.peekPunct(">") && !p.src.IsEOF() {
		name, ok := p.expectName("when parsing generic type list")
		if !ok {
			break
		}
		p.src.AcceptPunct("...")
		names = append(names, &ast.GenericName{Name: name.Text, Location: name.Location})
		if !p.src.AcceptPunct(",") {
			break
		}
	}
	p.expectMatch(">", open)
	return names
}
