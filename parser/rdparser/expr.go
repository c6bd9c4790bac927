// Copyright © 2018 The ELPS authors

package rdparser

import (
	"strconv"
	"strings"

	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/parser/token"
)

type binaryPriority struct {
	left, right int
}

var binaryPriorities = map[string]binaryPriority{
	"+": {6, 6}, "-": {6, 6},
	"*": {7, 7}, "/": {7, 7}, "//": {7, 7}, "%": {7, 7},
	"^":  {10, 9},
	"..": {5, 4},
	"==": {3, 3}, "~=": {3, 3}, "<": {3, 3}, "<=": {3, 3}, ">": {3, 3}, ">=": {3, 3},
	"and": {2, 2},
	"or":  {1, 1},
}

const unaryPriority = 8

// canStartExpression reports whether tok may begin an expression.
func canStartExpression(tok *token.Token) bool {
	switch tok.Type {
	case token.NAME, token.NUMBER, token.STRING, token.ERROR:
		return true
	case token.KEYWORD:
		switch tok.Text {
		case "nil", "true", "false", "function", "not", "if":
			return true
		}
	case token.PUNCT:
		switch tok.Text {
		case "(", "{", "-", "#", "...":
			return true
		}
	}
	return false
}

// ParseExpression parses a single expression.  A token that cannot start an
// expression yields an *ast.ExprError without being consumed.
func (p *Parser) ParseExpression() ast.Expr {
	return p.parseSubExpr(0)
}

func (p *Parser) parseExprList() []ast.Expr {
	exprs := []ast.Expr{p.ParseExpression()}
	for p.src.AcceptPunct(",") {
		exprs = append(exprs, p.ParseExpression())
	}
	return exprs
}

func binaryOp(tok *token.Token) (string, bool) {
	switch tok.Type {
	case token.PUNCT:
		if _, ok := binaryPriorities[tok.Text]; ok {
			return tok.Text, true
		}
	case token.KEYWORD:
		if tok.Text == "and" || tok.Text == "or" {
			return tok.Text, true
		}
	}
	return "", false
}

func (p *Parser) parseSubExpr(limit int) ast.Expr {
	var expr ast.Expr
	tok := p.src.Peek()
	if tok.Is(token.KEYWORD, "not") || tok.Is(token.PUNCT, "-") || tok.Is(token.PUNCT, "#") {
		p.ReadToken()
		operand := p.parseSubExpr(unaryPriority)
		expr = &ast.ExprUnary{
			Location: ast.Location{Begin: tok.Location.Begin, End: operand.Loc().End},
			Op:       tok.Text,
			Expr:     operand,
		}
	} else {
		expr = p.parseAssertionExpr()
	}
	for {
		op, ok := binaryOp(p.src.Peek())
		if !ok || binaryPriorities[op].left <= limit {
			return expr
		}
		p.ReadToken()
		right := p.parseSubExpr(binaryPriorities[op].right)
		expr = &ast.ExprBinary{
			Location: ast.Location{Begin: expr.Loc().Begin, End: right.Loc().End},
			Op:       op,
			Left:     expr,
			Right:    right,
		}
	}
}

func (p *Parser) parseAssertionExpr() ast.Expr {
	expr := p.parseSimpleExpr()
	for p.src.AcceptPunct("::") {
		ann := p.ParseType()
		expr = &ast.ExprTypeAssertion{
			Location:   ast.Location{Begin: expr.Loc().Begin, End: ann.Loc().End},
			Expr:       expr,
			Annotation: ann,
		}
	}
	return expr
}

func (p *Parser) parseSimpleExpr() ast.Expr {
	tok := p.src.Peek()
	switch {
	case tok.Is(token.KEYWORD, "nil"):
		p.ReadToken()
		return &ast.ExprConstantNil{Location: tok.Location}
	case tok.Is(token.KEYWORD, "true"), tok.Is(token.KEYWORD, "false"):
		p.ReadToken()
		return &ast.ExprConstantBool{Location: tok.Location, Value: tok.Text == "true"}
	case tok.Is(token.KEYWORD, "function"):
		p.ReadToken()
		return p.parseFunctionBody(tok, nil, "")
	case tok.Is(token.KEYWORD, "if"):
		return p.parseIfElseExpr()
	case tok.Type == token.NUMBER:
		p.ReadToken()
		return p.parseNumber(tok)
	case tok.Type == token.STRING:
		p.ReadToken()
		return p.parseString(tok)
	case tok.Is(token.PUNCT, "..."):
		p.ReadToken()
		return &ast.ExprVarargs{Location: tok.Location}
	case tok.Is(token.PUNCT, "{"):
		return p.parseTableConstructor()
	}
	return p.parsePrimaryExpr()
}

func (p *Parser) parseNumber(tok *token.Token) ast.Expr {
	text := strings.ReplaceAll(tok.Text, "_", "")
	var value float64
	var err error
	switch {
	case strings.HasPrefix(text, "0x"), strings.HasPrefix(text, "0X"):
		var n uint64
		n, err = strconv.ParseUint(text[2:], 16, 64)
		value = float64(n)
	case strings.HasPrefix(text, "0b"), strings.HasPrefix(text, "0B"):
		var n uint64
		n, err = strconv.ParseUint(text[2:], 2, 64)
		value = float64(n)
	default:
		value, err = strconv.ParseFloat(text, 64)
	}
	if err != nil {
		p.errorAt(tok.Location, "malformed number %q", tok.Text)
	}
	return &ast.ExprConstantNumber{Location: tok.Location, Value: value, Text: tok.Text}
}

func (p *Parser) parseString(tok *token.Token) ast.Expr {
	value, ok := unquote(tok.Text)
	if !ok {
		p.errorAt(tok.Location, "invalid escape sequence in %s", tok.Text)
	}
	return &ast.ExprConstantString{Location: tok.Location, Value: value}
}

// unquote returns the value of a string token.
func unquote(text string) (string, bool) {
	if strings.HasPrefix(text, "[") {
		level := strings.Index(text[1:], "[")
		body := text[level+2 : len(text)-level-2]
		// a newline directly after the opening bracket is skipped
		body = strings.TrimPrefix(body, "\r")
		return strings.TrimPrefix(body, "\n"), true
	}
	body := text[1 : len(text)-1]
	if !strings.Contains(body, "\\") {
		return body, true
	}
	var sb strings.Builder
	ok := true
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '\\', '"', '\'', '`', '\n':
			sb.WriteByte(body[i])
		case 'z':
			for i+1 < len(body) && strings.IndexByte(" \t\r\n", body[i+1]) >= 0 {
				i++
			}
		case 'x':
			if i+2 < len(body) {
				n, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
				if err == nil {
					sb.WriteByte(byte(n))
					i += 2
					continue
				}
			}
			ok = false
		default:
			if '0' <= body[i] && body[i] <= '9' {
				j := i
				for j < len(body) && j < i+3 && '0' <= body[j] && body[j] <= '9' {
					j++
				}
				n, _ := strconv.Atoi(body[i:j])
				if n > 255 {
					ok = false
				}
				sb.WriteByte(byte(n))
				i = j - 1
				continue
			}
			ok = false
			sb.WriteByte(body[i])
		}
	}
	return sb.String(), ok
}

func (p *Parser) parseIfElseExpr() ast.Expr {
	start := p.ReadToken()
	cond := p.ParseExpression()
	p.expectMatchKeyword("then", start)
	trueExpr := p.ParseExpression()
	var falseExpr ast.Expr
	switch {
	case p.peekKeyword("elseif"):
		falseExpr = p.parseIfElseExpr()
	case p.src.AcceptKeyword("else"):
		falseExpr = p.ParseExpression()
	default:
		p.errorf("expected 'else' when parsing if-then-else expression, got %s", describe(p.src.Peek()))
		falseExpr = &ast.ExprError{Location: p.src.Peek().Location}
	}
	return &ast.ExprIfElse{
		Location:  ast.Location{Begin: start.Location.Begin, End: falseExpr.Loc().End},
		Condition: cond,
		TrueExpr:  trueExpr,
		FalseExpr: falseExpr,
	}
}

func (p *Parser) nameExpr(tok *token.Token) ast.Expr {
	if local := p.lookupLocal(tok.Text); local != nil {
		return &ast.ExprLocal{Location: tok.Location, Local: local}
	}
	return &ast.ExprGlobal{Location: tok.Location, Name: tok.Text}
}

// parsePrefixExpr parses a name or a parenthesized expression.
func (p *Parser) parsePrefixExpr() ast.Expr {
	tok := p.src.Peek()
	switch {
	case tok.Type == token.NAME:
		p.ReadToken()
		return p.nameExpr(tok)
	case tok.Is(token.PUNCT, "("):
		p.ReadToken()
		inner := p.ParseExpression()
		p.expectMatch(")", tok)
		return &ast.ExprGroup{
			Location: ast.Location{Begin: tok.Location.Begin, End: p.lastEnd()},
			Expr:     inner,
		}
	case tok.Type == token.ERROR:
		p.ReadToken()
		p.errorAt(tok.Location, "%s", tok.Text)
		return &ast.ExprError{Location: tok.Location, Message: tok.Text}
	}
	p.errorf("expected identifier when parsing expression, got %s", describe(tok))
	return &ast.ExprError{
		Location: ast.Location{Begin: tok.Location.Begin, End: tok.Location.Begin},
		Message:  "expected expression",
	}
}

// parsePrimaryExpr parses a prefix expression followed by any number of
// index and call suffixes.
func (p *Parser) parsePrimaryExpr() ast.Expr {
	expr := p.parsePrefixExpr()
	if _, ok := expr.(*ast.ExprError); ok {
		return expr
	}
	for {
		tok := p.src.Peek()
		switch {
		case tok.Is(token.PUNCT, "."):
			p.ReadToken()
			expr = p.parseIndexName(expr, tok)
		case tok.Is(token.PUNCT, "["):
			p.ReadToken()
			index := p.ParseExpression()
			p.expectMatch("]", tok)
			expr = &ast.ExprIndexExpr{
				Location: ast.Location{Begin: expr.Loc().Begin, End: p.lastEnd()},
				Expr:     expr,
				Index:    index,
			}
		case tok.Is(token.PUNCT, ":"):
			p.ReadToken()
			method := p.parseIndexName(expr, tok)
			if !p.peekCallArgs() {
				p.errorf("expected function call arguments after '('")
				return &ast.ExprError{
					Location:    method.Loc(),
					Expressions: []ast.Expr{method},
					Message:     "expected call arguments",
				}
			}
			expr = p.parseCallArgs(method, true)
		case p.peekCallArgs():
			expr = p.parseCallArgs(expr, false)
		default:
			return expr
		}
	}
}

func (p *Parser) parseIndexName(expr ast.Expr, op *token.Token) ast.Expr {
	index := &ast.ExprIndexName{
		Expr: expr,
		Op:   op.Text[0],
	}
	if name, ok := p.expectName("after '" + op.Text + "'"); ok {
		index.Index = name.Text
		index.IndexLocation = name.Location
	} else {
		index.IndexLocation = ast.Location{Begin: op.Location.End, End: op.Location.End}
	}
	index.Location = ast.Location{Begin: expr.Loc().Begin, End: index.IndexLocation.End}
	return index
}

func (p *Parser) peekCallArgs() bool {
	tok := p.src.Peek()
	return tok.Is(token.PUNCT, "(") || tok.Is(token.PUNCT, "{") || tok.Type == token.STRING
}

// parseCallArgs parses the arguments of a call.  An argument slot that is
// empty (a closing parenthesis or a token that cannot start an expression
// directly after '(' or ',') adds no argument.  When the closing parenthesis
// is missing the call ends at the last consumed token.
func (p *Parser) parseCallArgs(fn ast.Expr, self bool) ast.Expr {
	tok := p.src.Peek()
	call := &ast.ExprCall{Func: fn, Self: self}
	switch {
	case tok.Type == token.STRING:
		p.ReadToken()
		call.Args = []ast.Expr{p.parseString(tok)}
		call.ArgLocation = tok.Location
	case tok.Is(token.PUNCT, "{"):
		table := p.parseTableConstructor()
		call.Args = []ast.Expr{table}
		call.ArgLocation = table.Loc()
	default:
		open := p.ReadToken()
		if !p.peekPunct(")") {
			for {
				if !canStartExpression(p.src.Peek()) {
					p.errorf("expected expression, got %s", describe(p.src.Peek()))
					break
				}
				call.Args = append(call.Args, p.ParseExpression())
				if !p.src.AcceptPunct(",") {
					break
				}
			}
		}
		p.expectMatch(")", open)
		call.ArgLocation = ast.Location{Begin: open.Location.Begin, End: p.lastEnd()}
	}
	call.Location = ast.Location{Begin: fn.Loc().Begin, End: p.lastEnd()}
	return call
}

func (p *Parser) parseTableConstructor() ast.Expr {
	open := p.ReadToken()
	table := &ast.ExprTable{}
	for !p.peekPunct("}") && !p.src.IsEOF() {
		tok := p.src.Peek()
		switch {
		case tok.Is(token.PUNCT, "["):
			p.ReadToken()
			key := p.ParseExpression()
			p.expectMatch("]", tok)
			p.expectPunct("=", "when parsing table field")
			table.Items = append(table.Items, ast.TableItem{
				Kind:  ast.TableItemGeneral,
				Key:   key,
				Value: p.ParseExpression(),
			})
		case tok.Type == token.NAME && p.src.PeekAt(1).Is(token.PUNCT, "="):
			p.ReadToken()
			p.ReadToken()
			table.Items = append(table.Items, ast.TableItem{
				Kind:  ast.TableItemRecord,
				Key:   &ast.ExprConstantString{Location: tok.Location, Value: tok.Text},
				Value: p.ParseExpression(),
			})
		case canStartExpression(tok):
			table.Items = append(table.Items, ast.TableItem{
				Kind:  ast.TableItemList,
				Value: p.ParseExpression(),
			})
		default:
			p.errorf("expected table field, got %s", describe(tok))
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

// parseFunctionBody parses generics, parameters, the return annotation and
// the body of a function.  start is the token that opened the definition.
func (p *Parser) parseFunctionBody(start *token.Token, self *ast.Local, debugName string) *ast.ExprFunction {
	fn := &ast.ExprFunction{DebugName: debugName}
	if p.peekPunct("<") {
		fn.Generics = p.parseGenericNames()
	}
	mark := len(p.locals)
	defer p.restoreLocals(mark)
	if self != nil {
		fn.Self = p.pushLocal(self.Name, self.Location, nil)
	}
	open := p.src.Peek()
	if p.expectPunct("(", "when parsing function") {
		for !p.peekPunct(")") {
			tok := p.src.Peek()
			if tok.Is(token.PUNCT, "...") {
				p.ReadToken()
				fn.Vararg = true
				fn.VarargLocation = tok.Location
				if p.src.AcceptPunct(":") {
					fn.VarargAnnotation = p.parseVariadicAnnotation()
				}
				break
			}
			name, ok := p.expectName("when parsing function parameter")
			if !ok {
				break
			}
			var ann ast.Type
			if p.src.AcceptPunct(":") {
				ann = p.ParseType()
			}
			fn.Args = append(fn.Args, &ast.Local{Name: name.Text, Location: name.Location, Annotation: ann})
			if !p.src.AcceptPunct(",") {
				break
			}
		}
		p.expectMatch(")", open)
	}
	fn.ArgLocation = ast.Location{Begin: open.Location.Begin, End: p.lastEnd()}
	for _, arg := range fn.Args {
		p.declareLocal(arg)
	}
	if p.src.AcceptPunct(":") {
		ret := p.parseReturnTypeList()
		fn.ReturnAnnotation = &ret
	}
	fn.Body = p.parseBlock()
	p.expectMatch("end", start)
	fn.Location = ast.Location{Begin: start.Location.Begin, End: p.lastEnd()}
	return fn
}

// parseVariadicAnnotation parses the annotation of '...' which may name a
// generic pack (T...).
func (p *Parser) parseVariadicAnnotation() ast.Type {
	t := p.ParseType()
	p.src.AcceptPunct("...")
	return t
}
