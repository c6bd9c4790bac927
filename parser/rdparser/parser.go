// Copyright © 2018 The ELPS authors

package rdparser

import (
	"fmt"

	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/parser/token"
)

// ParseError is a syntax error.  The parser never stops at the first error;
// every error is collected and the tree is completed with error nodes.
type ParseError struct {
	File     string
	Location ast.Location
	Message  string
}

func (err *ParseError) Error() string {
	loc := &token.Location{File: err.File, Pos: err.Location.Begin}
	return fmt.Sprintf("%s: %s", loc, err.Message)
}

// Result is the outcome of parsing a chunk.
type Result struct {
	Root     *ast.StatBlock
	Comments []ast.Comment
	Errors   []*ParseError
}

// Parser is a recovering recursive descent parser for Luau.
type Parser struct {
	file   string
	src    *TokenSource
	errors []*ParseError
	locals []*ast.Local
}

// NewFromSource initializes and returns a Parser that reads tokens from src.
func NewFromSource(file string, src *TokenSource) *Parser {
	return &Parser{
		file: file,
		src:  src,
	}
}

// New initializes and returns a new Parser that reads tokens from scanner.
func New(scanner *token.Scanner) *Parser {
	return NewFromSource(scanner.File(), NewTokenSource(scanner))
}

// Parse parses the source text of the named chunk.
func Parse(file string, src string) *Result {
	return New(token.NewScanner(file, src)).ParseChunk()
}

// ParseChunk parses statements until EOF.  The root block spans from the
// start of the input to the EOF token.
func (p *Parser) ParseChunk() *Result {
	root := p.parseBlock()
	for !p.src.IsEOF() {
		// a stray block terminator at the top level
		tok := p.ReadToken()
		p.errorAt(tok.Location, "unexpected '%s'", tok.Text)
		more := p.parseBlock()
		root.Body = append(root.Body, more.Body...)
	}
	root.Location = ast.Location{End: p.src.Peek().Location.Begin}
	return &Result{
		Root:     root,
		Comments: p.src.Comments,
		Errors:   p.errors,
	}
}

func (p *Parser) errorAt(loc ast.Location, format string, v ...interface{}) {
	p.errors = append(p.errors, &ParseError{
		File:     p.file,
		Location: loc,
		Message:  fmt.Sprintf(format, v...),
	})
}

func (p *Parser) errorf(format string, v ...interface{}) {
	p.errorAt(p.src.Peek().Location, format, v...)
}

func (p *Parser) ReadToken() *token.Token {
	p.src.Scan()
	return p.src.Token
}

func (p *Parser) PeekType() token.Type {
	return p.src.Peek().Type
}

// lastEnd is the end of the last consumed token.
func (p *Parser) lastEnd() ast.Position {
	if p.src.Token == nil {
		return ast.Position{}
	}
	return p.src.Token.Location.End
}

func (p *Parser) peekPunct(text string) bool {
	return p.src.Peek().Is(token.PUNCT, text)
}

func (p *Parser) peekKeyword(text string) bool {
	return p.src.Peek().Is(token.KEYWORD, text)
}

func (p *Parser) peekName(text string) bool {
	return p.src.Peek().Is(token.NAME, text)
}

// expectPunct consumes the punctuation text or records an error.
func (p *Parser) expectPunct(text string, context string) bool {
	if p.src.AcceptPunct(text) {
		return true
	}
	p.errorf("expected '%s' %s, got %s", text, context, describe(p.src.Peek()))
	return false
}

// expectMatch consumes the closing text of a construct that began at open.
func (p *Parser) expectMatch(text string, open *token.Token) bool {
	var ok bool
	if text == "end" || text == "until" {
		ok = p.src.AcceptKeyword(text)
	} else {
		ok = p.src.AcceptPunct(text)
	}
	if !ok {
		p.errorf("expected '%s' (to close '%s' at line %d), got %s",
			text, open.Text, open.Location.Begin.Line+1, describe(p.src.Peek()))
	}
	return ok
}

func (p *Parser) expectName(context string) (*token.Token, bool) {
	if p.src.AcceptType(token.NAME) {
		return p.src.Token, true
	}
	p.errorf("expected identifier %s, got %s", context, describe(p.src.Peek()))
	return nil, false
}

func describe(tok *token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "<eof>"
	case token.ERROR:
		return tok.Text
	}
	return fmt.Sprintf("'%s'", tok.Text)
}

func (p *Parser) pushLocal(name string, loc ast.Location, annotation ast.Type) *ast.Local {
	l := &ast.Local{Name: name, Location: loc, Annotation: annotation}
	p.declareLocal(l)
	return l
}

func (p *Parser) declareLocal(l *ast.Local) {
	l.Shadow = p.lookupLocal(l.Name)
	p.locals = append(p.locals, l)
}

func (p *Parser) lookupLocal(name string) *ast.Local {
	for i := len(p.locals) - 1; i >= 0; i-- {
		if p.locals[i].Name == name {
			return p.locals[i]
		}
	}
	return nil
}

func (p *Parser) restoreLocals(mark int) {
	p.locals = p.locals[:mark]
}

func blockFollow(tok *token.Token) bool {
	if tok.Type == token.EOF {
		return true
	}
	if tok.Type != token.KEYWORD {
		return false
	}
	switch tok.Text {
	case "end", "else", "elseif", "until":
		return true
	}
	return false
}

// parseBlock parses statements in a new local scope.
func (p *Parser) parseBlock() *ast.StatBlock {
	mark := len(p.locals)
	defer p.restoreLocals(mark)
	return p.parseBlockNoScope()
}

func (p *Parser) parseBlockNoScope() *ast.StatBlock {
	block := &ast.StatBlock{}
	begin := p.src.Peek().Location.Begin
	for !blockFollow(p.src.Peek()) {
		stat := p.parseStat()
		block.Body = append(block.Body, stat)
		p.src.AcceptPunct(";")
		if _, ok := stat.(*ast.StatReturn); ok {
			break
		}
	}
	end := begin
	if len(block.Body) > 0 {
		end = block.Body[len(block.Body)-1].Loc().End
	}
	block.Location = ast.Location{Begin: begin, End: end}
	return block
}

func (p *Parser) parseStat() ast.Stat {
	tok := p.src.Peek()
	switch {
	case tok.Is(token.KEYWORD, "if"):
		return p.parseIf()
	case tok.Is(token.KEYWORD, "while"):
		return p.parseWhile()
	case tok.Is(token.KEYWORD, "do"):
		p.ReadToken()
		body := p.parseBlock()
		p.expectMatch("end", tok)
		body.Location = ast.Location{Begin: tok.Location.Begin, End: p.lastEnd()}
		return body
	case tok.Is(token.KEYWORD, "for"):
		return p.parseFor()
	case tok.Is(token.KEYWORD, "repeat"):
		return p.parseRepeat()
	case tok.Is(token.KEYWORD, "function"):
		return p.parseFunctionStat()
	case tok.Is(token.KEYWORD, "local"):
		return p.parseLocal()
	case tok.Is(token.KEYWORD, "return"):
		return p.parseReturn()
	case tok.Is(token.KEYWORD, "break"):
		p.ReadToken()
		return &ast.StatBreak{Location: tok.Location}
	case tok.Is(token.NAME, "continue") && !continuesExpression(p.src.PeekAt(1)):
		p.ReadToken()
		return &ast.StatContinue{Location: tok.Location}
	case tok.Is(token.NAME, "type") && p.src.PeekAt(1).Type == token.NAME:
		p.ReadToken()
		return p.parseTypeAlias(tok.Location.Begin, false)
	case tok.Is(token.NAME, "export") && p.src.PeekAt(1).Is(token.NAME, "type"):
		p.ReadToken()
		p.ReadToken()
		return p.parseTypeAlias(tok.Location.Begin, true)
	case tok.Is(token.NAME, "declare") && (p.src.PeekAt(1).Type == token.NAME || p.src.PeekAt(1).Is(token.KEYWORD, "function")):
		p.ReadToken()
		return p.parseDeclaration(tok.Location.Begin)
	}
	switch {
	case tok.Type == token.NAME, tok.Type == token.ERROR, tok.Is(token.PUNCT, "("):
		return p.parseAssignmentOrCall()
	case canStartExpression(tok):
		expr := p.ParseExpression()
		p.errorAt(expr.Loc(), "incomplete statement: expected assignment or a function call")
		return &ast.StatError{Location: expr.Loc(), Expressions: []ast.Expr{expr}}
	}
	p.ReadToken()
	p.errorAt(tok.Location, "expected statement, got %s", describe(tok))
	return &ast.StatError{Location: tok.Location}
}

// continuesExpression reports whether tok following a contextual keyword
// means the keyword is really an identifier.
func continuesExpression(tok *token.Token) bool {
	switch tok.Type {
	case token.STRING:
		return true
	case token.PUNCT:
		switch tok.Text {
		case "(", ".", ":", "[", "=", ",", "{", "+=", "-=", "*=", "/=", "%=", "^=", "..=", "//=":
			return true
		}
	}
	return false
}

func (p *Parser) parseIf() ast.Stat {
	start := p.ReadToken() // if or elseif
	cond := p.ParseExpression()
	p.expectMatchKeyword("then", start)
	thenBody := p.parseBlock()
	stat := &ast.StatIf{Condition: cond, ThenBody: thenBody}
	switch {
	case p.peekKeyword("elseif"):
		stat.ElseBody = p.parseIf()
	case p.peekKeyword("else"):
		elseTok := p.ReadToken()
		elseBody := p.parseBlock()
		elseBody.Location.Begin = elseTok.Location.Begin
		stat.ElseBody = elseBody
		p.expectMatch("end", start)
	default:
		p.expectMatch("end", start)
	}
	stat.Location = ast.Location{Begin: start.Location.Begin, End: p.lastEnd()}
	return stat
}

func (p *Parser) expectMatchKeyword(text string, open *token.Token) {
	if !p.src.AcceptKeyword(text) {
		p.errorf("expected '%s' when parsing '%s', got %s", text, open.Text, describe(p.src.Peek()))
	}
}

func (p *Parser) parseWhile() ast.Stat {
	start := p.ReadToken()
	cond := p.ParseExpression()
	p.expectMatchKeyword("do", start)
	body := p.parseBlock()
	p.expectMatch("end", start)
	return &ast.StatWhile{
		Location:  ast.Location{Begin: start.Location.Begin, End: p.lastEnd()},
		Condition: cond,
		Body:      body,
	}
}

func (p *Parser) parseRepeat() ast.Stat {
	start := p.ReadToken()
	mark := len(p.locals)
	body := p.parseBlockNoScope()
	p.expectMatch("until", start)
	cond := p.ParseExpression()
	p.restoreLocals(mark)
	return &ast.StatRepeat{
		Location:  ast.Location{Begin: start.Location.Begin, End: cond.Loc().End},
		Body:      body,
		Condition: cond,
	}
}

func (p *Parser) parseFor() ast.Stat {
	start := p.ReadToken()
	type binding struct {
		name *token.Token
		ann  ast.Type
	}
	var vars []binding
	for {
		name, ok := p.expectName("in for loop")
		if !ok {
			break
		}
		b := binding{name: name}
		if p.src.AcceptPunct(":") {
			b.ann = p.ParseType()
		}
		vars = append(vars, b)
		if !p.src.AcceptPunct(",") {
			break
		}
	}
	mark := len(p.locals)
	defer p.restoreLocals(mark)
	if len(vars) == 1 && p.src.AcceptPunct("=") {
		from := p.ParseExpression()
		p.expectPunct(",", "in numeric for loop")
		to := p.ParseExpression()
		var step ast.Expr
		if p.src.AcceptPunct(",") {
			step = p.ParseExpression()
		}
		p.expectMatchKeyword("do", start)
		v := p.pushLocal(vars[0].name.Text, vars[0].name.Location, vars[0].ann)
		body := p.parseBlock()
		p.expectMatch("end", start)
		return &ast.StatFor{
			Location: ast.Location{Begin: start.Location.Begin, End: p.lastEnd()},
			Var:      v,
			From:     from,
			To:       to,
			Step:     step,
			Body:     body,
		}
	}
	p.expectMatchKeyword("in", start)
	values := p.parseExprList()
	p.expectMatchKeyword("do", start)
	stat := &ast.StatForIn{Values: values}
	for _, b := range vars {
		stat.Vars = append(stat.Vars, p.pushLocal(b.name.Text, b.name.Location, b.ann))
	}
	stat.Body = p.parseBlock()
	p.expectMatch("end", start)
	stat.Location = ast.Location{Begin: start.Location.Begin, End: p.lastEnd()}
	return stat
}

func (p *Parser) parseFunctionStat() ast.Stat {
	start := p.ReadToken()
	nameTok, ok := p.expectName("after 'function'")
	if !ok {
		fn := p.parseFunctionBody(start, nil, "")
		return &ast.StatError{
			Location:    fn.Location,
			Expressions: []ast.Expr{fn},
		}
	}
	name := p.nameExpr(nameTok)
	debugName := nameTok.Text
	var self *ast.Local
	for p.peekPunct(".") || p.peekPunct(":") {
		op := p.ReadToken()
		field, ok := p.expectName(fmt.Sprintf("after '%s'", op.Text))
		if !ok {
			break
		}
		name = &ast.ExprIndexName{
			Location:      ast.Location{Begin: name.Loc().Begin, End: field.Location.End},
			Expr:          name,
			Index:         field.Text,
			IndexLocation: field.Location,
			Op:            op.Text[0],
		}
		debugName = field.Text
		if op.Text == ":" {
			self = &ast.Local{Name: "self", Location: field.Location}
			break
		}
	}
	fn := p.parseFunctionBody(start, self, debugName)
	return &ast.StatFunction{
		Location: fn.Location,
		Name:     name,
		Func:     fn,
	}
}

func (p *Parser) parseLocal() ast.Stat {
	start := p.ReadToken()
	if p.peekKeyword("function") {
		p.ReadToken()
		nameTok, ok := p.expectName("after 'local function'")
		if !ok {
			fn := p.parseFunctionBody(start, nil, "")
			return &ast.StatError{Location: fn.Location, Expressions: []ast.Expr{fn}}
		}
		local := p.pushLocal(nameTok.Text, nameTok.Location, nil)
		fn := p.parseFunctionBody(start, nil, nameTok.Text)
		return &ast.StatLocalFunction{
			Location: fn.Location,
			Name:     local,
			Func:     fn,
		}
	}
	type binding struct {
		name *token.Token
		ann  ast.Type
	}
	var vars []binding
	for {
		name, ok := p.expectName("after 'local'")
		if !ok {
			break
		}
		b := binding{name: name}
		if p.src.AcceptPunct(":") {
			b.ann = p.ParseType()
		}
		vars = append(vars, b)
		if !p.src.AcceptPunct(",") {
			break
		}
	}
	stat := &ast.StatLocal{}
	if p.src.AcceptPunct("=") {
		stat.Values = p.parseExprList()
	}
	for _, b := range vars {
		stat.Vars = append(stat.Vars, p.pushLocal(b.name.Text, b.name.Location, b.ann))
	}
	stat.Location = ast.Location{Begin: start.Location.Begin, End: p.lastEnd()}
	return stat
}

func (p *Parser) parseReturn() ast.Stat {
	start := p.ReadToken()
	stat := &ast.StatReturn{}
	if !blockFollow(p.src.Peek()) && !p.peekPunct(";") {
		stat.List = p.parseExprList()
	}
	stat.Location = ast.Location{Begin: start.Location.Begin, End: p.lastEnd()}
	return stat
}

func (p *Parser) parseAssignmentOrCall() ast.Stat {
	expr := p.parsePrimaryExpr()
	switch {
	case p.peekPunct("=") || p.peekPunct(","):
		vars := []ast.Expr{expr}
		for p.src.AcceptPunct(",") {
			vars = append(vars, p.parsePrimaryExpr())
		}
		p.expectPunct("=", "in assignment")
		values := p.parseExprList()
		for _, v := range vars {
			if !isAssignable(v) {
				p.errorAt(v.Loc(), "assigned expression must be a variable or a field")
			}
		}
		return &ast.StatAssign{
			Location: ast.Location{Begin: expr.Loc().Begin, End: p.lastEnd()},
			Vars:     vars,
			Values:   values,
		}
	case p.src.Peek().Type == token.PUNCT && isCompoundOp(p.src.Peek().Text):
		op := p.ReadToken()
		value := p.ParseExpression()
		return &ast.StatCompoundAssign{
			Location: ast.Location{Begin: expr.Loc().Begin, End: value.Loc().End},
			Op:       op.Text[:len(op.Text)-1],
			Var:      expr,
			Value:    value,
		}
	}
	if _, ok := expr.(*ast.ExprCall); ok {
		return &ast.StatExpr{Location: expr.Loc(), Expr: expr}
	}
	if _, ok := expr.(*ast.ExprError); !ok {
		p.errorAt(expr.Loc(), "incomplete statement: expected assignment or a function call")
	}
	return &ast.StatError{Location: expr.Loc(), Expressions: []ast.Expr{expr}}
}

func isAssignable(e ast.Expr) bool {
	switch e.(type) {
	case *ast.ExprLocal, *ast.ExprGlobal, *ast.ExprIndexName, *ast.ExprIndexExpr, *ast.ExprError:
		return true
	}
	return false
}

func isCompoundOp(text string) bool {
	switch text {
	case "+=", "-=", "*=", "/=", "%=", "^=", "..=", "//=":
		return true
	}
	return false
}

func (p *Parser) parseTypeAlias(begin ast.Position, exported bool) ast.Stat {
	nameTok := p.ReadToken()
	stat := &ast.StatTypeAlias{Name: nameTok.Text, Exported: exported}
	if p.peekPunct("<") {
		stat.Generics = p.parseGenericNames()
	}
	if p.expectPunct("=", "when parsing type alias") {
		stat.Type = p.ParseType()
	} else {
		stat.Type = &ast.TypeError{Location: p.src.Peek().Location, Message: "missing type"}
	}
	stat.Location = ast.Location{Begin: begin, End: p.lastEnd()}
	return stat
}

func (p *Parser) parseDeclaration(begin ast.Position) ast.Stat {
	if p.src.AcceptKeyword("function") {
		nameTok, _ := p.expectName("after 'declare function'")
		stat := &ast.StatDeclareFunction{}
		if nameTok != nil {
			stat.Name = nameTok.Text
		}
		if p.peekPunct("<") {
			stat.Generics = p.parseGenericNames()
		}
		open := p.src.Peek()
		if p.expectPunct("(", "when parsing function declaration") {
			stat.Params, stat.ParamNames = p.parseTypeParams(open)
		}
		if p.src.AcceptPunct(":") {
			stat.ReturnAnnotation = p.parseReturnTypeList()
		}
		stat.Location = ast.Location{Begin: begin, End: p.lastEnd()}
		return stat
	}
	nameTok := p.ReadToken()
	if nameTok.Text == "class" && p.src.Peek().Type == token.NAME {
		return p.parseDeclareClass(begin)
	}
	stat := &ast.StatDeclareGlobal{Name: nameTok.Text}
	if p.expectPunct(":", "when parsing global declaration") {
		stat.Type = p.ParseType()
	} else {
		stat.Type = &ast.TypeError{Location: p.src.Peek().Location}
	}
	stat.Location = ast.Location{Begin: begin, End: p.lastEnd()}
	return stat
}

func (p *Parser) parseDeclareClass(begin ast.Position) ast.Stat {
	classTok := p.src.Token
	nameTok := p.ReadToken()
	stat := &ast.StatDeclareClass{Name: nameTok.Text}
	if p.peekName("extends") {
		p.ReadToken()
		if super, ok := p.expectName("after 'extends'"); ok {
			stat.SuperName = super.Text
		}
	}
	for !blockFollow(p.src.Peek()) {
		tok := p.src.Peek()
		switch {
		case tok.Is(token.KEYWORD, "function"):
			p.ReadToken()
			method, ok := p.expectName("when parsing class method")
			if !ok {
				p.ReadToken()
				continue
			}
			fn := &ast.TypeFunction{}
			if p.peekPunct("<") {
				fn.Generics = p.parseGenericNames()
			}
			open := p.src.Peek()
			if p.expectPunct("(", "when parsing class method") {
				fn.ArgTypes, fn.ArgNames = p.parseTypeParams(open)
			}
			if p.src.AcceptPunct(":") {
				fn.ReturnTypes = p.parseReturnTypeList()
			}
			// an untyped self parameter is typed as the class
			if len(fn.ArgNames) > 0 && fn.ArgNames[0] != nil && fn.ArgNames[0].Name == "self" {
				if ref, ok := fn.ArgTypes.Types[0].(*ast.TypeReference); ok && ref.Name == "" {
					ref.Name = stat.Name
				}
			}
			fn.Location = ast.Location{Begin: tok.Location.Begin, End: p.lastEnd()}
			stat.Props = append(stat.Props, ast.DeclaredClassProp{
				Name:     method.Text,
				Type:     fn,
				IsMethod: true,
				Location: method.Location,
			})
		case tok.Type == token.NAME:
			p.ReadToken()
			prop := ast.DeclaredClassProp{Name: tok.Text, Location: tok.Location}
			if p.expectPunct(":", "when parsing class property") {
				prop.Type = p.ParseType()
			} else {
				prop.Type = &ast.TypeError{Location: p.src.Peek().Location}
			}
			stat.Props = append(stat.Props, prop)
		default:
			p.ReadToken()
			p.errorAt(tok.Location, "expected class member, got %s", describe(tok))
		}
	}
	p.expectMatch("end", classTok)
	stat.Location = ast.Location{Begin: begin, End: p.lastEnd()}
	return stat
}
