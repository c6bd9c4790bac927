// Copyright © 2018 The ELPS authors

package rdparser

import (
	"strings"

	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/parser/lexer"
	"github.com/luthersystems/luaulsp/parser/token"
)

// TokenStream is an arbitrary sequence of tokens.  Typically, a TokenStream
// will be a *lexer.Lexer.  ReadToken never returns nil and keeps returning
// token.EOF once the stream is exhausted.
type TokenStream interface {
	ReadToken() *token.Token
}

// TokenSource abstracts a TokenStream by adding lookahead and "memory" of the
// last consumed token.  Comments never reach the parser; they are collected
// in Comments as they stream past.
type TokenSource struct {
	lex      TokenStream
	Token    *token.Token
	peek     []*token.Token
	Comments []ast.Comment
}

func NewTokenStreamSource(stream TokenStream) *TokenSource {
	return &TokenSource{
		lex: stream,
	}
}

// NewTokenSource initializes and returns a new TokenSource that scans tokens
// from scanner.
func NewTokenSource(scanner *token.Scanner) *TokenSource {
	return NewTokenStreamSource(lexer.New(scanner))
}

func (s *TokenSource) fill(n int) {
	for len(s.peek) <= n {
		tok := s.lex.ReadToken()
		switch tok.Type {
		case token.COMMENT, token.BLOCK_COMMENT:
			s.Comments = append(s.Comments, ast.Comment{
				Location: tok.Location,
				Text:     tok.Text,
				Block:    tok.Type == token.BLOCK_COMMENT || strings.HasPrefix(tok.Text, "--["),
			})
			continue
		}
		s.peek = append(s.peek, tok)
	}
}

func (s *TokenSource) Peek() *token.Token {
	return s.PeekAt(0)
}

// PeekAt returns the token n positions past the next one.
func (s *TokenSource) PeekAt(n int) *token.Token {
	s.fill(n)
	return s.peek[n]
}

func (s *TokenSource) Accept(fn func(*token.Token) bool) bool {
	if fn(s.Peek()) {
		s.scan()
		return true
	}
	return false
}

func (s *TokenSource) AcceptType(typ ...token.Type) bool {
	for _, typ := range typ {
		if s.Peek().Type == typ {
			s.scan()
			return true
		}
	}
	return false
}

// AcceptPunct consumes the next token if it is the punctuation text.
func (s *TokenSource) AcceptPunct(text string) bool {
	return s.Accept(func(tok *token.Token) bool { return tok.Is(token.PUNCT, text) })
}

// AcceptKeyword consumes the next token if it is the keyword text.
func (s *TokenSource) AcceptKeyword(text string) bool {
	return s.Accept(func(tok *token.Token) bool { return tok.Is(token.KEYWORD, text) })
}

func (s *TokenSource) Scan() bool {
	if s.IsEOF() {
		s.Token = s.Peek()
		return false
	}
	s.scan()
	return true
}

func (s *TokenSource) IsEOF() bool {
	return s.Peek().Type == token.EOF
}

func (s *TokenSource) scan() {
	s.fill(0)
	s.Token = s.peek[0]
	s.peek = s.peek[1:]
}
