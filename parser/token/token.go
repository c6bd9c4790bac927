// Copyright © 2018 The ELPS authors

package token

import (
	"fmt"

	"github.com/luthersystems/luaulsp/ast"
)

// Source is an abstract stream of tokens which allows one token lookahead.
type Source interface {
	// Token returns the current token.  Token returns nil if Scan has not been
	// called.
	Token() *Token
	// Peek returns the next token in the stream.  At the end of the stream
	// Peek should return a value to indicate the lack of a token (EOF).
	Peek() *Token
	// Scan advances the token stream if possible.  If there are no tokens
	// remaining Scan returns false.
	Scan() bool
}

type Token struct {
	Type     Type
	Text     string
	Location ast.Location
}

// Is reports whether tok has type typ and, when text is non-empty, the
// given text.
func (tok *Token) Is(typ Type, text string) bool {
	return tok.Type == typ && (text == "" || tok.Text == text)
}

type Type uint

// Type constants used by the Luau lexer/parser.  Keywords and punctuation
// share a type each and are told apart by their text.
const (
	INVALID Type = iota
	ERROR
	EOF

	NAME
	KEYWORD
	NUMBER
	STRING

	COMMENT
	BLOCK_COMMENT

	PUNCT

	numTokenTypes
)

func (typ Type) String() string {
	typeStrings := [numTokenTypes]string{
		INVALID:       "invalid",
		ERROR:         "error",
		EOF:           "EOF",
		NAME:          "name",
		KEYWORD:       "keyword",
		NUMBER:        "number",
		STRING:        "string",
		COMMENT:       "--",
		BLOCK_COMMENT: "--[[",
		PUNCT:         "punctuation",
	}
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// Keywords lists the reserved words of Luau.  Contextual keywords (type,
// export, continue, declare) lex as names.
var Keywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "if": true,
	"in": true, "local": true, "nil": true, "not": true, "or": true,
	"repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

// Location names a position within a named source.
type Location struct {
	File string
	Pos  ast.Position
}

func (loc *Location) String() string {
	if loc.File == "" {
		return fmt.Sprintf("%d:%d", loc.Pos.Line+1, loc.Pos.Column+1)
	}
	return fmt.Sprintf("%s:%d:%d", loc.File, loc.Pos.Line+1, loc.Pos.Column+1)
}

type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}
