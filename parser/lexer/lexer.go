// Copyright © 2018 The ELPS authors

package lexer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/luthersystems/luaulsp/parser/token"
)

// punctuation is ordered so that longer operators are tried first.
var punctuation = []string{
	"...", "..=", "//=",
	"..", "==", "~=", "<=", ">=", "->", "::",
	"+=", "-=", "*=", "/=", "%=", "^=", "//",
	"+", "-", "*", "/", "%", "^", "#", "&", "|", "?",
	"(", ")", "{", "}", "[", "]", ";", ":", ",", ".", "<", ">", "=",
}

type Lexer struct {
	scanner *token.Scanner
}

func New(s *token.Scanner) *Lexer {
	return &Lexer{scanner: s}
}

// ReadToken returns the next token.  Once input is exhausted every call
// returns an EOF token.
func (lex *Lexer) ReadToken() *token.Token {
	lex.skipWhitespace()
	c, ok := lex.scanner.Peek()
	if !ok {
		return lex.scanner.EmitToken(token.EOF)
	}
	switch {
	case lex.scanner.HasPrefix("--"):
		return lex.readComment()
	case c == '"' || c == '\'' || c == '`':
		return lex.readQuotedString(c)
	case c == '[' && lex.longBracketLevel() >= 0:
		level := lex.longBracketLevel()
		return lex.readLongString(token.STRING, level)
	case isDigit(c) || (c == '.' && lex.peekDigitAfterDot()):
		return lex.readNumber()
	case isWordStart(c):
		lex.scanner.AcceptSeq(isWord)
		if token.Keywords[lex.scanner.Text()] {
			return lex.scanner.EmitToken(token.KEYWORD)
		}
		return lex.scanner.EmitToken(token.NAME)
	}
	for _, p := range punctuation {
		if lex.scanner.AcceptString(p) {
			return lex.scanner.EmitToken(token.PUNCT)
		}
	}
	lex.scanner.ScanRune()
	return lex.errorf("unexpected character %q", c)
}

func (lex *Lexer) errorf(format string, v ...interface{}) *token.Token {
	tok := lex.scanner.EmitToken(token.ERROR)
	tok.Text = fmt.Sprintf(format, v...)
	return tok
}

func (lex *Lexer) skipWhitespace() {
	if lex.scanner.AcceptSeqSpace() > 0 {
		lex.scanner.Ignore()
	}
}

func (lex *Lexer) peekDigitAfterDot() bool {
	c, ok := lex.scanner.PeekAt(1)
	return ok && isDigit(c)
}

// longBracketLevel returns the number of '=' in an opening long bracket at
// the scanner's position, or -1 when there is none.
func (lex *Lexer) longBracketLevel() int {
	c, ok := lex.scanner.PeekAt(0)
	if !ok || c != '[' {
		return -1
	}
	level := 0
	for {
		c, ok = lex.scanner.PeekAt(level + 1)
		if !ok {
			return -1
		}
		switch c {
		case '=':
			level++
		case '[':
			return level
		default:
			return -1
		}
	}
}

func (lex *Lexer) readComment() *token.Token {
	lex.scanner.AcceptString("--")
	if level := lex.longBracketLevel(); level >= 0 {
		return lex.readLongString(token.BLOCK_COMMENT, level)
	}
	lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
	return lex.scanner.EmitToken(token.COMMENT)
}

func (lex *Lexer) readLongString(typ token.Type, level int) *token.Token {
	lex.scanner.AcceptString("[" + strings.Repeat("=", level) + "[")
	closing := "]" + strings.Repeat("=", level) + "]"
	for !lex.scanner.AcceptString(closing) {
		if !lex.scanner.ScanRune() {
			if typ == token.BLOCK_COMMENT {
				return lex.errorf("unfinished long comment")
			}
			return lex.errorf("unfinished long string")
		}
	}
	return lex.scanner.EmitToken(typ)
}

func (lex *Lexer) readQuotedString(quote rune) *token.Token {
	lex.scanner.ScanRune()
	for {
		c, ok := lex.scanner.Peek()
		if !ok || (c == '\n' && quote != '`') {
			return lex.errorf("unfinished string")
		}
		lex.scanner.ScanRune()
		switch c {
		case quote:
			return lex.scanner.EmitToken(token.STRING)
		case '\\':
			// the escaped character is validated by the parser
			lex.scanner.ScanRune()
		}
	}
}

func (lex *Lexer) readNumber() *token.Token {
	if lex.scanner.HasPrefix("0x") || lex.scanner.HasPrefix("0X") ||
		lex.scanner.HasPrefix("0b") || lex.scanner.HasPrefix("0B") {
		lex.scanner.ScanRune()
		lex.scanner.ScanRune()
		if lex.scanner.AcceptSeq(isHexDigit) == 0 {
			return lex.errorf("malformed number %q", lex.scanner.Text())
		}
		return lex.scanner.EmitToken(token.NUMBER)
	}
	lex.scanner.AcceptSeq(isDecimal)
	if lex.scanner.AcceptRune('.') {
		lex.scanner.AcceptSeq(isDecimal)
	}
	if lex.scanner.AcceptAny("eE") {
		lex.scanner.AcceptAny("+-")
		if lex.scanner.AcceptSeqDigit() == 0 {
			return lex.errorf("malformed number %q", lex.scanner.Text())
		}
	}
	if c, ok := lex.scanner.Peek(); ok && isWordStart(c) {
		lex.scanner.AcceptSeq(isWord)
		return lex.errorf("malformed number %q", lex.scanner.Text())
	}
	return lex.scanner.EmitToken(token.NUMBER)
}

func isWordStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isWord(c rune) bool {
	return isWordStart(c) || isDigit(c)
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isDecimal(c rune) bool {
	return isDigit(c) || c == '_'
}

func isHexDigit(c rune) bool {
	return isDecimal(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
