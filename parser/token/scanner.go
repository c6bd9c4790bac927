// Copyright © 2018 The ELPS authors

package token

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/luthersystems/luaulsp/ast"
)

// Scanner facilitates construction of tokens from an in-memory source.
// Positions are 0-based lines and byte columns.
type Scanner struct {
	file string
	src  string

	start    int // byte offset of the current token
	next     int // byte offset following the last scanned rune
	startPos ast.Position
	pos      ast.Position // position of next
	c        rune
}

// NewScanner initializes and returns a new Scanner.
func NewScanner(file string, src string) *Scanner {
	return &Scanner{
		file: file,
		src:  src,
	}
}

// File returns the name given to the scanned source.
func (s *Scanner) File() string {
	return s.file
}

// EmitToken returns a token containing the text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) EmitToken(typ Type) *Token {
	tok := &Token{
		Type:     typ,
		Text:     s.Text(),
		Location: ast.Location{Begin: s.startPos, End: s.pos},
	}
	s.Ignore()
	return tok
}

// Ignore causes the scanner to skip all text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) Ignore() {
	s.start = s.next
	s.startPos = s.pos
}

// Text returns a string containing text scanned since the last call to either
// EmitToken or Ignore.
func (s *Scanner) Text() string {
	return s.src[s.start:s.next]
}

// Rune returns the last rune scanned.
func (s *Scanner) Rune() rune {
	return s.c
}

// LocStart returns the location of the first byte of the current token.
func (s *Scanner) LocStart() *Location {
	return &Location{File: s.file, Pos: s.startPos}
}

// Pos returns the position following the last scanned rune.
func (s *Scanner) Pos() ast.Position {
	return s.pos
}

// Peek returns the next rune to be scanned.  Peek returns false at EOF.
func (s *Scanner) Peek() (rune, bool) {
	return s.PeekAt(0)
}

// PeekAt returns the rune n runes past the next one.
func (s *Scanner) PeekAt(n int) (rune, bool) {
	i := s.next
	for {
		if i >= len(s.src) {
			return 0, false
		}
		c, size := utf8.DecodeRuneInString(s.src[i:])
		if n == 0 {
			return c, true
		}
		n--
		i += size
	}
}

// ScanRune includes the next rune in the current token.  ScanRune returns
// false at EOF.
func (s *Scanner) ScanRune() bool {
	if s.next >= len(s.src) {
		return false
	}
	c, size := utf8.DecodeRuneInString(s.src[s.next:])
	s.c = c
	s.next += size
	if c == '\n' {
		s.pos.Line++
		s.pos.Column = 0
	} else {
		s.pos.Column += size
	}
	return true
}

func (s *Scanner) EOF() bool {
	return s.next >= len(s.src)
}

func (s *Scanner) Accept(fn func(rune) bool) bool {
	peek, ok := s.Peek()
	if !ok || !fn(peek) {
		return false
	}
	return s.ScanRune()
}

func (s *Scanner) AcceptRune(c rune) bool {
	return s.Accept(func(r rune) bool { return r == c })
}

func (s *Scanner) AcceptAny(charset string) bool {
	return s.Accept(func(r rune) bool { return strings.ContainsRune(charset, r) })
}

func (s *Scanner) AcceptDigit() bool {
	return s.Accept(isDigit)
}

func (s *Scanner) AcceptSpace() bool {
	return s.Accept(unicode.IsSpace)
}

// AcceptSeq scans runes while fn returns true and returns the number of runes
// scanned.
func (s *Scanner) AcceptSeq(fn func(rune) bool) int {
	var n int
	for s.Accept(fn) {
		n++
	}
	return n
}

func (s *Scanner) AcceptSeqDigit() int {
	return s.AcceptSeq(isDigit)
}

func (s *Scanner) AcceptSeqSpace() int {
	return s.AcceptSeq(unicode.IsSpace)
}

// AcceptString scans str if the input continues with it.
func (s *Scanner) AcceptString(str string) bool {
	if !strings.HasPrefix(s.src[s.next:], str) {
		return false
	}
	for range str {
		s.ScanRune()
	}
	return true
}

// HasPrefix reports whether the unscanned input begins with str.
func (s *Scanner) HasPrefix(str string) bool {
	return strings.HasPrefix(s.src[s.next:], str)
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}
