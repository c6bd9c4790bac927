// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const tabWidth = 4

// Renderer formats diagnostics as annotated source snippets:
//
//	error: expected expression, got ')'
//	  --> main.luau:1:11
//	   |
//	 1 |  local x = )
//	   |            ^ here
//	   |
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	SourceReader func(string) ([]byte, error)
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	p := paletteFor(r.Color, w)
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s%s:%s %s%s%s\n",
		p.severity(d.Severity), p.bold, d.Severity, p.reset,
		p.bold, d.Message, p.reset)

	sources := r.sourceLines(d.Spans)
	for _, span := range d.Spans {
		writeSpan(&b, span, sources[span.File], p)
	}
	for _, note := range d.Notes {
		fmt.Fprintf(&b, "   %s=%s note: %s\n", p.boldCyan, p.reset, note)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderAll writes all diagnostics to w separated by blank lines.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	for i, d := range diags {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := r.Render(w, d); err != nil {
			return err
		}
	}
	return nil
}

// sourceLines reads each file named by spans once.  Unreadable files map to
// nil.
func (r *Renderer) sourceLines(spans []Span) map[string][]string {
	read := r.SourceReader
	if read == nil {
		read = os.ReadFile
	}
	sources := make(map[string][]string)
	for _, s := range spans {
		if s.File == "" || s.Line <= 0 {
			continue
		}
		if _, ok := sources[s.File]; ok {
			continue
		}
		data, err := read(s.File)
		if err != nil {
			sources[s.File] = nil
			continue
		}
		text := strings.ReplaceAll(string(data), "\r\n", "\n")
		sources[s.File] = strings.Split(text, "\n")
	}
	return sources
}

func writeSpan(b *strings.Builder, s Span, lines []string, p palette) {
	fmt.Fprintf(b, "  %s-->%s %s\n", p.boldBlue, p.reset, s.location())
	if s.Line <= 0 || s.Line > len(lines) {
		fmt.Fprintf(b, "   %s|%s\n", p.boldBlue, p.reset)
		return
	}
	text := lines[s.Line-1]
	num := strconv.Itoa(s.Line)
	gutter := strings.Repeat(" ", len(num))

	fmt.Fprintf(b, " %s%s |%s\n", p.boldBlue, gutter, p.reset)
	fmt.Fprintf(b, " %s%s |%s  %s\n", p.boldBlue, num, p.reset, expandTabs(text))

	start, end := s.columns(text)
	indent := displayWidth(text[:min(start-1, len(text))])
	fmt.Fprintf(b, " %s%s |%s  %s%s%s%s", p.boldBlue, gutter, p.reset,
		strings.Repeat(" ", indent), p.boldRed, strings.Repeat("^", end-start+1), p.reset)
	if s.Label != "" {
		fmt.Fprintf(b, " %s%s%s", p.boldRed, s.Label, p.reset)
	}
	b.WriteString("\n")
	fmt.Fprintf(b, " %s%s |%s\n", p.boldBlue, gutter, p.reset)
}

func (s Span) location() string {
	switch {
	case s.Line <= 0:
		return s.File
	case s.Col <= 0:
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Col)
}

// columns returns the 1-based inclusive column range to underline.  A span
// without an end column covers the identifier or number at its start.
func (s Span) columns(text string) (int, int) {
	start := max(s.Col, 1)
	end := s.EndCol
	if end <= 0 {
		end = wordEnd(text, start)
	}
	return start, max(end, start)
}

// wordEnd returns the column of the last byte of the word starting at col,
// or col when no word starts there.
func wordEnd(text string, col int) int {
	i := col - 1
	j := i
	for j < len(text) && isWordByte(text[j]) {
		j++
	}
	if j == i {
		return col
	}
	return j
}

func isWordByte(c byte) bool {
	return c == '_' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c >= 0x80
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// displayWidth returns the width of s with tabs expanded.
func displayWidth(s string) int {
	return len([]rune(expandTabs(s)))
}
