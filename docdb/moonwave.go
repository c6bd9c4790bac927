// Copyright © 2024 The ELPS authors

package docdb

import (
	"strings"

	"github.com/luthersystems/luaulsp/ast"
	parsec "github.com/prataprc/goparsec"
)

// Tag is a moonwave tag line such as "@param name string -- the name".
type Tag struct {
	Name string // tag name without '@'
	Head string // text between the tag name and "--"
	Text string // text after "--"
}

var tagParser = newTagParser()

func newTagParser() parsec.Parser {
	at := parsec.Atom("@", "AT")
	name := parsec.Token(`[A-Za-z]+`, "NAME")
	head := parsec.Token(`(?:[^-]|-[^-])+`, "HEAD")
	dashes := parsec.Atom("--", "DASHES")
	text := parsec.Token(`.+`, "TEXT")
	desc := parsec.And(nil, dashes, parsec.Maybe(nil, text))
	return parsec.And(nil, at, name, parsec.Maybe(nil, head), parsec.Maybe(nil, desc))
}

// ParseTag parses a single tag line.  It reports false for lines that are
// not tags.
func ParseTag(line string) (Tag, bool) {
	if !strings.HasPrefix(strings.TrimSpace(line), "@") {
		return Tag{}, false
	}
	root, _ := tagParser(parsec.NewScanner([]byte(line)))
	if root == nil {
		return Tag{}, false
	}
	var tag Tag
	for _, term := range terminals(root, nil) {
		switch term.Name {
		case "NAME":
			tag.Name = term.Value
		case "HEAD":
			tag.Head = strings.TrimSpace(term.Value)
		case "TEXT":
			tag.Text = strings.TrimSpace(term.Value)
		}
	}
	return tag, tag.Name != ""
}

func terminals(node parsec.ParsecNode, out []*parsec.Terminal) []*parsec.Terminal {
	switch node := node.(type) {
	case *parsec.Terminal:
		out = append(out, node)
	case []parsec.ParsecNode:
		for _, n := range node {
			out = terminals(n, out)
		}
	}
	return out
}

// DocComment returns the lines of the documentation comment directly above
// line, with comment markers removed.  A documentation comment is a run of
// consecutive "---" line comments or a single "--[=[ ]=]" block comment
// ending on the previous line.  comments must be in source order.
func DocComment(comments []ast.Comment, line int) []string {
	i := len(comments) - 1
	for i >= 0 && comments[i].Location.End.Line >= line {
		i--
	}
	if i < 0 || comments[i].Location.End.Line != line-1 {
		return nil
	}
	if c := comments[i]; c.Block {
		if !strings.HasPrefix(c.Text, "--[=[") {
			return nil
		}
		body := strings.TrimSuffix(strings.TrimPrefix(c.Text, "--[=["), "]=]")
		return trimBlank(dedent(strings.Split(body, "\n")))
	}
	var lines []string
	next := line
	for ; i >= 0; i-- {
		c := comments[i]
		if c.Block || c.Location.End.Line != next-1 || !isDocLine(c.Text) {
			break
		}
		text := strings.TrimPrefix(c.Text, "---")
		text = strings.TrimPrefix(text, " ")
		lines = append(lines, strings.TrimRight(text, " \t\r"))
		next = c.Location.Begin.Line
	}
	for l, r := 0, len(lines)-1; l < r; l, r = l+1, r-1 {
		lines[l], lines[r] = lines[r], lines[l]
	}
	return trimBlank(lines)
}

func isDocLine(text string) bool {
	return strings.HasPrefix(text, "---") && !strings.HasPrefix(text, "----")
}

func dedent(lines []string) []string {
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= indent && indent > 0 {
			l = l[indent:]
		}
		out[i] = strings.TrimRight(l, " \t\r")
	}
	return out
}

func trimBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Render formats documentation comment lines as markdown.  @param and
// @return tags are collected into Parameters and Returns sections and
// @deprecated becomes a leading notice.  Other tags are dropped.
func Render(lines []string) string {
	var body, params, returns []string
	var deprecated *Tag
	for _, line := range lines {
		tag, ok := ParseTag(line)
		if !ok {
			body = append(body, line)
			continue
		}
		switch tag.Name {
		case "param":
			params = append(params, renderParam(tag))
		case "return":
			returns = append(returns, renderItem(tag.Head, tag.Text))
		case "deprecated":
			t := tag
			deprecated = &t
		}
	}
	var sections []string
	if deprecated != nil {
		notice := "**Deprecated**"
		if reason := strings.TrimSpace(deprecated.Head + " " + deprecated.Text); reason != "" {
			notice += ": " + reason
		}
		sections = append(sections, notice)
	}
	if text := strings.Join(trimBlank(body), "\n"); text != "" {
		sections = append(sections, text)
	}
	if len(params) > 0 {
		sections = append(sections, "**Parameters**\n"+strings.Join(params, "\n"))
	}
	if len(returns) > 0 {
		sections = append(sections, "**Returns**\n"+strings.Join(returns, "\n"))
	}
	return strings.Join(sections, "\n\n")
}

func renderParam(tag Tag) string {
	fields := strings.Fields(tag.Head)
	if len(fields) == 0 {
		return renderItem("", tag.Text)
	}
	label := fields[0]
	if len(fields) > 1 {
		label += ": " + strings.Join(fields[1:], " ")
	}
	return renderItem(label, tag.Text)
}

func renderItem(code string, text string) string {
	item := "-"
	if code != "" {
		item += " `" + code + "`"
	}
	if text != "" {
		item += " " + text
	}
	return item
}

// MoonwaveDocumentation renders the documentation comment directly above
// line.  It returns "" when there is none.
func MoonwaveDocumentation(comments []ast.Comment, line int) string {
	return Render(DocComment(comments, line))
}
