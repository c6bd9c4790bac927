// Copyright © 2024 The ELPS authors

package docdb

import (
	"testing"

	"github.com/luthersystems/luaulsp/parser/rdparser"
	"github.com/stretchr/testify/assert"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		line string
		tag  Tag
		ok   bool
	}{
		{"@param name string -- the name", Tag{Name: "param", Head: "name string", Text: "the name"}, true},
		{"@param callback (number) -> string -- called once", Tag{Name: "param", Head: "callback (number) -> string", Text: "called once"}, true},
		{"@return boolean", Tag{Name: "return", Head: "boolean"}, true},
		{"@deprecated -- use other", Tag{Name: "deprecated", Text: "use other"}, true},
		{"@yields", Tag{Name: "yields"}, true},
		{"  @within Module", Tag{Name: "within", Head: "Module"}, true},
		{"plain text", Tag{}, false},
		{"@", Tag{}, false},
	}
	for _, test := range tests {
		tag, ok := ParseTag(test.line)
		assert.Equal(t, test.ok, ok, test.line)
		assert.Equal(t, test.tag, tag, test.line)
	}
}

func TestDocComment_Lines(t *testing.T) {
	src := `local x = 1
-- not documentation
---- also not
--- Adds two numbers.
---
--- @param a number -- first
--- @param b number -- second
--- @return number
local function add(a, b) end
`
	res := rdparser.Parse("test", src)
	lines := DocComment(res.Comments, 8)
	assert.Equal(t, []string{
		"Adds two numbers.",
		"",
		"@param a number -- first",
		"@param b number -- second",
		"@return number",
	}, lines)

	assert.Nil(t, DocComment(res.Comments, 0))
	assert.Nil(t, DocComment(res.Comments, 2), "plain comments are not documentation")
}

func TestDocComment_Block(t *testing.T) {
	src := `--[=[
	Greets someone.

	@param name string
]=]
function greet(name) end
--[[ ordinary block ]]
function other() end
`
	res := rdparser.Parse("test", src)
	assert.Equal(t, []string{"Greets someone.", "", "@param name string"}, DocComment(res.Comments, 5))
	assert.Nil(t, DocComment(res.Comments, 7))
}

func TestDocComment_Gap(t *testing.T) {
	res := rdparser.Parse("test", "--- Detached.\n\nlocal function f() end\n")
	assert.Nil(t, DocComment(res.Comments, 2))
}

func TestRender(t *testing.T) {
	out := Render([]string{
		"Adds two numbers.",
		"",
		"@param a number -- first",
		"@param b",
		"@return number -- the sum",
		"@within Math",
		"@deprecated -- use plus",
	})
	assert.Equal(t, "**Deprecated**: use plus\n\n"+
		"Adds two numbers.\n\n"+
		"**Parameters**\n- `a: number` first\n- `b`\n\n"+
		"**Returns**\n- `number` the sum", out)

	assert.Equal(t, "", Render(nil))
	assert.Equal(t, "Just text.", Render([]string{"", "Just text.", ""}))
}

func TestMoonwaveDocumentation(t *testing.T) {
	res := rdparser.Parse("test", "--- Says hi.\n--- @param who string\nlocal function hi(who) end\n")
	assert.Equal(t, "Says hi.\n\n**Parameters**\n- `who: string`", MoonwaveDocumentation(res.Comments, 2))
}
