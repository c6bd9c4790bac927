// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"
	"unicode/utf8"

	"github.com/luthersystems/luaulsp/ast"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// lineAt returns line n of content without its line terminator.
func lineAt(content string, n int) string {
	for i := 0; i < n; i++ {
		j := strings.IndexByte(content, '\n')
		if j < 0 {
			return ""
		}
		content = content[j+1:]
	}
	if j := strings.IndexByte(content, '\n'); j >= 0 {
		content = content[:j]
	}
	return strings.TrimSuffix(content, "\r")
}

// byteColumn converts a column counted in UTF-16 code units to a byte
// offset in line.  Columns past the end of the line clamp to its length.
func byteColumn(line string, character int) int {
	units := 0
	for i, r := range line {
		if units >= character {
			return i
		}
		units += utf16Len(r)
	}
	return len(line)
}

// utf16Column converts a byte offset in s to a count of UTF-16 code units.
func utf16Column(s string, offset int) int {
	if offset > len(s) {
		offset = len(s)
	}
	units := 0
	for _, r := range s[:offset] {
		units += utf16Len(r)
	}
	return units
}

func utf16Len(r rune) int {
	if r >= 0x10000 && r <= utf8.MaxRune {
		return 2
	}
	return 1
}

// toPosition converts an LSP position in content to a source position.
func toPosition(content string, pos protocol.Position) ast.Position {
	line := int(pos.Line)
	return ast.Position{
		Line:   line,
		Column: byteColumn(lineAt(content, line), int(pos.Character)),
	}
}

// fromPosition converts a source position in content to an LSP position.
func fromPosition(content string, pos ast.Position) protocol.Position {
	return protocol.Position{
		Line:      safeUint(pos.Line),
		Character: safeUint(utf16Column(lineAt(content, pos.Line), pos.Column)),
	}
}

// fromLocation converts a source range in content to an LSP range.
func fromLocation(content string, loc ast.Location) protocol.Range {
	return protocol.Range{
		Start: fromPosition(content, loc.Begin),
		End:   fromPosition(content, loc.End),
	}
}

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
