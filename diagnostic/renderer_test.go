// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRenderer returns a Renderer with colors disabled and a fake source reader.
func testRenderer(sources map[string]string) *Renderer {
	return &Renderer{
		Color: ColorNever,
		SourceReader: func(name string) ([]byte, error) {
			s, ok := sources[name]
			if !ok {
				return nil, errors.New("not found: " + name)
			}
			return []byte(s), nil
		},
	}
}

func render(t *testing.T, r *Renderer, d Diagnostic) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, d))
	return buf.String()
}

func TestRenderError(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.luau": "local x = )",
	})

	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "expected expression, got ')'",
		Spans: []Span{
			{File: "test.luau", Line: 1, Col: 11, EndCol: 11, Label: "here"},
		},
	})

	assert.Contains(t, got, "error: expected expression, got ')'")
	assert.Contains(t, got, "--> test.luau:1:11")
	assert.Contains(t, got, "local x = )")
	assert.Contains(t, got, "          ^ here")
}

func TestRenderWarning(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.luau": "local a = 1\nlocal x: Missing = 1",
	})

	got := render(t, r, Diagnostic{
		Severity: SeverityWarning,
		Message:  "unknown type 'Missing'",
		Spans: []Span{
			{File: "test.luau", Line: 2, Col: 10, EndCol: 16},
		},
	})

	assert.Contains(t, got, "warning: unknown type 'Missing'")
	assert.Contains(t, got, "--> test.luau:2:10")
	assert.Contains(t, got, "local x: Missing = 1")
	assert.Contains(t, got, "^^^^^^^")
}

func TestRenderNoSource(t *testing.T) {
	got := render(t, testRenderer(nil), Diagnostic{
		Severity: SeverityError,
		Message:  "some error",
		Spans: []Span{
			{File: "<stdin>", Line: 5, Col: 3},
		},
	})

	assert.Contains(t, got, "error: some error")
	assert.Contains(t, got, "--> <stdin>:5:3")
	// a gutter but no source line
	assert.Contains(t, got, "|")
	assert.NotContains(t, got, "^")
}

func TestRenderNotes(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.luau": "print(1, )",
	})

	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "expected expression, got ')'",
		Spans:    []Span{{File: "test.luau", Line: 1, Col: 10, EndCol: 10}},
		Notes:    []string{"trailing commas are not allowed in argument lists"},
	})

	assert.Contains(t, got, "= note: trailing commas are not allowed in argument lists")
}

func TestRenderAutoDetectEndCol(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.luau": "local y = undefinedName + 1",
	})

	got := render(t, r, Diagnostic{
		Severity: SeverityWarning,
		Message:  "unknown global 'undefinedName'",
		Spans:    []Span{{File: "test.luau", Line: 1, Col: 11}},
	})

	// "undefinedName" is 13 bytes long
	assert.Contains(t, got, strings.Repeat("^", 13)+"\n")
}

func TestRenderTabs(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.luau": "\tfoo(",
	})

	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "expected ')'",
		Spans:    []Span{{File: "test.luau", Line: 1, Col: 5, EndCol: 5}},
	})

	assert.Contains(t, got, "    foo(")
	// the tab before the caret expands to four columns
	assert.Contains(t, got, "|         ^")
}

func TestRenderMultipleDiagnostics(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.luau": "local x: A = 1\nlocal y: B = 2",
	})

	var buf bytes.Buffer
	require.NoError(t, r.RenderAll(&buf, []Diagnostic{
		{
			Severity: SeverityWarning,
			Message:  "unknown type 'A'",
			Spans:    []Span{{File: "test.luau", Line: 1, Col: 10, EndCol: 10}},
		},
		{
			Severity: SeverityWarning,
			Message:  "unknown type 'B'",
			Spans:    []Span{{File: "test.luau", Line: 2, Col: 10, EndCol: 10}},
		},
	}))

	got := buf.String()
	assert.GreaterOrEqual(t, len(strings.Split(got, "\n\n")), 2, "diagnostics are separated by a blank line:\n%s", got)
	assert.Contains(t, got, "unknown type 'A'")
	assert.Contains(t, got, "unknown type 'B'")
}

func TestRenderNoSpans(t *testing.T) {
	got := render(t, testRenderer(nil), Diagnostic{
		Severity: SeverityError,
		Message:  "read test.luau: no such file or directory",
	})

	assert.Contains(t, got, "error: read test.luau: no such file or directory")
	assert.NotContains(t, got, "-->")
}

func TestRenderColor(t *testing.T) {
	r := testRenderer(nil)
	r.Color = ColorAlways
	got := render(t, r, Diagnostic{Severity: SeverityError, Message: "boom"})
	assert.Contains(t, got, ansiPalette.boldRed)

	r.Color = ColorAuto
	got = render(t, r, Diagnostic{Severity: SeverityError, Message: "boom"})
	assert.NotContains(t, got, "\033[", "buffers are not terminals")
}
