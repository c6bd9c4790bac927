// Copyright © 2024 The ELPS authors

package luautest

import (
	"fmt"
	"testing"

	"github.com/luthersystems/luaulsp/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor(t *testing.T) {
	text, pos := Cursor(t, "local x = 1\nprint(x, |)\n")
	assert.Equal(t, "local x = 1\nprint(x, )\n", text)
	assert.Equal(t, ast.Position{Line: 1, Column: 9}, pos)

	_, pos = Cursor(t, "|f()")
	assert.Equal(t, ast.Position{}, pos)
}

func TestCheck(t *testing.T) {
	snap := Check(t, "local n = math.abs(|-1)")
	require.NotNil(t, snap.Module)
	assert.Empty(t, snap.Source.Errors)
	assert.Empty(t, snap.Module.Errors)
	assert.Equal(t, ast.Position{Line: 0, Column: 19}, snap.Position)
	assert.NotNil(t, snap.Module.Scope.Lookup("math"))
}

func TestGlobals_Extra(t *testing.T) {
	globals := Globals(t, "declare function greet(name: string): ()")
	assert.NotNil(t, globals.Lookup("greet"))
	assert.NotNil(t, globals.Lookup("print"))
}

type recorder struct {
	testing.TB
	lines []string
}

func (r *recorder) Log(args ...any) {
	r.lines = append(r.lines, fmt.Sprint(args...))
}

func TestLogger(t *testing.T) {
	rec := &recorder{TB: t}
	log := NewLogger(rec)
	n, err := log.Write([]byte("one\ntw"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	_, _ = log.Write([]byte("o\nthree"))
	assert.Equal(t, []string{"one", "two"}, rec.lines)
	log.Flush()
	assert.Equal(t, []string{"one", "two", "three"}, rec.lines)
	log.Flush()
	assert.Len(t, rec.lines, 3)
}
