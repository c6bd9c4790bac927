// Copyright © 2024 The ELPS authors

package docs

import (
	"testing"

	"github.com/luthersystems/luaulsp/analysis"
	"github.com/luthersystems/luaulsp/docdb"
	"github.com/luthersystems/luaulsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionsLoad(t *testing.T) {
	globals := analysis.NewScope(analysis.ScopeGlobal, nil, nil)
	_, err := analysis.LoadDefinitions(globals, Package, DefinitionsName, Definitions)
	require.NoError(t, err)

	for _, name := range []string{"print", "tonumber", "select", "math", "string", "table"} {
		assert.NotNil(t, globals.Lookup(name), name)
	}
	random, ok := types.Prop(globals.Lookup("math").Type, "random")
	require.True(t, ok)
	assert.Equal(t, "@luau/global/math.random", random.DocumentationSymbol)
	_, overloaded := random.Type.(*types.Intersection)
	assert.True(t, overloaded)
}

func TestDocumentationSymbolsResolve(t *testing.T) {
	store, err := Documentation()
	require.NoError(t, err)

	for _, symbol := range []string{
		"@luau/global/print",
		"@luau/global/math.clamp",
		"@luau/global/math.clamp/param/2",
		"@luau/global/math.random/overload/(number, number) -> number",
	} {
		_, ok := docdb.Print(store, symbol)
		assert.True(t, ok, symbol)
	}

	// every referenced symbol has an entry
	for symbol, entry := range store {
		for _, p := range entry.Params {
			_, err := store.Lookup(p.Documentation)
			assert.NoError(t, err, "%s param %s", symbol, p.Name)
		}
		for _, ref := range entry.Overloads {
			_, err := store.Lookup(ref)
			assert.NoError(t, err, "%s overload", symbol)
		}
		for _, ref := range entry.Keys {
			_, err := store.Lookup(ref)
			assert.NoError(t, err, "%s key", symbol)
		}
	}
}

func TestOverloadKeysMatchTypes(t *testing.T) {
	globals := analysis.NewScope(analysis.ScopeGlobal, nil, nil)
	_, err := analysis.LoadDefinitions(globals, Package, DefinitionsName, Definitions)
	require.NoError(t, err)
	store, err := Documentation()
	require.NoError(t, err)

	random, _ := types.Prop(globals.Lookup("math").Type, "random")
	for _, part := range random.Type.(*types.Intersection).Types {
		key := types.ToString(part, types.ToStringOptions{})
		assert.Contains(t, store["@luau/global/math.random"].Overloads, key)
	}
	insert, _ := types.Prop(globals.Lookup("table").Type, "insert")
	for _, part := range insert.Type.(*types.Intersection).Types {
		key := types.ToString(part, types.ToStringOptions{})
		assert.Contains(t, store["@luau/global/table.insert"].Overloads, key)
	}
}
