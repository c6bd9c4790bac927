// Copyright © 2024 The ELPS authors

package signature

import (
	"testing"

	"github.com/luthersystems/luaulsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fn(params ...types.Type) *types.Function {
	return &types.Function{
		Params:  types.Pack{Head: params},
		Returns: types.Pack{Head: []types.Type{types.NumberType}},
	}
}

func TestExpand_Function(t *testing.T) {
	f := fn(types.NumberType)
	out := Expand(f)
	require.Len(t, out, 1)
	assert.Same(t, f, out[0].Function)
	assert.False(t, out[0].Overloaded)

	out = Expand(&types.Bound{To: &types.Bound{To: f}})
	require.Len(t, out, 1)
	assert.Same(t, f, out[0].Function)
}

func TestExpand_Intersection(t *testing.T) {
	a, b, c := fn(), fn(types.NumberType), fn(types.StringType, types.StringType)
	out := Expand(&types.Intersection{Types: []types.Type{a, types.NewTable(), &types.Bound{To: b}, c}})
	require.Len(t, out, 3)
	for i, want := range []*types.Function{a, b, c} {
		assert.Same(t, want, out[i].Function)
		assert.Same(t, want, out[i].Type)
		assert.True(t, out[i].Overloaded)
	}
}

func TestExpand_Other(t *testing.T) {
	assert.Empty(t, Expand(types.NumberType))
	assert.Empty(t, Expand(types.NewTable()))
	assert.Empty(t, Expand(types.AnyType))
	assert.Empty(t, Expand(&types.Intersection{Types: []types.Type{types.NewTable()}}))
}

func TestActiveParameter(t *testing.T) {
	tests := []struct {
		args, params, want int
	}{
		{0, 3, 0},
		{1, 3, 1},
		{2, 3, 2},
		{5, 3, 2},
		{0, 0, 0},
		{3, 0, 0},
		{3, 1, 0},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, ActiveParameter(test.args, test.params), "%d args, %d params", test.args, test.params)
	}
}
