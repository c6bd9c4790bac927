// Copyright © 2024 The ELPS authors

package parser

import (
	"errors"
	"testing"

	"github.com/luthersystems/luaulsp/parser/rdparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Clean(t *testing.T) {
	res := Parse("test", "local x = 1\nprint(x)")
	require.NotNil(t, res.Root)
	assert.Len(t, res.Root.Body, 2)
	assert.NoError(t, Err(res))
}

func TestParse_Errors(t *testing.T) {
	res := Parse("test", "local = 1\nprint(")
	err := Err(res)
	require.Error(t, err)
	var perr *rdparser.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "test", perr.File)
	assert.Contains(t, err.Error(), "test:1:")
}
