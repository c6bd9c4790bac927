// Copyright © 2024 The ELPS authors

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterExcludes_ByName(t *testing.T) {
	paths := []string{
		"src/main.luau",
		"src/generated.luau",
		"lib/utils.luau",
	}
	result := filterExcludes(paths, []string{"generated.luau"})
	assert.Equal(t, []string{"src/main.luau", "lib/utils.luau"}, result)
}

func TestFilterExcludes_ByDirectory(t *testing.T) {
	paths := []string{
		"src/main.luau",
		"build/output.luau",
		"build/sub/deep.luau",
		"lib/utils.luau",
	}
	result := filterExcludes(paths, []string{"build"})
	assert.Equal(t, []string{"src/main.luau", "lib/utils.luau"}, result)
}

func TestFilterExcludes_GlobPattern(t *testing.T) {
	paths := []string{
		"src/main.luau",
		"src/generated_foo.luau",
		"src/generated_bar.luau",
		"lib/utils.luau",
	}
	result := filterExcludes(paths, []string{"generated_*"})
	assert.Equal(t, []string{"src/main.luau", "lib/utils.luau"}, result)
}

func TestFilterExcludes_MultiplePatterns(t *testing.T) {
	paths := []string{
		"src/main.luau",
		"build/output.luau",
		"src/generated.luau",
		"lib/utils.luau",
	}
	result := filterExcludes(paths, []string{"build", "generated.luau"})
	assert.Equal(t, []string{"src/main.luau", "lib/utils.luau"}, result)
}

func TestFilterExcludes_NoMatches(t *testing.T) {
	paths := []string{
		"src/main.luau",
		"lib/utils.luau",
	}
	result := filterExcludes(paths, []string{"nonexistent"})
	assert.Equal(t, []string{"src/main.luau", "lib/utils.luau"}, result)
}

func TestFilterExcludes_EmptyExcludes(t *testing.T) {
	paths := []string{"src/main.luau"}
	result := filterExcludes(paths, nil)
	assert.Equal(t, []string{"src/main.luau"}, result)
}

func TestMatchesAny_FullPath(t *testing.T) {
	// filepath.Match on the full path
	assert.True(t, matchesAny("src/main.luau", []string{"src/*.luau"}))
	assert.False(t, matchesAny("lib/main.luau", []string{"src/*.luau"}))
}

func TestMatchesAny_BaseName(t *testing.T) {
	assert.True(t, matchesAny("deep/nested/generated.luau", []string{"generated.luau"}))
}

func TestMatchesAny_Component(t *testing.T) {
	assert.True(t, matchesAny("project/build/output.luau", []string{"build"}))
	assert.False(t, matchesAny("project/src/output.luau", []string{"build"}))
}

func TestSplitPath(t *testing.T) {
	components := splitPath("a/b/c.luau")
	assert.Contains(t, components, "c.luau")
	assert.Contains(t, components, "b")
	assert.Contains(t, components, "a")
}

func TestExpandArgs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.luau", "types.d.luau", "sub/b.luau", "build/c.luau", ".git/d.luau", "notes.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, nil, 0o600))
	}

	files, err := expandArgs([]string{dir + "/...", "extra.luau"}, []string{"build"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.luau"),
		filepath.Join(dir, "sub", "b.luau"),
		"extra.luau",
	}, files)
}
