// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luthersystems/luaulsp/docdb"
	"github.com/luthersystems/luaulsp/lsp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sourceText = `--- Adds two numbers.
local function add(a: number, b: number): number
	return a + b
end
add(1, 2)
`

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// setConfig overrides a global configuration key for the test.
func setConfig(t *testing.T, key string, value any) {
	t.Helper()
	viper.Set(key, value)
	t.Cleanup(func() { viper.Set(key, nil) })
}

func TestParseDefinitionArg(t *testing.T) {
	tests := []struct {
		arg  string
		pkg  string
		path string
		ok   bool
	}{
		{"@game=defs/game.d.luau", "@game", "defs/game.d.luau", true},
		{"game=game.d.luau", "@game", "game.d.luau", true},
		{"defs/roblox.d.luau", "@roblox", "defs/roblox.d.luau", true},
		{"=game.d.luau", "", "", false},
		{"@game=", "", "", false},
		{"", "", "", false},
	}
	for _, test := range tests {
		pkg, path, err := parseDefinitionArg(test.arg)
		if !test.ok {
			assert.Error(t, err, test.arg)
			continue
		}
		require.NoError(t, err, test.arg)
		assert.Equal(t, test.pkg, pkg, test.arg)
		assert.Equal(t, test.path, path, test.arg)
	}
}

func TestLoadSetup(t *testing.T) {
	dir := t.TempDir()
	defs := writeFile(t, dir, "game.d.luau", "declare function spawn(callback: () -> ()): ()\n")
	docsPath := writeFile(t, dir, "docs.json", `{"@game/global/spawn": {"documentation": "Runs callback later."}}`)

	v := viper.New()
	v.Set(keyDefinitions, []string{"@game=" + defs})
	v.Set(keyDocumentation, docsPath)
	v.Set(keyDocumentationDB, filepath.Join(dir, "docs.db"))

	injected := docdb.MemoryStore{"@host/global/x": {Documentation: "x"}}
	s, err := loadSetup(v, newCmdConfig([]Option{
		WithDocumentation(injected),
		WithDefinitions(lsp.Definitions{Package: "@host", Name: "host.d.luau", Text: "declare x: number\n"}),
	}))
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck // test cleanup

	require.Len(t, s.definitions, 2)
	assert.Equal(t, "@host", s.definitions[0].Package)
	assert.Equal(t, "@game", s.definitions[1].Package)
	require.Len(t, s.stores, 3)
	assert.Equal(t, injected, s.stores[0])
	require.NotNil(t, s.reloadable)

	f, err := s.frontend()
	require.NoError(t, err)
	assert.NotNil(t, f.Globals().Lookup("spawn"))
	assert.NotNil(t, f.Globals().Lookup("x"))
	assert.NotNil(t, f.Globals().Lookup("print"))

	store, err := s.documentation()
	require.NoError(t, err)
	text, ok := docdb.Print(store, "@game/global/spawn")
	require.True(t, ok)
	assert.Equal(t, "Runs callback later.", text)
	_, ok = docdb.Print(store, "@luau/global/print")
	assert.True(t, ok)
}

func TestLoadSetup_Errors(t *testing.T) {
	dir := t.TempDir()

	v := viper.New()
	v.Set(keyDefinitions, []string{filepath.Join(dir, "missing.d.luau")})
	_, err := loadSetup(v, cmdConfig{})
	assert.Error(t, err)

	v = viper.New()
	v.Set(keyDocumentation, filepath.Join(dir, "missing.json"))
	_, err = loadSetup(v, cmdConfig{})
	assert.Error(t, err)
}

func TestSigHelpCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "main.luau", sourceText)

	stdout, stderr, err := execute(t, SigHelpCommand(), path, "5:7")
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Equal(t, "add(a: number, [b: number]): number\n  Adds two numbers.\n", stdout)
}

func TestSigHelpCommand_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "main.luau", sourceText)

	stdout, _, err := execute(t, SigHelpCommand(), "--json", path, "5:7")
	require.NoError(t, err)

	var res jsonResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	require.Len(t, res.Signatures, 1)
	sig := res.Signatures[0]
	assert.Equal(t, "add(a: number, b: number): number", sig.Label)
	assert.Equal(t, 1, sig.ActiveParameter)
	assert.Equal(t, 2, res.ActiveParameter)
	require.Len(t, sig.Parameters, 2)
	assert.Equal(t, []int{4, 13}, sig.Parameters[0].Span)
	assert.Equal(t, "b: number", sig.Parameters[1].Label)
}

func TestSigHelpCommand_NoCall(t *testing.T) {
	path := writeFile(t, t.TempDir(), "main.luau", sourceText)

	stdout, _, err := execute(t, SigHelpCommand(), "--json", path, "1:1")
	require.NoError(t, err)
	assert.Equal(t, "null\n", stdout)
}

func TestSigHelpCommand_Diagnostics(t *testing.T) {
	path := writeFile(t, t.TempDir(), "main.luau", "local x: Missing = 1\nprint(1, )\n")
	colorFlag = "never"

	stdout, stderr, err := execute(t, SigHelpCommand(), path, "2:8")
	require.NoError(t, err)
	assert.Contains(t, stderr, "warning: unknown type 'Missing'")
	assert.True(t, strings.HasPrefix(stdout, "print([...: any]): ()"), stdout)
}

func TestSigHelpCommand_TableKinds(t *testing.T) {
	path := writeFile(t, t.TempDir(), "main.luau", "local function f(p: {x: number}) end\nf()\n")

	stdout, _, err := execute(t, SigHelpCommand(), path, "2:3")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "f(p: { x: number }): ()"), stdout)

	stdout, _, err = execute(t, SigHelpCommand(), "--show-table-kinds", path, "2:3")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "f(p: {| x: number |}): ()"), stdout)
	assert.True(t, viper.GetBool(lsp.KeyShowTableKinds))

	setConfig(t, lsp.KeyShowTableKinds, true)
	stdout, _, err = execute(t, SigHelpCommand(), path, "2:3")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "f(p: {| x: number |}): ()"), stdout)
}

func TestSigHelpCommand_BadArgs(t *testing.T) {
	path := writeFile(t, t.TempDir(), "main.luau", sourceText)

	_, _, err := execute(t, SigHelpCommand(), path, "five")
	assert.Error(t, err)
	_, _, err = execute(t, SigHelpCommand(), filepath.Join(t.TempDir(), "missing.luau"), "1:1")
	assert.Error(t, err)
}

func TestDocsCommand(t *testing.T) {
	dir := t.TempDir()
	docsPath := writeFile(t, dir, "docs.json", `{
		"@game/global/spawn": {"documentation": "Runs callback later."},
		"@game/global/wait": {"documentation": "Yields."}
	}`)
	db := filepath.Join(dir, "docs.db")

	stdout, _, err := execute(t, DocsCommand(), "import", docsPath, "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "imported 2 entries from "+docsPath+"\n", stdout)

	setConfig(t, keyDocumentationDB, db)
	stdout, _, err = execute(t, DocsCommand(), "list", "--prefix", "@game/global/s")
	require.NoError(t, err)
	assert.Equal(t, "@game/global/spawn\n", stdout)

	stdout, _, err = execute(t, DocsCommand(), "show", "@game/global/wait")
	require.NoError(t, err)
	assert.Equal(t, "Yields.\n", stdout)

	stdout, _, err = execute(t, DocsCommand(), "show", "@luau/global/print")
	require.NoError(t, err)
	assert.NotEmpty(t, stdout)

	_, _, err = execute(t, DocsCommand(), "show", "@game/global/nope")
	assert.ErrorIs(t, err, docdb.ErrNotFound)

	_, _, err = execute(t, DocsCommand(), "import", docsPath)
	assert.Error(t, err, "--db is required")
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.luau", sourceText)
	bad := writeFile(t, dir, "bad.luau", "local x: Missing = 1\n")

	_, _, err := execute(t, CheckCommand(), filepath.Join(dir, "good.luau"))
	require.NoError(t, err)

	stdout, _, err := execute(t, CheckCommand(), "--json", dir+"/...")
	require.ErrorIs(t, err, errProblems)
	var diags []jsonDiagnostic
	require.NoError(t, json.Unmarshal([]byte(stdout), &diags))
	require.Len(t, diags, 1)
	assert.Equal(t, jsonDiagnostic{File: bad, Line: 1, Col: 10, Severity: "warning", Message: "unknown type 'Missing'"}, diags[0])

	// a file named again by a pattern is reported once
	stdout, _, err = execute(t, CheckCommand(), "--json", bad, dir+"/...")
	require.ErrorIs(t, err, errProblems)
	diags = nil
	require.NoError(t, json.Unmarshal([]byte(stdout), &diags))
	assert.Len(t, diags, 1)

	colorFlag = "never"
	_, stderr, err := execute(t, CheckCommand(), "--exclude", "good.luau", dir+"/...")
	require.ErrorIs(t, err, errProblems)
	assert.Contains(t, stderr, "warning: unknown type 'Missing'")
	assert.Contains(t, stderr, "--> "+bad+":1:10")
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, name := range []string{"lsp", "sighelp", "repl", "docs", "check"} {
		assert.Contains(t, names, name)
	}
	for _, flag := range []string{"config", "color", "definitions", "documentation", "documentation-db", "verbose", "log-file"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
}
