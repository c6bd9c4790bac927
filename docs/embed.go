// Copyright © 2024 The ELPS authors

// Package docs embeds the bundled Luau standard library definitions and
// their documentation.
package docs

import (
	_ "embed"
	"strings"

	"github.com/luthersystems/luaulsp/docdb"
)

// Package is the documentation package of the bundled definitions.
const Package = "@luau"

// DefinitionsName is the module name under which the bundled definitions
// are loaded.
const DefinitionsName = "@luau/builtins.d.luau"

//go:embed builtins.d.luau
var Definitions string

//go:embed builtins.json
var DocumentationJSON string

// Documentation decodes the bundled documentation.
func Documentation() (docdb.MemoryStore, error) {
	return docdb.ReadJSON(strings.NewReader(DocumentationJSON))
}
