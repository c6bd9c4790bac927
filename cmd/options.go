// Copyright © 2024 The ELPS authors

package cmd

import (
	"github.com/luthersystems/luaulsp/docdb"
	"github.com/luthersystems/luaulsp/lsp"
)

// Option configures an exported command factory (LSPCommand,
// SigHelpCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	definitions []lsp.Definitions
	store       docdb.Store
}

// WithDefinitions injects definition files loaded after the bundled
// standard library and before any configured definitions.  Embedders use
// it to declare the globals of their host.
func WithDefinitions(defs ...lsp.Definitions) Option {
	return func(c *cmdConfig) { c.definitions = append(c.definitions, defs...) }
}

// WithDocumentation injects a documentation store consulted before the
// configured and bundled documentation.
func WithDocumentation(store docdb.Store) Option {
	return func(c *cmdConfig) { c.store = store }
}

func newCmdConfig(opts []Option) cmdConfig {
	var cfg cmdConfig
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}
