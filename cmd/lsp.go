// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"fmt"

	"github.com/luthersystems/luaulsp/docdb"
	"github.com/luthersystems/luaulsp/lsp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("luaulsp.cmd")

// LSPCommand creates the "lsp" cobra command with optional embedder
// configuration. Embedders can pass WithDefinitions or WithDocumentation
// to describe the globals of their host.
func LSPCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)

	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the Luau Language Server Protocol server",
		Long: `Start an LSP server for Luau source files.

The language server provides signature help inside call argument lists
and publishes parse and type errors as diagnostics.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

The documentation JSON file given by --documentation is watched and
reloaded when it changes.

Examples:
  luaulsp lsp                                  Start with stdio transport
  luaulsp lsp --port 7998                      Start with TCP on port 7998
  luaulsp lsp --definitions @game=game.d.luau  Load extra globals`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSetup(viper.GetViper(), cfg)
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck // best-effort cleanup

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if s.reloadable != nil {
				s.reloadable.OnReload = func(err error) {
					if err != nil {
						log.Warningf("reload %s: %v", s.reloadable.Path(), err)
					}
				}
				if err := s.reloadable.Watch(ctx, docdb.DefaultDebounce); err != nil {
					log.Warningf("watch %s: %v", s.reloadable.Path(), err)
				}
			}

			serverOpts := []lsp.Option{
				lsp.WithConfig(viper.GetViper()),
				lsp.WithDefinitions(s.definitions...),
			}
			if len(s.stores) > 0 {
				serverOpts = append(serverOpts, lsp.WithDocumentation(s.stores))
			}
			srv := lsp.New(serverOpts...)

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				log.Infof("Luau LSP server listening on %s", addr)
				if err := srv.RunTCP(addr); err != nil {
					return fmt.Errorf("lsp server error: %w", err)
				}
				return nil
			}
			if err := srv.RunStdio(); err != nil {
				return fmt.Errorf("lsp server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")

	return cmd
}

func init() {
	rootCmd.AddCommand(LSPCommand())
}
