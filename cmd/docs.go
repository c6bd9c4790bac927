// Copyright © 2021 The ELPS authors

package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luthersystems/luaulsp/docdb"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// DocsCommand creates the "docs" cobra command and its subcommands.
func DocsCommand(opts ...Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage and show symbol documentation",
		Long: `Manage and show the documentation attached to documentation symbols.

Documentation symbols name globals and members of definition files:
  @luau/global/print                  a global
  @luau/global/math.clamp             a property of a global table
  @luau/global/math.clamp/param/0     a parameter
  @game/globaltype/Part.MoveTo        a class member

Examples:
  luaulsp docs show @luau/global/math.clamp
  luaulsp docs import docs.json --db docs.db
  luaulsp docs list --documentation-db docs.db`,
	}
	cmd.AddCommand(docsShowCommand(opts...), docsImportCommand(), docsListCommand(opts...))
	return cmd
}

func docsShowCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)
	var width int
	cmd := &cobra.Command{
		Use:   "show [flags] SYMBOL",
		Short: "Show the documentation of a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSetup(viper.GetViper(), cfg)
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck // best-effort cleanup
			store, err := s.documentation()
			if err != nil {
				return err
			}
			text, ok := docdb.Print(store, args[0])
			if !ok {
				return fmt.Errorf("%s: %w", args[0], docdb.ErrNotFound)
			}
			if width > 0 {
				text = wordwrap.String(text, width)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "Wrap text at this column (0 disables wrapping).")
	return cmd
}

func docsImportCommand() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "import [flags] JSON...",
		Short: "Import documentation JSON files into a database",
		Long: `Import documentation JSON files into a database.

Entries replace existing entries of the same symbol. The database is
created when missing and can be used with --documentation-db.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return fmt.Errorf("--db is required")
			}
			db, err := docdb.OpenBolt(dbPath)
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck // best-effort cleanup
			for _, path := range args {
				m, err := docdb.LoadFile(path)
				if err != nil {
					return err
				}
				n, err := db.Import(m)
				if err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries from %s\n", n, path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "Database to import into.")
	return cmd
}

func docsListCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)
	var prefix string
	cmd := &cobra.Command{
		Use:   "list [flags]",
		Short: "List the documented symbols of the configured documentation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSetup(viper.GetViper(), cfg)
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck // best-effort cleanup

			var symbols []string
			for _, store := range s.stores {
				switch store := store.(type) {
				case *docdb.BoltStore:
					syms, err := store.Symbols()
					if err != nil {
						return err
					}
					symbols = append(symbols, syms...)
				case *docdb.Reloadable:
					symbols = append(symbols, store.Symbols()...)
				case docdb.MemoryStore:
					symbols = append(symbols, store.Symbols()...)
				}
			}
			sort.Strings(symbols)
			for i, sym := range symbols {
				if i > 0 && sym == symbols[i-1] || !strings.HasPrefix(sym, prefix) {
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), sym)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only list symbols starting with this prefix.")
	return cmd
}

func init() {
	rootCmd.AddCommand(DocsCommand())
}
