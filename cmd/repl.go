// Copyright © 2018 The ELPS authors

package cmd

import (
	"github.com/luthersystems/luaulsp/lsp"
	"github.com/luthersystems/luaulsp/repl"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ReplCommand creates the "repl" cobra command.
func ReplCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)
	cmd := &cobra.Command{
		Use:   "repl [FILE]",
		Short: "Query signature help interactively",
		Long: `Start an interactive signature help session over a Luau file.

Type a 1-based LINE:COL position of the file to see the signatures of the
call enclosing it, or type a Luau snippet with a | marking the cursor.
Line editing, history and completion of commands and global names are
supported via readline. Use Ctrl-D or :quit to exit.

Example session:
  luau> 4:7
  add(a: number, [b: number]): number
  luau> math.clamp(1, |
  math.clamp(x: number, [min: number], max: number): number
    Returns x clamped between min and max.
  luau> :reload
  checked main.luau
  luau> :help
  ...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			s, err := loadSetup(viper.GetViper(), cfg)
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck // best-effort cleanup
			f, err := s.frontend()
			if err != nil {
				return err
			}
			store, err := s.documentation()
			if err != nil {
				return err
			}
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			session := repl.NewSession(path, f, store)
			session.Options.HideTableKind = !viper.GetBool(lsp.KeyShowTableKinds)
			return repl.Run(session, "luau> ")
		},
	}
	return cmd
}

func init() {
	rootCmd.AddCommand(ReplCommand())
}
