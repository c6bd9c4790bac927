// Copyright © 2024 The ELPS authors

package cmd

import (
	"encoding/json"
	"io"

	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/diagnostic"
	"github.com/luthersystems/luaulsp/lsp"
	"github.com/luthersystems/luaulsp/repl"
	"github.com/luthersystems/luaulsp/signature"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type jsonParameter struct {
	Label         string `json:"label"`
	Span          []int  `json:"span,omitempty"`
	Documentation string `json:"documentation,omitempty"`
}

type jsonSignature struct {
	Label           string          `json:"label"`
	Documentation   string          `json:"documentation,omitempty"`
	Parameters      []jsonParameter `json:"parameters"`
	ActiveParameter int             `json:"activeParameter"`
}

type jsonResult struct {
	Signatures      []jsonSignature `json:"signatures"`
	ActiveSignature int             `json:"activeSignature"`
	ActiveParameter int             `json:"activeParameter"`
}

func toJSON(res *signature.Result) *jsonResult {
	if res == nil {
		return nil
	}
	out := &jsonResult{
		Signatures:      []jsonSignature{},
		ActiveSignature: res.ActiveSignature,
		ActiveParameter: res.ActiveParameter,
	}
	for _, sig := range res.Signatures {
		js := jsonSignature{
			Label:           sig.Label,
			Documentation:   sig.Documentation,
			Parameters:      []jsonParameter{},
			ActiveParameter: sig.ActiveParameter,
		}
		for _, p := range sig.Parameters {
			jp := jsonParameter{Label: p.Text, Documentation: p.Documentation}
			if p.Span != nil {
				jp.Span = []int{p.Span.Start, p.Span.End}
			}
			js.Parameters = append(js.Parameters, jp)
		}
		out.Signatures = append(out.Signatures, js)
	}
	return out
}

// SigHelpCommand creates the "sighelp" cobra command.
func SigHelpCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)

	var (
		asJSON bool
		width  int
	)

	cmd := &cobra.Command{
		Use:   "sighelp [flags] FILE LINE:COL",
		Short: "Show signature help at a position of a Luau file",
		Long: `Show the signatures of the call enclosing a position of a Luau file.

LINE and COL are 1-based; COL counts bytes. The active parameter of each
signature is shown in brackets. Parse and type errors of the file are
reported to stderr and do not stop the query.

Examples:
  luaulsp sighelp main.luau 12:17
  luaulsp sighelp --json main.luau 12:17`,
		Args: cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlag(lsp.KeyShowTableKinds, cmd.Flags().Lookup("show-table-kinds"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := repl.ParsePosition(args[1])
			if err != nil {
				return err
			}
			s, err := loadSetup(viper.GetViper(), cfg)
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck // best-effort cleanup

			res, err := sigHelp(cmd.ErrOrStderr(), s, args[0], pos, signature.Options{HideTableKind: !viper.GetBool(lsp.KeyShowTableKinds)})
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(toJSON(res))
			}
			return signature.Format(cmd.OutOrStdout(), res, width)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the result as JSON.")
	cmd.Flags().IntVar(&width, "width", signature.DefaultWidth, "Wrap documentation at this column.")
	cmd.Flags().Bool("show-table-kinds", false, "Print sealed and unsealed table markers.")

	return cmd
}

// sigHelp checks path and answers a query at pos.  Problems found in the
// file are rendered to errw.
func sigHelp(errw io.Writer, s *setup, path string, pos ast.Position, opts signature.Options) (*signature.Result, error) {
	f, err := s.frontend()
	if err != nil {
		return nil, err
	}
	store, err := s.documentation()
	if err != nil {
		return nil, err
	}
	mod, err := f.Check(path)
	if err != nil {
		return nil, err
	}
	src := f.SourceModule(path)
	if diags := diagnostic.FromSource(path, src, mod); len(diags) > 0 {
		if err := newRenderer().RenderAll(errw, diags); err != nil {
			log.Errorf("render diagnostics for %s: %v", path, err)
		}
	}
	return signature.Help(signature.Query{
		Source:   src,
		Module:   mod,
		Position: pos,
		Options:  opts,
	}, signature.Docs{Store: store, Sources: f.SourceModule}), nil
}

func init() {
	rootCmd.AddCommand(SigHelpCommand())
}
