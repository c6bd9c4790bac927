// Copyright © 2024 The ELPS authors

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/luthersystems/luaulsp/diagnostic"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errProblems is returned by the check command when problems were reported.
var errProblems = errors.New("problems found")

type jsonDiagnostic struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Col      int    `json:"col"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// CheckCommand creates the "check" cobra command.
func CheckCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)

	var (
		asJSON   bool
		excludes []string
	)

	cmd := &cobra.Command{
		Use:   "check [flags] files...",
		Short: "Report parse and type errors of Luau source files",
		Long: `Report the parse and type errors of Luau source files, the same
problems the language server publishes as diagnostics.

Parse errors are reported as errors and type errors as warnings. The
command fails when any problem is reported.

Examples:
  luaulsp check main.luau                        # Check a single file
  luaulsp check ./...                            # Check a directory tree
  luaulsp check --json ./...                     # Output problems as JSON
  luaulsp check --exclude='vendor' ./...         # Exclude a directory`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandArgs(args, excludes)
			if err != nil {
				return err
			}
			s, err := loadSetup(viper.GetViper(), cfg)
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck // best-effort cleanup
			f, err := s.frontend()
			if err != nil {
				return err
			}

			var all []diagnostic.Diagnostic
			for _, path := range paths {
				if !f.IsDirty(path) {
					// named more than once
					continue
				}
				mod, err := f.Check(path)
				if err != nil {
					return err
				}
				all = append(all, diagnostic.FromSource(path, f.SourceModule(path), mod)...)
			}
			if len(all) == 0 {
				return nil
			}
			if asJSON {
				if err := formatJSON(cmd.OutOrStdout(), all); err != nil {
					return err
				}
			} else if err := newRenderer().RenderAll(cmd.ErrOrStderr(), all); err != nil {
				return err
			}
			return fmt.Errorf("%d %w", len(all), errProblems)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false,
		"Output diagnostics as JSON.")
	cmd.Flags().StringArrayVar(&excludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
	return cmd
}

func formatJSON(w io.Writer, diags []diagnostic.Diagnostic) error {
	out := make([]jsonDiagnostic, 0, len(diags))
	for _, d := range diags {
		jd := jsonDiagnostic{Severity: d.Severity.String(), Message: d.Message}
		if len(d.Spans) > 0 {
			jd.File = d.Spans[0].File
			jd.Line = d.Spans[0].Line
			jd.Col = d.Spans[0].Col
		}
		out = append(out, jd)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func init() {
	rootCmd.AddCommand(CheckCommand())
}
