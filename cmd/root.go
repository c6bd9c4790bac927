// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

// Configuration keys read by the commands.
const (
	keyDefinitions     = "definitions"
	keyDocumentation   = "documentation"
	keyDocumentationDB = "documentationDb"
	keyLogVerbosity    = "log.verbosity"
	keyLogFile         = "log.file"
)

var (
	cfgFile   string
	colorFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "luaulsp",
	Short: "Signature help for Luau",
	Long: `luaulsp answers signature help queries for Luau source files. It runs
as a Language Server Protocol server or answers queries from the command
line.

Getting started:
  luaulsp lsp                        Start the language server on stdio
  luaulsp sighelp file.luau 4:7      Show signature help at line 4, column 7
  luaulsp repl file.luau             Query positions of a file interactively
  luaulsp check ./...                Report parse and type errors
  luaulsp docs show @luau/global/print

Definitions and documentation:
  Definition files (*.d.luau) declare globals and classes. Load them with
  --definitions PACKAGE=PATH; their documentation symbols are named
  PACKAGE/global/NAME. Documentation is read from a JSON file (--documentation)
  that is reloaded when it changes, or from a database built with
  "luaulsp docs import" (--documentation-db).

Settings are read from $HOME/.luaulsp.yaml or --config:
  definitions:        ["@game=game.d.luau"]
  documentation:      docs.json
  documentationDb:    docs.db
  signatureHelp:
    enabled: true
  hover:
    showTableKinds: false
  log:
    verbosity: 0
    file: /tmp/luaulsp.log`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		configureLogging()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.luaulsp.yaml)")
	flags.StringVar(&colorFlag, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	flags.StringArray("definitions", nil,
		"Definition file to load, as PACKAGE=PATH or PATH (may be repeated).")
	flags.String("documentation", "", "Documentation JSON file.")
	flags.String("documentation-db", "", "Documentation database built by \"docs import\".")
	flags.CountP("verbose", "v", "Increase log verbosity (may be repeated).")
	flags.String("log-file", "", "Write logs to a file instead of stderr.")

	bindFlag(keyDefinitions, "definitions")
	bindFlag(keyDocumentation, "documentation")
	bindFlag(keyDocumentationDB, "documentation-db")
	bindFlag(keyLogVerbosity, "verbose")
	bindFlag(keyLogFile, "log-file")
}

func bindFlag(key string, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory with name ".luaulsp" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".luaulsp")
	}

	viper.SetEnvPrefix("LUAULSP")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configureLogging routes commonlog output.  Logs go to stderr unless a
// file is configured, keeping stdout free for the stdio transport.
func configureLogging() {
	var path *string
	if f := viper.GetString(keyLogFile); f != "" {
		path = &f
	}
	commonlog.Configure(viper.GetInt(keyLogVerbosity), path)
}
