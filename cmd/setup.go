// Copyright © 2024 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/luthersystems/luaulsp/analysis"
	"github.com/luthersystems/luaulsp/docdb"
	"github.com/luthersystems/luaulsp/docs"
	"github.com/luthersystems/luaulsp/lsp"
	"github.com/spf13/viper"
)

// setup holds the definitions and documentation shared by the commands.
type setup struct {
	definitions []lsp.Definitions
	// stores lists the injected and configured documentation, most
	// specific first.  The bundled documentation is not included.
	stores docdb.Stores
	// reloadable is the configured documentation file, if any.
	reloadable *docdb.Reloadable
	closers    []func() error
}

// parseDefinitionArg splits a PACKAGE=PATH argument.  A bare PATH is
// given the package "@" followed by the file name without extensions.
func parseDefinitionArg(arg string) (pkg string, path string, err error) {
	if arg == "" {
		return "", "", errors.New("empty definitions argument")
	}
	if p, f, ok := strings.Cut(arg, "="); ok {
		if p == "" || f == "" {
			return "", "", fmt.Errorf("invalid definitions argument %q: want PACKAGE=PATH", arg)
		}
		if !strings.HasPrefix(p, "@") {
			p = "@" + p
		}
		return p, f, nil
	}
	name := filepath.Base(arg)
	name = strings.TrimSuffix(strings.TrimSuffix(name, ".luau"), ".d")
	return "@" + name, arg, nil
}

// loadSetup reads the definitions and documentation named by v after
// those injected through cfg.
func loadSetup(v *viper.Viper, cfg cmdConfig) (*setup, error) {
	s := &setup{definitions: append([]lsp.Definitions(nil), cfg.definitions...)}
	if cfg.store != nil {
		s.stores = append(s.stores, cfg.store)
	}
	for _, arg := range v.GetStringSlice(keyDefinitions) {
		pkg, path, err := parseDefinitionArg(arg)
		if err != nil {
			return nil, err
		}
		text, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
		if err != nil {
			return nil, fmt.Errorf("definitions: %w", err)
		}
		s.definitions = append(s.definitions, lsp.Definitions{Package: pkg, Name: path, Text: string(text)})
	}
	if path := v.GetString(keyDocumentationDB); path != "" {
		db, err := docdb.OpenBolt(path)
		if err != nil {
			return nil, err
		}
		s.stores = append(s.stores, db)
		s.closers = append(s.closers, db.Close)
	}
	if path := v.GetString(keyDocumentation); path != "" {
		r, err := docdb.NewReloadable(path)
		if err != nil {
			s.Close() //nolint:errcheck,gosec // reporting the load error
			return nil, fmt.Errorf("documentation: %w", err)
		}
		s.reloadable = r
		s.stores = append(s.stores, r)
	}
	return s, nil
}

// documentation returns the configured documentation followed by the
// bundled documentation.
func (s *setup) documentation() (docdb.Store, error) {
	builtins, err := docs.Documentation()
	if err != nil {
		return nil, err
	}
	return append(append(docdb.Stores{}, s.stores...), builtins), nil
}

// frontend returns a frontend reading files from disk with the bundled and
// configured definitions loaded.
func (s *setup) frontend() (*analysis.Frontend, error) {
	f := analysis.NewFrontend(analysis.DirResolver{})
	defs := append([]lsp.Definitions{{Package: docs.Package, Name: docs.DefinitionsName, Text: docs.Definitions}}, s.definitions...)
	for _, d := range defs {
		if err := f.LoadDefinitions(d.Package, d.Name, d.Text); err != nil {
			return nil, fmt.Errorf("definitions %s: %w", d.Name, err)
		}
	}
	return f, nil
}

// Close releases the opened databases.
func (s *setup) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
