// Copyright © 2024 The ELPS authors

package analysis

import (
	"fmt"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("luaulsp.analysis")

// Frontend owns the parsed and checked modules of a workspace.  Modules are
// parsed and checked on demand and kept until marked dirty.
//
// A Frontend is not safe for concurrent use.
type Frontend struct {
	resolver FileResolver
	globals  *Scope
	sources  map[string]*SourceModule
	modules  map[string]*Module
	dirty    map[string]bool
}

// NewFrontend returns a Frontend that reads sources through resolver.
func NewFrontend(resolver FileResolver) *Frontend {
	return &Frontend{
		resolver: resolver,
		globals:  NewScope(ScopeGlobal, nil, nil),
		sources:  make(map[string]*SourceModule),
		modules:  make(map[string]*Module),
		dirty:    make(map[string]bool),
	}
}

// Globals returns the global scope shared by every checked module.
func (f *Frontend) Globals() *Scope {
	return f.globals
}

// LoadDefinitions loads a definition file into the global scope and marks
// every checked module dirty.
func (f *Frontend) LoadDefinitions(pkg string, name string, text string) error {
	_, err := LoadDefinitions(f.globals, pkg, name, text)
	if err != nil {
		log.Warningf("definitions %s: %v", name, err)
	}
	for mod := range f.modules {
		f.dirty[mod] = true
	}
	return err
}

// Check parses and checks the named module unless an up to date result is
// already held.
func (f *Frontend) Check(name string) (*Module, error) {
	if mod, ok := f.modules[name]; ok && !f.dirty[name] {
		return mod, nil
	}
	text, err := f.resolver.ReadSource(name)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", name, err)
	}
	src := ParseSource(name, text)
	mod := Check(src, f.globals)
	log.Debugf("checked %s: %d parse errors, %d type errors", name, len(src.Errors), len(mod.Errors))
	f.sources[name] = src
	f.modules[name] = mod
	delete(f.dirty, name)
	return mod, nil
}

// SourceModule returns the last parsed form of the named module, or nil.
func (f *Frontend) SourceModule(name string) *SourceModule {
	return f.sources[name]
}

// IsDirty reports whether the named module must be checked again.
func (f *Frontend) IsDirty(name string) bool {
	_, checked := f.modules[name]
	return !checked || f.dirty[name]
}

// MarkDirty forces the next Check of the named module to re-read and
// re-check it.
func (f *Frontend) MarkDirty(name string) {
	f.dirty[name] = true
}

// Forget drops everything held for the named module.
func (f *Frontend) Forget(name string) {
	delete(f.sources, name)
	delete(f.modules, name)
	delete(f.dirty, name)
}
