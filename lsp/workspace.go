// Copyright © 2024 The ELPS authors

package lsp

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luthersystems/luaulsp/analysis"
	"github.com/luthersystems/luaulsp/docdb"
	"github.com/luthersystems/luaulsp/signature"
)

// ErrDocumentNotFound is returned for requests on a document the client has
// not opened.
var ErrDocumentNotFound = errors.New("no managed text document")

// Snapshot is the checked state of a document at one point in time.  It is
// never modified after it is returned.  Text is the text Source was parsed
// from, which may be older than the document's current text.
type Snapshot struct {
	URI    string
	Text   string
	Source *analysis.SourceModule
	Module *analysis.Module
}

// Workspace owns the analysis of the documents of a server.  It guards the
// frontend with a lock held only while a snapshot is brought up to date.
type Workspace struct {
	mu       sync.Mutex
	docs     *DocumentStore
	frontend *analysis.Frontend
	store    docdb.Store
}

// NewWorkspace returns a Workspace checking the documents of docs.
// Documentation is looked up in store.
func NewWorkspace(docs *DocumentStore, store docdb.Store) *Workspace {
	return &Workspace{
		docs:     docs,
		frontend: analysis.NewFrontend(documentResolver{docs: docs}),
		store:    store,
	}
}

// LoadDefinitions adds a definition file to the global scope.
func (w *Workspace) LoadDefinitions(pkg string, name string, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frontend.LoadDefinitions(pkg, name, text)
}

// Snapshot checks the open document uri if it changed and returns its
// current state.
func (w *Workspace) Snapshot(uri string) (*Snapshot, error) {
	doc := w.docs.Get(uri)
	if doc == nil {
		return nil, fmt.Errorf("%w for %s", ErrDocumentNotFound, uri)
	}
	name := uriToPath(uri)

	w.mu.Lock()
	defer w.mu.Unlock()
	mod, err := w.frontend.Check(name)
	if err != nil {
		return nil, err
	}
	src := w.frontend.SourceModule(name)
	return &Snapshot{
		URI:    uri,
		Text:   src.Text,
		Source: src,
		Module: mod,
	}, nil
}

// Changed marks the document uri for checking on its next snapshot.
func (w *Workspace) Changed(uri string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frontend.MarkDirty(uriToPath(uri))
}

// Closed drops the analysis of the document uri.
func (w *Workspace) Closed(uri string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frontend.Forget(uriToPath(uri))
}

// Environment returns the documentation environment for queries on snap.
// Doc comments of snap's own module come from the snapshot, so they always
// match the checked tree.
func (w *Workspace) Environment(snap *Snapshot) signature.Docs {
	return signature.Docs{
		Store: w.store,
		Sources: func(module string) *analysis.SourceModule {
			if snap.Source != nil && module == snap.Source.Name {
				return snap.Source
			}
			w.mu.Lock()
			defer w.mu.Unlock()
			return w.frontend.SourceModule(module)
		},
	}
}
