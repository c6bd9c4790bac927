// Copyright © 2024 The ELPS authors

package docdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

// MemoryStore is a Store held in memory.  It must not be modified once it
// is shared.
type MemoryStore map[string]*Entry

var _ Store = MemoryStore{}

// Lookup implements Store.
func (m MemoryStore) Lookup(symbol string) (*Entry, error) {
	entry, ok := m[symbol]
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNotFound)
	}
	return entry, nil
}

// Symbols returns the sorted symbols held by m.
func (m MemoryStore) Symbols() []string {
	symbols := make([]string, 0, len(m))
	for symbol := range m {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// ReadJSON decodes a documentation JSON object mapping symbols to entries.
func ReadJSON(r io.Reader) (MemoryStore, error) {
	store := make(MemoryStore)
	if err := json.NewDecoder(r).Decode(&store); err != nil {
		return nil, fmt.Errorf("decode documentation: %w", err)
	}
	return store, nil
}

// LoadFile reads a documentation JSON file.
func LoadFile(path string) (MemoryStore, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck
	store, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

// Stores looks a symbol up in each store in order.
type Stores []Store

var _ Store = Stores{}

// Lookup implements Store.
func (s Stores) Lookup(symbol string) (*Entry, error) {
	for _, store := range s {
		if store == nil {
			continue
		}
		entry, err := store.Lookup(symbol)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%s: %w", symbol, ErrNotFound)
}
