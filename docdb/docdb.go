// Copyright © 2024 The ELPS authors

// Package docdb stores documentation for the symbols named by definition
// files.
//
// Entries are keyed by documentation symbol, such as "@luau/global/print"
// or "@luau/global/math.abs/param/0", and use the layout of the Luau
// documentation JSON files.  A Store may be backed by memory, by a bbolt
// database, or by a JSON file that is reloaded when it changes.
package docdb

import (
	"errors"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("luaulsp.docdb")

// ErrNotFound is returned when a symbol has no entry.
var ErrNotFound = errors.New("documentation not found")

// Param documents one parameter of a function entry.
type Param struct {
	Name          string `json:"name"`
	Documentation string `json:"documentation"`
}

// Entry is the documentation of a single symbol.  Params, Returns,
// Overloads and Keys hold the symbols of related entries.
type Entry struct {
	Documentation string            `json:"documentation"`
	LearnMoreLink string            `json:"learn_more_link,omitempty"`
	CodeSample    string            `json:"code_sample,omitempty"`
	Params        []Param           `json:"params,omitempty"`
	Returns       []string          `json:"returns,omitempty"`
	Overloads     map[string]string `json:"overloads,omitempty"`
	Keys          map[string]string `json:"keys,omitempty"`
}

// Store looks up documentation entries.  Implementations are safe for
// concurrent use.
type Store interface {
	Lookup(symbol string) (*Entry, error)
}

// Print renders the entry for symbol as markdown.  It reports false when
// the store has no entry.
func Print(store Store, symbol string) (string, bool) {
	if store == nil || symbol == "" {
		return "", false
	}
	entry, err := store.Lookup(symbol)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warningf("lookup %s: %v", symbol, err)
		}
		return "", false
	}
	var sb strings.Builder
	sb.WriteString(entry.Documentation)
	if entry.CodeSample != "" {
		sb.WriteString("\n\n```lua\n")
		sb.WriteString(strings.TrimRight(entry.CodeSample, "\n"))
		sb.WriteString("\n```")
	}
	if entry.LearnMoreLink != "" {
		sb.WriteString("\n\n[Learn More](")
		sb.WriteString(entry.LearnMoreLink)
		sb.WriteString(")")
	}
	return sb.String(), true
}
