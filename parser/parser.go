// Copyright © 2018 The ELPS authors

// Package parser is the entry point for parsing Luau source files.
package parser

import (
	"errors"

	"github.com/luthersystems/luaulsp/parser/rdparser"
)

// Parse parses the named Luau source text.  Parsing always produces a tree;
// syntax errors are reported in the result alongside it.
func Parse(name string, src string) *rdparser.Result {
	return rdparser.Parse(name, src)
}

// Err returns the syntax errors of res joined into a single error, or nil
// when the source parsed cleanly.
func Err(res *rdparser.Result) error {
	if len(res.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(res.Errors))
	for i, err := range res.Errors {
		errs[i] = err
	}
	return errors.Join(errs...)
}
