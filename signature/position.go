// Copyright © 2024 The ELPS authors

package signature

import (
	"github.com/luthersystems/luaulsp/analysis"
	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/astutil"
)

// Ancestry returns the nodes of src enclosing pos, outermost first.  It is
// empty when pos lies outside the source.
func Ancestry(src *analysis.SourceModule, pos ast.Position) []ast.Node {
	if src == nil || src.Root == nil {
		return nil
	}
	return astutil.FindAncestry(src.Root, pos)
}
