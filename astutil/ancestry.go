// Copyright © 2024 The ELPS authors

package astutil

import "github.com/luthersystems/luaulsp/ast"

// FindAncestry returns the chain of nodes from root down to the innermost
// node whose half-open range contains pos.  A cursor after the last token
// of the document belongs to every node ending with that token, so code
// being typed at the end of a file still has an ancestry.  A position
// outside root yields an empty ancestry.
func FindAncestry(root ast.Node, pos ast.Position) []ast.Node {
	if isNil(root) || !root.Loc().ContainsClosed(pos) {
		return nil
	}
	end := documentEnd(root)
	return descend(root, func(loc ast.Location) bool {
		return loc.Contains(pos) || loc.End == end && end.LessEq(pos)
	})
}

// FindAncestryClosed is FindAncestry with end-inclusive ranges, so a
// position directly after a node still selects it.  When two adjacent
// children both contain pos, one ending where the next begins, the child
// that contains pos before its end is chosen.
func FindAncestryClosed(root ast.Node, pos ast.Position) []ast.Node {
	if isNil(root) || !root.Loc().ContainsClosed(pos) {
		return nil
	}
	ancestry := []ast.Node{root}
	node := root
	for {
		var best ast.Node
		for _, child := range Children(node) {
			loc := child.Loc()
			if !loc.ContainsClosed(pos) {
				continue
			}
			if best == nil || !best.Loc().Contains(pos) && loc.Contains(pos) {
				best = child
			}
		}
		if best == nil {
			return ancestry
		}
		ancestry = append(ancestry, best)
		node = best
	}
}

func descend(root ast.Node, contains func(ast.Location) bool) []ast.Node {
	ancestry := []ast.Node{root}
	node := root
	for {
		var next ast.Node
		for _, child := range Children(node) {
			if contains(child.Loc()) {
				next = child
				break
			}
		}
		if next == nil {
			return ancestry
		}
		ancestry = append(ancestry, next)
		node = next
	}
}

// documentEnd returns the end of the last token of the tree, which may lie
// before the end of root when the source has trailing blanks.
func documentEnd(root ast.Node) ast.Position {
	end := root.Loc().Begin
	for _, child := range Children(root) {
		if e := child.Loc().End; end.Less(e) {
			end = e
		}
	}
	return end
}
