// Copyright © 2018 The ELPS authors

package repl

import (
	"sort"
	"strings"
)

// commandCompleter implements readline.AutoCompleter by completing session
// commands at the start of a line and global names elsewhere.
type commandCompleter struct {
	session *Session
}

func (c *commandCompleter) Do(line []rune, pos int) ([][]rune, int) {
	// Extract the word being typed (backwards from cursor to a separator).
	start := pos
	for start > 0 {
		ch := line[start-1]
		if ch == ' ' || ch == '\t' || ch == '(' || ch == ',' || ch == '|' {
			break
		}
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	var candidates []string
	if start == 0 && strings.HasPrefix(prefix, ":") {
		for _, cmd := range commands {
			if strings.HasPrefix(cmd.name, prefix) {
				candidates = append(candidates, cmd.name)
			}
		}
	} else {
		for _, name := range c.session.Names() {
			if strings.HasPrefix(name, prefix) {
				candidates = append(candidates, name)
			}
		}
	}
	if len(candidates) == 0 {
		return nil, 0
	}
	sort.Strings(candidates)

	// Build completions: each entry is the suffix to append.
	result := make([][]rune, 0, len(candidates))
	for _, name := range candidates {
		result = append(result, []rune(name[len(prefix):]))
	}
	return result, len(prefix)
}
