// Copyright © 2024 The ELPS authors

package signature

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// DefaultWidth is the column at which Format wraps documentation.
const DefaultWidth = 72

// Highlight returns the label of sig with its active parameter wrapped in
// brackets.  The label is returned unchanged when the active parameter has
// no span.
func Highlight(sig Signature) string {
	if sig.ActiveParameter < 0 || sig.ActiveParameter >= len(sig.Parameters) {
		return sig.Label
	}
	span := sig.Parameters[sig.ActiveParameter].Span
	if span == nil {
		return sig.Label
	}
	return sig.Label[:span.Start] + "[" + sig.Label[span.Start:span.End] + "]" + sig.Label[span.End:]
}

// Format writes res as plain text.  Each signature is written as its
// highlighted label followed by its documentation and the documentation of
// its parameters, wrapped at width and indented.  A width of zero or less
// uses DefaultWidth.
func Format(w io.Writer, res *Result, width int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	if res == nil {
		_, err := io.WriteString(w, "no call at position\n")
		return err
	}
	if len(res.Signatures) == 0 {
		_, err := io.WriteString(w, "callee is not callable\n")
		return err
	}
	var b strings.Builder
	for i, sig := range res.Signatures {
		if i > 0 {
			b.WriteString("\n")
		}
		if len(res.Signatures) > 1 {
			fmt.Fprintf(&b, "(%d/%d) ", i+1, len(res.Signatures))
		}
		b.WriteString(Highlight(sig))
		b.WriteString("\n")
		if sig.Documentation != "" {
			b.WriteString(block(sig.Documentation, width, 2))
		}
		for _, p := range sig.Parameters {
			if p.Documentation == "" {
				continue
			}
			fmt.Fprintf(&b, "  %s\n", p.Text)
			b.WriteString(block(p.Documentation, width, 4))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// block wraps text to fit width once indented by n, dropping the indent of
// blank lines.
func block(text string, width int, n uint) string {
	wrapped := wordwrap.String(strings.TrimSpace(text), max(width-int(n), 1))
	lines := strings.Split(indent.String(wrapped, n), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.Join(lines, "\n") + "\n"
}
