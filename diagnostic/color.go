// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// ColorMode controls when ANSI color codes are used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // color terminals unless NO_COLOR is set
	ColorAlways                  // always use colors
	ColorNever                   // never use colors
)

// palette holds the escape sequences for each part of a diagnostic.  The
// zero palette renders plain text.
type palette struct {
	bold     string // messages
	boldRed  string // errors, underlines and labels
	yellow   string // warnings
	boldCyan string // notes
	boldBlue string // gutter and location arrow
	reset    string
}

var ansiPalette = palette{
	bold:     "\033[1m",
	boldRed:  "\033[1;31m",
	yellow:   "\033[33m",
	boldCyan: "\033[1;36m",
	boldBlue: "\033[1;34m",
	reset:    "\033[0m",
}

func (p palette) severity(s Severity) string {
	switch s {
	case SeverityError:
		return p.boldRed
	case SeverityWarning:
		return p.yellow
	default:
		return p.boldCyan
	}
}

// paletteFor selects the palette for output written to w.
func paletteFor(mode ColorMode, w io.Writer) palette {
	switch mode {
	case ColorAlways:
		return ansiPalette
	case ColorNever:
		return palette{}
	}
	if os.Getenv("NO_COLOR") != "" {
		return palette{}
	}
	f, ok := w.(*os.File)
	if !ok {
		return palette{}
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return ansiPalette
	}
	return palette{}
}
