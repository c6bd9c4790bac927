// Copyright © 2024 The ELPS authors

package repl

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/luthersystems/luaulsp/analysis"
	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/astutil"
	"github.com/luthersystems/luaulsp/diagnostic"
	"github.com/luthersystems/luaulsp/docdb"
	"github.com/luthersystems/luaulsp/signature"
)

// errQuit is returned by Eval when the session should end.
var errQuit = errors.New("quit")

const (
	// snippetName is the module name of checked snippets.
	snippetName  = "<stdin>"
	cursorMarker = "|"
)

// commands lists the session commands with their help text.
var commands = []struct {
	name string
	help string
}{
	{":help", "show this message"},
	{":reload", "check the file again"},
	{":diag", "show parse and type errors of the file"},
	{":calls", "list the signature of every call in the file"},
	{":doc", ":doc SYMBOL shows the documentation stored for SYMBOL"},
	{":tables", "toggle printing table kinds"},
	{":quit", "end the session"},
}

// Session answers signature help queries against one file.  Queries are
// LINE:COL positions, 1-based with a byte column, or a Luau snippet
// containing a | cursor.
type Session struct {
	// Path is the module name of the file, passed to the frontend.  An
	// empty Path allows only snippets.
	Path     string
	Options  signature.Options
	Width    int
	frontend *analysis.Frontend
	store    docdb.Store
	snippet  *analysis.SourceModule
}

// NewSession returns a session checking path with frontend.  The frontend
// must already hold its definitions.
func NewSession(path string, frontend *analysis.Frontend, store docdb.Store) *Session {
	return &Session{
		Path:     path,
		Options:  signature.Options{HideTableKind: true},
		frontend: frontend,
		store:    store,
	}
}

// Check parses and checks the file again.
func (s *Session) Check() error {
	if s.Path == "" {
		return nil
	}
	s.frontend.MarkDirty(s.Path)
	_, err := s.frontend.Check(s.Path)
	return err
}

func (s *Session) environment() signature.Docs {
	return signature.Docs{
		Store: s.store,
		Sources: func(module string) *analysis.SourceModule {
			if module == snippetName {
				return s.snippet
			}
			return s.frontend.SourceModule(module)
		},
	}
}

// Help answers a query at pos in the file.
func (s *Session) Help(pos ast.Position) (*signature.Result, error) {
	mod, err := s.frontend.Check(s.Path)
	if err != nil {
		return nil, err
	}
	return signature.Help(signature.Query{
		Source:   s.frontend.SourceModule(s.Path),
		Module:   mod,
		Position: pos,
		Options:  s.Options,
	}, s.environment()), nil
}

// HelpSnippet answers a query at the cursor marker of text.
func (s *Session) HelpSnippet(text string) (*signature.Result, error) {
	i := strings.Index(text, cursorMarker)
	if i < 0 {
		return nil, fmt.Errorf("snippet has no cursor %q", cursorMarker)
	}
	text = text[:i] + text[i+len(cursorMarker):]
	s.snippet = analysis.ParseSource(snippetName, text)
	mod := analysis.Check(s.snippet, s.frontend.Globals())
	return signature.Help(signature.Query{
		Source:   s.snippet,
		Module:   mod,
		Position: positionAt(text, i),
		Options:  s.Options,
	}, s.environment()), nil
}

// Diagnostics returns the parse and type errors of the file.
func (s *Session) Diagnostics() ([]diagnostic.Diagnostic, error) {
	mod, err := s.frontend.Check(s.Path)
	if err != nil {
		return nil, err
	}
	return diagnostic.FromSource(s.Path, s.frontend.SourceModule(s.Path), mod), nil
}

// Calls writes the position and signature of every call in the file, in
// source order.  Each call is queried at its opening delimiter.
func (s *Session) Calls(w io.Writer) error {
	if s.Path == "" {
		return errors.New("no file loaded")
	}
	mod, err := s.frontend.Check(s.Path)
	if err != nil {
		return err
	}
	src := s.frontend.SourceModule(s.Path)
	env := s.environment()
	astutil.WalkCalls(src.Root, func(call *ast.ExprCall, _ int) {
		res := signature.Help(signature.Query{
			Source:   src,
			Module:   mod,
			Position: call.Func.Loc().End,
			Options:  s.Options,
		}, env)
		if res == nil {
			return
		}
		label := "not callable"
		if n := len(res.Signatures); n > 0 {
			label = res.Signatures[0].Label
			if n > 1 {
				label += fmt.Sprintf(" (+%d overloads)", n-1)
			}
		}
		begin := call.Location.Begin
		fmt.Fprintf(w, "%d:%d %s\n", begin.Line+1, begin.Column+1, label)
	})
	return nil
}

// Names returns the sorted global names visible to queries.
func (s *Session) Names() []string {
	var names []string
	for name := range s.frontend.Globals().Bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Eval runs one line of input and writes its output to w.
func (s *Session) Eval(w io.Writer, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if strings.HasPrefix(line, ":") {
		return s.command(w, line)
	}
	if strings.Contains(line, cursorMarker) {
		res, err := s.HelpSnippet(line)
		if err != nil {
			return err
		}
		return signature.Format(w, res, s.Width)
	}
	pos, err := ParsePosition(line)
	if err != nil {
		return err
	}
	if s.Path == "" {
		return errors.New("no file loaded; type a snippet with a | cursor")
	}
	res, err := s.Help(pos)
	if err != nil {
		return err
	}
	return signature.Format(w, res, s.Width)
}

func (s *Session) command(w io.Writer, line string) error {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case ":q", ":quit":
		return errQuit
	case ":help":
		for _, c := range commands {
			fmt.Fprintf(w, "%-8s %s\n", c.name, c.help)
		}
		fmt.Fprintln(w, "LINE:COL shows signature help at a position of the file")
		fmt.Fprintln(w, "a snippet containing | shows signature help at the |")
		return nil
	case ":reload":
		if err := s.Check(); err != nil {
			return err
		}
		fmt.Fprintf(w, "checked %s\n", s.Path)
		return nil
	case ":diag":
		diags, err := s.Diagnostics()
		if err != nil {
			return err
		}
		if len(diags) == 0 {
			fmt.Fprintln(w, "no problems")
			return nil
		}
		r := &diagnostic.Renderer{Color: diagnostic.ColorAuto}
		return r.RenderAll(w, diags)
	case ":calls":
		return s.Calls(w)
	case ":doc":
		if arg == "" {
			return errors.New(":doc needs a symbol")
		}
		if s.store == nil {
			return errors.New("no documentation loaded")
		}
		text, ok := docdb.Print(s.store, arg)
		if !ok {
			return fmt.Errorf("no documentation for %s", arg)
		}
		fmt.Fprintln(w, text)
		return nil
	case ":tables":
		s.Options.HideTableKind = !s.Options.HideTableKind
		fmt.Fprintf(w, "table kinds %s\n", map[bool]string{true: "hidden", false: "shown"}[s.Options.HideTableKind])
		return nil
	}
	return fmt.Errorf("unknown command %s; try :help", name)
}

// ParsePosition parses a 1-based LINE:COL position into a source position.
func ParsePosition(text string) (ast.Position, error) {
	l, c, ok := strings.Cut(text, ":")
	if !ok {
		return ast.Position{}, fmt.Errorf("invalid position %q: want LINE:COL", text)
	}
	line, err := strconv.Atoi(strings.TrimSpace(l))
	if err != nil || line < 1 {
		return ast.Position{}, fmt.Errorf("invalid line %q", l)
	}
	col, err := strconv.Atoi(strings.TrimSpace(c))
	if err != nil || col < 1 {
		return ast.Position{}, fmt.Errorf("invalid column %q", c)
	}
	return ast.Position{Line: line - 1, Column: col - 1}, nil
}

func positionAt(text string, offset int) ast.Position {
	before := text[:offset]
	line := strings.Count(before, "\n")
	return ast.Position{Line: line, Column: offset - (strings.LastIndex(before, "\n") + 1)}
}
