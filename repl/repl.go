// Copyright © 2018 The ELPS authors

// Package repl runs an interactive signature help session over a Luau
// file.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ergochat/readline"
	"github.com/luthersystems/luaulsp/diagnostic"
)

type config struct {
	stdin  io.ReadCloser
	stderr io.WriteCloser
}

func newConfig(opts ...Option) *config {
	config := &config{}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output to the REPL.
func WithStderr(stderr io.WriteCloser) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// Run reads queries until the input ends or the session is quit.  Errors
// are reported and the session continues.
func Run(s *Session, prompt string, opts ...Option) error {
	cfg := newConfig(opts...)
	var out io.Writer = os.Stderr
	if cfg.stderr != nil {
		out = cfg.stderr
	}

	hist := historyPath()
	ensureHistoryFilePermissions(hist)
	rlCfg := &readline.Config{
		Stdout:            out,
		Stderr:            out,
		Prompt:            prompt,
		HistoryFile:       hist,
		HistorySearchFold: true,
		AutoComplete:      &commandCompleter{session: s},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return err
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	if s.Path != "" {
		if err := s.Check(); err != nil {
			renderError(out, err)
		}
	}
	for {
		line, err := rl.ReadLine()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			return nil
		}
		err = s.Eval(out, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			renderError(out, err)
		}
	}
}

// renderError renders a failed query with the diagnostic renderer.
func renderError(w io.Writer, err error) {
	r := &diagnostic.Renderer{Color: diagnostic.ColorAuto}
	_ = r.Render(w, diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Message:  err.Error(),
		Notes:    []string{"type :help for the available commands"},
	})
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".luaulsp_history")
}

// ensureHistoryFilePermissions creates the history file readable only by
// its owner, restricting an existing file.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o600) //nolint:gosec // history file under the user's home
	if err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
		return
	}
	_ = f.Close()
	if err := os.Chmod(path, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
	}
}
