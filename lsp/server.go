// Copyright © 2024 The ELPS authors

// Package lsp implements a Language Server Protocol server for Luau.
// It provides signature help and publishes parse and type diagnostics.
package lsp

import (
	"os"
	"sync"
	"time"

	"github.com/luthersystems/luaulsp/docdb"
	"github.com/luthersystems/luaulsp/docs"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	glspserver "github.com/tliron/glsp/server"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	serverName = "luaulsp"
	tracerName = "github.com/luthersystems/luaulsp/lsp"
)

var log = commonlog.GetLogger("luaulsp.lsp")

// Definitions is a definition file loaded into the global scope.
type Definitions struct {
	Package string
	Name    string
	Text    string
}

// Server is the Luau language server.
type Server struct {
	handler   protocol.Handler
	glspSrv   *glspserver.Server
	docs      *DocumentStore
	workspace *Workspace
	tracer    trace.Tracer
	rootURI   string
	rootPath  string

	configMu sync.RWMutex
	config   *viper.Viper

	definitions []Definitions
	store       docdb.Store

	// Debouncer for didChange notifications.
	debounceMu sync.Mutex
	debounce   map[string]*time.Timer

	// Context for sending notifications (captured from latest request).
	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn is called on the LSP exit notification. Defaults to os.Exit.
	// Overridable for testing.
	exitFn func(int)
}

// Option configures the LSP server.
type Option func(*Server)

// WithConfig sets the configuration read by request handlers.  Client
// settings are merged into it.
func WithConfig(v *viper.Viper) Option {
	return func(s *Server) { s.config = v }
}

// WithDefinitions loads definition files after the bundled standard
// library.
func WithDefinitions(defs ...Definitions) Option {
	return func(s *Server) { s.definitions = append(s.definitions, defs...) }
}

// WithDocumentation looks up documentation in store before the bundled
// documentation.
func WithDocumentation(store docdb.Store) Option {
	return func(s *Server) { s.store = store }
}

// WithTracerProvider sets the provider of request spans.  The global
// provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) { s.tracer = tp.Tracer(tracerName) }
}

// New creates a new Luau LSP server.
func New(opts ...Option) *Server {
	s := &Server{
		docs:     NewDocumentStore(),
		debounce: make(map[string]*time.Timer),
		exitFn:   os.Exit,
	}
	for _, o := range opts {
		o(s)
	}
	if s.config == nil {
		s.config = viper.New()
	}
	SetDefaults(s.config)
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}

	stores := docdb.Stores{}
	if s.store != nil {
		stores = append(stores, s.store)
	}
	if builtins, err := docs.Documentation(); err != nil {
		log.Errorf("bundled documentation: %v", err)
	} else {
		stores = append(stores, builtins)
	}
	s.workspace = NewWorkspace(s.docs, stores)
	defs := append([]Definitions{{Package: docs.Package, Name: docs.DefinitionsName, Text: docs.Definitions}}, s.definitions...)
	for _, d := range defs {
		if err := s.workspace.LoadDefinitions(d.Package, d.Name, d.Text); err != nil {
			log.Warningf("definitions %s: %v", d.Name, err)
		}
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		Exit:        s.exit,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,

		WorkspaceDidChangeConfiguration: s.workspaceDidChangeConfiguration,

		TextDocumentSignatureHelp: s.textDocumentSignatureHelp,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio starts the server using stdio transport.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP starts the server listening on the given address.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

// initialize handles the LSP initialize request.
func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)

	if params.RootURI != nil {
		s.rootURI = *params.RootURI
		s.rootPath = uriToPath(s.rootURI)
	} else if params.RootPath != nil {
		s.rootPath = *params.RootPath
		s.rootURI = pathToURI(s.rootPath)
	}
	if params.InitializationOptions != nil {
		if err := s.updateSettings(params.InitializationOptions); err != nil {
			log.Warningf("initialization options: %v", err)
		}
	}

	capabilities := s.handler.CreateServerCapabilities()

	// Override text document sync to full.
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}

	capabilities.SignatureHelpProvider = &protocol.SignatureHelpOptions{
		TriggerCharacters:   []string{"(", ","},
		RetriggerCharacters: []string{")"},
	}

	version := "0.1.0"
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, _ *protocol.InitializedParams) error {
	s.captureNotify(ctx)
	log.Infof("initialized, root %q", s.rootPath)
	return nil
}

// shutdown handles the LSP shutdown request.
func (s *Server) shutdown(_ *glsp.Context) error {
	// Cancel any pending debounce timers.
	s.debounceMu.Lock()
	for _, t := range s.debounce {
		t.Stop()
	}
	s.debounce = make(map[string]*time.Timer)
	s.debounceMu.Unlock()

	return nil
}

// exit handles the LSP exit notification by terminating the process.
func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

// setTrace handles the $/setTrace notification (required by some clients).
func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

// captureNotify stores the notification function from the context for
// async use (e.g., publishing diagnostics after a debounce).
func (s *Server) captureNotify(ctx *glsp.Context) {
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

// sendNotification sends a notification to the client.
func (s *Server) sendNotification(method string, params any) {
	s.notifyMu.Lock()
	fn := s.notify
	s.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

// Workspace returns the analysis workspace of the server.
func (s *Server) Workspace() *Workspace {
	return s.workspace
}

func boolPtr(b bool) *bool {
	return &b
}
