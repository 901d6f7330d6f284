// Package lsp implements a Language Server Protocol server for MongoDB
// shell scripts and playgrounds.
package lsp

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// diagnosticsDebounce coalesces diagnostic publication across keystroke
// bursts. Analysis itself is cheap and re-runs on every edit; only the
// publish is delayed.
const diagnosticsDebounce = 200 * time.Millisecond

// Server implements the LSP Server interface for MongoDB shell scripts.
type Server struct {
	client protocol.Client
	logger *zap.Logger

	// Document state. Only raw content is retained: analysis is re-run in
	// full per request, so no syntax tree survives between calls.
	mu        sync.RWMutex
	documents map[protocol.DocumentURI]*Document

	// cache holds lazily populated namespace data from the deployment.
	// Shared across all documents on this server process.
	cache *SchemaCache

	// debounceDiagnostics coalesces diagnostic publication after edits.
	debounceDiagnostics func(func())

	// Server state
	initialized         bool
	shutdown            bool
	diagnosticsDisabled bool
	workspaceRoot       string
}

// Document represents an open document on the server.
type Document struct {
	URI     protocol.DocumentURI
	Version int32
	Content string
}

// NewServer creates a new LSP server. The provider supplies live namespace
// data (databases, collections, sampled fields); pass nil to run with the
// static catalog only.
func NewServer(client protocol.Client, logger *zap.Logger, provider NamespaceProvider) *Server {
	return &Server{
		client:              client,
		logger:              logger,
		documents:           make(map[protocol.DocumentURI]*Document),
		cache:               NewSchemaCache(provider),
		debounceDiagnostics: debounce.New(diagnosticsDebounce),
	}
}

// Cache exposes the schema cache, for hosts that need to invalidate it on
// connection changes.
func (s *Server) Cache() *SchemaCache {
	return s.cache
}

// Initialize handles the initialize request.
func (s *Server) Initialize(_ context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.logger.Info("Initialize", zap.Any("params", params))

	if params.RootURI != "" {
		s.workspaceRoot = uriToPath(params.RootURI)
	} else if params.RootPath != "" {
		s.workspaceRoot = params.RootPath
	}

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			// Full document sync - the client sends entire content on change
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			// Hover for operator/stage/method reference docs
			HoverProvider: true,
			// Completion support
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{".", "$", "(", "'", "\"", "{", "["},
				ResolveProvider:   false,
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "mongodb-lsp",
			Version: "0.1.0",
		},
	}, nil
}

// Initialized handles the initialized notification.
func (s *Server) Initialized(_ context.Context, _ *protocol.InitializedParams) error {
	s.logger.Info("Initialized")
	s.initialized = true

	return nil
}

// Shutdown handles the shutdown request.
func (s *Server) Shutdown(_ context.Context) error {
	s.logger.Info("Shutdown")
	s.shutdown = true

	return nil
}

// Exit handles the exit notification.
func (s *Server) Exit(_ context.Context) error {
	s.logger.Info("Exit")

	return nil
}

// DidOpen handles textDocument/didOpen notifications.
func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.logger.Info("DidOpen", zap.String("uri", string(params.TextDocument.URI)))

	s.mu.Lock()

	doc := &Document{
		URI:     params.TextDocument.URI,
		Version: params.TextDocument.Version,
		Content: params.TextDocument.Text,
	}
	s.documents[params.TextDocument.URI] = doc

	s.mu.Unlock()

	// Opening gets immediate diagnostics; edits are debounced.
	s.publishDiagnostics(ctx, doc.URI, doc.Version, doc.Content)

	return nil
}

// DidChange handles textDocument/didChange notifications.
func (s *Server) DidChange(_ context.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.logger.Debug("DidChange",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Int32("version", params.TextDocument.Version))

	if len(params.ContentChanges) == 0 {
		return nil
	}

	s.mu.Lock()

	doc, ok := s.documents[params.TextDocument.URI]
	if !ok {
		s.mu.Unlock()
		s.logger.Warn("DidChange for unknown document", zap.String("uri", string(params.TextDocument.URI)))

		return nil
	}

	// Full sync - take the last content change.
	doc.Content = params.ContentChanges[len(params.ContentChanges)-1].Text
	doc.Version = params.TextDocument.Version

	uri, version, content := doc.URI, doc.Version, doc.Content

	s.mu.Unlock()

	s.debounceDiagnostics(func() {
		s.publishDiagnostics(context.Background(), uri, version, content)
	})

	return nil
}

// DidClose handles textDocument/didClose notifications.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.logger.Info("DidClose", zap.String("uri", string(params.TextDocument.URI)))

	s.mu.Lock()
	delete(s.documents, params.TextDocument.URI)
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	if err != nil {
		s.logger.Error("Failed to clear diagnostics", zap.Error(err))
	}

	return nil
}

// DidSave handles textDocument/didSave notifications.
func (s *Server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.logger.Info("DidSave", zap.String("uri", string(params.TextDocument.URI)))

	doc, ok := s.getDocument(params.TextDocument.URI)
	if ok {
		s.publishDiagnostics(ctx, doc.URI, doc.Version, doc.Content)
	}

	return nil
}

// DidChangeConfiguration handles workspace/didChangeConfiguration. A
// connection change can point the server at a different deployment, so all
// cached schema data is dropped and every open document is re-analyzed.
func (s *Server) DidChangeConfiguration(ctx context.Context, _ *protocol.DidChangeConfigurationParams) error {
	s.logger.Info("DidChangeConfiguration, invalidating schema cache")

	s.cache.Invalidate(ClearAll())

	s.mu.RLock()
	docs := make([]*Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	s.mu.RUnlock()

	for _, doc := range docs {
		s.publishDiagnostics(ctx, doc.URI, doc.Version, doc.Content)
	}

	return nil
}

// getDocument returns a document by URI (read-locked).
func (s *Server) getDocument(uri protocol.DocumentURI) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[uri]

	return doc, ok
}
