package lsp_test

import (
	"context"
	"sync"
	"testing"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	mongolsp "github.com/Aldin-SXR/mongodb-lsp"
	"github.com/Aldin-SXR/mongodb-lsp/lsp"
)

// mockClient implements protocol.Client for testing. Published diagnostics
// are recorded under a lock because debounced publishes arrive on another
// goroutine.
type mockClient struct {
	mu          sync.Mutex
	diagnostics []protocol.PublishDiagnosticsParams
}

func (m *mockClient) PublishDiagnostics(_ context.Context, params *protocol.PublishDiagnosticsParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.diagnostics = append(m.diagnostics, *params)

	return nil
}

// published returns a snapshot of the recorded diagnostic notifications.
func (m *mockClient) published() []protocol.PublishDiagnosticsParams {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]protocol.PublishDiagnosticsParams, len(m.diagnostics))
	copy(out, m.diagnostics)

	return out
}

// lastPublished returns the most recent diagnostic notification.
func (m *mockClient) lastPublished(t *testing.T) protocol.PublishDiagnosticsParams {
	t.Helper()

	all := m.published()
	if len(all) == 0 {
		t.Fatal("no diagnostics published")
	}

	return all[len(all)-1]
}

// Stub out remaining Client interface methods.
func (m *mockClient) Progress(context.Context, *protocol.ProgressParams) error { return nil }
func (m *mockClient) WorkDoneProgressCreate(context.Context, *protocol.WorkDoneProgressCreateParams) error {
	return nil
}
func (m *mockClient) ShowMessage(context.Context, *protocol.ShowMessageParams) error { return nil }
func (m *mockClient) ShowMessageRequest(
	context.Context, *protocol.ShowMessageRequestParams,
) (*protocol.MessageActionItem, error) {
	return nil, nil //nolint:nilnil // Mock stub returns nil for tests
}
func (m *mockClient) LogMessage(context.Context, *protocol.LogMessageParams) error { return nil }
func (m *mockClient) Telemetry(context.Context, any) error                         { return nil }
func (m *mockClient) RegisterCapability(context.Context, *protocol.RegistrationParams) error {
	return nil
}
func (m *mockClient) UnregisterCapability(context.Context, *protocol.UnregistrationParams) error {
	return nil
}
func (m *mockClient) ApplyEdit(context.Context, *protocol.ApplyWorkspaceEditParams) (bool, error) {
	return false, nil
}
func (m *mockClient) Configuration(context.Context, *protocol.ConfigurationParams) ([]any, error) {
	return nil, nil
}
func (m *mockClient) WorkspaceFolders(context.Context) ([]protocol.WorkspaceFolder, error) {
	return nil, nil
}

// testSchema declares the deployment every server test runs against.
func testSchema() mongolsp.SchemaConfig {
	return mongolsp.SchemaConfig{
		Databases: map[string]map[string][]string{
			"shop": {
				"orders": {"status", "total"},
				"users":  {"name", "email"},
			},
		},
		StreamProcessors: []string{"clicks"},
	}
}

func newTestServer(t *testing.T) (*lsp.Server, *mockClient) {
	t.Helper()

	logger := zap.NewNop()
	client := &mockClient{}
	server := lsp.NewServer(client, logger, mongolsp.NewStaticProvider(testSchema()))

	return server, client
}

// openDoc opens a document on the server and returns its URI.
func openDoc(t *testing.T, server *lsp.Server, text string) protocol.DocumentURI {
	t.Helper()

	ctx := context.Background()
	uri := protocol.DocumentURI("file:///test.mongodb.js")

	_, _ = server.Initialize(ctx, &protocol.InitializeParams{})
	_ = server.Initialized(ctx, &protocol.InitializedParams{})

	err := server.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:     uri,
			Version: 1,
			Text:    text,
		},
	})
	if err != nil {
		t.Fatalf("DidOpen() error: %v", err)
	}

	return uri
}

func TestServer_Initialize(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)
	ctx := context.Background()

	result, err := server.Initialize(ctx, &protocol.InitializeParams{})
	if err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	if result.Capabilities.TextDocumentSync == nil {
		t.Error("TextDocumentSync capability not set")
	}

	hoverEnabled, ok := result.Capabilities.HoverProvider.(bool)
	if !ok || !hoverEnabled {
		t.Error("HoverProvider not enabled")
	}

	if result.Capabilities.CompletionProvider == nil {
		t.Fatal("CompletionProvider not set")
	}

	hasDot := false

	for _, c := range result.Capabilities.CompletionProvider.TriggerCharacters {
		if c == "." {
			hasDot = true
		}
	}

	if !hasDot {
		t.Error(`"." missing from completion trigger characters`)
	}

	if result.ServerInfo == nil || result.ServerInfo.Name != "mongodb-lsp" {
		t.Error("ServerInfo not set correctly")
	}
}

func TestServer_DidOpen_PublishesDiagnostics(t *testing.T) {
	t.Parallel()

	server, client := newTestServer(t)

	uri := openDoc(t, server, "use('shop');\ndb.orders.find({ status: 'A' });")

	last := client.lastPublished(t)
	if last.URI != uri {
		t.Errorf("published URI = %q, want %q", last.URI, uri)
	}

	if len(last.Diagnostics) != 0 {
		t.Errorf("clean document got diagnostics: %+v", last.Diagnostics)
	}
}

func TestServer_DidSave_RepublishesDiagnostics(t *testing.T) {
	t.Parallel()

	server, client := newTestServer(t)
	ctx := context.Background()

	uri := openDoc(t, server, "db.orders.find({")
	before := len(client.published())

	err := server.DidSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	if err != nil {
		t.Fatalf("DidSave() error: %v", err)
	}

	after := client.published()
	if len(after) != before+1 {
		t.Fatalf("publish count = %d, want %d", len(after), before+1)
	}

	if len(after[len(after)-1].Diagnostics) == 0 {
		t.Error("broken document got no diagnostics")
	}
}

func TestServer_DidClose_ClearsDiagnostics(t *testing.T) {
	t.Parallel()

	server, client := newTestServer(t)
	ctx := context.Background()

	uri := openDoc(t, server, "db.orders.find({")

	err := server.DidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	if err != nil {
		t.Fatalf("DidClose() error: %v", err)
	}

	last := client.lastPublished(t)
	if len(last.Diagnostics) != 0 {
		t.Errorf("close did not clear diagnostics: %+v", last.Diagnostics)
	}
}

func TestServer_DidChangeConfiguration_InvalidatesCache(t *testing.T) {
	t.Parallel()

	server, client := newTestServer(t)
	ctx := context.Background()

	uri := openDoc(t, server, "use('shop');\ndb.orders.find({});")
	before := len(client.published())

	err := server.DidChangeConfiguration(ctx, &protocol.DidChangeConfigurationParams{})
	if err != nil {
		t.Fatalf("DidChangeConfiguration() error: %v", err)
	}

	after := client.published()
	if len(after) != before+1 {
		t.Fatalf("publish count = %d, want %d (open documents re-analyzed)", len(after), before+1)
	}

	if after[len(after)-1].URI != uri {
		t.Errorf("republished URI = %q, want %q", after[len(after)-1].URI, uri)
	}
}

func TestServer_DiagnosticsDisabled(t *testing.T) {
	t.Parallel()

	server, client := newTestServer(t)
	server.SetDiagnosticsEnabled(false)

	openDoc(t, server, "db.orders.find({")

	last := client.lastPublished(t)
	if len(last.Diagnostics) != 0 {
		t.Errorf("diagnostics published while disabled: %+v", last.Diagnostics)
	}
}
