package lsp_test

import (
	"context"
	"strings"
	"testing"

	"go.lsp.dev/protocol"
)

func hoverAt(t *testing.T, text string, line, character uint32) *protocol.Hover {
	t.Helper()

	server, _ := newTestServer(t)
	ctx := context.Background()

	uri := openDoc(t, server, text)

	hover, err := server.Hover(ctx, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: line, Character: character},
		},
	})
	if err != nil {
		t.Fatalf("Hover() error: %v", err)
	}

	return hover
}

func TestServer_Hover_StageOperator(t *testing.T) {
	t.Parallel()

	// Cursor on "$match".
	hover := hoverAt(t, "db.orders.aggregate([{ $match: { status: 'A' } }]);", 0, 25)
	if hover == nil {
		t.Fatal("no hover for $match")
	}

	if !strings.Contains(hover.Contents.Value, "$match") ||
		!strings.Contains(hover.Contents.Value, "stage") {
		t.Errorf("hover content = %q", hover.Contents.Value)
	}

	want := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 23},
		End:   protocol.Position{Line: 0, Character: 29},
	}
	if hover.Range == nil || *hover.Range != want {
		t.Errorf("hover range = %+v, want %+v", hover.Range, want)
	}
}

func TestServer_Hover_CollectionMethod(t *testing.T) {
	t.Parallel()

	// Cursor on "find".
	hover := hoverAt(t, "db.orders.find();", 0, 11)
	if hover == nil {
		t.Fatal("no hover for find")
	}

	if !strings.Contains(hover.Contents.Value, "find") ||
		!strings.Contains(hover.Contents.Value, "db.collection.find") {
		t.Errorf("hover content = %q", hover.Contents.Value)
	}
}

func TestServer_Hover_NothingUnderCursor(t *testing.T) {
	t.Parallel()

	hover := hoverAt(t, "db.orders.find({ nope: 1 });", 0, 19)
	if hover != nil {
		t.Errorf("hover for plain field name: %+v", hover)
	}
}
