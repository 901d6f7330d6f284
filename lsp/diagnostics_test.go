package lsp_test

import (
	"strings"
	"testing"

	"go.lsp.dev/protocol"

	"github.com/Aldin-SXR/mongodb-lsp/lsp"
)

// singleDiagnostic opens a document and expects exactly one diagnostic.
func singleDiagnostic(t *testing.T, text string) protocol.Diagnostic {
	t.Helper()

	server, client := newTestServer(t)
	openDoc(t, server, text)

	diags := client.lastPublished(t).Diagnostics
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %+v", len(diags), diags)
	}

	return diags[0]
}

func TestDiagnostics_CollectionNotFound(t *testing.T) {
	t.Parallel()

	diag := singleDiagnostic(t, "use('shop');\ndb.orderz.find({});")

	if diag.Code != lsp.CodeCollectionNotFound {
		t.Errorf("code = %v, want %v", diag.Code, lsp.CodeCollectionNotFound)
	}

	if diag.Severity != protocol.DiagnosticSeverityWarning {
		t.Errorf("severity = %v, want warning", diag.Severity)
	}

	if !strings.Contains(diag.Message, `Did you mean "orders"`) {
		t.Errorf("message lacks suggestion: %q", diag.Message)
	}

	want := protocol.Range{
		Start: protocol.Position{Line: 1, Character: 3},
		End:   protocol.Position{Line: 1, Character: 9},
	}
	if diag.Range != want {
		t.Errorf("range = %+v, want %+v", diag.Range, want)
	}
}

func TestDiagnostics_FieldNotFound(t *testing.T) {
	t.Parallel()

	diag := singleDiagnostic(t, "use('shop');\ndb.orders.find({ totel: 1 });")

	if diag.Code != lsp.CodeFieldNotFound {
		t.Errorf("code = %v, want %v", diag.Code, lsp.CodeFieldNotFound)
	}

	if !strings.Contains(diag.Message, `Did you mean "total"`) {
		t.Errorf("message lacks suggestion: %q", diag.Message)
	}
}

func TestDiagnostics_InvalidStageOperator(t *testing.T) {
	t.Parallel()

	diag := singleDiagnostic(t, "use('shop');\ndb.orders.aggregate([{ $matchh: {} }]);")

	if diag.Code != lsp.CodeInvalidStageOperator {
		t.Errorf("code = %v, want %v", diag.Code, lsp.CodeInvalidStageOperator)
	}

	if diag.Severity != protocol.DiagnosticSeverityError {
		t.Errorf("severity = %v, want error", diag.Severity)
	}

	if !strings.Contains(diag.Message, `Did you mean "$match"`) {
		t.Errorf("message lacks suggestion: %q", diag.Message)
	}
}

func TestDiagnostics_InvalidQueryOperator(t *testing.T) {
	t.Parallel()

	diag := singleDiagnostic(t, "use('shop');\ndb.orders.find({ status: { $gtt: 5 } });")

	if diag.Code != lsp.CodeInvalidQueryOperator {
		t.Errorf("code = %v, want %v", diag.Code, lsp.CodeInvalidQueryOperator)
	}

	if !strings.Contains(diag.Message, `Did you mean "$gt"`) {
		t.Errorf("message lacks suggestion: %q", diag.Message)
	}
}

func TestDiagnostics_UnknownMethod(t *testing.T) {
	t.Parallel()

	diag := singleDiagnostic(t, "use('shop');\ndb.orders.findd({});")

	if diag.Code != lsp.CodeUnknownMethod {
		t.Errorf("code = %v, want %v", diag.Code, lsp.CodeUnknownMethod)
	}

	if !strings.Contains(diag.Message, `Did you mean "find"`) {
		t.Errorf("message lacks suggestion: %q", diag.Message)
	}
}

func TestDiagnostics_SyntaxError(t *testing.T) {
	t.Parallel()

	diag := singleDiagnostic(t, "db.orders.find({")

	if diag.Code != lsp.CodeInvalidSyntax {
		t.Errorf("code = %v, want %v", diag.Code, lsp.CodeInvalidSyntax)
	}

	if diag.Severity != protocol.DiagnosticSeverityError {
		t.Errorf("severity = %v, want error", diag.Severity)
	}
}

func TestDiagnostics_SuppressedWithoutDatabase(t *testing.T) {
	t.Parallel()

	// No use() call: the deployment state for the script is unknown, so no
	// collection or field checks fire.
	server, client := newTestServer(t)
	openDoc(t, server, "db.orderz.find({ totel: 1 });")

	diags := client.lastPublished(t).Diagnostics
	if len(diags) != 0 {
		t.Errorf("got diagnostics without a known namespace: %+v", diags)
	}
}

func TestDiagnostics_CleanAggregation(t *testing.T) {
	t.Parallel()

	server, client := newTestServer(t)
	openDoc(t, server, `use('shop');
db.orders.aggregate([
  { $match: { status: 'A' } },
  { $group: { _id: null, n: { $sum: 1 } } }
]);`)

	diags := client.lastPublished(t).Diagnostics
	if len(diags) != 0 {
		t.Errorf("clean aggregation got diagnostics: %+v", diags)
	}
}
