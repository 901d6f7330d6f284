package analysis_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Aldin-SXR/mongodb-lsp/analysis"
)

func TestExtract_FindWithNamespace(t *testing.T) {
	t.Parallel()

	refs := analysis.Extract("use('shop');\ndb.orders.find({ status: 'A' });")

	want := analysis.DiagnosticReferences{
		DatabaseName: "shop",
		Collections: []analysis.CollectionReference{
			{
				CollectionName: "orders",
				DatabaseName:   "shop",
				Span: analysis.Span{
					Start: analysis.Position{Line: 1, Character: 3},
					End:   analysis.Position{Line: 1, Character: 9},
				},
			},
		},
		Fields: []analysis.FieldReference{
			{
				FieldName:      "status",
				CollectionName: "orders",
				DatabaseName:   "shop",
				Span: analysis.Span{
					Start: analysis.Position{Line: 1, Character: 17},
					End:   analysis.Position{Line: 1, Character: 23},
				},
				Context: analysis.FieldContextFind,
			},
		},
		Methods: []analysis.MethodReference{
			{
				Method: "find",
				Target: analysis.MethodTargetCollection,
				Span: analysis.Span{
					Start: analysis.Position{Line: 1, Character: 10},
					End:   analysis.Position{Line: 1, Character: 14},
				},
			},
		},
	}

	if diff := cmp.Diff(want, refs); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_BrokenScriptYieldsEmptyInventory(t *testing.T) {
	t.Parallel()

	refs := analysis.Extract("db.orders.find({")

	if diff := cmp.Diff(analysis.DiagnosticReferences{}, refs); diff != "" {
		t.Errorf("Extract() not empty for broken script (-want +got):\n%s", diff)
	}
}

func TestExtract_OperatorContexts(t *testing.T) {
	t.Parallel()

	refs := analysis.Extract(`db.orders.aggregate([
  { $match: { price: { $gt: 10 } } },
  { $group: { _id: '$cat', total: { $sum: '$price' } } }
]);`)

	got := map[string]analysis.OperatorContext{}
	for _, op := range refs.Operators {
		got[op.Operator] = op.Context
	}

	want := map[string]analysis.OperatorContext{
		"$match": analysis.OperatorContextStage,
		"$gt":    analysis.OperatorContextQuery,
		"$group": analysis.OperatorContextStage,
		"$sum":   analysis.OperatorContextAggregation,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("operator contexts mismatch (-want +got):\n%s", diff)
	}

	gotFields := map[string]analysis.FieldContext{}
	for _, f := range refs.Fields {
		gotFields[f.FieldName] = f.Context

		if f.CollectionName != "orders" {
			t.Errorf("field %q collection = %q, want %q", f.FieldName, f.CollectionName, "orders")
		}
	}

	wantFields := map[string]analysis.FieldContext{
		"price": analysis.FieldContextAggregate,
		"_id":   analysis.FieldContextAggregate,
		"total": analysis.FieldContextAggregate,
	}

	if diff := cmp.Diff(wantFields, gotFields); diff != "" {
		t.Errorf("field contexts mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_OperatorsOutsideArray(t *testing.T) {
	t.Parallel()

	refs := analysis.Extract("db.orders.find({ price: { $gt: 10 }, $or: [{ a: 1 }] });")

	got := map[string]analysis.OperatorContext{}
	for _, op := range refs.Operators {
		got[op.Operator] = op.Context
	}

	want := map[string]analysis.OperatorContext{
		"$gt": analysis.OperatorContextQuery,
		"$or": analysis.OperatorContextOther,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("operator contexts mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_MethodTargets(t *testing.T) {
	t.Parallel()

	refs := analysis.Extract("db.getSiblingDB('other');\ndb.orders.find().sort({ a: 1 });")

	got := map[string]analysis.MethodTarget{}
	for _, m := range refs.Methods {
		got[m.Method] = m.Target
	}

	want := map[string]analysis.MethodTarget{
		"getSiblingDB": analysis.MethodTargetDatabase,
		"find":         analysis.MethodTargetCollection,
		"sort":         analysis.MethodTargetCursor,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("method targets mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_GetCollectionForm(t *testing.T) {
	t.Parallel()

	refs := analysis.Extract("db.getCollection('users').insertOne({ name: 'x' });")

	if len(refs.Collections) != 1 || refs.Collections[0].CollectionName != "users" {
		t.Fatalf("Collections = %+v, want one reference to users", refs.Collections)
	}

	got := map[string]analysis.MethodTarget{}
	for _, m := range refs.Methods {
		got[m.Method] = m.Target
	}

	want := map[string]analysis.MethodTarget{
		"getCollection": analysis.MethodTargetDatabase,
		"insertOne":     analysis.MethodTargetCollection,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("method targets mismatch (-want +got):\n%s", diff)
	}

	if len(refs.Fields) != 1 || refs.Fields[0].CollectionName != "users" {
		t.Fatalf("Fields = %+v, want one field scoped to users", refs.Fields)
	}
}

func TestExtract_SubscriptAccessor(t *testing.T) {
	t.Parallel()

	refs := analysis.Extract("use('shop');\ndb['order history'].countDocuments();")

	if len(refs.Collections) != 1 {
		t.Fatalf("Collections = %+v, want exactly one", refs.Collections)
	}

	ref := refs.Collections[0]
	if ref.CollectionName != "order history" || ref.DatabaseName != "shop" {
		t.Errorf("collection reference = %+v", ref)
	}
}

func TestExtract_MemberAccessWithoutCallIsNotAMethod(t *testing.T) {
	t.Parallel()

	refs := analysis.Extract("db.orders;")

	if len(refs.Methods) != 0 {
		t.Errorf("Methods = %+v, want none for a bare accessor", refs.Methods)
	}

	if len(refs.Collections) != 1 || refs.Collections[0].CollectionName != "orders" {
		t.Errorf("Collections = %+v, want one reference to orders", refs.Collections)
	}
}

func TestExtract_Repeatable(t *testing.T) {
	t.Parallel()

	const script = "use('shop');\ndb.orders.aggregate([{ $match: { status: 'A' } }]);"

	first := analysis.Extract(script)
	second := analysis.Extract(script)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Extract() differs between identical calls (-first +second):\n%s", diff)
	}
}
