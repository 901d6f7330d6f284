// Package analysis resolves cursor contexts and extracts collection, field,
// operator, and method references from MongoDB shell scripts.
package analysis

// Position is a zero-based (line, character) pair.
type Position struct {
	Line      int
	Character int
}

// Span is a half-open source range: Start inclusive, End exclusive.
type Span struct {
	Start Position
	End   Position
}

// Contains reports whether the span contains pos.
func (s Span) Contains(pos Position) bool {
	if pos.Line < s.Start.Line {
		return false
	}

	if pos.Line == s.Start.Line && pos.Character < s.Start.Character {
		return false
	}

	if pos.Line > s.End.Line {
		return false
	}

	if pos.Line == s.End.Line && pos.Character >= s.End.Character {
		return false
	}

	return true
}

// CompletionState describes the semantic context resolved at a cursor
// position. Every field has a meaningful zero value; a failed parse leaves
// the whole struct at its defaults. Fields are not mutually exclusive:
// several can be set by different nodes in the same traversal.
type CompletionState struct {
	// DatabaseName is the database selected by the nearest use() call that
	// ends at or before the cursor. Empty when none precedes it.
	DatabaseName string

	// CollectionName is the name bound by the nearest enclosing collection
	// accessor (db.name, db['name'], or db.getCollection('name')).
	CollectionName string

	// StreamProcessorName is the analogous binding for sp accessors.
	StreamProcessorName string

	// IsObjectKey is set when the cursor sits in key position of an object
	// literal property.
	IsObjectKey bool

	// IsIdentifierObjectValue is set when the cursor sits in an
	// identifier-typed value position of an object literal property.
	IsIdentifierObjectValue bool

	// IsTextObjectValue is set when the cursor sits inside a string or
	// template literal value of an object literal property.
	IsTextObjectValue bool

	// IsStage is set when the cursor is at the top level of a stage object
	// directly inside a pipeline array.
	IsStage bool

	// StageOperator names the enclosing pipeline stage when the cursor is
	// nested inside a stage's body. It is always the outermost stage key,
	// no matter how deep the cursor sits.
	StageOperator string

	// IsCollectionSymbol is set when the cursor is the property token
	// directly naming a collection (immediately after "db.").
	IsCollectionSymbol bool

	// IsStreamProcessorSymbol is the analogous flag for "sp.".
	IsStreamProcessorSymbol bool

	// IsUseCallExpression is set when the cursor is inside the argument of
	// a use() call.
	IsUseCallExpression bool

	// IsGlobalSymbol is set when the cursor is a bare top-level identifier.
	IsGlobalSymbol bool

	// IsDbSymbol is set when the member access under the cursor is rooted
	// at the db handle.
	IsDbSymbol bool

	// IsSpSymbol is the analogous flag for the sp handle.
	IsSpSymbol bool

	// IsCollectionName is set when the cursor is the token naming a
	// collection in any of the three accessor forms (property access,
	// computed string access, getCollection argument).
	IsCollectionName bool

	// IsStreamProcessorName is the analogous flag for sp accessor forms.
	IsStreamProcessorName bool

	// IsAggregationCursor is set when the member access containing the
	// cursor chains off an aggregate() call.
	IsAggregationCursor bool

	// IsFindCursor is set when the member access containing the cursor
	// chains off a find() call.
	IsFindCursor bool
}

// Namespace reduces the state to its namespace view.
func (s CompletionState) Namespace() NamespaceState {
	return NamespaceState{
		DatabaseName:   s.DatabaseName,
		CollectionName: s.CollectionName,
	}
}

// NamespaceState is the reduced (database, collection) view of a cursor
// context, for callers that only care about namespace.
type NamespaceState struct {
	DatabaseName   string
	CollectionName string
}

// FieldContext classifies the call a field reference appears under.
type FieldContext string

// Field context values.
const (
	FieldContextFind      FieldContext = "find"
	FieldContextAggregate FieldContext = "aggregate"
	FieldContextUpdate    FieldContext = "update"
	FieldContextOther     FieldContext = "other"
)

// OperatorContext classifies where a $-prefixed key appears.
type OperatorContext string

// Operator context values.
const (
	OperatorContextStage       OperatorContext = "stage"
	OperatorContextQuery       OperatorContext = "query"
	OperatorContextAggregation OperatorContext = "aggregation"
	OperatorContextOther       OperatorContext = "other"
)

// MethodTarget classifies the receiver of an invoked shell method.
type MethodTarget string

// Method target values.
const (
	MethodTargetDatabase   MethodTarget = "db"
	MethodTargetCollection MethodTarget = "collection"
	MethodTargetCursor     MethodTarget = "cursor"
	MethodTargetOther      MethodTarget = "other"
)

// CollectionReference records one collection access.
type CollectionReference struct {
	CollectionName string
	DatabaseName   string
	Span           Span
}

// FieldReference records one document field key, with the namespace context
// in force where it appeared.
type FieldReference struct {
	FieldName      string
	CollectionName string
	DatabaseName   string
	Span           Span
	Context        FieldContext
}

// OperatorReference records one $-prefixed object key.
type OperatorReference struct {
	Operator string
	Span     Span
	Context  OperatorContext
}

// MethodReference records one invoked shell method.
type MethodReference struct {
	Method string
	Target MethodTarget
	Span   Span
}

// DiagnosticReferences is the whole-document inventory produced by Extract.
type DiagnosticReferences struct {
	Collections []CollectionReference
	Fields      []FieldReference
	Operators   []OperatorReference
	Methods     []MethodReference

	// DatabaseName is the argument of the last use() call in document
	// order, if any.
	DatabaseName string
}
