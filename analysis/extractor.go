package analysis

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	mongolsp "github.com/Aldin-SXR/mongodb-lsp"
)

// Extract walks the whole document and inventories every collection, field,
// operator, and method reference, together with the namespace context in
// force where each appeared. The text is parsed as-is, with no placeholder:
// extraction describes what the user has actually written.
//
// A document that does not parse cleanly yields an empty inventory; partial
// results would produce misleading diagnostics mid-keystroke.
func Extract(text string) DiagnosticReferences {
	var refs DiagnosticReferences

	parsed, err := mongolsp.Parse(text)
	if err != nil {
		return refs
	}
	defer parsed.Close()

	if parsed.HasError() {
		return refs
	}

	st := extractState{src: parsed.Source, refs: &refs}
	st.visit(parsed.Root)

	return refs
}

// extractState is the accumulator threaded through one extraction. The
// namespace variables track the most recent use() call and collection access
// in traversal order; reference records capture whatever they hold at the
// moment the reference node is visited. This is source order, not lexical
// scope, and deliberately not control-flow aware.
type extractState struct {
	src  []byte
	refs *DiagnosticReferences

	currentDatabase   string
	currentCollection string
}

func (st *extractState) visit(n *sitter.Node) {
	st.enter(n)

	for i := 0; i < int(n.ChildCount()); i++ {
		st.visit(n.Child(i))
	}
}

func (st *extractState) enter(n *sitter.Node) {
	switch n.Type() {
	case mongolsp.NodeCallExpression:
		st.enterCall(n)
	case mongolsp.NodeMemberExpression, mongolsp.NodeSubscriptExpression:
		st.enterAccessor(n)
	case mongolsp.NodePair:
		st.enterPair(n)
	}
}

// enterCall handles use() namespace switches, explicit getCollection
// accessors, and method references. Methods fire only here: a member access
// that is never invoked is not a method reference.
func (st *extractState) enterCall(n *sitter.Node) {
	callee := n.ChildByFieldName("function")
	if callee == nil {
		return
	}

	if callee.Type() == mongolsp.NodeIdentifier && mongolsp.Text(callee, st.src) == useFunction {
		if value, ok := mongolsp.StringValue(firstArgument(n), st.src); ok {
			st.currentDatabase = value
			st.refs.DatabaseName = value
		}

		return
	}

	// db.getCollection('x') both names a collection and invokes a db method.
	if name, nameNode, ok := accessorName(n, st.src, dbHandle, collectionGetter); ok {
		st.recordCollection(name, nameNode)
	}

	if callee.Type() != mongolsp.NodeMemberExpression {
		return
	}

	property := callee.ChildByFieldName("property")
	if property == nil || property.Type() != mongolsp.NodePropertyIdentifier {
		return
	}

	st.refs.Methods = append(st.refs.Methods, MethodReference{
		Method: mongolsp.Text(property, st.src),
		Target: st.methodTarget(callee.ChildByFieldName("object")),
		Span:   nodeSpan(property),
	})
}

// methodTarget classifies the receiver of an invoked method.
func (st *extractState) methodTarget(recv *sitter.Node) MethodTarget {
	if recv == nil {
		return MethodTargetOther
	}

	if recv.Type() == mongolsp.NodeIdentifier && mongolsp.Text(recv, st.src) == dbHandle {
		return MethodTargetDatabase
	}

	if _, _, ok := accessorName(recv, st.src, dbHandle, collectionGetter); ok {
		return MethodTargetCollection
	}

	if recv.Type() == mongolsp.NodeCallExpression {
		switch calleeProperty(recv, st.src) {
		case findMethod, aggregateMethod:
			return MethodTargetCursor
		}
	}

	return MethodTargetOther
}

// enterAccessor records collection accesses in the db.name and db['name']
// forms and updates the traversal namespace. A member expression that is the
// callee of a call is a method invocation, which accessorName rejects.
func (st *extractState) enterAccessor(n *sitter.Node) {
	if name, nameNode, ok := accessorName(n, st.src, dbHandle, collectionGetter); ok {
		st.recordCollection(name, nameNode)
	}
}

func (st *extractState) recordCollection(name string, nameNode *sitter.Node) {
	st.currentCollection = name

	st.refs.Collections = append(st.refs.Collections, CollectionReference{
		CollectionName: name,
		DatabaseName:   st.currentDatabase,
		Span:           nodeSpan(nameNode),
	})
}

// enterPair records one operator or field reference per object key.
func (st *extractState) enterPair(n *sitter.Node) {
	key := mongolsp.PairKey(n)

	name, ok := mongolsp.PropertyName(key, st.src)
	if !ok || name == "" {
		return
	}

	if strings.HasPrefix(name, "$") {
		st.refs.Operators = append(st.refs.Operators, OperatorReference{
			Operator: name,
			Span:     nodeSpan(key),
			Context:  classifyOperator(n, st.src),
		})

		return
	}

	st.refs.Fields = append(st.refs.Fields, FieldReference{
		FieldName:      name,
		CollectionName: st.currentCollection,
		DatabaseName:   st.currentDatabase,
		Span:           nodeSpan(key),
		Context:        classifyField(n, st.src),
	})
}

// classifyOperator determines an operator key's context from its nesting
// depth relative to the nearest enclosing array: object-literal boundaries
// are counted from the key up to (but not including) that array. Depth one
// is a pipeline stage. Deeper keys are aggregation operators when any
// enclosing property on the way is an accumulator-bearing stage, and query
// operators otherwise. Keys outside any array are query operators when they
// sit under an object property at all, and unclassified otherwise.
func classifyOperator(pair *sitter.Node, src []byte) OperatorContext {
	depth := 0
	underAccumulator := false
	hasEnclosingProperty := false

	for a := pair.Parent(); a != nil; a = a.Parent() {
		switch a.Type() {
		case mongolsp.NodeObject:
			depth++
		case mongolsp.NodeArray:
			if depth == 1 {
				return OperatorContextStage
			}

			if underAccumulator {
				return OperatorContextAggregation
			}

			return OperatorContextQuery
		case mongolsp.NodePair:
			hasEnclosingProperty = true

			if name, ok := mongolsp.PropertyName(mongolsp.PairKey(a), src); ok && mongolsp.AccumulatorStages[name] {
				underAccumulator = true
			}
		}
	}

	if hasEnclosingProperty {
		return OperatorContextQuery
	}

	return OperatorContextOther
}

// classifyField determines a field key's context from the nearest enclosing
// call expression's method name.
func classifyField(pair *sitter.Node, src []byte) FieldContext {
	for a := pair.Parent(); a != nil; a = a.Parent() {
		if a.Type() != mongolsp.NodeCallExpression {
			continue
		}

		switch calleeProperty(a, src) {
		case findMethod, findOneMethod:
			return FieldContextFind
		case aggregateMethod:
			return FieldContextAggregate
		case updateMethod, updateOneMethod, updateManyMethod, replaceOneMethod:
			return FieldContextUpdate
		default:
			return FieldContextOther
		}
	}

	return FieldContextOther
}
