package analysis

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	mongolsp "github.com/Aldin-SXR/mongodb-lsp"
)

// Resolve classifies the syntactic context around a cursor position. It
// splices the placeholder token into the text at pos, parses once, and runs
// a battery of independent pattern checks over every node in a single
// pre-order traversal. Checks are not mutually exclusive; several fields can
// be set from different nodes in the same pass.
//
// A failed parse yields the zero CompletionState. Resolve never returns an
// error: users type invalid code constantly and completion has to keep
// working through it.
func Resolve(text string, pos Position) CompletionState {
	var state CompletionState

	parsed, err := mongolsp.Parse(mongolsp.InjectPlaceholder(text, pos.Line, pos.Character))
	if err != nil {
		return state
	}
	defer parsed.Close()

	res := resolver{src: parsed.Source, cursor: pos}

	mongolsp.Walk(parsed.Root, func(n *sitter.Node) bool {
		res.visit(n, &state)

		return true
	})

	return state
}

// ResolveNamespace is the reduced form of Resolve for callers that only need
// the namespace in force at the cursor.
func ResolveNamespace(text string, pos Position) NamespaceState {
	return Resolve(text, pos).Namespace()
}

// resolver carries the read-only inputs of one resolution call. All mutable
// results live in the CompletionState threaded through the checks, so
// concurrent resolutions never share state.
type resolver struct {
	src    []byte
	cursor Position
}

func (r *resolver) visit(n *sitter.Node, state *CompletionState) {
	switch n.Type() {
	case mongolsp.NodeIdentifier:
		r.checkGlobalSymbol(n, state)
	case mongolsp.NodeCallExpression:
		r.checkUseCall(n, state)
		r.checkAccessorCallName(n, state)
		r.checkNamespaceBinding(n, state)
	case mongolsp.NodeMemberExpression:
		r.checkHandleMember(n, state)
		r.checkChainedCursor(n, state)
		r.checkNamespaceBinding(n, state)
	case mongolsp.NodeSubscriptExpression:
		r.checkComputedName(n, state)
		r.checkNamespaceBinding(n, state)
	case mongolsp.NodePair:
		r.checkPair(n, state)
	case mongolsp.NodeShorthandProperty:
		r.checkShorthandKey(n, state)
	case mongolsp.NodeArray:
		r.checkStage(n, state)
	}
}

// checkGlobalSymbol matches a bare top-level identifier under the cursor.
func (r *resolver) checkGlobalSymbol(n *sitter.Node, state *CompletionState) {
	if !mongolsp.ContainsPlaceholder(n, r.src) {
		return
	}

	parent := n.Parent()
	if parent != nil && parent.Type() == mongolsp.NodeExpressionStatement {
		state.IsGlobalSymbol = true
	}
}

// checkUseCall matches use() calls: cursor inside the argument marks the
// context, and completed calls ending at or before the cursor bind the
// database name. Later calls overwrite earlier ones, so the last qualifying
// call in document order wins.
func (r *resolver) checkUseCall(n *sitter.Node, state *CompletionState) {
	callee := n.ChildByFieldName("function")
	if callee == nil || callee.Type() != mongolsp.NodeIdentifier || mongolsp.Text(callee, r.src) != useFunction {
		return
	}

	args := n.ChildByFieldName("arguments")
	if args != nil && mongolsp.ContainsPlaceholder(args, r.src) {
		state.IsUseCallExpression = true

		return
	}

	if !endsAtOrBefore(n, r.cursor) {
		return
	}

	value, ok := mongolsp.StringValue(firstArgument(n), r.src)
	if ok && !strings.Contains(value, mongolsp.Placeholder) {
		state.DatabaseName = value
	}
}

// checkHandleMember matches the property token directly after a handle dot:
// "db.<cursor>" or "sp.<cursor>".
func (r *resolver) checkHandleMember(n *sitter.Node, state *CompletionState) {
	object := n.ChildByFieldName("object")
	property := n.ChildByFieldName("property")

	if object == nil || property == nil || object.Type() != mongolsp.NodeIdentifier {
		return
	}

	if !mongolsp.ContainsPlaceholder(property, r.src) {
		return
	}

	switch mongolsp.Text(object, r.src) {
	case dbHandle:
		state.IsDbSymbol = true
		state.IsCollectionSymbol = true
		state.IsCollectionName = true
	case spHandle:
		state.IsSpSymbol = true
		state.IsStreamProcessorSymbol = true
		state.IsStreamProcessorName = true
	}
}

// checkComputedName matches the quoted name in computed access:
// "db['<cursor>']". Only naming flags are eligible inside the quotes.
func (r *resolver) checkComputedName(n *sitter.Node, state *CompletionState) {
	object := n.ChildByFieldName("object")
	index := n.ChildByFieldName("index")

	if object == nil || object.Type() != mongolsp.NodeIdentifier {
		return
	}

	if !mongolsp.IsStringNode(index) || !mongolsp.ContainsPlaceholder(index, r.src) {
		return
	}

	switch mongolsp.Text(object, r.src) {
	case dbHandle:
		state.IsCollectionName = true
	case spHandle:
		state.IsStreamProcessorName = true
	}
}

// checkAccessorCallName matches the quoted name in an explicit accessor
// call: "db.getCollection('<cursor>')" or "sp.getProcessor('<cursor>')".
func (r *resolver) checkAccessorCallName(n *sitter.Node, state *CompletionState) {
	callee := n.ChildByFieldName("function")
	if callee == nil || callee.Type() != mongolsp.NodeMemberExpression {
		return
	}

	object := callee.ChildByFieldName("object")
	property := callee.ChildByFieldName("property")

	if object == nil || object.Type() != mongolsp.NodeIdentifier {
		return
	}

	arg := firstArgument(n)
	if !mongolsp.IsStringNode(arg) || !mongolsp.ContainsPlaceholder(arg, r.src) {
		return
	}

	switch {
	case mongolsp.Text(object, r.src) == dbHandle && mongolsp.Text(property, r.src) == collectionGetter:
		state.IsCollectionName = true
	case mongolsp.Text(object, r.src) == spHandle && mongolsp.Text(property, r.src) == processorGetter:
		state.IsStreamProcessorName = true
	}
}

// checkNamespaceBinding binds CollectionName or StreamProcessorName when the
// node containing the cursor hangs off a completed accessor: the receiver
// chain is walked down until an accessor over db or sp is found.
func (r *resolver) checkNamespaceBinding(n *sitter.Node, state *CompletionState) {
	if !mongolsp.ContainsPlaceholder(n, r.src) {
		return
	}

	var recv *sitter.Node

	switch n.Type() {
	case mongolsp.NodeMemberExpression, mongolsp.NodeSubscriptExpression:
		recv = n.ChildByFieldName("object")
	case mongolsp.NodeCallExpression:
		callee := n.ChildByFieldName("function")
		if callee == nil || callee.Type() != mongolsp.NodeMemberExpression {
			return
		}

		recv = callee.ChildByFieldName("object")
	default:
		return
	}

	for recv != nil {
		if name, _, ok := accessorName(recv, r.src, dbHandle, collectionGetter); ok {
			if !strings.Contains(name, mongolsp.Placeholder) {
				state.CollectionName = name
			}

			return
		}

		if name, _, ok := accessorName(recv, r.src, spHandle, processorGetter); ok {
			if !strings.Contains(name, mongolsp.Placeholder) {
				state.StreamProcessorName = name
			}

			return
		}

		switch recv.Type() {
		case mongolsp.NodeMemberExpression, mongolsp.NodeSubscriptExpression:
			recv = recv.ChildByFieldName("object")
		case mongolsp.NodeCallExpression:
			callee := recv.ChildByFieldName("function")
			if callee == nil || callee.Type() != mongolsp.NodeMemberExpression {
				return
			}

			recv = callee.ChildByFieldName("object")
		default:
			return
		}
	}
}

// checkChainedCursor matches a member access chained directly off a find()
// or aggregate() call: "db.orders.find().<cursor>".
func (r *resolver) checkChainedCursor(n *sitter.Node, state *CompletionState) {
	property := n.ChildByFieldName("property")
	object := n.ChildByFieldName("object")

	if property == nil || object == nil || object.Type() != mongolsp.NodeCallExpression {
		return
	}

	if !mongolsp.ContainsPlaceholder(property, r.src) {
		return
	}

	switch calleeProperty(object, r.src) {
	case aggregateMethod:
		state.IsAggregationCursor = true
	case findMethod:
		state.IsFindCursor = true
	}
}

// checkPair matches cursor positions inside an object literal property.
// Identifier keys mark key position; string keys never do (a quoted cursor
// is a value context). Values mark identifier or text value position.
func (r *resolver) checkPair(n *sitter.Node, state *CompletionState) {
	key := mongolsp.PairKey(n)
	value := mongolsp.PairValue(n)

	if key != nil && key.Type() == mongolsp.NodePropertyIdentifier && mongolsp.ContainsPlaceholder(key, r.src) {
		state.IsObjectKey = true

		if objectInArray(n.Parent()) {
			state.IsStage = true
		}
	}

	if value == nil {
		return
	}

	switch {
	case value.Type() == mongolsp.NodeIdentifier && mongolsp.ContainsPlaceholder(value, r.src):
		state.IsIdentifierObjectValue = true
	case mongolsp.IsStringNode(value) && mongolsp.ContainsPlaceholder(value, r.src):
		state.IsTextObjectValue = true
	}
}

// checkShorthandKey matches the bare-identifier key a user has typed into an
// object with no value yet: "{ <cursor> }".
func (r *resolver) checkShorthandKey(n *sitter.Node, state *CompletionState) {
	if !mongolsp.ContainsPlaceholder(n, r.src) {
		return
	}

	state.IsObjectKey = true

	if objectInArray(n.Parent()) {
		state.IsStage = true
	}
}

// checkStage resolves the enclosing stage name when the cursor is nested
// inside a stage's body. The recorded operator is the stage object's own
// property key, not the innermost one, and the scan is scoped to the single
// stage element containing the cursor so sibling stages can never leak.
// With nested pipelines (e.g. $lookup sub-pipelines) the innermost pipeline
// array wins, because deeper arrays are visited later.
func (r *resolver) checkStage(arr *sitter.Node, state *CompletionState) {
	if !mongolsp.ContainsPlaceholder(arr, r.src) {
		return
	}

	for i := 0; i < int(arr.NamedChildCount()); i++ {
		elem := arr.NamedChild(i)
		if elem.Type() != mongolsp.NodeObject || !mongolsp.ContainsPlaceholder(elem, r.src) {
			continue
		}

		for j := 0; j < int(elem.NamedChildCount()); j++ {
			pair := elem.NamedChild(j)
			if pair.Type() != mongolsp.NodePair {
				continue
			}

			value := mongolsp.PairValue(pair)
			if value == nil || !placeholderInNestedObject(value, r.src) {
				continue
			}

			name, ok := mongolsp.PropertyName(mongolsp.PairKey(pair), r.src)
			if ok && !strings.Contains(name, mongolsp.Placeholder) {
				state.StageOperator = name
			}
		}
	}
}

// placeholderInNestedObject reports whether the placeholder sits inside an
// object literal within (or equal to) the given value subtree.
func placeholderInNestedObject(value *sitter.Node, src []byte) bool {
	found := false

	mongolsp.Walk(value, func(n *sitter.Node) bool {
		if found {
			return false
		}

		if n.Type() == mongolsp.NodeObject && mongolsp.ContainsPlaceholder(n, src) {
			found = true

			return false
		}

		return true
	})

	return found
}

// objectInArray reports whether node is an object literal sitting directly
// inside an array literal.
func objectInArray(node *sitter.Node) bool {
	if node == nil || node.Type() != mongolsp.NodeObject {
		return false
	}

	parent := node.Parent()

	return parent != nil && parent.Type() == mongolsp.NodeArray
}
