package analysis

import (
	sitter "github.com/smacker/go-tree-sitter"

	mongolsp "github.com/Aldin-SXR/mongodb-lsp"
)

// Shell handles and their explicit accessor methods.
const (
	dbHandle         = "db"
	spHandle         = "sp"
	useFunction      = "use"
	collectionGetter = "getCollection"
	processorGetter  = "getProcessor"
	aggregateMethod  = "aggregate"
	findMethod       = "find"
	findOneMethod    = "findOne"
	updateMethod     = "update"
	updateOneMethod  = "updateOne"
	updateManyMethod = "updateMany"
	replaceOneMethod = "replaceOne"
)

// accessorName inspects a node for one of the three equivalent accessor
// forms over the given root handle:
//
//	root.name             property access
//	root['name']          computed string access
//	root.getter('name')   explicit accessor call (string or single-quasi template)
//
// It returns the resolved name and the node that carries it. A member
// expression acting as the callee of a call is not an accessor itself (that
// is a method invocation on the handle), so it is rejected.
func accessorName(n *sitter.Node, src []byte, root, getter string) (string, *sitter.Node, bool) {
	if n == nil {
		return "", nil, false
	}

	switch n.Type() {
	case mongolsp.NodeMemberExpression:
		if isCallee(n) {
			return "", nil, false
		}

		object := n.ChildByFieldName("object")
		property := n.ChildByFieldName("property")

		if object == nil || property == nil {
			return "", nil, false
		}

		if object.Type() != mongolsp.NodeIdentifier || mongolsp.Text(object, src) != root {
			return "", nil, false
		}

		return mongolsp.Text(property, src), property, true

	case mongolsp.NodeSubscriptExpression:
		object := n.ChildByFieldName("object")
		index := n.ChildByFieldName("index")

		if object == nil || object.Type() != mongolsp.NodeIdentifier || mongolsp.Text(object, src) != root {
			return "", nil, false
		}

		value, ok := mongolsp.StringValue(index, src)
		if !ok {
			return "", nil, false
		}

		return value, index, true

	case mongolsp.NodeCallExpression:
		callee := n.ChildByFieldName("function")
		if callee == nil || callee.Type() != mongolsp.NodeMemberExpression {
			return "", nil, false
		}

		object := callee.ChildByFieldName("object")
		property := callee.ChildByFieldName("property")

		if object == nil || object.Type() != mongolsp.NodeIdentifier || mongolsp.Text(object, src) != root {
			return "", nil, false
		}

		if property == nil || mongolsp.Text(property, src) != getter {
			return "", nil, false
		}

		arg := firstArgument(n)

		value, ok := mongolsp.StringValue(arg, src)
		if !ok {
			return "", nil, false
		}

		return value, arg, true
	}

	return "", nil, false
}

// isCallee reports whether n is the function of its parent call expression.
func isCallee(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil || parent.Type() != mongolsp.NodeCallExpression {
		return false
	}

	callee := parent.ChildByFieldName("function")

	return callee != nil && callee.Equal(n)
}

// firstArgument returns the first named argument of a call, or nil.
func firstArgument(call *sitter.Node) *sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}

	if args.NamedChildCount() == 0 {
		return nil
	}

	return args.NamedChild(0)
}

// calleeProperty returns the property name of a call's member-expression
// callee, or "" when the callee has another shape.
func calleeProperty(call *sitter.Node, src []byte) string {
	callee := call.ChildByFieldName("function")
	if callee == nil || callee.Type() != mongolsp.NodeMemberExpression {
		return ""
	}

	property := callee.ChildByFieldName("property")

	return mongolsp.Text(property, src)
}
