// Package mongolsp provides editor intelligence for MongoDB shell scripts:
// a tolerant parsing frontend, cursor-context resolution, reference
// extraction, and the static catalog of stages, operators, and shell methods.
package mongolsp

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Grammar node kinds used by the analysis passes.
const (
	NodeProgram              = "program"
	NodeExpressionStatement  = "expression_statement"
	NodeCallExpression       = "call_expression"
	NodeMemberExpression     = "member_expression"
	NodeSubscriptExpression  = "subscript_expression"
	NodeIdentifier           = "identifier"
	NodePropertyIdentifier   = "property_identifier"
	NodeShorthandProperty    = "shorthand_property_identifier"
	NodeString               = "string"
	NodeStringFragment       = "string_fragment"
	NodeEscapeSequence       = "escape_sequence"
	NodeTemplateString       = "template_string"
	NodeTemplateSubstitution = "template_substitution"
	NodeObject               = "object"
	NodePair                 = "pair"
	NodeArray                = "array"
	NodeArguments            = "arguments"
	NodeError                = "ERROR"
)

// Walk traverses the tree rooted at node in pre-order, visiting every node
// exactly once. The visit function runs on entry only; returning false skips
// the node's children.
func Walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visit(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		Walk(node.Child(i), visit)
	}
}

// Text returns the source text covered by a node.
func Text(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}

	return n.Content(src)
}

// ContainsPlaceholder reports whether a node's text includes the sentinel.
func ContainsPlaceholder(n *sitter.Node, src []byte) bool {
	return n != nil && strings.Contains(Text(n, src), Placeholder)
}

// IsStringNode reports whether a node is a string or template literal.
func IsStringNode(n *sitter.Node) bool {
	if n == nil {
		return false
	}

	t := n.Type()

	return t == NodeString || t == NodeTemplateString
}

// StringValue returns the unquoted content of a string literal or of a
// template literal with a single quasi (no substitutions). The second return
// is false for any other node, including templates with substitutions.
func StringValue(n *sitter.Node, src []byte) (string, bool) {
	if n == nil {
		return "", false
	}

	switch n.Type() {
	case NodeString, NodeTemplateString:
		var b strings.Builder

		sawFragment := false

		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)

			switch child.Type() {
			case NodeTemplateSubstitution:
				return "", false
			case NodeStringFragment, NodeEscapeSequence:
				sawFragment = true

				b.WriteString(Text(child, src))
			}
		}

		if sawFragment {
			return b.String(), true
		}

		// Empty literal, or a grammar version without fragment nodes.
		raw := Text(n, src)
		if len(raw) >= 2 {
			return raw[1 : len(raw)-1], true
		}

		return "", true
	default:
		return "", false
	}
}

// PropertyName returns the name of an object-property key node. Identifier
// keys yield their text; string keys yield their unquoted value. Computed
// keys and other shapes yield false.
func PropertyName(key *sitter.Node, src []byte) (string, bool) {
	if key == nil {
		return "", false
	}

	switch key.Type() {
	case NodePropertyIdentifier, NodeShorthandProperty, NodeIdentifier:
		return Text(key, src), true
	case NodeString, NodeTemplateString:
		return StringValue(key, src)
	default:
		return "", false
	}
}

// PairKey returns the key node of a pair, or nil.
func PairKey(pair *sitter.Node) *sitter.Node {
	if pair == nil || pair.Type() != NodePair {
		return nil
	}

	return pair.ChildByFieldName("key")
}

// PairValue returns the value node of a pair, or nil.
func PairValue(pair *sitter.Node) *sitter.Node {
	if pair == nil || pair.Type() != NodePair {
		return nil
	}

	return pair.ChildByFieldName("value")
}

// FirstErrorNode returns the shallowest error or missing node in the tree,
// or nil when the tree is clean. Used to anchor syntax diagnostics.
func FirstErrorNode(root *sitter.Node) *sitter.Node {
	if root == nil || !root.HasError() {
		return nil
	}

	var found *sitter.Node

	Walk(root, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}

		if n.Type() == NodeError || n.IsMissing() {
			found = n

			return false
		}

		// Only descend into subtrees that actually carry the error.
		return n.HasError()
	})

	return found
}
