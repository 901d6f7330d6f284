package analysis

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// nodeSpan converts a node's tree-sitter points to a Span. Tree-sitter rows
// and columns are already zero-based, matching the Position convention.
func nodeSpan(n *sitter.Node) Span {
	start := n.StartPoint()
	end := n.EndPoint()

	return Span{
		Start: Position{Line: int(start.Row), Character: int(start.Column)},
		End:   Position{Line: int(end.Row), Character: int(end.Column)},
	}
}

// endsAtOrBefore reports whether the node ends lexically at or before pos.
// Used for namespace attribution: a use() call later in the document must
// not bind the database name for an earlier cursor.
func endsAtOrBefore(n *sitter.Node, pos Position) bool {
	end := n.EndPoint()

	if int(end.Row) != pos.Line {
		return int(end.Row) < pos.Line
	}

	return int(end.Column) <= pos.Character
}
