package mongolsp

import (
	"context"
	"errors"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// Placeholder is the sentinel token spliced into source text at the cursor
// position before parsing. It turns "find the node under the cursor" into
// "find the node whose text contains Placeholder", which works even while the
// surrounding statement is incomplete. The marker is alphanumeric so it fuses
// with a partially typed identifier instead of splitting it.
const Placeholder = "TRIGGER_CHARACTER"

// ErrEmptyParse is returned when the parser produces no syntax tree.
var ErrEmptyParse = errors.New("parser produced no syntax tree")

// ParseResult holds a parsed shell script. Close must be called once the tree
// is no longer needed; all nodes become invalid afterwards.
type ParseResult struct {
	// Source is the exact text that was parsed.
	Source []byte

	// Root is the root node of the syntax tree.
	Root *sitter.Node

	tree *sitter.Tree
}

// Parse parses MongoDB shell script text. The grammar is the JavaScript
// dialect the shell accepts: template literals, computed member access,
// arrow and async function bodies, top-level await, and ES module syntax.
//
// Each call creates its own parser instance, so Parse is safe for concurrent
// use. The returned tree may contain error nodes for invalid regions; callers
// that need a clean tree check HasError.
func Parse(text string) (*ParseResult, error) {
	src := []byte(text)

	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, err
	}

	root := tree.RootNode()
	if root == nil {
		tree.Close()

		return nil, ErrEmptyParse
	}

	return &ParseResult{
		Source: src,
		Root:   root,
		tree:   tree,
	}, nil
}

// Close releases the syntax tree.
func (r *ParseResult) Close() {
	if r.tree != nil {
		r.tree.Close()
		r.tree = nil
	}
}

// HasError reports whether the tree contains any syntax errors.
func (r *ParseResult) HasError() bool {
	return r.Root.HasError()
}

// InjectPlaceholder splices Placeholder into text at a zero-based
// line/character position. Positions past the end of a line (or the document)
// clamp to the nearest valid offset, matching how editors report cursor
// positions at line ends.
func InjectPlaceholder(text string, line, character int) string {
	lines := strings.Split(text, "\n")
	if line < 0 {
		line = 0
	}

	if line >= len(lines) {
		return text + Placeholder
	}

	cur := lines[line]

	col := character
	if col < 0 {
		col = 0
	}

	if col > len(cur) {
		col = len(cur)
	}

	lines[line] = cur[:col] + Placeholder + cur[col:]

	return strings.Join(lines, "\n")
}
