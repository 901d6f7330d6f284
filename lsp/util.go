package lsp

import (
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/Aldin-SXR/mongodb-lsp/analysis"
)

// uriToPath converts a document URI to a file system path.
func uriToPath(docURI protocol.DocumentURI) string {
	parsed, err := uri.Parse(string(docURI))
	if err != nil || !strings.HasPrefix(string(parsed), "file://") {
		// Fallback: strip file:// prefix
		return strings.TrimPrefix(string(docURI), "file://")
	}

	return parsed.Filename()
}

// spanToRange converts an analysis.Span to an LSP protocol.Range. Both are
// zero-based with half-open ends, so this is a plain field mapping.
func spanToRange(span analysis.Span) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      uint32(max(0, span.Start.Line)),      //nolint:gosec // G115: small line numbers
			Character: uint32(max(0, span.Start.Character)), //nolint:gosec // G115: small column numbers
		},
		End: protocol.Position{
			Line:      uint32(max(0, span.End.Line)),      //nolint:gosec // G115: small line numbers
			Character: uint32(max(0, span.End.Character)), //nolint:gosec // G115: small column numbers
		},
	}
}

// nodeRange converts a syntax node's extent to an LSP protocol.Range.
// Tree-sitter points are already zero-based.
func nodeRange(n *sitter.Node) protocol.Range {
	start, end := n.StartPoint(), n.EndPoint()

	return protocol.Range{
		Start: protocol.Position{Line: start.Row, Character: start.Column},
		End:   protocol.Position{Line: end.Row, Character: end.Column},
	}
}

// positionFromLSP converts an LSP position to an analysis.Position.
func positionFromLSP(pos protocol.Position) analysis.Position {
	return analysis.Position{
		Line:      int(pos.Line),
		Character: int(pos.Character),
	}
}

// lineAt returns the text of a zero-based line, or "".
func lineAt(content string, line int) string {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}

	return lines[line]
}

// extractPrefix extracts the identifier prefix being typed before the end of
// text. Dollar signs count as identifier characters so operator prefixes
// like "$ma" filter correctly.
func extractPrefix(text string) string {
	end := len(text)
	start := end

	for i := end - 1; i >= 0; i-- {
		c := rune(text[i])
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '$' {
			start = i
		} else {
			break
		}
	}

	return text[start:end]
}

// filterByPrefix filters completion items by a typed prefix.
func filterByPrefix(items []protocol.CompletionItem, prefix string) []protocol.CompletionItem {
	if prefix == "" {
		return items
	}

	prefix = strings.ToLower(prefix)
	filtered := make([]protocol.CompletionItem, 0, len(items))

	for _, item := range items {
		if strings.HasPrefix(strings.ToLower(item.Label), prefix) {
			filtered = append(filtered, item)
		}
	}

	return filtered
}

// containsName reports whether names includes name.
func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}

	return false
}
