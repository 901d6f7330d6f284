package lsp

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	mongolsp "github.com/Aldin-SXR/mongodb-lsp"
)

// Hover handles textDocument/hover requests. Operators and shell methods
// hover to a short description with a link into the MongoDB manual.
func (s *Server) Hover(_ context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	s.logger.Debug("Hover",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil //nolint:nilnil
	}

	pos := positionFromLSP(params.Position)
	line := lineAt(doc.Content, pos.Line)

	word, startCol, endCol := wordAt(line, pos.Character)
	if word == "" {
		return nil, nil //nolint:nilnil
	}

	content := hoverContent(word)
	if content == "" {
		return nil, nil //nolint:nilnil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: content,
		},
		Range: &protocol.Range{
			Start: protocol.Position{Line: params.Position.Line, Character: uint32(startCol)}, //nolint:gosec // G115: small column numbers
			End:   protocol.Position{Line: params.Position.Line, Character: uint32(endCol)},   //nolint:gosec // G115: small column numbers
		},
	}, nil
}

// hoverContent generates hover markdown for a word under the cursor.
func hoverContent(word string) string {
	switch {
	case mongolsp.IsStageOperator(word):
		return operatorHover(word, "Aggregation pipeline stage", "operator/aggregation")
	case mongolsp.IsQueryOperator(word):
		return operatorHover(word, "Query operator", "operator/query")
	case mongolsp.IsAggregationOperator(word):
		return operatorHover(word, "Aggregation expression operator", "operator/aggregation")
	case mongolsp.IsCollectionMethod(word):
		return methodHover(word, "Collection method", "db.collection."+word)
	case mongolsp.IsDatabaseMethod(word):
		return methodHover(word, "Database method", "db."+word)
	case mongolsp.IsCursorMethod(word):
		return methodHover(word, "Cursor method", "cursor."+word)
	default:
		return ""
	}
}

// operatorHover links an operator to its page in the MongoDB manual.
func operatorHover(op, kind, section string) string {
	slug := strings.TrimPrefix(op, "$")

	return fmt.Sprintf("**`%s`** — %s\n\n[MongoDB manual](https://www.mongodb.com/docs/manual/reference/%s/%s/)",
		op, kind, section, slug)
}

// methodHover links a shell method to its page in the MongoDB manual.
func methodHover(method, kind, slug string) string {
	return fmt.Sprintf("**`%s()`** — %s\n\n[MongoDB manual](https://www.mongodb.com/docs/manual/reference/method/%s/)",
		method, kind, slug)
}

// wordAt extracts the identifier (with a leading $, if present) covering a
// column, returning the word and its half-open column extent. An empty word
// means the column sits on no identifier.
func wordAt(line string, col int) (string, int, int) {
	isWordChar := func(r byte) bool {
		return r == '$' || r == '_' || unicode.IsLetter(rune(r)) || unicode.IsDigit(rune(r))
	}

	if col > len(line) {
		col = len(line)
	}

	start := col
	for start > 0 && isWordChar(line[start-1]) {
		start--
	}

	end := col
	for end < len(line) && isWordChar(line[end]) {
		end++
	}

	if start == end {
		return "", 0, 0
	}

	return line[start:end], start, end
}
