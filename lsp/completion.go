package lsp

import (
	"context"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	mongolsp "github.com/Aldin-SXR/mongodb-lsp"
	"github.com/Aldin-SXR/mongodb-lsp/analysis"
)

// Sort-text buckets. Live schema data ranks above static catalog entries.
const (
	rankField    = "1_"
	rankName     = "1_"
	rankOperator = "2_"
	rankMethod   = "3_"
)

// Completion handles textDocument/completion requests.
func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	s.logger.Debug("Completion",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil //nolint:nilnil
	}

	pos := positionFromLSP(params.Position)
	state := analysis.Resolve(doc.Content, pos)

	s.logger.Debug("Completion context",
		zap.String("database", state.DatabaseName),
		zap.String("collection", state.CollectionName),
		zap.String("stage", state.StageOperator),
		zap.Bool("objectKey", state.IsObjectKey))

	items := s.completionItems(ctx, state)

	// Filter by the partially typed word, if any.
	line := lineAt(doc.Content, pos.Line)
	col := min(pos.Character, len(line))

	if prefix := extractPrefix(line[:col]); prefix != "" {
		items = filterByPrefix(items, prefix)
	}

	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}, nil
}

// completionItems builds the candidate list for a resolved cursor context.
// The checks mirror the CompletionState flags from most to least specific;
// the first matching group wins so a cursor inside a use() argument never
// also sees stage names.
func (s *Server) completionItems(ctx context.Context, state analysis.CompletionState) []protocol.CompletionItem {
	switch {
	case state.IsUseCallExpression:
		return s.completeDatabaseNames(ctx)

	case state.IsCollectionName && !state.IsCollectionSymbol:
		// Quoted naming position: db['...'] or db.getCollection('...').
		return s.completeCollectionNames(ctx, state.DatabaseName)

	case state.IsStreamProcessorName && !state.IsStreamProcessorSymbol:
		return s.completeStreamProcessorNames(ctx)

	case state.IsCollectionSymbol:
		// After "db.": collections plus database methods.
		items := s.completeCollectionNames(ctx, state.DatabaseName)

		return append(items, methodItems(mongolsp.DatabaseMethods, "database method")...)

	case state.IsStreamProcessorSymbol:
		items := s.completeStreamProcessorNames(ctx)

		return append(items, methodItems(mongolsp.StreamProcessorMethods, "stream processor method")...)

	case state.IsAggregationCursor, state.IsFindCursor:
		return methodItems(mongolsp.CursorMethods, "cursor method")

	case state.IsStage:
		return operatorItems(mongolsp.StageOperators, "stage")

	case state.StageOperator != "":
		return s.completeStageBody(ctx, state)

	case state.IsObjectKey:
		items := s.completeFieldNames(ctx, state, "")

		return append(items, operatorItems(mongolsp.QueryOperators, "query operator")...)

	case state.IsTextObjectValue:
		// Dollar-prefixed field paths inside aggregation expressions.
		if state.StageOperator != "" || state.CollectionName != "" {
			return s.completeFieldNames(ctx, state, "$")
		}

		return nil

	case state.IsIdentifierObjectValue:
		return globalItems()

	case state.CollectionName != "":
		// After "db.coll.": collection methods.
		return methodItems(mongolsp.CollectionMethods, "collection method")

	case state.IsGlobalSymbol:
		return globalItems()
	}

	return nil
}

// completeStageBody offers candidates inside a pipeline stage's body:
// operators appropriate to the stage kind, plus field names in key position.
func (s *Server) completeStageBody(ctx context.Context, state analysis.CompletionState) []protocol.CompletionItem {
	var items []protocol.CompletionItem

	if state.IsObjectKey {
		items = s.completeFieldNames(ctx, state, "")
	}

	if mongolsp.AccumulatorStages[state.StageOperator] {
		return append(items, operatorItems(mongolsp.AggregationOperators, "aggregation operator")...)
	}

	return append(items, operatorItems(mongolsp.QueryOperators, "query operator")...)
}

// completeDatabaseNames offers database names from the deployment.
func (s *Server) completeDatabaseNames(ctx context.Context) []protocol.CompletionItem {
	names, ok := s.cache.Databases(ctx)
	if !ok {
		return nil
	}

	return nameItems(names, "database", protocol.CompletionItemKindModule)
}

// completeCollectionNames offers collection names for a database. Unknown
// database context yields nothing rather than guessing.
func (s *Server) completeCollectionNames(ctx context.Context, database string) []protocol.CompletionItem {
	names, ok := s.cache.Collections(ctx, database)
	if !ok {
		return nil
	}

	return nameItems(names, "collection", protocol.CompletionItemKindFolder)
}

// completeStreamProcessorNames offers stream processor names.
func (s *Server) completeStreamProcessorNames(ctx context.Context) []protocol.CompletionItem {
	names, ok := s.cache.StreamProcessors(ctx)
	if !ok {
		return nil
	}

	return nameItems(names, "stream processor", protocol.CompletionItemKindFolder)
}

// completeFieldNames offers sampled field names for the namespace in force
// at the cursor. A prefix of "$" produces field-path candidates.
func (s *Server) completeFieldNames(ctx context.Context, state analysis.CompletionState, prefix string) []protocol.CompletionItem {
	names, ok := s.cache.Fields(ctx, state.DatabaseName, state.CollectionName)
	if !ok {
		return nil
	}

	items := make([]protocol.CompletionItem, 0, len(names))

	for _, name := range names {
		items = append(items, protocol.CompletionItem{
			Label:    prefix + name,
			Kind:     protocol.CompletionItemKindField,
			Detail:   "field",
			SortText: rankField + name,
		})
	}

	return items
}

// nameItems builds completion items for live namespace names.
func nameItems(names []string, detail string, kind protocol.CompletionItemKind) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(names))

	for _, name := range names {
		items = append(items, protocol.CompletionItem{
			Label:    name,
			Kind:     kind,
			Detail:   detail,
			SortText: rankName + name,
		})
	}

	return items
}

// operatorItems builds completion items for a static operator table.
func operatorItems(operators []string, detail string) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(operators))

	for _, op := range operators {
		items = append(items, protocol.CompletionItem{
			Label:    op,
			Kind:     protocol.CompletionItemKindKeyword,
			Detail:   detail,
			SortText: rankOperator + strings.TrimPrefix(op, "$"),
		})
	}

	return items
}

// methodItems builds completion items for a static method table.
func methodItems(methods []string, detail string) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(methods))

	for _, m := range methods {
		items = append(items, protocol.CompletionItem{
			Label:    m,
			Kind:     protocol.CompletionItemKindMethod,
			Detail:   detail,
			SortText: rankMethod + m,
		})
	}

	return items
}

// globalItems offers the shell's top-level symbols.
func globalItems() []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(mongolsp.GlobalSymbols))

	for _, name := range mongolsp.GlobalSymbols {
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   protocol.CompletionItemKindVariable,
			Detail: "shell global",
		})
	}

	return items
}
