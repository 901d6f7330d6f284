package lsp

import (
	"context"
	"fmt"

	"github.com/hbollon/go-edlib"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	mongolsp "github.com/Aldin-SXR/mongodb-lsp"
	"github.com/Aldin-SXR/mongodb-lsp/analysis"
)

// Diagnostic codes, stable across releases so clients can filter on them.
const (
	CodeInvalidSyntax        = "mongodb-invalid-interactive-syntax"
	CodeCollectionNotFound   = "mongodb-collection-not-found"
	CodeFieldNotFound        = "mongodb-field-not-found"
	CodeInvalidOperator      = "mongodb-invalid-operator"
	CodeInvalidStageOperator = "mongodb-invalid-stage-operator"
	CodeInvalidQueryOperator = "mongodb-invalid-query-operator"
	CodeUnknownMethod        = "mongodb-unknown-method"
)

const diagnosticSource = "mongodb-lsp"

// suggestionThreshold is the minimum Jaro-Winkler similarity before a
// "did you mean" hint is attached to a diagnostic.
const suggestionThreshold = 0.84

// SetDiagnosticsEnabled toggles diagnostic publication. Disabling clears
// nothing retroactively; the next publish sends an empty list per document.
func (s *Server) SetDiagnosticsEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagnosticsDisabled = !enabled
}

// publishDiagnostics analyzes a document snapshot and pushes the resulting
// diagnostics to the client.
func (s *Server) publishDiagnostics(ctx context.Context, uri protocol.DocumentURI, version int32, content string) {
	s.mu.RLock()
	disabled := s.diagnosticsDisabled
	s.mu.RUnlock()

	var diagnostics []protocol.Diagnostic
	if !disabled {
		diagnostics = s.computeDiagnostics(ctx, content)
	}

	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}

	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     uint32(version), //nolint:gosec // LSP version numbers are always non-negative
		Diagnostics: diagnostics,
	})
	if err != nil {
		s.logger.Error("Failed to publish diagnostics", zap.Error(err))
	}
}

// computeDiagnostics runs the full validation pass over one document. A
// script that does not parse yields a single syntax diagnostic; reference
// validation only runs on clean parses.
func (s *Server) computeDiagnostics(ctx context.Context, content string) []protocol.Diagnostic {
	result, err := mongolsp.Parse(content)
	if err != nil {
		s.logger.Warn("Parse failed", zap.Error(err))

		return nil
	}
	defer result.Close()

	if result.HasError() {
		return []protocol.Diagnostic{syntaxDiagnostic(result)}
	}

	refs := analysis.Extract(content)

	var diagnostics []protocol.Diagnostic
	diagnostics = append(diagnostics, s.collectionDiagnostics(ctx, refs)...)
	diagnostics = append(diagnostics, s.fieldDiagnostics(ctx, refs)...)
	diagnostics = append(diagnostics, operatorDiagnostics(refs)...)
	diagnostics = append(diagnostics, methodDiagnostics(refs)...)

	return diagnostics
}

// syntaxDiagnostic anchors the parse failure at the first error node, or at
// the start of the document when the parser cannot localize it.
func syntaxDiagnostic(result *mongolsp.ParseResult) protocol.Diagnostic {
	var rng protocol.Range
	if errNode := mongolsp.FirstErrorNode(result.Root); errNode != nil {
		rng = nodeRange(errNode)
	}

	return protocol.Diagnostic{
		Range:    rng,
		Severity: protocol.DiagnosticSeverityError,
		Code:     CodeInvalidSyntax,
		Source:   diagnosticSource,
		Message:  "Script cannot be parsed as MongoDB shell syntax.",
	}
}

// collectionDiagnostics flags accesses to collections the deployment does
// not have. Unknown deployment state suppresses the check entirely.
func (s *Server) collectionDiagnostics(ctx context.Context, refs analysis.DiagnosticReferences) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic

	for _, ref := range refs.Collections {
		known, ok := s.cache.Collections(ctx, ref.DatabaseName)
		if !ok || containsName(known, ref.CollectionName) {
			continue
		}

		msg := fmt.Sprintf("Collection %q does not exist.", ref.CollectionName)
		if hint := closestName(ref.CollectionName, known); hint != "" {
			msg = fmt.Sprintf("Collection %q does not exist. Did you mean %q?", ref.CollectionName, hint)
		}

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    spanToRange(ref.Span),
			Severity: protocol.DiagnosticSeverityWarning,
			Code:     CodeCollectionNotFound,
			Source:   diagnosticSource,
			Message:  msg,
		})
	}

	return diagnostics
}

// fieldDiagnostics flags field keys absent from the sampled schema of the
// namespace they are used against. Only find and update contexts are
// checked: aggregation stages like $group and $project define output fields
// under their keys, so validating those against the schema would flag
// perfectly valid pipelines. References without a resolved collection are
// skipped too; there is no schema to check them against.
func (s *Server) fieldDiagnostics(ctx context.Context, refs analysis.DiagnosticReferences) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic

	for _, ref := range refs.Fields {
		if ref.CollectionName == "" {
			continue
		}

		if ref.Context != analysis.FieldContextFind && ref.Context != analysis.FieldContextUpdate {
			continue
		}

		known, ok := s.cache.Fields(ctx, ref.DatabaseName, ref.CollectionName)
		if !ok || containsName(known, ref.FieldName) {
			continue
		}

		msg := fmt.Sprintf("Field %q was not found in collection %q.", ref.FieldName, ref.CollectionName)
		if hint := closestName(ref.FieldName, known); hint != "" {
			msg = fmt.Sprintf("Field %q was not found in collection %q. Did you mean %q?",
				ref.FieldName, ref.CollectionName, hint)
		}

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    spanToRange(ref.Span),
			Severity: protocol.DiagnosticSeverityWarning,
			Code:     CodeFieldNotFound,
			Source:   diagnosticSource,
			Message:  msg,
		})
	}

	return diagnostics
}

// operatorDiagnostics validates every $-prefixed key against the operator
// table for the position it appears in.
func operatorDiagnostics(refs analysis.DiagnosticReferences) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic

	for _, ref := range refs.Operators {
		code, candidates := operatorRule(ref.Context)
		if containsName(candidates, ref.Operator) {
			continue
		}

		msg := fmt.Sprintf("Unknown operator %q.", ref.Operator)
		if hint := closestName(ref.Operator, candidates); hint != "" {
			msg = fmt.Sprintf("Unknown operator %q. Did you mean %q?", ref.Operator, hint)
		}

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    spanToRange(ref.Span),
			Severity: protocol.DiagnosticSeverityError,
			Code:     code,
			Source:   diagnosticSource,
			Message:  msg,
		})
	}

	return diagnostics
}

// operatorRule maps an operator position to its diagnostic code and the
// table of names valid there.
func operatorRule(context analysis.OperatorContext) (string, []string) {
	switch context {
	case analysis.OperatorContextStage:
		return CodeInvalidStageOperator, mongolsp.StageOperators
	case analysis.OperatorContextQuery:
		return CodeInvalidQueryOperator, mongolsp.QueryOperators
	case analysis.OperatorContextAggregation:
		return CodeInvalidOperator, mongolsp.AggregationOperators
	default:
		return CodeInvalidOperator, allOperators()
	}
}

// allOperators is the union of every operator table, used when the position
// of a $-key cannot be classified more precisely.
func allOperators() []string {
	all := make([]string, 0, len(mongolsp.StageOperators)+len(mongolsp.QueryOperators)+len(mongolsp.AggregationOperators))
	all = append(all, mongolsp.StageOperators...)
	all = append(all, mongolsp.QueryOperators...)
	all = append(all, mongolsp.AggregationOperators...)

	return all
}

// methodDiagnostics validates invoked shell methods against the method
// table for their receiver. Receivers that cannot be classified are not
// checked: user helpers and driver objects are out of scope.
func methodDiagnostics(refs analysis.DiagnosticReferences) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic

	for _, ref := range refs.Methods {
		var candidates []string

		switch ref.Target {
		case analysis.MethodTargetDatabase:
			candidates = mongolsp.DatabaseMethods
		case analysis.MethodTargetCollection:
			candidates = mongolsp.CollectionMethods
		case analysis.MethodTargetCursor:
			candidates = mongolsp.CursorMethods
		default:
			continue
		}

		if containsName(candidates, ref.Method) {
			continue
		}

		msg := fmt.Sprintf("Unknown method %q.", ref.Method)
		if hint := closestName(ref.Method, candidates); hint != "" {
			msg = fmt.Sprintf("Unknown method %q. Did you mean %q?", ref.Method, hint)
		}

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    spanToRange(ref.Span),
			Severity: protocol.DiagnosticSeverityError,
			Code:     CodeUnknownMethod,
			Source:   diagnosticSource,
			Message:  msg,
		})
	}

	return diagnostics
}

// closestName returns the candidate most similar to name, or "" when none
// is close enough to suggest.
func closestName(name string, candidates []string) string {
	var (
		best      string
		bestScore float32
	)

	for _, candidate := range candidates {
		score, err := edlib.StringsSimilarity(name, candidate, edlib.JaroWinkler)
		if err != nil {
			continue
		}

		if score > bestScore {
			best, bestScore = candidate, score
		}
	}

	if bestScore < suggestionThreshold {
		return ""
	}

	return best
}
