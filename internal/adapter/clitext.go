package adapter

import (
	"fmt"
	"strings"

	"github.com/oxhq/typecore/internal/service"
	"github.com/oxhq/typecore/internal/types"
)

// RenderResolutionText renders a TypeResolution as the one-line plain-text
// form the CLI prints for `typecore resolve`, grounded on the teacher's
// CLI summary line (cmd/morfx's `%s: %s` result printer) generalized from
// "match summary" to "type summary".
func RenderResolutionText(r types.TypeResolution) string {
	conf := ""
	if r.Certainty.Kind == types.CertaintyInferred {
		conf = fmt.Sprintf(" (%.2f)", r.Certainty.Confidence)
	}
	return fmt.Sprintf("%s%s [%s/%s]", service.RenderTypeText(r), conf, r.Certainty.Kind, r.Source)
}

// RenderHoverText renders a hover result as CLI text: type line, blank
// line, documentation (if any).
func RenderHoverText(h service.HoverResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s/%s]\n", h.TypeText, h.Certainty.Kind, h.Source)
	if h.Documentation != "" {
		b.WriteString("\n")
		b.WriteString(h.Documentation)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderCompletionsText renders a completion list as one line per entry:
// "kind\tlabel\ttyperef".
func RenderCompletionsText(items []service.CompletionItem) string {
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", it.Kind, it.Label.ASCII, it.TypeReference.QualifiedName)
	}
	return b.String()
}

// RenderDiagnosticsText renders a diagnostic list one per line:
// "severity code@file:line:col message".
func RenderDiagnosticsText(ds []service.Diagnostic) string {
	var b strings.Builder
	for _, d := range ds {
		fmt.Fprintf(&b, "%s %s@%s:%d:%d %s\n",
			d.Severity, d.Code, d.Range.File, d.Range.StartLine, d.Range.StartCol, d.Message)
	}
	return b.String()
}

// RenderAnalyzeProjectText renders an AnalyzeProjectResult as the CLI's
// `typecore analyze` summary report.
func RenderAnalyzeProjectText(r service.AnalyzeProjectResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "files ok: %d, files failed: %d\n", r.FilesOK, r.FilesFail)
	fmt.Fprintf(&b, "entities: %d, documentation bytes: %d\n",
		r.SummaryStats.TotalEntities, r.SummaryStats.DocumentationBytes)
	if len(r.Diagnostics) > 0 {
		b.WriteString("\ndiagnostics:\n")
		b.WriteString(RenderDiagnosticsText(r.Diagnostics))
	}
	return b.String()
}

// RenderStatisticsText renders a StatisticsPayload as one line per figure,
// for the --diff-against report and for the plain `typecore search --stats`
// summary.
func RenderStatisticsText(s StatisticsPayload) []string {
	lines := []string{
		fmt.Sprintf("total entities: %d", s.TotalEntities),
		fmt.Sprintf("documentation bytes: %d", s.DocumentationBytes),
	}
	for k, v := range s.BySource {
		lines = append(lines, fmt.Sprintf("source %s: %d", k, v))
	}
	for k, v := range s.ByCategory {
		lines = append(lines, fmt.Sprintf("category %s: %d", k, v))
	}
	return lines
}
