// Package adapter renders the application layer's domain-shaped results
// (internal/service) into the three presentation shapes spec §2 assigns to
// "thin adapters": LSP, HTTP/JSON, and plain CLI text. None of the three
// files in this package own domain logic — they only translate field names
// and value shapes, the teacher's own mcp/tools/*.go thin-handler pattern
// (validate input, delegate, render) pushed one layer further out.
package adapter

import "github.com/oxhq/typecore/internal/service"

// LSPRange mirrors the LSP wire shape for a position range (0-based lines
// and columns, per the LSP spec, hence the -1 from sourceast.Range's
// 1-based fields).
type LSPRange struct {
	StartLine int `json:"startLine"`
	StartCol  int `json:"startCol"`
	EndLine   int `json:"endLine"`
	EndCol    int `json:"endCol"`
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// LSPRelated is one related-location entry of an LSP diagnostic.
type LSPRelated struct {
	Range   LSPRange `json:"range"`
	Message string   `json:"message"`
}

// LSPDiagnostic is the wire shape spec §6.3 describes: severity, range,
// message, code, optional related locations, optional tags.
type LSPDiagnostic struct {
	Severity    string       `json:"severity"`
	SeverityInt int          `json:"severityInt"`
	Range       LSPRange     `json:"range"`
	Message     string       `json:"message"`
	Code        string       `json:"code"`
	Related     []LSPRelated `json:"relatedInformation,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
}

// LSPSeverityInt maps spec's Error|Warning|Info|Hint onto the LSP wire
// integers (1=Error..4=Hint), the same numbering every LSP client expects.
func LSPSeverityInt(s service.Severity) int {
	switch s {
	case service.SeverityError:
		return 1
	case service.SeverityWarning:
		return 2
	case service.SeverityInfo:
		return 3
	default: // Hint
		return 4
	}
}

// RenderDiagnostic converts one internal/service.Diagnostic into the LSP
// wire shape.
func RenderDiagnostic(d service.Diagnostic) LSPDiagnostic {
	out := LSPDiagnostic{
		Severity:    string(d.Severity),
		SeverityInt: LSPSeverityInt(d.Severity),
		Range: LSPRange{
			StartLine: max0(d.Range.StartLine - 1),
			StartCol:  max0(d.Range.StartCol - 1),
			EndLine:   max0(d.Range.EndLine - 1),
			EndCol:    max0(d.Range.EndCol - 1),
		},
		Message: d.Message,
		Code:    d.Code,
	}
	for _, rel := range d.Related {
		out.Related = append(out.Related, LSPRelated{
			Range: LSPRange{
				StartLine: max0(rel.Range.StartLine - 1),
				StartCol:  max0(rel.Range.StartCol - 1),
				EndLine:   max0(rel.Range.EndLine - 1),
				EndCol:    max0(rel.Range.EndCol - 1),
			},
			Message: rel.Message,
		})
	}
	for _, t := range d.Tags {
		out.Tags = append(out.Tags, string(t))
	}
	return out
}

// RenderDiagnostics renders a whole diagnostic slice, e.g. for an
// analyze_project LSP publish-diagnostics batch.
func RenderDiagnostics(ds []service.Diagnostic) []LSPDiagnostic {
	out := make([]LSPDiagnostic, len(ds))
	for i, d := range ds {
		out[i] = RenderDiagnostic(d)
	}
	return out
}
