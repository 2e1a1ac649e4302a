package service

import (
	"github.com/oxhq/typecore/internal/flow"
	"github.com/oxhq/typecore/internal/interproc"
	"github.com/oxhq/typecore/internal/sourceast"
)

// Severity is the closed variant set for Diagnostic.Severity per spec §6.3.
type Severity string

const (
	SeverityError   Severity = "Error"
	SeverityWarning Severity = "Warning"
	SeverityInfo    Severity = "Info"
	SeverityHint    Severity = "Hint"
)

// Tag is an optional diagnostic annotation per spec §6.3.
type Tag string

const (
	TagUnnecessary Tag = "Unnecessary"
	TagDeprecated  Tag = "Deprecated"
)

// RelatedLocation points at a secondary location relevant to a diagnostic
// (e.g. the call site responsible for a widened summary).
type RelatedLocation struct {
	Range   sourceast.Range
	Message string
}

// Diagnostic is the LSP-facing shape every analyzer-internal diagnostic is
// rendered into: stable dotted Code, a Range, and optional related
// locations/tags (spec §6.3). This is the single surface
// internal/adapter/lsp renders from — it never imports flow.Diagnostic or
// interproc.Diagnostic directly.
type Diagnostic struct {
	Severity Severity
	Range    sourceast.Range
	Message  string
	Code     string
	Related  []RelatedLocation
	Tags     []Tag
}

// fromFlowDiagnostic renders one flow-sensitive diagnostic (flow.widened,
// flow.cancelled) into the surfaced shape. Flow diagnostics
// currently only ever signal a budget condition, so they render at
// Warning.
func fromFlowDiagnostic(d flow.Diagnostic) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Range:    d.Range,
		Message:  d.Message,
		Code:     d.Code,
	}
}

// fromInterprocDiagnostic renders one interprocedural diagnostic
// (interproc.recursion_bound). It carries no source range of its own —
// the affected function's declaration range stands in.
func fromInterprocDiagnostic(d interproc.Diagnostic, fnRange sourceast.Range) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Range:    fnRange,
		Message:  d.Message,
		Code:     d.Code,
	}
}
