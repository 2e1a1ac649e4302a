package adapter

import (
	"github.com/oxhq/typecore/internal/repository"
	"github.com/oxhq/typecore/internal/service"
	"github.com/oxhq/typecore/internal/types"
)

// ResolutionPayload is the HTTP/JSON rendering of a types.TypeResolution,
// spec §6.2's `resolve` response shape — flattened into JSON-friendly
// fields rather than the Go sum-type struct, matching the teacher's
// webhook/HTTP response idiom of a flat payload struct per endpoint
// (mcp/http_server.go response envelopes).
type ResolutionPayload struct {
	Certainty       string   `json:"certainty"`
	Confidence      float64  `json:"confidence,omitempty"`
	TypeText        string   `json:"typeText"`
	Source          string   `json:"source"`
	ActiveFacet     string   `json:"activeFacet,omitempty"`
	AvailableFacets []string `json:"availableFacets,omitempty"`
	Notes           []string `json:"notes,omitempty"`
}

// RenderResolution flattens a TypeResolution for the HTTP/JSON surface.
func RenderResolution(r types.TypeResolution) ResolutionPayload {
	out := ResolutionPayload{
		Certainty:  string(r.Certainty.Kind),
		Confidence: r.Certainty.Confidence,
		TypeText:   service.RenderTypeText(r),
		Source:     string(r.Source),
		Notes:      r.Metadata.Notes,
	}
	if r.ActiveFacet != "" {
		out.ActiveFacet = string(r.ActiveFacet)
	}
	for _, f := range r.AvailableFacets {
		out.AvailableFacets = append(out.AvailableFacets, string(f))
	}
	return out
}

// HoverPayload is the HTTP/JSON rendering of spec §6.2's hover() result.
type HoverPayload struct {
	TypeText      string `json:"typeText"`
	Documentation string `json:"documentation,omitempty"`
	Certainty     string `json:"certainty"`
	Source        string `json:"source"`
}

// RenderHover flattens a service.HoverResult.
func RenderHover(h service.HoverResult) HoverPayload {
	return HoverPayload{
		TypeText:      h.TypeText,
		Documentation: h.Documentation,
		Certainty:     string(h.Certainty.Kind),
		Source:        string(h.Source),
	}
}

// CompletionPayload is one entry of spec §6.2's completions() response.
type CompletionPayload struct {
	LabelASCII    string `json:"labelAscii"`
	LabelNative   string `json:"labelNative"`
	Kind          string `json:"kind"`
	TypeReference string `json:"typeReference,omitempty"`
	Documentation string `json:"documentation,omitempty"`
}

// RenderCompletions flattens a completions() result list.
func RenderCompletions(items []service.CompletionItem) []CompletionPayload {
	out := make([]CompletionPayload, len(items))
	for i, it := range items {
		out[i] = CompletionPayload{
			LabelASCII:    it.Label.ASCII,
			LabelNative:   it.Label.Native,
			Kind:          string(it.Kind),
			TypeReference: it.TypeReference.QualifiedName,
			Documentation: it.Documentation,
		}
	}
	return out
}

// EntitySummaryPayload is one row of spec §6.2's paged search_types result.
type EntitySummaryPayload struct {
	NameASCII     string `json:"nameAscii"`
	NameNative    string `json:"nameNative"`
	Category      string `json:"category"`
	Source        string `json:"source"`
	Documentation string `json:"documentation,omitempty"`
}

// SearchTypesPayload is the HTTP/JSON rendering of a paginated search.
type SearchTypesPayload struct {
	Items      []EntitySummaryPayload `json:"items"`
	NextCursor *string                `json:"nextCursor,omitempty"`
}

// RenderSearchTypes flattens a service.SearchTypesResult.
func RenderSearchTypes(r service.SearchTypesResult) SearchTypesPayload {
	out := SearchTypesPayload{NextCursor: r.NextCursor}
	for _, it := range r.Items {
		out.Items = append(out.Items, EntitySummaryPayload{
			NameASCII:     it.Name.ASCII,
			NameNative:    it.Name.Native,
			Category:      string(it.Category),
			Source:        string(it.Source),
			Documentation: it.Documentation,
		})
	}
	return out
}

// StatisticsPayload is the HTTP/JSON rendering of repository.Statistics,
// the supplemental self-description endpoint.
type StatisticsPayload struct {
	TotalEntities      int            `json:"totalEntities"`
	DocumentationBytes int            `json:"documentationBytes"`
	BySource           map[string]int `json:"bySource"`
	ByCategory         map[string]int `json:"byCategory"`
}

// RenderStatistics flattens repository.Statistics.
func RenderStatistics(s repository.Statistics) StatisticsPayload {
	out := StatisticsPayload{
		TotalEntities:      s.TotalEntities,
		DocumentationBytes: s.DocumentationBytes,
		BySource:           make(map[string]int, len(s.BySource)),
		ByCategory:         s.ByCategory,
	}
	for k, v := range s.BySource {
		out.BySource[string(k)] = v
	}
	return out
}

// AnalyzeProjectPayload is the HTTP/JSON rendering of spec §6.2's
// analyze_project() response.
type AnalyzeProjectPayload struct {
	FilesOK      int             `json:"filesOk"`
	FilesFail    int             `json:"filesFail"`
	Diagnostics  []LSPDiagnostic `json:"diagnostics"`
	SummaryStats StatisticsPayload `json:"summaryStats"`
}

// RenderAnalyzeProject flattens an AnalyzeProjectResult.
func RenderAnalyzeProject(r service.AnalyzeProjectResult) AnalyzeProjectPayload {
	return AnalyzeProjectPayload{
		FilesOK:      r.FilesOK,
		FilesFail:    r.FilesFail,
		Diagnostics:  RenderDiagnostics(r.Diagnostics),
		SummaryStats: RenderStatistics(r.SummaryStats),
	}
}

// ErrorPayload is the structured error envelope spec §7 requires of the
// web interface: "a structured error payload with an explanation".
type ErrorPayload struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Error kinds for ErrorPayload.Kind, matching spec §7's taxonomy.
const (
	ErrorKindInput         = "input"
	ErrorKindConfiguration = "configuration"
	ErrorKindBudget        = "budget"
	ErrorKindInvariant     = "invariant"
)

// NewErrorPayload builds a structured error response.
func NewErrorPayload(kind, message string) ErrorPayload {
	return ErrorPayload{Error: message, Kind: kind, Message: message}
}
