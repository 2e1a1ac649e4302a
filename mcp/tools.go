package mcp

import (
	"context"
	"encoding/json"

	"github.com/oxhq/typecore/internal/adapter"
	"github.com/oxhq/typecore/internal/obslog"
	"github.com/oxhq/typecore/internal/repository"
	"github.com/oxhq/typecore/internal/service"
	"github.com/oxhq/typecore/internal/sourceast"
	"github.com/oxhq/typecore/internal/types"
)

// queryParams is the params shape shared by resolve and hover: an AST
// node plus the surrounding file/function.
type queryParams struct {
	Expression     *sourceast.Node `json:"expression"`
	File           string          `json:"file"`
	ActiveFunction string          `json:"activeFunction"`
}

func (p queryParams) toQueryContext() service.QueryContext {
	pos := sourceast.Range{File: p.File}
	if p.Expression != nil {
		pos = p.Expression.Range
	}
	return service.QueryContext{File: p.File, Position: pos, ActiveFunction: p.ActiveFunction}
}

func decodeParams(raw json.RawMessage, out any) bool {
	if len(raw) == 0 {
		return true
	}
	return json.Unmarshal(raw, out) == nil
}

func (s *Server) handleResolve(_ context.Context, msg RequestMessage) ResponseMessage {
	var p queryParams
	if !decodeParams(msg.Params, &p) {
		return errorResponse(msg.ID, InvalidParams, "resolve: malformed params")
	}
	res := s.svc.Resolve(p.Expression, p.toQueryContext())
	return successResponse(msg.ID, adapter.RenderResolution(res))
}

func (s *Server) handleHover(_ context.Context, msg RequestMessage) ResponseMessage {
	var p queryParams
	if !decodeParams(msg.Params, &p) {
		return errorResponse(msg.ID, InvalidParams, "hover: malformed params")
	}
	h := s.svc.Hover(p.Expression, p.toQueryContext())
	return successResponse(msg.ID, adapter.RenderHover(h))
}

type completionsParams struct {
	Prefix string `json:"prefix"`
	File   string `json:"file"`
}

func (s *Server) handleCompletions(_ context.Context, msg RequestMessage) ResponseMessage {
	var p completionsParams
	if !decodeParams(msg.Params, &p) {
		return errorResponse(msg.ID, InvalidParams, "completions: malformed params")
	}
	items := s.svc.Completions(p.Prefix, service.QueryContext{File: p.File})
	return successResponse(msg.ID, adapter.RenderCompletions(items))
}

type checkAssignmentParams struct {
	From types.TypeResolution `json:"from"`
	To   types.TypeResolution `json:"to"`
}

func (s *Server) handleCheckAssignment(_ context.Context, msg RequestMessage) ResponseMessage {
	var p checkAssignmentParams
	if !decodeParams(msg.Params, &p) {
		return errorResponse(msg.ID, InvalidParams, "check_assignment: malformed params")
	}
	result := s.svc.CheckAssignment(p.From, p.To)
	return successResponse(msg.ID, map[string]any{
		"compatible": result.Compatible,
		"reason":     result.Reason,
	})
}

type analyzeProjectParams struct {
	Modules []*sourceast.Node `json:"modules"`
}

func (s *Server) handleAnalyzeProject(ctx context.Context, msg RequestMessage) ResponseMessage {
	var p analyzeProjectParams
	if !decodeParams(msg.Params, &p) {
		return errorResponse(msg.ID, ProjectLoadError, "analyze_project: malformed params")
	}
	result := s.svc.AnalyzeProject(ctx, p.Modules)
	s.log.Debug("analyze_project completed", obslog.Fields{"filesOk": result.FilesOK, "filesFail": result.FilesFail})
	return successResponse(msg.ID, adapter.RenderAnalyzeProject(result))
}

type searchTypesParams struct {
	NameSubstring string `json:"nameSubstring"`
	Category      string `json:"category"`
	Source        string `json:"source"`
	Cursor        string `json:"cursor"`
	Limit         int    `json:"limit"`
}

func (s *Server) handleSearchTypes(_ context.Context, msg RequestMessage) ResponseMessage {
	var p searchTypesParams
	if !decodeParams(msg.Params, &p) {
		return errorResponse(msg.ID, InvalidParams, "search_types: malformed params")
	}
	result, err := s.svc.SearchTypes(service.SearchTypesOptions{
		Filters: repository.Filters{
			NameSubstring: p.NameSubstring,
			Category:      p.Category,
			Source:        types.SourceTag(p.Source),
		},
		Cursor: p.Cursor,
		Limit:  p.Limit,
	})
	if err != nil {
		return errorResponse(msg.ID, InvalidParams, err.Error())
	}
	return successResponse(msg.ID, adapter.RenderSearchTypes(result))
}

func (s *Server) handleStatistics(_ context.Context, msg RequestMessage) ResponseMessage {
	return successResponse(msg.ID, adapter.RenderStatistics(s.svc.Statistics()))
}
