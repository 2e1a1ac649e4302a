package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/oxhq/typecore/internal/obslog"
	"github.com/oxhq/typecore/internal/service"
)

// Server is a stdio JSON-RPC 2.0 server exposing internal/service.Service
// as MCP tools. It only ever answers requests and never calls back into a
// client, so there is no pending-response table, no sampling/elicitation/
// roots machinery, and no resource-subscription bookkeeping.
type Server struct {
	svc    *service.Service
	log    *obslog.Logger
	router *Router

	writeMu sync.Mutex
}

// NewServer wires every tool handler into a fresh Router.
func NewServer(svc *service.Service, log *obslog.Logger) *Server {
	if log == nil {
		log = obslog.New()
	}
	s := &Server{svc: svc, log: log.With("mcp"), router: NewRouter()}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.router.Register("resolve", s.handleResolve)
	s.router.Register("hover", s.handleHover)
	s.router.Register("completions", s.handleCompletions)
	s.router.Register("check_assignment", s.handleCheckAssignment)
	s.router.Register("analyze_project", s.handleAnalyzeProject)
	s.router.Register("search_types", s.handleSearchTypes)
	s.router.Register("statistics", s.handleStatistics)
}

// Serve reads newline-delimited JSON-RPC requests from r and writes
// responses to w until r reaches EOF. One session ID is minted per Serve
// call so a frontend supervising multiple subprocess instances can
// correlate log lines back to one server invocation.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	sessionID := uuid.NewString()
	s.log.Info("mcp server started", obslog.Fields{"session": sessionID})

	reader := bufio.NewReader(r)
	writer := bufio.NewWriter(w)
	decoder := json.NewDecoder(reader)

	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if err == io.EOF {
				s.log.Info("mcp server stopped", obslog.Fields{"session": sessionID, "reason": "eof"})
				return nil
			}
			s.writeResponse(writer, errorResponse(nil, ParseError, err.Error()))
			decoder = json.NewDecoder(reader)
			continue
		}

		var envelope struct {
			ID     *json.RawMessage `json:"id"`
			Method string           `json:"method"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			s.writeResponse(writer, errorResponse(nil, ParseError, "invalid JSON-RPC message"))
			continue
		}
		if envelope.ID == nil || envelope.Method == "" {
			// Not a request this server understands (a bare response or a
			// notification neither of which this server ever sends);
			// nothing to reply to.
			continue
		}

		var req RequestMessage
		if err := json.Unmarshal(raw, &req); err != nil {
			s.writeResponse(writer, errorResponse(nil, ParseError, "invalid request"))
			continue
		}
		resp := s.router.Dispatch(context.Background(), req)
		s.writeResponse(writer, resp)
	}
}

func (s *Server) writeResponse(w *bufio.Writer, resp ResponseMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("failed to marshal response", obslog.Fields{"error": err.Error()})
		return
	}
	_, _ = w.Write(data)
	_, _ = w.Write([]byte("\n"))
	_ = w.Flush()
}
