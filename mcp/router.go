package mcp

import (
	"context"
	"fmt"
	"sync"
)

// RequestHandler answers one JSON-RPC request with a response.
type RequestHandler func(ctx context.Context, msg RequestMessage) ResponseMessage

// Router dispatches by method name. This server has no client-initiated
// notifications to route, only requests.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]RequestHandler
}

// NewRouter builds an empty router.
func NewRouter() *Router {
	return &Router{handlers: make(map[string]RequestHandler)}
}

// Register associates a handler with a method name, replacing any prior one.
func (r *Router) Register(method string, handler RequestHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[method] = handler
}

// Dispatch routes a request to its handler, returning a JSON-RPC error
// response if the envelope is malformed or the method is unregistered.
func (r *Router) Dispatch(ctx context.Context, msg RequestMessage) ResponseMessage {
	if err := ensureVersion(msg.JSONRPC); err != nil {
		return errorResponse(msg.ID, InvalidRequest, err.Error())
	}

	r.mu.RLock()
	handler, ok := r.handlers[msg.Method]
	r.mu.RUnlock()
	if !ok {
		return errorResponse(msg.ID, MethodNotFound, fmt.Sprintf("method not found: %s", msg.Method))
	}

	resp := handler(ctx, msg)
	if resp.JSONRPC == "" {
		resp.JSONRPC = JSONRPCVersion
	}
	return resp
}
