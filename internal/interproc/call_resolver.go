package interproc

import (
	"github.com/oxhq/typecore/internal/resolver"
	"github.com/oxhq/typecore/internal/sourceast"
	"github.com/oxhq/typecore/internal/types"
)

// CallResolver answers a call site naming a known user function by looking
// up its cached interprocedural summary for the call's canonical argument
// shape (spec §4.5). Priority 55: below ExpressionResolver's dotted-chain
// method calls (60), above SourceCodeResolver's bare-identifier fallback
// (50) — a call to a known function is a stronger signal than "no
// information at this position".
type CallResolver struct {
	Graph   *Graph
	Cache   *Cache
	Service *resolver.Service
}

// NewCallResolver builds a call resolver bound to a call graph, its summary
// cache, and the dispatching service (needed to resolve each argument
// expression before building the canonical key).
func NewCallResolver(graph *Graph, cache *Cache, svc *resolver.Service) *CallResolver {
	return &CallResolver{Graph: graph, Cache: cache, Service: svc}
}

// Priority implements resolver.Resolver.
func (*CallResolver) Priority() int { return 55 }

func (c *CallResolver) calleeID(expr *sourceast.Node) (FuncID, bool) {
	if expr == nil || expr.Kind != sourceast.KindCall {
		return "", false
	}
	if expr.Base == nil || expr.Base.Kind != sourceast.KindIdentifier {
		return "", false
	}
	id := FuncID(expr.Base.Name)
	return id, c.Graph.Has(id)
}

// CanResolve implements resolver.Resolver.
func (c *CallResolver) CanResolve(expr *sourceast.Node, _ resolver.Context) bool {
	_, ok := c.calleeID(expr)
	return ok
}

// Resolve implements resolver.Resolver.
func (c *CallResolver) Resolve(expr *sourceast.Node, ctx resolver.Context) types.TypeResolution {
	fid, ok := c.calleeID(expr)
	if !ok {
		return types.UnknownResolution("not a call to a known function")
	}
	args := make([]types.TypeResolution, len(expr.Arguments))
	for i, arg := range expr.Arguments {
		args[i] = c.Service.Resolve(arg, ctx)
	}
	summary, ok := c.Cache.Get(fid, CanonicalArgs(args))
	if !ok {
		return types.UnknownResolution("no interprocedural summary available for " + string(fid))
	}
	return summary.Return
}
