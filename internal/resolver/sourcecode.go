package resolver

import (
	"github.com/oxhq/typecore/internal/sourceast"
	"github.com/oxhq/typecore/internal/types"
)

// FlowLookup is the narrow capability the source-code resolver needs from a
// completed function's flow-sensitive state store. internal/flow.Store
// satisfies this interface structurally (matching method signature) so this
// package never imports internal/flow: the flow analyzer itself dispatches
// expressions through this package's Service, which would otherwise form an
// import cycle.
type FlowLookup interface {
	StateAt(functionID string, pos sourceast.Range) (map[string]types.TypeResolution, bool)
}

// ModuleLookup resolves a module-level (outside any function) declaration
// by name.
type ModuleLookup interface {
	ModuleLevel(name string) (types.TypeResolution, bool)
}

// SourceCodeResolver resolves identifiers by consulting flow-sensitive state
// at the query position, falling back to module-level declarations when
// outside any function. Priority 50 — the lowest of the five, since it only
// ever fires for bare identifiers the other resolvers left alone.
type SourceCodeResolver struct {
	Flow   FlowLookup
	Module ModuleLookup
}

// NewSourceCodeResolver builds a resolver bound to a flow state store and an
// optional module-level declaration table.
func NewSourceCodeResolver(flow FlowLookup, module ModuleLookup) *SourceCodeResolver {
	return &SourceCodeResolver{Flow: flow, Module: module}
}

// Priority implements Resolver.
func (*SourceCodeResolver) Priority() int { return 50 }

// CanResolve implements Resolver.
func (s *SourceCodeResolver) CanResolve(expr *sourceast.Node, _ Context) bool {
	return expr != nil && expr.Kind == sourceast.KindIdentifier
}

// Resolve implements Resolver.
func (s *SourceCodeResolver) Resolve(expr *sourceast.Node, ctx Context) types.TypeResolution {
	if ctx.CurrentState != nil {
		if res, ok := ctx.CurrentState[expr.Name]; ok {
			return res
		}
	}
	if ctx.ActiveFunction != "" && s.Flow != nil {
		if state, ok := s.Flow.StateAt(ctx.ActiveFunction, ctx.Position); ok {
			if res, ok := state[expr.Name]; ok {
				return res
			}
		}
	}
	if s.Module != nil {
		if res, ok := s.Module.ModuleLevel(expr.Name); ok {
			return res
		}
	}
	return types.UnknownResolution("identifier " + expr.Name + " has no known type at this position")
}
