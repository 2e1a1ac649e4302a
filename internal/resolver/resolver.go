// Package resolver implements the dispatcher of specialized resolvers that
// produce TypeResolution values with graded certainty.
//
// The Resolver capability set (CanResolve/Resolve/Priority) is the direct
// generalization of the teacher's provider.LanguageProvider pattern: a
// closed variant set of polymorphic plug-ins registered at construction
// time, with no dynamic dispatch beyond the service's own loop (teacher:
// internal/provider/contract.go, internal/registry.Registry).
package resolver

import (
	"sort"

	"github.com/oxhq/typecore/internal/sourceast"
	"github.com/oxhq/typecore/internal/types"
)

// Context carries everything a Resolver needs to answer one query. It is
// intentionally narrow so resolvers stay decoupled from the flow/interproc
// analyzers that produce some of its fields (dependency injected by the
// caller, never imported directly — see SourceCodeResolver below).
type Context struct {
	// Position is the query site; used for range-scoped lookups (flow
	// state, enclosing function).
	Position sourceast.Range

	// ActiveFunction, when non-empty, is the enclosing function's id.
	ActiveFunction string

	// ChainDepth is incremented by the expression resolver as it walks a
	// dotted chain; used for confidence decay.
	ChainDepth int

	// FacetOverride lets a caller force a specific facet rather than the
	// entity's priority-ordered default. No resolver in this package sets
	// it; the platform, configuration and expression resolvers honor it.
	FacetOverride types.FacetKind

	// CurrentState, when non-nil, is the live flow-sensitive state at the
	// query point during in-progress analysis (set by internal/flow while
	// walking a function body). The source-code resolver consults this
	// before falling back to a completed function's stored snapshot.
	CurrentState map[string]types.TypeResolution
}

// Resolver is the capability set every specialized resolver implements.
type Resolver interface {
	CanResolve(expr *sourceast.Node, ctx Context) bool
	Resolve(expr *sourceast.Node, ctx Context) types.TypeResolution
	Priority() int
}

// Service dispatches to an ordered list of resolvers.
type Service struct {
	resolvers []Resolver
}

// NewService builds a dispatcher over the given resolvers. Order does not
// matter at construction time; Resolve always re-sorts by priority.
func NewService(resolvers ...Resolver) *Service {
	return &Service{resolvers: resolvers}
}

// Register adds a resolver to the service.
func (s *Service) Register(r Resolver) {
	s.resolvers = append(s.resolvers, r)
}

// rank orders certainty values for comparison: Known beats any Inferred
// confidence, Inferred is ordered by confidence, Unknown is always last.
func rank(c types.Certainty) float64 {
	switch c.Kind {
	case types.CertaintyKnown:
		return 2
	case types.CertaintyInferred:
		return 1 + c.Confidence // in (1,2)
	default:
		return 0
	}
}

// Resolve queries resolvers in descending priority order: query the first
// resolver whose CanResolve returns true; if its result has certainty
// Unknown, continue to the next. The highest-certainty resolution seen is
// returned, with ties broken by priority. We scan every eligible resolver
// (stopping early only once a Known result is found, since nothing
// outranks it) and keep the best.
func (s *Service) Resolve(expr *sourceast.Node, ctx Context) types.TypeResolution {
	ordered := make([]Resolver, len(s.resolvers))
	copy(ordered, s.resolvers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() > ordered[j].Priority()
	})

	best := types.UnknownResolution("no resolver could resolve this expression")
	bestRank := -1.0

	for _, r := range ordered {
		if !r.CanResolve(expr, ctx) {
			continue
		}
		result := r.Resolve(expr, ctx)
		if rr := rank(result.Certainty); rr > bestRank {
			best = result
			bestRank = rr
		}
		if result.Certainty.Kind == types.CertaintyKnown {
			break
		}
	}
	return best
}
