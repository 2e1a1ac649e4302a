package interproc

import (
	"context"

	"github.com/oxhq/typecore/internal/flow"
	"github.com/oxhq/typecore/internal/repository"
	"github.com/oxhq/typecore/internal/resolver"
	"github.com/oxhq/typecore/internal/types"
	"github.com/oxhq/typecore/internal/union"
)

// DefaultBound is the per-SCC fixed-point iteration bound (spec §4.5:
// "bounded at 4 iterations").
const DefaultBound = 4

// Analyzer computes function summaries over a whole call graph, one
// strongly-connected component at a time, in reverse-topological order
// (spec §4.5). It owns the summary Cache that resolver.CallResolver (wired
// into Resolver) consults to answer a call site's return type.
type Analyzer struct {
	Graph    *Graph
	Cache    *Cache
	Resolver *resolver.Service
	Repo     *repository.Repository
	Store    *flow.Store
	Bound    int

	diagnostics []Diagnostic
}

// NewAnalyzer builds an interprocedural analyzer over a built call graph.
// svc must already have a CallResolver registered pointing at the same
// Cache and Graph, so flow analysis of one function's body can resolve
// calls to others already summarized earlier in the reverse-topological
// order.
func NewAnalyzer(graph *Graph, cache *Cache, svc *resolver.Service, repo *repository.Repository, store *flow.Store) *Analyzer {
	return &Analyzer{Graph: graph, Cache: cache, Resolver: svc, Repo: repo, Store: store, Bound: DefaultBound}
}

// Diagnostics returns every diagnostic raised across the whole-graph
// analysis (interproc.recursion_bound).
func (a *Analyzer) Diagnostics() []Diagnostic { return a.diagnostics }

// AnalyzeAll computes a wildcard-argument summary for every function in the
// graph, processing SCCs in reverse-topological order so a caller's
// analysis always finds its non-recursive callees already summarized.
// Cancellation (spec §5) is checked once per SCC boundary.
func (a *Analyzer) AnalyzeAll(ctx context.Context) error {
	if a.Bound <= 0 {
		a.Bound = DefaultBound
	}
	for _, scc := range a.Graph.condensation() {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		a.fixedPoint(scc)
	}
	return nil
}

// fixedPoint computes wildcard-argument summaries for every function in one
// SCC. A singleton, non-recursive SCC needs exactly one pass (spec §4.5
// step 3). A recursive SCC (mutual recursion, or direct self-recursion)
// iterates the whole group together, starting every callee at Unknown and
// re-analyzing until no function's summary changes or Bound is reached.
func (a *Analyzer) fixedPoint(scc []FuncID) {
	recursive := len(scc) > 1 || (len(scc) == 1 && a.Graph.hasSelfLoop(scc[0]))
	if !recursive {
		fid := scc[0]
		a.Cache.Put(fid, wildcardKey(paramCount(a.Graph, fid)), a.computeSummary(fid))
		return
	}

	for _, fid := range scc {
		a.Cache.Put(fid, wildcardKey(paramCount(a.Graph, fid)), Summary{Return: types.UnknownResolution("recursive summary not yet computed")})
	}

	var prev map[FuncID]Summary
	for i := 0; i < a.Bound; i++ {
		cur := make(map[FuncID]Summary, len(scc))
		for _, fid := range scc {
			s := a.computeSummary(fid)
			cur[fid] = s
			a.Cache.Put(fid, wildcardKey(paramCount(a.Graph, fid)), s)
		}
		if prev != nil && summariesStable(prev, cur) {
			return
		}
		prev = cur
	}

	// Bound exceeded: every function in the SCC widens to a Dynamic return,
	// carrying forward whatever effects the last iteration observed (spec
	// §4.5: non-convergent recursive summaries widen rather than loop
	// forever, the interprocedural analogue of flow.widened).
	for _, fid := range scc {
		last := prev[fid]
		diag := Diagnostic{
			Code:     "interproc.recursion_bound",
			Message:  "recursive summary fixed point exceeded the iteration bound; return type widened to Dynamic",
			Function: fid,
		}
		widened := Summary{
			Return:      types.DynamicResolution(types.Inferred(0.3), "widened: interprocedural fixed point exceeded iteration bound"),
			Effects:     last.Effects,
			Diagnostics: []Diagnostic{diag},
		}
		a.Cache.Put(fid, wildcardKey(paramCount(a.Graph, fid)), widened)
		a.diagnostics = append(a.diagnostics, diag)
	}
}

// computeSummary runs a flow analysis of fid's body with every parameter
// seeded Dynamic (the wildcard argument shape), folds every `return`
// expression's resolution into one union via the same join used for
// branch merges, and detects this function's own effects.
func (a *Analyzer) computeSummary(fid FuncID) Summary {
	decl, ok := a.Graph.Lookup(fid)
	if !ok || decl.Node == nil {
		return Summary{Return: types.UnknownResolution("function not found in call graph")}
	}

	fa := flow.NewAnalyzer(a.Resolver, a.Repo, a.Store, string(fid))
	params := map[string]types.TypeResolution{}
	for _, p := range decl.Node.Parameters {
		params[p] = types.DynamicResolution(types.Unknown(), "wildcard argument shape")
	}
	fa.ParamTypes = params
	fa.AnalyzeFunction(decl.Node)

	ret := foldReturns(fa.Returns)
	effects := detectEffects(decl.Node, a.Graph)
	for _, callee := range decl.Callees {
		if callee == fid {
			continue
		}
		if s, ok := a.Cache.Get(callee, wildcardKey(paramCount(a.Graph, callee))); ok {
			effects = mergeEffects(effects, s.Effects)
		}
	}

	var diags []Diagnostic
	for _, d := range fa.Diagnostics() {
		diags = append(diags, Diagnostic{Code: d.Code, Message: d.Message, Function: fid})
	}
	return Summary{Return: ret, Effects: effects, Diagnostics: diags}
}

func foldReturns(returns []types.TypeResolution) types.TypeResolution {
	if len(returns) == 0 {
		return types.UnknownResolution("function has no return statement")
	}
	acc := returns[0]
	for _, r := range returns[1:] {
		acc = union.Join(acc, r)
	}
	return acc
}

func paramCount(g *Graph, fid FuncID) int {
	decl, ok := g.Lookup(fid)
	if !ok || decl.Node == nil {
		return 0
	}
	return len(decl.Node.Parameters)
}

// summariesStable reports whether every function's summary in cur matches
// its prior-iteration counterpart closely enough to declare convergence:
// same return-result shape and the same set of effects.
func summariesStable(prev, cur map[FuncID]Summary) bool {
	for fid, c := range cur {
		p, ok := prev[fid]
		if !ok {
			return false
		}
		if p.Return.Result.Kind != c.Return.Result.Kind {
			return false
		}
		if len(p.Effects) != len(c.Effects) {
			return false
		}
		seen := make(map[Effect]bool, len(p.Effects))
		for _, e := range p.Effects {
			seen[e] = true
		}
		for _, e := range c.Effects {
			if !seen[e] {
				return false
			}
		}
	}
	return true
}
