package interproc

import "github.com/oxhq/typecore/internal/sourceast"

// Effect is an opaquely-named observable side effect a function performs,
// used for the purity tracking of spec §4.5. Detection is heuristic: a
// syntactic scan, not a sound effect system (spec open question #2 leaves
// the precise effects/flow interaction unresolved — see DESIGN.md).
type Effect struct {
	Kind string // "mutates_parameter" | "calls_external"
	Name string // parameter name, or the external callee's identifier
}

// detectEffects scans a function body for assignments that target one of
// its own parameters and for calls to identifiers the call graph does not
// know about (i.e. calls into code outside this analysis, such as platform
// APIs) — the two effect shapes spec §4.5 asks an interprocedural summary
// to record.
func detectEffects(fn *sourceast.Node, graph *Graph) []Effect {
	if fn == nil {
		return nil
	}
	params := map[string]bool{}
	for _, p := range fn.Parameters {
		params[p] = true
	}
	seen := map[Effect]bool{}
	var out []Effect
	walkAll(fn.Body, func(n *sourceast.Node) {
		switch n.Kind {
		case sourceast.KindAssignment:
			if n.Target != nil && n.Target.Kind == sourceast.KindIdentifier && params[n.Target.Name] {
				e := Effect{Kind: "mutates_parameter", Name: n.Target.Name}
				if !seen[e] {
					seen[e] = true
					out = append(out, e)
				}
			}
		case sourceast.KindCall:
			if n.Base != nil && n.Base.Kind == sourceast.KindIdentifier && !graph.Has(FuncID(n.Base.Name)) {
				e := Effect{Kind: "calls_external", Name: n.Base.Name}
				if !seen[e] {
					seen[e] = true
					out = append(out, e)
				}
			}
		}
	})
	return out
}

// mergeEffects folds a callee's recorded effects into a caller's summary,
// deduplicating by (kind, name) — so a caller's purity reflects every
// effect reachable through its call graph, not just its own body (spec
// §4.5: summaries "fold callee effects into caller summaries").
func mergeEffects(into []Effect, from []Effect) []Effect {
	seen := map[Effect]bool{}
	for _, e := range into {
		seen[e] = true
	}
	for _, e := range from {
		if !seen[e] {
			seen[e] = true
			into = append(into, e)
		}
	}
	return into
}
