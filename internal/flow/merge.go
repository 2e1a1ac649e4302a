package flow

import (
	"github.com/oxhq/typecore/internal/types"
	"github.com/oxhq/typecore/internal/union"
)

func certaintyValue(c types.Certainty) float64 {
	switch c.Kind {
	case types.CertaintyKnown:
		return 1
	case types.CertaintyInferred:
		return c.Confidence
	default:
		return 0
	}
}

func toWeightedComponents(res types.TypeResolution) []types.WeightedComponent {
	switch res.Result.Kind {
	case types.ResultConcrete:
		return []types.WeightedComponent{{Type: res.Result.Concrete, Weight: 1}}
	case types.ResultUnion:
		return res.Result.Union.Components
	default:
		return nil
	}
}

// onlyOneSideEntry handles a merge-point variable present on only one
// incoming branch (spec §4.3 "Merge points"): it becomes
// Union(original, Undefined) with weights 0.5/0.5 by default, or
// proportional to the present branch's confidence when it carries a
// stronger signal, renormalized.
//
// Open question #1 (spec §9) leaves the exact weighting undocumented; this
// implementation treats the absent branch as carrying full confidence that
// the variable is Undefined there, so weight(present) = c/(c+1) and
// weight(absent) = 1/(c+1). For a Known present branch (c=1) this reduces
// exactly to 0.5/0.5, matching the spec's stated default, and degrades
// gracefully as confidence drops.
func onlyOneSideEntry(res types.TypeResolution) types.TypeResolution {
	present := toWeightedComponents(res)
	if len(present) == 0 {
		return types.UnknownResolution("variable assigned on only one merge branch, with no concrete type to carry forward")
	}
	c := certaintyValue(res.Certainty)
	if c <= 0 {
		c = 1 // no usable confidence signal: fall back to the spec's 0.5/0.5 default
	}
	wPresent := c / (c + 1)
	wAbsent := 1 - wPresent

	components := make([]types.WeightedComponent, 0, len(present)+1)
	for _, p := range present {
		components = append(components, types.WeightedComponent{Type: p.Type, Weight: p.Weight * wPresent})
	}
	components = append(components, types.WeightedComponent{
		Type:   types.ConcreteType{Kind: types.ConcretePrimitive, Primitive: types.PrimitiveUndefined},
		Weight: wAbsent,
	})
	return fromComponents(components)
}

func fromComponents(components []types.WeightedComponent) types.TypeResolution {
	normalized, ok := union.Normalize(types.WeightedSet{Components: components})
	if !ok {
		return types.UnknownResolution("merge: weight normalization collapsed to empty set")
	}
	if len(normalized.Components) == 1 {
		return types.ConcreteResolution(normalized.Components[0].Type, "", nil)
	}
	return types.TypeResolution{
		Certainty: types.Inferred(normalized.Components[0].Weight),
		Result:    types.Result{Kind: types.ResultUnion, Union: normalized},
		Source:    types.ProvenanceInferred,
	}
}

// mergeStates joins two branch-exit states pointwise: a variable present on
// both sides is union-joined (commutative by construction, spec §5); a
// variable present on only one side follows onlyOneSideEntry.
func mergeStates(a, b State) State {
	out := make(State, len(a)+len(b))
	for k, av := range a {
		if bv, ok := b[k]; ok {
			out[k] = union.Join(av, bv)
		} else {
			out[k] = onlyOneSideEntry(av)
		}
	}
	for k, bv := range b {
		if _, ok := a[k]; !ok {
			out[k] = onlyOneSideEntry(bv)
		}
	}
	return out
}

// unionStates is mergeStates under another name, used where guard
// distribution (De Morgan) calls for a union rather than a branch join; the
// operation is identical, just invoked from a different caller context.
func unionStates(a, b State) State {
	return mergeStates(a, b)
}

// sameResolution reports whether two resolutions are equal enough for loop
// fixed-point convergence checks: same certainty kind/confidence and same
// result shape.
func sameResolution(a, b types.TypeResolution) bool {
	if a.Certainty.Kind != b.Certainty.Kind {
		return false
	}
	if a.Certainty.Kind == types.CertaintyInferred && absFloat(a.Certainty.Confidence-b.Certainty.Confidence) > union.Tolerance {
		return false
	}
	if a.Result.Kind != b.Result.Kind {
		return false
	}
	switch a.Result.Kind {
	case types.ResultConcrete:
		return a.Result.Concrete.Equal(b.Result.Concrete)
	case types.ResultUnion:
		return sameWeightedSet(a.Result.Union, b.Result.Union)
	default:
		return true
	}
}

func sameWeightedSet(a, b types.WeightedSet) bool {
	if len(a.Components) != len(b.Components) {
		return false
	}
	for i := range a.Components {
		if !a.Components[i].Type.Equal(b.Components[i].Type) {
			return false
		}
		if absFloat(a.Components[i].Weight-b.Components[i].Weight) > union.Tolerance {
			return false
		}
	}
	return true
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// statesEqual reports whether two states are equal for fixed-point
// termination purposes (spec §4.3 "Termination and determinism").
func statesEqual(a, b State) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		bv, ok := b[k]
		if !ok || !sameResolution(v, bv) {
			return false
		}
	}
	return true
}
