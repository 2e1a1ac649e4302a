// Package union implements weighted disjunctive type arithmetic:
// normalization, join, subsumption, guard-narrowing, most-likely selection
// and assignment compatibility over types.WeightedSet.
//
// No teacher package models probability-weighted type sets; this is new
// domain logic (see DESIGN.md) written in the teacher's free-function,
// no-methods-on-pure-data style (internal/core/types.go never attaches
// behavior to core.Result — transformations live in sibling packages like
// internal/core/pipeline.go).
package union

import (
	"math"
	"sort"

	"github.com/oxhq/typecore/internal/types"
)

// Epsilon is the minimum component weight retained by Normalize.
const Epsilon = 0.01

// Tolerance is the absolute tolerance used for weight comparisons.
const Tolerance = 1e-9

// sourcePrecedence ranks component kinds for MostLikely tie-breaking.
func sourcePrecedence(k types.ConcreteKind) int {
	switch k {
	case types.ConcretePlatform:
		return 3
	case types.ConcreteConfiguration:
		return 2
	case types.ConcretePrimitive:
		return 1
	default:
		return 0
	}
}

// Normalize merges structurally equal components, sums their weights, drops
// components with weight < Epsilon, and renormalizes to sum 1. Idempotent.
// Weight collapse to Unknown is signalled by a false second return when
// every weight sums to (near) zero.
func Normalize(set types.WeightedSet) (types.WeightedSet, bool) {
	merged := make([]types.WeightedComponent, 0, len(set.Components))
	for _, comp := range set.Components {
		found := false
		for i := range merged {
			if merged[i].Type.Equal(comp.Type) {
				merged[i].Weight += comp.Weight
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, comp)
		}
	}

	total := 0.0
	for _, m := range merged {
		total += m.Weight
	}
	if math.IsNaN(total) || total <= Tolerance {
		return types.WeightedSet{}, false
	}

	filtered := make([]types.WeightedComponent, 0, len(merged))
	for _, m := range merged {
		w := m.Weight / total
		if w < Epsilon {
			continue
		}
		filtered = append(filtered, types.WeightedComponent{Type: m.Type, Weight: w})
	}
	if len(filtered) == 0 {
		return types.WeightedSet{}, false
	}

	// Renormalize after dropping sub-epsilon components.
	total = 0
	for _, f := range filtered {
		total += f.Weight
	}
	for i := range filtered {
		filtered[i].Weight /= total
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Weight > filtered[j].Weight
	})

	return types.WeightedSet{Components: filtered}, true
}

// confidence extracts a representative confidence scalar from a resolution,
// used by Join's Dynamic-propagation rule.
func confidence(t types.TypeResolution) float64 {
	switch t.Certainty.Kind {
	case types.CertaintyKnown:
		return 1
	case types.CertaintyInferred:
		return t.Certainty.Confidence
	default:
		return 0
	}
}

// Join forms the multiset union of two resolutions' components and
// normalizes. If either side is Dynamic, the result is Dynamic with
// confidence max(conf(A), conf(B)) * 0.9.
func Join(a, b types.TypeResolution) types.TypeResolution {
	if a.IsDynamic() || b.IsDynamic() {
		conf := math.Max(confidence(a), confidence(b)) * 0.9
		return types.DynamicResolution(types.Inferred(conf))
	}

	combined := collectComponents(a)
	combined = append(combined, collectComponents(b)...)

	return fromComponents(combined)
}

// collectComponents extracts the WeightedComponent view of a resolution's
// concrete result, treating a bare Concrete as a singleton weight-1 set.
func collectComponents(t types.TypeResolution) []types.WeightedComponent {
	switch t.Result.Kind {
	case types.ResultConcrete:
		return []types.WeightedComponent{{Type: t.Result.Concrete, Weight: 1}}
	case types.ResultUnion:
		out := make([]types.WeightedComponent, len(t.Result.Union.Components))
		copy(out, t.Result.Union.Components)
		return out
	default:
		return nil
	}
}

// fromComponents builds a TypeResolution from a raw component slice,
// normalizing and collapsing a singleton back to Concrete per the
// WeightedSet invariant.
func fromComponents(components []types.WeightedComponent) types.TypeResolution {
	normalized, ok := Normalize(types.WeightedSet{Components: components})
	if !ok {
		return types.UnknownResolution("normalization collapsed to empty set")
	}
	if len(normalized.Components) == 1 {
		return types.ConcreteResolution(normalized.Components[0].Type, "", nil)
	}
	return types.TypeResolution{
		Certainty: weakestCertainty(normalized),
		Result:    types.Result{Kind: types.ResultUnion, Union: normalized},
		Source:    types.ProvenanceInferred,
	}
}

// weakestCertainty reports Inferred at the set's highest component weight,
// a reasonable confidence proxy for a merged union.
func weakestCertainty(set types.WeightedSet) types.Certainty {
	if len(set.Components) == 0 {
		return types.Unknown()
	}
	return types.Inferred(set.Components[0].Weight)
}

// Subsumes reports whether every component of b is structurally equal to
// some component of a. Used for redundant-union simplification.
func Subsumes(a, b types.WeightedSet) bool {
	for _, bc := range b.Components {
		found := false
		for _, ac := range a.Components {
			if ac.Type.Equal(bc.Type) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Narrow returns the subset of U's components compatible with t's concrete
// type, with weights renormalized over survivors. If empty, returns Unknown
// with a diagnostic note.
func Narrow(set types.WeightedSet, target types.ConcreteType) types.TypeResolution {
	survivors := make([]types.WeightedComponent, 0, len(set.Components))
	for _, c := range set.Components {
		if c.Type.Equal(target) {
			survivors = append(survivors, c)
		}
	}
	if len(survivors) == 0 {
		return types.UnknownResolution("narrow: no surviving component compatible with guard target")
	}
	return fromComponents(survivors)
}

// MostLikely returns the component with the highest weight, ties broken by
// source precedence.
func MostLikely(set types.WeightedSet) (types.ConcreteType, bool) {
	if len(set.Components) == 0 {
		return types.ConcreteType{}, false
	}
	best := set.Components[0]
	for _, c := range set.Components[1:] {
		if c.Weight > best.Weight+Tolerance {
			best = c
			continue
		}
		if math.Abs(c.Weight-best.Weight) <= Tolerance &&
			sourcePrecedence(c.Type.Kind) > sourcePrecedence(best.Type.Kind) {
			best = c
		}
	}
	return best.Type, true
}

// Compatible reports whether some component of U is assignment-compatible
// with t: structural equality for primitives, qualified-name equality for
// platform/configuration types.
func Compatible(t types.ConcreteType, set types.WeightedSet) bool {
	for _, c := range set.Components {
		if compatibleOne(t, c.Type) {
			return true
		}
	}
	return false
}

func compatibleOne(a, b types.ConcreteType) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case types.ConcretePrimitive:
		return a.Primitive == b.Primitive
	case types.ConcretePlatform, types.ConcreteConfiguration:
		return a.Ref.QualifiedName == b.Ref.QualifiedName
	case types.ConcreteCollection:
		return a.Element.QualifiedName == b.Element.QualifiedName
	default:
		return true
	}
}
