package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oxhq/typecore/internal/types"
)

// RenderTypeText renders a TypeResolution as the human-readable form spec
// §6.2 requires for hover(): Concrete as its qualified name with active
// facet in brackets, Union as "A ~w1 | B ~w2 …" sorted by weight
// descending, Dynamic and Unknown as a bare "?" marker.
func RenderTypeText(r types.TypeResolution) string {
	switch r.Result.Kind {
	case types.ResultConcrete:
		return concreteText(r.Result.Concrete, r.ActiveFacet)
	case types.ResultUnion:
		return unionText(r.Result.Union)
	case types.ResultConditional:
		return conditionalText(r)
	default: // Dynamic, and anything else we don't special-case
		return "?"
	}
}

func concreteText(c types.ConcreteType, facet types.FacetKind) string {
	switch c.Kind {
	case types.ConcretePrimitive:
		return string(c.Primitive)
	case types.ConcretePlatform:
		return c.Ref.QualifiedName
	case types.ConcreteConfiguration:
		if facet != "" {
			return fmt.Sprintf("%s[%s]", c.Ref.QualifiedName, facet)
		}
		return c.Ref.QualifiedName
	case types.ConcreteCollection:
		return fmt.Sprintf("Array(%s)", c.Element.QualifiedName)
	case types.ConcreteFunction:
		return "Function"
	default:
		return "?"
	}
}

func unionText(set types.WeightedSet) string {
	if len(set.Components) == 0 {
		return "?"
	}
	sorted := make([]types.WeightedComponent, len(set.Components))
	copy(sorted, set.Components)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Weight > sorted[j].Weight })

	parts := make([]string, len(sorted))
	for i, c := range sorted {
		parts[i] = fmt.Sprintf("%s ~%.2g", concreteText(c.Type, ""), c.Weight)
	}
	return strings.Join(parts, " | ")
}

func conditionalText(r types.TypeResolution) string {
	thenText, elseText := "?", "?"
	if r.Result.IfTrue != nil {
		thenText = RenderTypeText(*r.Result.IfTrue)
	}
	if r.Result.IfFalse != nil {
		elseText = RenderTypeText(*r.Result.IfFalse)
	}
	return fmt.Sprintf("%s ? %s : %s", r.Result.Guard.Expression, thenText, elseText)
}
