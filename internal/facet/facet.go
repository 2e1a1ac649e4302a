// Package facet maps an underlying (entity, context) pair to the
// appropriate facet and member table.
//
// Grounded on the teacher's provider.BaseProvider default-then-override
// pattern (GetNodeScope/FindEnclosingScope compute a sensible default from
// AST shape, and a concrete provider may override); here the "AST shape"
// input is replaced by the entity's declared AvailableFacets and an
// optional syntactic-context override.
package facet

import "github.com/oxhq/typecore/internal/types"

// defaultPriority orders facets from most to least specific, matching
// spec §4.6: "Collection > Singleton > Manager > Reference > Object >
// Metadata > Constructor".
var defaultPriority = []types.FacetKind{
	types.FacetCollection,
	types.FacetSingleton,
	types.FacetManager,
	types.FacetReference,
	types.FacetObject,
	types.FacetMetadata,
	types.FacetConstructor,
}

// Context describes the syntactic situation the expression resolver is
// evaluating an entity in; a non-empty Override always wins.
type Context struct {
	// Override, when non-empty, is the facet the expression resolver has
	// determined from syntactic context (e.g. "this is the target of a
	// FindByCode call" => Reference).
	Override types.FacetKind
}

// Resolve picks the active facet for an entity given a context, per the
// priority list in spec §4.6, honoring invariant 6 ("active_facet ∈
// available_facets whenever available_facets is non-empty").
func Resolve(available []types.FacetKind, ctx Context) types.FacetKind {
	if len(available) == 0 {
		return ""
	}

	if ctx.Override != "" && contains(available, ctx.Override) {
		return ctx.Override
	}

	for _, candidate := range defaultPriority {
		if contains(available, candidate) {
			return candidate
		}
	}
	// available contains only facets outside the known priority list
	// (shouldn't happen with a closed variant set, but fail safe).
	return available[0]
}

func contains(set []types.FacetKind, target types.FacetKind) bool {
	for _, f := range set {
		if f == target {
			return true
		}
	}
	return false
}

// Operation names one of the three configuration-entity operations named in
// spec §4.2/§4.6: plain root access (Manager), a find/by-id operation
// (Reference), or a create/load operation (Object). TransitionForOperation
// maps each to the facet it produces.
type Operation string

const (
	OperationRootAccess Operation = "root_access"
	OperationFind        Operation = "find"
	OperationCreateOrLoad Operation = "create_or_load"
)

// TransitionForOperation maps a syntactic operation to its resulting facet.
func TransitionForOperation(op Operation) types.FacetKind {
	switch op {
	case OperationFind:
		return types.FacetReference
	case OperationCreateOrLoad:
		return types.FacetObject
	default:
		return types.FacetManager
	}
}
