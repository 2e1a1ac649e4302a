package resolver

import (
	"github.com/oxhq/typecore/internal/facet"
	"github.com/oxhq/typecore/internal/repository"
	"github.com/oxhq/typecore/internal/sourceast"
	"github.com/oxhq/typecore/internal/types"
)

// chainDecay is the per-link confidence decay factor applied while walking
// a dotted chain: each additional link multiplies confidence by this much.
const chainDecay = 0.95

// ExpressionResolver handles dotted chains a.b.c.d() by iterating: resolve
// head, take its active-facet method/property table, produce the next
// TypeResolution. Priority 60. It recurses through the service rather than
// resolving heads itself, so built-in/platform/configuration/source-code
// resolvers each still own their own identifiers.
type ExpressionResolver struct {
	Service *Service
	Repo    *repository.Repository
}

// NewExpressionResolver builds an expression resolver wired to the
// dispatching service (for recursive head resolution) and repository (for
// method/property lookups).
func NewExpressionResolver(service *Service, repo *repository.Repository) *ExpressionResolver {
	return &ExpressionResolver{Service: service, Repo: repo}
}

// Priority implements Resolver.
func (*ExpressionResolver) Priority() int { return 60 }

// CanResolve implements Resolver. Bare identifiers are left to the other
// resolvers; this one only handles chains of at least one link.
func (e *ExpressionResolver) CanResolve(expr *sourceast.Node, _ Context) bool {
	if expr == nil {
		return false
	}
	switch expr.Kind {
	case sourceast.KindMemberAccess:
		return expr.Base != nil
	case sourceast.KindCall:
		return expr.Base != nil && expr.Base.Kind == sourceast.KindMemberAccess
	default:
		return false
	}
}

// Resolve implements Resolver.
func (e *ExpressionResolver) Resolve(expr *sourceast.Node, ctx Context) types.TypeResolution {
	switch expr.Kind {
	case sourceast.KindMemberAccess:
		return e.resolveMemberAccess(expr, ctx)
	case sourceast.KindCall:
		return e.resolveCall(expr, ctx)
	default:
		return types.UnknownResolution("expression resolver cannot handle this node kind")
	}
}

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

func (e *ExpressionResolver) resolveMemberAccess(expr *sourceast.Node, ctx Context) types.TypeResolution {
	headCtx := ctx
	headCtx.ChainDepth = ctx.ChainDepth + 1
	head := e.Service.Resolve(expr.Base, headCtx)
	if head.IsDynamic() {
		return types.DynamicResolution(types.Inferred(certaintyValue(head.Certainty) * chainDecay))
	}

	prop, ok := e.lookupProperty(head, expr.Name)
	if !ok {
		return types.UnknownResolution("no property " + expr.Name + " on resolved head type")
	}

	resolved := e.resolveReference(prop.Type, ctx)
	return decayResolution(resolved, certaintyValue(head.Certainty))
}

func (e *ExpressionResolver) resolveCall(expr *sourceast.Node, ctx Context) types.TypeResolution {
	callee := expr.Base // MemberAccess: Base = receiver, Name = method name
	if callee == nil || callee.Base == nil {
		return types.UnknownResolution("call has no resolvable receiver")
	}

	receiverCtx := ctx
	receiverCtx.ChainDepth = ctx.ChainDepth + 1
	receiver := e.Service.Resolve(callee.Base, receiverCtx)
	if receiver.IsDynamic() {
		return types.DynamicResolution(types.Inferred(certaintyValue(receiver.Certainty) * chainDecay))
	}

	if receiver.Result.Kind == types.ResultConcrete && receiver.Result.Concrete.Kind == types.ConcreteConfiguration {
		if transitioned, ok := e.facetTransition(receiver, callee.Name); ok {
			return decayResolution(transitioned, certaintyValue(receiver.Certainty))
		}
	}

	method, ok := e.lookupMethod(receiver, callee.Name)
	if !ok || method.ReturnType == nil {
		return types.UnknownResolution("no callable method " + callee.Name + " on resolved receiver type")
	}

	resolved := e.resolveReference(*method.ReturnType, ctx)
	return decayResolution(resolved, certaintyValue(receiver.Certainty))
}

// facetTransition applies the find/create-or-load facet transitions for a
// method call on a Configuration-faceted receiver.
func (e *ExpressionResolver) facetTransition(receiver types.TypeResolution, methodName string) (types.TypeResolution, bool) {
	var target types.FacetKind
	switch {
	case isFindOperation(methodName):
		target = types.FacetReference
	case isCreateOrLoadOperation(methodName):
		target = types.FacetObject
	default:
		return types.TypeResolution{}, false
	}
	ct := receiver.Result.Concrete
	ct.Facet = target
	return types.ConcreteResolution(ct, target, receiver.AvailableFacets), true
}

// decayResolution applies a single link's confidence decay on top of the
// head's already-decayed confidence. The head's certainty already embeds
// the decay accumulated by every earlier link in the chain (each recursive
// call through Service.Resolve applies exactly one factor of chainDecay),
// so this must multiply by chainDecay once per call, never by a power of
// the chain depth — doing so double-counts links already decayed by the
// recursive head resolution (spec §4.2, scenario §8.2.4: depth 3 yields
// c × 0.95^3, not c × 0.95^6).
func decayResolution(r types.TypeResolution, headConfidence float64) types.TypeResolution {
	if r.Certainty.Kind == types.CertaintyUnknown {
		return r
	}
	decayed := headConfidence * certaintyValue(r.Certainty) * chainDecay
	r.Certainty = types.Inferred(decayed)
	r.Source = types.ProvenanceInferred
	return r
}

func (e *ExpressionResolver) entityFor(res types.TypeResolution) (types.RawTypeData, bool) {
	if res.Result.Kind != types.ResultConcrete || e.Repo == nil {
		return types.RawTypeData{}, false
	}
	ct := res.Result.Concrete
	if ct.Kind != types.ConcretePlatform && ct.Kind != types.ConcreteConfiguration {
		return types.RawTypeData{}, false
	}
	return e.Repo.GetByQualifiedName(types.BilingualName{ASCII: ct.Ref.QualifiedName})
}

func (e *ExpressionResolver) lookupProperty(res types.TypeResolution, name string) (types.Property, bool) {
	raw, ok := e.entityFor(res)
	if !ok {
		return types.Property{}, false
	}
	for _, p := range raw.Properties {
		if p.Name.ASCII == name {
			return p, true
		}
	}
	return types.Property{}, false
}

func (e *ExpressionResolver) lookupMethod(res types.TypeResolution, name string) (types.Method, bool) {
	raw, ok := e.entityFor(res)
	if !ok {
		return types.Method{}, false
	}
	for _, m := range raw.Methods {
		if m.Name.ASCII == name {
			return m, true
		}
	}
	return types.Method{}, false
}

// resolveReference turns a TypeReference into a concrete resolution by
// consulting the repository, honoring the collection-element and built-in
// primitive shortcuts before falling back to a platform/configuration
// lookup.
func (e *ExpressionResolver) resolveReference(ref types.TypeReference, ctx Context) types.TypeResolution {
	if ref.Unknown {
		return types.UnknownResolution("unresolved type reference")
	}
	if ref.ElementOf != nil {
		return types.ConcreteResolution(types.ConcreteType{
			Kind:    types.ConcreteCollection,
			Element: *ref.ElementOf,
		}, types.FacetCollection, []types.FacetKind{types.FacetCollection})
	}
	if prim, ok := builtinNames[toLowerASCII(ref.QualifiedName)]; ok {
		return types.ConcreteResolution(types.ConcreteType{Kind: types.ConcretePrimitive, Primitive: prim}, "", nil)
	}
	if e.Repo == nil {
		return types.UnknownResolution("no repository available to resolve reference")
	}
	raw, ok := e.Repo.GetByQualifiedName(types.BilingualName{ASCII: ref.QualifiedName})
	if !ok {
		return types.UnknownResolution("unresolved reference: " + ref.QualifiedName)
	}
	switch raw.Source {
	case types.SourcePlatform:
		active := facet.Resolve(raw.AvailableFacets, facet.Context{Override: ctx.FacetOverride})
		return types.ConcreteResolution(types.ConcreteType{Kind: types.ConcretePlatform, Ref: types.RefTo(raw.Name.ASCII)}, active, raw.AvailableFacets)
	case types.SourceConfiguration:
		active := facet.Resolve(raw.AvailableFacets, facet.Context{Override: types.FacetManager})
		return types.ConcreteResolution(types.ConcreteType{Kind: types.ConcreteConfiguration, Ref: types.RefTo(raw.Name.ASCII), Facet: active}, active, raw.AvailableFacets)
	default:
		return types.UnknownResolution("reference resolved to an entity with no usable facet")
	}
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
