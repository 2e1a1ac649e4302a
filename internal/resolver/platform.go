package resolver

import (
	"github.com/oxhq/typecore/internal/facet"
	"github.com/oxhq/typecore/internal/repository"
	"github.com/oxhq/typecore/internal/sourceast"
	"github.com/oxhq/typecore/internal/types"
)

// PlatformResolver recognizes names of platform-provided entities loaded
// from documentation. Priority 80. Grounded on the teacher's
// registry.GetProvider exact+alias lookup, generalized from "by language
// name/extension" to "by entity qualified name, source-filtered to
// Platform".
type PlatformResolver struct {
	Repo *repository.Repository
}

// NewPlatformResolver builds a resolver bound to a (frozen) repository.
func NewPlatformResolver(repo *repository.Repository) *PlatformResolver {
	return &PlatformResolver{Repo: repo}
}

// Priority implements Resolver.
func (*PlatformResolver) Priority() int { return 80 }

func (p *PlatformResolver) lookup(expr *sourceast.Node) (types.RawTypeData, bool) {
	if expr == nil || expr.Kind != sourceast.KindIdentifier || p.Repo == nil {
		return types.RawTypeData{}, false
	}
	raw, ok := p.Repo.GetByQualifiedName(types.BilingualName{ASCII: expr.Name})
	if !ok || raw.Source != types.SourcePlatform {
		return types.RawTypeData{}, false
	}
	return raw, true
}

// CanResolve implements Resolver.
func (p *PlatformResolver) CanResolve(expr *sourceast.Node, _ Context) bool {
	_, ok := p.lookup(expr)
	return ok
}

// Resolve implements Resolver.
func (p *PlatformResolver) Resolve(expr *sourceast.Node, ctx Context) types.TypeResolution {
	raw, ok := p.lookup(expr)
	if !ok {
		return types.UnknownResolution("not a known platform entity")
	}
	active := facet.Resolve(raw.AvailableFacets, facet.Context{Override: ctx.FacetOverride})
	return types.ConcreteResolution(types.ConcreteType{
		Kind: types.ConcretePlatform,
		Ref:  types.RefTo(raw.Name.ASCII),
	}, active, raw.AvailableFacets)
}
