package resolver

import (
	"strings"

	"github.com/oxhq/typecore/internal/facet"
	"github.com/oxhq/typecore/internal/repository"
	"github.com/oxhq/typecore/internal/sourceast"
	"github.com/oxhq/typecore/internal/types"
)

// metadataRoots is the closed set of configuration metadata roots
// recognized by the configuration resolver, in both scripts.
var metadataRoots = map[string]bool{
	"Catalogs":                    true,
	"Документы":                   true,
	"Documents":                   true,
	"Справочники":                 true,
	"Enums":                       true,
	"Перечисления":                true,
	"InformationRegisters":        true,
	"РегистрыСведений":            true,
	"AccumulationRegisters":       true,
	"РегистрыНакопления":          true,
	"Constants":                   true,
	"Константы":                   true,
	"DataProcessors":              true,
	"Обработки":                   true,
	"Reports":                     true,
	"Отчеты":                      true,
	"ChartsOfAccounts":            true,
	"ChartsOfCharacteristicTypes": true,
	"ExchangePlans":               true,
	"ПланыОбмена":                 true,
}

// ConfigurationResolver recognizes qualified names of the form
// CollectionRoot.ObjectName. Priority 70.
type ConfigurationResolver struct {
	Repo *repository.Repository
}

// NewConfigurationResolver builds a resolver bound to a (frozen) repository.
func NewConfigurationResolver(repo *repository.Repository) *ConfigurationResolver {
	return &ConfigurationResolver{Repo: repo}
}

// Priority implements Resolver.
func (*ConfigurationResolver) Priority() int { return 70 }

func (c *ConfigurationResolver) lookup(expr *sourceast.Node) (types.RawTypeData, bool) {
	if expr == nil || expr.Kind != sourceast.KindMemberAccess || c.Repo == nil {
		return types.RawTypeData{}, false
	}
	if expr.Base == nil || expr.Base.Kind != sourceast.KindIdentifier {
		return types.RawTypeData{}, false
	}
	if !metadataRoots[expr.Base.Name] {
		return types.RawTypeData{}, false
	}
	qualified := expr.Base.Name + "." + expr.Name
	raw, ok := c.Repo.GetByQualifiedName(types.BilingualName{ASCII: qualified})
	if !ok || raw.Source != types.SourceConfiguration {
		return types.RawTypeData{}, false
	}
	return raw, true
}

// CanResolve implements Resolver.
func (c *ConfigurationResolver) CanResolve(expr *sourceast.Node, _ Context) bool {
	_, ok := c.lookup(expr)
	return ok
}

// Resolve implements Resolver. The facet defaults to Manager for a bare
// root access, but honors ctx.FacetOverride when the caller sets one.
// Find/create-or-load transitions on method calls are applied separately,
// by ExpressionResolver, which does not set FacetOverride.
func (c *ConfigurationResolver) Resolve(expr *sourceast.Node, ctx Context) types.TypeResolution {
	raw, ok := c.lookup(expr)
	if !ok {
		return types.UnknownResolution("not a known configuration entity")
	}
	f := types.FacetManager
	if ctx.FacetOverride != "" {
		f = ctx.FacetOverride
	}
	active := facet.Resolve(raw.AvailableFacets, facet.Context{Override: f})
	return types.ConcreteResolution(types.ConcreteType{
		Kind:  types.ConcreteConfiguration,
		Ref:   types.RefTo(raw.Name.ASCII),
		Facet: active,
	}, active, raw.AvailableFacets)
}

// isFindOperation reports whether a call name denotes a find/by-id
// operation, which yields a Reference-faceted result.
func isFindOperation(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "find") || strings.Contains(lower, "byid") || strings.Contains(lower, "bycode")
}

// isCreateOrLoadOperation reports whether a call name denotes a
// create/load operation, which yields an Object-faceted result.
func isCreateOrLoadOperation(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "create") || strings.HasPrefix(lower, "new") ||
		strings.Contains(lower, "getobject") || strings.HasPrefix(lower, "load")
}
