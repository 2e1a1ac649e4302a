package resolver

import (
	"strings"

	"github.com/oxhq/typecore/internal/sourceast"
	"github.com/oxhq/typecore/internal/types"
)

// builtinNames maps reserved primitive type names (both scripts) to their
// Primitive value.
var builtinNames = map[string]types.Primitive{
	"number":    types.PrimitiveNumber,
	"число":     types.PrimitiveNumber,
	"string":    types.PrimitiveString,
	"строка":    types.PrimitiveString,
	"boolean":   types.PrimitiveBoolean,
	"булево":    types.PrimitiveBoolean,
	"date":      types.PrimitiveDate,
	"дата":      types.PrimitiveDate,
	"null":      types.PrimitiveNull,
	"undefined": types.PrimitiveUndefined,
	"неопределено": types.PrimitiveUndefined,
}

// BuiltinPrimitive exposes the reserved primitive name table to callers
// outside this package (the flow analyzer's type_of guard narrowing needs
// it to turn a guard's type-name operand into a ConcreteType).
func BuiltinPrimitive(name string) (types.Primitive, bool) {
	p, ok := builtinNames[strings.ToLower(name)]
	return p, ok
}

// BuiltInResolver recognizes reserved primitive type names. Priority 100.
// It always returns Known/Concrete(Primitive) or Unknown.
type BuiltInResolver struct{}

// Priority implements Resolver.
func (BuiltInResolver) Priority() int { return 100 }

func builtinKey(expr *sourceast.Node) (string, bool) {
	if expr == nil || expr.Kind != sourceast.KindIdentifier {
		return "", false
	}
	key := strings.ToLower(expr.Name)
	_, ok := builtinNames[key]
	return key, ok
}

// CanResolve implements Resolver.
func (BuiltInResolver) CanResolve(expr *sourceast.Node, _ Context) bool {
	_, ok := builtinKey(expr)
	return ok
}

// Resolve implements Resolver.
func (BuiltInResolver) Resolve(expr *sourceast.Node, _ Context) types.TypeResolution {
	key, ok := builtinKey(expr)
	if !ok {
		return types.UnknownResolution("not a built-in primitive name")
	}
	prim := builtinNames[key]
	return types.ConcreteResolution(types.ConcreteType{
		Kind:      types.ConcretePrimitive,
		Primitive: prim,
	}, "", nil)
}
