package flow

import (
	"github.com/oxhq/typecore/internal/sourceast"
	"github.com/oxhq/typecore/internal/types"
	"github.com/oxhq/typecore/internal/union"
)

// narrowFunc applies one guard's effect to a state, returning the narrowed
// state (never mutating the input).
type narrowFunc func(State) State

// guardEffect pairs the positive (guard holds) and negative (guard fails)
// narrowings extracted from one condition (spec §4.3.1).
type guardEffect struct {
	positive narrowFunc
	negative narrowFunc
}

func identityState(s State) State { return s }

func noopEffect() guardEffect {
	return guardEffect{positive: identityState, negative: identityState}
}

// extractGuard recognizes the guard patterns of spec §4.3.1 and returns the
// narrowing functions for the positive (then) and negative (else) branches.
// Conjunctions intersect their positive narrowings and union their negated
// ones; disjunctions do the reverse (De Morgan). Any other guard shape is
// opaque and narrows nothing.
func (a *Analyzer) extractGuard(cond *sourceast.Node) guardEffect {
	if cond == nil {
		return noopEffect()
	}
	switch cond.Kind {
	case sourceast.KindLogicalAnd:
		l := a.extractGuard(cond.Left)
		r := a.extractGuard(cond.Right)
		return guardEffect{
			positive: func(s State) State { return r.positive(l.positive(s)) },
			negative: func(s State) State { return unionStates(l.negative(s), r.negative(s)) },
		}
	case sourceast.KindLogicalOr:
		l := a.extractGuard(cond.Left)
		r := a.extractGuard(cond.Right)
		return guardEffect{
			positive: func(s State) State { return unionStates(l.positive(s), r.positive(s)) },
			negative: func(s State) State { return r.negative(l.negative(s)) },
		}
	case sourceast.KindBinaryGuard:
		return a.extractBinaryGuard(cond)
	case sourceast.KindUnaryGuard:
		return a.extractUnaryGuard(cond)
	default:
		return noopEffect()
	}
}

func (a *Analyzer) extractBinaryGuard(cond *sourceast.Node) guardEffect {
	if varName, typeName, ok := typeOfComparison(cond); ok {
		target, tok := a.resolveTypeName(typeName)
		if !tok {
			return noopEffect()
		}
		positive := narrowVarTo(varName, target)
		negative := narrowVarAway(varName, target)
		if cond.Operator == "!=" {
			positive, negative = negative, positive
		}
		return guardEffect{positive: positive, negative: negative}
	}
	if varName, lit, ok := literalComparison(cond); ok {
		target, tok := primitiveForLiteral(lit)
		if !tok {
			return noopEffect()
		}
		positive := narrowVarTo(varName, target)
		negative := narrowVarAway(varName, target)
		if cond.Operator == "!=" {
			positive, negative = negative, positive
		}
		return guardEffect{positive: positive, negative: negative}
	}
	return noopEffect()
}

func (a *Analyzer) extractUnaryGuard(cond *sourceast.Node) guardEffect {
	if cond.Base == nil || cond.Base.Kind != sourceast.KindIdentifier {
		return noopEffect()
	}
	varName := cond.Base.Name
	var target types.ConcreteType
	switch cond.GuardKind {
	case "is_null":
		target = types.ConcreteType{Kind: types.ConcretePrimitive, Primitive: types.PrimitiveNull}
	case "is_undefined":
		target = types.ConcreteType{Kind: types.ConcretePrimitive, Primitive: types.PrimitiveUndefined}
	default:
		return noopEffect()
	}
	return guardEffect{positive: narrowVarTo(varName, target), negative: narrowVarAway(varName, target)}
}

// typeOfComparison recognizes `type_of(x) == T` / `!= T` in either operand
// order.
func typeOfComparison(cond *sourceast.Node) (varName, typeName string, ok bool) {
	if cond.Operator != "==" && cond.Operator != "!=" {
		return "", "", false
	}
	if v, t, matched := matchTypeOfCall(cond.Left, cond.Right); matched {
		return v, t, true
	}
	if v, t, matched := matchTypeOfCall(cond.Right, cond.Left); matched {
		return v, t, true
	}
	return "", "", false
}

func matchTypeOfCall(callSide, typeSide *sourceast.Node) (string, string, bool) {
	if callSide == nil || callSide.Kind != sourceast.KindCall {
		return "", "", false
	}
	if callSide.Base == nil || callSide.Base.Kind != sourceast.KindIdentifier || callSide.Base.Name != "type_of" {
		return "", "", false
	}
	if len(callSide.Arguments) != 1 || callSide.Arguments[0].Kind != sourceast.KindIdentifier {
		return "", "", false
	}
	if typeSide == nil || typeSide.Kind != sourceast.KindIdentifier {
		return "", "", false
	}
	return callSide.Arguments[0].Name, typeSide.Name, true
}

// literalComparison recognizes `x == literal` in either operand order
// (spec §4.3.1: "x == literal").
func literalComparison(cond *sourceast.Node) (varName string, lit *sourceast.Node, ok bool) {
	if cond.Operator != "==" && cond.Operator != "!=" {
		return "", nil, false
	}
	if cond.Left != nil && cond.Left.Kind == sourceast.KindIdentifier && cond.Right != nil && cond.Right.Kind == sourceast.KindLiteral {
		return cond.Left.Name, cond.Right, true
	}
	if cond.Right != nil && cond.Right.Kind == sourceast.KindIdentifier && cond.Left != nil && cond.Left.Kind == sourceast.KindLiteral {
		return cond.Right.Name, cond.Left, true
	}
	return "", nil, false
}

func primitiveForLiteral(lit *sourceast.Node) (types.ConcreteType, bool) {
	var p types.Primitive
	switch lit.LiteralKind {
	case sourceast.LiteralString:
		p = types.PrimitiveString
	case sourceast.LiteralNumber:
		p = types.PrimitiveNumber
	case sourceast.LiteralBoolean:
		p = types.PrimitiveBoolean
	case sourceast.LiteralNull:
		p = types.PrimitiveNull
	case sourceast.LiteralUndefined:
		p = types.PrimitiveUndefined
	default:
		return types.ConcreteType{}, false
	}
	return types.ConcreteType{Kind: types.ConcretePrimitive, Primitive: p}, true
}

// narrowVarTo builds a narrowing function that restricts a variable's
// resolution to components compatible with target (spec §4.4 Narrow).
func narrowVarTo(name string, target types.ConcreteType) narrowFunc {
	return func(s State) State {
		res, ok := s[name]
		if !ok {
			return s
		}
		next := s.Clone()
		next[name] = narrowResolutionTo(res, target)
		return next
	}
}

func narrowResolutionTo(res types.TypeResolution, target types.ConcreteType) types.TypeResolution {
	switch res.Result.Kind {
	case types.ResultConcrete:
		if res.Result.Concrete.Equal(target) {
			return res
		}
		return types.UnknownResolution("narrow: concrete type incompatible with guard target")
	case types.ResultUnion:
		return union.Narrow(res.Result.Union, target)
	default:
		// Dynamic/Unknown narrowed by a guard: trust the guard, the
		// narrowed type becomes an Inferred fact rather than Known.
		r := types.ConcreteResolution(target, "", nil)
		r.Certainty = types.Inferred(0.7)
		r.Source = types.ProvenanceInferred
		return r
	}
}

// narrowVarAway builds a narrowing function that removes target from a
// variable's resolution (the negated branch of a positive narrowing).
func narrowVarAway(name string, target types.ConcreteType) narrowFunc {
	return func(s State) State {
		res, ok := s[name]
		if !ok {
			return s
		}
		next := s.Clone()
		next[name] = removeFromResolution(res, target)
		return next
	}
}

func removeFromResolution(res types.TypeResolution, target types.ConcreteType) types.TypeResolution {
	switch res.Result.Kind {
	case types.ResultConcrete:
		if res.Result.Concrete.Equal(target) {
			return types.UnknownResolution("narrow: excluded the sole concrete type via a negated guard")
		}
		return res
	case types.ResultUnion:
		survivors := make([]types.WeightedComponent, 0, len(res.Result.Union.Components))
		for _, c := range res.Result.Union.Components {
			if !c.Type.Equal(target) {
				survivors = append(survivors, c)
			}
		}
		if len(survivors) == 0 {
			return types.UnknownResolution("narrow: no components remain after exclusion")
		}
		return fromComponents(survivors)
	default:
		return res // Dynamic stays Dynamic: nothing concrete to exclude
	}
}
