package flow

import (
	"testing"

	"github.com/oxhq/typecore/internal/resolver"
	"github.com/oxhq/typecore/internal/sourceast"
	"github.com/oxhq/typecore/internal/types"
)

func ident(name string) *sourceast.Node {
	return &sourceast.Node{Kind: sourceast.KindIdentifier, Name: name}
}

func strLit(text string) *sourceast.Node {
	return &sourceast.Node{Kind: sourceast.KindLiteral, LiteralKind: sourceast.LiteralString, Text: text}
}

func assign(target string, value *sourceast.Node) *sourceast.Node {
	return &sourceast.Node{Kind: sourceast.KindAssignment, Target: ident(target), Value: value}
}

func block(stmts ...*sourceast.Node) *sourceast.Node {
	return &sourceast.Node{Kind: sourceast.KindBlock, Children: stmts}
}

func newTestAnalyzer() *Analyzer {
	svc := resolver.NewService(resolver.BuiltInResolver{}, resolver.NewSourceCodeResolver(nil, nil))
	return NewAnalyzer(svc, nil, NewStore(), "testfn")
}

// Scenario 1 (spec §8.2.1): x := "hello"; y := x
func TestSimpleAssignmentPropagatesKnownString(t *testing.T) {
	a := newTestAnalyzer()
	fn := &sourceast.Node{
		Kind: sourceast.KindFunctionDecl,
		Body: block(
			assign("x", strLit("hello")),
			assign("y", ident("x")),
		),
	}
	exit := a.AnalyzeFunction(fn)

	y, ok := exit["y"]
	if !ok {
		t.Fatalf("expected y to be bound at exit")
	}
	if y.Certainty.Kind != types.CertaintyKnown {
		t.Fatalf("expected Known certainty for y, got %v", y.Certainty.Kind)
	}
	if y.Result.Kind != types.ResultConcrete || y.Result.Concrete.Primitive != types.PrimitiveString {
		t.Fatalf("expected Concrete(String) for y, got %+v", y.Result)
	}
}

// Scenario 2 (spec §8.2.2): x := if c then "a" else 1 end;
// if type_of(x) = String then r := x end
func TestTypeGuardNarrowsStringInThenBranch(t *testing.T) {
	a := newTestAnalyzer()

	mergedX := mergeStates(
		State{"x": types.ConcreteResolution(types.ConcreteType{Kind: types.ConcretePrimitive, Primitive: types.PrimitiveString}, "", nil)},
		State{"x": types.ConcreteResolution(types.ConcreteType{Kind: types.ConcretePrimitive, Primitive: types.PrimitiveNumber}, "", nil)},
	)["x"]
	if mergedX.Result.Kind != types.ResultUnion {
		t.Fatalf("expected x to be a union of String/Number after merge, got %+v", mergedX.Result)
	}
	if len(mergedX.Result.Union.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(mergedX.Result.Union.Components))
	}
	for _, c := range mergedX.Result.Union.Components {
		if c.Weight < 0.5-1e-9 || c.Weight > 0.5+1e-9 {
			t.Fatalf("expected 0.5/0.5 weights for a Known/Known merge, got %v", c.Weight)
		}
	}

	entry := State{"x": mergedX}
	guardCond := &sourceast.Node{
		Kind:     sourceast.KindBinaryGuard,
		Operator: "==",
		Left: &sourceast.Node{
			Kind: sourceast.KindCall,
			Base: ident("type_of"),
			Arguments: []*sourceast.Node{
				ident("x"),
			},
		},
		Right: ident("String"),
	}
	ifStmt := &sourceast.Node{
		Kind:      sourceast.KindIf,
		Condition: guardCond,
		Then:      block(assign("r", ident("x"))),
	}

	// r is checked where it is used, inside the then branch. At the if's
	// exit r exists on one side only and merges to Union(String, Undefined).
	thenExit := a.analyzeBlock(ifStmt.Then, a.extractGuard(ifStmt.Condition).positive(entry))
	r, ok := thenExit["r"]
	if !ok {
		t.Fatalf("expected r to be bound in the then branch")
	}
	if r.Result.Kind != types.ResultConcrete || r.Result.Concrete.Primitive != types.PrimitiveString {
		t.Fatalf("expected r narrowed to Concrete(String), got %+v", r.Result)
	}
}

// Scenario 6 (spec §8.2.6): a loop whose body reassigns x to an
// ever-different Dynamic value every iteration widens x to Dynamic after
// the bound and attaches a flow.widened diagnostic to the loop header.
func TestLoopWideningOnNonConvergence(t *testing.T) {
	a := newTestAnalyzer()
	a.LoopBound = 3

	wrapCall := &sourceast.Node{Kind: sourceast.KindCall, Base: ident("wrap"), Arguments: []*sourceast.Node{ident("x")}}
	loop := &sourceast.Node{
		Kind:  sourceast.KindLoop,
		Range: sourceast.Range{File: "f.os", StartLine: 1},
		Body:  block(assign("x", wrapCall)),
	}

	entry := State{"x": types.ConcreteResolution(types.ConcreteType{Kind: types.ConcretePrimitive, Primitive: types.PrimitiveString}, "", nil)}
	exit := a.analyzeStatement(loop, entry)

	x, ok := exit["x"]
	if !ok {
		t.Fatalf("expected x to be bound after loop")
	}
	if x.Result.Kind != types.ResultDynamic {
		t.Fatalf("expected x widened to Dynamic, got %+v", x.Result)
	}

	found := false
	for _, d := range a.Diagnostics() {
		if d.Code == "flow.widened" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a flow.widened diagnostic, got %+v", a.Diagnostics())
	}
}

func TestUnaryGuardNarrowsNullAway(t *testing.T) {
	a := newTestAnalyzer()
	union := State{"x": types.TypeResolution{
		Certainty: types.Inferred(0.6),
		Result: types.Result{Kind: types.ResultUnion, Union: types.WeightedSet{Components: []types.WeightedComponent{
			{Type: types.ConcreteType{Kind: types.ConcretePrimitive, Primitive: types.PrimitiveString}, Weight: 0.6},
			{Type: types.ConcreteType{Kind: types.ConcretePrimitive, Primitive: types.PrimitiveNull}, Weight: 0.4},
		}}},
	}}

	guard := &sourceast.Node{Kind: sourceast.KindUnaryGuard, GuardKind: "is_null", Base: ident("x")}
	effect := a.extractGuard(guard)

	negative := effect.negative(union)["x"]
	if negative.Result.Kind != types.ResultConcrete || negative.Result.Concrete.Primitive != types.PrimitiveString {
		t.Fatalf("expected Null excluded leaving bare String, got %+v", negative.Result)
	}
}
