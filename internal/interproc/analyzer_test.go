package interproc

import (
	"context"
	"testing"

	"github.com/oxhq/typecore/internal/flow"
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

func block(stmts ...*sourceast.Node) *sourceast.Node {
	return &sourceast.Node{Kind: sourceast.KindBlock, Children: stmts}
}

func ret(expr *sourceast.Node) *sourceast.Node {
	return &sourceast.Node{Kind: sourceast.KindReturn, Value: expr}
}

func call(callee string, args ...*sourceast.Node) *sourceast.Node {
	return &sourceast.Node{Kind: sourceast.KindCall, Base: ident(callee), Arguments: args}
}

// leaf() returns "ok"; caller() returns leaf() — a trivial two-node, non-
// recursive call graph exercising SCC condensation and the wildcard-shape
// summary cache.
func buildLeafCallerModule() (*sourceast.Node, *Graph) {
	leaf := &sourceast.Node{Kind: sourceast.KindFunctionDecl, Name: "leaf", Body: block(ret(strLit("ok")))}
	caller := &sourceast.Node{Kind: sourceast.KindFunctionDecl, Name: "caller", Body: block(ret(call("leaf")))}
	module := &sourceast.Node{Kind: sourceast.KindModule, Children: []*sourceast.Node{leaf, caller}}
	return module, BuildFromModule(module)
}

func TestCondensationOrdersCalleeBeforeCaller(t *testing.T) {
	_, g := buildLeafCallerModule()
	sccs := g.condensation()
	if len(sccs) != 2 {
		t.Fatalf("expected 2 singleton SCCs, got %d", len(sccs))
	}
	if sccs[0][0] != "leaf" || sccs[1][0] != "caller" {
		t.Fatalf("expected leaf before caller in reverse-topological order, got %v", sccs)
	}
}

func newTestAnalyzer(graph *Graph) (*Analyzer, *Cache) {
	cache := NewCache()
	svc := resolver.NewService(resolver.BuiltInResolver{}, resolver.NewSourceCodeResolver(nil, nil))
	svc.Register(NewCallResolver(graph, cache, svc))
	return NewAnalyzer(graph, cache, svc, nil, flow.NewStore()), cache
}

func TestAnalyzeAllResolvesCallThroughSummaryCache(t *testing.T) {
	_, g := buildLeafCallerModule()
	a, cache := newTestAnalyzer(g)

	if err := a.AnalyzeAll(context.Background()); err != nil {
		t.Fatalf("AnalyzeAll returned error: %v", err)
	}

	leafSummary, ok := cache.Get("leaf", wildcardKey(0))
	if !ok {
		t.Fatalf("expected a cached summary for leaf")
	}
	if leafSummary.Return.Result.Kind != types.ResultConcrete || leafSummary.Return.Result.Concrete.Primitive != types.PrimitiveString {
		t.Fatalf("expected leaf to return Concrete(String), got %+v", leafSummary.Return)
	}

	callerSummary, ok := cache.Get("caller", wildcardKey(0))
	if !ok {
		t.Fatalf("expected a cached summary for caller")
	}
	if callerSummary.Return.Result.Kind != types.ResultConcrete || callerSummary.Return.Result.Concrete.Primitive != types.PrimitiveString {
		t.Fatalf("expected caller's return to resolve through leaf's summary to Concrete(String), got %+v", callerSummary.Return)
	}
}

// even() calls odd() and odd() calls even(): a genuine two-function mutual
// recursion with no base case. With the test's Bound of 1 the fixed point
// exceeds the bound and widens both to Dynamic with an
// interproc.recursion_bound diagnostic.
func buildMutualRecursionModule() *Graph {
	even := &sourceast.Node{Kind: sourceast.KindFunctionDecl, Name: "even", Parameters: []string{"n"}, Body: block(ret(call("odd", ident("n"))))}
	odd := &sourceast.Node{Kind: sourceast.KindFunctionDecl, Name: "odd", Parameters: []string{"n"}, Body: block(ret(call("even", ident("n"))))}
	module := &sourceast.Node{Kind: sourceast.KindModule, Children: []*sourceast.Node{even, odd}}
	return BuildFromModule(module)
}

func TestMutualRecursionWidensAfterBoundExceeded(t *testing.T) {
	g := buildMutualRecursionModule()
	a, cache := newTestAnalyzer(g)
	a.Bound = 1 // forces the bound-exceeded path deterministically: one pass is never enough to observe stability

	if err := a.AnalyzeAll(context.Background()); err != nil {
		t.Fatalf("AnalyzeAll returned error: %v", err)
	}

	evenSummary, ok := cache.Get("even", wildcardKey(1))
	if !ok {
		t.Fatalf("expected a cached summary for even")
	}
	if evenSummary.Return.Result.Kind != types.ResultDynamic {
		t.Fatalf("expected even's return widened to Dynamic, got %+v", evenSummary.Return)
	}

	found := false
	for _, d := range a.Diagnostics() {
		if d.Code == "interproc.recursion_bound" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an interproc.recursion_bound diagnostic, got %+v", a.Diagnostics())
	}
}

func TestCanonicalArgsIsPositionalNotSorted(t *testing.T) {
	a := []types.TypeResolution{
		types.ConcreteResolution(types.ConcreteType{Kind: types.ConcretePrimitive, Primitive: types.PrimitiveString}, "", nil),
		types.ConcreteResolution(types.ConcreteType{Kind: types.ConcretePrimitive, Primitive: types.PrimitiveNumber}, "", nil),
	}
	b := []types.TypeResolution{a[1], a[0]}
	if CanonicalArgs(a) == CanonicalArgs(b) {
		t.Fatalf("expected argument order to affect the canonical key")
	}
}
