package resolver

import (
	"math"
	"testing"

	"github.com/oxhq/typecore/internal/repository"
	"github.com/oxhq/typecore/internal/sourceast"
	"github.com/oxhq/typecore/internal/types"
)

func ident(name string) *sourceast.Node {
	return &sourceast.Node{Kind: sourceast.KindIdentifier, Name: name}
}

func member(base *sourceast.Node, name string) *sourceast.Node {
	return &sourceast.Node{Kind: sourceast.KindMemberAccess, Base: base, Name: name}
}

// TestChainDecayAppliesOncePerLink reproduces the three-link chain a.b.c.d
// from scenario §8.2.4: a is Known, every step is a known property, and the
// resolved confidence after three dotted links must be chainDecay^3, not a
// double-counted chainDecay^6.
func TestChainDecayAppliesOncePerLink(t *testing.T) {
	repo := repository.New()
	for _, raw := range []types.RawTypeData{
		{
			Name:   types.BilingualName{ASCII: "A"},
			Source: types.SourcePlatform,
			Properties: []types.Property{
				{Name: types.BilingualName{ASCII: "b"}, Type: types.RefTo("B")},
			},
		},
		{
			Name:   types.BilingualName{ASCII: "B"},
			Source: types.SourcePlatform,
			Properties: []types.Property{
				{Name: types.BilingualName{ASCII: "c"}, Type: types.RefTo("C")},
			},
		},
		{
			Name:   types.BilingualName{ASCII: "C"},
			Source: types.SourcePlatform,
			Properties: []types.Property{
				{Name: types.BilingualName{ASCII: "d"}, Type: types.RefTo("Number")},
			},
		},
	} {
		if err := repo.Put(raw); err != nil {
			t.Fatalf("Put(%s): %v", raw.Name.ASCII, err)
		}
	}

	svc := NewService(&SourceCodeResolver{})
	svc.Register(NewExpressionResolver(svc, repo))

	seed := map[string]types.TypeResolution{
		"a": types.ConcreteResolution(types.ConcreteType{Kind: types.ConcretePlatform, Ref: types.RefTo("A")}, "", nil),
	}

	a := ident("a")
	ab := member(a, "b")
	abc := member(ab, "c")
	abcd := member(abc, "d")

	ctx := Context{CurrentState: seed}

	cases := []struct {
		name  string
		expr  *sourceast.Node
		power int
	}{
		{"a.b", ab, 1},
		{"a.b.c", abc, 2},
		{"a.b.c.d", abcd, 3},
	}

	for _, tc := range cases {
		res := svc.Resolve(tc.expr, ctx)
		want := math.Pow(chainDecay, float64(tc.power))
		got := certaintyValue(res.Certainty)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("%s: confidence = %v, want %v (chainDecay^%d)", tc.name, got, want, tc.power)
		}
	}
}
