package union

import (
	"testing"

	"github.com/oxhq/typecore/internal/types"
)

func strType() types.ConcreteType {
	return types.ConcreteType{Kind: types.ConcretePrimitive, Primitive: types.PrimitiveString}
}

func numType() types.ConcreteType {
	return types.ConcreteType{Kind: types.ConcretePrimitive, Primitive: types.PrimitiveNumber}
}

func TestNormalizeMergesDuplicatesAndSumsToOne(t *testing.T) {
	set := types.WeightedSet{Components: []types.WeightedComponent{
		{Type: strType(), Weight: 0.3},
		{Type: strType(), Weight: 0.3},
		{Type: numType(), Weight: 0.4},
	}}

	normalized, ok := Normalize(set)
	if !ok {
		t.Fatalf("expected normalization to succeed")
	}
	if len(normalized.Components) != 2 {
		t.Fatalf("expected 2 merged components, got %d", len(normalized.Components))
	}
	total := 0.0
	for _, c := range normalized.Components {
		total += c.Weight
	}
	if total < 1-Tolerance || total > 1+Tolerance {
		t.Fatalf("expected weights to sum to 1, got %f", total)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	set := types.WeightedSet{Components: []types.WeightedComponent{
		{Type: strType(), Weight: 0.6},
		{Type: numType(), Weight: 0.4},
	}}
	once, ok := Normalize(set)
	if !ok {
		t.Fatalf("first normalize failed")
	}
	twice, ok := Normalize(once)
	if !ok {
		t.Fatalf("second normalize failed")
	}
	if len(once.Components) != len(twice.Components) {
		t.Fatalf("normalize not idempotent in component count")
	}
	for i := range once.Components {
		if twice.Components[i].Weight < once.Components[i].Weight-Tolerance ||
			twice.Components[i].Weight > once.Components[i].Weight+Tolerance {
			t.Fatalf("normalize not idempotent in weights")
		}
	}
}

func TestNormalizeDropsBelowEpsilon(t *testing.T) {
	set := types.WeightedSet{Components: []types.WeightedComponent{
		{Type: strType(), Weight: 0.995},
		{Type: numType(), Weight: 0.005},
	}}
	normalized, ok := Normalize(set)
	if !ok {
		t.Fatalf("expected success")
	}
	if len(normalized.Components) != 1 {
		t.Fatalf("expected low-weight component dropped, got %d components", len(normalized.Components))
	}
}

func TestNormalizeAllZeroCollapsesToFalse(t *testing.T) {
	set := types.WeightedSet{Components: []types.WeightedComponent{
		{Type: strType(), Weight: 0},
		{Type: numType(), Weight: 0},
	}}
	_, ok := Normalize(set)
	if ok {
		t.Fatalf("expected all-zero weights to collapse")
	}
}

func TestJoinDynamicPropagates(t *testing.T) {
	a := types.ConcreteResolution(strType(), "", nil)
	b := types.DynamicResolution(types.Inferred(0.4))

	joined := Join(a, b)
	if !joined.IsDynamic() {
		t.Fatalf("expected dynamic propagation")
	}
	want := 1.0 * 0.9 // max(conf(a)=1 for Known, conf(b)=0.4) * 0.9
	if joined.Certainty.Confidence < want-Tolerance || joined.Certainty.Confidence > want+Tolerance {
		t.Fatalf("expected confidence %f, got %f", want, joined.Certainty.Confidence)
	}
}

func TestJoinMergesTwoConcreteIntoUnion(t *testing.T) {
	a := types.ConcreteResolution(strType(), "", nil)
	b := types.ConcreteResolution(numType(), "", nil)

	joined := Join(a, b)
	if joined.Result.Kind != types.ResultUnion {
		t.Fatalf("expected union result, got %s", joined.Result.Kind)
	}
	if len(joined.Result.Union.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(joined.Result.Union.Components))
	}
}

func TestJoinSameTypeCollapsesToConcrete(t *testing.T) {
	a := types.ConcreteResolution(strType(), "", nil)
	b := types.ConcreteResolution(strType(), "", nil)

	joined := Join(a, b)
	if joined.Result.Kind != types.ResultConcrete {
		t.Fatalf("expected singleton union to collapse to Concrete, got %s", joined.Result.Kind)
	}
}

func TestSubsumes(t *testing.T) {
	superset := types.WeightedSet{Components: []types.WeightedComponent{
		{Type: strType(), Weight: 0.5},
		{Type: numType(), Weight: 0.5},
	}}
	subset := types.WeightedSet{Components: []types.WeightedComponent{
		{Type: strType(), Weight: 1},
	}}
	if !Subsumes(superset, subset) {
		t.Fatalf("expected superset to subsume subset")
	}
	if Subsumes(subset, superset) {
		t.Fatalf("did not expect subset to subsume superset")
	}
}

func TestNarrowEmptyYieldsUnknown(t *testing.T) {
	set := types.WeightedSet{Components: []types.WeightedComponent{
		{Type: strType(), Weight: 1},
	}}
	result := Narrow(set, numType())
	if result.Certainty.Kind != types.CertaintyUnknown {
		t.Fatalf("expected Unknown certainty when narrow finds nothing")
	}
}

func TestMostLikelyBreaksTiesBySourcePrecedence(t *testing.T) {
	platform := types.ConcreteType{Kind: types.ConcretePlatform, Ref: types.RefTo("Array")}
	set := types.WeightedSet{Components: []types.WeightedComponent{
		{Type: strType(), Weight: 0.5},
		{Type: platform, Weight: 0.5},
	}}
	best, ok := MostLikely(set)
	if !ok {
		t.Fatalf("expected a result")
	}
	if best.Kind != types.ConcretePlatform {
		t.Fatalf("expected platform type to win tie, got %s", best.Kind)
	}
}

func TestCompatible(t *testing.T) {
	set := types.WeightedSet{Components: []types.WeightedComponent{
		{Type: strType(), Weight: 0.5},
		{Type: numType(), Weight: 0.5},
	}}
	if !Compatible(strType(), set) {
		t.Fatalf("expected String to be compatible")
	}
	boolType := types.ConcreteType{Kind: types.ConcretePrimitive, Primitive: types.PrimitiveBoolean}
	if Compatible(boolType, set) {
		t.Fatalf("did not expect Boolean to be compatible")
	}
}
