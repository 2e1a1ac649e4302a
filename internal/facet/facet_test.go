package facet

import (
	"testing"

	"github.com/oxhq/typecore/internal/types"
)

func TestResolveDefaultPriority(t *testing.T) {
	available := []types.FacetKind{types.FacetObject, types.FacetManager, types.FacetReference}
	got := Resolve(available, Context{})
	if got != types.FacetManager {
		t.Fatalf("expected Manager to win default priority, got %s", got)
	}
}

func TestResolveOverrideWins(t *testing.T) {
	available := []types.FacetKind{types.FacetObject, types.FacetManager, types.FacetReference}
	got := Resolve(available, Context{Override: types.FacetReference})
	if got != types.FacetReference {
		t.Fatalf("expected override to win, got %s", got)
	}
}

func TestResolveOverrideNotAvailableFallsBackToPriority(t *testing.T) {
	available := []types.FacetKind{types.FacetObject, types.FacetManager}
	got := Resolve(available, Context{Override: types.FacetCollection})
	if got != types.FacetManager {
		t.Fatalf("expected fallback to priority list, got %s", got)
	}
}

func TestResolveEmptyAvailable(t *testing.T) {
	if got := Resolve(nil, Context{}); got != "" {
		t.Fatalf("expected empty facet for empty available set, got %s", got)
	}
}

func TestTransitionForOperation(t *testing.T) {
	tests := []struct {
		op   Operation
		want types.FacetKind
	}{
		{OperationRootAccess, types.FacetManager},
		{OperationFind, types.FacetReference},
		{OperationCreateOrLoad, types.FacetObject},
	}
	for _, tt := range tests {
		if got := TransitionForOperation(tt.op); got != tt.want {
			t.Errorf("TransitionForOperation(%s) = %s, want %s", tt.op, got, tt.want)
		}
	}
}
