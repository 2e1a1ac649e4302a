package repository

import (
	"errors"
	"testing"

	"github.com/oxhq/typecore/internal/types"
)

func sampleRaw(name string) types.RawTypeData {
	return types.RawTypeData{
		Name:            types.BilingualName{ASCII: name, Native: name + "-native"},
		Category:        "catalog",
		Source:          types.SourceConfiguration,
		Documentation:   "doc for " + name,
		AvailableFacets: []types.FacetKind{types.FacetManager, types.FacetReference},
	}
}

func TestPutIdempotentInsert(t *testing.T) {
	repo := New()
	raw := sampleRaw("Items")

	if err := repo.Put(raw); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if err := repo.Put(raw); err != nil {
		t.Fatalf("idempotent Put should be a no-op, got: %v", err)
	}

	got, ok := repo.GetByID(raw.ID())
	if !ok || got.Name.ASCII != "Items" {
		t.Fatalf("GetByID did not return inserted entity")
	}
}

func TestPutDuplicateMismatchFails(t *testing.T) {
	repo := New()
	raw := sampleRaw("Items")
	if err := repo.Put(raw); err != nil {
		t.Fatalf("Put: %v", err)
	}

	mismatched := raw
	mismatched.Documentation = "different doc"
	err := repo.Put(mismatched)
	if !errors.Is(err, ErrDuplicateEntity) {
		t.Fatalf("expected ErrDuplicateEntity, got %v", err)
	}
}

func TestPutAfterFreezeFails(t *testing.T) {
	repo := New()
	repo.Freeze()

	err := repo.Put(sampleRaw("Items"))
	if !errors.Is(err, ErrRepositoryFrozen) {
		t.Fatalf("expected ErrRepositoryFrozen, got %v", err)
	}
}

func TestGetByQualifiedNameCaseAndScriptInsensitive(t *testing.T) {
	repo := New()
	raw := sampleRaw("Items")
	if err := repo.Put(raw); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := repo.GetByQualifiedName(types.BilingualName{ASCII: "items", Native: "Items-native"})
	if !ok || got.ID() != raw.ID() {
		t.Fatalf("expected case/script-insensitive lookup to succeed")
	}
}

func TestSearchStableOrder(t *testing.T) {
	repo := New()
	for _, n := range []string{"Zebra", "Alpha", "Mango"} {
		if err := repo.Put(sampleRaw(n)); err != nil {
			t.Fatalf("Put(%s): %v", n, err)
		}
	}

	results := repo.Search(Filters{Category: "catalog"})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	names := []string{results[0].Name.ASCII, results[1].Name.ASCII, results[2].Name.ASCII}
	want := []string{"Alpha", "Mango", "Zebra"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected sorted order %v, got %v", want, names)
		}
	}
}

func TestStatistics(t *testing.T) {
	repo := New()
	_ = repo.Put(sampleRaw("Items"))
	_ = repo.Put(sampleRaw("Orders"))

	stats := repo.Statistics()
	if stats.TotalEntities != 2 {
		t.Fatalf("expected 2 entities, got %d", stats.TotalEntities)
	}
	if stats.BySource[types.SourceConfiguration] != 2 {
		t.Fatalf("expected 2 configuration entities, got %d", stats.BySource[types.SourceConfiguration])
	}
}
