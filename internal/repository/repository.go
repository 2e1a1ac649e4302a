// Package repository implements the content-addressable store of all known
// type entities. It is the data layer: built once by loaders,
// frozen, then shared read-only by every resolver.
//
// Grounded on the teacher's internal/registry.Registry: a mutex-guarded map
// of canonical identity to record, plus side-indices for alternate lookup
// keys (there: alias/extension; here: name/category/source), generalized
// from "one provider per language" to "many entities, several indices".
package repository

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/oxhq/typecore/internal/types"
)

// Sentinel errors for the invariant-violation error taxonomy.
var (
	ErrDuplicateEntity   = errors.New("repository: duplicate entity with mismatched data")
	ErrRepositoryFrozen  = errors.New("repository: write attempted after freeze")
	ErrNotFound          = errors.New("repository: entity not found")
)

// Repository is the single source of truth for all resolved entities and
// their lookup indices.
type Repository struct {
	mu     sync.RWMutex
	frozen bool

	byID   map[string]types.RawTypeData
	byName map[string]string // canonical name fold -> id, redundant with byID keys but kept explicit for clarity
}

// New creates an empty, writable repository.
func New() *Repository {
	return &Repository{
		byID:   make(map[string]types.RawTypeData),
		byName: make(map[string]string),
	}
}

// Put performs an idempotent insert. Returns ErrDuplicateEntity
// if an entity with the same canonical id already exists and differs, and
// ErrRepositoryFrozen if called after Freeze.
func (r *Repository) Put(raw types.RawTypeData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("%w: %s", ErrRepositoryFrozen, raw.ID())
	}

	id := raw.ID()
	if existing, ok := r.byID[id]; ok {
		if !sameRecord(existing, raw) {
			return fmt.Errorf("%w: %s", ErrDuplicateEntity, id)
		}
		return nil // idempotent no-op
	}

	r.byID[id] = raw
	r.byName[id] = id
	return nil
}

// sameRecord compares the fields that matter for idempotent-insert purposes.
// Method/property slices are compared by length and name only; this mirrors
// the teacher's shallow "already registered" equality check in
// registry.RegisterProvider rather than a full deep-equal.
func sameRecord(a, b types.RawTypeData) bool {
	if a.Category != b.Category || a.Source != b.Source || a.Documentation != b.Documentation {
		return false
	}
	if len(a.Methods) != len(b.Methods) || len(a.Properties) != len(b.Properties) {
		return false
	}
	for i := range a.Methods {
		if a.Methods[i].Name.ASCII != b.Methods[i].Name.ASCII {
			return false
		}
	}
	for i := range a.Properties {
		if a.Properties[i].Name.ASCII != b.Properties[i].Name.ASCII {
			return false
		}
	}
	return true
}

// Freeze performs the one-way transition after which the repository accepts
// no writes and is safe for lock-free concurrent reads.
func (r *Repository) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether Freeze has been called.
func (r *Repository) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// GetByID performs an exact lookup by canonical id.
func (r *Repository) GetByID(id string) (types.RawTypeData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	raw, ok := r.byID[id]
	return raw, ok
}

// GetByQualifiedName performs an exact, case/script-insensitive lookup by
// name (spec §4.1: "Names are matched case-insensitively and
// script-insensitively").
func (r *Repository) GetByQualifiedName(name types.BilingualName) (types.RawTypeData, bool) {
	return r.GetByID(name.CanonicalID())
}

// Filters is a conjunction over optional search criteria.
type Filters struct {
	NameSubstring string
	Category      string
	Source        types.SourceTag
	Facet         types.FacetKind
}

func (f Filters) matches(raw types.RawTypeData) bool {
	if f.NameSubstring != "" && !containsFold(raw.Name.ASCII, f.NameSubstring) && !containsFold(raw.Name.Native, f.NameSubstring) {
		return false
	}
	if f.Category != "" && raw.Category != f.Category {
		return false
	}
	if f.Source != "" && raw.Source != f.Source {
		return false
	}
	if f.Facet != "" {
		found := false
		for _, fk := range raw.AvailableFacets {
			if fk == f.Facet {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	h := []rune(haystack)
	n := []rune(needle)
	for i := 0; i+len(n) <= len(h); i++ {
		match := true
		for j := range n {
			if foldEq(h[i+j], n[j]) {
				continue
			}
			match = false
			break
		}
		if match {
			return true
		}
	}
	return false
}

func foldEq(a, b rune) bool {
	fold := func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}
	return fold(a) == fold(b)
}

// Search returns entities matching the filter conjunction in a stable order:
// (source, category, name) per spec §4.1.
func (r *Repository) Search(f Filters) []types.RawTypeData {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.RawTypeData, 0)
	for _, raw := range r.byID {
		if f.matches(raw) {
			out = append(out, raw)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name.ASCII < out[j].Name.ASCII
	})
	return out
}

// All returns every entity in the repository in the same stable
// (source, category, name) order as Search — used by snapshot.Snapshot to
// enumerate entities for serialization.
func (r *Repository) All() []types.RawTypeData {
	return r.Search(Filters{})
}

// Statistics reports counts per source and per category, and total bytes
// used by documentation strings.
type Statistics struct {
	BySource       map[types.SourceTag]int
	ByCategory     map[string]int
	DocumentationBytes int
	TotalEntities  int
}

// Statistics computes the repository's summary counters.
func (r *Repository) Statistics() Statistics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Statistics{
		BySource:   make(map[types.SourceTag]int),
		ByCategory: make(map[string]int),
	}
	for _, raw := range r.byID {
		stats.BySource[raw.Source]++
		stats.ByCategory[raw.Category]++
		stats.DocumentationBytes += len(raw.Documentation)
		stats.TotalEntities++
	}
	return stats
}
