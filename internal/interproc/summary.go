package interproc

import (
	"sort"
	"strings"

	"github.com/oxhq/typecore/internal/types"
)

// wildcardArg is the canonical-argument-key token for "argument type
// unknown/Dynamic". At lookup time Cache.Get falls back from an exact key to
// the all-wildcard key of the same arity; a key that mixes wildcard and
// concrete positions is matched only exactly, not position by position.
const wildcardArg = "*"

// argKey is the canonical positional argument-type tuple used as a cache
// key. Built positionally (not sorted): argument order is part of a call
// site's identity.
type argKey string

// CanonicalArgs builds the cache key for one call site's argument
// resolutions.
func CanonicalArgs(args []types.TypeResolution) argKey {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = canonicalArgToken(a)
	}
	return argKey(strings.Join(parts, "|"))
}

func canonicalArgToken(r types.TypeResolution) string {
	switch r.Result.Kind {
	case types.ResultConcrete:
		return "c:" + concreteToken(r.Result.Concrete)
	case types.ResultUnion:
		toks := make([]string, len(r.Result.Union.Components))
		for i, c := range r.Result.Union.Components {
			toks[i] = concreteToken(c.Type)
		}
		sort.Strings(toks)
		return "u:" + strings.Join(toks, ",")
	default:
		return wildcardArg
	}
}

func concreteToken(c types.ConcreteType) string {
	switch c.Kind {
	case types.ConcretePrimitive:
		return "prim:" + string(c.Primitive)
	case types.ConcretePlatform:
		return "plat:" + c.Ref.QualifiedName
	case types.ConcreteConfiguration:
		return "conf:" + c.Ref.QualifiedName + ":" + string(c.Facet)
	case types.ConcreteCollection:
		return "coll:" + c.Element.QualifiedName
	case types.ConcreteFunction:
		return "func"
	default:
		return "?"
	}
}

// wildcardKey is the all-Dynamic tuple of the given arity, the fallback
// looked up when no exact-argument-shape summary has been cached yet.
func wildcardKey(arity int) argKey {
	parts := make([]string, arity)
	for i := range parts {
		parts[i] = wildcardArg
	}
	return argKey(strings.Join(parts, "|"))
}

// Summary is one function's computed result for a given argument shape:
// its return-type resolution, the effects it performs (spec §4.5
// "effects/purity tracking"), and any diagnostics raised while computing
// it (e.g. interproc.recursion_bound).
type Summary struct {
	Return      types.TypeResolution
	Effects     []Effect
	Diagnostics []Diagnostic
}

// Pure reports whether this summary recorded no observable effects.
func (s Summary) Pure() bool { return len(s.Effects) == 0 }

// Diagnostic mirrors flow.Diagnostic's shape for the interprocedural pass,
// kept as a distinct type since it is keyed by function id rather than a
// source range.
type Diagnostic struct {
	Code     string
	Message  string
	Function FuncID
}

// Cache stores computed summaries per (function, canonical argument
// shape), with a wildcard fallback for an as-yet-unseen argument shape
// (spec §4.5: "an unseen call shape during a recursive analysis resolves
// provisionally to the wildcard entry").
type Cache struct {
	entries map[FuncID]map[argKey]Summary
}

// NewCache builds an empty summary cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[FuncID]map[argKey]Summary)}
}

// Get returns the cached summary for fid at the exact argument shape, or
// failing that, the wildcard-shape summary if one has been computed.
func (c *Cache) Get(fid FuncID, key argKey) (Summary, bool) {
	perFn, ok := c.entries[fid]
	if !ok {
		return Summary{}, false
	}
	if s, ok := perFn[key]; ok {
		return s, true
	}
	if s, ok := perFn[wildcardKey(countParts(key))]; ok {
		return s, true
	}
	return Summary{}, false
}

// Put records a computed summary.
func (c *Cache) Put(fid FuncID, key argKey, s Summary) {
	perFn, ok := c.entries[fid]
	if !ok {
		perFn = make(map[argKey]Summary)
		c.entries[fid] = perFn
	}
	perFn[key] = s
}

// Invalidate drops every cached summary for fid (spec §3.3 cache
// invalidation on source-change events propagates to interprocedural
// summaries the same way it does to flow state).
func (c *Cache) Invalidate(fid FuncID) {
	delete(c.entries, fid)
}

// CacheEntry is one flattened (function, argument shape, summary) row, the
// shape internal/snapshot serializes independent of Cache's internal
// map-of-maps layout.
type CacheEntry struct {
	FunctionID string
	ArgKey     string
	Summary    Summary
}

// Entries flattens the whole cache for serialization (internal/snapshot's
// Snapshot operation).
func (c *Cache) Entries() []CacheEntry {
	var out []CacheEntry
	for fid, perFn := range c.entries {
		for key, s := range perFn {
			out = append(out, CacheEntry{FunctionID: string(fid), ArgKey: string(key), Summary: s})
		}
	}
	return out
}

// PutRaw restores one flattened entry (internal/snapshot's Restore
// operation), bypassing the FuncID/argKey constructors since the snapshot
// format stores their already-rendered string forms.
func (c *Cache) PutRaw(functionID, argK string, s Summary) {
	c.Put(FuncID(functionID), argKey(argK), s)
}

func countParts(k argKey) int {
	if k == "" {
		return 0
	}
	return strings.Count(string(k), "|") + 1
}
