// Package flow implements the flow-sensitive analyzer: at every program
// point it maintains a mapping from each live variable to its current
// TypeResolution, surfaced via a Store for point queries (spec §4.3).
//
// Grounded on the teacher's internal/matcher + internal/core/pipeline.go
// traversal idiom (single-threaded per unit of work, an explicit visitor
// over tree-sitter-shaped nodes), generalized from "find spans in one file"
// to "thread a State through one function's AST in traversal order".
package flow

import (
	"sync"

	"github.com/oxhq/typecore/internal/sourceast"
	"github.com/oxhq/typecore/internal/types"
)

// State is the per-program-point mapping from variable name to its current
// TypeResolution (spec §4.3: "FlowState = mapping from variable name to
// TypeResolution").
type State map[string]types.TypeResolution

// Clone returns a shallow copy, safe to mutate independently of the
// original (TypeResolution is itself a value type).
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Diagnostic is a flow-analysis finding attached to a program point (spec
// §6.3): a stable "<area>.<kind>" code, a message, and the range it
// concerns.
type Diagnostic struct {
	Code    string
	Message string
	Range   sourceast.Range
}

// posKey identifies one committed program point within one function.
type posKey struct {
	function string
	file     string
	line     int
	col      int
}

func keyFor(function string, pos sourceast.Range) posKey {
	return posKey{function: function, file: pos.File, line: pos.StartLine, col: pos.StartCol}
}

// Store holds the committed FlowState snapshots produced by analyzing
// functions, keyed by (function id, position). It is read concurrently by
// resolver.SourceCodeResolver once analysis of the owning function has
// completed (spec §5: flow-sensitive state is thread-local to its analyzer
// instance while being built, then handed off read-only).
type Store struct {
	mu     sync.RWMutex
	states map[posKey]State
}

// NewStore builds an empty state store.
func NewStore() *Store {
	return &Store{states: make(map[posKey]State)}
}

// Put commits the state entering a program point. Called by Analyzer as it
// walks a function; also usable to seed module-level state.
func (s *Store) Put(function string, pos sourceast.Range, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[keyFor(function, pos)] = state.Clone()
}

// StateAt returns the committed state entering the program point at pos
// within function, satisfying resolver.FlowLookup.
func (s *Store) StateAt(function string, pos sourceast.Range) (map[string]types.TypeResolution, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[keyFor(function, pos)]
	if !ok {
		return nil, false
	}
	return st, true
}

// Invalidate drops every committed state for one function, used when a
// source-code change event (spec §3.3) affects that function only.
func (s *Store) Invalidate(function string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.states {
		if k.function == function {
			delete(s.states, k)
		}
	}
}
