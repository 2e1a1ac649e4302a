package flow

import (
	"context"
	"math"

	"github.com/oxhq/typecore/internal/repository"
	"github.com/oxhq/typecore/internal/resolver"
	"github.com/oxhq/typecore/internal/sourceast"
	"github.com/oxhq/typecore/internal/types"
)

// DefaultLoopBound is the fixed-point iteration bound for loop bodies
// (spec §4.3: "terminate when no entry changes or a configurable iteration
// bound is reached (default 8)").
const DefaultLoopBound = 8

// cancelCheckInterval matches spec §5: "checked at ... every 256 AST
// nodes".
const cancelCheckInterval = 256

// Analyzer threads a State through one function's body in AST traversal
// order, applying the transfer functions of spec §4.3. One Analyzer
// instance is scoped to one function analysis (spec §3.3); it is not safe
// for concurrent reuse.
type Analyzer struct {
	// Resolver dispatches expression resolution (assignment right-hand
	// sides, guard conditions) through the full resolver service, so the
	// flow analyzer never special-cases expression shapes beyond guards.
	Resolver *resolver.Service
	// Repo resolves guard type-name operands (e.g. `type_of(x) == Catalogs.Items`)
	// against the type repository.
	Repo *repository.Repository
	// Store receives committed per-position states so later point queries
	// (resolver.SourceCodeResolver, LSP hover) can answer "what did we know
	// here" after analysis completes.
	Store *Store
	// FunctionID identifies the function being analyzed, used as the Store
	// key and exposed to the resolver as ctx.ActiveFunction.
	FunctionID string
	// LoopBound overrides DefaultLoopBound; zero means use the default.
	LoopBound int
	// ParamTypes, when set, seeds a parameter's entry resolution instead of
	// the Unknown default — used by the interprocedural analyzer to thread a
	// call site's argument types into the callee's flow analysis.
	ParamTypes map[string]types.TypeResolution
	// Ctx, when non-nil, is checked for cancellation every 256 AST nodes
	// (spec §5).
	Ctx context.Context

	// Returns accumulates the resolved value of every `return <expr>`
	// encountered, in traversal order, for the interprocedural analyzer to
	// fold into a function summary.
	Returns []types.TypeResolution

	diagnostics []Diagnostic
	nodeCount   int
	cancelled   bool
}

// NewAnalyzer builds an analyzer for one function.
func NewAnalyzer(svc *resolver.Service, repo *repository.Repository, store *Store, functionID string) *Analyzer {
	return &Analyzer{
		Resolver:   svc,
		Repo:       repo,
		Store:      store,
		FunctionID: functionID,
		LoopBound:  DefaultLoopBound,
	}
}

// Diagnostics returns every diagnostic raised during the last
// AnalyzeFunction call (flow.widened, flow.cancelled).
func (a *Analyzer) Diagnostics() []Diagnostic { return a.diagnostics }

// Cancelled reports whether analysis stopped early due to context
// cancellation.
func (a *Analyzer) Cancelled() bool { return a.cancelled }

// AnalyzeFunction runs the transfer functions over fn's body (a
// sourceast.KindFunctionDecl node) and returns the exit state. Parameters
// enter with Unknown resolutions (spec §3.2: undeclared types are a
// first-class case, not an error).
func (a *Analyzer) AnalyzeFunction(fn *sourceast.Node) State {
	entry := State{}
	if fn != nil {
		for _, p := range fn.Parameters {
			if seeded, ok := a.ParamTypes[p]; ok {
				entry[p] = seeded
				continue
			}
			entry[p] = types.UnknownResolution("parameter type not declared at function entry")
		}
	}
	if a.LoopBound <= 0 {
		a.LoopBound = DefaultLoopBound
	}
	if fn == nil {
		return entry
	}
	exit := a.analyzeBlock(fn.Body, entry)
	if exit == nil {
		return State{}
	}
	return exit
}

func (a *Analyzer) commit(pos sourceast.Range, state State) {
	if a.Store != nil {
		a.Store.Put(a.FunctionID, pos, state)
	}
}

func (a *Analyzer) resolve(expr *sourceast.Node, state State) types.TypeResolution {
	if expr == nil {
		return types.UnknownResolution("nil expression")
	}
	if expr.Kind == sourceast.KindLiteral {
		// A literal's type is structural, not a resolution question: fold
		// it directly rather than dispatching through the resolver service.
		if ct, ok := primitiveForLiteral(expr); ok {
			return types.ConcreteResolution(ct, "", nil)
		}
	}
	if a.Resolver == nil {
		return types.UnknownResolution("no resolver service configured")
	}
	ctx := resolver.Context{
		Position:       expr.Range,
		ActiveFunction: a.FunctionID,
		CurrentState:   state,
	}
	return a.Resolver.Resolve(expr, ctx)
}

// checkCancel increments the node counter and, every cancelCheckInterval
// nodes, checks a.Ctx for cancellation. Returns true once cancelled is
// latched, so callers can short-circuit the remaining traversal (spec §5:
// "on cancel it returns a partial result ... and leaves the cache coherent").
func (a *Analyzer) checkCancel(pos sourceast.Range) bool {
	if a.cancelled {
		return true
	}
	a.nodeCount++
	if a.Ctx == nil || a.nodeCount%cancelCheckInterval != 0 {
		return false
	}
	select {
	case <-a.Ctx.Done():
		a.cancelled = true
		a.diagnostics = append(a.diagnostics, Diagnostic{
			Code:    "flow.cancelled",
			Message: "flow analysis cancelled before completion",
			Range:   pos,
		})
		return true
	default:
		return false
	}
}

// analyzeBlock threads state through a sequence of statements in order. A
// nil successor state (after return/throw) short-circuits the remainder of
// the block, per spec §4.3 "Early return / throw".
func (a *Analyzer) analyzeBlock(block *sourceast.Node, entry State) State {
	if block == nil {
		return entry
	}
	state := entry
	for _, stmt := range block.Children {
		if a.checkCancel(stmt.Range) {
			return state
		}
		state = a.analyzeStatement(stmt, state)
		if state == nil {
			return nil
		}
	}
	return state
}

func (a *Analyzer) analyzeStatement(stmt *sourceast.Node, state State) State {
	if stmt == nil {
		return state
	}
	a.commit(stmt.Range, state)
	switch stmt.Kind {
	case sourceast.KindAssignment:
		return a.analyzeAssignment(stmt, state)
	case sourceast.KindIf:
		return a.analyzeIf(stmt, state)
	case sourceast.KindLoop:
		return a.analyzeLoop(stmt, state)
	case sourceast.KindReturn:
		if stmt.Value != nil {
			a.Returns = append(a.Returns, a.resolve(stmt.Value, state))
		}
		return nil
	case sourceast.KindThrow:
		return nil
	case sourceast.KindBlock:
		return a.analyzeBlock(stmt, state)
	default:
		// Expression statement or unrecognized shape: the expression is not
		// resolved and state passes through unchanged (a call's effects on
		// its arguments are not applied here).
		return state
	}
}

// analyzeAssignment implements spec §4.3 "Assignment x = e": replace x's
// entry with resolve(e, state); if a prior entry existed with a different
// type, the source tag becomes Inferred with confidence min(prior, new).
func (a *Analyzer) analyzeAssignment(stmt *sourceast.Node, state State) State {
	if stmt.Target == nil || stmt.Target.Kind != sourceast.KindIdentifier {
		return state // assignment through a member access: tracked by the resolver chain, not a local variable
	}
	next := state.Clone()
	rhs := a.resolve(stmt.Value, state)

	if prior, ok := state[stmt.Target.Name]; ok && !sameResolution(prior, rhs) {
		rhs.Source = types.ProvenanceInferred
		rhs.Certainty = types.Inferred(math.Min(certaintyValue(prior.Certainty), certaintyValue(rhs.Certainty)))
	}
	next[stmt.Target.Name] = rhs
	a.commit(stmt.Range, next)
	return next
}

// analyzeIf implements spec §4.3 "Conditional if g then T else F": compute
// then/else sub-states by applying the guard's narrowings, analyze each
// branch independently, and merge at the join point.
func (a *Analyzer) analyzeIf(stmt *sourceast.Node, entry State) State {
	guard := a.extractGuard(stmt.Condition)
	thenEntry := guard.positive(entry)
	elseEntry := guard.negative(entry)

	thenExit := a.analyzeBlock(stmt.Then, thenEntry)
	var elseExit State
	if stmt.Else != nil {
		elseExit = a.analyzeBlock(stmt.Else, elseEntry)
	} else {
		elseExit = elseEntry
	}

	switch {
	case thenExit == nil && elseExit == nil:
		return nil
	case thenExit == nil:
		return elseExit
	case elseExit == nil:
		return thenExit
	default:
		return mergeStates(thenExit, elseExit)
	}
}

// analyzeLoop implements spec §4.3 "Loop": iterate the body's transfer
// function to a fixed point using the union join, bounded by LoopBound; on
// bound-exceeded, widen all changing entries to Dynamic with a
// flow.widened diagnostic attached to the loop header.
func (a *Analyzer) analyzeLoop(stmt *sourceast.Node, entry State) State {
	state := entry
	for i := 0; i < a.LoopBound; i++ {
		if a.checkCancel(stmt.Range) {
			return state
		}
		next := a.analyzeBlock(stmt.Body, state)
		if next == nil {
			// Every iteration exits via return/throw: the loop never
			// reaches a second iteration with live state.
			return state
		}
		if statesEqual(next, state) {
			return next
		}
		// Widen towards the accumulated union rather than overwriting, so
		// oscillating assignments converge instead of flip-flopping
		// indefinitely within the bound.
		state = mergeStates(state, next)
	}
	return a.widenAll(entry, state, stmt.Range)
}

// widenAll implements the bound-exceeded case: only entries that actually
// changed relative to the loop's entry state are widened to Dynamic (spec
// §4.3: "widen all the changing entries to Dynamic") — an entry the loop
// body never touches keeps whatever resolution it had on entry. A
// flow.widened diagnostic is attached to loopRange (the loop header).
func (a *Analyzer) widenAll(entry, state State, loopRange sourceast.Range) State {
	out := state.Clone()
	for k, v := range out {
		if prior, ok := entry[k]; ok && sameResolution(prior, v) {
			continue
		}
		out[k] = types.DynamicResolution(types.Inferred(certaintyValue(v.Certainty)*0.5), "widened: loop fixed point exceeded iteration bound")
	}
	a.diagnostics = append(a.diagnostics, Diagnostic{
		Code:    "flow.widened",
		Message: "loop fixed point exceeded the iteration bound; affected variables widened to Dynamic",
		Range:   loopRange,
	})
	return out
}

// resolveTypeName turns a guard's type-name operand (e.g. the `T` in
// `type_of(x) == T`) into a ConcreteType, checking built-in primitives
// before falling back to a repository lookup.
func (a *Analyzer) resolveTypeName(name string) (types.ConcreteType, bool) {
	if prim, ok := resolver.BuiltinPrimitive(name); ok {
		return types.ConcreteType{Kind: types.ConcretePrimitive, Primitive: prim}, true
	}
	if a.Repo == nil {
		return types.ConcreteType{}, false
	}
	raw, ok := a.Repo.GetByQualifiedName(types.BilingualName{ASCII: name})
	if !ok {
		return types.ConcreteType{}, false
	}
	switch raw.Source {
	case types.SourcePlatform:
		return types.ConcreteType{Kind: types.ConcretePlatform, Ref: types.RefTo(raw.Name.ASCII)}, true
	case types.SourceConfiguration:
		return types.ConcreteType{Kind: types.ConcreteConfiguration, Ref: types.RefTo(raw.Name.ASCII)}, true
	default:
		return types.ConcreteType{}, false
	}
}
