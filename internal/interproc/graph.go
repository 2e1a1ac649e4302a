// Package interproc implements the interprocedural analyzer: call-graph
// construction, strongly-connected-component condensation, and the
// reverse-topological summary fixed point of spec §4.5.
//
// Analyzer.AnalyzeAll visits the condensed SCCs one at a time, in reverse
// topological order, on the calling goroutine; no worker pool is used.
package interproc

import "github.com/oxhq/typecore/internal/sourceast"

// FuncID identifies one function within a module for call-graph and
// summary-cache purposes.
type FuncID string

// FunctionDecl is one call-graph node: the function's AST and the set of
// callees observed syntactically in its body.
type FunctionDecl struct {
	ID     FuncID
	Node   *sourceast.Node // sourceast.KindFunctionDecl
	Callees []FuncID
}

// Graph is the call graph built from parsed modules (spec §4.5 "Call
// graph"): nodes are functions, edges are observed call sites. Recursion is
// supported.
type Graph struct {
	funcs map[FuncID]*FunctionDecl
}

// NewGraph builds an empty call graph.
func NewGraph() *Graph {
	return &Graph{funcs: make(map[FuncID]*FunctionDecl)}
}

// AddFunction registers a function declaration as a call-graph node.
func (g *Graph) AddFunction(decl *FunctionDecl) {
	g.funcs[decl.ID] = decl
}

// Lookup returns the declaration for a function id.
func (g *Graph) Lookup(id FuncID) (*FunctionDecl, bool) {
	d, ok := g.funcs[id]
	return d, ok
}

// Has reports whether id is a known function in this graph (used by
// CallResolver to recognize user-function call sites).
func (g *Graph) Has(id FuncID) bool {
	_, ok := g.funcs[id]
	return ok
}

// BuildFromModule walks a parsed module's function declarations and records
// every call site whose callee is a bare identifier naming another
// function in the module (dotted-chain calls are the expression resolver's
// concern, not the call graph's).
func BuildFromModule(module *sourceast.Node) *Graph {
	g := NewGraph()
	if module == nil {
		return g
	}
	for _, child := range module.Children {
		if child.Kind != sourceast.KindFunctionDecl {
			continue
		}
		g.AddFunction(&FunctionDecl{ID: FuncID(child.Name), Node: child})
	}
	for _, decl := range g.funcs {
		decl.Callees = collectCallees(decl.Node, g)
	}
	return g
}

func collectCallees(fn *sourceast.Node, g *Graph) []FuncID {
	seen := map[FuncID]bool{}
	var out []FuncID
	walkAll(fn, func(n *sourceast.Node) {
		if n.Kind != sourceast.KindCall || n.Base == nil || n.Base.Kind != sourceast.KindIdentifier {
			return
		}
		id := FuncID(n.Base.Name)
		if !g.Has(id) || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	})
	return out
}

// walkAll visits n and every node reachable through any structural field
// (Children, Body, Then/Else, Target/Value, Condition, Left/Right, Base,
// Arguments). sourceast.Walk only recurses into Children, which is not
// enough to find call sites nested under statement/expression fields, so
// the call graph needs its own full-tree walker.
func walkAll(n *sourceast.Node, visit func(*sourceast.Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		walkAll(c, visit)
	}
	walkAll(n.Base, visit)
	for _, arg := range n.Arguments {
		walkAll(arg, visit)
	}
	walkAll(n.Target, visit)
	walkAll(n.Value, visit)
	walkAll(n.Condition, visit)
	walkAll(n.Then, visit)
	walkAll(n.Else, visit)
	walkAll(n.Body, visit)
	walkAll(n.Left, visit)
	walkAll(n.Right, visit)
}

// condensation returns the graph's strongly-connected components in
// reverse-topological order (callees' SCCs before their callers' — spec
// §4.5 step 1/2: "Topologically sort the condensation ... For each SCC in
// reverse-topological order"). Tarjan's algorithm yields SCCs in exactly
// this order as a side effect of its stack-popping discipline, so no
// separate topological sort is needed.
func (g *Graph) condensation() [][]FuncID {
	t := &tarjan{
		graph:   g,
		index:   make(map[FuncID]int),
		lowlink: make(map[FuncID]int),
		onStack: make(map[FuncID]bool),
	}
	for id := range g.funcs {
		if _, visited := t.index[id]; !visited {
			t.strongConnect(id)
		}
	}
	return t.sccs
}

type tarjan struct {
	graph   *Graph
	counter int
	index   map[FuncID]int
	lowlink map[FuncID]int
	onStack map[FuncID]bool
	stack   []FuncID
	sccs    [][]FuncID
}

func (t *tarjan) strongConnect(v FuncID) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	decl := t.graph.funcs[v]
	for _, w := range decl.Callees {
		if _, visited := t.index[w]; !visited {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []FuncID
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}

// hasSelfLoop reports whether a singleton SCC's function calls itself
// directly, distinguishing genuine recursion from an ordinary leaf (spec
// §4.5 step 3: "Functions outside any SCC are analyzed exactly once" —
// equivalently, a non-recursive singleton).
func (g *Graph) hasSelfLoop(id FuncID) bool {
	decl, ok := g.funcs[id]
	if !ok {
		return false
	}
	for _, c := range decl.Callees {
		if c == id {
			return true
		}
	}
	return false
}
