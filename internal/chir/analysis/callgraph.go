package analysis

import (
	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/visitor"
)

// Devirtualizer reports the possible concrete callees of an Invoke
// expression's dispatch; call-graph construction asks it once per
// virtual call site (§4.7 "devirtualization-info oracle").
type Devirtualizer interface {
	PossibleCallees(invoke *ir.Expr) []*ir.Func
}

// node is a call-graph node: a real function, or one of the two
// synthetic nodes (entry, exit).
type node struct {
	fn        *ir.Func // nil for entry/exit
	isEntry   bool
	isExit    bool
	callees   []*node
	callerSet map[*node]bool
}

// Graph is the call graph plus SCC condensation for one package (§4.7
// "Call graph + SCC").
type Graph struct {
	entry *node
	exit  *node
	nodes map[*ir.Func]*node
}

// Build constructs the call graph over fns: a DIRECT edge for every
// Apply/ApplyWithException to a known callee (to the exit node if the
// callee is not in fns), and a VIRTUAL edge for every Invoke to each
// devirt-reported concrete callee; a function with no discovered caller
// gets a virtual edge from the synthetic entry node. Lambdas nested
// inside a function attribute their edges to that enclosing function's
// node.
func Build(fns []*ir.Func, devirt Devirtualizer) *Graph {
	g := &Graph{
		entry: &node{isEntry: true, callerSet: map[*node]bool{}},
		exit:  &node{isExit: true, callerSet: map[*node]bool{}},
		nodes: make(map[*ir.Func]*node, len(fns)),
	}
	for _, fn := range fns {
		g.nodes[fn] = &node{fn: fn, callerSet: map[*node]bool{}}
	}

	addEdge := func(from, to *node) {
		from.callees = append(from.callees, to)
		to.callerSet[from] = true
	}

	for _, fn := range fns {
		from := g.nodes[fn]
		if fn.Body == nil {
			continue
		}
		visitor.WalkGroup(fn.Body, visitor.Hooks{
			PreExpr: func(e *ir.Expr) visitor.Action {
				switch e.Kind {
				case ir.EApply:
					if callee, ok := e.Callee.(*ir.Func); ok {
						if to, known := g.nodes[callee]; known {
							addEdge(from, to)
						} else {
							addEdge(from, g.exit)
						}
					} else {
						addEdge(from, g.exit)
					}
				case ir.EInvoke:
					if devirt != nil {
						for _, callee := range devirt.PossibleCallees(e) {
							if to, known := g.nodes[callee]; known {
								addEdge(from, to)
							}
						}
					}
				}
				return visitor.Continue
			},
		})
	}

	for _, n := range g.nodes {
		if len(n.callerSet) == 0 {
			addEdge(g.entry, n)
		}
	}

	return g
}

// tarjanFrame is one explicit-stack entry for the non-recursive Tarjan
// SCC walk (§4.7 "a non-recursive Tarjan's SCC using an explicit stack of
// (node, next-child iterator, min-visited) triples").
type tarjanFrame struct {
	n        *node
	childIdx int
	minLink  int
}

// SCC computes the graph's strongly-connected-component condensation and
// returns functions in post-order: elements within one SCC appear in the
// order they left the node stack, which is also a valid bottom-up
// (callees-before-callers) visitation order for the function-inline pass.
func (g *Graph) SCC() []*ir.Func {
	index := make(map[*node]int)
	lowlink := make(map[*node]int)
	onStack := make(map[*node]bool)
	var stack []*node
	var out []*ir.Func
	next := 0

	all := make([]*node, 0, len(g.nodes)+2)
	all = append(all, g.entry)
	for _, n := range g.nodes {
		all = append(all, n)
	}
	all = append(all, g.exit)

	var strongconnect func(start *node)
	strongconnect = func(start *node) {
		if _, seen := index[start]; seen {
			return
		}

		var frames []*tarjanFrame
		push := func(n *node) {
			index[n] = next
			lowlink[n] = next
			next++
			stack = append(stack, n)
			onStack[n] = true
			frames = append(frames, &tarjanFrame{n: n, minLink: lowlink[n]})
		}
		push(start)

		for len(frames) > 0 {
			top := frames[len(frames)-1]
			if top.childIdx < len(top.n.callees) {
				child := top.n.callees[top.childIdx]
				top.childIdx++
				if _, seen := index[child]; !seen {
					push(child)
					continue
				}
				if onStack[child] {
					if index[child] < top.minLink {
						top.minLink = index[child]
					}
				}
				continue
			}

			lowlink[top.n] = top.minLink
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := frames[len(frames)-1]
				if lowlink[top.n] < parent.minLink {
					parent.minLink = lowlink[top.n]
				}
			}

			if lowlink[top.n] == index[top.n] {
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					if w.fn != nil {
						out = append(out, w.fn)
					}
					if w == top.n {
						break
					}
				}
			}
		}
	}

	for _, n := range all {
		strongconnect(n)
	}
	return out
}
