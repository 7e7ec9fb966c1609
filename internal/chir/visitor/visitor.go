// Package visitor implements a generic pre/post-order walk over a
// function body's block groups, blocks, and expressions. Every pass in
// internal/chir/transform and internal/chir/checker that needs to visit
// the whole graph (rather than run a dataflow fixpoint) is built on top
// of WalkGroup/WalkBlock/WalkExpr, instead of each pass hand-rolling its own recursive descent
// the way the teacher's semantic passes each walk the AST independently
// (internal/semantic/*_pass.go).
package visitor

import "github.com/chir-lang/chir/internal/chir/ir"

// Action controls how Walk proceeds after a hook returns.
type Action int

const (
	// Continue descends into the node's children as usual.
	Continue Action = iota
	// SkipChildren visits the node's post-hook but does not descend.
	SkipChildren
	// Stop aborts the walk immediately; no further hooks run.
	Stop
)

// Hooks holds the optional pre/post callbacks for each node kind. A nil
// hook behaves as if it returned Continue. Pre hooks run before
// descending into children; Post hooks run after (skipped entirely if
// the corresponding Pre returned Stop, run even if Pre returned
// SkipChildren).
type Hooks struct {
	PreGroup  func(*ir.BlockGroup) Action
	PostGroup func(*ir.BlockGroup) Action

	PreBlock  func(*ir.Block) Action
	PostBlock func(*ir.Block) Action

	PreExpr  func(*ir.Expr) Action
	PostExpr func(*ir.Expr) Action
}

func call1[T any](f func(T) Action, v T) Action {
	if f == nil {
		return Continue
	}
	return f(v)
}

// WalkGroup walks g and every block group nested transitively beneath
// it (through structured-control and Lambda expressions), depth-first.
// It returns Stop if the walk was aborted early, Continue otherwise.
func WalkGroup(g *ir.BlockGroup, h Hooks) Action {
	if g == nil {
		return Continue
	}
	switch call1(h.PreGroup, g) {
	case Stop:
		return Stop
	case SkipChildren:
		return call1(h.PostGroup, g)
	}
	for _, b := range g.Blocks {
		if WalkBlock(b, h) == Stop {
			return Stop
		}
	}
	return call1(h.PostGroup, g)
}

// WalkBlock walks b's expressions in order, recursing into any nested
// block groups each expression owns.
func WalkBlock(b *ir.Block, h Hooks) Action {
	if b == nil {
		return Continue
	}
	switch call1(h.PreBlock, b) {
	case Stop:
		return Stop
	case SkipChildren:
		return call1(h.PostBlock, b)
	}
	for _, e := range b.Exprs {
		if WalkExpr(e, h) == Stop {
			return Stop
		}
	}
	return call1(h.PostBlock, b)
}

// WalkExpr visits e, then recurses into any block groups e owns
// (structured control flow's then/else/body groups, a Lambda's body).
func WalkExpr(e *ir.Expr, h Hooks) Action {
	if e == nil {
		return Continue
	}
	switch call1(h.PreExpr, e) {
	case Stop:
		return Stop
	case SkipChildren:
		return call1(h.PostExpr, e)
	}
	for _, nested := range e.NestedGroups() {
		if WalkGroup(nested, h) == Stop {
			return Stop
		}
	}
	return call1(h.PostExpr, e)
}

// ExprVisitor is not hand-maintained in this file: it is generated by
// cmd/gen-chirvisitor, which parses the ExprKind const block in
// internal/chir/ir/expr.go and emits visitor_generated.go with one
// On<Kind> field and switch case per kind, so adding an ExprKind can
// never silently leave it out of Dispatch's switch.
