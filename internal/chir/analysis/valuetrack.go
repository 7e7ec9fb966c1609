package analysis

import (
	"github.com/chir-lang/chir/internal/chir/dataflow"
	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/visitor"
)

// AllocationSites runs the §4.6 value analysis over fn's body and
// returns, for every static Allocate expression and every static Load
// of a package global, the single AbstractObject that expression's
// result resolves to at every program point it reaches.
//
// Sites are pre-allocated before the fixpoint runs (one Ref/AbstractObject
// per static Allocate expression, and the package-wide global ones
// shared through global) rather than minted lazily inside ExprTransfer:
// §4.6 requires "each static allocation site is associated with exactly
// one abstract ref/object (not one per dynamic execution)" for the
// analysis to converge across loops, and an ExprTransfer that creates a
// fresh Ref/AbstractObject on every re-invocation of the same Allocate
// (once per fixpoint iteration touching it) would violate that and
// change ValueState.String() forever, so the engine would never reach
// a fixpoint.
func AllocationSites(fn *ir.Func, global *dataflow.GlobalState) map[*ir.Expr]*dataflow.AbstractObject {
	sites := make(map[*ir.Expr]*dataflow.AbstractObject)
	if fn.Body == nil {
		return sites
	}

	seed := dataflow.NewValueState()
	siteObj := make(map[*ir.Expr]*dataflow.AbstractObject)
	visitor.WalkGroup(fn.Body, visitor.Hooks{
		PreExpr: func(e *ir.Expr) visitor.Action {
			if e.Kind == ir.EAllocate && e.Result() != nil {
				siteObj[e] = seed.GetReferencedObj(e.Result())
			}
			return visitor.Continue
		},
	})

	dataflow.Run(fn.Body, dataflow.Options{
		Init: func() dataflow.Domain {
			return seed.Clone()
		},
		ExprTransfer: func(state dataflow.Domain, e *ir.Expr) dataflow.Domain {
			// The Allocate binding was already seeded into every entry
			// state by Init; it just needs to survive Clone/Join along the
			// way, which it does since it lives in program_state keyed by
			// e.Result(). A Load of a global resolves through the shared,
			// once-per-package GlobalState rather than minting anything
			// here, so every function sees the same object identity for a
			// given global.
			if e.Kind == ir.ELoad && len(e.Operands) > 0 {
				if g, ok := e.Operands[0].(*ir.GlobalVar); ok {
					if obj, ok := global.Object(g); ok {
						sites[e] = obj
					}
				}
			}
			return state
		},
	})

	for e, obj := range siteObj {
		sites[e] = obj
	}
	return sites
}
