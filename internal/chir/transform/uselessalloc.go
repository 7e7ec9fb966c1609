// Package transform implements §4.8's fixed pass pipeline: self-
// contained, idempotent rewrites over a single function's graph, each
// grounded on the equivalent rewrite described in
// original_source/src/CHIR/Transformation and run via internal/chir/ir's
// mutation primitives (ReplaceWith/RemoveSelfFromBlock/MoveTo) the way
// the teacher's bytecode optimizer (internal/bytecode/optimizer.go)
// structures its own fixed pass list — one file per pass, each a
// function over one *ir.Func (or the whole *ir.Package for the
// package-wide passes), taking the owning *ir.Builder where it creates
// fresh nodes.
package transform

import (
	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/visitor"
)

// UselessAllocationElimination removes any Allocate in fn whose result
// is only ever stored into — never loaded, passed, returned, or the
// function's return slot — and whose allocated type has no finalizer,
// per §4.8. Returns the number of allocations removed.
func UselessAllocationElimination(fn *ir.Func) int {
	if fn.Body == nil {
		return 0
	}
	removed := 0
	var allocs []*ir.Expr
	visitor.WalkGroup(fn.Body, visitor.Hooks{
		PreExpr: func(e *ir.Expr) visitor.Action {
			if e.Kind == ir.EAllocate {
				allocs = append(allocs, e)
			}
			return visitor.Continue
		},
	})

	for _, alloc := range allocs {
		if hasFinalizer(alloc.TargetType) {
			continue
		}
		result := alloc.Result()
		if result == nil {
			continue
		}
		storeOnlyUsers, ok := storeOnlyUses(result)
		if !ok {
			continue
		}
		for _, store := range storeOnlyUsers {
			store.RemoveSelfFromBlock()
		}
		alloc.RemoveSelfFromBlock()
		removed++
	}
	return removed
}

// storeOnlyUses reports, for a value only ever produced by Allocate,
// whether every recorded user is a Store writing *into* it (as opposed
// to being the stored value, loaded, passed as an argument, or returned)
// — and if so, returns those Store expressions for removal.
func storeOnlyUses(v ir.Value) ([]*ir.Expr, bool) {
	var stores []*ir.Expr
	for user := range v.Users() {
		if user.Kind != ir.EStore || len(user.Operands) < 1 || user.Operands[0] != v {
			return nil, false
		}
		stores = append(stores, user)
	}
	return stores, true
}

func hasFinalizer(t *ir.Type) bool {
	if t == nil || t.Kind != ir.KindCustom || t.Decl == nil {
		return false
	}
	return t.Decl.Finalizer != nil
}
