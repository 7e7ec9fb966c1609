package transform

import (
	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/visitor"
)

// RedundantFutureRemoval rewrites a Spawn whose first operand is a
// freshly-allocated Future object constructed solely to be passed into
// the spawn: the Future allocation and its initializer Apply are
// removed, the Spawn takes the closure directly, and ExecuteClosure is
// set, per §4.8.
func RedundantFutureRemoval(fn *ir.Func) int {
	if fn.Body == nil {
		return 0
	}
	var spawns []*ir.Expr
	visitor.WalkGroup(fn.Body, visitor.Hooks{
		PreExpr: func(e *ir.Expr) visitor.Action {
			if e.Kind == ir.ESpawn {
				spawns = append(spawns, e)
			}
			return visitor.Continue
		},
	})

	rewritten := 0
	for _, spawn := range spawns {
		if len(spawn.Operands) == 0 {
			continue
		}
		futureRef := spawn.Operands[0]
		allocExpr, initApply, closure, ok := matchFreshFutureInit(futureRef, spawn)
		if !ok {
			continue
		}
		spawn.ReplaceOperand(futureRef, closure)
		spawn.ExecuteClosure = true
		initApply.RemoveSelfFromBlock()
		allocExpr.RemoveSelfFromBlock()
		rewritten++
	}
	return rewritten
}

// matchFreshFutureInit recognizes `alloc := Allocate(Future); Apply(init,
// alloc, closure)` where alloc has no other users than that one Apply and
// spawn itself — the "constructed solely to be passed into the spawn"
// condition — and returns the alloc expr, the initializer Apply, and the
// closure operand.
func matchFreshFutureInit(futureRef ir.Value, spawn *ir.Expr) (alloc *ir.Expr, initApply *ir.Expr, closure ir.Value, ok bool) {
	lv, isLocal := ir.As[*ir.LocalVar](futureRef)
	if !isLocal || lv.DefiningExpr == nil || lv.DefiningExpr.Kind != ir.EAllocate {
		return nil, nil, nil, false
	}
	alloc = lv.DefiningExpr
	if alloc.TargetType == nil || alloc.TargetType.Kind != ir.KindCustom || alloc.TargetType.Decl == nil || alloc.TargetType.Decl.Name != "Future" {
		return nil, nil, nil, false
	}
	users := alloc.Result().Users()
	if len(users) != 2 {
		return nil, nil, nil, false
	}
	for user := range users {
		if user == spawn {
			continue
		}
		if user.Kind != ir.EApply || len(user.Operands) < 2 {
			return nil, nil, nil, false
		}
		initApply = user
		closure = user.Operands[len(user.Operands)-1]
	}
	if initApply == nil {
		return nil, nil, nil, false
	}
	return alloc, initApply, closure, true
}
