package transform

import (
	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/visitor"
)

// LambdaInline inlines a Lambda expression directly at its call site
// when it qualifies under the first of the two conditions the teacher's
// lambda-inline pass names: the lambda's result has exactly one
// consumer, and that consumer invokes it as an Apply's callee.
//
// The second condition — a Lambda passed as a non-callee argument to a
// callee that is itself inlined, provided it doesn't escape the inlined
// body — needs no separate code path here. Once FunctionInline
// substitutes a formal parameter with the Lambda's own value inside the
// cloned callee body (§4.8), the Apply that used to hold the lambda as
// an argument is gone, and the lambda is left with exactly one user:
// whatever consumed that parameter in the inlined code. If that
// consumer is itself an Apply invoking the lambda as callee, the second
// condition has reduced to the first. Running LambdaInline after
// FunctionInline in the pass pipeline is what makes that reduction
// hold, mirroring how the teacher's LambdaInline wraps its own
// FunctionInline pass rather than reimplementing argument substitution.
//
// Returns the number of Lambdas inlined.
func LambdaInline(b *ir.Builder, fn *ir.Func) int {
	if fn.Body == nil {
		return 0
	}
	var lambdas []*ir.Expr
	visitor.WalkGroup(fn.Body, visitor.Hooks{
		PreExpr: func(e *ir.Expr) visitor.Action {
			if e.Kind == ir.ELambda {
				lambdas = append(lambdas, e)
			}
			return visitor.Continue
		},
	})

	count := 0
	for _, lambda := range lambdas {
		if inlineLambdaAtCallSite(b, lambda) {
			count++
		}
	}
	return count
}

// inlineLambdaAtCallSite splices lambda's body directly in place of its
// sole Apply consumer. Lambdas in this IR carry no formal parameter
// list of their own (§3.2: a Lambda value closes over its captured
// values, which already resolve correctly wherever the lambda's body
// ends up), so unlike FunctionInline there is no argument substitution
// step — the body's blocks are moved, not cloned, which is sound
// precisely because the single-consumer condition guarantees no other
// call site could ever need a second copy.
func inlineLambdaAtCallSite(b *ir.Builder, lambda *ir.Expr) bool {
	result := lambda.Result()
	if result == nil {
		return false
	}
	users := result.Users()
	if len(users) != 1 {
		return false
	}
	var apply *ir.Expr
	for user := range users {
		apply = user
	}
	if apply.Kind != ir.EApply || apply.Callee != result {
		return false
	}
	if apply.HasException() {
		return false
	}
	if len(lambda.NestedGroups()) != 1 {
		return false
	}
	body := lambda.NestedGroups()[0]
	if body.Entry == nil {
		return false
	}

	owner := apply.Block().Group()
	needsReturnValue := apply.Result() != nil && len(apply.Result().Users()) > 0
	var returnSlot *ir.Expr
	if needsReturnValue {
		returnSlot = b.CreateAllocate(apply.Block(), apply.ResultType, "inline.ret")
		returnSlot.MoveBefore(apply)
	}

	var exitBlocks []*ir.Block
	for _, blk := range body.Blocks {
		term := blk.Terminator()
		owner.AddBlock(blk)
		if term == nil || term.Kind != ir.EExit {
			continue
		}
		var retVal ir.Value
		if len(term.Operands) > 0 {
			retVal = term.Operands[0]
		}
		term.RemoveSelfFromBlock()
		if needsReturnValue && retVal != nil {
			b.CreateStore(blk, returnSlot.Result(), retVal, false)
		}
		exitBlocks = append(exitBlocks, blk)
	}

	entry := body.Entry

	first, second := b.SplitBlock(apply)
	trailingGoTo := first.Exprs[len(first.Exprs)-1]
	trailingGoTo.RemoveSelfFromBlock()
	apply.RemoveSelfFromBlock()

	for _, eb := range exitBlocks {
		b.CreateGoTo(eb, second)
	}
	b.CreateGoTo(first, entry)

	if needsReturnValue {
		load := b.CreateLoad(second, returnSlot.Result())
		load.MoveBefore(second.Exprs[0])
		for user := range apply.Result().Users() {
			user.ReplaceOperand(apply.Result(), load.Result())
		}
	}

	lambda.RemoveSelfFromBlock()
	return true
}
