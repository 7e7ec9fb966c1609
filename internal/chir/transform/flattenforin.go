package transform

import "github.com/chir-lang/chir/internal/chir/ir"

// FlattenForIn lowers e, a structured ForIn{Range,Iter,ClosedRange}
// expression, from its three nested block groups (latch, cond, body)
// into plain blocks spliced into the enclosing group, per §4.8. Each
// nested group's Exit becomes a GoTo (if it only hands control to the
// next stage) or a Branch reading the loop-condition value (the stage
// that decides whether to continue). ClosedRange keeps a
// body-before-cond traversal order (do…while-like inclusive upper);
// Range/Iter check the condition before the first body iteration.
func FlattenForIn(b *ir.Builder, e *ir.Expr) bool {
	if !ir.ForInKindOf(e.Kind) {
		return false
	}
	nested := e.NestedGroups()
	if len(nested) != 3 {
		return false
	}
	latch, cond, body := nested[0], nested[1], nested[2]
	owner := e.Block().Group()

	first, second := b.SplitBlock(e)
	// SplitBlock left [..., e, GoTo(second)] in first; both are replaced
	// by the loop's real entry point below.
	trailingGoTo := first.Exprs[len(first.Exprs)-1]
	trailingGoTo.RemoveSelfFromBlock()
	e.RemoveSelfFromBlock()

	adopt(owner, latch.Blocks)
	adopt(owner, cond.Blocks)
	adopt(owner, body.Blocks)

	var loopEntry *ir.Block
	if e.Kind == ir.EForInClosedRange {
		loopEntry = body.Entry
		retargetGoTo(b, body, cond.Entry)
		retargetBranch(b, cond, latch.Entry, second)
		retargetGoTo(b, latch, body.Entry)
	} else {
		loopEntry = cond.Entry
		retargetBranch(b, cond, body.Entry, second)
		retargetGoTo(b, body, latch.Entry)
		retargetGoTo(b, latch, cond.Entry)
	}

	b.CreateGoTo(first, loopEntry)
	return true
}

// adopt transfers ownership of blocks into dst through
// BlockGroup.AddBlock, which only sets Entry when dst starts empty; the
// enclosing group passed here already holds the split block, so its
// existing Entry is kept.
func adopt(dst *ir.BlockGroup, blocks []*ir.Block) {
	for _, blk := range blocks {
		dst.AddBlock(blk)
	}
}

// retargetGoTo replaces every Exit terminator in g's blocks with an
// unconditional GoTo to target. The replacement is appended (and its
// edge added) before the old Exit is unlinked, so blk never goes
// through a state with no terminator at all.
func retargetGoTo(b *ir.Builder, g *ir.BlockGroup, target *ir.Block) {
	for _, blk := range g.Blocks {
		t := blk.Terminator()
		if t == nil || t.Kind != ir.EExit {
			continue
		}
		b.CreateGoTo(blk, target)
		t.RemoveSelfFromBlock()
	}
}

// retargetBranch replaces every Exit terminator in g's blocks (the
// condition-evaluating group) with a Branch on the Exit's return value,
// continuing into trueTarget or falseTarget.
func retargetBranch(b *ir.Builder, g *ir.BlockGroup, trueTarget, falseTarget *ir.Block) {
	for _, blk := range g.Blocks {
		t := blk.Terminator()
		if t == nil || t.Kind != ir.EExit {
			continue
		}
		var cond ir.Value
		if len(t.Operands) > 0 {
			cond = t.Operands[0]
		}
		b.CreateBranch(blk, cond, trueTarget, falseTarget)
		t.RemoveSelfFromBlock()
	}
}
