package transform

import (
	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/visitor"
)

// UnitUnification replaces every non-constant expression whose result
// type is Unit and which has at least one user with a single canonical
// Constant(Unit) placed at the entry of the enclosing block group, per
// §4.8 (excluding GetRTTI/GetRTTIStatic, which legitimately return a
// typed-but-Unit-shaped RTTI handle that must stay distinct per call
// site).
func UnitUnification(b *ir.Builder, fn *ir.Func) int {
	if fn.Body == nil {
		return 0
	}
	unified := 0
	unitCanonical := make(map[*ir.BlockGroup]*ir.LocalVar)

	canonicalFor := func(g *ir.BlockGroup, unitType *ir.Type) *ir.LocalVar {
		if lv, ok := unitCanonical[g]; ok {
			return lv
		}
		hadExprs := len(g.Entry.Exprs) > 0
		lit := b.NewLiteral(ir.LitUnit, unitType)
		c := b.CreateConstant(g.Entry, lit)
		// Move the canonical constant to the very front of the entry
		// block so it dominates every other expression there. Skipped
		// when the entry was empty before CreateConstant: c is then
		// already Exprs[0], and MoveBefore(c) on itself would detach c
		// from its block (setting c.block nil) before reading
		// other.block, panicking on the resulting nil-block indexOf.
		if hadExprs {
			c.MoveBefore(g.Entry.Exprs[0])
		}
		unitCanonical[g] = c.Result()
		return c.Result()
	}

	// Collect candidates first so canonicalFor's own node insertions never
	// mutate a block while a walk is iterating over it.
	var candidates []*ir.Expr
	visitor.WalkGroup(fn.Body, visitor.Hooks{
		PreExpr: func(e *ir.Expr) visitor.Action {
			if e.Kind == ir.EConstant || e.Kind == ir.EGetRTTI || e.Kind == ir.EGetRTTIStatic {
				return visitor.Continue
			}
			if e.ResultType == nil || e.ResultType.Kind != ir.KindUnit {
				return visitor.Continue
			}
			if result := e.Result(); result != nil && len(result.Users()) > 0 {
				candidates = append(candidates, e)
			}
			return visitor.Continue
		},
	})

	for _, e := range candidates {
		result := e.Result()
		canonical := canonicalFor(e.Block().Group(), e.ResultType)
		if canonical == result {
			continue
		}
		for user := range result.Users() {
			user.ReplaceOperand(result, canonical)
		}
		unified++
	}
	return unified
}
