package checker

import (
	"github.com/chir-lang/chir/internal/chir/diag"
	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/visitor"
)

// checkBlockWellFormedness enforces §3.3's block invariants: exactly one
// terminator, appearing last; a terminator's successors all live in the
// same block group as the terminator's own block; and every reachable
// non-entry block's recorded predecessor list matches its actual
// incoming edges.
func checkBlockWellFormedness(fn *ir.Func, sink *diag.Sink) {
	if fn.Body == nil {
		return
	}
	visitor.WalkGroup(fn.Body, visitor.Hooks{
		PreGroup: func(g *ir.BlockGroup) visitor.Action {
			actualPreds := make(map[*ir.Block][]*ir.Block)
			for _, b := range g.Blocks {
				for i, e := range b.Exprs {
					if e.IsTerminator() && i != len(b.Exprs)-1 {
						sink.Errorf(diag.KindIRInvariant, locOf(e), "terminator %s appears mid-block in %s", e.Kind, dump(fn))
					}
					for _, succ := range e.Successors() {
						if succ == nil {
							continue
						}
						if succ.Group() != g {
							sink.Errorf(diag.KindIRInvariant, locOf(e), "terminator %s successor escapes its block group in %s", e.Kind, dump(fn))
						}
						actualPreds[succ] = append(actualPreds[succ], b)
					}
				}
				if t := b.Terminator(); t == nil && len(b.Exprs) > 0 {
					sink.Errorf(diag.KindIRInvariant, diag.Location{}, "block %d has no terminator in %s", b.ID(), dump(fn))
				}
			}
			for _, b := range g.Blocks {
				if b == g.Entry {
					continue
				}
				if !sameBlockSet(b.Preds, actualPreds[b]) {
					sink.Errorf(diag.KindIRInvariant, diag.Location{}, "block %d predecessor list disagrees with actual edges in %s", b.ID(), dump(fn))
				}
			}
			return visitor.Continue
		},
	})
}

func sameBlockSet(a, b []*ir.Block) bool {
	if len(a) != len(b) {
		return false
	}
	count := make(map[*ir.Block]int, len(a))
	for _, x := range a {
		count[x]++
	}
	for _, x := range b {
		count[x]--
	}
	for _, n := range count {
		if n != 0 {
			return false
		}
	}
	return true
}

// checkReferenceDepths enforces §3.1's reference-depth bound: a
// value-type T may appear bare or as T& (depth 1), never T&& (depth 2);
// a reference type (class, raw array) may go one level deeper, to T&&,
// but no further.
func checkReferenceDepths(fn *ir.Func, sink *diag.Sink) {
	check := func(t *ir.Type, loc diag.Location) {
		if t == nil || t.Kind != ir.KindRef {
			return
		}
		if t.RefDepth > 2 {
			sink.Errorf(diag.KindIRInvariant, loc, "reference depth %d exceeds the T&& bound in %s", t.RefDepth, dump(fn))
			return
		}
		if t.RefDepth == 2 && t.Elem != nil && t.Elem.IsValueType() {
			sink.Errorf(diag.KindIRInvariant, loc, "value type %s may not appear at reference depth 2 in %s", t.Elem, dump(fn))
		}
	}
	for _, p := range fn.Params {
		check(p.Type(), diag.Location{})
	}
	visitor.WalkGroup(fn.Body, visitor.Hooks{
		PreExpr: func(e *ir.Expr) visitor.Action {
			check(e.ResultType, locOf(e))
			if e.TargetType != nil {
				check(e.TargetType, locOf(e))
			}
			return visitor.Continue
		},
	})
}
