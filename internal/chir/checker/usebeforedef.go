package checker

import (
	"github.com/chir-lang/chir/internal/chir/diag"
	"github.com/chir-lang/chir/internal/chir/ir"
)

// checkUseBeforeDef returns a rule enforcing §4.9's use-before-def
// bullet ("in the later phases, every operand used must be either a
// global/imported/literal, a parameter in scope, or the result of a
// preceding expression on every path from the entry"). Gated to
// PhaseAnalysisForLint and later: the RAW/PLUGIN phases still hold
// structured-control trees where "preceding on every path" is harder to
// define cheaply and isn't required yet (§4.9 phrasing: "in the later
// phases").
func checkUseBeforeDef(phase ir.Phase) func(fn *ir.Func, sink *diag.Sink) {
	return func(fn *ir.Func, sink *diag.Sink) {
		if phase < ir.PhaseAnalysisForLint || fn.Body == nil {
			return
		}
		// defined accumulates monotonically in RPO order rather than
		// tracking per-path dominance precisely: it never forgets a
		// definition once any predecessor block has produced it. That
		// makes this an approximation of "dominated by its definition"
		// biased towards fewer false positives, not a full dominance walk.
		defined := make(map[ir.Value]bool)
		for _, p := range fn.Params {
			defined[p] = true
		}

		var visitGroup func(g *ir.BlockGroup)
		visitGroup = func(g *ir.BlockGroup) {
			if g == nil {
				return
			}
			order := g.ReversePostOrder()
			for _, b := range order {
				for _, e := range b.Exprs {
					for _, op := range e.Operands {
						if !isKnownUse(op, defined) {
							sink.Errorf(diag.KindIRInvariant, locOf(e), "use of %s before definition in %s", op.Ident(), dump(fn))
						}
					}
					for _, nested := range e.NestedGroups() {
						visitGroup(nested)
					}
					if r := e.Result(); r != nil {
						defined[r] = true
					}
				}
			}
		}
		visitGroup(fn.Body)
	}
}

// isKnownUse reports whether op is a literal/global/imported value (no
// definition required) or already marked defined.
func isKnownUse(op ir.Value, defined map[ir.Value]bool) bool {
	switch op.(type) {
	case *ir.LiteralValue, *ir.GlobalVar, *ir.ImportedValue, *ir.Func, *ir.ImportedFunc:
		return true
	}
	return defined[op]
}
