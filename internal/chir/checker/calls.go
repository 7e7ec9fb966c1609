package checker

import (
	"github.com/chir-lang/chir/internal/chir/diag"
	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/visitor"
)

// checkCallArguments enforces §4.9's last bullet: Invoke/Apply argument
// types must be value types, function types, or single-level references;
// the first argument of a mut-method or constructor must be a one-level
// reference to the receiver.
func checkCallArguments(fn *ir.Func, sink *diag.Sink) {
	visitor.WalkGroup(fn.Body, visitor.Hooks{
		PreExpr: func(e *ir.Expr) visitor.Action {
			switch e.Kind {
			case ir.EApply, ir.EInvoke, ir.EInvokeStatic:
			default:
				return visitor.Continue
			}
			callee, hasCallee := calleeOf(e)
			for i, op := range e.Operands {
				t := op.Type()
				if !isLegalArgType(t) {
					sink.Errorf(diag.KindIRInvariant, locOf(e), "argument %d of %s in %s has illegal type %s", i, e.Kind, dump(fn), t)
				}
				if i == 0 && hasCallee && calleeTakesRefReceiver(callee) {
					if t == nil || t.Kind != ir.KindRef || t.RefDepth != 1 {
						sink.Errorf(diag.KindIRInvariant, locOf(e), "receiver argument of %s in %s must be a one-level reference, got %s", e.Kind, dump(fn), t)
					}
				}
			}
			return visitor.Continue
		},
	})
}

func calleeOf(e *ir.Expr) (*ir.Func, bool) {
	f, ok := ir.As[*ir.Func](e.Callee)
	return f, ok
}

// calleeTakesRefReceiver reports whether callee is a constructor or a
// method whose receiver is mutated (approximated here as "any method of
// a class def", since CHIR doesn't separately flag mut-ness on Func —
// the frontend's immutability rules for struct value-type methods have
// already been enforced before lowering reaches this IR).
func calleeTakesRefReceiver(callee *ir.Func) bool {
	if callee == nil || callee.ParentDef == nil {
		return false
	}
	return callee.IsConstructor || callee.ParentDef.Kind == ir.DeclClass
}

func isLegalArgType(t *ir.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case ir.KindFunc:
		return true
	case ir.KindRef:
		return t.RefDepth == 1
	default:
		return t.IsValueType()
	}
}
