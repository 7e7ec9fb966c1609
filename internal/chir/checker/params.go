package checker

import (
	"github.com/chir-lang/chir/internal/chir/diag"
	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/visitor"
)

// checkParamAgreement enforces §4.9's "function parameter-list agreement
// with its function type" bullet: every parameter has a non-nil type,
// parameter indices are contiguous from 0, and the function declares a
// return type (Unit/Void are valid "no value" returns, but a nil
// ReturnType is a corrupt graph).
func checkParamAgreement(fn *ir.Func, sink *diag.Sink) {
	if fn.ReturnType == nil {
		sink.Errorf(diag.KindIRInvariant, diag.Location{}, "function %s has no return type", dump(fn))
	}
	for i, p := range fn.Params {
		if p.Type() == nil {
			sink.Errorf(diag.KindIRInvariant, diag.Location{}, "parameter %d of %s has no type", i, dump(fn))
		}
		if p.Index != i {
			sink.Errorf(diag.KindIRInvariant, diag.Location{}, "parameter %d of %s has out-of-order index %d", i, dump(fn), p.Index)
		}
	}
}

// checkGenericVisibility enforces §4.9's "generic types used inside a
// function body are visible in the function's or enclosing def's
// generic parameters" bullet.
func checkGenericVisibility(fn *ir.Func, sink *diag.Sink) {
	visible := make(map[string]bool)
	for _, gp := range fn.GenericParams {
		visible[gp.Name] = true
	}
	if fn.ParentDef != nil {
		for _, gp := range fn.ParentDef.GenericParams {
			visible[gp.Name] = true
		}
	}

	check := func(t *ir.Type, e *ir.Expr) {
		walkGenericNames(t, func(name string) {
			if !visible[name] {
				sink.Errorf(diag.KindIRInvariant, locOf(e), "generic type %q used in %s is not visible to it", name, dump(fn))
			}
		})
	}

	for _, p := range fn.Params {
		walkGenericNames(p.Type(), func(name string) {
			if !visible[name] {
				sink.Errorf(diag.KindIRInvariant, diag.Location{}, "generic type %q used in %s's parameter list is not visible to it", name, dump(fn))
			}
		})
	}
	visitor.WalkGroup(fn.Body, visitor.Hooks{
		PreExpr: func(e *ir.Expr) visitor.Action {
			check(e.ResultType, e)
			if e.TargetType != nil {
				check(e.TargetType, e)
			}
			return visitor.Continue
		},
	})
}

// walkGenericNames visits every KindGeneric leaf reachable from t
// (through Elem/Elems/Ret/TypeArgs), reporting its GenericName.
func walkGenericNames(t *ir.Type, visit func(name string)) {
	if t == nil {
		return
	}
	seen := make(map[*ir.Type]bool)
	var walk func(t *ir.Type)
	walk = func(t *ir.Type) {
		if t == nil || seen[t] {
			return
		}
		seen[t] = true
		if t.Kind == ir.KindGeneric {
			visit(t.GenericName)
			return
		}
		walk(t.Elem)
		walk(t.Ret)
		for _, e := range t.Elems {
			walk(e)
		}
		for _, a := range t.TypeArgs {
			walk(a)
		}
	}
	walk(t)
}
