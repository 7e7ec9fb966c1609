package checker

import (
	"github.com/chir-lang/chir/internal/chir/diag"
	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/visitor"
)

// checkTupleOnEnum enforces §4.9's "Tuple on enum" bullet: building an
// enum's payload tuple requires the first operand to be a constant
// selector (UInt32 or Bool), and its ConstructorIndex must select a
// real constructor of the target enum whose parameter count matches the
// remaining operands.
func checkTupleOnEnum(fn *ir.Func, sink *diag.Sink) {
	visitor.WalkGroup(fn.Body, visitor.Hooks{
		PreExpr: func(e *ir.Expr) visitor.Action {
			if e.Kind != ir.ETuple || e.TargetType == nil || e.TargetType.Decl == nil || e.TargetType.Decl.Kind != ir.DeclEnum {
				return visitor.Continue
			}
			def := e.TargetType.Decl
			if len(e.Operands) == 0 {
				sink.Errorf(diag.KindIRInvariant, locOf(e), "enum tuple in %s has no selector operand", dump(fn))
				return visitor.Continue
			}
			lit, ok := ir.As[*ir.LiteralValue](e.Operands[0])
			if !ok || (lit.LitKind != ir.LitInt && lit.LitKind != ir.LitBool) {
				sink.Errorf(diag.KindIRInvariant, locOf(e), "enum tuple selector in %s is not a constant UInt32/Bool", dump(fn))
				return visitor.Continue
			}
			if e.ConstructorIndex < 0 || e.ConstructorIndex >= len(def.Ctors) {
				sink.Errorf(diag.KindIRInvariant, locOf(e), "enum tuple in %s selects out-of-range constructor %d", dump(fn), e.ConstructorIndex)
				return visitor.Continue
			}
			ctor := def.Ctors[e.ConstructorIndex]
			if want := len(ctor.FuncType.Elems); want != len(e.Operands)-1 {
				sink.Errorf(diag.KindIRInvariant, locOf(e), "enum tuple in %s supplies %d payload operand(s) for constructor %q expecting %d", dump(fn), len(e.Operands)-1, ctor.Name, want)
			}
			return visitor.Continue
		},
	})
}

// checkTypeCasts enforces §4.9's TypeCast restrictions: trivial-enum <->
// UInt32, non-trivial-enum <-> tuple, integer <-> rune/int/float/trivial-enum.
func checkTypeCasts(fn *ir.Func, sink *diag.Sink) {
	visitor.WalkGroup(fn.Body, visitor.Hooks{
		PreExpr: func(e *ir.Expr) visitor.Action {
			if e.Kind != ir.ETypeCast || len(e.Operands) == 0 || e.TargetType == nil {
				return visitor.Continue
			}
			from := e.Operands[0].Type()
			to := e.TargetType
			if !legalCast(from, to) {
				sink.Errorf(diag.KindIRInvariant, locOf(e), "illegal TypeCast from %s to %s in %s", from, to, dump(fn))
			}
			return visitor.Continue
		},
	})
}

func legalCast(from, to *ir.Type) bool {
	if from == nil || to == nil {
		return false
	}
	if isEnum(from, true) && to.Kind == ir.KindUInt32 {
		return true
	}
	if from.Kind == ir.KindUInt32 && isEnum(to, true) {
		return true
	}
	if isEnum(from, false) && to.Kind == ir.KindTuple {
		return true
	}
	if from.Kind == ir.KindTuple && isEnum(to, false) {
		return true
	}
	if isIntLike(from) && isCastTargetFromInt(to) {
		return true
	}
	if isCastTargetFromInt(from) && isIntLike(to) {
		return true
	}
	return false
}

func isEnum(t *ir.Type, trivial bool) bool {
	if t.Kind != ir.KindCustom || t.Decl == nil || t.Decl.Kind != ir.DeclEnum {
		return false
	}
	return t.Decl.IsTrivial() == trivial
}

func isIntLike(t *ir.Type) bool {
	switch t.Kind {
	case ir.KindInt8, ir.KindInt16, ir.KindInt32, ir.KindInt64, ir.KindIntNative,
		ir.KindUInt8, ir.KindUInt16, ir.KindUInt32, ir.KindUInt64, ir.KindUIntNative:
		return true
	}
	return false
}

// isCastTargetFromInt reports whether t is a legal int<->X cast partner:
// rune, another integer width, a float, or a trivial enum.
func isCastTargetFromInt(t *ir.Type) bool {
	if isIntLike(t) || t.Kind == ir.KindRune {
		return true
	}
	switch t.Kind {
	case ir.KindFloat16, ir.KindFloat32, ir.KindFloat64:
		return true
	}
	return isEnum(t, true)
}
