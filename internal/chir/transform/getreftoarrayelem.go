package transform

import (
	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/visitor"
)

const (
	arrayGetUncheckedName    = "ARRAY_GET_UNCHECKED"
	arrayGetRefUncheckedName = "ARRAY_GET_REF_UNCHECKED"
)

// GetRefToArrayElement rewrites an ARRAY_GET_UNCHECKED intrinsic whose
// result is consumed only by Field projections into an
// ARRAY_GET_REF_UNCHECKED + GetElementRef + Load sequence, per §4.8:
// instead of loading the whole array element and then projecting a
// field out of it, it takes a reference to the element, a reference to
// the field within it, and loads only that field. Returns the number of
// ARRAY_GET_UNCHECKED sites rewritten.
func GetRefToArrayElement(b *ir.Builder, fn *ir.Func) int {
	if fn.Body == nil {
		return 0
	}
	var candidates []*ir.Expr
	visitor.WalkGroup(fn.Body, visitor.Hooks{
		PreExpr: func(e *ir.Expr) visitor.Action {
			if e.Kind == ir.EIntrinsic && e.Symbol == arrayGetUncheckedName {
				candidates = append(candidates, e)
			}
			return visitor.Continue
		},
	})

	rewritten := 0
	for _, intrinsic := range candidates {
		if rewriteArrayGetUnchecked(b, intrinsic) {
			rewritten++
		}
	}
	return rewritten
}

func rewriteArrayGetUnchecked(b *ir.Builder, intrinsic *ir.Expr) bool {
	result := intrinsic.Result()
	if result == nil {
		return false
	}
	users := result.Users()
	if len(users) == 0 {
		return false
	}
	fields := make([]*ir.Expr, 0, len(users))
	for user := range users {
		if user.Kind != ir.EField {
			return false
		}
		fields = append(fields, user)
	}

	arrayGetRef := b.CreateIntrinsic(intrinsic.Block(), arrayGetRefUncheckedName, intrinsic.Operands, b.GetRefType(intrinsic.ResultType, 1))

	for _, field := range fields {
		fieldTy := field.ResultType
		getElemRef := b.CreateGetElementRef(field.Block(), arrayGetRef.Result(), field.Indices, fieldTy, field.Symbol)
		load := b.CreateLoad(field.Block(), getElemRef.Result())
		getElemRef.MoveBefore(field)
		load.MoveBefore(field)
		for user := range field.Result().Users() {
			user.ReplaceOperand(field.Result(), load.Result())
		}
		field.RemoveSelfFromBlock()
	}

	spliceReplace(intrinsic, arrayGetRef)
	return true
}
