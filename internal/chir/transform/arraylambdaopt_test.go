package transform_test

import (
	"testing"

	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/transform"
)

func TestArrayLambdaOptimisationRewritesConstantFill(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	unit := b.GetPrimitiveType(ir.KindUnit)
	rawArrType := b.GetRawArrayType(i64)
	initFunc := b.NewImportedFunc("arrayInitByFunction", "arrayInitByFunction", "core", nil, rawArrType)

	f := b.NewFunc("f", "f", "main", nil, rawArrType)
	entry := b.CreateBlock(f.Body, "entry")

	lenLit := b.NewLiteral(ir.LitInt, i64)
	lenLit.Int = 4
	lenConst := b.CreateConstant(entry, lenLit)
	arr := b.CreateRawArrayAllocate(entry, i64, lenConst.Result())

	lambdaExpr, lambdaBody := b.CreateLambda(entry, nil, b.GetFuncType([]*ir.Type{i64}, i64, false, false))
	lambdaBlk := b.CreateBlock(lambdaBody, "lambda-entry")
	fillLit := b.NewLiteral(ir.LitInt, i64)
	fillLit.Int = 7
	fillConst := b.CreateConstant(lambdaBlk, fillLit)
	b.CreateExit(lambdaBlk, fillConst.Result())

	apply := b.CreateApply(entry, initFunc, []ir.Value{arr.Result(), lambdaExpr.Result()}, rawArrType)
	sink := b.CreateAllocate(entry, rawArrType, "sink")
	b.CreateStore(entry, sink.Result(), apply.Result(), false)
	b.CreateExit(entry, nil)
	_ = unit

	n := transform.ArrayLambdaOptimisation(b, f)
	if n != 1 {
		t.Fatalf("expected 1 rewrite, got %d", n)
	}

	var sawApply, sawIntrinsic bool
	for _, e := range entry.Exprs {
		if e.Kind == ir.EApply {
			sawApply = true
		}
		if e.Kind == ir.EIntrinsic && e.Symbol == "RAW_ARRAY_INIT_BY_VALUE" {
			sawIntrinsic = true
		}
	}
	if sawApply {
		t.Error("expected the arrayInitByFunction Apply to be removed")
	}
	if !sawIntrinsic {
		t.Error("expected a RAW_ARRAY_INIT_BY_VALUE intrinsic to be inserted")
	}
	for _, e := range entry.Exprs {
		if e.Kind == ir.EStore && e.Operands[0] == sink.Result() {
			if e.Operands[1] != arr.Result() {
				t.Error("expected users of the apply result to now reference the raw array directly")
			}
		}
	}
}

func TestArrayLambdaOptimisationDeletesRedundantZeroInit(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	unit := b.GetPrimitiveType(ir.KindUnit)
	rawArrType := b.GetRawArrayType(i64)

	f := b.NewFunc("f", "f", "main", nil, unit)
	entry := b.CreateBlock(f.Body, "entry")

	lenLit := b.NewLiteral(ir.LitInt, i64)
	lenLit.Int = 4
	lenConst := b.CreateConstant(entry, lenLit)
	arr := b.CreateRawArrayAllocate(entry, i64, lenConst.Result())

	zeroVal := b.CreateIntrinsic(entry, "OBJECT_ZERO_VALUE", nil, i64)
	b.CreateIntrinsic(entry, "RAW_ARRAY_INIT_BY_VALUE", []ir.Value{arr.Result(), lenConst.Result(), zeroVal.Result()}, unit)
	b.CreateExit(entry, nil)
	_ = rawArrType

	n := transform.ArrayLambdaOptimisation(b, f)
	if n != 1 {
		t.Fatalf("expected 1 deletion, got %d", n)
	}
	for _, e := range entry.Exprs {
		if e.Kind == ir.EIntrinsic && e.Symbol == "RAW_ARRAY_INIT_BY_VALUE" {
			t.Fatal("expected the redundant zero-value init to be removed")
		}
		if e.Kind == ir.EIntrinsic && e.Symbol == "OBJECT_ZERO_VALUE" {
			t.Fatal("expected the now-unused zero-value intrinsic to be removed")
		}
	}
}
