package transform_test

import (
	"testing"

	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/transform"
)

func TestLambdaInlineSpliceSingleConsumerCallee(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)

	f := b.NewFunc("f", "f", "main", nil, i64)
	entry := b.CreateBlock(f.Body, "entry")

	lambdaExpr, lambdaBody := b.CreateLambda(entry, nil, b.GetFuncType(nil, i64, false, false))
	lambdaBlk := b.CreateBlock(lambdaBody, "lambda-entry")
	lit := b.NewLiteral(ir.LitInt, i64)
	lit.Int = 9
	nine := b.CreateConstant(lambdaBlk, lit)
	b.CreateExit(lambdaBlk, nine.Result())

	apply := b.CreateApply(entry, lambdaExpr.Result(), nil, i64)
	retSlot := b.CreateAllocate(entry, i64, "ret")
	b.CreateStore(entry, retSlot.Result(), apply.Result(), false)
	load := b.CreateLoad(entry, retSlot.Result())
	b.CreateExit(entry, load.Result())

	n := transform.LambdaInline(b, f)
	if n != 1 {
		t.Fatalf("expected 1 lambda inlined, got %d", n)
	}

	for _, blk := range f.Body.Blocks {
		for _, e := range blk.Exprs {
			if e.Kind == ir.ELambda {
				t.Fatalf("expected the Lambda expression to be removed, found one in block %d", blk.ID())
			}
			if e.Kind == ir.EApply {
				t.Fatalf("expected no Apply left calling the lambda, found one in block %d", blk.ID())
			}
		}
	}

	var sawConstant bool
	for _, blk := range f.Body.Blocks {
		for _, e := range blk.Exprs {
			if e.Kind == ir.EConstant {
				sawConstant = true
			}
		}
	}
	if !sawConstant {
		t.Error("expected the lambda body's constant expression to survive the splice")
	}
}

func TestLambdaInlineSkipsMultiConsumerLambda(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)

	f := b.NewFunc("f", "f", "main", nil, i64)
	entry := b.CreateBlock(f.Body, "entry")

	lambdaExpr, lambdaBody := b.CreateLambda(entry, nil, b.GetFuncType(nil, i64, false, false))
	lambdaBlk := b.CreateBlock(lambdaBody, "lambda-entry")
	lit := b.NewLiteral(ir.LitInt, i64)
	lit.Int = 3
	three := b.CreateConstant(lambdaBlk, lit)
	b.CreateExit(lambdaBlk, three.Result())

	apply := b.CreateApply(entry, lambdaExpr.Result(), nil, i64)
	debug := b.CreateDebug(entry, lambdaExpr.Result(), "captured")
	b.CreateExit(entry, apply.Result())
	_ = debug

	n := transform.LambdaInline(b, f)
	if n != 0 {
		t.Fatalf("expected a lambda with more than one consumer to be left alone, got %d inlined", n)
	}

	var sawLambda bool
	for _, e := range entry.Exprs {
		if e.Kind == ir.ELambda {
			sawLambda = true
		}
	}
	if !sawLambda {
		t.Error("expected the multi-consumer lambda to remain un-inlined")
	}
}

func TestLambdaInlineSkipsNonCalleeConsumer(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	funcTy := b.GetFuncType(nil, i64, false, false)

	f := b.NewFunc("f", "f", "main", nil, i64)
	entry := b.CreateBlock(f.Body, "entry")

	lambdaExpr, lambdaBody := b.CreateLambda(entry, nil, funcTy)
	lambdaBlk := b.CreateBlock(lambdaBody, "lambda-entry")
	lit := b.NewLiteral(ir.LitInt, i64)
	lit.Int = 5
	five := b.CreateConstant(lambdaBlk, lit)
	b.CreateExit(lambdaBlk, five.Result())

	tuple := b.CreateTuple(entry, []ir.Value{lambdaExpr.Result()}, b.GetTupleType(funcTy))
	b.CreateExit(entry, nil)
	_ = tuple

	n := transform.LambdaInline(b, f)
	if n != 0 {
		t.Fatalf("expected a lambda passed as a non-callee operand to be left alone, got %d inlined", n)
	}
}
