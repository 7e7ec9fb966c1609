package transform_test

import (
	"testing"

	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/transform"
)

func TestUnitUnificationMergesDistinctUnitResults(t *testing.T) {
	b := ir.NewBuilder()
	unit := b.GetPrimitiveType(ir.KindUnit)
	i64 := b.GetPrimitiveType(ir.KindInt64)

	callee := b.NewImportedFunc("sideEffect", "sideEffect", "main", nil, unit)
	f := b.NewFunc("f", "f", "main", nil, i64)
	entry := b.CreateBlock(f.Body, "entry")

	call1 := b.CreateApply(entry, callee, nil, unit)
	call2 := b.CreateApply(entry, callee, nil, unit)
	tuple := b.CreateTuple(entry, []ir.Value{call1.Result(), call2.Result()}, b.GetTupleType(unit, unit))
	lit := b.NewLiteral(ir.LitInt, i64)
	lit.Int = 0
	c := b.CreateConstant(entry, lit)
	b.CreateExit(entry, c.Result())
	_ = tuple

	unified := transform.UnitUnification(b, f)
	if unified != 2 {
		t.Fatalf("expected both unit results rewritten to a shared canonical constant, got %d", unified)
	}
	if tuple.Operands[0] != tuple.Operands[1] {
		t.Fatal("expected both tuple operands to reference the same canonical unit value")
	}
}
