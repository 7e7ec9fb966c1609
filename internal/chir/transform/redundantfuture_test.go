package transform_test

import (
	"testing"

	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/transform"
)

func TestRedundantFutureRemovalInlinesFreshFuture(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	unit := b.GetPrimitiveType(ir.KindUnit)

	futureDef := &ir.CustomDef{Name: "Future", Kind: ir.DeclClass}
	futureType := b.GetCustomType(futureDef, nil)

	initFunc := b.NewImportedFunc("Future.init", "Future.init", "main", []*ir.Type{futureType, b.GetFuncType(nil, i64, false, false)}, unit)
	closureParam := b.NewParameter("closure", b.GetFuncType(nil, i64, false, false), 0)

	f := b.NewFunc("f", "f", "main", []*ir.Parameter{closureParam}, i64)
	entry := b.CreateBlock(f.Body, "entry")

	alloc := b.CreateAllocate(entry, futureType, "fut")
	b.CreateApply(entry, initFunc, []ir.Value{alloc.Result(), closureParam}, unit)
	spawn := b.CreateSpawn(entry, alloc.Result(), i64)
	b.CreateExit(entry, spawn.Result())

	rewritten := transform.RedundantFutureRemoval(f)
	if rewritten != 1 {
		t.Fatalf("expected 1 spawn rewritten, got %d", rewritten)
	}
	if spawn.Operands[0] != closureParam {
		t.Fatalf("expected spawn to take the closure directly, got %v", spawn.Operands[0])
	}
	if !spawn.ExecuteClosure {
		t.Fatal("expected ExecuteClosure to be set")
	}
	for _, e := range entry.Exprs {
		if e.Kind == ir.EAllocate {
			t.Fatal("future allocation should have been removed")
		}
	}
}
