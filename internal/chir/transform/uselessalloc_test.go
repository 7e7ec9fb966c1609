package transform_test

import (
	"testing"

	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/transform"
)

func TestUselessAllocationEliminationRemovesStoreOnlyAlloc(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	f := b.NewFunc("f", "f", "main", nil, i64)
	entry := b.CreateBlock(f.Body, "entry")

	alloc := b.CreateAllocate(entry, i64, "x")
	lit := b.NewLiteral(ir.LitInt, i64)
	lit.Int = 1
	c := b.CreateConstant(entry, lit)
	b.CreateStore(entry, alloc.Result(), c.Result(), false)
	b.CreateExit(entry, c.Result())

	removed := transform.UselessAllocationElimination(f)
	if removed != 1 {
		t.Fatalf("expected 1 allocation removed, got %d", removed)
	}
	for _, e := range entry.Exprs {
		if e.Kind == ir.EAllocate {
			t.Fatal("allocate expression should have been removed")
		}
		if e.Kind == ir.EStore {
			t.Fatal("store into the removed allocation should have been removed")
		}
	}
}

func TestUselessAllocationEliminationKeepsLoadedAlloc(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	f := b.NewFunc("f", "f", "main", nil, i64)
	entry := b.CreateBlock(f.Body, "entry")

	alloc := b.CreateAllocate(entry, i64, "x")
	lit := b.NewLiteral(ir.LitInt, i64)
	lit.Int = 1
	c := b.CreateConstant(entry, lit)
	b.CreateStore(entry, alloc.Result(), c.Result(), false)
	load := b.CreateLoad(entry, alloc.Result())
	b.CreateExit(entry, load.Result())

	removed := transform.UselessAllocationElimination(f)
	if removed != 0 {
		t.Fatalf("expected 0 allocations removed when the alloc is loaded, got %d", removed)
	}
}
