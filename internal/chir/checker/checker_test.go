package checker_test

import (
	"context"
	"testing"

	"github.com/chir-lang/chir/internal/chir/checker"
	"github.com/chir-lang/chir/internal/chir/ir"
)

func simplePackage(b *ir.Builder) (*ir.Package, *ir.Func) {
	i64 := b.GetPrimitiveType(ir.KindInt64)
	f := b.NewFunc("main", "main", "main", nil, i64)
	entry := b.CreateBlock(f.Body, "entry")
	lit := b.NewLiteral(ir.LitInt, i64)
	lit.Int = 1
	c := b.CreateConstant(entry, lit)
	b.CreateExit(entry, c.Result())

	pkg := ir.NewPackage(b, "main", ir.AccessPublic)
	pkg.Phase = ir.PhaseOpt
	pkg.Functions = []*ir.Func{f}
	return pkg, f
}

func TestCheckAcceptsWellFormedPackage(t *testing.T) {
	b := ir.NewBuilder()
	pkg, _ := simplePackage(b)

	ok, sink := checker.Check(context.Background(), pkg, 2)
	if !ok {
		t.Fatalf("expected a well-formed package to pass, got: %s", sink.Format())
	}
}

func TestCheckFlagsDuplicateFunctionIdentifiers(t *testing.T) {
	b := ir.NewBuilder()
	pkg, f := simplePackage(b)

	i64 := b.GetPrimitiveType(ir.KindInt64)
	dup := b.NewFunc("main2", "main", "main", nil, i64) // same mangled name as f
	entry := b.CreateBlock(dup.Body, "entry")
	lit := b.NewLiteral(ir.LitInt, i64)
	b.CreateExit(entry, b.CreateConstant(entry, lit).Result())
	pkg.Functions = append(pkg.Functions, dup)
	_ = f

	ok, sink := checker.Check(context.Background(), pkg, 2)
	if ok {
		t.Fatal("expected duplicate identifiers to fail the checker")
	}
	if len(sink.Diagnostics()) == 0 {
		t.Fatal("expected at least one diagnostic")
	}
}

func TestCheckFlagsOutOfRangeReferenceDepth(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	ref1 := b.GetRefType(i64, 1)
	ref2 := b.GetRefType(ref1, 2)
	// A value type (Int64) may not sit at depth 2 per §3.1.
	badRef := &ir.Type{Kind: ir.KindRef, Elem: i64, RefDepth: 2}
	_ = ref2

	f := b.NewFunc("f", "f", "main", nil, i64)
	entry := b.CreateBlock(f.Body, "entry")
	alloc := b.CreateAllocate(entry, i64, "x")
	alloc.ResultType = badRef
	b.CreateExit(entry, nil)

	pkg := ir.NewPackage(b, "main", ir.AccessPublic)
	pkg.Phase = ir.PhaseOpt
	pkg.Functions = []*ir.Func{f}

	ok, sink := checker.Check(context.Background(), pkg, 1)
	if ok {
		t.Fatalf("expected a depth-2 value-type reference to fail, got: %s", sink.Format())
	}
}
