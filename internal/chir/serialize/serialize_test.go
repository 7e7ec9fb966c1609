package serialize_test

import (
	"testing"

	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/serialize"
	"github.com/gkampitakis/go-snaps/snaps"
)

func buildDumpableFunc(b *ir.Builder) *ir.Func {
	i64 := b.GetPrimitiveType(ir.KindInt64)
	f := b.NewFunc("add", "add", "main", nil, i64)
	entry := b.CreateBlock(f.Body, "entry")
	lit := b.NewLiteral(ir.LitInt, i64)
	lit.Int = 2
	c := b.CreateConstant(entry, lit)
	alloc := b.CreateAllocate(entry, i64, "total")
	b.CreateStore(entry, alloc.Result(), c.Result(), false)
	load := b.CreateLoad(entry, alloc.Result())
	b.CreateExit(entry, load.Result())
	return f
}

func TestDumpFuncMatchesSnapshot(t *testing.T) {
	b := ir.NewBuilder()
	f := buildDumpableFunc(b)

	dump, err := serialize.DumpFunc(f)
	if err != nil {
		t.Fatalf("DumpFunc: %v", err)
	}
	snaps.MatchSnapshot(t, dump)
}

func TestDumpPackageMatchesSnapshot(t *testing.T) {
	b := ir.NewBuilder()
	f := buildDumpableFunc(b)
	pkg := ir.NewPackage(b, "main", ir.AccessPublic)
	pkg.Functions = []*ir.Func{f}

	dump, err := serialize.DumpPackage(pkg)
	if err != nil {
		t.Fatalf("DumpPackage: %v", err)
	}
	snaps.MatchSnapshot(t, dump)
}

func TestCountExprKindCountsNestedExpressions(t *testing.T) {
	b := ir.NewBuilder()
	f := buildDumpableFunc(b)

	dump, err := serialize.DumpFunc(f)
	if err != nil {
		t.Fatalf("DumpFunc: %v", err)
	}
	if n := serialize.CountExprKind(dump, "Constant"); n != 1 {
		t.Fatalf("expected 1 Constant expression, got %d", n)
	}
	if n := serialize.CountExprKind(dump, "Store"); n != 1 {
		t.Fatalf("expected 1 Store expression, got %d", n)
	}
	if n := serialize.CountExprKind(dump, "Exit"); n != 1 {
		t.Fatalf("expected 1 Exit expression, got %d", n)
	}
}
