package analysis_test

import (
	"testing"

	"github.com/chir-lang/chir/internal/chir/analysis"
	"github.com/chir-lang/chir/internal/chir/dataflow"
	"github.com/chir-lang/chir/internal/chir/ir"
)

func TestAllocationSitesTracksDistinctAllocateSites(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	f := b.NewFunc("f", "f", "main", nil, i64)
	entry := b.CreateBlock(f.Body, "entry")

	a1 := b.CreateAllocate(entry, i64, "a")
	a2 := b.CreateAllocate(entry, i64, "b")
	b.CreateExit(entry, nil)

	sites := analysis.AllocationSites(f, nil)
	obj1, ok1 := sites[a1]
	obj2, ok2 := sites[a2]
	if !ok1 || !ok2 {
		t.Fatal("expected both Allocate sites to be tracked")
	}
	if obj1 == obj2 {
		t.Fatal("expected distinct Allocate sites to resolve to distinct objects")
	}
}

func TestAllocationSitesSharesGlobalObjectAcrossLoads(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	pkg := ir.NewPackage(b, "main", ir.AccessPublic)
	g := b.NewGlobalVar("counter", "main", i64)
	pkg.Globals = append(pkg.Globals, g)
	global := dataflow.NewGlobalState(pkg)

	f := b.NewFunc("f", "f", "main", nil, i64)
	entry := b.CreateBlock(f.Body, "entry")
	l1 := b.CreateLoad(entry, g)
	l2 := b.CreateLoad(entry, g)
	b.CreateExit(entry, nil)

	sites := analysis.AllocationSites(f, global)
	obj1, ok1 := sites[l1]
	obj2, ok2 := sites[l2]
	if !ok1 || !ok2 {
		t.Fatal("expected both Load-of-global sites to be tracked")
	}
	if obj1 != obj2 {
		t.Fatal("expected two loads of the same global to resolve to the same object")
	}
}

func TestAllocationSitesOnBodylessFuncReturnsEmpty(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	f := &ir.Func{Name: "extern", MangledName: "extern", ReturnType: i64}

	sites := analysis.AllocationSites(f, nil)
	if len(sites) != 0 {
		t.Fatalf("expected no sites for a function with no body, got %d", len(sites))
	}
}
