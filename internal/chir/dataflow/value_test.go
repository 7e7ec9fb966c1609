package dataflow_test

import (
	"testing"

	"github.com/chir-lang/chir/internal/chir/dataflow"
	"github.com/chir-lang/chir/internal/chir/ir"
)

func TestValueStateBottomIsJoinIdentity(t *testing.T) {
	s := dataflow.NewValueState()
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	v := b.NewLiteral(ir.LitInt, i64)
	s.Update(v, dataflow.NewBitSet(1, dataflow.Maybe))

	bottom := s.Bottom()
	before := s.String()
	if changed := bottom.Join(s); !changed {
		t.Fatal("expected joining a non-empty state into Bottom to report a change")
	}
	if bottom.String() != before {
		t.Fatalf("Bottom joined with s should reproduce s: got %s, want %s", bottom.String(), before)
	}

	s2 := dataflow.NewValueState()
	if changed := s2.Join(s.Bottom()); changed {
		t.Fatal("joining Bottom into any state should never report a change")
	}
}

func TestValueStateJoinCollapsesEqualRefs(t *testing.T) {
	a := dataflow.NewValueState()
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	v := b.NewLiteral(ir.LitInt, i64)
	obj := a.GetReferencedObj(v)

	other := dataflow.NewValueState()
	other.ProgramState[v] = a.ProgramState[v]
	other.RefMap[a.ProgramState[v].Ref] = dataflow.RefTarget{Object: obj}

	a.Join(other)
	e := a.ProgramState[v]
	if !e.IsRef {
		t.Fatal("expected v to still resolve through a ref after joining an identical entry")
	}
}

func TestValueStateJoinMergesDistinctRefsIntoFreshObject(t *testing.T) {
	a := dataflow.NewValueState()
	bld := ir.NewBuilder()
	i64 := bld.GetPrimitiveType(ir.KindInt64)
	v := bld.NewLiteral(ir.LitInt, i64)
	objA := a.GetReferencedObj(v)
	bitsA := dataflow.NewBitSet(1, dataflow.Maybe)
	bitsA.Set(0)
	a.SetObjectState(objA, bitsA)

	other := dataflow.NewValueState()
	objB := other.GetReferencedObj(v)
	bitsB := dataflow.NewBitSet(1, dataflow.Maybe)
	other.SetObjectState(objB, bitsB)

	if !a.Join(other) {
		t.Fatal("expected joining two states with distinct refs for the same value to report a change")
	}

	e, ok := a.ProgramState[v]
	if !ok || !e.IsRef {
		t.Fatal("expected v to resolve through a merged ref")
	}
	merged, ok := a.GetObjectState(a.RefMap[e.Ref].Object)
	if !ok {
		t.Fatal("expected the merged ref to resolve to a tracked object")
	}
	if !merged.(*dataflow.BitSet).Test(0) {
		t.Fatal("expected the merged object's state to carry bit 0 set from objA's state")
	}
}

func TestValueStateStringIsDeterministic(t *testing.T) {
	s := dataflow.NewValueState()
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	for i := 0; i < 5; i++ {
		v := b.NewLiteral(ir.LitInt, i64)
		s.Update(v, dataflow.NewBitSet(1, dataflow.Maybe))
	}
	first := s.String()
	for i := 0; i < 10; i++ {
		if s.String() != first {
			t.Fatal("expected ValueState.String to be stable across repeated calls")
		}
	}
}

func TestGlobalStateSharesObjectIdentityAcrossLoads(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	pkg := ir.NewPackage(b, "main", ir.AccessPublic)
	g := b.NewGlobalVar("counter", "main", i64)
	pkg.Globals = append(pkg.Globals, g)

	gs := dataflow.NewGlobalState(pkg)
	obj1, ok1 := gs.Object(g)
	obj2, ok2 := gs.Object(g)
	if !ok1 || !ok2 {
		t.Fatal("expected the global to be tracked by GlobalState")
	}
	if obj1 != obj2 {
		t.Fatal("expected every lookup of the same global to resolve to the same object identity")
	}

	other := b.NewGlobalVar("unrelated", "main", i64)
	if _, ok := gs.Object(other); ok {
		t.Fatal("expected a global not present in the package's Globals to be untracked")
	}
}
