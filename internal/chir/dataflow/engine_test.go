package dataflow_test

import (
	"testing"

	"github.com/chir-lang/chir/internal/chir/dataflow"
	"github.com/chir-lang/chir/internal/chir/ir"
)

func newDiamondFunc(b *ir.Builder) (*ir.Func, *ir.Block, *ir.Block, *ir.Block, *ir.Block) {
	i64 := b.GetPrimitiveType(ir.KindInt64)
	boolT := b.GetPrimitiveType(ir.KindBool)
	f := b.NewFunc("f", "f", "main", nil, i64)
	entry := b.CreateBlock(f.Body, "entry")
	left := b.CreateBlock(f.Body, "left")
	right := b.CreateBlock(f.Body, "right")
	join := b.CreateBlock(f.Body, "join")

	lit := b.NewLiteral(ir.LitBool, boolT)
	cond := b.CreateConstant(entry, lit)
	b.CreateBranch(entry, cond.Result(), left, right)
	b.CreateGoTo(left, join)
	b.CreateGoTo(right, join)
	b.CreateExit(join, nil)
	return f, entry, left, right, join
}

// The transfer function sets bit 0 of a 1-bit Maybe BitSet for every
// expression processed, purely to exercise the engine's worklist/join
// machinery end-to-end.
func TestRunReachesFixpointOverDiamond(t *testing.T) {
	b := ir.NewBuilder()
	f, entry, _, _, join := newDiamondFunc(b)

	visits := map[*ir.Block]int{}
	result := dataflow.Run(f.Body, dataflow.Options{
		Init: func() dataflow.Domain { return dataflow.NewBitSet(1, dataflow.Maybe) },
		ExprTransfer: func(state dataflow.Domain, e *ir.Expr) dataflow.Domain {
			bs := state.(*dataflow.BitSet)
			bs.Set(0)
			return bs
		},
	})

	if result.Aborted {
		t.Fatal("analysis should not abort without a block cap")
	}
	if _, ok := result.Exit[entry]; !ok {
		t.Fatal("expected an exit state recorded for entry")
	}
	joinEntry, ok := result.Entry[join]
	if !ok {
		t.Fatal("expected an entry state recorded for join")
	}
	if !joinEntry.(*dataflow.BitSet).Test(0) {
		t.Fatal("expected join's entry state to have bit 0 set from both predecessors")
	}
	_ = visits
}

func TestRunAbortsPastBlockCap(t *testing.T) {
	b := ir.NewBuilder()
	f, _, _, _, _ := newDiamondFunc(b)

	result := dataflow.Run(f.Body, dataflow.Options{
		Init:     func() dataflow.Domain { return dataflow.NewBitSet(1, dataflow.Maybe) },
		BlockCap: 1,
	})

	if !result.Aborted {
		t.Fatal("expected analysis to abort once the block cap is exceeded")
	}
}

func TestBitSetMaybeJoinIsUnion(t *testing.T) {
	a := dataflow.NewBitSet(4, dataflow.Maybe)
	a.Set(1)
	b := dataflow.NewBitSet(4, dataflow.Maybe)
	b.Set(2)

	changed := a.Join(b)
	if !changed {
		t.Fatal("expected join to report a change")
	}
	if !a.Test(1) || !a.Test(2) {
		t.Fatalf("expected union of bits, got %s", a.String())
	}
}

func TestBitSetMustJoinIsIntersection(t *testing.T) {
	a := dataflow.NewBitSet(4, dataflow.Must)
	a.Set(1)
	a.Set(2)
	b := dataflow.NewBitSet(4, dataflow.Must)
	b.Set(1)

	a.Join(b)
	if !a.Test(1) || a.Test(2) {
		t.Fatalf("expected intersection of bits, got %s", a.String())
	}
}

func TestValueStatePropagateCopiesChildren(t *testing.T) {
	s := dataflow.NewValueState()
	top := dataflow.NewBitSet(1, dataflow.Maybe)
	top.Set(0)

	srcObj := s.NewObject()
	destObj := s.NewObject()
	child := s.NewObject()
	s.ChildrenMap[srcObj] = []*dataflow.AbstractObject{child}
	s.SetObjectState(child, top)

	srcRef := s.NewRef()
	s.RefMap[srcRef] = dataflow.RefTarget{Object: srcObj}
	destRef := s.NewRef()
	s.RefMap[destRef] = dataflow.RefTarget{Object: destObj}

	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	srcVal := b.NewLiteral(ir.LitInt, i64)
	destVal := b.NewLiteral(ir.LitInt, i64)
	s.ProgramState[srcVal] = dataflow.ValueElement{IsRef: true, Ref: srcRef}
	s.ProgramState[destVal] = dataflow.ValueElement{IsRef: true, Ref: destRef}

	s.Propagate(srcVal, destVal)

	destChildren := s.ChildrenMap[destObj]
	if len(destChildren) != 1 {
		t.Fatalf("expected dest to gain one child, got %d", len(destChildren))
	}
	got, ok := s.GetObjectState(destChildren[0])
	if !ok || got.(*dataflow.BitSet).String() != top.String() {
		t.Fatal("expected dest child to inherit src child's state")
	}
}
