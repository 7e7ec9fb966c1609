package visitor_test

import (
	"testing"

	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/visitor"
)

func newTestFunc(b *ir.Builder) *ir.Func {
	i64 := b.GetPrimitiveType(ir.KindInt64)
	return b.NewFunc("f", "f", "main", nil, i64)
}

func TestWalkGroupVisitsEveryBlockAndExpr(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	f := newTestFunc(b)
	group := f.Body
	entry := b.CreateBlock(group, "entry")
	exit := b.CreateBlock(group, "exit")

	lit := b.NewLiteral(ir.LitInt, i64)
	lit.Int = 1
	c := b.CreateConstant(entry, lit)
	b.CreateGoTo(entry, exit)
	b.CreateExit(exit, nil)

	var blocks, exprs int
	visitor.WalkGroup(group, visitor.Hooks{
		PreBlock: func(*ir.Block) visitor.Action { blocks++; return visitor.Continue },
		PreExpr:  func(*ir.Expr) visitor.Action { exprs++; return visitor.Continue },
	})

	if blocks != 2 {
		t.Fatalf("expected 2 blocks visited, got %d", blocks)
	}
	if exprs != 3 {
		t.Fatalf("expected 3 exprs visited, got %d", exprs)
	}
	if c.Result() == nil {
		t.Fatal("constant expr should produce a result")
	}
}

func TestWalkGroupStopsEarly(t *testing.T) {
	b := ir.NewBuilder()
	f := newTestFunc(b)
	group := f.Body
	entry := b.CreateBlock(group, "entry")
	mid := b.CreateBlock(group, "mid")
	exit := b.CreateBlock(group, "exit")
	b.CreateGoTo(entry, mid)
	b.CreateGoTo(mid, exit)
	b.CreateExit(exit, nil)

	seen := 0
	result := visitor.WalkGroup(group, visitor.Hooks{
		PreBlock: func(bl *ir.Block) visitor.Action {
			seen++
			if bl == mid {
				return visitor.Stop
			}
			return visitor.Continue
		},
	})

	if result != visitor.Stop {
		t.Fatalf("expected walk to report Stop, got %v", result)
	}
	if seen != 2 {
		t.Fatalf("expected walk to stop after visiting 2 blocks, got %d", seen)
	}
}

func TestExprVisitorDispatch(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	f := newTestFunc(b)
	entry := b.CreateBlock(f.Body, "entry")
	lit := b.NewLiteral(ir.LitInt, i64)
	lit.Int = 1
	b.CreateConstant(entry, lit)
	b.CreateExit(entry, nil)

	var sawConstant, sawDefault int
	v := visitor.ExprVisitor{
		Default:    func(*ir.Expr) { sawDefault++ },
		OnConstant: func(*ir.Expr) { sawConstant++ },
	}
	for _, e := range entry.Exprs {
		v.Dispatch(e)
	}

	if sawConstant != 1 {
		t.Fatalf("expected OnConstant called once, got %d", sawConstant)
	}
	if sawDefault != 1 {
		t.Fatalf("expected Default called once for Exit, got %d", sawDefault)
	}
}
