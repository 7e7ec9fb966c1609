package transform_test

import (
	"testing"

	"github.com/chir-lang/chir/internal/chir/analysis"
	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/transform"
	"github.com/chir-lang/chir/internal/chirconfig"
)

type noDevirt struct{}

func (noDevirt) PossibleCallees(*ir.Expr) []*ir.Func { return nil }

// buildFooBar builds the S1 scenario verbatim: fn foo(p: Int64): Int64 {
// ret p }, fn bar(): Int64 { foo(2) }.
func buildFooBar(b *ir.Builder) (foo, bar *ir.Func) {
	i64 := b.GetPrimitiveType(ir.KindInt64)

	p := b.NewParameter("p", i64, 0)
	foo = b.NewFunc("foo", "foo", "main", []*ir.Parameter{p}, i64)
	fooEntry := b.CreateBlock(foo.Body, "entry")
	b.CreateExit(fooEntry, p)

	bar = b.NewFunc("bar", "bar", "main", nil, i64)
	barEntry := b.CreateBlock(bar.Body, "entry")
	lit := b.NewLiteral(ir.LitInt, i64)
	lit.Int = 2
	two := b.CreateConstant(barEntry, lit)
	apply := b.CreateApply(barEntry, foo, []ir.Value{two.Result()}, i64)
	retSlot := b.CreateAllocate(barEntry, i64, "ret")
	b.CreateStore(barEntry, retSlot.Result(), apply.Result(), false)
	load := b.CreateLoad(barEntry, retSlot.Result())
	b.CreateExit(barEntry, load.Result())
	return foo, bar
}

func TestFunctionInlineS1RemovesApplyAndTracesConstant(t *testing.T) {
	b := ir.NewBuilder()
	foo, bar := buildFooBar(b)
	pkg := ir.NewPackage(b, "main", ir.AccessPublic)
	pkg.Functions = append(pkg.Functions, foo, bar)

	n := transform.FunctionInline(b, pkg, noDevirt{}, chirconfig.O1)
	if n != 1 {
		t.Fatalf("expected 1 call site inlined, got %d", n)
	}

	for _, blk := range bar.Body.Blocks {
		for _, e := range blk.Exprs {
			if e.Kind == ir.EApply {
				t.Fatalf("expected no Apply to foo left in bar, found one in block %d", blk.ID())
			}
		}
	}

	var storesTwo bool
	for _, blk := range bar.Body.Blocks {
		for _, e := range blk.Exprs {
			if e.Kind != ir.EStore {
				continue
			}
			v, ok := ir.As[*ir.LocalVar](e.Operands[1])
			if !ok || v.DefiningExpr == nil || v.DefiningExpr.Kind != ir.EConstant {
				continue
			}
			if lit, ok := ir.As[*ir.LiteralValue](v.DefiningExpr.Operands[0]); ok && lit.Int == 2 {
				storesTwo = true
			}
		}
	}
	if !storesTwo {
		t.Error("expected the inlined body to store the constant argument 2 into the return slot")
	}
}

func TestFunctionInlineRejectsSelfRecursion(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)

	f := b.NewFunc("f", "f", "main", nil, i64)
	entry := b.CreateBlock(f.Body, "entry")
	apply := b.CreateApply(entry, f, nil, i64)
	b.CreateExit(entry, apply.Result())

	pkg := ir.NewPackage(b, "main", ir.AccessPublic)
	pkg.Functions = append(pkg.Functions, f)

	n := transform.FunctionInline(b, pkg, noDevirt{}, chirconfig.O1)
	if n != 0 {
		t.Fatalf("expected self-recursive call to be rejected, got %d inlined", n)
	}
}

func TestFunctionInlineRejectsNoInlineCallee(t *testing.T) {
	b := ir.NewBuilder()
	foo, bar := buildFooBar(b)
	foo.NoInline = true

	pkg := ir.NewPackage(b, "main", ir.AccessPublic)
	pkg.Functions = append(pkg.Functions, foo, bar)

	n := transform.FunctionInline(b, pkg, noDevirt{}, chirconfig.O1)
	if n != 0 {
		t.Fatalf("expected no-inline callee to be rejected, got %d inlined", n)
	}
}

func TestFunctionInlineRejectsBlacklistedCallee(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)

	arrInit := b.NewFunc("arrayInitByFunction", "arrayInitByFunction", "std.core", nil, i64)
	arrEntry := b.CreateBlock(arrInit.Body, "entry")
	b.CreateExit(arrEntry, nil)

	caller := b.NewFunc("caller", "caller", "main", nil, i64)
	callerEntry := b.CreateBlock(caller.Body, "entry")
	apply := b.CreateApply(callerEntry, arrInit, nil, i64)
	b.CreateExit(callerEntry, apply.Result())

	pkg := ir.NewPackage(b, "main", ir.AccessPublic)
	pkg.Functions = append(pkg.Functions, arrInit, caller)

	n := transform.FunctionInline(b, pkg, noDevirt{}, chirconfig.O1)
	if n != 0 {
		t.Fatalf("expected blacklisted callee to be rejected, got %d inlined", n)
	}
}

func TestFunctionInlineSkipsUninlineableBody(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)

	callee := b.NewFunc("withLambda", "withLambda", "main", nil, i64)
	calleeEntry := b.CreateBlock(callee.Body, "entry")
	lambdaExpr, lambdaBody := b.CreateLambda(calleeEntry, nil, b.GetFuncType(nil, i64, false, false))
	lambdaBlk := b.CreateBlock(lambdaBody, "lambda-entry")
	lit := b.NewLiteral(ir.LitInt, i64)
	lit.Int = 1
	one := b.CreateConstant(lambdaBlk, lit)
	b.CreateExit(lambdaBlk, one.Result())
	b.CreateExit(calleeEntry, lambdaExpr.Result())

	caller := b.NewFunc("caller", "caller", "main", nil, i64)
	callerEntry := b.CreateBlock(caller.Body, "entry")
	apply := b.CreateApply(callerEntry, callee, nil, i64)
	b.CreateExit(callerEntry, apply.Result())

	pkg := ir.NewPackage(b, "main", ir.AccessPublic)
	pkg.Functions = append(pkg.Functions, callee, caller)

	n := transform.FunctionInline(b, pkg, noDevirt{}, chirconfig.O1)
	if n != 0 {
		t.Fatalf("expected a callee with a Lambda body to be left un-inlined, got %d", n)
	}
	var sawApply bool
	for _, e := range callerEntry.Exprs {
		if e.Kind == ir.EApply {
			sawApply = true
		}
	}
	if !sawApply {
		t.Error("expected the original Apply to remain since the callee body cannot be cloned")
	}
}

var _ = analysis.Devirtualizer(noDevirt{})
