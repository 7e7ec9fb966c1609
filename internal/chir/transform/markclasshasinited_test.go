package transform_test

import (
	"testing"

	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/transform"
)

// buildClassWithFinalizer builds a class CA with one constructor
// (taking no extra args beyond `this`) and a finalizer, neither of which
// touch hasInited yet — exactly the shape MarkClassHasInited expects to
// find.
func buildClassWithFinalizer(b *ir.Builder) *ir.CustomDef {
	classDef := &ir.CustomDef{Name: "CA", MangledName: "CA", Package: "main", Kind: ir.DeclClass}
	classDef.Members = []ir.MemberVar{{Name: "x", Type: b.GetPrimitiveType(ir.KindInt64)}}
	classTy := b.GetRefType(b.GetCustomType(classDef, nil), 1)
	unit := b.GetPrimitiveType(ir.KindUnit)

	thisParam := b.NewParameter("this", classTy, 0)
	ctor := b.NewFunc("init", "CA.init", "main", []*ir.Parameter{thisParam}, unit)
	ctor.IsConstructor = true
	ctor.ParentDef = classDef
	ctorEntry := b.CreateBlock(ctor.Body, "entry")
	b.CreateExit(ctorEntry, nil)

	finThisParam := b.NewParameter("this", classTy, 0)
	finalizer := b.NewFunc("~init", "CA.~init", "main", []*ir.Parameter{finThisParam}, unit)
	finalizer.ParentDef = classDef
	finEntry := b.CreateBlock(finalizer.Body, "entry")
	b.CreateExit(finEntry, nil)

	classDef.Methods = []*ir.Func{ctor, finalizer}
	classDef.Finalizer = finalizer
	return classDef
}

func TestMarkClassHasInitedAddsMemberAndGuards(t *testing.T) {
	b := ir.NewBuilder()
	classDef := buildClassWithFinalizer(b)
	pkg := ir.NewPackage(b, "main", ir.AccessPublic)
	pkg.Classes = append(pkg.Classes, classDef)

	n := transform.MarkClassHasInited(b, pkg)
	if n != 1 {
		t.Fatalf("expected 1 class marked, got %d", n)
	}
	if classDef.HasInitedField == "" {
		t.Fatal("expected HasInitedField to be set")
	}

	var sawHasInited bool
	for _, m := range classDef.Members {
		if m.Name == "hasInited" {
			sawHasInited = true
		}
	}
	if !sawHasInited {
		t.Fatal("expected a hasInited member to be appended")
	}

	ctor := classDef.Methods[0]
	entry := ctor.Body.Entry
	if entry.Exprs[0].Kind != ir.EConstant {
		t.Fatalf("expected the constructor entry to start with the false-literal store, got %v", entry.Exprs[0].Kind)
	}
	if entry.Exprs[1].Kind != ir.EStoreElementRef {
		t.Fatalf("expected the second entry expression to store hasInited = false, got %v", entry.Exprs[1].Kind)
	}
	lastIdx := len(entry.Exprs) - 1
	if entry.Exprs[lastIdx].Kind != ir.EExit {
		t.Fatalf("expected the constructor to still end in Exit, got %v", entry.Exprs[lastIdx].Kind)
	}
	if entry.Exprs[lastIdx-1].Kind != ir.EStoreElementRef {
		t.Fatalf("expected hasInited = true stored immediately before Exit, got %v", entry.Exprs[lastIdx-1].Kind)
	}

	finalizer := classDef.Finalizer
	guard := finalizer.Body.Entry
	if guard.Comment != "hasInited.guard" {
		t.Fatalf("expected the finalizer's entry to be replaced by a guard block, got comment %q", guard.Comment)
	}
	term := guard.Terminator()
	if term == nil || term.Kind != ir.EBranch {
		t.Fatalf("expected the guard block to end in a Branch, got %v", term)
	}
}

func TestMarkClassHasInitedSkipsClassWithoutFinalizer(t *testing.T) {
	b := ir.NewBuilder()
	classDef := &ir.CustomDef{Name: "Plain", MangledName: "Plain", Package: "main", Kind: ir.DeclClass}
	pkg := ir.NewPackage(b, "main", ir.AccessPublic)
	pkg.Classes = append(pkg.Classes, classDef)

	n := transform.MarkClassHasInited(b, pkg)
	if n != 0 {
		t.Fatalf("expected classes without a finalizer to be skipped, got %d marked", n)
	}
	if classDef.HasInitedField != "" {
		t.Fatal("expected HasInitedField to remain unset")
	}
}
