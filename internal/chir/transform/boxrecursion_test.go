package transform_test

import (
	"testing"

	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/transform"
)

// buildSelfReferentialStruct builds a package with one struct, Node, that
// directly contains a field of its own type — the minimal infinite
// layout the box-recursion pass must break.
func buildSelfReferentialStruct(t *testing.T) (*ir.Builder, *ir.Package, *ir.CustomDef) {
	t.Helper()
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	pkg := ir.NewPackage(b, "main", ir.AccessPublic)

	node := &ir.CustomDef{Name: "Node", MangledName: "Node", Package: "main", Kind: ir.DeclStruct}
	nodeType := b.GetCustomType(node, nil)
	node.Members = []ir.MemberVar{
		{Name: "value", Type: i64},
		{Name: "next", Type: nodeType},
	}
	pkg.Structs = append(pkg.Structs, node)
	return b, pkg, node
}

func TestBoxRecursionValueTypeBoxesSelfReferentialMember(t *testing.T) {
	b, pkg, node := buildSelfReferentialStruct(t)

	n := transform.BoxRecursionValueType(b, pkg)
	if n != 1 {
		t.Fatalf("expected 1 slot boxed, got %d", n)
	}
	next := node.Members[1].Type
	if next.Kind != ir.KindRef || next.Elem == nil || next.Elem.Kind != ir.KindBox {
		t.Fatalf("expected next field to become Box<T>&, got %+v", next)
	}
}

func TestBoxRecursionValueTypeFixesFieldReadsAndWrites(t *testing.T) {
	b, pkg, node := buildSelfReferentialStruct(t)
	nodeType := b.GetCustomType(node, nil)
	i64 := b.GetPrimitiveType(ir.KindInt64)

	f := b.NewFunc("f", "f", "main", nil, i64)
	entry := b.CreateBlock(f.Body, "entry")

	base := b.CreateAllocate(entry, nodeType, "n")
	baseLoad := b.CreateLoad(entry, base.Result())
	read := b.CreateField(entry, baseLoad.Result(), 1, node.Members[1].Type)
	sink := b.CreateAllocate(entry, nodeType, "sink")
	b.CreateStore(entry, sink.Result(), read.Result(), false)

	b.CreateStoreElementRef(entry, base.Result(), baseLoad.Result(), []int{1})

	lit := b.NewLiteral(ir.LitInt, i64)
	lit.Int = 0
	c := b.CreateConstant(entry, lit)
	b.CreateExit(entry, c.Result())
	pkg.Functions = append(pkg.Functions, f)

	n := transform.BoxRecursionValueType(b, pkg)
	if n != 1 {
		t.Fatalf("expected 1 slot boxed, got %d", n)
	}

	var sawBox, sawUnBox bool
	for _, e := range entry.Exprs {
		switch e.Kind {
		case ir.EBox:
			sawBox = true
		case ir.EUnBox:
			sawUnBox = true
		}
	}
	if !sawBox {
		t.Error("expected a Box inserted before the store into the now-boxed slot")
	}
	if !sawUnBox {
		t.Error("expected an UnBox inserted after the field read of the now-boxed slot")
	}
}

func TestBoxRecursionValueTypeNoOpOnAcyclicStruct(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	pkg := ir.NewPackage(b, "main", ir.AccessPublic)

	leaf := &ir.CustomDef{Name: "Leaf", MangledName: "Leaf", Package: "main", Kind: ir.DeclStruct}
	leaf.Members = []ir.MemberVar{{Name: "value", Type: i64}}
	pkg.Structs = append(pkg.Structs, leaf)

	n := transform.BoxRecursionValueType(b, pkg)
	if n != 0 {
		t.Fatalf("expected 0 slots boxed for an acyclic struct, got %d", n)
	}
}
