package transform_test

import (
	"testing"

	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/transform"
)

func TestGetRefToArrayElementRewritesFieldOnlyConsumer(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)

	point := &ir.CustomDef{Name: "Point", MangledName: "Point", Package: "main", Kind: ir.DeclStruct}
	point.Members = []ir.MemberVar{{Name: "x", Type: i64}, {Name: "y", Type: i64}}
	pointType := b.GetCustomType(point, nil)
	arrType := b.GetRawArrayType(pointType)

	f := b.NewFunc("f", "f", "main", nil, i64)
	entry := b.CreateBlock(f.Body, "entry")

	arr := b.NewImportedValue("points", "main", arrType)
	idxLit := b.NewLiteral(ir.LitInt, i64)
	idxLit.Int = 0
	idx := b.CreateConstant(entry, idxLit)

	get := b.CreateIntrinsic(entry, "ARRAY_GET_UNCHECKED", []ir.Value{arr, idx.Result()}, pointType)
	field := b.CreateField(entry, get.Result(), 0, i64)
	b.CreateExit(entry, field.Result())

	n := transform.GetRefToArrayElement(b, f)
	if n != 1 {
		t.Fatalf("expected 1 rewrite, got %d", n)
	}

	var sawOldIntrinsic, sawNewIntrinsic, sawGetElemRef, sawLoad, sawField bool
	for _, e := range entry.Exprs {
		switch {
		case e.Kind == ir.EIntrinsic && e.Symbol == "ARRAY_GET_UNCHECKED":
			sawOldIntrinsic = true
		case e.Kind == ir.EIntrinsic && e.Symbol == "ARRAY_GET_REF_UNCHECKED":
			sawNewIntrinsic = true
		case e.Kind == ir.EGetElementRef:
			sawGetElemRef = true
		case e.Kind == ir.ELoad:
			sawLoad = true
		case e.Kind == ir.EField:
			sawField = true
		}
	}
	if sawOldIntrinsic {
		t.Error("expected the old ARRAY_GET_UNCHECKED intrinsic to be removed")
	}
	if !sawNewIntrinsic {
		t.Error("expected an ARRAY_GET_REF_UNCHECKED intrinsic to be inserted")
	}
	if !sawGetElemRef || !sawLoad {
		t.Error("expected a GetElementRef+Load pair to replace the Field projection")
	}
	if sawField {
		t.Error("expected the original Field expression to be removed")
	}
}

func TestGetRefToArrayElementSkipsNonFieldConsumer(t *testing.T) {
	b := ir.NewBuilder()
	i64 := b.GetPrimitiveType(ir.KindInt64)
	arrType := b.GetRawArrayType(i64)

	f := b.NewFunc("f", "f", "main", nil, i64)
	entry := b.CreateBlock(f.Body, "entry")

	arr := b.NewImportedValue("xs", "main", arrType)
	idxLit := b.NewLiteral(ir.LitInt, i64)
	idxLit.Int = 0
	idx := b.CreateConstant(entry, idxLit)

	get := b.CreateIntrinsic(entry, "ARRAY_GET_UNCHECKED", []ir.Value{arr, idx.Result()}, i64)
	b.CreateExit(entry, get.Result())

	n := transform.GetRefToArrayElement(b, f)
	if n != 0 {
		t.Fatalf("expected 0 rewrites when the consumer isn't a Field, got %d", n)
	}
}
