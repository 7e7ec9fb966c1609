package transform

import (
	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/visitor"
)

// boxedSlot records one member/payload field this pass rewrote from a
// plain value type to Box<T>&, keyed by the interned container type (the
// struct/enum holding the field) and the interned original field type —
// both pointer-comparable since ir.Type is interned, so no index-path
// bookkeeping is needed to re-find the same slot later from an
// expression that reads or writes it.
type boxedSlot struct {
	container *ir.Type
	origType  *ir.Type
	boxedType *ir.Type // Box<T>&
}

// BoxRecursionValueType finds every struct/enum def whose transitive,
// unboxed member/payload types cycle back to the def itself — a layout
// that would be infinite — and rewrites each offending member or enum-
// constructor payload field from T to Box<T>&. It then walks every
// function in pkg fixing up the now-mismatched accesses: a Box is
// inserted before each StoreElementRef/Tuple-element write into a boxed
// slot, and an UnBox is inserted after each read (the GetElementRef and
// Field projections both collapse to "yield the boxed value" once their
// source is boxed, so neither needs a distinct extra Load stage), per
// §4.8. Returns the number of slots boxed.
func BoxRecursionValueType(b *ir.Builder, pkg *ir.Package) int {
	slots := boxOffendingMembers(b, pkg)
	if len(slots) == 0 {
		return 0
	}
	for _, fn := range allFuncsOf(pkg) {
		fixBoxedAccesses(b, fn, slots)
	}
	return len(slots)
}

func allFuncsOf(pkg *ir.Package) []*ir.Func {
	var out []*ir.Func
	out = append(out, pkg.Functions...)
	for _, def := range pkg.AllCustomDefs() {
		out = append(out, def.Methods...)
	}
	return out
}

// plainValueTarget reports the struct/enum CustomDef t directly names, or
// nil if t isn't a plain (unboxed, unreferenced) struct/enum custom type
// — i.e. exactly the shape that would make a cycle through it an
// infinite layout.
func plainValueTarget(t *ir.Type) *ir.CustomDef {
	if t == nil || t.Kind != ir.KindCustom || t.Decl == nil {
		return nil
	}
	if t.Decl.Kind != ir.DeclStruct && t.Decl.Kind != ir.DeclEnum {
		return nil
	}
	return t.Decl
}

// boxOffendingMembers runs a DFS over each struct/enum def's direct,
// unboxed member/payload types, following custom-type edges. A back-edge
// to a def currently on the DFS stack means the member/field that
// produced the edge closes an infinite cycle; that field is rewritten
// from T to Box<T>&.
func boxOffendingMembers(b *ir.Builder, pkg *ir.Package) []*boxedSlot {
	var slots []*boxedSlot
	visited := make(map[*ir.CustomDef]bool)
	onStack := make(map[*ir.CustomDef]bool)

	defType := func(d *ir.CustomDef) *ir.Type {
		return b.GetCustomType(d, nil)
	}

	var visit func(d *ir.CustomDef)
	visit = func(d *ir.CustomDef) {
		if visited[d] {
			return
		}
		visited[d] = true
		onStack[d] = true

		for i := range d.Members {
			m := &d.Members[i]
			target := plainValueTarget(m.Type)
			if target == nil {
				continue
			}
			if onStack[target] {
				boxed := b.GetRefType(b.GetBoxType(m.Type), 1)
				slots = append(slots, &boxedSlot{container: defType(d), origType: m.Type, boxedType: boxed})
				m.Type = boxed
				continue
			}
			visit(target)
		}

		for ci := range d.Ctors {
			c := &d.Ctors[ci]
			if c.FuncType == nil || len(c.FuncType.Elems) == 0 {
				continue
			}
			newElems := append([]*ir.Type(nil), c.FuncType.Elems...)
			changed := false
			for fi, fieldType := range newElems {
				target := plainValueTarget(fieldType)
				if target == nil {
					continue
				}
				if onStack[target] {
					boxed := b.GetRefType(b.GetBoxType(fieldType), 1)
					slots = append(slots, &boxedSlot{container: defType(d), origType: fieldType, boxedType: boxed})
					newElems[fi] = boxed
					changed = true
					continue
				}
				visit(target)
			}
			if changed {
				c.FuncType = b.GetFuncType(newElems, c.FuncType.Ret, c.FuncType.IsC, c.FuncType.HasVarargs)
			}
		}

		onStack[d] = false
	}

	for _, d := range pkg.AllCustomDefs() {
		if d.Kind == ir.DeclStruct || d.Kind == ir.DeclEnum {
			visit(d)
		}
	}
	return slots
}

func findSlot(slots []*boxedSlot, container, fieldType *ir.Type) *boxedSlot {
	for _, s := range slots {
		if s.container == container && s.origType == fieldType {
			return s
		}
	}
	return nil
}

// fixBoxedAccesses patches every expression in fn that reads or writes a
// slot now-boxed by boxOffendingMembers.
func fixBoxedAccesses(b *ir.Builder, fn *ir.Func, slots []*boxedSlot) {
	if fn.Body == nil {
		return
	}
	var reads, writes, tuples, casts []*ir.Expr
	visitor.WalkGroup(fn.Body, visitor.Hooks{
		PreExpr: func(e *ir.Expr) visitor.Action {
			switch e.Kind {
			case ir.EGetElementRef, ir.EField:
				reads = append(reads, e)
			case ir.EStoreElementRef:
				writes = append(writes, e)
			case ir.ETuple:
				tuples = append(tuples, e)
			case ir.ETypeCast:
				casts = append(casts, e)
			}
			return visitor.Continue
		},
	})

	for _, e := range reads {
		fixBoxedRead(b, e, slots)
	}
	for _, e := range writes {
		fixBoxedWrite(b, e, slots)
	}
	for _, e := range tuples {
		fixBoxedTupleElems(b, e, slots)
	}
	for _, e := range casts {
		fixBoxedCastTarget(b, e, slots)
	}
}

func containerOf(v ir.Value) *ir.Type {
	return ir.StripAllRefs(v.Type())
}

// spliceReplace positions fresh (already appended to the end of its
// block by its Create* call) immediately before old, redirects every use
// of old's result to fresh's result, and unlinks old. A value's type is
// fixed at construction (§4.4), so correcting an existing expression's
// declared type means rebuilding it and splicing the rebuild in, the
// same way every other graph-shape change in this package works.
func spliceReplace(old, fresh *ir.Expr) {
	fresh.MoveBefore(old)
	if old.Result() != nil && fresh.Result() != nil {
		for user := range old.Result().Users() {
			user.ReplaceOperand(old.Result(), fresh.Result())
		}
	}
	old.RemoveSelfFromBlock()
}

// fixBoxedRead rebuilds a GetElementRef/Field whose projected field was
// boxed so its declared result type is the boxed field type, then
// appends an UnBox and redirects the original users there.
func fixBoxedRead(b *ir.Builder, e *ir.Expr, slots []*boxedSlot) {
	if len(e.Operands) == 0 || len(e.Result().Users()) == 0 {
		return
	}
	base := e.Operands[0]
	container := containerOf(base)

	var fieldType *ir.Type
	switch e.Kind {
	case ir.EGetElementRef:
		fieldType = ir.StripAllRefs(e.ResultType)
	case ir.EField:
		fieldType = e.ResultType
	}
	slot := findSlot(slots, container, fieldType)
	if slot == nil {
		return
	}

	var fresh *ir.Expr
	switch e.Kind {
	case ir.EGetElementRef:
		// CreateGetElementRef always ref-wraps its elemType once; passing
		// the unwrapped Box<T> here yields exactly slot.boxedType
		// (Box<T>&) as the result, matching Field's projection below
		// instead of stacking a second ref layer on top of it.
		fresh = b.CreateGetElementRef(e.Block(), base, e.Indices, slot.boxedType.Elem, e.Symbol)
	case ir.EField:
		fresh = b.CreateField(e.Block(), base, e.Indices[0], slot.boxedType)
	}
	spliceReplace(e, fresh)

	unbox := b.CreateUnBox(fresh.Block(), fresh.Result(), slot.origType)
	unbox.MoveAfter(fresh)
	for user := range fresh.Result().Users() {
		if user == unbox {
			continue
		}
		user.ReplaceOperand(fresh.Result(), unbox.Result())
	}
}

// fixBoxedWrite boxes val before it is stored into a now-boxed slot.
func fixBoxedWrite(b *ir.Builder, e *ir.Expr, slots []*boxedSlot) {
	if len(e.Operands) < 2 {
		return
	}
	base, val := e.Operands[0], e.Operands[1]
	container := containerOf(base)
	slot := findSlot(slots, container, val.Type())
	if slot == nil {
		return
	}
	box := b.CreateBox(e.Block(), val)
	box.MoveBefore(e)
	e.ReplaceOperand(val, box.Result())
}

// fixBoxedTupleElems boxes each Tuple element (enum-ctor payload
// construction, per the Tuple-on-enum shape) whose static type matches a
// now-boxed payload field of the tuple's enum container.
func fixBoxedTupleElems(b *ir.Builder, e *ir.Expr, slots []*boxedSlot) {
	container := ir.StripAllRefs(e.ResultType)
	if container == nil || container.Kind != ir.KindCustom {
		return
	}
	for _, elem := range append([]ir.Value(nil), e.Operands...) {
		slot := findSlot(slots, container, elem.Type())
		if slot == nil {
			continue
		}
		box := b.CreateBox(e.Block(), elem)
		box.MoveBefore(e)
		e.ReplaceOperand(elem, box.Result())
	}
}

// fixBoxedCastTarget rebuilds a TypeCast whose target tuple type names a
// boxed enum-payload field so the rebuilt cast's target uses the boxed
// element type instead.
func fixBoxedCastTarget(b *ir.Builder, e *ir.Expr, slots []*boxedSlot) {
	if e.TargetType == nil || e.TargetType.Kind != ir.KindTuple || len(e.Operands) == 0 {
		return
	}
	container := containerOf(e.Operands[0])
	newElems := append([]*ir.Type(nil), e.TargetType.Elems...)
	changed := false
	for i, elemType := range newElems {
		if slot := findSlot(slots, container, elemType); slot != nil {
			newElems[i] = slot.boxedType
			changed = true
		}
	}
	if !changed {
		return
	}
	fresh := b.CreateTypeCast(e.Block(), e.Operands[0], b.GetTupleType(newElems...))
	spliceReplace(e, fresh)
}
