package transform

import "github.com/chir-lang/chir/internal/chir/ir"

const hasInitedFieldName = "hasInited"

// MarkClassHasInited adds a synthetic `hasInited: Bool` instance member
// to every class def — own or imported — that declares a finalizer, per
// §4.3's finalizer guard: without it, a finalizer invoked while its
// object's constructor is still unwinding (e.g. a constructor that
// throws partway through) would observe a half-initialized object.
// Every constructor sets hasInited = false on entry and reassigns it to
// true immediately before each of its Exit points; the finalizer itself
// gets a new entry block prepended that loads hasInited and only falls
// through to the finalizer's original body when it is true, skipping it
// entirely otherwise. An imported class's finalizer, if any, is already
// compiled and carries no body here — it only needs the member added so
// this package's own view of its layout stays consistent; the guard
// itself was already applied when that class's own package was
// compiled. Returns the number of (own) classes marked.
//
// Grounded on
// original_source/src/CHIR/AST2CHIR/MarkClassHasInited.cpp.
func MarkClassHasInited(b *ir.Builder, pkg *ir.Package) int {
	boolTy := b.GetPrimitiveType(ir.KindBool)

	for _, def := range pkg.ImportedClasses {
		if def.Finalizer == nil || def.HasInitedField != "" {
			continue
		}
		addHasInitedMember(def, boolTy)
	}

	count := 0
	for _, def := range pkg.Classes {
		if def.Finalizer == nil || def.HasInitedField != "" {
			continue
		}
		index := addHasInitedMember(def, boolTy)

		for _, method := range def.Methods {
			if method.IsConstructor && method.Body != nil {
				initHasInitedToFalse(b, method, index, boolTy)
				reassignHasInitedToTrue(b, method, index, boolTy)
			}
		}
		addGuardToFinalizer(b, def, index, boolTy)
		count++
	}
	return count
}

// addHasInitedMember appends the hasInited member to def and returns its
// index within def's own instance-var layout plus however many instance
// vars def's ancestor chain contributes ahead of it — matching the
// original's `GetAllInstanceVarNum() - 1`, since member paths in this IR
// are relative to the full (inherited-then-own) layout, not just def's
// own declared members.
func addHasInitedMember(def *ir.CustomDef, boolTy *ir.Type) int {
	def.Members = append(def.Members, ir.MemberVar{Name: hasInitedFieldName, Type: boolTy})
	def.HasInitedField = hasInitedFieldName
	return inheritedInstanceVarCount(def) + len(def.Members) - 1
}

// inheritedInstanceVarCount sums the instance-var counts of def's
// ancestor chain, which is where def's own member indices start once
// laid out in memory.
func inheritedInstanceVarCount(def *ir.CustomDef) int {
	total := 0
	for t := def.SuperType; t != nil && t.Decl != nil; t = t.Decl.SuperType {
		total += len(t.Decl.Members)
	}
	return total
}

// initHasInitedToFalse prepends `this.hasInited = false` to ctor's entry
// block, ahead of whatever the constructor already does.
func initHasInitedToFalse(b *ir.Builder, ctor *ir.Func, index int, boolTy *ir.Type) {
	entry := ctor.Body.Entry
	if entry == nil || len(ctor.Params) == 0 {
		return
	}
	this := ctor.Params[0]

	lit := b.NewLiteral(ir.LitBool, boolTy)
	lit.Bool = false
	falseVal := b.CreateConstant(entry, lit)
	store := b.CreateStoreElementRef(entry, this, falseVal.Result(), []int{index})

	falseVal.MoveBefore(entry.Exprs[0])
	store.MoveAfter(falseVal)
}

// reassignHasInitedToTrue rewrites every Exit in ctor's body into a
// `this.hasInited = true` store immediately followed by the original
// Exit, so the flag only ever reads true once the constructor has
// actually run to completion along that path.
func reassignHasInitedToTrue(b *ir.Builder, ctor *ir.Func, index int, boolTy *ir.Type) {
	this := ctor.Params[0]
	for _, blk := range ctor.Body.Blocks {
		term := blk.Terminator()
		if term == nil || term.Kind != ir.EExit {
			continue
		}
		var retVal ir.Value
		if len(term.Operands) > 0 {
			retVal = term.Operands[0]
		}
		term.RemoveSelfFromBlock()

		lit := b.NewLiteral(ir.LitBool, boolTy)
		lit.Bool = true
		trueVal := b.CreateConstant(blk, lit)
		b.CreateStoreElementRef(blk, this, trueVal.Result(), []int{index})
		b.CreateExit(blk, retVal)
	}
}

// addGuardToFinalizer prepends a new entry block to classDef's finalizer
// that loads hasInited and branches: true falls through into the
// finalizer's original body, false jumps straight to a trivial exit
// block that skips it. An imported (already-compiled) finalizer has no
// body to guard here and is left untouched, matching the original's
// "may be an ImportedFunc during incremental compilation" note.
func addGuardToFinalizer(b *ir.Builder, classDef *ir.CustomDef, index int, boolTy *ir.Type) {
	finalizer := classDef.Finalizer
	if finalizer == nil || finalizer.Body == nil || len(finalizer.Params) == 0 {
		return
	}
	originalEntry := finalizer.Body.Entry
	this := finalizer.Params[0]

	guard := b.CreateBlock(finalizer.Body, "hasInited.guard")
	ref := b.CreateGetElementRef(guard, this, []int{index}, boolTy, "hasInited")
	load := b.CreateLoad(guard, ref.Result())

	skip := b.CreateBlock(finalizer.Body, "hasInited.skip")
	b.CreateExit(skip, nil)

	b.CreateBranch(guard, load.Result(), originalEntry, skip)

	finalizer.Body.Entry = guard
}
