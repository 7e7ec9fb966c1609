package ir

// This file holds the builder's Create<Kind> factory methods (§4.4):
// every expression kind has a constructor taking its operands and a
// parent block; each constructor appends the new expression to that
// block, registers its result as a user of each operand, and (for
// terminators) wires the successor/predecessor edges.

func (b *Builder) newResult(typ *Type) *LocalVar {
	return &LocalVar{valueBase: valueBase{typ: typ, ident: b.NewLocalIdent()}}
}

// newExpr allocates the common Expr shell; callers fill in kind-specific
// fields before calling finish.
func (b *Builder) newExpr(kind ExprKind, resultType *Type, operands ...Value) *Expr {
	e := &Expr{id: b.newExprID(), Kind: kind, ResultType: resultType, Operands: operands}
	if resultType != nil {
		e.result = b.newResult(resultType)
		e.result.DefiningExpr = e
	}
	return e
}

// finish appends e to parent and registers it as a user of its operands.
// Nested block groups of structured control / lambda are linked by the
// constructor itself, which sets each group's OwnerExpr back-pointer —
// nested groups have no separate "user" set.
func finish(parent *Block, e *Expr) *Expr {
	for _, op := range e.Operands {
		op.addUser(e)
	}
	parent.append(e)
	return e
}

// --- Memory --------------------------------------------------------------

// CreateAllocate allocates storage for a value of allocatedType,
// returning a reference to it. debugName is carried for maybe-init
// bit-layout naming (§4.7) and has no other semantic effect.
func (b *Builder) CreateAllocate(parent *Block, allocatedType *Type, debugName string) *Expr {
	e := b.newExpr(EAllocate, b.refOf(allocatedType))
	e.TargetType = allocatedType
	e.Symbol = debugName
	return finish(parent, e)
}

func (b *Builder) refOf(t *Type) *Type { return b.GetRefType(t, 1) }

// CreateLoad reads through a reference.
func (b *Builder) CreateLoad(parent *Block, ref Value) *Expr {
	e := b.newExpr(ELoad, StripAllRefs(ref.Type()), ref)
	return finish(parent, e)
}

// CreateStore writes val through ref. Stores produce no result.
func (b *Builder) CreateStore(parent *Block, ref, val Value, isLet bool) *Expr {
	e := b.newExpr(EStore, nil, ref, val)
	e.IsLet = isLet
	return finish(parent, e)
}

// CreateGetElementRef computes a reference to a nested field/element of
// base, following indices (tuple/struct field / enum payload / raw-array
// element path).
func (b *Builder) CreateGetElementRef(parent *Block, base Value, indices []int, elemType *Type, debugName string) *Expr {
	e := b.newExpr(EGetElementRef, b.refOf(elemType), base)
	e.Indices = append([]int(nil), indices...)
	e.Symbol = debugName
	return finish(parent, e)
}

// CreateStoreElementRef stores val into the indices-path element of
// base, without materializing an intermediate reference.
func (b *Builder) CreateStoreElementRef(parent *Block, base, val Value, indices []int) *Expr {
	e := b.newExpr(EStoreElementRef, nil, base, val)
	e.Indices = append([]int(nil), indices...)
	return finish(parent, e)
}

// --- Unary / binary --------------------------------------------------------

func (b *Builder) CreateUnary(parent *Block, op UnaryOp, operand Value, resultType *Type) *Expr {
	e := b.newExpr(EUnary, resultType, operand)
	e.UnaryOp = op
	return finish(parent, e)
}

func (b *Builder) CreateBinary(parent *Block, op BinaryOp, lhs, rhs Value, resultType *Type) *Expr {
	e := b.newExpr(EBinary, resultType, lhs, rhs)
	e.BinaryOp = op
	return finish(parent, e)
}

// --- Other -----------------------------------------------------------------

// CreateConstant re-materializes a LiteralValue as an expression result
// (used where a constant must appear as an SSA value with its own use
// set, e.g. after unit unification).
func (b *Builder) CreateConstant(parent *Block, lit *LiteralValue) *Expr {
	e := b.newExpr(EConstant, lit.Type(), lit)
	return finish(parent, e)
}

// CreateTuple builds a tuple value (also used for the "Tuple on enum"
// shape: operand 0 is the constant selector, per §9 Enum layout).
func (b *Builder) CreateTuple(parent *Block, elems []Value, resultType *Type) *Expr {
	e := b.newExpr(ETuple, resultType, elems...)
	return finish(parent, e)
}

// CreateField projects the index-th component of base (struct field,
// tuple element, or enum payload component at index >= 1).
func (b *Builder) CreateField(parent *Block, base Value, index int, resultType *Type) *Expr {
	e := b.newExpr(EField, resultType, base)
	e.Indices = []int{index}
	return finish(parent, e)
}

// CreateApply calls callee with args (direct, non-virtual call).
func (b *Builder) CreateApply(parent *Block, callee Value, args []Value, resultType *Type) *Expr {
	ops := append([]Value{callee}, args...)
	e := b.newExpr(EApply, resultType, ops...)
	e.Callee = callee
	return finish(parent, e)
}

// CreateApplyWithException is the with-exception twin of CreateApply:
// control continues at ok on normal return, at err on a propagating
// exception.
func (b *Builder) CreateApplyWithException(parent *Block, callee Value, args []Value, resultType *Type, ok, err *Block) *Expr {
	e := b.CreateApply(parent, callee, args, resultType)
	b.attachException(e, ok, err)
	return e
}

func (b *Builder) attachException(e *Expr, ok, err *Block) {
	e.okBlock, e.errBlock = ok, err
	addEdge(e.block, ok)
	addEdge(e.block, err)
}

// CreateInvoke performs virtual dispatch on receiver for methodName with
// the given instantiated signature; dispatch target is resolved at
// devirtualization/codegen time via the custom def's v-table (§4.3).
func (b *Builder) CreateInvoke(parent *Block, receiver Value, methodName string, args []Value, resultType *Type) *Expr {
	ops := append([]Value{receiver}, args...)
	e := b.newExpr(EInvoke, resultType, ops...)
	e.MethodName = methodName
	return finish(parent, e)
}

// CreateInvokeStatic dispatches off an explicit RTTI operand (produced
// by GetRTTI/GetRTTIStatic) rather than a receiver's runtime type.
func (b *Builder) CreateInvokeStatic(parent *Block, rtti Value, methodName string, args []Value, resultType *Type) *Expr {
	ops := append([]Value{rtti}, args...)
	e := b.newExpr(EInvokeStatic, resultType, ops...)
	e.MethodName = methodName
	return finish(parent, e)
}

// CreateTypeCast casts operand to targetType.
func (b *Builder) CreateTypeCast(parent *Block, operand Value, targetType *Type) *Expr {
	e := b.newExpr(ETypeCast, targetType, operand)
	e.TargetType = targetType
	return finish(parent, e)
}

// CreateInstanceOf tests whether operand's runtime type is-a targetType.
func (b *Builder) CreateInstanceOf(parent *Block, operand Value, targetType *Type, boolType *Type) *Expr {
	e := b.newExpr(EInstanceOf, boolType, operand)
	e.TargetType = targetType
	return finish(parent, e)
}

// CreateBox wraps a value-type operand in Box<T>&, as introduced by the
// box-recursion-value-type pass (§4.8).
func (b *Builder) CreateBox(parent *Block, operand Value) *Expr {
	boxed := b.GetBoxType(operand.Type())
	e := b.newExpr(EBox, b.refOf(boxed), operand)
	e.TargetType = boxed
	return finish(parent, e)
}

// CreateUnBox unwraps a Box<T>& operand back to T.
func (b *Builder) CreateUnBox(parent *Block, operand Value, innerType *Type) *Expr {
	e := b.newExpr(EUnBox, innerType, operand)
	e.TargetType = innerType
	return finish(parent, e)
}

// CreateUnBoxToRef unwraps a Box<T>& operand to T& without loading.
func (b *Builder) CreateUnBoxToRef(parent *Block, operand Value, innerType *Type) *Expr {
	e := b.newExpr(EUnBoxToRef, b.refOf(innerType), operand)
	e.TargetType = innerType
	return finish(parent, e)
}

// CreateIntrinsic invokes a builtin runtime intrinsic by name (e.g.
// ARRAY_GET_UNCHECKED, OBJECT_ZERO_VALUE).
func (b *Builder) CreateIntrinsic(parent *Block, name string, args []Value, resultType *Type) *Expr {
	e := b.newExpr(EIntrinsic, resultType, args...)
	e.Symbol = name
	return finish(parent, e)
}

// CreateGetInstantiateValue materializes a type-argument-dependent
// runtime value (e.g. a generic's RTTI witness). Legal only before the
// OPT phase (§9 Open Questions); the checker rejects its presence at
// OPT.
func (b *Builder) CreateGetInstantiateValue(parent *Block, typeArgs []*Type, resultType *Type) *Expr {
	e := b.newExpr(EGetInstantiateValue, resultType)
	e.TargetType = resultType
	_ = typeArgs // carried on ResultType's TypeArgs through resultType's Decl binding
	return finish(parent, e)
}

// CreateLambda builds an anonymous function value with a fresh body
// block group and no formal parameter list; capturedVars are the
// outer-scope values it reads.
func (b *Builder) CreateLambda(parent *Block, capturedVars []Value, resultType *Type) (*Expr, *BlockGroup) {
	e := b.newExpr(ELambda, resultType, capturedVars...)
	body := &BlockGroup{OwnerFunc: parent.group.OwnerFunc, OwnerExpr: e}
	e.nested = []*BlockGroup{body}
	finish(parent, e)
	return e, body
}

// CreateDebug attaches a source-level name/position annotation to
// operand; used for rewrite-site bookkeeping and has no runtime value.
func (b *Builder) CreateDebug(parent *Block, operand Value, name string) *Expr {
	e := b.newExpr(EDebug, nil, operand)
	e.Symbol = name
	return finish(parent, e)
}

// CreateSpawn starts a concurrent task running closure (a Future or a
// bare closure, post redundant-future-removal).
func (b *Builder) CreateSpawn(parent *Block, closure Value, resultType *Type) *Expr {
	e := b.newExpr(ESpawn, resultType, closure)
	return finish(parent, e)
}

// CreateRawArrayAllocate allocates a RawArray<T> of the given length.
func (b *Builder) CreateRawArrayAllocate(parent *Block, elemType *Type, length Value) *Expr {
	arrType := b.GetRawArrayType(elemType)
	e := b.newExpr(ERawArrayAllocate, arrType, length)
	e.TargetType = arrType
	return finish(parent, e)
}

func (b *Builder) CreateRawArrayLoad(parent *Block, arr, index Value, elemType *Type) *Expr {
	e := b.newExpr(ERawArrayLoad, elemType, arr, index)
	return finish(parent, e)
}

func (b *Builder) CreateRawArrayStore(parent *Block, arr, index, val Value) *Expr {
	e := b.newExpr(ERawArrayStore, nil, arr, index, val)
	return finish(parent, e)
}

// CreateVArrayBuild materializes a fixed-size VArray<T,N> from elems.
func (b *Builder) CreateVArrayBuild(parent *Block, elems []Value, resultType *Type) *Expr {
	e := b.newExpr(EVArrayBuild, resultType, elems...)
	return finish(parent, e)
}

// CreateGetRTTI / CreateGetRTTIStatic produce the dispatch-root operand
// consumed by InvokeStatic.
func (b *Builder) CreateGetRTTI(parent *Block, operand Value, rttiType *Type) *Expr {
	e := b.newExpr(EGetRTTI, rttiType, operand)
	return finish(parent, e)
}

func (b *Builder) CreateGetRTTIStatic(parent *Block, targetType *Type, rttiType *Type) *Expr {
	e := b.newExpr(EGetRTTIStatic, rttiType)
	e.TargetType = targetType
	return finish(parent, e)
}

// --- Terminators -------------------------------------------------------

func (b *Builder) createGoToRaw(target *Block) *Expr {
	e := &Expr{id: b.newExprID(), Kind: EGoTo, successors: []*Block{target}}
	return e
}

// CreateGoTo unconditionally transfers control to target.
func (b *Builder) CreateGoTo(parent *Block, target *Block) *Expr {
	e := b.createGoToRaw(target)
	finish(parent, e)
	addEdge(parent, target)
	return e
}

// CreateBranch transfers control to trueBlock if cond is true, else
// falseBlock.
func (b *Builder) CreateBranch(parent *Block, cond Value, trueBlock, falseBlock *Block) *Expr {
	e := b.newExpr(EBranch, nil, cond)
	e.successors = []*Block{trueBlock, falseBlock}
	finish(parent, e)
	addEdge(parent, trueBlock)
	addEdge(parent, falseBlock)
	return e
}

// CreateMultiBranch dispatches selector to one of targets (parallel to
// cases) or to def when no case matches.
func (b *Builder) CreateMultiBranch(parent *Block, selector Value, cases []Value, targets []*Block, def *Block) *Expr {
	ops := append([]Value{selector}, cases...)
	e := b.newExpr(EMultiBranch, nil, ops...)
	e.successors = append(append([]*Block(nil), targets...), def)
	finish(parent, e)
	for _, t := range e.successors {
		addEdge(parent, t)
	}
	return e
}

// CreateExit returns from the enclosing function, optionally with a
// value.
func (b *Builder) CreateExit(parent *Block, retVal Value) *Expr {
	var ops []Value
	if retVal != nil {
		ops = []Value{retVal}
	}
	e := b.newExpr(EExit, nil, ops...)
	return finish(parent, e)
}

// CreateRaiseException raises exc, unwinding to the nearest enclosing
// landing pad (resolved via block predecessor/catch metadata, not an
// explicit successor edge).
func (b *Builder) CreateRaiseException(parent *Block, exc Value) *Expr {
	e := b.newExpr(ERaiseException, nil, exc)
	return finish(parent, e)
}

// --- Structured control flow (pre-flatten only) -------------------------

// CreateIf builds a structured If with fresh then/else block groups.
func (b *Builder) CreateIf(parent *Block, cond Value, resultType *Type) (*Expr, *BlockGroup, *BlockGroup) {
	e := b.newExpr(EIf, resultType, cond)
	thenGroup := &BlockGroup{OwnerFunc: parent.group.OwnerFunc, OwnerExpr: e}
	elseGroup := &BlockGroup{OwnerFunc: parent.group.OwnerFunc, OwnerExpr: e}
	e.nested = []*BlockGroup{thenGroup, elseGroup}
	finish(parent, e)
	return e, thenGroup, elseGroup
}

// CreateLoop builds a structured Loop with a fresh body block group.
func (b *Builder) CreateLoop(parent *Block) (*Expr, *BlockGroup) {
	e := b.newExpr(ELoop, nil)
	body := &BlockGroup{OwnerFunc: parent.group.OwnerFunc, OwnerExpr: e}
	e.nested = []*BlockGroup{body}
	finish(parent, e)
	return e, body
}

// ForInKindOf reports whether kind is one of the structured ForIn kinds
// (Range, Iter, ClosedRange) that FlattenForIn lowers (§4.8).
func ForInKindOf(kind ExprKind) bool {
	return kind == EForInRange || kind == EForInIter || kind == EForInClosedRange
}

// CreateForIn builds a structured ForIn{Range,Iter,ClosedRange}
// expression with its latch/cond/body nested groups (§3.3, §4.8).
func (b *Builder) CreateForIn(parent *Block, kind ExprKind, iterable Value) (forIn *Expr, latch, cond, body *BlockGroup) {
	e := b.newExpr(kind, nil, iterable)
	lg := &BlockGroup{OwnerFunc: parent.group.OwnerFunc, OwnerExpr: e}
	cg := &BlockGroup{OwnerFunc: parent.group.OwnerFunc, OwnerExpr: e}
	bg := &BlockGroup{OwnerFunc: parent.group.OwnerFunc, OwnerExpr: e}
	e.nested = []*BlockGroup{lg, cg, bg}
	finish(parent, e)
	return e, lg, cg, bg
}
