package transform

import (
	"github.com/chir-lang/chir/internal/chir/analysis"
	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/visitor"
	"github.com/chir-lang/chir/internal/chirconfig"
)

const (
	inlineBaseThreshold = 20 // INIT_INLINE_THRESHOLD
	inlineFanOutCap     = 20 // INLINED_COUNT_THRESHOLD, per enclosing function
	inlineSearchCap     = inlineBaseThreshold * 3
)

// inlineListEntry names a (method, receiver-type) pair the way the
// original's FuncInfo table does; typeName == "" matches a free
// function regardless of package.
type inlineListEntry struct{ name, typeName string }

// inlineWhiteList is always eligible regardless of size: hot standard
// library accessors and mutators whose call overhead dominates their
// body.
var inlineWhiteList = []inlineListEntry{
	{"get", "Array"}, {"set", "Array"}, {"[]", "Array"}, {"copyTo", "Array"},
	{"utf8Size", ""}, {"[]", "String"},
	{"init", "ArrayList"}, {"get", "ArrayList"}, {"set", "ArrayList"},
	{"append", "ArrayList"}, {"[]", "ArrayList"}, {"checkRange", "ArrayList"}, {"remove", "ArrayList"},
	{"==", "HashSet"}, {"!=", "HashSet"},
}

// inlineBlackList is never eligible, regardless of size: Future.init
// must survive for redundant-future-removal to find it, and
// arrayInitByFunction must survive for the array-lambda optimisation.
var inlineBlackList = []inlineListEntry{
	{"init", "Future"},
	{"arrayInitByFunction", ""},
	{"callNativeFunc", ""},
}

func matchesInlineList(list []inlineListEntry, fn *ir.Func) bool {
	for _, entry := range list {
		if entry.name != fn.Name {
			continue
		}
		if entry.typeName == "" {
			return true
		}
		if fn.ParentDef != nil && fn.ParentDef.Name == entry.typeName {
			return true
		}
	}
	return false
}

// inlineContext is the state threaded across one FunctionInline run over
// a whole package: call-site counts (for the once-called threshold
// bump), memoized callee sizes, and a per-caller inlined-count used to
// enforce the fan-out cap.
type inlineContext struct {
	b            *ir.Builder
	callSites    map[*ir.Func]int
	funcSize     map[*ir.Func]int
	inlinedCount map[*ir.Func]int
	belowOs      bool
}

// FunctionInline inlines eligible Apply call sites throughout pkg, per
// §4.8/§5. Functions are visited in the post-order SCC list from the
// package's call graph, so a callee has already had its own eligible
// calls inlined before it is itself cloned into its callers — matching
// the "post-order SCC list" ordering §5 requires for interprocedural
// passes. Returns the total number of call sites inlined.
func FunctionInline(b *ir.Builder, pkg *ir.Package, devirt analysis.Devirtualizer, level chirconfig.OptLevel) int {
	fns := allFuncsOf(pkg)
	graph := analysis.Build(fns, devirt)
	order := graph.SCC()

	ctx := &inlineContext{
		b:            b,
		callSites:    countCallSites(fns),
		funcSize:     make(map[*ir.Func]int),
		inlinedCount: make(map[*ir.Func]int),
		belowOs:      level != chirconfig.Os,
	}

	total := 0
	for _, fn := range order {
		total += inlineFuncBody(ctx, fn)
	}
	return total
}

func countCallSites(fns []*ir.Func) map[*ir.Func]int {
	counts := make(map[*ir.Func]int)
	for _, fn := range fns {
		if fn.Body == nil {
			continue
		}
		visitor.WalkGroup(fn.Body, visitor.Hooks{
			PreExpr: func(e *ir.Expr) visitor.Action {
				if e.Kind == ir.EApply {
					if callee, ok := e.Callee.(*ir.Func); ok {
						counts[callee]++
					}
				}
				return visitor.Continue
			},
		})
	}
	return counts
}

// inlineFuncBody collects caller's Apply sites once (collect-then-mutate,
// as every other pass in this package does) and attempts to inline each
// in turn.
func inlineFuncBody(ctx *inlineContext, caller *ir.Func) int {
	if caller.Body == nil {
		return 0
	}
	var applies []*ir.Expr
	visitor.WalkGroup(caller.Body, visitor.Hooks{
		PreExpr: func(e *ir.Expr) visitor.Action {
			if e.Kind == ir.EApply {
				applies = append(applies, e)
			}
			return visitor.Continue
		},
	})

	count := 0
	for _, apply := range applies {
		callee, ok := eligibleForInline(ctx, caller, apply)
		if !ok {
			continue
		}
		if inlineApply(ctx, apply, callee) {
			ctx.inlinedCount[caller]++
			count++
		}
	}
	return count
}

// eligibleForInline implements §4.8's scoring: the callee must have a
// body and not be excluded outright (self-recursion, no-inline, a C
// function, the package-init, a macro, or a call site whose block
// terminates in RaiseException, which rarely executes so the code
// growth isn't worth it); the black list always loses, the white list
// always wins; otherwise the callee's size must fit under a threshold
// that scales with how often it's called and what it takes as a
// parameter, and the caller's fan-out cap must not already be spent.
func eligibleForInline(ctx *inlineContext, caller *ir.Func, apply *ir.Expr) (*ir.Func, bool) {
	callee, ok := apply.Callee.(*ir.Func)
	if !ok || callee.Body == nil {
		return nil, false
	}
	if callee == caller {
		return nil, false
	}
	if callee.NoInline || callee.IsCFunc || callee.IsPackageInit || callee.IsMacro {
		return nil, false
	}
	if term := apply.Block().Terminator(); term != nil && term.Kind == ir.ERaiseException {
		return nil, false
	}
	if matchesInlineList(inlineBlackList, callee) {
		return nil, false
	}
	if matchesInlineList(inlineWhiteList, callee) {
		return callee, true
	}
	if ctx.inlinedCount[caller] >= inlineFanOutCap {
		return nil, false
	}
	threshold := calculateInlineThreshold(ctx.callSites[callee] == 1, callee.IsOperator, hasFuncTypedParam(callee), ctx.belowOs)
	if sizeOfFunc(ctx, callee) > threshold {
		return nil, false
	}
	return callee, true
}

func hasFuncTypedParam(fn *ir.Func) bool {
	for _, p := range fn.Params {
		if t := p.Type(); t != nil && t.Kind == ir.KindFunc {
			return true
		}
	}
	return false
}

// calculateInlineThreshold mirrors the original's override chain: a
// once-called callee gets a 20% bump; below Os, an operator-overloaded
// callee's threshold is reset to base+20% (the same number, so it only
// matters when once-called is false) and a callee with a function-typed
// parameter overrides everything to double the base, since such callees
// tend to be small higher-order wrappers worth unconditionally
// flattening — Os (optimize-for-size) skips both of those bumps, since
// it only wants the once-called case inlined.
func calculateInlineThreshold(calledOnce, isOperator, hasFuncArg, belowOs bool) int {
	threshold := inlineBaseThreshold
	if calledOnce {
		threshold += threshold / 5
	}
	if belowOs {
		if isOperator {
			threshold = inlineBaseThreshold + inlineBaseThreshold/5
		}
		if hasFuncArg {
			threshold = inlineBaseThreshold * 2
		}
	}
	return threshold
}

// sizeOfFunc counts the expressions in callee's body blocks (one per
// expression; blocks of nested groups such as a Lambda's body are not
// counted, and such callees are later rejected by inlineApply's
// cloneability check), capped at inlineSearchCap for efficiency, and memoizes the
// result since the same callee may be scored at many call sites.
func sizeOfFunc(ctx *inlineContext, fn *ir.Func) int {
	if size, ok := ctx.funcSize[fn]; ok {
		return size
	}
	size := 0
	for _, blk := range fn.Body.Blocks {
		size += len(blk.Exprs)
		if size >= inlineSearchCap {
			break
		}
	}
	ctx.funcSize[fn] = size
	return size
}

// inlineApply performs the actual splice for one Apply site, per §4.8's
// mechanics (1)-(4): clone callee's body into caller, substitute
// parameters with (possibly cast/boxed) arguments, splice the clone in
// at the call site, and route the result through a return slot. Returns
// false, leaving apply untouched, when callee's body uses a construct
// this pass does not know how to clone (a nested Lambda or pre-flatten
// structured control, or a GetInstantiateValue witness) — those callees
// simply never inline.
func inlineApply(ctx *inlineContext, apply *ir.Expr, callee *ir.Func) bool {
	if !bodyIsInlineable(callee.Body) {
		return false
	}
	args := apply.Operands[1:]
	if len(args) != len(callee.Params) {
		return false
	}

	b := ctx.b
	owner := apply.Block().Group()

	needsReturnValue := apply.Result() != nil && len(apply.Result().Users()) > 0
	var returnSlot *ir.Expr
	if needsReturnValue {
		returnSlot = b.CreateAllocate(apply.Block(), apply.ResultType, "inline.ret")
		returnSlot.MoveBefore(apply)
	}

	values := make(map[ir.Value]ir.Value, len(callee.Params))
	for i, p := range callee.Params {
		values[p] = substituteArg(b, apply, args[i], p.Type())
	}

	blocks := make(map[*ir.Block]*ir.Block, len(callee.Body.Blocks))
	for _, old := range callee.Body.Blocks {
		blocks[old] = b.CreateBlock(owner, "inline."+old.Comment)
	}

	cc := &cloneContext{b: b, values: values, blocks: blocks}
	var exitBlocks []*ir.Block
	for _, old := range callee.Body.Blocks {
		newBlock := blocks[old]
		for _, e := range old.Exprs {
			if e.Kind == ir.EExit {
				var retVal ir.Value
				if len(e.Operands) > 0 {
					retVal = cc.val(e.Operands[0])
				}
				if needsReturnValue && retVal != nil {
					b.CreateStore(newBlock, returnSlot.Result(), retVal, false)
				}
				exitBlocks = append(exitBlocks, newBlock)
				continue
			}
			cc.cloneExpr(e, newBlock)
		}
	}

	entryNew := blocks[callee.Body.Entry]

	first, second := b.SplitBlock(apply)
	trailingGoTo := first.Exprs[len(first.Exprs)-1]
	trailingGoTo.RemoveSelfFromBlock()
	apply.RemoveSelfFromBlock()

	for _, eb := range exitBlocks {
		b.CreateGoTo(eb, second)
	}
	b.CreateGoTo(first, entryNew)

	if needsReturnValue {
		load := b.CreateLoad(second, returnSlot.Result())
		load.MoveBefore(second.Exprs[0])
		for user := range apply.Result().Users() {
			user.ReplaceOperand(apply.Result(), load.Result())
		}
	}

	return true
}

// substituteArg produces the value callee's cloned body should read in
// place of param: arg unchanged when the types already match, an
// UnBox/Box when the mismatch is exactly the box-recursion-value-type
// wrapping, and a TypeCast otherwise (e.g. a generic instantiation
// narrowing/widening at the call site).
func substituteArg(b *ir.Builder, before *ir.Expr, arg ir.Value, paramType *ir.Type) ir.Value {
	argType := arg.Type()
	if argType == paramType {
		return arg
	}
	parent := before.Block()
	var fresh *ir.Expr
	switch {
	case argType.Kind == ir.KindRef && argType.Elem != nil && argType.Elem.Kind == ir.KindBox && argType.Elem.Elem == paramType:
		fresh = b.CreateUnBox(parent, arg, paramType)
	case paramType.Kind == ir.KindRef && paramType.Elem != nil && paramType.Elem.Kind == ir.KindBox && paramType.Elem.Elem == argType:
		fresh = b.CreateBox(parent, arg)
	default:
		fresh = b.CreateTypeCast(parent, arg, paramType)
	}
	fresh.MoveBefore(before)
	return fresh.Result()
}

// bodyIsInlineable reports whether every expression directly in body's
// blocks is one cloneExpr knows how to rebuild. Structured control
// (If/Loop/ForIn*) is already flattened away by the time this pass runs
// (§4.8 ordering), so finding one here means body is an early-phase
// function this pass should leave alone; a Lambda or
// GetInstantiateValue likewise has no clone support yet.
func bodyIsInlineable(body *ir.BlockGroup) bool {
	if body == nil || body.Entry == nil {
		return false
	}
	for _, blk := range body.Blocks {
		for _, e := range blk.Exprs {
			switch e.Kind {
			case ir.ELambda, ir.EGetInstantiateValue,
				ir.EIf, ir.ELoop, ir.EForInRange, ir.EForInIter, ir.EForInClosedRange:
				return false
			}
		}
	}
	return true
}

// cloneContext carries the old-to-new value and block maps for one
// clone-in-progress; val resolves an old operand to its substitute when
// one was recorded (a formal parameter, or another cloned expression's
// result) and returns it unchanged otherwise (a global, an imported
// value, or a literal — none of which this pass ever duplicates).
type cloneContext struct {
	b      *ir.Builder
	values map[ir.Value]ir.Value
	blocks map[*ir.Block]*ir.Block
}

func (cc *cloneContext) val(v ir.Value) ir.Value {
	if nv, ok := cc.values[v]; ok {
		return nv
	}
	return v
}

func (cc *cloneContext) vals(vs []ir.Value) []ir.Value {
	out := make([]ir.Value, len(vs))
	for i, v := range vs {
		out[i] = cc.val(v)
	}
	return out
}

func (cc *cloneContext) remember(old, fresh *ir.Expr) {
	if old.Result() != nil && fresh.Result() != nil {
		cc.values[old.Result()] = fresh.Result()
	}
}

// cloneExpr rebuilds e into newBlock using the matching public
// Create* constructor with every operand resolved through cc.val, the
// same "rebuild, don't mutate in place" discipline every other pass in
// this package follows. EExit is handled by inlineApply directly and
// never reaches here.
func (cc *cloneContext) cloneExpr(e *ir.Expr, newBlock *ir.Block) {
	b := cc.b

	if e.HasException() && e.Kind == ir.EApply {
		ok, errB := e.ExceptionBlocks()
		fresh := b.CreateApplyWithException(newBlock, cc.val(e.Callee), cc.vals(e.Operands[1:]), e.ResultType, cc.blocks[ok], cc.blocks[errB])
		cc.remember(e, fresh)
		return
	}

	var fresh *ir.Expr
	switch e.Kind {
	case ir.EAllocate:
		fresh = b.CreateAllocate(newBlock, e.TargetType, e.Symbol)
	case ir.ELoad:
		fresh = b.CreateLoad(newBlock, cc.val(e.Operands[0]))
	case ir.EStore:
		fresh = b.CreateStore(newBlock, cc.val(e.Operands[0]), cc.val(e.Operands[1]), e.IsLet)
	case ir.EGetElementRef:
		fresh = b.CreateGetElementRef(newBlock, cc.val(e.Operands[0]), e.Indices, e.ResultType.Elem, e.Symbol)
	case ir.EStoreElementRef:
		fresh = b.CreateStoreElementRef(newBlock, cc.val(e.Operands[0]), cc.val(e.Operands[1]), e.Indices)
	case ir.EUnary:
		fresh = b.CreateUnary(newBlock, e.UnaryOp, cc.val(e.Operands[0]), e.ResultType)
	case ir.EBinary:
		fresh = b.CreateBinary(newBlock, e.BinaryOp, cc.val(e.Operands[0]), cc.val(e.Operands[1]), e.ResultType)
	case ir.EConstant:
		lit, _ := ir.As[*ir.LiteralValue](e.Operands[0])
		fresh = b.CreateConstant(newBlock, lit)
	case ir.ETuple:
		fresh = b.CreateTuple(newBlock, cc.vals(e.Operands), e.ResultType)
	case ir.EField:
		fresh = b.CreateField(newBlock, cc.val(e.Operands[0]), e.Indices[0], e.ResultType)
	case ir.EApply:
		fresh = b.CreateApply(newBlock, cc.val(e.Callee), cc.vals(e.Operands[1:]), e.ResultType)
	case ir.EInvoke:
		fresh = b.CreateInvoke(newBlock, cc.val(e.Operands[0]), e.MethodName, cc.vals(e.Operands[1:]), e.ResultType)
	case ir.EInvokeStatic:
		fresh = b.CreateInvokeStatic(newBlock, cc.val(e.Operands[0]), e.MethodName, cc.vals(e.Operands[1:]), e.ResultType)
	case ir.ETypeCast:
		fresh = b.CreateTypeCast(newBlock, cc.val(e.Operands[0]), e.TargetType)
	case ir.EInstanceOf:
		fresh = b.CreateInstanceOf(newBlock, cc.val(e.Operands[0]), e.TargetType, e.ResultType)
	case ir.EBox:
		fresh = b.CreateBox(newBlock, cc.val(e.Operands[0]))
	case ir.EUnBox:
		fresh = b.CreateUnBox(newBlock, cc.val(e.Operands[0]), e.ResultType)
	case ir.EUnBoxToRef:
		fresh = b.CreateUnBoxToRef(newBlock, cc.val(e.Operands[0]), e.TargetType)
	case ir.EIntrinsic:
		fresh = b.CreateIntrinsic(newBlock, e.Symbol, cc.vals(e.Operands), e.ResultType)
	case ir.EDebug:
		fresh = b.CreateDebug(newBlock, cc.val(e.Operands[0]), e.Symbol)
	case ir.ESpawn:
		fresh = b.CreateSpawn(newBlock, cc.val(e.Operands[0]), e.ResultType)
	case ir.ERawArrayAllocate:
		fresh = b.CreateRawArrayAllocate(newBlock, e.TargetType.Elem, cc.val(e.Operands[0]))
	case ir.ERawArrayLoad:
		fresh = b.CreateRawArrayLoad(newBlock, cc.val(e.Operands[0]), cc.val(e.Operands[1]), e.ResultType)
	case ir.ERawArrayStore:
		fresh = b.CreateRawArrayStore(newBlock, cc.val(e.Operands[0]), cc.val(e.Operands[1]), cc.val(e.Operands[2]))
	case ir.EVArrayBuild:
		fresh = b.CreateVArrayBuild(newBlock, cc.vals(e.Operands), e.ResultType)
	case ir.EGetRTTI:
		fresh = b.CreateGetRTTI(newBlock, cc.val(e.Operands[0]), e.ResultType)
	case ir.EGetRTTIStatic:
		fresh = b.CreateGetRTTIStatic(newBlock, e.TargetType, e.ResultType)
	case ir.EGoTo:
		fresh = b.CreateGoTo(newBlock, cc.blocks[e.Successors()[0]])
	case ir.EBranch:
		succ := e.Successors()
		fresh = b.CreateBranch(newBlock, cc.val(e.Operands[0]), cc.blocks[succ[0]], cc.blocks[succ[1]])
	case ir.EMultiBranch:
		succ := e.Successors()
		targets := make([]*ir.Block, len(succ)-1)
		for i, s := range succ[:len(succ)-1] {
			targets[i] = cc.blocks[s]
		}
		fresh = b.CreateMultiBranch(newBlock, cc.val(e.Operands[0]), cc.vals(e.Operands[1:]), targets, cc.blocks[succ[len(succ)-1]])
	case ir.ERaiseException:
		fresh = b.CreateRaiseException(newBlock, cc.val(e.Operands[0]))
	default:
		return
	}
	cc.remember(e, fresh)
}
