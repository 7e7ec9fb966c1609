package ir

import "fmt"

// ExprKind tags the operation an Expr performs. Design note 9 ("Deep
// hierarchy of expressions") calls for a tagged variant over one Go type
// per leaf kind, since the whole system repeatedly rewrites-by-kind
// (inlining, the checker, the visitor); a single Expr struct with an
// ExprKind discriminator gives exhaustive switch-based matching while
// keeping one type to pass around, mutate and relink. The "with
// exception" duplication of every terminator-ish expression (design note
// "Double dispatch on two orthogonal axes") is folded away: the
// exception aspect is an optional (OKBlock, ErrBlock) pair attached to
// the base expression rather than a distinct kind, halving the count
// below relative to the source's enum.
type ExprKind uint8

const (
	EInvalid ExprKind = iota

	// Memory.
	EAllocate
	ELoad
	EStore
	EGetElementRef
	EStoreElementRef

	// Unary / binary.
	EUnary
	EBinary

	// Other.
	EConstant
	ETuple
	EField
	EApply
	EInvoke
	EInvokeStatic
	ETypeCast
	EInstanceOf
	EBox
	EUnBox
	EUnBoxToRef
	EIntrinsic
	EGetInstantiateValue
	ELambda
	EDebug
	ESpawn
	ERawArrayAllocate
	ERawArrayLoad
	ERawArrayStore
	EVArrayBuild
	EGetRTTI
	EGetRTTIStatic

	// Terminators.
	EGoTo
	EBranch
	EMultiBranch
	EExit
	ERaiseException

	// Structured control flow (early phases only; flattened before OPT).
	EIf
	ELoop
	EForInRange
	EForInIter
	EForInClosedRange
)

var exprKindNames = map[ExprKind]string{
	EAllocate: "Allocate", ELoad: "Load", EStore: "Store",
	EGetElementRef: "GetElementRef", EStoreElementRef: "StoreElementRef",
	EUnary: "Unary", EBinary: "Binary",
	EConstant: "Constant", ETuple: "Tuple", EField: "Field",
	EApply: "Apply", EInvoke: "Invoke", EInvokeStatic: "InvokeStatic",
	ETypeCast: "TypeCast", EInstanceOf: "InstanceOf",
	EBox: "Box", EUnBox: "UnBox", EUnBoxToRef: "UnBoxToRef",
	EIntrinsic: "Intrinsic", EGetInstantiateValue: "GetInstantiateValue",
	ELambda: "Lambda", EDebug: "Debug", ESpawn: "Spawn",
	ERawArrayAllocate: "RawArrayAllocate", ERawArrayLoad: "RawArrayLoad",
	ERawArrayStore: "RawArrayStore", EVArrayBuild: "VArrayBuild",
	EGetRTTI: "GetRTTI", EGetRTTIStatic: "GetRTTIStatic",
	EGoTo: "GoTo", EBranch: "Branch", EMultiBranch: "MultiBranch",
	EExit: "Exit", ERaiseException: "RaiseException",
	EIf: "If", ELoop: "Loop", EForInRange: "ForInRange",
	EForInIter: "ForInIter", EForInClosedRange: "ForInClosedRange",
}

func (k ExprKind) String() string {
	if s, ok := exprKindNames[k]; ok {
		return s
	}
	return "Invalid"
}

// UnaryOp / BinaryOp enumerate the operator an EUnary/EBinary expression
// applies.
type UnaryOp uint8

const (
	OpNeg UnaryOp = iota
	OpNot
	OpBitNot
)

type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// Expr is a typed operation producing at most one LocalVar, the
// "result" (§3.3). It is the single concrete node type for all 39
// operation kinds; see ExprKind's doc comment for why.
type Expr struct {
	id   int
	Kind ExprKind

	// ResultType is the type of Result(); Unit or Void when the
	// expression produces no usable value.
	ResultType *Type
	result     *LocalVar

	// Operands is the ordered, kind-dependent operand list. Terminator
	// condition/argument operands live here; successor blocks do not.
	Operands []Value

	block *Block

	// successors holds terminator successor blocks in the kind-specific
	// layout documented by Successors().
	successors []*Block

	// nested holds the block groups owned by a structured-control
	// expression (If: [then, else]; Loop: [body]; ForIn*:
	// [latch, cond, body]) or a Lambda's single body group.
	nested []*BlockGroup

	// okBlock/errBlock implement the "with exception" aspect: when
	// non-nil, this expression is also a terminator whose normal-path
	// successor is okBlock and whose exception landing pad is errBlock.
	okBlock  *Block
	errBlock *Block

	// Kind-specific payload. Using explicit named fields (rather than a
	// boxed `any`) keeps every kind's data visible and type-checked; not
	// every field is meaningful for every Kind (documented per
	// constructor in builder.go).
	Symbol           string  // element-ref/Debug name; Field/Intrinsic/RTTI name
	Indices          []int   // GetElementRef/StoreElementRef/Field/Tuple index path
	Callee           Value   // Apply callee; Invoke/InvokeStatic dispatch root
	MethodName       string  // Invoke method source name
	TargetType       *Type   // TypeCast/InstanceOf/Box/UnBox/Allocate allocated/target type
	UnaryOp          UnaryOp
	BinaryOp         BinaryOp
	ConstructorIndex int  // selected enum constructor index, when static
	ExecuteClosure   bool // Spawn: set once redundant-future-removal rewires it
	IsLet            bool // Store: true when destination is a let-bound field
	NoInline         bool // Apply: callee marked no-inline at the call site

	// Pos is the source position this expression was built from, used by
	// the checker and the var-init analysis to report a location; the
	// zero value means "unknown" (synthetic expressions introduced by a
	// transform pass).
	Pos Pos
}

// Pos is a 1-indexed source line/column, independent of any particular
// front-end's token package so this package has no upstream dependency.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.Line == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// SetPos records e's source position; returns e for chaining onto a
// builder call.
func (e *Expr) SetPos(p Pos) *Expr {
	e.Pos = p
	return e
}

// ID returns the expression's stable identity within its function.
func (e *Expr) ID() int { return e.id }

// Block returns the owning block, or nil if detached.
func (e *Expr) Block() *Block { return e.block }

// Result returns the LocalVar this expression defines, or nil.
func (e *Expr) Result() *LocalVar { return e.result }

// HasException reports whether this is a "with exception" variant.
func (e *Expr) HasException() bool { return e.okBlock != nil || e.errBlock != nil }

// ExceptionBlocks returns the (ok, err) landing pads for a with-exception
// expression; both nil when HasException() is false.
func (e *Expr) ExceptionBlocks() (ok, err *Block) { return e.okBlock, e.errBlock }

// NestedGroups returns the block groups a structured-control expression
// or Lambda owns.
func (e *Expr) NestedGroups() []*BlockGroup { return e.nested }

// IsTerminator reports whether e can end a block: the fixed terminator
// kinds, plus any expression with an attached exception aspect (the
// "with exception" twins named in §3.3).
func (e *Expr) IsTerminator() bool {
	switch e.Kind {
	case EGoTo, EBranch, EMultiBranch, EExit, ERaiseException:
		return true
	}
	return e.HasException()
}

// Successors returns the control-flow successor blocks in the
// kind-specific layout: GoTo has one; Branch has two (true, false, in
// that order); MultiBranch has one per case plus a default; a
// with-exception expression always has exactly two, (ok, err); Exit and
// RaiseException (without an exception aspect) have none.
func (e *Expr) Successors() []*Block {
	if e.HasException() {
		return []*Block{e.okBlock, e.errBlock}
	}
	switch e.Kind {
	case EGoTo, EBranch, EMultiBranch:
		return e.successors
	default:
		return nil
	}
}
