package ir

// As reports whether v holds a concrete Value kind T, returning it on
// success. Generalizes the source's CHIRCasting.h template dyn-cast
// helpers (Go has no templates, so this is the generic-function
// replacement named in SPEC_FULL.md's supplemented-features list).
func As[T Value](v Value) (T, bool) {
	t, ok := v.(T)
	return t, ok
}

// Is reports whether v holds a concrete Value kind T.
func Is[T Value](v Value) bool {
	_, ok := v.(T)
	return ok
}

// KindGroup classifies an ExprKind into the §3.3 groupings used
// pervasively by rewrite-on-kind call sites (inlining, the checker, the
// visitor).
type KindGroup uint8

const (
	GroupMemory KindGroup = iota
	GroupUnary
	GroupBinary
	GroupOther
	GroupTerminator
	GroupStructuredControl
)

// Group classifies e's kind. A "with exception" expression (HasException
// == true) is always GroupTerminator regardless of its base kind, since
// attaching the exception aspect makes it terminate its block.
func (e *Expr) Group() KindGroup {
	if e.HasException() {
		return GroupTerminator
	}
	switch e.Kind {
	case EAllocate, ELoad, EStore, EGetElementRef, EStoreElementRef:
		return GroupMemory
	case EUnary:
		return GroupUnary
	case EBinary:
		return GroupBinary
	case EGoTo, EBranch, EMultiBranch, EExit, ERaiseException:
		return GroupTerminator
	case EIf, ELoop, EForInRange, EForInIter, EForInClosedRange:
		return GroupStructuredControl
	default:
		return GroupOther
	}
}

// IsStructured reports whether e owns nested block groups used only in
// early phases and flattened before low-level passes (§3.3).
func (e *Expr) IsStructured() bool { return e.Group() == GroupStructuredControl || e.Kind == ELambda }
