package analysis

import (
	"fmt"

	"github.com/chir-lang/chir/internal/chir/dataflow"
	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/visitor"
)

// Finding is one var-init violation (§4.7 "The var-init checker"). Pos
// is zero when the offending expression carries no recorded source
// position.
type Finding struct {
	Pos     ir.Pos
	Message string
}

func (f Finding) String() string { return fmt.Sprintf("%s: %s", f.Pos, f.Message) }

// CheckVarInit runs maybe-uninit over fn and flags every violation
// described by §4.7: a load from a maybe-uninit allocation; a
// GetElementRef on `this` for an uninit super/local member; an Apply
// that calls a member function of `this` while some local member is
// maybe-uninit; a Store to a let-bound already-initialized field
// (maybe-init bit still set).
func CheckVarInit(fn *ir.Func, superMemberCount int) []Finding {
	if fn.Body == nil {
		return nil
	}
	layout := BuildLayout(fn, superMemberCount)
	if layout.NBits() == 0 {
		return nil
	}

	uninit, _ := Run(fn, layout, MaybeUninit)
	init, _ := Run(fn, layout, MaybeInit)
	this := layout.ThisValue()

	var findings []Finding

	walkBlock := func(b *ir.Block, uninitState, initState dataflow.Domain) {
		us := cloneBitSet(uninitState)
		is := cloneBitSet(initState)

		apply := func(e *ir.Expr) {
			switch e.Kind {
			case ir.ELoad:
				if len(e.Operands) > 0 {
					if bit, ok := layout.resolveAllocBit(e.Operands[0]); ok && us.Test(bit) {
						findings = append(findings, Finding{e.Pos, fmt.Sprintf("load from maybe-uninitialized allocation (bit %d)", bit)})
					}
				}
			case ir.EGetElementRef:
				if this != nil && len(e.Operands) > 0 && e.Operands[0] == this && len(e.Indices) == 1 {
					local := e.Indices[0] - superMemberCount
					if bit, ok := layout.MemberBit(local); ok && us.Test(bit) {
						findings = append(findings, Finding{e.Pos, fmt.Sprintf("reference to maybe-uninitialized member %d", local)})
					}
					if local < 0 {
						if sb, ok := layout.SuperBit(); ok && us.Test(sb) {
							findings = append(findings, Finding{e.Pos, "reference to super member before super constructor runs"})
						}
					}
				}
			case ir.EApply:
				if this != nil && len(e.Operands) > 0 && e.Operands[0] == this {
					if callee, ok := e.Callee.(*ir.Func); ok && callee.ParentDef == fn.ParentDef && !callee.IsConstructor {
						for _, mb := range layout.memberBits {
							if us.Test(mb) {
								findings = append(findings, Finding{e.Pos, "call to member function while a local member is maybe-uninitialized"})
								break
							}
						}
					}
				}
			case ir.EStore:
				if e.IsLet && len(e.Operands) > 0 {
					if bit, ok := layout.resolveAllocBit(e.Operands[0]); ok && is.Test(bit) {
						findings = append(findings, Finding{e.Pos, "store to a let-bound field that is already initialized"})
					}
				}
			}
			applyTransferInPlace(us, is, layout, this, superMemberCount, e)
		}

		for _, e := range b.Exprs {
			apply(e)
		}
	}

	visitor.WalkGroup(fn.Body, visitor.Hooks{
		PreBlock: func(b *ir.Block) visitor.Action {
			ue, uok := uninit.Entry[b]
			ie, iok := init.Entry[b]
			if !uok || !iok {
				return visitor.Continue
			}
			walkBlock(b, ue, ie)
			return visitor.Continue
		},
	})

	return findings
}

func cloneBitSet(d dataflow.Domain) *dataflow.BitSet {
	bs := d.(*dataflow.BitSet)
	return bs.Clone()
}

// applyTransferInPlace mirrors Run's per-expression gen/kill so the
// checker can evaluate each statement against the state that holds
// immediately before it, without re-running the whole fixpoint.
func applyTransferInPlace(uninitState, initState *dataflow.BitSet, layout *Layout, this ir.Value, superMemberCount int, e *ir.Expr) {
	setBoth := func(bit int, initIsSet bool) {
		if initIsSet {
			initState.Set(bit)
			uninitState.Clear(bit)
		} else {
			initState.Clear(bit)
			uninitState.Set(bit)
		}
	}

	switch e.Kind {
	case ir.EAllocate:
		if bit, ok := layout.AllocBit(e); ok {
			setBoth(bit, false)
		}
	case ir.EStore:
		if len(e.Operands) > 0 {
			if bit, ok := layout.resolveAllocBit(e.Operands[0]); ok {
				setBoth(bit, true)
			}
		}
	case ir.EStoreElementRef:
		if this != nil && len(e.Operands) > 0 && e.Operands[0] == this && len(e.Indices) == 1 {
			local := e.Indices[0] - superMemberCount
			if bit, ok := layout.MemberBit(local); ok {
				setBoth(bit, true)
			}
		}
	case ir.EApply:
		if callee, ok := e.Callee.(*ir.Func); ok && len(e.Operands) > 0 && e.Operands[0] == this {
			if callee.IsConstructor && this != nil && layout.fn.ParentDef != nil && callee.ParentDef == layout.fn.ParentDef {
				for _, mb := range layout.memberBits {
					setBoth(mb, true)
				}
				if sb, ok := layout.SuperBit(); ok {
					setBoth(sb, true)
				}
			}
			if callee.IsConstructor && callee.ParentDef != nil && callee.ParentDef != layout.fn.ParentDef {
				if sb, ok := layout.SuperBit(); ok {
					setBoth(sb, true)
				}
			}
		}
	}
}
