package analysis

import (
	"github.com/chir-lang/chir/internal/chir/dataflow"
	"github.com/chir-lang/chir/internal/chir/ir"
)

// Kind distinguishes the two var-init analyses sharing one Layout and
// engine: they gen/kill every bit in opposite directions (§4.7).
type Kind uint8

const (
	// MaybeInit: a set bit means "this allocation/member might already be
	// initialized on some incoming path."
	MaybeInit Kind = iota
	// MaybeUninit: a set bit means "this allocation/member might still be
	// uninitialized on some incoming path."
	MaybeUninit
)

// Positions records, per bit, the set of source positions where a Store
// transitioned maybe-uninit to initialized — used by the var-init
// checker to point at the initializing write, not just flag the read.
type Positions map[int][]ir.Pos

func (p Positions) record(bit int, pos ir.Pos) {
	p[bit] = append(p[bit], pos)
}

// Run executes one maybe-init or maybe-uninit analysis over fn's body
// per layout, returning the dataflow result plus the positions map
// (populated only for MaybeUninit, per §4.7 "records source-line
// position").
func Run(fn *ir.Func, layout *Layout, kind Kind) (dataflow.Result, Positions) {
	positions := make(Positions)
	if fn.Body == nil {
		return dataflow.Result{Entry: map[*ir.Block]dataflow.Domain{}, Exit: map[*ir.Block]dataflow.Domain{}}, positions
	}

	this := layout.ThisValue()

	// initializes marks bit as "now initialized": set for MaybeInit,
	// clear (+ record the write's position) for MaybeUninit.
	initializes := func(bs *dataflow.BitSet, bit int, pos ir.Pos) {
		if kind == MaybeInit {
			bs.Set(bit)
		} else {
			bs.Clear(bit)
			positions.record(bit, pos)
		}
	}

	isSiblingCtor := func(callee *ir.Func) bool {
		return callee.IsConstructor && fn.ParentDef != nil && callee.ParentDef == fn.ParentDef
	}
	isSuperCtor := func(callee *ir.Func) bool {
		return callee.IsConstructor && fn.ParentDef != nil && fn.ParentDef.SuperType != nil &&
			callee.ParentDef != nil && callee.ParentDef != fn.ParentDef
	}

	transfer := func(state dataflow.Domain, e *ir.Expr) dataflow.Domain {
		bs := state.(*dataflow.BitSet)
		switch e.Kind {
		case ir.EAllocate:
			if bit, ok := layout.AllocBit(e); ok {
				// Allocate: maybe-init kills (newly allocated => not yet
				// initialized); maybe-uninit gens.
				if kind == MaybeInit {
					bs.Clear(bit)
				} else {
					bs.Set(bit)
				}
			}
		case ir.EStore:
			if len(e.Operands) > 0 {
				if bit, ok := layout.resolveAllocBit(e.Operands[0]); ok {
					initializes(bs, bit, e.Pos)
				}
			}
		case ir.EStoreElementRef:
			if this != nil && len(e.Operands) > 0 && e.Operands[0] == this && len(e.Indices) == 1 {
				local := e.Indices[0] - layout.superMemberCount
				if bit, ok := layout.MemberBit(local); ok {
					initializes(bs, bit, e.Pos)
				}
			}
		case ir.EApply:
			if callee, ok := e.Callee.(*ir.Func); ok && len(e.Operands) > 0 {
				if e.Operands[0] == this {
					if isSiblingCtor(callee) {
						for _, mb := range layout.memberBits {
							initializes(bs, mb, e.Pos)
						}
						if sb, ok := layout.SuperBit(); ok {
							initializes(bs, sb, e.Pos)
						}
					}
					if isSuperCtor(callee) {
						if sb, ok := layout.SuperBit(); ok {
							initializes(bs, sb, e.Pos)
						}
					}
				}
			}
		}
		return bs
	}

	result := dataflow.Run(fn.Body, dataflow.Options{
		Init: func() dataflow.Domain {
			bs := dataflow.NewBitSet(layout.NBits(), dataflow.Maybe)
			// Every tracked allocation/member starts uninitialized: for
			// MaybeUninit that is bit=1 everywhere; for MaybeInit the
			// all-zero default already means "not yet initialized".
			if kind == MaybeUninit {
				for i := 0; i < layout.NBits(); i++ {
					bs.Set(i)
				}
			}
			return bs
		},
		ExprTransfer: transfer,
		TermTransfer: transfer,
	})
	return result, positions
}
