// Package analysis holds the specific fixpoint analyses and call-graph
// construction that sit atop internal/chir/dataflow (§4.7): maybe-init /
// maybe-uninit and the var-init checker that consumes them, the
// GetOrThrow-result analysis, and call-graph + SCC condensation feeding
// the function-inline pass's ordering.
package analysis

import (
	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/visitor"
)

// Layout assigns one bit per tracked allocation/member for one function's
// maybe-init / maybe-uninit run (§4.7 "Bit layout"): one bit for each
// allocation with a debug name, then (inside a constructor) one bit per
// local member variable of the enclosing custom type, then one trailing
// "super constructor called" bit when the class has a super.
type Layout struct {
	allocBits  map[*ir.Expr]int
	memberBits []int // memberBits[i] is the bit for ParentDef.Members[i]
	superBit   int   // -1 when the def has no super
	nBits      int

	fn               *ir.Func
	superMemberCount int
}

// BuildLayout walks fn's body for debug-named allocations and, if fn is a
// constructor, appends member/super bits. superMemberCount is the number
// of instance variables fn's enclosing def inherits from its super (0 if
// none or fn is not a constructor); GetElementRef/StoreElementRef index
// paths on `this` are laid out super-members-first, so a local member's
// slot in the index path is superMemberCount + its position in
// ParentDef.Members.
func BuildLayout(fn *ir.Func, superMemberCount int) *Layout {
	l := &Layout{
		allocBits:        make(map[*ir.Expr]int),
		superBit:         -1,
		fn:               fn,
		superMemberCount: superMemberCount,
	}

	bit := 0
	if fn.Body != nil {
		visitor.WalkGroup(fn.Body, visitor.Hooks{
			PreExpr: func(e *ir.Expr) visitor.Action {
				if e.Kind == ir.EAllocate && e.Symbol != "" {
					l.allocBits[e] = bit
					bit++
				}
				return visitor.Continue
			},
		})
	}

	if fn.IsConstructor && fn.ParentDef != nil {
		l.memberBits = make([]int, len(fn.ParentDef.Members))
		for i := range fn.ParentDef.Members {
			l.memberBits[i] = bit
			bit++
		}
		if fn.ParentDef.SuperType != nil {
			l.superBit = bit
			bit++
		}
	}

	l.nBits = bit
	return l
}

// NBits is the total bit width for this layout, the width BitSet domains
// for this function must be constructed with.
func (l *Layout) NBits() int { return l.nBits }

// AllocBit returns the bit for a debug-named Allocate expression, or
// (0, false) if e is not tracked.
func (l *Layout) AllocBit(e *ir.Expr) (int, bool) {
	b, ok := l.allocBits[e]
	return b, ok
}

// MemberBit returns the bit for local member var index idx (already
// adjusted for inherited members: pass idx-superMemberCount from a
// `this` index path), or (0, false) if idx is out of range or fn is not
// a constructor.
func (l *Layout) MemberBit(idx int) (int, bool) {
	if idx < 0 || idx >= len(l.memberBits) {
		return 0, false
	}
	return l.memberBits[idx], true
}

// SuperBit returns the "super constructor called" bit, or (0, false)
// when the enclosing def has no super.
func (l *Layout) SuperBit() (int, bool) {
	if l.superBit < 0 {
		return 0, false
	}
	return l.superBit, true
}

// ThisValue returns fn's receiver parameter (Params[0]) when fn is a
// method, or nil for a free function.
func (l *Layout) ThisValue() ir.Value {
	if l.fn.ParentDef == nil || len(l.fn.Params) == 0 {
		return nil
	}
	return l.fn.Params[0]
}

// resolveAllocBit follows ref back to the Allocate expression that
// produced it (ref must be the Allocate's own result, one level of
// indirection — deeper chains are not tracked by this analysis).
func (l *Layout) resolveAllocBit(ref ir.Value) (int, bool) {
	lv, ok := ref.(*ir.LocalVar)
	if !ok || lv.DefiningExpr == nil {
		return 0, false
	}
	return l.AllocBit(lv.DefiningExpr)
}
