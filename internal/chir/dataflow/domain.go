// Package dataflow implements the abstract-domain-parametric forward
// fixpoint engine (§4.6) the rest of the middle-end's checks and passes
// run on: maybe-init/maybe-uninit (internal/chir/analysis) and the
// points-to-flavored value analysis both instantiate Analysis[D] rather
// than hand-rolling their own worklist, mirroring how the source's
// Analysis<D> template is the single fixpoint engine every CHIR
// analysis derives from (original_source/include/cangjie/CHIR/Analysis/ValueAnalysis.h).
package dataflow

import "github.com/chir-lang/chir/internal/chir/ir"

// Domain is an abstract lattice element tracked per program point. Join
// must be monotone (repeated joins eventually stabilize) for the engine
// to terminate.
type Domain interface {
	// Bottom returns a fresh, most-precise ("unreachable"/empty) element.
	Bottom() Domain
	// Join merges other into the receiver in place and reports whether
	// anything changed, so the engine knows whether to requeue successors.
	Join(other Domain) bool
	// String renders a debug form.
	String() string
}

// GenKind distinguishes a "maybe" analysis (join = union, a bit set
// once it can possibly be true anywhere) from a "must" analysis (join =
// intersection, a bit set only where every path agrees).
type GenKind uint8

const (
	// Maybe: join is set union. Used by maybe-init/maybe-uninit (§4.7) —
	// "this bit might be set on some incoming path".
	Maybe GenKind = iota
	// Must: join is set intersection — "this bit is set on every
	// incoming path". Not currently instantiated by any analysis in this
	// package but kept as the GenKill domain's other join mode per §4.6.
	Must
)

// BitSet is a fixed-width bit vector GenKill domain (§4.6 "bit vectors
// with gen/kill per expression").
type BitSet struct {
	bits []uint64
	n    int
	kind GenKind
}

// NewBitSet allocates an n-bit set, all zero, joining with union (Maybe)
// or intersection (Must) per kind.
func NewBitSet(n int, kind GenKind) *BitSet {
	return &BitSet{bits: make([]uint64, (n+63)/64), n: n, kind: kind}
}

func (s *BitSet) Set(i int)   { s.bits[i/64] |= 1 << uint(i%64) }
func (s *BitSet) Clear(i int) { s.bits[i/64] &^= 1 << uint(i%64) }
func (s *BitSet) Test(i int) bool {
	return s.bits[i/64]&(1<<uint(i%64)) != 0
}

// Clone returns an independent copy, since the engine mutates entry/exit
// states in place per block.
func (s *BitSet) Clone() *BitSet {
	c := &BitSet{bits: append([]uint64(nil), s.bits...), n: s.n, kind: s.kind}
	return c
}

// Bottom returns the all-zero (Maybe) or all-one (Must) starting point:
// a "must" fact starts true everywhere since intersection can only
// shrink it, a "maybe" fact starts false since union can only grow it.
func (s *BitSet) Bottom() Domain {
	b := NewBitSet(s.n, s.kind)
	if s.kind == Must {
		for i := range b.bits {
			b.bits[i] = ^uint64(0)
		}
	}
	return b
}

// Join unions (Maybe) or intersects (Must) other into s.
func (s *BitSet) Join(other Domain) bool {
	o := other.(*BitSet)
	changed := false
	for i := range s.bits {
		var merged uint64
		if s.kind == Must {
			merged = s.bits[i] & o.bits[i]
		} else {
			merged = s.bits[i] | o.bits[i]
		}
		if merged != s.bits[i] {
			changed = true
		}
		s.bits[i] = merged
	}
	return changed
}

func (s *BitSet) String() string {
	out := make([]byte, s.n)
	for i := 0; i < s.n; i++ {
		if s.Test(i) {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out)
}

// TransferExpr is a per-expression gen/kill callback: it may Set/Clear
// bits on state according to e's kind and operands.
type TransferExpr func(state *BitSet, e *ir.Expr)
