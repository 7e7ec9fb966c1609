package analysis

import (
	"strings"

	"github.com/chir-lang/chir/internal/chir/dataflow"
	"github.com/chir-lang/chir/internal/chir/ir"
)

// IsGetOrThrowCall reports whether e is a call to the stdlib
// Result.getOrThrow accessor, the only callee this analysis tracks.
func IsGetOrThrowCall(e *ir.Expr) bool {
	if e.Kind != ir.EApply {
		return false
	}
	callee, ok := e.Callee.(*ir.Func)
	return ok && strings.HasSuffix(callee.Name, "getOrThrow")
}

// argIndex assigns a stable slot to each distinct getOrThrow receiver
// argument seen in a function, shared by every GetOrThrowResultDomain
// value produced for that function's analysis run.
type argIndex struct {
	slots map[ir.Value]int
}

func buildArgIndex(fn *ir.Func) *argIndex {
	idx := &argIndex{slots: make(map[ir.Value]int)}
	if fn.Body == nil {
		return idx
	}
	for _, b := range fn.Body.ReversePostOrder() {
		for _, e := range b.Exprs {
			if IsGetOrThrowCall(e) && len(e.Operands) > 1 {
				arg := e.Operands[1]
				if _, seen := idx.slots[arg]; !seen {
					idx.slots[arg] = len(idx.slots)
				}
			}
		}
	}
	return idx
}

// flatKind is a 3-point lattice per tracked argument: unknown (bottom),
// exactly one canonical Apply seen, or conflicting (top).
type flatKind uint8

const (
	flatBottom flatKind = iota
	flatValue
	flatTop
)

type flatApply struct {
	kind flatKind
	call *ir.Expr
}

func (a flatApply) join(b flatApply) (flatApply, bool) {
	switch {
	case a.kind == flatBottom:
		return b, b.kind != flatBottom || a != b
	case b.kind == flatBottom:
		return a, false
	case a.kind == flatTop:
		return a, false
	case b.kind == flatTop:
		return b, true
	case a.call == b.call:
		return a, false
	default:
		return flatApply{kind: flatTop}, true
	}
}

// GetOrThrowResultDomain tracks, per distinct getOrThrow receiver
// argument, the single Apply whose result can be reused by a later
// getOrThrow(arg) on every reachable path (§4.7 supplemented feature,
// grounded on GetOrThrowResultAnalysis.cpp's FlatSet-per-slot vector).
type GetOrThrowResultDomain struct {
	idx     *argIndex
	results []flatApply
}

// NewGetOrThrowResultDomain returns the all-bottom starting state for
// idx's argument slots.
func NewGetOrThrowResultDomain(idx *argIndex) *GetOrThrowResultDomain {
	return &GetOrThrowResultDomain{idx: idx, results: make([]flatApply, len(idx.slots))}
}

func (d *GetOrThrowResultDomain) Bottom() dataflow.Domain {
	return NewGetOrThrowResultDomain(d.idx)
}

func (d *GetOrThrowResultDomain) Join(other dataflow.Domain) bool {
	o := other.(*GetOrThrowResultDomain)
	changed := false
	for i := range d.results {
		merged, diff := d.results[i].join(o.results[i])
		if diff {
			changed = true
		}
		d.results[i] = merged
	}
	return changed
}

func (d *GetOrThrowResultDomain) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, r := range d.results {
		if i > 0 {
			sb.WriteString(", ")
		}
		switch r.kind {
		case flatBottom:
			sb.WriteString("?")
		case flatTop:
			sb.WriteString("*")
		default:
			sb.WriteString("#")
		}
	}
	sb.WriteString("}")
	return sb.String()
}

// CanonicalCall returns the Apply whose result arg's prior getOrThrow
// call can be reused, or nil when unknown/conflicting.
func (d *GetOrThrowResultDomain) CanonicalCall(arg ir.Value) *ir.Expr {
	i, ok := d.idx.slots[arg]
	if !ok {
		return nil
	}
	if d.results[i].kind != flatValue {
		return nil
	}
	return d.results[i].call
}

// RunGetOrThrowResultAnalysis tracks, for every getOrThrow(arg) call
// site, whether an earlier call on the same arg is available to reuse
// on every path reaching it (entry state starts Top: every slot
// unconstrained, matching the source's InitializeFuncEntryState).
func RunGetOrThrowResultAnalysis(fn *ir.Func) dataflow.Result {
	idx := buildArgIndex(fn)
	if fn.Body == nil || len(idx.slots) == 0 {
		return dataflow.Result{Entry: map[*ir.Block]dataflow.Domain{}, Exit: map[*ir.Block]dataflow.Domain{}}
	}

	return dataflow.Run(fn.Body, dataflow.Options{
		Init: func() dataflow.Domain {
			d := NewGetOrThrowResultDomain(idx)
			for i := range d.results {
				d.results[i] = flatApply{kind: flatTop}
			}
			return d
		},
		ExprTransfer: func(state dataflow.Domain, e *ir.Expr) dataflow.Domain {
			d := state.(*GetOrThrowResultDomain)
			if IsGetOrThrowCall(e) && len(e.Operands) > 1 {
				arg := e.Operands[1]
				if i, ok := idx.slots[arg]; ok {
					if d.results[i].kind == flatBottom || d.results[i].kind == flatTop {
						d.results[i] = flatApply{kind: flatValue, call: e}
					}
				}
			}
			return d
		},
	})
}
