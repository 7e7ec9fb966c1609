package dataflow

import (
	"sort"
	"strconv"
	"strings"

	"github.com/chir-lang/chir/internal/chir/ir"
)

// AbstractObject is a symbolic heap object: the unit the value analysis
// tracks state for once a value has been dereferenced through a Ref
// (§4.6 "Value analysis"). Every static allocation site gets exactly
// one AbstractObject/Ref pair, never one per dynamic execution — the
// invariant that makes the analysis converge across loops (grounded on
// original_source's ValueAnalysis.h PreHandleAllocateExpr comment).
type AbstractObject struct {
	Name string
}

// Ref is a symbolic one-level indirection: the abstract counterpart of
// a CHIR reference type (T&). A Ref resolves, through a value analysis
// state's RefMap, to either another Ref (a second level of indirection,
// T&&) or to the AbstractObject it ultimately points at.
type Ref struct {
	Name string
}

// RefTarget is the RefMap's value type: exactly one of Ref or Object is
// set.
type RefTarget struct {
	Ref    *Ref
	Object *AbstractObject
}

// ValueElement is one ValueState program_state entry: either a Ref (the
// value is itself a reference), or an opaque domain element produced by
// the caller's own abstract domain for everything else.
type ValueElement struct {
	IsRef bool
	Ref   *Ref
	Elem  Domain
}

// ValueState is the value-analysis state (§4.6): program_state maps a
// CHIR value to a ValueElement, ref_map resolves a Ref one hop,
// children_map records, for a compound AbstractObject (tuple, struct,
// enum-discriminant-at-index-0), the per-field AbstractObject it owns,
// and object_state carries each AbstractObject's own abstract domain
// element (an object has no corresponding CHIR ir.Value of its own, so
// it cannot share program_state's key type).
type ValueState struct {
	ProgramState map[ir.Value]ValueElement
	RefMap       map[*Ref]RefTarget
	ChildrenMap  map[*AbstractObject][]*AbstractObject
	ObjectState  map[*AbstractObject]Domain

	nextRef int
	nextObj int
}

// NewValueState creates an empty state.
func NewValueState() *ValueState {
	return &ValueState{
		ProgramState: make(map[ir.Value]ValueElement),
		RefMap:       make(map[*Ref]RefTarget),
		ChildrenMap:  make(map[*AbstractObject][]*AbstractObject),
		ObjectState:  make(map[*AbstractObject]Domain),
	}
}

// Clone returns an independent copy sharing no mutable map with s, used
// when branching into a successor block's entry state.
func (s *ValueState) Clone() *ValueState {
	c := NewValueState()
	c.nextRef, c.nextObj = s.nextRef, s.nextObj
	for k, v := range s.ProgramState {
		c.ProgramState[k] = v
	}
	for k, v := range s.RefMap {
		c.RefMap[k] = v
	}
	for k, v := range s.ChildrenMap {
		c.ChildrenMap[k] = append([]*AbstractObject(nil), v...)
	}
	for k, v := range s.ObjectState {
		c.ObjectState[k] = v
	}
	return c
}

// SetObjectState records obj's own abstract domain element (used for
// compound-value children, which have no ir.Value of their own).
func (s *ValueState) SetObjectState(obj *AbstractObject, elem Domain) {
	s.ObjectState[obj] = elem
}

// GetObjectState returns obj's tracked domain element, or (nil, false).
func (s *ValueState) GetObjectState(obj *AbstractObject) (Domain, bool) {
	e, ok := s.ObjectState[obj]
	return e, ok
}

// NewRef allocates a fresh Ref with a unique debug name.
func (s *ValueState) NewRef() *Ref {
	s.nextRef++
	return &Ref{Name: "Ref" + strconv.Itoa(s.nextRef)}
}

// NewObject allocates a fresh AbstractObject with a unique debug name.
func (s *ValueState) NewObject() *AbstractObject {
	s.nextObj++
	return &AbstractObject{Name: "Obj" + strconv.Itoa(s.nextObj)}
}

// GetReferencedObj creates a fresh Ref/AbstractObject pair for dest,
// records dest -> ref in program_state and ref -> obj in ref_map, and
// returns obj (§4.6 GetReferencedObj).
func (s *ValueState) GetReferencedObj(dest ir.Value) *AbstractObject {
	ref := s.NewRef()
	s.ProgramState[dest] = ValueElement{IsRef: true, Ref: ref}
	obj := s.NewObject()
	s.RefMap[ref] = RefTarget{Object: obj}
	return obj
}

// Update sets dest's abstract domain element directly (dest is not
// itself a reference).
func (s *ValueState) Update(dest ir.Value, elem Domain) {
	s.ProgramState[dest] = ValueElement{Elem: elem}
}

// SetToTop coarsens dest's tracked state to top (the "nothing known, may
// be anything" lattice element), by delegating to top's own Bottom/Join
// as a conservative stand-in: callers that need a precise "top" pass a
// domain whose Join always reports no new information once already top.
func (s *ValueState) SetToTop(dest ir.Value, top Domain) {
	s.ProgramState[dest] = ValueElement{Elem: top}
}

// GetChild returns the index-th child object of obj, or nil if obj is
// not tracked as a compound value or index is out of range.
func (s *ValueState) GetChild(obj *AbstractObject, index int) *AbstractObject {
	children := s.ChildrenMap[obj]
	if index < 0 || index >= len(children) {
		return nil
	}
	return children[index]
}

// Propagate copies src's abstract state (and, if src is a compound
// object with children, each child's state in order) onto dest (§4.6
// Propagate).
func (s *ValueState) Propagate(src, dest ir.Value) {
	srcObj, srcIsObj := s.resolveObject(src)
	destObj, destIsObj := s.resolveObject(dest)
	if !srcIsObj || !destIsObj {
		if e, ok := s.ProgramState[src]; ok {
			s.ProgramState[dest] = e
		}
		return
	}
	if e, ok := s.ObjectState[srcObj]; ok {
		s.ObjectState[destObj] = e
	}
	srcChildren := s.ChildrenMap[srcObj]
	if len(srcChildren) == 0 {
		return
	}
	destChildren := make([]*AbstractObject, len(srcChildren))
	for i, sc := range srcChildren {
		child := s.NewObject()
		if e, ok := s.ObjectState[sc]; ok {
			s.ObjectState[child] = e
		}
		destChildren[i] = child
	}
	s.ChildrenMap[destObj] = destChildren
}

// resolveObject follows v's Ref chain (zero, one, or two hops) down to
// the AbstractObject it ultimately denotes.
func (s *ValueState) resolveObject(v ir.Value) (*AbstractObject, bool) {
	e, ok := s.ProgramState[v]
	if !ok {
		return nil, false
	}
	if !e.IsRef {
		return nil, false
	}
	return s.resolveRef(e.Ref)
}

// resolveRef follows ref's chain (zero, one, or two hops) down to the
// AbstractObject it ultimately denotes.
func (s *ValueState) resolveRef(ref *Ref) (*AbstractObject, bool) {
	target, ok := s.RefMap[ref]
	if !ok {
		return nil, false
	}
	for target.Object == nil && target.Ref != nil {
		target, ok = s.RefMap[target.Ref]
		if !ok {
			return nil, false
		}
	}
	if target.Object == nil {
		return nil, false
	}
	return target.Object, true
}

// Bottom returns a fresh, empty ValueState — the identity element for
// Join (an empty program_state/ref_map/children_map/object_state means
// "no information yet", so joining any state with it must leave that
// state unchanged; see the pointwise-union behavior of Join below).
func (s *ValueState) Bottom() Domain {
	return NewValueState()
}

// Join merges other into s in place (§4.6): pointwise over
// program_state/ref_map/children_map/object_state. A key present on
// only one side is copied in as-is, since Bottom (no entries) must act
// as Join's identity. A key present on both sides collapses when the
// two sides already agree (same Ref, or equal non-ref elements) and
// otherwise merges: two refs that resolve to different objects rebind
// to a fresh ref over a fresh object whose state is the join of the two
// originals' (§4.6 "ref join is structural... non-equivalent refs merge
// into a fresh ref whose referenced object is the join of the
// originals"); two non-ref elements join via their own Domain.Join.
// Refs resolving through a second indirection level, or a mismatch
// between a ref and a non-ref entry for the same value, fall back to
// dropping the entry (conservative "nothing known") — the same
// simplification already noted for this package's narrower-than-the-
// original scope (two-level ref-chain merging is not modeled).
func (s *ValueState) Join(other Domain) bool {
	o, ok := other.(*ValueState)
	if !ok {
		return false
	}
	changed := false

	for ref, target := range o.RefMap {
		if _, ok := s.RefMap[ref]; !ok {
			s.RefMap[ref] = target
			changed = true
		}
	}
	for obj, children := range o.ChildrenMap {
		if _, ok := s.ChildrenMap[obj]; !ok {
			s.ChildrenMap[obj] = append([]*AbstractObject(nil), children...)
			changed = true
		}
	}
	for obj, elem := range o.ObjectState {
		cur, ok := s.ObjectState[obj]
		if !ok {
			s.ObjectState[obj] = elem
			changed = true
			continue
		}
		merged := cloneState(cur)
		if merged.Join(elem) {
			s.ObjectState[obj] = merged
			changed = true
		}
	}

	for v, oe := range o.ProgramState {
		se, ok := s.ProgramState[v]
		if !ok {
			s.ProgramState[v] = oe
			changed = true
			continue
		}
		merged, didChange := s.joinElement(se, oe)
		if didChange {
			s.ProgramState[v] = merged
			changed = true
		}
	}

	if o.nextRef > s.nextRef {
		s.nextRef = o.nextRef
	}
	if o.nextObj > s.nextObj {
		s.nextObj = o.nextObj
	}
	return changed
}

// joinElement merges se (already tracked by s) with oe (tracked by the
// other side) for the same CHIR value, returning the merged element and
// whether it differs from se.
func (s *ValueState) joinElement(se, oe ValueElement) (ValueElement, bool) {
	switch {
	case se.IsRef && oe.IsRef:
		if se.Ref == oe.Ref {
			return se, false
		}
		sObj, sOk := s.resolveRef(se.Ref)
		oObj, oOk := s.resolveRef(oe.Ref)
		if !sOk || !oOk {
			return ValueElement{}, true
		}
		if sObj == oObj {
			return se, false
		}
		mergedObj := s.NewObject()
		sState, sHas := s.ObjectState[sObj]
		oState, oHas := s.ObjectState[oObj]
		switch {
		case sHas && oHas:
			merged := cloneState(sState)
			merged.Join(oState)
			s.ObjectState[mergedObj] = merged
		case sHas:
			s.ObjectState[mergedObj] = sState
		case oHas:
			s.ObjectState[mergedObj] = oState
		}
		ref := s.NewRef()
		s.RefMap[ref] = RefTarget{Object: mergedObj}
		return ValueElement{IsRef: true, Ref: ref}, true

	case !se.IsRef && !oe.IsRef:
		if se.Elem == nil || oe.Elem == nil {
			if se.Elem == oe.Elem {
				return se, false
			}
			return ValueElement{}, true
		}
		merged := cloneState(se.Elem)
		if !merged.Join(oe.Elem) {
			return se, false
		}
		return ValueElement{Elem: merged}, true

	default:
		return ValueElement{}, true
	}
}

// String renders program_state sorted by value identifier (never by Go's
// randomized map iteration order) so that two calls against an
// unchanged state always compare equal — engine.go's stateDiffers relies
// on exact string equality to detect the fixpoint.
func (s *ValueState) String() string {
	var b strings.Builder
	b.WriteString("ValueState{")
	keys := make([]ir.Value, 0, len(s.ProgramState))
	for v := range s.ProgramState {
		keys = append(keys, v)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Ident() < keys[j].Ident() })
	for i, v := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		e := s.ProgramState[v]
		b.WriteString(v.Ident())
		b.WriteString("=")
		if e.IsRef {
			if obj, ok := s.resolveRef(e.Ref); ok {
				b.WriteString(obj.Name)
			} else {
				b.WriteString(e.Ref.Name)
			}
		} else if e.Elem != nil {
			b.WriteString(e.Elem.String())
		} else {
			b.WriteString("?")
		}
	}
	b.WriteString("}")
	return b.String()
}

// GlobalState is the value analysis's process-wide state for the
// package's globals (§5: "Global analysis state... is initialized once
// per package before per-function analyses run, then read-only during
// those analyses; reads are lock-free"). Every global gets its own
// Ref/AbstractObject pair, built once up front, so every per-function
// analysis resolves a given global to the same object identity rather
// than each function minting its own.
type GlobalState struct {
	vs *ValueState
}

// NewGlobalState builds the read-only global state for pkg.
func NewGlobalState(pkg *ir.Package) *GlobalState {
	vs := NewValueState()
	for _, g := range pkg.Globals {
		vs.GetReferencedObj(g)
	}
	return &GlobalState{vs: vs}
}

// Object returns the AbstractObject tracking global, or (nil, false) if
// global is not one of the package's tracked globals.
func (g *GlobalState) Object(global ir.Value) (*AbstractObject, bool) {
	if g == nil {
		return nil, false
	}
	return g.vs.resolveObject(global)
}
