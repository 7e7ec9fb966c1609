package ir

import "sync"

// IsEqualOrSubtypeOf implements nominal subtyping over the class/
// interface hierarchy (including across extensions) with invariant type
// arguments, plus the structural rules Nothing <: T, T <: Any, and
// T& <: T& only for identical T (§4.1). Cycles in the hierarchy walk are
// broken by a visited set.
func (b *Builder) IsEqualOrSubtypeOf(sub, sup *Type) bool {
	return b.isSubtype(sub, sup, make(map[*Type]bool))
}

func (b *Builder) isSubtype(sub, sup *Type, visited map[*Type]bool) bool {
	if sub == sup {
		return true
	}
	if sub.Kind == KindNothing {
		return true
	}
	if sup.Kind == KindAny {
		return true
	}
	if sub.Kind == KindRef || sup.Kind == KindRef {
		// References are invariant: only identical interned types match,
		// already handled by sub == sup above.
		return false
	}
	if sub.Kind != KindCustom || sup.Kind != KindCustom {
		return false
	}
	if sub.Decl == nil || sup.Decl == nil {
		return false
	}
	if visited[sub] {
		return false
	}
	visited[sub] = true

	if sub.Decl == sup.Decl {
		if len(sub.TypeArgs) != len(sup.TypeArgs) {
			return false
		}
		for i := range sub.TypeArgs {
			if sub.TypeArgs[i] != sup.TypeArgs[i] { // invariant type args
				return false
			}
		}
		return true
	}

	if sub.Decl.SuperType != nil {
		if b.isSubtype(b.instantiateThroughDecl(sub, sub.Decl.SuperType), sup, visited) {
			return true
		}
	}
	for _, iface := range sub.Decl.Interfaces {
		if b.isSubtype(b.instantiateThroughDecl(sub, iface), sup, visited) {
			return true
		}
	}
	// Extensions may add interface conformances to sub.Decl's type; the
	// extend def itself is not part of the class hierarchy walk, only
	// its AddedInterfaces are (§3.4 Extend def).
	for _, ext := range allSupersCache.extendsOf(sub.Decl) {
		for _, iface := range ext.AddedInterfaces {
			if b.isSubtype(b.instantiateThroughDecl(sub, iface), sup, visited) {
				return true
			}
		}
	}
	return false
}

// instantiateThroughDecl substitutes sub.Decl's generic parameters with
// sub's actual type arguments inside target (e.g. to walk from a
// generic class's declared SuperType to its instantiated form).
func (b *Builder) instantiateThroughDecl(sub *Type, target *Type) *Type {
	if sub.Decl == nil || len(sub.Decl.GenericParams) == 0 {
		return target
	}
	s := make(Subst, len(sub.Decl.GenericParams))
	for i, gp := range sub.Decl.GenericParams {
		if i < len(sub.TypeArgs) {
			s[gp.Name] = sub.TypeArgs[i]
		}
	}
	return b.GetInstantiatedTy(target, s)
}

// GetFieldOfType returns the type of the index-th tuple element, struct
// or class field, or raw-array element, or (nil, false) if index is out
// of range or t has no such projection (§4.1). For an enum type it
// always returns (nil, false): index 0 is the constructor selector, and
// payload component types depend on the constructor, which t alone does
// not name, so they are not resolved here.
func GetFieldOfType(t *Type, index int) (*Type, bool) {
	switch t.Kind {
	case KindTuple:
		if index < 0 || index >= len(t.Elems) {
			return nil, false
		}
		return t.Elems[index], true
	case KindCustom:
		if t.Decl == nil {
			return nil, false
		}
		switch t.Decl.Kind {
		case DeclStruct, DeclClass:
			if index < 0 || index >= len(t.Decl.Members) {
				return nil, false
			}
			return t.Decl.Members[index].Type, true
		case DeclEnum:
			// index 0 is the selector; treat as UInt32 here, payload
			// components beyond are constructor-specific and resolved
			// by the caller against a specific EnumCtor.
			if index == 0 {
				return nil, false
			}
		}
		return nil, false
	case KindRawArray:
		return t.Elem, true
	case KindVArray:
		if index < 0 || index >= t.Len {
			return nil, false
		}
		return t.Elem, true
	default:
		return nil, false
	}
}

// allSupersCache is a process-wide index from a CustomDef to the Extend
// defs that target it, guarded by a mutex per §5 ("the 'all supers'
// cache inside the type system is protected by a mutex") since checker
// passes may query it concurrently across definitions while later
// extends are still being registered.
var allSupersCache = newExtendIndex()

type extendIndex struct {
	mu       sync.Mutex
	byTarget map[*CustomDef][]*CustomDef
}

func newExtendIndex() *extendIndex { return &extendIndex{byTarget: make(map[*CustomDef][]*CustomDef)} }

// RegisterExtend indexes ext (an Extend def) under the decl of the type
// it extends, so subtype queries can find interfaces it adds.
func RegisterExtend(ext *CustomDef) {
	if ext.Kind != DeclExtend || ext.ExtendedType == nil || ext.ExtendedType.Decl == nil {
		return
	}
	target := ext.ExtendedType.Decl
	allSupersCache.mu.Lock()
	allSupersCache.byTarget[target] = append(allSupersCache.byTarget[target], ext)
	allSupersCache.mu.Unlock()
}

func (idx *extendIndex) extendsOf(d *CustomDef) []*CustomDef {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.byTarget[d]
}
