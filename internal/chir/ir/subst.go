package ir

// Subst is a type substitution: a total function from a finite set of
// generic variables (by name) to types (§3.1).
type Subst map[string]*Type

// MultiSubst maps each generic variable to a non-empty set of candidate
// types, used during overload resolution/inference when more than one
// binding is consistent with the call site (§3.1, GLOSSARY MultiTypeSubst).
type MultiSubst map[string][]*Type

// GetInstantiatedTy applies s to t and re-interns the result (§4.1).
// Generic variables not present in s are left unchanged.
func (b *Builder) GetInstantiatedTy(t *Type, s Subst) *Type {
	if len(s) == 0 {
		return t
	}
	switch t.Kind {
	case KindGeneric:
		if repl, ok := s[t.GenericName]; ok {
			return repl
		}
		return t
	case KindRef:
		return b.GetRefType(b.GetInstantiatedTy(t.Elem, s), t.RefDepth)
	case KindBox:
		return b.GetBoxType(b.GetInstantiatedTy(t.Elem, s))
	case KindCPointer:
		return b.GetCPointerType(b.GetInstantiatedTy(t.Elem, s))
	case KindRawArray:
		return b.GetRawArrayType(b.GetInstantiatedTy(t.Elem, s))
	case KindVArray:
		return b.GetVArrayType(b.GetInstantiatedTy(t.Elem, s), t.Len)
	case KindTuple:
		elems := make([]*Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = b.GetInstantiatedTy(e, s)
		}
		return b.GetTupleType(elems...)
	case KindFunc:
		params := make([]*Type, len(t.Elems))
		for i, e := range t.Elems {
			params[i] = b.GetInstantiatedTy(e, s)
		}
		return b.GetFuncType(params, b.GetInstantiatedTy(t.Ret, s), t.IsC, t.HasVarargs)
	case KindCustom:
		if len(t.TypeArgs) == 0 {
			return t
		}
		args := make([]*Type, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			args[i] = b.GetInstantiatedTy(a, s)
		}
		return b.GetCustomType(t.Decl, args)
	default:
		return t
	}
}

// TwoStageSubst maps user-visible generics to fresh internal variables
// (U2I), then those internal variables to concrete types (Inst). It is
// the canonical form for cross-extension instantiation so a single user
// variable may receive different concrete bindings at different use
// sites without aliasing (§3.1).
type TwoStageSubst struct {
	U2I  Subst // user generic name -> fresh internal Type (KindGeneric)
	Inst Subst // internal generic name -> concrete Type
}

// Apply runs both stages of s against t.
func (b *Builder) Apply(s TwoStageSubst, t *Type) *Type {
	return b.GetInstantiatedTy(b.GetInstantiatedTy(t, s.U2I), s.Inst)
}

// FreeVarNames returns the set of generic-variable names still free in t
// (i.e. not eliminated by any substitution applied so far).
func FreeVarNames(t *Type) map[string]bool {
	out := make(map[string]bool)
	collectFreeVars(t, out)
	return out
}

func collectFreeVars(t *Type, out map[string]bool) {
	if t == nil {
		return
	}
	switch t.Kind {
	case KindGeneric:
		out[t.GenericName] = true
	case KindRef, KindBox, KindCPointer, KindRawArray, KindVArray:
		collectFreeVars(t.Elem, out)
	case KindTuple:
		for _, e := range t.Elems {
			collectFreeVars(e, out)
		}
	case KindFunc:
		for _, e := range t.Elems {
			collectFreeVars(e, out)
		}
		collectFreeVars(t.Ret, out)
	case KindCustom:
		for _, a := range t.TypeArgs {
			collectFreeVars(a, out)
		}
	}
}

// MultiTypeSubstUtils mirrors the source's free function bundle over
// MultiSubst (§4.1 "Substitution utilities").
type MultiTypeSubstUtils struct{ b *Builder }

// NewMultiTypeSubstUtils binds the utilities to the builder whose
// interning they must go through.
func NewMultiTypeSubstUtils(b *Builder) MultiTypeSubstUtils { return MultiTypeSubstUtils{b: b} }

// ToSingleSubst converts a multi-substitution to a single Subst by
// picking, for each variable, the first candidate that is not the
// variable's own generic type (a "non-self" candidate) — self-candidates
// arise when inference couldn't narrow a variable beyond its own
// declaration and would otherwise create a trivial identity loop.
func (u MultiTypeSubstUtils) ToSingleSubst(ms MultiSubst) Subst {
	out := make(Subst, len(ms))
	for name, candidates := range ms {
		for _, c := range candidates {
			if !(c.Kind == KindGeneric && c.GenericName == name) {
				out[name] = c
				break
			}
		}
		if _, ok := out[name]; !ok && len(candidates) > 0 {
			out[name] = candidates[0]
		}
	}
	return out
}

// ExpandMultiSubst expands ms into the finite set of consistent single
// substitutions: the cartesian product over each variable's candidate
// set, used when multiple extensions could match the same call (§4.1).
func (u MultiTypeSubstUtils) ExpandMultiSubst(ms MultiSubst) []Subst {
	names := make([]string, 0, len(ms))
	for name := range ms {
		names = append(names, name)
	}
	results := []Subst{{}}
	for _, name := range names {
		candidates := ms[name]
		var next []Subst
		for _, partial := range results {
			for _, c := range candidates {
				clone := make(Subst, len(partial)+1)
				for k, v := range partial {
					clone[k] = v
				}
				clone[name] = c
				next = append(next, clone)
			}
		}
		results = next
	}
	return results
}

// FilterUnused drops mappings from s whose variable is not reachable
// from any type in used (§4.1).
func (u MultiTypeSubstUtils) FilterUnused(s Subst, used []*Type) Subst {
	reachable := make(map[string]bool)
	for _, t := range used {
		for name := range FreeVarNames(t) {
			reachable[name] = true
		}
	}
	out := make(Subst, len(s))
	for name, t := range s {
		if reachable[name] {
			out[name] = t
		}
	}
	return out
}

// HasCycle detects a cyclic substitution: a variable whose replacement,
// transitively, contains itself again (§4.1 "detect cyclic substitutions
// before applying").
func (u MultiTypeSubstUtils) HasCycle(s Subst) bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(s))
	var visit func(name string) bool
	visit = func(name string) bool {
		switch color[name] {
		case gray:
			return true
		case black:
			return false
		}
		color[name] = gray
		t, ok := s[name]
		if ok {
			for dep := range FreeVarNames(t) {
				if dep == name {
					return true
				}
				if _, bound := s[dep]; bound && visit(dep) {
					return true
				}
			}
		}
		color[name] = black
		return false
	}
	for name := range s {
		if visit(name) {
			return true
		}
	}
	return false
}

// PrivateTypeConverter adjusts a type substitution when instantiating a
// private/nested type across an extension boundary: it rewrites any
// KindThis occurrence in t to the extension's ExtendedType (the concrete
// receiver type the extension applies to), then applies s as normal
// (supplemented from original_source/src/CHIR/Type/PrivateTypeConverter.cpp,
// a feature the distilled spec does not name but does not exclude).
func (b *Builder) PrivateTypeConverter(extendedType *Type, s Subst, t *Type) *Type {
	return b.GetInstantiatedTy(b.replaceThis(t, extendedType), s)
}

func (b *Builder) replaceThis(t *Type, with *Type) *Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KindThis:
		return with
	case KindRef:
		return b.GetRefType(b.replaceThis(t.Elem, with), t.RefDepth)
	case KindBox:
		return b.GetBoxType(b.replaceThis(t.Elem, with))
	case KindCPointer:
		return b.GetCPointerType(b.replaceThis(t.Elem, with))
	case KindRawArray:
		return b.GetRawArrayType(b.replaceThis(t.Elem, with))
	case KindVArray:
		return b.GetVArrayType(b.replaceThis(t.Elem, with), t.Len)
	case KindTuple:
		elems := make([]*Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = b.replaceThis(e, with)
		}
		return b.GetTupleType(elems...)
	case KindFunc:
		params := make([]*Type, len(t.Elems))
		for i, e := range t.Elems {
			params[i] = b.replaceThis(e, with)
		}
		return b.GetFuncType(params, b.replaceThis(t.Ret, with), t.IsC, t.HasVarargs)
	case KindCustom:
		if len(t.TypeArgs) == 0 {
			return t
		}
		args := make([]*Type, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			args[i] = b.replaceThis(a, with)
		}
		return b.GetCustomType(t.Decl, args)
	default:
		return t
	}
}
