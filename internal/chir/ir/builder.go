package ir

import (
	"fmt"
	"sync"
)

// Builder is the sole allocator of types, values, blocks, block groups
// and expressions (§4.4). One Builder is used per package/translation
// unit; its type-interning cache is guarded by a mutex per instance
// (§5), matching the single-builder-per-thread model the source uses.
// Nodes it allocates remain valid for the lifetime of the package; the
// Builder never frees them — passes unlink, they don't delete (§3.6).
type Builder struct {
	mu        sync.Mutex
	typeCache map[string]*Type

	nextExprID   int
	nextBlockID  int
	nextValueSeq int
}

// NewBuilder creates a fresh, empty builder.
func NewBuilder() *Builder {
	return &Builder{typeCache: make(map[string]*Type)}
}

func (b *Builder) intern(key string, build func() *Type) *Type {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.typeCache[key]; ok {
		return t
	}
	t := build()
	t.key = key
	b.typeCache[key] = t
	return t
}

// GetPrimitiveType returns the interned instance for a primitive kind
// (bool, rune, unit, void, nothing, or a sized int/float kind).
func (b *Builder) GetPrimitiveType(kind TypeKind) *Type {
	key := "prim:" + kind.String()
	return b.intern(key, func() *Type { return &Type{Kind: kind, Len: -1} })
}

// GetRefType returns T& (depth 1) or T&& (depth 2). Depth is bounded by
// §3.1: a value type may only reach depth 1; a reference type (class,
// RawArray) may reach depth 2. The builder does not itself reject an
// out-of-range depth — that is the checker's job (§4.9) — so that
// intermediate, not-yet-checked IR can still be constructed.
func (b *Builder) GetRefType(elem *Type, depth int) *Type {
	key := fmt.Sprintf("ref:%d:%s", depth, elem.key)
	return b.intern(key, func() *Type {
		return &Type{Kind: KindRef, Elem: elem, RefDepth: depth, Len: -1}
	})
}

// GetTupleType returns the interned tuple type over elems.
func (b *Builder) GetTupleType(elems ...*Type) *Type {
	key := "tuple:"
	for _, e := range elems {
		key += e.key + ","
	}
	return b.intern(key, func() *Type {
		return &Type{Kind: KindTuple, Elems: append([]*Type(nil), elems...), Len: -1}
	})
}

// GetFuncType returns the interned function type. Cangjie-style
// functions may never carry a variadic tail (§3.1); only isC function
// types may set hasVarargs.
func (b *Builder) GetFuncType(params []*Type, ret *Type, isC, hasVarargs bool) *Type {
	key := fmt.Sprintf("func:%v:%v:%s:", isC, hasVarargs, ret.key)
	for _, p := range params {
		key += p.key + ","
	}
	return b.intern(key, func() *Type {
		return &Type{
			Kind: KindFunc, Elems: append([]*Type(nil), params...), Ret: ret,
			IsC: isC, HasVarargs: hasVarargs && isC, Len: -1,
		}
	})
}

// GetCustomType returns the interned (decl, type-args) custom type.
// Generic-argument arity must equal decl's generic-parameter arity
// (§3.1 invariant); mismatches are left for the checker to reject.
func (b *Builder) GetCustomType(decl *CustomDef, args []*Type) *Type {
	key := "custom:" + decl.MangledName + ":"
	for _, a := range args {
		key += a.key + ","
	}
	return b.intern(key, func() *Type {
		return &Type{Kind: KindCustom, Decl: decl, TypeArgs: append([]*Type(nil), args...), Len: -1}
	})
}

// GetRawArrayType returns RawArray<T>.
func (b *Builder) GetRawArrayType(elem *Type) *Type {
	key := "rawarray:" + elem.key
	return b.intern(key, func() *Type { return &Type{Kind: KindRawArray, Elem: elem, Len: -1} })
}

// GetVArrayType returns VArray<T, N>.
func (b *Builder) GetVArrayType(elem *Type, length int) *Type {
	key := fmt.Sprintf("varray:%d:%s", length, elem.key)
	return b.intern(key, func() *Type { return &Type{Kind: KindVArray, Elem: elem, Len: length} })
}

// GetCPointerType returns CPointer<T>.
func (b *Builder) GetCPointerType(elem *Type) *Type {
	key := "cpointer:" + elem.key
	return b.intern(key, func() *Type { return &Type{Kind: KindCPointer, Elem: elem, Len: -1} })
}

// GetCStringType returns the single interned CString type.
func (b *Builder) GetCStringType() *Type {
	return b.intern("cstring", func() *Type { return &Type{Kind: KindCString, Len: -1} })
}

// GetGenericType returns a generic type variable with the given name and
// upper bounds. Two generic variables with the same name but different
// upper-bound sets are NOT the same type (interning key includes bounds)
// since a two-stage substitution may legitimately mint fresh internal
// variables that shadow a user-visible name (§3.1).
func (b *Builder) GetGenericType(name string, upper []*Type) *Type {
	key := "generic:" + name + ":"
	for _, u := range upper {
		key += u.key + ","
	}
	return b.intern(key, func() *Type {
		return &Type{Kind: KindGeneric, GenericName: name, UpperBounds: append([]*Type(nil), upper...), Len: -1}
	})
}

// GetThisType returns the single interned "this" type placeholder.
func (b *Builder) GetThisType() *Type {
	return b.intern("this", func() *Type { return &Type{Kind: KindThis, Len: -1} })
}

// GetBoxType returns Box<T>, the reference-carrying wrapper the
// box-recursion-value-type pass (§4.8) introduces around value types
// that would otherwise have infinite layout.
func (b *Builder) GetBoxType(elem *Type) *Type {
	key := "box:" + elem.key
	return b.intern(key, func() *Type { return &Type{Kind: KindBox, Elem: elem, Len: -1} })
}

// --- Value construction -----------------------------------------------

func (b *Builder) nextIdent(prefix string) string {
	b.mu.Lock()
	b.nextValueSeq++
	n := b.nextValueSeq
	b.mu.Unlock()
	return fmt.Sprintf("%s%d", prefix, n)
}

// NewLocalIdent allocates a fresh, builder-unique local identifier (no
// "$" prefix; globals use NewGlobalIdent).
func (b *Builder) NewLocalIdent() string { return b.nextIdent("%") }

// NewGlobalIdent allocates a fresh, builder-unique global identifier.
// Global identifiers are prefixed ("$") so the local/global distinction
// is lexical, per §3.2.
func (b *Builder) NewGlobalIdent(name string) string { return "$" + name }

// NewLiteral constructs a LiteralValue. Literals have no users set until
// used as an operand.
func (b *Builder) NewLiteral(kind LiteralKind, typ *Type) *LiteralValue {
	return &LiteralValue{valueBase: valueBase{typ: typ, ident: b.NewLocalIdent()}, LitKind: kind}
}

// NewGlobalVar constructs a package-wide mutable cell.
func (b *Builder) NewGlobalVar(name, pkg string, typ *Type) *GlobalVar {
	return &GlobalVar{valueBase: valueBase{typ: typ, ident: b.NewGlobalIdent(name)}, Package: pkg}
}

// NewImportedValue constructs an opaque reference to another package's
// global.
func (b *Builder) NewImportedValue(name, pkg string, typ *Type) *ImportedValue {
	return &ImportedValue{valueBase: valueBase{typ: typ, ident: b.NewGlobalIdent(name)}, Package: pkg}
}

// NewParameter constructs a function/lambda parameter at the given
// index.
func (b *Builder) NewParameter(name string, typ *Type, index int) *Parameter {
	return &Parameter{valueBase: valueBase{typ: typ, ident: name}, Index: index}
}

// NewFunc constructs a global function and an (initially empty) body
// block group owned by it.
func (b *Builder) NewFunc(name, mangled, pkg string, params []*Parameter, ret *Type) *Func {
	f := &Func{
		valueBase:  valueBase{typ: nil, ident: b.NewGlobalIdent(mangled)},
		Name:       name,
		MangledName: mangled,
		Package:    pkg,
		Params:     params,
		ReturnType: ret,
	}
	paramTypes := make([]*Type, len(params))
	for i, p := range params {
		paramTypes[i] = p.Type()
	}
	f.typ = b.GetFuncType(paramTypes, ret, false, false)
	f.Body = &BlockGroup{OwnerFunc: f}
	return f
}

// NewImportedFunc constructs the imported mirror of a Func.
func (b *Builder) NewImportedFunc(name, mangled, pkg string, paramTypes []*Type, ret *Type) *ImportedFunc {
	return &ImportedFunc{
		valueBase:   valueBase{typ: b.GetFuncType(paramTypes, ret, false, false), ident: b.NewGlobalIdent(mangled)},
		Name:        name,
		MangledName: mangled,
		Package:     pkg,
		ParamTypes:  paramTypes,
		ReturnType:  ret,
	}
}

// --- Block / BlockGroup construction -----------------------------------

// CreateBlock allocates a fresh, empty block and adds it to group.
func (b *Builder) CreateBlock(group *BlockGroup, comment string) *Block {
	b.mu.Lock()
	b.nextBlockID++
	id := b.nextBlockID
	b.mu.Unlock()
	blk := &Block{id: id, Comment: comment}
	group.AddBlock(blk)
	return blk
}

// CreateBlockGroup allocates a fresh, empty block group owned by
// ownerFunc (and, for structured control, ownerExpr).
func (b *Builder) CreateBlockGroup(ownerFunc *Func, ownerExpr *Expr) *BlockGroup {
	return &BlockGroup{OwnerFunc: ownerFunc, OwnerExpr: ownerExpr}
}

func (b *Builder) newExprID() int {
	b.mu.Lock()
	b.nextExprID++
	id := b.nextExprID
	b.mu.Unlock()
	return id
}

// SplitBlock moves all expressions after expr into a new block,
// terminates the first half with a GoTo to the new block, and returns
// (first, second). first == expr's original block; second is freshly
// allocated into the same group (§4.4).
func (b *Builder) SplitBlock(expr *Expr) (first, second *Block) {
	first = expr.block
	second = b.CreateBlock(first.group, first.Comment+".split")

	idx := first.indexOf(expr)
	tail := append([]*Expr(nil), first.Exprs[idx+1:]...)
	first.Exprs = first.Exprs[:idx+1]

	for _, e := range tail {
		e.block = second
	}
	second.Exprs = tail

	if len(tail) > 0 {
		if t := tail[len(tail)-1]; t.IsTerminator() {
			for _, s := range t.Successors() {
				if s != nil {
					second.replaceSucc(first, second, s)
				}
			}
		}
	}

	goTo := b.createGoToRaw(second)
	first.append(goTo)
	addEdge(first, second)
	return first, second
}

// replaceSucc fixes up a moved terminator's successor's predecessor list
// to point at the block the terminator now lives in.
func (blk *Block) replaceSucc(oldParent, newParent, succ *Block) {
	succ.replacePred(oldParent, newParent)
}
