// Package ir implements the typed, SSA-like value/expression graph that
// sits between AST lowering and the bytecode/codegen backends: types,
// values, expressions, blocks, block groups, custom-type definitions and
// the builder that allocates and interns all of them.
//
// Mirrors the structure of a single flat "core graph" package the way
// golang.org/x/tools/go/ssa keeps Function, BasicBlock and Instruction
// together in one package — the pieces are too tightly coupled (cyclic
// use-def and predecessor/successor edges) to separate cleanly.
package ir

import (
	"fmt"
	"strings"
)

// TypeKind tags the variant a Type value holds. Kept as a flat tagged
// union (a single Type struct with a Kind discriminator) rather than one
// Go type per kind: the spec calls for exhaustive-match ergonomics over
// 50+ cases, and a tag + switch gives that without an interface per leaf.
type TypeKind uint8

const (
	KindInvalid TypeKind = iota

	// Primitive integers, sized signed/unsigned plus native width.
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindIntNative
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindUIntNative

	KindFloat16
	KindFloat32
	KindFloat64

	KindBool
	KindRune // unicode scalar value
	KindUnit
	KindVoid
	KindNothing
	KindAny // top of the nominal hierarchy; every type is a structural subtype of Any

	// Compound.
	KindTuple
	KindFunc
	KindRef // T& (Depth 1) or T&& (Depth 2, class vars only)

	KindCustom // (decl, type-args): class | struct | enum | extend

	KindRawArray
	KindVArray
	KindCPointer
	KindCString

	KindGeneric // generic type variable with upper bounds
	KindThis    // "this" type, resolved to the enclosing custom def
	KindBox     // Box<T>: reference-carrying wrapper around a value type
)

func (k TypeKind) String() string {
	switch k {
	case KindInt8:
		return "Int8"
	case KindInt16:
		return "Int16"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindIntNative:
		return "IntNative"
	case KindUInt8:
		return "UInt8"
	case KindUInt16:
		return "UInt16"
	case KindUInt32:
		return "UInt32"
	case KindUInt64:
		return "UInt64"
	case KindUIntNative:
		return "UIntNative"
	case KindFloat16:
		return "Float16"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindBool:
		return "Bool"
	case KindRune:
		return "Rune"
	case KindUnit:
		return "Unit"
	case KindVoid:
		return "Void"
	case KindNothing:
		return "Nothing"
	case KindAny:
		return "Any"
	case KindTuple:
		return "Tuple"
	case KindFunc:
		return "Func"
	case KindRef:
		return "Ref"
	case KindCustom:
		return "Custom"
	case KindRawArray:
		return "RawArray"
	case KindVArray:
		return "VArray"
	case KindCPointer:
		return "CPointer"
	case KindCString:
		return "CString"
	case KindGeneric:
		return "Generic"
	case KindThis:
		return "This"
	case KindBox:
		return "Box"
	default:
		return "Invalid"
	}
}

// Type is an interned, structurally-equal-implies-identical type value.
// All construction happens through Builder.GetType* so equal types always
// share one *Type instance (S8.4: type interning).
type Type struct {
	Kind TypeKind

	// KindRef / KindBox / KindCPointer / KindRawArray: element type.
	Elem *Type
	// KindRef: indirection depth, 1 (T&) or 2 (T&&, class-var only).
	RefDepth int

	// KindTuple: element types. KindFunc: parameter types.
	Elems []*Type
	// KindFunc: return type.
	Ret *Type
	// KindFunc: is this a C function pointer type.
	IsC bool
	// KindFunc: C functions may carry a variadic tail; Cangjie-style
	// functions in this IR may never be variadic.
	HasVarargs bool

	// KindCustom: the declaration this type names plus its instantiation.
	Decl     *CustomDef
	TypeArgs []*Type

	// KindVArray: static length; -1 means "not applicable" (RawArray is
	// unbounded and uses KindRawArray instead).
	Len int

	// KindGeneric: the user-visible or two-stage-internal variable name,
	// plus its upper bounds.
	GenericName string
	UpperBounds []*Type

	key string // canonical interning key, computed once at construction
}

// String renders a debug form; not used for interning (that's the `key`).
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindRef:
		return t.Elem.String() + strings.Repeat("&", t.RefDepth)
	case KindBox:
		return "Box<" + t.Elem.String() + ">"
	case KindCPointer:
		return "CPointer<" + t.Elem.String() + ">"
	case KindCString:
		return "CString"
	case KindRawArray:
		return "RawArray<" + t.Elem.String() + ">"
	case KindVArray:
		return fmt.Sprintf("VArray<%s, %d>", t.Elem, t.Len)
	case KindTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindFunc:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		prefix := "func"
		if t.IsC {
			prefix = "CFunc"
		}
		return fmt.Sprintf("%s(%s)->%s", prefix, strings.Join(parts, ", "), t.Ret)
	case KindCustom:
		name := "<unbound>"
		if t.Decl != nil {
			name = t.Decl.Name
		}
		if len(t.TypeArgs) == 0 {
			return name
		}
		parts := make([]string, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			parts[i] = a.String()
		}
		return name + "<" + strings.Join(parts, ", ") + ">"
	case KindGeneric:
		return t.GenericName
	case KindThis:
		return "This"
	default:
		return t.Kind.String()
	}
}

// IsValueType reports whether t is passed/stored by value rather than by
// reference. Class types, references, RawArray, CPointer and CString are
// reference types; everything else (struct, enum, primitives, tuple) is
// a value type.
func (t *Type) IsValueType() bool {
	switch t.Kind {
	case KindRef, KindRawArray, KindCPointer, KindCString:
		return false
	case KindCustom:
		if t.Decl == nil {
			return true
		}
		return t.Decl.Kind != DeclClass
	default:
		return true
	}
}

// StripAllRefs removes leading T& layers until a non-reference remains.
// Idempotent (S8.5): StripAllRefs(StripAllRefs(t)) == StripAllRefs(t).
func StripAllRefs(t *Type) *Type {
	for t != nil && t.Kind == KindRef {
		t = t.Elem
	}
	return t
}
