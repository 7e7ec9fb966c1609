package ir

// DeclKind tags the kind of custom type definition a package can declare.
// Grounded on the teacher's split of AST nodes across classes.go / enums.go
// / interfaces.go, generalized into one CustomDef since CHIR, unlike the
// surface AST, needs a single nominal-subtyping target type (§4.1).
type DeclKind uint8

const (
	DeclClass DeclKind = iota
	DeclStruct
	DeclEnum
	DeclExtend
)

func (k DeclKind) String() string {
	switch k {
	case DeclClass:
		return "class"
	case DeclStruct:
		return "struct"
	case DeclEnum:
		return "enum"
	case DeclExtend:
		return "extend"
	default:
		return "unknown"
	}
}

// Visibility mirrors the teacher's internal/ast.Visibility (private /
// protected / public) one-to-one; member access control is unchanged by
// the lowering into CHIR.
type Visibility uint8

const (
	VisibilityPrivate Visibility = iota
	VisibilityProtected
	VisibilityPublic
)

// MemberVar is a direct or static member variable of a custom def: name,
// type and declaration attributes (§3.4).
type MemberVar struct {
	Name       string
	Type       *Type
	Visibility Visibility
	IsStatic   bool
	IsReadonly bool
}

// EnumCtor is one constructor of an enum def: a (possibly nullary) tagged
// variant with a mangled identifier and the function type used to build
// it (payload types as parameters, the enum's own type as return).
type EnumCtor struct {
	Name       string
	MangledName string
	FuncType   *Type
}

// VTableSlot is one entry of a v-table for a given parent class/interface
// type: slot i of a child must match slot i of the parent by source name
// and compatible signature (§3.4). Instance is nil for an abstract slot,
// which is legal only on an abstract def (interface, abstract class, or
// extension).
type VTableSlot struct {
	SrcName      string
	SigType      *Type // instantiated signature as seen through this parent
	OriginalType *Type // signature as originally declared
	ReturnType   *Type
	ParentType   *Type
	Instance     *Func // nil => abstract slot
	Attr         MemberVar
}

// VTable is the per-parent-type slot list for one CustomDef.
type VTable struct {
	// Slots maps a parent class/interface type's canonical string key to
	// its ordered slot list.
	Slots map[string][]VTableSlot
}

func newVTable() *VTable { return &VTable{Slots: make(map[string][]VTableSlot)} }

// SlotsFor returns the v-table slots inherited from/implementing parent.
func (vt *VTable) SlotsFor(parent *Type) []VTableSlot {
	if vt == nil || parent == nil {
		return nil
	}
	return vt.Slots[parent.key]
}

// SetSlotsFor installs (or replaces) the slot list for parent.
func (vt *VTable) SetSlotsFor(parent *Type, slots []VTableSlot) {
	vt.Slots[parent.key] = slots
}

// CustomDef is a class, struct, enum or extension declaration (§3.4).
// Every custom type in the IR names one CustomDef via Type.Decl.
type CustomDef struct {
	Name         string // source-code identifier
	MangledName  string
	Package      string
	GenericParams []GenericParam

	Members       []MemberVar
	StaticMembers []MemberVar
	Methods       []*Func // each is a Func or ImportedFunc
	VTable        *VTable

	Kind DeclKind

	// Class-only.
	SuperType       *Type
	Interfaces      []*Type
	Finalizer       *Func
	AbstractMethods []*Func
	IsInterface     bool
	IsAbstract      bool

	// Struct-only.
	IsCStruct bool

	// Enum-only.
	Ctors          []EnumCtor
	NonExhaustive  bool

	// Extend-only.
	ExtendedType     *Type
	AddedInterfaces  []*Type

	// Synthetic instance field added by the "mark class has inited" pass
	// (§4.3 Finalizer guard); non-empty name once the pass has run.
	HasInitedField string
}

// GenericParam is one generic parameter of a custom def or function, with
// its upper-bound constraint types.
type GenericParam struct {
	Name  string
	Upper []*Type
}

// IsTrivial reports whether an enum def's constructors all take zero
// parameters, meaning its runtime representation is a plain UInt32 tag.
func (d *CustomDef) IsTrivial() bool {
	if d.Kind != DeclEnum {
		return false
	}
	for _, c := range d.Ctors {
		if len(c.FuncType.Elems) > 0 {
			return false
		}
	}
	return true
}

// FindMethod looks up a method by its source name among this def's own
// methods (not inherited ones; callers walk SuperType themselves).
func (d *CustomDef) FindMethod(name string) *Func {
	for _, m := range d.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}
