package ir

// Value is anything an expression can read as an operand (§3.2). Unlike
// the 50+ expression kinds, there are only seven value kinds, small and
// stable enough to model as a Go interface with one concrete type each —
// grounded on golang.org/x/tools/go/ssa's Value interface
// (other_examples/b41d490d_golang-tools__ssa-func.go.go), which does the
// same for an identically-shaped problem.
type Value interface {
	// Type returns the value's static type.
	Type() *Type
	// Ident returns the value's identifier. Global identifiers are
	// prefixed so the local/global distinction is lexical (§3.2).
	Ident() string
	// Users returns the set of expressions that read this value.
	Users() map[*Expr]struct{}

	addUser(e *Expr)
	removeUser(e *Expr)
}

// valueBase factors the use-def bookkeeping shared by every Value kind.
type valueBase struct {
	typ   *Type
	ident string
	users map[*Expr]struct{}
}

func (v *valueBase) Type() *Type { return v.typ }
func (v *valueBase) Ident() string { return v.ident }

func (v *valueBase) Users() map[*Expr]struct{} {
	if v.users == nil {
		return nil
	}
	return v.users
}

func (v *valueBase) addUser(e *Expr) {
	if v.users == nil {
		v.users = make(map[*Expr]struct{})
	}
	v.users[e] = struct{}{}
}

func (v *valueBase) removeUser(e *Expr) {
	delete(v.users, e)
}

// LiteralKind tags the payload carried by a LiteralValue.
type LiteralKind uint8

const (
	LitBool LiteralKind = iota
	LitRune
	LitInt
	LitFloat
	LitString
	LitUnit
	LitNull
)

// LiteralValue is a compile-time constant (§3.2).
type LiteralValue struct {
	valueBase
	LitKind LiteralKind
	Bool    bool
	Rune    rune
	Int     int64
	Float   float64
	Str     string
}

// GlobalVar is a program-wide mutable cell, optionally backed by an
// initializer expression or a package-init function (§3.2).
type GlobalVar struct {
	valueBase
	InitExpr *Expr
	InitFunc *Func
	Package  string
}

// ImportedValue is an opaque reference to a symbol defined in another
// package (§3.2); the defining package never sees its body.
type ImportedValue struct {
	valueBase
	Package string
}

// Parameter is owned by a Func or a Lambda expression (§3.2).
type Parameter struct {
	valueBase
	Index int
}

// LocalVar is the (at most one) result produced by an expression (§3.2,
// §3.3). Its DefiningExpr is the unique defining expression; every other
// appearance of the LocalVar in the graph is a use.
type LocalVar struct {
	valueBase
	DefiningExpr *Expr
}

// Func is a global function carrying its own body as a BlockGroup
// (§3.2). Every top-level function identifier is globally unique within
// a package (§3.3 invariant).
type Func struct {
	valueBase
	Name          string
	MangledName   string
	Package       string
	Params        []*Parameter
	ReturnType    *Type
	Body          *BlockGroup
	GenericParams []GenericParam

	IsCFunc      bool
	NoInline     bool
	IsOperator   bool
	IsPackageInit bool
	IsMacro      bool

	// IsConstructor marks a method of ParentDef that initializes a new
	// instance; the var-init analysis (§4.7) only runs its member-var
	// bit layout inside a constructor.
	IsConstructor bool

	// ParentDef, when non-nil, is the class/struct/enum/extend this
	// function is a method of.
	ParentDef *CustomDef
}

// ImportedFunc mirrors Func for a function defined in another package;
// it carries a signature but no body.
type ImportedFunc struct {
	valueBase
	Name        string
	MangledName string
	Package     string
	ParamTypes  []*Type
	ReturnType  *Type
	IsCFunc     bool
	ParentDef   *CustomDef
}

var (
	_ Value = (*LiteralValue)(nil)
	_ Value = (*GlobalVar)(nil)
	_ Value = (*ImportedValue)(nil)
	_ Value = (*Parameter)(nil)
	_ Value = (*LocalVar)(nil)
	_ Value = (*Func)(nil)
	_ Value = (*ImportedFunc)(nil)
)
