package ir

// Phase identifies where a Package sits in the fixed pipeline
// RAW -> PLUGIN -> ANALYSIS -> OPT (§2, §4.9). The checker gates rules by
// `phase >= P` so earlier phases tolerate invariants later phases
// require (e.g. GetInstantiateValue is legal only before OPT).
type Phase uint8

const (
	PhaseRaw Phase = iota
	PhasePlugin
	PhaseAnalysisForLint
	PhaseOpt
)

func (p Phase) String() string {
	switch p {
	case PhaseRaw:
		return "RAW"
	case PhasePlugin:
		return "PLUGIN"
	case PhaseAnalysisForLint:
		return "ANALYSIS_FOR_CJLINT"
	case PhaseOpt:
		return "OPT"
	default:
		return "UNKNOWN"
	}
}

// AccessLevel is a package's visibility to other packages (§3.5).
type AccessLevel uint8

const (
	AccessPrivate AccessLevel = iota
	AccessProtected
	AccessPublic
)

// Package is the top-level compilation unit (§3.5, §6 external
// interface). The middle-end receives one constructed Package, mutates
// it in place through PLUGIN/ANALYSIS/OPT, and returns it — or an error
// list if the checker rejects it.
type Package struct {
	Name   string
	Access AccessLevel
	Phase  Phase

	Builder *Builder

	Globals   []*GlobalVar
	Functions []*Func

	Classes    []*CustomDef
	Structs    []*CustomDef
	Enums      []*CustomDef
	Extensions []*CustomDef

	ImportedValues []*ImportedValue
	ImportedFuncs  []*ImportedFunc
	ImportedClasses []*CustomDef
	ImportedStructs []*CustomDef
	ImportedEnums   []*CustomDef

	PackageInitFunc *Func
}

// NewPackage creates an empty package bound to b.
func NewPackage(b *Builder, name string, access AccessLevel) *Package {
	return &Package{Name: name, Access: access, Builder: b, Phase: PhaseRaw}
}

// AllCustomDefs returns every own (non-imported) custom def in
// declaration order: classes, then structs, then enums, then extensions.
func (p *Package) AllCustomDefs() []*CustomDef {
	out := make([]*CustomDef, 0, len(p.Classes)+len(p.Structs)+len(p.Enums)+len(p.Extensions))
	out = append(out, p.Classes...)
	out = append(out, p.Structs...)
	out = append(out, p.Enums...)
	out = append(out, p.Extensions...)
	return out
}

// AllFunctions returns every free function, package-init included;
// custom-def methods are reached through AllCustomDefs.
func (p *Package) AllFunctions() []*Func {
	out := append([]*Func(nil), p.Functions...)
	if p.PackageInitFunc != nil {
		out = append(out, p.PackageInitFunc)
	}
	return out
}
