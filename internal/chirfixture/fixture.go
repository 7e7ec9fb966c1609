// Package chirfixture loads a small YAML/JSON description of a CHIR
// package into an in-memory *ir.Package, for `chirc`'s own local
// testing/driving of the pipeline (§1 ambient stack: "since real AST
// lowering is out of scope"). A fixture names a package plus a list of
// functions, each with a primitive return type and a flat body
// expressed as a tiny stack machine (const/alloc/store/load/dup/exit) —
// enough to build the small functions the middle-end's own pass tests
// already hand-construct with *ir.Builder directly, without requiring a
// real front end.
package chirfixture

import (
	"fmt"
	"strconv"

	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chirconfig"
	"github.com/goccy/go-yaml"
)

// Doc is a fixture file's top-level shape. YAML and JSON are both valid
// input: goccy/go-yaml accepts JSON as a (syntactic) subset of YAML.
type Doc struct {
	Package   string     `yaml:"package"`
	Level     string     `yaml:"level"`
	Functions []FuncSpec `yaml:"functions"`
}

// FuncSpec describes one function: its signature and its body's stack-
// machine program.
type FuncSpec struct {
	Name    string `yaml:"name"`
	Mangled string `yaml:"mangled"`
	Return  string `yaml:"return"`
	Body    []Step `yaml:"body"`
}

// Step is one stack-machine instruction. Value/Name are interpreted
// per Op: Value holds a literal's text form for const_int/const_bool or
// a type name for alloc; Name holds alloc's debug symbol. store consumes
// both its ref and value operands the way a real Store expression does
// — dup the ref first if a later load needs it.
type Step struct {
	Op    string `yaml:"op"`
	Value string `yaml:"value"`
	Name  string `yaml:"name"`
}

// Load parses data as a fixture document and builds the *ir.Package and
// *chirconfig.Options it describes.
func Load(data []byte) (*ir.Package, *chirconfig.Options, error) {
	var doc Doc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("chirfixture: parse: %w", err)
	}

	pkgName := doc.Package
	if pkgName == "" {
		pkgName = "main"
	}

	b := ir.NewBuilder()
	pkg := ir.NewPackage(b, pkgName, ir.AccessPublic)

	for _, fs := range doc.Functions {
		fn, err := buildFunc(b, pkgName, fs)
		if err != nil {
			return nil, nil, err
		}
		pkg.Functions = append(pkg.Functions, fn)
	}

	opts := chirconfig.New(levelFromString(doc.Level))
	return pkg, opts, nil
}

func levelFromString(s string) chirconfig.OptLevel {
	switch s {
	case "O1":
		return chirconfig.O1
	case "O2":
		return chirconfig.O2
	case "Os":
		return chirconfig.Os
	default:
		return chirconfig.O0
	}
}

var primitiveNames = map[string]ir.TypeKind{
	"Int8": ir.KindInt8, "Int16": ir.KindInt16, "Int32": ir.KindInt32, "Int64": ir.KindInt64,
	"UInt8": ir.KindUInt8, "UInt16": ir.KindUInt16, "UInt32": ir.KindUInt32, "UInt64": ir.KindUInt64,
	"Float32": ir.KindFloat32, "Float64": ir.KindFloat64,
	"Bool": ir.KindBool, "Unit": ir.KindUnit, "Rune": ir.KindRune,
}

func typeFromName(b *ir.Builder, name string) (*ir.Type, error) {
	if name == "" {
		return b.GetPrimitiveType(ir.KindUnit), nil
	}
	kind, ok := primitiveNames[name]
	if !ok {
		return nil, fmt.Errorf("chirfixture: unknown primitive type %q", name)
	}
	return b.GetPrimitiveType(kind), nil
}

// buildFunc lowers fs's stack-machine body onto a single entry block,
// the same shape this middle-end's own pass tests hand-build with
// *ir.Builder calls directly (see e.g. transform/lambdainline_test.go).
func buildFunc(b *ir.Builder, pkgName string, fs FuncSpec) (*ir.Func, error) {
	retTy, err := typeFromName(b, fs.Return)
	if err != nil {
		return nil, fmt.Errorf("chirfixture: function %s: %w", fs.Name, err)
	}

	mangled := fs.Mangled
	if mangled == "" {
		mangled = fs.Name
	}
	fn := b.NewFunc(fs.Name, mangled, pkgName, nil, retTy)
	entry := b.CreateBlock(fn.Body, "entry")

	var stack []ir.Value
	pop := func() (ir.Value, error) {
		if len(stack) == 0 {
			return nil, fmt.Errorf("chirfixture: function %s: stack underflow", fs.Name)
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}

	for _, st := range fs.Body {
		switch st.Op {
		case "const_int":
			n, perr := strconv.ParseInt(st.Value, 10, 64)
			if perr != nil {
				return nil, fmt.Errorf("chirfixture: function %s: const_int: %w", fs.Name, perr)
			}
			i64 := b.GetPrimitiveType(ir.KindInt64)
			lit := b.NewLiteral(ir.LitInt, i64)
			lit.Int = n
			stack = append(stack, b.CreateConstant(entry, lit).Result())
		case "const_bool":
			v, perr := strconv.ParseBool(st.Value)
			if perr != nil {
				return nil, fmt.Errorf("chirfixture: function %s: const_bool: %w", fs.Name, perr)
			}
			boolTy := b.GetPrimitiveType(ir.KindBool)
			lit := b.NewLiteral(ir.LitBool, boolTy)
			lit.Bool = v
			stack = append(stack, b.CreateConstant(entry, lit).Result())
		case "alloc":
			ty, terr := typeFromName(b, st.Value)
			if terr != nil {
				return nil, fmt.Errorf("chirfixture: function %s: %w", fs.Name, terr)
			}
			name := st.Name
			if name == "" {
				name = "tmp"
			}
			stack = append(stack, b.CreateAllocate(entry, ty, name).Result())
		case "store":
			val, perr := pop()
			if perr != nil {
				return nil, perr
			}
			ref, perr := pop()
			if perr != nil {
				return nil, perr
			}
			b.CreateStore(entry, ref, val, false)
		case "load":
			ref, perr := pop()
			if perr != nil {
				return nil, perr
			}
			stack = append(stack, b.CreateLoad(entry, ref).Result())
		case "dup":
			v, perr := pop()
			if perr != nil {
				return nil, perr
			}
			stack = append(stack, v, v)
		case "exit":
			if retTy.Kind == ir.KindUnit {
				b.CreateExit(entry, nil)
				continue
			}
			v, perr := pop()
			if perr != nil {
				return nil, perr
			}
			b.CreateExit(entry, v)
		default:
			return nil, fmt.Errorf("chirfixture: function %s: unknown op %q", fs.Name, st.Op)
		}
	}
	return fn, nil
}
