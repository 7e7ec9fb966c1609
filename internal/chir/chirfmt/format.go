// Package chirfmt renders CHIR graph nodes as human-readable text for
// debug dumps, checker error reports, and pass "before/after" snapshot
// tests. Mirrors the source's ToStringUtils.cpp and the teacher's
// pervasive *.String() idiom (internal/ast).
package chirfmt

import (
	"fmt"
	"strings"

	"github.com/chir-lang/chir/internal/chir/ir"
)

// Value renders a Value's identifier and type, e.g. "%3: Int64".
func Value(v ir.Value) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", v.Ident(), v.Type())
}

// Expr renders a one-line form of an expression: its result (if any),
// kind, and operands.
func Expr(e *ir.Expr) string {
	var sb strings.Builder
	if r := e.Result(); r != nil {
		sb.WriteString(r.Ident())
		sb.WriteString(" = ")
	}
	sb.WriteString(e.Kind.String())
	sb.WriteString("(")
	for i, op := range e.Operands {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(op.Ident())
	}
	sb.WriteString(")")
	if succs := e.Successors(); len(succs) > 0 {
		sb.WriteString(" -> [")
		for i, s := range succs {
			if i > 0 {
				sb.WriteString(", ")
			}
			if s == nil {
				sb.WriteString("<nil>")
				continue
			}
			fmt.Fprintf(&sb, "bb%d", s.ID())
		}
		sb.WriteString("]")
	}
	return sb.String()
}

// Block renders a block's label followed by one line per expression.
func Block(b *ir.Block) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "bb%d:", b.ID())
	if b.Comment != "" {
		fmt.Fprintf(&sb, " ; %s", b.Comment)
	}
	sb.WriteString("\n")
	for _, e := range b.Exprs {
		sb.WriteString("  ")
		sb.WriteString(Expr(e))
		sb.WriteString("\n")
	}
	return sb.String()
}

// BlockGroup renders every block in the group in declaration order.
func BlockGroup(g *ir.BlockGroup) string {
	var sb strings.Builder
	for _, b := range g.Blocks {
		sb.WriteString(Block(b))
	}
	return sb.String()
}

// Func renders a function's signature and body.
func Func(f *ir.Func) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "func %s(", f.Name)
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %s", p.Ident(), p.Type())
	}
	fmt.Fprintf(&sb, "): %s {\n", f.ReturnType)
	if f.Body != nil {
		sb.WriteString(BlockGroup(f.Body))
	}
	sb.WriteString("}\n")
	return sb.String()
}

// CustomDef renders a class/struct/enum/extend header plus its members.
func CustomDef(d *ir.CustomDef) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s", d.Kind, d.Name)
	if d.SuperType != nil {
		fmt.Fprintf(&sb, " : %s", d.SuperType)
	}
	sb.WriteString(" {\n")
	for _, m := range d.Members {
		fmt.Fprintf(&sb, "  %s: %s\n", m.Name, m.Type)
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Package renders every custom def and function in p.
func Package(p *ir.Package) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "package %s (%s)\n", p.Name, p.Phase)
	for _, d := range p.AllCustomDefs() {
		sb.WriteString(CustomDef(d))
	}
	for _, f := range p.Functions {
		sb.WriteString(Func(f))
	}
	return sb.String()
}
