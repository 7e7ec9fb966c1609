// Command gen-chirvisitor generates internal/chir/visitor/visitor_generated.go
// from the ExprKind const block in internal/chir/ir/expr.go, so the
// typed-dispatch ExprVisitor (§4.5) always has exactly one field and
// switch case per kind — adding a kind to expr.go and forgetting to
// wire it into the visitor becomes a regeneration, not a silent gap.
// Adapted from cmd/gen-visitor, which does the analogous thing for the
// AST node hierarchy by parsing pkg/ast/*.go with go/parser.
package main

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"text/template"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	irDir := "internal/chir/ir"
	if len(os.Args) > 1 {
		irDir = os.Args[1]
	}

	kinds, err := parseExprKinds(filepath.Join(irDir, "expr.go"))
	if err != nil {
		return fmt.Errorf("parsing ExprKind consts: %w", err)
	}

	code, err := generate(kinds)
	if err != nil {
		return fmt.Errorf("generating code: %w", err)
	}

	formatted, err := format.Source(code)
	if err != nil {
		fmt.Println(string(code))
		return fmt.Errorf("formatting code: %w", err)
	}

	outDir := "internal/chir/visitor"
	outputFile := filepath.Join(outDir, "visitor_generated.go")
	if err := os.WriteFile(outputFile, formatted, 0o644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	fmt.Printf("Generated %s (%d bytes, %d kinds)\n", outputFile, len(formatted), len(kinds))
	return nil
}

// parseExprKinds walks the first `const ( ... )` block in file and
// returns every identifier beginning with "E", in declaration order,
// excluding EInvalid (the zero value has no visitor field).
func parseExprKinds(file string) ([]string, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, file, nil, 0)
	if err != nil {
		return nil, err
	}

	var kinds []string
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.CONST {
			continue
		}
		foundKindBlock := false
		for _, spec := range gd.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for _, name := range vs.Names {
				if name.Name == "EInvalid" {
					foundKindBlock = true
					continue
				}
				if foundKindBlock && len(name.Name) > 1 && name.Name[0] == 'E' {
					kinds = append(kinds, name.Name)
				}
			}
		}
		if foundKindBlock {
			break
		}
	}
	return kinds, nil
}

const visitorTemplate = `// Code generated by cmd/gen-chirvisitor from internal/chir/ir/expr.go. DO NOT EDIT.

package visitor

import "github.com/chir-lang/chir/internal/chir/ir"

// ExprVisitor dispatches on e's dynamic ExprKind, calling the matching
// On<Kind> field if set, else Default. Both may be left nil.
type ExprVisitor struct {
	Default func(*ir.Expr)
{{range .}}
	On{{.Short}} func(*ir.Expr){{end}}
}

// Dispatch calls the field matching e.Kind, falling back to Default.
func (v ExprVisitor) Dispatch(e *ir.Expr) {
	var f func(*ir.Expr)
	switch e.Kind {
{{range .}}	case ir.{{.Full}}:
		f = v.On{{.Short}}
{{end}}	}
	if f == nil {
		f = v.Default
	}
	if f != nil {
		f(e)
	}
}
`

type kindEntry struct {
	Full  string // e.g. "EAllocate"
	Short string // e.g. "Allocate"
}

func generate(kinds []string) ([]byte, error) {
	entries := make([]kindEntry, len(kinds))
	for i, k := range kinds {
		entries[i] = kindEntry{Full: k, Short: k[1:]}
	}

	tmpl, err := template.New("visitor").Parse(visitorTemplate)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
