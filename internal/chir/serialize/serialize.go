// Package serialize renders CHIR functions and packages as JSON debug
// dumps (`chirc dump --json`), the way a developer inspecting a compile
// pipeline wants a structural view of the graph without walking
// internal/chir/ir's pointer graph by hand. Documents are built
// incrementally with tidwall/sjson rather than assembled as a Go struct
// and passed to encoding/json, since a function's graph is a cyclic
// pointer structure (expressions reference blocks reference groups
// reference functions) that does not marshal directly; each field is
// set at an explicit JSON path instead. tidwall/gjson reads values back
// out of a dump for the handful of query helpers tooling built on top
// of this package needs (e.g. counting expressions of a given kind)
// without re-walking the IR.
package serialize

import (
	"fmt"

	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DumpFunc renders fn's signature and block/expression graph as a JSON
// document.
func DumpFunc(fn *ir.Func) (string, error) {
	doc := "{}"
	var err error
	set := func(path string, value any) {
		if err != nil {
			return
		}
		doc, err = sjson.Set(doc, path, value)
	}

	set("name", fn.Name)
	set("mangledName", fn.MangledName)
	set("package", fn.Package)
	set("isConstructor", fn.IsConstructor)
	set("paramCount", len(fn.Params))

	if fn.Body != nil {
		dumpGroup(set, "body", fn.Body)
	}
	if err != nil {
		return "", fmt.Errorf("serialize: dump func %s: %w", fn.Name, err)
	}
	return doc, nil
}

// DumpPackage renders every top-level function and custom def name in
// pkg as a JSON document: free functions (and package-init, if any)
// under "functions", and each def kind's declared names under
// "classes"/"structs"/"enums"/"extensions". Method bodies are not
// inlined here — call DumpFunc on the specific *ir.Func a caller wants
// the full graph for.
func DumpPackage(pkg *ir.Package) (string, error) {
	doc := "{}"
	var err error
	set := func(path string, value any) {
		if err != nil {
			return
		}
		doc, err = sjson.Set(doc, path, value)
	}

	set("name", pkg.Name)
	set("phase", pkg.Phase.String())

	names := func(defs []*ir.CustomDef) []string {
		out := make([]string, len(defs))
		for i, d := range defs {
			out[i] = d.Name
		}
		return out
	}
	funcs := pkg.AllFunctions()
	funcNames := make([]string, len(funcs))
	for i, f := range funcs {
		funcNames[i] = f.Name
	}
	set("functions", funcNames)
	set("classes", names(pkg.Classes))
	set("structs", names(pkg.Structs))
	set("enums", names(pkg.Enums))
	set("extensions", names(pkg.Extensions))

	if err != nil {
		return "", fmt.Errorf("serialize: dump package %s: %w", pkg.Name, err)
	}
	return doc, nil
}

// dumpGroup writes group's blocks (in declaration order, not reverse
// post-order, so the dump reflects the graph's own Blocks slice) under
// path+".blocks".
func dumpGroup(set func(path string, value any), path string, group *ir.BlockGroup) {
	for bi, blk := range group.Blocks {
		blockPath := fmt.Sprintf("%s.blocks.%d", path, bi)
		set(blockPath+".id", blk.ID())
		if blk.Comment != "" {
			set(blockPath+".comment", blk.Comment)
		}
		set(blockPath+".predCount", len(blk.Preds))
		for ei, e := range blk.Exprs {
			dumpExpr(set, fmt.Sprintf("%s.exprs.%d", blockPath, ei), e)
		}
	}
}

func dumpExpr(set func(path string, value any), path string, e *ir.Expr) {
	set(path+".id", e.ID())
	set(path+".kind", e.Kind.String())
	if e.Symbol != "" {
		set(path+".symbol", e.Symbol)
	}
	set(path+".operandCount", len(e.Operands))
	for gi, nested := range e.NestedGroups() {
		dumpGroup(set, fmt.Sprintf("%s.nested.%d", path, gi), nested)
	}
}

// CountExprKind reports how many expressions of kind appear in a dump
// produced by DumpFunc, by counting `kind` leaves with gjson rather
// than re-walking the IR — the structural query the package doc comment
// names as this package's reason for reading dumps back with gjson.
func CountExprKind(dump string, kind string) int {
	count := 0
	walk(gjson.Parse(dump), func(result gjson.Result) {
		if result.Get("kind").String() == kind {
			count++
		}
	})
	return count
}

// walk recurses into every "exprs" and "nested" array under v, invoking
// visit on each expression object found.
func walk(v gjson.Result, visit func(gjson.Result)) {
	exprs := v.Get("exprs")
	if exprs.Exists() {
		exprs.ForEach(func(_, e gjson.Result) bool {
			visit(e)
			walk(e, visit)
			return true
		})
	}
	blocks := v.Get("blocks")
	if blocks.Exists() {
		blocks.ForEach(func(_, b gjson.Result) bool {
			walk(b, visit)
			return true
		})
	}
	body := v.Get("body")
	if body.Exists() {
		walk(body, visit)
	}
	nested := v.Get("nested")
	if nested.Exists() {
		nested.ForEach(func(_, n gjson.Result) bool {
			walk(n, visit)
			return true
		})
	}
}
