// Package checker implements §4.9's well-formedness checker: a battery
// of per-definition rules run in parallel across a package's top-level
// definitions after each of the RAW, PLUGIN, ANALYSIS_FOR_CJLINT and OPT
// phases, the way internal/semantic's Pass/PassManager runs a fixed
// sequence of rule passes over an AST — generalized here from "one pass
// over the whole AST" to "N independent rule functions fanned out across
// top-level definitions" since §5 requires the checker specifically (not
// semantic passes in general) to run concurrently per-function.
package checker

import (
	"context"
	"fmt"

	"github.com/chir-lang/chir/internal/chir/concurrency"
	"github.com/chir-lang/chir/internal/chir/diag"
	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/visitor"
)

// Rule is one independent well-formedness check run against a single
// top-level definition (a Func or a CustomDef). Rules never mutate the
// graph (§4.9 is read-only by construction: it "dumps the offending
// definition" rather than fixing it).
type Rule struct {
	Name  string
	Funcs func(fn *ir.Func, sink *diag.Sink)
	Defs  func(def *ir.CustomDef, sink *diag.Sink)
}

// Check runs every applicable rule across pkg's top-level definitions,
// fanned out over jobCount workers (§5), and reports whether the package
// is well-formed. On failure the caller is expected to abort the
// pipeline per §4.9 ("Callers abort the pipeline on false").
func Check(ctx context.Context, pkg *ir.Package, jobCount int) (bool, *diag.Sink) {
	sink := diag.NewSink()
	ids := newIdentSet()

	funcs := allFuncs(pkg)
	defs := pkg.AllCustomDefs()

	funcRules := []func(fn *ir.Func, sink *diag.Sink){
		func(fn *ir.Func, s *diag.Sink) { checkIdentUnique(fn, ids, s) },
		checkBlockWellFormedness,
		checkReferenceDepths,
		checkParamAgreement,
		checkGenericVisibility,
		checkUseBeforeDef(pkg.Phase),
		checkTupleOnEnum,
		checkTypeCasts,
		checkCallArguments,
		func(fn *ir.Func, s *diag.Sink) {
			if pkg.Phase < ir.PhaseOpt || fn.Body == nil {
				return
			}
			visitor.WalkGroup(fn.Body, visitor.Hooks{PreExpr: func(e *ir.Expr) visitor.Action {
				if e.Kind == ir.EGetInstantiateValue {
					s.Errorf(diag.KindIRInvariant, locOf(e), "GetInstantiateValue is not allowed in the OPT phase, in %s", dump(fn))
				}
				return visitor.Continue
			}})
		},
	}
	defRules := []func(def *ir.CustomDef, sink *diag.Sink){
		func(def *ir.CustomDef, s *diag.Sink) { checkDefIdentUnique(def, ids, s) },
		checkVTableCoherence,
	}

	err := concurrency.RunEach(ctx, jobCount, funcs, func(ctx context.Context, fn *ir.Func) error {
		for _, r := range funcRules {
			r(fn, sink)
		}
		return nil
	})
	if err != nil {
		sink.Errorf(diag.KindIRInvariant, diag.Location{}, "checker: %v", err)
		return false, sink
	}

	err = concurrency.RunEach(ctx, jobCount, defs, func(ctx context.Context, def *ir.CustomDef) error {
		for _, r := range defRules {
			r(def, sink)
		}
		return nil
	})
	if err != nil {
		sink.Errorf(diag.KindIRInvariant, diag.Location{}, "checker: %v", err)
		return false, sink
	}

	return !sink.HasFatal(), sink
}

// allFuncs collects every top-level function with a body: free
// functions, package-init, and every custom def's methods.
func allFuncs(pkg *ir.Package) []*ir.Func {
	var out []*ir.Func
	out = append(out, pkg.Functions...)
	if pkg.PackageInitFunc != nil {
		out = append(out, pkg.PackageInitFunc)
	}
	for _, def := range pkg.AllCustomDefs() {
		for _, m := range def.Methods {
			out = append(out, m)
		}
	}
	return out
}

// locOf builds a Location from e's recorded Pos; FileID is always 0
// since this checker operates on a single in-memory package with no
// multi-file table (the surrounding compiler, which does track files,
// is expected to fill FileID in before handing diagnostics to a user).
func locOf(e *ir.Expr) diag.Location {
	return diag.Location{Pos: e.Pos}
}

func dump(fn *ir.Func) string {
	return fmt.Sprintf("func %s", fn.Name)
}
