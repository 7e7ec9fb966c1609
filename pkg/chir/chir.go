// Package chir is the middle-end's external interface (§6): Run takes a
// constructed Package through the fixed RAW -> PLUGIN -> ANALYSIS_FOR_CJLINT
// -> OPT pipeline, validating §4.9's well-formedness invariants between
// every phase the way internal/semantic's PassManager runs a fixed rule
// sequence over an AST, generalized here to run the checker concurrently
// per top-level definition (§5) instead of once over the whole tree.
package chir

import (
	"context"

	"github.com/chir-lang/chir/internal/chir/analysis"
	"github.com/chir-lang/chir/internal/chir/checker"
	"github.com/chir-lang/chir/internal/chir/dataflow"
	"github.com/chir-lang/chir/internal/chir/diag"
	"github.com/chir-lang/chir/internal/chir/ir"
	"github.com/chir-lang/chir/internal/chir/transform"
	"github.com/chir-lang/chir/internal/chir/visitor"
	"github.com/chir-lang/chir/internal/chirconfig"
)

// Package is the middle-end's compilation unit (§3.5, §6): Run mutates
// it in place and hands back the same value on success.
type Package = ir.Package

// Options is the pipeline's options record (§6): optimization level,
// checker job count, per-pass overrides, and the compile-debug toggle.
type Options = chirconfig.Options

// Devirtualizer resolves a virtual Invoke's possible callees so
// FunctionInline's call graph can include virtual edges — §6's
// "possible_callees(method_name, inst_param_types)" oracle.
type Devirtualizer = analysis.Devirtualizer

// Run drives pkg through RAW -> PLUGIN -> ANALYSIS_FOR_CJLINT -> OPT
// (§2). The checker runs between every phase transition and Run aborts
// on the first failure (§4.9 "Callers abort the pipeline on false"),
// returning whatever sink caught the failure. On success pkg itself
// holds the optimized result and the returned sink carries anything
// the var-init checker and the final well-formedness pass reported
// along the way, even when ok is true (warnings/notes never fail the
// pipeline by themselves — see diag.Kind.Fatal).
func Run(ctx context.Context, pkg *Package, opts *Options, devirt Devirtualizer) (ok bool, sink *diag.Sink) {
	if rawOK, rawSink := checker.Check(ctx, pkg, opts.JobCount); !rawOK {
		return false, rawSink
	}

	pkg.Phase = ir.PhasePlugin
	if pluginOK, pluginSink := checker.Check(ctx, pkg, opts.JobCount); !pluginOK {
		return false, pluginSink
	}

	pkg.Phase = ir.PhaseAnalysisForLint
	sink = diag.NewSink()
	runVarInitChecks(pkg, sink)
	lintOK, lintSink := checker.Check(ctx, pkg, opts.JobCount)
	mergeInto(sink, lintSink)
	if !lintOK || sink.Failed() {
		return false, sink
	}

	pkg.Phase = ir.PhaseOpt
	runOptPipeline(pkg, opts, devirt)

	optOK, optSink := checker.Check(ctx, pkg, opts.JobCount)
	mergeInto(sink, optSink)
	return optOK && !sink.Failed(), sink
}

// GetOrThrowResults runs the §4 supplemented GetOrThrow-result analysis
// over every function in pkg and returns its per-function fixpoint,
// keyed by mangled name. It is advisory: ANALYSIS_FOR_CJLINT never
// gates Run's pass/fail outcome on it, matching the phase's name — the
// result exists for an external cjlint-style consumer to query, not to
// reject the package. Callable any time after Run has carried pkg past
// the ANALYSIS_FOR_CJLINT phase (or stand-alone, against a package an
// earlier phase already validated).
func GetOrThrowResults(pkg *Package) map[string]dataflow.Result {
	out := make(map[string]dataflow.Result)
	for _, fn := range allFuncsWithBody(pkg) {
		out[fn.MangledName] = analysis.RunGetOrThrowResultAnalysis(fn)
	}
	return out
}

// AllocationSites runs the §4.6 value analysis over every function in
// pkg, keyed by mangled name, and returns each function's static
// allocation/global-load sites mapped to their AbstractObject. The
// package's GlobalState (§5 "global_state tracking read-only globals")
// is built exactly once here and shared read-only across every
// function's analysis, so a global loaded from two different functions
// resolves to the same object identity. Advisory like GetOrThrowResults:
// nothing in Run consumes this, it exists for a checker/optimizer (or
// an external cjlint-style consumer) that needs symbolic object
// identities rather than a pass/fail verdict.
func AllocationSites(pkg *Package) map[string]map[*ir.Expr]*dataflow.AbstractObject {
	global := dataflow.NewGlobalState(pkg)
	out := make(map[string]map[*ir.Expr]*dataflow.AbstractObject)
	for _, fn := range allFuncsWithBody(pkg) {
		out[fn.MangledName] = analysis.AllocationSites(fn, global)
	}
	return out
}

// mergeInto re-reports every diagnostic already collected by src into
// dst, so a single sink can accumulate findings across several checker
// runs that each build their own.
func mergeInto(dst, src *diag.Sink) {
	for _, d := range src.Diagnostics() {
		dst.Report(d)
	}
}

// allFuncsWithBody collects every function definition in pkg that
// carries a body: free functions, package-init, and every custom def's
// methods — the same population the checker's own allFuncs walks,
// duplicated here since that helper is unexported to internal/chir/checker.
func allFuncsWithBody(pkg *ir.Package) []*ir.Func {
	var out []*ir.Func
	out = append(out, pkg.Functions...)
	if pkg.PackageInitFunc != nil {
		out = append(out, pkg.PackageInitFunc)
	}
	for _, def := range pkg.AllCustomDefs() {
		out = append(out, def.Methods...)
	}
	return out
}

// ancestorInstanceVarCount sums the instance-var counts of def's
// ancestor chain — the offset a constructor's own member indices start
// at once laid out in memory, mirroring
// internal/chir/transform's own markclasshasinited.go helper of the
// same shape (duplicated rather than exported since each package's use
// is a small, self-contained walk over CustomDef.SuperType).
func ancestorInstanceVarCount(def *ir.CustomDef) int {
	total := 0
	for t := def.SuperType; t != nil && t.Decl != nil; t = t.Decl.SuperType {
		total += len(t.Decl.Members)
	}
	return total
}

// runVarInitChecks runs §4.7's var-init checker over every function in
// pkg and reports each violation into sink as a KindUseBeforeInit
// diagnostic, the ANALYSIS_FOR_CJLINT phase's one checker that can
// actually fail a package (unlike GetOrThrowResults, which is purely
// advisory).
func runVarInitChecks(pkg *ir.Package, sink *diag.Sink) {
	report := func(fn *ir.Func, superCount int) {
		if fn.Body == nil {
			return
		}
		for _, finding := range analysis.CheckVarInit(fn, superCount) {
			sink.Report(diag.Diagnostic{
				Kind:     diag.KindUseBeforeInit,
				Severity: diag.SeverityError,
				Location: diag.Location{Pos: finding.Pos},
				Message:  finding.Message,
			})
		}
	}

	for _, def := range pkg.AllCustomDefs() {
		superCount := ancestorInstanceVarCount(def)
		for _, fn := range def.Methods {
			report(fn, superCount)
		}
	}
	for _, fn := range pkg.Functions {
		report(fn, 0)
	}
	if pkg.PackageInitFunc != nil {
		report(pkg.PackageInitFunc, 0)
	}
}

// runOptPipeline runs §4.8's fixed transform pipeline plus the
// supplemented MarkClassHasInited pass (unconditional: it is a
// normalization step required for a well-formed OPT-phase graph, not
// an optimization opts.PassEnabled gates) in dependency order:
// flatten-for-in must precede function-inline and lambda-inline (a
// callee's body with unflattened structured control is never
// considered inlineable), and function-inline must precede
// lambda-inline (it is what reduces LambdaInline's second eligibility
// condition down to its first — see lambdainline.go).
func runOptPipeline(pkg *ir.Package, opts *Options, devirt Devirtualizer) {
	b := pkg.Builder
	transform.MarkClassHasInited(b, pkg)

	funcs := allFuncsWithBody(pkg)

	if opts.PassEnabled(chirconfig.PassFlattenForIn) {
		for _, fn := range funcs {
			flattenAllForIn(b, fn)
		}
	}
	if opts.PassEnabled(chirconfig.PassBoxRecursionValueType) {
		transform.BoxRecursionValueType(b, pkg)
	}
	if opts.PassEnabled(chirconfig.PassUnitUnification) {
		for _, fn := range funcs {
			transform.UnitUnification(b, fn)
		}
	}
	if opts.PassEnabled(chirconfig.PassGetRefToArrayElement) {
		for _, fn := range funcs {
			transform.GetRefToArrayElement(b, fn)
		}
	}
	if opts.PassEnabled(chirconfig.PassFunctionInline) {
		transform.FunctionInline(b, pkg, devirt, opts.Level)
	}
	if opts.PassEnabled(chirconfig.PassLambdaInline) {
		for _, fn := range funcs {
			transform.LambdaInline(b, fn)
		}
	}
	if opts.PassEnabled(chirconfig.PassArrayLambdaOpt) {
		for _, fn := range funcs {
			transform.ArrayLambdaOptimisation(b, fn)
		}
	}
	if opts.PassEnabled(chirconfig.PassRedundantFutureRemove) {
		for _, fn := range funcs {
			transform.RedundantFutureRemoval(fn)
		}
	}
	if opts.PassEnabled(chirconfig.PassUselessAllocElim) {
		for _, fn := range funcs {
			transform.UselessAllocationElimination(fn)
		}
	}
}

// flattenAllForIn repeatedly finds and flattens fn's structured ForIn
// expressions until none remain. One flattening splices a ForIn's
// nested groups into the enclosing group as plain blocks, which can
// expose a ForIn that was itself nested inside the flattened one's
// cond/body/latch, so the search re-walks from scratch each round
// rather than collecting every candidate up front.
func flattenAllForIn(b *ir.Builder, fn *ir.Func) int {
	if fn.Body == nil {
		return 0
	}
	count := 0
	for {
		var found *ir.Expr
		visitor.WalkGroup(fn.Body, visitor.Hooks{
			PreExpr: func(e *ir.Expr) visitor.Action {
				if found == nil && ir.ForInKindOf(e.Kind) {
					found = e
				}
				return visitor.Continue
			},
		})
		if found == nil || !transform.FlattenForIn(b, found) {
			return count
		}
		count++
	}
}
