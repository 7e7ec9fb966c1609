// Package chirconfig holds the pipeline's options record (§6 "Options
// record") as a functional-options struct, the shape
// internal/bytecode/optimizer.go uses for its own pass-toggle config.
package chirconfig

// OptLevel is the optimization level gate named in §6: O1 and above
// enable inlining, array-lambda optimisation, and redundant-future
// removal; O0 enables none of the optional passes, so only the
// always-on normalization passes (alwaysOnPasses) run.
type OptLevel string

const (
	O0 OptLevel = "O0"
	O1 OptLevel = "O1"
	O2 OptLevel = "O2"
	Os OptLevel = "Os"
)

// Pass names every §4.8 transform the pipeline can toggle, mirroring
// internal/bytecode/optimizer.go's OptimizationPass enum.
type Pass string

const (
	PassFunctionInline        Pass = "function-inline"
	PassFlattenForIn          Pass = "flatten-for-in"
	PassBoxRecursionValueType Pass = "box-recursion-value-type"
	PassUnitUnification       Pass = "unit-unification"
	PassUselessAllocElim      Pass = "useless-allocation-elimination"
	PassRedundantFutureRemove Pass = "redundant-future-removal"
	PassArrayLambdaOpt        Pass = "array-lambda-optimisation"
	PassGetRefToArrayElement  Pass = "getref-to-array-element"
	PassLambdaInline          Pass = "lambda-inline"
)

// defaultPassesByLevel lists which passes O1/O2/Os enable beyond the
// always-on set (flatten-for-in, box-recursion, unit-unification, and
// getref-to-array-element run at every level since they are required
// for a well-formed OPT-phase graph, not true optimizations).
var defaultPassesByLevel = map[OptLevel]map[Pass]bool{
	O0: {},
	O1: {
		PassFunctionInline:        true,
		PassLambdaInline:          true,
		PassArrayLambdaOpt:        true,
		PassRedundantFutureRemove: true,
		PassUselessAllocElim:      true,
	},
	O2: {
		PassFunctionInline:        true,
		PassLambdaInline:          true,
		PassArrayLambdaOpt:        true,
		PassRedundantFutureRemove: true,
		PassUselessAllocElim:      true,
	},
	Os: {
		PassFunctionInline:        true,
		PassLambdaInline:          true,
		PassArrayLambdaOpt:        true,
		PassRedundantFutureRemove: true,
		PassUselessAllocElim:      true,
	},
}

// alwaysOnPasses run regardless of optimization level: they are
// normalization steps the OPT-phase checker requires, not speed/size
// trade-offs.
var alwaysOnPasses = map[Pass]bool{
	PassFlattenForIn:          true,
	PassBoxRecursionValueType: true,
	PassUnitUnification:       true,
	PassGetRefToArrayElement:  true,
}

// Option mutates an Options under construction; see With* constructors.
type Option func(*Options)

// Options is the pipeline's options record (§6).
type Options struct {
	// Level gates which §4.8 passes run by default; see defaultPassesByLevel.
	Level OptLevel

	// JobCount is the worker-pool size for the parallel-across-functions
	// checker (§5); zero or negative places no limit on the number of
	// concurrent workers.
	JobCount int

	// EnableCompileDebug tightens the Debug expression's reference-depth
	// check (§6).
	EnableCompileDebug bool

	overrides map[Pass]bool
}

// New builds an Options from level plus any overrides, defaulting
// JobCount to 1 (a 0/negative JobCount set through WithJobCount is
// passed on as is, and concurrency.Run then sets no worker limit).
func New(level OptLevel, opts ...Option) *Options {
	o := &Options{Level: level, JobCount: 1}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithJobCount sets the checker's worker-pool size.
func WithJobCount(n int) Option {
	return func(o *Options) { o.JobCount = n }
}

// WithCompileDebug toggles the tightened Debug reference-depth check.
func WithCompileDebug(enabled bool) Option {
	return func(o *Options) { o.EnableCompileDebug = enabled }
}

// WithPass forces pass on or off regardless of Level's default.
func WithPass(pass Pass, enabled bool) Option {
	return func(o *Options) {
		if o.overrides == nil {
			o.overrides = make(map[Pass]bool)
		}
		o.overrides[pass] = enabled
	}
}

// PassEnabled reports whether pass should run under these options:
// an explicit WithPass override wins, otherwise alwaysOnPasses wins,
// otherwise the level's default set decides.
func (o *Options) PassEnabled(pass Pass) bool {
	if o.overrides != nil {
		if v, ok := o.overrides[pass]; ok {
			return v
		}
	}
	if alwaysOnPasses[pass] {
		return true
	}
	return defaultPassesByLevel[o.Level][pass]
}
