package dataflow

import "github.com/chir-lang/chir/internal/chir/ir"

// Options configures one Analysis<D> run (§4.6).
type Options struct {
	// Init returns the entry state for the block group's entry block.
	Init func() Domain

	// ExprTransfer applies a non-terminator expression's effect to state,
	// returning the (possibly mutated in place) successor state.
	ExprTransfer func(state Domain, e *ir.Expr) Domain

	// TermTransfer applies a terminator's effect. May be nil if the
	// analysis has no terminator-specific behavior.
	TermTransfer func(state Domain, e *ir.Expr) Domain

	// CaptureVars, when set, is invoked at a Lambda expression to coarsen
	// state for variables the lambda captures (e.g. taint to Top) before
	// the lambda body is analysed with its own fresh entry state.
	CaptureVars func(state Domain, lambda *ir.Expr) Domain

	// BlockCap aborts the analysis once more than this many blocks have
	// been processed across the whole run (nested groups included), a
	// safety valve against runaway or pathological CFGs. Zero means
	// unlimited.
	BlockCap int
}

// Result holds the per-block fixpoint states for one block group.
type Result struct {
	Entry   map[*ir.Block]Domain
	Exit    map[*ir.Block]Domain
	Aborted bool
}

// Run executes the fixpoint over group and every block group nested
// beneath it, starting from opts.Init() at the entry block.
func Run(group *ir.BlockGroup, opts Options) Result {
	r := &runner{opts: opts, result: Result{Entry: map[*ir.Block]Domain{}, Exit: map[*ir.Block]Domain{}}}
	r.run(group, opts.Init())
	r.result.Aborted = r.aborted
	return r.result
}

type runner struct {
	opts    Options
	result  Result
	visited int
	aborted bool
}

// cloneState returns an independent copy of d, relying on the domain
// contract that Bottom() is the identity element for Join (§4.6): for a
// "maybe" domain bottom is all-false and union with d reproduces d; for
// a "must" domain bottom is all-true and intersection with d reproduces
// d. Any conforming Domain implementation can be copied this way without
// the interface needing a dedicated Clone method.
func cloneState(d Domain) Domain {
	c := d.Bottom()
	c.Join(d)
	return c
}

// run processes one block group to a fixpoint, returning the joined
// exit state of every terminal block (a block whose terminator has no
// successors within this group — the composite "falls through" points
// for a structured-control expression's nested group, or the function's
// actual exits at the top level).
func (r *runner) run(group *ir.BlockGroup, entryInit Domain) Domain {
	order := group.ReversePostOrder()
	if len(order) == 0 {
		return entryInit
	}

	worklist := append([]*ir.Block(nil), order...)
	inWorklist := make(map[*ir.Block]bool, len(order))
	for _, b := range worklist {
		inWorklist[b] = true
	}

	for len(worklist) > 0 {
		if r.aborted {
			break
		}
		b := worklist[0]
		worklist = worklist[1:]
		inWorklist[b] = false

		if r.opts.BlockCap > 0 {
			r.visited++
			if r.visited > r.opts.BlockCap {
				r.aborted = true
				break
			}
		}

		entry := r.computeEntry(b, group, entryInit)
		r.result.Entry[b] = entry

		exit := cloneState(entry)
		exit = r.transferBlock(b, exit)

		prevExit, had := r.result.Exit[b]
		changed := !had || stateDiffers(prevExit, exit)
		r.result.Exit[b] = exit

		if changed {
			if t := b.Terminator(); t != nil {
				for _, s := range t.Successors() {
					if s != nil && !inWorklist[s] {
						worklist = append(worklist, s)
						inWorklist[s] = true
					}
				}
			}
		}
	}

	var composite Domain
	for _, b := range order {
		t := b.Terminator()
		if t != nil && len(t.Successors()) > 0 {
			continue
		}
		exit, ok := r.result.Exit[b]
		if !ok {
			continue
		}
		if composite == nil {
			composite = cloneState(exit)
		} else {
			composite.Join(exit)
		}
	}
	if composite == nil {
		composite = entryInit
	}
	return composite
}

// stateDiffers compares two states by string rendering; domains are
// small bit-vectors or value maps in this package, so this is cheap and
// avoids requiring every Domain to implement Equal.
func stateDiffers(a, b Domain) bool {
	return a.String() != b.String()
}

func (r *runner) computeEntry(b *ir.Block, group *ir.BlockGroup, entryInit Domain) Domain {
	if b == group.Entry {
		return entryInit
	}
	if len(b.Preds) == 0 {
		return entryInit.Bottom()
	}
	var merged Domain
	for _, p := range b.Preds {
		predExit, ok := r.result.Exit[p]
		if !ok {
			predExit = entryInit.Bottom()
		}
		if merged == nil {
			merged = cloneState(predExit)
		} else {
			merged.Join(predExit)
		}
	}
	return merged
}

func (r *runner) transferBlock(b *ir.Block, state Domain) Domain {
	for _, e := range b.Exprs {
		if e.IsStructured() {
			state = r.transferStructured(e, state)
			continue
		}
		if e.IsTerminator() {
			if r.opts.TermTransfer != nil {
				state = r.opts.TermTransfer(state, e)
			}
			continue
		}
		if r.opts.ExprTransfer != nil {
			state = r.opts.ExprTransfer(state, e)
		}
	}
	return state
}

func (r *runner) transferStructured(e *ir.Expr, state Domain) Domain {
	if e.Kind == ir.ELambda {
		entry := state
		if r.opts.CaptureVars != nil {
			entry = cloneState(state)
			entry = r.opts.CaptureVars(entry, e)
		}
		for _, nested := range e.NestedGroups() {
			r.run(nested, entry.Bottom())
		}
		return entry
	}

	var composite Domain
	for _, nested := range e.NestedGroups() {
		exit := r.run(nested, cloneState(state))
		if composite == nil {
			composite = cloneState(exit)
		} else {
			composite.Join(exit)
		}
	}
	if composite == nil {
		return state
	}
	return composite
}
