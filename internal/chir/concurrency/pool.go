// Package concurrency runs per-definition work (the checker, §4.9)
// across a fixed-size worker
// pool sized by the configured job count, per §5 "parallel across
// functions where explicitly stated ... a fixed worker-thread pool
// whose size equals the configured job count." Built on
// golang.org/x/sync/errgroup, the pack's own answer to bounded
// fan-out (golang-tools, opentofu, DataDog-datadog-agent, and others in
// the example pack all reach for errgroup over a hand-rolled
// WaitGroup+channel pool for this exact shape).
package concurrency

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run executes fn once per item in items, running at most jobCount of
// them at a time. jobCount <= 0 means unlimited (errgroup.SetLimit(-1)).
// Run returns the first error any fn invocation returns; per §5's
// ordering rule, passes that mutate the graph must never run
// concurrently on the same function, so callers must ensure items
// don't alias mutable state across invocations.
func Run(ctx context.Context, jobCount int, items int, fn func(ctx context.Context, i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if jobCount > 0 {
		g.SetLimit(jobCount)
	}
	for i := 0; i < items; i++ {
		i := i
		g.Go(func() error {
			return fn(ctx, i)
		})
	}
	return g.Wait()
}

// RunEach is a convenience wrapper over Run for a pre-built slice of
// items of any type, the common case of "one checker task per
// top-level definition."
func RunEach[T any](ctx context.Context, jobCount int, items []T, fn func(ctx context.Context, item T) error) error {
	return Run(ctx, jobCount, len(items), func(ctx context.Context, i int) error {
		return fn(ctx, items[i])
	})
}
