package concurrency_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/chir-lang/chir/internal/chir/concurrency"
)

func TestRunEachVisitsEveryItem(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	var sum atomic.Int64
	err := concurrency.RunEach(context.Background(), 2, items, func(ctx context.Context, item int) error {
		sum.Add(int64(item))
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Load() != 15 {
		t.Fatalf("expected sum 15, got %d", sum.Load())
	}
}

func TestRunPropagatesFirstError(t *testing.T) {
	wantErr := errors.New("boom")
	err := concurrency.Run(context.Background(), 1, 3, func(ctx context.Context, i int) error {
		if i == 1 {
			return wantErr
		}
		return nil
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped boom error, got %v", err)
	}
}

func TestRunRespectsJobCountOfOne(t *testing.T) {
	var active, maxActive atomic.Int32
	err := concurrency.Run(context.Background(), 1, 20, func(ctx context.Context, i int) error {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			cur := maxActive.Load()
			if n <= cur || maxActive.CompareAndSwap(cur, n) {
				break
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if maxActive.Load() > 1 {
		t.Fatalf("expected at most 1 concurrent task with jobCount=1, saw %d", maxActive.Load())
	}
}
