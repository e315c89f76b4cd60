package mergers

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// CounterRow is one keyed partial count from a batch reduction.
type CounterRow interface {
	CounterKey() string
	Delta() int64
}

// CounterStore is the durable keyed-counter collaborator. IncrementBy adds
// delta to the counter at key, creating it at delta when absent, and returns
// the new running total.
//
//go:generate mockgen -source=merge_writer.go -destination=./mocks/counter_store_mock.go -package=mocks
type CounterStore interface {
	IncrementBy(ctx context.Context, key string, delta int64) (int64, error)
}

// CounterMergeWriter applies one batch's aggregation rows against durable
// counters. Rows are split into disjoint contiguous partitions and each
// partition's increment-upserts run on their own goroutine with no ordering
// between partitions and no transaction across the batch: a crash mid-batch
// leaves some keys merged and others not. The increment is commutative and
// associative per key, which is what makes the reordering harmless.
//
// The writer holds no state of its own beyond its wiring; running totals
// live entirely in the store.
type CounterMergeWriter[R CounterRow] struct {
	store      CounterStore
	partitions int
}

func NewCounterMergeWriter[R CounterRow](store CounterStore, partitions int) *CounterMergeWriter[R] {
	if partitions < 1 {
		partitions = 1
	}
	return &CounterMergeWriter[R]{store: store, partitions: partitions}
}

// Merge upserts every row. A failed upsert stops its own partition at that
// key; sibling partitions run to completion regardless, and every partition
// failure is joined into the returned error. Retry policy belongs to the
// caller's configuration, never to this writer.
func (w *CounterMergeWriter[R]) Merge(ctx context.Context, rows []R) error {
	if len(rows) == 0 {
		return nil
	}

	partitions := w.partitions
	if partitions > len(rows) {
		partitions = len(rows)
	}
	size := (len(rows) + partitions - 1) / partitions

	errs := make([]error, partitions)
	var wg sync.WaitGroup
	for i := 0; i < partitions; i++ {
		lo := i * size
		if lo >= len(rows) {
			break
		}
		hi := min(lo+size, len(rows))

		wg.Add(1)
		go func(i int, partition []R) {
			defer wg.Done()
			for _, row := range partition {
				if _, err := w.store.IncrementBy(ctx, row.CounterKey(), row.Delta()); err != nil {
					errs[i] = fmt.Errorf("counter upsert failed for key %q: %w", row.CounterKey(), err)
					return
				}
			}
		}(i, rows[lo:hi])
	}
	wg.Wait()

	return errors.Join(errs...)
}
