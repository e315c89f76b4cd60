package aggregators

import (
	"context"
	"sync"

	"access-insights/internal/models"
)

// Aggregator computes one keyed reduction over a parsed batch: map each event
// to a key, group by key, count one per qualifying event, emit one row per
// distinct key. Row order is unconstrained; the pipeline sorts before its
// observer callback.
type Aggregator[R any] interface {
	Aggregate(ctx context.Context, events []*models.LogEvent) ([]R, error)
}

// countShards splits events into up to workers contiguous shards, counts keys
// per shard on its own goroutine, then folds the shard maps together.
//
// keyFor returning ok=false excludes the event from the reduction; an error
// from keyFor aborts the whole reduction. Shards share nothing while running,
// so keyFor must be safe for concurrent calls.
func countShards[K comparable](events []*models.LogEvent, workers int, keyFor func(*models.LogEvent) (K, bool, error)) (map[K]int64, error) {
	merged := make(map[K]int64)
	if len(events) == 0 {
		return merged, nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(events) {
		workers = len(events)
	}

	shardSize := (len(events) + workers - 1) / workers

	type shardResult struct {
		counts map[K]int64
		err    error
	}
	results := make([]shardResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		lo := i * shardSize
		if lo >= len(events) {
			break
		}
		hi := min(lo+shardSize, len(events))

		wg.Add(1)
		go func(i int, shard []*models.LogEvent) {
			defer wg.Done()
			counts := make(map[K]int64)
			for _, event := range shard {
				key, ok, err := keyFor(event)
				if err != nil {
					results[i].err = err
					return
				}
				if !ok {
					continue
				}
				counts[key]++
			}
			results[i].counts = counts
		}(i, events[lo:hi])
	}
	wg.Wait()

	for _, result := range results {
		if result.err != nil {
			return nil, result.err
		}
		for key, count := range result.counts {
			merged[key] += count
		}
	}
	return merged, nil
}
