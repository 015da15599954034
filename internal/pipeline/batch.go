package pipeline

import (
	"context"
	"sort"
	"sync"
)

type indexed[R any] struct {
	index  int
	result R
}

// RunBatch fans items out across a bounded worker pool and returns one result
// per item, re-serialized into the original input order. Workers are fully
// isolated: a failure result from one item never cancels or affects sibling
// items, so the worker function must convert its own errors into a failure
// variant of R rather than panicking.
//
// maxWorkers is clamped to min(maxWorkers, len(items)) with a floor of one.
func RunBatch[T, R any](ctx context.Context, items []T, maxWorkers int, worker func(ctx context.Context, index int, item T) R) []R {
	if len(items) == 0 {
		return nil
	}
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if maxWorkers > len(items) {
		maxWorkers = len(items)
	}

	sem := make(chan struct{}, maxWorkers)
	done := make(chan indexed[R], len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(index int, item T) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			done <- indexed[R]{index: index, result: worker(ctx, index, item)}
		}(i, item)
	}
	wg.Wait()
	close(done)

	// Arrival order depends on completion timing; restore input order here.
	collected := make([]indexed[R], 0, len(items))
	for r := range done {
		collected = append(collected, r)
	}
	sort.Slice(collected, func(a, b int) bool { return collected[a].index < collected[b].index })

	results := make([]R, len(collected))
	for i, r := range collected {
		results[i] = r.result
	}
	return results
}
