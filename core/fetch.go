package core

import (
	"context"
	"sync"
)

// fetched is the outcome of one item of a parallel fetch.
type fetched[R any] struct {
	value R
	err   error
}

// fetchAll calls fetch for every item on a pool of workers goroutines.
// The outcomes keep the order of items so downstream aggregation stays stable.
func fetchAll[T, R any](ctx context.Context, workers int, items []T, fetch func(context.Context, T) (R, error)) []fetched[R] {
	out := make([]fetched[R], len(items))
	if len(items) == 0 {
		return out
	}
	workers = max(1, min(workers, len(items)))

	indexCh := make(chan int, len(items))
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for i := range indexCh {
				// Each worker writes to its own index only
				value, err := fetch(ctx, items[i])
				out[i] = fetched[R]{value: value, err: err}
			}
		})
	}

	for i := range items {
		indexCh <- i
	}
	close(indexCh)
	wg.Wait()

	return out
}
