package pipeline

import (
	"context"
	"sync"
)

// runPool calls process for each item with at most workers calls in
// flight. Items not yet started when ctx is cancelled are dropped.
// Results come back in completion order.
func runPool[T any](ctx context.Context, workers int, items []string, process func(string) T) []T {
	if workers <= 0 {
		workers = 1
	}
	results := make(chan T, len(items))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

feed:
	for _, item := range items {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break feed
		}
		wg.Add(1)
		go func(item string) {
			defer wg.Done()
			defer func() { <-sem }()
			results <- process(item)
		}(item)
	}

	wg.Wait()
	close(results)

	out := make([]T, 0, len(items))
	for r := range results {
		out = append(out, r)
	}
	return out
}
