package engine

import (
	"context"
	"sync"
)

// forEveryPathWithBoundedGoroutines runs f for every path on at most limit
// concurrent goroutines and waits for all of them. Cancelling the context
// stops new work from starting; in-flight calls finish on their own per-unit
// budget.
func forEveryPathWithBoundedGoroutines(ctx context.Context, limit int, paths []string, f func(i int, path string)) {
	guard := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		guard <- struct{}{} // would block if guard channel is already filled
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			f(i, path)
			<-guard
		}(i, path)
	}
	wg.Wait()
}
