// Package parallel runs indexed work items on a bounded set of goroutines.
package parallel

import (
	"runtime"
	"sync"

	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

// Workers resolves a requested worker count: values <= 0 mean one worker
// per CPU, and the result never exceeds items.
func Workers(requested, items int) int {
	n := requested
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > items {
		n = items
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Parallelize divides items into contiguous ranges, one per worker, and
// calls fn(start, end) for each range concurrently.
func Parallelize(items, workers int, fn func(start, end int)) {
	if items == 0 {
		return
	}
	numWorkers := Workers(workers, items)

	// ceiling division
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ForEach calls fn for every index in [0, items) using at most workers
// goroutines. A panic inside fn is returned as a PanicError. When several
// items fail, the error of the lowest index is returned.
func ForEach(items, workers int, fn func(i int) error) error {
	if items == 0 {
		return nil
	}
	errs := make([]error, items)
	run := func(start, end int) {
		for i := start; i < end; i++ {
			i := i
			errs[i] = errors.SafeExecute("parallel.ForEach", func() error { return fn(i) })
		}
	}
	if Workers(workers, items) == 1 {
		run(0, items)
	} else {
		Parallelize(items, workers, run)
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
