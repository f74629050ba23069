// Package worker runs per-item work across a fixed number of goroutines.
package worker

import (
	"context"
	"runtime"
)

type job[T any] struct {
	index int
	batch []T
}

type result[R any] struct {
	index int
	out   []R
}

// Map applies fn to every item of every batch using up to workers
// goroutines, one batch per job. Results keep the shape and order of
// batches. If ctx is canceled Map stops handing out work and returns
// ctx.Err() once the running batches finish.
func Map[T, R any](ctx context.Context, batches [][]T, workers int, fn func(T) R) ([][]R, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(batches))

	jobs := make(chan job[T])
	results := make(chan result[R], len(batches))

	for i := 0; i < workers; i++ {
		go func() {
			for j := range jobs {
				out := make([]R, len(j.batch))
				for k, item := range j.batch {
					out[k] = fn(item)
				}
				results <- result[R]{index: j.index, out: out}
			}
		}()
	}

	sent := 0
feed:
	for i, b := range batches {
		select {
		case jobs <- job[T]{index: i, batch: b}:
			sent++
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)

	all := make([][]R, len(batches))
	for i := 0; i < sent; i++ {
		r := <-results
		all[r.index] = r.out
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return all, nil
}
