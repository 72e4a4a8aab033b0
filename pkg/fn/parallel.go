// Package fn provides the small concurrency and collection helpers the
// engines are built from.
package fn

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task is one independent unit of work inside a request.
type Task func(context.Context) error

// FanOut runs tasks concurrently under a shared context. The first error
// cancels the remaining tasks and is returned; callers must discard any
// partially written results when FanOut fails.
func FanOut(ctx context.Context, tasks ...Task) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range tasks {
		g.Go(func() error { return t(gctx) })
	}
	return g.Wait()
}

// ParMap applies f to each item with bounded concurrency, preserving order.
// workers <= 0 means one goroutine per item. The first error cancels the
// rest and no results are returned.
func ParMap[T, U any](ctx context.Context, items []T, workers int, f func(context.Context, T) (U, error)) ([]U, error) {
	out := make([]U, len(items))
	if len(items) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, v := range items {
		g.Go(func() error {
			u, err := f(gctx, v)
			if err != nil {
				return err
			}
			out[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
