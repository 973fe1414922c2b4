package experiment

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// runPool applies fn to every item on at most workers goroutines and returns
// the results in item order, whatever order the calls finish in. With
// workers <= 1 the items run inline on the calling goroutine. The first error
// cancels the context handed to later calls; runPool returns only after every
// started call has returned.
func runPool[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	if workers <= 1 {
		for i, it := range items {
			r, err := fn(ctx, it)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, it := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := fn(gctx, it)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
