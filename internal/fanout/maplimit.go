// Package fanout runs mapping functions over slices with a bounded worker pool.
package fanout

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// MapLimit applies fn to every item using at most limit concurrent workers and
// returns the outputs in input order: result[i] is always fn(items[i]).
//
// Workers claim indexes from a shared cursor, so completion order has no effect
// on result placement. The first error cancels the context handed to the
// remaining calls and is returned without a partial result; unclaimed items
// never start. Callers that want per-item fault tolerance must absorb errors
// inside fn. A limit below one is treated as one.
func MapLimit[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	workers := max(1, limit)
	if workers > len(items) {
		workers = len(items)
	}

	var cursor atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				idx := int(cursor.Add(1)) - 1
				if idx >= len(items) {
					return nil
				}
				out, err := fn(gctx, items[idx])
				if err != nil {
					return err
				}
				results[idx] = out
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
