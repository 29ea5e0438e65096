package tdb

import (
	"context"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/tdb/filter"
	"github.com/arloliu/tdb/item"
)

// ScanFunc receives one decoded trail. items is only valid during the call.
type ScanFunc func(id uint64, items []item.Item) error

// Scan decodes every trail with the given filter on up to workers
// goroutines and calls fn for each. Trails are handed out in id order but
// fn runs concurrently. The first error from fn or from decoding stops the
// scan; cancellation of ctx is observed between trails.
func (db *DB) Scan(ctx context.Context, workers int, edge bool, f filter.Filter, fn ScanFunc) error {
	if workers <= 0 {
		workers = 1
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	ids := make(chan uint64)

	g.Go(func() error {
		defer close(ids)
		for id := range db.NumTrails() {
			select {
			case ids <- id:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		return nil
	})

	for range workers {
		g.Go(func() error {
			cur := db.NewCursor()
			for id := range ids {
				items, err := cur.GetTrailFiltered(id, edge, f)
				if err != nil {
					return err
				}
				if err := fn(id, items); err != nil {
					return errors.Wrapf(err, "trail %d", id)
				}
			}

			return nil
		})
	}

	return g.Wait()
}
