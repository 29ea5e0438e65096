package tdb

import (
	"github.com/cockroachdb/errors"

	"github.com/arloliu/tdb/filter"
	"github.com/arloliu/tdb/internal/pool"
	"github.com/arloliu/tdb/item"
	"github.com/arloliu/tdb/trail"
)

// DecodeTrail decodes trail id into dst using the database filter and
// returns the number of items written. A result equal to len(dst) means
// the trail may not have fit; see Cursor for a growing buffer. Ids at or
// beyond NumTrails yield 0.
//
// Plain output holds, per event, the timestamp, the item of every field in
// field order and a terminating 0. Edge-encoded output holds, per event,
// the timestamp, the items that changed since the previous event, and a 0;
// the first event that passes the filter also carries the full vector.
func (db *DB) DecodeTrail(dst []item.Item, id uint64, edge bool) int {
	return db.DecodeTrailFiltered(dst, id, edge, db.Filter())
}

// DecodeTrailFiltered is DecodeTrail with an explicit filter. A nil filter
// accepts every event regardless of the database filter.
func (db *DB) DecodeTrailFiltered(dst []item.Item, id uint64, edge bool, f filter.Filter) int {
	if db.closed.Load() {
		_ = db.fail(ErrClosed)
		return 0
	}

	scratch, done := pool.GetItems(db.NumFields())
	defer done()

	return db.dec.Decode(dst, id, trail.Wrap(scratch), edge, f)
}

// Cursor decodes whole trails into a buffer it owns, doubling the buffer
// and decoding again whenever a trail does not fit.
//
// The slice returned by GetTrail is overwritten by the next call. A Cursor
// must not be used from more than one goroutine at a time.
type Cursor struct {
	db    *DB
	buf   []item.Item
	state *trail.State
}

// NewCursor creates a cursor with the configured initial capacity. The
// buffer is allocated on first use.
func (db *DB) NewCursor() *Cursor {
	return &Cursor{
		db:    db,
		state: trail.NewState(db.NumFields()),
	}
}

// Cap returns the current buffer capacity in items.
func (c *Cursor) Cap() int {
	return len(c.buf)
}

// GetTrail decodes trail id with the database filter.
func (c *Cursor) GetTrail(id uint64, edge bool) ([]item.Item, error) {
	return c.GetTrailFiltered(id, edge, c.db.Filter())
}

// GetTrailFiltered decodes trail id with an explicit filter. It fails with
// ErrBufferTooLarge when the trail needs more than the maximum capacity;
// the cursor stays usable.
func (c *Cursor) GetTrailFiltered(id uint64, edge bool, f filter.Filter) ([]item.Item, error) {
	if c.db.closed.Load() {
		return nil, c.db.fail(ErrClosed)
	}
	if c.buf == nil {
		c.buf = make([]item.Item, c.db.cfg.initialCapacity)
	}

	retries := 0
	for {
		n := c.db.dec.Decode(c.buf, id, c.state, edge, f)
		if n < len(c.buf) {
			c.db.metrics.decoded(n, retries)
			return c.buf[:n], nil
		}

		if len(c.buf) >= c.db.cfg.maxCapacity {
			c.db.metrics.decoded(0, retries)
			return nil, c.db.fail(errors.Wrapf(ErrBufferTooLarge, "trail %d needs more than %d items", id, len(c.buf)))
		}
		// drop the old buffer before allocating the larger one
		size := min(2*len(c.buf), c.db.cfg.maxCapacity)
		c.buf = nil
		c.buf = make([]item.Item, size)
		retries++
	}
}

// GetTrail decodes trail id with the database filter into a fresh buffer.
func (db *DB) GetTrail(id uint64, edge bool) ([]item.Item, error) {
	return db.NewCursor().GetTrail(id, edge)
}
