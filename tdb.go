// Package tdb reads trail databases: immutable collections of per-entity
// event sequences ("trails") stored as Huffman-coded bit streams.
//
// Each event is a timestamp plus the value of every field. Values are
// interned per field in a lexicon and addressed by item.Item, a packed
// (field, value id) pair. Trails are decoded straight from mapped files,
// either as full field vectors or edge-encoded (only the fields that
// changed), optionally filtered by a CNF predicate during decode.
//
// # Basic Usage
//
//	db, err := tdb.Open("/data/clicks")
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	id, err := db.Lookup(uuid.MustParse("7f3c2d1e-..."))
//	if err != nil {
//	    return err
//	}
//
//	cur := db.NewCursor()
//	items, err := cur.GetTrail(id, false)
//	for ev := range trail.Events(items) {
//	    fmt.Println(ev.Timestamp, ev.Items)
//	}
//
// A DB is safe for concurrent use. A Cursor is not; use one per goroutine.
package tdb

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/arloliu/tdb/filter"
	"github.com/arloliu/tdb/ident"
	"github.com/arloliu/tdb/internal/options"
	"github.com/arloliu/tdb/item"
	"github.com/arloliu/tdb/storage"
	"github.com/arloliu/tdb/trail"
)

// DB is an open trail database.
type DB struct {
	cfg     *config
	h       *storage.Handle
	dec     *trail.Decoder
	ids     *ident.Resolver
	metrics *metrics

	filter atomic.Pointer[filter.Filter]
	closed atomic.Bool

	errMu   sync.Mutex
	lastErr error
}

// Open opens the database in directory root. On failure no handle is
// returned and nothing stays mapped.
func Open(root string, opts ...Option) (*DB, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.maxCapacity < cfg.initialCapacity {
		return nil, errors.Newf("tdb: max capacity %d below initial capacity %d",
			cfg.maxCapacity, cfg.initialCapacity)
	}

	m, err := newMetrics(cfg.registerer)
	if err != nil {
		return nil, err
	}

	h, err := storage.Open(root, storage.Config{
		Logger:    cfg.logger,
		SkipIndex: cfg.skipIndex,
		Sidecars:  cfg.sidecars,
	})
	if err != nil {
		level.Error(cfg.logger).Log("msg", "failed to open database", "dir", root, "err", err)
		return nil, errors.Wrapf(err, "tdb: open %s", root)
	}

	db := &DB{
		cfg:     cfg,
		h:       h,
		dec:     trail.NewDecoder(h.Codebook, h.Stats, h.Trails, h.NumFields(), h.Info.MinTimestamp),
		ids:     ident.NewResolver(h.Identifiers, h.Index),
		metrics: m,
	}

	level.Info(cfg.logger).Log("msg", "opened database", "dir", root,
		"trails", h.Info.NumTrails, "events", h.Info.NumEvents,
		"fields", h.NumFields(), "lookup", db.ids.Mode())

	return db, nil
}

// Close unmaps the database. Slices returned by earlier calls must not be
// used afterwards. Closing twice returns ErrClosed.
func (db *DB) Close() error {
	if !db.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	if err := db.h.Close(); err != nil {
		level.Error(db.cfg.logger).Log("msg", "failed to close database", "dir", db.h.Dir, "err", err)
		return db.fail(errors.Wrap(err, "tdb: close"))
	}

	return nil
}

// NumTrails returns the number of trails.
func (db *DB) NumTrails() uint64 { return db.h.Info.NumTrails }

// NumEvents returns the number of events across all trails.
func (db *DB) NumEvents() uint64 { return db.h.Info.NumEvents }

// NumFields returns the number of fields, including the timestamp.
func (db *DB) NumFields() int { return db.h.NumFields() }

// MinTimestamp returns the smallest timestamp in the database.
func (db *DB) MinTimestamp() uint32 { return db.h.Info.MinTimestamp }

// MaxTimestamp returns the largest timestamp in the database.
func (db *DB) MaxTimestamp() uint32 { return db.h.Info.MaxTimestamp }

// MaxTimestampDelta returns the largest gap between consecutive events of a
// trail.
func (db *DB) MaxTimestampDelta() uint32 { return db.h.Info.MaxTimestampDelta }

// HasIdentifierIndex reports whether identifier lookups use the
// perfect-hash index.
func (db *DB) HasIdentifierIndex() bool { return db.ids.Mode() == ident.ModeIndex }

// Files describes the files backing the database.
func (db *DB) Files() []storage.File { return db.h.Files() }

// Field returns the id of the named field. The timestamp field is "time".
func (db *DB) Field(name string) (item.Field, error) {
	for i, f := range db.h.Fields {
		if f == name {
			return item.Field(i), nil
		}
	}

	return 0, db.fail(errors.Wrapf(ErrFieldNotFound, "%q", name))
}

// FieldName returns the name of field f.
func (db *DB) FieldName(f item.Field) (string, error) {
	if int(f) >= db.NumFields() {
		return "", db.fail(errors.Wrapf(ErrInvalidField, "%d", f))
	}

	return db.h.Fields[f], nil
}

// lexicon validates f as a value-carrying field.
func (db *DB) lexicon(f item.Field) (int, error) {
	switch {
	case f == item.TimestampField:
		return 0, db.fail(ErrTimestampField)
	case int(f) >= db.NumFields():
		return 0, db.fail(errors.Wrapf(ErrInvalidField, "%d", f))
	}

	return int(f), nil
}

// LexiconSize returns the number of values of field f, counting the empty
// value.
func (db *DB) LexiconSize(f item.Field) (uint64, error) {
	k, err := db.lexicon(f)
	if err != nil {
		return 0, err
	}

	return uint64(db.h.Lexicons[k].Size()) + 1, nil
}

// Item returns the item for value in field f. The empty string is a valid
// value of every field.
func (db *DB) Item(f item.Field, value string) (item.Item, error) {
	k, err := db.lexicon(f)
	if err != nil {
		return 0, err
	}
	if value == "" {
		return item.Make(f, 0), nil
	}

	i, ok := db.h.Lexicons[k].Find(value)
	if !ok {
		return 0, db.fail(errors.Wrapf(ErrValueNotFound, "%q in field %s", value, db.h.Fields[k]))
	}

	return item.Make(f, item.Val(i+1)), nil
}

// ItemByName is Item with the field given by name. Its signature matches
// filter.Resolver.
func (db *DB) ItemByName(field, value string) (item.Item, error) {
	f, err := db.Field(field)
	if err != nil {
		return 0, err
	}

	return db.Item(f, value)
}

// Value returns the string of it. The empty value yields "".
func (db *DB) Value(it item.Item) (string, error) {
	k, err := db.lexicon(it.Field())
	if err != nil {
		return "", err
	}
	if it.IsEmpty() {
		return "", nil
	}

	s, ok := db.h.Lexicons[k].Value(uint32(it.Val()) - 1)
	if !ok {
		return "", db.fail(errors.Wrapf(ErrValueNotFound, "value %d in field %s", it.Val(), db.h.Fields[k]))
	}

	return s, nil
}

// Lookup returns the trail id of the entity identifier.
func (db *DB) Lookup(id uuid.UUID) (uint64, error) {
	trailID, ok := db.ids.Lookup(id)
	db.metrics.lookup(db.ids.Mode(), ok)
	if !ok {
		return 0, db.fail(errors.Wrapf(ErrIdentifierNotFound, "%s", id))
	}

	return trailID, nil
}

// Identifier returns the entity identifier of trail id.
func (db *DB) Identifier(trailID uint64) (uuid.UUID, error) {
	id, ok := db.ids.Reverse(trailID)
	if !ok {
		return uuid.Nil, db.fail(errors.Wrapf(ErrIdentifierNotFound, "trail %d", trailID))
	}

	return id, nil
}

// SetFilter sets the filter applied by DecodeTrail and GetTrail. A nil
// filter removes it.
func (db *DB) SetFilter(f filter.Filter) {
	if f == nil {
		db.filter.Store(nil)
		return
	}
	db.filter.Store(&f)
}

// Filter returns the filter set with SetFilter, or nil.
func (db *DB) Filter() filter.Filter {
	if f := db.filter.Load(); f != nil {
		return *f
	}

	return nil
}

// ParseFilter parses a filter expression (see filter.Parse) against the
// fields and lexicons of the database.
func (db *DB) ParseFilter(expr string) (filter.Filter, error) {
	f, err := filter.Parse(expr, db.ItemByName)
	if err != nil {
		return nil, db.fail(err)
	}

	return f, nil
}
