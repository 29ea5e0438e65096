package tdb_test

import (
	"context"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/tdb"
	"github.com/arloliu/tdb/filter"
	"github.com/arloliu/tdb/format"
	"github.com/arloliu/tdb/internal/tdbtest"
	"github.com/arloliu/tdb/item"
	"github.com/arloliu/tdb/section"
)

func openRandom(t *testing.T, opts tdbtest.Options, dbOpts ...tdb.Option) (*tdb.DB, *tdbtest.Built) {
	t.Helper()

	dir, b := tdbtest.Write(t, tdbtest.Random(42, 120, 4), opts)
	db, err := tdb.Open(dir, dbOpts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db, b
}

func TestOpen(t *testing.T) {
	db, b := openRandom(t, tdbtest.Options{Codebook: true, Index: true})

	assert.Equal(t, b.Info.NumTrails, db.NumTrails())
	assert.Equal(t, b.Info.NumEvents, db.NumEvents())
	assert.Equal(t, 5, db.NumFields())
	assert.Equal(t, b.Info.MinTimestamp, db.MinTimestamp())
	assert.Equal(t, b.Info.MaxTimestamp, db.MaxTimestamp())
	assert.Equal(t, b.Info.MaxTimestampDelta, db.MaxTimestampDelta())
	assert.True(t, db.HasIdentifierIndex())
	assert.NotEmpty(t, db.Files())
	assert.NoError(t, db.LastError())
}

func TestOpenFailure(t *testing.T) {
	db, err := tdb.Open(t.TempDir())
	require.Error(t, err)
	require.Nil(t, db)

	_, err = tdb.Open(t.TempDir(), tdb.WithInitialCapacity(0))
	require.Error(t, err)

	_, err = tdb.Open(t.TempDir(), tdb.WithInitialCapacity(64), tdb.WithMaxCapacity(32))
	require.Error(t, err)
}

func TestCloseTwice(t *testing.T) {
	dir, _ := tdbtest.Write(t, tdbtest.FirstSatisfying(), tdbtest.Options{})
	db, err := tdb.Open(dir)
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.ErrorIs(t, db.Close(), tdb.ErrClosed)

	dst := make([]item.Item, 16)
	require.Zero(t, db.DecodeTrail(dst, 0, false))
	require.ErrorIs(t, db.LastError(), tdb.ErrClosed)

	_, err = db.GetTrail(0, false)
	require.ErrorIs(t, err, tdb.ErrClosed)
}

func TestFields(t *testing.T) {
	db, _ := openRandom(t, tdbtest.Options{})

	f, err := db.Field("time")
	require.NoError(t, err)
	require.Equal(t, item.TimestampField, f)

	f, err = db.Field("field3")
	require.NoError(t, err)
	require.Equal(t, item.Field(3), f)

	name, err := db.FieldName(3)
	require.NoError(t, err)
	require.Equal(t, "field3", name)

	_, err = db.Field("nope")
	require.ErrorIs(t, err, tdb.ErrFieldNotFound)
	require.ErrorIs(t, db.LastError(), tdb.ErrFieldNotFound)

	_, err = db.FieldName(5)
	require.ErrorIs(t, err, tdb.ErrInvalidField)
}

func TestItemValueRoundTrip(t *testing.T) {
	db, b := openRandom(t, tdbtest.Options{})

	for f := 1; f < db.NumFields(); f++ {
		field := item.Field(f)
		size, err := db.LexiconSize(field)
		require.NoError(t, err)
		require.Equal(t, uint64(len(b.Lexicon(f))+1), size)

		for v := range item.Val(size) {
			s, err := db.Value(item.Make(field, v))
			require.NoError(t, err)

			it, err := db.Item(field, s)
			require.NoError(t, err)
			require.Equal(t, item.Make(field, v), it)
			require.Equal(t, field, it.Field())
			require.Equal(t, v, it.Val())
		}

		_, err = db.Value(item.Make(field, item.Val(size)))
		require.ErrorIs(t, err, tdb.ErrValueNotFound)
	}
}

func TestItemErrors(t *testing.T) {
	db, _ := openRandom(t, tdbtest.Options{})

	tests := []struct {
		name  string
		field item.Field
		value string
		want  error
	}{
		{"timestamp field", item.TimestampField, "1", tdb.ErrTimestampField},
		{"timestamp field empty", item.TimestampField, "", tdb.ErrTimestampField},
		{"invalid field", 9, "x", tdb.ErrInvalidField},
		{"unknown value", 1, "no-such-value", tdb.ErrValueNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Item(tt.field, tt.value)
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, db.LastError(), tt.want)
		})
	}

	_, err := db.Value(item.Make(item.TimestampField, 5))
	require.ErrorIs(t, err, tdb.ErrTimestampField)
	_, err = db.LexiconSize(item.TimestampField)
	require.ErrorIs(t, err, tdb.ErrTimestampField)
	_, err = db.ItemByName("nope", "x")
	require.ErrorIs(t, err, tdb.ErrFieldNotFound)
}

func TestLookup(t *testing.T) {
	modes := []struct {
		name    string
		opts    tdbtest.Options
		dbOpts  []tdb.Option
		indexed bool
	}{
		{"index", tdbtest.Options{Index: true}, nil, true},
		{"index disabled", tdbtest.Options{Index: true}, []tdb.Option{tdb.WithoutIdentifierIndex()}, false},
		{"no index file", tdbtest.Options{}, nil, false},
	}

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			db, _ := openRandom(t, m.opts, m.dbOpts...)
			require.Equal(t, m.indexed, db.HasIdentifierIndex())

			for n := range int(db.NumTrails()) {
				id, err := db.Lookup(tdbtest.ID(n))
				require.NoError(t, err)
				require.Equal(t, uint64(n), id)

				got, err := db.Identifier(id)
				require.NoError(t, err)
				require.Equal(t, tdbtest.ID(n), got)
			}

			for _, absent := range []uuid.UUID{uuid.Nil, tdbtest.ID(100000), uuid.New()} {
				_, err := db.Lookup(absent)
				require.ErrorIs(t, err, tdb.ErrIdentifierNotFound)
			}

			_, err := db.Identifier(db.NumTrails())
			require.ErrorIs(t, err, tdb.ErrIdentifierNotFound)
		})
	}
}

func TestDecodeTrail(t *testing.T) {
	db, b := openRandom(t, tdbtest.Options{Codebook: true})
	cur := db.NewCursor()

	for id := range db.NumTrails() + 2 {
		for _, edge := range []bool{false, true} {
			got, err := cur.GetTrail(id, edge)
			require.NoError(t, err)
			require.Equal(t, b.Want(id, edge, nil), got, "trail %d", id)
		}
	}
}

func TestDefaultFilter(t *testing.T) {
	dir, b := tdbtest.Write(t, tdbtest.FirstSatisfying(), tdbtest.Options{})
	db, err := tdb.Open(dir)
	require.NoError(t, err)
	defer db.Close()

	f, err := db.ParseFilter("f1=B & f2=Y")
	require.NoError(t, err)
	require.Nil(t, db.Filter())
	db.SetFilter(f)
	require.Equal(t, f, db.Filter())

	got, err := db.GetTrail(0, true)
	require.NoError(t, err)
	require.Equal(t, []item.Item{
		103, b.Item("f2", "Y"), b.Item("f1", "B"), b.Item("f2", "Y"), 0,
		104, 0,
	}, got)

	dst := make([]item.Item, 64)
	n := db.DecodeTrail(dst, 0, false)
	require.Equal(t, b.Want(0, false, f), dst[:n])

	// an explicit nil filter overrides the default
	n = db.DecodeTrailFiltered(dst, 0, false, nil)
	require.Equal(t, b.Want(0, false, nil), dst[:n])

	db.SetFilter(nil)
	require.Nil(t, db.Filter())

	_, err = db.ParseFilter("f1=C")
	require.ErrorIs(t, err, tdb.ErrValueNotFound)
	_, err = db.ParseFilter("f1")
	require.ErrorIs(t, err, filter.ErrSyntax)
}

func TestCursorGrowth(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	db, b := openRandom(t, tdbtest.Options{Codebook: true},
		tdb.WithInitialCapacity(1), tdb.WithRegisterer(reg))

	cur := db.NewCursor()
	require.Zero(t, cur.Cap())

	total := 0
	for id := range db.NumTrails() {
		got, err := cur.GetTrail(id, false)
		require.NoError(t, err)
		require.Equal(t, b.Want(id, false, nil), got)
		total += len(got)
	}
	require.Greater(t, cur.Cap(), 1)

	require.Equal(t, float64(db.NumTrails()), counterValue(t, reg, "tdb_trail_decodes_total"))
	require.Equal(t, float64(total), counterValue(t, reg, "tdb_trail_items_total"))
	require.Positive(t, counterValue(t, reg, "tdb_trail_decode_retries_total"))
}

func TestCursorMaxCapacity(t *testing.T) {
	db := tdbtest.FirstSatisfying()
	db.Trails = append(db.Trails, tdbtest.Trail{
		ID:     tdbtest.ID(1),
		Events: []tdbtest.Event{{Timestamp: 100, Values: []string{"A", "X"}}},
	})
	dir, b := tdbtest.Write(t, db, tdbtest.Options{})

	h, err := tdb.Open(dir, tdb.WithInitialCapacity(2), tdb.WithMaxCapacity(8))
	require.NoError(t, err)
	defer h.Close()
	cur := h.NewCursor()

	// five events of four values each do not fit eight items
	_, err = cur.GetTrail(0, false)
	require.ErrorIs(t, err, tdb.ErrBufferTooLarge)
	require.ErrorIs(t, h.LastError(), tdb.ErrBufferTooLarge)

	got, err := cur.GetTrail(1, false)
	require.NoError(t, err)
	require.Equal(t, b.Want(1, false, nil), got)
}

func TestLookupMetrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	db, _ := openRandom(t, tdbtest.Options{Index: true}, tdb.WithRegisterer(reg))

	_, err := db.Lookup(tdbtest.ID(3))
	require.NoError(t, err)
	_, err = db.Lookup(uuid.Nil)
	require.Error(t, err)

	require.Equal(t, 1.0, labeledValue(t, reg, "tdb_identifier_lookups_total", "index", "hit"))
	require.Equal(t, 1.0, labeledValue(t, reg, "tdb_identifier_lookups_total", "index", "miss"))

	// a second database shares the registered counters
	dir, _ := tdbtest.Write(t, tdbtest.FirstSatisfying(), tdbtest.Options{})
	other, err := tdb.Open(dir, tdb.WithRegisterer(reg))
	require.NoError(t, err)
	defer other.Close()

	_, err = other.Lookup(tdbtest.ID(0))
	require.NoError(t, err)
	require.Equal(t, 1.0, labeledValue(t, reg, "tdb_identifier_lookups_total", "linear", "hit"))
}

func TestScan(t *testing.T) {
	db, b := openRandom(t, tdbtest.Options{Codebook: true}, tdb.WithInitialCapacity(4))

	f, err := db.ParseFilter("field1!=")
	require.NoError(t, err)

	var mu sync.Mutex
	got := map[uint64][]item.Item{}
	err = db.Scan(context.Background(), 4, true, f, func(id uint64, items []item.Item) error {
		mu.Lock()
		defer mu.Unlock()
		got[id] = append([]item.Item{}, items...)

		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, int(db.NumTrails()))

	for id, items := range got {
		require.Equal(t, b.Want(id, true, f), items, "trail %d", id)
	}
}

func TestScanStopsOnError(t *testing.T) {
	db, _ := openRandom(t, tdbtest.Options{})

	boom := errors.New("boom")
	err := db.Scan(context.Background(), 3, false, nil, func(id uint64, _ []item.Item) error {
		if id == 7 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = db.Scan(ctx, 2, false, nil, func(uint64, []item.Item) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentCursors(t *testing.T) {
	db, b := openRandom(t, tdbtest.Options{Codebook: true, Index: true})

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cur := db.NewCursor()
			for id := uint64(w); id < db.NumTrails(); id += 3 {
				got, err := cur.GetTrail(id, w%2 == 0)
				assert.NoError(t, err)
				assert.Equal(t, b.Want(id, w%2 == 0, nil), got)
			}
		}()
	}
	wg.Wait()
}

func TestCompressedFiles(t *testing.T) {
	opts := tdbtest.Options{
		Codebook: true,
		Compress: map[string]format.CompressionType{
			section.TrailsFile:   format.CompressionZstd,
			section.CookiesFile:  format.CompressionS2,
			section.CodebookFile: format.CompressionLZ4,
		},
	}
	dir, b := tdbtest.Write(t, tdbtest.Random(8, 40, 2), opts)

	_, err := tdb.Open(dir)
	require.Error(t, err)

	db, err := tdb.Open(dir, tdb.WithCompressedFiles(true))
	require.NoError(t, err)
	defer db.Close()

	for id := range db.NumTrails() {
		got, err := db.GetTrail(id, true)
		require.NoError(t, err)
		require.Equal(t, b.Want(id, true, nil), got)
	}
}

func counterValue(t *testing.T, reg prometheus.Gatherer, name string) float64 {
	t.Helper()

	mf := family(t, reg, name)
	require.Len(t, mf.GetMetric(), 1)

	return mf.GetMetric()[0].GetCounter().GetValue()
}

func labeledValue(t *testing.T, reg prometheus.Gatherer, name, mode, result string) float64 {
	t.Helper()

	for _, m := range family(t, reg, name).GetMetric() {
		labels := map[string]string{}
		for _, lp := range m.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		if labels["mode"] == mode && labels["result"] == result {
			return m.GetCounter().GetValue()
		}
	}

	return 0
}

func family(t *testing.T, reg prometheus.Gatherer, name string) *dto.MetricFamily {
	t.Helper()

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric %s not registered", name)

	return nil
}
