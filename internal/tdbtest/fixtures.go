package tdbtest

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// ID returns a deterministic identifier for trail n.
func ID(n int) uuid.UUID {
	var id uuid.UUID
	id[0] = 0xdb
	id[15] = byte(n)
	id[14] = byte(n >> 8)
	id[13] = byte(n >> 16)

	return id
}

// FirstSatisfying is a single trail whose events take (f1, f2) through
// (A,X) (A,Y) (B,X) (B,Y) (B,Y).
func FirstSatisfying() DB {
	pairs := [][]string{{"A", "X"}, {"A", "Y"}, {"B", "X"}, {"B", "Y"}, {"B", "Y"}}
	t := Trail{ID: ID(0)}
	for i, p := range pairs {
		t.Events = append(t.Events, Event{Timestamp: uint32(100 + i), Values: p})
	}

	return DB{Fields: []string{"f1", "f2"}, Trails: []Trail{t}}
}

// Random generates a database with small lexicons, so items and item pairs
// repeat often enough to be coded. Roughly one event in fifty is far.
func Random(seed uint64, numTrails, numFields int) DB {
	rng := rand.New(rand.NewPCG(seed, seed^0x5eed))

	db := DB{}
	for f := range numFields {
		db.Fields = append(db.Fields, fmt.Sprintf("field%d", f+1))
	}

	for n := range numTrails {
		t := Trail{ID: ID(n)}
		ts := uint32(1_000_000 + rng.IntN(1000))
		values := make([]string, numFields)
		for range rng.IntN(30) {
			ev := Event{Timestamp: ts}
			if rng.IntN(50) == 0 {
				ev.Far = true
			} else {
				ts += uint32(rng.IntN(600))
				ev.Timestamp = ts
			}
			for f := range values {
				if rng.IntN(3) == 0 {
					switch k := rng.IntN(8); k {
					case 0:
						values[f] = ""
					default:
						values[f] = fmt.Sprintf("v%d_%d", f+1, k)
					}
				}
			}
			ev.Values = append([]string(nil), values...)
			t.Events = append(t.Events, ev)
		}
		db.Trails = append(db.Trails, t)
	}

	return db
}

// Write builds db and stores it in a fresh directory. It returns the
// directory and the built database.
func Write(tb testing.TB, db DB, opts Options) (string, *Built) {
	tb.Helper()

	b, err := Build(db, opts)
	require.NoError(tb, err)

	dir := filepath.Join(tb.TempDir(), "db")
	require.NoError(tb, mkdir(dir))
	require.NoError(tb, b.Write(dir))

	return dir, b
}
