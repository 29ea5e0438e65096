package ident

import (
	"encoding/binary"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/arloliu/tdb/internal/hash"
)

// Index file layout:
//
//	[0:8)    magic
//	[8:16)   number of keys
//	[16:24)  number of buckets
//	[24:32)  bucket seed
//	[32:)    one uint32 displacement per bucket
//	[...]    one uint64 trail id per slot
//
// A key hashes under the bucket seed to its bucket; the bucket displacement
// d then selects the slot hash seed (bucket seed + 1 + d). Displacements
// are chosen at build time so that every key lands on a distinct slot in
// [0, number of keys). The slot table maps each slot back to the trail id
// of the key that owns it, so the identifier table keeps its order.
const (
	indexHeaderSize = 32
	bucketLoad      = 4
	maxDisplacement = 1 << 24
	maxBuildSeeds   = 8
)

var indexMagic = [8]byte{'T', 'D', 'B', 'M', 'P', 'H', 0, 1}

var (
	// ErrInvalidIndex is returned for a malformed or mismatched index blob.
	ErrInvalidIndex = errors.New("ident: invalid identifier index")
	// ErrDuplicateIdentifier is returned when building an index over a table
	// holding the same identifier twice.
	ErrDuplicateIdentifier = errors.New("ident: duplicate identifier")
	// ErrIndexBuild is returned when no displacement assignment was found.
	ErrIndexBuild = errors.New("ident: cannot build perfect hash")
)

// Index is a read-only view over a minimal perfect hash index.
type Index struct {
	disp       []byte
	ids        []byte
	numKeys    uint64
	numBuckets uint64
	seed       uint64
}

// NewIndex validates an index blob built for a table of numKeys
// identifiers.
func NewIndex(data []byte, numKeys uint64) (*Index, error) {
	if len(data) < indexHeaderSize || [8]byte(data[:8]) != indexMagic {
		return nil, errors.Wrap(ErrInvalidIndex, "bad header")
	}

	idx := &Index{
		numKeys:    binary.LittleEndian.Uint64(data[8:]),
		numBuckets: binary.LittleEndian.Uint64(data[16:]),
		seed:       binary.LittleEndian.Uint64(data[24:]),
	}
	if idx.numKeys != numKeys {
		return nil, errors.Wrapf(ErrInvalidIndex, "index covers %d keys, table has %d", idx.numKeys, numKeys)
	}
	body := uint64(len(data) - indexHeaderSize)
	if idx.numBuckets == 0 || idx.numBuckets > body/4 || idx.numKeys > (body-4*idx.numBuckets)/8 {
		return nil, errors.Wrapf(ErrInvalidIndex, "%d buckets and %d keys do not fit in %d bytes",
			idx.numBuckets, idx.numKeys, len(data))
	}
	idsStart := indexHeaderSize + 4*idx.numBuckets
	idx.disp = data[indexHeaderSize:idsStart]
	idx.ids = data[idsStart : idsStart+8*idx.numKeys]

	return idx, nil
}

// Candidate returns the trail id key would have if it were present. The
// caller must verify it against the identifier table.
func (x *Index) Candidate(key uuid.UUID) (uint64, bool) {
	if x.numKeys == 0 {
		return 0, false
	}

	return binary.LittleEndian.Uint64(x.ids[8*x.slot(key):]), true
}

func (x *Index) slot(key uuid.UUID) uint64 {
	b := hash.Identifier(key, x.seed) % x.numBuckets
	d := binary.LittleEndian.Uint32(x.disp[4*b:])

	return slotOf(key, x.seed, d, x.numKeys)
}

func slotOf(key uuid.UUID, seed uint64, d uint32, n uint64) uint64 {
	return hash.Identifier(key, seed+1+uint64(d)) % n
}

// Build computes an index blob over every identifier of t.
func Build(t Table) ([]byte, error) {
	n := t.Len()
	seen := make(map[uuid.UUID]struct{}, n)
	keys := make([]uuid.UUID, n)
	for i := range n {
		keys[i], _ = t.At(i)
		if _, dup := seen[keys[i]]; dup {
			return nil, errors.Wrapf(ErrDuplicateIdentifier, "%s at trail %d", keys[i], i)
		}
		seen[keys[i]] = struct{}{}
	}

	numBuckets := max(1, (n+bucketLoad-1)/bucketLoad)
	seed := uint64(0x9E3779B97F4A7C15)
	for range maxBuildSeeds {
		if disp, ok := place(keys, numBuckets, seed); ok {
			ids := make([]uint64, n)
			for id, k := range keys {
				b := hash.Identifier(k, seed) % numBuckets
				ids[slotOf(k, seed, disp[b], n)] = uint64(id)
			}

			return encodeIndex(n, numBuckets, seed, disp, ids), nil
		}
		seed = seed*6364136223846793005 + 1442695040888963407
	}

	return nil, errors.Wrapf(ErrIndexBuild, "%d keys", n)
}

// place assigns displacements bucket by bucket, largest buckets first.
func place(keys []uuid.UUID, numBuckets, seed uint64) ([]uint32, bool) {
	n := uint64(len(keys))
	buckets := make([][]uuid.UUID, numBuckets)
	for _, k := range keys {
		b := hash.Identifier(k, seed) % numBuckets
		buckets[b] = append(buckets[b], k)
	}

	order := make([]int, numBuckets)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return len(buckets[b]) - len(buckets[a])
	})

	disp := make([]uint32, numBuckets)
	taken := make([]bool, n)
	slots := make([]uint64, 0, bucketLoad*2)
	for _, b := range order {
		bucket := buckets[b]
		if len(bucket) == 0 {
			break
		}

		found := false
		for d := uint32(0); d < maxDisplacement; d++ {
			slots = slots[:0]
			ok := true
			for _, k := range bucket {
				s := slotOf(k, seed, d, n)
				if taken[s] || slices.Contains(slots, s) {
					ok = false
					break
				}
				slots = append(slots, s)
			}
			if ok {
				for _, s := range slots {
					taken[s] = true
				}
				disp[b] = d
				found = true

				break
			}
		}
		if !found {
			return nil, false
		}
	}

	return disp, true
}

func encodeIndex(n, numBuckets, seed uint64, disp []uint32, ids []uint64) []byte {
	buf := make([]byte, indexHeaderSize+4*len(disp)+8*len(ids))
	copy(buf, indexMagic[:])
	binary.LittleEndian.PutUint64(buf[8:], n)
	binary.LittleEndian.PutUint64(buf[16:], numBuckets)
	binary.LittleEndian.PutUint64(buf[24:], seed)
	for i, d := range disp {
		binary.LittleEndian.PutUint32(buf[indexHeaderSize+4*i:], d)
	}
	idsStart := indexHeaderSize + 4*len(disp)
	for i, id := range ids {
		binary.LittleEndian.PutUint64(buf[idsStart+8*i:], id)
	}

	return buf
}
