package trail

import (
	"github.com/arloliu/tdb/filter"
	"github.com/arloliu/tdb/huffman"
	"github.com/arloliu/tdb/internal/bits"
	"github.com/arloliu/tdb/item"
	"github.com/arloliu/tdb/section"
)

// paddingBits is the width of the header holding the number of unused
// bits at the end of a trail.
const paddingBits = 3

// Decoder reconstructs trails from a trail blob and its codebook.
type Decoder struct {
	codebook     huffman.Codebook
	stats        *huffman.FieldStats
	offsets      section.Offsets
	numFields    int
	minTimestamp uint32
}

// NewDecoder creates a decoder. numFields counts the timestamp field.
func NewDecoder(codebook huffman.Codebook, stats *huffman.FieldStats, offsets section.Offsets,
	numFields int, minTimestamp uint32,
) *Decoder {
	return &Decoder{
		codebook:     codebook,
		stats:        stats,
		offsets:      offsets,
		numFields:    numFields,
		minTimestamp: minTimestamp,
	}
}

// NumFields returns the number of fields including the timestamp.
func (d *Decoder) NumFields() int {
	return d.numFields
}

// NumTrails returns the number of trails.
func (d *Decoder) NumTrails() uint64 {
	return d.offsets.Len()
}

// Decode writes the events of trail id into dst and returns the number of
// values written.
//
// Decoding stops early when dst is full; a return value equal to len(dst)
// therefore means the output may be truncated and the caller should retry
// with a larger destination. An unknown id yields 0.
//
// A stream that cannot be decoded ends the trail: an event whose timestamp
// is undecodable is dropped, and an event cut short by an undecodable field
// is emitted with the values read so far.
//
// st is reset before use and resized when it does not hold NumFields
// slots; a nil st uses a temporary state. f may be nil; a nil or empty
// filter accepts every event.
func (d *Decoder) Decode(dst []item.Item, id uint64, st *State, edge bool, f filter.Filter) int {
	data, ok := d.offsets.Trail(id)
	if !ok || len(data) == 0 {
		return 0
	}

	size := uint64(len(data))*8 - bits.Read(data, 0, paddingBits)
	offs := uint64(paddingBits)
	tstamp := d.minTimestamp
	firstSatisfying := true
	if st == nil {
		st = NewState(d.numFields)
	}
	if len(st.items) != d.numFields {
		st.items = make([]item.Item, d.numFields)
	}
	st.Reset()

	var sym huffman.Symbol
	i, n := 0, len(dst)
	for offs < size && i < n {
		// every event starts with a timestamp, possibly bundled with the
		// first changed field
		start := i
		sym, offs = huffman.Decode(d.codebook, data, offs, d.stats)
		if offs == huffman.EndOfStream {
			break
		}
		if delta := uint32(sym.First.Val()); delta == item.FarTimeDelta {
			dst[i] = item.Item(item.FarTimestamp)
		} else {
			tstamp += delta
			dst[i] = item.Item(tstamp)
		}
		i++

		if sym.HasSecond() && st.set(sym.Second) && edge && i < n {
			dst[i] = sym.Second
			i++
		}

		// field values up to the next timestamp
		for offs < size {
			prev := offs
			sym, offs = huffman.Decode(d.codebook, data, offs, d.stats)
			if offs == huffman.EndOfStream {
				// finish the event; the outer loop ends on offs
				break
			}
			if sym.First.Field() == item.TimestampField {
				offs = prev
				break
			}

			if st.set(sym.First) && edge && i < n {
				dst[i] = sym.First
				i++
			}
			if sym.Second.Field() != item.TimestampField && st.set(sym.Second) && edge && i < n {
				dst[i] = sym.Second
				i++
			}
		}

		if !f.Match(st.items) {
			i = start
			continue
		}

		if !edge || firstSatisfying {
			for j := 1; j < len(st.items) && i < n; j++ {
				dst[i] = st.items[j]
				i++
			}
			firstSatisfying = false
		}
		if i < n {
			dst[i] = 0
			i++
		}
	}

	return i
}
