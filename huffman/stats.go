package huffman

import "github.com/arloliu/tdb/internal/bits"

// FieldStats holds the literal widths used when a symbol is not in the
// codebook. It is derived once per database and never mutated.
type FieldStats struct {
	// FieldIDBits is the width of the field id of a literal.
	FieldIDBits uint
	// FieldBits is the value width per field; index 0 is the timestamp delta.
	FieldBits []uint
}

// NewFieldStats derives literal widths from the lexicon sizes of fields
// 1..n-1 and the largest timestamp delta of the database.
func NewFieldStats(lexiconSizes []uint64, maxTimestampDelta uint32) *FieldStats {
	numFields := len(lexiconSizes) + 1
	fs := &FieldStats{
		FieldIDBits: bits.Needed(uint64(numFields)),
		FieldBits:   make([]uint, numFields),
	}

	fs.FieldBits[0] = bits.Needed(uint64(maxTimestampDelta))
	for i, size := range lexiconSizes {
		fs.FieldBits[i+1] = bits.Needed(size)
	}

	return fs
}
