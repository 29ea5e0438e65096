package section

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
)

// Offsets is the table at the start of the trail blob. Entry i is the byte
// offset of trail i within the blob; trail i spans [entry i, entry i+1).
//
// Entries are 32 bits wide when the blob is smaller than math.MaxUint32
// bytes and 64 bits wide otherwise.
type Offsets struct {
	blob  []byte
	n     uint64
	width uint64
}

// OffsetWidth returns the entry width used for a blob of the given size.
func OffsetWidth(blobSize uint64) uint64 {
	if blobSize < math.MaxUint32 {
		return 4
	}

	return 8
}

// NewOffsets validates that blob can hold the table for numTrails trails.
func NewOffsets(blob []byte, numTrails uint64) (Offsets, error) {
	width := OffsetWidth(uint64(len(blob)))
	if numTrails >= math.MaxUint64/width-1 || uint64(len(blob)) < (numTrails+1)*width {
		return Offsets{}, errors.Wrapf(ErrInvalidOffsets,
			"table for %d trails exceeds %d bytes", numTrails, len(blob))
	}

	return Offsets{blob: blob, n: numTrails, width: width}, nil
}

// Len returns the number of trails.
func (o Offsets) Len() uint64 {
	return o.n
}

// Trail returns the compressed bytes of trail id. It returns false for an
// out-of-range id or an entry pair that does not describe a valid range.
func (o Offsets) Trail(id uint64) ([]byte, bool) {
	if id >= o.n {
		return nil, false
	}

	start, end := o.at(id), o.at(id+1)
	if start > end || end > uint64(len(o.blob)) {
		return nil, false
	}

	return o.blob[start:end], true
}

func (o Offsets) at(i uint64) uint64 {
	if o.width == 4 {
		return uint64(binary.LittleEndian.Uint32(o.blob[i*4:]))
	}

	return binary.LittleEndian.Uint64(o.blob[i*8:])
}

// EncodeTrails lays out compressed trails behind their offsets table.
func EncodeTrails(trails [][]byte) []byte {
	total := uint64(0)
	for _, t := range trails {
		total += uint64(len(t))
	}

	width := OffsetWidth(uint64(len(trails)+1)*4 + total)
	if width == 8 {
		width = OffsetWidth(uint64(len(trails)+1)*8 + total)
	}

	head := uint64(len(trails)+1) * width
	buf := make([]byte, head, head+total)
	put := func(i int, v uint64) {
		if width == 4 {
			binary.LittleEndian.PutUint32(buf[uint64(i)*4:], uint32(v))
		} else {
			binary.LittleEndian.PutUint64(buf[uint64(i)*8:], v)
		}
	}

	for i, t := range trails {
		put(i, uint64(len(buf)))
		buf = append(buf, t...)
	}
	put(len(trails), uint64(len(buf)))

	return buf
}
