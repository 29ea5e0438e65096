package huffman

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/tdb/internal/bits"
	"github.com/arloliu/tdb/item"
)

const (
	// CodeBits is the width of the codebook index peeked for every coded
	// symbol. No code is longer than CodeBits.
	CodeBits = 16
	// NumEntries is the number of codebook entries.
	NumEntries = 1 << CodeBits
	// EntrySize is the encoded size of one entry: a little-endian uint64
	// symbol followed by a little-endian uint32 code length.
	EntrySize = 12
	// CodebookSize is the exact size of a codebook blob.
	CodebookSize = NumEntries * EntrySize
)

// ErrInvalidCodebook is returned when a codebook blob has the wrong size.
var ErrInvalidCodebook = errors.New("huffman: invalid codebook")

// Symbol is one decoded code: a single item or a bigram of two items.
type Symbol struct {
	First  item.Item
	Second item.Item // zero when the symbol carries a single item
}

// HasSecond reports whether the symbol is a bigram.
func (s Symbol) HasSecond() bool {
	return s.Second != 0
}

// Pack returns the 64-bit on-disk representation of the symbol.
func (s Symbol) Pack() uint64 {
	return uint64(s.First) | uint64(s.Second)<<32
}

// Unpack splits a 64-bit codebook symbol into its two halves.
func Unpack(v uint64) Symbol {
	return Symbol{First: item.Item(v), Second: item.Item(v >> 32)}
}

// Codebook is a read-only view over a codebook blob.
type Codebook struct {
	data []byte
}

// NewCodebook wraps a codebook blob without copying it.
func NewCodebook(data []byte) (Codebook, error) {
	if len(data) != CodebookSize {
		return Codebook{}, errors.Wrapf(ErrInvalidCodebook, "size %d, want %d", len(data), CodebookSize)
	}

	return Codebook{data: data}, nil
}

// Entry returns the symbol and code length stored at idx.
func (c Codebook) Entry(idx uint64) (Symbol, uint32) {
	off := idx * EntrySize
	e := c.data[off : off+EntrySize]

	return Unpack(binary.LittleEndian.Uint64(e)), binary.LittleEndian.Uint32(e[8:])
}

// Decode decodes the symbol at bit offset in data and returns it together
// with the offset of the following symbol.
//
// A literal naming a field that FieldStats does not know cannot be decoded;
// Decode then returns an empty symbol and an offset past any valid stream,
// which ends the caller's decode loop.
func Decode(c Codebook, data []byte, offset uint64, fs *FieldStats) (Symbol, uint64) {
	if bits.Read(data, offset, 1) == 1 {
		sym, n := c.Entry(bits.Read(data, offset+1, CodeBits))
		return sym, offset + 1 + uint64(n)
	}

	offset++
	field := bits.Read(data, offset, fs.FieldIDBits)
	offset += uint64(fs.FieldIDBits)
	if field >= uint64(len(fs.FieldBits)) {
		return Symbol{}, EndOfStream
	}

	width := fs.FieldBits[field]
	val := bits.Read(data, offset, width)

	return Symbol{First: item.Make(item.Field(field), item.Val(val))}, offset + uint64(width)
}

// EndOfStream is the offset returned by Decode for undecodable input.
const EndOfStream = ^uint64(0)
