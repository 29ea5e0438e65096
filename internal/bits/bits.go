// Package bits provides random-access bit reads over little-endian,
// LSB-first bit streams such as compressed trails.
//
// Bit offset 0 is the least significant bit of the first byte. A read of n
// bits at offset o returns the bits o..o+n-1 right-aligned, so the first bit
// in the stream ends up as the least significant bit of the result.
package bits

import "encoding/binary"

// MaxRead is the widest read supported by Read. A 64-bit load starting at
// an arbitrary byte can always serve 57 bits after the intra-byte shift.
const MaxRead = 57

// Read returns n bits (n <= MaxRead) starting at bit offset in data.
//
// Bits past the end of data read as zero, so callers may peek a fixed-width
// window near the end of a stream without bounds juggling.
func Read(data []byte, offset uint64, n uint) uint64 {
	idx := offset >> 3
	shift := offset & 7
	mask := uint64(1)<<n - 1

	if idx+8 <= uint64(len(data)) {
		// Fast path: single unaligned 64-bit load
		return (binary.LittleEndian.Uint64(data[idx:]) >> shift) & mask
	}

	if idx >= uint64(len(data)) {
		return 0
	}

	// Slow path: fewer than 8 bytes remain, zero-fill the tail
	var word uint64
	for i, b := range data[idx:] {
		word |= uint64(b) << (8 * uint(i))
	}

	return (word >> shift) & mask
}

// Len returns the number of bytes needed to hold the given number of bits.
func Len(numBits uint64) uint64 {
	return (numBits + 7) / 8
}

// Needed returns the number of bits required to represent v. Zero still
// takes one bit.
func Needed(v uint64) uint {
	if v == 0 {
		return 1
	}

	n := uint(0)
	for v != 0 {
		v >>= 1
		n++
	}

	return n
}

// Writer accumulates an LSB-first bit stream readable with Read.
type Writer struct {
	buf   []byte
	nbits uint64
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write appends the low n bits of v (n <= 64).
func (w *Writer) Write(v uint64, n uint) {
	for n > 0 {
		idx := w.nbits >> 3
		if idx >= uint64(len(w.buf)) {
			w.buf = append(w.buf, 0)
		}
		used := uint(w.nbits & 7)
		room := 8 - used
		take := min(room, n)
		chunk := byte(v & (1<<take - 1))
		w.buf[idx] |= chunk << used
		v >>= take
		n -= take
		w.nbits += uint64(take)
	}
}

// SetAt overwrites n bits (n <= 8) starting at bit offset. The range must
// already have been written.
func (w *Writer) SetAt(offset uint64, v uint64, n uint) {
	for i := uint(0); i < n; i++ {
		pos := offset + uint64(i)
		b := &w.buf[pos>>3]
		bit := byte(1) << (pos & 7)
		if v>>i&1 == 1 {
			*b |= bit
		} else {
			*b &^= bit
		}
	}
}

// Len returns the number of bits written.
func (w *Writer) Len() uint64 {
	return w.nbits
}

// Bytes returns the written stream, with unused bits of the final byte
// set to zero.
func (w *Writer) Bytes() []byte {
	return w.buf
}
