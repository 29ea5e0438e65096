package section

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/tdb/item"
)

// lexiconHeaderSize is the size of the leading value count.
const lexiconHeaderSize = 4

// Lexicon is a read-only view over one field's value dictionary.
//
// Value index i (0-based) is stored at byte offset toc[i] from the start of
// the blob and runs up to the next NUL byte. Lookups by string scan the
// table linearly.
type Lexicon struct {
	data []byte
	size uint32
}

// NewLexicon validates the header and table of contents of a lexicon blob.
func NewLexicon(data []byte) (Lexicon, error) {
	if len(data) < lexiconHeaderSize {
		return Lexicon{}, errors.Wrapf(ErrInvalidLexicon, "blob too short: %d bytes", len(data))
	}

	size := binary.LittleEndian.Uint32(data)
	if size > uint32(item.MaxVal) {
		return Lexicon{}, errors.Wrapf(ErrInvalidLexicon, "%d values exceed the item value range", size)
	}
	if uint64(len(data)) < lexiconHeaderSize+4*uint64(size) {
		return Lexicon{}, errors.Wrapf(ErrInvalidLexicon, "table of %d entries exceeds %d bytes", size, len(data))
	}

	return Lexicon{data: data, size: size}, nil
}

// Size returns the number of non-empty values.
func (l Lexicon) Size() uint32 {
	return l.size
}

// Value returns the string at value index i (0-based).
func (l Lexicon) Value(i uint32) (string, bool) {
	b, ok := l.value(i)
	if !ok {
		return "", false
	}

	return string(b), true
}

// Find returns the value index (0-based) of s.
func (l Lexicon) Find(s string) (uint32, bool) {
	for i := uint32(0); i < l.size; i++ {
		if b, ok := l.value(i); ok && string(b) == s {
			return i, true
		}
	}

	return 0, false
}

func (l Lexicon) value(i uint32) ([]byte, bool) {
	if i >= l.size {
		return nil, false
	}

	off := uint64(binary.LittleEndian.Uint32(l.data[lexiconHeaderSize+4*uint64(i):]))
	if off >= uint64(len(l.data)) {
		return nil, false
	}

	rest := l.data[off:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return nil, false
	}

	return rest[:end], true
}

// EncodeLexicon builds a lexicon blob for the given values.
func EncodeLexicon(values []string) []byte {
	tocEnd := lexiconHeaderSize + 4*len(values)
	size := tocEnd
	for _, v := range values {
		size += len(v) + 1
	}

	buf := make([]byte, tocEnd, size)
	binary.LittleEndian.PutUint32(buf, uint32(len(values)))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[lexiconHeaderSize+4*i:], uint32(len(buf)))
		buf = append(buf, v...)
		buf = append(buf, 0)
	}

	return buf
}
