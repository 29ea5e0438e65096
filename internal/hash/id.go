// Package hash provides the seeded hash used by the identifier index.
package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// IdentifierSize is the width of an entity identifier.
const IdentifierSize = 16

// Identifier computes the xxHash64 of a 16-byte identifier under seed.
//
// The seed is prepended to the identifier so that different seeds yield
// independent hash functions over the same key.
func Identifier(id [IdentifierSize]byte, seed uint64) uint64 {
	var buf [8 + IdentifierSize]byte
	binary.LittleEndian.PutUint64(buf[:8], seed)
	copy(buf[8:], id[:])

	return xxhash.Sum64(buf[:])
}
