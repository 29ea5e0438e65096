package ident

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/arloliu/tdb/internal/hash"
)

// Size is the width of one identifier in bytes.
const Size = hash.IdentifierSize

// ErrInvalidTable is returned when the identifier table does not match the
// trail count.
var ErrInvalidTable = errors.New("ident: invalid identifier table")

// Table is a read-only view over the identifier table.
type Table struct {
	data []byte
	n    uint64
}

// NewTable wraps the identifier table of a database holding n trails.
func NewTable(data []byte, n uint64) (Table, error) {
	if n > uint64(len(data))/Size {
		return Table{}, errors.Wrapf(ErrInvalidTable, "%d identifiers need %d bytes, have %d", n, n*Size, len(data))
	}

	return Table{data: data[:n*Size], n: n}, nil
}

// Len returns the number of identifiers.
func (t Table) Len() uint64 {
	return t.n
}

// At returns the identifier of trail id.
func (t Table) At(id uint64) (uuid.UUID, bool) {
	if id >= t.n {
		return uuid.UUID{}, false
	}

	var u uuid.UUID
	copy(u[:], t.data[id*Size:])

	return u, true
}

// matches reports whether slot id holds key.
func (t Table) matches(id uint64, key uuid.UUID) bool {
	if id >= t.n {
		return false
	}

	return bytes.Equal(t.data[id*Size:(id+1)*Size], key[:])
}

// Scan returns the first trail id holding key.
func (t Table) Scan(key uuid.UUID) (uint64, bool) {
	for i := uint64(0); i < t.n; i++ {
		if t.matches(i, key) {
			return i, true
		}
	}

	return 0, false
}

// EncodeTable lays out identifiers as a table blob.
func EncodeTable(ids []uuid.UUID) []byte {
	buf := make([]byte, 0, len(ids)*Size)
	for _, id := range ids {
		buf = append(buf, id[:]...)
	}

	return buf
}
