package tdb

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrFieldNotFound is returned when a field name is not in the database.
	ErrFieldNotFound = errors.New("tdb: field not found")
	// ErrInvalidField is returned for field ids outside the database.
	ErrInvalidField = errors.New("tdb: invalid field")
	// ErrTimestampField is returned for value lookups on the timestamp field.
	ErrTimestampField = errors.New("tdb: timestamp field has no values")
	// ErrValueNotFound is returned when a value is not in a field's lexicon.
	ErrValueNotFound = errors.New("tdb: value not found")
	// ErrIdentifierNotFound is returned when no trail has the identifier.
	ErrIdentifierNotFound = errors.New("tdb: identifier not found")
	// ErrBufferTooLarge is returned when a trail does not fit the maximum
	// cursor capacity.
	ErrBufferTooLarge = errors.New("tdb: trail exceeds maximum buffer size")
	// ErrClosed is returned by operations on a closed database.
	ErrClosed = errors.New("tdb: database closed")
)

// fail records err as the last error of the database and returns it.
func (db *DB) fail(err error) error {
	db.errMu.Lock()
	db.lastErr = err
	db.errMu.Unlock()

	return err
}

// LastError returns the most recent error returned by a lookup or decode
// of this database, or nil if none has failed.
func (db *DB) LastError() error {
	db.errMu.Lock()
	defer db.errMu.Unlock()

	return db.lastErr
}
