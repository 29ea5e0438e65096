package ident

import "github.com/google/uuid"

// Mode names the lookup strategy in use.
type Mode string

const (
	ModeLinear Mode = "linear"
	ModeIndex  Mode = "index"
)

// Resolver maps identifiers to trail ids and back.
type Resolver struct {
	table Table
	index *Index
}

// NewResolver creates a resolver over t. A nil index selects linear lookup.
func NewResolver(t Table, index *Index) *Resolver {
	return &Resolver{table: t, index: index}
}

// Mode reports whether lookups use the perfect-hash index.
func (r *Resolver) Mode() Mode {
	if r.index != nil {
		return ModeIndex
	}

	return ModeLinear
}

// Lookup returns the trail id of key.
func (r *Resolver) Lookup(key uuid.UUID) (uint64, bool) {
	if r.index == nil {
		return r.table.Scan(key)
	}

	id, ok := r.index.Candidate(key)
	if !ok || !r.table.matches(id, key) {
		return 0, false
	}

	return id, true
}

// Reverse returns the identifier of trail id.
func (r *Resolver) Reverse(id uint64) (uuid.UUID, bool) {
	return r.table.At(id)
}

// Len returns the number of identifiers.
func (r *Resolver) Len() uint64 {
	return r.table.Len()
}
