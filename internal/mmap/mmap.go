// Package mmap exposes read-only views of database files.
package mmap

import (
	"os"

	"github.com/cockroachdb/errors"
)

// Region is a read-only view of a whole file. It is either memory mapped or,
// when mapping is unavailable, a heap copy of the file contents.
type Region struct {
	data   []byte
	mapped bool
}

// Open maps path read-only. Empty files yield an empty region without a
// mapping.
func Open(path string) (*Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if st.IsDir() {
		return nil, errors.Newf("%s is a directory", path)
	}

	size := st.Size()
	if size == 0 {
		return &Region{data: []byte{}}, nil
	}
	if int64(int(size)) != size {
		return nil, errors.Newf("%s: size %d exceeds address space", path, size)
	}

	data, mapped, err := mapFile(f, int(size))
	if err != nil {
		return nil, errors.Wrapf(err, "map %s", path)
	}

	return &Region{data: data, mapped: mapped}, nil
}

// FromBytes wraps an in-memory buffer, such as a decompressed sidecar.
func FromBytes(data []byte) *Region {
	return &Region{data: data}
}

// Bytes returns the file contents. The slice is invalid after Close.
func (r *Region) Bytes() []byte {
	return r.data
}

// Mapped reports whether the region is backed by a memory mapping.
func (r *Region) Mapped() bool {
	return r.mapped
}

// Close releases the mapping. Closing twice is a no-op.
func (r *Region) Close() error {
	data, mapped := r.data, r.mapped
	r.data, r.mapped = nil, false
	if !mapped {
		return nil
	}

	return unmap(data)
}
