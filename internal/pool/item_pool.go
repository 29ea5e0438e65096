// Package pool provides pooled scratch buffers for decoding and output.
package pool

import (
	"sync"

	"github.com/arloliu/tdb/item"
)

var itemSlicePool = sync.Pool{
	New: func() any { return &[]item.Item{} },
}

// GetItems retrieves and resizes an item slice from the pool.
//
// The returned slice has length size; its contents are unspecified. The
// caller must call the returned cleanup function to return the slice to
// the pool.
//
// Example:
//
//	scratch, done := pool.GetItems(numFields)
//	defer done()
func GetItems(size int) ([]item.Item, func()) {
	ptr, _ := itemSlicePool.Get().(*[]item.Item)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]item.Item, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { itemSlicePool.Put(ptr) }
}
