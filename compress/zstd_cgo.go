//go:build gozstd && cgo

package compress

import (
	"github.com/cockroachdb/errors"
	"github.com/valyala/gozstd"
)

// Compress encodes data as one zstd frame using libzstd.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.CompressLevel(nil, data, zstdLevel), nil
}

// Decompress decodes a zstd frame using libzstd.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	out, err := gozstd.Decompress(nil, data)
	if err != nil {
		return nil, errors.Wrap(err, "zstd decompression failed")
	}

	return out, nil
}
