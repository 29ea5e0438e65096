package compress

import (
	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/s2"
)

// S2Compressor writes S2 blocks. Sidecars are compressed once and read on
// every open, so the encoder trades speed for ratio with EncodeBetter.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress encodes data as a single S2 block.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.EncodeBetter(nil, data), nil
}

// Decompress decodes an S2 block. The destination is sized from the
// block header before decoding.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, errors.Wrap(err, "s2 header")
	}

	return s2.Decode(make([]byte, n), data)
}
