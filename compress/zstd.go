package compress

// ZstdCompressor provides Zstandard compression.
//
// It gives the best ratio of the built-in codecs and is the default of
// `tdb compress`. The pure Go implementation is used unless the binary is
// built with the gozstd tag and cgo enabled; both write standard frames at
// zstdLevel, so sidecars are interchangeable between builds.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// zstdLevel is the zstd compression level of written sidecars.
const zstdLevel = 9

// NewZstdCompressor creates a new Zstd compressor.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
