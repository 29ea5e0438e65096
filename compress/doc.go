// Package compress provides the codecs used for compressed tdb sidecar files.
//
// A tdb database directory normally holds plain files that are memory
// mapped. A file may instead be stored compressed, with the codec's suffix
// appended to its name (trails.data.zst, lexicon.user.s2). Readers fall
// back to such a sidecar when the plain file is absent and hold the
// decompressed bytes in memory.
//
// The supported algorithms are:
//   - None: the plain file (format.CompressionNone)
//   - Zstd: best ratio, used for archives (format.CompressionZstd)
//   - S2: balanced speed and ratio (format.CompressionS2)
//   - LZ4: fastest decompression (format.CompressionLZ4)
//   - Snappy: for databases produced by other tooling (format.CompressionSnappy)
//
// All codecs compress whole files and are safe for concurrent use.
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(data)
package compress
