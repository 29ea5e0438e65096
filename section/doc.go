// Package section provides parsers and zero-copy views for the fixed
// on-disk sections of a trail database.
//
// A database directory holds:
//
//	info               "num_trails num_events min_ts max_ts max_ts_delta"
//	fields             one field name per line; line i is field id i (1-based)
//	lexicon.<field>    uint32 size, size uint32 offsets, NUL-terminated values
//	cookies            16 bytes per entity identifier
//	cookies.index      optional perfect-hash index over cookies
//	trails.codebook    symbol codebook (see package huffman)
//	trails.data        offsets table followed by the compressed trails
//
// All multi-byte integers are little-endian.
package section
