// Package huffman implements the symbol-decode primitive used by the trail
// decoder.
//
// A trail is a stream of symbols. Every symbol starts with a one-bit tag:
//
//   - 1: a Huffman code follows. The next CodeBits bits index the codebook,
//     which stores the decoded symbol and the actual code length. Codes are
//     stored bit-reversed so that a fixed-width peek resolves any prefix.
//   - 0: a literal follows: the field id in FieldStats.FieldIDBits bits, then
//     the value in FieldStats.FieldBits[field] bits. For the timestamp field
//     the value is the timestamp delta.
//
// A codebook entry may hold two items (a bigram). The first item is always
// consumed first; the second one is zero when absent.
package huffman
