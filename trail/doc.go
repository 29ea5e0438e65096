// Package trail decodes compressed trails into flat item sequences.
//
// # Output layout
//
// Every decoded event is written as
//
//	timestamp, item, item, ..., 0
//
// Without edge encoding the items are the full field vector (fields 1..n-1
// in id order). With edge encoding they are only the items that changed
// since the previous event of the trail, followed by the full field vector
// for the first event that passes the filter, so callers can always
// reconstruct the values in effect.
//
// # Concurrency
//
// A Decoder is immutable and safe for concurrent use. Each concurrent
// decode needs its own State and destination slice.
package trail
