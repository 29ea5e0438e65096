// Package ident resolves 16-byte entity identifiers to dense trail ids.
//
// The identifier table stores one identifier per trail, in trail id order.
// Lookups either scan the table linearly or, when the optional perfect-hash
// index is available, hash the identifier to a single candidate slot and
// verify it against the table. A perfect hash maps every input to some
// slot, so the verification is what turns an absent identifier into a
// "not found" result.
package ident
