// Package filter implements the event filters evaluated while decoding
// trails.
//
// A Filter is a conjunction of clauses; a clause is a disjunction of
// literals; a literal tests one field for (in)equality with an item. The
// flat encoding is
//
//	[n1, neg, item, neg, item, ..., n2, neg, item, ...]
//
// where each clause starts with its literal count n followed by n
// (is-negative, item) pairs.
package filter

import "github.com/arloliu/tdb/item"

// Filter is the flat CNF encoding. A nil or empty Filter accepts every
// event.
type Filter []uint32

// Literal matches an event when event[field] == Item, or when it differs
// and Negative is set.
type Literal struct {
	Item     item.Item
	Negative bool
}

// Clause is a disjunction of literals.
type Clause []Literal

// New encodes the conjunction of clauses.
func New(clauses ...Clause) Filter {
	var f Filter
	for _, c := range clauses {
		f = append(f, uint32(len(c)))
		for _, lit := range c {
			neg := uint32(0)
			if lit.Negative {
				neg = 1
			}
			f = append(f, neg, uint32(lit.Item))
		}
	}

	return f
}

// Match reports whether event satisfies every clause. event holds the
// current item of every field, indexed by field id.
//
// A clause whose declared length runs past the end of the filter rejects
// the event. Literals on the timestamp field are ignored.
func (f Filter) Match(event []item.Item) bool {
	i := 0
	for i < len(f) {
		n := int(f[i])
		i++
		next := i + 2*n
		if n < 0 || next > len(f) || next < i {
			return false
		}

		match := false
		for ; i < next; i += 2 {
			lit := item.Item(f[i+1])
			field := int(lit.Field())
			if field == 0 {
				continue
			}

			var current item.Item
			if field < len(event) {
				current = event[field]
			}
			if (current == lit) != (f[i] != 0) {
				match = true
				break
			}
		}
		if !match {
			return false
		}
		i = next
	}

	return true
}

// Clauses decodes the filter back into clauses. It returns false for a
// malformed encoding.
func (f Filter) Clauses() ([]Clause, bool) {
	var out []Clause
	i := 0
	for i < len(f) {
		n := int(f[i])
		i++
		if n < 0 || i+2*n > len(f) || i+2*n < i {
			return nil, false
		}

		c := make(Clause, 0, n)
		for range n {
			c = append(c, Literal{Negative: f[i] != 0, Item: item.Item(f[i+1])})
			i += 2
		}
		out = append(out, c)
	}

	return out, true
}
