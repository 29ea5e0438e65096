package trail

import (
	"iter"

	"github.com/arloliu/tdb/item"
)

// Event is one decoded event.
type Event struct {
	Timestamp uint32
	// Items are the items written for the event: the full field vector for
	// plain output, the changed items (plus an optional full vector) for
	// edge-encoded output.
	Items []item.Item
}

// Events splits decoder output into events. Items alias out.
//
// A trailing event without its terminating zero, as left by a truncated
// decode, is yielded as is.
func Events(out []item.Item) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		i := 0
		for i < len(out) {
			ev := Event{Timestamp: uint32(out[i])}
			j := i + 1
			for j < len(out) && out[j] != 0 {
				j++
			}
			ev.Items = out[i+1 : j]
			if !yield(ev) {
				return
			}
			i = j + 1
		}
	}
}

// Expand replays decoder output against a previous-item vector and yields
// every event with its full field vector (fields 1..numFields-1). It
// accepts both plain and edge-encoded output. The yielded Items slice is
// reused between iterations.
func Expand(out []item.Item, numFields int) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		st := NewState(numFields)
		st.Reset()
		for ev := range Events(out) {
			for _, it := range ev.Items {
				st.set(it)
			}
			if !yield(Event{Timestamp: ev.Timestamp, Items: st.items[1:]}) {
				return
			}
		}
	}
}
