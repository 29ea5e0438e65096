package trail

import "github.com/arloliu/tdb/item"

// State is the previous-item scratch of one decode call: the most recent
// item seen for every field of the trail being decoded.
type State struct {
	items []item.Item
}

// NewState allocates scratch for a database with numFields fields.
func NewState(numFields int) *State {
	return &State{items: make([]item.Item, numFields)}
}

// Wrap turns caller-provided storage into a State. len(items) must equal
// the number of fields of the database it is used with.
func Wrap(items []item.Item) *State {
	return &State{items: items}
}

// Reset marks every field as not seen in the current trail.
func (s *State) Reset() {
	for k := range s.items {
		s.items[k] = item.Sentinel(item.Field(k))
	}
}

// Items returns the current field vector, indexed by field id. Slot 0 is
// unused.
func (s *State) Items() []item.Item {
	return s.items
}

// set records it as the latest item of its field. Items naming unknown
// fields are dropped.
func (s *State) set(it item.Item) bool {
	f := int(it.Field())
	if f >= len(s.items) {
		return false
	}
	s.items[f] = it

	return true
}
