// Package item defines the packed field/value identifiers that make up
// decoded trails.
//
// An Item is a 32-bit value: the low 8 bits hold the field id and the upper
// 24 bits hold the value id. Value id 0 is the empty value; value id i+1
// refers to entry i of the field's lexicon. Field 0 is the timestamp
// pseudo-field and never has a lexicon.
package item

// Item is a packed (field, value) pair.
type Item uint32

// Field identifies a column of the database. Field 0 is the timestamp.
type Field uint8

// Val is a value id within a field. 0 is the empty value.
type Val uint32

const (
	// TimestampField is the reserved field id of the timestamp pseudo-field.
	TimestampField Field = 0
	// TimestampFieldName is the implicit name of field 0.
	TimestampFieldName = "time"

	// MaxFields is the largest number of fields (including the timestamp)
	// an Item can address.
	MaxFields = 1 << 8
	// MaxVal is the largest value id an Item can carry.
	MaxVal Val = 1<<24 - 1

	// FarTimeDelta is the timestamp delta that marks an event too far from
	// its predecessor to be encoded as a delta.
	FarTimeDelta uint32 = 1<<24 - 1
	// FarTimestamp is emitted in place of a reconstructed timestamp when
	// FarTimeDelta is decoded.
	FarTimestamp uint32 = 1<<32 - 1
)

// Make packs a field and value id into an Item.
func Make(field Field, val Val) Item {
	return Item(uint32(field) | uint32(val)<<8)
}

// Field returns the field id of the item.
func (i Item) Field() Field {
	return Field(i & 0xFF)
}

// Val returns the value id of the item.
func (i Item) Val() Val {
	return Val(i >> 8)
}

// IsEmpty reports whether the item carries the empty value.
func (i Item) IsEmpty() bool {
	return i.Val() == 0
}

// Sentinel returns the item a field holds before any value was seen in a
// trail: the field itself with the empty value.
func Sentinel(field Field) Item {
	return Item(field)
}
