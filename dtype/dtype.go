// Package dtype defines the element type tags carried by columns and views.
//
// Type ids follow the numbering of the columnar compute library so that tags
// can be exchanged with it without translation. Only fixed-width types are
// supported by this module.
package dtype

import "fmt"

// TypeID identifies the element type of a column.
type TypeID int32

// Type ids. The numbering is part of the compute library contract.
const (
	Empty            TypeID = 0
	Int8             TypeID = 1
	Int16            TypeID = 2
	Int32            TypeID = 3
	Int64            TypeID = 4
	Uint8            TypeID = 5
	Uint16           TypeID = 6
	Uint32           TypeID = 7
	Uint64           TypeID = 8
	Float32          TypeID = 9
	Float64          TypeID = 10
	Bool8            TypeID = 11
	TimestampDays    TypeID = 12
	TimestampSeconds TypeID = 13
	TimestampMillis  TypeID = 14
	TimestampMicros  TypeID = 15
	TimestampNanos   TypeID = 16
	DurationDays     TypeID = 17
	DurationSeconds  TypeID = 18
	DurationMillis   TypeID = 19
	DurationMicros   TypeID = 20
	DurationNanos    TypeID = 21
)

const maxSupported = DurationNanos

// SizeType is the type the compute library uses for row indices.
const SizeType = Int32

var names = [...]string{
	Empty:            "empty",
	Int8:             "int8",
	Int16:            "int16",
	Int32:            "int32",
	Int64:            "int64",
	Uint8:            "uint8",
	Uint16:           "uint16",
	Uint32:           "uint32",
	Uint64:           "uint64",
	Float32:          "float32",
	Float64:          "float64",
	Bool8:            "boolean",
	TimestampDays:    "date32",
	TimestampSeconds: "timestamp[s]",
	TimestampMillis:  "timestamp[ms]",
	TimestampMicros:  "timestamp[us]",
	TimestampNanos:   "timestamp[ns]",
	DurationDays:     "timedelta[D]",
	DurationSeconds:  "timedelta64[s]",
	DurationMillis:   "timedelta64[ms]",
	DurationMicros:   "timedelta64[us]",
	DurationNanos:    "timedelta64[ns]",
}

var widths = [...]int{
	Empty:            0,
	Int8:             1,
	Int16:            2,
	Int32:            4,
	Int64:            8,
	Uint8:            1,
	Uint16:           2,
	Uint32:           4,
	Uint64:           8,
	Float32:          4,
	Float64:          8,
	Bool8:            1,
	TimestampDays:    4,
	TimestampSeconds: 8,
	TimestampMillis:  8,
	TimestampMicros:  8,
	TimestampNanos:   8,
	DurationDays:     4,
	DurationSeconds:  8,
	DurationMillis:   8,
	DurationMicros:   8,
	DurationNanos:    8,
}

// Valid reports whether t is a type id known to this module.
func (t TypeID) Valid() bool {
	return t >= Empty && t <= maxSupported
}

// Width returns the size of one element in bytes, or 0 for Empty and
// unknown ids.
func (t TypeID) Width() int {
	if !t.Valid() {
		return 0
	}
	return widths[t]
}

// FixedWidth reports whether t has a non-zero element width.
func (t TypeID) FixedWidth() bool {
	return t.Width() > 0
}

// IsInteger reports whether t is a signed or unsigned integer type.
func (t TypeID) IsInteger() bool {
	return t >= Int8 && t <= Uint64
}

// IsTimestamp reports whether t is one of the timestamp types.
func (t TypeID) IsTimestamp() bool {
	return t >= TimestampDays && t <= TimestampNanos
}

// IsDuration reports whether t is one of the duration types.
func (t TypeID) IsDuration() bool {
	return t >= DurationDays && t <= DurationNanos
}

func (t TypeID) String() string {
	if !t.Valid() {
		return fmt.Sprintf("type(%d)", int32(t))
	}
	return names[t]
}

// Parse returns the type id with the given name.
func Parse(name string) (TypeID, bool) {
	for id, n := range names {
		if n == name {
			return TypeID(id), true
		}
	}
	return Empty, false
}
