package dtype

import (
	"reflect"
	"unsafe"
)

// Native is the set of Go types that map directly onto a fixed-width
// element type.
type Native interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Of returns the default type id for the Go type T, using the underlying
// kind for named types. Timestamps and durations must be tagged explicitly.
func Of[T Native]() TypeID {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Int8:
		return Int8
	case reflect.Int16:
		return Int16
	case reflect.Int32:
		return Int32
	case reflect.Int64:
		return Int64
	case reflect.Uint8:
		return Uint8
	case reflect.Uint16:
		return Uint16
	case reflect.Uint32:
		return Uint32
	case reflect.Uint64:
		return Uint64
	case reflect.Float32:
		return Float32
	case reflect.Float64:
		return Float64
	}
	return Empty
}

// Compatible reports whether values of Go type T can be stored in a column
// of type t.
func Compatible[T Native](t TypeID) bool {
	var zero T
	return t.Width() == int(unsafe.Sizeof(zero))
}

// Bytes returns the in-memory representation of values. The result aliases
// values.
func Bytes[T Native](values []T) []byte {
	if len(values) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(values))), len(values)*int(unsafe.Sizeof(zero)))
}

// Values decodes b into a newly allocated slice of T. Trailing bytes that
// do not fill a whole element are ignored.
func Values[T Native](b []byte) []T {
	var zero T
	out := make([]T, len(b)/int(unsafe.Sizeof(zero)))
	copy(Bytes(out), b)
	return out
}
