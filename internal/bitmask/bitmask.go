package bitmask

import "math/bits"

// Padding is the allocation granularity of a mask in bytes.
const Padding = 64

// AllocationSize returns the padded number of bytes needed for n bits.
func AllocationSize(n int) int {
	if n <= 0 {
		return 0
	}
	b := (n + 7) / 8
	return (b + Padding - 1) / Padding * Padding
}

// New returns a mask for n rows with every row valid.
func New(n int) []byte {
	m := make([]byte, AllocationSize(n))
	for i := 0; i < n/8; i++ {
		m[i] = 0xff
	}
	for i := n &^ 7; i < n; i++ {
		Set(m, i)
	}
	return m
}

// FromBools builds a mask from per-row validity flags.
func FromBools(valid []bool) []byte {
	m := make([]byte, AllocationSize(len(valid)))
	for i, v := range valid {
		if v {
			Set(m, i)
		}
	}
	return m
}

// Set marks row i valid.
func Set(m []byte, i int) {
	m[i>>3] |= 1 << (i & 7)
}

// Clear marks row i null.
func Clear(m []byte, i int) {
	m[i>>3] &^= 1 << (i & 7)
}

// Test reports whether row i is valid. A nil mask means all rows are valid.
func Test(m []byte, i int) bool {
	if m == nil {
		return true
	}
	return m[i>>3]&(1<<(i&7)) != 0
}

// Put sets row i to valid or null.
func Put(m []byte, i int, valid bool) {
	if valid {
		Set(m, i)
	} else {
		Clear(m, i)
	}
}

// CountValid returns the number of set bits in [offset, offset+length).
func CountValid(m []byte, offset, length int) int {
	if length <= 0 {
		return 0
	}
	if m == nil {
		return length
	}
	count := 0
	i := offset
	end := offset + length

	// Leading partial byte
	for ; i < end && i&7 != 0; i++ {
		if Test(m, i) {
			count++
		}
	}
	// Whole bytes
	for ; i+8 <= end; i += 8 {
		count += bits.OnesCount8(m[i>>3])
	}
	// Trailing partial byte
	for ; i < end; i++ {
		if Test(m, i) {
			count++
		}
	}
	return count
}

// CountNulls returns the number of cleared bits in [offset, offset+length).
func CountNulls(m []byte, offset, length int) int {
	if length <= 0 {
		return 0
	}
	return length - CountValid(m, offset, length)
}

// Bools expands length rows starting at offset into validity flags.
func Bools(m []byte, offset, length int) []bool {
	out := make([]bool, length)
	for i := range out {
		out[i] = Test(m, offset+i)
	}
	return out
}
