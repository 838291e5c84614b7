// Package bitmask provides helpers for validity bitmasks.
//
// Layout follows the Arrow convention used by the compute library: bit i of
// the mask lives in byte i/8 at position i%8 (least-significant bit first); a
// set bit means the row is valid, a cleared bit means it is null. Mask
// allocations are padded to 64 bytes.
package bitmask
