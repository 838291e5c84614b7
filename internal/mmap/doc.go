// Package mmap provides anonymous off-heap memory mappings.
//
// # Overview
//
// MapAnon obtains read-write memory directly from the operating system via
// mmap(2). The pages live outside the Go heap: the garbage collector neither
// scans them nor counts them toward GOGC pacing. The host device runtime uses
// these mappings to stand in for device memory, which has exactly the same
// property.
//
// # Usage
//
//	m, err := mmap.MapAnon(4096)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//	r, _ := m.Region(128, 64) // sub-slice, no copy
//
// # Thread Safety
//
// Close is idempotent and protected by an atomic flag. Callers must ensure no
// goroutine touches Bytes() or a Region after Close returns.
//
// # Platform Support
//
// Unix platforms use mmap(2)/munmap(2) through golang.org/x/sys/unix. Other
// platforms fall back to heap-backed memory with identical semantics.
package mmap
