//go:build !unix

package mmap

// Heap fallback. The mapping keeps the slice reachable until Close.
func osMapAnon(size int) ([]byte, func([]byte) error, error) {
	return make([]byte, size), func([]byte) error { return nil }, nil
}
