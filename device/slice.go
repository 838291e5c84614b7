package device

// ClampSlice resolves a half-open range [begin, end) against a buffer of
// size bytes. Negative indices count from the end, out-of-range indices clamp
// into [0, size], and begin > end yields an empty range at begin.
func ClampSlice(size, begin, end int64) (lhs, rhs int64) {
	lhs = clampIndex(size, begin)
	rhs = clampIndex(size, end)
	if rhs < lhs {
		rhs = lhs
	}
	return lhs, rhs
}

func clampIndex(size, i int64) int64 {
	if i < 0 {
		i += size
	}
	return max(0, min(i, size))
}
