package timeline

// DefaultTopN is the preview size when none is configured.
const DefaultTopN = 10

// TopN returns the first n items in their existing order. It returns the
// whole pool when n exceeds it and an empty slice when n <= 0.
func TopN[T any](items []T, n int) []T {
	if n <= 0 {
		return []T{}
	}
	if n > len(items) {
		n = len(items)
	}
	out := make([]T, n)
	copy(out, items[:n])
	return out
}
