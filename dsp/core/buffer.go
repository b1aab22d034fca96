package core

// Sample is the set of element types the buffer helpers operate on.
type Sample interface {
	~float32 | ~float64
}

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen[T Sample](buf []T, n int) []T {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]T, n)
}

// Zero sets all values in buf to 0.
func Zero[T Sample](buf []T) {
	clear(buf)
}
