package core

// Scalar is an element type kept in reusable scratch buffers.
type Scalar interface {
	~float64 | ~complex128
}

// EnsureLen returns buf resliced to n, allocating only when its capacity is
// too small. Reused elements keep their old values.
func EnsureLen[T Scalar](buf []T, n int) []T {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]T, n)
}

// LoadReal stores src as the real parts of dst and zeroes the remainder of
// dst, which zero-pads a real frame into an FFT input. It returns the number
// of samples loaded.
func LoadReal(dst []complex128, src []float64) int {
	n := min(len(dst), len(src))
	for i, v := range src[:n] {
		dst[i] = complex(v, 0)
	}
	clear(dst[n:])
	return n
}
