package seq

type Int interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

type Uint interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type Float interface {
	~float32 | ~float64
}

// [0, 1, ... n-1]
func SeqN[T Int | Uint](n T) []T {
	seq := make([]T, 0, int(n))
	var index T = 0
	for range cap(seq) {
		seq = append(seq, index)
		index++
	}
	return seq
}

// Maps s into a new slice via f
func SMap[T, E any](s []E, f func(e E, i int) T) []T {
	out := make([]T, len(s))
	for i, e := range s {
		out[i] = f(e, i)
	}
	return out
}

// Elements of s for which keep returns true, in order
func SFilter[E any](s []E, keep func(e E, i int) bool) []E {
	out := make([]E, 0, len(s))
	for i, e := range s {
		if keep(e, i) {
			out = append(out, e)
		}
	}
	return out
}

// Removes the elements at the given ascending indices, highest
// first so the lower ones stay valid. Modifies s in place.
func SRemove[E any](s []E, indices ...int) []E {
	for k := len(indices) - 1; k >= 0; k-- {
		i := indices[k]
		s = append(s[:i], s[i+1:]...)
	}
	return s
}
