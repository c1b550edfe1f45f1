// Package indexed tags values with a sequence number so results produced
// out of order can be put back in order.
package indexed

type Indexed[T any] struct {
	seq   uint64
	value T
}

func NewIndexed[T any](seq uint64, value T) Indexed[T] {
	return Indexed[T]{seq, value}
}

func (i Indexed[T]) Less(other Indexed[T]) bool { return i.seq < other.seq }
func (i Indexed[T]) Seq() uint64                { return i.seq }
func (i Indexed[T]) Value() T                   { return i.value }

// Same sequence number, different payload
func Map[T, E any](i Indexed[T], f func(T) E) Indexed[E] {
	return Indexed[E]{i.seq, f(i.value)}
}
