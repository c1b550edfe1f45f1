// Package gheap is a binary min-heap over values that order themselves.
package gheap

import "iter"

type Ordered[T any] interface {
	Less(T) bool
}

type Heap[T Ordered[T]] []T

func (h Heap[T]) down(u int) {
	for {
		v := u
		if l := 2*u + 1; l < len(h) && h[l].Less(h[v]) {
			v = l
		}
		if r := 2*u + 2; r < len(h) && h[r].Less(h[v]) {
			v = r
		}
		if v == u {
			return
		}
		h[v], h[u] = h[u], h[v]
		u = v
	}
}

func (h Heap[T]) up(u int) {
	for u != 0 && h[u].Less(h[(u-1)/2]) {
		h[(u-1)/2], h[u] = h[u], h[(u-1)/2]
		u = (u - 1) / 2
	}
}

func (h Heap[T]) Len() int      { return len(h) }
func (h Heap[T]) IsEmpty() bool { return len(h) == 0 }

func (h *Heap[T]) Push(e T) {
	*h = append(*h, e)
	h.up(len(*h) - 1)
}

// Panics on an empty heap
func (h *Heap[T]) Pop() T {
	x := (*h)[0]
	n := len(*h)
	(*h)[0], (*h)[n-1] = (*h)[n-1], (*h)[0]
	var zero T
	(*h)[n-1] = zero
	*h = (*h)[:n-1]
	h.down(0)
	return x
}

func (h Heap[T]) Peek() T {
	return h[0]
}

// Pops the minimum for as long as ready accepts it
func (h *Heap[T]) PopWhile(ready func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for !h.IsEmpty() && ready(h.Peek()) {
			if !yield(h.Pop()) {
				return
			}
		}
	}
}
