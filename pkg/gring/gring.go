package gring

import (
	"iter"
)

// Fixed capacity ring, pushing into a full ring
// overwrites the oldest element
type Ring[T any] struct {
	l   int
	s   []T
	pos int
}

func NewRing[T any](capacity int) *Ring[T] {
	return &Ring[T]{
		l:   0,
		s:   make([]T, max(capacity, 1)),
		pos: 0,
	}
}

func (r *Ring[T]) Size() int { return r.l }

func (r *Ring[T]) Push(e T) {
	r.s[r.pos] = e
	r.pos++
	if r.pos >= len(r.s) {
		r.pos = 0
	}
	if r.l < len(r.s) {
		r.l++
	}
}

// i-th element counting back from the newest one
func (r *Ring[T]) back(i int) T {
	real_pos := r.pos - 1 - i
	if real_pos < 0 {
		real_pos += len(r.s)
	}
	return r.s[real_pos]
}

// Newest first
func (r *Ring[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := range r.l {
			if !yield(r.back(i)) {
				return
			}
		}
	}
}

// Copy of the contents, oldest first
func (r *Ring[T]) Slice() []T {
	out := make([]T, r.l)
	for i := range r.l {
		out[r.l-1-i] = r.back(i)
	}
	return out
}
