package gset

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Ordered set, iteration yields values in ascending order.
// The zero value is an empty set.
type Set[T cmp.Ordered] struct {
	s []T
}

func New[T cmp.Ordered](values ...T) *Set[T] {
	s := new(Set[T])
	s.Add(values...)
	return s
}

func (s *Set[T]) Add(values ...T) {
	for _, value := range values {
		ind, found := slices.BinarySearch(s.s, value)
		if !found {
			s.s = slices.Insert(s.s, ind, value)
		}
	}
}

func (s *Set[T]) Contains(value T) bool {
	_, found := slices.BinarySearch(s.s, value)
	return found
}

func (s *Set[T]) Len() int { return len(s.s) }

func (s *Set[T]) All() iter.Seq[T] {
	return slices.Values(s.s)
}

// Values of [0, n) missing from the set, ascending
func Complement(s *Set[int], n int) []int {
	out := make([]int, 0, max(0, n-s.Len()))
	for i := range n {
		if !s.Contains(i) {
			out = append(out, i)
		}
	}
	return out
}

func (s *Set[T]) Sprintf(format string) string {
	b := new(strings.Builder)
	b.WriteString("[ ")
	for e := range s.All() {
		b.WriteString(fmt.Sprintf(format, e))
		b.WriteString(" ")
	}
	b.WriteString("]")
	return b.String()
}

func (s *Set[T]) String() string {
	return s.Sprintf("%v")
}
