package gmat

import (
	"fmt"
	"iter"
	"strings"
	"text/tabwriter"
)

type Direction bool

const (
	Vertical   Direction = true
	Horizontal Direction = false
)

// Dense row-major matrix
type Mat[T any] struct {
	s          []T
	rows, cols int
}

// Vector backed by the data of the
// underlying matrix
type Vector[T any] struct {
	m         *Mat[T]
	index     int
	direction Direction
}

// Returns a new matrix with pre-allocated
// backing slice
func NewMat[T any](r, c int) *Mat[T] {
	return &Mat[T]{
		s:    make([]T, r*c),
		rows: r,
		cols: c,
	}
}

func (m *Mat[T]) Dims() (int, int) { return m.rows, m.cols }

// Number of vectors in the given direction
func (m *Mat[T]) Size(direction Direction) int {
	if direction == Vertical {
		return m.cols
	}
	return m.rows
}

func (m *Mat[T]) At(r, c int) T {
	return m.s[m.cols*r+c]
}

// Set the value of element (r, c) in matrix m
func (m *Mat[T]) Set(r, c int, v T) error {
	if r < 0 || c < 0 || r >= m.rows || c >= m.cols {
		return fmt.Errorf("Out of bounds: (%d, %d) in %dx%d", r, c, m.rows, m.cols)
	}
	m.s[m.cols*r+c] = v
	return nil
}

// Iterator over the rows (Horizontal) or
// columns (Vertical) of the receiver
func (m *Mat[T]) Vectors(direction Direction) iter.Seq2[int, Vector[T]] {
	return func(yield func(int, Vector[T]) bool) {
		for ind := range m.Size(direction) {
			if !yield(ind, Vector[T]{m: m, index: ind, direction: direction}) {
				return
			}
		}
	}
}

func (v Vector[T]) Len() int {
	if v.direction == Vertical {
		return v.m.rows
	}
	return v.m.cols
}

// Returns element of the vector at index
func (v Vector[T]) At(index int) T {
	if v.direction == Vertical {
		return v.m.At(index, v.index)
	}
	return v.m.At(v.index, index)
}

// Iterate over the values of vector
func (v Vector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for ind := range v.Len() {
			if !yield(ind, v.At(ind)) {
				return
			}
		}
	}
}

// Maps an existing matrix into a new one via f
func Map[T, E any](m *Mat[T], f func(e T, r, c int) E) *Mat[E] {
	new_mat := NewMat[E](m.rows, m.cols)
	for ind_r, vec := range m.Vectors(Horizontal) {
		for ind_c, value := range vec.All() {
			new_mat.s[new_mat.cols*ind_r+ind_c] = f(value, ind_r, ind_c)
		}
	}
	return new_mat
}

// Copy of the receiver grown to at least r x c,
// new cells hold fill
func (m *Mat[T]) Padded(r, c int, fill T) *Mat[T] {
	r, c = max(r, m.rows), max(c, m.cols)
	new_mat := NewMat[T](r, c)
	for ind_r := range r {
		for ind_c := range c {
			value := fill
			if ind_r < m.rows && ind_c < m.cols {
				value = m.At(ind_r, ind_c)
			}
			new_mat.s[c*ind_r+ind_c] = value
		}
	}
	return new_mat
}

// Square copy padded with fill
func (m *Mat[T]) Square(fill T) *Mat[T] {
	n := max(m.rows, m.cols)
	return m.Padded(n, n, fill)
}

// Row slices, sharing nothing with the receiver
func (m *Mat[T]) To2d() [][]T {
	out := make([][]T, m.rows)
	for ind_r := range m.rows {
		out[ind_r] = make([]T, m.cols)
		copy(out[ind_r], m.s[ind_r*m.cols:(ind_r+1)*m.cols])
	}
	return out
}

// Pretty print
func (m *Mat[T]) Sprintf(format string) string {
	b := new(strings.Builder)
	t := tabwriter.NewWriter(b, 3, 1, 1, ' ', 0)
	for _, vec := range m.Vectors(Horizontal) {
		for _, value := range vec.All() {
			fmt.Fprintf(t, format, value)
			fmt.Fprint(t, "\t")
		}
		fmt.Fprint(t, "\n")
	}
	t.Flush()
	return b.String()
}

func (m *Mat[T]) String() string {
	return m.Sprintf("%v")
}
