// Package gsma keeps a simple moving average over the last N samples.
package gsma

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

var (
	ERR_VALUE = errors.New("Bad value")
)

type Number interface {
	constraints.Float | constraints.Integer
}

type SMA[T Number] struct {
	data         []T
	buffer_index int
	sum          float64
}

func NewSMA[T Number](capacity int) (*SMA[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("Invalid capacity: %d. Error: %w", capacity, ERR_VALUE)
	}
	return &SMA[T]{
		data: make([]T, 0, capacity),
	}, nil
}

// Adds a sample, evicting the oldest one once the window is full,
// and returns the new average
func (s *SMA[T]) Recalc(new_value T) float64 {
	if len(s.data) < cap(s.data) {
		s.data = append(s.data, new_value)
		s.sum += float64(new_value)
		return s.Show()
	}
	s.sum += float64(new_value) - float64(s.data[s.buffer_index])
	s.data[s.buffer_index] = new_value
	s.buffer_index++
	if s.buffer_index >= len(s.data) {
		s.buffer_index = 0
	}
	return s.Show()
}

// Zero until the first sample
func (s *SMA[T]) Show() float64 {
	if len(s.data) == 0 {
		return 0
	}
	return s.sum / float64(len(s.data))
}
