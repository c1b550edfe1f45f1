package gset

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := New(5, 1, 3)
	s.Add(3, 2)
	assert.Equal(t, []int{1, 2, 3, 5}, slices.Collect(s.All()))
	assert.Equal(t, 4, s.Len())
	assert.True(t, s.Contains(2))
	assert.False(t, s.Contains(4))
	assert.Equal(t, "[ 1 2 3 5 ]", s.String())
}

func TestZeroValue(t *testing.T) {
	var s Set[string]
	assert.False(t, s.Contains("a"))
	s.Add("b", "a")
	assert.Equal(t, []string{"a", "b"}, slices.Collect(s.All()))
}

func TestComplement(t *testing.T) {
	assert.Equal(t, []int{0, 2, 4}, Complement(New(1, 3), 5))
	assert.Equal(t, []int{}, Complement(New(0, 1), 2))
	assert.Equal(t, []int{}, Complement(New[int](), 0))
}
