package gheap

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

type num int

func (n num) Less(other num) bool { return n < other }

func TestPushPop(t *testing.T) {
	values := rand.Perm(100)
	h := make(Heap[num], 0)
	for _, v := range values {
		h.Push(num(v))
	}
	assert.Equal(t, 100, h.Len())

	out := make([]int, 0, 100)
	for !h.IsEmpty() {
		out = append(out, int(h.Pop()))
	}
	assert.True(t, slices.IsSorted(out))
	assert.Len(t, out, 100)
}

func TestPopWhile(t *testing.T) {
	h := make(Heap[num], 0)
	for _, v := range []num{4, 0, 2, 1, 6} {
		h.Push(v)
	}
	next := num(0)
	got := make([]num, 0)
	for v := range h.PopWhile(func(v num) bool { return v == next }) {
		got = append(got, v)
		next++
	}
	assert.Equal(t, []num{0, 1, 2}, got)
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, num(4), h.Peek())
}
